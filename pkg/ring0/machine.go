// Copyright 2026 The redk Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ring0

// Machine issues the privileged instructions the kernel depends on.
//
// On hardware every method is a few instructions of assembly; see
// HardwareMachine. Halt and Iret never return there.
type Machine interface {
	// LoadGDT loads the segment descriptor table register.
	LoadGDT(base uint32, limit uint16)

	// EnableProtectedMode sets CR0.PE.
	EnableProtectedMode()

	// ReloadCodeSegment reloads CS with a far transfer.
	ReloadCodeSegment(cs Selector)

	// ReloadDataSegments reloads DS, ES, FS, GS and SS.
	ReloadDataSegments(ds Selector)

	// LoadUserDataSegments reloads DS, ES, FS and GS, leaving SS alone.
	LoadUserDataSegments(ds Selector)

	// LoadTaskRegister loads the task register.
	LoadTaskRegister(tr Selector)

	// LoadIDT loads the interrupt descriptor table register.
	LoadIDT(base uint32, limit uint16)

	// EnableInterrupts sets EFLAGS.IF.
	EnableInterrupts()

	// DisableInterrupts clears EFLAGS.IF.
	DisableInterrupts()

	// Flags returns the current EFLAGS.
	Flags() uint32

	// Halt stops the CPU until the next interrupt.
	Halt()

	// Iret transfers control as described by frame.
	Iret(frame *IretFrame)

	// OutB writes a byte to an I/O port.
	OutB(port uint16, v uint8)

	// InB reads a byte from an I/O port.
	InB(port uint16) uint8
}

// HaltForever halts until the end of time. Interrupts are masked first so
// only an NMI can wake the CPU, and it halts again.
func HaltForever(m Machine) {
	m.DisableInterrupts()
	for {
		m.Halt()
	}
}
