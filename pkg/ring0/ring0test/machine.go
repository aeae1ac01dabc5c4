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

// Package ring0test provides a ring0.Machine that records the instructions
// it is asked to issue instead of executing them.
package ring0test

import (
	"fmt"

	"redk.dev/redk/pkg/ring0"
	"redk.dev/redk/pkg/sync"
)

// Halted is the value Machine.Halt panics with. A real CPU never returns
// from a halt loop; the fake unwinds instead so callers can observe it.
type Halted struct{}

// Machine is a recording ring0.Machine.
//
// Each call appends one entry to Calls, formatted like the instruction it
// stands for.
type Machine struct {
	mu sync.Spinlock

	// Calls is the instruction log.
	Calls []string

	// FlagsValue is returned by Flags.
	FlagsValue uint32

	// Frames holds every frame passed to Iret.
	Frames []ring0.IretFrame

	// Ports holds the bytes returned by InB, per port. Reads of an empty
	// port return zero.
	Ports map[uint16][]uint8

	// Out holds every byte written with OutB, per port.
	Out map[uint16][]uint8

	// Interrupts tracks EFLAGS.IF.
	Interrupts bool

	// GDTR and IDTR hold the last loaded table registers.
	GDTR, IDTR struct {
		Base  uint32
		Limit uint16
	}
}

func (m *Machine) record(format string, v ...any) {
	m.mu.Lock()
	m.Calls = append(m.Calls, fmt.Sprintf(format, v...))
	m.mu.Unlock()
}

// LoadGDT implements ring0.Machine.LoadGDT.
func (m *Machine) LoadGDT(base uint32, limit uint16) {
	m.GDTR.Base, m.GDTR.Limit = base, limit
	m.record("lgdt %d", limit)
}

// EnableProtectedMode implements ring0.Machine.EnableProtectedMode.
func (m *Machine) EnableProtectedMode() {
	m.record("cr0.pe")
}

// ReloadCodeSegment implements ring0.Machine.ReloadCodeSegment.
func (m *Machine) ReloadCodeSegment(cs ring0.Selector) {
	m.record("cs %v", cs)
}

// ReloadDataSegments implements ring0.Machine.ReloadDataSegments.
func (m *Machine) ReloadDataSegments(ds ring0.Selector) {
	m.record("ds/es/fs/gs/ss %v", ds)
}

// LoadUserDataSegments implements ring0.Machine.LoadUserDataSegments.
func (m *Machine) LoadUserDataSegments(ds ring0.Selector) {
	m.record("ds/es/fs/gs %v", ds)
}

// LoadTaskRegister implements ring0.Machine.LoadTaskRegister.
func (m *Machine) LoadTaskRegister(tr ring0.Selector) {
	m.record("ltr %v", tr)
}

// LoadIDT implements ring0.Machine.LoadIDT.
func (m *Machine) LoadIDT(base uint32, limit uint16) {
	m.IDTR.Base, m.IDTR.Limit = base, limit
	m.record("lidt %d", limit)
}

// EnableInterrupts implements ring0.Machine.EnableInterrupts.
func (m *Machine) EnableInterrupts() {
	m.Interrupts = true
	m.record("sti")
}

// DisableInterrupts implements ring0.Machine.DisableInterrupts.
func (m *Machine) DisableInterrupts() {
	m.Interrupts = false
	m.record("cli")
}

// Flags implements ring0.Machine.Flags.
func (m *Machine) Flags() uint32 {
	return m.FlagsValue
}

// Halt implements ring0.Machine.Halt. It panics with Halted.
func (m *Machine) Halt() {
	m.record("hlt")
	panic(Halted{})
}

// Iret implements ring0.Machine.Iret.
func (m *Machine) Iret(frame *ring0.IretFrame) {
	m.mu.Lock()
	m.Frames = append(m.Frames, *frame)
	m.mu.Unlock()
	m.record("iret")
}

// OutB implements ring0.Machine.OutB.
func (m *Machine) OutB(port uint16, v uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Out == nil {
		m.Out = make(map[uint16][]uint8)
	}
	m.Out[port] = append(m.Out[port], v)
}

// InB implements ring0.Machine.InB.
func (m *Machine) InB(port uint16) uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.Ports[port]
	if len(q) == 0 {
		return 0
	}
	m.Ports[port] = q[1:]
	return q[0]
}

// Feed queues bytes to be returned by InB on port.
func (m *Machine) Feed(port uint16, v ...uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Ports == nil {
		m.Ports = make(map[uint16][]uint8)
	}
	m.Ports[port] = append(m.Ports[port], v...)
}

// Reset clears the instruction log.
func (m *Machine) Reset() {
	m.mu.Lock()
	m.Calls = nil
	m.mu.Unlock()
}

// CatchHalt runs fn and reports whether it halted.
func CatchHalt(fn func()) (halted bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(Halted); !ok {
				panic(r)
			}
			halted = true
		}
	}()
	fn()
	return false
}

var _ ring0.Machine = (*Machine)(nil)
