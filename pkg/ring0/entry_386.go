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

//go:build 386

package ring0

// Entry stubs. Each pushes an error code (when the CPU did not) and its
// vector, saves the general registers and calls trap.
func faultStub()
func timerStub()
func keyboardStub()
func syscallStub()

// These return the start address of the functions above.
//
// Go references to assembly functions resolve to an ABIInternal wrapper
// function rather than the function itself. We must reference from assembly
// to get the ABI0 (i.e., primary) address.
func addrOfFaultStub() uintptr
func addrOfTimerStub() uintptr
func addrOfKeyboardStub() uintptr
func addrOfSyscallStub() uintptr

func defaultEntries() map[Vector]uint32 {
	return map[Vector]uint32{
		DivideByZero: uint32(addrOfFaultStub()),
		Timer:        uint32(addrOfTimerStub()),
		Keyboard:     uint32(addrOfKeyboardStub()),
		Syscall:      uint32(addrOfSyscallStub()),
	}
}

// trap is called by the entry stubs.
//
//go:nosplit
func trap(ctx *InterruptContext) {
	Trap(ctx)
}
