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

// Package ring0 holds the privilege-transition machinery of the kernel: the
// segment descriptor table, the single task state block, the interrupt
// descriptor table and the return to ring 3.
//
// Everything here is plain data except the CPU instructions themselves,
// which are issued through a Machine.
package ring0

import (
	"fmt"
)

// Selector is a segment Selector.
type Selector uint16

// Index returns the descriptor table index of the selector.
func (s Selector) Index() int {
	return int(s >> 3)
}

// RPL returns the requested privilege level of the selector.
func (s Selector) RPL() int {
	return int(s & 3)
}

// String implements fmt.Stringer.String.
func (s Selector) String() string {
	return fmt.Sprintf("%#04x", uint16(s))
}

// Segment indices.
const (
	segNull  = iota // Null descriptor first.
	segKcode        // Kernel code.
	segKdata        // Kernel data.
	segUcode        // User code.
	segUdata        // User data.
	segTss          // Task segment descriptor.
	segLast         // Last segment (terminal, not included).
)

// Selectors.
const (
	Kcode Selector = segKcode << 3
	Kdata Selector = segKdata << 3
	Ucode Selector = (segUcode << 3) | 3
	Udata Selector = (segUdata << 3) | 3
	Tss   Selector = segTss << 3
)

// SelectorOf returns the ring 0 selector for descriptor table index i.
func SelectorOf(i int) Selector {
	return Selector(i << 3)
}

// SegmentDescriptorFlags are flags for segment descriptors, expressed as
// bits of the upper word of the descriptor.
type SegmentDescriptorFlags uint32

// SegmentDescriptorFlag declarations.
const (
	SegmentDescriptorAccess     SegmentDescriptorFlags = 1 << 8  // Access bit.
	SegmentDescriptorWrite                             = 1 << 9  // Write permission (read for code).
	SegmentDescriptorExpandDown                        = 1 << 10 // Grows down, not used.
	SegmentDescriptorExecute                           = 1 << 11 // Execute permission.
	SegmentDescriptorSystem                            = 1 << 12 // Zero => system, 1 => user code/data.
	SegmentDescriptorPresent                           = 1 << 15 // Present.
	SegmentDescriptorAVL                               = 1 << 20 // Available.
	SegmentDescriptorLong                              = 1 << 21 // Long mode.
	SegmentDescriptorDB                                = 1 << 22 // 16 or 32-bit.
	SegmentDescriptorG                                 = 1 << 23 // Granularity: page or byte.
)

// SegmentDescriptor is a segment descriptor, in the exact 8-byte format the
// CPU reads from the descriptor table.
type SegmentDescriptor struct {
	bits [2]uint32
}

// descriptorTable is the kernel's segment descriptor table.
type descriptorTable [segLast]SegmentDescriptor

// TaskState32 is the 32-bit task state structure. Only SS0 and ESP0 are
// consulted, on every ring 3 to ring 0 transition.
type TaskState32 struct {
	link   uint32
	esp0   uint32
	ss0    uint32
	esp1   uint32
	ss1    uint32
	esp2   uint32
	ss2    uint32
	cr3    uint32
	eip    uint32
	eflags uint32
	eax    uint32
	ecx    uint32
	edx    uint32
	ebx    uint32
	esp    uint32
	ebp    uint32
	esi    uint32
	edi    uint32
	es     uint32
	cs     uint32
	ss     uint32
	ds     uint32
	fs     uint32
	gs     uint32
	ldt    uint32
	trap   uint16
	ioPerm uint16
}

// ESP0 returns the ring 0 stack pointer.
func (t *TaskState32) ESP0() uint32 {
	return t.esp0
}

// SS0 returns the ring 0 stack segment.
func (t *TaskState32) SS0() Selector {
	return Selector(t.ss0)
}

// IOPermBase returns the offset of the I/O permission bitmap.
func (t *TaskState32) IOPermBase() uint16 {
	return t.ioPerm
}

// EFLAGS bits.
const (
	_EFLAGS_RESERVED = 1 << 1
	_EFLAGS_STEP     = 1 << 8
	_EFLAGS_IF       = 1 << 9
	_EFLAGS_DF       = 1 << 10
	_EFLAGS_IOPL     = 3 << 12
	_EFLAGS_NT       = 1 << 14
	_EFLAGS_AC       = 1 << 18

	_CR0_PE = 1 << 0
)

const (
	// KernelFlagsSet should always be set in the kernel.
	KernelFlagsSet = _EFLAGS_RESERVED

	// UserFlagsSet are always set in userspace.
	UserFlagsSet = _EFLAGS_RESERVED | _EFLAGS_IF

	// KernelFlagsClear should always be clear in the kernel.
	KernelFlagsClear = _EFLAGS_STEP | _EFLAGS_IF | _EFLAGS_IOPL | _EFLAGS_AC | _EFLAGS_NT

	// UserFlagsClear are always cleared in userspace.
	UserFlagsClear = _EFLAGS_NT | _EFLAGS_IOPL
)

// Vector is an interrupt vector.
type Vector uint32

// Interrupt vectors. The hardware interrupt controller is remapped so that
// IRQ 0 arrives at Timer.
const (
	DivideByZero Vector = 0
	Timer        Vector = 64
	Keyboard     Vector = 65
	Syscall      Vector = 128

	_NR_INTERRUPTS = 256
)

// String implements fmt.Stringer.String.
func (v Vector) String() string {
	switch v {
	case DivideByZero:
		return "DivideByZero"
	case Timer:
		return "Timer"
	case Keyboard:
		return "Keyboard"
	case Syscall:
		return "Syscall"
	default:
		return fmt.Sprintf("Vector(%d)", uint32(v))
	}
}

// Gate32 is a 32-bit interrupt gate.
type Gate32 struct {
	bits [2]uint32
}

// IDT is the interrupt descriptor table. Absent vectors are all-zero, which
// the CPU reads as not present.
type IDT [_NR_INTERRUPTS]Gate32

// InterruptContext is the register state saved by the entry stubs, in the
// order they push it: the general registers in pushal order, then the vector
// and error code, then the frame the CPU pushed.
//
// EAX carries the syscall number in and the result out.
type InterruptContext struct {
	EDI       uint32
	ESI       uint32
	EBP       uint32
	ESP       uint32
	EBX       uint32
	EDX       uint32
	ECX       uint32
	EAX       uint32
	Vector    Vector
	ErrorCode uint32

	EIP    uint32
	CS     uint32
	EFLAGS uint32

	// UserESP and UserSS are only pushed on a ring 3 to ring 0 transition.
	UserESP uint32
	UserSS  uint32
}

// FromUser reports whether the interrupted code ran in ring 3.
func (c *InterruptContext) FromUser() bool {
	return c.CS&3 == 3
}

// String implements fmt.Stringer.String.
func (c *InterruptContext) String() string {
	return fmt.Sprintf("vector=%v err=%#x eip=%#08x cs=%#04x eflags=%#08x eax=%#08x ebx=%#08x ecx=%#08x edx=%#08x esi=%#08x edi=%#08x ebp=%#08x esp=%#08x",
		c.Vector, c.ErrorCode, c.EIP, c.CS, c.EFLAGS, c.EAX, c.EBX, c.ECX, c.EDX, c.ESI, c.EDI, c.EBP, c.ESP)
}

// IretFrame is the stack frame consumed by iret, in the order the CPU pops
// it.
type IretFrame struct {
	EIP    uint32
	CS     uint32
	EFLAGS uint32
	ESP    uint32
	SS     uint32
}
