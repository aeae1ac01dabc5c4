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

import (
	"encoding/binary"
)

// KernelOpts has initialization options for the kernel.
type KernelOpts struct {
	// Entries maps each installed vector to its entry stub. If nil, the
	// stubs built into this package are used.
	Entries map[Vector]uint32
}

// Kernel is the descriptor state shared by the whole system: there is one
// CPU and one task state block.
//
// A Kernel must not be copied; the CPU holds the addresses of its tables.
type Kernel struct {
	KernelOpts

	// gdt is the segment descriptor table.
	gdt descriptorTable

	// tss is the task state.
	tss TaskState32

	// idt is the set of interrupt gates.
	idt IDT
}

// New builds the descriptor tables. They are immutable afterwards, except
// for the TSS ring 0 stack set by SwitchToUser.
func New(opts KernelOpts) *Kernel {
	k := &Kernel{KernelOpts: opts}
	if k.Entries == nil {
		k.Entries = defaultEntries()
	}
	k.init()
	return k
}

func (k *Kernel) init() {
	// Null segment.
	k.gdt[segNull].setNull()

	// Flat kernel & user segments.
	k.gdt[segKcode].setCode32(0, 0xFFFFFFFF, 0)
	k.gdt[segKdata].setData(0, 0xFFFFFFFF, 0)
	k.gdt[segUcode].setCode32(0, 0xFFFFFFFF, 3)
	k.gdt[segUdata].setData(0, 0xFFFFFFFF, 3)

	// The task segment.
	tssBase, tssLimit, tssDesc := k.TSS()
	tssDesc.setTSS(tssBase, uint32(tssLimit))

	k.tss.ss0 = uint32(Kdata)

	// Set the I/O bitmap base address beyond the last byte in the TSS
	// to block access to the entire I/O address range.
	k.tss.ioPerm = tssLimit + 1

	// Setup the IDT. Only the syscall gate may be raised from ring 3.
	for v, entry := range k.Entries {
		if int(v) >= len(k.idt) {
			continue
		}
		dpl := 0
		if v == Syscall {
			dpl = 3
		}
		k.idt[v].setInterrupt(Kcode, entry, dpl)
	}
}

// GDT returns the GDT base and limit.
func (k *Kernel) GDT() (uint32, uint16) {
	return kernelAddr(&k.gdt[0]), uint16(8*segLast - 1)
}

// IDT returns the IDT base and limit.
func (k *Kernel) IDT() (uint32, uint16) {
	return kernelAddr(&k.idt[0]), uint16(binary.Size(&k.idt) - 1)
}

// TSS returns the TSS base, limit and descriptor.
func (k *Kernel) TSS() (uint32, uint16, *SegmentDescriptor) {
	return kernelAddr(&k.tss), uint16(binary.Size(&k.tss) - 1), &k.gdt[segTss]
}

// Segments returns a copy of the segment descriptor table.
func (k *Kernel) Segments() []SegmentDescriptor {
	return append([]SegmentDescriptor(nil), k.gdt[:]...)
}

// Gates returns the interrupt descriptor table.
func (k *Kernel) Gates() *IDT {
	return &k.idt
}

// TaskState returns the task state block.
func (k *Kernel) TaskState() *TaskState32 {
	return &k.tss
}

// ActivateSegments makes the descriptor table live. The steps must happen in
// exactly this order: the table must be loaded before protection is enabled,
// and CS must be reloaded before the data segments and the task register.
func (k *Kernel) ActivateSegments(m Machine) {
	base, limit := k.GDT()
	m.LoadGDT(base, limit)
	m.EnableProtectedMode()
	m.ReloadCodeSegment(Kcode)
	m.ReloadDataSegments(Kdata)
	m.LoadTaskRegister(Tss)
}

// ActivateInterrupts installs h as the trap handler and loads the IDT.
// Interrupts are left disabled; the caller enables them once devices are
// programmed.
func (k *Kernel) ActivateInterrupts(m Machine, h Handler) {
	m.DisableInterrupts()
	setTrapHandler(h)
	base, limit := k.IDT()
	m.LoadIDT(base, limit)
}

// SwitchToUser enters ring 3 at entry with the given user stack. Interrupts
// taken from ring 3 will run on kernelStack.
//
// On hardware this does not return.
func (k *Kernel) SwitchToUser(m Machine, entry, stackTop, kernelStack uint32) {
	k.tss.esp0 = kernelStack
	m.LoadUserDataSegments(Udata)

	// Sanitize flags.
	flags := m.Flags()
	flags &^= UserFlagsClear
	flags |= UserFlagsSet

	frame := IretFrame{
		EIP:    entry,
		CS:     uint32(Ucode),
		EFLAGS: flags,
		ESP:    stackTop,
		SS:     uint32(Udata),
	}
	m.Iret(&frame)
}
