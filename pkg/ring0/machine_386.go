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

import (
	"encoding/binary"
)

// pseudoDescriptor is the 6-byte operand of lgdt and lidt.
type pseudoDescriptor [6]byte

func makePseudoDescriptor(base uint32, limit uint16) pseudoDescriptor {
	var p pseudoDescriptor
	binary.LittleEndian.PutUint16(p[0:], limit)
	binary.LittleEndian.PutUint32(p[2:], base)
	return p
}

// Assembly helpers.
func lgdt(p *pseudoDescriptor)
func lidt(p *pseudoDescriptor)
func ltr(sel uint16)
func enablePE()
func reloadCS(sel uint32)
func reloadDS(sel uint16)
func reloadUserDS(sel uint16)
func cli()
func sti()
func hlt()
func readFlags() uint32
func iret(frame *IretFrame)
func outb(port uint16, v uint8)
func inb(port uint16) uint8

// HardwareMachine is the Machine of a real CPU.
type HardwareMachine struct{}

// LoadGDT implements Machine.LoadGDT.
func (HardwareMachine) LoadGDT(base uint32, limit uint16) {
	p := makePseudoDescriptor(base, limit)
	lgdt(&p)
}

// EnableProtectedMode implements Machine.EnableProtectedMode.
func (HardwareMachine) EnableProtectedMode() {
	enablePE()
}

// ReloadCodeSegment implements Machine.ReloadCodeSegment.
func (HardwareMachine) ReloadCodeSegment(cs Selector) {
	reloadCS(uint32(cs))
}

// ReloadDataSegments implements Machine.ReloadDataSegments.
func (HardwareMachine) ReloadDataSegments(ds Selector) {
	reloadDS(uint16(ds))
}

// LoadUserDataSegments implements Machine.LoadUserDataSegments.
func (HardwareMachine) LoadUserDataSegments(ds Selector) {
	reloadUserDS(uint16(ds))
}

// LoadTaskRegister implements Machine.LoadTaskRegister.
func (HardwareMachine) LoadTaskRegister(tr Selector) {
	ltr(uint16(tr))
}

// LoadIDT implements Machine.LoadIDT.
func (HardwareMachine) LoadIDT(base uint32, limit uint16) {
	p := makePseudoDescriptor(base, limit)
	lidt(&p)
}

// EnableInterrupts implements Machine.EnableInterrupts.
func (HardwareMachine) EnableInterrupts() {
	sti()
}

// DisableInterrupts implements Machine.DisableInterrupts.
func (HardwareMachine) DisableInterrupts() {
	cli()
}

// Flags implements Machine.Flags.
func (HardwareMachine) Flags() uint32 {
	return readFlags()
}

// Halt implements Machine.Halt.
func (HardwareMachine) Halt() {
	hlt()
}

// Iret implements Machine.Iret.
func (HardwareMachine) Iret(frame *IretFrame) {
	iret(frame)
}

// OutB implements Machine.OutB.
func (HardwareMachine) OutB(port uint16, v uint8) {
	outb(port, v)
}

// InB implements Machine.InB.
func (HardwareMachine) InB(port uint16) uint8 {
	return inb(port)
}
