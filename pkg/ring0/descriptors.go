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

// Base returns the descriptor's base linear address.
func (d *SegmentDescriptor) Base() uint32 {
	return d.bits[1]&0xFF000000 | (d.bits[1]&0x000000FF)<<16 | d.bits[0]>>16
}

// Limit returns the descriptor size.
func (d *SegmentDescriptor) Limit() uint32 {
	l := d.bits[0]&0xFFFF | d.bits[1]&0xF0000
	if d.bits[1]&uint32(SegmentDescriptorG) != 0 {
		l <<= 12
		l |= 0xFFF
	}
	return l
}

// RawLimit returns the 20-bit limit field as stored.
func (d *SegmentDescriptor) RawLimit() uint32 {
	return d.bits[0]&0xFFFF | d.bits[1]&0xF0000
}

// Flags returns descriptor flags.
func (d *SegmentDescriptor) Flags() SegmentDescriptorFlags {
	return SegmentDescriptorFlags(d.bits[1] & 0x00F09F00)
}

// Type returns the 4-bit type field.
func (d *SegmentDescriptor) Type() uint8 {
	return uint8((d.bits[1] >> 8) & 0xF)
}

// DPL returns the descriptor privilege level.
func (d *SegmentDescriptor) DPL() int {
	return int((d.bits[1] >> 13) & 3)
}

// Present returns whether the present bit is set.
func (d *SegmentDescriptor) Present() bool {
	return d.bits[1]&uint32(SegmentDescriptorPresent) != 0
}

// Uint64 returns the descriptor as the CPU reads it from memory.
func (d *SegmentDescriptor) Uint64() uint64 {
	return uint64(d.bits[1])<<32 | uint64(d.bits[0])
}

func (d *SegmentDescriptor) setNull() {
	d.bits[0] = 0
	d.bits[1] = 0
}

// set encodes the descriptor. Limits wider than 20 bits switch to page
// granularity.
func (d *SegmentDescriptor) set(base, limit uint32, dpl int, flags SegmentDescriptorFlags) {
	flags |= SegmentDescriptorPresent
	if limit>>20 != 0 {
		limit >>= 12
		flags |= SegmentDescriptorG
	}
	d.bits[0] = base<<16 | limit&0xFFFF
	d.bits[1] = base&0xFF000000 | (base>>16)&0xFF | limit&0x000F0000 | uint32(flags) | uint32(dpl)<<13
}

// setCode32 sets an execute/read 32-bit code segment (type 0xA).
func (d *SegmentDescriptor) setCode32(base, limit uint32, dpl int) {
	d.set(base, limit, dpl,
		SegmentDescriptorDB|
			SegmentDescriptorExecute|
			SegmentDescriptorWrite|
			SegmentDescriptorSystem)
}

// setData sets a read/write 32-bit data segment (type 0x2).
func (d *SegmentDescriptor) setData(base, limit uint32, dpl int) {
	d.set(base, limit, dpl,
		SegmentDescriptorDB|
			SegmentDescriptorWrite|
			SegmentDescriptorSystem)
}

// setTSS sets an available 32-bit TSS descriptor (type 0x9). The limit is
// always byte granular.
func (d *SegmentDescriptor) setTSS(base, limit uint32) {
	d.set(base, limit&0xFFFFF, 0,
		SegmentDescriptorExecute|
			SegmentDescriptorAccess)
}

// gateInterrupt32 is the 32-bit interrupt gate type. Interrupts stay masked
// while the handler runs.
const gateInterrupt32 = 0xE

func (g *Gate32) setInterrupt(cs Selector, eip uint32, dpl int) {
	g.bits[0] = uint32(cs)<<16 | eip&0xFFFF
	g.bits[1] = eip&0xFFFF0000 | uint32(SegmentDescriptorPresent) | uint32(dpl)<<13 | gateInterrupt32<<8
}

// Offset returns the handler entry point.
func (g *Gate32) Offset() uint32 {
	return g.bits[1]&0xFFFF0000 | g.bits[0]&0xFFFF
}

// Selector returns the code segment the handler runs in.
func (g *Gate32) Selector() Selector {
	return Selector(g.bits[0] >> 16)
}

// Type returns the 4-bit gate type.
func (g *Gate32) Type() uint8 {
	return uint8((g.bits[1] >> 8) & 0xF)
}

// DPL returns the most privileged ring allowed to raise the vector with a
// software interrupt.
func (g *Gate32) DPL() int {
	return int((g.bits[1] >> 13) & 3)
}

// Present returns whether the gate is present.
func (g *Gate32) Present() bool {
	return g.bits[1]&uint32(SegmentDescriptorPresent) != 0
}

// Uint64 returns the gate as the CPU reads it from memory.
func (g *Gate32) Uint64() uint64 {
	return uint64(g.bits[1])<<32 | uint64(g.bits[0])
}

// Permits reports whether code running at cpl may raise v with a software
// interrupt. The CPU raises a general protection fault otherwise.
func (t *IDT) Permits(v Vector, cpl int) bool {
	if int(v) >= len(t) {
		return false
	}
	g := &t[v]
	return g.Present() && cpl <= g.DPL()
}

// Present returns the vectors that have a gate installed, in order.
func (t *IDT) Present() []Vector {
	var vs []Vector
	for v := range t {
		if t[v].Present() {
			vs = append(vs, Vector(v))
		}
	}
	return vs
}
