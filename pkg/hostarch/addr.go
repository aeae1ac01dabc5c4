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

// Package hostarch contains address and access types for the 32-bit flat
// address space the kernel and its single user program share.
package hostarch

import "fmt"

const (
	// PageShift is the binary log of the x86 page size.
	PageShift = 12

	// PageSize is the x86 page size.
	PageSize = 1 << PageShift
)

// Addr represents an address in the flat 32-bit address space.
type Addr uint32

// AddLength adds the given length to start and returns the result. ok is true
// iff adding the length did not overflow.
func (v Addr) AddLength(length uint32) (end Addr, ok bool) {
	end = v + Addr(length)
	ok = end >= v
	return
}

// RoundDown returns the address rounded down to the nearest page boundary.
func (v Addr) RoundDown() Addr {
	return v & ^Addr(PageSize-1)
}

// RoundUp returns the address rounded up to the nearest page boundary. ok is
// true iff rounding up did not wrap around.
func (v Addr) RoundUp() (addr Addr, ok bool) {
	return v.AlignUp(PageSize)
}

// AlignDown returns the address rounded down to a multiple of align.
//
// Preconditions: align is a power of two.
func (v Addr) AlignDown(align uint32) Addr {
	return v & ^Addr(align-1)
}

// AlignUp returns the address rounded up to a multiple of align. ok is true
// iff rounding up did not wrap around.
//
// Preconditions: align is a power of two.
func (v Addr) AlignUp(align uint32) (addr Addr, ok bool) {
	addr = Addr(v + Addr(align) - 1).AlignDown(align)
	ok = addr >= v
	return
}

// IsAligned reports whether v is a multiple of align.
func (v Addr) IsAligned(align uint32) bool {
	return v&Addr(align-1) == 0
}

// PageOffset returns the offset of v into the current page.
func (v Addr) PageOffset() uint32 {
	return uint32(v & Addr(PageSize-1))
}

// IsPageAligned returns true if v.PageOffset() == 0.
func (v Addr) IsPageAligned() bool {
	return v.PageOffset() == 0
}

// ToRange returns [v, v+length).
func (v Addr) ToRange(length uint32) (AddrRange, bool) {
	end, ok := v.AddLength(length)
	return AddrRange{v, end}, ok
}

// String implements fmt.Stringer.String.
func (v Addr) String() string {
	return fmt.Sprintf("%#08x", uint32(v))
}

// IsPowerOfTwo reports whether x is a non-zero power of two.
func IsPowerOfTwo(x uint32) bool {
	return x != 0 && x&(x-1) == 0
}
