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

package usermem

import (
	"redk.dev/redk/pkg/hostarch"
)

// BytesIO implements IO using a byte slice. Addresses are translated to
// offsets in Bytes by subtracting Base.
type BytesIO struct {
	Bytes []byte
	Base  hostarch.Addr
}

// NewBytesIO returns a zeroed BytesIO of size bytes whose first byte lives at
// base.
func NewBytesIO(base hostarch.Addr, size int) *BytesIO {
	return &BytesIO{Bytes: make([]byte, size), Base: base}
}

// Range returns the address range backed by b.
func (b *BytesIO) Range() hostarch.AddrRange {
	return hostarch.AddrRange{Start: b.Base, End: b.Base + hostarch.Addr(len(b.Bytes))}
}

// CopyOut implements IO.CopyOut.
func (b *BytesIO) CopyOut(addr hostarch.Addr, src []byte) (int, error) {
	off, rngN, rngErr := b.rangeCheck(addr, len(src))
	if rngN == 0 {
		return 0, rngErr
	}
	return copy(b.Bytes[off:], src[:rngN]), rngErr
}

// CopyIn implements IO.CopyIn.
func (b *BytesIO) CopyIn(addr hostarch.Addr, dst []byte) (int, error) {
	off, rngN, rngErr := b.rangeCheck(addr, len(dst))
	if rngN == 0 {
		return 0, rngErr
	}
	return copy(dst[:rngN], b.Bytes[off:]), rngErr
}

// ZeroOut implements IO.ZeroOut.
func (b *BytesIO) ZeroOut(addr hostarch.Addr, toZero int64) (int64, error) {
	if toZero > int64(len(b.Bytes)) {
		toZero = int64(len(b.Bytes)) + 1
	}
	off, rngN, rngErr := b.rangeCheck(addr, int(toZero))
	if rngN == 0 {
		return 0, rngErr
	}
	clear(b.Bytes[off : off+rngN])
	return int64(rngN), rngErr
}

// rangeCheck returns the offset of addr in b.Bytes and the length of the
// accessible prefix of [addr, addr+length).
func (b *BytesIO) rangeCheck(addr hostarch.Addr, length int) (off, n int, err error) {
	if length == 0 {
		return 0, 0, nil
	}
	if length < 0 {
		return 0, 0, ErrInvalidLength
	}
	size := hostarch.Addr(len(b.Bytes))
	if addr < b.Base || addr-b.Base >= size {
		return 0, 0, ErrFault
	}
	off = int(addr - b.Base)
	if avail := int(size) - off; length > avail {
		return off, avail, ErrFault
	}
	return off, length, nil
}
