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

package usermem

import (
	"unsafe"

	"redk.dev/redk/pkg/hostarch"
)

// FlatIO accesses the identity-mapped physical address space directly. It is
// only meaningful on the kernel itself, where user pointers are physical
// addresses and there is no paging.
//
// No ownership check is done: a user pointer may name kernel memory.
type FlatIO struct{}

// CopyOut implements IO.CopyOut.
func (FlatIO) CopyOut(addr hostarch.Addr, src []byte) (int, error) {
	dst, err := flatSlice(addr, len(src))
	if err != nil {
		return 0, err
	}
	return copy(dst, src), nil
}

// CopyIn implements IO.CopyIn.
func (FlatIO) CopyIn(addr hostarch.Addr, dst []byte) (int, error) {
	src, err := flatSlice(addr, len(dst))
	if err != nil {
		return 0, err
	}
	return copy(dst, src), nil
}

// ZeroOut implements IO.ZeroOut.
func (FlatIO) ZeroOut(addr hostarch.Addr, toZero int64) (int64, error) {
	dst, err := flatSlice(addr, int(toZero))
	if err != nil {
		return 0, err
	}
	clear(dst)
	return toZero, nil
}

func flatSlice(addr hostarch.Addr, length int) ([]byte, error) {
	if length < 0 {
		return nil, ErrInvalidLength
	}
	if length == 0 {
		return nil, nil
	}
	if _, ok := addr.AddLength(uint32(length)); !ok || addr == 0 {
		return nil, ErrFault
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), length), nil
}
