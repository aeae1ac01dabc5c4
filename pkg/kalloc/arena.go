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

// Package kalloc provides the kernel's memory allocator.
//
// There is no paging: an allocation is a range of the flat address space,
// handed out once and owned by the caller until it is returned.
package kalloc

import (
	"errors"
	"fmt"

	"github.com/google/btree"

	"redk.dev/redk/pkg/hostarch"
	"redk.dev/redk/pkg/log"
	"redk.dev/redk/pkg/sync"
)

var (
	// ErrNoMemory is returned when no free range can satisfy a request.
	ErrNoMemory = errors.New("out of memory")

	// ErrBadAlignment is returned for alignments that are not a power of
	// two.
	ErrBadAlignment = errors.New("alignment is not a power of two")
)

// Layout describes an allocation.
type Layout struct {
	Size  uint32
	Align uint32
}

// Allocator hands out ranges of the address space.
type Allocator interface {
	// Alloc returns the start of a free range of size bytes aligned to
	// align.
	Alloc(size, align uint32) (hostarch.Addr, error)

	// Dealloc returns a range obtained from Alloc with layout l.
	Dealloc(addr hostarch.Addr, l Layout)
}

// Arena is a first-fit Allocator over a fixed range. Free ranges are kept
// ordered by address and coalesced on release.
type Arena struct {
	mu sync.Spinlock

	// bounds is the managed range.
	bounds hostarch.AddrRange

	// free holds disjoint, non-adjacent free ranges.
	free *btree.BTreeG[hostarch.AddrRange]

	// used is the number of allocated bytes.
	used uint32
}

// degree is the btree degree. The free list stays small.
const degree = 8

func lessRange(a, b hostarch.AddrRange) bool {
	return a.Start < b.Start
}

// NewArena returns an Arena managing r.
func NewArena(r hostarch.AddrRange) *Arena {
	a := &Arena{
		bounds: r,
		free:   btree.NewG(degree, lessRange),
	}
	if r.Length() > 0 {
		a.free.ReplaceOrInsert(r)
	}
	return a
}

// Bounds returns the managed range.
func (a *Arena) Bounds() hostarch.AddrRange {
	return a.bounds
}

// Alloc implements Allocator.Alloc. A zero size is treated as one byte and a
// zero alignment as one.
func (a *Arena) Alloc(size, align uint32) (hostarch.Addr, error) {
	if size == 0 {
		size = 1
	}
	if align == 0 {
		align = 1
	}
	if !hostarch.IsPowerOfTwo(align) {
		return 0, fmt.Errorf("allocating %d bytes aligned to %d: %w", size, align, ErrBadAlignment)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var (
		found bool
		hole  hostarch.AddrRange
		start hostarch.Addr
	)
	a.free.Ascend(func(r hostarch.AddrRange) bool {
		s, ok := r.Start.AlignUp(align)
		if !ok || s >= r.End {
			return true
		}
		if r.End-s < hostarch.Addr(size) {
			return true
		}
		found, hole, start = true, r, s
		return false
	})
	if !found {
		return 0, fmt.Errorf("allocating %d bytes aligned to %d: %w", size, align, ErrNoMemory)
	}

	a.free.Delete(hole)
	if start > hole.Start {
		a.free.ReplaceOrInsert(hostarch.AddrRange{Start: hole.Start, End: start})
	}
	if end := start + hostarch.Addr(size); end < hole.End {
		a.free.ReplaceOrInsert(hostarch.AddrRange{Start: end, End: hole.End})
	}
	a.used += size
	return start, nil
}

// Dealloc implements Allocator.Dealloc. Ranges outside the arena or
// overlapping free memory are logged and ignored.
func (a *Arena) Dealloc(addr hostarch.Addr, l Layout) {
	size := l.Size
	if size == 0 {
		size = 1
	}
	r, ok := addr.ToRange(size)
	if !ok || !a.bounds.IsSupersetOf(r) {
		log.Warningf("kalloc: dealloc of %v outside arena %v", r, a.bounds)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var (
		prev, next       hostarch.AddrRange
		hasPrev, hasNext bool
	)
	a.free.DescendLessOrEqual(r, func(p hostarch.AddrRange) bool {
		prev, hasPrev = p, true
		return false
	})
	a.free.AscendGreaterOrEqual(r, func(n hostarch.AddrRange) bool {
		next, hasNext = n, true
		return false
	})
	if (hasPrev && prev.Overlaps(r)) || (hasNext && next.Overlaps(r)) {
		log.Warningf("kalloc: dealloc of %v overlaps free memory", r)
		return
	}

	if hasPrev && prev.End == r.Start {
		a.free.Delete(prev)
		r.Start = prev.Start
	}
	if hasNext && next.Start == r.End {
		a.free.Delete(next)
		r.End = next.End
	}
	a.free.ReplaceOrInsert(r)
	a.used -= size
}

// Used returns the number of allocated bytes.
func (a *Arena) Used() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used
}

// FreeRanges returns the free ranges in address order.
func (a *Arena) FreeRanges() []hostarch.AddrRange {
	a.mu.Lock()
	defer a.mu.Unlock()
	rs := make([]hostarch.AddrRange, 0, a.free.Len())
	a.free.Ascend(func(r hostarch.AddrRange) bool {
		rs = append(rs, r)
		return true
	})
	return rs
}

var _ Allocator = (*Arena)(nil)
