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

// Package loader loads an executable image into memory obtained from an
// allocator.
//
// Images are statically linked ELF32 i386 executables. Loadable segments are
// placed relative to a single allocation; nothing is relocated and there is
// no interpreter.
package loader

import (
	"errors"
	"fmt"
	"io"

	"redk.dev/redk/pkg/hostarch"
	"redk.dev/redk/pkg/kalloc"
	"redk.dev/redk/pkg/log"
	"redk.dev/redk/pkg/usermem"
)

var (
	// ErrNoSegments is returned for objects without loadable segments.
	ErrNoSegments = errors.New("no loadable segments")

	// ErrBadSegment is returned for segments that cannot be placed.
	ErrBadSegment = errors.New("malformed segment")
)

// Segment is a loadable segment.
type Segment struct {
	// Offset is the position of the segment contents in the source.
	Offset uint32

	// Vaddr is the position of the segment relative to the image base.
	Vaddr hostarch.Addr

	// Filesz is the number of bytes copied from the source.
	Filesz uint32

	// Memsz is the size of the segment in memory. Bytes past Filesz are
	// zeroed.
	Memsz uint32

	// Align is the required alignment. Zero and one mean none.
	Align uint32

	// Perms are the requested permissions. Without paging they are only
	// reported.
	Perms hostarch.AccessType
}

// End returns Vaddr + Memsz.
func (s Segment) End() (hostarch.Addr, bool) {
	return s.Vaddr.AddLength(s.Memsz)
}

// Object is a parsed executable.
type Object interface {
	// Entry is the entry point relative to the image base.
	Entry() hostarch.Addr

	// Segments returns the loadable segments.
	Segments() []Segment
}

// Mapping is a range written by Load.
type Mapping struct {
	Addr hostarch.Addr
	Size uint32
}

// LoadedImage describes a loaded executable.
type LoadedImage struct {
	// Base is the start of the allocation holding the image.
	Base hostarch.Addr

	// Size is the size of the allocation.
	Size uint32

	// Entry is the absolute entry point.
	Entry hostarch.Addr

	// Mappings holds one entry per loaded segment, in object order.
	Mappings []Mapping
}

// layout computes the allocation needed to hold every segment of obj.
func layout(obj Object) (kalloc.Layout, error) {
	segs := obj.Segments()
	if len(segs) == 0 {
		return kalloc.Layout{}, ErrNoSegments
	}
	l := kalloc.Layout{Align: 1}
	for i, s := range segs {
		if s.Filesz > s.Memsz {
			return kalloc.Layout{}, fmt.Errorf("segment %d: filesz %#x > memsz %#x: %w", i, s.Filesz, s.Memsz, ErrBadSegment)
		}
		end, ok := s.End()
		if !ok {
			return kalloc.Layout{}, fmt.Errorf("segment %d: %v + %#x overflows: %w", i, s.Vaddr, s.Memsz, ErrBadSegment)
		}
		if s.Align > 1 && !hostarch.IsPowerOfTwo(s.Align) {
			return kalloc.Layout{}, fmt.Errorf("segment %d: alignment %#x: %w", i, s.Align, ErrBadSegment)
		}
		l.Size = max(l.Size, uint32(end))
		l.Align = max(l.Align, s.Align)
	}
	if l.Size == 0 {
		return kalloc.Layout{}, ErrNoSegments
	}
	return l, nil
}

// Load copies the segments of obj from src into memory allocated from a.
//
// All segments share one allocation spanning the highest segment end. On
// failure the allocation is released.
func Load(obj Object, src io.ReadSeeker, a kalloc.Allocator, mem usermem.IO) (LoadedImage, error) {
	l, err := layout(obj)
	if err != nil {
		return LoadedImage{}, err
	}
	base, err := a.Alloc(l.Size, l.Align)
	if err != nil {
		return LoadedImage{}, fmt.Errorf("allocating %#x bytes aligned to %#x: %w", l.Size, l.Align, err)
	}

	img := LoadedImage{
		Base:  base,
		Size:  l.Size,
		Entry: base + obj.Entry(),
	}
	for i, s := range obj.Segments() {
		m, err := loadSegment(s, base, src, mem)
		if err != nil {
			a.Dealloc(base, l)
			return LoadedImage{}, fmt.Errorf("segment %d: %w", i, err)
		}
		log.Debugf("Loaded segment %d at %v, %#x bytes (%#x from file), %v", i, m.Addr, m.Size, s.Filesz, s.Perms)
		img.Mappings = append(img.Mappings, m)
	}
	return img, nil
}

func loadSegment(s Segment, base hostarch.Addr, src io.ReadSeeker, mem usermem.IO) (Mapping, error) {
	addr := base + s.Vaddr
	if _, err := src.Seek(int64(s.Offset), io.SeekStart); err != nil {
		return Mapping{}, fmt.Errorf("seeking to %#x: %w", s.Offset, err)
	}

	w := &usermem.IOReadWriter{IO: mem, Addr: addr}
	if n, err := io.CopyN(w, src, int64(s.Filesz)); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Mapping{}, fmt.Errorf("copying %#x bytes to %v, got %#x: %w", s.Filesz, addr, n, err)
	}

	if bss := s.Memsz - s.Filesz; bss > 0 {
		if _, err := mem.ZeroOut(w.Addr, int64(bss)); err != nil {
			return Mapping{}, fmt.Errorf("zeroing %#x bytes at %v: %w", bss, w.Addr, err)
		}
	}
	return Mapping{Addr: addr, Size: s.Memsz}, nil
}
