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

package loader

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"

	"redk.dev/redk/pkg/hostarch"
)

// ErrNotExecutable is returned for ELF files this kernel cannot run.
var ErrNotExecutable = errors.New("not an i386 executable")

// ELF is an Object parsed from an ELF file.
type ELF struct {
	entry    hostarch.Addr
	segments []Segment
}

// Entry implements Object.Entry.
func (e *ELF) Entry() hostarch.Addr {
	return e.entry
}

// Segments implements Object.Segments.
func (e *ELF) Segments() []Segment {
	return e.segments
}

// Open parses the ELF headers read from r.
//
// Only little-endian ELF32 executables for EM_386 are accepted. PT_LOAD
// program headers become segments; all others are ignored.
func Open(r io.ReaderAt) (*ELF, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("parsing ELF header: %w", err)
	}
	defer f.Close()

	switch {
	case f.Class != elf.ELFCLASS32:
		return nil, fmt.Errorf("class %v: %w", f.Class, ErrNotExecutable)
	case f.Data != elf.ELFDATA2LSB:
		return nil, fmt.Errorf("data encoding %v: %w", f.Data, ErrNotExecutable)
	case f.Machine != elf.EM_386:
		return nil, fmt.Errorf("machine %v: %w", f.Machine, ErrNotExecutable)
	case f.Type != elf.ET_EXEC:
		return nil, fmt.Errorf("type %v: %w", f.Type, ErrNotExecutable)
	}

	e := &ELF{entry: hostarch.Addr(f.Entry)}
	for i, p := range f.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		if p.Filesz > p.Memsz {
			return nil, fmt.Errorf("program header %d: filesz %#x > memsz %#x: %w", i, p.Filesz, p.Memsz, ErrBadSegment)
		}
		// ELF32 fields are 32 bits wide on disk.
		e.segments = append(e.segments, Segment{
			Offset: uint32(p.Off),
			Vaddr:  hostarch.Addr(p.Vaddr),
			Filesz: uint32(p.Filesz),
			Memsz:  uint32(p.Memsz),
			Align:  uint32(p.Align),
			Perms:  progPerms(p.Flags),
		})
	}
	if len(e.segments) == 0 {
		return nil, ErrNoSegments
	}
	return e, nil
}

// OpenFile is Open for sources that may only support sequential reads.
func OpenFile(rs io.ReadSeeker) (*ELF, error) {
	if ra, ok := rs.(io.ReaderAt); ok {
		return Open(ra)
	}
	return Open(&seekReaderAt{rs: rs})
}

func progPerms(f elf.ProgFlag) hostarch.AccessType {
	return hostarch.AccessType{
		Read:    f&elf.PF_R != 0,
		Write:   f&elf.PF_W != 0,
		Execute: f&elf.PF_X != 0,
	}
}

// seekReaderAt implements io.ReaderAt over an io.ReadSeeker. It moves the
// cursor of the underlying reader.
type seekReaderAt struct {
	rs io.ReadSeeker
}

// ReadAt implements io.ReaderAt.ReadAt.
func (s *seekReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if _, err := s.rs.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	n, err := io.ReadFull(s.rs, p)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}
