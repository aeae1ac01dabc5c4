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

// Package loadertest builds small executables for tests.
package loadertest

import (
	"debug/elf"
	"encoding/binary"
)

const (
	ehdrSize = 52
	phdrSize = 32

	// PayloadOffset is the file offset of the payload passed to Build.
	PayloadOffset = 0x100
)

// Prog is an ELF32 program header.
type Prog struct {
	Type   elf.ProgType
	Off    uint32
	Vaddr  uint32
	Filesz uint32
	Memsz  uint32
	Flags  elf.ProgFlag
	Align  uint32
}

// Build returns a little-endian ELF32 file of type typ for machine with the
// given program headers, followed by payload at PayloadOffset. At most six
// program headers fit before the payload.
func Build(typ elf.Type, machine elf.Machine, entry uint32, progs []Prog, payload []byte) []byte {
	b := make([]byte, PayloadOffset, PayloadOffset+len(payload))
	copy(b, []byte{0x7f, 'E', 'L', 'F', byte(elf.ELFCLASS32), byte(elf.ELFDATA2LSB), byte(elf.EV_CURRENT)})
	le := binary.LittleEndian
	le.PutUint16(b[16:], uint16(typ))
	le.PutUint16(b[18:], uint16(machine))
	le.PutUint32(b[20:], uint32(elf.EV_CURRENT))
	le.PutUint32(b[24:], entry)
	le.PutUint32(b[28:], ehdrSize) // e_phoff
	le.PutUint16(b[40:], ehdrSize)
	le.PutUint16(b[42:], phdrSize)
	le.PutUint16(b[44:], uint16(len(progs)))
	le.PutUint16(b[46:], 40)
	for i, p := range progs {
		ph := b[ehdrSize+i*phdrSize:]
		le.PutUint32(ph[0:], uint32(p.Type))
		le.PutUint32(ph[4:], p.Off)
		le.PutUint32(ph[8:], p.Vaddr)
		le.PutUint32(ph[12:], p.Vaddr)
		le.PutUint32(ph[16:], p.Filesz)
		le.PutUint32(ph[20:], p.Memsz)
		le.PutUint32(ph[24:], uint32(p.Flags))
		le.PutUint32(ph[28:], p.Align)
	}
	return append(b, payload...)
}

// Executable returns an i386 executable with a single read-execute segment
// holding text at address 0, followed by bss bytes of zeroes. The entry point
// is the start of text.
func Executable(text []byte, bss uint32) []byte {
	n := uint32(len(text))
	return Build(elf.ET_EXEC, elf.EM_386, 0, []Prog{{
		Type:   elf.PT_LOAD,
		Off:    PayloadOffset,
		Filesz: n,
		Memsz:  n + bss,
		Flags:  elf.PF_R | elf.PF_X,
		Align:  0x1000,
	}}, text)
}
