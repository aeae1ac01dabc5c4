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

// Package syscalls is the interface from the user program to the kernel.
//
// Every syscall takes its number in EAX and up to three arguments in EBX,
// ECX and EDX, and returns one value in EAX. Any failure is reported as
// kernel.Sentinel; there are no error codes.
//
// Pointer arguments are not checked against what the user program owns. The
// address space is flat and shared with the kernel, so a syscall may be made
// to read or write kernel memory. Only the bounds of the backing memory are
// enforced.
package syscalls

import (
	"redk.dev/redk/pkg/kernel"
)

// Syscall numbers.
const (
	SysWrite     = 1
	SysGetKey    = 3
	SysGetTick   = 4
	SysOpen      = 5
	SysRead      = 6
	SysSeek      = 7
	SysClose     = 8
	SysPlaySound = 11
)

// ABI is the syscall table of the kernel.
var ABI = &kernel.SyscallTable{
	Name: "redk",
	Table: map[uint32]kernel.Syscall{
		SysWrite: {
			Name: "write",
			Fn:   Write,
			Args: []string{"ptr", "len"},
			Note: "bytes written",
		},
		SysGetKey: {
			Name: "getkey",
			Fn:   GetKey,
			Note: "oldest scan code; sentinel when none is buffered",
		},
		SysGetTick: {
			Name: "gettick",
			Fn:   GetTick,
			Note: "milliseconds since boot",
		},
		SysOpen: {
			Name: "open",
			Fn:   Open,
			Args: []string{"path", "flags"},
			Note: "lowest free descriptor; flags are ignored",
		},
		SysRead: {
			Name: "read",
			Fn:   Read,
			Args: []string{"fd", "buf", "len"},
			Note: "bytes read; 0 at end of file",
		},
		SysSeek: {
			Name: "seek",
			Fn:   Seek,
			Args: []string{"fd", "offset", "whence"},
			Note: "new absolute offset",
		},
		SysClose: {
			Name: "close",
			Fn:   Close,
			Args: []string{"fd"},
			Note: "0",
		},
		SysPlaySound: {
			Name: "playsound",
			Fn:   PlaySound,
			Args: []string{"tones", "repeat"},
			Note: "0; tones are {frequency, duration} pairs ending with a zero frequency",
		},
	},
}
