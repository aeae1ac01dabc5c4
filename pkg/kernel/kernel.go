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

// Package kernel holds the state of the running system: the descriptor
// table of the single user program, the clock, the keyboard buffer, the
// melody player and the syscall table, plus the interrupt routing between
// them.
package kernel

import (
	"fmt"
	"time"

	"redk.dev/redk/pkg/fs"
	"redk.dev/redk/pkg/log"
	"redk.dev/redk/pkg/ring0"
	"redk.dev/redk/pkg/usermem"
)

const (
	// traceInterval and traceBurst bound the syscall trace rate.
	traceInterval = 10 * time.Millisecond
	traceBurst    = 64
)

// InitKernelArgs holds arguments to Init.
type InitKernelArgs struct {
	// Devices are the hardware collaborators.
	Devices Devices

	// FS is the filesystem OPEN resolves names in.
	FS fs.Filesystem

	// Memory is the address space shared with the user program.
	Memory usermem.IO

	// Machine issues privileged instructions.
	Machine ring0.Machine

	// Syscalls is the syscall table.
	Syscalls *SyscallTable

	// TimerHz is the timer interrupt rate. Zero means DefaultTimerHz.
	TimerHz uint32

	// TraceSyscalls logs every syscall at debug level, rate limited.
	TraceSyscalls bool
}

// Kernel represents the kernel. There is exactly one.
type Kernel struct {
	Devices

	fs       fs.Filesystem
	mem      usermem.IO
	machine  ring0.Machine
	syscalls *SyscallTable

	fdTable    *FDTable
	timekeeper *Timekeeper
	scans      ScanBuffer
	tones      *TonePlayer

	// trace is nil unless syscalls are traced.
	trace log.Logger
}

// Init initializes the Kernel. No user program is loaded and the descriptor
// table is empty.
func (k *Kernel) Init(args InitKernelArgs) error {
	if args.Machine == nil {
		return fmt.Errorf("args.Machine is nil")
	}
	if args.Memory == nil {
		return fmt.Errorf("args.Memory is nil")
	}
	if args.Syscalls == nil {
		return fmt.Errorf("args.Syscalls is nil")
	}
	if args.FS == nil {
		return fmt.Errorf("args.FS is nil")
	}
	if args.TimerHz == 0 {
		args.TimerHz = DefaultTimerHz
	}
	tk, err := NewTimekeeper(args.TimerHz)
	if err != nil {
		return fmt.Errorf("creating timekeeper: %w", err)
	}

	k.Devices = args.Devices
	k.Devices.setDefaults()
	k.fs = args.FS
	k.mem = args.Memory
	k.machine = args.Machine
	k.syscalls = args.Syscalls
	k.fdTable = NewFDTable()
	k.timekeeper = tk
	k.tones = NewTonePlayer(k.Speaker)
	if args.TraceSyscalls {
		k.trace = newSyscallTracer()
	}
	return nil
}

// FS returns the filesystem.
func (k *Kernel) FS() fs.Filesystem {
	return k.fs
}

// Memory returns the address space shared with the user program.
func (k *Kernel) Memory() usermem.IO {
	return k.mem
}

// Machine returns the machine.
func (k *Kernel) Machine() ring0.Machine {
	return k.machine
}

// SyscallTable returns the syscall table.
func (k *Kernel) SyscallTable() *SyscallTable {
	return k.syscalls
}

// FDTable returns the descriptor table of the user program.
func (k *Kernel) FDTable() *FDTable {
	return k.fdTable
}

// Timekeeper returns the clock.
func (k *Kernel) Timekeeper() *Timekeeper {
	return k.timekeeper
}

// ScanBuffer returns the keyboard buffer.
func (k *Kernel) ScanBuffer() *ScanBuffer {
	return &k.scans
}

// Tones returns the melody player.
func (k *Kernel) Tones() *TonePlayer {
	return k.tones
}
