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

// Binary redk-kernel is the kernel image. The boot loader enters it in
// protected mode with paging off and the low memory identity mapped.
//
// The boot filesystem and the command line are embedded from rootfs/ at
// build time.
package main

import (
	"embed"
	iofs "io/fs"
	"strings"

	"redk.dev/redk/pkg/boot"
	"redk.dev/redk/pkg/config"
	"redk.dev/redk/pkg/devices/pc"
	"redk.dev/redk/pkg/fs/memfs"
	"redk.dev/redk/pkg/hostarch"
	"redk.dev/redk/pkg/kalloc"
	"redk.dev/redk/pkg/kernel"
	"redk.dev/redk/pkg/log"
	"redk.dev/redk/pkg/ring0"
	"redk.dev/redk/pkg/usermem"
)

// Memory handed to the allocator: above the kernel image, below the end of
// the identity map.
const (
	heapStart = hostarch.Addr(0x400000)
	heapEnd   = hostarch.Addr(0x2000000)
)

// cmdlineFile holds the kernel command line in rootfs.
const cmdlineFile = "cmdline"

//go:embed rootfs
var rootfs embed.FS

func main() {
	m := ring0.HardwareMachine{}
	mem := usermem.FlatIO{}
	devs := pc.New(m, pc.NewTextDisplay(mem, pc.TextBuffer))

	// Log to the serial line in the default format.
	log.SetTarget(config.Default().Emitter(devs.Serial))

	if err := run(m, mem, devs, hostarch.AddrRange{Start: heapStart, End: heapEnd}); err != nil {
		boot.Halt(m, err)
	}
}

// run boots from the embedded filesystem, allocating from heap.
func run(m ring0.Machine, mem usermem.IO, devs kernel.Devices, heap hostarch.AddrRange) error {
	root, err := iofs.Sub(rootfs, "rootfs")
	if err != nil {
		return err
	}
	files, err := memfs.FromFS(root)
	if err != nil {
		return err
	}
	var h boot.Handoff
	if b, ok := files.ReadFile(cmdlineFile); ok {
		h.CommandLine = strings.TrimSpace(string(b))
	}
	log.Infof("Command line: %q, files: %v", h.CommandLine, files.Names())

	return boot.Main(boot.Args{
		Handoff: h,
		Machine: m,
		Devices: devs,
		FS:      files,
		Memory:  mem,
		Alloc:   kalloc.NewArena(heap),
	})
}
