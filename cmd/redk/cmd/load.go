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

package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"redk.dev/redk/pkg/boot"
	"redk.dev/redk/pkg/hostarch"
	"redk.dev/redk/pkg/kalloc"
	"redk.dev/redk/pkg/loader"
	"redk.dev/redk/pkg/ring0"
	"redk.dev/redk/pkg/ring0/ring0test"
	"redk.dev/redk/pkg/usermem"
)

// Default arena placement for the load command.
const (
	defaultArenaBase = 0x400000
	defaultArenaSize = 0x100000

	// userFlags is the EFLAGS value the launch frame is derived from.
	userFlags = 0x2
)

// Load implements subcommands.Command for the "load" command.
type Load struct {
	base uint
	size uint
}

// Name implements subcommands.Command.Name.
func (*Load) Name() string {
	return "load"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Load) Synopsis() string {
	return "Load an executable into host memory and print the launch frame."
}

// Usage implements subcommands.Command.Usage.
func (*Load) Usage() string {
	return `load [options] <elf> - Load a 32-bit x86 executable into a host memory arena
as the kernel would, and print the loaded image and the ring 3 entry frame.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (l *Load) SetFlags(f *flag.FlagSet) {
	f.UintVar(&l.base, "base", defaultArenaBase, "address of the first byte of the arena.")
	f.UintVar(&l.size, "arena", defaultArenaSize, "size of the arena in bytes.")
}

// Execute implements subcommands.Command.Execute.
func (l *Load) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := configFrom(args)

	file, err := os.Open(f.Arg(0))
	if err != nil {
		Fatalf("%v", err)
	}
	defer file.Close()

	mem, err := usermem.NewMappedIO(hostarch.Addr(l.base), int(l.size))
	if err != nil {
		Fatalf("%v", err)
	}
	defer mem.Close()

	if err := describeLoad(os.Stdout, file, &mem.BytesIO, conf.Kernel.UserStackSize); err != nil {
		Fatalf("loading %q: %v", f.Arg(0), err)
	}
	return subcommands.ExitSuccess
}

// describeLoad loads the executable in f into mem, allocates the stacks the
// launcher would, and writes the image layout and the resulting entry frame
// to w.
func describeLoad(w io.Writer, f io.ReadSeeker, mem *usermem.BytesIO, stackSize uint32) error {
	arena := kalloc.NewArena(mem.Range())
	obj, err := loader.OpenFile(f)
	if err != nil {
		return err
	}
	img, err := loader.Load(obj, f, arena, mem)
	if err != nil {
		return err
	}
	ks, err := arena.Alloc(boot.KernelStackSize, 16)
	if err != nil {
		return fmt.Errorf("allocating kernel stack: %w", err)
	}
	us, err := arena.Alloc(stackSize, 16)
	if err != nil {
		return fmt.Errorf("allocating user stack: %w", err)
	}
	kernelTop := (ks + boot.KernelStackSize).AlignDown(16)
	userTop := (us + hostarch.Addr(stackSize)).AlignDown(16)

	m := ring0test.Machine{FlagsValue: userFlags}
	k := ring0.New(ring0.KernelOpts{})
	k.SwitchToUser(&m, uint32(img.Entry), uint32(userTop), uint32(kernelTop))
	frame := m.Frames[0]

	fmt.Fprintf(w, "image: base %v size %#x entry %v\n", img.Base, img.Size, img.Entry)
	for i, s := range obj.Segments() {
		mp := img.Mappings[i]
		fmt.Fprintf(w, "segment %d: %v-%v file %#x mem %#x %v\n", i, mp.Addr, mp.Addr+hostarch.Addr(mp.Size), s.Filesz, s.Memsz, s.Perms)
	}
	fmt.Fprintf(w, "kernel stack: %v\n", kernelTop)
	fmt.Fprintf(w, "frame: eip %#08x cs %#04x eflags %#08x esp %#08x ss %#04x\n", frame.EIP, frame.CS, frame.EFLAGS, frame.ESP, frame.SS)
	_, err = fmt.Fprintf(w, "arena: %#x bytes used\n", arena.Used())
	return err
}
