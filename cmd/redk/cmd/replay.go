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
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/subcommands"
	"redk.dev/redk/pkg/boot"
	"redk.dev/redk/pkg/config"
	"redk.dev/redk/pkg/devices/pc"
	"redk.dev/redk/pkg/fs"
	"redk.dev/redk/pkg/fs/memfs"
	"redk.dev/redk/pkg/hostarch"
	"redk.dev/redk/pkg/kalloc"
	"redk.dev/redk/pkg/kernel"
	"redk.dev/redk/pkg/ring0"
	"redk.dev/redk/pkg/ring0/ring0test"
	"redk.dev/redk/pkg/usermem"
)

// Default memory placement of a replay script.
const (
	defaultMemoryBase = 0x400000
	defaultMemorySize = 0x100000
)

// Replay implements subcommands.Command for the "replay" command.
type Replay struct {
	root string
}

// Script is a replay script.
//
// Example:
//
//	memory_base = 0x400000
//
//	[[step]]
//	place = [{ addr = 0x400000, string = "hello.txt" }]
//	syscall = "open"
//	args = [0x400000, 0]
//
//	[[step]]
//	tick = 10
type Script struct {
	// MemoryBase and MemorySize place the memory shared with syscalls.
	// Zero means the defaults.
	MemoryBase uint32 `toml:"memory_base"`
	MemorySize uint32 `toml:"memory_size"`

	Steps []Step `toml:"step"`
}

// Step is one step of a script. Its parts run in field order.
type Step struct {
	// Place writes data to memory.
	Place []Placement `toml:"place"`

	// Tick raises that many timer interrupts.
	Tick uint32 `toml:"tick"`

	// Keys raises one keyboard interrupt per scan code.
	Keys []uint8 `toml:"keys"`

	// Syscall is a syscall name or number, raised with Args.
	Syscall string   `toml:"syscall"`
	Args    []uint32 `toml:"args"`

	// Dump prints memory.
	Dump *Dump `toml:"dump"`
}

// Placement is data written to memory before a syscall.
type Placement struct {
	Addr uint32 `toml:"addr"`

	// String is written with a NUL terminator.
	String string `toml:"string"`

	// Bytes are written after String.
	Bytes []uint8 `toml:"bytes"`
}

// Dump is a memory range to print.
type Dump struct {
	Addr uint32 `toml:"addr"`
	Len  uint32 `toml:"len"`
}

// ParseScript decodes a script from r.
func ParseScript(r io.Reader) (*Script, error) {
	var s Script
	md, err := toml.NewDecoder(r).Decode(&s)
	if err != nil {
		return nil, fmt.Errorf("decoding script: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown script keys: %v", undecoded)
	}
	if s.MemoryBase == 0 {
		s.MemoryBase = defaultMemoryBase
	}
	if s.MemorySize == 0 {
		s.MemorySize = defaultMemorySize
	}
	for i, step := range s.Steps {
		if len(step.Args) > len(kernel.SyscallArguments{}) {
			return nil, fmt.Errorf("step %d: %d arguments, at most %d", i, len(step.Args), len(kernel.SyscallArguments{}))
		}
	}
	return &s, nil
}

// Name implements subcommands.Command.Name.
func (*Replay) Name() string {
	return "replay"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Replay) Synopsis() string {
	return "Run a syscall script against a hosted kernel."
}

// Usage implements subcommands.Command.Usage.
func (*Replay) Usage() string {
	return `replay [options] <script.toml> - Boot a kernel over host memory and a
filesystem built from a host directory, then run the steps of the script and
print what each one did.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (r *Replay) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.root, "root", "", "host directory the kernel filesystem is built from.")
}

// Execute implements subcommands.Command.Execute.
func (r *Replay) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := configFrom(args)

	sf, err := os.Open(f.Arg(0))
	if err != nil {
		Fatalf("%v", err)
	}
	s, err := ParseScript(sf)
	sf.Close()
	if err != nil {
		Fatalf("%s: %v", f.Arg(0), err)
	}

	fsys := memfs.New()
	if r.root != "" {
		if fsys, err = memfs.FromFS(os.DirFS(r.root)); err != nil {
			Fatalf("reading %q: %v", r.root, err)
		}
	}

	rp, err := newReplayer(os.Stdout, fsys, s, conf)
	if err != nil {
		Fatalf("%v", err)
	}
	if err := rp.run(s.Steps); err != nil {
		Fatalf("%v", err)
	}
	return subcommands.ExitSuccess
}

// replayer runs script steps against a booted kernel.
type replayer struct {
	w       io.Writer
	m       *ring0test.Machine
	k       *kernel.Kernel
	mem     *usermem.BytesIO
	display *pc.TextDisplay

	// serialStart is the number of bytes written to the serial data port
	// during boot.
	serialStart int
}

func newReplayer(w io.Writer, fsys fs.Filesystem, s *Script, conf *config.Config) (*replayer, error) {
	m := &ring0test.Machine{FlagsValue: userFlags}
	mem := usermem.NewBytesIO(hostarch.Addr(s.MemoryBase), int(s.MemorySize))
	screen := usermem.NewBytesIO(pc.TextBuffer, pc.TextWidth*pc.TextHeight*2)
	display := pc.NewTextDisplay(screen, pc.TextBuffer)

	l, err := boot.New(boot.Args{
		Machine: m,
		Devices: pc.New(m, display),
		FS:      fsys,
		Memory:  mem,
		Alloc:   kalloc.NewArena(mem.Range()),
		Config:  conf,
	})
	if err != nil {
		return nil, err
	}
	l.Start()
	return &replayer{
		w:           w,
		m:           m,
		k:           l.Kernel(),
		mem:         mem,
		display:     display,
		serialStart: len(m.Out[pc.COM1]),
	}, nil
}

// run executes steps in order, then prints the serial and display output.
func (r *replayer) run(steps []Step) error {
	for i, step := range steps {
		if err := r.step(step); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}

	if out := r.m.Out[pc.COM1]; len(out) > r.serialStart {
		fmt.Fprintf(r.w, "serial: %q\n", out[r.serialStart:])
	}
	lines, err := r.display.Lines()
	if err != nil {
		return err
	}
	for i, line := range lines {
		if line != "" {
			fmt.Fprintf(r.w, "display %d: %q\n", i, line)
		}
	}
	return nil
}

func (r *replayer) step(s Step) error {
	for _, p := range s.Place {
		var data []byte
		if p.String != "" {
			data = append([]byte(p.String), 0)
		}
		data = append(data, p.Bytes...)
		if _, err := r.mem.CopyOut(hostarch.Addr(p.Addr), data); err != nil {
			return fmt.Errorf("placing %d bytes at %#x: %w", len(data), p.Addr, err)
		}
	}

	if s.Tick > 0 {
		for i := uint32(0); i < s.Tick; i++ {
			ring0.Trap(&ring0.InterruptContext{Vector: ring0.Timer})
		}
		fmt.Fprintf(r.w, "tick x%d: uptime %d ms\n", s.Tick, r.k.Timekeeper().Uptime())
	}

	for _, scan := range s.Keys {
		r.m.Feed(pc.KeyboardStatus, pc.KeyboardOutputFull)
		r.m.Feed(pc.KeyboardData, scan)
		ring0.Trap(&ring0.InterruptContext{Vector: ring0.Keyboard})
		fmt.Fprintf(r.w, "key %#02x: %d buffered\n", scan, r.k.ScanBuffer().Len())
	}

	if s.Syscall != "" {
		if err := r.syscall(s.Syscall, s.Args); err != nil {
			return err
		}
	}

	if s.Dump != nil {
		buf := make([]byte, s.Dump.Len)
		if _, err := r.mem.CopyIn(hostarch.Addr(s.Dump.Addr), buf); err != nil {
			return fmt.Errorf("dumping %#x bytes at %#x: %w", s.Dump.Len, s.Dump.Addr, err)
		}
		fmt.Fprintf(r.w, "dump %#x: % x\n", s.Dump.Addr, buf)
	}
	return nil
}

// syscall raises the syscall named by name, which may also be a number,
// from ring 3.
func (r *replayer) syscall(name string, args []uint32) error {
	table := r.k.SyscallTable()
	sysno, err := table.LookupNo(name)
	if err != nil {
		n, perr := strconv.ParseUint(name, 0, 32)
		if perr != nil {
			return err
		}
		sysno = uint32(n)
	}

	ctx := &ring0.InterruptContext{
		Vector: ring0.Syscall,
		EAX:    sysno,
		CS:     uint32(ring0.Ucode),
	}
	regs := []*uint32{&ctx.EBX, &ctx.ECX, &ctx.EDX}
	for i, a := range args {
		*regs[i] = a
	}
	ring0.Trap(ctx)

	strs := make([]string, len(regs))
	for i, reg := range regs {
		strs[i] = fmt.Sprintf("%#x", *reg)
	}
	result := fmt.Sprintf("%#x", ctx.EAX)
	if ctx.EAX == kernel.Sentinel {
		result = "sentinel"
	}
	_, err = fmt.Fprintf(r.w, "%s(%s) = %s\n", table.LookupName(sysno), strings.Join(strs, ", "), result)
	return err
}
