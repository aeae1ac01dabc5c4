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

package boot

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"redk.dev/redk/pkg/config"
	"redk.dev/redk/pkg/fs"
	"redk.dev/redk/pkg/fs/memfs"
	"redk.dev/redk/pkg/hostarch"
	"redk.dev/redk/pkg/kalloc"
	"redk.dev/redk/pkg/kernel"
	"redk.dev/redk/pkg/loader/loadertest"
	"redk.dev/redk/pkg/ring0"
	"redk.dev/redk/pkg/ring0/ring0test"
	"redk.dev/redk/pkg/usermem"
)

const (
	memBase = hostarch.Addr(0x100000)
	memSize = 0x80000
)

type devices struct {
	pic   int
	rates []uint32
	tones []uint32
}

func (d *devices) Init()                  { d.pic++ }
func (d *devices) EOI(uint8)              {}
func (d *devices) SetRate(hz uint32)      { d.rates = append(d.rates, hz) }
func (d *devices) Play(freq uint32)       { d.tones = append(d.tones, freq) }
func (d *devices) Stop()                  {}
func (d *devices) ReadScan() (byte, bool) { return 0, false }

type env struct {
	args    Args
	m       *ring0test.Machine
	mem     *usermem.BytesIO
	fs      *memfs.Filesystem
	devices *devices
}

var text = []byte{0x90, 0x90, 0xcd, 0x80, 0xeb, 0xfe}

func newEnv(cmdline string) *env {
	e := &env{
		m:       &ring0test.Machine{FlagsValue: 0x3202},
		mem:     usermem.NewBytesIO(memBase, memSize),
		fs:      memfs.New(),
		devices: &devices{},
	}
	e.fs.Add("init", loadertest.Executable(text, 16))
	e.args = Args{
		Handoff: Handoff{CommandLine: cmdline},
		Machine: e.m,
		Devices: kernel.Devices{
			Speaker:  e.devices,
			PIC:      e.devices,
			Timer:    e.devices,
			Keyboard: e.devices,
		},
		FS:     e.fs,
		Memory: e.mem,
		Alloc:  kalloc.NewArena(e.mem.Range()),
		// Fixed entries keep the gate table independent of GOARCH.
		Entries: map[ring0.Vector]uint32{
			ring0.DivideByZero: 0x1000,
			ring0.Timer:        0x1010,
			ring0.Keyboard:     0x1020,
			ring0.Syscall:      0x1030,
		},
	}
	return e
}

func TestBoot(t *testing.T) {
	e := newEnv("init quiet")
	l, err := New(e.args)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := l.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		"lgdt 47",
		"cr0.pe",
		"cs 0x08",
		"ds/es/fs/gs/ss 0x10",
		"ltr 0x28",
		"cli",
		"lidt 2047",
		"sti",
		"ds/es/fs/gs 0x23",
		"iret",
	}
	if diff := cmp.Diff(want, e.m.Calls); diff != "" {
		t.Errorf("instructions mismatch (-want +got):\n%s", diff)
	}

	// The kernel stack comes first, then the image, then the user stack.
	const (
		kernelStackTop = memBase + KernelStackSize
		imageBase      = memBase + 0x4000
		userStackTop   = imageBase + 0x20 + config.DefaultUserStackSize
	)
	wantFrame := ring0.IretFrame{
		EIP:    uint32(imageBase),
		CS:     uint32(ring0.Ucode),
		EFLAGS: (0x3202 &^ ring0.UserFlagsClear) | ring0.UserFlagsSet,
		ESP:    uint32(userStackTop),
		SS:     uint32(ring0.Udata),
	}
	if diff := cmp.Diff([]ring0.IretFrame{wantFrame}, e.m.Frames); diff != "" {
		t.Errorf("iret frame mismatch (-want +got):\n%s", diff)
	}
	if got := l.Tables().TaskState().ESP0(); got != uint32(kernelStackTop) {
		t.Errorf("ESP0 = %#x, want %#x", got, uint32(kernelStackTop))
	}
	if wantFrame.ESP%16 != 0 {
		t.Errorf("user stack top %#x is not 16-byte aligned", wantFrame.ESP)
	}

	off := int(imageBase - memBase)
	if diff := cmp.Diff(text, e.mem.Bytes[off:off+len(text)]); diff != "" {
		t.Errorf("text mismatch (-want +got):\n%s", diff)
	}

	if e.devices.pic != 1 {
		t.Errorf("PIC initialized %d times, want 1", e.devices.pic)
	}
	if diff := cmp.Diff([]uint32{config.DefaultTimerHz}, e.devices.rates); diff != "" {
		t.Errorf("timer rates mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint32{659}, e.devices.tones); diff != "" {
		t.Errorf("speaker mismatch (-want +got):\n%s", diff)
	}
	if !e.m.Interrupts {
		t.Errorf("interrupts disabled after boot")
	}
}

func TestSyscallAfterBoot(t *testing.T) {
	e := newEnv("init")
	l, err := New(e.args)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := l.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Interrupts reach the kernel through the installed handler.
	ctx := &ring0.InterruptContext{Vector: ring0.Syscall, EAX: 4}
	ring0.Trap(ctx)
	if ctx.EAX != 0 {
		t.Errorf("gettick = %d, want 0", ctx.EAX)
	}
	ring0.Trap(&ring0.InterruptContext{Vector: ring0.Timer})
	ctx = &ring0.InterruptContext{Vector: ring0.Syscall, EAX: 4}
	ring0.Trap(ctx)
	if ctx.EAX != 10 {
		t.Errorf("gettick after one tick = %d, want 10", ctx.EAX)
	}
}

func TestConfigFile(t *testing.T) {
	e := newEnv("")
	e.fs.Add(config.FileName, []byte(`
[kernel]
executable = "init"
timer_hz = 1000
startup_melody = false
`))
	l, err := New(e.args)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := l.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff([]uint32{1000}, e.devices.rates); diff != "" {
		t.Errorf("timer rates mismatch (-want +got):\n%s", diff)
	}
	if len(e.devices.tones) != 0 {
		t.Errorf("startup melody played: %v", e.devices.tones)
	}
	if len(e.m.Frames) != 1 {
		t.Errorf("got %d iret frames, want 1", len(e.m.Frames))
	}
	if got := l.Kernel().Timekeeper().PeriodMS(); got != 1 {
		t.Errorf("tick period = %d ms, want 1", got)
	}
}

func TestIdle(t *testing.T) {
	e := newEnv("")
	l, err := New(e.args)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !ring0test.CatchHalt(func() { l.Run() }) {
		t.Fatalf("Run without an executable did not halt")
	}
	calls := e.m.Calls
	if diff := cmp.Diff([]string{"sti", "hlt"}, calls[len(calls)-2:]); diff != "" {
		t.Errorf("idle loop mismatch (-want +got):\n%s", diff)
	}
	if !e.m.Interrupts {
		t.Errorf("idle loop runs with interrupts disabled")
	}
}

func TestBootErrors(t *testing.T) {
	for _, tc := range []struct {
		name    string
		cmdline string
		setup   func(e *env)
		want    error
	}{
		{
			name:    "missing executable",
			cmdline: "nope",
			want:    ErrNoExecutable,
		},
		{
			name:    "not an executable",
			cmdline: "junk",
			setup:   func(e *env) { e.fs.Add("junk", []byte("#!/bin/sh\n")) },
		},
		{
			name:    "stack too large",
			cmdline: "init",
			setup: func(e *env) {
				e.fs.Add(config.FileName, []byte("[kernel]\nuser_stack_size = 0x100000\n"))
			},
			want: kalloc.ErrNoMemory,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(tc.cmdline)
			if tc.setup != nil {
				tc.setup(e)
			}
			err := Main(e.args)
			if err == nil {
				t.Fatalf("Main succeeded")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("Main = %v, want %v", err, tc.want)
			}
			if len(e.m.Frames) != 0 {
				t.Errorf("failed boot entered ring 3")
			}
			if !ring0test.CatchHalt(func() { Halt(e.m, err) }) {
				t.Errorf("Halt returned")
			}
		})
	}
}

func TestNewErrors(t *testing.T) {
	e := newEnv("init")
	e.fs.Add(config.FileName, []byte("[kernel]\ntimer_hz = 7\n"))
	if _, err := New(e.args); err == nil {
		t.Errorf("New accepted an invalid configuration")
	}

	e = newEnv("init")
	e.args.Alloc = nil
	if _, err := New(e.args); err == nil {
		t.Errorf("New accepted missing arguments")
	}
}

// trappingSpeaker delivers a timer interrupt from inside Play whenever
// interrupts are enabled, as the hardware would.
type trappingSpeaker struct {
	devices
	m *ring0test.Machine

	trapped bool
}

func (s *trappingSpeaker) Play(freq uint32) {
	s.devices.Play(freq)
	if s.m.Interrupts && !s.trapped {
		s.trapped = true
		ring0.Trap(&ring0.InterruptContext{Vector: ring0.Timer})
	}
}

func TestMelodyQueuedBeforeInterrupts(t *testing.T) {
	e := newEnv("init")
	s := &trappingSpeaker{m: e.m}
	e.args.Devices = kernel.Devices{Speaker: s, PIC: s, Timer: s, Keyboard: s}
	l, err := New(e.args)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Start()
	if s.trapped {
		t.Errorf("timer interrupt delivered while the startup melody was queued")
	}
	if diff := cmp.Diff([]uint32{659}, s.tones); diff != "" {
		t.Errorf("speaker mismatch (-want +got):\n%s", diff)
	}
	if !e.m.Interrupts {
		t.Errorf("interrupts disabled after Start")
	}

	// Later ticks advance the melody under the same lock.
	ring0.Trap(&ring0.InterruptContext{Vector: ring0.Timer})
	if got := l.Kernel().Timekeeper().Ticks(); got != 1 {
		t.Errorf("ticks = %d, want 1", got)
	}
}

// handleFS remembers every handle it opens.
type handleFS struct {
	*memfs.Filesystem
	opened []*memfs.File
}

func (f *handleFS) Lookup(name string) (fs.FileHandle, bool) {
	h, ok := f.Filesystem.Lookup(name)
	if ok {
		f.opened = append(f.opened, h.(*memfs.File))
	}
	return h, ok
}

func TestLaunchClosesExecutable(t *testing.T) {
	exe := loadertest.Executable(text, 16)
	for _, tc := range []struct {
		name string
		data []byte
		ok   bool
	}{
		{name: "loaded", data: exe, ok: true},
		{name: "not an executable", data: []byte("#!/bin/sh\n")},
		{name: "truncated headers", data: exe[:0x40]},
		{name: "truncated segment", data: exe[:len(exe)-2]},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv("prog")
			e.fs.Add("prog", tc.data)
			hfs := &handleFS{Filesystem: e.fs}
			e.args.FS = hfs
			l, err := New(e.args)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			err = l.Launch("prog")
			if got := err == nil; got != tc.ok {
				t.Fatalf("Launch = %v, want success %t", err, tc.ok)
			}
			if len(hfs.opened) != 1 {
				t.Fatalf("opened %d handles, want 1", len(hfs.opened))
			}
			if !hfs.opened[0].Closed() {
				t.Errorf("executable left open")
			}
		})
	}
}

func TestNewReleasesKernelStack(t *testing.T) {
	e := newEnv("init")
	arena := kalloc.NewArena(e.mem.Range())
	e.args.Alloc = arena
	conf := config.Default()
	conf.Kernel.TimerHz = 7
	e.args.Config = conf
	if _, err := New(e.args); err == nil {
		t.Fatalf("New accepted a 7 Hz timer")
	}
	if got := arena.Used(); got != 0 {
		t.Errorf("arena has %d bytes in use after a failed New, want 0", got)
	}
}

func TestHandoff(t *testing.T) {
	for cmdline, want := range map[string]string{
		"":            "",
		"  init  -v ": "init",
		"shell.elf":   "shell.elf",
	} {
		if got := (Handoff{CommandLine: cmdline}).Executable(); got != want {
			t.Errorf("Handoff{%q}.Executable() = %q, want %q", cmdline, got, want)
		}
	}
}
