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

// Package boot brings the kernel up and starts the user program.
//
// The order is fixed: descriptor tables are activated, then the interrupt
// table, then devices are programmed and interrupts enabled, and finally the
// user program is loaded and entered in ring 3.
package boot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"redk.dev/redk/pkg/config"
	"redk.dev/redk/pkg/fs"
	"redk.dev/redk/pkg/hostarch"
	"redk.dev/redk/pkg/kalloc"
	"redk.dev/redk/pkg/kernel"
	"redk.dev/redk/pkg/loader"
	"redk.dev/redk/pkg/log"
	"redk.dev/redk/pkg/ring0"
	"redk.dev/redk/pkg/syscalls"
	"redk.dev/redk/pkg/usermem"
)

const (
	// KernelStackSize is the size of the ring 0 stack used while handling
	// interrupts taken from ring 3.
	KernelStackSize = 0x4000

	// stackAlign is the alignment of both stacks.
	stackAlign = 16
)

// ErrNoExecutable is returned when the executable is not in the filesystem.
var ErrNoExecutable = errors.New("executable not found")

// Handoff is what the boot loader passed to the kernel.
type Handoff struct {
	// CommandLine is the kernel command line. Its first word names the
	// executable to launch.
	CommandLine string
}

// Executable returns the first word of the command line.
func (h Handoff) Executable() string {
	if f := strings.Fields(h.CommandLine); len(f) > 0 {
		return f[0]
	}
	return ""
}

// Args are the arguments to New.
type Args struct {
	// Handoff is the boot loader handoff.
	Handoff Handoff

	// Machine issues privileged instructions.
	Machine ring0.Machine

	// Devices are the device drivers.
	Devices kernel.Devices

	// FS is the boot filesystem.
	FS fs.Filesystem

	// Memory is the flat address space.
	Memory usermem.IO

	// Alloc hands out memory from Memory.
	Alloc kalloc.Allocator

	// Entries overrides the interrupt entry points. Nil means the built-in
	// stubs.
	Entries map[ring0.Vector]uint32

	// Config overrides the configuration. If nil, config.FileName is read
	// from FS, and defaults are used when it is absent.
	Config *config.Config
}

// Loader keeps the state needed to start the kernel and run the user
// program.
type Loader struct {
	// ring0 holds the descriptor tables.
	ring0 *ring0.Kernel

	// k is the kernel.
	k *kernel.Kernel

	conf  *config.Config
	m     ring0.Machine
	alloc kalloc.Allocator
	exe   string

	// kernelStack is the top of the ring 0 stack.
	kernelStack hostarch.Addr
}

// New builds the descriptor tables and the kernel. Nothing is made live until
// Start.
func New(args Args) (*Loader, error) {
	if args.Machine == nil || args.Alloc == nil || args.FS == nil || args.Memory == nil {
		return nil, fmt.Errorf("incomplete boot arguments")
	}
	conf := args.Config
	if conf == nil {
		var err error
		if conf, err = loadConfig(args.FS); err != nil {
			return nil, err
		}
	}
	log.SetLevel(conf.LogLevel())

	ks, err := args.Alloc.Alloc(KernelStackSize, stackAlign)
	if err != nil {
		return nil, fmt.Errorf("allocating kernel stack: %w", err)
	}

	k := &kernel.Kernel{}
	if err := k.Init(kernel.InitKernelArgs{
		Devices:       args.Devices,
		FS:            args.FS,
		Memory:        args.Memory,
		Machine:       args.Machine,
		Syscalls:      syscalls.ABI,
		TimerHz:       conf.Kernel.TimerHz,
		TraceSyscalls: conf.Kernel.TraceSyscalls,
	}); err != nil {
		args.Alloc.Dealloc(ks, kalloc.Layout{Size: KernelStackSize, Align: stackAlign})
		return nil, fmt.Errorf("initializing kernel: %w", err)
	}

	exe := conf.Kernel.Executable
	if exe == "" {
		exe = args.Handoff.Executable()
	}
	return &Loader{
		ring0:       ring0.New(ring0.KernelOpts{Entries: args.Entries}),
		k:           k,
		conf:        conf,
		m:           args.Machine,
		alloc:       args.Alloc,
		exe:         exe,
		kernelStack: (ks + KernelStackSize).AlignDown(stackAlign),
	}, nil
}

// loadConfig reads config.FileName from fsys.
func loadConfig(fsys fs.Filesystem) (*config.Config, error) {
	f, ok := fsys.Lookup(config.FileName)
	if !ok {
		return config.Default(), nil
	}
	var b bytes.Buffer
	if _, err := b.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("reading %s: %w", config.FileName, err)
	}
	conf, err := config.Parse(&b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.FileName, err)
	}
	return conf, nil
}

// Kernel returns the kernel.
func (l *Loader) Kernel() *kernel.Kernel {
	return l.k
}

// Tables returns the descriptor tables.
func (l *Loader) Tables() *ring0.Kernel {
	return l.ring0
}

// Config returns the configuration in effect.
func (l *Loader) Config() *config.Config {
	return l.conf
}

// Start activates the descriptor tables and the interrupt table, programs
// the devices and enables interrupts.
//
// The startup melody is queued while interrupts are still masked: the timer
// handler takes the tone player lock, so it must not fire inside Play.
func (l *Loader) Start() {
	log.Infof("redk booting")
	l.ring0.ActivateSegments(l.m)
	log.Debugf("Segments active")

	l.ring0.ActivateInterrupts(l.m, l.k)
	log.Debugf("Interrupt table active: %v", l.ring0.Gates().Present())

	l.k.PIC.Init()
	l.k.Timer.SetRate(l.conf.Kernel.TimerHz)
	if l.conf.Kernel.StartupMelody {
		l.k.Tones().Play(StartupMelody(), false, l.k.Timekeeper().Uptime())
	}
	l.m.EnableInterrupts()
	log.Infof("Devices ready, timer at %d Hz", l.conf.Kernel.TimerHz)
}

// Run starts the kernel and launches the configured executable. If there is
// none the CPU idles, servicing interrupts. On hardware Run only returns on
// error.
func (l *Loader) Run() error {
	l.Start()
	if l.exe == "" {
		log.Infof("No executable configured, idling")
		Idle(l.m)
		return nil
	}
	return l.Launch(l.exe)
}

// Launch loads the executable name and enters it in ring 3.
func (l *Loader) Launch(name string) error {
	f, ok := l.k.FS().Lookup(name)
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrNoExecutable)
	}
	if c, ok := f.(io.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				log.Debugf("Closing %q: %v", name, err)
			}
		}()
	}
	obj, err := loader.OpenFile(f)
	if err != nil {
		return fmt.Errorf("opening %q: %w", name, err)
	}
	img, err := loader.Load(obj, f, l.alloc, l.k.Memory())
	if err != nil {
		return fmt.Errorf("loading %q: %w", name, err)
	}

	size := l.conf.Kernel.UserStackSize
	stack, err := l.alloc.Alloc(size, stackAlign)
	if err != nil {
		return fmt.Errorf("allocating user stack: %w", err)
	}
	top := (stack + hostarch.Addr(size)).AlignDown(stackAlign)

	log.Infof("Launching %q: entry %v, image %v+%#x, stack top %v", name, img.Entry, img.Base, img.Size, top)
	l.ring0.SwitchToUser(l.m, uint32(img.Entry), uint32(top), uint32(l.kernelStack))
	return nil
}

// Main boots the kernel described by args. It only returns on hardware if
// boot fails.
func Main(args Args) error {
	l, err := New(args)
	if err != nil {
		return err
	}
	return l.Run()
}

// Halt reports err and stops the CPU.
func Halt(m ring0.Machine, err error) {
	log.Warningf("Boot failed: %v", err)
	ring0.HaltForever(m)
}

// Idle waits for interrupts forever.
func Idle(m ring0.Machine) {
	for {
		m.Halt()
	}
}
