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

package kernel

import (
	"io"
)

// Speaker drives the PC speaker.
type Speaker interface {
	// Play starts a square wave at frequency Hz. The speaker is enabled if
	// it was not.
	Play(frequency uint32)

	// Stop silences the speaker.
	Stop()
}

// InterruptController is the programmable interrupt controller.
type InterruptController interface {
	// Init remaps hardware interrupts to start at ring0.Timer and unmasks
	// the timer and keyboard lines.
	Init()

	// EOI acknowledges irq.
	EOI(irq uint8)
}

// Timer is the programmable interval timer.
type Timer interface {
	// SetRate programs channel 0 to fire hz times per second.
	SetRate(hz uint32)
}

// KeyboardController is the PS/2 controller.
type KeyboardController interface {
	// ReadScan returns the pending scan code, if the output buffer is full.
	ReadScan() (byte, bool)
}

// Devices are the collaborators the kernel drives. Nil fields are replaced by
// devices that do nothing.
type Devices struct {
	Serial   io.Writer
	Display  io.Writer
	Speaker  Speaker
	PIC      InterruptController
	Timer    Timer
	Keyboard KeyboardController
}

// IRQ lines.
const (
	TimerIRQ    = 0
	KeyboardIRQ = 1
)

type nopSpeaker struct{}

func (nopSpeaker) Play(uint32) {}
func (nopSpeaker) Stop()       {}

type nopPIC struct{}

func (nopPIC) Init()     {}
func (nopPIC) EOI(uint8) {}

type nopTimer struct{}

func (nopTimer) SetRate(uint32) {}

type nopKeyboard struct{}

func (nopKeyboard) ReadScan() (byte, bool) { return 0, false }

func (d *Devices) setDefaults() {
	if d.Serial == nil {
		d.Serial = io.Discard
	}
	if d.Display == nil {
		d.Display = io.Discard
	}
	if d.Speaker == nil {
		d.Speaker = nopSpeaker{}
	}
	if d.PIC == nil {
		d.PIC = nopPIC{}
	}
	if d.Timer == nil {
		d.Timer = nopTimer{}
	}
	if d.Keyboard == nil {
		d.Keyboard = nopKeyboard{}
	}
}
