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

// Package pc drives the legacy PC devices the kernel uses: the 8259
// interrupt controllers, the 8253 timer, the speaker, the PS/2 keyboard
// controller, the first serial port and the VGA text buffer.
//
// Drivers issue port I/O through a ring0.Machine, so they run unchanged
// against the recording machine used in tests.
package pc

import (
	"redk.dev/redk/pkg/kernel"
	"redk.dev/redk/pkg/ring0"
)

// I/O ports.
const (
	picMasterCommand = 0x20
	picMasterData    = 0x21
	picSlaveCommand  = 0xa0
	picSlaveData     = 0xa1

	pitCounter0 = 0x40
	pitCounter2 = 0x42
	pitControl  = 0x43

	speakerControl = 0x61

	// KeyboardData and KeyboardStatus are the PS/2 controller ports.
	KeyboardData   = 0x60
	KeyboardStatus = 0x64

	// COM1 is the base port of the first serial line.
	COM1 = 0x3f8
)

// New returns the devices of a PC. The serial line is initialized; the
// interrupt controllers and timer are programmed later by Init and SetRate.
func New(m ring0.Machine, display *TextDisplay) kernel.Devices {
	pit := &PIT{m: m}
	d := kernel.Devices{
		Serial:   NewSerial(m, COM1),
		Speaker:  &Speaker{m: m, pit: pit},
		PIC:      &PIC{m: m},
		Timer:    pit,
		Keyboard: &Keyboard{m: m},
	}
	if display != nil {
		d.Display = display
	}
	return d
}
