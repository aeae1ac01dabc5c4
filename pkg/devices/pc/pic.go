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

package pc

import (
	"redk.dev/redk/pkg/ring0"
)

const (
	// icw1Init starts initialization and announces ICW4.
	icw1Init = 0x11

	// icw4x86 selects 8086 mode.
	icw4x86 = 0x01

	// eoi is the non-specific end of interrupt command.
	eoi = 0x20
)

// PIC is the pair of cascaded 8259 interrupt controllers.
type PIC struct {
	m ring0.Machine
}

// Init implements kernel.InterruptController.Init. IRQs 0-7 are remapped to
// vectors starting at ring0.Timer and IRQs 8-15 to the following eight; only
// the timer and keyboard lines are left unmasked.
func (p *PIC) Init() {
	// ICW1.
	p.m.OutB(picMasterCommand, icw1Init)
	p.m.OutB(picSlaveCommand, icw1Init)

	// ICW2: vector offsets.
	p.m.OutB(picMasterData, uint8(ring0.Timer))
	p.m.OutB(picSlaveData, uint8(ring0.Timer)+8)

	// ICW3: the slave hangs off IRQ 2.
	p.m.OutB(picMasterData, 1<<2)
	p.m.OutB(picSlaveData, 2)

	// ICW4.
	p.m.OutB(picMasterData, icw4x86)
	p.m.OutB(picSlaveData, icw4x86)

	// OCW1: mask everything but IRQ 0 and 1.
	p.m.OutB(picMasterData, 0xfc)
}

// EOI implements kernel.InterruptController.EOI.
func (p *PIC) EOI(irq uint8) {
	if irq >= 8 {
		p.m.OutB(picSlaveCommand, eoi)
	}
	p.m.OutB(picMasterCommand, eoi)
}

// PITFrequency is the input clock of the 8253 in Hz.
const PITFrequency = 1193182

// PIT control word fields.
const (
	pitBinary      = 0
	pitRateMode    = 2 << 1
	pitSquareMode  = 3 << 1
	pitLoHi        = 3 << 4
	pitCounter0Sel = 0 << 6
	pitCounter2Sel = 2 << 6
)

// PIT is the 8253 programmable interval timer.
type PIT struct {
	m ring0.Machine
}

// divisor returns the 16-bit reload value for hz. Out of range rates are
// clamped.
func divisor(hz uint32) uint16 {
	if hz == 0 {
		return 0 // 65536.
	}
	d := PITFrequency / hz
	switch {
	case d > 0xffff:
		return 0
	case d == 0:
		return 1
	}
	return uint16(d)
}

// SetRate implements kernel.Timer.SetRate. Counter 0 drives IRQ 0.
func (p *PIT) SetRate(hz uint32) {
	div := divisor(hz)
	p.m.OutB(pitControl, pitBinary|pitRateMode|pitLoHi|pitCounter0Sel)
	p.m.OutB(pitCounter0, uint8(div))
	p.m.OutB(pitCounter0, uint8(div>>8))
}

// Tone programs counter 2, which drives the speaker, to a square wave at hz.
func (p *PIT) Tone(hz uint32) {
	div := divisor(hz)
	p.m.OutB(pitControl, pitBinary|pitSquareMode|pitLoHi|pitCounter2Sel)
	p.m.OutB(pitCounter2, uint8(div))
	p.m.OutB(pitCounter2, uint8(div>>8))
}
