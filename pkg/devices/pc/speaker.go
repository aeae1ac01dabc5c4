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

// speakerGate connects counter 2 to the speaker.
const speakerGate = 0x3

// Speaker is the PC speaker, fed by counter 2 of the PIT.
type Speaker struct {
	m   ring0.Machine
	pit *PIT
}

// Play implements kernel.Speaker.Play. A zero frequency silences the
// speaker.
func (s *Speaker) Play(frequency uint32) {
	if frequency == 0 {
		s.Stop()
		return
	}
	s.pit.Tone(frequency)
	if v := s.m.InB(speakerControl); v&speakerGate != speakerGate {
		s.m.OutB(speakerControl, v|speakerGate)
	}
}

// Stop implements kernel.Speaker.Stop.
func (s *Speaker) Stop() {
	v := s.m.InB(speakerControl)
	s.m.OutB(speakerControl, v&^speakerGate)
}

// KeyboardOutputFull is set in the keyboard status register when a scan code
// is waiting.
const KeyboardOutputFull = 0x1

// Keyboard is the PS/2 keyboard controller.
type Keyboard struct {
	m ring0.Machine
}

// ReadScan implements kernel.KeyboardController.ReadScan.
func (k *Keyboard) ReadScan() (byte, bool) {
	if k.m.InB(KeyboardStatus)&KeyboardOutputFull == 0 {
		return 0, false
	}
	return k.m.InB(KeyboardData), true
}
