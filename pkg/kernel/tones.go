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
	"encoding/binary"

	"redk.dev/redk/pkg/sync"
)

// Tone is one note of a melody.
type Tone struct {
	// Frequency is in Hz. Zero terminates a melody.
	Frequency uint32

	// Duration is in milliseconds.
	Duration uint32
}

// ToneSize is the size of an encoded Tone: two little-endian uint32s.
const ToneSize = 8

// DecodeTone decodes a Tone from b.
//
// Preconditions: len(b) >= ToneSize.
func DecodeTone(b []byte) Tone {
	return Tone{
		Frequency: binary.LittleEndian.Uint32(b[0:]),
		Duration:  binary.LittleEndian.Uint32(b[4:]),
	}
}

// Encode appends the wire form of t to b.
func (t Tone) Encode(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, t.Frequency)
	return binary.LittleEndian.AppendUint32(b, t.Duration)
}

// TonePlayer plays one melody at a time, advancing on timer ticks.
type TonePlayer struct {
	mu sync.Spinlock

	speaker Speaker

	// tones is the current melody, without terminator. Owned.
	tones []Tone

	// next is the index of the next tone to play.
	next int

	repeat bool

	// endDate is the uptime at which the current tone ends, or zero when
	// nothing plays.
	endDate uint32
}

// NewTonePlayer returns a silent player driving sp.
func NewTonePlayer(sp Speaker) *TonePlayer {
	return &TonePlayer{speaker: sp}
}

// Play replaces the current melody with tones and starts its first tone at
// now. tones is owned by the player afterwards. An empty melody silences the
// speaker.
func (p *TonePlayer) Play(tones []Tone, repeat bool, now uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tones = tones
	p.next = 0
	p.repeat = repeat
	p.advanceLocked(now)
}

// Tick moves to the next tone once the current one has ended.
func (p *TonePlayer) Tick(now uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.endDate != 0 && p.endDate <= now {
		p.advanceLocked(now)
	}
}

// Playing reports whether a tone is sounding.
func (p *TonePlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.endDate != 0
}

// Current returns the tone being played.
func (p *TonePlayer) Current() (Tone, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.endDate == 0 || p.next == 0 {
		return Tone{}, false
	}
	return p.tones[p.next-1], true
}

// +checklocks:p.mu
func (p *TonePlayer) advanceLocked(now uint32) {
	if p.next == len(p.tones) && p.repeat {
		p.next = 0
	}
	if p.next >= len(p.tones) {
		p.tones = nil
		p.next = 0
		p.endDate = 0
		p.speaker.Stop()
		return
	}
	t := p.tones[p.next]
	p.next++
	p.speaker.Play(t.Frequency)
	p.endDate = now + t.Duration
	if p.endDate == 0 {
		// Zero means idle; a tone ending exactly at the wrap point ends
		// one millisecond later.
		p.endDate = 1
	}
}
