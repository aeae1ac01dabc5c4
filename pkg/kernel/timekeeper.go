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
	"fmt"
	"sync/atomic"
)

// DefaultTimerHz is the default timer interrupt rate.
const DefaultTimerHz = 100

// Timekeeper counts timer interrupts since boot.
type Timekeeper struct {
	ticks atomic.Uint32

	// periodMS is the length of one tick in milliseconds. Immutable.
	periodMS uint32
}

// NewTimekeeper returns a Timekeeper for a timer firing hz times per second.
// hz must divide 1000.
func NewTimekeeper(hz uint32) (*Timekeeper, error) {
	if hz == 0 || hz > 1000 || 1000%hz != 0 {
		return nil, fmt.Errorf("timer rate %d Hz does not divide one second into whole milliseconds", hz)
	}
	return &Timekeeper{periodMS: 1000 / hz}, nil
}

// Tick records one timer interrupt and returns the new count.
func (t *Timekeeper) Tick() uint32 {
	return t.ticks.Add(1)
}

// Ticks returns the number of timer interrupts since boot.
func (t *Timekeeper) Ticks() uint32 {
	return t.ticks.Load()
}

// Uptime returns the time since boot in milliseconds. It wraps silently.
func (t *Timekeeper) Uptime() uint32 {
	return t.ticks.Load() * t.periodMS
}

// PeriodMS returns the tick length in milliseconds.
func (t *Timekeeper) PeriodMS() uint32 {
	return t.periodMS
}
