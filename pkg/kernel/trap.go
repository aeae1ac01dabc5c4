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
	"redk.dev/redk/pkg/log"
	"redk.dev/redk/pkg/ring0"
)

// HandleTrap implements ring0.Handler.HandleTrap. It routes the interrupt by
// vector; unknown vectors are ignored.
func (k *Kernel) HandleTrap(ctx *ring0.InterruptContext) {
	switch ctx.Vector {
	case ring0.DivideByZero:
		k.fault(ctx)
	case ring0.Timer:
		k.tick()
	case ring0.Keyboard:
		k.keyboard()
	case ring0.Syscall:
		k.Dispatch(ctx)
	default:
		log.Debugf("Ignoring interrupt: %v", ctx)
	}
}

// fault reports the context and stops the machine. It does not return.
func (k *Kernel) fault(ctx *ring0.InterruptContext) {
	log.Warningf("Unrecoverable fault: %v", ctx)
	ring0.HaltForever(k.machine)
}

func (k *Kernel) tick() {
	k.timekeeper.Tick()
	k.tones.Tick(k.timekeeper.Uptime())
	k.PIC.EOI(TimerIRQ)
}

func (k *Kernel) keyboard() {
	if scan, ok := k.Keyboard.ReadScan(); ok {
		if !k.scans.Push(scan) {
			log.Debugf("Keyboard buffer full, dropping scan code %#x", scan)
		}
	}
	k.PIC.EOI(KeyboardIRQ)
}

var _ ring0.Handler = (*Kernel)(nil)
