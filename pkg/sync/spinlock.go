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

package sync

import (
	"runtime"
	"sync/atomic"
)

// Yield is called between failed acquisition attempts in Spinlock.Lock.
//
// On a single hardware thread with interrupts masked the lock can never be
// contended, so the default only matters for hosted tests.
var Yield = runtime.Gosched

// Spinlock is a non-blocking mutual exclusion lock. The zero value is an
// unlocked lock.
//
// Spinlock never parks the caller, which makes it safe to use from interrupt
// handlers. It is not reentrant: a holder calling Lock again deadlocks.
type Spinlock struct {
	state uint32
}

// Lock acquires the lock, spinning until it is available.
func (l *Spinlock) Lock() {
	for !l.TryLock() {
		Yield()
	}
}

// TryLock attempts to acquire the lock without spinning and reports whether
// it succeeded.
func (l *Spinlock) TryLock() bool {
	return atomic.CompareAndSwapUint32(&l.state, 0, 1)
}

// Unlock releases the lock. Unlocking a free lock has no effect.
func (l *Spinlock) Unlock() {
	atomic.StoreUint32(&l.state, 0)
}

// Locked reports whether the lock is currently held.
func (l *Spinlock) Locked() bool {
	return atomic.LoadUint32(&l.state) != 0
}

var _ Locker = (*Spinlock)(nil)
