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
	"redk.dev/redk/pkg/sync"
)

// ScanBufferSize is the capacity of the ScanBuffer.
const ScanBufferSize = 16

// ScanBuffer is a FIFO of keyboard scan codes. Codes arriving while it is
// full are dropped.
type ScanBuffer struct {
	mu    sync.Spinlock
	read  int
	count int
	buf   [ScanBufferSize]byte
}

// Push appends scan. It returns false if the buffer was full and the code
// was dropped.
func (b *ScanBuffer) Push(scan byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == ScanBufferSize {
		return false
	}
	b.buf[(b.read+b.count)%ScanBufferSize] = scan
	b.count++
	return true
}

// Pop removes and returns the oldest scan code.
func (b *ScanBuffer) Pop() (byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return 0, false
	}
	scan := b.buf[b.read]
	b.read = (b.read + 1) % ScanBufferSize
	b.count--
	return scan, true
}

// Len returns the number of buffered scan codes.
func (b *ScanBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
