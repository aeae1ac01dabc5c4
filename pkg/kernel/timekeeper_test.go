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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTimekeeper(t *testing.T) {
	tk, err := NewTimekeeper(DefaultTimerHz)
	if err != nil {
		t.Fatalf("NewTimekeeper: %v", err)
	}
	start := tk.Uptime()
	const n = 37
	for i := 0; i < n; i++ {
		tk.Tick()
	}
	if got := tk.Uptime() - start; got != 10*n {
		t.Errorf("uptime delta after %d ticks = %d ms, want %d", n, got, 10*n)
	}
	if got := tk.Ticks(); got != n {
		t.Errorf("Ticks() = %d, want %d", got, n)
	}

	for _, hz := range []uint32{0, 3, 7, 2000} {
		if _, err := NewTimekeeper(hz); err == nil {
			t.Errorf("NewTimekeeper(%d) succeeded", hz)
		}
	}
	if tk, err := NewTimekeeper(1000); err != nil || tk.PeriodMS() != 1 {
		t.Errorf("NewTimekeeper(1000) = (%v, %v), want 1 ms period", tk, err)
	}
}

func TestScanBuffer(t *testing.T) {
	var b ScanBuffer
	if _, ok := b.Pop(); ok {
		t.Fatalf("Pop on empty buffer succeeded")
	}
	for i := 0; i < ScanBufferSize; i++ {
		if !b.Push(byte(i)) {
			t.Fatalf("Push(%d) dropped", i)
		}
	}
	if b.Push(0xff) {
		t.Errorf("Push into a full buffer succeeded")
	}

	// Drain half, refill across the wrap point.
	var got []byte
	for i := 0; i < ScanBufferSize/2; i++ {
		s, _ := b.Pop()
		got = append(got, s)
	}
	for i := 0; i < ScanBufferSize/2; i++ {
		if !b.Push(byte(100 + i)) {
			t.Fatalf("Push after drain dropped")
		}
	}
	for {
		s, ok := b.Pop()
		if !ok {
			break
		}
		got = append(got, s)
	}

	var want []byte
	for i := 0; i < ScanBufferSize; i++ {
		want = append(want, byte(i))
	}
	for i := 0; i < ScanBufferSize/2; i++ {
		want = append(want, byte(100+i))
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scan order mismatch (-want +got):\n%s", diff)
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
}
