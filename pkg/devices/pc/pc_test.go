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
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"redk.dev/redk/pkg/hostarch"
	"redk.dev/redk/pkg/ring0/ring0test"
	"redk.dev/redk/pkg/usermem"
)

func TestPICInit(t *testing.T) {
	var m ring0test.Machine
	p := &PIC{m: &m}
	p.Init()
	want := map[uint16][]uint8{
		picMasterCommand: {0x11},
		picSlaveCommand:  {0x11},
		picMasterData:    {0x40, 0x04, 0x01, 0xfc},
		picSlaveData:     {0x48, 0x02, 0x01},
	}
	if diff := cmp.Diff(want, m.Out); diff != "" {
		t.Errorf("Init wrote unexpected bytes (-want +got):\n%s", diff)
	}
}

func TestPICEOI(t *testing.T) {
	for _, tc := range []struct {
		irq  uint8
		want map[uint16][]uint8
	}{
		{irq: 0, want: map[uint16][]uint8{picMasterCommand: {eoi}}},
		{irq: 1, want: map[uint16][]uint8{picMasterCommand: {eoi}}},
		{irq: 12, want: map[uint16][]uint8{picMasterCommand: {eoi}, picSlaveCommand: {eoi}}},
	} {
		var m ring0test.Machine
		(&PIC{m: &m}).EOI(tc.irq)
		if diff := cmp.Diff(tc.want, m.Out); diff != "" {
			t.Errorf("EOI(%d) (-want +got):\n%s", tc.irq, diff)
		}
	}
}

func TestPITDivisor(t *testing.T) {
	for _, tc := range []struct {
		hz   uint32
		want uint16
	}{
		{hz: 100, want: 11931},
		{hz: 1000, want: 1193},
		{hz: 440, want: 2711},
		{hz: 18, want: 0},
		{hz: 0, want: 0},
		{hz: 2000000, want: 1},
	} {
		if got := divisor(tc.hz); got != tc.want {
			t.Errorf("divisor(%d) = %d, want %d", tc.hz, got, tc.want)
		}
	}
}

func TestPITSetRate(t *testing.T) {
	var m ring0test.Machine
	(&PIT{m: &m}).SetRate(100)
	want := map[uint16][]uint8{
		pitControl:  {0x34},
		pitCounter0: {0x9b, 0x2e},
	}
	if diff := cmp.Diff(want, m.Out); diff != "" {
		t.Errorf("SetRate(100) (-want +got):\n%s", diff)
	}
}

func TestSpeaker(t *testing.T) {
	var m ring0test.Machine
	s := &Speaker{m: &m, pit: &PIT{m: &m}}

	// Gate closed: Play opens it.
	m.Feed(speakerControl, 0x10)
	s.Play(440)
	want := map[uint16][]uint8{
		pitControl:     {0xb6},
		pitCounter2:    {0x97, 0x0a},
		speakerControl: {0x13},
	}
	if diff := cmp.Diff(want, m.Out); diff != "" {
		t.Errorf("Play(440) (-want +got):\n%s", diff)
	}

	// Gate already open: no write to the control port.
	m.Out = nil
	m.Feed(speakerControl, 0x13)
	s.Play(880)
	if got := m.Out[speakerControl]; len(got) != 0 {
		t.Errorf("Play with open gate wrote %#x to the control port", got)
	}

	m.Out = nil
	m.Feed(speakerControl, 0x13)
	s.Play(0)
	want = map[uint16][]uint8{speakerControl: {0x10}}
	if diff := cmp.Diff(want, m.Out); diff != "" {
		t.Errorf("Play(0) (-want +got):\n%s", diff)
	}
}

func TestKeyboard(t *testing.T) {
	var m ring0test.Machine
	k := &Keyboard{m: &m}
	if c, ok := k.ReadScan(); ok {
		t.Errorf("ReadScan on empty controller = %#x, true", c)
	}
	m.Feed(KeyboardStatus, KeyboardOutputFull)
	m.Feed(KeyboardData, 0x1e)
	if c, ok := k.ReadScan(); !ok || c != 0x1e {
		t.Errorf("ReadScan = %#x, %t, want 0x1e, true", c, ok)
	}
}

func TestSerial(t *testing.T) {
	var m ring0test.Machine
	s := NewSerial(&m, COM1)
	want := map[uint16][]uint8{
		COM1 + uartData: {3},
		COM1 + uartIER:  {0, ierTHREmpty},
		COM1 + uartFCR:  {0x87},
		COM1 + uartLCR:  {0x83, 0x03},
	}
	if diff := cmp.Diff(want, m.Out); diff != "" {
		t.Errorf("NewSerial (-want +got):\n%s", diff)
	}

	m.Out = nil
	if n, err := s.Write([]byte("ok\n")); n != 3 || err != nil {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if diff := cmp.Diff([]uint8("ok\n"), m.Out[COM1]); diff != "" {
		t.Errorf("Write (-want +got):\n%s", diff)
	}
}

func TestNew(t *testing.T) {
	var m ring0test.Machine
	d := New(&m, nil)
	if d.Display != nil {
		t.Errorf("Display = %v, want nil", d.Display)
	}
	if d.Serial == nil || d.Speaker == nil || d.PIC == nil || d.Timer == nil || d.Keyboard == nil {
		t.Errorf("New left devices unset: %+v", d)
	}

	display := NewTextDisplay(usermem.NewBytesIO(TextBuffer, TextHeight*rowSize), TextBuffer)
	if d := New(&m, display); d.Display != display {
		t.Errorf("Display = %v, want %v", d.Display, display)
	}
}

// screen returns the characters of row in mem, with trailing blanks
// dropped.
func screen(t *testing.T, mem *usermem.BytesIO, row int) string {
	t.Helper()
	buf := make([]byte, rowSize)
	if _, err := mem.CopyIn(TextBuffer+hostarch.Addr(row*rowSize), buf); err != nil {
		t.Fatalf("CopyIn: %v", err)
	}
	var line []byte
	for i := 0; i < len(buf); i += cellSize {
		line = append(line, buf[i])
	}
	return string(bytes.TrimRight(line, "\x00"))
}

func TestTextDisplay(t *testing.T) {
	mem := usermem.NewBytesIO(TextBuffer, TextHeight*rowSize)
	d := NewTextDisplay(mem, TextBuffer)

	if _, err := d.Write([]byte("hello\nworld")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := screen(t, mem, 0); got != "hello" {
		t.Errorf("row 0 = %q, want hello", got)
	}
	if got := screen(t, mem, 1); got != "world" {
		t.Errorf("row 1 = %q, want world", got)
	}
	if mem.Bytes[1] != DefaultAttribute {
		t.Errorf("attribute = %#x, want %#x", mem.Bytes[1], DefaultAttribute)
	}
	if row, col := d.Cursor(); row != 1 || col != 5 {
		t.Errorf("Cursor = %d, %d, want 1, 5", row, col)
	}

	d.SetAttribute(0x1f)
	d.Write([]byte("!"))
	if got := mem.Bytes[rowSize+5*cellSize+1]; got != 0x1f {
		t.Errorf("attribute = %#x, want 0x1f", got)
	}

	lines, err := d.Lines()
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if diff := cmp.Diff([]string{"hello", "world!"}, lines[:2]); diff != "" {
		t.Errorf("Lines (-want +got):\n%s", diff)
	}
	if len(lines) != TextHeight || lines[2] != "" {
		t.Errorf("Lines = %q, want %d rows with blanks after the second", lines, TextHeight)
	}

	if err := d.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := screen(t, mem, 1); got != "" {
		t.Errorf("row 1 after Clear = %q", got)
	}
	if row, col := d.Cursor(); row != 0 || col != 0 {
		t.Errorf("Cursor after Clear = %d, %d", row, col)
	}
}

func TestTextDisplayWrapScroll(t *testing.T) {
	mem := usermem.NewBytesIO(TextBuffer, TextHeight*rowSize)
	d := NewTextDisplay(mem, TextBuffer)

	long := bytes.Repeat([]byte("x"), TextWidth)
	d.Write(long)
	d.Write([]byte("y"))
	if got := screen(t, mem, 1); got != "y" {
		t.Errorf("wrapped row = %q, want y", got)
	}

	// Fill the remaining rows so the next newline scrolls.
	for i := 2; i < TextHeight; i++ {
		d.Write([]byte("\n"))
	}
	d.Write([]byte("last\nnext"))
	if got := screen(t, mem, 0); got != "y" {
		t.Errorf("row 0 after scroll = %q, want y", got)
	}
	if got := screen(t, mem, TextHeight-2); got != "last" {
		t.Errorf("row %d after scroll = %q, want last", TextHeight-2, got)
	}
	if got := screen(t, mem, TextHeight-1); got != "next" {
		t.Errorf("last row after scroll = %q, want next", got)
	}
}

func TestTextDisplayFault(t *testing.T) {
	mem := usermem.NewBytesIO(TextBuffer, 4)
	d := NewTextDisplay(mem, TextBuffer)
	n, err := d.Write([]byte("abc"))
	if n != 2 || err == nil {
		t.Errorf("Write = %d, %v, want 2, fault", n, err)
	}
}
