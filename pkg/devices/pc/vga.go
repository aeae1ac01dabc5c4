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
	"strings"

	"redk.dev/redk/pkg/hostarch"
	"redk.dev/redk/pkg/sync"
	"redk.dev/redk/pkg/usermem"
)

const (
	// TextBuffer is the address of the VGA text buffer.
	TextBuffer = hostarch.Addr(0xb8000)

	// TextWidth and TextHeight are the text mode dimensions.
	TextWidth  = 80
	TextHeight = 25

	// DefaultAttribute is light gray on black.
	DefaultAttribute = 0x07

	cellSize = 2
	rowSize  = TextWidth * cellSize
)

// TextDisplay writes to a VGA text buffer. Lines wrap at the right edge and
// the screen scrolls up when the last line is full.
type TextDisplay struct {
	mu sync.Spinlock

	mem  usermem.IO
	base hostarch.Addr

	// row and col are the cursor position.
	row, col int

	// attr is the color attribute of written characters.
	attr byte
}

// NewTextDisplay returns a display writing to the buffer at base in mem.
func NewTextDisplay(mem usermem.IO, base hostarch.Addr) *TextDisplay {
	return &TextDisplay{mem: mem, base: base, attr: DefaultAttribute}
}

// SetAttribute sets the color of subsequent characters.
func (d *TextDisplay) SetAttribute(attr byte) {
	d.mu.Lock()
	d.attr = attr
	d.mu.Unlock()
}

// Cursor returns the cursor position.
func (d *TextDisplay) Cursor() (row, col int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.row, d.col
}

// Clear blanks the screen and homes the cursor.
func (d *TextDisplay) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.mem.ZeroOut(d.base, TextHeight*rowSize); err != nil {
		return err
	}
	d.row, d.col = 0, 0
	return nil
}

// Lines returns the text of every row, without trailing blanks.
func (d *TextDisplay) Lines() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	buf := make([]byte, TextHeight*rowSize)
	if _, err := d.mem.CopyIn(d.base, buf); err != nil {
		return nil, err
	}
	lines := make([]string, TextHeight)
	for r := range lines {
		row := make([]byte, 0, TextWidth)
		for c := 0; c < TextWidth; c++ {
			row = append(row, buf[r*rowSize+c*cellSize])
		}
		lines[r] = strings.TrimRight(string(row), "\x00 ")
	}
	return lines, nil
}

// Write implements io.Writer.Write.
func (d *TextDisplay) Write(b []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, c := range b {
		if err := d.putLocked(c); err != nil {
			return i, err
		}
	}
	return len(b), nil
}

func (d *TextDisplay) putLocked(c byte) error {
	if c == '\n' {
		return d.newlineLocked()
	}
	if d.col >= TextWidth {
		if err := d.newlineLocked(); err != nil {
			return err
		}
	}
	addr := d.base + hostarch.Addr(d.row*rowSize+d.col*cellSize)
	if _, err := d.mem.CopyOut(addr, []byte{c, d.attr}); err != nil {
		return err
	}
	d.col++
	return nil
}

func (d *TextDisplay) newlineLocked() error {
	d.col = 0
	if d.row < TextHeight-1 {
		d.row++
		return nil
	}
	// Scroll up one line and blank the last.
	var buf [(TextHeight - 1) * rowSize]byte
	if _, err := d.mem.CopyIn(d.base+rowSize, buf[:]); err != nil {
		return err
	}
	if _, err := d.mem.CopyOut(d.base, buf[:]); err != nil {
		return err
	}
	_, err := d.mem.ZeroOut(d.base+hostarch.Addr((TextHeight-1)*rowSize), rowSize)
	return err
}
