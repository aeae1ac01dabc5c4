// Copyright 2018 The gVisor Authors.
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

package usermem

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"redk.dev/redk/pkg/hostarch"
)

func newBytesIOString(s string) *BytesIO {
	return &BytesIO{Bytes: []byte(s)}
}

func TestBytesIOCopyOutSuccess(t *testing.T) {
	b := newBytesIOString("ABCDE")
	n, err := b.CopyOut(1, []byte("foo"))
	if wantN := 3; n != wantN || err != nil {
		t.Errorf("CopyOut: got (%v, %v), wanted (%v, nil)", n, err, wantN)
	}
	if got, want := b.Bytes, []byte("AfooE"); !bytes.Equal(got, want) {
		t.Errorf("Bytes: got %q, wanted %q", got, want)
	}
}

func TestBytesIOCopyOutFailure(t *testing.T) {
	b := newBytesIOString("ABC")
	n, err := b.CopyOut(1, []byte("foo"))
	if wantN := 2; n != wantN || !errors.Is(err, ErrFault) {
		t.Errorf("CopyOut: got (%v, %v), wanted (%v, %v)", n, err, wantN, ErrFault)
	}
	if got, want := b.Bytes, []byte("Afo"); !bytes.Equal(got, want) {
		t.Errorf("Bytes: got %q, wanted %q", got, want)
	}
}

func TestBytesIOCopyInSuccess(t *testing.T) {
	b := newBytesIOString("AfooE")
	var dst [3]byte
	n, err := b.CopyIn(1, dst[:])
	if wantN := 3; n != wantN || err != nil {
		t.Errorf("CopyIn: got (%v, %v), wanted (%v, nil)", n, err, wantN)
	}
	if got, want := dst[:], []byte("foo"); !bytes.Equal(got, want) {
		t.Errorf("dst: got %q, wanted %q", got, want)
	}
}

func TestBytesIOCopyInFailure(t *testing.T) {
	b := newBytesIOString("Afo")
	var dst [3]byte
	n, err := b.CopyIn(1, dst[:])
	if wantN := 2; n != wantN || !errors.Is(err, ErrFault) {
		t.Errorf("CopyIn: got (%v, %v), wanted (%v, %v)", n, err, wantN, ErrFault)
	}
	if got, want := dst[:], []byte("fo\x00"); !bytes.Equal(got, want) {
		t.Errorf("dst: got %q, wanted %q", got, want)
	}
}

func TestBytesIOBase(t *testing.T) {
	b := NewBytesIO(0x1000, 4)
	if _, err := b.CopyOut(0xfff, []byte("x")); !errors.Is(err, ErrFault) {
		t.Errorf("CopyOut below base: got %v, wanted %v", err, ErrFault)
	}
	if n, err := b.CopyOut(0x1002, []byte("xy")); n != 2 || err != nil {
		t.Errorf("CopyOut: got (%v, %v), wanted (2, nil)", n, err)
	}
	if got, want := b.Bytes, []byte("\x00\x00xy"); !bytes.Equal(got, want) {
		t.Errorf("Bytes: got %q, wanted %q", got, want)
	}
	if got, want := b.Range(), (hostarch.AddrRange{Start: 0x1000, End: 0x1004}); got != want {
		t.Errorf("Range: got %v, wanted %v", got, want)
	}
}

func TestBytesIOZeroOutSuccess(t *testing.T) {
	b := newBytesIOString("ABCD")
	n, err := b.ZeroOut(1, 2)
	if wantN := int64(2); n != wantN || err != nil {
		t.Errorf("ZeroOut: got (%v, %v), wanted (%v, nil)", n, err, wantN)
	}
	if got, want := b.Bytes, []byte("A\x00\x00D"); !bytes.Equal(got, want) {
		t.Errorf("Bytes: got %q, wanted %q", got, want)
	}
}

func TestBytesIOZeroOutFailure(t *testing.T) {
	b := newBytesIOString("ABC")
	n, err := b.ZeroOut(1, 3)
	if wantN := int64(2); n != wantN || !errors.Is(err, ErrFault) {
		t.Errorf("ZeroOut: got (%v, %v), wanted (%v, %v)", n, err, wantN, ErrFault)
	}
	if got, want := b.Bytes, []byte("A\x00\x00"); !bytes.Equal(got, want) {
		t.Errorf("Bytes: got %q, wanted %q", got, want)
	}
}

func TestCopyStringInShort(t *testing.T) {
	// Tests for string length <= copyStringIncrement.
	want := strings.Repeat("A", copyStringIncrement-2)
	mem := want + "\x00"
	if got, err := CopyStringIn(newBytesIOString(mem), 0, 2*copyStringIncrement); got != want || err != nil {
		t.Errorf("CopyStringIn: got (%q, %v), wanted (%q, nil)", got, err, want)
	}
}

func TestCopyStringInLong(t *testing.T) {
	// Tests for string length > copyStringIncrement (requiring multiple calls
	// to IO.CopyIn()).
	want := strings.Repeat("A", copyStringIncrement*3/4) + strings.Repeat("B", copyStringIncrement*3/4)
	mem := want + "\x00"
	if got, err := CopyStringIn(newBytesIOString(mem), 0, 2*copyStringIncrement); got != want || err != nil {
		t.Errorf("CopyStringIn: got (%q, %v), wanted (%q, nil)", got, err, want)
	}
}

func TestCopyStringInNoTerminatingZeroByte(t *testing.T) {
	want := strings.Repeat("A", copyStringIncrement-1)
	got, err := CopyStringIn(newBytesIOString(want), 0, 2*copyStringIncrement)
	if got != want || !errors.Is(err, ErrFault) {
		t.Errorf("CopyStringIn: got (%q, %v), wanted (%q, %v)", got, err, want, ErrFault)
	}
}

func TestCopyStringInTruncatedByMaxlen(t *testing.T) {
	got, err := CopyStringIn(newBytesIOString(strings.Repeat("A", 10)), 0, 5)
	if want := strings.Repeat("A", 5); got != want || !errors.Is(err, ErrNameTooLong) {
		t.Errorf("CopyStringIn: got (%q, %v), wanted (%q, %v)", got, err, want, ErrNameTooLong)
	}
}

func TestIOReadWriter(t *testing.T) {
	b := NewBytesIO(0x100, 8)
	w := &IOReadWriter{IO: b, Addr: 0x102}
	if n, err := io.Copy(w, strings.NewReader("hello")); n != 5 || err != nil {
		t.Fatalf("io.Copy: got (%v, %v), wanted (5, nil)", n, err)
	}
	if w.Addr != 0x107 {
		t.Errorf("Addr after write: got %v, wanted 0x107", w.Addr)
	}
	if _, err := w.Write([]byte("!!")); !errors.Is(err, ErrFault) {
		t.Errorf("Write past end: got %v, wanted %v", err, ErrFault)
	}

	r := &IOReadWriter{IO: b, Addr: 0x102}
	var dst [5]byte
	if _, err := io.ReadFull(r, dst[:]); err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	if got := string(dst[:]); got != "hello" {
		t.Errorf("ReadFull: got %q, wanted %q", got, "hello")
	}
}
