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

package memfs

import (
	"errors"
	"io"
	iofs "io/fs"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestFromFS(t *testing.T) {
	f, err := FromFS(fstest.MapFS{
		"hello.txt": {Data: []byte("hello")},
		"bin/shell": {Data: []byte("\x7fELF")},
		"bin/lib":   {Mode: iofs.ModeDir | 0755},
	})
	if err != nil {
		t.Fatalf("FromFS: %v", err)
	}
	if diff := cmp.Diff([]string{"bin/shell", "hello.txt"}, f.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
	if _, ok := f.Lookup("Hello.txt"); ok {
		t.Errorf("Lookup matched a different case")
	}
	if _, ok := f.Lookup("/hello.txt"); ok {
		t.Errorf("Lookup matched a leading slash")
	}
}

func TestIndependentCursors(t *testing.T) {
	f := New()
	f.Add("a", []byte("abcdef"))

	h1, _ := f.Lookup("a")
	h2, _ := f.Lookup("a")
	buf := make([]byte, 4)
	if n, err := h1.Read(buf); n != 4 || err != nil {
		t.Fatalf("Read: got (%d, %v), want (4, nil)", n, err)
	}
	if n, _ := h2.Read(buf[:2]); n != 2 || string(buf[:2]) != "ab" {
		t.Errorf("second handle read %q, want %q", buf[:n], "ab")
	}
	if n, err := h1.Read(buf); n != 2 || err != nil || string(buf[:2]) != "ef" {
		t.Errorf("Read: got (%d, %v, %q), want (2, nil, \"ef\")", n, err, buf[:n])
	}
	if n, err := h1.Read(buf); n != 0 || err != io.EOF {
		t.Errorf("Read at EOF: got (%d, %v), want (0, EOF)", n, err)
	}
}

func TestSeek(t *testing.T) {
	f := New()
	f.Add("a", []byte("0123456789"))
	h, _ := f.Lookup("a")

	for _, tc := range []struct {
		offset  int64
		whence  int
		want    int64
		wantErr error
	}{
		{offset: 3, whence: io.SeekStart, want: 3},
		{offset: 2, whence: io.SeekCurrent, want: 5},
		{offset: -1, whence: io.SeekEnd, want: 9},
		{offset: 100, whence: io.SeekStart, want: 10},
		{offset: -11, whence: io.SeekEnd, wantErr: ErrNegativeOffset},
		{offset: 0, whence: 3, wantErr: ErrBadWhence},
		{offset: 0, whence: io.SeekCurrent, want: 10},
	} {
		got, err := h.Seek(tc.offset, tc.whence)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Seek(%d, %d): got error %v, want %v", tc.offset, tc.whence, err, tc.wantErr)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("Seek(%d, %d) = (%d, %v), want (%d, nil)", tc.offset, tc.whence, got, err, tc.want)
		}
	}
}

func TestClose(t *testing.T) {
	f := New()
	f.Add("a", []byte("x"))
	h, _ := f.Lookup("a")
	file := h.(*File)
	if err := file.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !file.Closed() {
		t.Errorf("Closed() = false after Close")
	}
	if _, err := file.Read(make([]byte, 1)); !errors.Is(err, ErrClosed) {
		t.Errorf("Read after Close: got %v, want %v", err, ErrClosed)
	}
	if err := file.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close: got %v, want %v", err, ErrClosed)
	}
}
