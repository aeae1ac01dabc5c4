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

// Package memfs provides a read-only in-memory filesystem.
package memfs

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"sort"

	"redk.dev/redk/pkg/fs"
	"redk.dev/redk/pkg/log"
	"redk.dev/redk/pkg/sync"
)

var (
	// ErrClosed is returned by operations on a closed file.
	ErrClosed = errors.New("file already closed")

	// ErrNegativeOffset is returned by Seek when the new offset would be
	// negative.
	ErrNegativeOffset = errors.New("negative offset")

	// ErrBadWhence is returned by Seek for an unknown whence.
	ErrBadWhence = errors.New("invalid whence")
)

// Filesystem is an immutable set of named files.
type Filesystem struct {
	mu    sync.Spinlock
	files map[string][]byte
}

// New returns an empty Filesystem.
func New() *Filesystem {
	return &Filesystem{files: make(map[string][]byte)}
}

// FromFS copies every regular file of fsys into a new Filesystem. Names are
// the slash-separated paths relative to the root of fsys.
func FromFS(fsys iofs.FS) (*Filesystem, error) {
	f := New()
	err := iofs.WalkDir(fsys, ".", func(name string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := iofs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		f.Add(name, data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("populating filesystem: %w", err)
	}
	log.Debugf("memfs: loaded %d files", len(f.files))
	return f, nil
}

// Add adds or replaces name. data is not copied and must not be modified
// afterwards.
func (f *Filesystem) Add(name string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[name] = data
}

// Lookup implements fs.Filesystem.Lookup.
func (f *Filesystem) Lookup(name string) (fs.FileHandle, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[name]
	if !ok {
		return nil, false
	}
	return &File{name: name, data: data}, true
}

// ReadFile returns the contents of name.
func (f *Filesystem) ReadFile(name string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[name]
	return data, ok
}

// Names returns the file names in lexical order.
func (f *Filesystem) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.files))
	for name := range f.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// File is an open file with its own cursor.
type File struct {
	name   string
	data   []byte
	off    int64
	closed bool
}

// Name returns the name the file was opened with.
func (fd *File) Name() string {
	return fd.name
}

// Size returns the file size.
func (fd *File) Size() int64 {
	return int64(len(fd.data))
}

// Read implements io.Reader.Read.
func (fd *File) Read(dst []byte) (int, error) {
	if fd.closed {
		return 0, ErrClosed
	}
	if fd.off >= int64(len(fd.data)) {
		return 0, io.EOF
	}
	n := copy(dst, fd.data[fd.off:])
	fd.off += int64(n)
	return n, nil
}

// ReadAt implements io.ReaderAt.ReadAt.
func (fd *File) ReadAt(dst []byte, off int64) (int, error) {
	if fd.closed {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrNegativeOffset
	}
	if off >= int64(len(fd.data)) {
		return 0, io.EOF
	}
	n := copy(dst, fd.data[off:])
	if n < len(dst) {
		return n, io.EOF
	}
	return n, nil
}

// Seek implements io.Seeker.Seek. Offsets past the end of the file are
// clamped to the end.
func (fd *File) Seek(offset int64, whence int) (int64, error) {
	if fd.closed {
		return 0, ErrClosed
	}
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = fd.off
	case io.SeekEnd:
		base = int64(len(fd.data))
	default:
		return 0, ErrBadWhence
	}
	off := base + offset
	if off < 0 {
		return 0, ErrNegativeOffset
	}
	if size := int64(len(fd.data)); off > size {
		off = size
	}
	fd.off = off
	return off, nil
}

// Close implements io.Closer.Close.
func (fd *File) Close() error {
	if fd.closed {
		return ErrClosed
	}
	fd.closed = true
	return nil
}

// Closed reports whether Close was called.
func (fd *File) Closed() bool {
	return fd.closed
}

var (
	_ fs.Filesystem = (*Filesystem)(nil)
	_ fs.FileHandle = (*File)(nil)
	_ io.ReaderAt   = (*File)(nil)
	_ io.Closer     = (*File)(nil)
)
