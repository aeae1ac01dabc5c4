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
	"bytes"
	"errors"
	"fmt"
	"io"

	"redk.dev/redk/pkg/bitmap"
	"redk.dev/redk/pkg/fs"
	"redk.dev/redk/pkg/log"
	"redk.dev/redk/pkg/sync"
)

// MaxFDs is the number of descriptor slots.
const MaxFDs = 32

var (
	// ErrBadFD is returned for descriptors that are out of range or empty.
	ErrBadFD = errors.New("bad file descriptor")

	// ErrTableFull is returned when every slot is occupied.
	ErrTableFull = errors.New("too many open files")
)

// FDTable maps descriptors to open files. The table owns every file stored
// in it until the descriptor is closed.
type FDTable struct {
	mu sync.Spinlock

	// used has a bit set for every occupied slot.
	used bitmap.Bitmap

	files [MaxFDs]fs.FileHandle
}

// NewFDTable returns an empty table.
func NewFDTable() *FDTable {
	return &FDTable{used: bitmap.New(MaxFDs)}
}

// Store installs file in the lowest free slot and returns its descriptor.
// The table is unchanged on error.
func (f *FDTable) Store(file fs.FileHandle) (int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fd, err := f.used.FirstZero(0)
	if err != nil {
		return -1, ErrTableFull
	}
	f.used.Add(fd)
	f.files[fd] = file
	return int32(fd), nil
}

// Get returns the file at fd.
func (f *FDTable) Get(fd int32) (fs.FileHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fd < 0 || fd >= MaxFDs || !f.used.Contains(uint32(fd)) {
		return nil, ErrBadFD
	}
	return f.files[fd], nil
}

// Close releases fd. Files implementing io.Closer are closed; a failure to
// close is logged and the slot is released regardless.
func (f *FDTable) Close(fd int32) error {
	f.mu.Lock()
	if fd < 0 || fd >= MaxFDs || !f.used.Contains(uint32(fd)) {
		f.mu.Unlock()
		return ErrBadFD
	}
	file := f.files[fd]
	f.files[fd] = nil
	f.used.Remove(uint32(fd))
	f.mu.Unlock()

	if c, ok := file.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warningf("Closing fd %d: %v", fd, err)
		}
	}
	return nil
}

// Len returns the number of occupied slots.
func (f *FDTable) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int(f.used.GetNumOnes())
}

// FDs returns the occupied descriptors in increasing order.
func (f *FDTable) FDs() []int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var fds []int32
	for _, fd := range f.used.ToSlice() {
		fds = append(fds, int32(fd))
	}
	return fds
}

// String is a stringer for FDTable.
func (f *FDTable) String() string {
	var b bytes.Buffer
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fd := range f.used.ToSlice() {
		name := fmt.Sprintf("%T", f.files[fd])
		if n, ok := f.files[fd].(interface{ Name() string }); ok {
			name = n.Name()
		}
		fmt.Fprintf(&b, "\tfd:%d => name %s\n", fd, name)
	}
	return b.String()
}
