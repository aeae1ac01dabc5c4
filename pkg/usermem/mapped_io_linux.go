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

//go:build linux

package usermem

import (
	"fmt"

	"golang.org/x/sys/unix"

	"redk.dev/redk/pkg/hostarch"
)

// MappedIO is a BytesIO backed by an anonymous private mapping instead of the
// Go heap. The host tool uses it as the arena a program is loaded into.
type MappedIO struct {
	BytesIO
}

// NewMappedIO maps size bytes of zeroed memory whose first byte lives at base.
func NewMappedIO(base hostarch.Addr, size int) (*MappedIO, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mapping arena of %d bytes: %w", size, ErrInvalidLength)
	}
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("mapping arena of %d bytes: %w", size, err)
	}
	return &MappedIO{BytesIO{Bytes: b, Base: base}}, nil
}

// Close unmaps the arena. m must not be used afterwards.
func (m *MappedIO) Close() error {
	if m.Bytes == nil {
		return nil
	}
	err := unix.Munmap(m.Bytes)
	m.Bytes = nil
	return err
}
