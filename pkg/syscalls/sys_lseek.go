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

package syscalls

import (
	"errors"
	"fmt"
	"io"

	"redk.dev/redk/pkg/kernel"
)

// Seek whence values.
const (
	seekStart   = 0
	seekCurrent = 1
	seekEnd     = 2
)

var errBadWhence = errors.New("invalid whence")

// Seek implements syscall SEEK.
//
// The target is computed in 32-bit arithmetic: a negative offset wraps, and
// a target past the end of the file is clamped to the end. Only a bad whence
// or fd fails.
func Seek(k *kernel.Kernel, args kernel.SyscallArguments) (uint32, error) {
	fd := args[0].Int()
	offset := args[1].Uint()
	whence := args[2].Uint()

	var sw int
	switch whence {
	case seekStart:
		sw = io.SeekStart
	case seekCurrent:
		sw = io.SeekCurrent
	case seekEnd:
		sw = io.SeekEnd
	default:
		return 0, fmt.Errorf("seek %d: %w %d", fd, errBadWhence, whence)
	}

	file, err := k.FDTable().Get(fd)
	if err != nil {
		return 0, fmt.Errorf("seek %d: %w", fd, err)
	}
	var base int64
	if sw != io.SeekStart {
		if base, err = file.Seek(0, sw); err != nil {
			return 0, fmt.Errorf("seek %d: %w", fd, err)
		}
	}
	target := uint32(base) + offset
	off, err := file.Seek(int64(target), io.SeekStart)
	if err != nil {
		return 0, fmt.Errorf("seek %d: %w", fd, err)
	}
	return uint32(off), nil
}
