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

// readChunkSize is the size of the bounce buffer between the file and the
// caller.
const readChunkSize = 4096

// Read implements syscall READ. It fills the buffer unless the end of the
// file is reached first. A failure after some bytes were transferred
// returns the count so far.
func Read(k *kernel.Kernel, args kernel.SyscallArguments) (uint32, error) {
	fd := args[0].Int()
	addr := args[1].Pointer()
	size := args[2].Uint()

	file, err := k.FDTable().Get(fd)
	if err != nil {
		return 0, fmt.Errorf("read %d: %w", fd, err)
	}

	var buf [readChunkSize]byte
	done := uint32(0)
	for done < size {
		n, rerr := file.Read(buf[:min(size-done, readChunkSize)])
		if n > 0 {
			dst, ok := addr.AddLength(done)
			if !ok {
				return partial(done, fmt.Errorf("read %d: address overflow", fd))
			}
			c, cerr := k.Memory().CopyOut(dst, buf[:n])
			done += uint32(c)
			if cerr != nil {
				// The file cursor is already past the bytes that
				// could not be copied.
				return partial(done, fmt.Errorf("read %d: copying to %v: %w", fd, dst, cerr))
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return partial(done, fmt.Errorf("read %d: %w", fd, rerr))
		}
		if n == 0 {
			// A reader making no progress without error is treated
			// as end of file.
			break
		}
	}
	return done, nil
}

// partial returns n if any bytes were transferred, err otherwise.
func partial(n uint32, err error) (uint32, error) {
	if n > 0 {
		return n, nil
	}
	return 0, err
}
