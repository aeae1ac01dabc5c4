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
	"fmt"

	"redk.dev/redk/pkg/kernel"
	"redk.dev/redk/pkg/log"
)

// writeChunkSize is the number of bytes copied from the caller at a time.
const writeChunkSize = 512

// Write implements syscall WRITE. The bytes go to the serial line and the
// display.
func Write(k *kernel.Kernel, args kernel.SyscallArguments) (uint32, error) {
	addr := args[0].Pointer()
	size := args[1].Uint()

	var buf [writeChunkSize]byte
	for done := uint32(0); done < size; {
		start, ok := addr.AddLength(done)
		if !ok {
			return 0, fmt.Errorf("write at %v: address overflow", addr)
		}
		chunk := buf[:min(size-done, writeChunkSize)]
		n, err := k.Memory().CopyIn(start, chunk)
		if n > 0 {
			emit(k, chunk[:n])
		}
		if err != nil {
			return 0, fmt.Errorf("write of %d bytes at %v: %w", size, start, err)
		}
		done += uint32(n)
	}
	return size, nil
}

func emit(k *kernel.Kernel, b []byte) {
	if _, err := k.Serial.Write(b); err != nil {
		log.Debugf("Serial write failed: %v", err)
	}
	if _, err := k.Display.Write(b); err != nil {
		log.Debugf("Display write failed: %v", err)
	}
}
