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
	"redk.dev/redk/pkg/usermem"
)

// maxPathLen bounds the length of a path, including the terminating NUL.
const maxPathLen = 256

// Open implements syscall OPEN. Names are matched exactly; flags are
// ignored.
func Open(k *kernel.Kernel, args kernel.SyscallArguments) (uint32, error) {
	addr := args[0].Pointer()

	name, err := usermem.CopyStringIn(k.Memory(), addr, maxPathLen)
	if err != nil {
		return 0, fmt.Errorf("open: reading path at %v: %w", addr, err)
	}
	file, ok := k.FS().Lookup(name)
	if !ok {
		return 0, fmt.Errorf("open %q: no such file", name)
	}
	fd, err := k.FDTable().Store(file)
	if err != nil {
		return 0, fmt.Errorf("open %q: %w", name, err)
	}
	return uint32(fd), nil
}

// Close implements syscall CLOSE.
func Close(k *kernel.Kernel, args kernel.SyscallArguments) (uint32, error) {
	fd := args[0].Int()

	if err := k.FDTable().Close(fd); err != nil {
		return 0, fmt.Errorf("close %d: %w", fd, err)
	}
	return 0, nil
}
