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

	"redk.dev/redk/pkg/kernel"
)

// errNoKey is returned by GETKEY when the keyboard buffer is empty.
var errNoKey = errors.New("no scan code buffered")

// GetKey implements syscall GETKEY. It never waits.
func GetKey(k *kernel.Kernel, args kernel.SyscallArguments) (uint32, error) {
	scan, ok := k.ScanBuffer().Pop()
	if !ok {
		return 0, errNoKey
	}
	return uint32(scan), nil
}

// GetTick implements syscall GETTICK.
func GetTick(k *kernel.Kernel, args kernel.SyscallArguments) (uint32, error) {
	return k.Timekeeper().Uptime(), nil
}
