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

//go:build !386

package ring0

// entryBase is where the placeholder entry points of hosted builds start.
// Hosted builds have no stubs; gates only need distinct, stable offsets.
const entryBase = 0x00100000

func defaultEntries() map[Vector]uint32 {
	entries := make(map[Vector]uint32)
	for i, v := range []Vector{DivideByZero, Timer, Keyboard, Syscall} {
		entries[v] = entryBase + uint32(i)*16
	}
	return entries
}
