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

// Package fs defines what the kernel needs from a filesystem: exact-name
// lookup returning a readable, seekable handle.
package fs

import (
	"io"
)

// FileHandle is an open file. It is owned by the descriptor table slot it is
// stored in.
type FileHandle interface {
	io.Reader
	io.Seeker
}

// Filesystem resolves names to files. The filesystem is read-only and names
// are matched exactly.
type Filesystem interface {
	// Lookup opens name. Each call returns an independent handle with its
	// own cursor at offset zero.
	Lookup(name string) (FileHandle, bool)
}
