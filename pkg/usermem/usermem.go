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

// Package usermem governs access to memory owned by the user program.
//
// The kernel and the user program share one flat address space with no
// paging, so every access is a plain bounded copy. The IO implementations
// differ only in what backs the address space.
package usermem

import (
	"bytes"
	"errors"
	"io"

	"redk.dev/redk/pkg/hostarch"
)

var (
	// ErrFault is returned when an access falls outside the backing memory.
	ErrFault = errors.New("bad address")

	// ErrNameTooLong is returned by CopyStringIn when no NUL byte is found
	// within maxlen bytes.
	ErrNameTooLong = errors.New("string too long")

	// ErrInvalidLength is returned for negative lengths.
	ErrInvalidLength = errors.New("invalid length")
)

// IO provides access to the flat address space.
type IO interface {
	// CopyOut copies len(src) bytes from src to the memory mapped at addr. It
	// returns the number of bytes copied. If the number of bytes copied is <
	// len(src), it returns a non-nil error explaining why.
	CopyOut(addr hostarch.Addr, src []byte) (int, error)

	// CopyIn copies len(dst) bytes from the memory mapped at addr to dst.
	// It returns the number of bytes copied. If the number of bytes copied is
	// < len(dst), it returns a non-nil error explaining why.
	CopyIn(addr hostarch.Addr, dst []byte) (int, error)

	// ZeroOut sets toZero bytes to 0, starting at addr. It returns the number
	// of bytes zeroed. If the number of bytes zeroed is < toZero, it returns
	// a non-nil error explaining why.
	ZeroOut(addr hostarch.Addr, toZero int64) (int64, error)
}

// copyStringIncrement is the maximum number of bytes that are copied from
// virtual memory at a time by CopyStringIn.
const copyStringIncrement = 64

// CopyStringIn copies a NUL-terminated string starting at addr into a Go
// string. It returns ErrNameTooLong if no NUL byte is found within maxlen
// bytes. On any error the bytes read so far are returned as well.
func CopyStringIn(uio IO, addr hostarch.Addr, maxlen int) (string, error) {
	if maxlen < 0 {
		return "", ErrInvalidLength
	}
	var chunk [copyStringIncrement]byte
	buf := make([]byte, 0, min(maxlen, copyStringIncrement))
	for done := 0; done < maxlen; {
		start, ok := addr.AddLength(uint32(done))
		if !ok {
			return string(buf), ErrFault
		}
		readlen := min(maxlen-done, copyStringIncrement)
		n, err := uio.CopyIn(start, chunk[:readlen])
		// Look for the terminating zero byte, which may have occurred before
		// hitting err.
		if i := bytes.IndexByte(chunk[:n], 0); i >= 0 {
			return string(append(buf, chunk[:i]...)), nil
		}
		buf = append(buf, chunk[:n]...)
		done += n
		if err != nil {
			return string(buf), err
		}
	}
	return string(buf), ErrNameTooLong
}

// IOReadWriter is an io.ReadWriter that reads from / writes to addresses
// starting at Addr in IO.
//
// IOReadWriter is not thread-safe.
type IOReadWriter struct {
	IO   IO
	Addr hostarch.Addr
}

// Read implements io.Reader.Read.
//
// Note that an address space does not have an "end of file", so Read can only
// return io.EOF if IO.CopyIn returns io.EOF. Attempts to read unmapped or
// unreadable memory are reported as ErrFault.
func (rw *IOReadWriter) Read(dst []byte) (int, error) {
	n, err := rw.IO.CopyIn(rw.Addr, dst)
	end, ok := rw.Addr.AddLength(uint32(n))
	if ok {
		rw.Addr = end
	} else if err == nil {
		err = ErrFault
	}
	return n, err
}

// Write implements io.Writer.Write.
func (rw *IOReadWriter) Write(src []byte) (int, error) {
	n, err := rw.IO.CopyOut(rw.Addr, src)
	end, ok := rw.Addr.AddLength(uint32(n))
	if ok {
		rw.Addr = end
	} else if err == nil {
		err = ErrFault
	}
	return n, err
}

var _ io.ReadWriter = (*IOReadWriter)(nil)
