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

package pc

import (
	"redk.dev/redk/pkg/ring0"
	"redk.dev/redk/pkg/sync"
)

// 16550 UART registers, relative to the base port. With DLAB set, the data
// and interrupt enable registers hold the baud rate divisor.
const (
	uartData = 0
	uartIER  = 1
	uartFCR  = 2
	uartLCR  = 3
)

const (
	lcr8Bits = 0x03
	lcrDLAB  = 0x80

	// fcrEnable enables and clears both FIFOs with a trigger level of 8
	// bytes.
	fcrEnable = 0x01 | 0x02 | 0x04 | 2<<6

	ierTHREmpty = 0x02

	// divisor38400 is the baud rate divisor for 38400 baud.
	divisor38400 = 3
)

// Serial is a 16550 UART used for output only.
type Serial struct {
	mu   sync.Spinlock
	m    ring0.Machine
	base uint16
}

// NewSerial initializes the UART at base for 38400 8N1.
func NewSerial(m ring0.Machine, base uint16) *Serial {
	s := &Serial{m: m, base: base}
	m.OutB(base+uartLCR, lcr8Bits|lcrDLAB)
	m.OutB(base+uartData, divisor38400)
	m.OutB(base+uartIER, 0)
	m.OutB(base+uartLCR, lcr8Bits)
	m.OutB(base+uartFCR, fcrEnable)
	m.OutB(base+uartIER, ierTHREmpty)
	return s
}

// Write implements io.Writer.Write. It never fails.
func (s *Serial) Write(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range b {
		s.m.OutB(s.base+uartData, c)
	}
	return len(b), nil
}
