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

package ring0

import (
	"sync/atomic"
)

// Handler receives every interrupt taken by the kernel.
type Handler interface {
	// HandleTrap handles the interrupt described by ctx. It may modify ctx;
	// the stub restores registers from it. HandleTrap must not block.
	HandleTrap(ctx *InterruptContext)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx *InterruptContext)

// HandleTrap implements Handler.HandleTrap.
func (f HandlerFunc) HandleTrap(ctx *InterruptContext) {
	f(ctx)
}

// trapHandler is the one well-known handle the entry stubs reach. It is set
// by ActivateInterrupts before interrupts are first enabled.
var trapHandler atomic.Pointer[Handler]

// setTrapHandler installs h as the trap handler.
func setTrapHandler(h Handler) {
	trapHandler.Store(&h)
}

// Trap delivers ctx to the installed handler. Interrupts taken before a
// handler is installed are ignored.
//
// The entry stubs call this with the context they saved on the stack.
//
//go:nosplit
func Trap(ctx *InterruptContext) {
	h := trapHandler.Load()
	if h == nil {
		return
	}
	(*h).HandleTrap(ctx)
}
