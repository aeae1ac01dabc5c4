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

package kernel

import (
	"fmt"
	"sort"

	"redk.dev/redk/pkg/hostarch"
	"redk.dev/redk/pkg/log"
	"redk.dev/redk/pkg/ring0"
)

// Sentinel is the result of every failed syscall.
const Sentinel = ^uint32(0)

// SyscallArgument is an argument passed to a syscall.
type SyscallArgument struct {
	// Value is the register value.
	Value uint32
}

// SyscallArguments represents the set of arguments passed to a syscall, taken
// from EBX, ECX and EDX.
type SyscallArguments [3]SyscallArgument

// Pointer returns the hostarch.Addr representation of a pointer argument.
func (a SyscallArgument) Pointer() hostarch.Addr {
	return hostarch.Addr(a.Value)
}

// Int returns the int32 representation of a 32-bit signed integer argument.
func (a SyscallArgument) Int() int32 {
	return int32(a.Value)
}

// Uint returns the uint32 representation of a 32-bit unsigned integer
// argument.
func (a SyscallArgument) Uint() uint32 {
	return a.Value
}

// SizeT returns the int representation of a size_t argument.
func (a SyscallArgument) SizeT() int {
	return int(a.Value)
}

// SyscallFn is a syscall implementation. A non-nil error is reported to the
// caller as Sentinel.
type SyscallFn func(k *Kernel, args SyscallArguments) (uint32, error)

// Syscall includes the syscall implementation and compatibility information.
type Syscall struct {
	// Name is the syscall name.
	Name string

	// Fn is the implementation of the syscall.
	Fn SyscallFn

	// Args names the register arguments, in order.
	Args []string

	// Note describes the result.
	Note string
}

// SyscallTable is the table of syscalls served by the kernel.
type SyscallTable struct {
	// Name is the ABI name.
	Name string

	// Table is the collection of functions.
	Table map[uint32]Syscall
}

// Lookup returns the syscall implementation, if one exists.
func (s *SyscallTable) Lookup(sysno uint32) SyscallFn {
	if sc, ok := s.Table[sysno]; ok {
		return sc.Fn
	}
	return nil
}

// LookupName looks up a syscall name.
func (s *SyscallTable) LookupName(sysno uint32) string {
	if sc, ok := s.Table[sysno]; ok {
		return sc.Name
	}
	return fmt.Sprintf("sys_%d", sysno) // Unlikely.
}

// LookupNo looks up a syscall number by name.
func (s *SyscallTable) LookupNo(name string) (uint32, error) {
	for i, sc := range s.Table {
		if sc.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("syscall %q not found", name)
}

// Numbers returns the syscall numbers in increasing order.
func (s *SyscallTable) Numbers() []uint32 {
	nums := make([]uint32, 0, len(s.Table))
	for i := range s.Table {
		nums = append(nums, i)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums
}

// Names returns the syscall names, ordered by number.
func (s *SyscallTable) Names() []string {
	var names []string
	for _, i := range s.Numbers() {
		names = append(names, s.Table[i].Name)
	}
	return names
}

// Dispatch serves the syscall described by ctx: the number is taken from EAX,
// the arguments from EBX, ECX and EDX, and the result is stored in EAX.
func (k *Kernel) Dispatch(ctx *ring0.InterruptContext) {
	args := SyscallArguments{{ctx.EBX}, {ctx.ECX}, {ctx.EDX}}
	ctx.EAX = k.executeSyscall(ctx.EAX, args)
}

// Syscall executes syscall sysno and returns its result.
func (k *Kernel) Syscall(sysno uint32, args SyscallArguments) uint32 {
	return k.executeSyscall(sysno, args)
}

func (k *Kernel) executeSyscall(sysno uint32, args SyscallArguments) uint32 {
	fn := k.syscalls.Lookup(sysno)
	if fn == nil {
		if k.trace != nil {
			k.trace.Debugf("Unknown syscall %d(%#x, %#x, %#x)", sysno, args[0].Value, args[1].Value, args[2].Value)
		}
		return Sentinel
	}

	rval, err := fn(k, args)
	if err != nil {
		if k.trace != nil {
			k.trace.Debugf("%s(%#x, %#x, %#x) failed: %v", k.syscalls.LookupName(sysno), args[0].Value, args[1].Value, args[2].Value, err)
		}
		return Sentinel
	}
	if k.trace != nil {
		k.trace.Debugf("%s(%#x, %#x, %#x) = %#x", k.syscalls.LookupName(sysno), args[0].Value, args[1].Value, args[2].Value, rval)
	}
	return rval
}

// newSyscallTracer returns the logger used to trace syscalls.
func newSyscallTracer() log.Logger {
	return log.BurstRateLimitedLogger(log.Log(), traceInterval, traceBurst)
}
