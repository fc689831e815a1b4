// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package alloctracer

/*
#include "trampoline.h"
*/
import "C"

import (
	"unsafe"

	"go.opentelemetry.io/ebpf-profiler/frame"
	"go.opentelemetry.io/ebpf-profiler/libpf"
	"go.opentelemetry.io/ebpf-profiler/sigchain"
)

// trampolineAddr is the address sigchain.Install is given: a small C
// function, not a Go one, because the kernel invokes a signal handler with
// the platform's native calling convention and Go's runtime does not let an
// exported Go function be installed as a sigaction handler directly.
func trampolineAddr() unsafe.Pointer {
	return unsafe.Pointer(C.trapTrampoline)
}

//export goTrapHandler
func goTrapHandler(sig C.int, info *C.siginfo_t, ucontext unsafe.Pointer) {
	handleTrap(int(sig), unsafe.Pointer(info), ucontext)
}

// handleTrap is the async-signal-safe entry point: no allocation, no locks
// beyond the lock-free ring push and the CAS throttle, no logging. It may
// run concurrently on as many threads as have simultaneously trapped.
func handleTrap(signo int, info, ucontext unsafe.Pointer) {
	t := active.Load()
	if t == nil {
		return
	}

	ctx := frame.NewContext(ucontext)
	pc := ctx.PC()

	_, isV2, outside, ok := t.traps.Match(pc)
	if !ok {
		sigchain.Forward(t.prevHandler, signo, info, ucontext)
		return
	}

	classHandle := ctx.Arg(0)
	var size uintptr
	switch {
	case !isV2 && !outside:
		size = ctx.Arg(1) // legacy in_new_tlab(class, tlab_size, alloc_size)
	case !isV2 && outside:
		size = ctx.Arg(1) // legacy outside_tlab(class, alloc_size)
	case isV2 && !outside:
		size = ctx.Arg(2) // v2 in_new_tlab(class, obj, tlab_size, alloc_size, thread)
	default:
		size = ctx.Arg(2) // v2 outside_tlab(class, obj, alloc_size, thread)
	}

	t.recordAllocation(classHandle, uint64(size), outside)

	ctx.Ret()
}

// recordAllocation implements the throttle-then-resolve-then-submit
// sequence. Only the throttle CAS and the single klassHandle pointer
// dereference happen here, in signal context; resolving the symbol to a Go
// string is deferred to drainLoop.
func (t *Tracer) recordAllocation(classHandle uintptr, size uint64, outside bool) {
	if size == 0 || size > maxPlausibleSize {
		return
	}
	if !shouldSample(&t.allocatedBytes, t.cfg.Interval, size) {
		return
	}

	nameSymbol := t.offsets.NameSymbol(t.selfMem, libpf.Address(classHandle))
	methodID := uintptr(nameSymbol)
	if outside {
		methodID ^= 1
	}

	t.ring.push(pendingSample{methodID: methodID, size: size, outside: outside})
}
