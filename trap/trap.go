// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package trap implements one interception target: a symbol resolved
// against a nativelib.Library whose entry prologue can be patched with a
// hardware breakpoint and later restored. It mirrors the Trap/TrapSet value
// objects from the engine this replaces: install/uninstall flip a single
// instruction slot in place, and a resolve failure simply leaves the trap
// permanently unresolved rather than erroring out immediately — the caller
// (the allocation tracer) decides whether that is fatal.
package trap // import "go.opentelemetry.io/ebpf-profiler/trap"

import (
	"go.opentelemetry.io/ebpf-profiler/arch"
	"go.opentelemetry.io/ebpf-profiler/libpf"
	"go.opentelemetry.io/ebpf-profiler/memaccess"
	"go.opentelemetry.io/ebpf-profiler/nativelib"
)

// Symbol prefixes, bit-exact: compatibility with the target JVM's mangled
// names depends on them matching exactly what the compiler that built it
// emitted.
const (
	PrefixInNewTLAB     = "_ZN11AllocTracer33send_allocation_in_new_tlab_event"
	PrefixOutsideTLAB   = "_ZN11AllocTracer34send_allocation_outside_tlab_event"
	PrefixInNewTLABV2   = "_ZN11AllocTracer27send_allocation_in_new_tlab"
	PrefixOutsideTLABV2 = "_ZN11AllocTracer28send_allocation_outside_tlab"
)

func toAddress(p uintptr) libpf.Address {
	return libpf.Address(p)
}

// Trap is one interception target: a symbol prefix that, once resolved
// against a library, names the address of a function whose prologue can be
// overwritten with a breakpoint instruction.
type Trap struct {
	// Prefix is the immutable mangled-name prefix this trap resolves against.
	Prefix string

	entry     uintptr
	savedInsn []byte
	installed bool
}

// New creates an unresolved trap for the given symbol prefix.
func New(prefix string) *Trap {
	return &Trap{Prefix: prefix}
}

// Resolved reports whether this trap found a matching symbol.
func (t *Trap) Resolved() bool {
	return t.entry != 0
}

// Installed reports whether the breakpoint is currently written in place.
func (t *Trap) Installed() bool {
	return t.installed
}

// Entry returns the resolved entry address, or 0 if unresolved.
func (t *Trap) Entry() uintptr {
	return t.entry
}

// Resolve looks up the trap's prefix in lib. If already resolved, it is a
// no-op returning true. On success the entry address is recorded and the
// containing page is elevated to READ|WRITE|EXEC via mprotect, a change
// that is kept for the remaining lifetime of the process (there is no
// paired lower step: once a trap may need reinstalling, the page must stay
// writable).
func (t *Trap) Resolve(lib *nativelib.Library) bool {
	if t.Resolved() {
		return true
	}
	addr, _, found := lib.FindSymbolByPrefix(t.Prefix)
	if !found {
		return false
	}

	width := arch.InstructionWidth
	patchAddr := addr + uintptr(arch.BreakpointOffset)*uintptr(width)
	if err := memaccess.MakeWritable(patchAddr, width); err != nil {
		return false
	}

	t.entry = addr
	return true
}

// Install writes the breakpoint instruction over this trap's entry and
// flushes the instruction cache so every core observes it before execution
// reaches the patched address. No-op if unresolved or already installed.
func (t *Trap) Install() {
	if !t.Resolved() || t.installed {
		return
	}
	patchAddr := t.entry + uintptr(arch.BreakpointOffset)*uintptr(arch.InstructionWidth)
	saved, err := memaccess.Patch(toAddress(patchAddr), arch.Breakpoint)
	if err != nil {
		return
	}
	t.savedInsn = saved
	arch.FlushCache(patchAddr)
	t.installed = true
}

// Uninstall writes the saved original instruction back. No-op if this trap
// was never installed.
func (t *Trap) Uninstall() {
	if !t.installed {
		return
	}
	patchAddr := t.entry + uintptr(arch.BreakpointOffset)*uintptr(arch.InstructionWidth)
	_ = memaccess.Restore(toAddress(patchAddr), t.savedInsn)
	arch.FlushCache(patchAddr)
	t.installed = false
}

// Matches reports whether the trapped program counter pc belongs to this
// trap, accepting the kernel reporting pc either at the breakpoint
// instruction itself or at the instruction immediately following it
// (architecture-dependent).
func (t *Trap) Matches(pc uintptr) bool {
	if !t.installed {
		return false
	}
	patchAddr := t.entry + uintptr(arch.BreakpointOffset)*uintptr(arch.InstructionWidth)
	delta := pc - patchAddr
	return delta <= uintptr(arch.InstructionWidth)
}
