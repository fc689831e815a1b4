// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package frame reads and mutates the trapped machine context handed to the
// process's SIGTRAP handler. It exists because a ucontext_t is a C
// structure whose register layout is architecture-specific; no pure-Go
// representation of it exists, so this package is cgo and is kept as small
// as the signal handler's needs: read the program counter and the integer
// argument registers, and simulate a return.
package frame // import "go.opentelemetry.io/ebpf-profiler/frame"

/*
#cgo CFLAGS: -D_GNU_SOURCE
#include <ucontext.h>
#include <stdint.h>

#if defined(__x86_64__)

static uintptr_t frame_get_pc(void *p) { return ((ucontext_t *)p)->uc_mcontext.gregs[REG_RIP]; }
static void frame_set_pc(void *p, uintptr_t v) { ((ucontext_t *)p)->uc_mcontext.gregs[REG_RIP] = v; }
static uintptr_t frame_get_sp(void *p) { return ((ucontext_t *)p)->uc_mcontext.gregs[REG_RSP]; }
static void frame_set_sp(void *p, uintptr_t v) { ((ucontext_t *)p)->uc_mcontext.gregs[REG_RSP] = v; }
static uintptr_t frame_get_arg(void *p, int n) {
	// SysV x86-64: rdi, rsi, rdx, rcx, r8, r9
	static const int regs[6] = {REG_RDI, REG_RSI, REG_RDX, REG_RCX, REG_R8, REG_R9};
	return ((ucontext_t *)p)->uc_mcontext.gregs[regs[n]];
}
static uintptr_t frame_get_lr(void *p) { return 0; } // x86 has no link register

#elif defined(__aarch64__)

static uintptr_t frame_get_pc(void *p) { return ((ucontext_t *)p)->uc_mcontext.pc; }
static void frame_set_pc(void *p, uintptr_t v) { ((ucontext_t *)p)->uc_mcontext.pc = v; }
static uintptr_t frame_get_sp(void *p) { return ((ucontext_t *)p)->uc_mcontext.sp; }
static void frame_set_sp(void *p, uintptr_t v) { ((ucontext_t *)p)->uc_mcontext.sp = v; }
static uintptr_t frame_get_arg(void *p, int n) { return ((ucontext_t *)p)->uc_mcontext.regs[n]; }
static uintptr_t frame_get_lr(void *p) { return ((ucontext_t *)p)->uc_mcontext.regs[30]; }

#elif defined(__arm__)

static uintptr_t frame_get_pc(void *p) { return ((ucontext_t *)p)->uc_mcontext.arm_pc; }
static void frame_set_pc(void *p, uintptr_t v) { ((ucontext_t *)p)->uc_mcontext.arm_pc = v; }
static uintptr_t frame_get_sp(void *p) { return ((ucontext_t *)p)->uc_mcontext.arm_sp; }
static void frame_set_sp(void *p, uintptr_t v) { ((ucontext_t *)p)->uc_mcontext.arm_sp = v; }
static uintptr_t frame_get_arg(void *p, int n) {
	ucontext_t *uc = (ucontext_t *)p;
	switch (n) {
	case 0: return uc->uc_mcontext.arm_r0;
	case 1: return uc->uc_mcontext.arm_r1;
	case 2: return uc->uc_mcontext.arm_r2;
	case 3: return uc->uc_mcontext.arm_r3;
	default: return 0;
	}
}
static uintptr_t frame_get_lr(void *p) { return ((ucontext_t *)p)->uc_mcontext.arm_lr; }

#elif defined(__PPC64__)

static uintptr_t frame_get_pc(void *p) { return ((ucontext_t *)p)->uc_mcontext.regs->nip; }
static void frame_set_pc(void *p, uintptr_t v) { ((ucontext_t *)p)->uc_mcontext.regs->nip = v; }
static uintptr_t frame_get_sp(void *p) { return ((ucontext_t *)p)->uc_mcontext.regs->gpr[1]; }
static void frame_set_sp(void *p, uintptr_t v) { ((ucontext_t *)p)->uc_mcontext.regs->gpr[1] = v; }
static uintptr_t frame_get_arg(void *p, int n) {
	// ELFv2: r3..r8 hold the first six integer arguments.
	return ((ucontext_t *)p)->uc_mcontext.regs->gpr[3 + n];
}
static uintptr_t frame_get_lr(void *p) { return ((ucontext_t *)p)->uc_mcontext.regs->link; }

#else
#error "unsupported architecture"
#endif
*/
import "C"

import "unsafe"

// Context is a trapped machine context borrowed from the kernel for the
// duration of a signal handler invocation.
type Context struct {
	uc unsafe.Pointer
}

// NewContext wraps the ucontext_t pointer the kernel passed to the signal
// handler (the third argument of a SA_SIGINFO handler, after sig and
// siginfo_t).
func NewContext(uc unsafe.Pointer) Context {
	return Context{uc: uc}
}

// PC returns the trapped program counter.
func (c Context) PC() uintptr {
	return uintptr(C.frame_get_pc(c.uc))
}

// SetPC overwrites the program counter that will be resumed to.
func (c Context) SetPC(pc uintptr) {
	C.frame_set_pc(c.uc, C.uintptr_t(pc))
}

// SP returns the trapped stack pointer.
func (c Context) SP() uintptr {
	return uintptr(C.frame_get_sp(c.uc))
}

// SetSP overwrites the stack pointer. Callers must check arch.CanMoveSP
// before relying on this having any effect on the resumed call's ABI.
func (c Context) SetSP(sp uintptr) {
	C.frame_set_sp(c.uc, C.uintptr_t(sp))
}

// Arg returns integer-class argument register n (0-based) per the
// platform's calling convention.
func (c Context) Arg(n int) uintptr {
	return uintptr(C.frame_get_arg(c.uc, C.int(n)))
}

// LR returns the link register holding the return address on ABIs that
// have one (ARM, AArch64, PPC64LE). Zero on x86, where the return address
// is pushed to the stack instead.
func (c Context) LR() uintptr {
	return uintptr(C.frame_get_lr(c.uc))
}
