// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package frame

import (
	"go.opentelemetry.io/ebpf-profiler/arch"
	"go.opentelemetry.io/ebpf-profiler/libpf"
	"go.opentelemetry.io/ebpf-profiler/memaccess"
)

// Ret simulates execution of a `ret` instruction: it sets PC to the return
// address of the intercepted call, leaving every other register exactly as
// the caller left it (the callee's body never ran, so nothing else needs
// restoring).
//
// On x86 the call instruction pushed the return address to the stack; it
// must be popped. On ARM, AArch64 and PPC64LE the return address is already
// in the link register (direct on ARM/AArch64, copied to the caller's
// frame by the ELFv2 call sequence on PPC64LE before control reached the
// callee) and the stack is left untouched, matching arch.CanMoveSP.
func (c Context) Ret() {
	if arch.CanMoveSP {
		if lr := c.LR(); lr != 0 {
			c.SetPC(lr)
			return
		}
		mem := memaccess.Self()
		retAddr := mem.Ptr(libpf.Address(c.SP()))
		c.SetSP(c.SP() + 8)
		c.SetPC(uintptr(retAddr))
		return
	}

	c.SetPC(c.LR())
}
