//go:build ppc64le

// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package arch

const (
	instructionWidth = 4
	// breakpointOffset skips the two-instruction local-entry trampoline
	// that the PPC64LE ELFv2 ABI prepends to functions callable from a
	// different TOC context; intra-module calls (the ones this engine
	// intercepts) jump past it.
	breakpointOffset = 2
	// The callee stores the return address in the caller's frame before
	// constructing its own; the stack pointer must not move underneath it.
	canMoveSP = false
)

// breakpoint is the illegal instruction 0x7fe00008 (trap word), little-endian.
var breakpoint = []byte{0x08, 0x00, 0xe0, 0x7f}
