//go:build amd64

// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package arch

const (
	instructionWidth = 1
	breakpointOffset = 0
	canMoveSP        = true
)

// breakpoint is INT3 (0xCC), the standard x86 software breakpoint opcode.
var breakpoint = []byte{0xcc}
