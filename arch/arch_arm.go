//go:build arm

// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package arch

const (
	instructionWidth = 4
	breakpointOffset = 0
	canMoveSP        = true
)

// breakpoint is the ARM UDF-encoded breakpoint 0xe7f001f0, little-endian.
var breakpoint = []byte{0xf0, 0x01, 0xf0, 0xe7}
