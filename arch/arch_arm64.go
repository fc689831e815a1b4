//go:build arm64

// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package arch

const (
	instructionWidth = 4
	breakpointOffset = 0
	canMoveSP        = true
)

// breakpoint is BRK #0 (0xd4200000), little-endian encoded.
var breakpoint = []byte{0x00, 0x00, 0x20, 0xd4}
