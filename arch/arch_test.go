// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package arch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBreakpointMatchesInstructionWidth(t *testing.T) {
	require.Len(t, Breakpoint, InstructionWidth,
		"the breakpoint encoding must be exactly one instruction wide on every supported architecture")
}

func TestBreakpointOffsetNonNegative(t *testing.T) {
	require.GreaterOrEqual(t, BreakpointOffset, 0)
}
