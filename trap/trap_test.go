// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package trap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/ebpf-profiler/arch"
)

func TestNewTrapUnresolved(t *testing.T) {
	tr := New(PrefixInNewTLAB)
	require.Equal(t, PrefixInNewTLAB, tr.Prefix)
	require.False(t, tr.Resolved())
	require.False(t, tr.Installed())
	require.Zero(t, tr.Entry())
}

func TestMatchesRequiresInstalled(t *testing.T) {
	tr := &Trap{entry: 0x1000}
	require.False(t, tr.Matches(0x1000), "an installed=false trap must never match, even at its own entry")
}

func TestMatchesAcceptsBreakpointOrFollowingInstruction(t *testing.T) {
	tr := &Trap{entry: 0x2000, installed: true}
	patchAddr := tr.entry + uintptr(arch.BreakpointOffset)*uintptr(arch.InstructionWidth)

	require.True(t, tr.Matches(patchAddr), "pc at the breakpoint itself must match")
	require.True(t, tr.Matches(patchAddr+uintptr(arch.InstructionWidth)),
		"pc advanced past the breakpoint (kernel-dependent) must still match")
	require.False(t, tr.Matches(patchAddr+uintptr(arch.InstructionWidth)+1),
		"pc further away must not match")
	if patchAddr > 0 {
		require.False(t, tr.Matches(patchAddr-1), "pc before the breakpoint must not match")
	}
}

func TestUninstallIsNoOpWhenNeverInstalled(t *testing.T) {
	tr := New(PrefixOutsideTLAB)
	tr.Uninstall()
	require.False(t, tr.Installed())
}

func TestResolveIsIdempotent(t *testing.T) {
	tr := &Trap{entry: 0x3000}
	require.True(t, tr.Resolved())
	// Resolve on an already-resolved trap must short-circuit rather than
	// attempt a fresh lookup (which would panic here on a nil *Library).
	require.True(t, tr.Resolve(nil))
}
