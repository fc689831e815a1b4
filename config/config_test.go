// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateFillsLibraryNameDefault(t *testing.T) {
	a := Args{}
	require.NoError(t, a.Validate())
	require.Equal(t, "libjvm.so", a.LibraryName)
}

func TestValidateLeavesZeroIntervalDisablingThrottle(t *testing.T) {
	a := Args{}
	require.NoError(t, a.Validate())
	require.Zero(t, a.Interval, "zero must survive Validate unchanged: it disables throttling")
}

func TestValidatePreservesExplicitInterval(t *testing.T) {
	a := Args{Interval: 999}
	require.NoError(t, a.Validate())
	require.EqualValues(t, 999, a.Interval)
}

func TestValidateRejectsImplausibleInterval(t *testing.T) {
	a := Args{Interval: 1 << 41}
	require.Error(t, a.Validate())
}

func TestValidatePreservesExplicitLibraryName(t *testing.T) {
	a := Args{LibraryName: "libjvm_debug.so"}
	require.NoError(t, a.Validate())
	require.Equal(t, "libjvm_debug.so", a.LibraryName)
}
