// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package nativelib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFindMappingLocatesSelf exercises the /proc/self/maps scan against the
// one binary guaranteed to be mapped into this process: the test binary
// itself.
func TestFindMappingLocatesSelf(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	path, base, err := findMapping(filepath.Base(exe))
	require.NoError(t, err)
	require.Contains(t, path, filepath.Base(exe))
	require.NotZero(t, base)
}

func TestFindMappingNoMatch(t *testing.T) {
	_, _, err := findMapping("definitely-not-a-mapped-library-name.so")
	require.Error(t, err)
}

func TestOpenAndFindSymbolAgainstSelf(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	lib, err := Open(filepath.Base(exe))
	require.NoError(t, err)
	defer lib.Close()

	require.Contains(t, lib.Path(), filepath.Base(exe))

	// A symbol that certainly doesn't exist must report found=false rather
	// than panicking or returning a bogus nonzero address.
	_, found := lib.FindSymbol("definitely_not_a_real_symbol_xyz")
	require.False(t, found)

	_, _, found = lib.FindSymbolByPrefix("definitely_not_a_real_prefix_xyz")
	require.False(t, found)
}
