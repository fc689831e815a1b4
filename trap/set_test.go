// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package trap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetReadyRequiresOneOfEachFamily(t *testing.T) {
	s := NewSet()
	require.False(t, s.Ready(), "a freshly constructed set has nothing resolved")

	s.InNewTLAB.entry = 0x1000
	require.False(t, s.Ready(), "inside-TLAB alone is not enough")

	s.OutsideTLABV2.entry = 0x2000
	require.True(t, s.Ready(), "one resolved trap per family is enough, legacy+v2 need not both resolve")
}

func TestSetMatchDistinguishesV2AndOutside(t *testing.T) {
	s := NewSet()
	s.InNewTLAB.entry = 0x1000
	s.InNewTLAB.installed = true
	s.OutsideTLABV2.entry = 0x2000
	s.OutsideTLABV2.installed = true

	tr, isV2, outside, ok := s.Match(0x1000)
	require.True(t, ok)
	require.Same(t, s.InNewTLAB, tr)
	require.False(t, isV2)
	require.False(t, outside)

	tr, isV2, outside, ok = s.Match(0x2000)
	require.True(t, ok)
	require.Same(t, s.OutsideTLABV2, tr)
	require.True(t, isV2)
	require.True(t, outside)

	_, _, _, ok = s.Match(0x9999)
	require.False(t, ok)
}
