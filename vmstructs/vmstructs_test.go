// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package vmstructs

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/ebpf-profiler/libpf"
	"go.opentelemetry.io/ebpf-profiler/memaccess"
)

func TestOffsetsAvailable(t *testing.T) {
	require.True(t, Offsets{}.Available(), "zero is a valid offset; only the unset sentinel (-1) marks a field as missing")

	unresolved := Offsets{KlassNameOffset: unset, SymbolLengthOffset: unset, SymbolBodyOffset: unset}
	require.False(t, unresolved.Available())

	full := Offsets{KlassNameOffset: 0, SymbolLengthOffset: 4, SymbolBodyOffset: 6}
	require.True(t, full.Available())
}

func TestNameSymbolAndSymbolStringRoundTrip(t *testing.T) {
	name := "java/lang/Object"
	symbol := make([]byte, 2+len(name))
	symbol[0] = byte(len(name))
	symbol[1] = byte(len(name) >> 8)
	copy(symbol[2:], name)

	klass := make([]byte, 8)
	symAddr := uint64(uintptr(unsafe.Pointer(&symbol[0])))
	for i := 0; i < 8; i++ {
		klass[i] = byte(symAddr >> (8 * i))
	}

	offs := Offsets{KlassNameOffset: 0, SymbolLengthOffset: 0, SymbolBodyOffset: 2}
	mem := memaccess.Self()
	klassAddr := libpf.Address(uintptr(unsafe.Pointer(&klass[0])))

	sym := offs.NameSymbol(mem, klassAddr)
	require.EqualValues(t, symAddr, sym)
	require.Equal(t, name, offs.SymbolString(mem, sym))
}

func TestSymbolStringHandlesNullSymbol(t *testing.T) {
	offs := Offsets{KlassNameOffset: 0, SymbolLengthOffset: 0, SymbolBodyOffset: 2}
	require.Equal(t, "", offs.SymbolString(memaccess.Self(), 0))
}
