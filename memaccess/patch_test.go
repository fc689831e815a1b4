// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package memaccess

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"go.opentelemetry.io/ebpf-profiler/libpf"
)

// mmapPage allocates one anonymous read-only page, giving Patch/Restore a
// real mapped region to mprotect without needing an actual JVM in the
// process — the same mechanism Trap.Install exercises against a resolved
// symbol address.
func mmapPage(t *testing.T) uintptr {
	t.Helper()
	b, err := unix.Mmap(-1, 0, pageSize, unix.PROT_READ, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	require.NoError(t, err)
	t.Cleanup(func() { _ = unix.Munmap(b) })
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

func TestPatchRestoreRoundTrip(t *testing.T) {
	addr := libpf.Address(mmapPage(t))

	original := viewOf(addr, 4)
	before := append([]byte(nil), original...)

	saved, err := Patch(addr, []byte{0xde, 0xad, 0xbe, 0xef})
	require.NoError(t, err)
	require.Equal(t, before, saved)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, viewOf(addr, 4))

	require.NoError(t, Restore(addr, saved))
	require.Equal(t, before, viewOf(addr, 4))
}

func TestPatchIsIdempotentUnderRepeatedInstall(t *testing.T) {
	addr := libpf.Address(mmapPage(t))
	insn := []byte{0xcc}

	saved1, err := Patch(addr, insn)
	require.NoError(t, err)
	require.NoError(t, Restore(addr, saved1))

	saved2, err := Patch(addr, insn)
	require.NoError(t, err)
	require.Equal(t, saved1, saved2, "patching the same restored byte twice must recover the same original")
	require.NoError(t, Restore(addr, saved2))
}

func TestMakeWritableThenPatch(t *testing.T) {
	addr := mmapPage(t)
	require.NoError(t, MakeWritable(addr, 1))

	saved, err := Patch(libpf.Address(addr), []byte{0x90})
	require.NoError(t, err)
	require.NoError(t, Restore(libpf.Address(addr), saved))
}
