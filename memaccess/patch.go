// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package memaccess

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"go.opentelemetry.io/ebpf-profiler/libpf"
)

// pageSize is assumed rather than queried per-patch: every architecture this
// module supports maps executable text at 4K granularity, and constructing
// the mprotect'd view straddling at most two pages does not depend on the
// exact page size being larger than that.
const pageSize = 4096

// Patch overwrites the len(insn) bytes at addr with insn, returning the
// bytes that were there before. The pages containing the patched bytes are
// made READ|WRITE|EXEC via mprotect for the write and set to READ|EXEC
// afterwards, whatever their protection was before.
//
// addr must point at memory this process already has mapped executable;
// this is the same precondition the engine relies on when it recovers
// addresses from VM structures and symbol tables.
func Patch(addr libpf.Address, insn []byte) ([]byte, error) {
	saved := make([]byte, len(insn))
	view := viewOf(addr, len(insn))
	copy(saved, view)

	if err := withWritable(addr, len(insn), func() error {
		copy(view, insn)
		return nil
	}); err != nil {
		return nil, err
	}
	return saved, nil
}

// MakeWritable elevates the protection of the n bytes at addr to
// READ|WRITE|EXEC and leaves it there; there is no paired "lower" step; a
// trap that may need to be reinstalled later must stay patchable for the
// remaining lifetime of the process.
func MakeWritable(addr uintptr, n int) error {
	pageStart := addr &^ (pageSize - 1)
	pageEnd := (addr + uintptr(n) + pageSize - 1) &^ (pageSize - 1)
	region := unsafe.Slice((*byte)(unsafe.Pointer(pageStart)), pageEnd-pageStart) //nolint:govet
	if err := unix.Mprotect(region, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("mprotect rwx at 0x%x: %w", pageStart, err)
	}
	return nil
}

// Restore writes back bytes previously returned by Patch.
func Restore(addr libpf.Address, saved []byte) error {
	view := viewOf(addr, len(saved))
	return withWritable(addr, len(saved), func() error {
		copy(view, saved)
		return nil
	})
}

// viewOf constructs a byte slice over n bytes of already-mapped memory
// starting at addr. The backing memory is not Go-managed; the slice exists
// only to give mprotect(2)/copy a pointer and length to operate on.
func viewOf(addr libpf.Address, n int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), n) //nolint:govet
}

func withWritable(addr libpf.Address, n int, fn func() error) error {
	pageStart := uintptr(addr) &^ (pageSize - 1)
	pageEnd := (uintptr(addr) + uintptr(n) + pageSize - 1) &^ (pageSize - 1)
	region := unsafe.Slice((*byte)(unsafe.Pointer(pageStart)), pageEnd-pageStart) //nolint:govet

	if err := unix.Mprotect(region, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("mprotect rw at 0x%x: %w", pageStart, err)
	}

	fnErr := fn()

	if err := unix.Mprotect(region, unix.PROT_READ|unix.PROT_EXEC); err != nil && fnErr == nil {
		return fmt.Errorf("mprotect ro at 0x%x: %w", pageStart, err)
	}
	return fnErr
}
