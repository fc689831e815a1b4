// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package memaccess

import (
	"os"
	"unsafe"

	"go.opentelemetry.io/ebpf-profiler/libpf"
)

// selfReaderAt reads memory of the calling process by direct pointer
// dereference. Unlike a process_vm_readv-based reader, no syscall crosses process
// boundaries: the address is one this process already has mapped.
type selfReaderAt struct{}

func (selfReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(off))), len(p)) //nolint:govet
	copy(p, src)
	return len(p), nil
}

// Self returns a Memory that reads the address space of the calling
// process directly. Addresses passed to it must already be known to be
// mapped and readable; there is no fault protection, mirroring the way the
// engine this replaces dereferences pointers it recovers from VM structures.
func Self() Memory {
	return Memory{ReaderAt: selfReaderAt{}}
}

// PID returns the identifier of the calling process. Kept as a thin
// wrapper so callers needing to reference the current process do not
// import os directly in domain packages.
func PID() libpf.PID {
	return libpf.PID(os.Getpid())
}
