// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package memaccess provides typed access to the memory of the process the
// tracer itself is running inside of, and the primitive used to rewrite a
// few bytes of already-mapped executable code in place. "The target" is
// simply our own address space, so reads go through direct pointer
// dereference rather than process_vm_readv, and writes require an explicit
// mprotect to make the normally read-only text segment briefly writable.
package memaccess // import "go.opentelemetry.io/ebpf-profiler/memaccess"

import (
	"bytes"
	"encoding/binary"
	"io"

	"go.opentelemetry.io/ebpf-profiler/libpf"
)

// Memory implements a set of convenience functions to access process memory.
type Memory struct {
	io.ReaderAt
	// Bias adjusts pointers read from memory, e.g. to undo a load bias.
	Bias libpf.Address
}

// Valid reports whether this Memory has a backing reader.
func (m Memory) Valid() bool {
	return m.ReaderAt != nil
}

// Read fills p with data starting at addr.
func (m Memory) Read(addr libpf.Address, p []byte) error {
	_, err := m.ReadAt(p, int64(addr))
	return err
}

// Ptr reads a native pointer, undoing Bias.
func (m Memory) Ptr(addr libpf.Address) libpf.Address {
	var buf [8]byte
	if m.Read(addr, buf[:]) != nil {
		return 0
	}
	return libpf.Address(binary.LittleEndian.Uint64(buf[:])) - m.Bias
}

// Uint8 reads an 8-bit unsigned integer.
func (m Memory) Uint8(addr libpf.Address) uint8 {
	var buf [1]byte
	if m.Read(addr, buf[:]) != nil {
		return 0
	}
	return buf[0]
}

// Uint16 reads a 16-bit unsigned integer.
func (m Memory) Uint16(addr libpf.Address) uint16 {
	var buf [2]byte
	if m.Read(addr, buf[:]) != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(buf[:])
}

// Uint32 reads a 32-bit unsigned integer.
func (m Memory) Uint32(addr libpf.Address) uint32 {
	var buf [4]byte
	if m.Read(addr, buf[:]) != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(buf[:])
}

// Int32 reads a 32-bit signed integer.
func (m Memory) Int32(addr libpf.Address) int32 {
	return int32(m.Uint32(addr))
}

// Uint64 reads a 64-bit unsigned integer.
func (m Memory) Uint64(addr libpf.Address) uint64 {
	var buf [8]byte
	if m.Read(addr, buf[:]) != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// String reads a NUL-terminated string.
func (m Memory) String(addr libpf.Address) string {
	buf := make([]byte, 1024)
	n, err := m.ReadAt(buf, int64(addr))
	if n == 0 || (err != nil && err != io.EOF) {
		return ""
	}
	buf = buf[:n]
	if idx := bytes.IndexByte(buf, 0); idx >= 0 {
		return string(buf[:idx])
	}
	return ""
}

// StringPtr dereferences a pointer-to-string and reads the pointee.
func (m Memory) StringPtr(addr libpf.Address) string {
	addr = m.Ptr(addr)
	if addr == 0 {
		return ""
	}
	return m.String(addr)
}
