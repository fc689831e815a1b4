// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package vmstructs bootstraps the handful of field offsets the allocation
// tracer needs from the host JVM's gHotSpotVMStructs table, without linking
// against that JVM's own headers (which differ release to release). This
// mirrors vmStructs.cpp from the engine this replaces almost line for line:
// walk an array of (type name, field name, offset) entries published by the
// JVM itself until a sentinel (null type and field) is reached.
package vmstructs // import "go.opentelemetry.io/ebpf-profiler/vmstructs"

import (
	"go.opentelemetry.io/ebpf-profiler/libpf"
	"go.opentelemetry.io/ebpf-profiler/memaccess"
	"go.opentelemetry.io/ebpf-profiler/nativelib"
)

// Published symbol names the JVM exposes for VM-structure introspection.
const (
	symVMStructs       = "gHotSpotVMStructs"
	symArrayStride     = "gHotSpotVMStructEntryArrayStride"
	symTypeNameOffset  = "gHotSpotVMStructEntryTypeNameOffset"
	symFieldNameOffset = "gHotSpotVMStructEntryFieldNameOffset"
	symOffsetOffset    = "gHotSpotVMStructEntryOffsetOffset"
)

// Offsets holds the three field offsets the allocation tracer needs to walk
// an opaque Klass pointer to its interned name Symbol, and a Symbol to its
// UTF-8 body and length.
type Offsets struct {
	KlassNameOffset    int32
	SymbolLengthOffset int32
	SymbolBodyOffset   int32
}

// Available reports whether every offset was found during Init. Per the
// walked table's contract, if any field is missing the corresponding
// offset stays -1.
func (o Offsets) Available() bool {
	return o.KlassNameOffset >= 0 && o.SymbolLengthOffset >= 0 && o.SymbolBodyOffset >= 0
}

// unset is the sentinel value an offset holds until a matching entry is seen.
const unset = int32(-1)

// Init walks lib's gHotSpotVMStructs array and returns the three offsets it
// finds. All three fields default to unset (-1); callers must check
// Available before using them.
func Init(lib *nativelib.Library) Offsets {
	offs := Offsets{KlassNameOffset: unset, SymbolLengthOffset: unset, SymbolBodyOffset: unset}

	entryAddr, ok := lib.FindSymbol(symVMStructs)
	if !ok {
		return offs
	}
	strideAddr, ok := lib.FindSymbol(symArrayStride)
	if !ok {
		return offs
	}
	typeOffAddr, ok := lib.FindSymbol(symTypeNameOffset)
	if !ok {
		return offs
	}
	fieldOffAddr, ok := lib.FindSymbol(symFieldNameOffset)
	if !ok {
		return offs
	}
	offsetOffAddr, ok := lib.FindSymbol(symOffsetOffset)
	if !ok {
		return offs
	}

	mem := memaccess.Self()
	entry := mem.Ptr(libpf.Address(entryAddr))
	stride := mem.Ptr(libpf.Address(strideAddr))
	typeNameOffset := mem.Ptr(libpf.Address(typeOffAddr))
	fieldNameOffset := mem.Ptr(libpf.Address(fieldOffAddr))
	offsetOffset := mem.Ptr(libpf.Address(offsetOffAddr))

	if entry == 0 || stride == 0 {
		return offs
	}

	for {
		typeName := mem.StringPtr(entry + typeNameOffset)
		fieldName := mem.StringPtr(entry + fieldNameOffset)
		if typeName == "" || fieldName == "" {
			break
		}

		switch {
		case typeName == "Klass" && fieldName == "_name":
			offs.KlassNameOffset = mem.Int32(entry + offsetOffset)
		case typeName == "Symbol" && fieldName == "_length":
			offs.SymbolLengthOffset = mem.Int32(entry + offsetOffset)
		case typeName == "Symbol" && fieldName == "_body":
			offs.SymbolBodyOffset = mem.Int32(entry + offsetOffset)
		}

		entry += stride
	}

	return offs
}

// NameSymbol dereferences klassHandle to the interned Symbol naming it. This
// is the single pointer read recordAllocation performs inside the signal
// handler; it is safe there because it allocates nothing.
func (o Offsets) NameSymbol(mem memaccess.Memory, klassHandle libpf.Address) libpf.Address {
	return mem.Ptr(klassHandle + libpf.Address(o.KlassNameOffset))
}

// SymbolString reads the UTF-8 body of a Symbol pointer previously obtained
// from NameSymbol. Allocates a Go string, so it must only be called from
// ordinary goroutine context (the drain loop), never from the signal
// handler.
func (o Offsets) SymbolString(mem memaccess.Memory, symbol libpf.Address) string {
	if symbol == 0 {
		return ""
	}
	length := mem.Uint16(symbol + libpf.Address(o.SymbolLengthOffset))
	if length == 0 {
		return ""
	}
	buf := make([]byte, length)
	if err := mem.Read(symbol+libpf.Address(o.SymbolBodyOffset), buf); err != nil {
		return ""
	}
	return string(buf)
}
