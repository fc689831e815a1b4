// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package sink defines the profiler collaborator that consumes allocation
// samples once they have been drained out of signal context. It is
// explicitly out of scope for the interception engine proper (the engine
// only needs something shaped like Recorder), but a couple of concrete
// implementations live here for standalone use.
package sink // import "go.opentelemetry.io/ebpf-profiler/sink"

// BCITag is the pseudo bytecode-index marker the sink uses to tell an
// allocation sample apart from an ordinary stack sample, and to tell
// inside- from outside-TLAB allocations apart from each other.
type BCITag uint8

const (
	// BCISymbol tags an inside-TLAB allocation sample.
	BCISymbol BCITag = iota
	// BCISymbolOutsideTLAB tags an outside-TLAB allocation sample. The
	// method identifier carried alongside it has its low bit flipped
	// relative to the plain symbol pointer, so the sink can recover both
	// the symbol and the TLAB bit from one word.
	BCISymbolOutsideTLAB
)

// Sample is one allocation event, already resolved to a class name by the
// time it reaches a Recorder (that resolution happens in the drain loop,
// never in signal context).
type Sample struct {
	// ClassName is the allocated object's class, e.g. "java/lang/String".
	ClassName string
	// Size is the allocation size in bytes.
	Size uint64
	// Tag distinguishes inside- from outside-TLAB allocations.
	Tag BCITag
	// MethodID is the VM symbol pointer for ClassName, with its low bit
	// inverted iff Tag is BCISymbolOutsideTLAB.
	MethodID uintptr
}

// Recorder consumes allocation samples. Implementations are called only
// from ordinary goroutine context (the drain loop), never from the signal
// handler, so they are free to allocate, lock, and block.
type Recorder interface {
	RecordSample(Sample)
}
