// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package alloctracer

import "sync/atomic"

// pendingSample is the raw, unresolved payload pushed from signal context:
// a class symbol pointer (already XORed for the outside-TLAB bit), a byte
// size, and whether the allocation was outside a TLAB (which selects the BCI
// tag). Resolving it to a sink.Sample (which needs a Go
// string) happens later, in the drain loop.
type pendingSample struct {
	methodID uintptr
	size     uint64
	outside  bool
}

// ringBuffer is a bounded multi-producer, single-consumer queue with a fixed
// power-of-two capacity. Producers (the signal handler, which may run
// concurrently on several threads that each trapped independently) claim a
// slot with a single atomic increment and never block; a full buffer simply
// drops the sample rather than allocating more room or waiting, since
// neither option is safe from signal context. The consumer (drainLoop) is
// always a single goroutine, so it needs no atomics of its own on its
// read side beyond observing each slot's ready flag.
type ringBuffer struct {
	slots []ringSlot
	mask  uint64
	head  atomic.Uint64
	tail  uint64
}

type ringSlot struct {
	ready atomic.Bool
	pendingSample
}

// newRingBuffer allocates a ring buffer with capacity rounded up to the next
// power of two.
func newRingBuffer(capacity int) *ringBuffer {
	n := 1
	for n < capacity {
		n <<= 1
	}
	return &ringBuffer{slots: make([]ringSlot, n), mask: uint64(n - 1)}
}

// push claims the next slot and stores s in it. It reports false, dropping
// the sample, if that slot is still occupied by a sample the consumer
// hasn't drained yet.
func (r *ringBuffer) push(s pendingSample) bool {
	idx := r.head.Add(1) - 1
	slot := &r.slots[idx&r.mask]
	if slot.ready.Load() {
		return false
	}
	slot.pendingSample = s
	slot.ready.Store(true)
	return true
}

// pop removes and returns the oldest ready sample. Only ever called from the
// single drain goroutine.
func (r *ringBuffer) pop() (pendingSample, bool) {
	slot := &r.slots[r.tail&r.mask]
	if !slot.ready.Load() {
		return pendingSample{}, false
	}
	s := slot.pendingSample
	slot.ready.Store(false)
	r.tail++
	return s, true
}
