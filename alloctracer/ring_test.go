// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package alloctracer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingBufferRoundsUpCapacity(t *testing.T) {
	r := newRingBuffer(5)
	require.EqualValues(t, 7, r.mask, "capacity 5 rounds up to 8, mask 7")
}

func TestRingBufferPushPopFIFO(t *testing.T) {
	r := newRingBuffer(4)
	require.True(t, r.push(pendingSample{methodID: 1, size: 10}))
	require.True(t, r.push(pendingSample{methodID: 2, size: 20}))

	p, ok := r.pop()
	require.True(t, ok)
	require.EqualValues(t, 1, p.methodID)

	p, ok = r.pop()
	require.True(t, ok)
	require.EqualValues(t, 2, p.methodID)

	_, ok = r.pop()
	require.False(t, ok)
}

func TestRingBufferDropsWhenFull(t *testing.T) {
	r := newRingBuffer(2) // rounds to 2, mask 1
	require.True(t, r.push(pendingSample{methodID: 1}))
	require.True(t, r.push(pendingSample{methodID: 2}))
	// Slot 0 (methodID 1) has wrapped back around and is still unread.
	require.False(t, r.push(pendingSample{methodID: 3}),
		"pushing into an unread slot must report failure rather than clobber it")
}

func TestRingBufferConcurrentProducersNoTornReads(t *testing.T) {
	r := newRingBuffer(1024)
	const producers = 8
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				r.push(pendingSample{methodID: uintptr(base*perProducer + i), size: 1})
			}
		}(p)
	}
	wg.Wait()

	count := 0
	for {
		_, ok := r.pop()
		if !ok {
			break
		}
		count++
	}
	require.Equal(t, producers*perProducer, count)
}
