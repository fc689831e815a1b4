// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package alloctracer

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShouldSampleZeroIntervalAlwaysSamples(t *testing.T) {
	var acc atomic.Uint64
	for i := 0; i < 5; i++ {
		require.True(t, shouldSample(&acc, 0, 100))
	}
}

func TestShouldSampleAccumulatesBelowInterval(t *testing.T) {
	var acc atomic.Uint64
	const interval = 512 * 1024
	const size = 100 * 1024

	samples := 0
	for i := 0; i < 5; i++ {
		if shouldSample(&acc, interval, size) {
			samples++
		}
	}
	// 5*100KiB = 500KiB < 512KiB: zero samples, accumulator holds 500KiB.
	require.Equal(t, 0, samples)
	require.EqualValues(t, 5*size, acc.Load())
}

func TestShouldSampleCrossesInterval(t *testing.T) {
	var acc atomic.Uint64
	const interval = 512 * 1024
	const size = 100 * 1024

	samples := 0
	total := uint64(0)
	for i := 0; i < 6; i++ {
		total += size
		if shouldSample(&acc, interval, size) {
			samples++
		}
	}
	require.Equal(t, 1, samples, "the sixth 100KiB allocation crosses the 512KiB interval")
	require.EqualValues(t, total%interval, acc.Load())
}

func TestShouldSampleThreeMiBAllocationAgainstOneMiBInterval(t *testing.T) {
	var acc atomic.Uint64
	const interval = 1 << 20
	const size = 3 << 20

	require.True(t, shouldSample(&acc, interval, size))
	require.Zero(t, acc.Load())
}

// TestShouldSampleThrottlingExactness checks the invariant from the testable
// properties: for a stream totalling S bytes, the number of samples is
// floor(S/interval) when S is an exact multiple of interval, and in
// [floor(S/interval), floor(S/interval)+1] otherwise. The bound holds for
// streams in which no single allocation exceeds interval: one allocation
// spanning several intervals still yields a single sample (see the 3 MiB
// test above), so every size here is at most interval.
func TestShouldSampleThrottlingExactness(t *testing.T) {
	const interval = 1000
	sizes := []uint64{37, 501, 210, 999, 1, 400, 62, 190}

	var total uint64
	for _, s := range sizes {
		total += s
	}
	lower := total / interval
	upper := lower + 1

	var acc atomic.Uint64
	samples := uint64(0)
	for _, s := range sizes {
		if shouldSample(&acc, interval, s) {
			samples++
		}
	}
	require.GreaterOrEqual(t, samples, lower)
	require.LessOrEqual(t, samples, upper)
}

// TestShouldSampleConcurrentLosersRetryRatherThanLoseBytes exercises many
// goroutines hammering the same accumulator, mirroring several JVM threads
// trapping concurrently. No byte may be silently dropped: the total sampled
// count must still respect the interval bound over the whole run.
func TestShouldSampleConcurrentLosersRetryRatherThanLoseBytes(t *testing.T) {
	var acc atomic.Uint64
	const interval = 4096
	const size = 64
	const perGoroutine = 200
	const goroutines = 16

	var samples atomic.Uint64
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				if shouldSample(&acc, interval, size) {
					samples.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	total := uint64(goroutines * perGoroutine * size)
	lower := total / interval
	upper := lower + 1
	require.GreaterOrEqual(t, samples.Load(), lower)
	require.LessOrEqual(t, samples.Load(), upper)
}
