// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package readatbuf_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/ebpf-profiler/libpf/readatbuf"
)

// generateTestInput deterministically fills a buffer of size n so every
// byte offset has a distinct, checkable value.
func generateTestInput(seed byte, n uint) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = seed + byte(i)
	}
	return buf
}

// validateReadAtTransparency reads a deterministic spread of windows of want through got
// and requires every read to return exactly the bytes the raw buffer holds
// at that offset, proving the cache never serves stale or misaligned data.
func validateReadAtTransparency(t *testing.T, iterations int, want []byte, got io.ReaderAt) {
	t.Helper()
	n := len(want)
	for i := 0; i < iterations; i++ {
		off := i % n
		length := 1 + (i*7)%(n-off)
		buf := make([]byte, length)
		read, err := got.ReadAt(buf, int64(off))
		if err != nil && err != io.EOF {
			require.NoError(t, err)
		}
		require.Equal(t, want[off:off+read], buf[:read])
	}
}

func testVariant(t *testing.T, fileSize, granularity, cacheSize uint) {
	file := generateTestInput(255, fileSize)
	rawReader := bytes.NewReader(file)
	cachingReader, err := readatbuf.New(rawReader, granularity, cacheSize)
	require.NoError(t, err)
	validateReadAtTransparency(t, 10000, file, cachingReader)
}

func TestCaching(t *testing.T) {
	testVariant(t, 1024, 64, 1)
	testVariant(t, 1346, 11, 55)
	testVariant(t, 889, 34, 111)
}

func TestNewRejectsZeroSizes(t *testing.T) {
	_, err := readatbuf.New(bytes.NewReader(nil), 0, 10)
	require.Error(t, err)

	_, err = readatbuf.New(bytes.NewReader(nil), 10, 0)
	require.Error(t, err)
}
