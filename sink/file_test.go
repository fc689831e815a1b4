// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package sink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewFileRecorderMintsAValidRunID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.jsonl.zst")
	r, err := NewFileRecorder(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = uuid.Parse(r.RunID)
	require.NoError(t, err)
}

func TestFileRecorderWritesNonEmptyFileOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.jsonl.zst")
	r, err := NewFileRecorder(path)
	require.NoError(t, err)

	r.RecordSample(Sample{ClassName: "java/lang/String", Size: 24, Tag: BCISymbol, MethodID: 0x8000})
	r.RecordSample(Sample{ClassName: "java/util/HashMap", Size: 48, Tag: BCISymbolOutsideTLAB, MethodID: 0x9001})

	require.NoError(t, r.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}
