// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"go.opentelemetry.io/ebpf-profiler/log"
)

// FileRecorder appends newline-delimited, zstd-compressed JSON records to a
// file, one per sample. Every record is tagged with RunID, a UUID minted
// once per FileRecorder so records from concurrent or successive agent
// attachments in the same file can be told apart.
type FileRecorder struct {
	RunID string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
}

type fileRecord struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Sample
}

// NewFileRecorder opens (creating if needed) path for appending and wraps
// it in a streaming zstd encoder.
func NewFileRecorder(path string) (*FileRecorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("sink: opening %s: %w", path, err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("sink: creating zstd writer: %w", err)
	}
	return &FileRecorder{RunID: uuid.NewString(), f: f, enc: enc}, nil
}

// RecordSample implements Recorder.
func (r *FileRecorder) RecordSample(s Sample) {
	rec := fileRecord{RunID: r.RunID, Timestamp: time.Now(), Sample: s}
	data, err := json.Marshal(rec)
	if err != nil {
		log.Warnf("sink: failed to marshal sample: %v", err)
		return
	}
	data = append(data, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.enc.Write(data); err != nil {
		log.Warnf("sink: failed to write sample: %v", err)
	}
}

// Close flushes and closes the underlying file.
func (r *FileRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enc.Close(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}
