// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package sink

import "testing"

// TestLoggingRecorderImplementsRecorder is a compile-time-shaped guard: it
// exists so a future signature change to Recorder fails a test rather than
// only failing at the alloctracer call site.
func TestLoggingRecorderImplementsRecorder(t *testing.T) {
	var _ Recorder = LoggingRecorder{}
	LoggingRecorder{}.RecordSample(Sample{ClassName: "java/lang/String", Size: 16, Tag: BCISymbol})
}

func TestBCITagValues(t *testing.T) {
	if BCISymbol != 0 {
		t.Fatalf("BCISymbol must be the zero value so an uninitialized Sample defaults to inside-TLAB")
	}
	if BCISymbolOutsideTLAB == BCISymbol {
		t.Fatalf("the two tags must be distinct")
	}
}
