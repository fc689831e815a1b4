// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package sink

import "go.opentelemetry.io/ebpf-profiler/log"

// LoggingRecorder is the default Recorder: it logs each sample at debug
// level and otherwise discards it. Useful during development and in tests
// where no real sink is wired up.
type LoggingRecorder struct{}

// RecordSample implements Recorder.
func (LoggingRecorder) RecordSample(s Sample) {
	log.Debugf("allocation sample: class=%s size=%d tag=%d methodID=0x%x",
		s.ClassName, s.Size, s.Tag, s.MethodID)
}
