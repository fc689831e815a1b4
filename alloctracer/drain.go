// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package alloctracer

import (
	"time"

	"go.opentelemetry.io/ebpf-profiler/libpf"
	"go.opentelemetry.io/ebpf-profiler/sink"
)

// drainLoop is the only place in this package that resolves a symbol
// pointer to a class name string and calls out to a Recorder: both allocate
// and neither is safe from signal context, so this always runs on an
// ordinary goroutine, never inline with a trap.
func (t *Tracer) drainLoop() {
	defer t.wg.Done()

	ticker := time.NewTicker(drainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			t.drainOnce()
			return
		case <-ticker.C:
			t.drainOnce()
		}
	}
}

// drainOnce pops and resolves every sample currently sitting in the ring.
func (t *Tracer) drainOnce() {
	for {
		p, ok := t.ring.pop()
		if !ok {
			return
		}
		t.deliver(p)
	}
}

// deliver resolves a pending sample's symbol pointer to a class name and
// hands it to the configured Recorder. p.methodID already carries the
// outside-TLAB bit inverted into its low bit (set in signal context, per
// the tag it was pushed with); un-invert it before dereferencing.
func (t *Tracer) deliver(p pendingSample) {
	symbol := p.methodID
	tag := sink.BCISymbol
	if p.outside {
		tag = sink.BCISymbolOutsideTLAB
		symbol &^= 1
	}

	className := t.offsets.SymbolString(t.selfMem, libpf.Address(symbol))

	t.recorder.RecordSample(sink.Sample{
		ClassName: className,
		Size:      p.size,
		Tag:       tag,
		MethodID:  p.methodID,
	})
}
