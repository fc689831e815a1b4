// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package alloctracer

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/ebpf-profiler/memaccess"
	"go.opentelemetry.io/ebpf-profiler/sink"
	"go.opentelemetry.io/ebpf-profiler/vmstructs"
)

type recordingRecorder struct {
	samples []sink.Sample
}

func (r *recordingRecorder) RecordSample(s sink.Sample) {
	r.samples = append(r.samples, s)
}

// fakeKlass builds an in-process byte layout shaped like a Klass pointing at
// a Symbol, using the same field arrangement vmstructs.Offsets describes,
// so recordAllocation/deliver can be exercised without a real JVM: KlassName
// offset 0 holds a pointer to the Symbol, whose length sits at offset 0 and
// body at offset 2.
func fakeKlass(t *testing.T, name string) (classHandle uintptr, offsets vmstructs.Offsets) {
	t.Helper()
	symbol := make([]byte, 2+len(name))
	symbol[0] = byte(len(name))
	symbol[1] = byte(len(name) >> 8)
	copy(symbol[2:], name)
	t.Cleanup(func() { _ = symbol }) // keep alive for the duration of the test

	klass := make([]byte, 8)
	symAddr := uint64(uintptr(unsafe.Pointer(&symbol[0])))
	for i := 0; i < 8; i++ {
		klass[i] = byte(symAddr >> (8 * i))
	}
	t.Cleanup(func() { _ = klass })

	return uintptr(unsafe.Pointer(&klass[0])), vmstructs.Offsets{
		KlassNameOffset:    0,
		SymbolLengthOffset: 0,
		SymbolBodyOffset:   2,
	}
}

func newTestTracer(offsets vmstructs.Offsets) *Tracer {
	return &Tracer{
		offsets: offsets,
		selfMem: memaccess.Self(),
		ring:    newRingBuffer(8),
	}
}

func TestRecordAllocationInsideTLABLeavesLowBitUnset(t *testing.T) {
	classHandle, offsets := fakeKlass(t, "java/lang/String")
	tr := newTestTracer(offsets)

	tr.recordAllocation(classHandle, 48, false)

	p, ok := tr.ring.pop()
	require.True(t, ok)
	require.False(t, p.outside)
	require.EqualValues(t, 48, p.size)
	require.Zero(t, p.methodID&1, "inside-TLAB method identifier must not have its low bit set")
}

func TestRecordAllocationOutsideTLABFlipsLowBit(t *testing.T) {
	classHandle, offsets := fakeKlass(t, "java/lang/String")
	tr := newTestTracer(offsets)

	tr.recordAllocation(classHandle, 1<<20, true)

	p, ok := tr.ring.pop()
	require.True(t, ok)
	require.True(t, p.outside)
	require.EqualValues(t, 1, p.methodID&1, "outside-TLAB method identifier must have its low bit flipped")
}

func TestRecordAllocationSkipsImplausibleSizes(t *testing.T) {
	classHandle, offsets := fakeKlass(t, "Foo")
	tr := newTestTracer(offsets)

	tr.recordAllocation(classHandle, 0, false)
	tr.recordAllocation(classHandle, maxPlausibleSize+1, false)

	_, ok := tr.ring.pop()
	require.False(t, ok, "a zero or implausibly large size must never reach the ring")
}

func TestDeliverResolvesClassNameAndTag(t *testing.T) {
	classHandle, offsets := fakeKlass(t, "java/util/HashMap")
	tr := newTestTracer(offsets)
	rec := &recordingRecorder{}
	tr.recorder = rec

	tr.recordAllocation(classHandle, 96, false)
	tr.recordAllocation(classHandle, 200, true)

	for {
		p, ok := tr.ring.pop()
		if !ok {
			break
		}
		tr.deliver(p)
	}

	require.Len(t, rec.samples, 2)

	require.Equal(t, "java/util/HashMap", rec.samples[0].ClassName)
	require.Equal(t, sink.BCISymbol, rec.samples[0].Tag)
	require.EqualValues(t, 96, rec.samples[0].Size)
	require.Zero(t, rec.samples[0].MethodID&1)

	require.Equal(t, "java/util/HashMap", rec.samples[1].ClassName)
	require.Equal(t, sink.BCISymbolOutsideTLAB, rec.samples[1].Tag)
	require.EqualValues(t, 200, rec.samples[1].Size)
	require.EqualValues(t, 1, rec.samples[1].MethodID&1)
}
