// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package alloctracer orchestrates the allocation-event interception engine:
// it resolves the four intercept targets against the host JVM library,
// bootstraps VMStructs offsets, installs the chained SIGTRAP handler and the
// breakpoint patches, and drains sampled allocations to a sink.Recorder.
// Everything upstream of this package (arch, frame, sigchain, nativelib,
// vmstructs, trap) is a narrow mechanism; this is where they are wired
// together into the one thing callers actually use.
package alloctracer // import "go.opentelemetry.io/ebpf-profiler/alloctracer"

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"go.opentelemetry.io/ebpf-profiler/config"
	"go.opentelemetry.io/ebpf-profiler/log"
	"go.opentelemetry.io/ebpf-profiler/memaccess"
	"go.opentelemetry.io/ebpf-profiler/nativelib"
	"go.opentelemetry.io/ebpf-profiler/sigchain"
	"go.opentelemetry.io/ebpf-profiler/sink"
	"go.opentelemetry.io/ebpf-profiler/trap"
	"go.opentelemetry.io/ebpf-profiler/vmstructs"
)

// ErrVMStructsUnavailable is returned by Start when the host JVM exposes no
// gHotSpotVMStructs table, or the table is missing the handful of fields
// this engine bootstraps from it.
var ErrVMStructsUnavailable = errors.New("VMStructs unavailable. Unsupported JVM?")

// ErrSymbolsMissing is returned by Start when no TLAB-inside trap or no
// TLAB-outside trap could be resolved against the host library — almost
// always because the JVM was stripped of internal debug symbols.
var ErrSymbolsMissing = errors.New("No AllocTracer symbols found. Are JDK debug symbols installed?")

// ringCapacity is the number of in-flight samples the lock-free ring can
// hold between a signal-context push and the next drainLoop wakeup. Sized
// generously relative to plausible trap rates; a full ring drops samples
// rather than blocking a trapping thread.
const ringCapacity = 4096

// drainInterval bounds how long a sample can sit in the ring before
// drainLoop wakes up and resolves it, independent of how many new samples
// arrive in the meantime.
const drainInterval = 10 * time.Millisecond

// active is the process-singleton Tracer the signal handler consults. It is
// an atomic.Pointer rather than a plain variable because handleTrap reads it
// from signal context, possibly concurrently with Start/Stop running on an
// ordinary goroutine.
var active atomic.Pointer[Tracer]

// Tracer holds everything one Start/Stop lifecycle needs. There is at most
// one live Tracer per process: the signal handler and the patched
// breakpoints are both process-wide resources.
type Tracer struct {
	cfg config.Args

	lib      *nativelib.Library
	offsets  vmstructs.Offsets
	traps    *trap.Set
	recorder sink.Recorder
	selfMem  memaccess.Memory

	allocatedBytes atomic.Uint64

	ring *ringBuffer

	prevHandler sigchain.Handler

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// Start resolves the intercept targets against cfg.LibraryName, installs the
// chained trap handler, and begins draining samples to recorder. On any
// failure nothing is left installed: Start either fully succeeds or fully
// rolls back.
func Start(cfg config.Args, recorder sink.Recorder) (*Tracer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if recorder == nil {
		recorder = sink.LoggingRecorder{}
	}

	lib, err := nativelib.Open(cfg.LibraryName)
	if err != nil {
		return nil, fmt.Errorf("alloctracer: %w", err)
	}

	offsets := vmstructs.Init(lib)
	if !offsets.Available() {
		lib.Close()
		return nil, ErrVMStructsUnavailable
	}

	traps := trap.NewSet()
	traps.ResolveAll(lib)
	if !traps.Ready() {
		lib.Close()
		return nil, ErrSymbolsMissing
	}

	t := &Tracer{
		cfg:      cfg,
		lib:      lib,
		offsets:  offsets,
		traps:    traps,
		recorder: recorder,
		selfMem:  memaccess.Self(),
		ring:     newRingBuffer(ringCapacity),
		stopCh:   make(chan struct{}),
	}

	prev, err := sigchain.Install(int(unix.SIGTRAP), trampolineAddr())
	if err != nil {
		lib.Close()
		return nil, fmt.Errorf("alloctracer: installing signal handler: %w", err)
	}
	t.prevHandler = prev

	active.Store(t)
	traps.InstallAll()

	t.wg.Add(1)
	go t.drainLoop()

	log.Infof("alloctracer: started (interval=%d bytes, library=%s)", cfg.Interval, lib.Path())
	return t, nil
}

// Stop uninstalls every trap, stops the drain loop (after flushing whatever
// remains in the ring), and restores the signal handler that was previously
// installed for SIGTRAP by reinstalling its saved address in our slot.
func (t *Tracer) Stop() {
	t.traps.UninstallAll()

	if _, err := sigchain.Install(int(unix.SIGTRAP), unsafe.Pointer(uintptr(t.prevHandler))); err != nil { //nolint:govet
		log.Warnf("alloctracer: failed to restore previous SIGTRAP handler: %v", err)
	}

	close(t.stopCh)
	t.wg.Wait()

	active.CompareAndSwap(t, nil)

	if err := t.lib.Close(); err != nil {
		log.Warnf("alloctracer: closing host library: %v", err)
	}
	log.Infof("alloctracer: stopped")
}
