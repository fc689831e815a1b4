// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package config holds the allocation tracer's runtime configuration. It is
// deliberately tiny: this engine has exactly one tunable that changes its
// sampled behavior.
package config // import "go.opentelemetry.io/ebpf-profiler/config"

import "fmt"

// DefaultInterval is a sane byte-interval sampling threshold callers may use
// to populate Args.Interval when they want throttled sampling but have no
// opinion on the exact value. It is never applied implicitly: Args.Interval
// left at zero means "disable throttling, sample every allocation", per the
// documented interface, and Validate never overrides that.
const DefaultInterval = 512 * 1024

// Args configures one Start call.
type Args struct {
	// Interval is the mean number of allocated bytes between recorded
	// samples, the "byte-interval sampling" throttle. Zero disables
	// throttling: every trapped allocation is sampled. Callers wanting a
	// sensible default should set this to DefaultInterval explicitly.
	Interval uint64

	// LibraryName is substring-matched against /proc/self/maps to find the
	// JVM shared library to instrument, e.g. "libjvm.so".
	LibraryName string
}

// Validate reports whether a is usable, and fills in defaults.
func (a *Args) Validate() error {
	if a.LibraryName == "" {
		a.LibraryName = "libjvm.so"
	}
	if a.Interval > 1<<40 {
		return fmt.Errorf("config: interval %d implausibly large", a.Interval)
	}
	return nil
}
