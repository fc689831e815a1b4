// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package trap

import "go.opentelemetry.io/ebpf-profiler/nativelib"

// Set holds the four allocation-notification traps: legacy and v2 variants
// of both the inside-TLAB and outside-TLAB hooks. Newer JVM releases only
// expose the v2 signatures; older ones only the legacy ones, hence four
// independent traps rather than two.
type Set struct {
	InNewTLAB     *Trap
	OutsideTLAB   *Trap
	InNewTLABV2   *Trap
	OutsideTLABV2 *Trap
}

// NewSet constructs a Set with all four traps unresolved.
func NewSet() *Set {
	return &Set{
		InNewTLAB:     New(PrefixInNewTLAB),
		OutsideTLAB:   New(PrefixOutsideTLAB),
		InNewTLABV2:   New(PrefixInNewTLABV2),
		OutsideTLABV2: New(PrefixOutsideTLABV2),
	}
}

// all returns the four traps, for operations that apply uniformly to all.
func (s *Set) all() [4]*Trap {
	return [4]*Trap{s.InNewTLAB, s.OutsideTLAB, s.InNewTLABV2, s.OutsideTLABV2}
}

// ResolveAll resolves every trap against lib. It never treats an individual
// failure as fatal: the caller checks Ready afterwards.
func (s *Set) ResolveAll(lib *nativelib.Library) {
	for _, t := range s.all() {
		t.Resolve(lib)
	}
}

// Ready reports whether at least one inside-TLAB trap and at least one
// outside-TLAB trap resolved, the minimum needed for profiling to start.
func (s *Set) Ready() bool {
	insideOK := s.InNewTLAB.Resolved() || s.InNewTLABV2.Resolved()
	outsideOK := s.OutsideTLAB.Resolved() || s.OutsideTLABV2.Resolved()
	return insideOK && outsideOK
}

// InstallAll installs every resolved trap; unresolved ones are no-ops.
func (s *Set) InstallAll() {
	for _, t := range s.all() {
		t.Install()
	}
}

// UninstallAll uninstalls every installed trap.
func (s *Set) UninstallAll() {
	for _, t := range s.all() {
		t.Uninstall()
	}
}

// Match finds the trap whose entry matches pc, and reports whether it is a
// v2-signature trap (different argument registers hold the allocation
// size) and whether it is the outside-TLAB family.
func (s *Set) Match(pc uintptr) (t *Trap, isV2, outside bool, ok bool) {
	switch {
	case s.InNewTLAB.Matches(pc):
		return s.InNewTLAB, false, false, true
	case s.OutsideTLAB.Matches(pc):
		return s.OutsideTLAB, false, true, true
	case s.InNewTLABV2.Matches(pc):
		return s.InNewTLABV2, true, false, true
	case s.OutsideTLABV2.Matches(pc):
		return s.OutsideTLABV2, true, true, true
	default:
		return nil, false, false, false
	}
}
