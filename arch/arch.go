// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package arch publishes the per-architecture constants needed to patch a
// function prologue with a hardware breakpoint and to flush that patch out
// to the instruction stream. Each supported GOARCH provides its own file
// defining instructionWidth, breakpoint, breakpointOffset and canMoveSP;
// this file exports them under the names below and holds the shared
// documentation.
package arch // import "go.opentelemetry.io/ebpf-profiler/arch"

// InstructionWidth is the width in bytes of one instruction slot for the
// purpose of prologue patching: 1 on x86/x86-64, 4 on ARM/AArch64/PPC64LE.
var InstructionWidth = instructionWidth

// Breakpoint holds the little-endian encoded trap instruction, exactly
// InstructionWidth bytes long, installed over the resolved entry point.
var Breakpoint = breakpoint

// BreakpointOffset selects which instruction slot inside the prologue is
// overwritten, counted in units of InstructionWidth. Zero everywhere except
// PPC64LE, whose ABI reserves the first two slots as a local-entry
// trampoline skipped by intra-module calls.
var BreakpointOffset = breakpointOffset

// CanMoveSP reports whether the stack pointer may be adjusted when
// simulating a return. False on PPC64LE, where the ABI requires a valid
// back-link in the caller's frame at all times.
var CanMoveSP = canMoveSP
