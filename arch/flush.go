// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package arch

/*
#include <stdint.h>

#if defined(__x86_64__) || defined(__i386__)
static void arch_flush_cache(void *addr) {
	__asm__ volatile("mfence; clflush (%0); mfence" : : "r"(addr) : "memory");
}
#elif defined(__aarch64__) || defined(__arm__)
static void arch_flush_cache(void *addr) {
	__builtin___clear_cache((char *)addr, (char *)addr + 4);
}
#elif defined(__PPC64__)
static void arch_flush_cache(void *addr) {
	__builtin___clear_cache((char *)addr, (char *)addr + 4);
}
#else
static void arch_flush_cache(void *addr) {}
#endif
*/
import "C"

import "unsafe"

// FlushCache guarantees that a store to addr performed by this thread is
// observed as an instruction fetch on every core before execution reaches
// the patched address. Must be called after every write to a patched
// prologue, before the trap it installs (or removes) can be relied on.
func FlushCache(addr uintptr) {
	C.arch_flush_cache(unsafe.Pointer(addr)) //nolint:govet
}
