// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package sigchain installs a SA_SIGINFO signal handler and preserves
// whatever handler was previously registered for that signal, so that a
// trap this process doesn't recognize can be forwarded rather than
// swallowed. It is deliberately OS-facade-shaped (get/install, nothing
// more) because everything above it treats the signal disposition as an
// opaque collaborator.
package sigchain // import "go.opentelemetry.io/ebpf-profiler/sigchain"

/*
#include <signal.h>
#include <stdint.h>

static uintptr_t sigchain_get(int signo) {
	struct sigaction old;
	if (sigaction(signo, NULL, &old) != 0) {
		return (uintptr_t)SIG_ERR;
	}
	if (old.sa_flags & SA_SIGINFO) {
		return (uintptr_t)old.sa_sigaction;
	}
	return (uintptr_t)old.sa_handler;
}

static uintptr_t sigchain_install(int signo, void *handler) {
	struct sigaction sa, old;
	sa.sa_sigaction = (void (*)(int, siginfo_t *, void *))handler;
	sa.sa_flags = SA_SIGINFO | SA_RESTART;
	sigemptyset(&sa.sa_mask);
	if (sigaction(signo, &sa, &old) != 0) {
		return (uintptr_t)SIG_ERR;
	}
	if (old.sa_flags & SA_SIGINFO) {
		return (uintptr_t)old.sa_sigaction;
	}
	return (uintptr_t)old.sa_handler;
}

// sigchain_forward invokes a previously-saved handler, working around the
// fact that Go cannot call through an arbitrary C function pointer without
// cgo. Ignored for SIG_DFL/SIG_IGN/SIG_ERR/NULL, matching the contract that
// forwarding is skipped for those sentinels.
static void sigchain_forward(uintptr_t handler, int signo, void *info, void *ucontext) {
	if (handler == (uintptr_t)SIG_DFL || handler == (uintptr_t)SIG_IGN ||
	    handler == (uintptr_t)SIG_ERR || handler == 0) {
		return;
	}
	((void (*)(int, siginfo_t *, void *))handler)(signo, (siginfo_t *)info, ucontext);
}
*/
import "C"

import (
	"errors"
	"unsafe"
)

// Handler is the raw address of a previously-installed signal handler, or
// one of the SIG_DFL/SIG_IGN/SIG_ERR sentinels.
type Handler uintptr

// GetHandler returns the handler currently installed for signo.
func GetHandler(signo int) (Handler, error) {
	h := Handler(C.sigchain_get(C.int(signo)))
	if h == ^Handler(0) {
		return 0, errors.New("sigchain: sigaction query failed")
	}
	return h, nil
}

// Install registers fn (the address of a cgo-exported or C-linked function
// with signature void(int, siginfo_t*, void*)) as the SA_SIGINFO handler
// for signo, and returns whatever handler was previously installed.
func Install(signo int, fn unsafe.Pointer) (Handler, error) {
	h := Handler(C.sigchain_install(C.int(signo), fn))
	if h == ^Handler(0) {
		return 0, errors.New("sigchain: sigaction install failed")
	}
	return h, nil
}

// Forward invokes a previously-saved handler with the signal's original
// info/ucontext, unless it is SIG_DFL, SIG_IGN, SIG_ERR or unset.
func Forward(prev Handler, signo int, info, ucontext unsafe.Pointer) {
	C.sigchain_forward(C.uintptr_t(prev), C.int(signo), info, ucontext)
}
