// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package nativelib resolves symbols inside a shared library that is mapped
// into this process's own address space. It is a narrow stand-in for a
// general-purpose native symbolizer: it supports exactly the two lookups
// the allocation tracer needs (exact name, and prefix match for versioned
// mangled C++ names) and nothing else — no PC-to-symbol reverse lookup, no
// unwinding, no DWARF. It resolves the *current* process's own libraries
// via /proc/self/maps rather than a foreign process's via ptrace, because
// the engine is loaded inside the target process rather than attached to
// it.
package nativelib // import "go.opentelemetry.io/ebpf-profiler/nativelib"

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/ebpf-profiler/libpf"
	"go.opentelemetry.io/ebpf-profiler/libpf/pfelf"
	"go.opentelemetry.io/ebpf-profiler/log"
)

// Library resolves symbols in one shared library mapped into this process.
type Library struct {
	// ref lazily opens and caches the pfelf.File for path; Open resolves it
	// immediately since the load bias and symbol tables are needed right
	// away, but routing through Reference rather than pfelf.Open directly
	// keeps one place responsible for "the File behind this path", which
	// tryDebugLink's own on-demand debug-file open reuses below.
	ref  *pfelf.Reference
	path string
	bias libpf.Address

	symbols    *libpf.SymbolMap
	dynSymbols *libpf.SymbolMap
}

// Open locates the first mapping in /proc/self/maps whose path contains
// nameContains (e.g. "libjvm.so"), opens it from disk with pfelf, and
// computes the load bias needed to turn the file's link-time symbol values
// into addresses valid in this process right now.
func Open(nameContains string) (*Library, error) {
	path, mappedBase, err := findMapping(nameContains)
	if err != nil {
		return nil, err
	}

	ref := pfelf.NewReference(path, pfelf.SystemOpener)
	f, err := ref.GetELF()
	if err != nil {
		return nil, fmt.Errorf("nativelib: opening %s: %w", path, err)
	}

	minVaddr, err := minLoadVaddr(f)
	if err != nil {
		ref.Close()
		return nil, err
	}

	lib := &Library{
		ref:  ref,
		path: path,
		bias: libpf.Address(mappedBase) - libpf.Address(minVaddr),
	}

	if lib.symbols, err = f.ReadSymbols(); err != nil {
		log.Debugf("nativelib: %s has no .symtab: %v", path, err)
	}
	if lib.dynSymbols, err = f.ReadDynamicSymbols(); err != nil {
		log.Debugf("nativelib: %s has no .dynsym: %v", path, err)
	}

	if lib.symbols == nil && lib.dynSymbols == nil {
		lib.tryDebugLink()
	}

	return lib, nil
}

// Close releases the backing file.
func (l *Library) Close() error {
	l.ref.Close()
	return nil
}

// Path returns the on-disk path of the resolved library.
func (l *Library) Path() string {
	return l.path
}

func (l *Library) tryDebugLink() {
	f, err := l.ref.GetELF()
	if err != nil {
		return
	}
	debugFile, path := f.OpenDebugLink(l.path, pfelf.SystemOpener)
	if debugFile == nil {
		log.Debugf("nativelib: %s is stripped and carries no usable debuglink "+
			"(tried %s)", l.path, path)
		return
	}
	log.Debugf("nativelib: using debug symbols from %s", path)
	if syms, err := debugFile.ReadSymbols(); err == nil {
		l.symbols = syms
	}
	if syms, err := debugFile.ReadDynamicSymbols(); err == nil {
		l.dynSymbols = syms
	}
	debugFile.Close()
}

// FindSymbol resolves an exact exported or local symbol name to a runtime
// address, or reports found=false.
func (l *Library) FindSymbol(name string) (addr uintptr, found bool) {
	for _, syms := range []*libpf.SymbolMap{l.dynSymbols, l.symbols} {
		if syms == nil {
			continue
		}
		if sym, err := syms.LookupSymbol(libpf.SymbolName(name)); err == nil {
			return uintptr(sym.Address) + uintptr(l.bias), true
		}
	}
	return 0, false
}

// FindSymbolByPrefix scans the symbol tables (.dynsym, then .symtab) for a
// symbol whose name begins with prefix, matching mangled C++ names whose
// tails vary with toolchain, template instantiation or overload signature.
// When several symbols in one table match, which one is returned is not
// defined.
func (l *Library) FindSymbolByPrefix(prefix string) (addr uintptr, name string, found bool) {
	for _, syms := range []*libpf.SymbolMap{l.dynSymbols, l.symbols} {
		if syms == nil {
			continue
		}
		if sym, err := syms.LookupSymbolByPrefix(prefix); err == nil {
			return uintptr(sym.Address) + uintptr(l.bias), string(sym.Name), true
		}
	}
	return 0, "", false
}

// minLoadVaddr returns the lowest virtual address among PT_LOAD segments,
// matching the "virtualBase" pfelf computes internally to derive bias for
// coredump files. We recompute it here because pfelf does not expose it:
// Open() always loads with bias 0, since it has no notion of "this file is
// also mapped live in my own process".
func minLoadVaddr(f *pfelf.File) (uint64, error) {
	min := ^uint64(0)
	for _, p := range f.Progs {
		if p.Type.String() == "PT_LOAD" && p.Vaddr < min {
			min = p.Vaddr
		}
	}
	if min == ^uint64(0) {
		return 0, fmt.Errorf("nativelib: no PT_LOAD segments")
	}
	return min, nil
}

// findMapping scans /proc/self/maps for the first mapping whose path
// contains nameContains, returning its path and the lowest mapped address
// (the base this library was actually loaded at in this process).
func findMapping(nameContains string) (path string, base uint64, err error) {
	f, err := os.Open("/proc/self/maps")
	if err != nil {
		return "", 0, fmt.Errorf("nativelib: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) < 6 {
			continue
		}
		mappingPath := fields[len(fields)-1]
		if !strings.Contains(mappingPath, nameContains) {
			continue
		}
		addrRange := strings.SplitN(fields[0], "-", 2)
		if len(addrRange) != 2 {
			continue
		}
		startAddr, perr := strconv.ParseUint(addrRange[0], 16, 64)
		if perr != nil {
			continue
		}
		return mappingPath, startAddr, nil
	}
	if err := scanner.Err(); err != nil {
		return "", 0, fmt.Errorf("nativelib: reading /proc/self/maps: %w", err)
	}
	return "", 0, fmt.Errorf("nativelib: no mapping containing %q found in this process",
		nameContains)
}
