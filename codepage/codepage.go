// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package codepage turns an assembled byte buffer into live, executable
// memory and exposes it either as a raw base address or as a typed
// Callable a Go caller can invoke directly. Grounded on runner/runner.go's
// makeMemory/makeMemoryCopy mmap-then-mprotect pattern (itself traceable to
// original_source/pycca/asm/codepage.py's CodePage using Python's mmap
// module the same way), generalized from the teacher's fixed
// text/roData/stack layout to one arbitrary code buffer with label
// patching.
package codepage

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/x86rt/assembler/abi"
	internal "github.com/x86rt/assembler/internal/errors"
	"github.com/x86rt/assembler/unit"
)

// Page is a block of anonymous memory holding assembled machine code,
// writable only during Load and executable (never both at once)
// afterward — the W^X discipline spec.md §4.7 requires.
type Page struct {
	mu     sync.Mutex
	mem    []byte
	labels map[string]int
	closed bool
}

// Load copies code into freshly mapped memory, patches every absolute
// label fixup with the page's own runtime base address, and switches the
// mapping from read-write to read-execute. The returned Page owns mem
// until Close.
func Load(code []byte, labels map[string]int, fixups []unit.AbsFixup) (*Page, error) {
	if len(code) == 0 {
		return nil, internal.New(internal.PageAllocFailed, "cannot load an empty code buffer")
	}

	mem, err := unix.Mmap(-1, 0, len(code), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, internal.WrapFormat(internal.PageAllocFailed, err, "mmap failed")
	}
	copy(mem, code)

	base := addrOf(mem)
	for _, f := range fixups {
		off, ok := labels[f.Label]
		if !ok {
			unix.Munmap(mem)
			return nil, internal.Newf(internal.UndefinedLabel, "label %q has no recorded offset", f.Label)
		}
		target := base + uint64(off)
		patchLE(mem[f.Offset:f.Offset+f.Size], target)
	}

	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		unix.Munmap(mem)
		return nil, internal.WrapFormat(internal.PageAllocFailed, err, "mprotect to RX failed")
	}

	p := &Page{mem: mem, labels: labels}
	registerPage(p)
	return p, nil
}

// Close unmaps the page's memory. Calling any Callable obtained from this
// page after Close is undefined behavior, same as dereferencing freed
// memory in any language — the caller, not this package, is responsible
// for not outliving the page.
func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if err := deregisterPage(p); err != nil {
		return err
	}
	return unix.Munmap(p.mem)
}

// Base is the runtime address of byte 0 of the page.
func (p *Page) Base() uintptr { return uintptr(addrOf(p.mem)) }

// LabelAddr resolves name to its runtime address within this page.
func (p *Page) LabelAddr(name string) (uintptr, bool) {
	off, ok := p.labels[name]
	if !ok {
		return 0, false
	}
	return p.Base() + uintptr(off), true
}

// MakeCallable builds a Callable bound to the code starting at offset
// bytes into p, described by sig and invoked under conv.
func (p *Page) MakeCallable(offset int, sig abi.Signature, conv abi.Convention) (*Callable, error) {
	if offset < 0 || offset >= len(p.mem) {
		return nil, internal.Newf(internal.OperandMisuse, "offset %d is outside the code page", offset)
	}
	return &Callable{page: p, fn: p.Base() + uintptr(offset), sig: sig, conv: conv}, nil
}

func addrOf(mem []byte) uint64 {
	if len(mem) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(&mem[0])))
}

// patchLE writes v into buf little-endian, truncated to len(buf) bytes (4
// for an absolute 32-bit slot, 8 for a 64-bit one).
func patchLE(buf []byte, v uint64) {
	for i := range buf {
		buf[i] = byte(v >> (8 * i))
	}
}
