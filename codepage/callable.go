// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codepage

import (
	"github.com/x86rt/assembler/abi"
	internal "github.com/x86rt/assembler/internal/errors"
)

// Callable is a typed handle to a function entry point inside a Page,
// invokable from Go without cgo via the hand-written trampoline in
// call_amd64.s — the same "declare the signature in Go, implement the body
// in assembly" split runner.go uses for its own run() entry point.
type Callable struct {
	page *Page
	fn   uintptr
	sig  abi.Signature
	conv abi.Convention
}

// Signature returns the calling convention and C type signature this
// Callable was bound with.
func (c *Callable) Signature() (abi.Signature, abi.Convention) { return c.sig, c.conv }

// Call invokes the underlying code with args marshaled per c.sig and
// returns the single scalar or pointer result.
//
// Only the System V AMD64 convention is wired to a real trampoline in this
// cut; Win64/Cdecl32/Stdcall32 Callables can be built and introspected but
// Call on them reports OperandMisuse rather than silently miscalling into
// memory under the wrong register convention (see DESIGN.md).
func (c *Callable) Call(args ...int64) (int64, error) {
	if c.conv != abi.SystemV64 {
		return 0, internal.Newf(internal.OperandMisuse, "Call has no trampoline for the %s convention yet", c.conv)
	}
	if len(args) != len(c.sig.Args) {
		return 0, internal.Newf(internal.OperandMisuse, "Call got %d arguments, signature wants %d", len(args), len(c.sig.Args))
	}
	if len(args) > 6 {
		return 0, internal.Newf(internal.OperandMisuse, "Call supports at most 6 integer/pointer arguments, got %d", len(args))
	}
	for i, t := range c.sig.Args {
		if t.IsFloat() {
			return 0, internal.Newf(internal.OperandMisuse, "Call's trampoline does not marshal floating-point argument %d into an XMM register", i)
		}
	}

	var buf [6]uint64
	for i, v := range args {
		buf[i] = uint64(v)
	}
	result := callTrampoline(c.fn, &buf[0], len(args))

	if c.sig.Result.IsFloat() {
		return 0, internal.Newf(internal.OperandMisuse, "Call's trampoline does not marshal a floating-point result out of XMM0")
	}
	return int64(result), nil
}
