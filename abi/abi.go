// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package abi describes the foreign-call surface a Callable exposes:
// argument/result C types and the calling convention used to marshal them
// into registers and stack slots. Adapted from the reference module's
// WebAssembly value-type model (abi.Type/Category/Size), repurposed here
// for native C types since spec.md's make_callable needs a concrete
// return/argument type plus calling convention, not a wasm value type.
package abi

// Type is a native argument or result type recognized by a Callable.
type Type uint8

const (
	Void Type = iota
	Int32
	Int64
	Float32
	Float64
	Pointer
)

func (t Type) String() string {
	switch t {
	case Void:
		return "void"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Pointer:
		return "pointer"
	default:
		return "<invalid type>"
	}
}

// Size is the in-memory/register size of t, in bytes.
func (t Type) Size() int {
	switch t {
	case Int32, Float32:
		return 4
	case Int64, Float64, Pointer:
		return 8
	default:
		return 0
	}
}

// IsFloat reports whether t is passed in an XMM register under every
// convention this module supports.
func (t Type) IsFloat() bool { return t == Float32 || t == Float64 }

// Signature describes a callable's argument types and single result type.
// WebAssembly-style multi-result signatures are not needed here: a native
// function pointer called through a single calling convention returns at
// most one scalar or pointer value.
type Signature struct {
	Args   []Type
	Result Type
}

func (s Signature) Equal(o Signature) bool {
	if s.Result != o.Result || len(s.Args) != len(o.Args) {
		return false
	}
	for i := range s.Args {
		if s.Args[i] != o.Args[i] {
			return false
		}
	}
	return true
}

func (s Signature) String() (out string) {
	out = "("
	for i, t := range s.Args {
		if i > 0 {
			out += ", "
		}
		out += t.String()
	}
	out += ")"
	if s.Result != Void {
		out += " " + s.Result.String()
	}
	return
}

// Convention identifies a native calling convention a Callable trampoline
// can target.
type Convention uint8

const (
	// SystemV64 is the System V AMD64 ABI used by Linux/BSD/macOS: integer
	// args in rdi,rsi,rdx,rcx,r8,r9; float args in xmm0-7; result in
	// rax/xmm0.
	SystemV64 Convention = iota
	// Win64 is the Microsoft x64 ABI: integer args in rcx,rdx,r8,r9; float
	// args in xmm0-3 (sharing argument-slot position with integer args);
	// result in rax/xmm0.
	Win64
	// Cdecl32 is the IA-32 cdecl convention: all arguments on the stack,
	// caller cleans up; result in eax (or st(0)/xmm0 for floats,
	// unsupported by this module's first cut).
	Cdecl32
	// Stdcall32 is the IA-32 stdcall convention: all arguments on the
	// stack in the same order as cdecl, but the callee cleans up.
	Stdcall32
)

func (c Convention) String() string {
	switch c {
	case SystemV64:
		return "System V AMD64"
	case Win64:
		return "Microsoft x64"
	case Cdecl32:
		return "cdecl"
	case Stdcall32:
		return "stdcall"
	default:
		return "<invalid calling convention>"
	}
}

// Is64 reports whether the convention targets Intel-64 mode.
func (c Convention) Is64() bool { return c == SystemV64 || c == Win64 }

// IntArgRegs returns the ordered integer-argument register names for c, in
// the Intel-syntax names the reg package recognizes. Empty for 32-bit
// conventions, which pass everything on the stack.
func (c Convention) IntArgRegs() []string {
	switch c {
	case SystemV64:
		return []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
	case Win64:
		return []string{"rcx", "rdx", "r8", "r9"}
	default:
		return nil
	}
}

// FloatArgRegs returns the ordered XMM argument registers for c.
func (c Convention) FloatArgRegs() []string {
	switch c {
	case SystemV64:
		return []string{"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7"}
	case Win64:
		return []string{"xmm0", "xmm1", "xmm2", "xmm3"}
	default:
		return nil
	}
}

// CalleeCleansStack reports whether the callee (rather than the caller) is
// responsible for popping stack arguments, as in stdcall.
func (c Convention) CalleeCleansStack() bool { return c == Stdcall32 }
