// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reg enumerates the named x86 registers this module knows about,
// along with the attributes the encoder needs: class, bit width, the
// 0..15 encoding index used in ModR/M/SIB/opcode fields, whether the
// register only exists in 64-bit mode, and whether it is a high-byte
// alias mutually exclusive with REX.
package reg

import "fmt"

// Class groups registers that share an addressing mode and instruction
// set. Only General is exercised by the instruction table built so far;
// the others are modeled so that the encoder framework stays extensible
// per spec.md's explicit non-goal language, not so they can be silently
// half-supported.
type Class uint8

const (
	General Class = iota
	Segment
	X87Stack
	MMX
	XMM
)

func (c Class) String() string {
	switch c {
	case General:
		return "general"
	case Segment:
		return "segment"
	case X87Stack:
		return "x87"
	case MMX:
		return "mmx"
	case XMM:
		return "xmm"
	default:
		return "invalid"
	}
}

// Register is an immutable, process-wide named register constant.
type Register struct {
	Name string
	Cls  Class
	Bits uint8 // 8, 16, 32, 64, 80, or 128
	// Index is the 0..15 encoding index shared by every width alias of the
	// same hardware register (al/ax/eax/rax all have Index 0).
	Index uint8
	// Ext64Only marks registers that do not exist in 32-bit mode: r8-r15
	// (any width) and the 64-bit forms rax..rdi/rsp/rbp/rsi/rdi.
	Ext64Only bool
	// HighByte marks ah/bh/ch/dh: legal only without a REX prefix, and
	// mutually exclusive with spl/bpl/sil/dil in the same instruction.
	HighByte bool
}

func (r Register) String() string { return r.Name }

// NeedsREX reports whether merely referencing this register forces a REX
// prefix to be emitted, independent of any other operand: spl/bpl/sil/dil
// are the 8-bit registers that alias the low byte of rsp/rbp/rsi/rdi only
// when a REX prefix is present at all, so selecting them requires a
// (possibly zero-bit) REX prefix to disambiguate from ah/bh/ch/dh.
func (r Register) NeedsREX() bool {
	switch r.Name {
	case "spl", "bpl", "sil", "dil":
		return true
	default:
		return false
	}
}

// NeedsRexExt reports whether this register's encoding index (>=8) forces
// a REX.R/X/B extension bit when it occupies the corresponding field.
func (r Register) NeedsRexExt() bool { return r.Index >= 8 }

var byName = map[string]Register{}

func define(name string, cls Class, bits uint8, index uint8, ext64, highByte bool) Register {
	r := Register{Name: name, Cls: cls, Bits: bits, Index: index, Ext64Only: ext64, HighByte: highByte}
	byName[name] = r
	return r
}

// ByName looks up a register by its Intel-syntax textual name (e.g. "eax",
// "r9d", "xmm3", "spl"). The bool result is false for unknown names.
func ByName(name string) (Register, bool) {
	r, ok := byName[name]
	return r, ok
}

// MustByName is a convenience wrapper over ByName that panics on an unknown
// name; intended for use with compile-time-constant register names inside
// this package and its tests, not for validating caller-supplied input.
func MustByName(name string) Register {
	r, ok := ByName(name)
	if !ok {
		panic(fmt.Sprintf("reg: unknown register %q", name))
	}
	return r
}

// 8-bit low-byte names (rax..rdi, index 0..7) plus r8b..r15b (index 8..15).
var names8 = [16]string{"al", "cl", "dl", "bl", "spl", "bpl", "sil", "dil", "r8b", "r9b", "r10b", "r11b", "r12b", "r13b", "r14b", "r15b"}
var names16 = [16]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di", "r8w", "r9w", "r10w", "r11w", "r12w", "r13w", "r14w", "r15w"}
var names32 = [16]string{"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi", "r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15d"}
var names64 = [16]string{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi", "r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15"}
var namesHigh = [4]string{"ah", "ch", "dh", "bh"} // index 4..7, no REX allowed

func init() {
	for i := uint8(0); i < 16; i++ {
		ext64 := i >= 8
		define(names8[i], General, 8, i, ext64, false)
		define(names16[i], General, 16, i, ext64, false)
		define(names32[i], General, 32, i, ext64, false)
		define(names64[i], General, 64, i, true, false) // every 64-bit GPR is 64-bit-only
	}
	for i, name := range namesHigh {
		define(name, General, 8, uint8(4+i), false, true)
	}

	define("rip", General, 64, 5, true, false)

	for i := uint8(0); i < 16; i++ {
		define(fmt.Sprintf("xmm%d", i), XMM, 128, i, i >= 8, false)
	}

	for i := uint8(0); i < 8; i++ {
		define(fmt.Sprintf("st(%d)", i), X87Stack, 80, i, false, false)
	}

	for i, name := range []string{"es", "cs", "ss", "ds", "fs", "gs"} {
		define(name, Segment, 16, uint8(i), false, false)
	}
}

// Well-known registers used by other packages in this module (stack
// pointer, frame pointer, accumulator) so callers don't have to round-trip
// through ByName for the common cases.
var (
	RAX = MustByName("rax")
	RCX = MustByName("rcx")
	RDX = MustByName("rdx")
	RBX = MustByName("rbx")
	RSP = MustByName("rsp")
	RBP = MustByName("rbp")
	RSI = MustByName("rsi")
	RDI = MustByName("rdi")
	EAX = MustByName("eax")
	RIP = MustByName("rip")
)
