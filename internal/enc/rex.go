// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package enc holds the pure, byte-producing encoding primitives (REX,
// ModR/M, SIB, displacement, immediate) and the per-mnemonic instruction
// spec table that selects among them. Adapted from
// internal/isa/x86/in/{rex,mod,imm,encode}.go and
// internal/isa/amd64/in/{sib,insn}.go in the teacher module.
package enc

// rexBits is the WRXB nibble of a REX prefix, independent of the fixed
// 0100 high nibble.
type rexBits byte

const (
	RexByte = byte(0x40)
	RexW    = rexBits(0x8) // 64-bit operand size
	RexR    = rexBits(0x4) // extension of the ModR/M reg field
	RexX    = rexBits(0x2) // extension of the SIB index field
	RexB    = rexBits(0x1) // extension of the ModR/M r/m field, SIB base, or opcode reg
)

// regRexR/X/B turn an 8-15 encoding index into the matching REX bit; 0-7
// contributes nothing, mirroring internal/isa/x86/in/rex.go's
// regRexR/X/B helpers.
func regRexR(index uint8) rexBits { return rexBits(index>>3) << 2 }
func regRexX(index uint8) rexBits { return rexBits(index>>3) << 1 }
func regRexB(index uint8) rexBits { return rexBits(index>>3) << 0 }

// needed reports whether wrxb requires an explicit REX byte to be emitted
// even with a zero WRXB nibble is a separate decision (see
// Register.NeedsREX in package reg) — this only covers the WRXB-nonzero
// case.
func (wrxb rexBits) needed() bool { return wrxb != 0 }
