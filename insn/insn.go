// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package insn binds a mnemonic and its operands to one selected encoding
// form and produces the resulting bytes, deferring only the handful of
// byte ranges that depend on a label's eventual address. Grounded on the
// teacher's internal/isa/amd64/in/insn.go (one Go type per encoding shape)
// and on original_source/pycca/asm/instruction.py's Instruction class,
// generalized here into one type driven by the internal/enc row table.
package insn

import (
	"strings"

	"github.com/x86rt/assembler/arch"
	"github.com/x86rt/assembler/internal/enc"
	internal "github.com/x86rt/assembler/internal/errors"
	"github.com/x86rt/assembler/opnd"
)

// Instruction is one assembled instruction: a mnemonic, its operands, and
// the bytes its selected form produces. A label-dependent branch carries
// both a long (rel32) and, when legal, a short (rel8) alternative form so
// that an assembly unit can shrink it once the label's distance is known.
type Instruction struct {
	Mnemonic string
	Operands []opnd.Operand

	ctx arch.Context

	long     enc.Selected
	result   enc.Result
	shortRow *enc.Row // non-nil only for a label branch with a legal rel8 form
	short    bool      // true once shrunk to the short form
}

// New selects an encoding form for mnemonic and operands under ctx and
// produces its bytes. A LabelRef operand used as a branch target is
// recognized specially: the instruction is sized at its longest legal
// form (spec.md §4.5's "provisional size"), and the caller (package unit)
// drives shrinking to the short form once it knows the label's offset.
func New(ctx arch.Context, mnemonic string, operands ...opnd.Operand) (*Instruction, error) {
	lower := strings.ToLower(mnemonic)
	if labelIdx := labelOperandIndex(operands); labelIdx >= 0 {
		if short, long, err := enc.BranchForms(lower, ctx); err == nil && (short != nil || long != nil) {
			return newBranch(ctx, mnemonic, operands, short, long)
		}
	}

	sel, err := enc.SelectRow(lower, operands, ctx)
	if err != nil {
		return nil, err
	}
	res, err := enc.Emit(sel, operands, ctx)
	if err != nil {
		return nil, err
	}
	return &Instruction{Mnemonic: mnemonic, Operands: operands, ctx: ctx, long: sel, result: res}, nil
}

func newBranch(ctx arch.Context, mnemonic string, operands []opnd.Operand, short, long *enc.Row) (*Instruction, error) {
	form := long
	if form == nil {
		form = short // e.g. LOOP, which only ever has a rel8 form
	}
	sel := enc.Selected{Row: *form}
	res, err := enc.Emit(sel, operands, ctx)
	if err != nil {
		return nil, err
	}
	inst := &Instruction{Mnemonic: mnemonic, Operands: operands, ctx: ctx, long: sel, result: res}
	if short != nil && long != nil {
		inst.shortRow = short
	}
	return inst, nil
}

func labelOperandIndex(operands []opnd.Operand) int {
	for i, op := range operands {
		if _, ok := op.(opnd.LabelRef); ok {
			return i
		}
	}
	return -1
}

// Size is the number of bytes this instruction currently occupies.
func (in *Instruction) Size() int { return len(in.result.Code) }

// Fixup describes what, if anything, still needs to be patched into this
// instruction's bytes once labels are resolved.
func (in *Instruction) Fixup() enc.Fixup { return in.result.Fixup }

// Bytes returns the instruction's bytes as currently encoded. For a
// label-dependent instruction these still have a zero-filled fixup slot;
// the caller must patch it (see Patch) before the bytes are final.
func (in *Instruction) Bytes() []byte { return in.result.Code }

// CanShrink reports whether this is a branch instruction still at its
// long (rel32) form with a legal short (rel8) alternative available.
func (in *Instruction) CanShrink() bool {
	return in.shortRow != nil && !in.short
}

// ShrinkSize is the size this instruction would occupy if shrunk now.
func (in *Instruction) ShrinkSize() int {
	if in.shortRow == nil {
		return in.Size()
	}
	return len(in.shortRow.Opcode) + 1 // opcode bytes + one-byte rel8
}

// Shrink re-encodes this instruction using its short (rel8) form. The
// fixup slot is left zero-filled for a later Patch call, same as the long
// form. Callers must re-check whether the new, shorter relative
// displacement still fits before calling this — spec.md §4.5's
// fixpoint iteration.
func (in *Instruction) Shrink() error {
	if in.shortRow == nil || in.short {
		return nil
	}
	sel := enc.Selected{Row: *in.shortRow}
	res, err := enc.Emit(sel, in.Operands, in.ctx)
	if err != nil {
		return err
	}
	in.long = sel
	in.result = res
	in.short = true
	return nil
}

// Patch fills in a label-dependent fixup slot now that its value is
// known. rel is used for FixupRel8/FixupRel32 (already computed relative
// to the end of this instruction); abs is used for FixupAbs32/FixupAbs64
// (an absolute address, or a RIP-relative displacement already computed
// by the caller for Abs32).
func (in *Instruction) Patch(rel int32, abs int64) error {
	f := in.result.Fixup
	switch f.Kind {
	case enc.FixupNone:
		return nil
	case enc.FixupRel8:
		if rel < -128 || rel > 127 {
			return internal.Newf(internal.DisplacementOutOfRange, "relative displacement %d does not fit in 8 bits", rel)
		}
		in.result.Code[f.Offset] = byte(int8(rel))
	case enc.FixupRel32:
		putLE32(in.result.Code[f.Offset:], rel)
	case enc.FixupAbs32:
		putLE32(in.result.Code[f.Offset:], int32(abs))
	case enc.FixupAbs64:
		putLE64(in.result.Code[f.Offset:], abs)
	}
	return nil
}

func putLE32(buf []byte, v int32) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
}

func putLE64(buf []byte, v int64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}
