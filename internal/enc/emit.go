// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enc

import (
	"github.com/x86rt/assembler/arch"
	"github.com/x86rt/assembler/opnd"
	"github.com/x86rt/assembler/reg"
)

// FixupKind names what a Result's trailing bytes still need once a label's
// address is known.
type FixupKind uint8

const (
	FixupNone  FixupKind = iota
	FixupRel8            // one byte, relative to the end of this instruction
	FixupRel32           // four bytes, relative to the end of this instruction
	FixupAbs32           // four bytes, absolute address (or RIP-relative disp32)
	FixupAbs64           // eight bytes, absolute address
)

// Fixup records where, inside a Result's Code, a label's eventual address
// must be patched, and how.
type Fixup struct {
	Kind   FixupKind
	Offset int // byte offset within Code where the patched value starts
	Label  string
}

// Result is the output of encoding one instruction form: the bytes
// produced so far (with the fixup slot, if any, zero-filled) and a
// description of what still needs patching.
type Result struct {
	Code  []byte
	Fixup Fixup
}

// Emit packs operands into the bytes row.Tag describes, using the
// reconciled operand width from Selected (0 if the row has no
// width-wildcard token). It never resolves a label address itself — a
// LabelRef operand always produces a zero-filled Fixup slot for the caller
// (package insn) to patch once displacements or addresses are known.
// Grounded on internal/isa/x86/in/encode.go's byte-producing helpers and
// internal/isa/amd64/in/insn.go's per-type Encode methods, generalized
// from fixed Go types into one data-driven function.
func Emit(sel Selected, operands []opnd.Operand, ctx arch.Context) (Result, error) {
	row := sel.Row
	var rx rexBits
	if row.RexW || (sel.Wildcard && sel.Width == 64) {
		rx |= RexW
	}
	forceREX := needsRexByte(operands)
	if forceREX && highByteConflict(operands) {
		return Result{}, errOperandMisuse("spl/bpl/sil/dil and ah/bh/ch/dh cannot appear in the same instruction")
	}

	var prefixes []byte
	if row.MandatoryPrefix != 0 {
		prefixes = append(prefixes, row.MandatoryPrefix)
	} else if sel.Wildcard && sel.Width == 16 {
		prefixes = append(prefixes, 0x66)
	}

	code := append([]byte{}, prefixes...)
	var fixup Fixup

	switch row.Tag {
	case TagZO:
		code = append(code, withREX(rx, forceREX, row.Opcode)...)

	case TagO:
		regOp, ok := regOperand(operands[0])
		if !ok {
			return Result{}, errOperandMisuse("%v is not a register", operands[0])
		}
		rx |= regRexB(regOp.Index)
		opcode := append([]byte{}, row.Opcode...)
		opcode[len(opcode)-1] += regOp.Index & 7
		code = append(code, withREX(rx, forceREX, opcode)...)

	case TagOI:
		regOp, ok := regOperand(operands[0])
		if !ok {
			return Result{}, errOperandMisuse("%v is not a register", operands[0])
		}
		rx |= regRexB(regOp.Index)
		opcode := append([]byte{}, row.Opcode...)
		opcode[len(opcode)-1] += regOp.Index & 7
		code = append(code, withREX(rx, forceREX, opcode)...)
		immBytes, immFixup, err := encodeImmediate(operands[1], sel.Width, len(code))
		if err != nil {
			return Result{}, err
		}
		code = append(code, immBytes...)
		fixup = immFixup

	case TagI:
		code = append(code, withREX(rx, forceREX, row.Opcode)...)
		immBits := immWidthFromSig(row.Sig[0])
		immBytes, immFixup, err := encodeImmediate(operands[0], immBits, len(code))
		if err != nil {
			return Result{}, err
		}
		code = append(code, immBytes...)
		fixup = immFixup

	case TagM:
		modrm, rx2, tail, err := encodeRMField(operands[0], byte(row.Ext), ctx)
		if err != nil {
			return Result{}, err
		}
		rx |= rx2
		code = append(code, withREX(rx, forceREX, row.Opcode)...)
		code = append(code, modrm)
		code = append(code, tail...)

	case TagMI:
		modrm, rx2, tail, err := encodeRMField(operands[0], byte(row.Ext), ctx)
		if err != nil {
			return Result{}, err
		}
		rx |= rx2
		code = append(code, withREX(rx, forceREX, row.Opcode)...)
		code = append(code, modrm)
		code = append(code, tail...)
		immBits := immWidthFromSig(row.Sig[1])
		immBytes, immFixup, err := encodeImmediate(operands[1], immBits, len(code))
		if err != nil {
			return Result{}, err
		}
		code = append(code, immBytes...)
		fixup = immFixup

	case TagRM:
		regOp, ok := regOperand(operands[0])
		if !ok {
			return Result{}, errOperandMisuse("%v is not a register", operands[0])
		}
		modrm, rx2, tail, err := encodeRMField(operands[1], byte(regOp.Index&7), ctx)
		if err != nil {
			return Result{}, err
		}
		rx |= rx2 | regRexR(regOp.Index)
		code = append(code, withREX(rx, forceREX, row.Opcode)...)
		code = append(code, modrm)
		code = append(code, tail...)

	case TagMR:
		regOp, ok := regOperand(operands[1])
		if !ok {
			return Result{}, errOperandMisuse("%v is not a register", operands[1])
		}
		modrm, rx2, tail, err := encodeRMField(operands[0], byte(regOp.Index&7), ctx)
		if err != nil {
			return Result{}, err
		}
		rx |= rx2 | regRexR(regOp.Index)
		code = append(code, withREX(rx, forceREX, row.Opcode)...)
		code = append(code, modrm)
		code = append(code, tail...)

	case TagD:
		code = append(code, withREX(rx, forceREX, row.Opcode)...)
		bits := immWidthFromSig(row.Sig[0])
		size := bits / 8
		offset := len(code)
		code = append(code, make([]byte, size)...)
		switch v := operands[0].(type) {
		case opnd.LabelRef:
			kind := FixupRel32
			if size == 1 {
				kind = FixupRel8
			}
			fixup = Fixup{Kind: kind, Offset: offset, Label: v.Name}
		case opnd.Immediate:
			patchSigned(code[offset:], v.Value, size)
		default:
			return Result{}, errOperandMisuse("branch target must be a label or immediate displacement")
		}

	default:
		return Result{}, errOperandMisuse("unhandled encoding tag")
	}

	DebugDecode(code, int(ctx.Mode))
	return Result{Code: code, Fixup: fixup}, nil
}

func regOperand(op opnd.Operand) (reg.Register, bool) {
	r, ok := op.(opnd.Register)
	return r.Register, ok
}

// withREX prepends a REX byte to opcode when wrxb is nonzero, or force is
// set — selecting spl/bpl/sil/dil over ah/bh/ch/dh requires a REX prefix
// even with an all-zero WRXB nibble.
func withREX(wrxb rexBits, force bool, opcode []byte) []byte {
	if !wrxb.needed() && !force {
		return opcode
	}
	out := make([]byte, 0, len(opcode)+1)
	out = append(out, RexByte|byte(wrxb))
	return append(out, opcode...)
}

// needsRexByte reports whether any register operand is one of
// spl/bpl/sil/dil, which only exist as distinct registers when a REX
// prefix is present at all.
func needsRexByte(operands []opnd.Operand) bool {
	for _, op := range operands {
		if r, ok := op.(opnd.Register); ok && r.NeedsREX() {
			return true
		}
		if m, ok := op.(opnd.MemoryRef); ok {
			if m.Base != nil && m.Base.NeedsREX() {
				return true
			}
			if m.Index != nil && m.Index.NeedsREX() {
				return true
			}
		}
	}
	return false
}

// highByteConflict reports whether operands mix an ah/bh/ch/dh alias with
// anything that would force a REX prefix — the two are mutually exclusive
// because a REX prefix repurposes that ModR/M encoding slot for
// spl/bpl/sil/dil instead.
func highByteConflict(operands []opnd.Operand) bool {
	for _, op := range operands {
		if r, ok := op.(opnd.Register); ok && r.HighByte {
			return true
		}
	}
	return false
}

// encodeRMField builds the ModR/M byte (and any SIB/displacement tail) for
// a register-or-memory operand, merging in regField (either a real
// register's low 3 bits or a fixed opcode-extension digit).
func encodeRMField(op opnd.Operand, regField byte, ctx arch.Context) (modrm byte, rx rexBits, tail []byte, err error) {
	switch v := op.(type) {
	case opnd.Register:
		if v.HighByte && regField >= 8 {
			return 0, 0, nil, errOperandMisuse("high-byte register cannot combine with an extended register in the same instruction")
		}
		rx = regRexB(v.Index)
		return modRM(ModReg, regField, v.Index&7), rx, nil, nil
	case opnd.MemoryRef:
		a, err := encodeMemory(v)
		if err != nil {
			return 0, 0, nil, err
		}
		modrm = modRM(a.mod, regField, a.rm)
		rx = a.rexX | a.rexB
		if a.hasSIB {
			tail = append(tail, a.sib)
		}
		tail = encodeDisp(tail, a.disp, a.dispSize)
		return modrm, rx, tail, nil
	default:
		return 0, 0, nil, errOperandMisuse("%v is not a register or memory operand", op)
	}
}

func immWidthFromSig(sig string) int {
	switch sig {
	case "imm8", "rel8":
		return 8
	case "imm16":
		return 16
	case "imm32", "rel32":
		return 32
	case "imm64":
		return 64
	default:
		return 32
	}
}

// encodeImmediate packs op's value into size bits, little-endian, or
// produces a zero-filled absolute-address Fixup when op is a LabelRef.
func encodeImmediate(op opnd.Operand, size int, codeLenSoFar int) ([]byte, Fixup, error) {
	switch v := op.(type) {
	case opnd.Immediate:
		buf := make([]byte, size/8)
		patchSigned(buf, v.Value, size/8)
		return buf, Fixup{}, nil
	case opnd.LabelRef:
		kind := FixupAbs32
		if size == 64 {
			kind = FixupAbs64
		}
		return make([]byte, size/8), Fixup{Kind: kind, Offset: codeLenSoFar, Label: v.Name}, nil
	default:
		return nil, Fixup{}, errOperandMisuse("%v is not an immediate or label", op)
	}
}

func patchSigned(buf []byte, v int64, size int) {
	for i := 0; i < size; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}
