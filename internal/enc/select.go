// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enc

import (
	"strconv"
	"strings"

	"github.com/x86rt/assembler/arch"
	"github.com/x86rt/assembler/opnd"
	"github.com/x86rt/assembler/reg"
)

// Selected is the outcome of matching a mnemonic's operands against its
// table: the winning Row, the operand width it resolved to, and whether
// that width came from a wildcard token ("r"/"r/m", no explicit width
// digit) rather than a fixed-width one ("r64", "r/m32", ...). Only a
// wildcard width drives REX.W / 0x66 selection in Emit — a fixed-width
// token like the r/m64 CALL and PUSH forms is already unambiguous about
// its width and never takes an operand-size override.
type Selected struct {
	Row      Row
	Width    int
	Wildcard bool
}

// SelectRow walks mnemonic's table in declaration order and returns the
// first row whose signature matches operands under ctx — generalizing
// pycca's Instruction.__init__ mode-table lookup and the Open Question
// decision (DESIGN.md) to preserve Intel-manual declaration order as the
// tie-break between equally legal forms.
func SelectRow(mnemonic string, operands []opnd.Operand, ctx arch.Context) (Selected, error) {
	rows, ok := table[strings.ToLower(mnemonic)]
	if !ok {
		return Selected{}, errUnknownMnemonic(mnemonic)
	}
	for i, op := range operands {
		if r, bad := firstArchMismatchedReg(op, ctx); bad {
			return Selected{}, errArchMismatch("%s is only valid in 64-bit mode (mnemonic %q, operand %d)", r.Name, mnemonic, i)
		}
	}
	for _, row := range rows {
		if !modeLegal(row, ctx) {
			continue
		}
		if len(row.Sig) != len(operands) {
			continue
		}
		width := 0
		wildcard := false
		matched := true
		for i, want := range row.Sig {
			ok, w, wc := matchOperand(operands[i], want, ctx)
			if !ok {
				matched = false
				break
			}
			// Only wildcard ("r"/"r/m") widths are reconciled against each
			// other — they are the ones an operand-size prefix/REX.W
			// actually selects. A fixed-width token like the src half of
			// "movzx r32, r/m8" carries its own width independent of the
			// wildcard destination and must not be cross-checked against it.
			if wc {
				if !wildcard {
					width, wildcard = w, true
				} else if width != w {
					matched = false
					break
				}
			}
		}
		if matched {
			return Selected{Row: row, Width: width, Wildcard: wildcard}, nil
		}
	}
	return Selected{}, errNoMatchingForm(mnemonic, -1, "no operand form of %q matches the given operands", mnemonic)
}

// firstArchMismatchedReg reports the first register referenced by op (as
// the operand itself, or as a MemoryRef's base/index) that is flagged
// Ext64Only (reg.Register.Ext64Only: r8-r15 and every 64-bit GPR) while ctx
// targets 32-bit mode, where no such register exists under any REX-less
// encoding.
func firstArchMismatchedReg(op opnd.Operand, ctx arch.Context) (reg.Register, bool) {
	if ctx.Is64() {
		return reg.Register{}, false
	}
	switch v := op.(type) {
	case opnd.Register:
		if v.Ext64Only {
			return v.Register, true
		}
	case opnd.MemoryRef:
		if v.Base != nil && v.Base.Ext64Only {
			return *v.Base, true
		}
		if v.Index != nil && v.Index.Ext64Only {
			return *v.Index, true
		}
	}
	return reg.Register{}, false
}

func modeLegal(row Row, ctx arch.Context) bool {
	if ctx.Is64() {
		return row.Legal64
	}
	return row.Legal32
}

// matchOperand reports whether op satisfies the signature token want, the
// width it resolved to (0 if the token carries no width information), and
// whether that width came from a wildcard ("r"/"r/m") token.
func matchOperand(op opnd.Operand, want string, ctx arch.Context) (ok bool, width int, wildcard bool) {
	switch {
	case want == "xmm":
		r, isReg := op.(opnd.Register)
		return isReg && r.Cls == reg.XMM, 0, false

	case strings.HasPrefix(want, "xmm/m"):
		wantBits := mustAtoi(want[len("xmm/m"):])
		switch v := op.(type) {
		case opnd.Register:
			return v.Cls == reg.XMM, 0, false
		case opnd.MemoryRef:
			return v.Size.Bits() == wantBits, 0, false
		default:
			return false, 0, false
		}

	case strings.HasPrefix(want, "r/m"):
		ok, width := matchRM(op, want[len("r/m"):], ctx)
		return ok, width, ok && want == "r/m"

	case strings.HasPrefix(want, "rel"):
		bits := mustAtoi(want[len("rel"):])
		switch v := op.(type) {
		case opnd.LabelRef:
			return true, bits, false
		case opnd.Immediate:
			return v.FitsSigned(bits), bits, false
		default:
			return false, 0, false
		}

	case strings.HasPrefix(want, "imm"):
		bits := mustAtoi(want[len("imm"):])
		switch v := op.(type) {
		case opnd.Immediate:
			return v.MinBits() <= bits, bits, false
		case opnd.LabelRef:
			return bits == 64, bits, false
		default:
			return false, 0, false
		}

	case strings.HasPrefix(want, "r"):
		ok, width := matchReg(op, want[1:], ctx)
		return ok, width, ok && want == "r"

	default:
		return false, 0, false
	}
}

func matchRM(op opnd.Operand, widthSuffix string, ctx arch.Context) (bool, int) {
	switch v := op.(type) {
	case opnd.Register:
		if v.Cls != reg.General {
			return false, 0
		}
		return widthOK(int(v.Bits), widthSuffix)
	case opnd.MemoryRef:
		if !addrWidthOK(v, addressBits(ctx)) {
			return false, 0
		}
		return widthOK(v.Size.Bits(), widthSuffix)
	default:
		return false, 0
	}
}

func matchReg(op opnd.Operand, widthSuffix string, ctx arch.Context) (bool, int) {
	v, ok := op.(opnd.Register)
	if !ok || v.Cls != reg.General {
		return false, 0
	}
	return widthOK(int(v.Bits), widthSuffix)
}

// widthOK checks an operand's actual bit width against a signature's width
// suffix: either a specific digit string ("8"/"16"/"32"/"64") or empty,
// meaning "any of 16/32/64, caller reconciles against sibling operands."
func widthOK(actual int, suffix string) (bool, int) {
	if suffix == "" {
		if actual == 16 || actual == 32 || actual == 64 {
			return true, actual
		}
		return false, 0
	}
	want := mustAtoi(suffix)
	return actual == want, want
}

func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic("enc: malformed signature token: " + s)
	}
	return n
}

// addressBits exposes the address-register width this context requires,
// used by matchRM's memory-operand branch.
func addressBits(ctx arch.Context) uint8 {
	if ctx.Is64() {
		return 64
	}
	return 32
}
