// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enc

import (
	"github.com/x86rt/assembler/opnd"
	"github.com/x86rt/assembler/reg"
)

// addr is the fully resolved ModR/M + optional SIB + displacement shape of
// a memory operand, before the caller merges in the reg field (register
// operand or opcode extension digit) and REX bits.
type addr struct {
	mod      Mod
	rm       byte // ModR/M r/m field (3 bits); always 4 when sib is present
	hasSIB   bool
	sib      byte
	dispSize int
	disp     int32
	rexX     rexBits
	rexB     rexBits
}

// encodeMemory computes the ModR/M r/m field, optional SIB byte, and
// displacement for m. It does not know the reg field (the caller's
// register operand or opcode-extension digit); that is merged in by the
// instruction emitter. Grounded on internal/isa/amd64/in/sib.go's base and
// index field selection, generalized from the teacher's fixed VM base
// register to arbitrary caller-supplied base/index registers.
func encodeMemory(m opnd.MemoryRef) (addr, error) {
	if m.Label != "" {
		// RIP-relative label addresses are modeled on the operand side
		// (MemoryRef.Label) but not wired to a fixup here: the disp32 slot
		// this would fill isn't always the instruction's trailing bytes
		// (a memory-immediate form like "mov dword ptr [rip+label], imm32"
		// has an immediate after it), so the same end-of-field FixupRel32
		// convention branch.go relies on can't be reused as-is. See
		// DESIGN.md's Open Question decision.
		return addr{}, errOperandMisuse("label-based memory addressing ([rip+label]) is not supported")
	}
	switch {
	case m.Index == nil && m.Base == nil:
		// disp32-only (32-bit absolute) or RIP-relative (64-bit): r/m=101,
		// mod=00, no SIB, always a full 4-byte displacement.
		return addr{mod: ModMem, rm: sibNoBase, dispSize: 4, disp: m.Disp}, nil

	case m.Index == nil:
		base := m.Base
		low3 := base.Index & 7
		if low3 == 4 {
			// rsp/r12 as a plain base still needs a SIB byte purely to
			// avoid colliding with the r/m=100 "SIB follows" signal.
			mod, size := dispModAndSize(m.Disp, &low3)
			sib := sibByte(0, sibNoIndex, low3)
			return addr{mod: mod, rm: 4, hasSIB: true, sib: sib, dispSize: size, disp: m.Disp, rexB: regRexB(base.Index)}, nil
		}
		mod, size := dispModAndSize(m.Disp, &low3)
		return addr{mod: mod, rm: low3, dispSize: size, disp: m.Disp, rexB: regRexB(base.Index)}, nil

	default:
		index := m.Index
		if index.Index&7 == 4 {
			return addr{}, errOperandMisuse("rsp/r12 cannot be used as a SIB index register")
		}
		scale := int(m.Scale)
		if scale == 0 {
			scale = 1
		}
		sLog2, ok := scaleLog2(scale)
		if !ok {
			return addr{}, errOperandMisuse("invalid SIB scale factor")
		}
		var baseLow byte
		var rexB rexBits
		var mod Mod
		var size int
		if m.Base != nil {
			baseLow = m.Base.Index & 7
			rexB = regRexB(m.Base.Index)
			mod, size = dispModAndSize(m.Disp, &baseLow)
		} else {
			baseLow = sibNoBase
			mod, size = ModMem, 4 // "no base" SIB form always carries disp32
		}
		sib := sibByte(sLog2, index.Index&7, baseLow)
		return addr{
			mod: mod, rm: 4, hasSIB: true, sib: sib,
			dispSize: size, disp: m.Disp,
			rexX: regRexX(index.Index), rexB: rexB,
		}, nil
	}
}

// addrWidthOK checks that a memory operand's base/index registers have the
// address width this architecture context requires (64-bit GPRs in 64-bit
// mode, 32-bit GPRs in 32-bit mode; 16-bit addressing is not implemented,
// see DESIGN.md's Open Question decision).
func addrWidthOK(m opnd.MemoryRef, wantBits uint8) bool {
	check := func(r *reg.Register) bool { return r == nil || r.Bits == wantBits || r.Name == "rip" }
	return check(m.Base) && check(m.Index)
}
