// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enc

// Tag names the shape a Row's operands are packed into. These mirror the
// fixed small set of encoding shapes in the Intel manual's instruction
// reference tables, generalized here into data instead of the teacher's
// per-shape Go types (RM, MI, OI, ...) in internal/isa/amd64/in/insn.go.
type Tag uint8

const (
	TagZO Tag = iota // no operands beyond the fixed opcode
	TagO             // opcode | reg -- register folded into the opcode's low 3 bits
	TagOI            // TagO plus a trailing immediate
	TagM             // ModR/M r/m <- operand 0; reg field is Ext (opcode extension)
	TagMI            // TagM plus a trailing immediate sourced from operand 1
	TagRM            // ModR/M reg <- operand 0 (register); r/m <- operand 1
	TagMR            // ModR/M r/m <- operand 0; reg <- operand 1 (register)
	TagI             // a bare immediate, no ModR/M
	TagD             // a relative displacement to a branch target
)

// Row is one line of a mnemonic's ordered operand-form table: a signature
// naming the operand kinds it accepts, the opcode bytes and Tag describing
// how to pack them, and the legality/prefix bits that vary per form. Row
// order within a mnemonic's table matters: SelectRow returns the first row
// whose signature matches, so shorter immediate forms and 8-bit-specific
// opcodes are declared ahead of their wider/wildcard alternatives —
// generalizing the order Intel's own manual lists alternative encodings in,
// per spec.md §4.4 and the Open Question decision recorded in DESIGN.md.
type Row struct {
	Sig    []string
	Opcode []byte
	Tag    Tag
	Ext    int8 // opcode-extension digit for the ModR/M reg field; -1 if none

	Legal32 bool
	Legal64 bool

	// RexW forces REX.W regardless of the resolved operand width (used by
	// fixed-width forms like CQO and the 64-bit-only MOVSXD family).
	RexW bool

	// MandatoryPrefix is a legacy prefix byte emitted unconditionally ahead
	// of REX, independent of the 0x66 operand-size override (0xF3/0xF2 for
	// scalar SSE, 0x66 for packed-double SSE forms).
	MandatoryPrefix byte
}

var table = map[string][]Row{}

func addRows(mnemonic string, rows ...Row) { table[mnemonic] = rows }

func init() {
	registerDataMovement()
	registerArithmetic()
	registerShiftRotate()
	registerControlFlow()
	registerCompareSet()
	registerBitScan()
	registerMisc()
	registerSSE()
}

// Common signature tokens, named for readability in the table below. rW
// and rmW are the width-wildcard forms ("r"/"r/m", any of 16/32/64);
// everything else names an explicit width.
const (
	r8  = "r8"
	r8m = "r/m8"
	rW  = "r"
	rmW = "r/m"

	imm8  = "imm8"
	imm16 = "imm16"
	imm32 = "imm32"
	imm64 = "imm64"
	rel8  = "rel8"
	rel32 = "rel32"

	xmm     = "xmm"
	xmmM32  = "xmm/m32"
	xmmM64  = "xmm/m64"
	xmmM128 = "xmm/m128"
)

func registerDataMovement() {
	addRows("mov",
		Row{Sig: []string{r8m, r8}, Opcode: []byte{0x88}, Tag: TagMR, Ext: -1, Legal32: true, Legal64: true},
		Row{Sig: []string{rmW, rW}, Opcode: []byte{0x89}, Tag: TagMR, Ext: -1, Legal32: true, Legal64: true},
		Row{Sig: []string{r8, r8m}, Opcode: []byte{0x8A}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true},
		Row{Sig: []string{rW, rmW}, Opcode: []byte{0x8B}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true},
		Row{Sig: []string{r8m, imm8}, Opcode: []byte{0xC6}, Tag: TagMI, Ext: 0, Legal32: true, Legal64: true},
		Row{Sig: []string{rmW, imm32}, Opcode: []byte{0xC7}, Tag: TagMI, Ext: 0, Legal32: true, Legal64: true},
		Row{Sig: []string{rW, imm64}, Opcode: []byte{0xB8}, Tag: TagOI, Ext: -1, Legal32: true, Legal64: true},
	)
	addRows("movzx",
		Row{Sig: []string{rW, r8m}, Opcode: []byte{0x0F, 0xB6}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true},
		Row{Sig: []string{rW, "r/m16"}, Opcode: []byte{0x0F, 0xB7}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true},
	)
	addRows("movsx",
		Row{Sig: []string{rW, r8m}, Opcode: []byte{0x0F, 0xBE}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true},
		Row{Sig: []string{rW, "r/m16"}, Opcode: []byte{0x0F, 0xBF}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true},
	)
	addRows("movsxd",
		Row{Sig: []string{"r64", "r/m32"}, Opcode: []byte{0x63}, Tag: TagRM, Ext: -1, Legal64: true, RexW: true},
	)
	addRows("lea",
		Row{Sig: []string{rW, rmW}, Opcode: []byte{0x8D}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true},
	)
	addRows("push",
		Row{Sig: []string{"r64"}, Opcode: []byte{0x50}, Tag: TagO, Ext: -1, Legal64: true},
		Row{Sig: []string{"r32"}, Opcode: []byte{0x50}, Tag: TagO, Ext: -1, Legal32: true},
		Row{Sig: []string{"r/m64"}, Opcode: []byte{0xFF}, Tag: TagM, Ext: 6, Legal64: true},
		Row{Sig: []string{imm8}, Opcode: []byte{0x6A}, Tag: TagI, Ext: -1, Legal32: true, Legal64: true},
		Row{Sig: []string{imm32}, Opcode: []byte{0x68}, Tag: TagI, Ext: -1, Legal32: true, Legal64: true},
	)
	addRows("pop",
		Row{Sig: []string{"r64"}, Opcode: []byte{0x58}, Tag: TagO, Ext: -1, Legal64: true},
		Row{Sig: []string{"r32"}, Opcode: []byte{0x58}, Tag: TagO, Ext: -1, Legal32: true},
		Row{Sig: []string{"r/m64"}, Opcode: []byte{0x8F}, Tag: TagM, Ext: 0, Legal64: true},
	)
	addRows("xchg",
		Row{Sig: []string{rmW, rW}, Opcode: []byte{0x87}, Tag: TagMR, Ext: -1, Legal32: true, Legal64: true},
	)
}

func registerArithmetic() {
	type binop struct {
		mnemonic string
		ext      int8
		mrOp     byte // r/m, r opcode (MR)
		rmOp     byte // r, r/m opcode (RM)
		mi8Op    byte // r/m8, imm8
		miOp     byte // r/m, imm32 (or imm8 sign-extended variant below)
		mi8sOp   byte // r/m, imm8 sign-extended to operand width
	}
	binops := []binop{
		{"add", 0, 0x00, 0x02, 0x80, 0x81, 0x83},
		{"or", 1, 0x08, 0x0A, 0x80, 0x81, 0x83},
		{"and", 4, 0x20, 0x22, 0x80, 0x81, 0x83},
		{"sub", 5, 0x28, 0x2A, 0x80, 0x81, 0x83},
		{"xor", 6, 0x30, 0x32, 0x80, 0x81, 0x83},
		{"cmp", 7, 0x38, 0x3A, 0x80, 0x81, 0x83},
		{"adc", 2, 0x10, 0x12, 0x80, 0x81, 0x83},
		{"sbb", 3, 0x18, 0x1A, 0x80, 0x81, 0x83},
	}
	for _, b := range binops {
		addRows(b.mnemonic,
			Row{Sig: []string{r8m, r8}, Opcode: []byte{b.mrOp}, Tag: TagMR, Ext: -1, Legal32: true, Legal64: true},
			Row{Sig: []string{rmW, rW}, Opcode: []byte{b.mrOp | 1}, Tag: TagMR, Ext: -1, Legal32: true, Legal64: true},
			Row{Sig: []string{r8, r8m}, Opcode: []byte{b.rmOp}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true},
			Row{Sig: []string{rW, rmW}, Opcode: []byte{b.rmOp | 1}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true},
			Row{Sig: []string{r8m, imm8}, Opcode: []byte{b.mi8Op}, Tag: TagMI, Ext: b.ext, Legal32: true, Legal64: true},
			Row{Sig: []string{rmW, imm8}, Opcode: []byte{b.mi8sOp}, Tag: TagMI, Ext: b.ext, Legal32: true, Legal64: true},
			Row{Sig: []string{rmW, imm32}, Opcode: []byte{b.miOp}, Tag: TagMI, Ext: b.ext, Legal32: true, Legal64: true},
		)
	}
	addRows("test",
		Row{Sig: []string{r8m, r8}, Opcode: []byte{0x84}, Tag: TagMR, Ext: -1, Legal32: true, Legal64: true},
		Row{Sig: []string{rmW, rW}, Opcode: []byte{0x85}, Tag: TagMR, Ext: -1, Legal32: true, Legal64: true},
		Row{Sig: []string{r8m, imm8}, Opcode: []byte{0xF6}, Tag: TagMI, Ext: 0, Legal32: true, Legal64: true},
		Row{Sig: []string{rmW, imm32}, Opcode: []byte{0xF7}, Tag: TagMI, Ext: 0, Legal32: true, Legal64: true},
	)

	unary := []struct {
		mnemonic string
		ext      int8
	}{
		{"neg", 3}, {"not", 2}, {"inc", 0}, {"dec", 1}, {"mul", 4}, {"idiv", 7}, {"div", 6},
	}
	for _, u := range unary {
		addRows(u.mnemonic,
			Row{Sig: []string{r8m}, Opcode: []byte{0xFE}, Tag: TagM, Ext: u.ext, Legal32: true, Legal64: true},
			Row{Sig: []string{rmW}, Opcode: []byte{0xFF}, Tag: TagM, Ext: u.ext, Legal32: true, Legal64: true},
		)
	}
	addRows("imul",
		Row{Sig: []string{rmW}, Opcode: []byte{0xF7}, Tag: TagM, Ext: 5, Legal32: true, Legal64: true},
		Row{Sig: []string{rW, rmW}, Opcode: []byte{0x0F, 0xAF}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true},
	)
	addRows("cdq", Row{Sig: nil, Opcode: []byte{0x99}, Tag: TagZO, Ext: -1, Legal32: true, Legal64: true})
	addRows("cqo", Row{Sig: nil, Opcode: []byte{0x99}, Tag: TagZO, Ext: -1, Legal64: true, RexW: true})
}

func registerShiftRotate() {
	shifts := []struct {
		mnemonic string
		ext      int8
	}{
		{"rol", 0}, {"ror", 1}, {"shl", 4}, {"shr", 5}, {"sar", 7},
	}
	for _, s := range shifts {
		addRows(s.mnemonic,
			Row{Sig: []string{r8m, imm8}, Opcode: []byte{0xC0}, Tag: TagMI, Ext: s.ext, Legal32: true, Legal64: true},
			Row{Sig: []string{rmW, imm8}, Opcode: []byte{0xC1}, Tag: TagMI, Ext: s.ext, Legal32: true, Legal64: true},
		)
	}
}

var jccOpcodes = map[string]byte{
	"jo": 0x0, "jno": 0x1, "jb": 0x2, "jae": 0x3, "je": 0x4, "jne": 0x5,
	"jbe": 0x6, "ja": 0x7, "js": 0x8, "jns": 0x9, "jp": 0xA, "jnp": 0xB,
	"jl": 0xC, "jge": 0xD, "jle": 0xE, "jg": 0xF,
}

func registerControlFlow() {
	addRows("jmp",
		Row{Sig: []string{rel8}, Opcode: []byte{0xEB}, Tag: TagD, Ext: -1, Legal32: true, Legal64: true},
		Row{Sig: []string{rel32}, Opcode: []byte{0xE9}, Tag: TagD, Ext: -1, Legal32: true, Legal64: true},
		Row{Sig: []string{"r/m64"}, Opcode: []byte{0xFF}, Tag: TagM, Ext: 4, Legal64: true},
		Row{Sig: []string{"r/m32"}, Opcode: []byte{0xFF}, Tag: TagM, Ext: 4, Legal32: true},
	)
	addRows("call",
		Row{Sig: []string{rel32}, Opcode: []byte{0xE8}, Tag: TagD, Ext: -1, Legal32: true, Legal64: true},
		Row{Sig: []string{"r/m64"}, Opcode: []byte{0xFF}, Tag: TagM, Ext: 2, Legal64: true},
		Row{Sig: []string{"r/m32"}, Opcode: []byte{0xFF}, Tag: TagM, Ext: 2, Legal32: true},
	)
	addRows("loop", Row{Sig: []string{rel8}, Opcode: []byte{0xE2}, Tag: TagD, Ext: -1, Legal32: true, Legal64: true})
	addRows("ret", Row{Sig: nil, Opcode: []byte{0xC3}, Tag: TagZO, Ext: -1, Legal32: true, Legal64: true})

	for mnemonic, cc := range jccOpcodes {
		addRows(mnemonic,
			Row{Sig: []string{rel8}, Opcode: []byte{0x70 + cc}, Tag: TagD, Ext: -1, Legal32: true, Legal64: true},
			Row{Sig: []string{rel32}, Opcode: []byte{0x0F, 0x80 + cc}, Tag: TagD, Ext: -1, Legal32: true, Legal64: true},
		)
	}
}

func registerCompareSet() {
	for mnemonic, cc := range jccOpcodes {
		setMnemonic := "set" + mnemonic[1:]
		addRows(setMnemonic,
			Row{Sig: []string{r8m}, Opcode: []byte{0x0F, 0x90 + cc}, Tag: TagM, Ext: -1, Legal32: true, Legal64: true},
		)
		cmovMnemonic := "cmov" + mnemonic[1:]
		addRows(cmovMnemonic,
			Row{Sig: []string{rW, rmW}, Opcode: []byte{0x0F, 0x40 + cc}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true},
		)
	}
}

func registerBitScan() {
	addRows("bsf", Row{Sig: []string{rW, rmW}, Opcode: []byte{0x0F, 0xBC}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true})
	addRows("bsr", Row{Sig: []string{rW, rmW}, Opcode: []byte{0x0F, 0xBD}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true})
	addRows("popcnt", Row{Sig: []string{rW, rmW}, Opcode: []byte{0xF3, 0x0F, 0xB8}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true, MandatoryPrefix: 0xF3})
	addRows("tzcnt", Row{Sig: []string{rW, rmW}, Opcode: []byte{0xF3, 0x0F, 0xBC}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true, MandatoryPrefix: 0xF3})
	addRows("lzcnt", Row{Sig: []string{rW, rmW}, Opcode: []byte{0xF3, 0x0F, 0xBD}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true, MandatoryPrefix: 0xF3})
}

func registerMisc() {
	addRows("nop", Row{Sig: nil, Opcode: []byte{0x90}, Tag: TagZO, Ext: -1, Legal32: true, Legal64: true})
	addRows("pause", Row{Sig: nil, Opcode: []byte{0xF3, 0x90}, Tag: TagZO, Ext: -1, Legal32: true, Legal64: true})
	addRows("int3", Row{Sig: nil, Opcode: []byte{0xCC}, Tag: TagZO, Ext: -1, Legal32: true, Legal64: true})
	addRows("hlt", Row{Sig: nil, Opcode: []byte{0xF4}, Tag: TagZO, Ext: -1, Legal32: true, Legal64: true})
}

func registerSSE() {
	addRows("movd",
		Row{Sig: []string{xmm, "r/m32"}, Opcode: []byte{0x0F, 0x6E}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true, MandatoryPrefix: 0x66},
		Row{Sig: []string{"r/m32", xmm}, Opcode: []byte{0x0F, 0x7E}, Tag: TagMR, Ext: -1, Legal32: true, Legal64: true, MandatoryPrefix: 0x66},
	)
	addRows("movq",
		Row{Sig: []string{xmm, "r/m64"}, Opcode: []byte{0x0F, 0x6E}, Tag: TagRM, Ext: -1, Legal64: true, RexW: true, MandatoryPrefix: 0x66},
		Row{Sig: []string{"r/m64", xmm}, Opcode: []byte{0x0F, 0x7E}, Tag: TagMR, Ext: -1, Legal64: true, RexW: true, MandatoryPrefix: 0x66},
		Row{Sig: []string{xmm, xmmM64}, Opcode: []byte{0x0F, 0x7E}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true, MandatoryPrefix: 0xF3},
	)
	addRows("movss",
		Row{Sig: []string{xmm, xmmM32}, Opcode: []byte{0x0F, 0x10}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true, MandatoryPrefix: 0xF3},
		Row{Sig: []string{xmmM32, xmm}, Opcode: []byte{0x0F, 0x11}, Tag: TagMR, Ext: -1, Legal32: true, Legal64: true, MandatoryPrefix: 0xF3},
	)
	addRows("movsd",
		Row{Sig: []string{xmm, xmmM64}, Opcode: []byte{0x0F, 0x10}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true, MandatoryPrefix: 0xF2},
		Row{Sig: []string{xmmM64, xmm}, Opcode: []byte{0x0F, 0x11}, Tag: TagMR, Ext: -1, Legal32: true, Legal64: true, MandatoryPrefix: 0xF2},
	)

	scalar := []struct {
		mnemonic string
		op       byte
	}{
		{"adds", 0x58}, {"subs", 0x5C}, {"muls", 0x59}, {"divs", 0x5E},
	}
	for _, s := range scalar {
		addRows(s.mnemonic+"s",
			Row{Sig: []string{xmm, xmmM32}, Opcode: []byte{0x0F, s.op}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true, MandatoryPrefix: 0xF3},
		)
		addRows(s.mnemonic+"d",
			Row{Sig: []string{xmm, xmmM64}, Opcode: []byte{0x0F, s.op}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true, MandatoryPrefix: 0xF2},
		)
	}
	addRows("cvtsi2ss", Row{Sig: []string{xmm, rmW}, Opcode: []byte{0x0F, 0x2A}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true, MandatoryPrefix: 0xF3})
	addRows("cvtsi2sd", Row{Sig: []string{xmm, rmW}, Opcode: []byte{0x0F, 0x2A}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true, MandatoryPrefix: 0xF2})
	addRows("cvttss2si", Row{Sig: []string{rW, xmmM32}, Opcode: []byte{0x0F, 0x2C}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true, MandatoryPrefix: 0xF3})
	addRows("cvttsd2si", Row{Sig: []string{rW, xmmM64}, Opcode: []byte{0x0F, 0x2C}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true, MandatoryPrefix: 0xF2})
	addRows("xorps", Row{Sig: []string{xmm, xmmM128}, Opcode: []byte{0x0F, 0x57}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true})
	addRows("xorpd", Row{Sig: []string{xmm, xmmM128}, Opcode: []byte{0x0F, 0x57}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true, MandatoryPrefix: 0x66})

	// UCOMISS/UCOMISD take no mandatory F3/F2 prefix — unlike the other
	// scalar forms above, the single/double distinction is carried by the
	// ordinary 0x66 operand-size prefix instead.
	addRows("ucomiss", Row{Sig: []string{xmm, xmmM32}, Opcode: []byte{0x0F, 0x2E}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true})
	addRows("ucomisd", Row{Sig: []string{xmm, xmmM64}, Opcode: []byte{0x0F, 0x2E}, Tag: TagRM, Ext: -1, Legal32: true, Legal64: true, MandatoryPrefix: 0x66})
}
