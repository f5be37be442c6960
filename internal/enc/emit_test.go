// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enc

import (
	"bytes"
	"testing"

	"github.com/x86rt/assembler/arch"
	"github.com/x86rt/assembler/opnd"
	"github.com/x86rt/assembler/reg"
)

func assembleOne(t *testing.T, ctx arch.Context, mnemonic string, operands ...opnd.Operand) []byte {
	t.Helper()
	sel, err := SelectRow(mnemonic, operands, ctx)
	if err != nil {
		t.Fatalf("SelectRow(%s) failed: %v", mnemonic, err)
	}
	res, err := Emit(sel, operands, ctx)
	if err != nil {
		t.Fatalf("Emit(%s) failed: %v", mnemonic, err)
	}
	return res.Code
}

func mustReg(t *testing.T, name string) opnd.Register {
	t.Helper()
	r, ok := reg.ByName(name)
	if !ok {
		t.Fatalf("unknown register %q", name)
	}
	return opnd.Reg(r)
}

// TestPinnedScenarios reproduces the byte-for-byte encodings named in
// spec.md's "concrete scenarios" list.
func TestPinnedScenarios(t *testing.T) {
	t.Run("push rbp", func(t *testing.T) {
		got := assembleOne(t, arch.Context64, "push", mustReg(t, "rbp"))
		want := []byte{0x55}
		if !bytes.Equal(got, want) {
			t.Errorf("push rbp = %x, want %x", got, want)
		}
	})

	t.Run("mov rbp, rsp", func(t *testing.T) {
		got := assembleOne(t, arch.Context64, "mov", mustReg(t, "rbp"), mustReg(t, "rsp"))
		want := []byte{0x48, 0x89, 0xE5}
		if !bytes.Equal(got, want) {
			t.Errorf("mov rbp, rsp = %x, want %x", got, want)
		}
	})

	t.Run("mov eax, dword ptr [edx+ecx*8+12] in 32-bit mode", func(t *testing.T) {
		edx := reg.MustByName("edx")
		ecx := reg.MustByName("ecx")
		mem := opnd.MemoryRef{Base: &edx, Index: &ecx, Scale: opnd.Scale8, Disp: 12}.Sized(opnd.Dword)
		got := assembleOne(t, arch.Context32, "mov", mustReg(t, "eax"), mem)
		want := []byte{0x8B, 0x44, 0xCA, 0x0C}
		if !bytes.Equal(got, want) {
			t.Errorf("mov eax, [edx+ecx*8+12] = %x, want %x", got, want)
		}
	})

	t.Run("call rax", func(t *testing.T) {
		got := assembleOne(t, arch.Context64, "call", mustReg(t, "rax"))
		want := []byte{0xFF, 0xD0}
		if !bytes.Equal(got, want) {
			t.Errorf("call rax = %x, want %x", got, want)
		}
	})
}

// TestWildcardWidthGatesRexW is the regression test for the bug this
// package's REX.W handling once had: a fixed-width signature token like
// PUSH's "r64" form must never trigger REX.W just because the resolved
// width happens to be 64 — only a wildcard ("r"/"r/m") token does.
func TestWildcardWidthGatesRexW(t *testing.T) {
	sel, err := SelectRow("push", []opnd.Operand{mustReg(t, "rbp")}, arch.Context64)
	if err != nil {
		t.Fatal(err)
	}
	if sel.Wildcard {
		t.Fatal("push r64 row reported Wildcard=true, want false")
	}
	res, err := Emit(sel, []opnd.Operand{mustReg(t, "rbp")}, arch.Context64)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Code) != 1 {
		t.Fatalf("push rbp produced %d bytes (%x), want exactly [55] with no REX prefix", len(res.Code), res.Code)
	}
}

func TestMovzxMixedWidthsNotReconciled(t *testing.T) {
	// movzx eax, byte ptr [...] mixes a wildcard 32-bit destination with
	// an explicit 8-bit source; the two widths must not be cross-checked
	// against each other.
	mem := opnd.MemoryRef{}.Sized(opnd.Byte)
	sel, err := SelectRow("movzx", []opnd.Operand{mustReg(t, "eax"), mem}, arch.Context64)
	if err != nil {
		t.Fatalf("SelectRow(movzx) failed: %v", err)
	}
	if sel.Width != 32 {
		t.Errorf("movzx eax, byte ptr [...] resolved Width=%d, want 32 (the wildcard destination's width)", sel.Width)
	}
}

func TestImulOneOperandUsesMulDivGroup(t *testing.T) {
	// Regression test: one-operand imul must use opcode 0xF7 (the
	// MUL/IMUL/DIV/IDIV group), not 0xFF (the INC/DEC/CALL/JMP/PUSH group).
	got := assembleOne(t, arch.Context64, "imul", mustReg(t, "rax"))
	if len(got) < 2 || got[len(got)-2] != 0xF7 {
		t.Errorf("imul rax = %x, want opcode 0xF7 with ext digit 5", got)
	}
}

func TestUcomissUcomisdPrefixes(t *testing.T) {
	xmm0 := mustReg(t, "xmm0")
	xmm1 := mustReg(t, "xmm1")

	ss := assembleOne(t, arch.Context64, "ucomiss", xmm0, xmm1)
	if bytes.Contains(ss, []byte{0x66}) {
		t.Errorf("ucomiss emitted a 0x66 prefix: %x", ss)
	}
	if !bytes.Equal(ss, []byte{0x0F, 0x2E, 0xC1}) {
		t.Errorf("ucomiss xmm0, xmm1 = %x, want [0F 2E C1]", ss)
	}

	sd := assembleOne(t, arch.Context64, "ucomisd", xmm0, xmm1)
	if !bytes.Equal(sd, []byte{0x66, 0x0F, 0x2E, 0xC1}) {
		t.Errorf("ucomisd xmm0, xmm1 = %x, want [66 0F 2E C1]", sd)
	}
}

func TestSplRequiresRex(t *testing.T) {
	spl := mustReg(t, "spl")
	bl := mustReg(t, "bl")
	got := assembleOne(t, arch.Context64, "mov", spl, bl)
	if len(got) == 0 || got[0]&0xF0 != 0x40 {
		t.Errorf("mov spl, bl = %x, want a REX prefix byte first", got)
	}
}

func TestHighByteRegisterConflictsWithRex(t *testing.T) {
	ah := mustReg(t, "ah")
	spl := mustReg(t, "spl")
	sel, err := SelectRow("mov", []opnd.Operand{ah, spl}, arch.Context64)
	if err != nil {
		t.Skip("no matching row for ah/spl; conflict check only applies once a row is selected")
	}
	if _, err := Emit(sel, []opnd.Operand{ah, spl}, arch.Context64); err == nil {
		t.Error("Emit(mov ah, spl) succeeded, want an OperandMisuse error")
	}
}

func TestRspAsSibBaseForcesSib(t *testing.T) {
	rsp := reg.MustByName("rsp")
	mem := opnd.MemoryRef{Base: &rsp}.Sized(opnd.Qword)
	got := assembleOne(t, arch.Context64, "mov", mustReg(t, "rax"), mem)
	// 48 8B 04 24: REX.W, MOV r64<-r/m64, modrm(mod=00,reg=rax,rm=100/SIB),
	// sib(scale=1,index=none,base=rsp).
	want := []byte{0x48, 0x8B, 0x04, 0x24}
	if !bytes.Equal(got, want) {
		t.Errorf("mov rax, [rsp] = %x, want %x", got, want)
	}
}

func TestRbpZeroDispForcesDisp8(t *testing.T) {
	rbp := reg.MustByName("rbp")
	mem := opnd.MemoryRef{Base: &rbp}.Sized(opnd.Qword)
	got := assembleOne(t, arch.Context64, "mov", mustReg(t, "rax"), mem)
	// [rbp+0] cannot use mod=00 (that slot means "no base, disp32"), so it
	// must fall back to mod=01 with an explicit zero disp8 byte.
	want := []byte{0x48, 0x8B, 0x45, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("mov rax, [rbp] = %x, want %x", got, want)
	}
}

func TestLabelMemoryOperandRejected(t *testing.T) {
	mem := opnd.MemoryRef{Label: "table"}.Sized(opnd.Qword)
	if _, err := encodeMemory(mem); err == nil {
		t.Error("encodeMemory accepted a label-based memory operand, want an error (see DESIGN.md)")
	}
}
