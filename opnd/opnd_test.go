// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opnd

import (
	"testing"

	"github.com/x86rt/assembler/reg"
)

func TestImmediateMinBits(t *testing.T) {
	tests := []struct {
		imm  Immediate
		want int
	}{
		{Imm(0), 8},
		{Imm(127), 8},
		{Imm(128), 16},
		{Imm(-128), 8},
		{Imm(-129), 16},
		{Imm(32767), 16},
		{Imm(32768), 32},
		{Imm(1 << 40), 64},
		{ImmU(0xff), 8},
		{ImmU(0x100), 16},
		{ImmU(0xffffffff), 32},
		{ImmU(0x100000000), 64},
	}
	for _, tt := range tests {
		if got := tt.imm.MinBits(); got != tt.want {
			t.Errorf("%+v.MinBits() = %d, want %d", tt.imm, got, tt.want)
		}
	}
}

func TestImmediateFitsSigned(t *testing.T) {
	tests := []struct {
		v    int64
		bits int
		want bool
	}{
		{1, 8, true},
		{1000, 8, false},
		{1000, 16, true},
		{-0x80, 8, true},
		{-0x81, 8, false},
		{0x7fffffff, 32, true},
		{0x7fffffff + 1, 32, false},
		{1 << 40, 64, true},
	}
	for _, tt := range tests {
		if got := Imm(tt.v).FitsSigned(tt.bits); got != tt.want {
			t.Errorf("Imm(%d).FitsSigned(%d) = %v, want %v", tt.v, tt.bits, got, tt.want)
		}
	}
}

func TestPointerSizeBits(t *testing.T) {
	tests := []struct {
		size PointerSize
		bits int
		str  string
	}{
		{SizeUnspecified, 0, ""},
		{Byte, 8, "byte"},
		{Word, 16, "word"},
		{Dword, 32, "dword"},
		{Qword, 64, "qword"},
		{Tword, 80, "tword"},
		{XmmWord, 128, "xmmword"},
	}
	for _, tt := range tests {
		if got := tt.size.Bits(); got != tt.bits {
			t.Errorf("%v.Bits() = %d, want %d", tt.size, got, tt.bits)
		}
		if got := tt.size.String(); got != tt.str {
			t.Errorf("%v.String() = %q, want %q", tt.size, got, tt.str)
		}
	}
}

func TestMemoryRefSizedScaledDisplaced(t *testing.T) {
	rbx := reg.MustByName("rbx")
	rcx := reg.MustByName("rcx")
	m := MemoryRef{Base: &rbx}.Sized(Dword).Scaled(rcx, Scale4).Displaced(12)
	if m.Size != Dword {
		t.Errorf("Size = %v, want Dword", m.Size)
	}
	if m.Index == nil || m.Index.Name != "rcx" || m.Scale != Scale4 {
		t.Errorf("Index/Scale = %v/%v, want rcx/4", m.Index, m.Scale)
	}
	if m.Disp != 12 {
		t.Errorf("Disp = %d, want 12", m.Disp)
	}
	// Sized/Scaled/Displaced return copies: the original base field must
	// survive unmodified alongside the chained mutations.
	if m.Base == nil || m.Base.Name != "rbx" {
		t.Errorf("Base = %v, want rbx", m.Base)
	}
}

func TestMemoryRefString(t *testing.T) {
	rax := reg.MustByName("rax")
	rcx := reg.MustByName("rcx")
	tests := []struct {
		m    MemoryRef
		want string
	}{
		{MemoryRef{Base: &rax}, "[rax]"},
		{MemoryRef{Base: &rax, Disp: 12}, "[rax+12]"},
		{MemoryRef{Base: &rax, Disp: -4}, "[rax-4]"},
		{MemoryRef{Disp: 0}, "[0]"},
		{MemoryRef{Base: &rax, Index: &rcx, Scale: Scale8}.Sized(Qword), "qword ptr [rax+rcx*8]"},
		{MemoryRef{Label: "table"}, "[table]"},
		{MemoryRef{Label: "table", LabelOffset: 4}, "[table+4]"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.m, got, tt.want)
		}
	}
}

func TestLabelRefString(t *testing.T) {
	if got := (LabelRef{Name: "loop"}).String(); got != "loop" {
		t.Errorf("LabelRef.String() = %q, want %q", got, "loop")
	}
}

func TestSigClasses(t *testing.T) {
	rax := reg.MustByName("rax")
	tests := []struct {
		op   Operand
		want byte
	}{
		{Reg(rax), 'r'},
		{Imm(1), 'i'},
		{MemoryRef{}, 'm'},
		{LabelRef{Name: "l"}, 'l'},
	}
	for _, tt := range tests {
		if got := tt.op.sigClass(); got != tt.want {
			t.Errorf("%T.sigClass() = %c, want %c", tt.op, got, tt.want)
		}
	}
}
