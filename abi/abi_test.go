// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package abi

import "testing"

func TestTypeSize(t *testing.T) {
	tests := []struct {
		typ  Type
		want int
	}{
		{Void, 0},
		{Int32, 4},
		{Int64, 8},
		{Float32, 4},
		{Float64, 8},
		{Pointer, 8},
	}
	for _, tt := range tests {
		if got := tt.typ.Size(); got != tt.want {
			t.Errorf("%v.Size() = %d, want %d", tt.typ, got, tt.want)
		}
	}
}

func TestTypeIsFloat(t *testing.T) {
	for _, typ := range []Type{Float32, Float64} {
		if !typ.IsFloat() {
			t.Errorf("%v.IsFloat() = false, want true", typ)
		}
	}
	for _, typ := range []Type{Void, Int32, Int64, Pointer} {
		if typ.IsFloat() {
			t.Errorf("%v.IsFloat() = true, want false", typ)
		}
	}
}

func TestSignatureEqual(t *testing.T) {
	a := Signature{Args: []Type{Int32, Int64}, Result: Int32}
	b := Signature{Args: []Type{Int32, Int64}, Result: Int32}
	c := Signature{Args: []Type{Int32}, Result: Int32}
	d := Signature{Args: []Type{Int32, Int64}, Result: Void}
	if !a.Equal(b) {
		t.Error("identical signatures reported unequal")
	}
	if a.Equal(c) {
		t.Error("signatures with different arg counts reported equal")
	}
	if a.Equal(d) {
		t.Error("signatures with different results reported equal")
	}
}

func TestSignatureString(t *testing.T) {
	tests := []struct {
		sig  Signature
		want string
	}{
		{Signature{Result: Void}, "()"},
		{Signature{Args: []Type{Int32, Int32}, Result: Int32}, "(int32, int32) int32"},
		{Signature{Args: []Type{Pointer}, Result: Void}, "(pointer)"},
	}
	for _, tt := range tests {
		if got := tt.sig.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.sig, got, tt.want)
		}
	}
}

func TestConventionArgRegs(t *testing.T) {
	if got := SystemV64.IntArgRegs(); len(got) != 6 || got[0] != "rdi" {
		t.Errorf("SystemV64.IntArgRegs() = %v, want 6 regs starting with rdi", got)
	}
	if got := Win64.IntArgRegs(); len(got) != 4 || got[0] != "rcx" {
		t.Errorf("Win64.IntArgRegs() = %v, want 4 regs starting with rcx", got)
	}
	if got := Cdecl32.IntArgRegs(); got != nil {
		t.Errorf("Cdecl32.IntArgRegs() = %v, want nil (stack-only convention)", got)
	}
	if got := SystemV64.FloatArgRegs(); len(got) != 8 {
		t.Errorf("SystemV64.FloatArgRegs() = %v, want 8 xmm regs", got)
	}
	if got := Win64.FloatArgRegs(); len(got) != 4 {
		t.Errorf("Win64.FloatArgRegs() = %v, want 4 xmm regs", got)
	}
}

func TestConventionIs64(t *testing.T) {
	for _, c := range []Convention{SystemV64, Win64} {
		if !c.Is64() {
			t.Errorf("%v.Is64() = false, want true", c)
		}
	}
	for _, c := range []Convention{Cdecl32, Stdcall32} {
		if c.Is64() {
			t.Errorf("%v.Is64() = true, want false", c)
		}
	}
}

func TestCalleeCleansStack(t *testing.T) {
	if !Stdcall32.CalleeCleansStack() {
		t.Error("Stdcall32.CalleeCleansStack() = false, want true")
	}
	if Cdecl32.CalleeCleansStack() {
		t.Error("Cdecl32.CalleeCleansStack() = true, want false")
	}
}
