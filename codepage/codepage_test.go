// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build amd64 && linux

package codepage

import (
	"testing"

	"github.com/x86rt/assembler/abi"
	"github.com/x86rt/assembler/unit"
)

// ret() = 0xC3 is the smallest possible loadable, callable function: it
// immediately returns whatever happens to be in rax, which System V AMD64
// never requires a callee to clear.
func TestLoadAndClose(t *testing.T) {
	page, err := Load([]byte{0xC3}, map[string]int{"entry": 0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer page.Close()

	if page.Base() == 0 {
		t.Error("Base() returned 0")
	}
	addr, ok := page.LabelAddr("entry")
	if !ok || addr != page.Base() {
		t.Errorf("LabelAddr(entry) = %#x, %v; want Base(), true", addr, ok)
	}
	if _, ok := page.LabelAddr("nope"); ok {
		t.Error("LabelAddr(nope) reported ok=true for an undefined label")
	}
}

// TestOpenPagesTracksLoadAndClose exercises the registry directly: each
// Load increments the live count and each matching Close decrements it
// back, independent of however many other tests in this package also call
// Load/Close concurrently — hence the delta check rather than an absolute
// count.
func TestOpenPagesTracksLoadAndClose(t *testing.T) {
	before := OpenPages()

	page, err := Load([]byte{0xC3}, map[string]int{"entry": 0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := OpenPages(); got != before+1 {
		t.Errorf("OpenPages() after Load = %d, want %d", got, before+1)
	}

	if err := page.Close(); err != nil {
		t.Fatal(err)
	}
	if got := OpenPages(); got != before {
		t.Errorf("OpenPages() after Close = %d, want %d", got, before)
	}

	// A second Close is a no-op guarded by Page.closed; it must not
	// deregister an already-deregistered page or report an error.
	if err := page.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
	if got := OpenPages(); got != before {
		t.Errorf("OpenPages() after second Close = %d, want %d", got, before)
	}
}

func TestLoadEmptyRejected(t *testing.T) {
	if _, err := Load(nil, nil, nil); err == nil {
		t.Fatal("Load(nil code) succeeded, want PageAllocFailed error")
	}
}

func TestLoadUndefinedFixupLabelRejected(t *testing.T) {
	fixups := []unit.AbsFixup{{Offset: 0, Size: 8, Label: "missing"}}
	if _, err := Load(make([]byte, 8), map[string]int{}, fixups); err == nil {
		t.Fatal("Load with an unresolvable fixup label succeeded, want UndefinedLabel error")
	}
}

// TestMakeCallableAddsTwoIntegers builds "mov eax, edi; add eax, esi;
// ret" (System V AMD64: first two integer args in rdi/rsi, result in
// eax) by hand and calls it through the trampoline.
func TestMakeCallableAddsTwoIntegers(t *testing.T) {
	code := []byte{
		0x89, 0xF8, // mov eax, edi
		0x01, 0xF0, // add eax, esi
		0xC3, // ret
	}
	page, err := Load(code, map[string]int{"add2": 0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer page.Close()

	callable, err := page.MakeCallable(0, abi.Signature{Args: []abi.Type{abi.Int32, abi.Int32}, Result: abi.Int32}, abi.SystemV64)
	if err != nil {
		t.Fatal(err)
	}
	result, err := callable.Call(40, 2)
	if err != nil {
		t.Fatal(err)
	}
	if result != 42 {
		t.Errorf("add2(40, 2) = %d, want 42", result)
	}
}

func TestCallRejectsNonSystemV(t *testing.T) {
	page, err := Load([]byte{0xC3}, map[string]int{"entry": 0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer page.Close()

	callable, err := page.MakeCallable(0, abi.Signature{Result: abi.Void}, abi.Win64)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := callable.Call(); err == nil {
		t.Error("Call() on a Win64 Callable succeeded, want OperandMisuse error")
	}
}

func TestCallRejectsFloatArgument(t *testing.T) {
	page, err := Load([]byte{0xC3}, map[string]int{"entry": 0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer page.Close()

	callable, err := page.MakeCallable(0, abi.Signature{Args: []abi.Type{abi.Float64}, Result: abi.Void}, abi.SystemV64)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := callable.Call(0); err == nil {
		t.Error("Call() with a float argument succeeded, want OperandMisuse error")
	}
}

func TestCallArgumentCountMismatch(t *testing.T) {
	page, err := Load([]byte{0xC3}, map[string]int{"entry": 0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer page.Close()

	callable, err := page.MakeCallable(0, abi.Signature{Args: []abi.Type{abi.Int64}, Result: abi.Void}, abi.SystemV64)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := callable.Call(); err == nil {
		t.Error("Call() with too few arguments succeeded, want OperandMisuse error")
	}
}
