// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package assembler is the module's external surface: build an assembly
// unit out of named registers, memory references, and mnemonics, assemble
// it to bytes, and optionally load it into executable memory as a
// Callable. Grounded on original_source/pycca/asm/__init__.py's flat
// re-export of its asm submodules' public names into one importable
// surface.
package assembler

import (
	"github.com/x86rt/assembler/abi"
	"github.com/x86rt/assembler/arch"
	"github.com/x86rt/assembler/codepage"
	"github.com/x86rt/assembler/opnd"
	"github.com/x86rt/assembler/reg"
	"github.com/x86rt/assembler/unit"
)

// Re-exported so callers never need to import the arch package directly
// for the common case of picking a target mode.
type (
	Mode       = arch.Mode
	Context    = arch.Context
	Convention = abi.Convention
	Type       = abi.Type
	Signature  = abi.Signature
)

const (
	Mode32 = arch.Mode32
	Mode64 = arch.Mode64
)

// Context32 and Context64 are the canonical IA-32 and Intel-64 contexts,
// re-exported so callers building a Unit don't need to import arch just
// to write arch.Context{Mode: arch.Mode64}.
var (
	Context32 = arch.Context32
	Context64 = arch.Context64
)

const (
	SystemV64 = abi.SystemV64
	Win64     = abi.Win64
	Cdecl32   = abi.Cdecl32
	Stdcall32 = abi.Stdcall32
)

const (
	Void    = abi.Void
	Int32   = abi.Int32
	Int64   = abi.Int64
	Float32 = abi.Float32
	Float64 = abi.Float64
	Pointer = abi.Pointer
)

// RegisterByName looks up a register by its Intel-syntax name ("rax",
// "r9d", "xmm3", "spl", ...). The bool result is false for an unrecognized
// name.
func RegisterByName(name string) (opnd.Register, bool) {
	r, ok := reg.ByName(name)
	if !ok {
		return opnd.Register{}, false
	}
	return opnd.Reg(r), true
}

// Mem builds an empty memory-reference operand with no base, index, or
// displacement; chain Sized/Scaled/Displaced (or set fields directly) to
// build up an effective address, mirroring the reference implementation's
// operator-overloaded pointer-building idiom with explicit Go methods.
func Mem() opnd.MemoryRef { return opnd.MemoryRef{} }

// Imm and ImmU build signed and unsigned immediate operands.
func Imm(v int64) opnd.Immediate   { return opnd.Imm(v) }
func ImmU(v uint64) opnd.Immediate { return opnd.ImmU(v) }

// Label names an operand referring to a not-yet-defined position in the
// unit — a branch target or, inside a MemoryRef, an address to load.
func Label(name string) opnd.LabelRef { return opnd.LabelRef{Name: name} }

// Unit is an ordered sequence of instructions and label definitions ready
// to be assembled into one contiguous buffer of machine code.
type Unit struct {
	u *unit.Unit
}

// NewUnit creates an empty assembly unit targeting ctx.
func NewUnit(ctx Context) *Unit { return &Unit{u: unit.New(ctx)} }

// DefineLabel marks the unit's current position with name.
func (b *Unit) DefineLabel(name string) error { return b.u.DefineLabel(name) }

// Instruction appends one encoded instruction to the unit.
func (b *Unit) Instruction(mnemonic string, operands ...opnd.Operand) error {
	return b.u.Instruction(mnemonic, operands...)
}

// Dump renders the unit's current layout for debugging.
func (b *Unit) Dump() string { return b.u.Dump() }

// Assembled is the resolved output of Assemble: flat machine code plus
// every label's byte offset within it.
type Assembled struct {
	Code   []byte
	Labels map[string]int

	fixups []unit.AbsFixup
}

// Assemble resolves every label reference in b, shrinking branches to
// their short form wherever legal, and returns the flat machine code.
func (b *Unit) Assemble() (*Assembled, error) {
	code, labels, fixups, err := b.u.Assemble()
	if err != nil {
		return nil, err
	}
	return &Assembled{Code: code, Labels: labels, fixups: fixups}, nil
}

// Load copies a's code into freshly allocated executable memory, patching
// every absolute label reference with the page's own runtime address.
func (a *Assembled) Load() (*codepage.Page, error) {
	return codepage.Load(a.Code, a.Labels, a.fixups)
}

// MakeCallable assembles a (if not already loaded) is not this method's
// job — call Load first, then MakeCallable on the resulting Page. This
// free function is the common case: load a onto a fresh page and bind a
// Callable to the label named entry in one step.
func MakeCallable(a *Assembled, entry string, sig Signature, conv Convention) (*codepage.Page, *codepage.Callable, error) {
	page, err := a.Load()
	if err != nil {
		return nil, nil, err
	}
	offset, ok := a.Labels[entry]
	if !ok {
		page.Close()
		return nil, nil, &unresolvedEntryError{entry}
	}
	callable, err := page.MakeCallable(offset, sig, conv)
	if err != nil {
		page.Close()
		return nil, nil, err
	}
	return page, callable, nil
}

type unresolvedEntryError struct{ name string }

func (e *unresolvedEntryError) Error() string {
	return "assembler: no label named " + e.name + " in the assembled unit"
}
