// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package opnd models the four operand kinds an Instruction can bind:
// register, immediate, memory reference, and label reference. Each
// implements the Operand interface so row-selection code in internal/enc
// can dispatch on operand kind without a type switch at every call site.
package opnd

import (
	"fmt"

	"github.com/x86rt/assembler/reg"
)

// Operand is satisfied by every concrete operand kind in this package.
type Operand interface {
	fmt.Stringer
	// sigClass returns the single-letter family used when building a
	// signature string ('r', 'm', 'i', 'l').
	sigClass() byte
}

// Register wraps a catalog register as an instruction operand.
type Register struct {
	reg.Register
}

func Reg(r reg.Register) Register   { return Register{r} }
func (Register) sigClass() byte     { return 'r' }
func (r Register) String() string   { return r.Register.String() }

// Immediate is a signed or unsigned integer constant whose final encoded
// width (8, 16, 32, or 64 bits) is chosen by instruction-form selection,
// not by the caller. Unsigned is a hint allowing a value like 0xFF to be
// packed into an 8-bit slot even though it would not fit as a signed int8;
// spec.md §3 calls this "the sign convention the instruction form
// dictates."
type Immediate struct {
	Value    int64
	Unsigned bool
}

func Imm(v int64) Immediate               { return Immediate{Value: v} }
func ImmU(v uint64) Immediate             { return Immediate{Value: int64(v), Unsigned: true} }
func (Immediate) sigClass() byte          { return 'i' }
func (i Immediate) String() string {
	if i.Unsigned {
		return fmt.Sprintf("0x%x", uint64(i.Value))
	}
	return fmt.Sprintf("%d", i.Value)
}

// MinBits returns the narrowest power-of-two width (8/16/32/64) that can
// represent Value under the sign convention requested.
func (i Immediate) MinBits() int {
	v := i.Value
	if i.Unsigned {
		u := uint64(v)
		switch {
		case u <= 0xff:
			return 8
		case u <= 0xffff:
			return 16
		case u <= 0xffffffff:
			return 32
		default:
			return 64
		}
	}
	switch {
	case v >= -0x80 && v <= 0x7f:
		return 8
	case v >= -0x8000 && v <= 0x7fff:
		return 16
	case v >= -0x80000000 && v <= 0x7fffffff:
		return 32
	default:
		return 64
	}
}

// FitsSigned reports whether Value fits in bits as a two's-complement
// signed integer of that width.
func (i Immediate) FitsSigned(bits int) bool {
	if bits >= 64 {
		return true
	}
	lo := int64(-1) << (bits - 1)
	hi := -lo - 1
	return i.Value >= lo && i.Value <= hi
}

// PointerSize tags the width of the value sitting at a memory address —
// the "byte/word/dword/qword/tword/xmmword ptr […]" syntax — independent
// of the address width used to compute that address.
type PointerSize uint8

const (
	SizeUnspecified PointerSize = iota
	Byte
	Word
	Dword
	Qword
	Tword
	XmmWord
)

func (p PointerSize) Bits() int {
	switch p {
	case Byte:
		return 8
	case Word:
		return 16
	case Dword:
		return 32
	case Qword:
		return 64
	case Tword:
		return 80
	case XmmWord:
		return 128
	default:
		return 0
	}
}

func (p PointerSize) String() string {
	switch p {
	case Byte:
		return "byte"
	case Word:
		return "word"
	case Dword:
		return "dword"
	case Qword:
		return "qword"
	case Tword:
		return "tword"
	case XmmWord:
		return "xmmword"
	default:
		return ""
	}
}

// Scale is the SIB scale factor applied to the index register.
type Scale uint8

const (
	Scale1 Scale = 1
	Scale2 Scale = 2
	Scale4 Scale = 4
	Scale8 Scale = 8
)

// MemoryRef is an effective-address operand: optional base and index
// registers, a scale (meaningful only with an index), a 32-bit signed
// displacement, and the pointer size of the value found at that address.
type MemoryRef struct {
	Base        *reg.Register
	Index       *reg.Register
	Scale       Scale
	Disp        int32
	Size        PointerSize
	Label       string // set instead of Base/Disp for a RIP-relative label load
	LabelOffset int32
}

func (MemoryRef) sigClass() byte { return 'm' }

func (m MemoryRef) String() string {
	ptr := ""
	if m.Size != SizeUnspecified {
		ptr = m.Size.String() + " ptr "
	}
	if m.Label != "" {
		if m.LabelOffset == 0 {
			return fmt.Sprintf("%s[%s]", ptr, m.Label)
		}
		return fmt.Sprintf("%s[%s+%d]", ptr, m.Label, m.LabelOffset)
	}
	inner := ""
	if m.Base != nil {
		inner += m.Base.String()
	}
	if m.Index != nil {
		if inner != "" {
			inner += "+"
		}
		inner += fmt.Sprintf("%s*%d", m.Index.String(), m.Scale)
	}
	if m.Disp != 0 || inner == "" {
		if inner != "" {
			if m.Disp >= 0 {
				inner += fmt.Sprintf("+%d", m.Disp)
			} else {
				inner += fmt.Sprintf("-%d", -m.Disp)
			}
		} else {
			inner = fmt.Sprintf("%d", m.Disp)
		}
	}
	return fmt.Sprintf("%s[%s]", ptr, inner)
}

// Sized returns a copy of m tagged with an explicit pointer size — the
// "byte/word/dword/qword ptr […]" syntax mentioned in spec.md §4.2.
func (m MemoryRef) Sized(size PointerSize) MemoryRef {
	m.Size = size
	return m
}

// Scaled returns a copy of m with the given index register and scale set,
// generalizing the reference implementation's operator-overloaded
// "reg*scale" pointer-building idiom into an explicit method.
func (m MemoryRef) Scaled(index reg.Register, scale Scale) MemoryRef {
	m.Index = &index
	m.Scale = scale
	return m
}

// Displaced returns a copy of m with its displacement shifted by delta.
func (m MemoryRef) Displaced(delta int32) MemoryRef {
	m.Disp += delta
	return m
}

// LabelRef is an operand naming a label rather than a resolved address; it
// is legal either as a relative branch target (a bare mnemonic argument)
// or, via MemoryRef.Label, as the address computed for a RIP-relative or
// absolute load.
type LabelRef struct {
	Name string
}

func (LabelRef) sigClass() byte   { return 'l' }
func (l LabelRef) String() string { return l.Name }
