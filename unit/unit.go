// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package unit assembles an ordered sequence of instructions and labels
// into one contiguous byte buffer, resolving relative branch displacements
// and reporting any absolute-address fixups a code page must patch once it
// knows where the buffer will live in memory. Grounded on
// original_source/pycca/asm/codepage.py's CodePage.compile, generalized
// from its single flat pass into the explicit two-pass fixpoint spec.md
// §4.5 and §4.6 describe.
package unit

import (
	"fmt"
	"strings"

	"github.com/x86rt/assembler/arch"
	"github.com/x86rt/assembler/insn"
	"github.com/x86rt/assembler/internal/enc"
	internal "github.com/x86rt/assembler/internal/errors"
	"github.com/x86rt/assembler/opnd"
	"github.com/x86rt/assembler/static"
)

// entry is one line of the unit: either a label definition or an
// instruction, never both.
type entry struct {
	label string // "" if this entry is an instruction
	inst  *insn.Instruction
}

// AbsFixup names a byte range in the assembled buffer that still needs a
// runtime address written into it — the address of a label, known only
// once a code page has decided where the buffer will be mapped.
type AbsFixup struct {
	Offset int
	Size   int // 4 (FixupAbs32) or 8 (FixupAbs64)
	Label  string
}

// Unit is a single assembly unit: an ordered, mutable list of instructions
// and label definitions. It is not safe for concurrent use — spec.md's
// concurrency model treats one Unit as owned by a single goroutine during
// construction, matching the teacher's own single-writer Module/Function
// builder pattern.
type Unit struct {
	ctx     arch.Context
	entries []entry
	defined map[string]bool
}

// New creates an empty assembly unit targeting ctx.
func New(ctx arch.Context) *Unit {
	return &Unit{ctx: ctx, defined: map[string]bool{}}
}

// DefineLabel marks the current position in the instruction stream with
// name. Defining the same name twice is a DuplicateLabel error, checked
// immediately rather than deferred to Assemble so the mistake is reported
// at the call site that caused it.
func (u *Unit) DefineLabel(name string) error {
	if u.defined[name] {
		return internal.Newf(internal.DuplicateLabel, "label %q is already defined in this unit", name)
	}
	u.defined[name] = true
	u.entries = append(u.entries, entry{label: name})
	return nil
}

// Instruction appends mnemonic(operands...) to the unit, selecting and
// encoding it immediately so that malformed operands are reported at the
// call site, not deferred to Assemble.
func (u *Unit) Instruction(mnemonic string, operands ...opnd.Operand) error {
	in, err := insn.New(u.ctx, mnemonic, operands...)
	if err != nil {
		return err
	}
	u.entries = append(u.entries, entry{inst: in})
	return nil
}

// offsets computes the byte offset of every entry under the instructions'
// current sizes: offsets[i] is where entries[i] begins.
func (u *Unit) offsets() []int {
	offs := make([]int, len(u.entries)+1)
	pos := 0
	for i, e := range u.entries {
		offs[i] = pos
		if e.inst != nil {
			pos += e.inst.Size()
		}
	}
	offs[len(u.entries)] = pos
	return offs
}

func (u *Unit) labelOffsets(offs []int) map[string]int {
	m := make(map[string]int, len(u.defined))
	for i, e := range u.entries {
		if e.label != "" {
			m[e.label] = offs[i]
		}
	}
	return m
}

// shrinkPass tries to shrink every branch instruction still at its long
// form once, returning whether anything changed. Shrinking a branch can
// only ever reduce other branches' distances to their targets, never
// increase them, so repeated passes monotonically converge — spec.md
// §4.5's fixpoint.
func (u *Unit) shrinkPass() (bool, error) {
	offs := u.offsets()
	labels := u.labelOffsets(offs)
	changed := false
	for i, e := range u.entries {
		if e.inst == nil || !e.inst.CanShrink() {
			continue
		}
		f := e.inst.Fixup()
		if f.Kind == enc.FixupNone {
			continue
		}
		target, ok := labels[f.Label]
		if !ok {
			continue // undefined labels are reported in Assemble's final pass
		}
		siteEnd := offs[i] + e.inst.ShrinkSize()
		rel := target - siteEnd
		if rel >= -128 && rel <= 127 {
			if err := e.inst.Shrink(); err != nil {
				return false, err
			}
			changed = true
		}
	}
	return changed, nil
}

// Assemble resolves every label reference, shrinking branches to their
// short form wherever the label's final distance allows it, and returns
// the flat instruction bytes plus the byte offset of every label and
// every still-unresolved absolute-address fixup. A caller that will run
// this code in place (package codepage) patches the returned AbsFixups
// with each label's runtime address once it knows the buffer's base.
func (u *Unit) Assemble() ([]byte, map[string]int, []AbsFixup, error) {
	for {
		changed, err := u.shrinkPass()
		if err != nil {
			return nil, nil, nil, err
		}
		if !changed {
			break
		}
	}

	offs := u.offsets()
	labels := u.labelOffsets(offs)

	total := offs[len(u.entries)]
	code := static.New(total)
	var absFixups []AbsFixup

	for i, e := range u.entries {
		if e.inst == nil {
			continue
		}
		f := e.inst.Fixup()
		siteOffset := offs[i]
		switch f.Kind {
		case enc.FixupNone:
		case enc.FixupRel8, enc.FixupRel32:
			target, ok := labels[f.Label]
			if !ok {
				return nil, nil, nil, internal.Newf(internal.UndefinedLabel, "label %q is not defined in this unit", f.Label)
			}
			rel := target - (siteOffset + e.inst.Size())
			if err := e.inst.Patch(int32(rel), 0); err != nil {
				return nil, nil, nil, err
			}
		case enc.FixupAbs32, enc.FixupAbs64:
			if _, ok := labels[f.Label]; !ok {
				return nil, nil, nil, internal.Newf(internal.UndefinedLabel, "label %q is not defined in this unit", f.Label)
			}
			size := 4
			if f.Kind == enc.FixupAbs64 {
				size = 8
			}
			absFixups = append(absFixups, AbsFixup{Offset: siteOffset + f.Offset, Size: size, Label: f.Label})
		}
		code.Append(e.inst.Bytes())
	}

	return code.Bytes(), labels, absFixups, nil
}

// Dump renders the unit's current instruction/label layout for debugging,
// in the teacher's terse one-line-per-entry style.
func (u *Unit) Dump() string {
	offs := u.offsets()
	var b strings.Builder
	for i, e := range u.entries {
		if e.label != "" {
			fmt.Fprintf(&b, "%08x %s:\n", offs[i], e.label)
			continue
		}
		fmt.Fprintf(&b, "%08x  %02x\n", offs[i], e.inst.Bytes())
	}
	return b.String()
}
