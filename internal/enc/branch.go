// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enc

import (
	"strings"

	"github.com/x86rt/assembler/arch"
)

// BranchForms returns the short (rel8) and long (rel32) row for a
// label-dependent branch mnemonic under ctx, when both exist. insn uses
// this to size a branch instruction provisionally at its longest legal
// form, then retry the short form once the label's distance is known —
// the two-pass shrink-to-fit process in spec.md §4.5.
func BranchForms(mnemonic string, ctx arch.Context) (short, long *Row, err error) {
	rows, ok := table[strings.ToLower(mnemonic)]
	if !ok {
		return nil, nil, errUnknownMnemonic(mnemonic)
	}
	for i := range rows {
		row := &rows[i]
		if row.Tag != TagD || !modeLegal(*row, ctx) {
			continue
		}
		switch len(row.Sig) {
		case 1:
			switch row.Sig[0] {
			case "rel8":
				short = row
			case "rel32":
				long = row
			}
		}
	}
	return short, long, nil
}
