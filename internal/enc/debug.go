// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build debug

package enc

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"
)

// DebugDecode renders freshly emitted bytes back through an independent
// x86 decoder, for development-time sanity checking that Emit produced
// what the row table says it should. Grounded on the teacher's
// internal/isa/x86/in/debug.go disassembly printer, with gapstone (cgo)
// swapped for golang.org/x/arch/x86/x86asm (pure Go, already a module
// dependency used by this package's own decode_test.go).
func DebugDecode(code []byte, mode int) {
	inst, err := x86asm.Decode(code, mode)
	if err != nil {
		print(fmt.Sprintf("indebug: % x ; decode error: %v\n", code, err))
		return
	}
	print(fmt.Sprintf("indebug: % x ; %s\n", code, x86asm.GNUSyntax(inst, 0, nil)))
}
