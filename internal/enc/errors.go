// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enc

import (
	internal "github.com/x86rt/assembler/internal/errors"
)

func errOperandMisuse(format string, args ...interface{}) error {
	return internal.Newf(internal.OperandMisuse, format, args...)
}

func errNoMatchingForm(mnemonic string, operand int, format string, args ...interface{}) error {
	return internal.ForOperand(internal.NoMatchingForm, mnemonic, operand, format, args...)
}

func errUnknownMnemonic(mnemonic string) error {
	return internal.Newf(internal.UnknownMnemonic, "%q is not a recognized mnemonic", mnemonic)
}

func errArchMismatch(format string, args ...interface{}) error {
	return internal.Newf(internal.ArchMismatch, format, args...)
}
