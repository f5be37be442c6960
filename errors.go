// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assembler

import (
	internal "github.com/x86rt/assembler/internal/errors"
)

// Error is the public façade over the internal structured error type. Use
// errors.As to recover it from an error returned by this package.
type Error = internal.AsmError

// Kind enumerates the fatal error categories an assembly unit can raise.
type Kind = internal.Kind

const (
	UnknownMnemonic        = internal.UnknownMnemonic
	NoMatchingForm         = internal.NoMatchingForm
	OperandMisuse          = internal.OperandMisuse
	ImmediateOutOfRange    = internal.ImmediateOutOfRange
	DisplacementOutOfRange = internal.DisplacementOutOfRange
	UndefinedLabel         = internal.UndefinedLabel
	DuplicateLabel         = internal.DuplicateLabel
	ArchMismatch           = internal.ArchMismatch
	PageAllocFailed        = internal.PageAllocFailed
)
