// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors defines the structured error values produced while
// building and resolving an assembly unit. Every error kind named in the
// design is a distinct constructor here so that callers can recover the
// offending mnemonic and operand index with errors.As instead of parsing
// a message string.
package errors

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Kind identifies one of the fatal error categories an assembly unit can
// raise.
type Kind int

const (
	UnknownMnemonic Kind = iota
	NoMatchingForm
	OperandMisuse
	ImmediateOutOfRange
	DisplacementOutOfRange
	UndefinedLabel
	DuplicateLabel
	ArchMismatch
	PageAllocFailed
)

func (k Kind) String() string {
	switch k {
	case UnknownMnemonic:
		return "unknown mnemonic"
	case NoMatchingForm:
		return "no matching form"
	case OperandMisuse:
		return "operand misuse"
	case ImmediateOutOfRange:
		return "immediate out of range"
	case DisplacementOutOfRange:
		return "displacement out of range"
	case UndefinedLabel:
		return "undefined label"
	case DuplicateLabel:
		return "duplicate label"
	case ArchMismatch:
		return "architecture mismatch"
	case PageAllocFailed:
		return "page allocation failed"
	default:
		return "unknown error kind"
	}
}

// AsmError is the concrete error type raised by the encoding, instruction,
// and assembly-unit packages. It carries enough context for a front-end to
// build a useful diagnostic without re-parsing the error string.
type AsmError struct {
	kind     Kind
	text     string
	mnemonic string
	operand  int // -1 if not applicable
	cause    error
}

// New creates an AsmError with no operand context.
func New(kind Kind, text string) *AsmError {
	return &AsmError{kind: kind, text: text, operand: -1}
}

// Newf creates an AsmError with a formatted message and no operand context.
func Newf(kind Kind, format string, args ...interface{}) *AsmError {
	return &AsmError{kind: kind, text: fmt.Sprintf(format, args...), operand: -1}
}

// ForOperand creates an AsmError naming the offending mnemonic and the
// zero-based index of the operand that triggered it.
func ForOperand(kind Kind, mnemonic string, operand int, format string, args ...interface{}) *AsmError {
	return &AsmError{
		kind:     kind,
		text:     fmt.Sprintf(format, args...),
		mnemonic: mnemonic,
		operand:  operand,
	}
}

// Wrap creates an AsmError that chains an underlying cause.
func Wrap(kind Kind, cause error, text string) *AsmError {
	return &AsmError{kind: kind, text: text, operand: -1, cause: cause}
}

func (e *AsmError) Error() string {
	switch {
	case e.mnemonic != "" && e.operand >= 0:
		return fmt.Sprintf("%s: %s (mnemonic %q, operand %d)", e.kind, e.text, e.mnemonic, e.operand)
	case e.mnemonic != "":
		return fmt.Sprintf("%s: %s (mnemonic %q)", e.kind, e.text, e.mnemonic)
	default:
		return fmt.Sprintf("%s: %s", e.kind, e.text)
	}
}

func (e *AsmError) Kind() Kind        { return e.kind }
func (e *AsmError) Mnemonic() string  { return e.mnemonic }
func (e *AsmError) OperandIndex() int { return e.operand }
func (e *AsmError) Unwrap() error     { return e.cause }

// WrapFormat wraps cause in a new AsmError using xerrors so that %w-style
// chains survive errors.Is/errors.As across package boundaries.
func WrapFormat(kind Kind, cause error, format string, args ...interface{}) *AsmError {
	msg := fmt.Sprintf(format, args...)
	return &AsmError{kind: kind, text: msg, operand: -1, cause: xerrors.Errorf("%s: %w", msg, cause)}
}
