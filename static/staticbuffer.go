// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package static provides a pre-sized append-only byte buffer for
// assembling a known-capacity instruction stream without incremental
// reallocation. Adapted from the teacher's static.Buffer (its fixed-
// capacity compile.CodeBuffer/compile.DataBuffer implementation), kept
// for the same reason it existed there: unit.Unit already knows the
// total size of an assembled buffer before it writes a single byte (two
// full passes over the entry list precede emission), so growing a plain
// slice is wasted work the teacher's own design avoided.
package static

// Buffer is a byte buffer whose backing array is sized once up front.
// Extend and PutByte never reallocate as long as the caller never grows
// past the capacity given to New.
type Buffer struct {
	b []byte
}

// New returns an empty Buffer backed by a freshly allocated array of the
// given capacity.
func New(capacity int) *Buffer { return &Buffer{b: make([]byte, 0, capacity)} }

// Buf wraps an existing slice as a Buffer, truncating its length to zero
// while keeping its capacity.
func Buf(b []byte) *Buffer { return &Buffer{b[:0]} }

func (f *Buffer) Bytes() []byte  { return f.b }
func (f *Buffer) Len() int       { return len(f.b) }
func (f *Buffer) PutByte(b byte) { f.Extend(1)[0] = b }

// Append copies p onto the end of the buffer.
func (f *Buffer) Append(p []byte) { copy(f.Extend(len(p)), p) }

// Extend grows the buffer by n bytes and returns the newly exposed slice
// for the caller to fill in place.
func (f *Buffer) Extend(n int) []byte {
	b := f.b
	offset := len(b)
	b = b[:offset+n]
	f.b = b
	return b[offset:]
}
