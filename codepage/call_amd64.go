// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build amd64

package codepage

// callTrampoline calls the System V AMD64 function at fn with the first
// nargs values of args loaded into rdi, rsi, rdx, rcx, r8, r9 in order,
// and returns rax. Implemented in call_amd64.s — the same split
// runner.go uses for its own assembly-bodied run() entry point.
func callTrampoline(fn uintptr, args *uint64, nargs int) uint64
