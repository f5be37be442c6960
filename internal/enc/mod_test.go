// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enc

import "testing"

func TestDispSizeFor(t *testing.T) {
	for _, pair := range [][3]int{
		{-0x80000000, int(ModMemDisp32), 4},
		{-0x7fffffff, int(ModMemDisp32), 4},
		{-0x10000, int(ModMemDisp32), 4},
		{-0x81, int(ModMemDisp32), 4},
		{-0x80, int(ModMemDisp8), 1},
		{-1, int(ModMemDisp8), 1},
		{0, int(ModMem), 0},
		{1, int(ModMemDisp8), 1},
		{0x7f, int(ModMemDisp8), 1},
		{0x80, int(ModMemDisp32), 4},
		{0x7fffffff, int(ModMemDisp32), 4},
	} {
		if mod, size := dispSizeFor(int32(pair[0])); mod != Mod(pair[1]) || size != pair[2] {
			t.Errorf("dispSizeFor(%d) = %d, %d; want %d, %d", pair[0], mod, size, pair[1], pair[2])
		}
	}
}

func TestDispModAndSizeRbpZeroDisp(t *testing.T) {
	// rbp/r13 (low3==5) with a zero displacement must be forced to the
	// disp8 form, since mod=00/rm=101 is already reserved for the
	// no-base disp32-only addressing mode.
	low3 := byte(5)
	mod, size := dispModAndSize(0, &low3)
	if mod != ModMemDisp8 || size != 1 {
		t.Errorf("dispModAndSize(0, rbp) = %d, %d; want ModMemDisp8, 1", mod, size)
	}

	low3 = byte(0) // rax: no special case
	mod, size = dispModAndSize(0, &low3)
	if mod != ModMem || size != 0 {
		t.Errorf("dispModAndSize(0, rax) = %d, %d; want ModMem, 0", mod, size)
	}

	mod, size = dispModAndSize(0, nil)
	if mod != ModMem || size != 0 {
		t.Errorf("dispModAndSize(0, nil) = %d, %d; want ModMem, 0", mod, size)
	}
}

func TestModRM(t *testing.T) {
	if b := modRM(ModReg, 3, 0); b != 0xd8 {
		t.Errorf("modRM(ModReg, 3, 0) = 0x%02x, want 0xd8", b)
	}
	if b := modRM(ModMemDisp8, 0, 5); b != 0x45 {
		t.Errorf("modRM(ModMemDisp8, 0, 5) = 0x%02x, want 0x45", b)
	}
	// reg/rm are masked to their low 3 bits; the caller supplies the
	// matching REX.R/B bit separately.
	if b := modRM(ModReg, 11, 9); b != modRM(ModReg, 3, 1) {
		t.Errorf("modRM did not mask reg/rm to 3 bits")
	}
}

func TestEncodeDisp(t *testing.T) {
	if got := encodeDisp(nil, 0, 0); len(got) != 0 {
		t.Errorf("encodeDisp(size=0) produced %d bytes, want 0", len(got))
	}
	if got := encodeDisp(nil, -1, 1); len(got) != 1 || got[0] != 0xff {
		t.Errorf("encodeDisp(-1, size=1) = %x, want [ff]", got)
	}
	if got := encodeDisp(nil, 0x12345678, 4); len(got) != 4 ||
		got[0] != 0x78 || got[1] != 0x56 || got[2] != 0x34 || got[3] != 0x12 {
		t.Errorf("encodeDisp(0x12345678, size=4) = %x, want [78 56 34 12]", got)
	}
}
