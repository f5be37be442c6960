// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enc

// Mod is the two-bit mod field of a ModR/M byte.
type Mod byte

const (
	ModMem       Mod = 0 // [r/m], or a disp32-only/RIP-relative special case when rm==4
	ModMemDisp8  Mod = 1 // [r/m + disp8]
	ModMemDisp32 Mod = 2 // [r/m + disp32]
	ModReg       Mod = 3 // r/m names a register directly
)

// modRM packs mod, reg, and rm into a single ModR/M byte. reg and rm are
// masked to their low 3 bits; callers are responsible for the matching
// REX.R/REX.B extension bits.
func modRM(mod Mod, reg, rm byte) byte {
	return byte(mod)<<6 | (reg&7)<<3 | (rm & 7)
}

// dispSizeFor chooses the number of displacement bytes (0, 1, or 4) a plain
// disp value needs, the ordinary rule before the rbp/r13-base special case
// is applied.
func dispSizeFor(disp int32) (Mod, int) {
	switch {
	case disp == 0:
		return ModMem, 0
	case disp >= -0x80 && disp <= 0x7f:
		return ModMemDisp8, 1
	default:
		return ModMemDisp32, 4
	}
}

// dispModAndSize is dispSizeFor generalized with the one addressing-mode
// ambiguity in the ModR/M/SIB scheme: mod=00 with an r/m or SIB-base field
// of 101 (binary) means "no base, disp32 follows" rather than "base=rbp/r13
// with zero displacement" (spec.md §3). baseLow3 is the low 3 bits of the
// base register's encoding index, or nil when there is no base register at
// all (the disp32-only / RIP-relative form, which the caller forces to
// ModMem/4 separately).
func dispModAndSize(disp int32, baseLow3 *byte) (Mod, int) {
	if baseLow3 != nil && *baseLow3&7 == 5 && disp == 0 {
		return ModMemDisp8, 1
	}
	return dispSizeFor(disp)
}

// encodeDisp appends the little-endian displacement bytes for size (0, 1,
// or 4) to buf.
func encodeDisp(buf []byte, disp int32, size int) []byte {
	switch size {
	case 0:
		return buf
	case 1:
		return append(buf, byte(int8(disp)))
	case 4:
		return append(buf, byte(disp), byte(disp>>8), byte(disp>>16), byte(disp>>24))
	default:
		panic("enc: invalid displacement size")
	}
}
