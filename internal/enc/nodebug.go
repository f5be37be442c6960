// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !debug

package enc

// DebugDecode is a no-op outside debug builds; see debug.go.
func DebugDecode(code []byte, mode int) {}
