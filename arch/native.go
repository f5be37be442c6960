// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build amd64 || arm64

package arch

const nativeIs64Bit = true
