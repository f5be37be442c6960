// Copyright (c) 2026 The x86rt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codepage

import (
	"sync"

	internal "github.com/x86rt/assembler/internal/errors"
)

// registry tracks every Page currently allocated by Load. It exists purely
// for Close-time double-free detection and test-visible leak accounting —
// Page's own closed flag already makes a second Close on the same *Page a
// no-op, but the registry additionally catches a Page value that was never
// registered (or was already deregistered) being passed to deregister, and
// lets tests assert that every Load in a test has a matching Close.
var registry = struct {
	mu    sync.Mutex
	pages map[*Page]struct{}
}{pages: make(map[*Page]struct{})}

func registerPage(p *Page) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.pages[p] = struct{}{}
}

func deregisterPage(p *Page) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, ok := registry.pages[p]; !ok {
		return internal.New(internal.OperandMisuse, "codepage: page was already closed or never registered")
	}
	delete(registry.pages, p)
	return nil
}

// OpenPages reports how many pages are currently loaded and not yet
// closed, for test-time leak assertions.
func OpenPages() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return len(registry.pages)
}
