// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package assign

import (
	"log/slog"
	"sync"

	"github.com/bureau-foundation/multiseat/lib/xorgconf"
)

// previewWriter stands in for the config writer on --dry-run: it logs
// what would be written and keeps the content for inspection.
type previewWriter struct {
	logger *slog.Logger

	mu    sync.Mutex
	files map[string][]byte
}

func (w *previewWriter) UpdateFile(path string, content []byte) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files == nil {
		w.files = make(map[string][]byte)
	}
	w.files[path] = content
	w.logger.Info("dry run: would write config", "path", path, "bytes", len(content), "digest", xorgconf.Digest(content))
	return true, nil
}
