// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package xorgconf

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// Writer writes config files, skipping writes whose content is already
// on disk. The zero value is usable; Logger defaults to discarding.
type Writer struct {
	Logger *slog.Logger

	// Mode is the permission for new files. Zero means 0644.
	Mode fs.FileMode
}

// UpdateFile makes path contain exactly content. It reports false
// without touching the file when the content is already there. Parent
// directories are created as needed and the new content is renamed
// into place, so readers never see a partial file.
func (w *Writer) UpdateFile(path string, content []byte) (bool, error) {
	logger := w.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	existing, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(existing, content):
		logger.Debug("config unchanged", "path", path, "digest", Digest(content))
		return false, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return false, fmt.Errorf("creating %s: %w", directory, err)
	}

	temporary, err := os.CreateTemp(directory, "."+filepath.Base(path)+".*")
	if err != nil {
		return false, fmt.Errorf("creating temporary file for %s: %w", path, err)
	}
	temporaryPath := temporary.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(temporaryPath)
		}
	}()

	if _, err := temporary.Write(content); err != nil {
		temporary.Close()
		return false, fmt.Errorf("writing %s: %w", temporaryPath, err)
	}
	if err := temporary.Sync(); err != nil {
		temporary.Close()
		return false, fmt.Errorf("syncing %s: %w", temporaryPath, err)
	}
	if err := temporary.Close(); err != nil {
		return false, fmt.Errorf("closing %s: %w", temporaryPath, err)
	}
	mode := w.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err := os.Chmod(temporaryPath, mode); err != nil {
		return false, fmt.Errorf("setting mode on %s: %w", temporaryPath, err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		return false, fmt.Errorf("renaming %s into place: %w", path, err)
	}
	success = true

	logger.Info("config written", "path", path, "bytes", len(content), "digest", Digest(content))
	return true, nil
}

// Digest returns a short BLAKE3 digest of content for log lines.
func Digest(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:8])
}
