// Package filex has small filesystem helpers for local state files.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir resolves path against the working directory, creates its
// parent directory (0700) if missing and returns the absolute path.
func EnsureParentDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return abs, nil
}
