package services

import (
	"fmt"
	"os"

	"tonearm/types"
)

// PathKind selects the expected kind of filesystem entry for an
// existence check.
type PathKind string

const (
	KindFile   PathKind = "file"
	KindFolder PathKind = "folder"
)

// Exists reports whether path exists and matches the expected kind.
// It never returns an error; use MustExist when the caller needs one.
func Exists(path string, kind PathKind) bool {
	return MustExist(path, kind) == nil
}

// MustExist verifies path exists and matches the expected kind,
// returning an EFAULT-coded error otherwise. Downstream failures are
// hard to diagnose when a stale path slips through, so callers run
// this immediately before operations that assume a valid target.
func MustExist(path string, kind PathKind) error {
	info, err := os.Stat(path)
	if err != nil {
		return types.NewNotFound(path, err)
	}

	if kind == KindFolder && !info.IsDir() {
		return types.NewNotFound(path, fmt.Errorf("%s is not a folder", path))
	}
	if kind == KindFile && info.IsDir() {
		return types.NewNotFound(path, fmt.Errorf("%s is not a file", path))
	}

	return nil
}
