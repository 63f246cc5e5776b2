package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tonearm/types"
)

// TestExists tests kind-aware existence checks
func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "track.mp3")
	require.NoError(t, os.WriteFile(file, []byte("not really audio"), 0644))

	tests := []struct {
		name     string
		path     string
		kind     PathKind
		expected bool
	}{
		{"file exists as file", file, KindFile, true},
		{"folder exists as folder", dir, KindFolder, true},
		{"file is not a folder", file, KindFolder, false},
		{"folder is not a file", dir, KindFile, false},
		{"missing path", filepath.Join(dir, "nope.mp3"), KindFile, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Exists(tt.path, tt.kind))
		})
	}
}

// TestMustExistErrorCode tests that failures carry the not-found code
func TestMustExistErrorCode(t *testing.T) {
	dir := t.TempDir()

	err := MustExist(filepath.Join(dir, "missing.flac"), KindFile)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.CodeNotFound))

	err = MustExist(dir, KindFile)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.CodeNotFound))
	assert.Contains(t, err.Error(), "not a file")
}
