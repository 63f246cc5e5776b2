package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLibraryErrorMessage tests message assembly from the structured parts
func TestLibraryErrorMessage(t *testing.T) {
	err := WrapSequence("file:/music/track.flac", errors.New("probe failed"))

	msg := err.Error()
	assert.Contains(t, msg, "ESEQ")
	assert.Contains(t, msg, "probe failed")
	assert.Contains(t, msg, "file:/music/track.flac")
	assert.Contains(t, msg, "CanPlayURI")
}

// TestLibraryErrorUnwrap tests that errors.Is sees through the wrapper
func TestLibraryErrorUnwrap(t *testing.T) {
	cause := errors.New("stat failed")
	err := NewNotFound("file:/music/gone.flac", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, err.Unwrap())
}

// TestIsCode tests code matching through wrapping layers
func TestIsCode(t *testing.T) {
	base := NewInvalidInput("uri must be a non-empty string")
	wrapped := fmt.Errorf("handling request: %w", base)

	assert.True(t, IsCode(base, CodeInvalidInput))
	assert.True(t, IsCode(wrapped, CodeInvalidInput))
	assert.False(t, IsCode(wrapped, CodeNotFound))
	assert.False(t, IsCode(errors.New("plain"), CodeInvalidInput))
	assert.False(t, IsCode(nil, CodeInvalidInput))
}

// TestIsCodeMatchesOutermost tests that a sequence wrapper around a
// probe failure reports as a sequence error
func TestIsCodeMatchesOutermost(t *testing.T) {
	inner := NewProbeError("/music/broken.flac", errors.New("no audio stream found"))
	outer := WrapSequence("file:/music/broken.flac", inner)

	assert.True(t, IsCode(outer, CodeSequence))
	require.False(t, IsCode(outer, CodeProbe))
	assert.True(t, IsCode(outer.Unwrap(), CodeProbe))
}
