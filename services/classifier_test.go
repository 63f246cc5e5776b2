package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFileExtType tests extension classification
func TestFileExtType(t *testing.T) {
	tests := []struct {
		name     string
		ext      string
		expected []string
	}{
		{"audio with dot", ".flac", []string{"audio"}},
		{"audio without dot", "mp3", []string{"audio"}},
		{"mixed case", ".FLAC", []string{"audio"}},
		{"video", ".mkv", []string{"video"}},
		{"image", ".png", []string{"image"}},
		{"text", ".cue", []string{"text"}},
		{"document", ".pdf", []string{"document"}},
		{"unknown extension", ".xyz", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FileExtType(tt.ext))
		})
	}
}

// TestIsPlayableCandidate tests the cheap pre-probe filter
func TestIsPlayableCandidate(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		includeVideo bool
		expected     bool
	}{
		{"audio file", "/music/track.flac", false, true},
		{"video excluded by default", "/media/movie.mkv", false, false},
		{"video included when enabled", "/media/movie.mkv", true, true},
		{"image rejected", "/music/cover.jpg", false, false},
		{"text rejected", "/music/album.cue", false, false},
		{"unknown extension survives", "/music/track.weird", false, true},
		{"no extension survives", "/music/track", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsPlayableCandidate(tt.path, tt.includeVideo))
		})
	}
}

// TestContentType tests MIME resolution for streaming
func TestContentType(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/music/track.flac", "audio/flac"},
		{"/music/track.MP3", "audio/mpeg"},
		{"/music/track.opus", "audio/ogg"},
		{"/music/track.m4a", "audio/mp4"},
		{"/music/track.wav", "audio/wav"},
		{"/music/track.unknown", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContentType(tt.path))
		})
	}
}
