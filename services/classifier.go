package services

import (
	"path/filepath"
	"strings"
)

// extTypes maps a lower-cased file extension to its semantic type tags.
// Extensions absent from the map classify as unknown, which is not the
// same as rejected: an unknown extension still goes to the prober.
var extTypes = map[string][]string{
	".mp3":  {"audio"},
	".flac": {"audio"},
	".ogg":  {"audio"},
	".oga":  {"audio"},
	".opus": {"audio"},
	".m4a":  {"audio"},
	".aac":  {"audio"},
	".wav":  {"audio"},
	".aif":  {"audio"},
	".aiff": {"audio"},
	".wma":  {"audio"},
	".ape":  {"audio"},
	".wv":   {"audio"},

	".mp4":  {"video"},
	".m4v":  {"video"},
	".mkv":  {"video"},
	".webm": {"video"},
	".avi":  {"video"},
	".mov":  {"video"},

	".jpg":  {"image"},
	".jpeg": {"image"},
	".png":  {"image"},
	".gif":  {"image"},
	".bmp":  {"image"},

	".txt":  {"text"},
	".log":  {"text"},
	".nfo":  {"text"},
	".cue":  {"text"},
	".m3u":  {"text"},
	".m3u8": {"text"},
	".pdf":  {"document"},
	".doc":  {"document"},
}

// FileExtType returns the semantic type tags for a file extension, or
// nil when the extension is unknown. The leading dot is optional and
// matching is case-insensitive.
func FileExtType(ext string) []string {
	if ext == "" {
		return nil
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return extTypes[strings.ToLower(ext)]
}

// IsPlayableCandidate reports whether a path is worth probing. Paths
// whose extension maps definitively to a non-media type are rejected
// cheaply; unknown extensions survive so the prober gets the final say.
func IsPlayableCandidate(path string, includeVideo bool) bool {
	tags := FileExtType(filepath.Ext(path))
	if tags == nil {
		return true
	}

	for _, tag := range tags {
		if tag == "audio" {
			return true
		}
		if tag == "video" && includeVideo {
			return true
		}
	}
	return false
}

// ContentType returns the MIME type to serve an audio file with
func ContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac":
		return "audio/flac"
	case ".mp3":
		return "audio/mpeg"
	case ".ogg", ".oga", ".opus":
		return "audio/ogg"
	case ".m4a":
		return "audio/mp4"
	case ".aac":
		return "audio/aac"
	case ".wav":
		return "audio/wav"
	case ".aif", ".aiff":
		return "audio/aiff"
	default:
		return "application/octet-stream"
	}
}
