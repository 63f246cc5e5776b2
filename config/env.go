package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var Env = map[string]string{
	"MEDIA_PATHS":      os.Getenv("MEDIA_PATHS"),
	"INCLUDE_VIDEO":    os.Getenv("INCLUDE_VIDEO"),
	"PROBE_COMMAND":    os.Getenv("PROBE_COMMAND"),
	"PROBE_TIMEOUT_MS": os.Getenv("PROBE_TIMEOUT_MS"),
}

// GetMediaPaths returns the ordered root directories of the library.
// The MEDIA_PATHS environment variable (comma-separated) wins over the
// user settings file; with neither set there are no roots and the
// library is empty.
func GetMediaPaths() []string {
	if v := Env["MEDIA_PATHS"]; v != "" {
		return splitPaths(v)
	}

	if settings, err := LoadUserSettings(); err == nil && len(settings.MediaPaths) > 0 {
		return settings.MediaPaths
	}

	return nil
}

// GetIncludeVideo reports whether video files should be scanned too
func GetIncludeVideo() bool {
	if v := Env["INCLUDE_VIDEO"]; v != "" {
		return v == "1" || strings.EqualFold(v, "true")
	}

	if settings, err := LoadUserSettings(); err == nil {
		return settings.IncludeVideo
	}

	return false
}

// GetProbeCommand returns the metadata probe binary to invoke
func GetProbeCommand() string {
	if v := Env["PROBE_COMMAND"]; v != "" {
		return v
	}
	return "ffprobe"
}

// GetProbeTimeout returns the per-file probe timeout
func GetProbeTimeout() time.Duration {
	if v := Env["PROBE_TIMEOUT_MS"]; v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return 100 * time.Millisecond
}

func splitPaths(v string) []string {
	var paths []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// UserSettings represents the user's personal settings
type UserSettings struct {
	MediaPaths   []string `json:"mediaPaths"`
	IncludeVideo bool     `json:"includeVideo"`
}

// SettingsFilePath returns the path to the settings file
func SettingsFilePath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".tonearm-settings.json")
}

// LoadUserSettings loads settings from the settings file. A missing
// file yields empty defaults, not an error.
func LoadUserSettings() (*UserSettings, error) {
	settingsPath := SettingsFilePath()

	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		return &UserSettings{}, nil
	}

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, err
	}

	var settings UserSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}

	return &settings, nil
}

// SaveUserSettings saves settings to the settings file
func SaveUserSettings(settings *UserSettings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(SettingsFilePath(), data, 0644)
}
