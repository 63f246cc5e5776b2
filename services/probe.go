package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dhowden/tag"
	"go.uber.org/zap"

	"tonearm/types"
)

// DefaultProbeTimeout bounds a single probe invocation.
const DefaultProbeTimeout = 100 * time.Millisecond

// probeCacheWindow is the coalescing window: the whole cache is cleared
// this long after the first entry of a batch, not per entry. The cache
// only exists to absorb near-simultaneous duplicate queries.
const probeCacheWindow = time.Minute

// maxStderrLen caps how much probe stderr is carried into errors.
const maxStderrLen = 512

// Prober extracts metadata from media files.
type Prober interface {
	// Probe returns the normalized track record for a playable file.
	Probe(ctx context.Context, target string) (*types.TrackRecord, error)
	// Supported reports whether the target has a playable audio stream,
	// swallowing all probe failures as "unsupported". It trades
	// precision for cheap filtering during bulk scans.
	Supported(ctx context.Context, target string) bool
}

// FFProbe implements Prober by invoking the ffprobe command-line tool
// and parsing its JSON output.
type FFProbe struct {
	command string
	timeout time.Duration
	log     *zap.Logger
	cache   *probeCache
}

// NewFFProbe creates a prober around the given ffprobe binary. A zero
// timeout falls back to DefaultProbeTimeout.
func NewFFProbe(command string, timeout time.Duration, logger *zap.Logger) *FFProbe {
	if command == "" {
		command = "ffprobe"
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFProbe{
		command: command,
		timeout: timeout,
		log:     logger,
		cache:   newProbeCache(probeCacheWindow),
	}
}

// Probe normalizes the target, invokes ffprobe for the first audio
// stream plus format details, and returns the parsed track record.
func (p *FFProbe) Probe(ctx context.Context, target string) (*types.TrackRecord, error) {
	path, err := ToPath(target)
	if err != nil {
		return nil, err
	}

	raw, err := p.rawProbe(ctx, path)
	if err != nil {
		p.log.Warn("probe invocation failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	record, err := parseProbeOutput(raw, path)
	if err != nil {
		p.log.Warn("probe output unusable", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	p.fillMissingTags(record, path)
	return record, nil
}

// Supported reuses the probe call but reports only whether a playable
// audio stream was present.
func (p *FFProbe) Supported(ctx context.Context, target string) bool {
	path, err := ToPath(target)
	if err != nil {
		return false
	}

	raw, err := p.rawProbe(ctx, path)
	if err != nil {
		return false
	}

	var out struct {
		Streams []struct {
			Index *int `json:"index"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return false
	}
	return len(out.Streams) > 0 && out.Streams[0].Index != nil
}

// rawProbe runs ffprobe for path, serving repeated queries within the
// coalescing window from cache.
func (p *FFProbe) rawProbe(ctx context.Context, path string) ([]byte, error) {
	if raw, ok := p.cache.get(path); ok {
		return raw, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := []string{
		"-v", "error",
		"-select_streams", "a:0",
		"-show_streams",
		"-show_format",
		"-print_format", "json",
		path,
	}

	cmd := exec.CommandContext(ctx, p.command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > maxStderrLen {
			detail = detail[:maxStderrLen]
		}
		if detail != "" {
			err = fmt.Errorf("%s failed: %w: %s", p.command, err, detail)
		} else {
			err = fmt.Errorf("%s failed: %w", p.command, err)
		}
		return nil, types.NewProbeError(path, err)
	}

	raw := stdout.Bytes()
	p.cache.put(path, raw)
	return raw, nil
}

// fillMissingTags reads embedded tags as a last fallback when ffprobe
// reported none. Failures are ignored; the record stays as probed.
func (p *FFProbe) fillMissingTags(record *types.TrackRecord, path string) {
	if record.Title != "" || record.Artist != "" || record.Album != "" {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		p.log.Debug("embedded tag fallback failed", zap.String("path", path), zap.Error(err))
		return
	}

	record.Title = meta.Title()
	record.Artist = meta.Artist()
	record.Album = meta.Album()
	if record.Genre == "" {
		record.Genre = meta.Genre()
	}
	if record.Year == nil {
		if y := meta.Year(); y != 0 {
			record.Year = &y
		}
	}
}

// parseProbeOutput converts raw ffprobe JSON into a track record.
// Numeric fields that fail to parse fold to nil instead of failing the
// whole probe; a missing streams or format section does fail it.
func parseProbeOutput(raw []byte, path string) (*types.TrackRecord, error) {
	var out struct {
		Streams []map[string]any `json:"streams"`
		Format  map[string]any   `json:"format"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, types.NewProbeError(path, fmt.Errorf("invalid probe output: %w", err))
	}
	if len(out.Streams) == 0 {
		return nil, types.NewProbeError(path, fmt.Errorf("no audio stream found"))
	}
	if len(out.Format) == 0 {
		return nil, types.NewProbeError(path, fmt.Errorf("no format section found"))
	}

	stream := lowerKeys(out.Streams[0])
	format := lowerKeys(out.Format)

	// Stream tags first, format tags override: ffprobe reports
	// container-level tags under format for most audio files.
	tags := lowerKeys(mapField(stream, "tags"))
	for k, v := range lowerKeys(mapField(format, "tags")) {
		tags[k] = v
	}

	record := &types.TrackRecord{
		Type:       "track",
		Codec:      stringField(stream, "codec_name"),
		Format:     firstToken(stringField(format, "format_name")),
		Size:       int64Field(format, "size"),
		BitRate:    intField(format, "bit_rate"),
		SampleRate: intField(stream, "sample_rate"),
		BitDepth:   bitDepthField(stream),
		Channels:   intField(stream, "channels"),
		Duration:   durationField(format, "duration"),
		Title:      tagChain(tags, "title", "name"),
		Album:      tagChain(tags, "album"),
		Artist:     tagChain(tags, "artist", "album_artist", "composer"),
		Genre:      tagChain(tags, "genre"),
		Year:       parseYear(tagChain(tags, "date", "year")),
	}
	return record, nil
}

// lowerKeys copies m with all keys lower-cased. A nil map yields an
// empty one.
func lowerKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

func mapField(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// numericField returns the value under key as a string, accepting both
// JSON strings and numbers: ffprobe reports most numerics as strings.
func numericField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func intField(m map[string]any, key string) *int {
	n, err := strconv.Atoi(numericField(m, key))
	if err != nil {
		return nil
	}
	return &n
}

func int64Field(m map[string]any, key string) *int64 {
	n, err := strconv.ParseInt(numericField(m, key), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// durationField parses a fractional-seconds string into whole seconds.
func durationField(m map[string]any, key string) *int {
	f, err := strconv.ParseFloat(numericField(m, key), 64)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}

// bitDepthField prefers bits_per_raw_sample, which lossless codecs
// report, over bits_per_sample, which is often zero for lossy ones.
func bitDepthField(stream map[string]any) *int {
	if n := intField(stream, "bits_per_raw_sample"); n != nil && *n > 0 {
		return n
	}
	if n := intField(stream, "bits_per_sample"); n != nil && *n > 0 {
		return n
	}
	return nil
}

// firstToken returns the first comma-separated token. Some container
// formats report compound names like "mov,mp4,m4a,3gp,3g2,mj2".
func firstToken(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[:i]
	}
	return s
}

// tagChain resolves the first non-empty tag along a fallback chain.
func tagChain(tags map[string]any, keys ...string) string {
	for _, key := range keys {
		if v := stringField(tags, key); v != "" {
			return v
		}
	}
	return ""
}

// parseYear reduces a date or year tag to a four-digit year. Invalid
// or missing dates fold to nil.
func parseYear(s string) *int {
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			y := t.Year()
			return &y
		}
	}
	return nil
}

// probeCache memoizes raw probe output by normalized path. Entries
// expire collectively: the first insert of a batch arms a single timer
// that clears the whole cache when the window ends.
type probeCache struct {
	mu      sync.Mutex
	window  time.Duration
	entries map[string][]byte
	timer   *time.Timer
}

func newProbeCache(window time.Duration) *probeCache {
	return &probeCache{
		window:  window,
		entries: make(map[string][]byte),
	}
}

func (c *probeCache) get(path string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[path]
	return raw, ok
}

func (c *probeCache) put(path string, raw []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = raw
	// Only the first insert in a window arms the clearing timer.
	if c.timer == nil {
		c.timer = time.AfterFunc(c.window, c.clear)
	}
}

func (c *probeCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	c.timer = nil
}
