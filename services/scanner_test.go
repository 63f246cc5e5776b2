package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tonearm/types"
)

// stubProber confirms files by extension and serves canned records,
// standing in for the ffprobe binary in tests.
type stubProber struct {
	supportedExt string
	record       types.TrackRecord
	err          error
}

func (s *stubProber) Probe(ctx context.Context, target string) (*types.TrackRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	record := s.record
	return &record, nil
}

func (s *stubProber) Supported(ctx context.Context, target string) bool {
	return strings.HasSuffix(target, s.supportedExt)
}

// recordingNotifier collects scan events for assertions
type recordingNotifier struct {
	mu     sync.Mutex
	events []types.ScanMessage
}

func (n *recordingNotifier) ScanEvent(msg types.ScanMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, msg)
}

func (n *recordingNotifier) byType(msgType string) []types.ScanMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []types.ScanMessage
	for _, e := range n.events {
		if e.Type == msgType {
			out = append(out, e)
		}
	}
	return out
}

func seedLibrary(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "album"), 0755))
	for _, name := range []string{"album/01.mp3", "album/02.mp3", "album/cover.jpg", "notes.txt", "demo.weird"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	return dir
}

// TestScanDiscoversConfirmedFiles tests the full filter pipeline:
// extension pre-filter, prober confirmation, URI encoding
func TestScanDiscoversConfirmedFiles(t *testing.T) {
	dir := seedLibrary(t)
	prober := &stubProber{supportedExt: ".mp3"}
	scanner := NewScanner(prober, zap.NewNop(), nil)

	rc := scanner.Scan(context.Background(), []string{dir}, false)

	require.Eventually(t, func() bool {
		job := scanner.Job()
		return job != nil && job.Status == types.ScanStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	// cover.jpg fails the extension filter, notes.txt is text, and
	// demo.weird survives the filter but the prober rejects it.
	uris := rc.Snapshot()
	assert.Len(t, uris, 2)
	for _, uri := range uris {
		assert.True(t, strings.HasPrefix(uri, "file:/"))
		assert.True(t, strings.HasSuffix(uri, ".mp3"))
	}
}

// TestScanEmitsLifecycleEvents tests discovery and completion messages
func TestScanEmitsLifecycleEvents(t *testing.T) {
	dir := seedLibrary(t)
	prober := &stubProber{supportedExt: ".mp3"}
	notifier := &recordingNotifier{}
	scanner := NewScanner(prober, zap.NewNop(), notifier)

	scanner.Scan(context.Background(), []string{dir}, false)

	require.Eventually(t, func() bool {
		return len(notifier.byType("complete")) == 1
	}, 5*time.Second, 10*time.Millisecond)

	discovered := notifier.byType("discovered")
	assert.Len(t, discovered, 2)
	for _, msg := range discovered {
		assert.NotEmpty(t, msg.ScanID)
		assert.NotEmpty(t, msg.URI)
		assert.Equal(t, dir, msg.Root)
	}

	complete := notifier.byType("complete")[0]
	assert.Equal(t, 2, complete.Discovered)
}

// TestScanIsolatesFailingRoot tests that a bad root does not abort its
// siblings
func TestScanIsolatesFailingRoot(t *testing.T) {
	dir := seedLibrary(t)
	missing := filepath.Join(dir, "does-not-exist")
	prober := &stubProber{supportedExt: ".mp3"}
	notifier := &recordingNotifier{}
	scanner := NewScanner(prober, zap.NewNop(), notifier)

	rc := scanner.Scan(context.Background(), []string{dir, missing}, false)

	require.Eventually(t, func() bool {
		job := scanner.Job()
		return job != nil && job.Status == types.ScanStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, 2, rc.Len())

	job := scanner.Job()
	require.NotNil(t, job)
	assert.Equal(t, []string{missing}, job.FailedRoots)
	assert.Len(t, notifier.byType("root_failed"), 1)
}

// TestScanJobSnapshot tests that Job returns copies, not live state
func TestScanJobSnapshot(t *testing.T) {
	dir := seedLibrary(t)
	scanner := NewScanner(&stubProber{supportedExt: ".mp3"}, zap.NewNop(), nil)
	scanner.Scan(context.Background(), []string{dir}, false)

	require.Eventually(t, func() bool {
		job := scanner.Job()
		return job != nil && job.Status == types.ScanStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	job := scanner.Job()
	require.NotNil(t, job)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, 2, job.Discovered)
	require.NotNil(t, job.CompletedAt)
	assert.False(t, job.StartedAt.IsZero())

	// Mutating the snapshot must not leak into the scanner.
	job.Roots[0] = "tampered"
	fresh := scanner.Job()
	assert.Equal(t, dir, fresh.Roots[0])
}

// TestResultCollectionConcurrentUse tests appenders racing snapshotters
func TestResultCollectionConcurrentUse(t *testing.T) {
	rc := NewResultCollection()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				rc.Append("file:/music/track.mp3")
				rc.Snapshot()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, rc.Len())
	assert.Len(t, rc.Snapshot(), 800)
}
