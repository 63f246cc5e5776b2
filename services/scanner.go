package services

import (
	"context"
	"io/fs"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tonearm/types"
)

// ResultCollection is an append-only list of discovered URIs. A scan
// keeps appending from background traversals while callers take
// snapshots, so both sides are safe to use concurrently.
type ResultCollection struct {
	mu   sync.RWMutex
	uris []string
}

// NewResultCollection creates an empty result collection
func NewResultCollection() *ResultCollection {
	return &ResultCollection{}
}

// Append adds a discovered URI to the collection
func (rc *ResultCollection) Append(uri string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.uris = append(rc.uris, uri)
}

// Snapshot returns a copy of the URIs discovered so far
func (rc *ResultCollection) Snapshot() []string {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	out := make([]string, len(rc.uris))
	copy(out, rc.uris)
	return out
}

// Len returns the number of URIs discovered so far
func (rc *ResultCollection) Len() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return len(rc.uris)
}

// Notifier receives scan lifecycle events. Implementations must not
// block: events are emitted from traversal callbacks.
type Notifier interface {
	ScanEvent(msg types.ScanMessage)
}

// Scanner discovers playable files under configured roots. Traversal is
// delegated to fastwalk; candidates pass the extension filter and are
// confirmed by the prober before their URI lands in the collection.
type Scanner struct {
	prober   Prober
	log      *zap.Logger
	notifier Notifier // optional

	mu  sync.Mutex
	job *types.ScanJob
}

// NewScanner creates a scanner. notifier may be nil.
func NewScanner(prober Prober, logger *zap.Logger, notifier Notifier) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{prober: prober, log: logger, notifier: notifier}
}

// Scan fires one traversal goroutine per root and returns the result
// collection immediately; callers observe it growing rather than
// awaiting a final list. A failing root is recorded and logged without
// aborting its siblings. There is no mid-scan cancellation beyond ctx.
func (s *Scanner) Scan(ctx context.Context, roots []string, includeVideo bool) *ResultCollection {
	rc := NewResultCollection()

	job := &types.ScanJob{
		ID:        uuid.New().String(),
		Roots:     roots,
		Status:    types.ScanStatusRunning,
		StartedAt: time.Now(),
	}
	s.mu.Lock()
	s.job = job
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, root := range roots {
		wg.Add(1)
		go func(root string) {
			defer wg.Done()
			s.scanRoot(ctx, job.ID, root, includeVideo, rc)
		}(root)
	}

	go func() {
		wg.Wait()
		now := time.Now()
		s.mu.Lock()
		job.Status = types.ScanStatusCompleted
		job.CompletedAt = &now
		s.mu.Unlock()
		s.notify(types.ScanMessage{
			ScanID:     job.ID,
			Type:       "complete",
			Discovered: rc.Len(),
			Timestamp:  now,
		})
		s.log.Info("library scan complete",
			zap.String("scanId", job.ID),
			zap.Int("discovered", rc.Len()))
	}()

	return rc
}

// Job returns a snapshot of the most recent scan, or nil before any
// scan has started.
func (s *Scanner) Job() *types.ScanJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return nil
	}
	snapshot := *s.job
	snapshot.Roots = append([]string(nil), s.job.Roots...)
	snapshot.FailedRoots = append([]string(nil), s.job.FailedRoots...)
	return &snapshot
}

func (s *Scanner) scanRoot(ctx context.Context, scanID, root string, includeVideo bool, rc *ResultCollection) {
	conf := &fastwalk.Config{Follow: true}
	err := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				// An unreadable root fails the whole traversal.
				return err
			}
			// Per-file failures are isolated: log and keep walking.
			s.log.Warn("scan: cannot access path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !IsPlayableCandidate(path, includeVideo) {
			return nil
		}
		if !s.prober.Supported(ctx, path) {
			return nil
		}

		uri, err := ToURI(path)
		if err != nil {
			s.log.Warn("scan: cannot build uri", zap.String("path", path), zap.Error(err))
			return nil
		}

		rc.Append(uri)
		s.recordDiscovery(rc.Len())
		s.notify(types.ScanMessage{
			ScanID:     scanID,
			Type:       "discovered",
			URI:        uri,
			Root:       root,
			Discovered: rc.Len(),
			Timestamp:  time.Now(),
		})
		return nil
	})

	if err != nil {
		s.log.Error("scan: root traversal failed", zap.String("root", root), zap.Error(err))
		s.mu.Lock()
		s.job.FailedRoots = append(s.job.FailedRoots, root)
		s.mu.Unlock()
		s.notify(types.ScanMessage{
			ScanID:    scanID,
			Type:      "root_failed",
			Root:      root,
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
	}
}

func (s *Scanner) recordDiscovery(total int) {
	s.mu.Lock()
	s.job.Discovered = total
	s.mu.Unlock()
}

func (s *Scanner) notify(msg types.ScanMessage) {
	if s.notifier != nil {
		s.notifier.ScanEvent(msg)
	}
}
