package services

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"tonearm/types"
)

// LocalFiles is the public surface of the local-filesystem media
// source. It composes the URI codec, existence checker, prober, and
// scanner; all state lives on the instance.
type LocalFiles struct {
	paths        []string
	includeVideo bool
	prober       Prober
	scanner      *Scanner
	log          *zap.Logger

	listOnce    sync.Once
	list        *ResultCollection
	noPathsOnce sync.Once
}

// NewLocalFiles creates the facade over the configured root paths.
func NewLocalFiles(paths []string, includeVideo bool, prober Prober, scanner *Scanner, logger *zap.Logger) *LocalFiles {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalFiles{
		paths:        paths,
		includeVideo: includeVideo,
		prober:       prober,
		scanner:      scanner,
		log:          logger,
	}
}

// CanPlayURI reports whether the target of a file: URI exists. A bare
// absolute path is permitted without the scheme and checked leniently:
// a missing file yields (false, nil) instead of an error. A file: URI
// whose target is absent fails with an EFAULT-coded error annotated
// with the original URI. Any other input shape is not playable.
func (lf *LocalFiles) CanPlayURI(ctx context.Context, uri string) (bool, error) {
	if uri == "" {
		return false, types.NewInvalidInput("uri must be a non-empty string")
	}

	switch {
	case strings.HasPrefix(uri, uriPrefix):
		path, err := ToPath(uri)
		if err != nil {
			return false, err
		}
		if err := MustExist(path, KindFile); err != nil {
			return false, types.NewNotFound(uri, err)
		}
		return true, nil

	case strings.HasPrefix(uri, "/"):
		return Exists(uri, KindFile), nil

	default:
		return false, nil
	}
}

// GetURIDetails resolves a URI to its library entry: the fixed root
// folder for file:/, or a probed track record otherwise. Callers must
// validate the target with CanPlayURI first; failures here are tagged
// ESEQ to distinguish sequence misuse from genuine I/O trouble.
func (lf *LocalFiles) GetURIDetails(ctx context.Context, uri string) (types.LibraryEntry, error) {
	path, err := ToPath(uri)
	if err != nil {
		return nil, err
	}

	if path == "/" {
		return types.RootFolder(), nil
	}

	record, err := lf.prober.Probe(ctx, path)
	if err != nil {
		return nil, types.WrapSequence(uri, err)
	}

	record.Contents = path
	if canonical, err := ToURI(path); err == nil {
		record.URI = canonical
	}
	return record, nil
}

// GetStream resolves the filesystem path the playback pipeline should
// open for a track entry. The path is re-checked against the
// filesystem: the file may have vanished between detail retrieval and
// the stream request.
func (lf *LocalFiles) GetStream(entry types.LibraryEntry) (string, error) {
	track, ok := entry.(*types.TrackRecord)
	if !ok || track == nil {
		return "", types.NewInvalidInput("entry must be a track record")
	}

	if err := MustExist(track.Contents, KindFile); err != nil {
		return "", types.WrapSequence(track.URI, err)
	}
	return track.Contents, nil
}

// GetURIList returns the collection of discovered track URIs. The
// first call triggers a background scan of the configured paths and
// the same, possibly still growing, collection is returned for the
// lifetime of the instance. Without configured paths an empty static
// collection is returned instead.
func (lf *LocalFiles) GetURIList(ctx context.Context) *ResultCollection {
	if len(lf.paths) == 0 {
		lf.noPathsOnce.Do(func() {
			lf.log.Info("no media paths configured, library list is empty")
		})
		return NewResultCollection()
	}

	lf.listOnce.Do(func() {
		// The scan outlives the triggering call (often an HTTP request
		// whose context dies with the response), so detach cancellation.
		lf.list = lf.scanner.Scan(context.WithoutCancel(ctx), lf.paths, lf.includeVideo)
	})
	return lf.list
}

// ScanStatus returns a snapshot of the most recent scan, or nil before
// any scan has started.
func (lf *LocalFiles) ScanStatus() *types.ScanJob {
	if lf.scanner == nil {
		return nil
	}
	return lf.scanner.Job()
}

// MediaPaths returns the configured root paths
func (lf *LocalFiles) MediaPaths() []string {
	return lf.paths
}
