package stats

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/mwelte/appgrid/internal/logger"
	"github.com/mwelte/appgrid/pkg/appid"
	"github.com/mwelte/appgrid/pkg/compat"
	"github.com/mwelte/appgrid/pkg/download"
	pkgerrors "github.com/mwelte/appgrid/pkg/errors"
)

const (
	downloadsFilename  = "downloads.json"
	compatFilename     = "compatibility.json"
	metadataFilename   = "metadata.json"
	remoteMetaFilename = "metadata.remote.json"

	// cacheMaxAge bounds how long cached stats are trusted when the remote
	// metadata cannot be reached.
	cacheMaxAge = 30 * 24 * time.Hour
)

// URLs are the remote locations of the stats documents.
type URLs struct {
	Downloads     *url.URL
	Compatibility *url.URL
	Metadata      *url.URL
}

// downloadsDoc is the wire format of the download-count document.
type downloadsDoc struct {
	GeneratedAt int64             `json:"generated_at"`
	Downloads   map[string]uint64 `json:"downloads"`
}

// compatDoc is the wire format of the compatibility document.
type compatDoc struct {
	GeneratedAt   int64                                  `json:"generated_at"`
	Compatibility map[string]compat.WaylandCompatibility `json:"compatibility"`
}

// metadataDoc announces the generation timestamp of the remote documents.
type metadataDoc struct {
	GeneratedAt int64 `json:"generated_at"`
}

// Service owns the current stats snapshot and refreshes it from the remote
// documents through the download manager. The snapshot handle is swapped
// atomically; readers in flight keep the snapshot they captured.
type Service struct {
	fetcher  download.Manager
	cacheDir string
	urls     URLs
	current  atomic.Pointer[Snapshot]
}

// NewService creates a stats service caching under cacheDir. The service
// starts with an empty snapshot; call LoadCached or Refresh to populate it.
func NewService(fetcher download.Manager, cacheDir string, urls URLs) *Service {
	s := &Service{fetcher: fetcher, cacheDir: cacheDir, urls: urls}
	s.current.Store(EmptySnapshot())
	return s
}

// Current returns the active snapshot. Never nil.
func (s *Service) Current() *Snapshot {
	return s.current.Load()
}

// LoadCached builds a snapshot from the cached documents, if present.
// Missing or malformed cache files leave the current snapshot in place.
func (s *Service) LoadCached() *Snapshot {
	snapshot, err := s.parseCached()
	if err != nil {
		logger.Debug("no usable cached stats", logger.Fields{"error": err.Error()})
		return s.current.Load()
	}
	s.current.Store(snapshot)
	logger.Debug("loaded cached stats", logger.Fields{"ids": snapshot.Len()})
	return snapshot
}

// Refresh downloads the stats documents when the remote copy is newer than
// the cache (or the cache is older than cacheMaxAge), then swaps in the new
// snapshot. A failed refresh keeps the previous snapshot and returns the
// error; callers treat it as non-fatal.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	if !s.shouldDownload(ctx) {
		return s.LoadCached(), nil
	}

	items := []download.Item{
		{ID: "downloads", URL: s.urls.Downloads, Filename: downloadsFilename},
		{ID: "compatibility", URL: s.urls.Compatibility, Filename: compatFilename},
	}
	if _, err := s.fetcher.FetchAll(ctx, items, download.Options{Dir: s.cacheDir, Concurrency: 2}); err != nil {
		return s.current.Load(), pkgerrors.Wrap(err, "failed to fetch stats documents")
	}

	snapshot, err := s.parseCached()
	if err != nil {
		return s.current.Load(), err
	}
	s.current.Store(snapshot)
	s.commitMetadata()
	logger.Info("refreshed stats", logger.Fields{"ids": snapshot.Len()})
	return snapshot, nil
}

// shouldDownload compares the remote metadata generation timestamp against
// the cached copy. Unreachable metadata means download unless the cache is
// demonstrably fresh.
func (s *Service) shouldDownload(ctx context.Context) bool {
	if s.urls.Metadata == nil {
		return s.cacheStale()
	}
	item := download.Item{ID: "metadata", URL: s.urls.Metadata, Filename: remoteMetaFilename}
	path, err := s.fetcher.Fetch(ctx, item, download.Options{Dir: s.cacheDir})
	if err != nil {
		logger.Debug("cannot fetch stats metadata", logger.Fields{"error": err.Error()})
		return s.cacheStale()
	}
	remote, err := readMetadata(path)
	if err != nil {
		return true
	}
	cached, err := readMetadata(filepath.Join(s.cacheDir, metadataFilename))
	if err != nil {
		return true
	}
	return remote.GeneratedAt > cached.GeneratedAt || s.cacheStale()
}

func (s *Service) cacheStale() bool {
	info, err := os.Stat(filepath.Join(s.cacheDir, downloadsFilename))
	if err != nil {
		return true
	}
	return time.Since(info.ModTime()) > cacheMaxAge
}

// commitMetadata promotes the fetched remote metadata to the cached copy.
func (s *Service) commitMetadata() {
	src := filepath.Join(s.cacheDir, remoteMetaFilename)
	if _, err := os.Stat(src); err != nil {
		return
	}
	if err := os.Rename(src, filepath.Join(s.cacheDir, metadataFilename)); err != nil {
		logger.Debug("cannot commit stats metadata", logger.Fields{"error": err.Error()})
	}
}

func (s *Service) parseCached() (*Snapshot, error) {
	downloadsData, err := os.ReadFile(filepath.Join(s.cacheDir, downloadsFilename))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read downloads document")
	}
	var dl downloadsDoc
	if err := json.Unmarshal(downloadsData, &dl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrStatsDecode, err.Error())
	}

	downloads := make(map[appid.AppId]uint64, len(dl.Downloads))
	for raw, count := range dl.Downloads {
		downloads[appid.New(raw)] = count
	}

	// The compatibility document arrives independently; a missing or broken
	// one degrades to downloads-only stats.
	compatibility := make(map[appid.AppId]compat.WaylandCompatibility)
	if compatData, err := os.ReadFile(filepath.Join(s.cacheDir, compatFilename)); err == nil {
		var cd compatDoc
		if err := json.Unmarshal(compatData, &cd); err != nil {
			logger.Warn("malformed compatibility document", logger.Fields{"error": err.Error()})
		} else {
			for raw, wc := range cd.Compatibility {
				compatibility[appid.New(raw)] = wc
			}
		}
	}

	return NewSnapshot(downloads, compatibility, dl.GeneratedAt), nil
}

func readMetadata(path string) (*metadataDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta metadataDoc
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrStatsDecode, err.Error())
	}
	return &meta, nil
}
