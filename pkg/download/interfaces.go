//go:generate mockgen -destination=./mocks/manager.go -package=mocks . Manager

package download

import (
	"context"
	"net/url"
)

// Manager downloads remote resources (stats blobs, appstream catalogs) into
// a cache directory with batching, de-duplication and optional integrity
// verification.
type Manager interface {
	// FetchAll downloads all items, respecting Options. It returns a map
	// from Item.ID to absolute local file path.
	FetchAll(ctx context.Context, items []Item, opts Options) (map[string]string, error)

	// Fetch downloads a single item to a deterministic location within
	// opts.Dir and returns the absolute local file path.
	Fetch(ctx context.Context, item Item, opts Options) (string, error)
}

// Item is one remote resource to download.
type Item struct {
	ID       string   // stable identifier, unique within a batch
	URL      *url.URL // source URL
	Checksum string   // optional hex-encoded SHA-256; verified when set
	Filename string   // optional preferred filename; derived when empty
}

// Options control a download batch.
type Options struct {
	Dir         string // destination directory, must be absolute
	Concurrency int    // parallel downloads; <=0 selects a default
}
