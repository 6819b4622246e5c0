// Package cache manages the on-disk cache: downloaded catalogs under
// catalogs/ and the stats documents under stats/.
package cache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/mwelte/appgrid/pkg/errors"
	"github.com/mwelte/appgrid/pkg/fsutil"
)

const (
	// CatalogsSubdir holds synced backend catalogs.
	CatalogsSubdir = "catalogs"
	// StatsSubdir holds the fetched stats documents and their metadata.
	StatsSubdir = "stats"
)

// Manager defines the interface for cache management operations.
type Manager interface {
	Clean(options CleanOptions) (*CleanResult, error)
	GetInfo() (*Info, error)
	GetDirectory() string
	StatsDir() string
	CatalogsDir() string
}

// CleanOptions specifies what to clean from the cache.
type CleanOptions struct {
	All      bool
	Catalogs bool
	Stats    bool
}

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	TotalFreed    int64
	CatalogsFreed int64
	StatsFreed    int64
}

// Info represents cache information.
type Info struct {
	Directory    string
	TotalSize    int64
	CatalogSize  int64
	CatalogFiles int
	StatsSize    int64
	StatsFiles   int
	LastCleaned  time.Time
}

// DefaultManager implements the Manager interface for cache operations.
type DefaultManager struct {
	directory string
}

// NewManager creates a cache manager over an explicit directory.
func NewManager(directory string) *DefaultManager {
	return &DefaultManager{directory: directory}
}

// NewDefaultManager creates a cache manager over the user cache directory,
// creating it if needed.
func NewDefaultManager() (*DefaultManager, error) {
	cacheDir, err := fsutil.GetCacheDir()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCacheDirectory, err.Error())
	}
	if err := fsutil.EnsureDir(cacheDir); err != nil {
		return nil, errors.Wrap(errors.ErrCacheDirectory, err.Error())
	}
	return NewManager(cacheDir), nil
}

// GetDirectory returns the cache root.
func (cm *DefaultManager) GetDirectory() string {
	return cm.directory
}

// StatsDir returns the stats subdirectory.
func (cm *DefaultManager) StatsDir() string {
	return filepath.Join(cm.directory, StatsSubdir)
}

// CatalogsDir returns the catalogs subdirectory.
func (cm *DefaultManager) CatalogsDir() string {
	return filepath.Join(cm.directory, CatalogsSubdir)
}

// Clean removes cached files according to the specified options. With no
// specific subtree selected everything is cleaned.
func (cm *DefaultManager) Clean(options CleanOptions) (*CleanResult, error) {
	if !options.Catalogs && !options.Stats {
		options.All = true
	}

	result := &CleanResult{}
	if options.All || options.Catalogs {
		size, err := cm.cleanSubdir(CatalogsSubdir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCacheClean, err.Error())
		}
		result.CatalogsFreed = size
		result.TotalFreed += size
	}
	if options.All || options.Stats {
		size, err := cm.cleanSubdir(StatsSubdir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCacheClean, err.Error())
		}
		result.StatsFreed = size
		result.TotalFreed += size
	}
	return result, nil
}

// GetInfo returns size and file counts per subtree.
func (cm *DefaultManager) GetInfo() (*Info, error) {
	info := &Info{Directory: cm.directory}

	catalogSize, catalogFiles, err := dirSizeAndFiles(cm.CatalogsDir())
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCacheInfo, err.Error())
	}
	info.CatalogSize = catalogSize
	info.CatalogFiles = catalogFiles

	statsSize, statsFiles, err := dirSizeAndFiles(cm.StatsDir())
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCacheInfo, err.Error())
	}
	info.StatsSize = statsSize
	info.StatsFiles = statsFiles

	info.TotalSize = catalogSize + statsSize
	return info, nil
}

func (cm *DefaultManager) cleanSubdir(subdir string) (int64, error) {
	dir := filepath.Join(cm.directory, subdir)
	size, _, err := dirSizeAndFiles(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	if err := os.RemoveAll(dir); err != nil {
		return 0, err
	}
	return size, nil
}

func dirSizeAndFiles(dir string) (int64, int, error) {
	var size int64
	var files int
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
			files++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return size, files, nil
}
