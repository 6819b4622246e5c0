package system

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mwelte/appgrid/pkg/errors"
	"github.com/mwelte/appgrid/pkg/fsutil"
)

// InstalledPackage is one record of the installed-package database.
type InstalledPackage struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Pkgnames    []string  `json:"pkgnames,omitempty"`
	InstalledAt time.Time `json:"installed_at,omitzero"`
	Automatic   bool      `json:"automatic,omitempty"`
}

// InstalledDB is a JSON-backed store of the locally installed packages.
// Loading replaces the content wholesale; reads are safe concurrently with
// a save.
type InstalledDB struct {
	FormatVersion string             `json:"format_version"`
	LastUpdate    time.Time          `json:"last_update"`
	Packages      []InstalledPackage `json:"packages"`
	mu            sync.RWMutex
}

// NewInstalledDB creates an empty database.
func NewInstalledDB() *InstalledDB {
	return &InstalledDB{FormatVersion: "1", LastUpdate: time.Now()}
}

// Load reads the database file. A missing file leaves the database empty.
func (db *InstalledDB) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(errors.ErrCatalogNotFound, "read %s: %v", path, err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if err := json.Unmarshal(data, db); err != nil {
		return errors.Wrapf(errors.ErrCatalogParse, "parse %s: %v", path, err)
	}
	return nil
}

// Save writes the database atomically: temp file in the target directory,
// then rename.
func (db *InstalledDB) Save(path string) error {
	db.mu.RLock()
	data, err := json.MarshalIndent(db, "", "  ")
	db.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := fsutil.EnsureDir(dir); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "installed-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return os.Chmod(path, fsutil.FileModeDefault)
}

// All returns a copy of the package list.
func (db *InstalledDB) All() []InstalledPackage {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]InstalledPackage, len(db.Packages))
	copy(out, db.Packages)
	return out
}

// Find returns the record for a package name, or nil.
func (db *InstalledDB) Find(name string) *InstalledPackage {
	db.mu.RLock()
	defer db.mu.RUnlock()
	for i := range db.Packages {
		if db.Packages[i].Name == name {
			pkg := db.Packages[i]
			return &pkg
		}
	}
	return nil
}

// Add inserts or replaces a record and bumps the update time.
func (db *InstalledDB) Add(pkg InstalledPackage) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i := range db.Packages {
		if db.Packages[i].Name == pkg.Name {
			db.Packages[i] = pkg
			db.LastUpdate = time.Now()
			return
		}
	}
	db.Packages = append(db.Packages, pkg)
	db.LastUpdate = time.Now()
}
