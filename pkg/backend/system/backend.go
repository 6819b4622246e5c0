// Package system implements the distro package backend: YAML repository
// catalogs plus a JSON database of locally installed packages.
package system

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/mwelte/appgrid/internal/logger"
	"github.com/mwelte/appgrid/pkg/appid"
	"github.com/mwelte/appgrid/pkg/backend"
	"github.com/mwelte/appgrid/pkg/model"
)

// Backend serves the distro catalogs under one directory and the installed
// database next to them. Load must run before the backend is queried.
type Backend struct {
	name       string
	catalogDir string
	dbPath     string

	caches []*backend.InfoCache
	// byID and byPkgname resolve installed database records back to
	// catalog metadata.
	byID      map[appid.AppId]*model.AppInfo
	byPkgname map[string]*model.AppInfo
	versions  map[appid.AppId]string
	db        *InstalledDB
}

var _ backend.Backend = (*Backend)(nil)

// New creates a backend reading *.yaml catalogs from catalogDir and the
// installed database at dbPath.
func New(name, catalogDir, dbPath string) *Backend {
	return &Backend{
		name:       name,
		catalogDir: catalogDir,
		dbPath:     dbPath,
		byID:       make(map[appid.AppId]*model.AppInfo),
		byPkgname:  make(map[string]*model.AppInfo),
		versions:   make(map[appid.AppId]string),
		db:         NewInstalledDB(),
	}
}

// Name returns the backend's registry name.
func (b *Backend) Name() string {
	return b.name
}

// Load reads every catalog file and the installed database. A malformed
// catalog is logged and skipped; a missing catalog directory or database is
// an empty backend, not an error.
func (b *Backend) Load() error {
	entries, err := os.ReadDir(b.catalogDir)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(b.catalogDir, entry.Name())
		catalog, err := LoadCatalog(path)
		if err != nil {
			logger.Warn("skipping system catalog", logger.Fields{
				"backend": b.name,
				"path":    path,
				"error":   err.Error(),
			})
			continue
		}
		b.addCatalog(catalog)
	}

	return b.db.Load(b.dbPath)
}

func (b *Backend) addCatalog(catalog *Catalog) {
	infos := catalog.Infos()
	for id, info := range infos {
		b.byID[id] = info
		for _, pkgname := range info.Pkgnames {
			b.byPkgname[pkgname] = info
		}
		if release := info.LatestRelease(); release != nil {
			b.versions[id] = release.Version
		}
	}
	b.caches = append(b.caches, &backend.InfoCache{
		SourceID:   catalog.SourceID,
		SourceName: catalog.SourceName,
		Infos:      infos,
		IconPath: func(info *model.AppInfo) string {
			return info.Icon
		},
	})
	logger.Debug("loaded system catalog", logger.Fields{
		"backend": b.name,
		"source":  catalog.SourceID,
		"apps":    len(infos),
	})
}

// InfoCaches returns one cache per loaded catalog.
func (b *Backend) InfoCaches() []*backend.InfoCache {
	return b.caches
}

// Installed lists the packages recorded in the installed database, resolved
// against the catalogs where possible.
func (b *Backend) Installed() ([]model.Package, error) {
	records := b.db.All()
	packages := make([]model.Package, 0, len(records))
	for _, record := range records {
		packages = append(packages, model.Package{
			ID:   appid.New(record.Name),
			Info: b.resolveInfo(record),
		})
	}
	return packages, nil
}

// Updates lists the installed packages whose catalog version is newer than
// the installed one.
func (b *Backend) Updates() ([]model.Package, error) {
	records := b.db.All()
	var packages []model.Package
	for _, record := range records {
		id := appid.New(record.Name)
		candidate, ok := b.versions[id]
		if !ok || record.Version == "" {
			continue
		}
		if !versionNewer(candidate, record.Version) {
			continue
		}
		packages = append(packages, model.Package{ID: id, Info: b.byID[id]})
	}
	return packages, nil
}

// resolveInfo maps an installed record to catalog metadata, trying the
// package name as an id first and the pkgname aliases second. Unknown
// packages get a minimal synthesized record.
func (b *Backend) resolveInfo(record InstalledPackage) *model.AppInfo {
	id := appid.New(record.Name)
	if info, ok := b.byID[id]; ok {
		return info
	}
	if info, ok := b.byPkgname[record.Name]; ok {
		return info
	}
	pkgnames := record.Pkgnames
	if len(pkgnames) == 0 {
		pkgnames = []string{record.Name}
	}
	return &model.AppInfo{
		Name:     record.Name,
		Kind:     model.KindGeneric,
		Pkgnames: pkgnames,
	}
}

func versionNewer(candidate, installed string) bool {
	cv, err := version.NewVersion(candidate)
	if err != nil {
		return false
	}
	iv, err := version.NewVersion(installed)
	if err != nil {
		return false
	}
	return cv.GreaterThan(iv)
}
