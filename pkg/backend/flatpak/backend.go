// Package flatpak implements the flatpak catalog backend. Each installation
// (user or system) contributes one backend instance reading the appstream
// catalogs of its configured remotes plus a deployment listing for the
// installed set.
package flatpak

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

const (
	appstreamDirName = "appstream"
	refsFileName     = "installed.refs"
	iconSize         = "64x64"
)

// Backend serves one flatpak installation root. Load must run before the
// backend is queried; after that the backend is read-only.
type Backend struct {
	name   string
	root   string
	arch   string
	caches []*backend.InfoCache

	// catalogs keyed by remote name, for installed/updates resolution.
	catalogs map[string]*CatalogData
}

var _ backend.Backend = (*Backend)(nil)

// New creates a backend over an installation root. The expected layout is
// <root>/appstream/<remote>/<arch>/appstream.xml(.gz) with cached icons
// under icons/<size>/ next to the catalog, and <root>/installed.refs.
func New(name, root, arch string) *Backend {
	return &Backend{
		name:     name,
		root:     root,
		arch:     arch,
		catalogs: make(map[string]*CatalogData),
	}
}

// Name returns the backend's registry name.
func (b *Backend) Name() string {
	return b.name
}

// Load parses every remote's appstream catalog. A remote whose catalog is
// missing or malformed is logged and skipped; the others still load. Load
// only fails when the appstream directory itself cannot be read.
func (b *Backend) Load() error {
	dir := filepath.Join(b.root, appstreamDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		remote := entry.Name()
		data, err := b.loadRemote(remote)
		if err != nil {
			logger.Warn("skipping flatpak remote", logger.Fields{
				"backend": b.name,
				"remote":  remote,
				"error":   err.Error(),
			})
			continue
		}
		b.catalogs[remote] = data
		b.caches = append(b.caches, b.newCache(remote, data))
		logger.Debug("loaded flatpak remote", logger.Fields{
			"backend": b.name,
			"remote":  remote,
			"apps":    len(data.Infos),
		})
	}
	return nil
}

func (b *Backend) loadRemote(remote string) (*CatalogData, error) {
	base := filepath.Join(b.root, appstreamDirName, remote, b.arch)
	path := filepath.Join(base, "appstream.xml.gz")
	if _, err := os.Stat(path); err != nil {
		path = filepath.Join(base, "appstream.xml")
	}
	return ParseAppstreamFile(path)
}

func (b *Backend) newCache(remote string, data *CatalogData) *backend.InfoCache {
	iconDir := filepath.Join(b.root, appstreamDirName, remote, b.arch, "icons", iconSize)
	for _, info := range data.Infos {
		info.SourceID = remote
		info.SourceName = sourceName(remote)
	}
	return &backend.InfoCache{
		SourceID:   remote,
		SourceName: sourceName(remote),
		Infos:      data.Infos,
		Addons:     data.Addons,
		IconPath: func(info *model.AppInfo) string {
			if info.Icon == "" {
				return ""
			}
			return filepath.Join(iconDir, info.Icon)
		},
	}
}

// sourceName derives a display name from a remote identifier.
func sourceName(remote string) string {
	if remote == "" {
		return remote
	}
	return strings.ToUpper(remote[:1]) + remote[1:]
}

// InfoCaches returns one cache per loaded remote.
func (b *Backend) InfoCaches() []*backend.InfoCache {
	return b.caches
}

// Installed lists the deployed applications from the refs file. Runtime
// deployments are not applications and are excluded.
func (b *Backend) Installed() ([]model.Package, error) {
	refs, err := ParseRefsFile(filepath.Join(b.root, refsFileName))
	if err != nil {
		return nil, err
	}
	var packages []model.Package
	for _, ref := range refs {
		if ref.Kind != "app" {
			continue
		}
		packages = append(packages, model.Package{
			ID:   ref.ID,
			Info: b.lookupInfo(ref),
		})
	}
	return packages, nil
}

// Updates lists the deployed applications whose catalog carries a newer
// release than the deployed version. Versions that do not parse are skipped
// rather than guessed about.
func (b *Backend) Updates() ([]model.Package, error) {
	refs, err := ParseRefsFile(filepath.Join(b.root, refsFileName))
	if err != nil {
		return nil, err
	}
	var packages []model.Package
	for _, ref := range refs {
		if ref.Kind != "app" || ref.Version == "" {
			continue
		}
		info := b.catalogInfo(ref.Remote, ref.ID)
		if info == nil {
			continue
		}
		release := info.LatestRelease()
		if release == nil || !versionNewer(release.Version, ref.Version) {
			continue
		}
		packages = append(packages, model.Package{ID: ref.ID, Info: info})
	}
	return packages, nil
}

// lookupInfo resolves the catalog record for a deployed ref, synthesizing a
// minimal one for apps installed from a remote we have no catalog for.
func (b *Backend) lookupInfo(ref Ref) *model.AppInfo {
	if info := b.catalogInfo(ref.Remote, ref.ID); info != nil {
		return info
	}
	return &model.AppInfo{
		Name:       ref.ID.String(),
		Kind:       model.KindDesktopApplication,
		SourceID:   ref.Remote,
		SourceName: sourceName(ref.Remote),
	}
}

func (b *Backend) catalogInfo(remote string, id appid.AppId) *model.AppInfo {
	data, ok := b.catalogs[remote]
	if !ok {
		return nil
	}
	return data.Infos[id]
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
