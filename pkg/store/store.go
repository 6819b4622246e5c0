// Package store aggregates the per-backend catalogs into the shared AppId to
// entry-list map consumed by every query. The map is rebuilt wholesale when a
// catalog or the installed set changes and published with a single atomic
// swap, so in-flight queries keep reading the snapshot they captured.
package store

import (
	"sort"
	"sync/atomic"

	"github.com/mwelte/appgrid/internal/logger"
	"github.com/mwelte/appgrid/pkg/appid"
	"github.com/mwelte/appgrid/pkg/backend"
	"github.com/mwelte/appgrid/pkg/model"
	"github.com/mwelte/appgrid/pkg/stats"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// StatsProvider hands out the current stats snapshot.
type StatsProvider interface {
	Current() *stats.Snapshot
}

// Store owns the aggregated application map.
type Store struct {
	registry *backend.Registry
	stats    StatsProvider
	apps     atomic.Pointer[model.Apps]
}

// New creates a store over the given backends. The map starts empty; call
// Rebuild once the backend catalogs are loaded.
func New(registry *backend.Registry, statsProvider StatsProvider) *Store {
	s := &Store{registry: registry, stats: statsProvider}
	empty := model.Apps{}
	s.apps.Store(&empty)
	return s
}

// Apps returns the current aggregated map. The returned map and everything
// reachable from it is read-only.
func (s *Store) Apps() model.Apps {
	return *s.apps.Load()
}

// Sources returns every backend entry known for an AppId, in preference
// order. Nil when the id is unknown.
func (s *Store) Sources(id appid.AppId) []model.AppEntry {
	return s.Apps()[id]
}

// Rebuild constructs a fresh map from the backend catalogs and installed
// sets and atomically replaces the published one. A backend whose installed
// listing fails is logged and treated as having nothing installed; its
// catalog entries still contribute. Rebuild itself cannot fail.
func (s *Store) Rebuild() {
	snapshot := s.stats.Current()
	apps := make(model.Apps)

	s.registry.Each(func(name string, b backend.Backend) {
		installed, err := b.Installed()
		if err != nil {
			logger.Error("failed to list installed packages", logger.Fields{
				"backend": name,
				"error":   err.Error(),
			})
			installed = nil
		}

		for _, cache := range b.InfoCaches() {
			for id, info := range cache.Infos {
				enriched := info.WithStats(snapshot.Downloads(id), snapshot.Compat(id))
				apps[id] = append(apps[id], model.AppEntry{
					BackendName: name,
					Info:        enriched,
					Installed:   IsInstalled(id, enriched, installed),
				})
			}
		}

		mergeUncataloged(apps, name, installed, snapshot)
	})

	sorter := newEntrySorter()
	for id, entries := range apps {
		sorter.sort(id, entries)
	}

	s.apps.Store(&apps)
}

// mergeUncataloged inserts installed packages that no catalog of their
// backend covers, so manually installed software still shows up.
func mergeUncataloged(apps model.Apps, backendName string, installed []model.Package, snapshot *stats.Snapshot) {
	for _, pkg := range installed {
		if pkg.Info == nil {
			continue
		}
		covered := false
		for _, entry := range apps[pkg.ID] {
			if entry.BackendName == backendName {
				covered = true
				break
			}
		}
		if covered {
			continue
		}
		info := pkg.Info.WithStats(snapshot.Downloads(pkg.ID), snapshot.Compat(pkg.ID))
		apps[pkg.ID] = append(apps[pkg.ID], model.AppEntry{
			BackendName: backendName,
			Info:        info,
			Installed:   true,
		})
	}
}

// IsInstalled reports whether a catalog record matches one of the backend's
// installed packages. Both branches require the installed package and the
// record to come from the same source: an exact id match wins; for system
// identifiers declaring package-name aliases, the record counts as installed
// when every alias is covered by an installed package. The alias fallback
// never applies to reverse-DNS ids.
func IsInstalled(id appid.AppId, info *model.AppInfo, installed []model.Package) bool {
	for i := range installed {
		pkg := &installed[i]
		if pkg.ID == id {
			if pkg.Info == nil || pkg.Info.SourceID == info.SourceID {
				return true
			}
			continue
		}
		if id.IsSystem() && len(info.Pkgnames) > 0 && pkg.Info != nil &&
			pkg.Info.SourceID == info.SourceID &&
			subset(info.Pkgnames, pkg.Info.Pkgnames) {
			return true
		}
	}
	return false
}

func subset(needles, haystack []string) bool {
	for _, needle := range needles {
		found := false
		for _, hay := range haystack {
			if needle == hay {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// entrySorter orders the entry list of one AppId: installed first, then by
// descending priority, then locale-aware source id and backend name. The
// collator is not safe for concurrent use, so each rebuild gets its own.
type entrySorter struct {
	collator *collate.Collator
}

func newEntrySorter() *entrySorter {
	return &entrySorter{collator: collate.New(language.Und, collate.Loose)}
}

func (e *entrySorter) sort(id appid.AppId, entries []model.AppEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := &entries[i], &entries[j]
		if a.Installed != b.Installed {
			return a.Installed
		}
		ap := entryPriority(a.BackendName, a.Info.SourceID, id)
		bp := entryPriority(b.BackendName, b.Info.SourceID, id)
		if ap != bp {
			return ap > bp
		}
		if cmp := e.collator.CompareString(a.Info.SourceID, b.Info.SourceID); cmp != 0 {
			return cmp < 0
		}
		return e.collator.CompareString(a.BackendName, b.BackendName) < 0
	})
}
