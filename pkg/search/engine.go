package search

import (
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/mwelte/appgrid/pkg/appid"
	"github.com/mwelte/appgrid/pkg/backend"
	"github.com/mwelte/appgrid/pkg/compat"
	"github.com/mwelte/appgrid/pkg/model"
	"github.com/mwelte/appgrid/pkg/stats"
)

// Generic runs the shared search pipeline: fan out over the aggregated map,
// score every surviving backend entry per id, keep the best weight, attribute
// the result to the preferred source, filter, sort and resolve icons for the
// first page. The full ranked set is returned; truncation to MaxResults is
// the caller's job.
//
// The pipeline cannot fail: malformed or missing data degrades to exclusion
// or to the worst sort bucket. All inputs are treated as immutable snapshots
// for the duration of the call.
func Generic(
	apps model.Apps,
	registry *backend.Registry,
	snapshot *stats.Snapshot,
	osCodename string,
	score ScoreFunc,
	sortMode SortMode,
	waylandFilter WaylandFilter,
) []SearchResult {
	ids := make([]appid.AppId, 0, len(apps))
	for id := range apps {
		ids = append(ids, id)
	}

	results := fanOut(ids, func(id appid.AppId) (SearchResult, bool) {
		return scoreOne(apps, snapshot, osCodename, score, waylandFilter, id)
	})

	sortResults(results, snapshot, sortMode)
	fillIcons(results, registry)
	return results
}

// scoreOne evaluates a single AppId against the score function. Order of
// evaluation across AppIds is irrelevant; within an id the entry list order
// decides ties (first seen wins on equal weight) and the first entry always
// supplies the displayed record.
func scoreOne(
	apps model.Apps,
	snapshot *stats.Snapshot,
	osCodename string,
	score ScoreFunc,
	waylandFilter WaylandFilter,
	id appid.AppId,
) (SearchResult, bool) {
	entries := apps[id]

	var best Weight
	var scored bool
	for i := range entries {
		entry := &entries[i]
		if skipForeignOrigin(entry, osCodename) {
			continue
		}
		weight, ok := score(id, entry.Info, entry.Installed)
		if !ok {
			continue
		}
		if scored && best.Compare(weight) <= 0 {
			continue
		}
		best = weight
		scored = true
	}
	if !scored || len(entries) == 0 {
		return SearchResult{}, false
	}

	// Display info comes from the preferred source even when a lower-ranked
	// entry produced the winning weight.
	preferred := &entries[0]

	if waylandFilter != FilterAll &&
		!matchesWaylandFilter(waylandFilter, compatOf(id, preferred.Info, snapshot)) {
		return SearchResult{}, false
	}

	return SearchResult{
		BackendName: preferred.BackendName,
		ID:          id,
		Info:        preferred.Info,
		Weight:      best,
	}, true
}

// skipForeignOrigin drops entries published for a different OS release.
// Flatpak-family entries are exempt since they are not release-specific; the
// substring match is deliberately loose.
func skipForeignOrigin(entry *model.AppEntry, osCodename string) bool {
	if backend.IsFlatpakFamily(entry.BackendName) {
		return false
	}
	origin := entry.Info.Origin
	return origin != "" && !strings.Contains(origin, osCodename)
}

func compatOf(id appid.AppId, info *model.AppInfo, snapshot *stats.Snapshot) *compat.WaylandCompatibility {
	if info.WaylandCompat != nil {
		return info.WaylandCompat
	}
	return snapshot.Compat(id)
}

func matchesWaylandFilter(filter WaylandFilter, wc *compat.WaylandCompatibility) bool {
	switch filter {
	case FilterUnknown:
		return wc == nil
	case FilterExcellent:
		return wc != nil && wc.RiskLevel == compat.RiskLow
	case FilterGood:
		return wc != nil && wc.RiskLevel == compat.RiskMedium
	case FilterCaution:
		return wc != nil && wc.RiskLevel == compat.RiskHigh
	case FilterLimited:
		return wc != nil && wc.RiskLevel == compat.RiskCritical
	default:
		return true
	}
}

// fanOut partitions ids across workers and collects the surviving results.
// Result order is not meaningful until sortResults runs.
func fanOut(ids []appid.AppId, fn func(appid.AppId) (SearchResult, bool)) []SearchResult {
	workers := runtime.NumCPU()
	if workers > len(ids) {
		workers = len(ids)
	}
	if workers <= 1 {
		results := make([]SearchResult, 0, len(ids))
		for _, id := range ids {
			if result, ok := fn(id); ok {
				results = append(results, result)
			}
		}
		return results
	}

	chunks := make([][]SearchResult, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			var local []SearchResult
			for i := w; i < len(ids); i += workers {
				if result, ok := fn(ids[i]); ok {
					local = append(local, result)
				}
			}
			chunks[w] = local
		}(w)
	}
	wg.Wait()

	var results []SearchResult
	for _, chunk := range chunks {
		results = append(results, chunk...)
	}
	return results
}

// sortResults establishes the deterministic total ordering for the requested
// mode. Every mode ends in a locale-aware name comparison (and backend name
// for relevance) so equal keys cannot leak map iteration order.
func sortResults(results []SearchResult, snapshot *stats.Snapshot, sortMode SortMode) {
	sorter := newNameSorter()
	switch sortMode {
	case SortMostDownloads:
		sort.Slice(results, func(i, j int) bool {
			a, b := &results[i], &results[j]
			if a.Info.MonthlyDownloads != b.Info.MonthlyDownloads {
				return a.Info.MonthlyDownloads > b.Info.MonthlyDownloads
			}
			return sorter.compare(a.Info.Name, b.Info.Name) < 0
		})
	case SortRecentlyUpdated:
		sort.Slice(results, func(i, j int) bool {
			a, b := &results[i], &results[j]
			at, bt := latestTimestamp(a.Info), latestTimestamp(b.Info)
			if at != bt {
				return at > bt
			}
			return sorter.compare(a.Info.Name, b.Info.Name) < 0
		})
	case SortBestWaylandSupport:
		sort.Slice(results, func(i, j int) bool {
			a, b := &results[i], &results[j]
			ar, br := riskOrdinal(a, snapshot), riskOrdinal(b, snapshot)
			if ar != br {
				return ar < br
			}
			return sorter.compare(a.Info.Name, b.Info.Name) < 0
		})
	default:
		sort.Slice(results, func(i, j int) bool {
			a, b := &results[i], &results[j]
			if cmp := a.Weight.Compare(b.Weight); cmp != 0 {
				return cmp < 0
			}
			if cmp := sorter.compare(a.Info.Name, b.Info.Name); cmp != 0 {
				return cmp < 0
			}
			return sorter.compare(a.BackendName, b.BackendName) < 0
		})
	}
}

// latestTimestamp returns the newest release timestamp, or the minimum value
// when the history carries none, so records without release data sort last.
func latestTimestamp(info *model.AppInfo) int64 {
	release := info.LatestRelease()
	if release == nil || release.Timestamp <= 0 {
		return math.MinInt64
	}
	return release.Timestamp
}

// riskOrdinal treats a missing classification as the worst bucket.
func riskOrdinal(result *SearchResult, snapshot *stats.Snapshot) int {
	wc := compatOf(result.ID, result.Info, snapshot)
	if wc == nil {
		return compat.RiskCritical.Ordinal()
	}
	return wc.RiskLevel.Ordinal()
}

// fillIcons resolves icon handles for the first page of results only.
func fillIcons(results []SearchResult, registry *backend.Registry) {
	if registry == nil {
		return
	}
	limit := len(results)
	if limit > MaxResults {
		limit = MaxResults
	}
	for i := 0; i < limit; i++ {
		result := &results[i]
		b := registry.Get(result.BackendName)
		if b == nil {
			continue
		}
		for _, cache := range b.InfoCaches() {
			if cache.SourceID == result.Info.SourceID {
				result.Icon = cache.Icon(result.Info)
				break
			}
		}
	}
}
