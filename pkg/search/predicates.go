package search

import (
	"math"
	"regexp"
	"time"

	"github.com/mwelte/appgrid/internal/logger"
	"github.com/mwelte/appgrid/pkg/appid"
	"github.com/mwelte/appgrid/pkg/backend"
	"github.com/mwelte/appgrid/pkg/model"
	"github.com/mwelte/appgrid/pkg/stats"
)

// negDownloads converts a download count into a descending-popularity weight
// component, clamping instead of overflowing.
func negDownloads(downloads uint64) int64 {
	if downloads > math.MaxInt64 {
		return math.MinInt64
	}
	return -int64(downloads)
}

// Text runs a free-text query: case-insensitive literal matching against
// name, summary and description with increasing weight bases, position
// penalties within each field, and popularity as the tie-break within a
// bucket. Invalid input degrades to an empty result set, never an error.
func Text(
	apps model.Apps,
	registry *backend.Registry,
	snapshot *stats.Snapshot,
	osCodename string,
	input string,
	sortMode SortMode,
	waylandFilter WaylandFilter,
) []SearchResult {
	pattern := regexp.QuoteMeta(input)
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		logger.Warn("failed to compile search pattern", logger.Fields{"pattern": pattern, "error": err.Error()})
		return nil
	}
	return Generic(apps, registry, snapshot, osCodename, TextScore(re), sortMode, waylandFilter)
}

// TextScore builds the scoring function for a compiled query pattern. Name
// matches weigh 0, summary 3, description 6; +1 when the match does not
// cover the whole field, +2 when it does not start the field. Only desktop
// applications are eligible.
func TextScore(re *regexp.Regexp) ScoreFunc {
	fieldScore := func(field string, base int64, downloads uint64) (Weight, bool) {
		loc := re.FindStringIndex(field)
		if loc == nil {
			return Weight{}, false
		}
		switch {
		case loc[0] != 0:
			base += 2
		case loc[1] != len(field):
			base += 1
		}
		return Weight{Primary: base, Secondary: negDownloads(downloads)}, true
	}

	return func(_ appid.AppId, info *model.AppInfo, _ bool) (Weight, bool) {
		if info.Kind != model.KindDesktopApplication {
			return Weight{}, false
		}
		if w, ok := fieldScore(info.Name, 0, info.MonthlyDownloads); ok {
			return w, true
		}
		if w, ok := fieldScore(info.Summary, 3, info.MonthlyDownloads); ok {
			return w, true
		}
		return fieldScore(info.Description, 6, info.MonthlyDownloads)
	}
}

// ExactID matches a single application id exactly (appstream: URL handling).
func ExactID(target appid.AppId) ScoreFunc {
	return func(id appid.AppId, info *model.AppInfo, _ bool) (Weight, bool) {
		if id != target {
			return Weight{}, false
		}
		return Weight{}, true
	}
}

// Categories scores desktop applications belonging to any of the given
// categories, most downloaded first. The applet pseudo-category matches on
// the applet capability provide instead of the category list.
func Categories(categories []Category) ScoreFunc {
	return func(_ appid.AppId, info *model.AppInfo, _ bool) (Weight, bool) {
		if info.Kind != model.KindDesktopApplication {
			return Weight{}, false
		}
		for _, category := range categories {
			if category == CategoryApplet {
				if info.ProvidesID(appletProvideID) {
					return Weight{Primary: negDownloads(info.MonthlyDownloads)}, true
				}
			} else if info.HasCategory(string(category)) {
				return Weight{Primary: negDownloads(info.MonthlyDownloads)}, true
			}
		}
		return Weight{}, false
	}
}

// MediaType scores desktop applications declaring a handler for the given
// mime type, most downloaded first.
func MediaType(mediaType string) ScoreFunc {
	return func(_ appid.AppId, info *model.AppInfo, _ bool) (Weight, bool) {
		if !info.ProvidesMediaType(mediaType) {
			return Weight{}, false
		}
		return Weight{Primary: negDownloads(info.MonthlyDownloads)}, true
	}
}

// Installed scores installed entries only, system packages first.
func Installed() ScoreFunc {
	return func(id appid.AppId, _ *model.AppInfo, installed bool) (Weight, bool) {
		if !installed {
			return Weight{}, false
		}
		if id.IsSystem() {
			return Weight{Primary: -1}, true
		}
		return Weight{}, true
	}
}

// Explore builds the scoring function for one explore page. now bounds
// release timestamps for the recently-updated page (future-dated releases
// are ignored).
func Explore(page ExplorePage, now time.Time) ScoreFunc {
	switch page {
	case ExploreEditorsChoice:
		return func(id appid.AppId, _ *model.AppInfo, _ bool) (Weight, bool) {
			pos := EditorsChoicePosition(id.Normalized())
			if pos < 0 {
				return Weight{}, false
			}
			return Weight{Primary: int64(pos)}, true
		}
	case ExplorePopularApps:
		return func(_ appid.AppId, info *model.AppInfo, _ bool) (Weight, bool) {
			if info.Kind != model.KindDesktopApplication {
				return Weight{}, false
			}
			return Weight{Primary: negDownloads(info.MonthlyDownloads)}, true
		}
	case ExploreMadeForPlatform:
		return func(_ appid.AppId, info *model.AppInfo, _ bool) (Weight, bool) {
			if info.Kind != model.KindDesktopApplication || !info.ProvidesID(platformProvideID) {
				return Weight{}, false
			}
			return Weight{Primary: negDownloads(info.MonthlyDownloads)}, true
		}
	case ExploreRecentlyUpdated:
		nowUnix := now.Unix()
		return func(id appid.AppId, info *model.AppInfo, _ bool) (Weight, bool) {
			if info.Kind != model.KindDesktopApplication {
				return Weight{}, false
			}
			// Newest plausible release wins; future-dated release metadata
			// is common enough in the wild to filter here.
			var best int64
			for _, release := range info.Releases {
				if release.Timestamp <= 0 {
					continue
				}
				if release.Timestamp >= nowUnix {
					logger.Debug("ignoring future release timestamp", logger.Fields{
						"id":        id.String(),
						"timestamp": release.Timestamp,
					})
					continue
				}
				if -release.Timestamp < best {
					best = -release.Timestamp
				}
			}
			return Weight{Primary: best}, true
		}
	default:
		return Categories(page.Categories())
	}
}
