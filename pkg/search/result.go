// Package search implements the shared filter/weight/sort pipeline used by
// every page of the store: free-text search, category browsing, explore
// curation and the installed view all configure the same generic engine with
// a scoring function.
package search

import (
	"github.com/mwelte/appgrid/pkg/appid"
	"github.com/mwelte/appgrid/pkg/model"
)

// MaxResults is the page size: the number of results icons are resolved for
// and the number page renderers display. The engine itself returns the full
// ranked set.
const MaxResults = 100

// SortMode selects the ordering of search results.
type SortMode int

const (
	SortRelevance SortMode = iota
	SortMostDownloads
	SortRecentlyUpdated
	SortBestWaylandSupport
)

// WaylandFilter restricts results to one compatibility risk bucket.
type WaylandFilter int

const (
	FilterAll       WaylandFilter = iota
	FilterExcellent               // low risk
	FilterGood                    // medium risk
	FilterCaution                 // high risk
	FilterLimited                 // critical risk
	FilterUnknown                 // no classification available
)

// Weight is a two-field relevance score; lower sorts first. Primary carries
// the match quality bucket, Secondary breaks ties within a bucket (typically
// negated download counts). An explicit pair avoids the overflow hazards of
// packing both into one integer.
type Weight struct {
	Primary   int64
	Secondary int64
}

// Less reports whether w sorts before other.
func (w Weight) Less(other Weight) bool {
	if w.Primary != other.Primary {
		return w.Primary < other.Primary
	}
	return w.Secondary < other.Secondary
}

// Compare returns -1, 0 or 1 ordering w against other.
func (w Weight) Compare(other Weight) int {
	switch {
	case w.Less(other):
		return -1
	case other.Less(w):
		return 1
	default:
		return 0
	}
}

// ScoreFunc scores one backend entry of an AppId. Returning ok=false
// excludes the entry. Implementations must be pure functions of their
// arguments: the engine calls them from multiple goroutines.
type ScoreFunc func(id appid.AppId, info *model.AppInfo, installed bool) (Weight, bool)

// SearchResult is one ranked result. Info is the preferred source's record
// for the id, BackendName the backend that record came from.
type SearchResult struct {
	BackendName string
	ID          appid.AppId
	Icon        string // opaque icon handle, filled for the first page only
	Info        *model.AppInfo
	Weight      Weight
}
