// Package model provides the data structures shared by backends, the
// aggregation store and the search engine: per-source application metadata,
// the multi-source entry list and installed-package records.
package model

import (
	"github.com/mwelte/appgrid/pkg/appid"
	"github.com/mwelte/appgrid/pkg/compat"
)

// AppKind distinguishes desktop applications from addons and other
// appstream component kinds.
type AppKind string

const (
	KindDesktopApplication AppKind = "desktop-application"
	KindConsoleApplication AppKind = "console-application"
	KindAddon              AppKind = "addon"
	KindGeneric            AppKind = "generic"
	KindUnknown            AppKind = "unknown"
)

// ProvideKind is the type of a capability declaration.
type ProvideKind string

const (
	// ProvideID declares that the component provides another component id,
	// e.g. an applet or platform integration marker.
	ProvideID ProvideKind = "id"
	// ProvideMediaType declares that the component handles a mime type.
	ProvideMediaType ProvideKind = "mediatype"
)

// Provide is one capability declared by a component.
type Provide struct {
	Kind  ProvideKind `json:"kind"`
	Value string      `json:"value"`
}

// Release is one entry of a component's release history.
type Release struct {
	Version     string `json:"version"`
	Timestamp   int64  `json:"timestamp,omitempty"` // unix seconds, <= 0 means unknown
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Screenshot is one screenshot reference.
type Screenshot struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// AppInfo is one source's metadata record for one application. It is
// immutable after construction; result lists share the same pointer rather
// than copying the record.
type AppInfo struct {
	Name        string  `json:"name"`
	Summary     string  `json:"summary"`
	Description string  `json:"description"`
	Kind        AppKind `json:"kind"`

	// SourceID identifies the repository within a backend (e.g. "flathub"),
	// SourceName its display name. Origin is the OS release codename the
	// record claims to be published for; empty means release-independent.
	SourceID   string `json:"source_id"`
	SourceName string `json:"source_name"`
	Origin     string `json:"origin,omitempty"`

	Categories  []string          `json:"categories,omitempty"`
	Provides    []Provide         `json:"provides,omitempty"`
	Pkgnames    []string          `json:"pkgnames,omitempty"`
	DesktopIDs  []string          `json:"desktop_ids,omitempty"`
	Releases    []Release         `json:"releases,omitempty"` // newest first
	Screenshots []Screenshot      `json:"screenshots,omitempty"`
	Urls        map[string]string `json:"urls,omitempty"`
	License     string            `json:"license,omitempty"`
	Icon        string            `json:"icon,omitempty"`
	Verified    bool              `json:"verified,omitempty"`

	// MonthlyDownloads and WaylandCompat are filled from the stats snapshot
	// when the aggregated map is rebuilt; both default to their zero values
	// when no stats entry exists.
	MonthlyDownloads uint64                       `json:"monthly_downloads,omitempty"`
	WaylandCompat    *compat.WaylandCompatibility `json:"wayland_compat,omitempty"`
}

// HasCategory reports whether the record declares the given category id.
func (info *AppInfo) HasCategory(category string) bool {
	for _, c := range info.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// ProvidesID reports whether the record declares the given component id as a
// capability.
func (info *AppInfo) ProvidesID(id string) bool {
	for _, p := range info.Provides {
		if p.Kind == ProvideID && p.Value == id {
			return true
		}
	}
	return false
}

// ProvidesMediaType reports whether the record handles the given mime type.
func (info *AppInfo) ProvidesMediaType(mediaType string) bool {
	for _, p := range info.Provides {
		if p.Kind == ProvideMediaType && p.Value == mediaType {
			return true
		}
	}
	return false
}

// LatestRelease returns the newest release, or nil when the history is empty.
func (info *AppInfo) LatestRelease() *Release {
	if len(info.Releases) == 0 {
		return nil
	}
	return &info.Releases[0]
}

// WithStats returns a record carrying the given stats values. The receiver is
// returned unchanged when the values already match; otherwise a shallow copy
// is made so records already published to readers are never mutated.
func (info *AppInfo) WithStats(downloads uint64, wc *compat.WaylandCompatibility) *AppInfo {
	if info.MonthlyDownloads == downloads && info.WaylandCompat == wc {
		return info
	}
	clone := *info
	clone.MonthlyDownloads = downloads
	clone.WaylandCompat = wc
	return &clone
}

// Package is one installed or updatable package as reported by a backend.
type Package struct {
	ID   appid.AppId
	Info *AppInfo
}
