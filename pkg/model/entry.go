package model

import "github.com/mwelte/appgrid/pkg/appid"

// AppEntry is one backend's view of one AppId within the aggregated map.
type AppEntry struct {
	BackendName string
	Info        *AppInfo
	Installed   bool
}

// Apps maps every known AppId to its entries across all backends, ordered by
// source preference: the first entry is the one whose AppInfo is displayed by
// default. The map is rebuilt wholesale and published by swapping a shared
// handle; it is never mutated after publication.
type Apps map[appid.AppId][]AppEntry

// Preferred returns the preferred entry for an AppId, or nil when the id is
// unknown.
func (a Apps) Preferred(id appid.AppId) *AppEntry {
	entries := a[id]
	if len(entries) == 0 {
		return nil
	}
	return &entries[0]
}
