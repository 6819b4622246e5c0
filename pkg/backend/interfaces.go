//go:generate mockgen -destination=./mocks/backend.go -package=mocks . Backend

// Package backend defines the package-source integration contract and the
// ordered registry the aggregation store iterates.
package backend

import (
	"github.com/mwelte/appgrid/pkg/appid"
	"github.com/mwelte/appgrid/pkg/model"
)

// InfoCache is one repository's catalog within a backend: its parsed AppInfo
// records, addon relationships and icon lookup.
type InfoCache struct {
	// SourceID identifies the repository ("flathub", "jammy-main"),
	// SourceName is its display name.
	SourceID   string
	SourceName string

	Infos map[appid.AppId]*model.AppInfo

	// Addons maps an application id to the ids of its addons.
	Addons map[appid.AppId][]appid.AppId

	// IconPath resolves an opaque icon handle (a filesystem path or theme
	// name) for a record. May be nil when the backend ships no icons.
	IconPath func(info *model.AppInfo) string
}

// Icon resolves the icon handle for a record, or "" when unavailable.
func (c *InfoCache) Icon(info *model.AppInfo) string {
	if c.IconPath == nil {
		return ""
	}
	return c.IconPath(info)
}

// Backend is a package-source integration. Catalog access never fails (a
// backend that cannot load simply exposes empty caches); installed and
// updates listings may fail per backend and the caller isolates the failure.
type Backend interface {
	// InfoCaches returns the backend's loaded catalogs, one per repository.
	InfoCaches() []*InfoCache

	// Installed lists the currently installed packages.
	Installed() ([]model.Package, error)

	// Updates lists packages with an available update.
	Updates() ([]model.Package, error)
}
