package system

import (
	"os"

	"github.com/mwelte/appgrid/pkg/appid"
	"github.com/mwelte/appgrid/pkg/errors"
	"github.com/mwelte/appgrid/pkg/model"
	"gopkg.in/yaml.v3"
)

// Catalog is one distro repository snapshot: a source header plus the
// package list. Origin carries the release codename the catalog was built
// for, which feeds origin filtering downstream.
type Catalog struct {
	SourceID   string           `yaml:"source_id"`
	SourceName string           `yaml:"source_name"`
	Origin     string           `yaml:"origin"`
	Packages   []CatalogPackage `yaml:"packages"`
}

// CatalogPackage is one package record in a catalog file.
type CatalogPackage struct {
	ID               string   `yaml:"id"`
	Name             string   `yaml:"name"`
	Summary          string   `yaml:"summary,omitempty"`
	Description      string   `yaml:"description,omitempty"`
	Kind             string   `yaml:"kind,omitempty"`
	Version          string   `yaml:"version"`
	ReleaseTimestamp int64    `yaml:"release_timestamp,omitempty"`
	Categories       []string `yaml:"categories,omitempty"`
	Pkgnames         []string `yaml:"pkgnames,omitempty"`
	DesktopIDs       []string `yaml:"desktop_ids,omitempty"`
	License          string   `yaml:"license,omitempty"`
	Homepage         string   `yaml:"homepage,omitempty"`
	Icon             string   `yaml:"icon,omitempty"`
}

// LoadCatalog reads and validates one catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCatalogNotFound, "read %s: %v", path, err)
	}
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, errors.Wrapf(errors.ErrCatalogParse, "parse %s: %v", path, err)
	}
	if catalog.SourceID == "" {
		return nil, errors.Wrapf(errors.ErrCatalogParse, "%s: missing source_id", path)
	}
	return &catalog, nil
}

// Infos converts the catalog into per-id records. Packages without an id are
// skipped.
func (c *Catalog) Infos() map[appid.AppId]*model.AppInfo {
	infos := make(map[appid.AppId]*model.AppInfo, len(c.Packages))
	for i := range c.Packages {
		pkg := &c.Packages[i]
		if pkg.ID == "" {
			continue
		}
		infos[appid.New(pkg.ID)] = c.packageInfo(pkg)
	}
	return infos
}

func (c *Catalog) packageInfo(pkg *CatalogPackage) *model.AppInfo {
	kind := model.AppKind(pkg.Kind)
	if pkg.Kind == "" {
		kind = model.KindDesktopApplication
	}
	info := &model.AppInfo{
		Name:        pkg.Name,
		Summary:     pkg.Summary,
		Description: pkg.Description,
		Kind:        kind,
		SourceID:    c.SourceID,
		SourceName:  c.SourceName,
		Origin:      c.Origin,
		Categories:  pkg.Categories,
		Pkgnames:    pkg.Pkgnames,
		DesktopIDs:  pkg.DesktopIDs,
		License:     pkg.License,
		Icon:        pkg.Icon,
	}
	if pkg.Name == "" {
		info.Name = pkg.ID
	}
	if pkg.Version != "" {
		info.Releases = []model.Release{{Version: pkg.Version, Timestamp: pkg.ReleaseTimestamp}}
	}
	if pkg.Homepage != "" {
		info.Urls = map[string]string{"homepage": pkg.Homepage}
	}
	return info
}
