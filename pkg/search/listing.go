package search

import (
	"sort"
	"sync"

	"github.com/mwelte/appgrid/internal/logger"
	"github.com/mwelte/appgrid/pkg/backend"
	"github.com/mwelte/appgrid/pkg/model"
)

// ListedPackage is one installed or updatable package tagged with its
// backend for later operation dispatch.
type ListedPackage struct {
	BackendName string
	Package     model.Package
}

// ListInstalled collects the installed packages from every backend in
// parallel. A backend whose listing fails is logged and contributes nothing;
// the other backends are unaffected.
func ListInstalled(registry *backend.Registry) []ListedPackage {
	return listPackages(registry, "installed", backend.Backend.Installed)
}

// ListUpdates collects the packages with available updates from every
// backend in parallel, with the same failure isolation as ListInstalled.
func ListUpdates(registry *backend.Registry) []ListedPackage {
	return listPackages(registry, "updates", backend.Backend.Updates)
}

func listPackages(registry *backend.Registry, kind string, list func(backend.Backend) ([]model.Package, error)) []ListedPackage {
	names := registry.Names()
	chunks := make([][]ListedPackage, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			packages, err := list(registry.Get(name))
			if err != nil {
				logger.Error("failed to list packages", logger.Fields{
					"backend": name,
					"kind":    kind,
					"error":   err.Error(),
				})
				return
			}
			listed := make([]ListedPackage, 0, len(packages))
			for _, pkg := range packages {
				listed = append(listed, ListedPackage{BackendName: name, Package: pkg})
			}
			chunks[i] = listed
		}(i, name)
	}
	wg.Wait()

	var all []ListedPackage
	for _, chunk := range chunks {
		all = append(all, chunk...)
	}
	sortListed(all)
	return all
}

// sortListed orders system packages first, then by locale-aware name.
func sortListed(listed []ListedPackage) {
	sorter := newNameSorter()
	sort.Slice(listed, func(i, j int) bool {
		a, b := &listed[i], &listed[j]
		aSystem, bSystem := a.Package.ID.IsSystem(), b.Package.ID.IsSystem()
		if aSystem != bSystem {
			return aSystem
		}
		return sorter.compare(listedName(a), listedName(b)) < 0
	})
}

// listedName is the sort key for one package. Backends may report packages
// without a metadata record; those fall back to the id.
func listedName(p *ListedPackage) string {
	if p.Package.Info != nil {
		return p.Package.Info.Name
	}
	return p.Package.ID.String()
}
