package store

import (
	"github.com/mwelte/appgrid/pkg/appid"
	"github.com/mwelte/appgrid/pkg/backend"
)

const flathubSourceID = "flathub"

// entryPriority ranks a (backend, source) pair for entry ordering within one
// AppId. Higher wins. User installations of the primary flatpak remote are
// preferred over system-wide ones, which are preferred over third-party
// remotes; the system backend outranks everything for system identifiers and
// nothing for reverse-DNS ones.
func entryPriority(backendName, sourceID string, id appid.AppId) int {
	switch backendName {
	case backend.NameFlatpakUser:
		if sourceID == flathubSourceID {
			return 3
		}
		return 1
	case backend.NameFlatpakSystem:
		if sourceID == flathubSourceID {
			return 2
		}
		return 0
	case backend.NameSystem:
		if id.IsSystem() {
			return 4
		}
		return -1
	default:
		return -2
	}
}
