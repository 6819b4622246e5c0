package backend

import "strings"

// Well-known backend names.
const (
	NameFlatpakUser   = "flatpak-user"
	NameFlatpakSystem = "flatpak-system"
	NameSystem        = "system"
)

// Registry holds the configured backends in a stable iteration order. The
// registry is assembled once at startup and treated as read-only afterwards,
// so concurrent queries can share it without locking.
type Registry struct {
	names    []string
	backends map[string]Backend
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// Register adds a backend under the given name. Registering the same name
// twice replaces the backend but keeps its position.
func (r *Registry) Register(name string, b Backend) {
	if _, exists := r.backends[name]; !exists {
		r.names = append(r.names, name)
	}
	r.backends[name] = b
}

// Get returns the backend registered under name, or nil.
func (r *Registry) Get(name string) Backend {
	return r.backends[name]
}

// Names returns the backend names in registration order.
func (r *Registry) Names() []string {
	return r.names
}

// Each calls fn for every backend in registration order.
func (r *Registry) Each(fn func(name string, b Backend)) {
	for _, name := range r.names {
		fn(name, r.backends[name])
	}
}

// Len returns the number of registered backends.
func (r *Registry) Len() int {
	return len(r.names)
}

// IsFlatpakFamily reports whether a backend name belongs to the flatpak
// family. Flatpak entries are not OS-release-specific, which exempts them
// from origin filtering.
func IsFlatpakFamily(name string) bool {
	return strings.HasPrefix(name, "flatpak-")
}
