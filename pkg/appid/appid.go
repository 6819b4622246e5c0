// Package appid provides the normalized application identifier used as the
// join key across package backends. Two identifiers that name the same
// application (case variants, a trailing ".desktop" qualifier) compare equal.
package appid

import "strings"

// AppId is an opaque application identifier, usually reverse-DNS style
// (org.example.App) for sandboxed apps or a bare package name for
// distribution packages. AppId is comparable and its equality depends only on
// the normalized form, so it can be used directly as a map key. The zero
// value is the empty identifier.
type AppId struct {
	id string
}

// New creates an AppId from a raw identifier string. Any string is accepted;
// normalization strips a trailing ".desktop" qualifier and lowercases the
// comparison key.
func New(raw string) AppId {
	id := strings.TrimSuffix(raw, ".desktop")
	return AppId{id: strings.ToLower(id)}
}

// String returns the normalized identifier.
func (id AppId) String() string {
	return id.id
}

// Normalized returns the canonical comparison key. This is the form used for
// lookups against editorial lists and the stats snapshot.
func (id AppId) Normalized() string {
	return id.id
}

// IsSystem reports whether the identifier names an OS-native package rather
// than a reverse-DNS application. Distribution package names carry no dots
// ("firefox", "vim-gtk3"); anything with a dotted namespace is treated as an
// application or addon identifier.
func (id AppId) IsSystem() bool {
	if id.id == "" {
		return false
	}
	return !strings.Contains(id.id, ".")
}

// Compare orders identifiers by their normalized form.
func Compare(a, b AppId) int {
	return strings.Compare(a.id, b.id)
}
