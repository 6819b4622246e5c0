// Package stats maintains the popularity and compatibility snapshot consumed
// by every query: a read-only AppId to (monthly downloads, Wayland
// classification) mapping merged from two independently refreshed documents.
package stats

import (
	"github.com/mwelte/appgrid/pkg/appid"
	"github.com/mwelte/appgrid/pkg/compat"
)

// Entry is the stats record for one application.
type Entry struct {
	Downloads uint64
	Compat    *compat.WaylandCompatibility
}

// Snapshot is an immutable stats mapping. Queries capture a snapshot pointer
// at start and read it without locking; refreshing builds a new snapshot and
// swaps the shared handle.
type Snapshot struct {
	entries     map[appid.AppId]Entry
	generatedAt int64
}

// NewSnapshot builds a snapshot from per-id download counts and
// compatibility classifications. Either map may be nil.
func NewSnapshot(downloads map[appid.AppId]uint64, compatibility map[appid.AppId]compat.WaylandCompatibility, generatedAt int64) *Snapshot {
	entries := make(map[appid.AppId]Entry, len(downloads))
	for id, count := range downloads {
		entries[id] = Entry{Downloads: count}
	}
	for id, wc := range compatibility {
		entry := entries[id]
		clone := wc
		entry.Compat = &clone
		entries[id] = entry
	}
	return &Snapshot{entries: entries, generatedAt: generatedAt}
}

// EmptySnapshot returns a snapshot with no data; lookups yield defaults.
func EmptySnapshot() *Snapshot {
	return &Snapshot{entries: map[appid.AppId]Entry{}}
}

// Lookup returns the entry for an id and whether one exists.
func (s *Snapshot) Lookup(id appid.AppId) (Entry, bool) {
	entry, ok := s.entries[id]
	return entry, ok
}

// Downloads returns the monthly download count for an id, zero when unknown.
func (s *Snapshot) Downloads(id appid.AppId) uint64 {
	return s.entries[id].Downloads
}

// Compat returns the compatibility classification for an id, nil when none
// has been computed.
func (s *Snapshot) Compat(id appid.AppId) *compat.WaylandCompatibility {
	return s.entries[id].Compat
}

// GeneratedAt returns the unix timestamp the snapshot data was generated at,
// zero for the empty snapshot.
func (s *Snapshot) GeneratedAt() int64 {
	return s.generatedAt
}

// Len returns the number of ids with stats data.
func (s *Snapshot) Len() int {
	return len(s.entries)
}
