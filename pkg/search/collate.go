package search

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// nameSorter wraps a collator for locale-aware name comparison. Collators
// carry internal buffers and are not safe for concurrent use, so each sort
// pass builds its own.
type nameSorter struct {
	collator *collate.Collator
}

func newNameSorter() *nameSorter {
	return &nameSorter{collator: collate.New(language.Und, collate.Loose)}
}

func (s *nameSorter) compare(a, b string) int {
	return s.collator.CompareString(a, b)
}
