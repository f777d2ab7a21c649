package store

import (
	"sort"

	"github.com/sahilm/fuzzy"
)

// nameSource adapts a Store's entries to fuzzy.Source so sahilm/fuzzy can
// rank them without us copying names into a separate slice first.
type nameSource []*Credential

func (n nameSource) String(i int) string { return n[i].Name }
func (n nameSource) Len() int            { return len(n) }

// SearchFuzzy ranks every entry's name against query using a Sublime-Text-
// style subsequence matcher (spec.md §4.5) and returns the non-zero-scoring
// entries in descending rank, breaking ties by insertion order. The
// matcher is inherently case-insensitive and only matches when every rune
// of query appears, in order, somewhere in the name.
func (s *Store) SearchFuzzy(query string) []*Credential {
	if query == "" {
		return s.List()
	}

	matches := fuzzy.FindFrom(query, nameSource(s.entries))

	// Re-sort explicitly by score descending, index ascending. fuzzy.FindFrom
	// already orders by score, but doesn't promise ties preserve source
	// order; breaking ties by Index ourselves guarantees the "stable
	// tie-break by insertion order" property (spec.md §8, property 6)
	// regardless of the library's internal sort.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Index < matches[j].Index
	})

	out := make([]*Credential, 0, len(matches))
	for _, m := range matches {
		out = append(out, s.entries[m.Index])
	}
	return out
}
