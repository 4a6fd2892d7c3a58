package oracle

import (
	"sort"
	"sync"

	"github.com/derekparker/trie"
)

// SymbolIndex is a prefix trie over function names observed so far,
// built incrementally from oracle answers. It exists purely to produce
// "did you mean" suggestions in UserFacing error messages when a lookup
// cannot be resolved; the stepping engine consults it only on that
// failure path, never while actually stepping.
type SymbolIndex struct {
	mu   sync.Mutex
	t    *trie.Trie
	seen map[string]struct{}
}

// NewSymbolIndex returns an empty index.
func NewSymbolIndex() *SymbolIndex {
	return &SymbolIndex{t: trie.New(), seen: make(map[string]struct{})}
}

// Observe records a function name, if it hasn't been seen before.
func (s *SymbolIndex) Observe(function string) {
	if function == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[function]; ok {
		return
	}
	s.seen[function] = struct{}{}
	s.t.Add(function, nil)
}

// Suggestions returns up to limit known function names sharing prefix,
// sorted lexically. Empty-safe: an index with no observations yet
// returns nil.
func (s *SymbolIndex) Suggestions(prefix string, limit int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := s.t.PrefixSearch(prefix)
	sort.Strings(keys)
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}
