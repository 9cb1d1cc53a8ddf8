package tabs

import (
	"strings"
	"sync"
)

// Store is the shared tab-list snapshot. The snapshot is replaced
// wholesale on every update; there is no merging or diffing. Readers
// always receive a copy, so a caller can never observe a half-written
// list.
type Store struct {
	mu   sync.Mutex
	tabs []Tab
}

// NewStore creates an empty store. A freshly started launcher has cold
// state until the extension's next push.
func NewStore() *Store {
	return &Store{}
}

// Replace overwrites the snapshot atomically.
func (s *Store) Replace(tabs []Tab) {
	copied := make([]Tab, len(tabs))
	copy(copied, tabs)

	s.mu.Lock()
	s.tabs = copied
	s.mu.Unlock()
}

// All returns a copy of the current snapshot.
func (s *Store) All() []Tab {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Tab, len(s.tabs))
	copy(out, s.tabs)
	return out
}

// Search returns tabs whose title or URL contains query,
// case-insensitively. An empty query returns the full snapshot.
func (s *Store) Search(query string) []Tab {
	if query == "" {
		return s.All()
	}

	q := strings.ToLower(query)

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Tab
	for _, t := range s.tabs {
		if strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.URL), q) {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of tabs in the current snapshot.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tabs)
}
