package feed

import "sync"

// SeenSet holds the slugs rendered this session, in first-seen order. It only grows.
type SeenSet struct {
	mu    sync.RWMutex
	slugs map[string]struct{}
	order []string
}

// NewSeenSet creates a set holding slugs.
func NewSeenSet(slugs ...string) *SeenSet {
	s := &SeenSet{slugs: make(map[string]struct{})}
	for _, slug := range slugs {
		s.Add(slug)
	}
	return s
}

// Add records slug and reports whether it was new.
func (s *SeenSet) Add(slug string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slugs[slug]; ok {
		return false
	}
	s.slugs[slug] = struct{}{}
	s.order = append(s.order, slug)
	return true
}

func (s *SeenSet) Has(slug string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.slugs[slug]
	return ok
}

func (s *SeenSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Slugs returns the slugs in first-seen order.
func (s *SeenSet) Slugs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}
