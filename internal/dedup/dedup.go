// Package dedup tracks which minimized URLs have already entered the
// frontier or been visited, so the crawl never fetches or re-enqueues the
// same page twice.
package dedup

import "sync"

// Set is a mutex-guarded string set supporting atomic test-and-insert, the
// primitive the crawl relies on to avoid a check-then-act race between
// two workers discovering the same link concurrently.
type Set struct {
	mu   sync.Mutex
	data map[string]struct{}
}

// NewSet returns an empty, ready-to-use Set.
func NewSet() *Set {
	return &Set{data: make(map[string]struct{})}
}

// TryAdd inserts key if absent and reports whether it was newly inserted.
// A false return means key was already a member; the caller must not treat
// this occurrence as new.
func (s *Set) TryAdd(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return false
	}
	s.data[key] = struct{}{}
	return true
}

// Contains reports whether key is a member.
func (s *Set) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.data[key]
	return exists
}

// Size returns the number of members.
func (s *Set) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Registry is the crawl's two dedup tables: the enqueued set (every URL
// ever pushed to the frontier, so it is never pushed twice) and the
// visited-or-redirected set (every URL a worker has claimed for a visit,
// before its fetch, or that has been named as a redirect target, so it is
// never fetched again).
type Registry struct {
	enqueued       *Set
	visitedOrRedir *Set
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		enqueued:       NewSet(),
		visitedOrRedir: NewSet(),
	}
}

// TryMarkEnqueued atomically marks a minimized URL as enqueued, returning
// true only the first time it is called for that URL.
func (r *Registry) TryMarkEnqueued(minimized string) bool {
	return r.enqueued.TryAdd(minimized)
}

// TryMarkVisited atomically marks a minimized URL as visited or named as a
// redirect target, returning true only the first time it is called for
// that URL.
func (r *Registry) TryMarkVisited(minimized string) bool {
	return r.visitedOrRedir.TryAdd(minimized)
}

// IsVisited reports whether a minimized URL has already been claimed for a
// visit or was named as a redirect target.
func (r *Registry) IsVisited(minimized string) bool {
	return r.visitedOrRedir.Contains(minimized)
}

// EnqueuedCount returns the number of distinct URLs ever enqueued.
func (r *Registry) EnqueuedCount() int {
	return r.enqueued.Size()
}

// VisitedCount returns the number of distinct URLs visited or named as
// redirect targets.
func (r *Registry) VisitedCount() int {
	return r.visitedOrRedir.Size()
}
