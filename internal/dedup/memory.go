package dedup

import (
	"context"
	"sync"
)

// MemorySet is an in-process Set. State is lost on restart, which is
// acceptable for single-run polling; use RedisSet when processed state
// must survive the process.
type MemorySet struct {
	mu   sync.RWMutex
	seen map[string]map[string]struct{}
}

// NewMemorySet creates an empty in-memory Set.
func NewMemorySet() *MemorySet {
	return &MemorySet{seen: make(map[string]map[string]struct{})}
}

// Compile-time interface check.
var _ Set = (*MemorySet)(nil)

// Seen reports whether the signature was already marked.
func (s *MemorySet) Seen(_ context.Context, protocol, signature string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sigs, ok := s.seen[protocol]
	if !ok {
		return false, nil
	}
	_, ok = sigs[signature]
	return ok, nil
}

// Mark records the signature as processed.
func (s *MemorySet) Mark(_ context.Context, protocol, signature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sigs, ok := s.seen[protocol]
	if !ok {
		sigs = make(map[string]struct{})
		s.seen[protocol] = sigs
	}
	sigs[signature] = struct{}{}
	return nil
}
