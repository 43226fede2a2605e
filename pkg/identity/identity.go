// Package identity attaches stable external identifiers to kernel curves.
// Reconstructed geometry has no identity that survives a replay, so the
// importer tags each curve when it creates it and reads the tag back when
// it walks a profile's loops.
package identity

import (
	"sync"

	"github.com/chazu/lignin-replay/pkg/kernel"
)

// Tagger associates external identifiers with curves.
type Tagger interface {
	Tag(c kernel.Curve, id string)
	ID(c kernel.Curve) (string, bool)
}

// Compile-time interface check.
var _ Tagger = (*Store)(nil)

// Store is an in-memory Tagger keyed by curve handle.
type Store struct {
	mu  sync.RWMutex
	ids map[kernel.Handle]string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{ids: make(map[kernel.Handle]string)}
}

// Tag records id for c, replacing any previous tag.
func (s *Store) Tag(c kernel.Curve, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[c.Handle()] = id
}

// ID returns the tag of c.
func (s *Store) ID(c kernel.Curve) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.ids[c.Handle()]
	return id, ok
}

// Len returns the number of tagged curves.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
