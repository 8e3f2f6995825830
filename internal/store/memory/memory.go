// Package memory keeps commitments in process memory. It backs tests and
// single-process deployments where Redis is not configured.
package memory

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/subguard/internal/domain"
	"github.com/MrSnakeDoc/subguard/internal/store"
)

// Store is a map guarded by a RWMutex.
type Store struct {
	mu          sync.RWMutex
	commitments map[string]*domain.Commitment // ID -> Commitment
}

// New creates an empty store.
func New() *Store {
	return &Store{commitments: make(map[string]*domain.Commitment)}
}

var _ store.Store = (*Store)(nil)

// Put adds or replaces a commitment.
func (s *Store) Put(_ context.Context, c *domain.Commitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commitments[c.ID] = c.Clone()
	return nil
}

// Get retrieves a commitment by ID.
func (s *Store) Get(_ context.Context, id string) (*domain.Commitment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.commitments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c.Clone(), nil
}

// List returns all commitments, oldest first.
func (s *Store) List(_ context.Context) ([]*domain.Commitment, error) {
	s.mu.RLock()
	out := make([]*domain.Commitment, 0, len(s.commitments))
	for _, c := range s.commitments {
		out = append(out, c.Clone())
	}
	s.mu.RUnlock()

	store.SortByCreated(out)
	return out, nil
}

// Update runs fn on a copy under the write lock and keeps the copy only if
// fn succeeds.
func (s *Store) Update(_ context.Context, id string, fn store.MutateFunc) (*domain.Commitment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.commitments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	next := cur.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	s.commitments[id] = next
	return next.Clone(), nil
}

// Delete removes a commitment.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.commitments[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.commitments, id)
	return nil
}

// Count returns the number of stored commitments.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.commitments)
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }
