// Package store defines the persisted commitment collection.
package store

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/subguard/internal/domain"
)

// ErrNotFound is returned when no commitment has the requested id.
var ErrNotFound = errors.New("commitment not found")

// MutateFunc edits a commitment inside an atomic read-modify-write.
// Returning an error aborts the write.
type MutateFunc func(c *domain.Commitment) error

// Store is the durable commitment collection. Implementations return copies:
// callers may mutate what they get without affecting stored state.
type Store interface {
	// Put inserts or replaces a commitment.
	Put(ctx context.Context, c *domain.Commitment) error
	Get(ctx context.Context, id string) (*domain.Commitment, error)
	// List returns every commitment, oldest first.
	List(ctx context.Context) ([]*domain.Commitment, error)
	// Update applies fn to the stored record and persists the result
	// atomically. It returns the updated copy.
	Update(ctx context.Context, id string, fn MutateFunc) (*domain.Commitment, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
