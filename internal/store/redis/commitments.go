// Package redis persists commitments in a single Redis hash.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/subguard/internal/domain"
	"github.com/MrSnakeDoc/subguard/internal/store"
)

// maxTxRetries bounds optimistic-lock retries in Update.
const maxTxRetries = 5

// Store handles Redis operations for commitments.
type Store struct {
	client redis.UniversalClient
}

var _ store.Store = (*Store)(nil)

// NewStore creates a new Redis store
func NewStore(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

// Put stores a commitment, replacing any previous version.
func (s *Store) Put(ctx context.Context, c *domain.Commitment) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal commitment: %w", err)
	}
	if err := s.client.HSet(ctx, CommitmentsKey(), c.ID, data).Err(); err != nil {
		return fmt.Errorf("failed to save commitment: %w", err)
	}
	return nil
}

// Get retrieves a commitment by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Commitment, error) {
	data, err := s.client.HGet(ctx, CommitmentsKey(), id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get commitment: %w", err)
	}
	return decode(data)
}

// List retrieves all commitments, oldest first. Records that no longer
// decode are skipped.
func (s *Store) List(ctx context.Context) ([]*domain.Commitment, error) {
	all, err := s.client.HGetAll(ctx, CommitmentsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list commitments: %w", err)
	}

	out := make([]*domain.Commitment, 0, len(all))
	for _, raw := range all {
		c, err := decode([]byte(raw))
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	store.SortByCreated(out)
	return out, nil
}

// Update reads, mutates and writes back one record under WATCH so
// concurrent writers never lose each other's changes.
func (s *Store) Update(ctx context.Context, id string, fn store.MutateFunc) (*domain.Commitment, error) {
	key := CommitmentsKey()
	var updated *domain.Commitment

	txf := func(tx *redis.Tx) error {
		data, err := tx.HGet(ctx, key, id).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return store.ErrNotFound
			}
			return fmt.Errorf("failed to read commitment: %w", err)
		}

		c, err := decode(data)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}

		next, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal commitment: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, id, next)
			return nil
		})
		if err != nil {
			return err
		}
		updated = c
		return nil
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("failed to update commitment %s: too much contention", id)
}

// Delete removes a commitment.
func (s *Store) Delete(ctx context.Context, id string) error {
	n, err := s.client.HDel(ctx, CommitmentsKey(), id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete commitment: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func decode(data []byte) (*domain.Commitment, error) {
	var c domain.Commitment
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal commitment: %w", err)
	}
	return &c, nil
}
