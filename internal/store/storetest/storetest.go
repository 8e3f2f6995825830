// Package storetest holds behaviour every store.Store must share.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/subguard/internal/domain"
	"github.com/MrSnakeDoc/subguard/internal/store"
)

var base = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// Commitment builds a valid record created offset after a fixed instant.
func Commitment(id string, offset time.Duration) *domain.Commitment {
	days := 7
	return &domain.Commitment{
		ID:           id,
		UserID:       "u1",
		ServiceName:  "Service " + id,
		TrialDays:    &days,
		Price:        decimal.RequireFromString("9.99"),
		Currency:     "USD",
		Cycle:        domain.CycleMonthly,
		StartAt:      base.Add(offset),
		RenewalAt:    base.Add(offset + 7*24*time.Hour),
		RiskScore:    45,
		Status:       domain.StatusTrial,
		DarkPatterns: []string{},
		CreatedAt:    base.Add(offset),
	}
}

// Run exercises s. s must start empty.
func Run(t *testing.T, s store.Store) {
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, "nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("put get round trip", func(t *testing.T) {
		c := Commitment("rt", 0)
		require.NoError(t, s.Put(ctx, c))

		got, err := s.Get(ctx, "rt")
		require.NoError(t, err)
		assert.Equal(t, c.ServiceName, got.ServiceName)
		assert.True(t, c.Price.Equal(got.Price))
		assert.Equal(t, c.Cycle, got.Cycle)
		assert.True(t, c.RenewalAt.Equal(got.RenewalAt))
		require.NotNil(t, got.TrialDays)
		assert.Equal(t, 7, *got.TrialDays)

		got.ServiceName = "mutated"
		again, err := s.Get(ctx, "rt")
		require.NoError(t, err)
		assert.Equal(t, c.ServiceName, again.ServiceName, "returned values are copies")

		require.NoError(t, s.Delete(ctx, "rt"))
	})

	t.Run("list oldest first", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, Commitment("b", 2*time.Hour)))
		require.NoError(t, s.Put(ctx, Commitment("a", time.Hour)))
		require.NoError(t, s.Put(ctx, Commitment("c", 3*time.Hour)))

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})

		for _, id := range []string{"a", "b", "c"} {
			require.NoError(t, s.Delete(ctx, id))
		}
	})

	t.Run("update persists", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, Commitment("u", 0)))

		updated, err := s.Update(ctx, "u", func(c *domain.Commitment) error {
			c.ReminderSent = true
			return nil
		})
		require.NoError(t, err)
		assert.True(t, updated.ReminderSent)

		got, err := s.Get(ctx, "u")
		require.NoError(t, err)
		assert.True(t, got.ReminderSent)

		require.NoError(t, s.Delete(ctx, "u"))
	})

	t.Run("update aborted by mutator", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, Commitment("x", 0)))
		boom := errors.New("boom")

		_, err := s.Update(ctx, "x", func(c *domain.Commitment) error {
			c.ServiceName = "half-written"
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := s.Get(ctx, "x")
		require.NoError(t, err)
		assert.Equal(t, "Service x", got.ServiceName)

		require.NoError(t, s.Delete(ctx, "x"))
	})

	t.Run("update missing", func(t *testing.T) {
		_, err := s.Update(ctx, "ghost", func(*domain.Commitment) error { return nil })
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete missing", func(t *testing.T) {
		assert.ErrorIs(t, s.Delete(ctx, "ghost"), store.ErrNotFound)
	})

	t.Run("concurrent updates do not lose writes", func(t *testing.T) {
		c := Commitment("n", 0)
		c.DarkPatterns = nil
		require.NoError(t, s.Put(ctx, c))

		const writers = 4
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := s.Update(ctx, "n", func(c *domain.Commitment) error {
					c.DarkPatterns = append(c.DarkPatterns, fmt.Sprintf("p%d", i))
					return nil
				})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		got, err := s.Get(ctx, "n")
		require.NoError(t, err)
		assert.Len(t, got.DarkPatterns, writers)

		require.NoError(t, s.Delete(ctx, "n"))
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}
