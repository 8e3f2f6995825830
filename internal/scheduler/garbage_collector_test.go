package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/subguard/internal/domain"
	"github.com/MrSnakeDoc/subguard/internal/logger"
	"github.com/MrSnakeDoc/subguard/internal/store"
	"github.com/MrSnakeDoc/subguard/internal/store/memory"
	"github.com/MrSnakeDoc/subguard/internal/store/storetest"
)

func TestGarbageCollectorCollect(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 3, 10, 0, 0, 0, time.UTC)
	st := memory.New()

	put := func(id string, status domain.Status, renewal time.Time) {
		c := storetest.Commitment(id, 0)
		c.Status = status
		c.RenewalAt = renewal
		require.NoError(t, st.Put(ctx, c))
	}
	put("live-old", domain.StatusActive, now.Add(-200*24*time.Hour))
	put("cancelled-recent", domain.StatusCancelled, now.Add(-10*24*time.Hour))
	put("cancelled-old", domain.StatusCancelled, now.Add(-100*24*time.Hour))
	put("expired-old", domain.StatusExpired, now.Add(-91*24*time.Hour))

	gc := NewGarbageCollector(st, nil, logger.Nop(), time.Hour, 90*24*time.Hour, func() time.Time { return now })

	deleted, err := gc.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Equal(t, 2, st.Count())

	_, err = st.Get(ctx, "live-old")
	assert.NoError(t, err)
	_, err = st.Get(ctx, "cancelled-recent")
	assert.NoError(t, err)
	_, err = st.Get(ctx, "cancelled-old")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestGarbageCollectorDefaults(t *testing.T) {
	gc := NewGarbageCollector(memory.New(), nil, logger.Nop(), 0, 0, nil)
	assert.Equal(t, DefaultGCInterval, gc.interval)
	assert.Equal(t, DefaultGCThreshold, gc.threshold)

	require.NoError(t, gc.Start(context.Background()))
	gc.Stop()
}
