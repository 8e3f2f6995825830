package alarm

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/subguard/internal/logger"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	r := NewRedis(client, logger.Nop(), time.Hour)
	r.now = func() time.Time { return clock }
	return r, mr, &clock
}

func TestRedisRearmReplaces(t *testing.T) {
	r, mr, clock := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Arm(ctx, "remind_a", clock.Add(time.Hour)))
	require.NoError(t, r.Arm(ctx, "remind_a", clock.Add(3*time.Hour)))

	members, err := mr.ZMembers(KeyAlarms)
	require.NoError(t, err)
	assert.Equal(t, []string{"remind_a"}, members)

	at, ok, err := r.Lookup(ctx, "remind_a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, at.Equal(clock.Add(3*time.Hour)))
}

func TestRedisPollFiresDueOnly(t *testing.T) {
	r, _, clock := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Arm(ctx, "due", clock.Add(-time.Minute)))
	require.NoError(t, r.Arm(ctx, "now", *clock))
	require.NoError(t, r.Arm(ctx, "later", clock.Add(time.Minute)))

	var got []string
	fired := r.Poll(ctx, func(_ context.Context, name string) { got = append(got, name) })

	assert.ElementsMatch(t, []string{"due", "now"}, fired)
	assert.ElementsMatch(t, []string{"due", "now"}, got)

	// claimed alarms are gone; a second poll fires nothing
	assert.Empty(t, r.Poll(ctx, func(context.Context, string) { t.Fatal("fired twice") }))

	_, ok, err := r.Lookup(ctx, "later")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisSurvivesRestart(t *testing.T) {
	r, mr, clock := newTestRedis(t)
	ctx := context.Background()
	require.NoError(t, r.Arm(ctx, "remind_a", clock.Add(time.Minute)))

	// a fresh poller against the same server sees the pending alarm
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	restarted := NewRedis(client, logger.Nop(), time.Hour)
	restarted.now = func() time.Time { return clock.Add(2 * time.Minute) }

	var got []string
	restarted.Poll(ctx, func(_ context.Context, name string) { got = append(got, name) })
	assert.Equal(t, []string{"remind_a"}, got)
}

func TestRedisCancel(t *testing.T) {
	r, _, clock := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Arm(ctx, "x", clock.Add(-time.Minute)))
	require.NoError(t, r.Cancel(ctx, "x"))
	require.NoError(t, r.Cancel(ctx, "never-armed"))

	assert.Empty(t, r.Poll(ctx, func(context.Context, string) {}))
}

func TestRedisStartStop(t *testing.T) {
	r, _, clock := newTestRedis(t)
	ctx := context.Background()
	require.NoError(t, r.Arm(ctx, "due", clock.Add(-time.Second)))

	fired := make(chan string, 1)
	require.NoError(t, r.Start(ctx, collect(fired)))
	r.Stop()
	r.Stop()

	select {
	case name := <-fired:
		assert.Equal(t, "due", name)
	default:
		t.Fatal("start did not poll immediately")
	}
}
