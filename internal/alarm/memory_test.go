package alarm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(ch chan string) Handler {
	return func(_ context.Context, name string) { ch <- name }
}

func TestMemoryFiresOnce(t *testing.T) {
	m := NewMemory()
	fired := make(chan string, 4)
	require.NoError(t, m.Start(context.Background(), collect(fired)))
	t.Cleanup(m.Stop)

	require.NoError(t, m.Arm(context.Background(), "remind_a", time.Now().Add(10*time.Millisecond)))

	select {
	case name := <-fired:
		assert.Equal(t, "remind_a", name)
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
	_, ok, err := m.Lookup(context.Background(), "remind_a")
	require.NoError(t, err)
	assert.False(t, ok, "fired timers are removed")
}

func TestMemoryRearmReplaces(t *testing.T) {
	m := NewMemory()
	fired := make(chan string, 4)
	require.NoError(t, m.Start(context.Background(), collect(fired)))
	t.Cleanup(m.Stop)
	ctx := context.Background()

	require.NoError(t, m.Arm(ctx, "remind_a", time.Now().Add(20*time.Millisecond)))
	later := time.Now().Add(time.Hour)
	require.NoError(t, m.Arm(ctx, "remind_a", later))

	assert.Equal(t, 1, m.Len())
	at, ok, err := m.Lookup(ctx, "remind_a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, at.Equal(later))

	select {
	case name := <-fired:
		t.Fatalf("replaced timer fired: %s", name)
	case <-time.After(80 * time.Millisecond):
	}
}

func TestMemoryHoldsTimersUntilStart(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Arm(ctx, "early", time.Now().Add(-time.Minute)))

	fired := make(chan string, 1)
	require.NoError(t, m.Start(ctx, collect(fired)))
	t.Cleanup(m.Stop)

	select {
	case name := <-fired:
		assert.Equal(t, "early", name)
	case <-time.After(time.Second):
		t.Fatal("overdue timer did not fire on start")
	}
}

func TestMemoryCancel(t *testing.T) {
	m := NewMemory()
	fired := make(chan string, 1)
	require.NoError(t, m.Start(context.Background(), collect(fired)))
	t.Cleanup(m.Stop)
	ctx := context.Background()

	require.NoError(t, m.Arm(ctx, "x", time.Now().Add(20*time.Millisecond)))
	require.NoError(t, m.Cancel(ctx, "x"))
	require.NoError(t, m.Cancel(ctx, "unknown"))

	select {
	case <-fired:
		t.Fatal("cancelled timer fired")
	case <-time.After(60 * time.Millisecond):
	}
	assert.Equal(t, 0, m.Len())
}
