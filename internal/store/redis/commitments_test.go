package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/subguard/internal/store/storetest"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

func TestStoreContract(t *testing.T) {
	s, _ := newTestStore(t)
	storetest.Run(t, s)
}

func TestRecordsLiveInOneHash(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, storetest.Commitment("a", 0)))
	require.NoError(t, s.Put(ctx, storetest.Commitment("b", 0)))

	fields, err := mr.HKeys(KeyCommitments)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, fields)
}

func TestListSkipsCorruptRecords(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, storetest.Commitment("ok", 0)))
	mr.HSet(KeyCommitments, "bad", "{not json")

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ok", list[0].ID)
}

func TestPingFailsWhenServerDown(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()
	assert.Error(t, s.Ping(context.Background()))
}
