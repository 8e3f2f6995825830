package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/subguard/internal/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, New())
}

func TestCount(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Count())

	require.NoError(t, s.Put(context.Background(), storetest.Commitment("a", 0)))
	require.NoError(t, s.Put(context.Background(), storetest.Commitment("a", 0)))
	require.NoError(t, s.Put(context.Background(), storetest.Commitment("b", 0)))
	assert.Equal(t, 2, s.Count())
}

func TestPutStoresACopy(t *testing.T) {
	s := New()
	c := storetest.Commitment("a", 0)
	require.NoError(t, s.Put(context.Background(), c))

	c.ServiceName = "changed after put"
	got, err := s.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "Service a", got.ServiceName)
}
