package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "categories:all", []item{{ID: "1", Name: "Lamps"}}, time.Minute))

	var got []item
	require.True(t, m.Get(ctx, "categories:all", &got))
	assert.Equal(t, []item{{ID: "1", Name: "Lamps"}}, got)

	require.NoError(t, m.Forget(ctx, "categories:all"))
	assert.False(t, m.Get(ctx, "categories:all", &got))
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", "v", time.Second))
	var v string
	assert.True(t, m.Get(ctx, "k", &v))

	now = now.Add(2 * time.Second)
	assert.False(t, m.Get(ctx, "k", &v))
}

func TestMemoryTypeMismatchIsMiss(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "k", "text", 0))

	var n int
	assert.False(t, m.Get(ctx, "k", &n))
}

func TestConnectFallsBackToMemory(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	store := Connect(ctx, "127.0.0.1:1", "")
	assert.Equal(t, "memory", store.Driver())
}
