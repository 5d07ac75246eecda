package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetNX(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache("storefront")

	ok, err := c.SetNX(ctx, "k", "pending", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetNX(ctx, "k", "other", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "pending", val)

	require.NoError(t, c.Del(ctx, "k"))
	val, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache("storefront").(*memoryCache)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", 42, time.Second))
	val, _ := c.Get(ctx, "k")
	assert.Equal(t, "42", val)

	now = now.Add(2 * time.Second)
	val, _ = c.Get(ctx, "k")
	assert.Empty(t, val)

	ok, _ := c.SetNX(ctx, "k", "again", 0)
	assert.True(t, ok)
}

func TestGenerateKey(t *testing.T) {
	c := NewMemoryCache("storefront")
	assert.Equal(t, "storefront:checkout:u1:abc", c.GenerateKey("checkout", "u1:abc"))
}
