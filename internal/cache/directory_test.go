package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackdir/internal/config"
)

func newTestCache(t *testing.T) (*DirectoryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewDirectoryCache(client), mr
}

func TestDirectoryCache_Cards(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.Cards(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.StoreCards(ctx, []byte(`[{"id":"a"}]`), time.Minute))

	payload, ok, err := c.Cards(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":"a"}]`, string(payload))

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Cards(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDirectoryCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.StoreCards(ctx, []byte(`[]`), time.Minute))
	require.NoError(t, c.Invalidate(ctx))

	_, ok, err := c.Cards(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Invalidate(ctx))
}

func TestDirectoryCache_ShuffleSeed(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	next := int64(10)
	c.rand = func() int64 { next++; return next }

	first, err := c.ShuffleSeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), first)

	again, err := c.ShuffleSeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	rotated, err := c.RotateShuffleSeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(13), rotated)

	current, err := c.ShuffleSeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, rotated, current)
}

func TestDirectoryCache_Unavailable(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, _, err := c.Cards(context.Background())
	assert.Error(t, err)
	_, err = c.ShuffleSeed(context.Background())
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	_ = client.Close()

	mr.Close()
	client, err = NewRedisClient(context.Background(), config.RedisConfig{Addr: addr})
	assert.Error(t, err)
	assert.Nil(t, client)
}
