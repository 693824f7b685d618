package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	directoryCardsKey = "hackdir:directory:cards"
	directorySeedKey  = "hackdir:directory:seed"
)

// DirectoryCache keeps the serialized participant cards and the shuffle seed
// shared by every API instance.
type DirectoryCache struct {
	client *redis.Client
	rand   func() int64
}

func NewDirectoryCache(client *redis.Client) *DirectoryCache {
	return &DirectoryCache{
		client: client,
		rand:   rand.Int63,
	}
}

// Cards returns the cached payload. ok is false on a miss.
func (c *DirectoryCache) Cards(ctx context.Context) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, directoryCardsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get directory cards: %w", err)
	}
	return payload, true, nil
}

func (c *DirectoryCache) StoreCards(ctx context.Context, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, directoryCardsKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("set directory cards: %w", err)
	}
	return nil
}

func (c *DirectoryCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, directoryCardsKey).Err(); err != nil {
		return fmt.Errorf("delete directory cards: %w", err)
	}
	return nil
}

// ShuffleSeed returns the current seed, creating one if none exists yet.
func (c *DirectoryCache) ShuffleSeed(ctx context.Context) (int64, error) {
	if _, err := c.client.SetNX(ctx, directorySeedKey, c.rand(), 0).Result(); err != nil {
		return 0, fmt.Errorf("init shuffle seed: %w", err)
	}

	raw, err := c.client.Get(ctx, directorySeedKey).Result()
	if err != nil {
		return 0, fmt.Errorf("get shuffle seed: %w", err)
	}
	seed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse shuffle seed: %w", err)
	}
	return seed, nil
}

// RotateShuffleSeed replaces the seed so every instance reorders the grid at
// the same time.
func (c *DirectoryCache) RotateShuffleSeed(ctx context.Context) (int64, error) {
	seed := c.rand()
	if err := c.client.Set(ctx, directorySeedKey, seed, 0).Err(); err != nil {
		return 0, fmt.Errorf("rotate shuffle seed: %w", err)
	}
	return seed, nil
}
