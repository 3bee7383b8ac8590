package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DoubtCounter keeps per-room doubt counters in Redis.
// Atomicity comes from Redis itself: INCR and SET are single commands,
// so concurrent raisers can never observe the same pre-increment value.
// A non-zero ttl expires idle rooms; zero keeps them forever, matching
// the in-memory behavior.
type DoubtCounter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDoubtCounter(client *redis.Client, ttl time.Duration) *DoubtCounter {
	return &DoubtCounter{client: client, ttl: ttl}
}

func (c *DoubtCounter) GetOrInit(ctx context.Context, room string) (int64, error) {
	key := c.key(room)
	// SETNX vivifies the room at 0 without clobbering an existing count.
	if err := c.client.SetNX(ctx, key, 0, c.ttl).Err(); err != nil {
		return 0, err
	}
	return c.client.Get(ctx, key).Int64()
}

func (c *DoubtCounter) Increment(ctx context.Context, room string) (int64, error) {
	key := c.key(room)
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if c.ttl > 0 {
		_ = c.client.Expire(ctx, key, c.ttl).Err()
	}
	return count, nil
}

func (c *DoubtCounter) Reset(ctx context.Context, room string) error {
	return c.client.Set(ctx, c.key(room), 0, c.ttl).Err()
}

func (c *DoubtCounter) key(room string) string {
	return "room:" + room + ":doubts"
}
