package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitCache is the Redis fast path: a sliding-window counter backed by
// one sorted set per key, scored by request timestamp.
type RateLimitCache interface {
	// Hit records a request for key and returns the number of requests
	// inside the current window.
	Hit(ctx context.Context, key string, window time.Duration) (int, error)
}

type rateLimitCache struct {
	client *redis.Client
}

func NewRateLimitCache(client *redis.Client) RateLimitCache {
	return &rateLimitCache{client: client}
}

func (c *rateLimitCache) Hit(ctx context.Context, key string, window time.Duration) (int, error) {
	redisKey := "rate_limit:" + key
	now := time.Now()
	windowStart := now.Add(-window)

	pipe := c.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: hitMember(now),
	})
	card := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(card.Val()), nil
}

// hitMember builds a set member that is unique even when two hits share
// the same timestamp, so concurrent requests never collapse into one entry.
func hitMember(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString())
}
