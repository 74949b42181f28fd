// Package cache keeps recent risk predictions per user so repeated dashboard
// and predict calls skip the record fetch.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stresslens/internal/health"
)

type PredictionCache interface {
	// Get returns ok=false on a miss.
	Get(ctx context.Context, userID string) (health.RiskPrediction, bool, error)
	Set(ctx context.Context, userID string, pred health.RiskPrediction) error
	Invalidate(ctx context.Context, userID string) error
}

// Noop is used when no Redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) (health.RiskPrediction, bool, error) {
	return health.RiskPrediction{}, false, nil
}

func (Noop) Set(context.Context, string, health.RiskPrediction) error { return nil }

func (Noop) Invalidate(context.Context, string) error { return nil }

type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache connects to addr and fails fast when the server does not answer.
func NewRedisCache(addr string, ttl time.Duration) (*RedisCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisCacheFromClient(rdb, ttl), nil
}

func NewRedisCacheFromClient(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl, prefix: "prediction:"}
}

func (c *RedisCache) key(userID string) string { return c.prefix + userID }

func (c *RedisCache) Get(ctx context.Context, userID string) (health.RiskPrediction, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return health.RiskPrediction{}, false, nil
	}
	if err != nil {
		return health.RiskPrediction{}, false, err
	}
	var pred health.RiskPrediction
	if err := json.Unmarshal(raw, &pred); err != nil {
		return health.RiskPrediction{}, false, fmt.Errorf("decode cached prediction: %w", err)
	}
	return pred, true, nil
}

func (c *RedisCache) Set(ctx context.Context, userID string, pred health.RiskPrediction) error {
	raw, err := json.Marshal(pred)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(userID), raw, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, c.key(userID)).Err()
}

func (c *RedisCache) Close() error { return c.rdb.Close() }
