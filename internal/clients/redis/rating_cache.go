package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kurtarapp/kurtar-backend/internal/logger"
	"github.com/kurtarapp/kurtar-backend/internal/types"
)

// RatingCache is a read-through cache for restaurant rating aggregates. Every
// recompute invalidates the restaurant's entry, so a cached value is never
// older than the last successful recompute.
type RatingCache interface {
	Get(ctx context.Context, restaurantID string) (*types.RatingAggregate, error)
	Set(ctx context.Context, restaurantID string, agg types.RatingAggregate) error
	Invalidate(ctx context.Context, restaurantID string) error
	Close() error
}

type ratingCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewRatingCache(addr string, ttl time.Duration, baseLog *logger.Logger) (RatingCache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &ratingCache{
		log: baseLog.With("client", "RatingCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func cacheKey(restaurantID string) string {
	return "restaurant:rating:" + restaurantID
}

// Get returns nil with no error on a cache miss.
func (c *ratingCache) Get(ctx context.Context, restaurantID string) (*types.RatingAggregate, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(restaurantID)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var agg types.RatingAggregate
	if err := json.Unmarshal(raw, &agg); err != nil {
		return nil, err
	}
	return &agg, nil
}

func (c *ratingCache) Set(ctx context.Context, restaurantID string, agg types.RatingAggregate) error {
	raw, err := json.Marshal(agg)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey(restaurantID), raw, c.ttl).Err()
}

func (c *ratingCache) Invalidate(ctx context.Context, restaurantID string) error {
	return c.rdb.Del(ctx, cacheKey(restaurantID)).Err()
}

func (c *ratingCache) Close() error {
	return c.rdb.Close()
}
