package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const tariffKeyPrefix = "alquipc:tariff:"

// Cache stores resolved tariffs in Redis as JSON.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, code string) (Tariff, bool, error) {
	raw, err := c.rdb.Get(ctx, tariffKeyPrefix+code).Bytes()
	if errors.Is(err, redis.Nil) {
		return Tariff{}, false, nil
	}
	if err != nil {
		return Tariff{}, false, err
	}
	var t Tariff
	if err := json.Unmarshal(raw, &t); err != nil {
		return Tariff{}, false, err
	}
	// entries written by an older layout may decode with zero rates
	if err := t.Validate(); err != nil {
		return Tariff{}, false, err
	}
	return t, true, nil
}

func (c *Cache) Set(ctx context.Context, t Tariff) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, tariffKeyPrefix+t.Code, raw, c.ttl).Err()
}

// Invalidate drops a cached tariff so the next lookup reads the store.
func (c *Cache) Invalidate(ctx context.Context, code string) error {
	return c.rdb.Del(ctx, tariffKeyPrefix+code).Err()
}
