package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var cacheJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// cacheEntry distinguishes "no active adjustment" from a cache miss.
type cacheEntry struct {
	Found      bool        `json:"found"`
	Adjustment *Adjustment `json:"adjustment,omitempty"`
}

// Cache is a read-through Redis cache for current adjustments. Keys carry a
// per-kind version that Invalidate bumps, so a loader racing with a writer can
// only ever populate a key no reader will look at again. Concurrent misses for
// the same key collapse into one loader call.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewCache constructs a Cache. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func versionKey(kind Kind) string {
	return "pricing:version:" + string(kind)
}

func (c *Cache) key(ctx context.Context, kind Kind) (string, error) {
	ver, err := c.client.Get(ctx, versionKey(kind)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return "pricing:current:" + string(kind) + ":v" + strconv.FormatInt(ver, 10), nil
}

// Current returns the cached value for kind, invoking load on a miss.
func (c *Cache) Current(ctx context.Context, kind Kind, load func(context.Context) (*Adjustment, error)) (*Adjustment, error) {
	if c == nil || c.client == nil {
		return load(ctx)
	}
	key, err := c.key(ctx, kind)
	if err != nil {
		c.logger.WarnContext(ctx, "pricing cache version read failed", slog.String("kind", string(kind)), slog.Any("error", err))
		return load(ctx)
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var entry cacheEntry
		if err := cacheJSON.Unmarshal(raw, &entry); err == nil {
			if !entry.Found {
				return nil, nil
			}
			return entry.Adjustment, nil
		}
		c.logger.WarnContext(ctx, "discarding corrupt pricing cache entry", slog.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.WarnContext(ctx, "pricing cache read failed", slog.String("key", key), slog.Any("error", err))
		return load(ctx)
	}

	// The shared load outlives any single caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		adj, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		payload, err := cacheJSON.Marshal(cacheEntry{Found: adj != nil, Adjustment: adj})
		if err != nil {
			return adj, nil
		}
		if err := c.client.Set(loadCtx, key, payload, c.ttl).Err(); err != nil {
			c.logger.WarnContext(loadCtx, "pricing cache write failed", slog.String("key", key), slog.Any("error", err))
		}
		return adj, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		adj, _ := res.Val.(*Adjustment)
		return adj, nil
	}
}

// Invalidate bumps the version for kind so subsequent reads miss.
func (c *Cache) Invalidate(ctx context.Context, kind Kind) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Incr(ctx, versionKey(kind)).Err(); err != nil {
		return fmt.Errorf("pricing: invalidate cache %s: %w", kind, err)
	}
	return nil
}
