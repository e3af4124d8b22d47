package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/timeclerk/timesheet-engine/internal/core/ports"
)

const prefTTL = 5 * time.Minute

// PreferenceCache is a cache-aside decorator over a ports.PreferenceStore.
// Rate resolution reads the same handful of preferences for every stopped
// entry, so cache hits keep recalculation off the database.
type PreferenceCache struct {
	client *redis.Client
	next   ports.PreferenceStore
	log    zerolog.Logger
}

func NewPreferenceCache(client *redis.Client, next ports.PreferenceStore, log zerolog.Logger) *PreferenceCache {
	return &PreferenceCache{client: client, next: next, log: log}
}

// GetFloat reads the cached value when present, otherwise delegates to the
// underlying store and caches the result. Cache failures degrade to the
// underlying store; not-found results are never cached.
func (c *PreferenceCache) GetFloat(ctx context.Context, userID, key string) (float64, error) {
	cacheKey := c.key(userID, key)

	raw, err := c.client.Get(ctx, cacheKey).Result()
	if err == nil {
		v, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr == nil {
			return v, nil
		}
		c.log.Warn().Str("key", cacheKey).Str("value", raw).Msg("unparseable cached preference, refetching")
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Str("key", cacheKey).Msg("preference cache read failed")
	}

	v, err := c.next.GetFloat(ctx, userID, key)
	if err != nil {
		return 0, err
	}

	if setErr := c.client.Set(ctx, cacheKey, strconv.FormatFloat(v, 'f', -1, 64), prefTTL).Err(); setErr != nil {
		c.log.Warn().Err(setErr).Str("key", cacheKey).Msg("preference cache write failed")
	}
	return v, nil
}

// Invalidate drops the cached value for one (user, key) pair.
func (c *PreferenceCache) Invalidate(ctx context.Context, userID, key string) error {
	return c.client.Del(ctx, c.key(userID, key)).Err()
}

func (c *PreferenceCache) key(userID, key string) string {
	return fmt.Sprintf("pref:%s:%s", userID, key)
}
