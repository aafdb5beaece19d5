package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"propmatch/internal/middleware"
	"propmatch/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Aside implements cache-aside for a JSON-serialisable dest: a hit fills dest from Redis,
// a miss runs fetch (which must fill dest) and stores the result for ttl.
// Redis failures never fail the read; they fall through to fetch.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	name := cacheName(key)
	if client == nil {
		return fetch()
	}

	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheLookups.WithLabelValues(name, "hit").Inc()
			return nil
		}
		observability.CacheLookups.WithLabelValues(name, "error").Inc()
	case errors.Is(err, redis.Nil):
		observability.CacheLookups.WithLabelValues(name, "miss").Inc()
	default:
		observability.CacheLookups.WithLabelValues(name, "error").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}
	SetJSON(ctx, key, dest, ttl)
	return nil
}

// SetJSON stores value under key for ttl. Failures are logged and dropped.
func SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache marshal failed", "key", key, "error", err)
		return
	}
	if err := client.Set(ctx, key, raw, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}

func cacheName(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
