package github

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/freema/coauthor/internal/metrics"
	"github.com/freema/coauthor/internal/redisclient"
)

// CachingResolver is a read-through profile cache in front of another
// Resolver. Only successful lookups are cached; failures always come from a
// fresh attempt. Cache trouble degrades to a plain lookup.
type CachingResolver struct {
	inner Resolver
	redis *redisclient.Client
	ttl   time.Duration
}

// NewCachingResolver wraps inner with a Redis-backed profile cache.
func NewCachingResolver(inner Resolver, rdb *redisclient.Client, ttl time.Duration) *CachingResolver {
	return &CachingResolver{inner: inner, redis: rdb, ttl: ttl}
}

// Resolve returns a cached profile when present, otherwise resolves through
// the inner resolver and stores the result.
func (r *CachingResolver) Resolve(ctx context.Context, username string) (*Profile, error) {
	key := r.redis.Key("profile", username)

	val, err := r.redis.Unwrap().Get(ctx, key).Result()
	if err == nil {
		var p Profile
		if jsonErr := json.Unmarshal([]byte(val), &p); jsonErr == nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return &p, nil
		}
		// Unreadable cache entry; drop it and fall through.
		r.redis.Unwrap().Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("profile cache read failed", "username", username, "error", err)
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	p, err := r.inner.Resolve(ctx, username)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(p)
	if err == nil {
		if setErr := r.redis.Unwrap().Set(ctx, key, data, r.ttl).Err(); setErr != nil {
			slog.Warn("profile cache write failed", "username", username, "error", setErr)
		}
	}
	return p, nil
}

var _ Resolver = (*CachingResolver)(nil)
