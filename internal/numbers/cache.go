package numbers

import (
	"context"
	"encoding/json"
	"time"

	"webdialer/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "webdialer:numbers"

// CachedLister serves listings from Redis when a fresh copy is present and
// falls back to the wrapped Lister otherwise. Cache failures are swallowed:
// a broken cache must never break a listing.
type CachedLister struct {
	next Lister
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCachedLister(next Lister, rdb *redis.Client, ttl time.Duration) *CachedLister {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedLister{next: next, rdb: rdb, ttl: ttl}
}

func (l *CachedLister) List(ctx context.Context, limit int) ([]PhoneNumber, error) {
	if raw, err := l.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var cached []PhoneNumber
		if err := json.Unmarshal(raw, &cached); err == nil {
			metrics.NumberListings.WithLabelValues("cache").Inc()
			return cached, nil
		}
		// Corrupt entry; drop it and refetch.
		_ = l.rdb.Del(ctx, cacheKey).Err()
	}

	fresh, err := l.next.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(fresh); err == nil {
		_ = l.rdb.Set(ctx, cacheKey, raw, l.ttl).Err()
	}
	return fresh, nil
}
