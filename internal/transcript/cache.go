package transcript

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

const (
	DefaultCacheTTL = 24 * time.Hour

	keyPrefix     = "transcript:"
	presentPrefix = "1:"
	absentValue   = "0:"
)

// Store is the key/value backend behind CachedResolver.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CachedResolver remembers both transcripts and confirmed absences. Store
// failures are logged and the underlying resolver is used directly.
type CachedResolver struct {
	next  Resolver
	store Store
	ttl   time.Duration
}

func NewCachedResolver(next Resolver, store Store, ttl time.Duration) *CachedResolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedResolver{next: next, store: store, ttl: ttl}
}

func (c *CachedResolver) Resolve(ctx context.Context, videoID string) (string, bool, error) {
	key := keyPrefix + videoID

	cached, found, err := c.store.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "transcript cache read failed", "video_id", videoID, "error", err)
	}
	if err == nil && found {
		if text, ok := strings.CutPrefix(cached, presentPrefix); ok {
			return text, true, nil
		}
		if cached == absentValue {
			return "", false, nil
		}
		slog.WarnContext(ctx, "ignoring malformed transcript cache entry", "video_id", videoID)
	}

	text, ok, err := c.next.Resolve(ctx, videoID)
	if err != nil {
		// source failures are not cached so the next request retries
		return "", false, err
	}

	value := absentValue
	if ok {
		value = presentPrefix + text
	}
	if err := c.store.Set(ctx, key, value, c.ttl); err != nil {
		slog.WarnContext(ctx, "transcript cache write failed", "video_id", videoID, "error", err)
	}
	return text, ok, nil
}
