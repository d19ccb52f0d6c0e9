package shared

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// CacheIndex is a soft dependency: implementations may fail and callers
// fall back to the store.
type CacheIndex interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Invalidate deletes every key matching the glob pattern and returns the count.
	Invalidate(ctx context.Context, pattern string) (int, error)
}

// CacheKey fingerprints a query as {prefix}:{function}:{sha1(json(args))}.
type CacheKey struct {
	Prefix   string
	Function string
	Args     any
}

func (k CacheKey) String() string {
	raw, err := json.Marshal(k.Args)
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", k.Args))
	}
	sum := sha1.Sum(raw)
	return k.Prefix + ":" + k.Function + ":" + hex.EncodeToString(sum[:])
}

// UserCachePrefix scopes per-user entries so they can be dropped with user:{id}:*.
func UserCachePrefix(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// ReadThrough returns the cached value for key or runs loader and stores its
// result. Cache errors are logged and never returned.
func ReadThrough[T any](
	ctx context.Context,
	idx CacheIndex,
	key CacheKey,
	ttl time.Duration,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	if idx == nil {
		return loader(ctx)
	}

	k := key.String()
	if raw, ok, err := idx.Get(ctx, k); err != nil {
		slog.Warn("cache read failed", "key", k, "error", err.Error())
	} else if ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		slog.Warn("cache entry undecodable", "key", k)
	}

	v, err := loader(ctx)
	if err != nil {
		return v, err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		slog.Warn("cache encode failed", "key", k, "error", err.Error())
		return v, nil
	}
	if err := idx.Set(ctx, k, raw, ttl); err != nil {
		slog.Warn("cache write failed", "key", k, "error", err.Error())
	}
	return v, nil
}
