package cache

import (
	"context"
	"time"

	"parking-lot-manager/internal/pkg/config"
	"parking-lot-manager/internal/pkg/errs"
	"parking-lot-manager/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 200

type RedisIndex struct {
	client *redis.Client
}

var _ shared.CacheIndex = (*RedisIndex)(nil)

func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errs.Wrapf(err, "failed to ping redis at %s", cfg.Addr)
	}
	return client, nil
}

func NewRedisIndex(client *redis.Client) *RedisIndex {
	return &RedisIndex{client: client}
}

func (r *RedisIndex) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errs.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.Wrapf(err, "redis GET %s", key)
	}
	return b, true, nil
}

func (r *RedisIndex) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errs.Wrapf(err, "redis SET %s", key)
	}
	return nil
}

// Invalidate walks the keyspace with SCAN so large caches never block the server.
func (r *RedisIndex) Invalidate(ctx context.Context, pattern string) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return deleted, errs.Wrapf(err, "redis SCAN %s", pattern)
		}
		if len(keys) > 0 {
			n, err := r.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, errs.Wrapf(err, "redis DEL %s", pattern)
			}
			deleted += int(n)
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}
