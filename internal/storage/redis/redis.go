package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

type RedisRepo struct {
	client *redis.Client
}

func New(ctx context.Context, addr, pass string, db int) (*RedisRepo, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     pass,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisRepo{
		client: client,
	}, nil
}

// SetServerStatus caches the raw game-server status document. The query
// API upstream is slow and rate limited, so every UCP dashboard hit must
// not translate into an upstream call.
func (r *RedisRepo) SetServerStatus(ctx context.Context, payload []byte, ttl time.Duration) error {
	const op = "storage.redis.SetServerStatus"

	err := r.client.Set(ctx, "gameserver:status", payload, ttl).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisRepo) ServerStatus(ctx context.Context) ([]byte, error) {
	const op = "storage.redis.ServerStatus"

	payload, err := r.client.Get(ctx, "gameserver:status").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return payload, nil
}

func (r *RedisRepo) Close() {
	r.client.Close()
}
