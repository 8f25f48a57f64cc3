package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNil is returned by Get when the key does not exist
var ErrNil = redis.Nil

type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects to addr. Accepts either host:port or a redis:// URL.
func NewRedisClient(addr, password string, db int) *RedisClient {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	if parsed, err := redis.ParseURL(addr); err == nil {
		opts = parsed
		if password != "" {
			opts.Password = password
		}
	}
	return &RedisClient{client: redis.NewClient(opts)}
}

func (r *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

// Exists reports whether key is present
func (r *RedisClient) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisClient) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// IsNil reports whether err means "key not found"
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
