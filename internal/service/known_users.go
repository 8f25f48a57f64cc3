package service

import (
	"context"
	"time"

	"pingup/backend/pkg/cache"
	"pingup/backend/shared/redis"
)

// KnownUsers remembers subjects that already have a local record. It is
// only an optimisation: a miss falls through to the database.
type KnownUsers interface {
	Known(ctx context.Context, subject string) bool
	Remember(ctx context.Context, subject string)
}

type noKnownUsers struct{}

func (noKnownUsers) Known(context.Context, string) bool { return false }
func (noKnownUsers) Remember(context.Context, string)   {}

// MemoryKnownUsers keeps subjects in a process-local expiring cache
type MemoryKnownUsers struct {
	cache *cache.Cache[struct{}]
}

func NewMemoryKnownUsers(c *cache.Cache[struct{}]) *MemoryKnownUsers {
	return &MemoryKnownUsers{cache: c}
}

func (m *MemoryKnownUsers) Known(_ context.Context, subject string) bool {
	_, ok := m.cache.Get(subject)
	return ok
}

func (m *MemoryKnownUsers) Remember(_ context.Context, subject string) {
	m.cache.Set(subject, struct{}{})
}

const knownUserKeyPrefix = "pingup:known-user:"

// RedisKnownUsers shares known subjects between server instances
type RedisKnownUsers struct {
	client *redis.RedisClient
	ttl    time.Duration
}

func NewRedisKnownUsers(client *redis.RedisClient, ttl time.Duration) *RedisKnownUsers {
	return &RedisKnownUsers{client: client, ttl: ttl}
}

func (r *RedisKnownUsers) Known(ctx context.Context, subject string) bool {
	ok, err := r.client.Exists(ctx, knownUserKeyPrefix+subject)
	return err == nil && ok
}

func (r *RedisKnownUsers) Remember(ctx context.Context, subject string) {
	_ = r.client.Set(ctx, knownUserKeyPrefix+subject, "1", r.ttl)
}
