package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestCache[V any](opts Options) (*Cache[V], *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New[V](opts)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestSetGet(t *testing.T) {
	c, _ := newTestCache[bool](Options{TTL: time.Minute})
	defer c.Close()

	c.Set("user_1", true)

	v, ok := c.Get("user_1")
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = c.Get("user_2")
	assert.False(t, ok)
}

func TestExpiredEntriesAreMisses(t *testing.T) {
	c, now := newTestCache[string](Options{TTL: time.Minute})
	defer c.Close()

	c.Set("k", "v")
	*now = now.Add(2 * time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len(), "expired entries stay until swept")

	c.dropExpired()
	assert.Equal(t, 0, c.Len())
}

func TestMaxItemsEvictsSoonestExpiry(t *testing.T) {
	c, _ := newTestCache[int](Options{TTL: time.Hour, MaxItems: 2})
	defer c.Close()

	c.SetWithTTL("a", 1, time.Minute)
	c.SetWithTTL("b", 2, time.Hour)
	c.SetWithTTL("c", 3, time.Hour)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
}

func TestEntriesWithoutExpiryAreEvictedLast(t *testing.T) {
	c, _ := newTestCache[int](Options{MaxItems: 2})
	defer c.Close()

	c.Set("forever", 1)
	c.SetWithTTL("short", 2, time.Second)
	c.Set("new", 3)

	_, ok := c.Get("forever")
	assert.True(t, ok)
	_, ok = c.Get("short")
	assert.False(t, ok)
}

func TestOverwriteDoesNotEvict(t *testing.T) {
	c, _ := newTestCache[int](Options{TTL: time.Hour, MaxItems: 1})
	defer c.Close()

	c.Set("a", 1)
	c.Set("a", 2)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache[int](Options{})
	defer c.Close()

	c.Set("a", 1)
	c.Delete("a")

	assert.Equal(t, 0, c.Len())
}
