package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"territory-api/internal/territory"
)

func TestKey(t *testing.T) {
	d := territory.MustDate(1970, 1, 1)
	assert.Equal(t, "snap2:v1:1970-01-01:europe", Key("v1", d, "europe", false))
	assert.Equal(t, "snap2:v1:1970-01-01::dedup", Key("v1", d, "", true))
	assert.NotEqual(t, Key("v1", d, "", false), Key("v2", d, "", false))
}

func TestLRU_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(2, time.Hour)
	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))
	_, ok := c.Get(ctx, "a")
	require.True(t, ok)
	c.Set(ctx, "c", []byte("3"))

	_, ok = c.Get(ctx, "b")
	assert.False(t, ok, "b was least recently used")
	v, ok := c.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_Expires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU(4, time.Minute)
	c.now = func() time.Time { return now }
	c.Set(ctx, "k", []byte("v"))

	now = now.Add(59 * time.Second)
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLRU_ZeroCapacityDisables(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(0, time.Hour)
	c.Set(ctx, "k", []byte("v"))
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestNew_SelectsBackend(t *testing.T) {
	_, isLRU := New(nil, time.Minute, 8).(*LRU)
	assert.True(t, isLRU)

	rc := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rc.Close()
	_, isRedis := New(rc, time.Minute, 8).(*Redis)
	assert.True(t, isRedis)
}

func TestRedis_UnreachableIsAMiss(t *testing.T) {
	rc := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rc.Close()
	c := NewRedis(rc, time.Minute)
	c.Set(context.Background(), "k", []byte("v"))
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}
