package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rewired-gh/rentscore/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	a := Key("5500 Grand Lake Dr", "San Antonio", "TX")
	b := Key("  5500  GRAND lake dr ", "san antonio", "tx")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Key("5500 Grand Lake Dr", "Austin", "TX"))
}

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Hour, 10)

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "a", 1650))
	rent, ok, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1650.0, rent)
}

func TestMemory_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(time.Hour, 10)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "a", 1200))

	now = now.Add(30 * time.Minute)
	_, ok, _ := m.Get(ctx, "a")
	assert.True(t, ok)

	now = now.Add(time.Hour)
	_, ok, _ = m.Get(ctx, "a")
	assert.False(t, ok)

	// Expired entries are dropped on the next write.
	require.NoError(t, m.Set(ctx, "b", 900))
	assert.Equal(t, 1, m.Len())
}

func TestMemory_RotatesOldest(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(0, 3)
	m.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("k%d", i), float64(i)))
		now = now.Add(time.Second)
	}

	assert.Equal(t, 3, m.Len())
	for i, want := range []bool{false, false, true, true, true} {
		_, ok, _ := m.Get(ctx, fmt.Sprintf("k%d", i))
		assert.Equal(t, want, ok, "k%d", i)
	}
}

func TestRedis_GetSet(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRedis(client, time.Hour)
	defer r.Close()

	_, ok, err := r.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, "a", 1675.5))
	assert.True(t, mr.Exists(keyPrefix+"a"))

	rent, ok, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1675.5, rent)

	mr.FastForward(2 * time.Hour)
	_, ok, err = r.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	r := NewRedis(client, time.Hour)
	defer r.Close()

	mr.Close()

	_, _, err := r.Get(context.Background(), "a")
	assert.Error(t, err)
	assert.Error(t, Ping(context.Background(), r))
}

func TestNew(t *testing.T) {
	c, err := New(config.CacheConfig{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New(config.CacheConfig{Backend: "memory", TTL: time.Hour, MaxEntries: 5})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)
	assert.NoError(t, Ping(context.Background(), c))

	mr := miniredis.RunT(t)
	c, err = New(config.CacheConfig{Backend: "redis", TTL: time.Hour, RedisAddr: mr.Addr()})
	require.NoError(t, err)
	require.IsType(t, &Redis{}, c)
	assert.NoError(t, Ping(context.Background(), c))
	c.(*Redis).Close()

	_, err = New(config.CacheConfig{Backend: "memcached"})
	assert.Error(t, err)
}
