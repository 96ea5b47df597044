package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tourmate.app/models"
)

func testItems() []models.TourItem {
	return []models.TourItem{
		{ContentID: "125266", Title: "Gyeongbokgung Palace", Category: "attraction", MapX: 126.9770, MapY: 37.5796},
		{ContentID: "264337", Title: "Tosokchon Samgyetang", Category: "restaurant", MapX: 126.9715, MapY: 37.5776},
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	generic := NewMemoryCache()

	t.Run("Set and Get", func(t *testing.T) {
		generic.Set(ctx, "k1", []byte("payload"), time.Minute)

		data, found := generic.Get(ctx, "k1")
		assert.True(t, found)
		assert.Equal(t, []byte("payload"), data)
	})

	t.Run("Expired entry", func(t *testing.T) {
		generic.Set(ctx, "k2", []byte("short"), -time.Second)

		_, found := generic.Get(ctx, "k2")
		assert.False(t, found)
	})

	t.Run("Delete", func(t *testing.T) {
		generic.Set(ctx, "k3", []byte("gone"), time.Minute)
		generic.Delete(ctx, "k3")

		_, found := generic.Get(ctx, "k3")
		assert.False(t, found)
	})

	t.Run("Clear", func(t *testing.T) {
		generic.Set(ctx, "k4", []byte("x"), time.Minute)
		generic.Clear(ctx)

		_, found := generic.Get(ctx, "k4")
		assert.False(t, found)
	})

	t.Run("Nil value ignored", func(t *testing.T) {
		generic.Set(ctx, "k5", nil, time.Minute)

		_, found := generic.Get(ctx, "k5")
		assert.False(t, found)
	})
}

func TestTourCache(t *testing.T) {
	tourCache := NewTourCache(NewMemoryCache())

	t.Run("Set and Get", func(t *testing.T) {
		items := testItems()
		tourCache.Set("tours:restaurant:126.97:37.57:1000", items, 5*time.Minute)

		result, found := tourCache.Get("tours:restaurant:126.97:37.57:1000")
		assert.True(t, found)
		assert.Equal(t, items, result)
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		result, found := tourCache.Get("tours:nonexistent")
		assert.False(t, found)
		assert.Nil(t, result)
	})

	t.Run("Delete", func(t *testing.T) {
		tourCache.Set("tours:delete-me", testItems(), 5*time.Minute)
		tourCache.Delete("tours:delete-me")

		_, found := tourCache.Get("tours:delete-me")
		assert.False(t, found)
	})
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	mockRedis := miniredis.RunT(t)

	redisCache, err := NewRedisCache(&RedisCacheConfig{
		Addr:         mockRedis.Addr(),
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	require.NoError(t, err)

	t.Run("Set and Get", func(t *testing.T) {
		redisCache.Set(ctx, "k1", []byte("payload"), 5*time.Minute)

		data, found := redisCache.Get(ctx, "k1")
		assert.True(t, found)
		assert.Equal(t, []byte("payload"), data)
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		data, found := redisCache.Get(ctx, "nope")
		assert.False(t, found)
		assert.Nil(t, data)
	})

	t.Run("TTL expiry", func(t *testing.T) {
		redisCache.Set(ctx, "expiring", []byte("x"), time.Minute)
		mockRedis.FastForward(2 * time.Minute)

		_, found := redisCache.Get(ctx, "expiring")
		assert.False(t, found)
	})

	t.Run("Delete", func(t *testing.T) {
		redisCache.Set(ctx, "bye", []byte("x"), time.Minute)
		redisCache.Delete(ctx, "bye")

		_, found := redisCache.Get(ctx, "bye")
		assert.False(t, found)
	})

	t.Run("TourCacheOverRedis", func(t *testing.T) {
		tourCache := NewTourCache(redisCache)
		items := testItems()
		tourCache.Set("tours:cafe", items, 5*time.Minute)

		result, found := tourCache.Get("tours:cafe")
		assert.True(t, found)
		assert.Equal(t, items, result)
	})

	t.Run("ConnectionFailure", func(t *testing.T) {
		_, err := NewRedisCache(&RedisCacheConfig{
			Addr:        "localhost:1",
			DialTimeout: 100 * time.Millisecond,
		})
		assert.Error(t, err)
	})
}
