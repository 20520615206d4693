//go:build integration

package ratesvc

import (
	"testing"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache(t *testing.T) {
	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	resource, err := pool.Run("redis", "7-alpine", nil)
	require.NoError(t, err)
	defer func() { _ = pool.Purge(resource) }()
	_ = resource.Expire(60)

	client := redis.NewClient(&redis.Options{Addr: resource.GetHostPort("6379/tcp")})
	defer client.Close()
	require.NoError(t, pool.Retry(func() error { return client.Ping().Err() }))

	cache := NewRedisCache(client, time.Minute)
	_, err = cache.Get("MWK")
	assert.Equal(t, errCacheMiss, err)

	require.NoError(t, cache.Set("MWK", map[string]float64{"MWK": 1, "USD": 0.00058}))
	rates, err := cache.Get("MWK")
	require.NoError(t, err)
	assert.Equal(t, 0.00058, rates["USD"])

	ttl, err := client.TTL("rates:MWK").Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute)
}
