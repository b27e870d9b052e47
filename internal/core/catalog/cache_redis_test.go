// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookreview/internal/core/catalog"
	"github.com/taibuivan/bookreview/pkg/uuidv7"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set; skipping redis integration test")
	}

	options, err := redis.ParseURL(redisURL)
	require.NoError(t, err)

	client := redis.NewClient(options)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

/*
TestRedisCache_RoundTrip stores and reads back a mapping, including a pair
whose parts contain the key separator.
*/
func TestRedisCache_RoundTrip(t *testing.T) {
	client := newTestRedis(t)
	cache := catalog.NewRedisCache(client, time.Minute)
	ctx := context.Background()

	// Unique titles keep parallel runs against a shared server apart.
	suffix := uuidv7.New()
	title := "Dune:Messiah " + suffix
	author := "Frank Herbert"

	_, found, err := cache.Get(ctx, title, author)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, title, author, "entry-1"))

	id, found, err := cache.Get(ctx, title, author)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "entry-1", id)

	// Splitting the same characters differently is a different pair.
	_, found, err = cache.Get(ctx, "Dune", "Messiah "+suffix+":"+author)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_Delete(t *testing.T) {
	client := newTestRedis(t)
	cache := catalog.NewRedisCache(client, time.Minute)
	ctx := context.Background()

	title := "Solaris " + uuidv7.New()
	require.NoError(t, cache.Set(ctx, title, "Stanislaw Lem", "entry-1"))
	require.NoError(t, cache.Delete(ctx, title, "Stanislaw Lem"))

	_, found, err := cache.Get(ctx, title, "Stanislaw Lem")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting a missing key is not an error.
	require.NoError(t, cache.Delete(ctx, title, "Stanislaw Lem"))
}
