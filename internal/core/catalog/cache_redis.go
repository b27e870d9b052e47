// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/bookreview/internal/platform/constants"
)

// RedisCache implements [Cache] on top of Redis string keys.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache returns a cache whose keys expire after ttl. A zero ttl keeps
// keys forever.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached id for the pair, if any.
func (cache *RedisCache) Get(context context.Context, title, author string) (string, bool, error) {
	id, err := cache.client.Get(context, entryKey(title, author)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("catalog: cache get: %w", err)
	}
	return id, true, nil
}

// Set stores a committed mapping.
func (cache *RedisCache) Set(context context.Context, title, author, id string) error {
	if err := cache.client.Set(context, entryKey(title, author), id, cache.ttl).Err(); err != nil {
		return fmt.Errorf("catalog: cache set: %w", err)
	}
	return nil
}

// Delete drops a mapping that no longer matches the store.
func (cache *RedisCache) Delete(context context.Context, title, author string) error {
	if err := cache.client.Del(context, entryKey(title, author)).Err(); err != nil {
		return fmt.Errorf("catalog: cache delete: %w", err)
	}
	return nil
}

// entryKey escapes both parts so a ':' inside a title cannot collide with
// another pair.
func entryKey(title, author string) string {
	return constants.RedisPrefixCatalogEntry + url.QueryEscape(title) + ":" + url.QueryEscape(author)
}
