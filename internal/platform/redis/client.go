// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis provides a managed client for volatile data storage.

The review service uses it for the catalog entry cache: a (title, author) pair
maps to a catalog entry id that never changes once committed, so the mapping
can be cached with a long TTL and no invalidation.

Redis is optional. When no URL is configured, [NewClient] is not called and the
catalog resolver falls back to the database for every lookup.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// A slow cache must never stall review ingestion, so every call fails fast
// and is retried at most once.
const (
	dialTimeout  = 2 * time.Second
	readTimeout  = 500 * time.Millisecond
	writeTimeout = 500 * time.Millisecond
	pingTimeout  = 2 * time.Second
	maxRetries   = 1
)

// ClientOptions overrides the pool settings carried by the Redis URL.
type ClientOptions struct {
	// PoolSize bounds open connections. Zero keeps the URL or library default.
	PoolSize int

	// ClientName is sent with CLIENT SETNAME on every new connection.
	ClientName string
}

// NewClient parses a Redis URL and returns a ready-to-use client.
//
// # Parameters
//   - context: Context for the initial ping.
//   - redisURL: Redis connection URL.
//   - clientOptions: Pool overrides.
//   - logger: Structured logger for connection events.
func NewClient(context stdctx.Context, redisURL string, clientOptions ClientOptions, logger *slog.Logger) (*redis.Client, error) {
	options, err := parseOptions(redisURL, clientOptions)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(options)
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.Int("pool_size", options.PoolSize),
	)

	return client, nil
}

func parseOptions(redisURL string, clientOptions ClientOptions) (*redis.Options, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	if clientOptions.PoolSize > 0 {
		options.PoolSize = clientOptions.PoolSize
		options.MaxIdleConns = max(1, clientOptions.PoolSize/2)
	}
	if clientOptions.ClientName != "" {
		options.ClientName = clientOptions.ClientName
	}
	options.MaxRetries = maxRetries
	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	return options, nil
}

// Ping verifies that the Redis client is healthy.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}

	return nil
}
