// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	options, err := parseOptions("redis://:secret@cache.internal:6380/2", ClientOptions{PoolSize: 16, ClientName: "bookreview-api"})
	require.NoError(t, err)

	assert.Equal(t, "cache.internal:6380", options.Addr)
	assert.Equal(t, 2, options.DB)
	assert.Equal(t, "secret", options.Password)
	assert.Equal(t, 16, options.PoolSize)
	assert.Equal(t, 8, options.MaxIdleConns)
	assert.Equal(t, "bookreview-api", options.ClientName)
	assert.Equal(t, maxRetries, options.MaxRetries)
	assert.Equal(t, readTimeout, options.ReadTimeout)
}

func TestParseOptions_KeepsURLPoolSize(t *testing.T) {
	options, err := parseOptions("redis://localhost:6379/0?pool_size=3", ClientOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, options.PoolSize)
	assert.Empty(t, options.ClientName)
}

func TestParseOptions_InvalidURL(t *testing.T) {
	_, err := parseOptions("http://localhost:6379", ClientOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis: invalid URL")
}
