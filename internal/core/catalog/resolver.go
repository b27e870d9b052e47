// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taibuivan/bookreview/internal/platform/apperr"
)

// DefaultMaxAttempts bounds the lookup/insert cycles of a single resolution.
const DefaultMaxAttempts = 3

// Resolver maps an exact (title, author) pair to its catalog entry id,
// creating the entry when it does not exist yet.
//
// Concurrent first submissions for the same pair are serialized by the unique
// constraint on the store, not by a lock: the loser of the insert race sees
// [ErrDuplicate] and looks the pair up again.
type Resolver struct {
	cache       Cache
	maxAttempts int
	logger      *slog.Logger
}

// NewResolver builds a resolver. cache may be nil.
func NewResolver(cache Cache, maxAttempts int, logger *slog.Logger) *Resolver {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Resolver{
		cache:       cache,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Resolution is the outcome of [Resolver.Resolve].
type Resolution struct {
	// ID is the catalog entry id.
	ID string

	// Cached is set when a confirmed cache hit served the id, so the mapping
	// does not need to be written back.
	Cached bool
}

/*
Resolve returns the id of the entry for (title, author), creating it if needed.

Description: Matching is exact and case-sensitive. genre is only used when the
entry is created; an existing entry keeps the genre it was created with. The
store must be bound to the caller's open transaction, so a newly created entry
becomes visible to others only when that transaction commits. A cached id is
used only after the store confirms it still names the pair; a stale mapping is
deleted and the pair is resolved as if the cache had missed.

Parameters:
  - context: context.Context
  - store: Store (transaction-bound)
  - title, author: string (already validated as non-blank)
  - genre: *string (optional)

Returns:
  - Resolution: The entry id and whether it came from the cache
  - error: CONFLICT_EXHAUSTED after maxAttempts lost races, or the store error
*/
func (resolver *Resolver) Resolve(context context.Context, store Store, title, author string, genre *string) (Resolution, error) {
	if id, ok := resolver.cached(context, title, author); ok {
		matches, err := store.Matches(context, id, title, author)
		if err != nil {
			return Resolution{}, err
		}
		if matches {
			return Resolution{ID: id, Cached: true}, nil
		}

		resolver.logger.WarnContext(context, "catalog_cache_stale", slog.String("entry_id", id))
		resolver.forget(context, title, author)
	}

	var lastConflict error
	for attempt := 1; attempt <= resolver.maxAttempts; attempt++ {

		// 1. Lookup
		id, err := store.FindID(context, title, author)
		if err == nil {
			return Resolution{ID: id}, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Resolution{}, err
		}

		// 2. Create
		entry := &Entry{Title: title, Author: author, Genre: genre}
		err = store.Insert(context, entry)
		if err == nil {
			resolver.logger.InfoContext(context, "catalog_entry_created",
				slog.String("entry_id", entry.ID),
				slog.Int("attempt", attempt),
			)
			return Resolution{ID: entry.ID}, nil
		}
		if !errors.Is(err, ErrDuplicate) {
			return Resolution{}, err
		}

		// 3. Another writer committed the pair first: look it up again.
		lastConflict = err
		resolver.logger.WarnContext(context, "catalog_conflict_retry",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", resolver.maxAttempts),
		)
	}

	return Resolution{}, apperr.ConflictExhausted(resolver.maxAttempts, lastConflict)
}

// Remember caches a committed mapping. Call it only after the transaction
// that resolved id has committed. Cache failures are logged and ignored.
func (resolver *Resolver) Remember(context context.Context, title, author, id string) {
	if resolver.cache == nil {
		return
	}
	if err := resolver.cache.Set(context, title, author, id); err != nil {
		resolver.logger.WarnContext(context, "catalog_cache_write_failed", slog.Any("error", err))
	}
}

func (resolver *Resolver) cached(context context.Context, title, author string) (string, bool) {
	if resolver.cache == nil {
		return "", false
	}

	id, ok, err := resolver.cache.Get(context, title, author)
	if err != nil {
		resolver.logger.WarnContext(context, "catalog_cache_read_failed", slog.Any("error", err))
		return "", false
	}
	return id, ok
}

func (resolver *Resolver) forget(context context.Context, title, author string) {
	if err := resolver.cache.Delete(context, title, author); err != nil {
		resolver.logger.WarnContext(context, "catalog_cache_delete_failed", slog.Any("error", err))
	}
}
