// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by [Store.FindID] when no entry matches the pair.
	ErrNotFound = errors.New("catalog: entry not found")

	// ErrDuplicate is returned by [Store.Insert] when a concurrent writer
	// committed the same (title, author) pair first.
	ErrDuplicate = errors.New("catalog: entry already exists")
)

// Store is the transactional view of the catalog the [Resolver] works against.
//
// Implementations are bound to the caller's transaction. A failed Insert must
// leave that transaction usable, so the resolver can look the pair up again.
type Store interface {
	FindID(context context.Context, title, author string) (string, error)
	Insert(context context.Context, entry *Entry) error

	// Matches reports whether id still names the exact (title, author) pair.
	Matches(context context.Context, id, title, author string) (bool, error)
}

// Reader serves catalog reads outside any submission.
type Reader interface {
	FindByID(context context.Context, id string) (*Entry, error)
}

// Cache remembers committed (title, author) to id mappings.
//
// Entries can be renamed or removed by tooling outside this service, so a
// cached id is a hint: the resolver confirms it against the store before use
// and deletes mappings that no longer match.
type Cache interface {
	Get(context context.Context, title, author string) (string, bool, error)
	Set(context context.Context, title, author, id string) error
	Delete(context context.Context, title, author string) error
}
