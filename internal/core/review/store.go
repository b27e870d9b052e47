// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"context"

	"github.com/taibuivan/bookreview/internal/core/catalog"
)

// Store is the persistence boundary of the review service.
type Store interface {
	// WithinTx runs fn in one transaction. It commits when fn returns nil and
	// rolls back otherwise, before returning.
	WithinTx(context context.Context, fn func(Tx) error) error

	// ListRecent returns at most limit reviews, newest first, joined with the
	// aggregates of their entry. The whole result comes from one snapshot.
	ListRecent(context context.Context, limit int) ([]*ReviewWithAggregate, error)
}

// Tx is the set of writes available inside [Store.WithinTx].
type Tx interface {
	// Catalog returns the catalog store bound to this transaction.
	Catalog() catalog.Store

	// Insert persists the review and fills in ID and CreatedAt.
	Insert(context context.Context, review *Review) error

	// ApplyRating folds one rating into the entry's sum, count and average.
	ApplyRating(context context.Context, bookID string, rating int) error
}
