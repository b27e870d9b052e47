// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package catalog owns the book catalog: one entry per exact (title, author)
// pair, created on first review and never deleted.
package catalog

import "time"

// Entry is a catalog entry ("book") together with its store-maintained
// rating aggregates.
type Entry struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Genre  *string `json:"genre"`

	// AverageRating and TotalReviews are derived from the entry's reviews and
	// written only by the review ingestor, inside the submission transaction.
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`

	CreatedAt time.Time `json:"created_at"`
}
