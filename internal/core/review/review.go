// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package review ingests book reviews and serves the recent-reviews listing.
//
// A submission resolves its catalog entry, records the review and folds the
// rating into the entry's aggregates inside one transaction, so readers never
// observe a review without its aggregate contribution or the other way round.
package review

import (
	"time"

	"github.com/taibuivan/bookreview/internal/platform/constants"
)

// ListLimit is the fixed cap of the recent-reviews listing.
const ListLimit = constants.RecentReviewsLimit

// Review is a persisted, immutable review. BookTitle, Author and Genre are
// copies of the submitted values.
type Review struct {
	ID         string    `json:"id"`
	BookID     string    `json:"book_id"`
	BookTitle  string    `json:"book_title"`
	Author     string    `json:"author"`
	Genre      *string   `json:"genre"`
	Rating     int       `json:"rating"`
	ReviewText string    `json:"review_text"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewWithAggregate is a review joined with its entry's aggregates as of
// the listing read.
type ReviewWithAggregate struct {
	Review
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// Submission is the client payload of POST /api/reviews.
//
// Rating is decoded as a number so that fractional or missing values can be
// reported as validation errors instead of decode errors.
type Submission struct {
	BookTitle  string   `json:"bookTitle"`
	Author     string   `json:"author"`
	Genre      *string  `json:"genre"`
	Rating     *float64 `json:"rating"`
	ReviewText string   `json:"reviewText"`
}
