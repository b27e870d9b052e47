// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/bookreview/internal/core/catalog"
	"github.com/taibuivan/bookreview/internal/platform/apperr"
	"github.com/taibuivan/bookreview/internal/platform/constants"
	"github.com/taibuivan/bookreview/internal/platform/dberr"
	"github.com/taibuivan/bookreview/internal/platform/validate"
	"github.com/taibuivan/bookreview/pkg/pointer"
)

// Options tunes submission handling.
type Options struct {
	// MinRating and MaxRating bound the accepted rating scale (inclusive).
	MinRating int
	MaxRating int

	// SubmitTimeout bounds the whole ingest transaction. Zero disables it.
	SubmitTimeout time.Duration
}

// DefaultOptions returns the 1 to 5 scale with a 10 second submit deadline.
func DefaultOptions() Options {
	return Options{MinRating: 1, MaxRating: 5, SubmitTimeout: 10 * time.Second}
}

// Service implements review ingestion and the aggregate view.
type Service struct {
	store    Store
	resolver *catalog.Resolver
	options  Options
	logger   *slog.Logger
}

func NewService(store Store, resolver *catalog.Resolver, options Options, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		options:  options,
		logger:   logger,
	}
}

/*
Submit validates a submission and persists it atomically.

Description: Validation runs before the store is touched. Resolution of the
catalog entry, the review insert and the aggregate update share one
transaction; on any failure that transaction is rolled back before Submit
returns, so a failed submission leaves neither an orphan entry nor a partial
aggregate behind.

Parameters:
  - ctx: context.Context
  - submission: Submission (raw client payload)

Returns:
  - *Review: The persisted review with store-assigned id and timestamp
  - error: VALIDATION_ERROR, CONFLICT_EXHAUSTED, STORE_UNAVAILABLE or TRANSACTION_FAILURE
*/
func (service *Service) Submit(ctx context.Context, submission Submission) (*Review, error) {

	// 1. Reject invalid input without touching the store
	if err := service.validate(submission); err != nil {
		return nil, err
	}

	review := &Review{
		BookTitle:  submission.BookTitle,
		Author:     submission.Author,
		Genre:      normalizeGenre(submission.Genre),
		Rating:     int(*submission.Rating),
		ReviewText: submission.ReviewText,
	}

	txCtx := ctx
	if service.options.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, service.options.SubmitTimeout)
		defer cancel()
	}

	// 2. Resolve, insert and aggregate in one transaction
	var resolution catalog.Resolution
	err := service.store.WithinTx(txCtx, func(tx Tx) error {
		var err error
		resolution, err = service.resolver.Resolve(txCtx, tx.Catalog(), review.BookTitle, review.Author, review.Genre)
		if err != nil {
			return err
		}

		review.BookID = resolution.ID
		if err := tx.Insert(txCtx, review); err != nil {
			return err
		}

		return tx.ApplyRating(txCtx, review.BookID, review.Rating)
	})
	if err != nil {
		return nil, classifySubmitError(err)
	}

	// 3. The entry is committed: it is now safe to cache its id
	if !resolution.Cached {
		service.resolver.Remember(ctx, review.BookTitle, review.Author, review.BookID)
	}

	service.logger.InfoContext(ctx, "review_submitted",
		slog.String("review_id", review.ID),
		slog.String("book_id", review.BookID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// ListRecent returns the newest reviews (at most [ListLimit]) with their
// entry's aggregates.
func (service *Service) ListRecent(ctx context.Context) ([]*ReviewWithAggregate, error) {
	return service.store.ListRecent(ctx, ListLimit)
}

func (service *Service) validate(submission Submission) error {
	validator := &validate.Validator{}
	return validator.
		Required("bookTitle", submission.BookTitle).
		MaxLen("bookTitle", submission.BookTitle, constants.MaxCatalogFieldLength).
		Required("author", submission.Author).
		MaxLen("author", submission.Author, constants.MaxCatalogFieldLength).
		Score("rating", submission.Rating, service.options.MinRating, service.options.MaxRating).
		Required("reviewText", submission.ReviewText).
		Err()
}

// classifySubmitError maps a failed transaction onto the submission failure kinds.
func classifySubmitError(err error) error {
	if apperr.IsAppError(err) {
		return err
	}
	if dberr.IsUnavailable(err) {
		return apperr.StoreUnavailable(err)
	}
	return apperr.TransactionFailure(err)
}

// normalizeGenre trims the genre and treats a blank one as absent.
func normalizeGenre(genre *string) *string {
	trimmed := strings.TrimSpace(pointer.Val(genre))
	if trimmed == "" {
		return nil
	}
	return pointer.To(trimmed)
}
