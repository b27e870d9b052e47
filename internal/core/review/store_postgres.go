// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/bookreview/internal/core/catalog"
	"github.com/taibuivan/bookreview/internal/platform/database/schema"
	"github.com/taibuivan/bookreview/internal/platform/dberr"
	"github.com/taibuivan/bookreview/internal/platform/postgres"
	"github.com/taibuivan/bookreview/pkg/uuidv7"
)

// driftTolerance absorbs float rounding when comparing stored and recomputed averages.
const driftTolerance = 1e-9

// PostgresStore implements [Store] over the books and reviews tables.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// WithinTx runs fn in a READ COMMITTED transaction on one pooled connection.
func (repository *PostgresStore) WithinTx(context context.Context, fn func(Tx) error) error {
	return postgres.InTx(context, repository.pool, postgres.ReadCommitted, func(transaction pgx.Tx) error {
		return fn(&postgresTx{
			tx:      transaction,
			catalog: catalog.NewPostgresStore(transaction),
		})
	})
}

// ListRecent reads reviews and aggregates in a single statement, so every row
// reflects the same snapshot.
func (repository *PostgresStore) ListRecent(context context.Context, limit int) ([]*ReviewWithAggregate, error) {
	query := fmt.Sprintf(`
		SELECT r.%s, r.%s, r.%s, r.%s, r.%s, r.%s, r.%s, r.%s,
		       b.%s, b.%s
		FROM %s r
		JOIN %s b ON b.%s = r.%s
		ORDER BY r.%s DESC, r.%s DESC
		LIMIT $1
	`,
		schema.SocialReview.ID, schema.SocialReview.BookID, schema.SocialReview.BookTitle, schema.SocialReview.Author,
		schema.SocialReview.Genre, schema.SocialReview.Rating, schema.SocialReview.ReviewText, schema.SocialReview.CreatedAt,
		schema.CatalogBook.AverageRating, schema.CatalogBook.TotalReviews,
		schema.SocialReview.Table, schema.CatalogBook.Table,
		schema.CatalogBook.ID, schema.SocialReview.BookID,
		schema.SocialReview.CreatedAt, schema.SocialReview.ID,
	)

	rows, err := repository.pool.Query(context, query, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list_recent_reviews")
	}
	defer rows.Close()

	reviews := make([]*ReviewWithAggregate, 0, limit)
	for rows.Next() {
		item := &ReviewWithAggregate{}
		if err := rows.Scan(
			&item.ID, &item.BookID, &item.BookTitle, &item.Author,
			&item.Genre, &item.Rating, &item.ReviewText, &item.CreatedAt,
			&item.AverageRating, &item.TotalReviews,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_review")
		}
		reviews = append(reviews, item)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_recent_reviews")
	}

	return reviews, nil
}

// # Diagnostics

// TableCounts holds the row count of each table.
type TableCounts struct {
	Books   int64
	Reviews int64
}

// Counts returns the row counts of books and reviews from one snapshot.
func (repository *PostgresStore) Counts(context context.Context) (TableCounts, error) {
	query := fmt.Sprintf(`SELECT (SELECT COUNT(*) FROM %s), (SELECT COUNT(*) FROM %s)`,
		schema.CatalogBook.Table, schema.SocialReview.Table)

	var counts TableCounts
	if err := repository.pool.QueryRow(context, query).Scan(&counts.Books, &counts.Reviews); err != nil {
		return TableCounts{}, dberr.Wrap(err, "count_rows")
	}
	return counts, nil
}

// AggregateDrift describes an entry whose stored aggregates disagree with its reviews.
type AggregateDrift struct {
	BookID        string
	Title         string
	Author        string
	StoredCount   int
	ActualCount   int
	StoredAverage float64
	ActualAverage float64
}

// FindAggregateDrift recomputes every entry's aggregates from its reviews and
// returns the entries whose stored values differ.
func (repository *PostgresStore) FindAggregateDrift(context context.Context) ([]AggregateDrift, error) {
	query := fmt.Sprintf(`
		SELECT b.%[1]s, b.%[2]s, b.%[3]s, b.%[4]s, b.%[5]s,
		       COUNT(r.%[6]s)::int,
		       COALESCE(AVG(r.%[7]s), 0)::double precision
		FROM %[8]s b
		LEFT JOIN %[9]s r ON r.%[10]s = b.%[1]s
		GROUP BY b.%[1]s
		HAVING b.%[4]s <> COUNT(r.%[6]s)
		    OR abs(b.%[5]s - COALESCE(AVG(r.%[7]s), 0)::double precision) > $1
		ORDER BY b.%[11]s
	`,
		schema.CatalogBook.ID, schema.CatalogBook.Title, schema.CatalogBook.Author,
		schema.CatalogBook.TotalReviews, schema.CatalogBook.AverageRating,
		schema.SocialReview.ID, schema.SocialReview.Rating,
		schema.CatalogBook.Table, schema.SocialReview.Table, schema.SocialReview.BookID,
		schema.CatalogBook.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, driftTolerance)
	if err != nil {
		return nil, dberr.Wrap(err, "find_aggregate_drift")
	}
	defer rows.Close()

	drifts := make([]AggregateDrift, 0)
	for rows.Next() {
		var drift AggregateDrift
		if err := rows.Scan(
			&drift.BookID, &drift.Title, &drift.Author, &drift.StoredCount, &drift.StoredAverage,
			&drift.ActualCount, &drift.ActualAverage,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_aggregate_drift")
		}
		drifts = append(drifts, drift)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "find_aggregate_drift")
	}

	return drifts, nil
}

// # Transaction Scope

type postgresTx struct {
	tx      pgx.Tx
	catalog *catalog.PostgresStore
}

func (scope *postgresTx) Catalog() catalog.Store {
	return scope.catalog
}

func (scope *postgresTx) Insert(context context.Context, review *Review) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`,
		schema.SocialReview.Table,
		schema.SocialReview.ID, schema.SocialReview.BookID, schema.SocialReview.BookTitle, schema.SocialReview.Author,
		schema.SocialReview.Genre, schema.SocialReview.Rating, schema.SocialReview.ReviewText,
		schema.SocialReview.CreatedAt,
	)

	id := uuidv7.New()
	err := scope.tx.QueryRow(context, query,
		id, review.BookID, review.BookTitle, review.Author, review.Genre, review.Rating, review.ReviewText,
	).Scan(&review.CreatedAt)
	if err != nil {
		return fmt.Errorf("review: insert review: %w", err)
	}

	review.ID = id
	return nil
}

// ApplyRating updates the aggregates with expressions over the current row.
// Concurrent submissions for the same entry queue on its row lock and each
// UPDATE re-reads the latest committed values, so no increment is lost.
func (scope *postgresTx) ApplyRating(context context.Context, bookID string, rating int) error {
	query := fmt.Sprintf(`
		UPDATE %[1]s
		SET %[2]s = %[2]s + $2,
		    %[3]s = %[3]s + 1,
		    %[4]s = (%[2]s + $2)::double precision / (%[3]s + 1),
		    %[5]s = clock_timestamp()
		WHERE %[6]s = $1
	`,
		schema.CatalogBook.Table,
		schema.CatalogBook.RatingSum, schema.CatalogBook.TotalReviews, schema.CatalogBook.AverageRating,
		schema.CatalogBook.UpdatedAt, schema.CatalogBook.ID,
	)

	tag, err := scope.tx.Exec(context, query, bookID, rating)
	if err != nil {
		return fmt.Errorf("review: apply rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("review: apply rating: catalog entry %s does not exist", bookID)
	}
	return nil
}
