// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/bookreview/internal/platform/database/schema"
	"github.com/taibuivan/bookreview/internal/platform/dberr"
	"github.com/taibuivan/bookreview/pkg/uuidv7"
)

// DBTX is satisfied by both [pgx.Tx] and [*pgxpool.Pool].
//
// Begin on a pgx.Tx opens a SAVEPOINT, which is what Insert relies on.
type DBTX interface {
	Begin(context context.Context) (pgx.Tx, error)
	QueryRow(context context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements [Store] and [Reader] over the books table.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore binds the store to a pool or to an open transaction.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// FindID returns the id for the exact pair or [ErrNotFound].
func (repository *PostgresStore) FindID(context context.Context, title, author string) (string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		schema.CatalogBook.ID, schema.CatalogBook.Table,
		schema.CatalogBook.Title, schema.CatalogBook.Author)

	var id string
	err := repository.db.QueryRow(context, query, title, author).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("catalog: find entry: %w", err)
	}
	return id, nil
}

// Matches confirms that id still carries the exact pair. It uses the primary
// key, so a stale cached id costs one index probe.
func (repository *PostgresStore) Matches(context context.Context, id, title, author string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3)`,
		schema.CatalogBook.Table, schema.CatalogBook.ID,
		schema.CatalogBook.Title, schema.CatalogBook.Author)

	var matches bool
	if err := repository.db.QueryRow(context, query, id, title, author).Scan(&matches); err != nil {
		return false, fmt.Errorf("catalog: confirm cached entry: %w", err)
	}
	return matches, nil
}

/*
Insert creates a catalog entry with zeroed aggregates.

Description: The INSERT runs inside a savepoint. A unique violation on
(title, author) rolls back to the savepoint and returns [ErrDuplicate], which
leaves the enclosing transaction usable for the follow-up lookup. Under READ
COMMITTED a racing insert blocks until the first writer finishes, so the
duplicate is only reported once that writer has committed.

Returns:
  - error: ErrDuplicate on a lost race, otherwise the wrapped driver error
*/
func (repository *PostgresStore) Insert(context context.Context, entry *Entry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s
	`,
		schema.CatalogBook.Table,
		schema.CatalogBook.ID, schema.CatalogBook.Title, schema.CatalogBook.Author, schema.CatalogBook.Genre,
		schema.CatalogBook.CreatedAt,
	)

	savepoint, err := repository.db.Begin(context)
	if err != nil {
		return fmt.Errorf("catalog: open savepoint: %w", err)
	}

	id := uuidv7.New()
	err = savepoint.QueryRow(context, query, id, entry.Title, entry.Author, entry.Genre).Scan(&entry.CreatedAt)
	if err != nil {
		if rollbackErr := savepoint.Rollback(context); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			return errors.Join(fmt.Errorf("catalog: insert entry: %w", err), rollbackErr)
		}
		if dberr.IsUniqueViolation(err, schema.CatalogBook.TitleAuthorKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("catalog: insert entry: %w", err)
	}

	if err := savepoint.Commit(context); err != nil {
		return fmt.Errorf("catalog: release savepoint: %w", err)
	}

	entry.ID = id
	entry.AverageRating = 0
	entry.TotalReviews = 0
	return nil
}

// FindByID returns a single entry with its current aggregates.
func (repository *PostgresStore) FindByID(context context.Context, id string) (*Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.CatalogBook.Columns(), ", "),
		schema.CatalogBook.Table, schema.CatalogBook.ID)

	entry := &Entry{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&entry.ID, &entry.Title, &entry.Author, &entry.Genre,
		&entry.AverageRating, &entry.TotalReviews, &entry.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_catalog_entry")
	}
	return entry, nil
}
