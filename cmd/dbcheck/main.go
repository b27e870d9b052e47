// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command dbcheck verifies that the review database is reachable and consistent.
//
// It reports the server time and version, the applied schema version, the row
// count of each table, and every catalog entry whose stored aggregates differ
// from a recomputation over its reviews. It exits non-zero when the database
// is unreachable, the schema is dirty, or any drift is found.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/taibuivan/bookreview/internal/core/review"
	"github.com/taibuivan/bookreview/internal/platform/config"
	"github.com/taibuivan/bookreview/internal/platform/constants"
	"github.com/taibuivan/bookreview/internal/platform/migration"
	pgstore "github.com/taibuivan/bookreview/internal/platform/postgres"
	"github.com/taibuivan/bookreview/migrations"
)

const checkTimeout = 30 * time.Second

var appName = constants.AppName + "-dbcheck"

var (
	errDirtySchema = errors.New("schema is in a dirty state")
	errDrift       = errors.New("stored aggregates differ from their reviews")
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("app", appName))

	err := run(log)
	if err == nil {
		return
	}

	log.Error("dbcheck_failed", slog.Any("error", err))
	switch {
	case errors.Is(err, errDirtySchema):
		os.Exit(2)
	case errors.Is(err, errDrift):
		os.Exit(3)
	default:
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	// 1. Connectivity
	pool, err := pgstore.NewPool(ctx, cfg.DSN(), pgstore.PoolOptions{
		MaxConns:         2,
		StatementTimeout: checkTimeout,
		ApplicationName:  appName,
	}, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	var serverTime time.Time
	var serverVersion string
	if err := pool.QueryRow(ctx, `SELECT now(), version()`).Scan(&serverTime, &serverVersion); err != nil {
		return err
	}
	log.Info("database_reachable",
		slog.Time("server_time", serverTime),
		slog.String("server_version", serverVersion),
	)

	// 2. Schema version
	version, isDirty, err := migration.Version(cfg.DSN(), migrations.FS, log)
	if err != nil {
		return err
	}
	log.Info("schema_version", slog.Uint64("version", uint64(version)), slog.Bool("dirty", isDirty))
	if isDirty {
		return fmt.Errorf("version %d: %w", version, errDirtySchema)
	}

	// 3. Row counts
	store := review.NewPostgresStore(pool)
	counts, err := store.Counts(ctx)
	if err != nil {
		return err
	}
	log.Info("table_counts", slog.Int64("books", counts.Books), slog.Int64("reviews", counts.Reviews))

	// 4. Aggregate drift
	drifts, err := store.FindAggregateDrift(ctx)
	if err != nil {
		return err
	}
	for _, drift := range drifts {
		log.Warn("aggregate_drift",
			slog.String("book_id", drift.BookID),
			slog.String("title", drift.Title),
			slog.String("author", drift.Author),
			slog.Int("stored_count", drift.StoredCount),
			slog.Int("actual_count", drift.ActualCount),
			slog.Float64("stored_average", drift.StoredAverage),
			slog.Float64("actual_average", drift.ActualAverage),
		)
	}
	if len(drifts) > 0 {
		return fmt.Errorf("%d entries: %w", len(drifts), errDrift)
	}

	log.Info("dbcheck_passed")
	return nil
}
