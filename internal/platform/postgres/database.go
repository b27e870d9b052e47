// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/bookreview/internal/platform/dberr"
)

// maintenanceDatabase is the database connected to when the target is missing.
const maintenanceDatabase = "postgres"

/*
EnsureDatabase creates the database named by dsn when it does not exist yet.

Description: It first connects to the target itself. Only when the server
answers that the database is unknown does it connect to the maintenance
database with the same credentials and issue CREATE DATABASE. A concurrent
creator winning the race is not an error.

Parameters:
  - ctx: Context for both connections
  - dsn: A libpq-compatible connection string or postgres:// URL
  - logger: Structured logger

Returns:
  - error: Connection or creation failure
*/
func EnsureDatabase(ctx context.Context, dsn string, logger *slog.Logger) error {
	targetConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("postgres: invalid DSN: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	// 1. The common case: the database is already there
	connection, err := pgx.ConnectConfig(connectCtx, targetConfig)
	if err == nil {
		return connection.Close(ctx)
	}
	if !dberr.IsUnknownDatabase(err) {
		return fmt.Errorf("postgres: connect to %q: %w", targetConfig.Database, err)
	}

	// 2. Create it from the maintenance database
	name, maintenanceConfig := creationTarget(targetConfig)
	admin, err := pgx.ConnectConfig(connectCtx, maintenanceConfig)
	if err != nil {
		return fmt.Errorf("postgres: connect to %q: %w", maintenanceConfig.Database, err)
	}
	defer func() {
		if closeErr := admin.Close(context.WithoutCancel(ctx)); closeErr != nil {
			logger.Warn("maintenance_connection_close_failed", slog.Any("error", closeErr))
		}
	}()

	_, err = admin.Exec(ctx, createDatabaseStatement(name))
	if dberr.IsDuplicateDatabase(err) {
		logger.Info("database_created_concurrently", slog.String("database", name))
		return nil
	}
	if err != nil {
		return fmt.Errorf("postgres: create database %q: %w", name, err)
	}

	logger.Info("database_created", slog.String("database", name))
	return nil
}

// creationTarget returns the database to create and a copy of the connection
// settings pointed at the maintenance database.
func creationTarget(targetConfig *pgx.ConnConfig) (string, *pgx.ConnConfig) {
	maintenanceConfig := targetConfig.Copy()
	maintenanceConfig.Database = maintenanceDatabase
	return targetConfig.Database, maintenanceConfig
}

// createDatabaseStatement quotes name, since identifiers cannot be bound as parameters.
func createDatabaseStatement(name string) string {
	return "CREATE DATABASE " + pgx.Identifier{name}.Sanitize()
}
