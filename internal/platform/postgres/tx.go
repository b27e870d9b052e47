// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// rollbackTimeout bounds the ROLLBACK issued after a failed transaction body.
const rollbackTimeout = 5 * time.Second

// Beginner starts transactions. [*pgxpool.Pool] satisfies it.
type Beginner interface {
	BeginTx(ctx context.Context, options pgx.TxOptions) (pgx.Tx, error)
}

// ReadCommitted is the isolation level used by review ingestion. Correctness
// comes from the unique constraint on books, not from the isolation level.
var ReadCommitted = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

/*
InTx runs fn inside a single transaction on one pooled connection.

Description: The transaction is committed when fn returns nil and rolled back
otherwise. The rollback runs on a context detached from ctx's cancellation, so
a request that timed out still leaves no partial state before InTx returns.
The connection goes back to the pool on every exit path.

Parameters:
  - ctx: context.Context for the transaction body and commit
  - beginner: Beginner (usually the process-wide pool)
  - options: pgx.TxOptions (isolation level)
  - fn: func(pgx.Tx) error (the transaction body)

Returns:
  - error: fn's error, a begin/commit failure, or a joined rollback failure
*/
func InTx(ctx context.Context, beginner Beginner, options pgx.TxOptions, fn func(pgx.Tx) error) (err error) {
	transaction, err := beginner.BeginTx(ctx, options)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}

		rollbackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
		defer cancel()

		if rollbackErr := transaction.Rollback(rollbackCtx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			err = errors.Join(err, fmt.Errorf("postgres: rollback failed: %w", rollbackErr))
		}
	}()

	if err = fn(transaction); err != nil {
		return err
	}

	if err = transaction.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: failed to commit transaction: %w", err)
	}

	return nil
}
