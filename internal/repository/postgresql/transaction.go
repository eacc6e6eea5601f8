package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// Submission transactions carry an explicit max wait and execution budget so
// a stuck lock surfaces as a retryable error instead of hanging a request.
const (
	txLockTimeout      = 2 * time.Second
	txStatementTimeout = 5 * time.Second
)

// WithTransaction executes fn inside a database transaction
func WithTransaction(ctx context.Context, db *database.DB, fn func(ctx context.Context) error) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", database.ClassifyError(err))
	}
	return runInTx(ctx, tx, fn)
}

// WithSerializableTx executes fn at serializable isolation with bounded
// lock wait and statement timeouts. Unique-violation and serialization
// failures come back as database.ConflictError / database.TransientError.
func WithSerializableTx(ctx context.Context, db *database.DB, fn func(ctx context.Context) error) error {
	tx, err := db.BeginSerializableTx(ctx)
	if err != nil {
		return fmt.Errorf("begin serializable transaction: %w", database.ClassifyError(err))
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf(
		"SET LOCAL lock_timeout = '%dms'; SET LOCAL statement_timeout = '%dms'",
		txLockTimeout.Milliseconds(), txStatementTimeout.Milliseconds(),
	)); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("set transaction timeouts: %w", database.ClassifyError(err))
	}

	return runInTx(ctx, tx, fn)
}

func runInTx(ctx context.Context, tx pgx.Tx, fn func(ctx context.Context) error) error {
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				fmt.Printf("rollback error during panic recovery: %v\n", rbErr)
			}
			panic(p)
		}
	}()

	// Execute function with the tx visible to repositories
	if err := fn(database.ContextWithTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", database.ClassifyError(err))
	}

	return nil
}

// GetQuerier returns either transaction or pool
// Used in repositories to support both transactional and non-transactional operations
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := database.TxFromContext(ctx); ok {
		return tx
	}
	return db.Pool
}
