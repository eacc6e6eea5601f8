package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes we react to. Everything else bubbles up unchanged.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

// ConflictError is raised when a concurrent transaction won a race on a
// unique key. Callers are expected to re-fetch the winner's row and proceed,
// never to surface this to the end user.
type ConflictError struct {
	Constraint string
	Err        error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %v", e.Constraint, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// TransientError marks failures the caller may retry: serialization
// failures, lock timeouts, canceled statements.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient database error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// ClassifyError translates vendor error codes into the typed errors the
// services branch on. Unrecognized errors come back unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return &ConflictError{Constraint: pgErr.ConstraintName, Err: err}
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeQueryCanceled:
			return &TransientError{Err: err}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &TransientError{Err: err}
	}

	return err
}

// IsConflict reports whether err is a unique-key race.
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}

// IsTransient reports whether err is retryable by the caller.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}
