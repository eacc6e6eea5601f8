package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/submission"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeSignatureRepository struct {
	db *database.DB
}

func NewEmployeeSignatureRepository(db *database.DB) submission.EmployeeSignatureRepository {
	return &employeeSignatureRepository{db: db}
}

// Create implements submission.EmployeeSignatureRepository. The unique
// constraint on (team_submission_id, employee_id) is the last line of
// defense against double-signing; it surfaces as database.ConflictError.
func (r *employeeSignatureRepository) Create(ctx context.Context, sig submission.EmployeeSignature) (submission.EmployeeSignature, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employee_signatures (team_submission_id, employee_id, signature)
		VALUES ($1, $2, $3)
		RETURNING id, signed_at
	`

	err := q.QueryRow(ctx, query, sig.TeamSubmissionID, sig.EmployeeID, sig.Signature).
		Scan(&sig.ID, &sig.SignedAt)
	if err != nil {
		if classified := database.ClassifyError(err); database.IsConflict(classified) {
			return submission.EmployeeSignature{}, classified
		}
		return submission.EmployeeSignature{}, fmt.Errorf("failed to create employee signature: %w", err)
	}

	return sig, nil
}

// GetBySubmissionAndEmployee implements submission.EmployeeSignatureRepository.
func (r *employeeSignatureRepository) GetBySubmissionAndEmployee(ctx context.Context, submissionID, employeeID string) (*submission.EmployeeSignature, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, team_submission_id, employee_id, signature, signed_at
		FROM employee_signatures
		WHERE team_submission_id = $1 AND employee_id = $2
	`

	var sig submission.EmployeeSignature
	err := q.QueryRow(ctx, query, submissionID, employeeID).Scan(
		&sig.ID, &sig.TeamSubmissionID, &sig.EmployeeID, &sig.Signature, &sig.SignedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get employee signature: %w", err)
	}

	return &sig, nil
}

// ListBySubmission implements submission.EmployeeSignatureRepository.
func (r *employeeSignatureRepository) ListBySubmission(ctx context.Context, submissionID string) ([]submission.EmployeeSignature, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT s.id, s.team_submission_id, s.employee_id, s.signature, s.signed_at, e.full_name
		FROM employee_signatures s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.team_submission_id = $1
		ORDER BY s.signed_at
	`

	rows, err := q.Query(ctx, query, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee signatures: %w", err)
	}
	defer rows.Close()

	var sigs []submission.EmployeeSignature
	for rows.Next() {
		var sig submission.EmployeeSignature
		if err := rows.Scan(&sig.ID, &sig.TeamSubmissionID, &sig.EmployeeID, &sig.Signature, &sig.SignedAt, &sig.EmployeeName); err != nil {
			return nil, fmt.Errorf("failed to scan employee signature: %w", err)
		}
		sigs = append(sigs, sig)
	}

	return sigs, rows.Err()
}

// Delete implements submission.EmployeeSignatureRepository.
func (r *employeeSignatureRepository) Delete(ctx context.Context, submissionID, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		DELETE FROM employee_signatures WHERE team_submission_id = $1 AND employee_id = $2
	`, submissionID, employeeID)
	if err != nil {
		return fmt.Errorf("failed to delete employee signature: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return submission.ErrSignatureNotFound
	}

	return nil
}

// DeleteAllBySubmission implements submission.EmployeeSignatureRepository.
// Deleting from an already-empty set is not an error, reset is idempotent.
func (r *employeeSignatureRepository) DeleteAllBySubmission(ctx context.Context, submissionID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM employee_signatures WHERE team_submission_id = $1`, submissionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete employee signatures: %w", err)
	}

	return tag.RowsAffected(), nil
}
