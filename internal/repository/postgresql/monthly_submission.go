package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/submission"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// monthlySubmissionRepository reads the legacy single-employee submissions.
// Nothing in this codebase writes the table.
type monthlySubmissionRepository struct {
	db *database.DB
}

func NewMonthlySubmissionRepository(db *database.DB) submission.MonthlySubmissionRepository {
	return &monthlySubmissionRepository{db: db}
}

// GetByEmployeePeriod implements submission.MonthlySubmissionRepository.
func (r *monthlySubmissionRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (*submission.MonthlySubmission, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, month, year, status, signed_at, pdf_url, created_at
		FROM monthly_submissions
		WHERE employee_id = $1 AND month = $2 AND year = $3
	`

	var sub submission.MonthlySubmission
	err := q.QueryRow(ctx, query, employeeID, month, year).Scan(
		&sub.ID, &sub.EmployeeID, &sub.Month, &sub.Year, &sub.Status, &sub.SignedAt, &sub.PdfURL, &sub.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get monthly submission: %w", err)
	}

	return &sub, nil
}
