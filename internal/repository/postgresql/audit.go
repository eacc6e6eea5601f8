package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/audit"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/database"
)

type auditRepository struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.Repository {
	return &auditRepository{db: db}
}

// Insert implements audit.Repository. Rows are append-only.
func (r *auditRepository) Insert(ctx context.Context, entry audit.Entry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO audit_logs (employee_id, date, field, old_value, new_value, changed_by, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q.Exec(ctx, query,
		entry.EmployeeID, entry.Date, entry.Field, entry.OldValue, entry.NewValue, entry.ChangedBy, entry.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	return nil
}

// ListByEmployee implements audit.Repository.
func (r *auditRepository) ListByEmployee(ctx context.Context, employeeID string, date *time.Time) ([]audit.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, date, field, old_value, new_value, changed_by, reason, created_at
		FROM audit_logs
		WHERE employee_id = $1 AND ($2::date IS NULL OR date = $2)
		ORDER BY created_at DESC
	`

	rows, err := q.Query(ctx, query, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.Date, &e.Field, &e.OldValue, &e.NewValue, &e.ChangedBy, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// DeleteByEmployee implements audit.Repository. Only reachable through the
// force-confirmed employee delete.
func (r *auditRepository) DeleteByEmployee(ctx context.Context, employeeID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM audit_logs WHERE employee_id = $1`, employeeID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit entries: %w", err)
	}

	return tag.RowsAffected(), nil
}
