package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/timesheet"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type timesheetRepository struct {
	db *database.DB
}

func NewTimesheetRepository(db *database.DB) timesheet.TimesheetRepository {
	return &timesheetRepository{db: db}
}

const timesheetColumns = `
	id, employee_id, date, planned_start, planned_end, actual_start, actual_end,
	break_minutes, status, absence_type, note, sheet_file_name, sheet_id, source,
	team_id, backup_employee_id, created_at, updated_at
`

func scanTimesheet(row pgx.Row) (timesheet.Timesheet, error) {
	var ts timesheet.Timesheet
	err := row.Scan(
		&ts.ID, &ts.EmployeeID, &ts.Date, &ts.PlannedStart, &ts.PlannedEnd, &ts.ActualStart, &ts.ActualEnd,
		&ts.BreakMinutes, &ts.Status, &ts.AbsenceType, &ts.Note, &ts.SheetFileName, &ts.SheetID, &ts.Source,
		&ts.TeamID, &ts.BackupEmployeeID, &ts.CreatedAt, &ts.UpdatedAt,
	)
	return ts, err
}

// Create implements timesheet.TimesheetRepository.
func (r *timesheetRepository) Create(ctx context.Context, ts timesheet.Timesheet) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO timesheets (
			employee_id, date, planned_start, planned_end, actual_start, actual_end,
			break_minutes, status, absence_type, note, sheet_file_name, sheet_id, source,
			team_id, backup_employee_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		ts.EmployeeID, ts.Date, ts.PlannedStart, ts.PlannedEnd, ts.ActualStart, ts.ActualEnd,
		ts.BreakMinutes, ts.Status, ts.AbsenceType, ts.Note, ts.SheetFileName, ts.SheetID, ts.Source,
		ts.TeamID, ts.BackupEmployeeID,
	).Scan(&ts.ID, &ts.CreatedAt, &ts.UpdatedAt)

	if err != nil {
		if database.IsConflict(database.ClassifyError(err)) {
			return timesheet.Timesheet{}, timesheet.ErrShiftExists
		}
		return timesheet.Timesheet{}, fmt.Errorf("failed to create timesheet: %w", err)
	}

	return ts, nil
}

// GetByID implements timesheet.TimesheetRepository.
func (r *timesheetRepository) GetByID(ctx context.Context, id string) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE id = $1`

	ts, err := scanTimesheet(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
		}
		return timesheet.Timesheet{}, fmt.Errorf("failed to get timesheet by id: %w", err)
	}

	return ts, nil
}

// GetByEmployeeAndDate implements timesheet.TimesheetRepository.
func (r *timesheetRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE employee_id = $1 AND date = $2`

	ts, err := scanTimesheet(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no existing row
		}
		return nil, fmt.Errorf("failed to get timesheet by employee and date: %w", err)
	}

	return &ts, nil
}

// ListByEmployeePeriod implements timesheet.TimesheetRepository.
func (r *timesheetRepository) ListByEmployeePeriod(ctx context.Context, employeeID string, month, year int) ([]timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timesheetColumns + `
		FROM timesheets
		WHERE employee_id = $1
		  AND EXTRACT(MONTH FROM date) = $2
		  AND EXTRACT(YEAR FROM date) = $3
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheets: %w", err)
	}
	defer rows.Close()

	return collectTimesheets(rows)
}

// ListBySheetPeriod implements timesheet.TimesheetRepository.
func (r *timesheetRepository) ListBySheetPeriod(ctx context.Context, sheetFileName string, month, year int) ([]timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timesheetColumns + `
		FROM timesheets
		WHERE sheet_file_name = $1
		  AND EXTRACT(MONTH FROM date) = $2
		  AND EXTRACT(YEAR FROM date) = $3
		ORDER BY employee_id, date
	`

	rows, err := q.Query(ctx, query, sheetFileName, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheets by sheet: %w", err)
	}
	defer rows.Close()

	return collectTimesheets(rows)
}

func collectTimesheets(rows pgx.Rows) ([]timesheet.Timesheet, error) {
	var result []timesheet.Timesheet
	for rows.Next() {
		ts, err := scanTimesheet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timesheet: %w", err)
		}
		result = append(result, ts)
	}
	return result, rows.Err()
}

// Update implements timesheet.TimesheetRepository.
func (r *timesheetRepository) Update(ctx context.Context, ts timesheet.Timesheet) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE timesheets SET
			actual_start = $2,
			actual_end = $3,
			break_minutes = $4,
			status = $5,
			absence_type = $6,
			note = $7,
			sheet_file_name = $8,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		ts.ID, ts.ActualStart, ts.ActualEnd, ts.BreakMinutes, ts.Status, ts.AbsenceType, ts.Note, ts.SheetFileName,
	)
	if err != nil {
		return fmt.Errorf("failed to update timesheet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return timesheet.ErrTimesheetNotFound
	}

	return nil
}

// Upsert implements timesheet.TimesheetRepository. Used by the backup
// substitution engine, which must not fail on an existing row.
func (r *timesheetRepository) Upsert(ctx context.Context, ts timesheet.Timesheet) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO timesheets (
			employee_id, date, planned_start, planned_end, actual_start, actual_end,
			break_minutes, status, absence_type, note, sheet_file_name, sheet_id, source,
			team_id, backup_employee_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			planned_start = EXCLUDED.planned_start,
			planned_end = EXCLUDED.planned_end,
			actual_start = EXCLUDED.actual_start,
			actual_end = EXCLUDED.actual_end,
			status = EXCLUDED.status,
			note = EXCLUDED.note,
			team_id = EXCLUDED.team_id,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		ts.EmployeeID, ts.Date, ts.PlannedStart, ts.PlannedEnd, ts.ActualStart, ts.ActualEnd,
		ts.BreakMinutes, ts.Status, ts.AbsenceType, ts.Note, ts.SheetFileName, ts.SheetID, ts.Source,
		ts.TeamID, ts.BackupEmployeeID,
	).Scan(&ts.ID, &ts.CreatedAt, &ts.UpdatedAt)

	if err != nil {
		return timesheet.Timesheet{}, fmt.Errorf("failed to upsert timesheet: %w", err)
	}

	return ts, nil
}

// CountUnconfirmed implements timesheet.TimesheetRepository.
func (r *timesheetRepository) CountUnconfirmed(ctx context.Context, employeeID string, month, year int) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM timesheets
		WHERE employee_id = $1
		  AND EXTRACT(MONTH FROM date) = $2
		  AND EXTRACT(YEAR FROM date) = $3
		  AND status = 'PLANNED'
		  AND planned_start IS NOT NULL
	`

	var count int
	if err := q.QueryRow(ctx, query, employeeID, month, year).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unconfirmed shifts: %w", err)
	}

	return count, nil
}

// FindSheetFileName implements timesheet.TimesheetRepository.
func (r *timesheetRepository) FindSheetFileName(ctx context.Context, employeeID string, month, year int) (*string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT sheet_file_name
		FROM timesheets
		WHERE employee_id = $1
		  AND EXTRACT(MONTH FROM date) = $2
		  AND EXTRACT(YEAR FROM date) = $3
		  AND sheet_file_name IS NOT NULL
		LIMIT 1
	`

	var name string
	err := q.QueryRow(ctx, query, employeeID, month, year).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find sheet file name: %w", err)
	}

	return &name, nil
}

// FindTeamID implements timesheet.TimesheetRepository.
func (r *timesheetRepository) FindTeamID(ctx context.Context, employeeID string, month, year int) (*string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT team_id
		FROM timesheets
		WHERE employee_id = $1
		  AND EXTRACT(MONTH FROM date) = $2
		  AND EXTRACT(YEAR FROM date) = $3
		  AND team_id IS NOT NULL
		LIMIT 1
	`

	var teamID string
	err := q.QueryRow(ctx, query, employeeID, month, year).Scan(&teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find team id: %w", err)
	}

	return &teamID, nil
}

// BackfillSheetFileName implements timesheet.TimesheetRepository. The
// backfill covers every teammate's rows in the period so the grouping is
// complete for the whole roster, not just the resolving employee.
func (r *timesheetRepository) BackfillSheetFileName(ctx context.Context, teamID string, month, year int, sheetFileName string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE timesheets SET sheet_file_name = $4, updated_at = NOW()
		WHERE team_id = $1
		  AND EXTRACT(MONTH FROM date) = $2
		  AND EXTRACT(YEAR FROM date) = $3
		  AND sheet_file_name IS NULL
	`

	tag, err := q.Exec(ctx, query, teamID, month, year, sheetFileName)
	if err != nil {
		return 0, fmt.Errorf("failed to backfill sheet file name: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ListMissingSheetFileName implements timesheet.TimesheetRepository.
func (r *timesheetRepository) ListMissingSheetFileName(ctx context.Context, limit int) ([]timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT ON (employee_id, EXTRACT(YEAR FROM date), EXTRACT(MONTH FROM date)) ` + timesheetColumns + `
		FROM timesheets
		WHERE sheet_file_name IS NULL
		ORDER BY employee_id, EXTRACT(YEAR FROM date), EXTRACT(MONTH FROM date), date
		LIMIT $1
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list legacy timesheets: %w", err)
	}
	defer rows.Close()

	return collectTimesheets(rows)
}

// ListRosterForPeriod implements timesheet.TimesheetRepository.
func (r *timesheetRepository) ListRosterForPeriod(ctx context.Context, sheetFileName string, month, year int) ([]timesheet.RosterEmployee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT t.employee_id, e.full_name
		FROM timesheets t
		JOIN employees e ON e.id = t.employee_id AND e.deleted_at IS NULL
		WHERE t.sheet_file_name = $1
		  AND EXTRACT(MONTH FROM t.date) = $2
		  AND EXTRACT(YEAR FROM t.date) = $3
		ORDER BY e.full_name
	`

	rows, err := q.Query(ctx, query, sheetFileName, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}
	defer rows.Close()

	var roster []timesheet.RosterEmployee
	for rows.Next() {
		var entry timesheet.RosterEmployee
		if err := rows.Scan(&entry.EmployeeID, &entry.FullName); err != nil {
			return nil, fmt.Errorf("failed to scan roster entry: %w", err)
		}
		roster = append(roster, entry)
	}

	return roster, rows.Err()
}

// SetStatusForEmployeePeriod implements timesheet.TimesheetRepository.
func (r *timesheetRepository) SetStatusForEmployeePeriod(ctx context.Context, employeeID, sheetFileName string, month, year int, from, to timesheet.Status) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE timesheets SET status = $6, updated_at = NOW()
		WHERE employee_id = $1
		  AND sheet_file_name = $2
		  AND EXTRACT(MONTH FROM date) = $3
		  AND EXTRACT(YEAR FROM date) = $4
		  AND status = $5
	`

	if _, err := q.Exec(ctx, query, employeeID, sheetFileName, month, year, from, to); err != nil {
		return fmt.Errorf("failed to flip timesheet status: %w", err)
	}

	return nil
}

// SetStatusForSheetPeriod implements timesheet.TimesheetRepository.
func (r *timesheetRepository) SetStatusForSheetPeriod(ctx context.Context, sheetFileName string, month, year int, from, to timesheet.Status) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE timesheets SET status = $5, updated_at = NOW()
		WHERE sheet_file_name = $1
		  AND EXTRACT(MONTH FROM date) = $2
		  AND EXTRACT(YEAR FROM date) = $3
		  AND status = $4
	`

	if _, err := q.Exec(ctx, query, sheetFileName, month, year, from, to); err != nil {
		return fmt.Errorf("failed to flip timesheet status for sheet: %w", err)
	}

	return nil
}
