package timesheet

import (
	"context"
	"time"
)

// TimesheetRepository - interface for timesheets table
type TimesheetRepository interface {
	Create(ctx context.Context, ts Timesheet) (Timesheet, error)
	GetByID(ctx context.Context, id string) (Timesheet, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Timesheet, error)
	ListByEmployeePeriod(ctx context.Context, employeeID string, month, year int) ([]Timesheet, error)
	ListBySheetPeriod(ctx context.Context, sheetFileName string, month, year int) ([]Timesheet, error)
	Update(ctx context.Context, ts Timesheet) error
	Upsert(ctx context.Context, ts Timesheet) (Timesheet, error)

	// CountUnconfirmed counts rows with status PLANNED and a non-null
	// planned start, the submission blocker.
	CountUnconfirmed(ctx context.Context, employeeID string, month, year int) (int, error)

	// Dienstplan resolution support.
	FindSheetFileName(ctx context.Context, employeeID string, month, year int) (*string, error)
	FindTeamID(ctx context.Context, employeeID string, month, year int) (*string, error)
	BackfillSheetFileName(ctx context.Context, teamID string, month, year int, sheetFileName string) (int64, error)
	ListMissingSheetFileName(ctx context.Context, limit int) ([]Timesheet, error)

	// ListRosterForPeriod derives the signing roster from live timesheet
	// rows. The roster is never cached on the submission.
	ListRosterForPeriod(ctx context.Context, sheetFileName string, month, year int) ([]RosterEmployee, error)

	// Status flips used by the signature coordinator.
	SetStatusForEmployeePeriod(ctx context.Context, employeeID, sheetFileName string, month, year int, from, to Status) error
	SetStatusForSheetPeriod(ctx context.Context, sheetFileName string, month, year int, from, to Status) error
}

// Actor identifies the caller of a timesheet mutation.
type Actor struct {
	EmployeeID string
	Role       string
}

// TimesheetService - employee/admin timesheet operations
type TimesheetService interface {
	ListForPeriod(ctx context.Context, employeeID string, month, year int) ([]TimesheetResponse, error)
	// Update applies CONFIRM, UPDATE or UNCONFIRM and, as a non-critical
	// side effect, triggers the backup substitution workflow.
	Update(ctx context.Context, actor Actor, id string, req UpdateTimesheetRequest) (TimesheetResponse, error)
	// CreateShift is the admin schedule surface (create or duplicate).
	CreateShift(ctx context.Context, req CreateShiftRequest) (TimesheetResponse, error)
}
