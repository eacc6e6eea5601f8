package timesheet

import (
	"time"
)

// Timesheet is one work record per employee per calendar date.
// (employee_id, date) is unique.
type Timesheet struct {
	ID         string
	EmployeeID string
	Date       time.Time

	PlannedStart *time.Time
	PlannedEnd   *time.Time
	ActualStart  *time.Time
	ActualEnd    *time.Time
	BreakMinutes int

	Status      Status
	AbsenceType *AbsenceType
	Note        *string

	// External sheet provenance and the dienstplan grouping key.
	SheetFileName *string
	SheetID       *string
	Source        *string

	TeamID           *string
	BackupEmployeeID *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	EmployeeName *string
}

type Status string

const (
	StatusPlanned   Status = "PLANNED"
	StatusConfirmed Status = "CONFIRMED"
	StatusChanged   Status = "CHANGED"
	StatusSubmitted Status = "SUBMITTED"
)

// Confirmed reports whether the row counts as confirmed for the
// all-confirmed submission precondition.
func (s Status) Confirmed() bool {
	return s == StatusConfirmed || s == StatusChanged || s == StatusSubmitted
}

type AbsenceType string

const (
	AbsenceSick     AbsenceType = "SICK"
	AbsenceVacation AbsenceType = "VACATION"
)

func (a AbsenceType) Valid() bool {
	return a == AbsenceSick || a == AbsenceVacation
}

type Action string

const (
	ActionConfirm   Action = "CONFIRM"
	ActionUpdate    Action = "UPDATE"
	ActionUnconfirm Action = "UNCONFIRM"
)

// RosterEmployee is one member of the set of employees expected to sign a
// submission, derived from live timesheet rows sharing a sheet file name and
// period.
type RosterEmployee struct {
	EmployeeID string
	FullName   string
}
