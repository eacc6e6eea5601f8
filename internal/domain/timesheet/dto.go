package timesheet

import (
	"time"

	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/validator"
)

// UpdateTimesheetRequest covers the employee-facing confirm/update/unconfirm
// action plus the fields an update may touch. Setting an absence type while
// the row has a backup employee triggers the substitution workflow.
type UpdateTimesheetRequest struct {
	Action       string  `json:"action"`
	ActualStart  *string `json:"actual_start"`
	ActualEnd    *string `json:"actual_end"`
	BreakMinutes *int    `json:"break_minutes"`
	Note         *string `json:"note"`
	AbsenceType  *string `json:"absence_type"`
}

func (r UpdateTimesheetRequest) Validate() error {
	var errs validator.ValidationErrors

	switch Action(r.Action) {
	case ActionConfirm, ActionUpdate, ActionUnconfirm:
	default:
		errs = append(errs, validator.ValidationError{Field: "action", Message: "action must be CONFIRM, UPDATE or UNCONFIRM"})
	}
	if r.ActualStart != nil && !validator.IsValidTimestamp(*r.ActualStart) {
		errs = append(errs, validator.ValidationError{Field: "actual_start", Message: "must be an RFC3339 timestamp"})
	}
	if r.ActualEnd != nil && !validator.IsValidTimestamp(*r.ActualEnd) {
		errs = append(errs, validator.ValidationError{Field: "actual_end", Message: "must be an RFC3339 timestamp"})
	}
	if r.BreakMinutes != nil && *r.BreakMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "break_minutes", Message: "must not be negative"})
	}
	if r.AbsenceType != nil && *r.AbsenceType != "" && !AbsenceType(*r.AbsenceType).Valid() {
		errs = append(errs, validator.ValidationError{Field: "absence_type", Message: "must be SICK or VACATION"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CreateShiftRequest is the admin schedule surface, also used to duplicate
// an existing shift onto another date.
type CreateShiftRequest struct {
	EmployeeID       string  `json:"employee_id"`
	Date             string  `json:"date"`
	PlannedStart     *string `json:"planned_start"`
	PlannedEnd       *string `json:"planned_end"`
	BackupEmployeeID *string `json:"backup_employee_id"`
	Note             *string `json:"note"`
}

func (r CreateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if !validator.IsValidDate(r.Date) {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"})
	}
	if r.PlannedStart != nil && !validator.IsValidTimestamp(*r.PlannedStart) {
		errs = append(errs, validator.ValidationError{Field: "planned_start", Message: "must be an RFC3339 timestamp"})
	}
	if r.PlannedEnd != nil && !validator.IsValidTimestamp(*r.PlannedEnd) {
		errs = append(errs, validator.ValidationError{Field: "planned_end", Message: "must be an RFC3339 timestamp"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TimesheetResponse struct {
	ID               string     `json:"id"`
	EmployeeID       string     `json:"employee_id"`
	EmployeeName     *string    `json:"employee_name,omitempty"`
	Date             string     `json:"date"`
	PlannedStart     *time.Time `json:"planned_start"`
	PlannedEnd       *time.Time `json:"planned_end"`
	ActualStart      *time.Time `json:"actual_start"`
	ActualEnd        *time.Time `json:"actual_end"`
	BreakMinutes     int        `json:"break_minutes"`
	Status           string     `json:"status"`
	AbsenceType      *string    `json:"absence_type"`
	Note             *string    `json:"note"`
	SheetFileName    *string    `json:"sheet_file_name"`
	TeamID           *string    `json:"team_id"`
	BackupEmployeeID *string    `json:"backup_employee_id"`
}

func ToResponse(ts Timesheet) TimesheetResponse {
	var absence *string
	if ts.AbsenceType != nil {
		s := string(*ts.AbsenceType)
		absence = &s
	}
	return TimesheetResponse{
		ID:               ts.ID,
		EmployeeID:       ts.EmployeeID,
		EmployeeName:     ts.EmployeeName,
		Date:             ts.Date.Format("2006-01-02"),
		PlannedStart:     ts.PlannedStart,
		PlannedEnd:       ts.PlannedEnd,
		ActualStart:      ts.ActualStart,
		ActualEnd:        ts.ActualEnd,
		BreakMinutes:     ts.BreakMinutes,
		Status:           string(ts.Status),
		AbsenceType:      absence,
		Note:             ts.Note,
		SheetFileName:    ts.SheetFileName,
		TeamID:           ts.TeamID,
		BackupEmployeeID: ts.BackupEmployeeID,
	}
}
