package timesheet

import "errors"

var (
	ErrTimesheetNotFound  = errors.New("timesheet not found")
	ErrSubmittedImmutable = errors.New("submitted timesheets can only be changed by an admin")
	ErrInvalidAction      = errors.New("action must be CONFIRM, UPDATE or UNCONFIRM")
	ErrInvalidAbsenceType = errors.New("absence type must be SICK or VACATION")
	ErrShiftExists        = errors.New("a shift already exists for this employee and date")
	ErrNotRowOwner        = errors.New("timesheet belongs to another employee")
)
