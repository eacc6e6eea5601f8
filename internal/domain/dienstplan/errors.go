package dienstplan

import "errors"

var (
	ErrNoAssignment  = errors.New("employee has neither a team nor an active client assignment")
	ErrNotConfigured = errors.New("no dienstplan configuration for this sheet")
	ErrConfigExists  = errors.New("dienstplan configuration already exists for this sheet")
)
