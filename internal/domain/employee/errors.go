package employee

import "errors"

var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrEmailExists         = errors.New("email already registered")
	ErrTeamNotFound        = errors.New("team not found")
	ErrInvalidRole         = errors.New("role must be EMPLOYEE, TEAMLEAD or ADMIN")
	ErrSelfBackup          = errors.New("an employee cannot be their own backup")
	ErrHasBlockingHistory  = errors.New("employee has signatures or audit history, force delete required")
	ErrCannotDeleteSelf    = errors.New("cannot delete your own employee record")
	ErrBackupNotFound      = errors.New("backup employee not found")
	ErrUnauthorized        = errors.New("unauthorized to access this employee")
)
