package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/auth"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/dienstplan"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/employee"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/submission"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/timesheet"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/database"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/signature"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// The submission blocker carries the count for the UI message.
	var unconfirmed *submission.UnconfirmedShiftsError
	if errors.As(err, &unconfirmed) {
		BadRequest(w, "Unconfirmed shifts remain for this period", map[string]string{
			"unconfirmed_count": fmt.Sprintf("%d", unconfirmed.Count),
		})
		return
	}

	// Retryable concurrency failures get a generic message; conflicts that
	// escape the services are programming errors and fall through to 500.
	if database.IsTransient(err) {
		ServiceUnavailable(w, "The request could not be completed, please try again")
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrAdminRequired):
		Forbidden(w, "Admin access required")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, employee.ErrTeamNotFound):
		NotFound(w, "Team not found")
	case errors.Is(err, employee.ErrBackupNotFound):
		NotFound(w, "Backup employee not found")
	case errors.Is(err, employee.ErrSelfBackup):
		BadRequest(w, "An employee cannot be their own backup", nil)
	case errors.Is(err, employee.ErrHasBlockingHistory):
		Conflict(w, "Employee has signatures or audit history, use force delete")
	case errors.Is(err, employee.ErrCannotDeleteSelf):
		BadRequest(w, "Cannot delete your own employee record", nil)

	// Timesheet domain errors
	case errors.Is(err, timesheet.ErrTimesheetNotFound):
		NotFound(w, "Timesheet not found")
	case errors.Is(err, timesheet.ErrSubmittedImmutable):
		Conflict(w, "Submitted timesheets can only be changed by an admin")
	case errors.Is(err, timesheet.ErrNotRowOwner):
		Forbidden(w, "Timesheet belongs to another employee")
	case errors.Is(err, timesheet.ErrShiftExists):
		Conflict(w, "A shift already exists for this employee and date")
	case errors.Is(err, timesheet.ErrInvalidAction):
		BadRequest(w, "Action must be CONFIRM, UPDATE or UNCONFIRM", nil)

	// Dienstplan domain errors
	case errors.Is(err, dienstplan.ErrNoAssignment):
		BadRequest(w, "Employee has neither a team nor an active client assignment", nil)
	case errors.Is(err, dienstplan.ErrNotConfigured):
		NotFound(w, "No dienstplan configuration for this sheet")

	// Submission domain errors
	case errors.Is(err, submission.ErrSubmissionNotFound):
		NotFound(w, "Submission not found")
	case errors.Is(err, submission.ErrAlreadySigned):
		Conflict(w, "Employee has already signed this submission")
	case errors.Is(err, submission.ErrAlreadyCompleted):
		Conflict(w, "Submission is already completed")
	case errors.Is(err, submission.ErrRecipientAlreadySigned):
		Conflict(w, "Recipient has already signed")
	case errors.Is(err, submission.ErrSubmissionCompleted):
		Conflict(w, "Submission is completed and immutable")
	case errors.Is(err, submission.ErrSignatureNotFound):
		NotFound(w, "Signature not found")
	case errors.Is(err, submission.ErrInvalidToken):
		Unauthorized(w, "Invalid signature token")
	case errors.Is(err, submission.ErrTokenExpired):
		Unauthorized(w, "Signature token has expired")
	case errors.Is(err, submission.ErrEmployeesPending):
		Conflict(w, "Not all employees have signed yet")
	case errors.Is(err, submission.ErrEmptySignature):
		BadRequest(w, "Signature image is required", nil)

	// Signature image errors
	case errors.Is(err, signature.ErrInvalidPayload):
		BadRequest(w, "Signature must be a base64 encoded PNG data URL", nil)
	case errors.Is(err, signature.ErrTooLarge):
		BadRequest(w, "Signature image exceeds the size limit", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
