package submission

import (
	"errors"
	"fmt"
)

var (
	ErrSubmissionNotFound     = errors.New("submission not found")
	ErrAlreadySigned          = errors.New("employee has already signed this submission")
	ErrAlreadyCompleted       = errors.New("submission is already completed")
	ErrRecipientAlreadySigned = errors.New("recipient has already signed")
	ErrSubmissionCompleted    = errors.New("submission is completed and immutable")
	ErrSignatureNotFound      = errors.New("signature not found")
	ErrInvalidToken           = errors.New("invalid signature token")
	ErrTokenExpired           = errors.New("signature token has expired")
	ErrEmployeesPending       = errors.New("not all employees have signed yet")
	ErrEmptySignature         = errors.New("signature image is required")
)

// UnconfirmedShiftsError blocks submission while the caller still has
// planned, unconfirmed shifts in the period. Count feeds the UI message.
type UnconfirmedShiftsError struct {
	Count int
}

func (e *UnconfirmedShiftsError) Error() string {
	return fmt.Sprintf("%d unconfirmed shifts remain", e.Count)
}
