package submission

import (
	"time"

	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/validator"
)

type CreateSubmissionRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r CreateSubmissionRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be between 1 and 12"})
	}
	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year is out of range"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SignRequest struct {
	Token     string `json:"token"`
	Signature string `json:"signature"`
}

func (r SignRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Token) {
		errs = append(errs, validator.ValidationError{Field: "token", Message: "token is required"})
	}
	if validator.IsEmpty(r.Signature) {
		errs = append(errs, validator.ValidationError{Field: "signature", Message: "signature image is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ResetRequest struct {
	Reason *string `json:"reason"`
}

type ReleaseRequest struct {
	Note *string `json:"note"`
}

// RosterEntry is one employee expected to sign, with their current
// signature state. The roster is recomputed from live timesheet rows on
// every read.
type RosterEntry struct {
	EmployeeID string     `json:"employee_id"`
	FullName   string     `json:"full_name"`
	Signed     bool       `json:"signed"`
	SignedAt   *time.Time `json:"signed_at,omitempty"`
}

type TeamSubmissionView struct {
	ID                string     `json:"id"`
	SheetFileName     string     `json:"sheet_file_name"`
	Month             int        `json:"month"`
	Year              int        `json:"year"`
	Status            string     `json:"status"`
	SignatureToken    string     `json:"signature_token"`
	TokenExpiresAt    time.Time  `json:"token_expires_at"`
	RecipientSignedAt *time.Time `json:"recipient_signed_at"`
	PdfURL            *string    `json:"pdf_url"`
}

// StatusResponse is returned by status reads and create/join. Kind resolves
// the legacy-vs-team variant once, so callers never branch on both shapes.
type StatusResponse struct {
	Kind              Kind                `json:"kind"`
	Submission        *TeamSubmissionView `json:"submission,omitempty"`
	Legacy            *MonthlySubmission  `json:"legacy,omitempty"`
	Roster            []RosterEntry       `json:"roster"`
	SignedCount       int                 `json:"signed_count"`
	TotalCount        int                 `json:"total_count"`
	CurrentUserSigned bool                `json:"current_user_signed"`
}

func ToView(s TeamSubmission) TeamSubmissionView {
	return TeamSubmissionView{
		ID:                s.ID,
		SheetFileName:     s.SheetFileName,
		Month:             s.Month,
		Year:              s.Year,
		Status:            string(s.Status),
		SignatureToken:    s.SignatureToken,
		TokenExpiresAt:    s.TokenExpiresAt,
		RecipientSignedAt: s.RecipientSignedAt,
		PdfURL:            s.PdfURL,
	}
}
