package submission

import "time"

// TeamSubmission is the team-level monthly submission aggregate. Exactly one
// active row exists per (sheet_file_name, month, year); it is created lazily
// on the first employee signature attempt.
type TeamSubmission struct {
	ID                 string
	SheetFileName      string
	Month              int
	Year               int
	Status             Status
	DienstplanConfigID string

	// Opaque token authorizing employee and recipient signing. Expires
	// seven days after issue.
	SignatureToken string
	TokenExpiresAt time.Time

	RecipientSignedAt  *time.Time
	RecipientSignature *string

	ManuallyReleasedAt *time.Time
	ManuallyReleasedBy *string
	ReleaseNote        *string
	PdfURL             *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Status string

const (
	StatusPendingEmployees Status = "PENDING_EMPLOYEES"
	StatusPendingRecipient Status = "PENDING_RECIPIENT"
	StatusCompleted        Status = "COMPLETED"
)

// TokenValidity is how long a signature token stays usable.
const TokenValidity = 7 * 24 * time.Hour

// EmployeeSignature - one per (team_submission_id, employee_id).
type EmployeeSignature struct {
	ID               string
	TeamSubmissionID string
	EmployeeID       string
	Signature        string
	SignedAt         time.Time

	// Joined fields
	EmployeeName *string
}

// MonthlySubmission is the legacy single-employee submission form. Rows are
// read-only from this codebase; they only surface through status reads for
// periods predating the team workflow.
type MonthlySubmission struct {
	ID         string
	EmployeeID string
	Month      int
	Year       int
	Status     Status
	SignedAt   *time.Time
	PdfURL     *string
	CreatedAt  time.Time
}

// Kind distinguishes the two submission variants at read time.
type Kind string

const (
	KindTeam   Kind = "team"
	KindLegacy Kind = "legacy"
)
