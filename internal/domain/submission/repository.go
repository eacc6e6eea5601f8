package submission

import (
	"context"
)

// TeamSubmissionRepository - interface for team_submissions table
type TeamSubmissionRepository interface {
	Create(ctx context.Context, sub TeamSubmission) (TeamSubmission, error)
	GetByID(ctx context.Context, id string) (TeamSubmission, error)
	GetBySheetPeriod(ctx context.Context, sheetFileName string, month, year int) (*TeamSubmission, error)
	GetByToken(ctx context.Context, token string) (TeamSubmission, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	SetRecipientSigned(ctx context.Context, id string, signature string) (TeamSubmission, error)
	ClearRecipientSignature(ctx context.Context, id string) error
	SetReleaseNote(ctx context.Context, id string, releasedBy string, note *string) error
	Delete(ctx context.Context, id string) error
}

// EmployeeSignatureRepository - interface for employee_signatures table
type EmployeeSignatureRepository interface {
	Create(ctx context.Context, sig EmployeeSignature) (EmployeeSignature, error)
	GetBySubmissionAndEmployee(ctx context.Context, submissionID, employeeID string) (*EmployeeSignature, error)
	ListBySubmission(ctx context.Context, submissionID string) ([]EmployeeSignature, error)
	Delete(ctx context.Context, submissionID, employeeID string) error
	DeleteAllBySubmission(ctx context.Context, submissionID string) (int64, error)
}

// MonthlySubmissionRepository - read-only access to the legacy
// single-employee submissions.
type MonthlySubmissionRepository interface {
	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (*MonthlySubmission, error)
}

// Coordinator orchestrates the multi-party signature workflow.
type Coordinator interface {
	GetStatus(ctx context.Context, employeeID string, month, year int) (StatusResponse, error)
	CreateOrJoin(ctx context.Context, employeeID string, month, year int) (StatusResponse, error)
	SignAsEmployee(ctx context.Context, submissionID, employeeID, token, signature string) (StatusResponse, error)
	SignAsRecipient(ctx context.Context, token, signature string) (TeamSubmissionView, error)
	DeleteEmployeeSignature(ctx context.Context, submissionID, employeeID string) error
	DeleteRecipientSignature(ctx context.Context, submissionID string) error
	WithdrawOwnSignature(ctx context.Context, submissionID, employeeID string) error
	Reset(ctx context.Context, submissionID, adminID string, reason *string) error
	// Release completes a submission without the recipient's digital
	// counter-signature, for periods signed on paper.
	Release(ctx context.Context, submissionID, adminID string, note *string) error
}
