package dienstplan

import "context"

// ConfigRepository - interface for dienstplan_configs table
type ConfigRepository interface {
	Create(ctx context.Context, cfg Config) (Config, error)
	GetByID(ctx context.Context, id string) (Config, error)
	GetBySheetFileName(ctx context.Context, sheetFileName string) (Config, error)
	Update(ctx context.Context, cfg Config) error
}

// Resolver derives the stable sheet file name grouping an employee's
// timesheets for one period and guarantees a Config row exists for it.
// It is idempotent and safe under concurrent invocation by teammates.
type Resolver interface {
	Resolve(ctx context.Context, employeeID string, month, year int) (Config, error)
	EnsureConfig(ctx context.Context, sheetFileName, recipientName, recipientEmail string) (Config, error)
}

type UpdateConfigRequest struct {
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
}

type ConfigResponse struct {
	ID             string `json:"id"`
	SheetFileName  string `json:"sheet_file_name"`
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
}

func ToResponse(c Config) ConfigResponse {
	return ConfigResponse{
		ID:             c.ID,
		SheetFileName:  c.SheetFileName,
		RecipientName:  c.RecipientName,
		RecipientEmail: c.RecipientEmail,
	}
}
