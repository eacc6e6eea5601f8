package dienstplan

import "time"

// Config holds the external recipient for one dienstplan grouping.
// sheet_file_name is globally unique and acts as the concurrency guard for
// get-or-create resolution.
type Config struct {
	ID             string
	SheetFileName  string
	RecipientName  string
	RecipientEmail string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PlaceholderRecipientEmail is stored when no recipient identity can be
// derived from client or team data. Admins filter on it to find groupings
// that still need configuration.
const PlaceholderRecipientEmail = "konfiguration-erforderlich@example.com"
