package sheetsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/assistenzwerk/timesheet-backend-go/internal/config"
	"golang.org/x/oauth2/google"
)

// Syncer pushes shift changes back to the external schedule spreadsheet.
// Every method is best effort: failures are logged and swallowed, callers
// never see an error from this package.
type Syncer interface {
	PushShift(ctx context.Context, update ShiftUpdate)
}

// ShiftUpdate is one row written back to the sheet.
type ShiftUpdate struct {
	SheetFileName string     `json:"sheet_file_name"`
	EmployeeName  string     `json:"employee_name"`
	Date          string     `json:"date"`
	PlannedStart  *time.Time `json:"planned_start"`
	PlannedEnd    *time.Time `json:"planned_end"`
	AbsenceType   *string    `json:"absence_type"`
	Note          *string    `json:"note"`
}

const sheetsScope = "https://www.googleapis.com/auth/spreadsheets"

type client struct {
	httpClient     *http.Client
	spreadsheetURL string
	timeout        time.Duration
}

// NewClient builds a sheet sync client authenticated with a Google service
// account. When sync is disabled a no-op syncer is returned.
func NewClient(cfg config.SheetSyncConfig) (Syncer, error) {
	if !cfg.Enabled {
		return noopSyncer{}, nil
	}

	credJSON, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read sheet sync credentials: %w", err)
	}
	jwtConfig, err := google.JWTConfigFromJSON(credJSON, sheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheet sync credentials: %w", err)
	}

	return &client{
		httpClient:     jwtConfig.Client(context.Background()),
		spreadsheetURL: cfg.SpreadsheetURL,
		timeout:        cfg.Timeout,
	}, nil
}

func (c *client) PushShift(ctx context.Context, update ShiftUpdate) {
	// Detach from the request context so the triggering request never waits
	// on the sheet write, only the timeout bounds it.
	syncCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	body, err := json.Marshal(update)
	if err != nil {
		slog.Warn("sheet sync: marshal shift update failed", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(syncCtx, http.MethodPost, c.spreadsheetURL, bytes.NewReader(body))
	if err != nil {
		slog.Warn("sheet sync: build request failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("sheet sync: push shift failed",
			"sheet", update.SheetFileName, "date", update.Date, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		slog.Warn("sheet sync: push shift rejected",
			"sheet", update.SheetFileName, "date", update.Date, "status", resp.StatusCode)
	}
}

type noopSyncer struct{}

func (noopSyncer) PushShift(context.Context, ShiftUpdate) {}
