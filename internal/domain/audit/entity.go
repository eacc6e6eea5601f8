package audit

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is one append-only field-level change record. Entries are never
// mutated; deleting them requires an explicit force-confirmed employee
// delete.
type Entry struct {
	ID         string
	EmployeeID string
	Date       *time.Time
	Field      string
	OldValue   *string
	NewValue   *string
	ChangedBy  string
	Reason     *string
	CreatedAt  time.Time
}

// Snapshot serializes a value for the old/new columns. Failures degrade to
// a nil value, the audit sink never blocks the primary operation.
func Snapshot(v interface{}) *string {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

// Repository - interface for audit_logs table
type Repository interface {
	Insert(ctx context.Context, entry Entry) error
	ListByEmployee(ctx context.Context, employeeID string, date *time.Time) ([]Entry, error)
	DeleteByEmployee(ctx context.Context, employeeID string) (int64, error)
}
