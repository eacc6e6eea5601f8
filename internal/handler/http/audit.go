package http

import (
	"net/http"
	"time"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/audit"
	"github.com/assistenzwerk/timesheet-backend-go/internal/handler/http/response"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/validator"
)

type AuditHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type AuditHandlerImpl struct {
	auditRepo audit.Repository
}

func NewAuditHandler(auditRepo audit.Repository) AuditHandler {
	return &AuditHandlerImpl{auditRepo: auditRepo}
}

type auditEntryResponse struct {
	ID        string    `json:"id"`
	Date      *string   `json:"date"`
	Field     string    `json:"field"`
	OldValue  *string   `json:"old_value"`
	NewValue  *string   `json:"new_value"`
	ChangedBy string    `json:"changed_by"`
	Reason    *string   `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns the audit trail of one employee, optionally narrowed to a
// single date. Admin only.
func (h *AuditHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		response.BadRequest(w, "employeeId is required", nil)
		return
	}

	var date *time.Time
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := validator.ParseDate(d)
		if err != nil {
			response.BadRequest(w, "date must be YYYY-MM-DD", nil)
			return
		}
		date = &parsed
	}

	entries, err := h.auditRepo.ListByEmployee(r.Context(), employeeID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		var dateStr *string
		if e.Date != nil {
			s := e.Date.Format("2006-01-02")
			dateStr = &s
		}
		result = append(result, auditEntryResponse{
			ID:        e.ID,
			Date:      dateStr,
			Field:     e.Field,
			OldValue:  e.OldValue,
			NewValue:  e.NewValue,
			ChangedBy: e.ChangedBy,
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt,
		})
	}

	response.Success(w, result)
}
