package http

import (
	"net/http"

	"github.com/assistenzwerk/timesheet-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// uuidParam reads a UUID route parameter. Malformed ids are rejected here
// instead of surfacing as postgres type errors.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	if _, err := uuid.Parse(raw); err != nil {
		response.BadRequest(w, "Invalid "+name+" parameter", nil)
		return "", false
	}
	return raw, true
}
