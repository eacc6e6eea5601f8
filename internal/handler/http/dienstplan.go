package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	domain "github.com/assistenzwerk/timesheet-backend-go/internal/domain/dienstplan"
	"github.com/assistenzwerk/timesheet-backend-go/internal/handler/http/response"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/validator"
	"github.com/assistenzwerk/timesheet-backend-go/internal/service/dienstplan"
	"github.com/go-chi/chi/v5"
)

type DienstplanHandler interface {
	GetConfig(w http.ResponseWriter, r *http.Request)
	UpdateConfig(w http.ResponseWriter, r *http.Request)
}

type DienstplanHandlerImpl struct {
	service *dienstplan.ServiceImpl
}

func NewDienstplanHandler(service *dienstplan.ServiceImpl) DienstplanHandler {
	return &DienstplanHandlerImpl{service: service}
}

// GetConfig implements DienstplanHandler.
func (h *DienstplanHandlerImpl) GetConfig(w http.ResponseWriter, r *http.Request) {
	sheetFileName := chi.URLParam(r, "sheetFileName")

	result, err := h.service.GetConfig(r.Context(), sheetFileName)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpdateConfig implements DienstplanHandler, admin only.
func (h *DienstplanHandlerImpl) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	sheetFileName := chi.URLParam(r, "sheetFileName")

	var req domain.UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateConfig decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if validator.IsEmpty(req.RecipientName) || !validator.IsValidEmail(req.RecipientEmail) {
		response.ValidationError(w, map[string]string{
			"recipient_name":  "recipient name is required",
			"recipient_email": "must be a valid email",
		})
		return
	}

	result, err := h.service.UpdateConfig(r.Context(), sheetFileName, req)
	if err != nil {
		slog.Error("UpdateConfig service error", "sheet", sheetFileName, "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
