package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/submission"
	"github.com/assistenzwerk/timesheet-backend-go/internal/handler/http/middleware"
	"github.com/assistenzwerk/timesheet-backend-go/internal/handler/http/response"
)

type SubmissionHandler interface {
	GetStatus(w http.ResponseWriter, r *http.Request)
	CreateOrJoin(w http.ResponseWriter, r *http.Request)
	SignAsEmployee(w http.ResponseWriter, r *http.Request)
	SignAsRecipient(w http.ResponseWriter, r *http.Request)
	WithdrawOwnSignature(w http.ResponseWriter, r *http.Request)
	DeleteEmployeeSignature(w http.ResponseWriter, r *http.Request)
	DeleteRecipientSignature(w http.ResponseWriter, r *http.Request)
	Reset(w http.ResponseWriter, r *http.Request)
	Release(w http.ResponseWriter, r *http.Request)
}

type SubmissionHandlerImpl struct {
	coordinator submission.Coordinator
}

func NewSubmissionHandler(coordinator submission.Coordinator) SubmissionHandler {
	return &SubmissionHandlerImpl{coordinator: coordinator}
}

// GetStatus implements SubmissionHandler.
func (h *SubmissionHandlerImpl) GetStatus(w http.ResponseWriter, r *http.Request) {
	employeeID, _, err := middleware.ClaimsFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	month, year, ok := periodFromQuery(w, r)
	if !ok {
		return
	}

	result, err := h.coordinator.GetStatus(r.Context(), employeeID, month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CreateOrJoin implements SubmissionHandler.
func (h *SubmissionHandlerImpl) CreateOrJoin(w http.ResponseWriter, r *http.Request) {
	employeeID, _, err := middleware.ClaimsFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req submission.CreateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateOrJoin decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.coordinator.CreateOrJoin(r.Context(), employeeID, req.Month, req.Year)
	if err != nil {
		slog.Error("CreateOrJoin service error", "employee_id", employeeID, "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// SignAsEmployee implements SubmissionHandler.
func (h *SubmissionHandlerImpl) SignAsEmployee(w http.ResponseWriter, r *http.Request) {
	submissionID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	employeeID, _, err := middleware.ClaimsFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req submission.SignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SignAsEmployee decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.coordinator.SignAsEmployee(r.Context(), submissionID, employeeID, req.Token, req.Signature)
	if err != nil {
		slog.Error("SignAsEmployee service error",
			"submission_id", submissionID, "employee_id", employeeID, "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// SignAsRecipient implements SubmissionHandler. The token alone authorizes
// this route, no session is required.
func (h *SubmissionHandlerImpl) SignAsRecipient(w http.ResponseWriter, r *http.Request) {
	var req submission.SignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SignAsRecipient decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.coordinator.SignAsRecipient(r.Context(), req.Token, req.Signature)
	if err != nil {
		slog.Error("SignAsRecipient service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// WithdrawOwnSignature implements SubmissionHandler.
func (h *SubmissionHandlerImpl) WithdrawOwnSignature(w http.ResponseWriter, r *http.Request) {
	submissionID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	employeeID, _, err := middleware.ClaimsFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.coordinator.WithdrawOwnSignature(r.Context(), submissionID, employeeID); err != nil {
		slog.Error("WithdrawOwnSignature service error",
			"submission_id", submissionID, "employee_id", employeeID, "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Signature withdrawn", nil)
}

// DeleteEmployeeSignature implements SubmissionHandler, admin only.
func (h *SubmissionHandlerImpl) DeleteEmployeeSignature(w http.ResponseWriter, r *http.Request) {
	submissionID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	employeeID, ok := uuidParam(w, r, "employeeId")
	if !ok {
		return
	}

	if err := h.coordinator.DeleteEmployeeSignature(r.Context(), submissionID, employeeID); err != nil {
		slog.Error("DeleteEmployeeSignature service error",
			"submission_id", submissionID, "employee_id", employeeID, "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Signature removed", nil)
}

// DeleteRecipientSignature implements SubmissionHandler, admin only.
func (h *SubmissionHandlerImpl) DeleteRecipientSignature(w http.ResponseWriter, r *http.Request) {
	submissionID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.coordinator.DeleteRecipientSignature(r.Context(), submissionID); err != nil {
		slog.Error("DeleteRecipientSignature service error", "submission_id", submissionID, "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Recipient signature removed", nil)
}

// Reset implements SubmissionHandler, admin only.
func (h *SubmissionHandlerImpl) Reset(w http.ResponseWriter, r *http.Request) {
	submissionID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	adminID, _, err := middleware.ClaimsFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req submission.ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Reset decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := h.coordinator.Reset(r.Context(), submissionID, adminID, req.Reason); err != nil {
		slog.Error("Reset service error", "submission_id", submissionID, "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Submission reset", nil)
}

// Release implements SubmissionHandler, admin only. Completes a submission
// whose recipient signed on paper.
func (h *SubmissionHandlerImpl) Release(w http.ResponseWriter, r *http.Request) {
	submissionID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	adminID, _, err := middleware.ClaimsFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req submission.ReleaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Release decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := h.coordinator.Release(r.Context(), submissionID, adminID, req.Note); err != nil {
		slog.Error("Release service error", "submission_id", submissionID, "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Submission released", nil)
}
