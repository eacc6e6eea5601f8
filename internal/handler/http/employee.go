package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/employee"
	"github.com/assistenzwerk/timesheet-backend-go/internal/handler/http/middleware"
	"github.com/assistenzwerk/timesheet-backend-go/internal/handler/http/response"
)

type EmployeeHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	GetMe(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type EmployeeHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewEmployeeHandler(employeeService employee.EmployeeService) EmployeeHandler {
	return &EmployeeHandlerImpl{employeeService: employeeService}
}

// Create implements EmployeeHandler.
func (h *EmployeeHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req employee.CreateEmployeeRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create employee decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.employeeService.Create(r.Context(), req)
	if err != nil {
		slog.Error("Create employee service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Employee created", result)
}

// GetByID implements EmployeeHandler.
func (h *EmployeeHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.employeeService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMe returns the caller's own employee record.
func (h *EmployeeHandlerImpl) GetMe(w http.ResponseWriter, r *http.Request) {
	employeeID, _, err := middleware.ClaimsFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.employeeService.GetByID(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements EmployeeHandler.
func (h *EmployeeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.employeeService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements EmployeeHandler.
func (h *EmployeeHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req employee.UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Update employee decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.employeeService.Update(r.Context(), id, req)
	if err != nil {
		slog.Error("Update employee service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Delete implements EmployeeHandler. ?force=true cascades over the
// employee's signatures and audit history.
func (h *EmployeeHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	force := r.URL.Query().Get("force") == "true"

	actorID, _, err := middleware.ClaimsFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.employeeService.Delete(r.Context(), actorID, id, force); err != nil {
		slog.Error("Delete employee service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employee deleted", nil)
}
