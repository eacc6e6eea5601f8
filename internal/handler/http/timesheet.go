package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/employee"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/timesheet"
	"github.com/assistenzwerk/timesheet-backend-go/internal/handler/http/middleware"
	"github.com/assistenzwerk/timesheet-backend-go/internal/handler/http/response"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/validator"
)

type TimesheetHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	CreateShift(w http.ResponseWriter, r *http.Request)
}

type TimesheetHandlerImpl struct {
	timesheetService timesheet.TimesheetService
}

func NewTimesheetHandler(timesheetService timesheet.TimesheetService) TimesheetHandler {
	return &TimesheetHandlerImpl{timesheetService: timesheetService}
}

// List returns the caller's timesheets for a month. Admins may read another
// employee's rows via ?employeeId=.
func (h *TimesheetHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	callerID, role, err := middleware.ClaimsFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	month, year, ok := periodFromQuery(w, r)
	if !ok {
		return
	}

	employeeID := callerID
	if requested := r.URL.Query().Get("employeeId"); requested != "" && requested != callerID {
		if role != string(employee.RoleAdmin) {
			response.Forbidden(w, "Admin access required to read other employees")
			return
		}
		employeeID = requested
	}

	result, err := h.timesheetService.ListForPeriod(r.Context(), employeeID, month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements TimesheetHandler.
func (h *TimesheetHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	callerID, role, err := middleware.ClaimsFromContext(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req timesheet.UpdateTimesheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Update timesheet decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	actor := timesheet.Actor{EmployeeID: callerID, Role: role}
	result, err := h.timesheetService.Update(r.Context(), actor, id, req)
	if err != nil {
		slog.Error("Update timesheet service error", "timesheet_id", id, "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CreateShift implements TimesheetHandler, the admin schedule surface.
func (h *TimesheetHandlerImpl) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req timesheet.CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create shift decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.timesheetService.CreateShift(r.Context(), req)
	if err != nil {
		slog.Error("Create shift service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Shift created", result)
}

// periodFromQuery parses month/year parameters, defaulting to the current
// month. Writes the error response itself when the parameters are invalid.
func periodFromQuery(w http.ResponseWriter, r *http.Request) (month, year int, ok bool) {
	now := time.Now()
	month, year = int(now.Month()), now.Year()

	if m := r.URL.Query().Get("month"); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil || !validator.IsValidMonth(parsed) {
			response.BadRequest(w, "month must be between 1 and 12", nil)
			return 0, 0, false
		}
		month = parsed
	}
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil || !validator.IsValidYear(parsed) {
			response.BadRequest(w, "year is out of range", nil)
			return 0, 0, false
		}
		year = parsed
	}

	return month, year, true
}
