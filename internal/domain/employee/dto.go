package employee

import (
	"time"

	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	Email             string  `json:"email"`
	Password          string  `json:"password"`
	FullName          string  `json:"full_name"`
	Role              string  `json:"role"`
	TeamID            *string `json:"team_id"`
	BackupEmployeeID  *string `json:"backup_employee_id"`
	HourlyWage        string  `json:"hourly_wage"`
	NightPremiumPct   string  `json:"night_premium_pct"`
	SundayPremiumPct  string  `json:"sunday_premium_pct"`
	HolidayPremiumPct string  `json:"holiday_premium_pct"`
	VacationDays      int     `json:"vacation_days_per_year"`
}

func (r CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email is required"})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "invalid email format"})
	}
	if len(r.Password) < 8 {
		errs = append(errs, validator.ValidationError{Field: "password", Message: "password must be at least 8 characters"})
	}
	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{Field: "full_name", Message: "full name is required"})
	}
	if !Role(r.Role).Valid() {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "role must be EMPLOYEE, TEAMLEAD or ADMIN"})
	}
	for _, f := range []struct{ name, value string }{
		{"hourly_wage", r.HourlyWage},
		{"night_premium_pct", r.NightPremiumPct},
		{"sunday_premium_pct", r.SundayPremiumPct},
		{"holiday_premium_pct", r.HolidayPremiumPct},
	} {
		if f.value == "" {
			continue
		}
		if _, err := decimal.NewFromString(f.value); err != nil {
			errs = append(errs, validator.ValidationError{Field: f.name, Message: "must be a decimal number"})
		}
	}
	if r.VacationDays < 0 {
		errs = append(errs, validator.ValidationError{Field: "vacation_days_per_year", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateEmployeeRequest struct {
	FullName          *string `json:"full_name"`
	Role              *string `json:"role"`
	TeamID            *string `json:"team_id"`
	BackupEmployeeID  *string `json:"backup_employee_id"`
	HourlyWage        *string `json:"hourly_wage"`
	NightPremiumPct   *string `json:"night_premium_pct"`
	SundayPremiumPct  *string `json:"sunday_premium_pct"`
	HolidayPremiumPct *string `json:"holiday_premium_pct"`
	VacationDays      *int    `json:"vacation_days_per_year"`
}

func (r UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.FullName != nil && validator.IsEmpty(*r.FullName) {
		errs = append(errs, validator.ValidationError{Field: "full_name", Message: "full name must not be empty"})
	}
	if r.Role != nil && !Role(*r.Role).Valid() {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "role must be EMPLOYEE, TEAMLEAD or ADMIN"})
	}
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"hourly_wage", r.HourlyWage},
		{"night_premium_pct", r.NightPremiumPct},
		{"sunday_premium_pct", r.SundayPremiumPct},
		{"holiday_premium_pct", r.HolidayPremiumPct},
	} {
		if f.value == nil {
			continue
		}
		if _, err := decimal.NewFromString(*f.value); err != nil {
			errs = append(errs, validator.ValidationError{Field: f.name, Message: "must be a decimal number"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeResponse struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	FullName            string    `json:"full_name"`
	Role                string    `json:"role"`
	TeamID              *string   `json:"team_id"`
	TeamName            *string   `json:"team_name"`
	BackupEmployeeID    *string   `json:"backup_employee_id"`
	HourlyWage          string    `json:"hourly_wage"`
	NightPremiumPct     string    `json:"night_premium_pct"`
	SundayPremiumPct    string    `json:"sunday_premium_pct"`
	HolidayPremiumPct   string    `json:"holiday_premium_pct"`
	VacationDaysPerYear int       `json:"vacation_days_per_year"`
	SickDaysRecorded    int       `json:"sick_days_recorded"`
	CreatedAt           time.Time `json:"created_at"`
}

func ToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:                  e.ID,
		Email:               e.Email,
		FullName:            e.FullName,
		Role:                string(e.Role),
		TeamID:              e.TeamID,
		TeamName:            e.TeamName,
		BackupEmployeeID:    e.BackupEmployeeID,
		HourlyWage:          e.HourlyWage.String(),
		NightPremiumPct:     e.NightPremiumPct.String(),
		SundayPremiumPct:    e.SundayPremiumPct.String(),
		HolidayPremiumPct:   e.HolidayPremiumPct.String(),
		VacationDaysPerYear: e.VacationDaysPerYear,
		SickDaysRecorded:    e.SickDaysRecorded,
		CreatedAt:           e.CreatedAt,
	}
}
