package auth

import (
	"context"

	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/validator"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "invalid email format"})
	}
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{Field: "password", Message: "password is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`

	// Unix expiry of the refresh token, drives the cookie lifetime.
	RefreshExpiresAt int64 `json:"-"`
}

type LoginResponse struct {
	TokenPair
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
}

// Service authenticates employees and issues token pairs.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
}
