package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrAdminRequired      = errors.New("admin access required")
	ErrEmployeeRequired   = errors.New("employee access required")
)
