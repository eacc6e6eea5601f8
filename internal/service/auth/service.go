package auth

import (
	"context"
	"errors"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/auth"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/employee"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	jwtService   jwt.Service
}

func NewAuthService(employeeRepo employee.EmployeeRepository, jwtService jwt.Service) auth.Service {
	return &AuthServiceImpl{
		employeeRepo: employeeRepo,
		jwtService:   jwtService,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.LoginResponse{}, err
	}

	emp, err := s.employeeRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			// Same error as a wrong password, existence stays hidden.
			return auth.LoginResponse{}, auth.ErrInvalidCredentials
		}
		return auth.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.Password)); err != nil {
		return auth.LoginResponse{}, auth.ErrInvalidCredentials
	}

	accessToken, accessExp, err := s.jwtService.GenerateAccessToken(emp.ID, emp.Email, emp.Role)
	if err != nil {
		return auth.LoginResponse{}, err
	}
	refreshToken, refreshExp, err := s.jwtService.GenerateRefreshToken(emp.ID)
	if err != nil {
		return auth.LoginResponse{}, err
	}

	return auth.LoginResponse{
		TokenPair: auth.TokenPair{
			AccessToken:      accessToken,
			RefreshToken:     refreshToken,
			ExpiresAt:        accessExp,
			RefreshExpiresAt: refreshExp,
		},
		EmployeeID: emp.ID,
		FullName:   emp.FullName,
		Role:       string(emp.Role),
	}, nil
}

func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	if s.jwtService.IsTokenRevoked(refreshToken) {
		return auth.TokenPair{}, auth.ErrInvalidToken
	}

	employeeID, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return auth.TokenPair{}, auth.ErrInvalidToken
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return auth.TokenPair{}, auth.ErrInvalidToken
		}
		return auth.TokenPair{}, err
	}

	accessToken, accessExp, err := s.jwtService.GenerateAccessToken(emp.ID, emp.Email, emp.Role)
	if err != nil {
		return auth.TokenPair{}, err
	}

	// Rotate the refresh token, the old one stops working immediately.
	newRefresh, refreshExp, err := s.jwtService.GenerateRefreshToken(emp.ID)
	if err != nil {
		return auth.TokenPair{}, err
	}
	s.jwtService.RevokeToken(refreshToken)

	return auth.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     newRefresh,
		ExpiresAt:        accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}
