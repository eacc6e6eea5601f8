package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/auth"
	"github.com/assistenzwerk/timesheet-backend-go/internal/handler/http/response"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/jwt"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	RefreshToken(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService auth.Service
	jwtService  jwt.Service
}

func NewAuthHandler(authService auth.Service, jwtService jwt.Service) AuthHandler {
	return &AuthHandlerImpl{
		authService: authService,
		jwtService:  jwtService,
	}
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := a.authService.Login(r.Context(), loginReq)
	if err != nil {
		slog.Error("Login service error", "error", err)
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, a.jwtService.RefreshTokenCookie(result.RefreshToken, result.RefreshExpiresAt))
	response.Success(w, result)
}

// RefreshToken implements AuthHandler.
func (a *AuthHandlerImpl) RefreshToken(w http.ResponseWriter, r *http.Request) {
	refreshToken := refreshTokenFromRequest(r)
	if refreshToken == "" {
		response.Unauthorized(w, "Refresh token is required")
		return
	}

	pair, err := a.authService.Refresh(r.Context(), refreshToken)
	if err != nil {
		slog.Error("RefreshToken service error", "error", err)
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, a.jwtService.RefreshTokenCookie(pair.RefreshToken, pair.RefreshExpiresAt))
	response.Success(w, pair)
}

// Logout implements AuthHandler.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	if refreshToken := refreshTokenFromRequest(r); refreshToken != "" {
		a.jwtService.RevokeToken(refreshToken)
	}

	// Expire the cookie
	cookie := a.jwtService.RefreshTokenCookie("", 0)
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)

	response.SuccessWithMessage(w, "Logged out", nil)
}

// refreshTokenFromRequest reads the refresh token from the cookie, falling
// back to the JSON body for clients that cannot send cookies.
func refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("refresh_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var body auth.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
		return body.RefreshToken
	}
	return ""
}
