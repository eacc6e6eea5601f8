package middleware

import (
	"net/http"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/auth"
	"github.com/assistenzwerk/timesheet-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}
			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// ClaimsFromContext extracts the caller's identity from the verified token.
func ClaimsFromContext(r *http.Request) (employeeID, role string, err error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", "", auth.ErrInvalidToken
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", "", auth.ErrInvalidToken
	}
	role, _ = claims["role"].(string)

	return employeeID, role, nil
}
