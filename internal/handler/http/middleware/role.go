package middleware

import (
	"net/http"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/auth"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/employee"
	"github.com/assistenzwerk/timesheet-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// RequireAdmin requires admin role
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, auth.ErrAdminRequired)
			return
		}

		role, ok := claims["role"].(string)
		if !ok {
			response.HandleError(w, auth.ErrAdminRequired)
			return
		}

		if role != string(employee.RoleAdmin) {
			response.HandleError(w, auth.ErrAdminRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireEmployee requires a shift-working role, employee or teamlead.
// Admins correct submissions through the dedicated admin routes and never
// sign themselves.
func RequireEmployee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Forbidden(w, "Employee access required")
			return
		}

		roleStr, ok := claims["role"].(string)
		if !ok {
			response.Forbidden(w, "Employee access required")
			return
		}

		role := employee.Role(roleStr)
		if role != employee.RoleEmployee && role != employee.RoleTeamlead {
			response.Forbidden(w, "Employee access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireTeamlead requires teamlead or admin role
func RequireTeamlead(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Forbidden(w, "Teamlead access required")
			return
		}

		roleStr, ok := claims["role"].(string)
		if !ok {
			response.Forbidden(w, "Teamlead access required")
			return
		}

		role := employee.Role(roleStr)
		if role != employee.RoleTeamlead && role != employee.RoleAdmin {
			response.Forbidden(w, "Teamlead access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
