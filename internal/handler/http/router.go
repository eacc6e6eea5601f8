package http

import (
	"log/slog"
	"os"

	"github.com/assistenzwerk/timesheet-backend-go/internal/config"
	"github.com/assistenzwerk/timesheet-backend-go/internal/handler/http/middleware"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type Handlers struct {
	Auth       AuthHandler
	Employee   EmployeeHandler
	Timesheet  TimesheetHandler
	Submission SubmissionHandler
	Dienstplan DienstplanHandler
	Export     ExportHandler
	Audit      AuditHandler
}

func NewRouter(cfg *config.Config, jwtService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "timesheet-backend"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
		})

		// The recipient signs with the emailed token only, no session.
		r.Post("/submissions/recipient-sign", h.Submission.SignAsRecipient)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/employees", func(r chi.Router) {
				r.Get("/me", h.Employee.GetMe)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Get("/", h.Employee.List)
					r.Post("/", h.Employee.Create)
					r.Get("/{id}", h.Employee.GetByID)
					r.Put("/{id}", h.Employee.Update)
					r.Delete("/{id}", h.Employee.Delete)
				})
			})

			r.Route("/timesheets", func(r chi.Router) {
				r.Get("/", h.Timesheet.List)
				r.Patch("/{id}", h.Timesheet.Update)
			})

			r.With(middleware.RequireAdmin).Post("/schedule", h.Timesheet.CreateShift)

			r.Route("/submissions", func(r chi.Router) {
				r.Get("/status", h.Submission.GetStatus)

				// Signing is for the people working the shifts.
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEmployee)
					r.Post("/", h.Submission.CreateOrJoin)
					r.Post("/{id}/sign", h.Submission.SignAsEmployee)
					r.Post("/{id}/withdraw", h.Submission.WithdrawOwnSignature)
				})

				// Admin corrections
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Delete("/{id}/signatures/{employeeId}", h.Submission.DeleteEmployeeSignature)
					r.Delete("/{id}/recipient-signature", h.Submission.DeleteRecipientSignature)
					r.Post("/{id}/reset", h.Submission.Reset)
					r.Post("/{id}/release", h.Submission.Release)
				})
			})

			r.Route("/dienstplan-configs", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/{sheetFileName}", h.Dienstplan.GetConfig)
				r.Put("/{sheetFileName}", h.Dienstplan.UpdateConfig)
			})

			r.With(middleware.RequireAdmin).Get("/exports/timesheets", h.Export.TimesheetWorkbook)
			r.With(middleware.RequireAdmin).Get("/audit", h.Audit.List)
		})
	})

	return r
}
