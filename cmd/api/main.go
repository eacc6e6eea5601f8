package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/assistenzwerk/timesheet-backend-go/internal/config"
	appHTTP "github.com/assistenzwerk/timesheet-backend-go/internal/handler/http"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/cron"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/database"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/email"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/jwt"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/sheetsync"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/storage"
	"github.com/assistenzwerk/timesheet-backend-go/internal/repository/postgresql"
	authService "github.com/assistenzwerk/timesheet-backend-go/internal/service/auth"
	dienstplanService "github.com/assistenzwerk/timesheet-backend-go/internal/service/dienstplan"
	employeeService "github.com/assistenzwerk/timesheet-backend-go/internal/service/employee"
	exportService "github.com/assistenzwerk/timesheet-backend-go/internal/service/export"
	submissionService "github.com/assistenzwerk/timesheet-backend-go/internal/service/submission"
	timesheetService "github.com/assistenzwerk/timesheet-backend-go/internal/service/timesheet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Pool.Close()

	employeeRepo := postgresql.NewEmployeeRepository(db)
	timesheetRepo := postgresql.NewTimesheetRepository(db)
	dienstplanRepo := postgresql.NewDienstplanConfigRepository(db)
	submissionRepo := postgresql.NewTeamSubmissionRepository(db)
	signatureRepo := postgresql.NewEmployeeSignatureRepository(db)
	monthlyRepo := postgresql.NewMonthlySubmissionRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)

	jwtSvc := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			log.Fatal("Failed to initialize local storage:", err)
		}
	default:
		log.Fatal("Unsupported storage type: ", cfg.Storage.Type)
	}

	emailSvc, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service:", err)
	}

	syncer, err := sheetsync.NewClient(cfg.SheetSync)
	if err != nil {
		log.Fatal("Failed to initialize sheet sync client:", err)
	}

	dienstplanSvc := dienstplanService.NewService(dienstplanRepo, timesheetRepo, employeeRepo)
	authSvc := authService.NewAuthService(employeeRepo, jwtSvc)
	employeeSvc := employeeService.NewEmployeeService(db, employeeRepo, auditRepo)
	timesheetSvc := timesheetService.NewTimesheetService(db, timesheetRepo, employeeRepo, auditRepo, syncer)
	exportSvc := exportService.NewExportService(timesheetRepo, employeeRepo, fileStorage)
	coordinator := submissionService.NewCoordinator(
		db,
		submissionRepo,
		signatureRepo,
		monthlyRepo,
		timesheetRepo,
		auditRepo,
		dienstplanRepo,
		dienstplanSvc,
		emailSvc,
		cfg.App,
		cfg.SMTP,
	)

	scheduler := cron.NewScheduler()
	scheduler.AddJob("dienstplan-backfill", 24*time.Hour, cron.DienstplanBackfillJob(timesheetRepo, dienstplanSvc))
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(cfg, jwtSvc, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authSvc, jwtSvc),
		Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
		Timesheet:  appHTTP.NewTimesheetHandler(timesheetSvc),
		Submission: appHTTP.NewSubmissionHandler(coordinator),
		Dienstplan: appHTTP.NewDienstplanHandler(dienstplanSvc),
		Export:     appHTTP.NewExportHandler(exportSvc),
		Audit:      appHTTP.NewAuditHandler(auditRepo),
	})

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
