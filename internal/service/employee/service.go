package employee

import (
	"context"
	"errors"
	"log/slog"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/audit"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/employee"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/database"
	"github.com/assistenzwerk/timesheet-backend-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type EmployeeServiceImpl struct {
	db           *database.DB
	employeeRepo employee.EmployeeRepository
	auditRepo    audit.Repository

	// runTx wraps the force-delete cascade in a transaction. Replaceable in
	// tests.
	runTx func(ctx context.Context, db *database.DB, fn func(ctx context.Context) error) error
}

func NewEmployeeService(
	db *database.DB,
	employeeRepo employee.EmployeeRepository,
	auditRepo audit.Repository,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		db:           db,
		employeeRepo: employeeRepo,
		auditRepo:    auditRepo,
		runTx:        postgresql.WithTransaction,
	}
}

func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if req.BackupEmployeeID != nil {
		if _, err := s.employeeRepo.GetByID(ctx, *req.BackupEmployeeID); err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return employee.EmployeeResponse{}, employee.ErrBackupNotFound
			}
			return employee.EmployeeResponse{}, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp := employee.Employee{
		Email:               req.Email,
		PasswordHash:        string(hash),
		FullName:            req.FullName,
		Role:                employee.Role(req.Role),
		TeamID:              req.TeamID,
		BackupEmployeeID:    req.BackupEmployeeID,
		HourlyWage:          parseDecimal(req.HourlyWage),
		NightPremiumPct:     parseDecimal(req.NightPremiumPct),
		SundayPremiumPct:    parseDecimal(req.SundayPremiumPct),
		HolidayPremiumPct:   parseDecimal(req.HolidayPremiumPct),
		VacationDaysPerYear: req.VacationDays,
	}

	created, err := s.employeeRepo.Create(ctx, emp)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	return employee.ToResponse(created), nil
}

func (s *EmployeeServiceImpl) GetByID(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.ToResponse(emp), nil
}

func (s *EmployeeServiceImpl) List(ctx context.Context) ([]employee.EmployeeResponse, error) {
	emps, err := s.employeeRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]employee.EmployeeResponse, 0, len(emps))
	for _, emp := range emps {
		responses = append(responses, employee.ToResponse(emp))
	}
	return responses, nil
}

func (s *EmployeeServiceImpl) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	if req.BackupEmployeeID != nil {
		if *req.BackupEmployeeID == id {
			return employee.EmployeeResponse{}, employee.ErrSelfBackup
		}
		if _, err := s.employeeRepo.GetByID(ctx, *req.BackupEmployeeID); err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return employee.EmployeeResponse{}, employee.ErrBackupNotFound
			}
			return employee.EmployeeResponse{}, err
		}
		emp.BackupEmployeeID = req.BackupEmployeeID
	}
	if req.FullName != nil {
		emp.FullName = *req.FullName
	}
	if req.Role != nil {
		emp.Role = employee.Role(*req.Role)
	}
	if req.TeamID != nil {
		emp.TeamID = req.TeamID
	}
	if req.HourlyWage != nil {
		emp.HourlyWage = parseDecimal(*req.HourlyWage)
	}
	if req.NightPremiumPct != nil {
		emp.NightPremiumPct = parseDecimal(*req.NightPremiumPct)
	}
	if req.SundayPremiumPct != nil {
		emp.SundayPremiumPct = parseDecimal(*req.SundayPremiumPct)
	}
	if req.HolidayPremiumPct != nil {
		emp.HolidayPremiumPct = parseDecimal(*req.HolidayPremiumPct)
	}
	if req.VacationDays != nil {
		emp.VacationDaysPerYear = *req.VacationDays
	}

	if err := s.employeeRepo.Update(ctx, emp); err != nil {
		return employee.EmployeeResponse{}, err
	}

	return employee.ToResponse(emp), nil
}

// Delete removes an employee. Employees referenced by signatures or audit
// entries can only go away with force=true, which cascades over that
// history inside one transaction. Without history a soft delete suffices.
func (s *EmployeeServiceImpl) Delete(ctx context.Context, actorID, id string, force bool) error {
	if actorID == id {
		return employee.ErrCannotDeleteSelf
	}

	if _, err := s.employeeRepo.GetByID(ctx, id); err != nil {
		return err
	}

	blocked, err := s.employeeRepo.HasBlockingHistory(ctx, id)
	if err != nil {
		return err
	}

	if !blocked {
		return s.employeeRepo.SoftDelete(ctx, id)
	}
	if !force {
		return employee.ErrHasBlockingHistory
	}

	return s.runTx(ctx, s.db, func(ctx context.Context) error {
		removed, err := s.auditRepo.DeleteByEmployee(ctx, id)
		if err != nil {
			return err
		}
		if err := s.employeeRepo.HardDelete(ctx, id); err != nil {
			return err
		}

		slog.Warn("employee force deleted",
			"employee_id", id, "by", actorID, "audit_entries_removed", removed)
		return nil
	})
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	// Validated upstream, a parse failure here degrades to zero.
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
