package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/employee"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `
	e.id, e.email, e.password_hash, e.full_name, e.role, e.team_id, e.backup_employee_id,
	e.hourly_wage, e.night_premium_pct, e.sunday_premium_pct, e.holiday_premium_pct,
	e.vacation_days_per_year, e.sick_days_recorded,
	e.created_at, e.updated_at, e.deleted_at, t.name
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.Email, &emp.PasswordHash, &emp.FullName, &emp.Role, &emp.TeamID, &emp.BackupEmployeeID,
		&emp.HourlyWage, &emp.NightPremiumPct, &emp.SundayPremiumPct, &emp.HolidayPremiumPct,
		&emp.VacationDaysPerYear, &emp.SickDaysRecorded,
		&emp.CreatedAt, &emp.UpdatedAt, &emp.DeletedAt, &emp.TeamName,
	)
	return emp, err
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepository) Create(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employees (
			email, password_hash, full_name, role, team_id, backup_employee_id,
			hourly_wage, night_premium_pct, sunday_premium_pct, holiday_premium_pct,
			vacation_days_per_year
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		emp.Email,
		emp.PasswordHash,
		emp.FullName,
		emp.Role,
		emp.TeamID,
		emp.BackupEmployeeID,
		emp.HourlyWage,
		emp.NightPremiumPct,
		emp.SundayPremiumPct,
		emp.HolidayPremiumPct,
		emp.VacationDaysPerYear,
	).Scan(&emp.ID, &emp.CreatedAt, &emp.UpdatedAt)

	if err != nil {
		if database.IsConflict(database.ClassifyError(err)) {
			return employee.Employee{}, employee.ErrEmailExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	return emp, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		LEFT JOIN teams t ON t.id = e.team_id
		WHERE e.id = $1 AND e.deleted_at IS NULL
	`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id: %w", err)
	}

	return emp, nil
}

// GetByEmail implements employee.EmployeeRepository.
func (r *employeeRepository) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		LEFT JOIN teams t ON t.id = e.team_id
		WHERE e.email = $1 AND e.deleted_at IS NULL
	`

	emp, err := scanEmployee(q.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by email: %w", err)
	}

	return emp, nil
}

// List implements employee.EmployeeRepository.
func (r *employeeRepository) List(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		LEFT JOIN teams t ON t.id = e.team_id
		WHERE e.deleted_at IS NULL
		ORDER BY e.full_name
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	return employees, rows.Err()
}

// Update implements employee.EmployeeRepository.
func (r *employeeRepository) Update(ctx context.Context, emp employee.Employee) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees SET
			full_name = $2,
			role = $3,
			team_id = $4,
			backup_employee_id = $5,
			hourly_wage = $6,
			night_premium_pct = $7,
			sunday_premium_pct = $8,
			holiday_premium_pct = $9,
			vacation_days_per_year = $10,
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := q.Exec(ctx, query,
		emp.ID,
		emp.FullName,
		emp.Role,
		emp.TeamID,
		emp.BackupEmployeeID,
		emp.HourlyWage,
		emp.NightPremiumPct,
		emp.SundayPremiumPct,
		emp.HolidayPremiumPct,
		emp.VacationDaysPerYear,
	)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}

	return nil
}

// SoftDelete implements employee.EmployeeRepository.
func (r *employeeRepository) SoftDelete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE employees SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to soft delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}

	return nil
}

// HardDelete implements employee.EmployeeRepository.
func (r *employeeRepository) HardDelete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to hard delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}

	return nil
}

// GetTeamByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetTeamByID(ctx context.Context, teamID string) (employee.Team, error) {
	q := GetQuerier(ctx, r.db)

	var team employee.Team
	err := q.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at FROM teams WHERE id = $1
	`, teamID).Scan(&team.ID, &team.Name, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Team{}, employee.ErrTeamNotFound
		}
		return employee.Team{}, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}

// GetFirstActiveClient implements employee.EmployeeRepository.
func (r *employeeRepository) GetFirstActiveClient(ctx context.Context, employeeID string) (employee.Client, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT c.id, c.name, c.email, c.created_at, c.updated_at
		FROM clients c
		JOIN employee_clients ec ON ec.client_id = c.id
		WHERE ec.employee_id = $1 AND ec.active
		ORDER BY ec.created_at
		LIMIT 1
	`

	var client employee.Client
	err := q.QueryRow(ctx, query, employeeID).Scan(
		&client.ID, &client.Name, &client.Email, &client.CreatedAt, &client.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Client{}, pgx.ErrNoRows
		}
		return employee.Client{}, fmt.Errorf("failed to get active client: %w", err)
	}

	return client, nil
}

// HasBlockingHistory implements employee.EmployeeRepository.
func (r *employeeRepository) HasBlockingHistory(ctx context.Context, employeeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (SELECT 1 FROM employee_signatures WHERE employee_id = $1)
		    OR EXISTS (SELECT 1 FROM audit_logs WHERE employee_id = $1)
	`

	var blocked bool
	if err := q.QueryRow(ctx, query, employeeID).Scan(&blocked); err != nil {
		return false, fmt.Errorf("failed to check employee history: %w", err)
	}

	return blocked, nil
}
