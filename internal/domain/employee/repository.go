package employee

import (
	"context"
)

// EmployeeRepository - interface for employees table
type EmployeeRepository interface {
	Create(ctx context.Context, emp Employee) (Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByEmail(ctx context.Context, email string) (Employee, error)
	List(ctx context.Context) ([]Employee, error)
	Update(ctx context.Context, emp Employee) error
	SoftDelete(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error

	GetTeamByID(ctx context.Context, teamID string) (Team, error)
	GetFirstActiveClient(ctx context.Context, employeeID string) (Client, error)

	// HasBlockingHistory reports whether signatures or audit rows reference
	// the employee, which blocks a plain delete.
	HasBlockingHistory(ctx context.Context, employeeID string) (bool, error)
}

// EmployeeService - admin-facing employee management
type EmployeeService interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	List(ctx context.Context) ([]EmployeeResponse, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	// Delete removes an employee. With force=true the delete cascades over
	// the employee's signatures and audit rows.
	Delete(ctx context.Context, actorID, id string, force bool) error
}
