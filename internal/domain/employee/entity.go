package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID               string
	Email            string
	PasswordHash     string
	FullName         string
	Role             Role
	TeamID           *string
	BackupEmployeeID *string

	// Wage and payroll-relevant premium configuration. Percentages are
	// surcharges on the hourly wage, e.g. 25 for a 25% night premium.
	HourlyWage        decimal.Decimal
	NightPremiumPct   decimal.Decimal
	SundayPremiumPct  decimal.Decimal
	HolidayPremiumPct decimal.Decimal

	VacationDaysPerYear int
	SickDaysRecorded    int

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time

	// Joined fields
	TeamName *string
}

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleTeamlead Role = "TEAMLEAD"
	RoleAdmin    Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleTeamlead, RoleAdmin:
		return true
	}
	return false
}

// Team groups employees working for the same care recipient.
type Team struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Client is the care recipient ("Assistenznehmer") an employee works for.
// Employees without a team fall back to their first active client
// relationship when the dienstplan grouping is resolved.
type Client struct {
	ID        string
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
