package employee

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/audit"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/employee"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/database"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeEmployeeRepo struct {
	mu          sync.Mutex
	employees   map[string]employee.Employee
	blocking    map[string]bool
	softDeleted []string
	hardDeleted []string
	nextID      int
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{
		employees: make(map[string]employee.Employee),
		blocking:  make(map[string]bool),
	}
}

func (f *fakeEmployeeRepo) add(emp employee.Employee) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.employees[emp.ID] = emp
}

func (f *fakeEmployeeRepo) Create(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.employees {
		if existing.Email == emp.Email {
			return employee.Employee{}, employee.ErrEmailExists
		}
	}
	f.nextID++
	emp.ID = "emp-" + strconv.Itoa(f.nextID)
	f.employees[emp.ID] = emp
	return emp, nil
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if emp, ok := f.employees[id]; ok {
		return emp, nil
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, emp := range f.employees {
		if emp.Email == email {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) List(ctx context.Context) ([]employee.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]employee.Employee, 0, len(f.employees))
	for _, emp := range f.employees {
		out = append(out, emp)
	}
	return out, nil
}

func (f *fakeEmployeeRepo) Update(ctx context.Context, emp employee.Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.employees[emp.ID]; !ok {
		return employee.ErrEmployeeNotFound
	}
	f.employees[emp.ID] = emp
	return nil
}

func (f *fakeEmployeeRepo) SoftDelete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.softDeleted = append(f.softDeleted, id)
	return nil
}

func (f *fakeEmployeeRepo) HardDelete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.employees, id)
	f.hardDeleted = append(f.hardDeleted, id)
	return nil
}

func (f *fakeEmployeeRepo) GetTeamByID(ctx context.Context, teamID string) (employee.Team, error) {
	return employee.Team{}, employee.ErrTeamNotFound
}

func (f *fakeEmployeeRepo) GetFirstActiveClient(ctx context.Context, employeeID string) (employee.Client, error) {
	return employee.Client{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) HasBlockingHistory(ctx context.Context, employeeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blocking[employeeID], nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	deleted []string
	count   int64
}

func (f *fakeAuditRepo) Insert(ctx context.Context, entry audit.Entry) error { return nil }

func (f *fakeAuditRepo) ListByEmployee(ctx context.Context, employeeID string, date *time.Time) ([]audit.Entry, error) {
	return nil, nil
}

func (f *fakeAuditRepo) DeleteByEmployee(ctx context.Context, employeeID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, employeeID)
	return f.count, nil
}

func newTestService() (*EmployeeServiceImpl, *fakeEmployeeRepo, *fakeAuditRepo) {
	repo := newFakeEmployeeRepo()
	auditRepo := &fakeAuditRepo{count: 4}
	svc := &EmployeeServiceImpl{
		employeeRepo: repo,
		auditRepo:    auditRepo,
		runTx: func(ctx context.Context, db *database.DB, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	}
	return svc, repo, auditRepo
}

func createRequest() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		Email:             "anna.huber@example.com",
		Password:          "geheim123",
		FullName:          "Anna Huber",
		Role:              "EMPLOYEE",
		HourlyWage:        "18.50",
		NightPremiumPct:   "25",
		SundayPremiumPct:  "50",
		HolidayPremiumPct: "125",
		VacationDays:      30,
	}
}

func TestCreate_HashesPasswordAndParsesWage(t *testing.T) {
	svc, repo, _ := newTestService()

	resp, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	assert.Equal(t, "Anna Huber", resp.FullName)
	assert.Equal(t, "18.5", resp.HourlyWage)
	assert.Equal(t, "25", resp.NightPremiumPct)
	assert.Equal(t, 30, resp.VacationDaysPerYear)

	stored, err := repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "geheim123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("geheim123")))
	assert.True(t, stored.HourlyWage.Equal(decimal.RequireFromString("18.50")))
}

func TestCreate_RejectsInvalidRequest(t *testing.T) {
	svc, _, _ := newTestService()

	req := createRequest()
	req.Email = "not-an-email"
	req.Password = "kurz"
	req.Role = "CHEF"
	req.HourlyWage = "viel"

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "role")
	assert.Contains(t, fields, "hourly_wage")
}

func TestCreate_UnknownBackupRejected(t *testing.T) {
	svc, _, _ := newTestService()

	req := createRequest()
	backup := "emp-missing"
	req.BackupEmployeeID = &backup

	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, employee.ErrBackupNotFound)
}

func TestUpdate_SelfBackupRejected(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.add(employee.Employee{ID: "emp-1", FullName: "Anna Huber"})

	self := "emp-1"
	_, err := svc.Update(context.Background(), "emp-1", employee.UpdateEmployeeRequest{BackupEmployeeID: &self})
	assert.ErrorIs(t, err, employee.ErrSelfBackup)
}

func TestUpdate_PartialFieldsOnly(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.add(employee.Employee{
		ID:         "emp-1",
		FullName:   "Anna Huber",
		Role:       employee.RoleEmployee,
		HourlyWage: decimal.RequireFromString("18.50"),
	})

	name := "Anna Huber-Maier"
	resp, err := svc.Update(context.Background(), "emp-1", employee.UpdateEmployeeRequest{FullName: &name})
	require.NoError(t, err)

	assert.Equal(t, "Anna Huber-Maier", resp.FullName)
	assert.Equal(t, "18.5", resp.HourlyWage)

	stored, _ := repo.GetByID(context.Background(), "emp-1")
	assert.Equal(t, "Anna Huber-Maier", stored.FullName)
}

func TestUpdate_UnknownEmployee(t *testing.T) {
	svc, _, _ := newTestService()

	name := "Niemand"
	_, err := svc.Update(context.Background(), "emp-404", employee.UpdateEmployeeRequest{FullName: &name})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestDelete_SelfRejected(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.add(employee.Employee{ID: "emp-1"})

	err := svc.Delete(context.Background(), "emp-1", "emp-1", false)
	assert.ErrorIs(t, err, employee.ErrCannotDeleteSelf)
}

func TestDelete_WithoutHistorySoftDeletes(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.add(employee.Employee{ID: "emp-2"})

	err := svc.Delete(context.Background(), "admin-1", "emp-2", false)
	require.NoError(t, err)

	assert.Equal(t, []string{"emp-2"}, repo.softDeleted)
	assert.Empty(t, repo.hardDeleted)
}

func TestDelete_BlockedHistoryNeedsForce(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.add(employee.Employee{ID: "emp-2"})
	repo.blocking["emp-2"] = true

	err := svc.Delete(context.Background(), "admin-1", "emp-2", false)
	assert.ErrorIs(t, err, employee.ErrHasBlockingHistory)
	assert.Empty(t, repo.softDeleted)
}

func TestDelete_ForceCascadesOverHistory(t *testing.T) {
	svc, repo, auditRepo := newTestService()
	repo.add(employee.Employee{ID: "emp-2"})
	repo.blocking["emp-2"] = true

	err := svc.Delete(context.Background(), "admin-1", "emp-2", true)
	require.NoError(t, err)

	assert.Equal(t, []string{"emp-2"}, auditRepo.deleted)
	assert.Equal(t, []string{"emp-2"}, repo.hardDeleted)
	assert.Empty(t, repo.softDeleted)

	_, getErr := repo.GetByID(context.Background(), "emp-2")
	assert.ErrorIs(t, getErr, employee.ErrEmployeeNotFound)
}

func TestParseDecimal(t *testing.T) {
	assert.True(t, parseDecimal("").IsZero())
	assert.True(t, parseDecimal("abc").IsZero())
	assert.Equal(t, "18.5", parseDecimal("18.50").String())
}
