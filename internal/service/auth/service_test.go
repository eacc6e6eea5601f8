package auth

import (
	"context"
	"testing"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/auth"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/employee"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret     = "test-secret-key-for-jwt"
	testAccessExp  = "1h"
	testRefreshExp = "24h"
)

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (f *fakeEmployeeRepo) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	for _, emp := range f.employees {
		if emp.Email == email {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	if emp, ok := f.employees[id]; ok {
		return emp, nil
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

// Unused here.
func (f *fakeEmployeeRepo) Create(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	return emp, nil
}
func (f *fakeEmployeeRepo) List(ctx context.Context) ([]employee.Employee, error) { return nil, nil }
func (f *fakeEmployeeRepo) Update(ctx context.Context, emp employee.Employee) error {
	return nil
}
func (f *fakeEmployeeRepo) SoftDelete(ctx context.Context, id string) error { return nil }
func (f *fakeEmployeeRepo) HardDelete(ctx context.Context, id string) error { return nil }
func (f *fakeEmployeeRepo) GetTeamByID(ctx context.Context, teamID string) (employee.Team, error) {
	return employee.Team{}, employee.ErrTeamNotFound
}
func (f *fakeEmployeeRepo) GetFirstActiveClient(ctx context.Context, employeeID string) (employee.Client, error) {
	return employee.Client{}, employee.ErrEmployeeNotFound
}
func (f *fakeEmployeeRepo) HasBlockingHistory(ctx context.Context, employeeID string) (bool, error) {
	return false, nil
}

func newTestService(t *testing.T) auth.Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("geheim123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	repo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": {
			ID:           "emp-1",
			Email:        "anna.huber@example.com",
			PasswordHash: string(hash),
			FullName:     "Anna Huber",
			Role:         employee.RoleEmployee,
		},
	}}
	return NewAuthService(repo, jwt.NewJWTService(testSecret, testAccessExp, testRefreshExp))
}

func TestLogin_Success(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Login(context.Background(), auth.LoginRequest{
		Email:    "anna.huber@example.com",
		Password: "geheim123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Greater(t, resp.ExpiresAt, int64(0))
	assert.Greater(t, resp.RefreshExpiresAt, resp.ExpiresAt)
	assert.Equal(t, "emp-1", resp.EmployeeID)
	assert.Equal(t, "EMPLOYEE", resp.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(context.Background(), auth.LoginRequest{
		Email:    "anna.huber@example.com",
		Password: "falsch",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	svc := newTestService(t)

	// Existence must stay hidden: same error as a wrong password.
	_, err := svc.Login(context.Background(), auth.LoginRequest{
		Email:    "niemand@example.com",
		Password: "geheim123",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_InvalidEmailFormat(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(context.Background(), auth.LoginRequest{Email: "not-an-email", Password: "x"})
	assert.Error(t, err)
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc := newTestService(t)

	login, err := svc.Login(context.Background(), auth.LoginRequest{
		Email:    "anna.huber@example.com",
		Password: "geheim123",
	})
	require.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// The old refresh token is revoked by the rotation.
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRefresh_AccessTokenIsRejected(t *testing.T) {
	svc := newTestService(t)

	login, err := svc.Login(context.Background(), auth.LoginRequest{
		Email:    "anna.huber@example.com",
		Password: "geheim123",
	})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), login.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
