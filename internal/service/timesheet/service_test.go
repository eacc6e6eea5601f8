package timesheet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/audit"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/employee"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/timesheet"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/database"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/sheetsync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimesheetRepo struct {
	rows    map[string]timesheet.Timesheet
	nextID  int
	upserts []timesheet.Timesheet

	upsertErr error
	createErr error
	onUpsert  func()
}

func newFakeTimesheetRepo() *fakeTimesheetRepo {
	return &fakeTimesheetRepo{rows: make(map[string]timesheet.Timesheet)}
}

func (f *fakeTimesheetRepo) add(ts timesheet.Timesheet) timesheet.Timesheet {
	f.nextID++
	if ts.ID == "" {
		ts.ID = "ts-" + string(rune('0'+f.nextID))
	}
	f.rows[ts.ID] = ts
	return ts
}

func (f *fakeTimesheetRepo) Create(ctx context.Context, ts timesheet.Timesheet) (timesheet.Timesheet, error) {
	if f.createErr != nil {
		return timesheet.Timesheet{}, f.createErr
	}
	for _, row := range f.rows {
		if row.EmployeeID == ts.EmployeeID && row.Date.Equal(ts.Date) {
			return timesheet.Timesheet{}, &database.ConflictError{Constraint: "timesheets_employee_id_date_key"}
		}
	}
	return f.add(ts), nil
}

func (f *fakeTimesheetRepo) GetByID(ctx context.Context, id string) (timesheet.Timesheet, error) {
	ts, ok := f.rows[id]
	if !ok {
		return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
	}
	return ts, nil
}

func (f *fakeTimesheetRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*timesheet.Timesheet, error) {
	for _, row := range f.rows {
		if row.EmployeeID == employeeID && row.Date.Equal(date) {
			copied := row
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeTimesheetRepo) ListByEmployeePeriod(ctx context.Context, employeeID string, month, year int) ([]timesheet.Timesheet, error) {
	var out []timesheet.Timesheet
	for _, row := range f.rows {
		if row.EmployeeID == employeeID && int(row.Date.Month()) == month && row.Date.Year() == year {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeTimesheetRepo) Update(ctx context.Context, ts timesheet.Timesheet) error {
	if _, ok := f.rows[ts.ID]; !ok {
		return timesheet.ErrTimesheetNotFound
	}
	f.rows[ts.ID] = ts
	return nil
}

func (f *fakeTimesheetRepo) Upsert(ctx context.Context, ts timesheet.Timesheet) (timesheet.Timesheet, error) {
	if f.onUpsert != nil {
		f.onUpsert()
	}
	if f.upsertErr != nil {
		return timesheet.Timesheet{}, f.upsertErr
	}
	for _, row := range f.rows {
		if row.EmployeeID == ts.EmployeeID && row.Date.Equal(ts.Date) {
			ts.ID = row.ID
			f.rows[ts.ID] = ts
			f.upserts = append(f.upserts, ts)
			return ts, nil
		}
	}
	created := f.add(ts)
	f.upserts = append(f.upserts, created)
	return created, nil
}

// Unused here.
func (f *fakeTimesheetRepo) ListBySheetPeriod(ctx context.Context, sheetFileName string, month, year int) ([]timesheet.Timesheet, error) {
	return nil, nil
}
func (f *fakeTimesheetRepo) CountUnconfirmed(ctx context.Context, employeeID string, month, year int) (int, error) {
	return 0, nil
}
func (f *fakeTimesheetRepo) FindSheetFileName(ctx context.Context, employeeID string, month, year int) (*string, error) {
	return nil, nil
}
func (f *fakeTimesheetRepo) FindTeamID(ctx context.Context, employeeID string, month, year int) (*string, error) {
	return nil, nil
}
func (f *fakeTimesheetRepo) BackfillSheetFileName(ctx context.Context, teamID string, month, year int, sheetFileName string) (int64, error) {
	return 0, nil
}
func (f *fakeTimesheetRepo) ListMissingSheetFileName(ctx context.Context, limit int) ([]timesheet.Timesheet, error) {
	return nil, nil
}
func (f *fakeTimesheetRepo) ListRosterForPeriod(ctx context.Context, sheetFileName string, month, year int) ([]timesheet.RosterEmployee, error) {
	return nil, nil
}
func (f *fakeTimesheetRepo) SetStatusForEmployeePeriod(ctx context.Context, employeeID, sheetFileName string, month, year int, from, to timesheet.Status) error {
	return nil
}
func (f *fakeTimesheetRepo) SetStatusForSheetPeriod(ctx context.Context, sheetFileName string, month, year int, from, to timesheet.Status) error {
	return nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
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
func (f *fakeEmployeeRepo) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	return employee.Employee{}, employee.ErrEmployeeNotFound
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

type fakeAuditRepo struct {
	entries   []audit.Entry
	insertErr error
	onInsert  func()
}

func (f *fakeAuditRepo) Insert(ctx context.Context, entry audit.Entry) error {
	if f.onInsert != nil {
		f.onInsert()
	}
	if f.insertErr != nil {
		return f.insertErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditRepo) ListByEmployee(ctx context.Context, employeeID string, date *time.Time) ([]audit.Entry, error) {
	return nil, nil
}

func (f *fakeAuditRepo) DeleteByEmployee(ctx context.Context, employeeID string) (int64, error) {
	return 0, nil
}

type fakeSyncer struct {
	pushes []sheetsync.ShiftUpdate
}

func (f *fakeSyncer) PushShift(ctx context.Context, update sheetsync.ShiftUpdate) {
	f.pushes = append(f.pushes, update)
}

type serviceFixture struct {
	svc      *TimesheetServiceImpl
	tsRepo   *fakeTimesheetRepo
	empRepo  *fakeEmployeeRepo
	auditLog *fakeAuditRepo
	syncer   *fakeSyncer
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		tsRepo:   newFakeTimesheetRepo(),
		empRepo:  &fakeEmployeeRepo{employees: make(map[string]employee.Employee)},
		auditLog: &fakeAuditRepo{},
		syncer:   &fakeSyncer{},
	}
	f.svc = &TimesheetServiceImpl{
		tsRepo:       f.tsRepo,
		employeeRepo: f.empRepo,
		auditRepo:    f.auditLog,
		syncer:       f.syncer,
		runTx: func(ctx context.Context, db *database.DB, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	}
	return f
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func timePtr(t time.Time) *time.Time { return &t }

func plannedShift(employeeID string, date time.Time) timesheet.Timesheet {
	return timesheet.Timesheet{
		EmployeeID:   employeeID,
		Date:         date,
		PlannedStart: timePtr(date.Add(8 * time.Hour)),
		PlannedEnd:   timePtr(date.Add(16 * time.Hour)),
		Status:       timesheet.StatusPlanned,
	}
}

var testDate = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

func TestUpdate_ConfirmAppliesActuals(t *testing.T) {
	f := newServiceFixture()
	ts := f.tsRepo.add(plannedShift("emp-1", testDate))

	resp, err := f.svc.Update(context.Background(), timesheet.Actor{EmployeeID: "emp-1", Role: "EMPLOYEE"}, ts.ID, timesheet.UpdateTimesheetRequest{
		Action:       "CONFIRM",
		ActualStart:  strPtr("2026-03-15T08:00:00Z"),
		ActualEnd:    strPtr("2026-03-15T16:30:00Z"),
		BreakMinutes: intPtr(30),
	})
	require.NoError(t, err)

	assert.Equal(t, string(timesheet.StatusConfirmed), resp.Status)
	stored := f.tsRepo.rows[ts.ID]
	require.NotNil(t, stored.ActualStart)
	assert.Equal(t, 30, stored.BreakMinutes)

	// status, actual_start, actual_end and break_minutes changed.
	assert.Len(t, f.auditLog.entries, 4)
}

func TestUpdate_EditingConfirmedRowMarksChanged(t *testing.T) {
	f := newServiceFixture()
	ts := plannedShift("emp-1", testDate)
	ts.Status = timesheet.StatusConfirmed
	stored := f.tsRepo.add(ts)

	resp, err := f.svc.Update(context.Background(), timesheet.Actor{EmployeeID: "emp-1", Role: "EMPLOYEE"}, stored.ID, timesheet.UpdateTimesheetRequest{
		Action:      "UPDATE",
		ActualStart: strPtr("2026-03-15T09:00:00Z"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(timesheet.StatusChanged), resp.Status)
}

func TestUpdate_UpdateOnPlannedRowKeepsPlanned(t *testing.T) {
	f := newServiceFixture()
	ts := f.tsRepo.add(plannedShift("emp-1", testDate))

	resp, err := f.svc.Update(context.Background(), timesheet.Actor{EmployeeID: "emp-1", Role: "EMPLOYEE"}, ts.ID, timesheet.UpdateTimesheetRequest{
		Action: "UPDATE",
		Note:   strPtr("Schlüssel beim Nachbarn"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(timesheet.StatusPlanned), resp.Status)
}

func TestUpdate_UnconfirmClearsActuals(t *testing.T) {
	f := newServiceFixture()
	ts := plannedShift("emp-1", testDate)
	ts.Status = timesheet.StatusConfirmed
	ts.ActualStart = timePtr(testDate.Add(8 * time.Hour))
	ts.ActualEnd = timePtr(testDate.Add(16 * time.Hour))
	stored := f.tsRepo.add(ts)

	resp, err := f.svc.Update(context.Background(), timesheet.Actor{EmployeeID: "emp-1", Role: "EMPLOYEE"}, stored.ID, timesheet.UpdateTimesheetRequest{
		Action: "UNCONFIRM",
	})
	require.NoError(t, err)

	assert.Equal(t, string(timesheet.StatusPlanned), resp.Status)
	after := f.tsRepo.rows[stored.ID]
	assert.Nil(t, after.ActualStart)
	assert.Nil(t, after.ActualEnd)
}

func TestUpdate_SubmittedRowOnlyYieldsToAdmin(t *testing.T) {
	f := newServiceFixture()
	ts := plannedShift("emp-1", testDate)
	ts.Status = timesheet.StatusSubmitted
	stored := f.tsRepo.add(ts)

	req := timesheet.UpdateTimesheetRequest{Action: "UPDATE", Note: strPtr("Korrektur")}

	_, err := f.svc.Update(context.Background(), timesheet.Actor{EmployeeID: "emp-1", Role: "EMPLOYEE"}, stored.ID, req)
	assert.ErrorIs(t, err, timesheet.ErrSubmittedImmutable)

	_, err = f.svc.Update(context.Background(), timesheet.Actor{EmployeeID: "admin-1", Role: "ADMIN"}, stored.ID, req)
	assert.NoError(t, err)
}

func TestUpdate_OtherEmployeesRowIsRejected(t *testing.T) {
	f := newServiceFixture()
	ts := f.tsRepo.add(plannedShift("emp-1", testDate))

	_, err := f.svc.Update(context.Background(), timesheet.Actor{EmployeeID: "emp-2", Role: "EMPLOYEE"}, ts.ID, timesheet.UpdateTimesheetRequest{
		Action: "CONFIRM",
	})
	assert.ErrorIs(t, err, timesheet.ErrNotRowOwner)
}

func TestUpdate_InvalidAction(t *testing.T) {
	f := newServiceFixture()
	ts := f.tsRepo.add(plannedShift("emp-1", testDate))

	_, err := f.svc.Update(context.Background(), timesheet.Actor{EmployeeID: "emp-1", Role: "EMPLOYEE"}, ts.ID, timesheet.UpdateTimesheetRequest{
		Action: "APPROVE",
	})
	assert.Error(t, err)
}

func TestUpdate_AbsenceTriggersSubstitution(t *testing.T) {
	f := newServiceFixture()
	f.empRepo.employees["emp-2"] = employee.Employee{
		ID:       "emp-2",
		FullName: "Bernd Vertreter",
		TeamID:   strPtr("team-9"),
	}

	ts := plannedShift("emp-1", testDate)
	ts.BackupEmployeeID = strPtr("emp-2")
	ts.SheetFileName = strPtr("Team_Huber_2026")
	stored := f.tsRepo.add(ts)

	_, err := f.svc.Update(context.Background(), timesheet.Actor{EmployeeID: "emp-1", Role: "EMPLOYEE"}, stored.ID, timesheet.UpdateTimesheetRequest{
		Action:      "CONFIRM",
		AbsenceType: strPtr("SICK"),
	})
	require.NoError(t, err)

	require.Len(t, f.tsRepo.upserts, 1)
	substitute := f.tsRepo.upserts[0]
	assert.Equal(t, "emp-2", substitute.EmployeeID)
	assert.Equal(t, timesheet.StatusPlanned, substitute.Status)
	assert.Equal(t, stored.PlannedStart, substitute.PlannedStart)
	assert.Equal(t, stored.PlannedEnd, substitute.PlannedEnd)
	require.NotNil(t, substitute.TeamID)
	assert.Equal(t, "team-9", *substitute.TeamID)
	require.NotNil(t, substitute.Note)
	assert.Equal(t, "Vertretung für Ausfall am 15.03.2026", *substitute.Note)

	require.Len(t, f.syncer.pushes, 1)
	assert.Equal(t, "Team_Huber_2026", f.syncer.pushes[0].SheetFileName)
	assert.Equal(t, "Bernd Vertreter", f.syncer.pushes[0].EmployeeName)
}

func TestUpdate_AbsenceWithoutBackupSkipsSubstitution(t *testing.T) {
	f := newServiceFixture()
	ts := f.tsRepo.add(plannedShift("emp-1", testDate))

	_, err := f.svc.Update(context.Background(), timesheet.Actor{EmployeeID: "emp-1", Role: "EMPLOYEE"}, ts.ID, timesheet.UpdateTimesheetRequest{
		Action:      "CONFIRM",
		AbsenceType: strPtr("VACATION"),
	})
	require.NoError(t, err)

	assert.Empty(t, f.tsRepo.upserts)
	assert.Empty(t, f.syncer.pushes)
}

func TestUpdate_SubstitutionFailureDoesNotFailAbsence(t *testing.T) {
	f := newServiceFixture()
	// Backup employee missing: the substitute upsert cannot happen.
	ts := plannedShift("emp-1", testDate)
	ts.BackupEmployeeID = strPtr("emp-missing")
	stored := f.tsRepo.add(ts)

	resp, err := f.svc.Update(context.Background(), timesheet.Actor{EmployeeID: "emp-1", Role: "EMPLOYEE"}, stored.ID, timesheet.UpdateTimesheetRequest{
		Action:      "CONFIRM",
		AbsenceType: strPtr("SICK"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(timesheet.StatusConfirmed), resp.Status)
	assert.Empty(t, f.syncer.pushes)
}

// Audit inserts and the substitute upsert must not share the primary
// transaction: a failed statement inside it would abort the transaction and
// roll back the timesheet update itself.
func TestUpdate_SideEffectsRunAfterCommit(t *testing.T) {
	f := newServiceFixture()
	f.empRepo.employees["emp-2"] = employee.Employee{ID: "emp-2", FullName: "Bernd Vertreter"}

	inTx := false
	f.svc.runTx = func(ctx context.Context, db *database.DB, fn func(ctx context.Context) error) error {
		inTx = true
		defer func() { inTx = false }()
		return fn(ctx)
	}

	var auditInTx, upsertInTx bool
	f.auditLog.onInsert = func() { auditInTx = auditInTx || inTx }
	f.tsRepo.onUpsert = func() { upsertInTx = upsertInTx || inTx }

	ts := plannedShift("emp-1", testDate)
	ts.BackupEmployeeID = strPtr("emp-2")
	stored := f.tsRepo.add(ts)

	_, err := f.svc.Update(context.Background(), timesheet.Actor{EmployeeID: "emp-1", Role: "EMPLOYEE"}, stored.ID, timesheet.UpdateTimesheetRequest{
		Action:      "CONFIRM",
		AbsenceType: strPtr("SICK"),
	})
	require.NoError(t, err)

	require.NotEmpty(t, f.auditLog.entries)
	require.Len(t, f.tsRepo.upserts, 1)
	assert.False(t, auditInTx, "audit entries written inside the update transaction")
	assert.False(t, upsertInTx, "substitute shift planned inside the update transaction")
}

func TestUpdate_AuditFailureDoesNotFailUpdate(t *testing.T) {
	f := newServiceFixture()
	f.auditLog.insertErr = errors.New("audit sink down")
	ts := f.tsRepo.add(plannedShift("emp-1", testDate))

	_, err := f.svc.Update(context.Background(), timesheet.Actor{EmployeeID: "emp-1", Role: "EMPLOYEE"}, ts.ID, timesheet.UpdateTimesheetRequest{
		Action: "CONFIRM",
	})
	assert.NoError(t, err)
}

func TestCreateShift_Creates(t *testing.T) {
	f := newServiceFixture()
	f.empRepo.employees["emp-1"] = employee.Employee{ID: "emp-1", TeamID: strPtr("team-1")}

	resp, err := f.svc.CreateShift(context.Background(), timesheet.CreateShiftRequest{
		EmployeeID:   "emp-1",
		Date:         "2026-03-15",
		PlannedStart: strPtr("2026-03-15T08:00:00Z"),
		PlannedEnd:   strPtr("2026-03-15T16:00:00Z"),
	})
	require.NoError(t, err)

	assert.Equal(t, string(timesheet.StatusPlanned), resp.Status)
	assert.Equal(t, "emp-1", resp.EmployeeID)
}

func TestCreateShift_SelfBackupRejected(t *testing.T) {
	f := newServiceFixture()
	f.empRepo.employees["emp-1"] = employee.Employee{ID: "emp-1"}

	_, err := f.svc.CreateShift(context.Background(), timesheet.CreateShiftRequest{
		EmployeeID:       "emp-1",
		Date:             "2026-03-15",
		BackupEmployeeID: strPtr("emp-1"),
	})
	assert.ErrorIs(t, err, employee.ErrSelfBackup)
}

func TestCreateShift_UnknownBackupRejected(t *testing.T) {
	f := newServiceFixture()
	f.empRepo.employees["emp-1"] = employee.Employee{ID: "emp-1"}

	_, err := f.svc.CreateShift(context.Background(), timesheet.CreateShiftRequest{
		EmployeeID:       "emp-1",
		Date:             "2026-03-15",
		BackupEmployeeID: strPtr("emp-unknown"),
	})
	assert.ErrorIs(t, err, employee.ErrBackupNotFound)
}

func TestCreateShift_DuplicateDateRejected(t *testing.T) {
	f := newServiceFixture()
	f.empRepo.employees["emp-1"] = employee.Employee{ID: "emp-1"}
	f.tsRepo.add(plannedShift("emp-1", testDate))

	_, err := f.svc.CreateShift(context.Background(), timesheet.CreateShiftRequest{
		EmployeeID: "emp-1",
		Date:       "2026-03-15",
	})
	assert.ErrorIs(t, err, timesheet.ErrShiftExists)
}

func TestCreateShift_CreateConflictMapsToShiftExists(t *testing.T) {
	f := newServiceFixture()
	f.empRepo.employees["emp-1"] = employee.Employee{ID: "emp-1"}
	f.tsRepo.createErr = &database.ConflictError{Constraint: "timesheets_employee_id_date_key"}

	_, err := f.svc.CreateShift(context.Background(), timesheet.CreateShiftRequest{
		EmployeeID: "emp-1",
		Date:       "2026-03-15",
	})
	assert.ErrorIs(t, err, timesheet.ErrShiftExists)
}

func TestListForPeriod(t *testing.T) {
	f := newServiceFixture()
	f.tsRepo.add(plannedShift("emp-1", testDate))
	f.tsRepo.add(plannedShift("emp-1", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))
	f.tsRepo.add(plannedShift("emp-2", testDate))

	rows, err := f.svc.ListForPeriod(context.Background(), "emp-1", 3, 2026)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
