package export

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/employee"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/timesheet"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimesheetRepo struct {
	rows []timesheet.Timesheet
}

func (f *fakeTimesheetRepo) ListBySheetPeriod(ctx context.Context, sheetFileName string, month, year int) ([]timesheet.Timesheet, error) {
	return f.rows, nil
}

// Unused here.
func (f *fakeTimesheetRepo) Create(ctx context.Context, ts timesheet.Timesheet) (timesheet.Timesheet, error) {
	return ts, nil
}
func (f *fakeTimesheetRepo) GetByID(ctx context.Context, id string) (timesheet.Timesheet, error) {
	return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
}
func (f *fakeTimesheetRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*timesheet.Timesheet, error) {
	return nil, nil
}
func (f *fakeTimesheetRepo) ListByEmployeePeriod(ctx context.Context, employeeID string, month, year int) ([]timesheet.Timesheet, error) {
	return nil, nil
}
func (f *fakeTimesheetRepo) Update(ctx context.Context, ts timesheet.Timesheet) error { return nil }
func (f *fakeTimesheetRepo) Upsert(ctx context.Context, ts timesheet.Timesheet) (timesheet.Timesheet, error) {
	return ts, nil
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

type fakeFileStorage struct {
	uploadedPath string
	uploadedSize int64
}

func (f *fakeFileStorage) Upload(ctx context.Context, file io.Reader, path string) (string, error) {
	n, err := io.Copy(io.Discard, file)
	if err != nil {
		return "", err
	}
	f.uploadedPath = path
	f.uploadedSize = n
	return path, nil
}

func (f *fakeFileStorage) GetURL(path string) string {
	return "http://localhost:8080/files/" + path
}

func (f *fakeFileStorage) Exists(ctx context.Context, path string) (bool, error) {
	return path == f.uploadedPath, nil
}

func timeAt(d, hour, min int) *time.Time {
	t := time.Date(2026, time.March, d, hour, min, 0, 0, time.UTC)
	return &t
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func newExportFixture() (*ExportService, *fakeFileStorage) {
	note := "Übergabe verlängert"
	sick := timesheet.AbsenceSick

	tsRepo := &fakeTimesheetRepo{rows: []timesheet.Timesheet{
		{
			ID:           "ts-2",
			EmployeeID:   "emp-1",
			Date:         time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC),
			ActualStart:  timeAt(16, 22, 0),
			ActualEnd:    timeAt(17, 6, 0),
			BreakMinutes: 30,
			Status:       timesheet.StatusSubmitted,
			Note:         &note,
		},
		{
			ID:          "ts-1",
			EmployeeID:  "emp-1",
			Date:        time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
			ActualStart: timeAt(15, 8, 0),
			ActualEnd:   timeAt(15, 16, 0),
			Status:      timesheet.StatusSubmitted,
		},
		{
			ID:          "ts-3",
			EmployeeID:  "emp-2",
			Date:        time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
			Status:      timesheet.StatusSubmitted,
			AbsenceType: &sick,
		},
	}}

	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": {
			ID:                "emp-1",
			FullName:          "Anna Huber",
			HourlyWage:        dec("20.00"),
			NightPremiumPct:   dec("25"),
			SundayPremiumPct:  dec("50"),
			HolidayPremiumPct: dec("125"),
		},
		"emp-2": {ID: "emp-2", FullName: "Bernd Maier", HourlyWage: dec("18.50")},
	}}

	fs := &fakeFileStorage{}
	return NewExportService(tsRepo, empRepo, fs), fs
}

func TestTimesheetWorkbook_OneSheetPerEmployee(t *testing.T) {
	svc, _ := newExportFixture()

	f, err := svc.TimesheetWorkbook(context.Background(), "Team_Huber_2026", 3, 2026)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Anna Huber", "Bernd Maier"}, f.GetSheetList())
}

func TestTimesheetWorkbook_RowsSortedAndFormatted(t *testing.T) {
	svc, _ := newExportFixture()

	f, err := svc.TimesheetWorkbook(context.Background(), "Team_Huber_2026", 3, 2026)
	require.NoError(t, err)
	defer f.Close()

	// Header row.
	header, err := f.GetCellValue("Anna Huber", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Datum", header)

	// The March 15 row sorts before the March 16 row despite insertion order.
	date, err := f.GetCellValue("Anna Huber", "A2")
	require.NoError(t, err)
	assert.Equal(t, "15.03.2026", date)

	start, err := f.GetCellValue("Anna Huber", "D3")
	require.NoError(t, err)
	assert.Equal(t, "22:00", start)

	// Absence-only rows show the German label.
	absence, err := f.GetCellValue("Bernd Maier", "L2")
	require.NoError(t, err)
	assert.Equal(t, "Krank", absence)
}

func TestTimesheetWorkbook_SummaryPremiums(t *testing.T) {
	svc, _ := newExportFixture()

	f, err := svc.TimesheetWorkbook(context.Background(), "Team_Huber_2026", 3, 2026)
	require.NoError(t, err)
	defer f.Close()

	// Two rows, so the summary block starts at row 5.
	label, err := f.GetCellValue("Anna Huber", "A5")
	require.NoError(t, err)
	assert.Equal(t, "Summe Arbeitszeit (Std)", label)

	// 8h Sunday day shift plus 7.5h night shift.
	total, err := f.GetCellValue("Anna Huber", "B5")
	require.NoError(t, err)
	assert.Equal(t, "15.5", total)

	// Night share: 23:00 to 06:00 of the second shift. 7h at 20.00 EUR * 25%.
	night, err := f.GetCellValue("Anna Huber", "B10")
	require.NoError(t, err)
	assert.Equal(t, "35.00", night)

	// Sunday share: the full 8h day shift on 2026-03-15. 8h at 20.00 EUR * 50%.
	sunday, err := f.GetCellValue("Anna Huber", "B11")
	require.NoError(t, err)
	assert.Equal(t, "80.00", sunday)
}

func TestArchiveWorkbook_StoresAndReturnsURL(t *testing.T) {
	svc, fs := newExportFixture()

	url, err := svc.ArchiveWorkbook(context.Background(), "Team_Huber_2026", 3, 2026)
	require.NoError(t, err)

	assert.Equal(t, "exports/Team_Huber_2026_03_2026.xlsx", fs.uploadedPath)
	assert.Equal(t, "http://localhost:8080/files/exports/Team_Huber_2026_03_2026.xlsx", url)
	assert.Greater(t, fs.uploadedSize, int64(0))
}

func TestWorksheetName_TrimsToLimit(t *testing.T) {
	long := "Anna-Katharina Hubermeier-Schneidermann"
	assert.Len(t, worksheetName(long), 31)
	assert.Equal(t, "Anna Huber", worksheetName("Anna Huber"))
}
