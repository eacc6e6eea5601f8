package export

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/employee"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/timesheet"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/storage"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ExportService renders the monthly timesheet workbook handed to the care
// recipient and the payroll office. Premium columns are display-only.
type ExportService struct {
	tsRepo       timesheet.TimesheetRepository
	employeeRepo employee.EmployeeRepository
	fileStorage  storage.FileStorage
}

func NewExportService(tsRepo timesheet.TimesheetRepository, employeeRepo employee.EmployeeRepository, fileStorage storage.FileStorage) *ExportService {
	return &ExportService{
		tsRepo:       tsRepo,
		employeeRepo: employeeRepo,
		fileStorage:  fileStorage,
	}
}

// ArchiveWorkbook renders the workbook and keeps a copy in file storage,
// returning the stored file's URL.
func (s *ExportService) ArchiveWorkbook(ctx context.Context, sheetFileName string, month, year int) (string, error) {
	f, err := s.TimesheetWorkbook(ctx, sheetFileName, month, year)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", fmt.Errorf("failed to serialize workbook: %w", err)
	}

	path := fmt.Sprintf("exports/%s_%02d_%d.xlsx", sheetFileName, month, year)
	if _, err := s.fileStorage.Upload(ctx, buf, path); err != nil {
		return "", fmt.Errorf("failed to archive workbook: %w", err)
	}

	return s.fileStorage.GetURL(path), nil
}

var headers = []string{
	"Datum", "Beginn (geplant)", "Ende (geplant)", "Beginn (Ist)", "Ende (Ist)",
	"Pause (Min)", "Arbeitszeit (Std)", "Nacht (Std)", "Sonntag (Std)", "Feiertag (Std)",
	"Status", "Abwesenheit", "Notiz",
}

// TimesheetWorkbook builds one xlsx workbook for a sheet grouping and
// period, one worksheet per employee.
func (s *ExportService) TimesheetWorkbook(ctx context.Context, sheetFileName string, month, year int) (*excelize.File, error) {
	rows, err := s.tsRepo.ListBySheetPeriod(ctx, sheetFileName, month, year)
	if err != nil {
		return nil, err
	}

	byEmployee := make(map[string][]timesheet.Timesheet)
	for _, ts := range rows {
		byEmployee[ts.EmployeeID] = append(byEmployee[ts.EmployeeID], ts)
	}

	employeeIDs := make([]string, 0, len(byEmployee))
	for id := range byEmployee {
		employeeIDs = append(employeeIDs, id)
	}
	sort.Strings(employeeIDs)

	f := excelize.NewFile()

	for i, employeeID := range employeeIDs {
		emp, err := s.employeeRepo.GetByID(ctx, employeeID)
		if err != nil {
			return nil, err
		}

		sheetName := worksheetName(emp.FullName)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheetName); err != nil {
				return nil, fmt.Errorf("failed to rename worksheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheetName); err != nil {
				return nil, fmt.Errorf("failed to add worksheet: %w", err)
			}
		}

		if err := s.writeEmployeeSheet(f, sheetName, emp, byEmployee[employeeID]); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func (s *ExportService) writeEmployeeSheet(f *excelize.File, sheetName string, emp employee.Employee, rows []timesheet.Timesheet) error {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	var totalWorked, totalNight, totalSunday, totalHoliday int

	for i, ts := range rows {
		rowNum := i + 2
		worked, night, sunday, holiday := premiumBreakdown(ts)
		totalWorked += worked
		totalNight += night
		totalSunday += sunday
		totalHoliday += holiday

		values := []interface{}{
			ts.Date.Format("02.01.2006"),
			formatClock(ts.PlannedStart), formatClock(ts.PlannedEnd),
			formatClock(ts.ActualStart), formatClock(ts.ActualEnd),
			ts.BreakMinutes,
			hours(worked), hours(night), hours(sunday), hours(holiday),
			string(ts.Status),
			absenceLabel(ts.AbsenceType),
			stringOrEmpty(ts.Note),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	// Totals plus the premium surcharges from the employee's wage profile.
	summaryRow := len(rows) + 3
	wage := emp.HourlyWage
	summary := [][2]interface{}{
		{"Summe Arbeitszeit (Std)", hours(totalWorked)},
		{"Summe Nacht (Std)", hours(totalNight)},
		{"Summe Sonntag (Std)", hours(totalSunday)},
		{"Summe Feiertag (Std)", hours(totalHoliday)},
		{"Stundenlohn (EUR)", wage.StringFixed(2)},
		{"Nachtzuschlag (EUR)", premiumAmount(wage, emp.NightPremiumPct, totalNight)},
		{"Sonntagszuschlag (EUR)", premiumAmount(wage, emp.SundayPremiumPct, totalSunday)},
		{"Feiertagszuschlag (EUR)", premiumAmount(wage, emp.HolidayPremiumPct, totalHoliday)},
	}
	for i, kv := range summary {
		labelCell, _ := excelize.CoordinatesToCellName(1, summaryRow+i)
		valueCell, _ := excelize.CoordinatesToCellName(2, summaryRow+i)
		if err := f.SetCellValue(sheetName, labelCell, kv[0]); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
		if err := f.SetCellValue(sheetName, valueCell, kv[1]); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	return nil
}

// premiumBreakdown computes the worked and premium-qualifying minutes of one
// row. Rows without actual times contribute nothing.
func premiumBreakdown(ts timesheet.Timesheet) (worked, night, sunday, holiday int) {
	if ts.ActualStart == nil || ts.ActualEnd == nil {
		return 0, 0, 0, 0
	}
	start, end := *ts.ActualStart, *ts.ActualEnd
	worked = workedMinutes(start, end, ts.BreakMinutes)
	night = nightMinutes(start, end)
	sunday = sundayMinutes(start, end)
	holiday = holidayMinutes(start, end)
	return worked, night, sunday, holiday
}

// premiumAmount is wage * pct/100 * hours, rounded to cents.
func premiumAmount(wage, pct decimal.Decimal, minutes int) string {
	h := decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))
	return wage.Mul(pct).Div(decimal.NewFromInt(100)).Mul(h).Round(2).StringFixed(2)
}

func hours(minutes int) float64 {
	return float64(minutes) / 60
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}

func absenceLabel(a *timesheet.AbsenceType) string {
	if a == nil {
		return ""
	}
	switch *a {
	case timesheet.AbsenceSick:
		return "Krank"
	case timesheet.AbsenceVacation:
		return "Urlaub"
	}
	return string(*a)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// worksheetName trims the employee name to the 31-char worksheet limit.
func worksheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
