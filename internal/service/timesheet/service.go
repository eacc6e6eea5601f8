package timesheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/audit"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/employee"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/timesheet"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/database"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/sheetsync"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/validator"
	"github.com/assistenzwerk/timesheet-backend-go/internal/repository/postgresql"
)

type TimesheetServiceImpl struct {
	db           *database.DB
	tsRepo       timesheet.TimesheetRepository
	employeeRepo employee.EmployeeRepository
	auditRepo    audit.Repository
	syncer       sheetsync.Syncer

	// runTx wraps mutations in a transaction. Replaceable in tests.
	runTx func(ctx context.Context, db *database.DB, fn func(ctx context.Context) error) error
}

func NewTimesheetService(
	db *database.DB,
	tsRepo timesheet.TimesheetRepository,
	employeeRepo employee.EmployeeRepository,
	auditRepo audit.Repository,
	syncer sheetsync.Syncer,
) timesheet.TimesheetService {
	return &TimesheetServiceImpl{
		db:           db,
		tsRepo:       tsRepo,
		employeeRepo: employeeRepo,
		auditRepo:    auditRepo,
		syncer:       syncer,
		runTx:        postgresql.WithTransaction,
	}
}

// ListForPeriod returns the employee's timesheets for one month.
func (s *TimesheetServiceImpl) ListForPeriod(ctx context.Context, employeeID string, month, year int) ([]timesheet.TimesheetResponse, error) {
	rows, err := s.tsRepo.ListByEmployeePeriod(ctx, employeeID, month, year)
	if err != nil {
		return nil, err
	}

	responses := make([]timesheet.TimesheetResponse, 0, len(rows))
	for _, ts := range rows {
		responses = append(responses, timesheet.ToResponse(ts))
	}
	return responses, nil
}

// Update applies one of the CONFIRM, UPDATE or UNCONFIRM actions. Rows
// frozen by a submission (SUBMITTED) only yield to admins. Recording a SICK
// or VACATION absence on a shift with a backup employee triggers the
// substitution workflow as a non-critical side effect.
func (s *TimesheetServiceImpl) Update(ctx context.Context, actor timesheet.Actor, id string, req timesheet.UpdateTimesheetRequest) (timesheet.TimesheetResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	var before, updated timesheet.Timesheet

	err := s.runTx(ctx, s.db, func(ctx context.Context) error {
		ts, err := s.tsRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if ts.EmployeeID != actor.EmployeeID && actor.Role != string(employee.RoleAdmin) {
			return timesheet.ErrNotRowOwner
		}
		if ts.Status == timesheet.StatusSubmitted && actor.Role != string(employee.RoleAdmin) {
			return timesheet.ErrSubmittedImmutable
		}

		before = ts

		switch timesheet.Action(req.Action) {
		case timesheet.ActionConfirm:
			applyFields(&ts, req)
			ts.Status = timesheet.StatusConfirmed
		case timesheet.ActionUpdate:
			applyFields(&ts, req)
			// Editing an already confirmed row marks it CHANGED so the
			// deviation from plan stays visible.
			if ts.Status == timesheet.StatusConfirmed || ts.Status == timesheet.StatusChanged {
				ts.Status = timesheet.StatusChanged
			}
		case timesheet.ActionUnconfirm:
			ts.Status = timesheet.StatusPlanned
			ts.ActualStart = nil
			ts.ActualEnd = nil
		default:
			return timesheet.ErrInvalidAction
		}

		if err := s.tsRepo.Update(ctx, ts); err != nil {
			return err
		}

		updated = ts
		return nil
	})
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	// Audit and substitution run after the commit. A failed side-effect
	// statement inside the transaction would abort it and take the primary
	// update down with it.
	s.recordChange(ctx, actor, before, updated)

	if absenceRecorded(before, updated) && updated.BackupEmployeeID != nil {
		substitute, err := s.createSubstituteShift(ctx, updated)
		if err != nil {
			// Substitution failures never fail the absence itself.
			slog.Error("backup substitution failed",
				"timesheet_id", updated.ID, "backup_employee_id", *updated.BackupEmployeeID, "error", err)
		} else {
			s.pushShiftUpdate(ctx, *substitute)
		}
	}

	return timesheet.ToResponse(updated), nil
}

// CreateShift creates a planned shift, the admin schedule surface. An
// existing row for the employee and date is rejected rather than replaced.
func (s *TimesheetServiceImpl) CreateShift(ctx context.Context, req timesheet.CreateShiftRequest) (timesheet.TimesheetResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	date, err := validator.ParseDate(req.Date)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	if req.BackupEmployeeID != nil {
		if *req.BackupEmployeeID == req.EmployeeID {
			return timesheet.TimesheetResponse{}, employee.ErrSelfBackup
		}
		if _, err := s.employeeRepo.GetByID(ctx, *req.BackupEmployeeID); err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return timesheet.TimesheetResponse{}, employee.ErrBackupNotFound
			}
			return timesheet.TimesheetResponse{}, err
		}
	}

	existing, err := s.tsRepo.GetByEmployeeAndDate(ctx, req.EmployeeID, date)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}
	if existing != nil {
		return timesheet.TimesheetResponse{}, timesheet.ErrShiftExists
	}

	ts := timesheet.Timesheet{
		EmployeeID:       req.EmployeeID,
		Date:             date,
		Status:           timesheet.StatusPlanned,
		Note:             req.Note,
		TeamID:           emp.TeamID,
		BackupEmployeeID: req.BackupEmployeeID,
	}
	if req.PlannedStart != nil {
		t, err := validator.ParseTimestamp(*req.PlannedStart)
		if err != nil {
			return timesheet.TimesheetResponse{}, err
		}
		ts.PlannedStart = &t
	}
	if req.PlannedEnd != nil {
		t, err := validator.ParseTimestamp(*req.PlannedEnd)
		if err != nil {
			return timesheet.TimesheetResponse{}, err
		}
		ts.PlannedEnd = &t
	}

	created, err := s.tsRepo.Create(ctx, ts)
	if err != nil {
		if database.IsConflict(err) {
			return timesheet.TimesheetResponse{}, timesheet.ErrShiftExists
		}
		return timesheet.TimesheetResponse{}, err
	}

	return timesheet.ToResponse(created), nil
}

// createSubstituteShift plans the backup employee onto the absent
// employee's shift. The substitute row keeps the same planned window but
// belongs to the backup's own team and starts unconfirmed.
func (s *TimesheetServiceImpl) createSubstituteShift(ctx context.Context, absent timesheet.Timesheet) (*timesheet.Timesheet, error) {
	backup, err := s.employeeRepo.GetByID(ctx, *absent.BackupEmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load backup employee: %w", err)
	}

	note := fmt.Sprintf("Vertretung für Ausfall am %s", absent.Date.Format("02.01.2006"))
	substitute, err := s.tsRepo.Upsert(ctx, timesheet.Timesheet{
		EmployeeID:    backup.ID,
		Date:          absent.Date,
		PlannedStart:  absent.PlannedStart,
		PlannedEnd:    absent.PlannedEnd,
		Status:        timesheet.StatusPlanned,
		Note:          &note,
		SheetFileName: absent.SheetFileName,
		TeamID:        backup.TeamID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert substitute shift: %w", err)
	}

	slog.Info("substitute shift planned",
		"absent_employee_id", absent.EmployeeID,
		"backup_employee_id", backup.ID,
		"date", absent.Date.Format("2006-01-02"))

	substitute.EmployeeName = &backup.FullName
	return &substitute, nil
}

// pushShiftUpdate mirrors the substitute shift to the external schedule
// sheet, best effort.
func (s *TimesheetServiceImpl) pushShiftUpdate(ctx context.Context, ts timesheet.Timesheet) {
	update := sheetsync.ShiftUpdate{
		Date:         ts.Date.Format("2006-01-02"),
		PlannedStart: ts.PlannedStart,
		PlannedEnd:   ts.PlannedEnd,
		Note:         ts.Note,
	}
	if ts.SheetFileName != nil {
		update.SheetFileName = *ts.SheetFileName
	}
	if ts.EmployeeName != nil {
		update.EmployeeName = *ts.EmployeeName
	}
	s.syncer.PushShift(ctx, update)
}

// recordChange writes field-level audit entries for the mutation. Audit
// failures are logged, never propagated.
func (s *TimesheetServiceImpl) recordChange(ctx context.Context, actor timesheet.Actor, before, after timesheet.Timesheet) {
	date := before.Date
	entries := []audit.Entry{}

	if before.Status != after.Status {
		entries = append(entries, audit.Entry{
			Field:    "status",
			OldValue: audit.Snapshot(string(before.Status)),
			NewValue: audit.Snapshot(string(after.Status)),
		})
	}
	if !equalTimePtr(before.ActualStart, after.ActualStart) {
		entries = append(entries, audit.Entry{
			Field:    "actual_start",
			OldValue: audit.Snapshot(before.ActualStart),
			NewValue: audit.Snapshot(after.ActualStart),
		})
	}
	if !equalTimePtr(before.ActualEnd, after.ActualEnd) {
		entries = append(entries, audit.Entry{
			Field:    "actual_end",
			OldValue: audit.Snapshot(before.ActualEnd),
			NewValue: audit.Snapshot(after.ActualEnd),
		})
	}
	if before.BreakMinutes != after.BreakMinutes {
		entries = append(entries, audit.Entry{
			Field:    "break_minutes",
			OldValue: audit.Snapshot(before.BreakMinutes),
			NewValue: audit.Snapshot(after.BreakMinutes),
		})
	}
	if !equalAbsencePtr(before.AbsenceType, after.AbsenceType) {
		entries = append(entries, audit.Entry{
			Field:    "absence_type",
			OldValue: audit.Snapshot(before.AbsenceType),
			NewValue: audit.Snapshot(after.AbsenceType),
		})
	}

	for _, entry := range entries {
		entry.EmployeeID = before.EmployeeID
		entry.Date = &date
		entry.ChangedBy = actor.EmployeeID
		if err := s.auditRepo.Insert(ctx, entry); err != nil {
			slog.Error("failed to write audit entry",
				"timesheet_id", before.ID, "field", entry.Field, "error", err)
		}
	}
}

// applyFields copies the request's optional fields onto the row.
func applyFields(ts *timesheet.Timesheet, req timesheet.UpdateTimesheetRequest) {
	if req.ActualStart != nil {
		if t, err := validator.ParseTimestamp(*req.ActualStart); err == nil {
			ts.ActualStart = &t
		}
	}
	if req.ActualEnd != nil {
		if t, err := validator.ParseTimestamp(*req.ActualEnd); err == nil {
			ts.ActualEnd = &t
		}
	}
	if req.BreakMinutes != nil {
		ts.BreakMinutes = *req.BreakMinutes
	}
	if req.Note != nil {
		ts.Note = req.Note
	}
	if req.AbsenceType != nil {
		if *req.AbsenceType == "" {
			ts.AbsenceType = nil
		} else {
			at := timesheet.AbsenceType(*req.AbsenceType)
			ts.AbsenceType = &at
		}
	}
}

// absenceRecorded reports whether this mutation newly set an absence.
func absenceRecorded(before, after timesheet.Timesheet) bool {
	return after.AbsenceType != nil && (before.AbsenceType == nil || *before.AbsenceType != *after.AbsenceType)
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func equalAbsencePtr(a, b *timesheet.AbsenceType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
