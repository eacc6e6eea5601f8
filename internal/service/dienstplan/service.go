package dienstplan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/dienstplan"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/employee"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/timesheet"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// PlaceholderRecipientName marks configs created without a known recipient.
const PlaceholderRecipientName = "Konfiguration erforderlich"

type ServiceImpl struct {
	configRepo    dienstplan.ConfigRepository
	timesheetRepo timesheet.TimesheetRepository
	employeeRepo  employee.EmployeeRepository
}

func NewService(
	configRepo dienstplan.ConfigRepository,
	timesheetRepo timesheet.TimesheetRepository,
	employeeRepo employee.EmployeeRepository,
) *ServiceImpl {
	return &ServiceImpl{
		configRepo:    configRepo,
		timesheetRepo: timesheetRepo,
		employeeRepo:  employeeRepo,
	}
}

var _ dienstplan.Resolver = (*ServiceImpl)(nil)

// Resolve derives the sheet file name grouping an employee's timesheets for
// one period and returns its config, creating both on first use. The lookup
// order is: an existing sheet file name on any of the employee's rows, the
// legacy team id stored on the rows, and finally the employee's current team
// or first active client.
func (s *ServiceImpl) Resolve(ctx context.Context, employeeID string, month, year int) (dienstplan.Config, error) {
	// 1. A row in the period already carries the grouping.
	sheetFileName, err := s.timesheetRepo.FindSheetFileName(ctx, employeeID, month, year)
	if err != nil {
		return dienstplan.Config{}, fmt.Errorf("failed to look up sheet file name: %w", err)
	}
	if sheetFileName != nil {
		return s.EnsureConfig(ctx, *sheetFileName, PlaceholderRecipientName, dienstplan.PlaceholderRecipientEmail)
	}

	// 2. Legacy rows reference a team but carry no sheet file name yet.
	// Synthesize the name and backfill every row of that team in the period
	// so teammates resolve to the same grouping.
	teamID, err := s.timesheetRepo.FindTeamID(ctx, employeeID, month, year)
	if err != nil {
		return dienstplan.Config{}, fmt.Errorf("failed to look up team id: %w", err)
	}
	if teamID != nil {
		team, err := s.employeeRepo.GetTeamByID(ctx, *teamID)
		if err != nil {
			return dienstplan.Config{}, err
		}
		name := synthesizeSheetFileName(team.Name, year)

		backfilled, err := s.timesheetRepo.BackfillSheetFileName(ctx, *teamID, month, year, name)
		if err != nil {
			return dienstplan.Config{}, fmt.Errorf("failed to backfill sheet file name: %w", err)
		}
		if backfilled > 0 {
			slog.Info("backfilled sheet file name from legacy team rows",
				"team_id", *teamID, "sheet", name, "rows", backfilled)
		}

		return s.EnsureConfig(ctx, name, PlaceholderRecipientName, dienstplan.PlaceholderRecipientEmail)
	}

	// 3. No rows carry any grouping: fall back to the employee's current
	// assignment.
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return dienstplan.Config{}, err
	}

	if emp.TeamID != nil {
		team, err := s.employeeRepo.GetTeamByID(ctx, *emp.TeamID)
		if err != nil {
			return dienstplan.Config{}, err
		}
		return s.EnsureConfig(ctx, synthesizeSheetFileName(team.Name, year), PlaceholderRecipientName, dienstplan.PlaceholderRecipientEmail)
	}

	client, err := s.employeeRepo.GetFirstActiveClient(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dienstplan.Config{}, dienstplan.ErrNoAssignment
		}
		return dienstplan.Config{}, err
	}

	recipientEmail := dienstplan.PlaceholderRecipientEmail
	if client.Email != nil && *client.Email != "" {
		recipientEmail = *client.Email
	}
	name := fmt.Sprintf("%s_%d", strings.Join(strings.Fields(client.Name), "_"), year)
	return s.EnsureConfig(ctx, name, client.Name, recipientEmail)
}

// EnsureConfig returns the config for a sheet file name, creating it when
// missing. The unique key on sheet_file_name arbitrates concurrent creates;
// the loser re-fetches the winner's row.
func (s *ServiceImpl) EnsureConfig(ctx context.Context, sheetFileName, recipientName, recipientEmail string) (dienstplan.Config, error) {
	cfg, err := s.configRepo.GetBySheetFileName(ctx, sheetFileName)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, dienstplan.ErrNotConfigured) {
		return dienstplan.Config{}, err
	}

	created, err := s.configRepo.Create(ctx, dienstplan.Config{
		SheetFileName:  sheetFileName,
		RecipientName:  recipientName,
		RecipientEmail: recipientEmail,
	})
	if err != nil {
		if database.IsConflict(err) {
			return s.configRepo.GetBySheetFileName(ctx, sheetFileName)
		}
		return dienstplan.Config{}, err
	}

	return created, nil
}

// GetConfig returns the config of one grouping, for the admin surface.
func (s *ServiceImpl) GetConfig(ctx context.Context, sheetFileName string) (dienstplan.ConfigResponse, error) {
	cfg, err := s.configRepo.GetBySheetFileName(ctx, sheetFileName)
	if err != nil {
		return dienstplan.ConfigResponse{}, err
	}
	return dienstplan.ToResponse(cfg), nil
}

// UpdateConfig replaces the recipient identity of a grouping. Used by admins
// to fix placeholder configs before the recipient can be asked to sign.
func (s *ServiceImpl) UpdateConfig(ctx context.Context, sheetFileName string, req dienstplan.UpdateConfigRequest) (dienstplan.ConfigResponse, error) {
	cfg, err := s.configRepo.GetBySheetFileName(ctx, sheetFileName)
	if err != nil {
		return dienstplan.ConfigResponse{}, err
	}

	cfg.RecipientName = req.RecipientName
	cfg.RecipientEmail = req.RecipientEmail
	if err := s.configRepo.Update(ctx, cfg); err != nil {
		return dienstplan.ConfigResponse{}, err
	}

	return dienstplan.ToResponse(cfg), nil
}

// synthesizeSheetFileName mirrors the naming convention of the external
// schedule sheets: "Team_<name>_<year>" with whitespace collapsed to
// underscores.
func synthesizeSheetFileName(teamName string, year int) string {
	return fmt.Sprintf("Team_%s_%d", strings.Join(strings.Fields(teamName), "_"), year)
}
