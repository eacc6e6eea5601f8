package cron

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/dienstplan"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/timesheet"
)

const backfillBatchSize = 200

// DienstplanBackfillJob resolves the sheet file name for legacy timesheet
// rows that predate the grouping key. Resolution itself backfills whole
// teams, so one resolved row usually clears many.
func DienstplanBackfillJob(tsRepo timesheet.TimesheetRepository, resolver dienstplan.Resolver) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		rows, err := tsRepo.ListMissingSheetFileName(ctx, backfillBatchSize)
		if err != nil {
			return fmt.Errorf("list legacy timesheets: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}

		resolved := 0
		for _, row := range rows {
			month := int(row.Date.Month())
			year := row.Date.Year()
			if _, err := resolver.Resolve(ctx, row.EmployeeID, month, year); err != nil {
				// Employees without any assignment stay unresolved until an
				// admin assigns a team, not an error worth failing the job.
				slog.Warn("dienstplan backfill: resolve failed",
					"employee_id", row.EmployeeID, "month", month, "year", year, "error", err)
				continue
			}
			resolved++
		}

		slog.Info("dienstplan backfill finished", "candidates", len(rows), "resolved", resolved)
		return nil
	}
}
