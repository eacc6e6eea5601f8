package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/dienstplan"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type dienstplanConfigRepository struct {
	db *database.DB
}

func NewDienstplanConfigRepository(db *database.DB) dienstplan.ConfigRepository {
	return &dienstplanConfigRepository{db: db}
}

// Create implements dienstplan.ConfigRepository. A unique violation on
// sheet_file_name surfaces as database.ConflictError so the resolver can
// re-fetch the winner instead of failing.
func (r *dienstplanConfigRepository) Create(ctx context.Context, cfg dienstplan.Config) (dienstplan.Config, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO dienstplan_configs (sheet_file_name, recipient_name, recipient_email)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, cfg.SheetFileName, cfg.RecipientName, cfg.RecipientEmail).
		Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		if classified := database.ClassifyError(err); database.IsConflict(classified) {
			return dienstplan.Config{}, classified
		}
		return dienstplan.Config{}, fmt.Errorf("failed to create dienstplan config: %w", err)
	}

	return cfg, nil
}

// GetByID implements dienstplan.ConfigRepository.
func (r *dienstplanConfigRepository) GetByID(ctx context.Context, id string) (dienstplan.Config, error) {
	q := GetQuerier(ctx, r.db)

	var cfg dienstplan.Config
	err := q.QueryRow(ctx, `
		SELECT id, sheet_file_name, recipient_name, recipient_email, created_at, updated_at
		FROM dienstplan_configs
		WHERE id = $1
	`, id).Scan(&cfg.ID, &cfg.SheetFileName, &cfg.RecipientName, &cfg.RecipientEmail, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dienstplan.Config{}, dienstplan.ErrNotConfigured
		}
		return dienstplan.Config{}, fmt.Errorf("failed to get dienstplan config: %w", err)
	}

	return cfg, nil
}

// GetBySheetFileName implements dienstplan.ConfigRepository.
func (r *dienstplanConfigRepository) GetBySheetFileName(ctx context.Context, sheetFileName string) (dienstplan.Config, error) {
	q := GetQuerier(ctx, r.db)

	var cfg dienstplan.Config
	err := q.QueryRow(ctx, `
		SELECT id, sheet_file_name, recipient_name, recipient_email, created_at, updated_at
		FROM dienstplan_configs
		WHERE sheet_file_name = $1
	`, sheetFileName).Scan(&cfg.ID, &cfg.SheetFileName, &cfg.RecipientName, &cfg.RecipientEmail, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dienstplan.Config{}, dienstplan.ErrNotConfigured
		}
		return dienstplan.Config{}, fmt.Errorf("failed to get dienstplan config by sheet: %w", err)
	}

	return cfg, nil
}

// Update implements dienstplan.ConfigRepository.
func (r *dienstplanConfigRepository) Update(ctx context.Context, cfg dienstplan.Config) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE dienstplan_configs
		SET recipient_name = $2, recipient_email = $3, updated_at = NOW()
		WHERE id = $1
	`, cfg.ID, cfg.RecipientName, cfg.RecipientEmail)
	if err != nil {
		return fmt.Errorf("failed to update dienstplan config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dienstplan.ErrNotConfigured
	}

	return nil
}
