package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/submission"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type teamSubmissionRepository struct {
	db *database.DB
}

func NewTeamSubmissionRepository(db *database.DB) submission.TeamSubmissionRepository {
	return &teamSubmissionRepository{db: db}
}

const teamSubmissionColumns = `
	id, sheet_file_name, month, year, status, dienstplan_config_id,
	signature_token, token_expires_at, recipient_signed_at, recipient_signature,
	manually_released_at, manually_released_by, release_note, pdf_url,
	created_at, updated_at
`

func scanTeamSubmission(row pgx.Row) (submission.TeamSubmission, error) {
	var sub submission.TeamSubmission
	err := row.Scan(
		&sub.ID, &sub.SheetFileName, &sub.Month, &sub.Year, &sub.Status, &sub.DienstplanConfigID,
		&sub.SignatureToken, &sub.TokenExpiresAt, &sub.RecipientSignedAt, &sub.RecipientSignature,
		&sub.ManuallyReleasedAt, &sub.ManuallyReleasedBy, &sub.ReleaseNote, &sub.PdfURL,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	return sub, err
}

// Create implements submission.TeamSubmissionRepository. A losing
// concurrent create surfaces as database.ConflictError; the coordinator
// re-fetches the winner.
func (r *teamSubmissionRepository) Create(ctx context.Context, sub submission.TeamSubmission) (submission.TeamSubmission, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO team_submissions (
			sheet_file_name, month, year, status, dienstplan_config_id,
			signature_token, token_expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		sub.SheetFileName, sub.Month, sub.Year, sub.Status, sub.DienstplanConfigID,
		sub.SignatureToken, sub.TokenExpiresAt,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)

	if err != nil {
		if classified := database.ClassifyError(err); database.IsConflict(classified) {
			return submission.TeamSubmission{}, classified
		}
		return submission.TeamSubmission{}, fmt.Errorf("failed to create team submission: %w", err)
	}

	return sub, nil
}

// GetByID implements submission.TeamSubmissionRepository.
func (r *teamSubmissionRepository) GetByID(ctx context.Context, id string) (submission.TeamSubmission, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + teamSubmissionColumns + ` FROM team_submissions WHERE id = $1`

	sub, err := scanTeamSubmission(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return submission.TeamSubmission{}, submission.ErrSubmissionNotFound
		}
		return submission.TeamSubmission{}, fmt.Errorf("failed to get team submission: %w", err)
	}

	return sub, nil
}

// GetBySheetPeriod implements submission.TeamSubmissionRepository.
func (r *teamSubmissionRepository) GetBySheetPeriod(ctx context.Context, sheetFileName string, month, year int) (*submission.TeamSubmission, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + teamSubmissionColumns + `
		FROM team_submissions
		WHERE sheet_file_name = $1 AND month = $2 AND year = $3
	`

	sub, err := scanTeamSubmission(q.QueryRow(ctx, query, sheetFileName, month, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get team submission by period: %w", err)
	}

	return &sub, nil
}

// GetByToken implements submission.TeamSubmissionRepository.
func (r *teamSubmissionRepository) GetByToken(ctx context.Context, token string) (submission.TeamSubmission, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + teamSubmissionColumns + ` FROM team_submissions WHERE signature_token = $1`

	sub, err := scanTeamSubmission(q.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return submission.TeamSubmission{}, submission.ErrInvalidToken
		}
		return submission.TeamSubmission{}, fmt.Errorf("failed to get team submission by token: %w", err)
	}

	return sub, nil
}

// UpdateStatus implements submission.TeamSubmissionRepository.
func (r *teamSubmissionRepository) UpdateStatus(ctx context.Context, id string, status submission.Status) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE team_submissions SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update submission status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return submission.ErrSubmissionNotFound
	}

	return nil
}

// SetRecipientSigned implements submission.TeamSubmissionRepository.
func (r *teamSubmissionRepository) SetRecipientSigned(ctx context.Context, id string, signature string) (submission.TeamSubmission, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE team_submissions
		SET status = $2, recipient_signed_at = NOW(), recipient_signature = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + teamSubmissionColumns

	sub, err := scanTeamSubmission(q.QueryRow(ctx, query, id, submission.StatusCompleted, signature))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return submission.TeamSubmission{}, submission.ErrSubmissionNotFound
		}
		return submission.TeamSubmission{}, fmt.Errorf("failed to set recipient signature: %w", err)
	}

	return sub, nil
}

// ClearRecipientSignature implements submission.TeamSubmissionRepository.
// Employee signatures stay in place, the recipient can re-sign.
func (r *teamSubmissionRepository) ClearRecipientSignature(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE team_submissions
		SET recipient_signed_at = NULL,
		    recipient_signature = NULL,
		    status = CASE WHEN status = 'COMPLETED' THEN 'PENDING_RECIPIENT' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to clear recipient signature: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return submission.ErrSubmissionNotFound
	}

	return nil
}

// SetReleaseNote implements submission.TeamSubmissionRepository.
func (r *teamSubmissionRepository) SetReleaseNote(ctx context.Context, id string, releasedBy string, note *string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE team_submissions
		SET manually_released_at = NOW(), manually_released_by = $2, release_note = $3, updated_at = NOW()
		WHERE id = $1
	`, id, releasedBy, note)
	if err != nil {
		return fmt.Errorf("failed to set release note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return submission.ErrSubmissionNotFound
	}

	return nil
}

// Delete implements submission.TeamSubmissionRepository. Signatures go with
// it via ON DELETE CASCADE.
func (r *teamSubmissionRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM team_submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return submission.ErrSubmissionNotFound
	}

	return nil
}
