package submission

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/assistenzwerk/timesheet-backend-go/internal/config"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/audit"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/dienstplan"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/submission"
	"github.com/assistenzwerk/timesheet-backend-go/internal/domain/timesheet"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/database"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/email"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/signature"
	"github.com/assistenzwerk/timesheet-backend-go/internal/pkg/token"
	"github.com/assistenzwerk/timesheet-backend-go/internal/repository/postgresql"
)

// CoordinatorImpl drives the multi-party signature workflow. All mutations
// run at serializable isolation; unique keys arbitrate races and the loser
// re-reads the winner's row exactly once instead of retrying in a loop.
type CoordinatorImpl struct {
	db           *database.DB
	subRepo      submission.TeamSubmissionRepository
	sigRepo      submission.EmployeeSignatureRepository
	monthlyRepo  submission.MonthlySubmissionRepository
	tsRepo       timesheet.TimesheetRepository
	auditRepo    audit.Repository
	configRepo   dienstplan.ConfigRepository
	resolver     dienstplan.Resolver
	emailService email.EmailService
	frontendURL  string
	adminInbox   string

	// runTx wraps mutations in a serializable transaction. Replaceable in
	// tests, where the fakes have no database underneath.
	runTx func(ctx context.Context, db *database.DB, fn func(ctx context.Context) error) error
}

func NewCoordinator(
	db *database.DB,
	subRepo submission.TeamSubmissionRepository,
	sigRepo submission.EmployeeSignatureRepository,
	monthlyRepo submission.MonthlySubmissionRepository,
	tsRepo timesheet.TimesheetRepository,
	auditRepo audit.Repository,
	configRepo dienstplan.ConfigRepository,
	resolver dienstplan.Resolver,
	emailService email.EmailService,
	appCfg config.AppConfig,
	smtpCfg config.SMTPConfig,
) submission.Coordinator {
	return &CoordinatorImpl{
		db:           db,
		subRepo:      subRepo,
		sigRepo:      sigRepo,
		monthlyRepo:  monthlyRepo,
		tsRepo:       tsRepo,
		auditRepo:    auditRepo,
		configRepo:   configRepo,
		resolver:     resolver,
		emailService: emailService,
		frontendURL:  appCfg.FrontendURL,
		adminInbox:   smtpCfg.AdminInbox,
		runTx:        postgresql.WithSerializableTx,
	}
}

// GetStatus reports the submission state for the caller's grouping and
// period. Periods predating the team workflow surface the legacy
// single-employee submission read-only.
func (s *CoordinatorImpl) GetStatus(ctx context.Context, employeeID string, month, year int) (submission.StatusResponse, error) {
	cfg, err := s.resolver.Resolve(ctx, employeeID, month, year)
	if err != nil {
		return s.legacyStatusOr(ctx, employeeID, month, year, err)
	}

	sub, err := s.subRepo.GetBySheetPeriod(ctx, cfg.SheetFileName, month, year)
	if err != nil {
		return submission.StatusResponse{}, err
	}
	if sub == nil {
		// No team submission yet. A legacy row, if any, wins for display.
		if resp, err := s.legacyStatusOr(ctx, employeeID, month, year, nil); err == nil && resp.Kind == submission.KindLegacy {
			return resp, nil
		}

		roster, err := s.tsRepo.ListRosterForPeriod(ctx, cfg.SheetFileName, month, year)
		if err != nil {
			return submission.StatusResponse{}, err
		}
		return submission.StatusResponse{
			Kind:       submission.KindTeam,
			Roster:     rosterEntries(roster, nil),
			TotalCount: len(roster),
		}, nil
	}

	return s.buildStatus(ctx, *sub, employeeID)
}

// legacyStatusOr falls back to the read-only legacy submission. When no
// legacy row exists either, resolveErr (the reason the team path failed) is
// returned.
func (s *CoordinatorImpl) legacyStatusOr(ctx context.Context, employeeID string, month, year int, resolveErr error) (submission.StatusResponse, error) {
	legacy, err := s.monthlyRepo.GetByEmployeePeriod(ctx, employeeID, month, year)
	if err != nil {
		return submission.StatusResponse{}, err
	}
	if legacy != nil {
		return submission.StatusResponse{
			Kind:   submission.KindLegacy,
			Legacy: legacy,
		}, nil
	}
	if resolveErr != nil {
		return submission.StatusResponse{}, resolveErr
	}
	return submission.StatusResponse{Kind: submission.KindTeam}, nil
}

// CreateOrJoin creates the submission for the caller's grouping and period,
// or joins the existing one. The caller must have confirmed every planned
// shift of the period first.
func (s *CoordinatorImpl) CreateOrJoin(ctx context.Context, employeeID string, month, year int) (submission.StatusResponse, error) {
	unconfirmed, err := s.tsRepo.CountUnconfirmed(ctx, employeeID, month, year)
	if err != nil {
		return submission.StatusResponse{}, err
	}
	if unconfirmed > 0 {
		return submission.StatusResponse{}, &submission.UnconfirmedShiftsError{Count: unconfirmed}
	}

	cfg, err := s.resolver.Resolve(ctx, employeeID, month, year)
	if err != nil {
		return submission.StatusResponse{}, err
	}

	sub, err := s.createOrJoinTx(ctx, cfg, employeeID, month, year)
	if database.IsConflict(err) {
		// A teammate created the submission first. The second pass reads
		// the winner's row.
		sub, err = s.createOrJoinTx(ctx, cfg, employeeID, month, year)
	}
	if err != nil {
		return submission.StatusResponse{}, err
	}

	return s.buildStatus(ctx, sub, employeeID)
}

func (s *CoordinatorImpl) createOrJoinTx(ctx context.Context, cfg dienstplan.Config, employeeID string, month, year int) (submission.TeamSubmission, error) {
	var result submission.TeamSubmission

	err := s.runTx(ctx, s.db, func(ctx context.Context) error {
		existing, err := s.subRepo.GetBySheetPeriod(ctx, cfg.SheetFileName, month, year)
		if err != nil {
			return err
		}

		if existing != nil {
			roster, err := s.tsRepo.ListRosterForPeriod(ctx, cfg.SheetFileName, month, year)
			if err != nil {
				return err
			}
			if len(roster) == 0 {
				// Orphaned submission: every timesheet row moved to another
				// grouping since it was created. Discard it and start over.
				slog.Warn("discarding orphaned submission",
					"submission_id", existing.ID, "sheet", cfg.SheetFileName, "month", month, "year", year)
				if err := s.subRepo.Delete(ctx, existing.ID); err != nil {
					return err
				}
			} else {
				sig, err := s.sigRepo.GetBySubmissionAndEmployee(ctx, existing.ID, employeeID)
				if err != nil {
					return err
				}
				if sig != nil {
					return submission.ErrAlreadySigned
				}
				result = *existing
				return nil
			}
		}

		signatureToken, err := token.NewSignatureToken()
		if err != nil {
			return fmt.Errorf("failed to generate signature token: %w", err)
		}

		created, err := s.subRepo.Create(ctx, submission.TeamSubmission{
			SheetFileName:      cfg.SheetFileName,
			Month:              month,
			Year:               year,
			Status:             submission.StatusPendingEmployees,
			DienstplanConfigID: cfg.ID,
			SignatureToken:     signatureToken,
			TokenExpiresAt:     time.Now().Add(submission.TokenValidity),
		})
		if err != nil {
			return err
		}

		result = created
		return nil
	})

	return result, err
}

// SignAsEmployee records the caller's signature and flips their confirmed
// timesheets of the period to SUBMITTED. When the last roster member signs,
// the submission advances to PENDING_RECIPIENT and the care recipient is
// asked by email to counter-sign.
func (s *CoordinatorImpl) SignAsEmployee(ctx context.Context, submissionID, employeeID, signatureToken, signaturePayload string) (submission.StatusResponse, error) {
	normalized, err := signature.Normalize(signaturePayload)
	if err != nil {
		return submission.StatusResponse{}, err
	}

	var (
		sub          submission.TeamSubmission
		allSigned    bool
		recipientCfg dienstplan.Config
	)

	err = s.runTx(ctx, s.db, func(ctx context.Context) error {
		sub, err = s.subRepo.GetByID(ctx, submissionID)
		if err != nil {
			return err
		}

		if sub.Status == submission.StatusCompleted {
			return submission.ErrSubmissionCompleted
		}
		if sub.SignatureToken != signatureToken {
			return submission.ErrInvalidToken
		}
		if time.Now().After(sub.TokenExpiresAt) {
			return submission.ErrTokenExpired
		}

		if _, err := s.sigRepo.Create(ctx, submission.EmployeeSignature{
			TeamSubmissionID: sub.ID,
			EmployeeID:       employeeID,
			Signature:        normalized,
		}); err != nil {
			if database.IsConflict(err) {
				return submission.ErrAlreadySigned
			}
			return err
		}

		// Freeze the signer's rows of this period.
		for _, from := range []timesheet.Status{timesheet.StatusConfirmed, timesheet.StatusChanged} {
			if err := s.tsRepo.SetStatusForEmployeePeriod(ctx, employeeID, sub.SheetFileName, sub.Month, sub.Year, from, timesheet.StatusSubmitted); err != nil {
				return err
			}
		}

		roster, err := s.tsRepo.ListRosterForPeriod(ctx, sub.SheetFileName, sub.Month, sub.Year)
		if err != nil {
			return err
		}
		sigs, err := s.sigRepo.ListBySubmission(ctx, sub.ID)
		if err != nil {
			return err
		}

		allSigned = len(roster) > 0 && signedCount(roster, sigs) == len(roster)
		if allSigned && sub.Status == submission.StatusPendingEmployees {
			if err := s.subRepo.UpdateStatus(ctx, sub.ID, submission.StatusPendingRecipient); err != nil {
				return err
			}
			sub.Status = submission.StatusPendingRecipient
		}

		return nil
	})
	if err != nil {
		return submission.StatusResponse{}, err
	}

	if allSigned {
		recipientCfg, err = s.configRepo.GetByID(ctx, sub.DienstplanConfigID)
		if err != nil {
			slog.Error("failed to load recipient config for sign request", "sheet", sub.SheetFileName, "error", err)
		} else {
			s.notifyRecipient(sub, recipientCfg)
		}
	}

	return s.buildStatus(ctx, sub, employeeID)
}

// notifyRecipient sends the counter-sign request. Failures are logged, the
// signature itself is already committed.
func (s *CoordinatorImpl) notifyRecipient(sub submission.TeamSubmission, cfg dienstplan.Config) {
	if cfg.RecipientEmail == dienstplan.PlaceholderRecipientEmail {
		slog.Warn("recipient not configured, skipping sign request email", "sheet", sub.SheetFileName)
		return
	}

	signLink := fmt.Sprintf("%s/sign/%s?token=%s", s.frontendURL, sub.ID, sub.SignatureToken)
	go func() {
		if err := s.emailService.SendRecipientSignRequest(
			cfg.RecipientEmail, cfg.RecipientName, sub.SheetFileName,
			sub.Month, sub.Year, signLink, sub.TokenExpiresAt.Format("02.01.2006"),
		); err != nil {
			slog.Error("failed to send recipient sign request", "sheet", sub.SheetFileName, "error", err)
		}
	}()
}

// SignAsRecipient completes the submission with the care recipient's
// counter-signature. The token alone authorizes this path, no session is
// required.
func (s *CoordinatorImpl) SignAsRecipient(ctx context.Context, signatureToken, signaturePayload string) (submission.TeamSubmissionView, error) {
	normalized, err := signature.Normalize(signaturePayload)
	if err != nil {
		return submission.TeamSubmissionView{}, err
	}

	var signed submission.TeamSubmission

	err = s.runTx(ctx, s.db, func(ctx context.Context) error {
		sub, err := s.subRepo.GetByToken(ctx, signatureToken)
		if err != nil {
			return err
		}

		switch sub.Status {
		case submission.StatusCompleted:
			return submission.ErrAlreadyCompleted
		case submission.StatusPendingEmployees:
			return submission.ErrEmployeesPending
		}
		if time.Now().After(sub.TokenExpiresAt) {
			return submission.ErrTokenExpired
		}

		signed, err = s.subRepo.SetRecipientSigned(ctx, sub.ID, normalized)
		return err
	})
	if err != nil {
		return submission.TeamSubmissionView{}, err
	}

	go func() {
		if err := s.emailService.SendCompletionNotice(
			s.adminInbox, signed.SheetFileName, signed.Month, signed.Year,
		); err != nil {
			slog.Error("failed to send completion notice", "sheet", signed.SheetFileName, "error", err)
		}
	}()

	return submission.ToView(signed), nil
}

// DeleteEmployeeSignature is the admin correction path: it removes one
// employee's signature, reverts their frozen rows and, when necessary, moves
// the submission back to PENDING_EMPLOYEES.
func (s *CoordinatorImpl) DeleteEmployeeSignature(ctx context.Context, submissionID, employeeID string) error {
	return s.runTx(ctx, s.db, func(ctx context.Context) error {
		sub, err := s.subRepo.GetByID(ctx, submissionID)
		if err != nil {
			return err
		}
		if sub.Status == submission.StatusCompleted {
			return submission.ErrSubmissionCompleted
		}

		if err := s.sigRepo.Delete(ctx, submissionID, employeeID); err != nil {
			return err
		}

		if err := s.tsRepo.SetStatusForEmployeePeriod(ctx, employeeID, sub.SheetFileName, sub.Month, sub.Year, timesheet.StatusSubmitted, timesheet.StatusConfirmed); err != nil {
			return err
		}

		return s.revertIfRosterIncomplete(ctx, sub)
	})
}

// revertIfRosterIncomplete recomputes the live roster after a signature
// removal and moves the submission back to PENDING_EMPLOYEES only when the
// remaining roster is no longer fully signed. A deleted signature of an
// employee who already left the grouping keeps the submission at
// PENDING_RECIPIENT, there is nobody left who could sign again.
func (s *CoordinatorImpl) revertIfRosterIncomplete(ctx context.Context, sub submission.TeamSubmission) error {
	if sub.Status != submission.StatusPendingRecipient {
		return nil
	}

	roster, err := s.tsRepo.ListRosterForPeriod(ctx, sub.SheetFileName, sub.Month, sub.Year)
	if err != nil {
		return err
	}
	sigs, err := s.sigRepo.ListBySubmission(ctx, sub.ID)
	if err != nil {
		return err
	}
	if len(roster) > 0 && signedCount(roster, sigs) == len(roster) {
		return nil
	}

	return s.subRepo.UpdateStatus(ctx, sub.ID, submission.StatusPendingEmployees)
}

// WithdrawOwnSignature lets an employee take back their signature while the
// recipient has not signed yet.
func (s *CoordinatorImpl) WithdrawOwnSignature(ctx context.Context, submissionID, employeeID string) error {
	return s.runTx(ctx, s.db, func(ctx context.Context) error {
		sub, err := s.subRepo.GetByID(ctx, submissionID)
		if err != nil {
			return err
		}
		if sub.Status == submission.StatusCompleted {
			return submission.ErrSubmissionCompleted
		}
		if sub.RecipientSignedAt != nil {
			return submission.ErrRecipientAlreadySigned
		}

		if err := s.sigRepo.Delete(ctx, submissionID, employeeID); err != nil {
			return err
		}

		if err := s.tsRepo.SetStatusForEmployeePeriod(ctx, employeeID, sub.SheetFileName, sub.Month, sub.Year, timesheet.StatusSubmitted, timesheet.StatusConfirmed); err != nil {
			return err
		}

		return s.revertIfRosterIncomplete(ctx, sub)
	})
}

// DeleteRecipientSignature is the admin correction path for a wrong
// counter-signature. Employee signatures stay in place.
func (s *CoordinatorImpl) DeleteRecipientSignature(ctx context.Context, submissionID string) error {
	return s.runTx(ctx, s.db, func(ctx context.Context) error {
		sub, err := s.subRepo.GetByID(ctx, submissionID)
		if err != nil {
			return err
		}
		if sub.RecipientSignedAt == nil {
			return submission.ErrSignatureNotFound
		}

		return s.subRepo.ClearRecipientSignature(ctx, sub.ID)
	})
}

// Release completes a submission without the recipient's digital
// counter-signature. Used when the recipient signed on paper instead; the
// note documents where the paper copy lives.
func (s *CoordinatorImpl) Release(ctx context.Context, submissionID, adminID string, note *string) error {
	return s.runTx(ctx, s.db, func(ctx context.Context) error {
		sub, err := s.subRepo.GetByID(ctx, submissionID)
		if err != nil {
			return err
		}

		switch sub.Status {
		case submission.StatusCompleted:
			return submission.ErrAlreadyCompleted
		case submission.StatusPendingEmployees:
			return submission.ErrEmployeesPending
		}

		if err := s.subRepo.SetReleaseNote(ctx, sub.ID, adminID, note); err != nil {
			return err
		}
		if err := s.subRepo.UpdateStatus(ctx, sub.ID, submission.StatusCompleted); err != nil {
			return err
		}

		slog.Info("submission manually released", "submission_id", sub.ID, "by", adminID)
		return nil
	})
}

// Reset clears every signature of a submission and reopens all frozen
// timesheets of the period. The submission row survives with a fresh
// PENDING_EMPLOYEES state; the reset is recorded in the audit log.
func (s *CoordinatorImpl) Reset(ctx context.Context, submissionID, adminID string, reason *string) error {
	return s.runTx(ctx, s.db, func(ctx context.Context) error {
		sub, err := s.subRepo.GetByID(ctx, submissionID)
		if err != nil {
			return err
		}

		deleted, err := s.sigRepo.DeleteAllBySubmission(ctx, sub.ID)
		if err != nil {
			return err
		}

		if sub.RecipientSignedAt != nil {
			if err := s.subRepo.ClearRecipientSignature(ctx, sub.ID); err != nil {
				return err
			}
		}

		if err := s.tsRepo.SetStatusForSheetPeriod(ctx, sub.SheetFileName, sub.Month, sub.Year, timesheet.StatusSubmitted, timesheet.StatusConfirmed); err != nil {
			return err
		}

		if err := s.subRepo.UpdateStatus(ctx, sub.ID, submission.StatusPendingEmployees); err != nil {
			return err
		}

		oldStatus := string(sub.Status)
		newStatus := string(submission.StatusPendingEmployees)
		if err := s.auditRepo.Insert(ctx, audit.Entry{
			EmployeeID: adminID,
			Field:      "submission_reset:" + sub.ID,
			OldValue:   &oldStatus,
			NewValue:   &newStatus,
			ChangedBy:  adminID,
			Reason:     reason,
		}); err != nil {
			slog.Error("failed to record submission reset", "submission_id", sub.ID, "error", err)
		}

		slog.Info("submission reset", "submission_id", sub.ID, "by", adminID, "signatures_removed", deleted)
		return nil
	})
}

// buildStatus assembles the status payload: submission view plus the live
// roster with per-member signature state.
func (s *CoordinatorImpl) buildStatus(ctx context.Context, sub submission.TeamSubmission, employeeID string) (submission.StatusResponse, error) {
	roster, err := s.tsRepo.ListRosterForPeriod(ctx, sub.SheetFileName, sub.Month, sub.Year)
	if err != nil {
		return submission.StatusResponse{}, err
	}
	sigs, err := s.sigRepo.ListBySubmission(ctx, sub.ID)
	if err != nil {
		return submission.StatusResponse{}, err
	}

	entries := rosterEntries(roster, sigs)
	view := submission.ToView(sub)

	resp := submission.StatusResponse{
		Kind:       submission.KindTeam,
		Submission: &view,
		Roster:     entries,
		TotalCount: len(entries),
	}
	for _, e := range entries {
		if e.Signed {
			resp.SignedCount++
		}
		if e.EmployeeID == employeeID && e.Signed {
			resp.CurrentUserSigned = true
		}
	}

	return resp, nil
}

func rosterEntries(roster []timesheet.RosterEmployee, sigs []submission.EmployeeSignature) []submission.RosterEntry {
	byEmployee := make(map[string]submission.EmployeeSignature, len(sigs))
	for _, sig := range sigs {
		byEmployee[sig.EmployeeID] = sig
	}

	entries := make([]submission.RosterEntry, 0, len(roster))
	for _, member := range roster {
		entry := submission.RosterEntry{
			EmployeeID: member.EmployeeID,
			FullName:   member.FullName,
		}
		if sig, ok := byEmployee[member.EmployeeID]; ok {
			entry.Signed = true
			signedAt := sig.SignedAt
			entry.SignedAt = &signedAt
		}
		entries = append(entries, entry)
	}
	return entries
}

func signedCount(roster []timesheet.RosterEmployee, sigs []submission.EmployeeSignature) int {
	byEmployee := make(map[string]bool, len(sigs))
	for _, sig := range sigs {
		byEmployee[sig.EmployeeID] = true
	}
	n := 0
	for _, member := range roster {
		if byEmployee[member.EmployeeID] {
			n++
		}
	}
	return n
}
