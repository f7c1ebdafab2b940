package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finacct/ledger_posting_app/internal/apperrors"
	"github.com/finacct/ledger_posting_app/internal/core/domain"
	portsrepo "github.com/finacct/ledger_posting_app/internal/core/ports/repositories"
	portssvc "github.com/finacct/ledger_posting_app/internal/core/ports/services"
	"github.com/finacct/ledger_posting_app/internal/dto"
	"github.com/finacct/ledger_posting_app/internal/middleware"
	"github.com/finacct/ledger_posting_app/internal/utils/accounting"
)

var (
	ErrNotAuthorizedApprover = errors.New("actor is not an authorized approver")
	ErrSelfApproval          = errors.New("entry creator cannot approve their own entry")
	ErrDuplicateApprover     = errors.New("final approval requires a different approver than first approval")
	ErrEntryNotApproved      = errors.New("entry must be approved before posting")
)

// workflowService governs the entry lifecycle and drives the posting engine.
// The authorized-approver set is an injected policy, never a compiled-in list.
type workflowService struct {
	entryRepo           portsrepo.EntryRepositoryFacade
	accountSvc          portssvc.AccountSvcFacade
	auditRepo           portsrepo.AuditRepositoryFacade
	approverPolicy      portssvc.ApproverPolicy
	periodGuard         portssvc.PeriodLockGuard
	auditFailedAttempts bool
}

// NewWorkflowService creates a new WorkflowService.
func NewWorkflowService(
	entryRepo portsrepo.EntryRepositoryFacade,
	accountSvc portssvc.AccountSvcFacade,
	auditRepo portsrepo.AuditRepositoryFacade,
	approverPolicy portssvc.ApproverPolicy,
	periodGuard portssvc.PeriodLockGuard,
	auditFailedAttempts bool,
) portssvc.WorkflowSvcFacade {
	return &workflowService{
		entryRepo:           entryRepo,
		accountSvc:          accountSvc,
		auditRepo:           auditRepo,
		approverPolicy:      approverPolicy,
		periodGuard:         periodGuard,
		auditFailedAttempts: auditFailedAttempts,
	}
}

// Ensure workflowService implements the portssvc.WorkflowSvcFacade interface
var _ portssvc.WorkflowSvcFacade = (*workflowService)(nil)

// SubmitForApproval moves a draft entry into the approval queue. Balance is
// re-validated here since draft lines are mutable up to this point.
func (s *workflowService) SubmitForApproval(ctx context.Context, entityID string, entryID string, actor string) (*dto.TransitionResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.findEntryForEntity(ctx, entityID, entryID)
	if err != nil {
		return nil, err
	}

	if entry.Status != domain.StatusDraft {
		err := s.illegalTransition(entry, domain.StatusPendingFirstApproval)
		s.recordFailedAttempt(ctx, entry, actor, "submit", err)
		return nil, err
	}

	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for entry %s: %w", entryID, err)
	}
	if err := accounting.ValidateEntryBalance(lines); err != nil {
		err = fmt.Errorf("%w: %w: %v", apperrors.ErrStateConflict, ErrEntryUnbalanced, err)
		s.recordFailedAttempt(ctx, entry, actor, "submit", err)
		return nil, err
	}

	now := time.Now().UTC()
	transition := portsrepo.EntryTransition{
		EntryID:    entryID,
		FromStatus: domain.StatusDraft,
		ToStatus:   domain.StatusPendingFirstApproval,
		Actor:      actor,
		Now:        now,
		Audit: domain.AuditLogEntry{
			EntryID:    entryID,
			EntityID:   entityID,
			Action:     domain.ActionSubmitted,
			Actor:      actor,
			OccurredAt: now,
			FromStatus: domain.StatusDraft,
			ToStatus:   domain.StatusPendingFirstApproval,
		},
	}
	if err := s.entryRepo.TransitionEntryStatus(ctx, transition); err != nil {
		return nil, err
	}

	logger.Info("Entry submitted for approval", slog.String("entry_id", entryID), slog.String("actor", actor))
	return &dto.TransitionResponse{EntryID: entryID, Status: domain.StatusPendingFirstApproval, Stage: domain.StatusPendingFirstApproval.Stage()}, nil
}

// Approve dispatches on the entry's current state: first approval advances to
// pending final approval, final approval advances to approved. Dual approval
// requires two distinct authorized actors, neither equal to the creator.
func (s *workflowService) Approve(ctx context.Context, entityID string, entryID string, actor string) (*dto.TransitionResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.findEntryForEntity(ctx, entityID, entryID)
	if err != nil {
		return nil, err
	}

	var transition portsrepo.EntryTransition
	now := time.Now().UTC()

	switch entry.Status {
	case domain.StatusPendingFirstApproval:
		if err := s.checkApprover(entry, actor, ""); err != nil {
			s.recordFailedAttempt(ctx, entry, actor, "approve", err)
			return nil, err
		}
		transition = portsrepo.EntryTransition{
			EntryID:          entryID,
			FromStatus:       domain.StatusPendingFirstApproval,
			ToStatus:         domain.StatusPendingFinalApproval,
			Actor:            actor,
			Now:              now,
			SetFirstApprover: true,
			Audit: domain.AuditLogEntry{
				EntryID:    entryID,
				EntityID:   entityID,
				Action:     domain.ActionFirstApproved,
				Actor:      actor,
				OccurredAt: now,
				FromStatus: domain.StatusPendingFirstApproval,
				ToStatus:   domain.StatusPendingFinalApproval,
			},
		}

	case domain.StatusPendingFinalApproval:
		if err := s.checkApprover(entry, actor, entry.FirstApprovedBy); err != nil {
			s.recordFailedAttempt(ctx, entry, actor, "approve", err)
			return nil, err
		}
		transition = portsrepo.EntryTransition{
			EntryID:          entryID,
			FromStatus:       domain.StatusPendingFinalApproval,
			ToStatus:         domain.StatusApproved,
			Actor:            actor,
			Now:              now,
			SetFinalApprover: true,
			Audit: domain.AuditLogEntry{
				EntryID:    entryID,
				EntityID:   entityID,
				Action:     domain.ActionFinalApproved,
				Actor:      actor,
				OccurredAt: now,
				FromStatus: domain.StatusPendingFinalApproval,
				ToStatus:   domain.StatusApproved,
			},
		}

	default:
		err := s.illegalTransition(entry, domain.StatusApproved)
		s.recordFailedAttempt(ctx, entry, actor, "approve", err)
		return nil, err
	}

	if err := s.entryRepo.TransitionEntryStatus(ctx, transition); err != nil {
		return nil, err
	}

	logger.Info("Entry approved", slog.String("entry_id", entryID), slog.String("actor", actor), slog.String("new_status", string(transition.ToStatus)))
	return &dto.TransitionResponse{EntryID: entryID, Status: transition.ToStatus, Stage: transition.ToStatus.Stage()}, nil
}

// Reject returns a pending entry to draft. Recorded approvals and their
// timestamps are cleared so the approval chain restarts from scratch.
func (s *workflowService) Reject(ctx context.Context, entityID string, entryID string, actor string, reason string) (*dto.TransitionResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.findEntryForEntity(ctx, entityID, entryID)
	if err != nil {
		return nil, err
	}

	if entry.Status != domain.StatusPendingFirstApproval && entry.Status != domain.StatusPendingFinalApproval {
		err := s.illegalTransition(entry, domain.StatusDraft)
		s.recordFailedAttempt(ctx, entry, actor, "reject", err)
		return nil, err
	}
	if !s.approverPolicy.IsAuthorizedApprover(entityID, actor) {
		err := fmt.Errorf("%w: %w: %s", apperrors.ErrForbidden, ErrNotAuthorizedApprover, actor)
		s.recordFailedAttempt(ctx, entry, actor, "reject", err)
		return nil, err
	}

	now := time.Now().UTC()
	transition := portsrepo.EntryTransition{
		EntryID:         entryID,
		FromStatus:      entry.Status,
		ToStatus:        domain.StatusDraft,
		Actor:           actor,
		Now:             now,
		ClearApprovals:  true,
		RejectionReason: &reason,
		Audit: domain.AuditLogEntry{
			EntryID:    entryID,
			EntityID:   entityID,
			Action:     domain.ActionRejected,
			Actor:      actor,
			OccurredAt: now,
			FromStatus: entry.Status,
			ToStatus:   domain.StatusDraft,
			Detail:     reason,
		},
	}
	if err := s.entryRepo.TransitionEntryStatus(ctx, transition); err != nil {
		return nil, err
	}

	logger.Info("Entry rejected", slog.String("entry_id", entryID), slog.String("actor", actor), slog.String("reason", reason))
	return &dto.TransitionResponse{EntryID: entryID, Status: domain.StatusDraft, Stage: domain.StatusDraft.Stage()}, nil
}

// Post runs the posting engine: the terminal operation that atomically applies
// an approved entry's effect to account balances and seals the entry. The
// repository re-confirms status and balance inside the transaction, so a
// concurrent or repeated post can never double-apply balances.
func (s *workflowService) Post(ctx context.Context, entityID string, entryID string, actor string) (*dto.TransitionResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.findEntryForEntity(ctx, entityID, entryID)
	if err != nil {
		return nil, err
	}

	if entry.Status != domain.StatusApproved {
		err := fmt.Errorf("%w: %w: status is %s", apperrors.ErrStateConflict, ErrEntryNotApproved, entry.Status)
		s.recordFailedAttempt(ctx, entry, actor, "post", err)
		return nil, err
	}

	if err := s.checkPostingPeriodLock(ctx, entry, actor); err != nil {
		return nil, err
	}

	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for entry %s: %w", entryID, err)
	}
	// TotalDebits in the posted audit row sums these lines
	entry.Lines = lines
	if err := accounting.ValidateEntryBalance(lines); err != nil {
		err = fmt.Errorf("%w: %w: %v", apperrors.ErrStateConflict, ErrEntryUnbalanced, err)
		s.recordFailedAttempt(ctx, entry, actor, "post", err)
		return nil, err
	}

	accountIDs := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; !ok {
			seen[line.AccountID] = struct{}{}
			accountIDs = append(accountIDs, line.AccountID)
		}
	}
	accounts, err := s.accountSvc.GetAccountsByIDs(ctx, entityID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts for posting: %w", err)
	}

	now := time.Now().UTC()
	effects := make(map[string]domain.PostingEffect, len(accountIDs))
	audits := make([]domain.AuditLogEntry, 0, len(accountIDs)+1)
	for _, line := range lines {
		acc, found := accounts[line.AccountID]
		if !found {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, line.AccountID)
		}
		delta, err := accounting.BalanceDelta(line, acc.NormalBalance)
		if err != nil {
			return nil, fmt.Errorf("failed to compute posting effect: %w", err)
		}
		effect := domain.PostingEffect{BalanceDelta: delta, Activity: accounting.ActivityMagnitude(line)}
		effects[line.AccountID] = effects[line.AccountID].Add(effect)
	}
	for _, accountID := range accountIDs {
		effect := effects[accountID]
		audits = append(audits, domain.AuditLogEntry{
			EntryID:    entryID,
			EntityID:   entityID,
			Action:     domain.ActionBalanceChange,
			Actor:      actor,
			OccurredAt: now,
			FromStatus: domain.StatusApproved,
			ToStatus:   domain.StatusPosted,
			Detail:     fmt.Sprintf("account %s balance change %s", accountID, effect.BalanceDelta.StringFixed(2)),
		})
	}
	audits = append(audits, domain.AuditLogEntry{
		EntryID:    entryID,
		EntityID:   entityID,
		Action:     domain.ActionPosted,
		Actor:      actor,
		OccurredAt: now,
		FromStatus: domain.StatusApproved,
		ToStatus:   domain.StatusPosted,
		Detail:     fmt.Sprintf("entry %s posted, total %s", entry.EntryNumber, entry.TotalDebits().StringFixed(2)),
	})

	if err := s.entryRepo.PostEntry(ctx, entryID, effects, actor, now, audits); err != nil {
		if errors.Is(err, apperrors.ErrStateConflict) || errors.Is(err, apperrors.ErrConcurrency) {
			s.recordFailedAttempt(ctx, entry, actor, "post", err)
		}
		return nil, err
	}

	logger.Info("Entry posted", slog.String("entry_id", entryID), slog.String("entry_number", entry.EntryNumber), slog.String("actor", actor))
	return &dto.TransitionResponse{EntryID: entryID, Status: domain.StatusPosted, Stage: domain.StatusPosted.Stage()}, nil
}

// checkApprover enforces the authorization rules for an approval step:
// the actor must be in the authorized set, must not be the entry's creator,
// and must differ from the previous approver when one is recorded.
func (s *workflowService) checkApprover(entry *domain.JournalEntry, actor string, previousApprover string) error {
	if !s.approverPolicy.IsAuthorizedApprover(entry.EntityID, actor) {
		return fmt.Errorf("%w: %w: %s", apperrors.ErrForbidden, ErrNotAuthorizedApprover, actor)
	}
	if actor == entry.CreatedBy {
		return fmt.Errorf("%w: %w", apperrors.ErrForbidden, ErrSelfApproval)
	}
	if previousApprover != "" && actor == previousApprover {
		return fmt.Errorf("%w: %w", apperrors.ErrForbidden, ErrDuplicateApprover)
	}
	return nil
}

// checkPostingPeriodLock consults the period lock guard before posting.
func (s *workflowService) checkPostingPeriodLock(ctx context.Context, entry *domain.JournalEntry, actor string) error {
	locked, err := s.periodGuard.IsLocked(ctx, entry.EntityID, entry.EntryDate)
	if err != nil {
		return fmt.Errorf("failed to check period lock: %w", err)
	}
	if locked && !s.periodGuard.CanOverride(middleware.GetActorRoleFromCtx(ctx)) {
		err := fmt.Errorf("%w: %w: %s", apperrors.ErrStateConflict, ErrPeriodLocked, entry.EntryDate.Format("2006-01"))
		s.recordFailedAttempt(ctx, entry, actor, "post", err)
		return err
	}
	return nil
}

// illegalTransition builds the StateError for a call targeting a non-adjacent
// state, naming the current and attempted states.
func (s *workflowService) illegalTransition(entry *domain.JournalEntry, attempted domain.EntryStatus) error {
	return fmt.Errorf("%w: cannot transition entry %s from %s to %s",
		apperrors.ErrStateConflict, entry.EntryID, entry.Status, attempted)
}

// recordFailedAttempt appends an audit row for a rejected transition attempt.
// The write is best-effort and intentionally outside any transaction: the
// attempt itself never committed anything. Controlled by configuration.
func (s *workflowService) recordFailedAttempt(ctx context.Context, entry *domain.JournalEntry, actor string, attempted string, cause error) {
	if !s.auditFailedAttempts {
		return
	}
	record := domain.AuditLogEntry{
		EntryID:    entry.EntryID,
		EntityID:   entry.EntityID,
		Action:     domain.ActionAttemptFailed,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
		FromStatus: entry.Status,
		ToStatus:   entry.Status,
		Detail:     fmt.Sprintf("%s failed: %v", attempted, cause),
	}
	if err := s.auditRepo.Record(ctx, record); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to record audit row for failed attempt",
			slog.String("entry_id", entry.EntryID), slog.String("error", err.Error()))
	}
}

// findEntryForEntity fetches an entry header and verifies entity ownership.
func (s *workflowService) findEntryForEntity(ctx context.Context, entityID string, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.EntityID != entityID {
		return nil, apperrors.ErrNotFound
	}
	return entry, nil
}
