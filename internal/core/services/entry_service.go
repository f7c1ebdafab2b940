package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finacct/ledger_posting_app/internal/apperrors"
	"github.com/finacct/ledger_posting_app/internal/core/domain"
	portsrepo "github.com/finacct/ledger_posting_app/internal/core/ports/repositories"
	portssvc "github.com/finacct/ledger_posting_app/internal/core/ports/services"
	"github.com/finacct/ledger_posting_app/internal/dto"
	"github.com/finacct/ledger_posting_app/internal/middleware"
	"github.com/finacct/ledger_posting_app/internal/utils/accounting"
)

var (
	ErrEntryUnbalanced    = errors.New("entry debits do not equal credits")
	ErrEntryMinLines      = errors.New("entry must have at least two lines")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrAccountNonPostable = errors.New("account does not allow direct posting")
	ErrPeriodLocked       = errors.New("fiscal period is locked")
	ErrEntryNotDraft      = errors.New("entry is not in draft state")
)

// entryService implements the entry builder/validator and the entry read side.
type entryService struct {
	entryRepo    portsrepo.EntryRepositoryFacade
	accountSvc   portssvc.AccountSvcFacade
	periodGuard  portssvc.PeriodLockGuard
	numberPrefix string
}

// NewEntryService creates a new EntryService.
func NewEntryService(entryRepo portsrepo.EntryRepositoryFacade, accountSvc portssvc.AccountSvcFacade, periodGuard portssvc.PeriodLockGuard, numberPrefix string) portssvc.EntrySvcFacade {
	if numberPrefix == "" {
		numberPrefix = "JE"
	}
	return &entryService{
		entryRepo:    entryRepo,
		accountSvc:   accountSvc,
		periodGuard:  periodGuard,
		numberPrefix: numberPrefix,
	}
}

// Ensure entryService implements the portssvc.EntrySvcFacade interface
var _ portssvc.EntrySvcFacade = (*entryService)(nil)

// buildLines converts line requests into domain lines and validates their
// structural rules. Line numbers follow request order.
func (s *entryService) buildLines(entryID string, reqs []dto.CreateEntryLineRequest, actor string, now time.Time) ([]domain.JournalEntryLine, error) {
	lines := make([]domain.JournalEntryLine, len(reqs))
	for i, lineReq := range reqs {
		lines[i] = domain.JournalEntryLine{
			LineID:       uuid.NewString(),
			EntryID:      entryID,
			LineNumber:   i + 1,
			AccountID:    lineReq.AccountID,
			DebitAmount:  lineReq.DebitAmount,
			CreditAmount: lineReq.CreditAmount,
			Description:  lineReq.Description,
			CostCenter:   lineReq.CostCenter,
			Project:      lineReq.Project,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actor,
				LastUpdatedAt: now,
				LastUpdatedBy: actor,
			},
		}
		if err := accounting.ValidateLineAmounts(lines[i]); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}
	return lines, nil
}

// validateLines enforces the structural invariants of a candidate line set:
// minimum two lines, balanced to the cent, and every referenced account must
// exist in the entity, be active, and allow direct posting.
func (s *entryService) validateLines(ctx context.Context, entityID string, lines []domain.JournalEntryLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrEntryMinLines)
	}

	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return fmt.Errorf("%w: %w: %v", apperrors.ErrValidation, ErrEntryUnbalanced, err)
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
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, id := range accountIDs {
		acc, found := accounts[id]
		if !found {
			return fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, ErrAccountNotFound, id)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, ErrAccountInactive, id)
		}
		if !acc.AllowPosting {
			return fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, ErrAccountNonPostable, id)
		}
	}
	return nil
}

// checkPeriodLock consults the period lock guard for the entry date. Override
// capability is resolved from the actor's role; the core only honors the answer.
func (s *entryService) checkPeriodLock(ctx context.Context, entityID string, date time.Time) error {
	locked, err := s.periodGuard.IsLocked(ctx, entityID, date)
	if err != nil {
		return fmt.Errorf("failed to check period lock: %w", err)
	}
	if !locked {
		return nil
	}
	if s.periodGuard.CanOverride(middleware.GetActorRoleFromCtx(ctx)) {
		return nil
	}
	return fmt.Errorf("%w: %w: %s", apperrors.ErrStateConflict, ErrPeriodLocked, date.Format("2006-01"))
}

// CreateEntry validates a candidate entry, allocates its sequential entry
// number and persists it in draft state.
func (s *entryService) CreateEntry(ctx context.Context, entityID string, req dto.CreateEntryRequest, actor string) (*dto.EntrySnapshot, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	entryID := uuid.NewString()

	lines, err := s.buildLines(entryID, req.Lines, actor, now)
	if err != nil {
		return nil, err
	}
	if err := s.validateLines(ctx, entityID, lines); err != nil {
		return nil, err
	}
	if err := s.checkPeriodLock(ctx, entityID, req.EntryDate); err != nil {
		return nil, err
	}

	entry := domain.JournalEntry{
		EntryID:          entryID,
		EntityID:         entityID,
		EntryDate:        req.EntryDate,
		FiscalYear:       req.FiscalYear,
		FiscalPeriod:     req.FiscalPeriod,
		EntryType:        req.EntryType,
		Memo:             req.Memo,
		Reference:        req.Reference,
		SourceDocumentID: req.SourceDocumentID,
		Status:           domain.StatusDraft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}

	audit := domain.AuditLogEntry{
		EntryID:    entryID,
		EntityID:   entityID,
		Action:     domain.ActionCreated,
		Actor:      actor,
		OccurredAt: now,
		FromStatus: domain.StatusDraft,
		ToStatus:   domain.StatusDraft,
		Detail:     fmt.Sprintf("entry created with %d lines, total %s", len(lines), entry.TotalDebits().StringFixed(2)),
	}

	entryNumber, err := s.entryRepo.SaveEntry(ctx, entry, lines, s.numberPrefix, audit)
	if err != nil {
		logger.Error("Failed to save entry", slog.String("error", err.Error()), slog.String("entity_id", entityID))
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}
	entry.EntryNumber = entryNumber
	entry.Lines = lines

	logger.Info("Entry created", slog.String("entry_id", entryID), slog.String("entry_number", entryNumber), slog.String("entity_id", entityID))
	snapshot := dto.ToEntrySnapshot(&entry)
	return &snapshot, nil
}

// UpdateEntryLines replaces a draft entry's lines wholesale after re-running
// the full line validation. Only draft entries can be edited.
func (s *entryService) UpdateEntryLines(ctx context.Context, entityID string, entryID string, req dto.UpdateEntryLinesRequest, actor string) (*dto.EntrySnapshot, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.findEntryForEntity(ctx, entityID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.IsImmutable || entry.Status != domain.StatusDraft {
		return nil, fmt.Errorf("%w: %w: status is %s", apperrors.ErrStateConflict, ErrEntryNotDraft, entry.Status)
	}

	now := time.Now().UTC()
	lines, err := s.buildLines(entryID, req.Lines, actor, now)
	if err != nil {
		return nil, err
	}
	if err := s.validateLines(ctx, entityID, lines); err != nil {
		return nil, err
	}

	if req.Memo != nil {
		entry.Memo = *req.Memo
	}
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actor

	audit := domain.AuditLogEntry{
		EntryID:    entryID,
		EntityID:   entityID,
		Action:     domain.ActionUpdated,
		Actor:      actor,
		OccurredAt: now,
		FromStatus: domain.StatusDraft,
		ToStatus:   domain.StatusDraft,
		Detail:     fmt.Sprintf("lines replaced, %d lines, total %s", len(lines), entry.TotalDebits().StringFixed(2)),
	}

	if err := s.entryRepo.ReplaceEntryLines(ctx, *entry, lines, audit); err != nil {
		logger.Error("Failed to replace entry lines", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, err
	}

	entry.Lines = lines
	logger.Info("Entry lines updated", slog.String("entry_id", entryID), slog.Int("line_count", len(lines)))
	snapshot := dto.ToEntrySnapshot(entry)
	return &snapshot, nil
}

// GetEntry retrieves the full snapshot of an entry.
func (s *entryService) GetEntry(ctx context.Context, entityID string, entryID string) (*dto.EntrySnapshot, error) {
	entry, err := s.findEntryForEntity(ctx, entityID, entryID)
	if err != nil {
		return nil, err
	}

	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines for entry %s: %w", entryID, err)
	}
	entry.Lines = lines

	snapshot := dto.ToEntrySnapshot(entry)
	return &snapshot, nil
}

// ListEntries retrieves a filtered, cursor-paginated page of entries.
func (s *entryService) ListEntries(ctx context.Context, entityID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	filters := portsrepo.EntryListFilters{
		Status:   params.Status,
		DateFrom: params.DateFrom,
		DateTo:   params.DateTo,
	}

	entries, nextToken, err := s.entryRepo.ListEntriesByEntity(ctx, entityID, filters, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list entries", slog.String("error", err.Error()), slog.String("entity_id", entityID))
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}

	// Snapshots report computed totals and the balanced flag, so the page's
	// lines are batch-loaded rather than left empty.
	entryIDs := make([]string, len(entries))
	for i := range entries {
		entryIDs[i] = entries[i].EntryID
	}
	linesByEntry, err := s.entryRepo.FindLinesByEntryIDs(ctx, entryIDs)
	if err != nil {
		logger.Error("Failed to load lines for entry page", slog.String("error", err.Error()), slog.String("entity_id", entityID))
		return nil, fmt.Errorf("failed to retrieve entry lines: %w", err)
	}

	snapshots := make([]dto.EntrySnapshot, len(entries))
	for i := range entries {
		entries[i].Lines = linesByEntry[entries[i].EntryID]
		snapshots[i] = dto.ToEntrySnapshot(&entries[i])
	}

	logger.Debug("Entries listed", slog.Int("count", len(entries)), slog.String("entity_id", entityID))
	return &dto.ListEntriesResponse{Entries: snapshots, NextToken: nextToken}, nil
}

// GetWorkflowStatus reports the entry's workflow position: status, stage,
// approvers, timestamps and any rejection reason.
func (s *entryService) GetWorkflowStatus(ctx context.Context, entityID string, entryID string) (*dto.WorkflowStatusResponse, error) {
	entry, err := s.findEntryForEntity(ctx, entityID, entryID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToWorkflowStatusResponse(entry)
	return &resp, nil
}

// findEntryForEntity fetches an entry header and verifies entity ownership.
func (s *entryService) findEntryForEntity(ctx context.Context, entityID string, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.EntityID != entityID {
		// Obscure existence across entities
		return nil, apperrors.ErrNotFound
	}
	return entry, nil
}
