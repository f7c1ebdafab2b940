package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finacct/ledger_posting_app/internal/apperrors"
	"github.com/finacct/ledger_posting_app/internal/core/domain"
	portsrepo "github.com/finacct/ledger_posting_app/internal/core/ports/repositories"
	portssvc "github.com/finacct/ledger_posting_app/internal/core/ports/services"
	"github.com/finacct/ledger_posting_app/internal/dto"
	"github.com/finacct/ledger_posting_app/internal/middleware"
)

var (
	ErrAccountCodeTaken = errors.New("account code already exists for entity")
	ErrParentNotFound   = errors.New("parent account not found")
	ErrParentCycle      = errors.New("parent reference would create a cycle")
)

// accountService implements the account registry: account identity, type,
// normal-balance polarity and running balances.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

// Ensure accountService implements the portssvc.AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount persists a new account after validating code uniqueness and
// the parent reference. Normal-balance polarity is derived from the type.
func (s *accountService) CreateAccount(ctx context.Context, entityID string, req dto.CreateAccountRequest, actor string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !domain.ValidAccountType(req.AccountType) {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}

	// Code must be unique within the owning entity
	existing, err := s.accountRepo.FindAccountByCode(ctx, entityID, req.Code)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check account code uniqueness", slog.String("error", err.Error()), slog.String("entity_id", entityID))
		return nil, fmt.Errorf("failed to check account code: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: code %s: %s", apperrors.ErrValidation, req.Code, ErrAccountCodeTaken)
	}

	parentID := ""
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parentID = *req.ParentAccountID
		parent, err := s.accountRepo.FindAccountByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, ErrParentNotFound, parentID)
			}
			return nil, fmt.Errorf("failed to fetch parent account: %w", err)
		}
		if parent.EntityID != entityID {
			return nil, fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, ErrParentNotFound, parentID)
		}
	}

	allowPosting := true
	if req.AllowPosting != nil {
		allowPosting = *req.AllowPosting
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		EntityID:        entityID,
		Code:            req.Code,
		Name:            req.Name,
		AccountType:     req.AccountType,
		NormalBalance:   domain.NormalBalanceFor(req.AccountType),
		ParentAccountID: parentID,
		AllowPosting:    allowPosting,
		Description:     req.Description,
		IsActive:        true,
		CurrentBalance:  decimal.Zero,
		YTDActivity:     decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost a race on the unique code constraint
			return nil, fmt.Errorf("%w: code %s: %s", apperrors.ErrValidation, req.Code, ErrAccountCodeTaken)
		}
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("entity_id", entityID))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("code", account.Code), slog.String("entity_id", entityID))
	return &account, nil
}

// GetAccountByID retrieves an account, scoped to the entity.
func (s *accountService) GetAccountByID(ctx context.Context, entityID string, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.EntityID != entityID {
		// Obscure existence across entities
		return nil, apperrors.ErrNotFound
	}
	return account, nil
}

// GetAccountsByIDs retrieves multiple accounts, verifying entity ownership of each.
func (s *accountService) GetAccountsByIDs(ctx context.Context, entityID string, accountIDs []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, err
	}
	for id, acc := range accounts {
		if acc.EntityID != entityID {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}
	return accounts, nil
}

// ListAccounts retrieves accounts for an entity with optional filters.
func (s *accountService) ListAccounts(ctx context.Context, entityID string, params dto.ListAccountsParams) ([]domain.Account, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	filters := portsrepo.AccountListFilters{
		AccountType:  params.AccountType,
		ActiveOnly:   params.ActiveOnly,
		PostableOnly: params.PostableOnly,
	}
	return s.accountRepo.ListAccounts(ctx, entityID, filters, limit, params.Offset)
}

// UpdateAccount applies metadata edits. Balance columns are owned by the
// posting engine and cannot be changed here.
func (s *accountService) UpdateAccount(ctx context.Context, entityID string, accountID string, req dto.UpdateAccountRequest, actor string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.GetAccountByID(ctx, entityID, accountID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		account.Name = *req.Name
		updated = true
	}
	if req.Description != nil {
		account.Description = *req.Description
		updated = true
	}
	if req.AllowPosting != nil {
		account.AllowPosting = *req.AllowPosting
		updated = true
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
		updated = true
	}
	if req.ParentAccountID != nil {
		if err := s.validateParentChange(ctx, entityID, account, *req.ParentAccountID); err != nil {
			return nil, err
		}
		account.ParentAccountID = *req.ParentAccountID
		updated = true
	}

	if !updated {
		return account, nil
	}

	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = actor

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	logger.Info("Account updated", slog.String("account_id", accountID))
	return account, nil
}

// DeactivateAccount marks an account inactive. Accounts are never deleted.
func (s *accountService) DeactivateAccount(ctx context.Context, entityID string, accountID string, actor string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.GetAccountByID(ctx, entityID, accountID); err != nil {
		return err
	}

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, actor, time.Now().UTC()); err != nil {
		logger.Error("Failed to deactivate account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return err
	}

	logger.Info("Account deactivated", slog.String("account_id", accountID))
	return nil
}

// validateParentChange rejects parent references that point outside the
// entity, at the account itself, or at any of the account's descendants
// (which would close a cycle in the account tree).
func (s *accountService) validateParentChange(ctx context.Context, entityID string, account *domain.Account, newParentID string) error {
	if newParentID == "" {
		return nil // detaching from the tree is always fine
	}
	if newParentID == account.AccountID {
		return fmt.Errorf("%w: %w: account %s cannot be its own parent", apperrors.ErrValidation, ErrParentCycle, account.AccountID)
	}

	// Walk up from the proposed parent; hitting the account being edited
	// means the proposed parent is one of its descendants.
	currentID := newParentID
	for currentID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, currentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, ErrParentNotFound, currentID)
			}
			return fmt.Errorf("failed to walk account ancestry: %w", err)
		}
		if parent.EntityID != entityID {
			return fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, ErrParentNotFound, currentID)
		}
		if parent.AccountID == account.AccountID || parent.ParentAccountID == account.AccountID {
			return fmt.Errorf("%w: %w: account %s is an ancestor of %s", apperrors.ErrValidation, ErrParentCycle, account.AccountID, newParentID)
		}
		currentID = parent.ParentAccountID
	}
	return nil
}
