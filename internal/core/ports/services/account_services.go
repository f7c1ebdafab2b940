package services

import (
	"context"

	"github.com/finacct/ledger_posting_app/internal/core/domain"
	"github.com/finacct/ledger_posting_app/internal/dto"
)

// AccountReaderSvc defines read operations for account data.
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its ID.
	GetAccountByID(ctx context.Context, entityID string, accountID string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts by their IDs, keyed by ID.
	GetAccountsByIDs(ctx context.Context, entityID string, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a filtered list of accounts for an entity.
	ListAccounts(ctx context.Context, entityID string, params dto.ListAccountsParams) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data.
type AccountWriterSvc interface {
	// CreateAccount persists a new account, deriving normal-balance polarity
	// from the account type.
	CreateAccount(ctx context.Context, entityID string, req dto.CreateAccountRequest, actor string) (*domain.Account, error)

	// UpdateAccount updates an account's metadata.
	UpdateAccount(ctx context.Context, entityID string, accountID string, req dto.UpdateAccountRequest, actor string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, entityID string, accountID string, actor string) error
}

// AccountSvcFacade combines all account-related service interfaces.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
