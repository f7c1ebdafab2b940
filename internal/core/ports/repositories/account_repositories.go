package repositories

import (
	"context"
	"time"

	"github.com/finacct/ledger_posting_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// AccountListFilters narrows ListAccounts results.
type AccountListFilters struct {
	AccountType  *domain.AccountType
	ActiveOnly   bool
	PostableOnly bool
}

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its chart-of-accounts code within an entity.
	FindAccountByCode(ctx context.Context, entityID string, code string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts for a given entity.
	ListAccounts(ctx context.Context, entityID string, filters AccountListFilters, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's metadata. Balance columns are
	// not touched by this method.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive. Accounts are never deleted.
	DeactivateAccount(ctx context.Context, accountID string, actor string, now time.Time) error
}

// AccountPostingSupport defines the operations the posting engine uses inside
// its transaction. These are the only mutators of balance columns.
type AccountPostingSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and locks their rows within a transaction.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// ApplyPostingEffectsInTx applies balance and activity deltas to multiple
	// accounts within a given transaction.
	ApplyPostingEffectsInTx(ctx context.Context, tx pgx.Tx, effects map[string]domain.PostingEffect, actor string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountPostingSupport
}
