package pgsql

import (
	"time"

	portsrepo "github.com/finacct/ledger_posting_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider builds the pgx-backed repositories sharing one pool.
// The entry repository drives the posting transaction and therefore holds the
// account and audit repositories as collaborators.
func NewRepositoryProvider(pool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(pool)
	auditRepo := newPgxAuditRepository(pool)
	entryRepo := newPgxEntryRepository(pool, accountRepo, auditRepo, lockTimeout)

	return portsrepo.RepositoryProvider{
		AccountRepo: accountRepo,
		EntryRepo:   entryRepo,
		AuditRepo:   auditRepo,
	}
}
