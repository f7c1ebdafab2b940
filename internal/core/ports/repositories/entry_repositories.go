package repositories

import (
	"context"
	"time"

	"github.com/finacct/ledger_posting_app/internal/core/domain"
)

// EntryListFilters narrows ListEntriesByEntity results.
type EntryListFilters struct {
	Status   *domain.EntryStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// EntryReader defines read operations for journal entry data.
type EntryReader interface {
	// FindEntryByID retrieves an entry header by its ID.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves all lines of an entry ordered by line number.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error)

	// FindLinesByEntryIDs retrieves the lines of multiple entries in one query,
	// keyed by entry ID, each slice ordered by line number. Used by the list
	// read model so snapshots never report fabricated totals.
	FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalEntryLine, error)

	// ListEntriesByEntity retrieves a filtered, cursor-paginated list of entry
	// headers. It returns the entries and a token for the next page, if any.
	ListEntriesByEntity(ctx context.Context, entityID string, filters EntryListFilters, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// EntryWriter defines write operations for journal entry data. Every method
// runs as a single database transaction that also appends the corresponding
// audit record, so a state change can never commit without its audit row.
type EntryWriter interface {
	// SaveEntry persists a new draft entry with its lines, allocating the next
	// entry number for (entity, prefix, fiscal year) race-free inside the
	// transaction. The allocated number is returned.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine, prefix string, audit domain.AuditLogEntry) (string, error)

	// ReplaceEntryLines atomically replaces the lines of a draft entry.
	// Fails with ErrStateConflict if the entry is not in draft at update time.
	ReplaceEntryLines(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine, audit domain.AuditLogEntry) error

	// TransitionEntryStatus performs a conditional status update
	// ("set status = to only where status = from") together with the field
	// mutations the transition implies. Zero rows affected means the caller
	// lost a race or the entry moved on; the repository re-reads and returns
	// ErrStateConflict naming the current status, or ErrNotFound.
	TransitionEntryStatus(ctx context.Context, params EntryTransition) error

	// PostEntry runs the atomic posting transaction: re-confirms the entry is
	// approved and balanced, locks and updates the affected accounts, seals
	// the entry, and appends all audit rows. Lock-wait timeouts surface as
	// ErrConcurrency.
	PostEntry(ctx context.Context, entryID string, effects map[string]domain.PostingEffect, actor string, now time.Time, audits []domain.AuditLogEntry) error
}

// EntryTransition describes one conditional workflow transition.
type EntryTransition struct {
	EntryID    string
	FromStatus domain.EntryStatus
	ToStatus   domain.EntryStatus
	Actor      string
	Now        time.Time

	// SetFirstApprover / SetFinalApprover stamp the respective approver fields
	// with Actor/Now. ClearApprovals resets both approver fields and their
	// timestamps (rejection path). RejectionReason is stored when non-nil.
	SetFirstApprover bool
	SetFinalApprover bool
	ClearApprovals   bool
	RejectionReason  *string

	Audit domain.AuditLogEntry
}

// EntryRepositoryFacade combines all entry-related repository interfaces.
type EntryRepositoryFacade interface {
	EntryReader
	EntryWriter
}
