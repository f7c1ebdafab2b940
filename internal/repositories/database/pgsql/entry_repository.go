package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/finacct/ledger_posting_app/internal/apperrors"
	"github.com/finacct/ledger_posting_app/internal/core/domain"
	portsrepo "github.com/finacct/ledger_posting_app/internal/core/ports/repositories"
	"github.com/finacct/ledger_posting_app/internal/models"
	"github.com/finacct/ledger_posting_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `entry_id, entity_id, entry_number, entry_date, fiscal_year, fiscal_period, entry_type, memo, reference, source_document_id, status, first_approved_by, first_approved_at, final_approved_by, final_approved_at, posted_by, posted_at, rejection_reason, is_immutable, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, line_number, account_id, debit_amount, credit_amount, description, cost_center, project, created_at, created_by, last_updated_at, last_updated_by`

type PgxEntryRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
	auditRepo   portsrepo.AuditRepositoryFacade
	lockTimeout time.Duration
}

// newPgxEntryRepository creates a new repository for journal entry data.
func newPgxEntryRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade, auditRepo portsrepo.AuditRepositoryFacade, lockTimeout time.Duration) portsrepo.EntryRepositoryFacade {
	return &PgxEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
		auditRepo:      auditRepo,
		lockTimeout:    lockTimeout,
	}
}

// Ensure PgxEntryRepository implements portsrepo.EntryRepositoryFacade
var _ portsrepo.EntryRepositoryFacade = (*PgxEntryRepository)(nil)

func toDomainEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:          m.EntryID,
		EntityID:         m.EntityID,
		EntryNumber:      m.EntryNumber,
		EntryDate:        m.EntryDate,
		FiscalYear:       m.FiscalYear,
		FiscalPeriod:     m.FiscalPeriod,
		EntryType:        m.EntryType,
		Memo:             m.Memo,
		Reference:        m.Reference,
		SourceDocumentID: m.SourceDocumentID,
		Status:           domain.EntryStatus(m.Status),
		FirstApprovedBy:  m.FirstApprovedBy,
		FirstApprovedAt:  m.FirstApprovedAt,
		FinalApprovedBy:  m.FinalApprovedBy,
		FinalApprovedAt:  m.FinalApprovedAt,
		PostedBy:         m.PostedBy,
		PostedAt:         m.PostedAt,
		RejectionReason:  m.RejectionReason,
		IsImmutable:      m.IsImmutable,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func toDomainLine(m models.JournalEntryLine) domain.JournalEntryLine {
	return domain.JournalEntryLine{
		LineID:       m.LineID,
		EntryID:      m.EntryID,
		LineNumber:   m.LineNumber,
		AccountID:    m.AccountID,
		DebitAmount:  m.DebitAmount,
		CreditAmount: m.CreditAmount,
		Description:  m.Description,
		CostCenter:   m.CostCenter,
		Project:      m.Project,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// scanEntry scans one entry header row in entryColumns order.
func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	var sourceDocID, firstBy, finalBy, postedBy, rejection sql.NullString

	err := row.Scan(
		&m.EntryID,
		&m.EntityID,
		&m.EntryNumber,
		&m.EntryDate,
		&m.FiscalYear,
		&m.FiscalPeriod,
		&m.EntryType,
		&m.Memo,
		&m.Reference,
		&sourceDocID,
		&m.Status,
		&firstBy,
		&m.FirstApprovedAt,
		&finalBy,
		&m.FinalApprovedAt,
		&postedBy,
		&m.PostedAt,
		&rejection,
		&m.IsImmutable,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.JournalEntry{}, err
	}

	m.SourceDocumentID = sourceDocID.String
	m.FirstApprovedBy = firstBy.String
	m.FinalApprovedBy = finalBy.String
	m.PostedBy = postedBy.String
	m.RejectionReason = rejection.String
	return m, nil
}

// scanLine scans one line row in lineColumns order.
func scanLine(row pgx.Row) (models.JournalEntryLine, error) {
	var m models.JournalEntryLine
	var costCenter, project sql.NullString

	err := row.Scan(
		&m.LineID,
		&m.EntryID,
		&m.LineNumber,
		&m.AccountID,
		&m.DebitAmount,
		&m.CreditAmount,
		&m.Description,
		&costCenter,
		&project,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.JournalEntryLine{}, err
	}

	m.CostCenter = costCenter.String
	m.Project = project.String
	return m, nil
}

// nullable converts "" to a NULL parameter.
func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// allocateEntryNumber claims the next sequence value for (entity, prefix,
// fiscal year) inside the caller's transaction. The upsert holds a row lock
// until commit, so two concurrent saves can never observe the same value.
func allocateEntryNumber(ctx context.Context, tx pgx.Tx, entityID string, prefix string, fiscalYear int) (string, error) {
	query := `
		INSERT INTO journal_entry_sequences (entity_id, prefix, fiscal_year, next_value)
		VALUES ($1, $2, $3, 2)
		ON CONFLICT (entity_id, prefix, fiscal_year)
		DO UPDATE SET next_value = journal_entry_sequences.next_value + 1
		RETURNING next_value - 1;
	`
	var seq int64
	if err := tx.QueryRow(ctx, query, entityID, prefix, fiscalYear).Scan(&seq); err != nil {
		return "", fmt.Errorf("failed to allocate entry number for entity %s year %d: %w", entityID, fiscalYear, err)
	}
	return domain.FormatEntryNumber(prefix, fiscalYear, seq), nil
}

// insertLines batch-inserts entry lines inside the transaction.
func (r *PgxEntryRepository) insertLines(ctx context.Context, tx pgx.Tx, lines []domain.JournalEntryLine) error {
	query := `
		INSERT INTO journal_entry_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(query,
			line.LineID,
			line.EntryID,
			line.LineNumber,
			line.AccountID,
			line.DebitAmount,
			line.CreditAmount,
			line.Description,
			nullable(line.CostCenter),
			nullable(line.Project),
			line.CreatedAt,
			line.CreatedBy,
			line.LastUpdatedAt,
			line.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert entry lines: %w", err)
	}
	return nil
}

// SaveEntry persists a new draft entry with its lines, allocating the entry
// number and appending the creation audit row in one transaction.
func (r *PgxEntryRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine, prefix string, audit domain.AuditLogEntry) (string, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer r.Rollback(ctx, tx) // Ignored once the transaction is committed

	entryNumber, err := allocateEntryNumber(ctx, tx, entry.EntityID, prefix, entry.FiscalYear)
	if err != nil {
		return "", err
	}
	entry.EntryNumber = entryNumber

	query := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);
	`
	_, err = tx.Exec(ctx, query,
		entry.EntryID,
		entry.EntityID,
		entry.EntryNumber,
		entry.EntryDate,
		entry.FiscalYear,
		entry.FiscalPeriod,
		entry.EntryType,
		entry.Memo,
		entry.Reference,
		nullable(entry.SourceDocumentID),
		string(entry.Status),
		nullable(entry.FirstApprovedBy),
		entry.FirstApprovedAt,
		nullable(entry.FinalApprovedBy),
		entry.FinalApprovedAt,
		nullable(entry.PostedBy),
		entry.PostedAt,
		nullable(entry.RejectionReason),
		entry.IsImmutable,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		if isPgError(err, pgCodeUniqueViolation) {
			return "", fmt.Errorf("%w: entry %s already exists", apperrors.ErrDuplicate, entry.EntryID)
		}
		return "", fmt.Errorf("failed to insert entry %s: %w", entry.EntryID, err)
	}

	if err := r.insertLines(ctx, tx, lines); err != nil {
		return "", err
	}

	if err := r.auditRepo.RecordInTx(ctx, tx, audit); err != nil {
		return "", err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return "", err
	}
	return entryNumber, nil
}

// ReplaceEntryLines atomically swaps the lines of a draft entry. The header
// update is conditional on draft status so a concurrent submit wins cleanly.
func (r *PgxEntryRepository) ReplaceEntryLines(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine, audit domain.AuditLogEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	headerQuery := `
		UPDATE journal_entries
		SET memo = $2, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = $1 AND status = $5;
	`
	cmdTag, err := tx.Exec(ctx, headerQuery, entry.EntryID, entry.Memo, entry.LastUpdatedAt, entry.LastUpdatedBy, string(domain.StatusDraft))
	if err != nil {
		return fmt.Errorf("failed to update entry header %s: %w", entry.EntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.classifyMissedUpdate(ctx, entry.EntryID, domain.StatusDraft)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = $1;`, entry.EntryID); err != nil {
		return fmt.Errorf("failed to delete lines for entry %s: %w", entry.EntryID, err)
	}
	if err := r.insertLines(ctx, tx, lines); err != nil {
		return err
	}

	if err := r.auditRepo.RecordInTx(ctx, tx, audit); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// TransitionEntryStatus performs one conditional workflow transition together
// with its audit row. Zero rows affected means the entry is gone or no longer
// in the expected state; the error names the state actually found.
func (r *PgxEntryRepository) TransitionEntryStatus(ctx context.Context, params portsrepo.EntryTransition) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	setClauses := `status = $2, last_updated_at = $3, last_updated_by = $4`
	args := []interface{}{params.EntryID, string(params.ToStatus), params.Now, params.Actor}

	if params.SetFirstApprover {
		args = append(args, params.Actor, params.Now)
		setClauses += fmt.Sprintf(", first_approved_by = $%d, first_approved_at = $%d", len(args)-1, len(args))
	}
	if params.SetFinalApprover {
		args = append(args, params.Actor, params.Now)
		setClauses += fmt.Sprintf(", final_approved_by = $%d, final_approved_at = $%d", len(args)-1, len(args))
	}
	if params.ClearApprovals {
		setClauses += ", first_approved_by = NULL, first_approved_at = NULL, final_approved_by = NULL, final_approved_at = NULL"
	}
	if params.RejectionReason != nil {
		args = append(args, *params.RejectionReason)
		setClauses += fmt.Sprintf(", rejection_reason = $%d", len(args))
	} else if params.FromStatus == domain.StatusDraft {
		// A fresh submission supersedes any earlier rejection.
		setClauses += ", rejection_reason = NULL"
	}

	args = append(args, string(params.FromStatus))
	query := "UPDATE journal_entries SET " + setClauses + fmt.Sprintf(" WHERE entry_id = $1 AND status = $%d;", len(args))

	cmdTag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to transition entry %s to %s: %w", params.EntryID, params.ToStatus, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.classifyMissedUpdate(ctx, params.EntryID, params.FromStatus)
	}

	if err := r.auditRepo.RecordInTx(ctx, tx, params.Audit); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// PostEntry runs the atomic posting transaction: seal the approved entry,
// lock the affected accounts, apply balance effects and append the audit rows.
// Nothing commits unless all of it does.
func (r *PgxEntryRepository) PostEntry(ctx context.Context, entryID string, effects map[string]domain.PostingEffect, actor string, now time.Time, audits []domain.AuditLogEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Bound lock waits so a stuck competitor surfaces as a retryable error
	// instead of an indefinite hang.
	if r.lockTimeout > 0 {
		lockTimeoutStmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms';", r.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, lockTimeoutStmt); err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	sealQuery := `
		UPDATE journal_entries
		SET status = $2, posted_by = $3, posted_at = $4, is_immutable = TRUE, last_updated_at = $4, last_updated_by = $3
		WHERE entry_id = $1 AND status = $5;
	`
	cmdTag, err := tx.Exec(ctx, sealQuery, entryID, string(domain.StatusPosted), actor, now, string(domain.StatusApproved))
	if err != nil {
		if isPgError(err, pgCodeLockNotAvailable) {
			return fmt.Errorf("%w: timed out locking entry %s", apperrors.ErrConcurrency, entryID)
		}
		return fmt.Errorf("failed to seal entry %s: %w", entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.classifyMissedUpdate(ctx, entryID, domain.StatusApproved)
	}

	// Lock accounts in sorted ID order to keep concurrent postings deadlock-free.
	accountIDs := make([]string, 0, len(effects))
	for accountID := range effects {
		accountIDs = append(accountIDs, accountID)
	}
	sort.Strings(accountIDs)

	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return err
	}
	if err := r.accountRepo.ApplyPostingEffectsInTx(ctx, tx, effects, actor, now); err != nil {
		return err
	}

	for _, audit := range audits {
		if err := r.auditRepo.RecordInTx(ctx, tx, audit); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// classifyMissedUpdate re-reads an entry after a conditional update affected
// zero rows, distinguishing "gone" from "state changed underneath us".
func (r *PgxEntryRepository) classifyMissedUpdate(ctx context.Context, entryID string, expected domain.EntryStatus) error {
	current, err := r.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to re-read entry %s after missed update: %w", entryID, err)
	}
	return fmt.Errorf("%w: entry %s is %s, expected %s", apperrors.ErrStateConflict, entryID, current.Status, expected)
}

// FindEntryByID retrieves an entry header by its ID.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`

	modelEntry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by ID %s: %w", entryID, err)
	}

	domainEntry := toDomainEntry(modelEntry)
	return &domainEntry, nil
}

// FindLinesByEntryID retrieves all lines of an entry ordered by line number.
func (r *PgxEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_entry_lines WHERE entry_id = $1 ORDER BY line_number;`

	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	lines := []domain.JournalEntryLine{}
	for rows.Next() {
		modelLine, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row for entry %s: %w", entryID, err)
		}
		lines = append(lines, toDomainLine(modelLine))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for entry %s: %w", entryID, err)
	}

	return lines, nil
}

// FindLinesByEntryIDs retrieves the lines of multiple entries in one query,
// keyed by entry ID.
func (r *PgxEntryRepository) FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalEntryLine, error) {
	result := make(map[string][]domain.JournalEntryLine, len(entryIDs))
	if len(entryIDs) == 0 {
		return result, nil
	}

	query := `SELECT ` + lineColumns + ` FROM journal_entry_lines WHERE entry_id = ANY($1) ORDER BY entry_id, line_number;`

	rows, err := r.Pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for %d entries: %w", len(entryIDs), err)
	}
	defer rows.Close()

	for rows.Next() {
		modelLine, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		line := toDomainLine(modelLine)
		result[line.EntryID] = append(result[line.EntryID], line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows: %w", err)
	}

	return result, nil
}

// ListEntriesByEntity retrieves a filtered, cursor-paginated list of entry
// headers for an entity, newest first.
func (r *PgxEntryRepository) ListEntriesByEntity(ctx context.Context, entityID string, filters portsrepo.EntryListFilters, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entity_id = $1`
	args := []interface{}{entityID}

	if filters.Status != nil {
		args = append(args, string(*filters.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.DateFrom != nil {
		args = append(args, *filters.DateFrom)
		query += fmt.Sprintf(" AND entry_date >= $%d", len(args))
	}
	if filters.DateTo != nil {
		args = append(args, *filters.DateTo)
		query += fmt.Sprintf(" AND entry_date <= $%d", len(args))
	}

	if nextToken != nil && *nextToken != "" {
		lastEntryDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, decodeErr)
		}
		// Tuple comparison is concise and efficient in Postgres
		args = append(args, lastEntryDate, lastCreatedAt)
		query += fmt.Sprintf(" AND (entry_date, created_at) < ($%d, $%d)", len(args)-1, len(args))
	}

	// Ordering must be stable for the cursor to hold; created_at breaks
	// entry_date ties.
	args = append(args, fetchLimit)
	query += " ORDER BY entry_date DESC, created_at DESC LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entries for entity %s: %w", entityID, err)
	}
	defer rows.Close()

	modelEntries := make([]models.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan entry row for entity %s: %w", entityID, scanErr)
		}
		modelEntries = append(modelEntries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating entry rows for entity %s: %w", entityID, err)
	}

	// Determine the next token
	var nextTokenVal *string
	results := modelEntries
	if len(modelEntries) > limit {
		lastEntry := modelEntries[limit-1] // Last item actually included in this page
		newToken := pagination.EncodeToken(lastEntry.EntryDate, lastEntry.CreatedAt)
		nextTokenVal = &newToken
		results = modelEntries[:limit]
	}

	domainEntries := make([]domain.JournalEntry, len(results))
	for i, m := range results {
		domainEntries[i] = toDomainEntry(m)
	}

	return domainEntries, nextTokenVal, nil
}
