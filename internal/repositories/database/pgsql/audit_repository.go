package pgsql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/finacct/ledger_posting_app/internal/core/domain"
	portsrepo "github.com/finacct/ledger_posting_app/internal/core/ports/repositories"
	"github.com/finacct/ledger_posting_app/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const auditColumns = `audit_id, entry_id, entity_id, action, actor, occurred_at, from_status, to_status, detail`

const auditInsertQuery = `
	INSERT INTO journal_entry_audit_log (entry_id, entity_id, action, actor, occurred_at, from_status, to_status, detail)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`

// PgxAuditRepository is the append-only audit store. There is no update or
// delete path; audit_id is a bigserial so insertion order is the read order.
type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new repository for audit data.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAuditRepository implements portsrepo.AuditRepositoryFacade
var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

func toDomainAuditEntry(m models.AuditLogEntry) domain.AuditLogEntry {
	return domain.AuditLogEntry{
		AuditID:    m.AuditID,
		EntryID:    m.EntryID,
		EntityID:   m.EntityID,
		Action:     domain.AuditAction(m.Action),
		Actor:      m.Actor,
		OccurredAt: m.OccurredAt,
		FromStatus: domain.EntryStatus(m.FromStatus),
		ToStatus:   domain.EntryStatus(m.ToStatus),
		Detail:     m.Detail,
	}
}

// Record appends one audit row outside any caller transaction.
func (r *PgxAuditRepository) Record(ctx context.Context, record domain.AuditLogEntry) error {
	_, err := r.Pool.Exec(ctx, auditInsertQuery,
		record.EntryID,
		record.EntityID,
		string(record.Action),
		record.Actor,
		record.OccurredAt,
		string(record.FromStatus),
		string(record.ToStatus),
		nullable(record.Detail),
	)
	if err != nil {
		return fmt.Errorf("failed to record audit row for entry %s: %w", record.EntryID, err)
	}
	return nil
}

// RecordInTx appends one audit row within the caller's transaction.
func (r *PgxAuditRepository) RecordInTx(ctx context.Context, tx pgx.Tx, record domain.AuditLogEntry) error {
	_, err := tx.Exec(ctx, auditInsertQuery,
		record.EntryID,
		record.EntityID,
		string(record.Action),
		record.Actor,
		record.OccurredAt,
		string(record.FromStatus),
		string(record.ToStatus),
		nullable(record.Detail),
	)
	if err != nil {
		return fmt.Errorf("failed to record audit row for entry %s: %w", record.EntryID, err)
	}
	return nil
}

// ListByEntryID returns all audit rows for an entry in chronological order.
func (r *PgxAuditRepository) ListByEntryID(ctx context.Context, entryID string) ([]domain.AuditLogEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM journal_entry_audit_log WHERE entry_id = $1 ORDER BY audit_id;`

	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit rows for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	records := []domain.AuditLogEntry{}
	for rows.Next() {
		var m models.AuditLogEntry
		var detail sql.NullString
		err := rows.Scan(
			&m.AuditID,
			&m.EntryID,
			&m.EntityID,
			&m.Action,
			&m.Actor,
			&m.OccurredAt,
			&m.FromStatus,
			&m.ToStatus,
			&detail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit row for entry %s: %w", entryID, err)
		}
		m.Detail = detail.String
		records = append(records, toDomainAuditEntry(m))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows for entry %s: %w", entryID, err)
	}

	return records, nil
}
