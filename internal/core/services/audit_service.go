package services

import (
	"context"
	"fmt"

	"github.com/finacct/ledger_posting_app/internal/apperrors"
	portsrepo "github.com/finacct/ledger_posting_app/internal/core/ports/repositories"
	portssvc "github.com/finacct/ledger_posting_app/internal/core/ports/services"
	"github.com/finacct/ledger_posting_app/internal/dto"
)

// auditService exposes the append-only audit trail for an entry. There is no
// write path here: audit rows are recorded by the repositories inside the
// transactions that mutate entries.
type auditService struct {
	auditRepo portsrepo.AuditRepositoryFacade
	entryRepo portsrepo.EntryRepositoryFacade
}

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo portsrepo.AuditRepositoryFacade, entryRepo portsrepo.EntryRepositoryFacade) portssvc.AuditSvcFacade {
	return &auditService{auditRepo: auditRepo, entryRepo: entryRepo}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

// GetHistory returns the full audit trail for an entry in chronological order.
func (s *auditService) GetHistory(ctx context.Context, entityID string, entryID string) ([]dto.AuditLogResponse, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.EntityID != entityID {
		return nil, apperrors.ErrNotFound
	}

	records, err := s.auditRepo.ListByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit trail for entry %s: %w", entryID, err)
	}
	return dto.ToAuditLogResponses(records), nil
}
