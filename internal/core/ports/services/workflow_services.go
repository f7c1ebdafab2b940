package services

import (
	"context"

	"github.com/finacct/ledger_posting_app/internal/dto"
)

// WorkflowSvcFacade governs the journal entry lifecycle:
// draft -> pending_first_approval -> pending_final_approval -> approved -> posted,
// with rejection returning an entry from either pending state to draft.
type WorkflowSvcFacade interface {
	// SubmitForApproval moves a balanced draft entry into the approval queue.
	SubmitForApproval(ctx context.Context, entityID string, entryID string, actor string) (*dto.TransitionResponse, error)

	// Approve records a first or final approval depending on the entry's
	// current state, enforcing the distinct-approver rules.
	Approve(ctx context.Context, entityID string, entryID string, actor string) (*dto.TransitionResponse, error)

	// Reject returns a pending entry to draft, clearing recorded approvals and
	// storing the reason.
	Reject(ctx context.Context, entityID string, entryID string, actor string, reason string) (*dto.TransitionResponse, error)

	// Post atomically applies an approved entry's effect to account balances
	// and seals the entry.
	Post(ctx context.Context, entityID string, entryID string, actor string) (*dto.TransitionResponse, error)
}
