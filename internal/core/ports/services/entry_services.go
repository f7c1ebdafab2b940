package services

import (
	"context"

	"github.com/finacct/ledger_posting_app/internal/dto"
)

// EntryReaderSvc defines read operations for journal entry data.
type EntryReaderSvc interface {
	// GetEntry retrieves the full snapshot of an entry: header, lines,
	// computed totals and balanced flag.
	GetEntry(ctx context.Context, entityID string, entryID string) (*dto.EntrySnapshot, error)

	// ListEntries retrieves a filtered, cursor-paginated list of entries.
	ListEntries(ctx context.Context, entityID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// GetWorkflowStatus reports an entry's position in the approval workflow.
	GetWorkflowStatus(ctx context.Context, entityID string, entryID string) (*dto.WorkflowStatusResponse, error)
}

// EntryWriterSvc defines the entry builder operations.
type EntryWriterSvc interface {
	// CreateEntry validates and persists a new journal entry in draft state,
	// allocating its sequential entry number.
	CreateEntry(ctx context.Context, entityID string, req dto.CreateEntryRequest, actor string) (*dto.EntrySnapshot, error)

	// UpdateEntryLines replaces the lines of a draft entry after re-validation.
	UpdateEntryLines(ctx context.Context, entityID string, entryID string, req dto.UpdateEntryLinesRequest, actor string) (*dto.EntrySnapshot, error)
}

// EntrySvcFacade combines all entry-related service interfaces.
type EntrySvcFacade interface {
	EntryReaderSvc
	EntryWriterSvc
}
