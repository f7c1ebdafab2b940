package services

import (
	"context"
	"time"
)

// ApproverPolicy answers whether an actor may approve entries. The authorized
// set is supplied by configuration, never hardcoded in the core.
type ApproverPolicy interface {
	// IsAuthorizedApprover reports whether the actor is in the authorized
	// approver set for the entity.
	IsAuthorizedApprover(entityID string, actor string) bool
}

// PeriodLockGuard is the external collaborator contract for fiscal period
// locking. The core only honors the answers; it does not implement locking
// policy.
type PeriodLockGuard interface {
	// IsLocked reports whether the fiscal period containing date is closed to
	// new postings for the entity.
	IsLocked(ctx context.Context, entityID string, date time.Time) (bool, error)

	// CanOverride reports whether an actor role may create or post into a
	// locked period.
	CanOverride(actorRole string) bool
}
