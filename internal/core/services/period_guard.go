package services

import (
	"context"
	"time"

	portssvc "github.com/finacct/ledger_posting_app/internal/core/ports/services"
)

// configPeriodGuard is the default PeriodLockGuard: a static set of locked
// fiscal periods ("2025-01" style) loaded from configuration. Deployments with
// a real close process can swap in a database-backed guard behind the same
// interface.
type configPeriodGuard struct {
	lockedPeriods map[string]struct{}
	overrideRoles map[string]struct{}
}

// NewConfigPeriodGuard builds a PeriodLockGuard from configured locked-period
// and override-role lists.
func NewConfigPeriodGuard(lockedPeriods []string, overrideRoles []string) portssvc.PeriodLockGuard {
	locked := make(map[string]struct{}, len(lockedPeriods))
	for _, p := range lockedPeriods {
		locked[p] = struct{}{}
	}
	roles := make(map[string]struct{}, len(overrideRoles))
	for _, r := range overrideRoles {
		roles[r] = struct{}{}
	}
	return &configPeriodGuard{lockedPeriods: locked, overrideRoles: roles}
}

var _ portssvc.PeriodLockGuard = (*configPeriodGuard)(nil)

func (g *configPeriodGuard) IsLocked(ctx context.Context, entityID string, date time.Time) (bool, error) {
	_, locked := g.lockedPeriods[date.Format("2006-01")]
	return locked, nil
}

func (g *configPeriodGuard) CanOverride(actorRole string) bool {
	if actorRole == "" {
		return false
	}
	_, ok := g.overrideRoles[actorRole]
	return ok
}
