package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finacct/ledger_posting_app/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigPeriodGuard(t *testing.T) {
	guard := services.NewConfigPeriodGuard([]string{"2026-07", "2026-08"}, []string{"CONTROLLER"})
	ctx := context.Background()

	locked, err := guard.IsLocked(ctx, "entity-1", time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, locked)

	locked, err = guard.IsLocked(ctx, "entity-1", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, locked)

	assert.True(t, guard.CanOverride("CONTROLLER"))
	assert.False(t, guard.CanOverride("CLERK"))
	// An absent role header must never grant an override.
	assert.False(t, guard.CanOverride(""))
}

func TestConfigApproverPolicy(t *testing.T) {
	policy := services.NewConfigApproverPolicy([]string{"alice", "bob"})

	assert.True(t, policy.IsAuthorizedApprover("entity-1", "alice"))
	assert.True(t, policy.IsAuthorizedApprover("entity-2", "bob"))
	assert.False(t, policy.IsAuthorizedApprover("entity-1", "mallory"))
	assert.False(t, policy.IsAuthorizedApprover("entity-1", ""))
}
