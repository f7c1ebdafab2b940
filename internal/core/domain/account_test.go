package domain_test

import (
	"testing"

	"github.com/finacct/ledger_posting_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalBalanceFor(t *testing.T) {
	assert.Equal(t, domain.DebitNormal, domain.NormalBalanceFor(domain.Asset))
	assert.Equal(t, domain.DebitNormal, domain.NormalBalanceFor(domain.Expense))
	assert.Equal(t, domain.CreditNormal, domain.NormalBalanceFor(domain.Liability))
	assert.Equal(t, domain.CreditNormal, domain.NormalBalanceFor(domain.Equity))
	assert.Equal(t, domain.CreditNormal, domain.NormalBalanceFor(domain.Revenue))
}

func TestValidAccountType(t *testing.T) {
	assert.True(t, domain.ValidAccountType(domain.Asset))
	assert.True(t, domain.ValidAccountType(domain.Expense))
	assert.False(t, domain.ValidAccountType(domain.AccountType("CONTRA")))
	assert.False(t, domain.ValidAccountType(domain.AccountType("asset")))
	assert.False(t, domain.ValidAccountType(domain.AccountType("")))
}
