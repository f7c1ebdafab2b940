package domain

import "github.com/shopspring/decimal"

// PostingEffect is the net effect a posting applies to one account: the signed
// running-balance change and the unsigned year-to-date activity contribution.
type PostingEffect struct {
	BalanceDelta decimal.Decimal
	Activity     decimal.Decimal
}

// Add merges another effect into this one and returns the result.
func (p PostingEffect) Add(other PostingEffect) PostingEffect {
	return PostingEffect{
		BalanceDelta: p.BalanceDelta.Add(other.BalanceDelta),
		Activity:     p.Activity.Add(other.Activity),
	}
}
