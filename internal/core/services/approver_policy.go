package services

import (
	portssvc "github.com/finacct/ledger_posting_app/internal/core/ports/services"
)

// configApproverPolicy is the default ApproverPolicy: a static set of approver
// identifiers loaded from configuration, shared across entities.
type configApproverPolicy struct {
	approvers map[string]struct{}
}

// NewConfigApproverPolicy builds an ApproverPolicy from a configured list of
// approver identifiers.
func NewConfigApproverPolicy(approvers []string) portssvc.ApproverPolicy {
	set := make(map[string]struct{}, len(approvers))
	for _, a := range approvers {
		set[a] = struct{}{}
	}
	return &configApproverPolicy{approvers: set}
}

var _ portssvc.ApproverPolicy = (*configApproverPolicy)(nil)

func (p *configApproverPolicy) IsAuthorizedApprover(entityID string, actor string) bool {
	_, ok := p.approvers[actor]
	return ok
}
