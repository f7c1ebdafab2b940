package services

import (
	portsrepo "github.com/finacct/ledger_posting_app/internal/core/ports/repositories"
	portssvc "github.com/finacct/ledger_posting_app/internal/core/ports/services"
	"github.com/finacct/ledger_posting_app/internal/platform/config"
)

// NewServiceContainer wires the application services against the repository
// provider and configuration-backed policies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	approverPolicy := NewConfigApproverPolicy(cfg.AuthorizedApprovers)
	periodGuard := NewConfigPeriodGuard(cfg.LockedPeriods, cfg.PeriodOverrideRoles)

	accountSvc := NewAccountService(repos.AccountRepo)
	entrySvc := NewEntryService(repos.EntryRepo, accountSvc, periodGuard, cfg.EntryNumberPrefix)
	workflowSvc := NewWorkflowService(repos.EntryRepo, accountSvc, repos.AuditRepo, approverPolicy, periodGuard, cfg.AuditFailedAttempts)
	auditSvc := NewAuditService(repos.AuditRepo, repos.EntryRepo)

	return &portssvc.ServiceContainer{
		Account:  accountSvc,
		Entry:    entrySvc,
		Workflow: workflowSvc,
		Audit:    auditSvc,
	}
}
