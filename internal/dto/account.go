package dto

import (
	"time"

	"github.com/finacct/ledger_posting_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code            string             `json:"code" binding:"required"`
	Name            string             `json:"name" binding:"required"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	ParentAccountID *string            `json:"parentAccountID"` // Optional, use pointer for nullability
	AllowPosting    *bool              `json:"allowPosting"`    // Optional, defaults to true; aggregator accounts set false
	Description     string             `json:"description"`     // Optional
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
// Balance fields are mutated only by the posting engine and cannot be set here.
type UpdateAccountRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	ParentAccountID *string `json:"parentAccountID"`
	AllowPosting    *bool   `json:"allowPosting"`
	IsActive        *bool   `json:"isActive"`
}

// ListAccountsParams holds filter and pagination parameters for listing accounts.
type ListAccountsParams struct {
	AccountType  *domain.AccountType
	ActiveOnly   bool
	PostableOnly bool
	Limit        int
	Offset       int
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID       string             `json:"accountID"`
	EntityID        string             `json:"entityID"`
	Code            string             `json:"code"`
	Name            string             `json:"name"`
	AccountType     domain.AccountType `json:"accountType"`
	NormalBalance   string             `json:"normalBalance"`
	ParentAccountID string             `json:"parentAccountID"` // Note: Empty string if null in DB
	AllowPosting    bool               `json:"allowPosting"`
	Description     string             `json:"description"`
	IsActive        bool               `json:"isActive"`
	CurrentBalance  decimal.Decimal    `json:"currentBalance"`
	YTDActivity     decimal.Decimal    `json:"ytdActivity"`
	CreatedAt       time.Time          `json:"createdAt"`
	CreatedBy       string             `json:"createdBy"`
	LastUpdatedAt   time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy   string             `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		EntityID:        acc.EntityID,
		Code:            acc.Code,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		NormalBalance:   string(acc.NormalBalance),
		ParentAccountID: acc.ParentAccountID,
		AllowPosting:    acc.AllowPosting,
		Description:     acc.Description,
		IsActive:        acc.IsActive,
		CurrentBalance:  acc.CurrentBalance,
		YTDActivity:     acc.YTDActivity,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToAccountResponses converts a slice of domain.Account to []AccountResponse.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}
