package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/bancore/internal/core/domain"
)

// OpenAccountRequest defines the data needed to open a new account.
type OpenAccountRequest struct {
	Kind           domain.AccountKind `json:"kind" binding:"required,accountkind"`
	OwnerID        string             `json:"owner_id" binding:"required"`
	OpeningBalance decimal.Decimal    `json:"opening_balance"`
}

// SetAccountStatusRequest defines the data for an account status transition.
type SetAccountStatusRequest struct {
	Status domain.AccountStatus `json:"status" binding:"required,oneof=active frozen closed"`
}

// AccountResponse defines the data returned for an account. The balance is
// rendered as a decimal string; internally it is integer minor units.
type AccountResponse struct {
	ID       string          `json:"id"`
	Number   string          `json:"number"`
	Kind     string          `json:"kind"`
	Balance  decimal.Decimal `json:"balance"`
	Status   string          `json:"status"`
	OwnerID  string          `json:"owner_id"`
	OpenedAt time.Time       `json:"opened_at"`
}

// ToAccountResponse converts a domain.Account to an AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		ID:       acc.AccountID,
		Number:   acc.Number,
		Kind:     string(acc.Kind),
		Balance:  domain.FromMinorUnits(acc.Balance),
		Status:   string(acc.Status),
		OwnerID:  acc.OwnerID,
		OpenedAt: acc.OpenedAt,
	}
}

// ToListAccountResponse converts a slice of domain.Account to DTOs.
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}
