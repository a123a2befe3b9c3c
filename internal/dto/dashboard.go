package dto

import (
	"github.com/shopspring/decimal"

	"github.com/corebank/bancore/internal/core/domain"
)

// OwnerSummaryResponse is the dashboard aggregate for one owner.
type OwnerSummaryResponse struct {
	OwnerID            string                `json:"owner_id"`
	TotalBalance       decimal.Decimal       `json:"total_balance"`
	TotalAccounts      int                   `json:"total_accounts"`
	ActiveAccounts     int                   `json:"active_accounts"`
	MonthlyIncome      decimal.Decimal       `json:"monthly_income"`
	MonthlyExpenses    decimal.Decimal       `json:"monthly_expenses"`
	RecentTransactions []TransactionResponse `json:"recent_transactions"`
}

// ToOwnerSummaryResponse converts the domain summary to its DTO.
func ToOwnerSummaryResponse(s *domain.OwnerSummary) OwnerSummaryResponse {
	return OwnerSummaryResponse{
		OwnerID:            s.OwnerID,
		TotalBalance:       domain.FromMinorUnits(s.TotalBalance),
		TotalAccounts:      s.TotalAccounts,
		ActiveAccounts:     s.ActiveAccounts,
		MonthlyIncome:      domain.FromMinorUnits(s.MonthlyIncome),
		MonthlyExpenses:    domain.FromMinorUnits(s.MonthlyExpenses),
		RecentTransactions: ToListTransactionResponse(s.RecentTransactions, ""),
	}
}
