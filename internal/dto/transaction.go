package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/bancore/internal/core/domain"
)

// DepositRequest defines the data for a deposit operation.
type DepositRequest struct {
	AccountNumber string          `json:"account_number" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Description   string          `json:"description"`
}

// WithdrawRequest defines the data for a withdrawal operation.
type WithdrawRequest struct {
	AccountNumber string          `json:"account_number" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Description   string          `json:"description"`
}

// TransferRequest defines the data for a transfer between two accounts.
type TransferRequest struct {
	OriginNumber      string          `json:"origin_number" binding:"required"`
	DestinationNumber string          `json:"destination_number" binding:"required"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	Description       string          `json:"description"`
}

// ListTransactionsParams defines the query parameters for a history listing.
type ListTransactionsParams struct {
	Account string     `form:"account" binding:"required"`
	Since   *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit   int        `form:"limit,default=50"`
}

// TransactionResponse defines the data returned for a transaction record.
// Direction is present only when the listing was made from the point of view
// of a specific account.
type TransactionResponse struct {
	ID                   string          `json:"id"`
	Sequence             int64           `json:"sequence"`
	Kind                 string          `json:"kind"`
	OriginAccountID      string          `json:"origin_account_id,omitempty"`
	DestinationAccountID string          `json:"destination_account_id,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	Status               string          `json:"status"`
	Description          string          `json:"description,omitempty"`
	Direction            string          `json:"direction,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// ToTransactionResponse converts a record to its DTO. viewingAccountID may be
// empty, in which case no direction label is attached.
func ToTransactionResponse(rec *domain.TransactionRecord, viewingAccountID string) TransactionResponse {
	return TransactionResponse{
		ID:                   rec.TransactionID,
		Sequence:             rec.Sequence,
		Kind:                 string(rec.Kind),
		OriginAccountID:      rec.OriginAccountID,
		DestinationAccountID: rec.DestinationAccountID,
		Amount:               domain.FromMinorUnits(rec.Amount),
		Status:               string(rec.Status),
		Description:          rec.Description,
		Direction:            string(rec.DirectionFor(viewingAccountID)),
		CreatedAt:            rec.CreatedAt,
	}
}

// ToListTransactionResponse converts a slice of records to DTOs.
func ToListTransactionResponse(records []domain.TransactionRecord, viewingAccountID string) []TransactionResponse {
	res := make([]TransactionResponse, len(records))
	for i := range records {
		res[i] = ToTransactionResponse(&records[i], viewingAccountID)
	}
	return res
}
