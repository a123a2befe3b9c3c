package dto

import "github.com/shopspring/decimal"

// PaymentRequest defines the data for a service payment. A payment is a
// withdrawal with a structured description naming the service and reference.
type PaymentRequest struct {
	AccountNumber string          `json:"account_number" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	ServiceType   string          `json:"service_type" binding:"required"`
	Reference     string          `json:"reference" binding:"required"`
	Notes         string          `json:"notes"`
}
