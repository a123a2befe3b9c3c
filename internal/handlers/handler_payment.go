package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/corebank/bancore/internal/core/services"
	"github.com/corebank/bancore/internal/dto"
	"github.com/corebank/bancore/internal/middleware"
)

// paymentHandler processes service payments. A payment is a withdrawal with a
// structured description, so it rides the same ledger invariants as any other
// debit.
type paymentHandler struct {
	ledgerService  *services.LedgerService
	accountService *services.AccountService
}

func registerPaymentRoutes(rg *gin.RouterGroup, ledgerService *services.LedgerService, accountService *services.AccountService) {
	h := &paymentHandler{ledgerService: ledgerService, accountService: accountService}
	rg.POST("/payments", h.processPayment)
}

func (h *paymentHandler) processPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Payment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	amount, err := amountToMinor(req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	account, err := h.accountService.GetAccountByNumber(c.Request.Context(), req.AccountNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	description := fmt.Sprintf("Service payment: %s - ref %s", req.ServiceType, req.Reference)
	if req.Notes != "" {
		description += " - " + req.Notes
	}

	record, err := h.ledgerService.Withdraw(c.Request.Context(), account.AccountID, amount, description)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Payment processed",
		slog.String("account_number", account.Number),
		slog.String("service_type", req.ServiceType),
		slog.Int64("amount_minor", amount),
	)
	c.JSON(http.StatusOK, dto.ToTransactionResponse(record, account.AccountID))
}
