package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/corebank/bancore/internal/apperrors"
	"github.com/corebank/bancore/internal/core/domain"
	portsrepo "github.com/corebank/bancore/internal/core/ports/repositories"
	"github.com/corebank/bancore/internal/core/services"
	"github.com/corebank/bancore/internal/dto"
	"github.com/corebank/bancore/internal/middleware"
)

// transactionHandler handles HTTP requests that move money or read history.
type transactionHandler struct {
	ledgerService  *services.LedgerService
	accountService *services.AccountService
}

func newTransactionHandler(ls *services.LedgerService, as *services.AccountService) *transactionHandler {
	return &transactionHandler{ledgerService: ls, accountService: as}
}

// registerTransactionRoutes registers the money-movement and history routes.
func registerTransactionRoutes(rg *gin.RouterGroup, ledgerService *services.LedgerService, accountService *services.AccountService) {
	h := newTransactionHandler(ledgerService, accountService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("/deposit", h.deposit)
		transactions.POST("/withdraw", h.withdraw)
		transactions.POST("/transfer", h.transfer)
		transactions.GET("", h.list)
		transactions.GET("/recent", h.recent)
	}
}

// amountToMinor converts a boundary decimal into minor units, rejecting
// non-positive values up front so the engine never sees them.
func amountToMinor(amount decimal.Decimal) (int64, error) {
	units, err := domain.ToMinorUnits(amount)
	if err != nil {
		return 0, err
	}
	if units <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	return units, nil
}

func (h *transactionHandler) deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Deposit", slog.String("error", err.Error()))
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

	record, err := h.ledgerService.Deposit(c.Request.Context(), account.AccountID, amount, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Deposit completed",
		slog.String("account_number", account.Number),
		slog.Int64("amount_minor", amount),
	)
	c.JSON(http.StatusOK, dto.ToTransactionResponse(record, account.AccountID))
}

func (h *transactionHandler) withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Withdraw", slog.String("error", err.Error()))
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

	record, err := h.ledgerService.Withdraw(c.Request.Context(), account.AccountID, amount, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Withdrawal completed",
		slog.String("account_number", account.Number),
		slog.Int64("amount_minor", amount),
	)
	c.JSON(http.StatusOK, dto.ToTransactionResponse(record, account.AccountID))
}

func (h *transactionHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	amount, err := amountToMinor(req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	origin, err := h.accountService.GetAccountByNumber(c.Request.Context(), req.OriginNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	destination, err := h.accountService.GetAccountByNumber(c.Request.Context(), req.DestinationNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	record, err := h.ledgerService.Transfer(c.Request.Context(), origin.AccountID, destination.AccountID, amount, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Transfer completed",
		slog.String("origin_number", origin.Number),
		slog.String("destination_number", destination.Number),
		slog.Int64("amount_minor", amount),
	)
	c.JSON(http.StatusOK, dto.ToTransactionResponse(record, origin.AccountID))
}

func (h *transactionHandler) list(c *gin.Context) {
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	// The store treats a non-positive limit as unbounded; the HTTP surface
	// always pages.
	if params.Limit <= 0 {
		params.Limit = 50
	}

	account, err := h.accountService.GetAccountByNumber(c.Request.Context(), params.Account)
	if err != nil {
		respondError(c, err)
		return
	}

	records, err := h.ledgerService.ListByAccount(c.Request.Context(), account.AccountID, portsrepo.ListFilter{
		Since: params.Since,
		Limit: params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionResponse(records, account.AccountID))
}

func (h *transactionHandler) recent(c *gin.Context) {
	limit := 20
	if raw, ok := c.GetQuery("limit"); ok {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	records, err := h.ledgerService.RecentAll(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionResponse(records, ""))
}
