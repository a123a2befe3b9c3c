package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/corebank/bancore/internal/apperrors"
	"github.com/corebank/bancore/internal/core/domain"
	"github.com/corebank/bancore/internal/core/services"
	"github.com/corebank/bancore/internal/dto"
	"github.com/corebank/bancore/internal/middleware"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService *services.AccountService
}

func newAccountHandler(as *services.AccountService) *accountHandler {
	return &accountHandler{accountService: as}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService *services.AccountService) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.openAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:number", h.getAccount)
		accounts.PATCH("/:number/status", h.setStatus)
	}
}

func (h *accountHandler) openAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for OpenAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	openingBalance, err := domain.ToMinorUnits(req.OpeningBalance)
	if err == nil && openingBalance < 0 {
		err = fmt.Errorf("%w: opening balance cannot be negative", apperrors.ErrValidation)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Received request to open account",
		slog.String("kind", string(req.Kind)),
		slog.String("owner_id", req.OwnerID),
	)

	account, err := h.accountService.OpenAccount(c.Request.Context(), req.Kind, req.OwnerID, openingBalance)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Account opened", slog.String("account_number", account.Number))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

func (h *accountHandler) getAccount(c *gin.Context) {
	account, err := h.accountService.GetAccountByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	ownerID := c.Query("owner")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner query parameter is required"})
		return
	}

	accounts, err := h.accountService.ListAccountsByOwner(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountResponse(accounts))
}

func (h *accountHandler) setStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SetAccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	account, err := h.accountService.GetAccountByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.accountService.SetStatus(c.Request.Context(), account.AccountID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Account status changed",
		slog.String("account_number", updated.Number),
		slog.String("status", string(updated.Status)),
	)
	c.JSON(http.StatusOK, dto.ToAccountResponse(updated))
}
