package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/services"
	"github.com/SscSPs/mbg_dapur_ledger/internal/dto"
	"github.com/SscSPs/mbg_dapur_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
	loc           *time.Location
}

// RegisterLedgerRoutes registers account ledger and reconciliation routes.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, loc *time.Location) {
	h := &ledgerHandler{ledgerService: ledgerService, loc: loc}

	rg.GET("/accounts/:accountID/ledger", h.getAccountLedger)
	rg.GET("/ledger/reconcile", h.reconcile)
}

// getAccountLedger godoc
// @Summary Get the ledger of an account
// @Description Posted lines with running balance. With from and to, the opening balance covers everything before from.
// @Tags ledger
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   from query string false "Start date (YYYY-MM-DD)"
// @Param   to query string false "End date (YYYY-MM-DD), defaults to today when from is set"
// @Success 200 {object} dto.AccountLedgerResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid date range"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve ledger"
// @Security BearerAuth
// @Router /accounts/{accountID}/ledger [get]
func (h *ledgerHandler) getAccountLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")
	logger = logger.With(slog.String("account_id", accountID))

	if c.Query("from") == "" && c.Query("to") == "" {
		ledger, err := h.ledgerService.GetByAccount(c.Request.Context(), accountID)
		if err != nil {
			respondError(c, logger, err, "Failed to retrieve ledger")
			return
		}
		c.JSON(http.StatusOK, dto.ToAccountLedgerResponse(ledger))
		return
	}

	to, err := queryDate(c, "to", today(h.loc))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve ledger")
		return
	}
	from, err := queryDate(c, "from", firstOfMonth(to))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve ledger")
		return
	}

	ledger, err := h.ledgerService.GetByDateRange(c.Request.Context(), accountID, from, to)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve ledger")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountLedgerResponse(ledger))
}

// reconcile godoc
// @Summary Reconcile stored balances
// @Description Replays posted lines and lists accounts whose stored balance differs
// @Tags ledger
// @Produce  json
// @Success 200 {object} dto.ReconcileResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to reconcile balances"
// @Security BearerAuth
// @Router /ledger/reconcile [get]
func (h *ledgerHandler) reconcile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	discrepancies, err := h.ledgerService.ReconcileBalances(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to reconcile balances")
		return
	}
	c.JSON(http.StatusOK, dto.ReconcileResponse{
		Consistent:    len(discrepancies) == 0,
		Discrepancies: discrepancies,
	})
}
