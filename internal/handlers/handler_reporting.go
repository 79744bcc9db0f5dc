package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/services"
	"github.com/SscSPs/mbg_dapur_ledger/internal/dto"
	"github.com/SscSPs/mbg_dapur_ledger/internal/export"
	"github.com/SscSPs/mbg_dapur_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// IntegrityHeader is set on trial balance responses whose totals disagree.
const IntegrityHeader = "X-Ledger-Integrity"

// reportingHandler handles HTTP requests related to financial reports.
type reportingHandler struct {
	reportingService portssvc.ReportingService
	loc              *time.Location
}

// RegisterReportingRoutes registers routes related to financial reports.
// Missing report dates default to the current day in loc.
func RegisterReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService, loc *time.Location) {
	h := &reportingHandler{reportingService: reportingService, loc: loc}

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.getTrialBalance)
		reports.GET("/trial-balance.csv", h.exportTrialBalance)
		reports.GET("/profit-and-loss", h.getProfitAndLoss)
		reports.GET("/balance-sheet", h.getBalanceSheet)
	}
}

// getTrialBalance godoc
// @Summary Get trial balance
// @Description Debit and credit totals per account as of a date
// @Tags reports
// @Produce json
// @Param asOf query string false "As of date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.TrialBalanceResponse
// @Header 200 {string} X-Ledger-Integrity "imbalanced when total debit differs from total credit"
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate trial balance"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	asOf, err := queryDate(c, "asOf", today(h.loc))
	if err != nil {
		respondError(c, logger, err, "Failed to generate trial balance")
		return
	}

	tb, err := h.reportingService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate trial balance")
		return
	}
	if !tb.IsBalanced {
		c.Header(IntegrityHeader, "imbalanced")
	}
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(tb))
}

// exportTrialBalance godoc
// @Summary Export trial balance as CSV
// @Tags reports
// @Produce text/csv
// @Param asOf query string false "As of date (YYYY-MM-DD), defaults to today"
// @Success 200 {file} file
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to export trial balance"
// @Security BearerAuth
// @Router /reports/trial-balance.csv [get]
func (h *reportingHandler) exportTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	asOf, err := queryDate(c, "asOf", today(h.loc))
	if err != nil {
		respondError(c, logger, err, "Failed to export trial balance")
		return
	}

	tb, err := h.reportingService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to export trial balance")
		return
	}
	if !tb.IsBalanced {
		c.Header(IntegrityHeader, "imbalanced")
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.TrialBalanceFilename(tb)))
	c.Status(http.StatusOK)
	if err := export.WriteTrialBalanceCSV(c.Writer, tb); err != nil {
		// Headers are already sent.
		logger.Error("Failed to write trial balance CSV", slog.String("error", err.Error()))
	}
}

// getProfitAndLoss godoc
// @Summary Get profit and loss report
// @Description Revenue, cost of goods sold and expenses for a period
// @Tags reports
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD), defaults to the first day of the month of to"
// @Param to query string false "End date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.ProfitAndLossResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid date range"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate profit and loss report"
// @Security BearerAuth
// @Router /reports/profit-and-loss [get]
func (h *reportingHandler) getProfitAndLoss(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	to, err := queryDate(c, "to", today(h.loc))
	if err != nil {
		respondError(c, logger, err, "Failed to generate profit and loss report")
		return
	}
	from, err := queryDate(c, "from", firstOfMonth(to))
	if err != nil {
		respondError(c, logger, err, "Failed to generate profit and loss report")
		return
	}

	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, logger, err, "Failed to generate profit and loss report")
		return
	}
	c.JSON(http.StatusOK, dto.ToProfitAndLossResponse(report))
}

// getBalanceSheet godoc
// @Summary Get balance sheet
// @Tags reports
// @Produce json
// @Param asOf query string false "As of date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.BalanceSheetResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate balance sheet"
// @Security BearerAuth
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	asOf, err := queryDate(c, "asOf", today(h.loc))
	if err != nil {
		respondError(c, logger, err, "Failed to generate balance sheet")
		return
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate balance sheet")
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceSheetResponse(report))
}
