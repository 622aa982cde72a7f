package api

import (
	"net/http"

	resdto "keyshop/internal/handler/dto/response"
	"keyshop/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type StockHandler struct {
	stockSync commands.StockSync
}

func NewStockHandler(stockSync commands.StockSync) *StockHandler {
	return &StockHandler{
		stockSync: stockSync,
	}
}

// @Summary Reconcile stock cache
// @Description Recompute available inventory and correct the catalog stock cache
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.ReconcileResponse
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/stock/reconcile [post]
func (h *StockHandler) Reconcile(c *gin.Context) {
	summary, err := h.stockSync.Reconcile(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Stock reconciliation failed",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromReconcileSummary(summary))
}

// @Summary Stock discrepancy report
// @Description Compare cached stock against actual inventory without modifying anything
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.StockReportResponse
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/stock/report [get]
func (h *StockHandler) Report(c *gin.Context) {
	report, err := h.stockSync.Report(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to build stock report",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromStockReport(report))
}
