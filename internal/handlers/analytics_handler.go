package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-ops/internal/middleware"
	"github.com/sjperalta/fintera-ops/internal/services"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsSvc *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsSvc}
}

// Summary returns the ledger totals of one month
// @Summary Ledger summary
// @Description Income and expense totals for a period, the realized net against the previous month and open receivables
// @Tags Analytics
// @Produce json
// @Param period query string false "Period (YYYY-MM), defaults to the current month"
// @Security BearerAuth
// @Success 200 {object} models.LedgerSummary
// @Failure 422 {object} map[string]string
// @Router /analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, err := h.analyticsService.Summary(c.Request.Context(), middleware.GetTenantID(c), c.Query("period"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
