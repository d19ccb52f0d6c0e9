package api

import (
	"net/http"

	resdto "parking-lot-manager/internal/handler/dto/response"
	"parking-lot-manager/internal/handler/httperr"
	"parking-lot-manager/internal/handler/middleware"
	"parking-lot-manager/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	q queries.AnalyticsQueries
}

func NewAnalyticsHandler(q queries.AnalyticsQueries) *AnalyticsHandler {
	return &AnalyticsHandler{q: q}
}

// @Summary Analytics summary
// @Description Occupancy and revenue per lot (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.AnalyticsSummaryResponse
// @Failure 403 {object} httperr.Response
// @Router /api/admin/analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		httperr.Abort(c, errUnauthenticated)
		return
	}

	summary, err := h.q.Summary(c.Request.Context(), caller)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAnalyticsSummary(summary))
}
