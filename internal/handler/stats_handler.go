package handler

import (
	"github.com/gin-gonic/gin"

	"invoicer/internal/service"
)

// StatsHandler handles dashboard stats endpoints.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetStats handles GET /api/v1/dashboard/stats
// @Summary Get dashboard statistics
// @Description Revenue totals split by paid and outstanding, invoice counts per status, overdue count and client count.
// @Tags dashboard
// @Produce json
// @Success 200 {object} Response{data=domain.DashboardStats} "Aggregate statistics"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /dashboard/stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.GetStats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, stats)
}
