package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicer/internal/service"
)

// JobHandler handles the function-style endpoints that are triggered by a
// scheduler or by the UI helpers: the reminder scan and line summarization.
type JobHandler struct {
	reminderService service.ReminderService
	summaryService  service.SummaryService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(reminderService service.ReminderService, summaryService service.SummaryService) *JobHandler {
	return &JobHandler{reminderService: reminderService, summaryService: summaryService}
}

// ProcessReminders handles POST /process-reminders
// @Summary Run the unpaid-invoice reminder scan
// @Description On Fridays and on the last day of the month, emails one digest of unpaid invoices for clients on that cadence to the business address. Other days are skipped.
// @Tags jobs
// @Produce json
// @Success 200 {object} service.ReminderResult
// @Failure 400 {object} LegacyError "Business email not configured"
// @Failure 502 {object} LegacyError "Mail transport failed"
// @Security BearerAuth
// @Router /process-reminders [post]
func (h *JobHandler) ProcessReminders(c *gin.Context) {
	result, err := h.reminderService.Run(c.Request.Context())
	if err != nil {
		HandleLegacyError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Summarize handles POST /summarize
// @Summary Condense raw work notes into one client-facing line
// @Tags jobs
// @Accept json
// @Produce json
// @Param body body SummarizeRequest true "Raw description"
// @Success 200 {object} service.SummaryResult
// @Failure 400 {object} LegacyError "Validation error"
// @Failure 503 {object} LegacyError "Summarizer unreachable"
// @Security BearerAuth
// @Router /summarize [post]
func (h *JobHandler) Summarize(c *gin.Context) {
	var req SummarizeRequest
	if !bindLegacyJSON(c, &req) {
		return
	}

	result, err := h.summaryService.Summarize(c.Request.Context(), req.RawDescription)
	if err != nil {
		HandleLegacyError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
