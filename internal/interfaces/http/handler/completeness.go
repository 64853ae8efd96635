package handler

import (
	"time"

	reportingapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/reporting"
	"github.com/gin-gonic/gin"
)

// CompletenessHandler handles completeness scoring API endpoints
type CompletenessHandler struct {
	BaseHandler
	completenessService *reportingapp.CompletenessService
}

// NewCompletenessHandler creates a new CompletenessHandler
func NewCompletenessHandler(completenessService *reportingapp.CompletenessService) *CompletenessHandler {
	return &CompletenessHandler{completenessService: completenessService}
}

// ScorePeriod godoc
// @Summary      Score a period's completeness
// @Description  Computes the weighted completeness score of a period across its section tree.
// @Tags         completeness
// @Produce      json
// @Param        id path string true "Period ID"
// @Success      200 {object} APIResponse[reportingapp.PeriodCompletenessResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/periods/{id}/completeness [get]
func (h *CompletenessHandler) ScorePeriod(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	periodID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid period ID")
		return
	}

	resp, err := h.completenessService.ScorePeriod(c.Request.Context(), organizationID, periodID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ScoreSection godoc
// @Summary      Score a section's completeness
// @Tags         completeness
// @Produce      json
// @Param        id path string true "Section ID"
// @Success      200 {object} APIResponse[reportingapp.SectionCompletenessResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/sections/{id}/completeness [get]
func (h *CompletenessHandler) ScoreSection(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	sectionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid section ID")
		return
	}

	resp, err := h.completenessService.ScoreSection(c.Request.Context(), organizationID, sectionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Snapshot godoc
// @Summary      Snapshot a period's completeness
// @Description  Stores today's completeness score for the period. One snapshot is kept per day.
// @Tags         completeness
// @Param        id path string true "Period ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/periods/{id}/completeness/snapshot [post]
func (h *CompletenessHandler) Snapshot(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	periodID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid period ID")
		return
	}

	if err := h.completenessService.SnapshotPeriod(c.Request.Context(), organizationID, periodID, time.Now().UTC()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetHistory godoc
// @Summary      Get completeness history
// @Description  Returns daily completeness snapshots of a period within a date range.
// @Tags         completeness
// @Produce      json
// @Param        id path string true "Period ID"
// @Param        from query string false "Range start (RFC 3339 date)"
// @Param        to query string false "Range end (RFC 3339 date)"
// @Success      200 {object} APIResponse[[]reportingapp.CompletenessHistoryEntry]
// @Security     BearerAuth
// @Router       /reporting/periods/{id}/completeness/history [get]
func (h *CompletenessHandler) GetHistory(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	periodID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid period ID")
		return
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		to = parsed
	}

	entries, err := h.completenessService.GetHistory(c.Request.Context(), organizationID, periodID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}
