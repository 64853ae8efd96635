package handler

import (
	"fmt"
	"net/http"
	"time"

	auditapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/audit"
	"github.com/gin-gonic/gin"
)

// AuditHandler handles audit trail API endpoints
type AuditHandler struct {
	BaseHandler
	auditService *auditapp.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService *auditapp.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List godoc
// @Summary      List audit entries
// @Description  Returns the organization's audit trail, newest first.
// @Tags         audit
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        aggregate_type query string false "Filter by aggregate type"
// @Param        aggregate_id query string false "Filter by aggregate ID"
// @Param        actor_user_id query string false "Filter by actor"
// @Param        action query string false "Filter by action"
// @Param        from query string false "Range start (RFC 3339)"
// @Param        to query string false "Range end (RFC 3339)"
// @Success      200 {object} APIResponse[[]auditapp.EntryResponse]
// @Security     BearerAuth
// @Router       /audit/entries [get]
func (h *AuditHandler) List(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var filter auditapp.EntryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 20
	}

	result, err := h.auditService.List(c.Request.Context(), organizationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get an audit entry
// @Tags         audit
// @Produce      json
// @Param        id path string true "Entry ID"
// @Success      200 {object} APIResponse[auditapp.EntryResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audit/entries/{id} [get]
func (h *AuditHandler) GetByID(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	entryID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	resp, err := h.auditService.GetByID(c.Request.Context(), organizationID, entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetTimeline godoc
// @Summary      Get an aggregate's audit timeline
// @Description  Returns every audit entry of one aggregate, oldest first.
// @Tags         audit
// @Produce      json
// @Param        aggregateType path string true "Aggregate type"
// @Param        aggregateId path string true "Aggregate ID"
// @Success      200 {object} APIResponse[[]auditapp.EntryResponse]
// @Security     BearerAuth
// @Router       /audit/timeline/{aggregateType}/{aggregateId} [get]
func (h *AuditHandler) GetTimeline(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	aggregateID, ok := parseUUIDParam(c, "aggregateId")
	if !ok {
		h.BadRequest(c, "Invalid aggregate ID")
		return
	}

	entries, err := h.auditService.GetTimeline(c.Request.Context(), organizationID, c.Param("aggregateType"), aggregateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// GetValueHistory godoc
// @Summary      Get a data point's value history
// @Description  Reconstructs the value timeline of a data point from its audit entries.
// @Tags         audit
// @Produce      json
// @Param        dataPointId path string true "Data point ID"
// @Success      200 {object} APIResponse[auditapp.ValueHistoryResponse]
// @Security     BearerAuth
// @Router       /audit/data-points/{dataPointId}/value-history [get]
func (h *AuditHandler) GetValueHistory(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	dataPointID, ok := parseUUIDParam(c, "dataPointId")
	if !ok {
		h.BadRequest(c, "Invalid data point ID")
		return
	}

	resp, err := h.auditService.GetValueHistory(c.Request.Context(), organizationID, dataPointID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DownloadTrailCSV godoc
// @Summary      Download the audit trail as CSV
// @Description  Streams the filtered audit trail as a CSV attachment.
// @Tags         audit
// @Produce      text/csv
// @Param        aggregate_type query string false "Filter by aggregate type"
// @Param        aggregate_id query string false "Filter by aggregate ID"
// @Param        actor_user_id query string false "Filter by actor"
// @Param        action query string false "Filter by action"
// @Param        from query string false "Range start (RFC 3339)"
// @Param        to query string false "Range end (RFC 3339)"
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /audit/entries/export [get]
func (h *AuditHandler) DownloadTrailCSV(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var filter auditapp.EntryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	fileName := fmt.Sprintf("audit-trail-%s.csv", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Status(http.StatusOK)

	if err := h.auditService.WriteTrailCSV(c.Request.Context(), organizationID, filter, c.Writer); err != nil {
		// Headers are already out, the most we can do is cut the stream
		c.Abort()
	}
}
