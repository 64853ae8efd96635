package handler

import (
	"context"

	registerapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/register"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/register"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GapHandler handles disclosure gap API endpoints
type GapHandler struct {
	BaseHandler
	gapService *registerapp.GapService
}

// NewGapHandler creates a new GapHandler
func NewGapHandler(gapService *registerapp.GapService) *GapHandler {
	return &GapHandler{gapService: gapService}
}

// Create godoc
// @Summary      Raise a disclosure gap
// @Description  Records a gap against a period, section or data point.
// @Tags         gaps
// @Accept       json
// @Produce      json
// @Param        request body registerapp.CreateGapRequest true "Gap creation request"
// @Success      201 {object} APIResponse[registerapp.GapResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /register/gaps [post]
func (h *GapHandler) Create(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req registerapp.CreateGapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.RaisedBy = &userID
	}

	resp, err := h.gapService.Create(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get a disclosure gap
// @Tags         gaps
// @Produce      json
// @Param        id path string true "Gap ID"
// @Success      200 {object} APIResponse[registerapp.GapResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /register/gaps/{id} [get]
func (h *GapHandler) GetByID(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	gapID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid gap ID")
		return
	}

	resp, err := h.gapService.GetByID(c.Request.Context(), organizationID, gapID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List disclosure gaps
// @Tags         gaps
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        period_id query string false "Filter by period"
// @Param        section_id query string false "Filter by section"
// @Param        data_point_id query string false "Filter by data point"
// @Param        status query string false "Filter by status"
// @Param        severity query string false "Filter by severity"
// @Param        open_only query bool false "Only open gaps"
// @Success      200 {object} APIResponse[[]registerapp.GapResponse]
// @Security     BearerAuth
// @Router       /register/gaps [get]
func (h *GapHandler) List(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	page, pageSize := parsePagination(c)
	filter := registerapp.GapListFilter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
		Search:   c.Query("search"),
	}
	var ok bool
	if filter.PeriodID, ok = parseUUIDQuery(c, "period_id"); !ok {
		h.BadRequest(c, "Invalid period_id")
		return
	}
	if filter.SectionID, ok = parseUUIDQuery(c, "section_id"); !ok {
		h.BadRequest(c, "Invalid section_id")
		return
	}
	if filter.DataPointID, ok = parseUUIDQuery(c, "data_point_id"); !ok {
		h.BadRequest(c, "Invalid data_point_id")
		return
	}
	if raw := c.Query("status"); raw != "" {
		status := register.GapStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("severity"); raw != "" {
		severity := register.GapSeverity(raw)
		filter.Severity = &severity
	}
	if flag, ok := parseBoolQuery(c, "open_only"); ok && flag != nil {
		filter.OpenOnly = *flag
	}

	items, total, err := h.gapService.List(c.Request.Context(), organizationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// ListByDataPoint godoc
// @Summary      List gaps raised on a data point
// @Tags         gaps
// @Produce      json
// @Param        id path string true "Data point ID"
// @Success      200 {object} APIResponse[[]registerapp.GapResponse]
// @Security     BearerAuth
// @Router       /reporting/data-points/{id}/gaps [get]
func (h *GapHandler) ListByDataPoint(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	dataPointID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid data point ID")
		return
	}

	items, err := h.gapService.ListByDataPoint(c.Request.Context(), organizationID, dataPointID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Update godoc
// @Summary      Update a disclosure gap
// @Tags         gaps
// @Accept       json
// @Produce      json
// @Param        id path string true "Gap ID"
// @Param        request body registerapp.UpdateGapRequest true "Fields to update"
// @Success      200 {object} APIResponse[registerapp.GapResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /register/gaps/{id} [put]
func (h *GapHandler) Update(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	gapID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid gap ID")
		return
	}

	var req registerapp.UpdateGapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.gapService.Update(c.Request.Context(), organizationID, gapID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Acknowledge marks an open gap as acknowledged.
func (h *GapHandler) Acknowledge(c *gin.Context) {
	h.transition(c, h.gapService.Acknowledge)
}

// StartRemediation marks a gap as being remediated.
func (h *GapHandler) StartRemediation(c *gin.Context) {
	h.transition(c, h.gapService.StartRemediation)
}

// Resolve godoc
// @Summary      Resolve a disclosure gap
// @Description  Closes the gap as resolved. A closing note is required.
// @Tags         gaps
// @Accept       json
// @Produce      json
// @Param        id path string true "Gap ID"
// @Param        request body registerapp.CloseGapRequest true "Closing note"
// @Success      200 {object} APIResponse[registerapp.GapResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /register/gaps/{id}/resolve [post]
func (h *GapHandler) Resolve(c *gin.Context) {
	h.close(c, h.gapService.Resolve)
}

// Accept godoc
// @Summary      Accept a disclosure gap
// @Description  Closes the gap as accepted without remediation. A closing note is required.
// @Tags         gaps
// @Accept       json
// @Produce      json
// @Param        id path string true "Gap ID"
// @Param        request body registerapp.CloseGapRequest true "Closing note"
// @Success      200 {object} APIResponse[registerapp.GapResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /register/gaps/{id}/accept [post]
func (h *GapHandler) Accept(c *gin.Context) {
	h.close(c, h.gapService.Accept)
}

// Delete godoc
// @Summary      Delete a disclosure gap
// @Tags         gaps
// @Param        id path string true "Gap ID"
// @Success      204
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /register/gaps/{id} [delete]
func (h *GapHandler) Delete(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	gapID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid gap ID")
		return
	}

	if err := h.gapService.Delete(c.Request.Context(), organizationID, gapID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *GapHandler) transition(c *gin.Context, fn func(ctx context.Context, organizationID, gapID uuid.UUID) (*registerapp.GapResponse, error)) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	gapID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid gap ID")
		return
	}

	resp, err := fn(c.Request.Context(), organizationID, gapID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *GapHandler) close(c *gin.Context, fn func(ctx context.Context, organizationID, gapID uuid.UUID, req registerapp.CloseGapRequest) (*registerapp.GapResponse, error)) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	gapID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid gap ID")
		return
	}

	var req registerapp.CloseGapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.ClosedBy = userID
	}

	resp, err := fn(c.Request.Context(), organizationID, gapID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
