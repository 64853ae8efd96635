package handler

import (
	"context"

	reportingapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DataPointHandler handles data point API endpoints
type DataPointHandler struct {
	BaseHandler
	dataPointService *reportingapp.DataPointService
}

// NewDataPointHandler creates a new DataPointHandler
func NewDataPointHandler(dataPointService *reportingapp.DataPointService) *DataPointHandler {
	return &DataPointHandler{dataPointService: dataPointService}
}

// Create godoc
// @Summary      Create a data point
// @Description  Creates a disclosure data point under a section. Codes are unique within a period.
// @Tags         data-points
// @Accept       json
// @Produce      json
// @Param        request body reportingapp.CreateDataPointRequest true "Data point creation request"
// @Success      201 {object} APIResponse[reportingapp.DataPointResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/data-points [post]
func (h *DataPointHandler) Create(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req reportingapp.CreateDataPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	resp, err := h.dataPointService.Create(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get a data point
// @Tags         data-points
// @Produce      json
// @Param        id path string true "Data point ID"
// @Success      200 {object} APIResponse[reportingapp.DataPointResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/data-points/{id} [get]
func (h *DataPointHandler) GetByID(c *gin.Context) {
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

	resp, err := h.dataPointService.GetByID(c.Request.Context(), organizationID, dataPointID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List data points
// @Tags         data-points
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        section_id query string false "Filter by section"
// @Param        period_id query string false "Filter by period"
// @Param        kind query string false "Filter by kind (metric, narrative, boolean)"
// @Param        status query string false "Filter by status"
// @Param        mandatory query bool false "Filter by mandatory flag"
// @Param        owner_id query string false "Filter by owner"
// @Success      200 {object} APIResponse[[]reportingapp.DataPointResponse]
// @Security     BearerAuth
// @Router       /reporting/data-points [get]
func (h *DataPointHandler) List(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	page, pageSize := parsePagination(c)
	filter := reportingapp.DataPointListFilter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
		Search:   c.Query("search"),
	}
	var ok bool
	if filter.SectionID, ok = parseUUIDQuery(c, "section_id"); !ok {
		h.BadRequest(c, "Invalid section_id")
		return
	}
	if filter.PeriodID, ok = parseUUIDQuery(c, "period_id"); !ok {
		h.BadRequest(c, "Invalid period_id")
		return
	}
	if filter.OwnerID, ok = parseUUIDQuery(c, "owner_id"); !ok {
		h.BadRequest(c, "Invalid owner_id")
		return
	}
	if filter.Mandatory, ok = parseBoolQuery(c, "mandatory"); !ok {
		h.BadRequest(c, "Invalid mandatory")
		return
	}
	if raw := c.Query("kind"); raw != "" {
		kind := reporting.DataPointKind(raw)
		filter.Kind = &kind
	}
	if raw := c.Query("status"); raw != "" {
		status := reporting.DataPointStatus(raw)
		filter.Status = &status
	}

	items, total, err := h.dataPointService.List(c.Request.Context(), organizationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// ListBySection godoc
// @Summary      List data points of a section
// @Tags         data-points
// @Produce      json
// @Param        id path string true "Section ID"
// @Success      200 {object} APIResponse[[]reportingapp.DataPointResponse]
// @Security     BearerAuth
// @Router       /reporting/sections/{id}/data-points [get]
func (h *DataPointHandler) ListBySection(c *gin.Context) {
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

	items, err := h.dataPointService.ListBySection(c.Request.Context(), organizationID, sectionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ListMandatoryIncomplete godoc
// @Summary      List mandatory data points without a complete value
// @Tags         data-points
// @Produce      json
// @Param        id path string true "Period ID"
// @Success      200 {object} APIResponse[[]reportingapp.DataPointResponse]
// @Security     BearerAuth
// @Router       /reporting/periods/{id}/data-points/mandatory-incomplete [get]
func (h *DataPointHandler) ListMandatoryIncomplete(c *gin.Context) {
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

	items, err := h.dataPointService.ListMandatoryIncomplete(c.Request.Context(), organizationID, periodID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ListEstimated godoc
// @Summary      List estimated data points of a period
// @Tags         data-points
// @Produce      json
// @Param        id path string true "Period ID"
// @Success      200 {object} APIResponse[[]reportingapp.DataPointResponse]
// @Security     BearerAuth
// @Router       /reporting/periods/{id}/data-points/estimated [get]
func (h *DataPointHandler) ListEstimated(c *gin.Context) {
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

	items, err := h.dataPointService.ListEstimated(c.Request.Context(), organizationID, periodID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Update godoc
// @Summary      Update a data point
// @Tags         data-points
// @Accept       json
// @Produce      json
// @Param        id path string true "Data point ID"
// @Param        request body reportingapp.UpdateDataPointRequest true "Fields to update"
// @Success      200 {object} APIResponse[reportingapp.DataPointResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/data-points/{id} [put]
func (h *DataPointHandler) Update(c *gin.Context) {
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

	var req reportingapp.UpdateDataPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.dataPointService.Update(c.Request.Context(), organizationID, dataPointID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordValue godoc
// @Summary      Record a data point value
// @Description  Records a value matching the data point kind. Rejected when the period is not open.
// @Tags         data-points
// @Accept       json
// @Produce      json
// @Param        id path string true "Data point ID"
// @Param        request body reportingapp.RecordValueRequest true "Value to record"
// @Success      200 {object} APIResponse[reportingapp.DataPointResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/data-points/{id}/value [put]
func (h *DataPointHandler) RecordValue(c *gin.Context) {
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

	var req reportingapp.RecordValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.UpdatedBy = userID
	}

	resp, err := h.dataPointService.RecordValue(c.Request.Context(), organizationID, dataPointID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ClearValue godoc
// @Summary      Clear a data point value
// @Tags         data-points
// @Produce      json
// @Param        id path string true "Data point ID"
// @Success      200 {object} APIResponse[reportingapp.DataPointResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/data-points/{id}/value [delete]
func (h *DataPointHandler) ClearValue(c *gin.Context) {
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
	userID, _ := getUserID(c)

	resp, err := h.dataPointService.ClearValue(c.Request.Context(), organizationID, dataPointID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetTargets godoc
// @Summary      Set baseline and target values
// @Tags         data-points
// @Accept       json
// @Produce      json
// @Param        id path string true "Data point ID"
// @Param        request body reportingapp.SetTargetRequest true "Baseline and target"
// @Success      200 {object} APIResponse[reportingapp.DataPointResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/data-points/{id}/targets [put]
func (h *DataPointHandler) SetTargets(c *gin.Context) {
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

	var req reportingapp.SetTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.dataPointService.SetTargets(c.Request.Context(), organizationID, dataPointID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkComplete transitions a data point with a recorded value to complete.
func (h *DataPointHandler) MarkComplete(c *gin.Context) {
	h.transition(c, h.dataPointService.MarkComplete)
}

// BackToDraft returns a complete data point to draft.
func (h *DataPointHandler) BackToDraft(c *gin.Context) {
	h.transition(c, h.dataPointService.BackToDraft)
}

// ClearEstimated removes the estimation flag from a data point.
func (h *DataPointHandler) ClearEstimated(c *gin.Context) {
	h.transition(c, h.dataPointService.ClearEstimated)
}

// Deactivate excludes a data point from scoring and value recording.
func (h *DataPointHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.dataPointService.Deactivate)
}

// Reactivate brings a deactivated data point back into scope.
func (h *DataPointHandler) Reactivate(c *gin.Context) {
	h.transition(c, h.dataPointService.Reactivate)
}

// ClearOwner removes the owner assignment from a data point.
func (h *DataPointHandler) ClearOwner(c *gin.Context) {
	h.transition(c, h.dataPointService.ClearOwner)
}

// MarkEstimated godoc
// @Summary      Mark a value as estimated
// @Description  Flags the current value as estimated, citing the estimation decision that justifies it.
// @Tags         data-points
// @Accept       json
// @Produce      json
// @Param        id path string true "Data point ID"
// @Param        request body reportingapp.MarkEstimatedRequest true "Estimation decision reference"
// @Success      200 {object} APIResponse[reportingapp.DataPointResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/data-points/{id}/estimated [put]
func (h *DataPointHandler) MarkEstimated(c *gin.Context) {
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

	var req reportingapp.MarkEstimatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.dataPointService.MarkEstimated(c.Request.Context(), organizationID, dataPointID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AssignOwner godoc
// @Summary      Assign a data point owner
// @Tags         data-points
// @Accept       json
// @Produce      json
// @Param        id path string true "Data point ID"
// @Param        request body reportingapp.AssignDataPointOwnerRequest true "Owner assignment"
// @Success      200 {object} APIResponse[reportingapp.DataPointResponse]
// @Security     BearerAuth
// @Router       /reporting/data-points/{id}/owner [put]
func (h *DataPointHandler) AssignOwner(c *gin.Context) {
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

	var req reportingapp.AssignDataPointOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.dataPointService.AssignOwner(c.Request.Context(), organizationID, dataPointID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @Summary      Delete a data point
// @Description  Deletes a draft data point without a recorded value.
// @Tags         data-points
// @Param        id path string true "Data point ID"
// @Success      204
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/data-points/{id} [delete]
func (h *DataPointHandler) Delete(c *gin.Context) {
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

	if err := h.dataPointService.Delete(c.Request.Context(), organizationID, dataPointID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *DataPointHandler) transition(c *gin.Context, fn func(ctx context.Context, organizationID, dataPointID uuid.UUID) (*reportingapp.DataPointResponse, error)) {
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

	resp, err := fn(c.Request.Context(), organizationID, dataPointID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
