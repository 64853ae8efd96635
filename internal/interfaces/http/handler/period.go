package handler

import (
	"context"

	reportingapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PeriodHandler handles reporting period API endpoints
type PeriodHandler struct {
	BaseHandler
	periodService *reportingapp.PeriodService
}

// NewPeriodHandler creates a new PeriodHandler
func NewPeriodHandler(periodService *reportingapp.PeriodService) *PeriodHandler {
	return &PeriodHandler{periodService: periodService}
}

// Create godoc
// @Summary      Create a reporting period
// @Description  Creates a new reporting period in draft status. Labels are unique per organization.
// @Tags         periods
// @Accept       json
// @Produce      json
// @Param        request body reportingapp.CreatePeriodRequest true "Period creation request"
// @Success      201 {object} APIResponse[reportingapp.PeriodResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/periods [post]
func (h *PeriodHandler) Create(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req reportingapp.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	resp, err := h.periodService.Create(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get a reporting period
// @Tags         periods
// @Produce      json
// @Param        id path string true "Period ID"
// @Success      200 {object} APIResponse[reportingapp.PeriodResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/periods/{id} [get]
func (h *PeriodHandler) GetByID(c *gin.Context) {
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

	resp, err := h.periodService.GetByID(c.Request.Context(), organizationID, periodID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetOpen godoc
// @Summary      Get the currently open period
// @Tags         periods
// @Produce      json
// @Success      200 {object} APIResponse[reportingapp.PeriodResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/periods/open [get]
func (h *PeriodHandler) GetOpen(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	resp, err := h.periodService.GetOpen(c.Request.Context(), organizationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List reporting periods
// @Tags         periods
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by status"
// @Param        search query string false "Search in label and description"
// @Success      200 {object} APIResponse[[]reportingapp.PeriodResponse]
// @Security     BearerAuth
// @Router       /reporting/periods [get]
func (h *PeriodHandler) List(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	page, pageSize := parsePagination(c)
	filter := reportingapp.PeriodListFilter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
		Search:   c.Query("search"),
	}
	if raw := c.Query("status"); raw != "" {
		status := reporting.PeriodStatus(raw)
		filter.Status = &status
	}

	items, total, err := h.periodService.List(c.Request.Context(), organizationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// Update godoc
// @Summary      Update a reporting period
// @Description  Updates label, description or date range. Only draft and open periods can change.
// @Tags         periods
// @Accept       json
// @Produce      json
// @Param        id path string true "Period ID"
// @Param        request body reportingapp.UpdatePeriodRequest true "Fields to update"
// @Success      200 {object} APIResponse[reportingapp.PeriodResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/periods/{id} [put]
func (h *PeriodHandler) Update(c *gin.Context) {
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

	var req reportingapp.UpdatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.periodService.Update(c.Request.Context(), organizationID, periodID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Open transitions a draft period to open for data collection.
func (h *PeriodHandler) Open(c *gin.Context) {
	h.transition(c, h.periodService.Open)
}

// StartReview moves an open period into review.
func (h *PeriodHandler) StartReview(c *gin.Context) {
	h.transition(c, h.periodService.StartReview)
}

// BackToOpen returns a period in review to open.
func (h *PeriodHandler) BackToOpen(c *gin.Context) {
	h.transition(c, h.periodService.BackToOpen)
}

// Close closes a period in review, freezing its content.
func (h *PeriodHandler) Close(c *gin.Context) {
	h.transition(c, h.periodService.Close)
}

// Archive archives a closed period.
func (h *PeriodHandler) Archive(c *gin.Context) {
	h.transition(c, h.periodService.Archive)
}

// Reopen godoc
// @Summary      Reopen a closed period
// @Description  Returns a closed period to open status. A reason is required and recorded.
// @Tags         periods
// @Accept       json
// @Produce      json
// @Param        id path string true "Period ID"
// @Param        request body reportingapp.ReopenPeriodRequest true "Reopen reason"
// @Success      200 {object} APIResponse[reportingapp.PeriodResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/periods/{id}/reopen [post]
func (h *PeriodHandler) Reopen(c *gin.Context) {
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

	var req reportingapp.ReopenPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.periodService.Reopen(c.Request.Context(), organizationID, periodID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @Summary      Delete a reporting period
// @Description  Deletes a draft period. Periods with content or past draft status cannot be deleted.
// @Tags         periods
// @Param        id path string true "Period ID"
// @Success      204
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/periods/{id} [delete]
func (h *PeriodHandler) Delete(c *gin.Context) {
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

	if err := h.periodService.Delete(c.Request.Context(), organizationID, periodID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *PeriodHandler) transition(c *gin.Context, fn func(ctx context.Context, organizationID, periodID uuid.UUID) (*reportingapp.PeriodResponse, error)) {
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

	resp, err := fn(c.Request.Context(), organizationID, periodID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
