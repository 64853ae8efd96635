package handler

import (
	"context"

	registerapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/register"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/register"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AssumptionHandler handles assumption register API endpoints
type AssumptionHandler struct {
	BaseHandler
	assumptionService *registerapp.AssumptionService
}

// NewAssumptionHandler creates a new AssumptionHandler
func NewAssumptionHandler(assumptionService *registerapp.AssumptionService) *AssumptionHandler {
	return &AssumptionHandler{assumptionService: assumptionService}
}

// SetAssumptionOwnerRequest is the request body for assigning an assumption owner
type SetAssumptionOwnerRequest struct {
	OwnerUserID uuid.UUID `json:"owner_user_id" binding:"required"`
}

// Create godoc
// @Summary      Create an assumption
// @Description  Records a reporting assumption, optionally linked to data points.
// @Tags         assumptions
// @Accept       json
// @Produce      json
// @Param        request body registerapp.CreateAssumptionRequest true "Assumption creation request"
// @Success      201 {object} APIResponse[registerapp.AssumptionResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /register/assumptions [post]
func (h *AssumptionHandler) Create(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req registerapp.CreateAssumptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	resp, err := h.assumptionService.Create(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get an assumption
// @Tags         assumptions
// @Produce      json
// @Param        id path string true "Assumption ID"
// @Success      200 {object} APIResponse[registerapp.AssumptionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /register/assumptions/{id} [get]
func (h *AssumptionHandler) GetByID(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	assumptionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid assumption ID")
		return
	}

	resp, err := h.assumptionService.GetByID(c.Request.Context(), organizationID, assumptionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List assumptions
// @Tags         assumptions
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by status"
// @Param        category query string false "Filter by category"
// @Param        owner_id query string false "Filter by owner"
// @Param        due_for_review query bool false "Only assumptions past their review date"
// @Success      200 {object} APIResponse[[]registerapp.AssumptionResponse]
// @Security     BearerAuth
// @Router       /register/assumptions [get]
func (h *AssumptionHandler) List(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	page, pageSize := parsePagination(c)
	filter := registerapp.AssumptionListFilter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
		Search:   c.Query("search"),
		Category: c.Query("category"),
	}
	var ok bool
	if filter.OwnerID, ok = parseUUIDQuery(c, "owner_id"); !ok {
		h.BadRequest(c, "Invalid owner_id")
		return
	}
	if raw := c.Query("status"); raw != "" {
		status := register.AssumptionStatus(raw)
		filter.Status = &status
	}
	if flag, ok := parseBoolQuery(c, "due_for_review"); ok && flag != nil {
		filter.DueForReview = *flag
	}

	items, total, err := h.assumptionService.List(c.Request.Context(), organizationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// ListByDataPoint godoc
// @Summary      List assumptions linked to a data point
// @Tags         assumptions
// @Produce      json
// @Param        id path string true "Data point ID"
// @Success      200 {object} APIResponse[[]registerapp.AssumptionResponse]
// @Security     BearerAuth
// @Router       /reporting/data-points/{id}/assumptions [get]
func (h *AssumptionHandler) ListByDataPoint(c *gin.Context) {
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

	items, err := h.assumptionService.ListByDataPoint(c.Request.Context(), organizationID, dataPointID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Update godoc
// @Summary      Update an assumption
// @Tags         assumptions
// @Accept       json
// @Produce      json
// @Param        id path string true "Assumption ID"
// @Param        request body registerapp.UpdateAssumptionRequest true "Fields to update"
// @Success      200 {object} APIResponse[registerapp.AssumptionResponse]
// @Security     BearerAuth
// @Router       /register/assumptions/{id} [put]
func (h *AssumptionHandler) Update(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	assumptionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid assumption ID")
		return
	}

	var req registerapp.UpdateAssumptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.assumptionService.Update(c.Request.Context(), organizationID, assumptionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetOwner godoc
// @Summary      Assign an assumption owner
// @Tags         assumptions
// @Accept       json
// @Produce      json
// @Param        id path string true "Assumption ID"
// @Param        request body SetAssumptionOwnerRequest true "Owner assignment"
// @Success      200 {object} APIResponse[registerapp.AssumptionResponse]
// @Security     BearerAuth
// @Router       /register/assumptions/{id}/owner [put]
func (h *AssumptionHandler) SetOwner(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	assumptionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid assumption ID")
		return
	}

	var req SetAssumptionOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.assumptionService.SetOwner(c.Request.Context(), organizationID, assumptionID, req.OwnerUserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetReviewBy godoc
// @Summary      Set an assumption review date
// @Tags         assumptions
// @Accept       json
// @Produce      json
// @Param        id path string true "Assumption ID"
// @Param        request body registerapp.SetAssumptionReviewRequest true "Review date"
// @Success      200 {object} APIResponse[registerapp.AssumptionResponse]
// @Security     BearerAuth
// @Router       /register/assumptions/{id}/review-by [put]
func (h *AssumptionHandler) SetReviewBy(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	assumptionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid assumption ID")
		return
	}

	var req registerapp.SetAssumptionReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.assumptionService.SetReviewBy(c.Request.Context(), organizationID, assumptionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ClearReviewBy removes the review date from an assumption.
func (h *AssumptionHandler) ClearReviewBy(c *gin.Context) {
	h.transition(c, h.assumptionService.ClearReviewBy)
}

// Retire marks an assumption as no longer applicable.
func (h *AssumptionHandler) Retire(c *gin.Context) {
	h.transition(c, h.assumptionService.Retire)
}

// Reactivate restores a retired assumption.
func (h *AssumptionHandler) Reactivate(c *gin.Context) {
	h.transition(c, h.assumptionService.Reactivate)
}

// LinkDataPoint godoc
// @Summary      Link an assumption to a data point
// @Tags         assumptions
// @Produce      json
// @Param        id path string true "Assumption ID"
// @Param        dataPointId path string true "Data point ID"
// @Success      200 {object} APIResponse[registerapp.AssumptionResponse]
// @Security     BearerAuth
// @Router       /register/assumptions/{id}/data-points/{dataPointId} [put]
func (h *AssumptionHandler) LinkDataPoint(c *gin.Context) {
	h.link(c, h.assumptionService.LinkDataPoint)
}

// UnlinkDataPoint godoc
// @Summary      Unlink an assumption from a data point
// @Tags         assumptions
// @Produce      json
// @Param        id path string true "Assumption ID"
// @Param        dataPointId path string true "Data point ID"
// @Success      200 {object} APIResponse[registerapp.AssumptionResponse]
// @Security     BearerAuth
// @Router       /register/assumptions/{id}/data-points/{dataPointId} [delete]
func (h *AssumptionHandler) UnlinkDataPoint(c *gin.Context) {
	h.link(c, h.assumptionService.UnlinkDataPoint)
}

// Delete godoc
// @Summary      Delete an assumption
// @Tags         assumptions
// @Param        id path string true "Assumption ID"
// @Success      204
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /register/assumptions/{id} [delete]
func (h *AssumptionHandler) Delete(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	assumptionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid assumption ID")
		return
	}

	if err := h.assumptionService.Delete(c.Request.Context(), organizationID, assumptionID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *AssumptionHandler) transition(c *gin.Context, fn func(ctx context.Context, organizationID, assumptionID uuid.UUID) (*registerapp.AssumptionResponse, error)) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	assumptionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid assumption ID")
		return
	}

	resp, err := fn(c.Request.Context(), organizationID, assumptionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *AssumptionHandler) link(c *gin.Context, fn func(ctx context.Context, organizationID, assumptionID, dataPointID uuid.UUID) (*registerapp.AssumptionResponse, error)) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	assumptionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid assumption ID")
		return
	}
	dataPointID, ok := parseUUIDParam(c, "dataPointId")
	if !ok {
		h.BadRequest(c, "Invalid data point ID")
		return
	}

	resp, err := fn(c.Request.Context(), organizationID, assumptionID, dataPointID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
