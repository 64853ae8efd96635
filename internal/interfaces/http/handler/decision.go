package handler

import (
	"context"

	registerapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/register"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/register"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DecisionHandler handles estimation decision API endpoints
type DecisionHandler struct {
	BaseHandler
	decisionService *registerapp.DecisionService
}

// NewDecisionHandler creates a new DecisionHandler
func NewDecisionHandler(decisionService *registerapp.DecisionService) *DecisionHandler {
	return &DecisionHandler{decisionService: decisionService}
}

// Create godoc
// @Summary      Create an estimation decision
// @Description  Records the method and rationale behind an estimated value.
// @Tags         decisions
// @Accept       json
// @Produce      json
// @Param        request body registerapp.CreateDecisionRequest true "Decision creation request"
// @Success      201 {object} APIResponse[registerapp.DecisionResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /register/decisions [post]
func (h *DecisionHandler) Create(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req registerapp.CreateDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	resp, err := h.decisionService.Create(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get an estimation decision
// @Tags         decisions
// @Produce      json
// @Param        id path string true "Decision ID"
// @Success      200 {object} APIResponse[registerapp.DecisionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /register/decisions/{id} [get]
func (h *DecisionHandler) GetByID(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	decisionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid decision ID")
		return
	}

	resp, err := h.decisionService.GetByID(c.Request.Context(), organizationID, decisionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List estimation decisions
// @Tags         decisions
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        confidence query string false "Filter by confidence level"
// @Param        method query string false "Filter by method"
// @Param        approver_id query string false "Filter by approver"
// @Success      200 {object} APIResponse[[]registerapp.DecisionResponse]
// @Security     BearerAuth
// @Router       /register/decisions [get]
func (h *DecisionHandler) List(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	page, pageSize := parsePagination(c)
	filter := registerapp.DecisionListFilter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
		Search:   c.Query("search"),
		Method:   c.Query("method"),
	}
	var ok bool
	if filter.ApproverID, ok = parseUUIDQuery(c, "approver_id"); !ok {
		h.BadRequest(c, "Invalid approver_id")
		return
	}
	if raw := c.Query("confidence"); raw != "" {
		confidence := register.ConfidenceLevel(raw)
		filter.Confidence = &confidence
	}

	items, total, err := h.decisionService.List(c.Request.Context(), organizationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// ListByDataPoint godoc
// @Summary      List decisions linked to a data point
// @Tags         decisions
// @Produce      json
// @Param        id path string true "Data point ID"
// @Success      200 {object} APIResponse[[]registerapp.DecisionResponse]
// @Security     BearerAuth
// @Router       /reporting/data-points/{id}/decisions [get]
func (h *DecisionHandler) ListByDataPoint(c *gin.Context) {
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

	items, err := h.decisionService.ListByDataPoint(c.Request.Context(), organizationID, dataPointID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Update godoc
// @Summary      Update an estimation decision
// @Tags         decisions
// @Accept       json
// @Produce      json
// @Param        id path string true "Decision ID"
// @Param        request body registerapp.UpdateDecisionRequest true "Fields to update"
// @Success      200 {object} APIResponse[registerapp.DecisionResponse]
// @Security     BearerAuth
// @Router       /register/decisions/{id} [put]
func (h *DecisionHandler) Update(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	decisionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid decision ID")
		return
	}

	var req registerapp.UpdateDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.decisionService.Update(c.Request.Context(), organizationID, decisionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetApprover godoc
// @Summary      Record the decision approver
// @Tags         decisions
// @Accept       json
// @Produce      json
// @Param        id path string true "Decision ID"
// @Param        request body registerapp.SetDecisionApproverRequest true "Approver"
// @Success      200 {object} APIResponse[registerapp.DecisionResponse]
// @Security     BearerAuth
// @Router       /register/decisions/{id}/approver [put]
func (h *DecisionHandler) SetApprover(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	decisionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid decision ID")
		return
	}

	var req registerapp.SetDecisionApproverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.decisionService.SetApprover(c.Request.Context(), organizationID, decisionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// LinkDataPoint godoc
// @Summary      Link a decision to a data point
// @Tags         decisions
// @Produce      json
// @Param        id path string true "Decision ID"
// @Param        dataPointId path string true "Data point ID"
// @Success      200 {object} APIResponse[registerapp.DecisionResponse]
// @Security     BearerAuth
// @Router       /register/decisions/{id}/data-points/{dataPointId} [put]
func (h *DecisionHandler) LinkDataPoint(c *gin.Context) {
	h.link(c, h.decisionService.LinkDataPoint)
}

// UnlinkDataPoint godoc
// @Summary      Unlink a decision from a data point
// @Tags         decisions
// @Produce      json
// @Param        id path string true "Decision ID"
// @Param        dataPointId path string true "Data point ID"
// @Success      200 {object} APIResponse[registerapp.DecisionResponse]
// @Security     BearerAuth
// @Router       /register/decisions/{id}/data-points/{dataPointId} [delete]
func (h *DecisionHandler) UnlinkDataPoint(c *gin.Context) {
	h.link(c, h.decisionService.UnlinkDataPoint)
}

// Delete godoc
// @Summary      Delete an estimation decision
// @Description  Deletes a decision not cited by any estimated data point.
// @Tags         decisions
// @Param        id path string true "Decision ID"
// @Success      204
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /register/decisions/{id} [delete]
func (h *DecisionHandler) Delete(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	decisionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid decision ID")
		return
	}

	if err := h.decisionService.Delete(c.Request.Context(), organizationID, decisionID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *DecisionHandler) link(c *gin.Context, fn func(ctx context.Context, organizationID, decisionID, dataPointID uuid.UUID) (*registerapp.DecisionResponse, error)) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	decisionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid decision ID")
		return
	}
	dataPointID, ok := parseUUIDParam(c, "dataPointId")
	if !ok {
		h.BadRequest(c, "Invalid data point ID")
		return
	}

	resp, err := fn(c.Request.Context(), organizationID, decisionID, dataPointID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
