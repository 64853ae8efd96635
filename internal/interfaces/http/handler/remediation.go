package handler

import (
	"context"

	remediationapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/remediation"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/remediation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RemediationHandler handles remediation plan API endpoints
type RemediationHandler struct {
	BaseHandler
	planService *remediationapp.PlanService
}

// NewRemediationHandler creates a new RemediationHandler
func NewRemediationHandler(planService *remediationapp.PlanService) *RemediationHandler {
	return &RemediationHandler{planService: planService}
}

// Create godoc
// @Summary      Create a remediation plan
// @Description  Creates a draft plan, optionally attached to disclosure gaps.
// @Tags         remediation
// @Accept       json
// @Produce      json
// @Param        request body remediationapp.CreatePlanRequest true "Plan creation request"
// @Success      201 {object} APIResponse[remediationapp.PlanResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /remediation/plans [post]
func (h *RemediationHandler) Create(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req remediationapp.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	resp, err := h.planService.Create(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get a remediation plan
// @Tags         remediation
// @Produce      json
// @Param        id path string true "Plan ID"
// @Success      200 {object} APIResponse[remediationapp.PlanResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /remediation/plans/{id} [get]
func (h *RemediationHandler) GetByID(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	resp, err := h.planService.GetByID(c.Request.Context(), organizationID, planID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List remediation plans
// @Tags         remediation
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by status"
// @Param        owner_user_id query string false "Filter by owner"
// @Param        gap_id query string false "Filter by attached gap"
// @Param        overdue query bool false "Only overdue plans"
// @Success      200 {object} APIResponse[[]remediationapp.PlanResponse]
// @Security     BearerAuth
// @Router       /remediation/plans [get]
func (h *RemediationHandler) List(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	page, pageSize := parsePagination(c)
	filter := remediationapp.PlanListFilter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
		Search:   c.Query("search"),
	}
	var ok bool
	if filter.OwnerUserID, ok = parseUUIDQuery(c, "owner_user_id"); !ok {
		h.BadRequest(c, "Invalid owner_user_id")
		return
	}
	if filter.GapID, ok = parseUUIDQuery(c, "gap_id"); !ok {
		h.BadRequest(c, "Invalid gap_id")
		return
	}
	if raw := c.Query("status"); raw != "" {
		status := remediation.PlanStatus(raw)
		filter.Status = &status
	}
	if flag, ok := parseBoolQuery(c, "overdue"); ok && flag != nil {
		filter.Overdue = *flag
	}

	result, err := h.planService.List(c.Request.Context(), organizationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, page, pageSize)
}

// ListByGap godoc
// @Summary      List plans attached to a gap
// @Tags         remediation
// @Produce      json
// @Param        id path string true "Gap ID"
// @Success      200 {object} APIResponse[[]remediationapp.PlanResponse]
// @Security     BearerAuth
// @Router       /register/gaps/{id}/plans [get]
func (h *RemediationHandler) ListByGap(c *gin.Context) {
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

	items, err := h.planService.ListByGap(c.Request.Context(), organizationID, gapID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Update godoc
// @Summary      Update a remediation plan
// @Tags         remediation
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID"
// @Param        request body remediationapp.UpdatePlanRequest true "Fields to update"
// @Success      200 {object} APIResponse[remediationapp.PlanResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /remediation/plans/{id} [put]
func (h *RemediationHandler) Update(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	var req remediationapp.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.planService.Update(c.Request.Context(), organizationID, planID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetOwner godoc
// @Summary      Assign a plan owner
// @Tags         remediation
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID"
// @Param        request body remediationapp.SetOwnerRequest true "Owner assignment"
// @Success      200 {object} APIResponse[remediationapp.PlanResponse]
// @Security     BearerAuth
// @Router       /remediation/plans/{id}/owner [put]
func (h *RemediationHandler) SetOwner(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	var req remediationapp.SetOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.planService.SetOwner(c.Request.Context(), organizationID, planID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ClearOwner removes the owner assignment from a plan.
func (h *RemediationHandler) ClearOwner(c *gin.Context) {
	h.transition(c, h.planService.ClearOwner)
}

// SetDueDate godoc
// @Summary      Set a plan due date
// @Tags         remediation
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID"
// @Param        request body remediationapp.SetDueDateRequest true "Due date"
// @Success      200 {object} APIResponse[remediationapp.PlanResponse]
// @Security     BearerAuth
// @Router       /remediation/plans/{id}/due-date [put]
func (h *RemediationHandler) SetDueDate(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	var req remediationapp.SetDueDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.planService.SetDueDate(c.Request.Context(), organizationID, planID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ClearDueDate removes the due date from a plan.
func (h *RemediationHandler) ClearDueDate(c *gin.Context) {
	h.transition(c, h.planService.ClearDueDate)
}

// AttachGap godoc
// @Summary      Attach a gap to a plan
// @Tags         remediation
// @Produce      json
// @Param        id path string true "Plan ID"
// @Param        gapId path string true "Gap ID"
// @Success      200 {object} APIResponse[remediationapp.PlanResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /remediation/plans/{id}/gaps/{gapId} [put]
func (h *RemediationHandler) AttachGap(c *gin.Context) {
	h.gapLink(c, h.planService.AttachGap)
}

// DetachGap godoc
// @Summary      Detach a gap from a plan
// @Tags         remediation
// @Produce      json
// @Param        id path string true "Plan ID"
// @Param        gapId path string true "Gap ID"
// @Success      200 {object} APIResponse[remediationapp.PlanResponse]
// @Security     BearerAuth
// @Router       /remediation/plans/{id}/gaps/{gapId} [delete]
func (h *RemediationHandler) DetachGap(c *gin.Context) {
	h.gapLink(c, h.planService.DetachGap)
}

// AddItem godoc
// @Summary      Add an action item to a plan
// @Tags         remediation
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID"
// @Param        request body remediationapp.AddItemRequest true "Action item"
// @Success      200 {object} APIResponse[remediationapp.PlanResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /remediation/plans/{id}/items [post]
func (h *RemediationHandler) AddItem(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	var req remediationapp.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.planService.AddItem(c.Request.Context(), organizationID, planID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateItem godoc
// @Summary      Update an action item
// @Tags         remediation
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID"
// @Param        itemId path string true "Item ID"
// @Param        request body remediationapp.UpdateItemRequest true "New description"
// @Success      200 {object} APIResponse[remediationapp.PlanResponse]
// @Security     BearerAuth
// @Router       /remediation/plans/{id}/items/{itemId} [put]
func (h *RemediationHandler) UpdateItem(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req remediationapp.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.planService.UpdateItem(c.Request.Context(), organizationID, planID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AssignItem godoc
// @Summary      Assign an action item
// @Tags         remediation
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID"
// @Param        itemId path string true "Item ID"
// @Param        request body remediationapp.AssignItemRequest true "Assignee"
// @Success      200 {object} APIResponse[remediationapp.PlanResponse]
// @Security     BearerAuth
// @Router       /remediation/plans/{id}/items/{itemId}/assignee [put]
func (h *RemediationHandler) AssignItem(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req remediationapp.AssignItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.planService.AssignItem(c.Request.Context(), organizationID, planID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UnassignItem removes the assignee from an action item.
func (h *RemediationHandler) UnassignItem(c *gin.Context) {
	h.itemTransition(c, h.planService.UnassignItem)
}

// StartItem moves an action item to in progress.
func (h *RemediationHandler) StartItem(c *gin.Context) {
	h.itemTransition(c, h.planService.StartItem)
}

// ReopenItem returns a done action item to in progress.
func (h *RemediationHandler) ReopenItem(c *gin.Context) {
	h.itemTransition(c, h.planService.ReopenItem)
}

// RemoveItem deletes an action item from a plan.
func (h *RemediationHandler) RemoveItem(c *gin.Context) {
	h.itemTransition(c, h.planService.RemoveItem)
}

// CompleteItem godoc
// @Summary      Complete an action item
// @Tags         remediation
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID"
// @Param        itemId path string true "Item ID"
// @Param        request body remediationapp.CompleteItemRequest true "Completion note"
// @Success      200 {object} APIResponse[remediationapp.PlanResponse]
// @Security     BearerAuth
// @Router       /remediation/plans/{id}/items/{itemId}/complete [post]
func (h *RemediationHandler) CompleteItem(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req remediationapp.CompleteItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.planService.CompleteItem(c.Request.Context(), organizationID, planID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activate godoc
// @Summary      Activate a remediation plan
// @Description  Moves a draft plan with at least one action item to active.
// @Tags         remediation
// @Produce      json
// @Param        id path string true "Plan ID"
// @Success      200 {object} APIResponse[remediationapp.PlanResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /remediation/plans/{id}/activate [post]
func (h *RemediationHandler) Activate(c *gin.Context) {
	h.transition(c, h.planService.Activate)
}

// Complete godoc
// @Summary      Complete a remediation plan
// @Description  Completes the plan and resolves its attached gaps with the given note.
// @Tags         remediation
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID"
// @Param        request body remediationapp.CompletePlanRequest true "Resolution note"
// @Success      200 {object} APIResponse[remediationapp.PlanResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /remediation/plans/{id}/complete [post]
func (h *RemediationHandler) Complete(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	var req remediationapp.CompletePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.CompletedBy = &userID
	}

	resp, err := h.planService.Complete(c.Request.Context(), organizationID, planID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel godoc
// @Summary      Cancel a remediation plan
// @Tags         remediation
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID"
// @Param        request body remediationapp.CancelPlanRequest true "Cancellation reason"
// @Success      200 {object} APIResponse[remediationapp.PlanResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /remediation/plans/{id}/cancel [post]
func (h *RemediationHandler) Cancel(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	var req remediationapp.CancelPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.planService.Cancel(c.Request.Context(), organizationID, planID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @Summary      Delete a remediation plan
// @Description  Deletes a draft or cancelled plan.
// @Tags         remediation
// @Param        id path string true "Plan ID"
// @Success      204
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /remediation/plans/{id} [delete]
func (h *RemediationHandler) Delete(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	if err := h.planService.Delete(c.Request.Context(), organizationID, planID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *RemediationHandler) transition(c *gin.Context, fn func(ctx context.Context, organizationID, planID uuid.UUID) (*remediationapp.PlanResponse, error)) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	resp, err := fn(c.Request.Context(), organizationID, planID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *RemediationHandler) gapLink(c *gin.Context, fn func(ctx context.Context, organizationID, planID, gapID uuid.UUID) (*remediationapp.PlanResponse, error)) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}
	gapID, ok := parseUUIDParam(c, "gapId")
	if !ok {
		h.BadRequest(c, "Invalid gap ID")
		return
	}

	resp, err := fn(c.Request.Context(), organizationID, planID, gapID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *RemediationHandler) itemTransition(c *gin.Context, fn func(ctx context.Context, organizationID, planID, itemID uuid.UUID) (*remediationapp.PlanResponse, error)) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	resp, err := fn(c.Request.Context(), organizationID, planID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
