package handler

import (
	approvalapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/approval"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/approval"
	"github.com/gin-gonic/gin"
)

// ApprovalHandler handles approval workflow API endpoints
type ApprovalHandler struct {
	BaseHandler
	approvalService *approvalapp.ApprovalService
}

// NewApprovalHandler creates a new ApprovalHandler
func NewApprovalHandler(approvalService *approvalapp.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

// Request godoc
// @Summary      Request approval
// @Description  Opens a pending approval request for a section or period in review.
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Param        request body approvalapp.RequestApprovalRequest true "Approval request"
// @Success      201 {object} APIResponse[approvalapp.ApprovalResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /approvals [post]
func (h *ApprovalHandler) Request(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req approvalapp.RequestApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.RequestedBy = &userID
	}

	resp, err := h.approvalService.Request(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get an approval request
// @Tags         approvals
// @Produce      json
// @Param        id path string true "Approval request ID"
// @Success      200 {object} APIResponse[approvalapp.ApprovalResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /approvals/{id} [get]
func (h *ApprovalHandler) GetByID(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	approvalID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid approval request ID")
		return
	}

	resp, err := h.approvalService.GetByID(c.Request.Context(), organizationID, approvalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List approval requests
// @Tags         approvals
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by status"
// @Param        target_kind query string false "Filter by target kind (section, period)"
// @Param        period_id query string false "Filter by period"
// @Param        requested_by query string false "Filter by requester"
// @Param        approver_user_id query string false "Filter by approver"
// @Success      200 {object} APIResponse[[]approvalapp.ApprovalResponse]
// @Security     BearerAuth
// @Router       /approvals [get]
func (h *ApprovalHandler) List(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	page, pageSize := parsePagination(c)
	filter := approvalapp.ApprovalListFilter{
		Page:       page,
		PageSize:   pageSize,
		OrderBy:    c.Query("order_by"),
		OrderDir:   c.Query("order_dir"),
		TargetKind: c.Query("target_kind"),
	}
	var ok bool
	if filter.PeriodID, ok = parseUUIDQuery(c, "period_id"); !ok {
		h.BadRequest(c, "Invalid period_id")
		return
	}
	if filter.RequestedBy, ok = parseUUIDQuery(c, "requested_by"); !ok {
		h.BadRequest(c, "Invalid requested_by")
		return
	}
	if filter.ApproverUserID, ok = parseUUIDQuery(c, "approver_user_id"); !ok {
		h.BadRequest(c, "Invalid approver_user_id")
		return
	}
	if raw := c.Query("status"); raw != "" {
		status := approval.ApprovalStatus(raw)
		filter.Status = &status
	}

	result, err := h.approvalService.List(c.Request.Context(), organizationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, page, pageSize)
}

// ListByTarget godoc
// @Summary      List approval history of a target
// @Tags         approvals
// @Produce      json
// @Param        targetKind path string true "Target kind (section, period)"
// @Param        targetId path string true "Target ID"
// @Success      200 {object} APIResponse[[]approvalapp.ApprovalResponse]
// @Security     BearerAuth
// @Router       /approvals/targets/{targetKind}/{targetId} [get]
func (h *ApprovalHandler) ListByTarget(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	targetID, ok := parseUUIDParam(c, "targetId")
	if !ok {
		h.BadRequest(c, "Invalid target ID")
		return
	}

	items, err := h.approvalService.ListByTarget(c.Request.Context(), organizationID, c.Param("targetKind"), targetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// GetPendingByTarget godoc
// @Summary      Get the pending request of a target
// @Tags         approvals
// @Produce      json
// @Param        targetKind path string true "Target kind (section, period)"
// @Param        targetId path string true "Target ID"
// @Success      200 {object} APIResponse[approvalapp.ApprovalResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /approvals/targets/{targetKind}/{targetId}/pending [get]
func (h *ApprovalHandler) GetPendingByTarget(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	targetID, ok := parseUUIDParam(c, "targetId")
	if !ok {
		h.BadRequest(c, "Invalid target ID")
		return
	}

	resp, err := h.approvalService.GetPendingByTarget(c.Request.Context(), organizationID, c.Param("targetKind"), targetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetPendingForApprover godoc
// @Summary      Get an approver's pending queue
// @Description  Returns the requests awaiting a decision from the current user.
// @Tags         approvals
// @Produce      json
// @Success      200 {object} APIResponse[approvalapp.PendingSummaryResponse]
// @Security     BearerAuth
// @Router       /approvals/pending [get]
func (h *ApprovalHandler) GetPendingForApprover(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	resp, err := h.approvalService.GetPendingForApprover(c.Request.Context(), organizationID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reassign godoc
// @Summary      Reassign a pending request
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Param        id path string true "Approval request ID"
// @Param        request body approvalapp.ReassignApprovalRequest true "New approver"
// @Success      200 {object} APIResponse[approvalapp.ApprovalResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /approvals/{id}/reassign [post]
func (h *ApprovalHandler) Reassign(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	approvalID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid approval request ID")
		return
	}

	var req approvalapp.ReassignApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.approvalService.Reassign(c.Request.Context(), organizationID, approvalID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Approve godoc
// @Summary      Approve a pending request
// @Description  Approves the request and advances the target to its approved state.
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Param        id path string true "Approval request ID"
// @Param        request body approvalapp.ApproveRequest true "Optional note"
// @Success      200 {object} APIResponse[approvalapp.ApprovalResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /approvals/{id}/approve [post]
func (h *ApprovalHandler) Approve(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	approvalID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid approval request ID")
		return
	}

	var req approvalapp.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.DecidedBy = &userID
	}

	resp, err := h.approvalService.Approve(c.Request.Context(), organizationID, approvalID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reject godoc
// @Summary      Reject a pending request
// @Description  Rejects the request and sends the target back to its working state.
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Param        id path string true "Approval request ID"
// @Param        request body approvalapp.RejectRequest true "Rejection reason"
// @Success      200 {object} APIResponse[approvalapp.ApprovalResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /approvals/{id}/reject [post]
func (h *ApprovalHandler) Reject(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	approvalID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid approval request ID")
		return
	}

	var req approvalapp.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.DecidedBy = &userID
	}

	resp, err := h.approvalService.Reject(c.Request.Context(), organizationID, approvalID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel godoc
// @Summary      Withdraw a pending request
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Param        id path string true "Approval request ID"
// @Param        request body approvalapp.CancelApprovalRequest true "Optional note"
// @Success      200 {object} APIResponse[approvalapp.ApprovalResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /approvals/{id}/cancel [post]
func (h *ApprovalHandler) Cancel(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	approvalID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid approval request ID")
		return
	}

	var req approvalapp.CancelApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.CancelledBy = &userID
	}

	resp, err := h.approvalService.Cancel(c.Request.Context(), organizationID, approvalID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CountPending godoc
// @Summary      Count pending approval requests
// @Tags         approvals
// @Produce      json
// @Success      200 {object} APIResponse[CountData]
// @Security     BearerAuth
// @Router       /approvals/pending/count [get]
func (h *ApprovalHandler) CountPending(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	count, err := h.approvalService.CountPending(c.Request.Context(), organizationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountData{Count: count})
}
