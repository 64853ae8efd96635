package handler

import (
	rolloverapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/rollover"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/rollover"
	"github.com/gin-gonic/gin"
)

// RolloverHandler handles period rollover API endpoints
type RolloverHandler struct {
	BaseHandler
	rolloverService *rolloverapp.RolloverService
}

// NewRolloverHandler creates a new RolloverHandler
func NewRolloverHandler(rolloverService *rolloverapp.RolloverService) *RolloverHandler {
	return &RolloverHandler{rolloverService: rolloverService}
}

// Trigger godoc
// @Summary      Trigger a period rollover
// @Description  Copies structure and carry-forward content from a closed source period into an open target period. Re-posting the same idempotency key returns the original run.
// @Tags         rollover
// @Accept       json
// @Produce      json
// @Param        request body rolloverapp.TriggerRolloverRequest true "Rollover trigger request"
// @Success      201 {object} APIResponse[rolloverapp.RunResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rollover/runs [post]
func (h *RolloverHandler) Trigger(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req rolloverapp.TriggerRolloverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.TriggeredBy = &userID
	}

	resp, err := h.rolloverService.Trigger(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Resume godoc
// @Summary      Resume a failed rollover run
// @Description  Re-runs the remaining phases of a failed run. Already copied items are skipped.
// @Tags         rollover
// @Produce      json
// @Param        id path string true "Run ID"
// @Success      200 {object} APIResponse[rolloverapp.RunResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rollover/runs/{id}/resume [post]
func (h *RolloverHandler) Resume(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	runID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid run ID")
		return
	}

	resp, err := h.rolloverService.Resume(c.Request.Context(), organizationID, runID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetRun godoc
// @Summary      Get a rollover run
// @Tags         rollover
// @Produce      json
// @Param        id path string true "Run ID"
// @Success      200 {object} APIResponse[rolloverapp.RunResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rollover/runs/{id} [get]
func (h *RolloverHandler) GetRun(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	runID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid run ID")
		return
	}

	resp, err := h.rolloverService.GetRun(c.Request.Context(), organizationID, runID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListRuns godoc
// @Summary      List rollover runs
// @Tags         rollover
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by status"
// @Param        source_period_id query string false "Filter by source period"
// @Param        target_period_id query string false "Filter by target period"
// @Success      200 {object} APIResponse[[]rolloverapp.RunResponse]
// @Security     BearerAuth
// @Router       /rollover/runs [get]
func (h *RolloverHandler) ListRuns(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	page, pageSize := parsePagination(c)
	filter := rolloverapp.RunListFilter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
	}
	var ok bool
	if filter.SourcePeriodID, ok = parseUUIDQuery(c, "source_period_id"); !ok {
		h.BadRequest(c, "Invalid source_period_id")
		return
	}
	if filter.TargetPeriodID, ok = parseUUIDQuery(c, "target_period_id"); !ok {
		h.BadRequest(c, "Invalid target_period_id")
		return
	}
	if raw := c.Query("status"); raw != "" {
		status := rollover.RolloverStatus(raw)
		filter.Status = &status
	}

	result, err := h.rolloverService.ListRuns(c.Request.Context(), organizationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, page, pageSize)
}

// GetReconciliation godoc
// @Summary      Get a run's reconciliation summary
// @Description  Returns per-outcome and per-category counts for the items of a run.
// @Tags         rollover
// @Produce      json
// @Param        id path string true "Run ID"
// @Success      200 {object} APIResponse[rolloverapp.ReconciliationResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rollover/runs/{id}/reconciliation [get]
func (h *RolloverHandler) GetReconciliation(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	runID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid run ID")
		return
	}

	resp, err := h.rolloverService.GetReconciliation(c.Request.Context(), organizationID, runID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListItems godoc
// @Summary      List the items of a rollover run
// @Tags         rollover
// @Produce      json
// @Param        id path string true "Run ID"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        category query string false "Filter by item category"
// @Param        outcome query string false "Filter by item outcome"
// @Success      200 {object} APIResponse[[]rolloverapp.ItemResponse]
// @Security     BearerAuth
// @Router       /rollover/runs/{id}/items [get]
func (h *RolloverHandler) ListItems(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	runID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid run ID")
		return
	}

	page, pageSize := parsePagination(c)
	filter := rolloverapp.ItemListFilter{
		Page:     page,
		PageSize: pageSize,
		Category: c.Query("category"),
		Outcome:  c.Query("outcome"),
	}

	result, err := h.rolloverService.ListItems(c.Request.Context(), organizationID, runID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, page, pageSize)
}
