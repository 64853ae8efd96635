package handler

import (
	"context"

	reportingapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SectionHandler handles report section API endpoints
type SectionHandler struct {
	BaseHandler
	sectionService *reportingapp.SectionService
}

// NewSectionHandler creates a new SectionHandler
func NewSectionHandler(sectionService *reportingapp.SectionService) *SectionHandler {
	return &SectionHandler{sectionService: sectionService}
}

// Create godoc
// @Summary      Create a report section
// @Description  Creates a section in the report structure. Codes are unique within a period.
// @Tags         sections
// @Accept       json
// @Produce      json
// @Param        request body reportingapp.CreateSectionRequest true "Section creation request"
// @Success      201 {object} APIResponse[reportingapp.SectionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/sections [post]
func (h *SectionHandler) Create(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req reportingapp.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	resp, err := h.sectionService.Create(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get a report section
// @Tags         sections
// @Produce      json
// @Param        id path string true "Section ID"
// @Success      200 {object} APIResponse[reportingapp.SectionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/sections/{id} [get]
func (h *SectionHandler) GetByID(c *gin.Context) {
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

	resp, err := h.sectionService.GetByID(c.Request.Context(), organizationID, sectionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetTree godoc
// @Summary      Get the section tree for a period
// @Description  Returns the full section hierarchy of a period as nested nodes.
// @Tags         sections
// @Produce      json
// @Param        id path string true "Period ID"
// @Success      200 {object} APIResponse[[]reportingapp.SectionTreeNode]
// @Security     BearerAuth
// @Router       /reporting/periods/{id}/sections/tree [get]
func (h *SectionHandler) GetTree(c *gin.Context) {
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

	tree, err := h.sectionService.GetTree(c.Request.Context(), organizationID, periodID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tree)
}

// List godoc
// @Summary      List report sections
// @Tags         sections
// @Produce      json
// @Param        period_id query string false "Filter by period"
// @Param        parent_id query string false "Filter by parent section"
// @Param        status query string false "Filter by status"
// @Param        owner_id query string false "Filter by owner"
// @Param        active_only query bool false "Only active sections"
// @Success      200 {object} APIResponse[[]reportingapp.SectionResponse]
// @Security     BearerAuth
// @Router       /reporting/sections [get]
func (h *SectionHandler) List(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	page, pageSize := parsePagination(c)
	filter := reportingapp.SectionListFilter{
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
	if filter.ParentID, ok = parseUUIDQuery(c, "parent_id"); !ok {
		h.BadRequest(c, "Invalid parent_id")
		return
	}
	if filter.OwnerID, ok = parseUUIDQuery(c, "owner_id"); !ok {
		h.BadRequest(c, "Invalid owner_id")
		return
	}
	if raw := c.Query("status"); raw != "" {
		status := reporting.SectionStatus(raw)
		filter.Status = &status
	}
	if activeOnly, ok := parseBoolQuery(c, "active_only"); ok && activeOnly != nil {
		filter.ActiveOnly = *activeOnly
	}

	items, err := h.sectionService.List(c.Request.Context(), organizationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Update godoc
// @Summary      Update a report section
// @Tags         sections
// @Accept       json
// @Produce      json
// @Param        id path string true "Section ID"
// @Param        request body reportingapp.UpdateSectionRequest true "Fields to update"
// @Success      200 {object} APIResponse[reportingapp.SectionResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/sections/{id} [put]
func (h *SectionHandler) Update(c *gin.Context) {
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

	var req reportingapp.UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.sectionService.Update(c.Request.Context(), organizationID, sectionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Move godoc
// @Summary      Move a section to a new parent
// @Description  Reparents a section within the same period. Cycles are rejected.
// @Tags         sections
// @Accept       json
// @Produce      json
// @Param        id path string true "Section ID"
// @Param        request body reportingapp.MoveSectionRequest true "New parent, null for root"
// @Success      200 {object} APIResponse[reportingapp.SectionResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/sections/{id}/move [post]
func (h *SectionHandler) Move(c *gin.Context) {
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

	var req reportingapp.MoveSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.sectionService.Move(c.Request.Context(), organizationID, sectionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AssignOwner godoc
// @Summary      Assign a section owner
// @Tags         sections
// @Accept       json
// @Produce      json
// @Param        id path string true "Section ID"
// @Param        request body reportingapp.AssignSectionOwnerRequest true "Owner assignment"
// @Success      200 {object} APIResponse[reportingapp.SectionResponse]
// @Security     BearerAuth
// @Router       /reporting/sections/{id}/owner [put]
func (h *SectionHandler) AssignOwner(c *gin.Context) {
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

	var req reportingapp.AssignSectionOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.sectionService.AssignOwner(c.Request.Context(), organizationID, sectionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ClearOwner removes the owner assignment from a section.
func (h *SectionHandler) ClearOwner(c *gin.Context) {
	h.transition(c, h.sectionService.ClearOwner)
}

// Start moves a section from not started to in progress.
func (h *SectionHandler) Start(c *gin.Context) {
	h.transition(c, h.sectionService.Start)
}

// SubmitForReview submits an in-progress section for review.
func (h *SectionHandler) SubmitForReview(c *gin.Context) {
	h.transition(c, h.sectionService.SubmitForReview)
}

// SendBack returns a section in review to in progress.
func (h *SectionHandler) SendBack(c *gin.Context) {
	h.transition(c, h.sectionService.SendBack)
}

// Deactivate marks a section inactive, excluding it from completeness scoring.
func (h *SectionHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.sectionService.Deactivate)
}

// Reactivate restores a deactivated section.
func (h *SectionHandler) Reactivate(c *gin.Context) {
	h.transition(c, h.sectionService.Reactivate)
}

// Reopen godoc
// @Summary      Reopen an approved section
// @Description  Returns an approved section to in progress. A reason is required.
// @Tags         sections
// @Accept       json
// @Produce      json
// @Param        id path string true "Section ID"
// @Param        request body reportingapp.ReopenSectionRequest true "Reopen reason"
// @Success      200 {object} APIResponse[reportingapp.SectionResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/sections/{id}/reopen [post]
func (h *SectionHandler) Reopen(c *gin.Context) {
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

	var req reportingapp.ReopenSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.sectionService.Reopen(c.Request.Context(), organizationID, sectionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @Summary      Delete a report section
// @Description  Deletes a section without children or data points.
// @Tags         sections
// @Param        id path string true "Section ID"
// @Success      204
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reporting/sections/{id} [delete]
func (h *SectionHandler) Delete(c *gin.Context) {
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

	if err := h.sectionService.Delete(c.Request.Context(), organizationID, sectionID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *SectionHandler) transition(c *gin.Context, fn func(ctx context.Context, organizationID, sectionID uuid.UUID) (*reportingapp.SectionResponse, error)) {
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

	resp, err := fn(c.Request.Context(), organizationID, sectionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
