package handler

import (
	"context"

	organizationapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/organization"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/organization"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrganizationHandler handles organization administration API endpoints
type OrganizationHandler struct {
	BaseHandler
	organizationService *organizationapp.OrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(organizationService *organizationapp.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{organizationService: organizationService}
}

// Create godoc
// @Summary      Create an organization
// @Description  Creates a new organization. The code must be unique across the system.
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Param        request body organizationapp.CreateOrganizationRequest true "Organization creation request"
// @Success      201 {object} APIResponse[organizationapp.OrganizationResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /organizations [post]
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req organizationapp.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.organizationService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get an organization
// @Tags         organizations
// @Produce      json
// @Param        id path string true "Organization ID"
// @Success      200 {object} APIResponse[organizationapp.OrganizationResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /organizations/{id} [get]
func (h *OrganizationHandler) GetByID(c *gin.Context) {
	organizationID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	resp, err := h.organizationService.GetByID(c.Request.Context(), organizationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetCurrent godoc
// @Summary      Get the current organization
// @Description  Returns the organization the authenticated user belongs to.
// @Tags         organizations
// @Produce      json
// @Success      200 {object} APIResponse[organizationapp.OrganizationResponse]
// @Security     BearerAuth
// @Router       /organizations/current [get]
func (h *OrganizationHandler) GetCurrent(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	resp, err := h.organizationService.GetByID(c.Request.Context(), organizationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByCode godoc
// @Summary      Get an organization by code
// @Tags         organizations
// @Produce      json
// @Param        code path string true "Organization code"
// @Success      200 {object} APIResponse[organizationapp.OrganizationResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /organizations/code/{code} [get]
func (h *OrganizationHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Organization code is required")
		return
	}

	resp, err := h.organizationService.GetByCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List organizations
// @Tags         organizations
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by status"
// @Param        country query string false "Filter by country code"
// @Param        sector query string false "Filter by sector"
// @Param        search query string false "Search in code and name"
// @Success      200 {object} APIResponse[[]organizationapp.OrganizationResponse]
// @Security     BearerAuth
// @Router       /organizations [get]
func (h *OrganizationHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)
	filter := organizationapp.OrganizationListFilter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
		Search:   c.Query("search"),
		Country:  c.Query("country"),
		Sector:   c.Query("sector"),
	}
	if raw := c.Query("status"); raw != "" {
		status := organization.OrganizationStatus(raw)
		filter.Status = &status
	}

	result, err := h.organizationService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, page, pageSize)
}

// Update godoc
// @Summary      Update an organization profile
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Param        id path string true "Organization ID"
// @Param        request body organizationapp.UpdateOrganizationRequest true "Fields to update"
// @Success      200 {object} APIResponse[organizationapp.OrganizationResponse]
// @Security     BearerAuth
// @Router       /organizations/{id} [put]
func (h *OrganizationHandler) Update(c *gin.Context) {
	organizationID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req organizationapp.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.organizationService.Update(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetFramework godoc
// @Summary      Change the reporting framework
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Param        id path string true "Organization ID"
// @Param        request body organizationapp.SetFrameworkRequest true "Framework"
// @Success      200 {object} APIResponse[organizationapp.OrganizationResponse]
// @Security     BearerAuth
// @Router       /organizations/{id}/framework [put]
func (h *OrganizationHandler) SetFramework(c *gin.Context) {
	organizationID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req organizationapp.SetFrameworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.organizationService.SetFramework(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateConfig godoc
// @Summary      Update organization configuration
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Param        id path string true "Organization ID"
// @Param        request body organizationapp.UpdateConfigRequest true "Configuration fields"
// @Success      200 {object} APIResponse[organizationapp.OrganizationResponse]
// @Security     BearerAuth
// @Router       /organizations/{id}/config [put]
func (h *OrganizationHandler) UpdateConfig(c *gin.Context) {
	organizationID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req organizationapp.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.organizationService.UpdateConfig(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activate restores a deactivated or suspended organization.
func (h *OrganizationHandler) Activate(c *gin.Context) {
	h.transition(c, h.organizationService.Activate)
}

// Deactivate disables an organization.
func (h *OrganizationHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.organizationService.Deactivate)
}

// Suspend suspends an organization.
func (h *OrganizationHandler) Suspend(c *gin.Context) {
	h.transition(c, h.organizationService.Suspend)
}

// ListSectors godoc
// @Summary      List the sector catalog
// @Tags         organizations
// @Produce      json
// @Success      200 {object} APIResponse[[]organizationapp.SectorResponse]
// @Router       /organizations/sectors [get]
func (h *OrganizationHandler) ListSectors(c *gin.Context) {
	h.Success(c, h.organizationService.ListSectors())
}

func (h *OrganizationHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*organizationapp.OrganizationResponse, error)) {
	organizationID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	resp, err := fn(c.Request.Context(), organizationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
