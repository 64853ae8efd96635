package handler

import (
	"context"

	exportapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/export"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TemplateHandler handles report template API endpoints
type TemplateHandler struct {
	BaseHandler
	templateService *exportapp.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(templateService *exportapp.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// Create godoc
// @Summary      Create a report template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        request body exportapp.CreateTemplateRequest true "Template creation request"
// @Success      201 {object} APIResponse[exportapp.TemplateResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /exports/templates [post]
func (h *TemplateHandler) Create(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req exportapp.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	resp, err := h.templateService.Create(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get a report template
// @Tags         templates
// @Produce      json
// @Param        id path string true "Template ID"
// @Success      200 {object} APIResponse[exportapp.TemplateResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /exports/templates/{id} [get]
func (h *TemplateHandler) GetByID(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	templateID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	resp, err := h.templateService.GetByID(c.Request.Context(), organizationID, templateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetDefault godoc
// @Summary      Get the default report template
// @Tags         templates
// @Produce      json
// @Success      200 {object} APIResponse[exportapp.TemplateResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /exports/templates/default [get]
func (h *TemplateHandler) GetDefault(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	resp, err := h.templateService.GetDefault(c.Request.Context(), organizationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List report templates
// @Tags         templates
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by status"
// @Success      200 {object} APIResponse[[]exportapp.TemplateResponse]
// @Security     BearerAuth
// @Router       /exports/templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var filter exportapp.TemplateListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 20
	}

	result, err := h.templateService.List(c.Request.Context(), organizationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a report template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        id path string true "Template ID"
// @Param        request body exportapp.UpdateTemplateRequest true "Fields to update"
// @Success      200 {object} APIResponse[exportapp.TemplateResponse]
// @Security     BearerAuth
// @Router       /exports/templates/{id} [put]
func (h *TemplateHandler) Update(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	templateID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	var req exportapp.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.templateService.Update(c.Request.Context(), organizationID, templateID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetMargins godoc
// @Summary      Set template page margins
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        id path string true "Template ID"
// @Param        request body exportapp.SetMarginsRequest true "Margins in millimetres"
// @Success      200 {object} APIResponse[exportapp.TemplateResponse]
// @Security     BearerAuth
// @Router       /exports/templates/{id}/margins [put]
func (h *TemplateHandler) SetMargins(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	templateID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	var req exportapp.SetMarginsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.templateService.SetMargins(c.Request.Context(), organizationID, templateID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetDefault marks a template as the organization's default.
func (h *TemplateHandler) SetDefault(c *gin.Context) {
	h.transition(c, h.templateService.SetDefault)
}

// Activate enables a deactivated template.
func (h *TemplateHandler) Activate(c *gin.Context) {
	h.transition(c, h.templateService.Activate)
}

// Deactivate disables a template.
func (h *TemplateHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.templateService.Deactivate)
}

// Delete godoc
// @Summary      Delete a report template
// @Description  Deletes a non-default template.
// @Tags         templates
// @Param        id path string true "Template ID"
// @Success      204
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /exports/templates/{id} [delete]
func (h *TemplateHandler) Delete(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	templateID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	if err := h.templateService.Delete(c.Request.Context(), organizationID, templateID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *TemplateHandler) transition(c *gin.Context, fn func(ctx context.Context, organizationID, templateID uuid.UUID) (*exportapp.TemplateResponse, error)) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	templateID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	resp, err := fn(c.Request.Context(), organizationID, templateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
