package handler

import (
	evidenceapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/evidence"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/evidence"
	"github.com/gin-gonic/gin"
)

// EvidenceHandler handles evidence file API endpoints
type EvidenceHandler struct {
	BaseHandler
	evidenceService *evidenceapp.EvidenceService
}

// NewEvidenceHandler creates a new EvidenceHandler
func NewEvidenceHandler(evidenceService *evidenceapp.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{evidenceService: evidenceService}
}

// Register godoc
// @Summary      Register an evidence file
// @Description  Registers file metadata for a data point and returns a presigned upload URL.
// @Tags         evidence
// @Accept       json
// @Produce      json
// @Param        request body evidenceapp.RegisterEvidenceRequest true "Evidence registration request"
// @Success      201 {object} APIResponse[evidenceapp.RegisterEvidenceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /evidence [post]
func (h *EvidenceHandler) Register(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req evidenceapp.RegisterEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.UploadedBy = &userID
	}

	resp, err := h.evidenceService.Register(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Finalize godoc
// @Summary      Finalize an evidence upload
// @Description  Confirms the file landed in object storage and marks the evidence available.
// @Tags         evidence
// @Produce      json
// @Param        id path string true "Evidence ID"
// @Success      200 {object} APIResponse[evidenceapp.EvidenceResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /evidence/{id}/finalize [post]
func (h *EvidenceHandler) Finalize(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	evidenceID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid evidence ID")
		return
	}

	resp, err := h.evidenceService.Finalize(c.Request.Context(), organizationID, evidenceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByID godoc
// @Summary      Get an evidence file
// @Tags         evidence
// @Produce      json
// @Param        id path string true "Evidence ID"
// @Success      200 {object} APIResponse[evidenceapp.EvidenceResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /evidence/{id} [get]
func (h *EvidenceHandler) GetByID(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	evidenceID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid evidence ID")
		return
	}

	resp, err := h.evidenceService.GetByID(c.Request.Context(), organizationID, evidenceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetDownloadURL godoc
// @Summary      Get a presigned download URL
// @Tags         evidence
// @Produce      json
// @Param        id path string true "Evidence ID"
// @Success      200 {object} APIResponse[evidenceapp.DownloadURLResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /evidence/{id}/download-url [get]
func (h *EvidenceHandler) GetDownloadURL(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	evidenceID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid evidence ID")
		return
	}

	resp, err := h.evidenceService.GetDownloadURL(c.Request.Context(), organizationID, evidenceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByDataPoint godoc
// @Summary      List evidence of a data point
// @Tags         evidence
// @Produce      json
// @Param        id path string true "Data point ID"
// @Param        include_deleted query bool false "Include soft-deleted evidence"
// @Success      200 {object} APIResponse[[]evidenceapp.EvidenceResponse]
// @Security     BearerAuth
// @Router       /reporting/data-points/{id}/evidence [get]
func (h *EvidenceHandler) ListByDataPoint(c *gin.Context) {
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
	includeDeleted := false
	if flag, ok := parseBoolQuery(c, "include_deleted"); ok && flag != nil {
		includeDeleted = *flag
	}

	items, err := h.evidenceService.ListByDataPoint(c.Request.Context(), organizationID, dataPointID, includeDeleted)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ListByPeriod godoc
// @Summary      List evidence within a period
// @Tags         evidence
// @Produce      json
// @Param        id path string true "Period ID"
// @Param        status query string false "Filter by status"
// @Param        content_type query string false "Filter by content type"
// @Param        uploaded_by query string false "Filter by uploader"
// @Success      200 {object} APIResponse[[]evidenceapp.EvidenceResponse]
// @Security     BearerAuth
// @Router       /reporting/periods/{id}/evidence [get]
func (h *EvidenceHandler) ListByPeriod(c *gin.Context) {
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

	page, pageSize := parsePagination(c)
	filter := evidenceapp.EvidenceListFilter{
		Page:        page,
		PageSize:    pageSize,
		OrderBy:     c.Query("order_by"),
		OrderDir:    c.Query("order_dir"),
		ContentType: c.Query("content_type"),
	}
	if raw := c.Query("status"); raw != "" {
		status := evidence.EvidenceStatus(raw)
		filter.Status = &status
	}
	if filter.UploadedBy, ok = parseUUIDQuery(c, "uploaded_by"); !ok {
		h.BadRequest(c, "Invalid uploaded_by")
		return
	}

	items, err := h.evidenceService.ListByPeriod(c.Request.Context(), organizationID, periodID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// UpdateDescription godoc
// @Summary      Update evidence description
// @Tags         evidence
// @Accept       json
// @Produce      json
// @Param        id path string true "Evidence ID"
// @Param        request body evidenceapp.UpdateEvidenceRequest true "New description"
// @Success      200 {object} APIResponse[evidenceapp.EvidenceResponse]
// @Security     BearerAuth
// @Router       /evidence/{id} [put]
func (h *EvidenceHandler) UpdateDescription(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	evidenceID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid evidence ID")
		return
	}

	var req evidenceapp.UpdateEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.evidenceService.UpdateDescription(c.Request.Context(), organizationID, evidenceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Relink godoc
// @Summary      Relink evidence to another data point
// @Description  Moves an evidence file to a different data point within the same period.
// @Tags         evidence
// @Accept       json
// @Produce      json
// @Param        id path string true "Evidence ID"
// @Param        request body evidenceapp.RelinkEvidenceRequest true "Target data point"
// @Success      200 {object} APIResponse[evidenceapp.EvidenceResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /evidence/{id}/relink [post]
func (h *EvidenceHandler) Relink(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	evidenceID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid evidence ID")
		return
	}

	var req evidenceapp.RelinkEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.evidenceService.Relink(c.Request.Context(), organizationID, evidenceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @Summary      Delete an evidence file
// @Description  Soft deletes evidence. The stored object is kept for audit purposes.
// @Tags         evidence
// @Param        id path string true "Evidence ID"
// @Success      204
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /evidence/{id} [delete]
func (h *EvidenceHandler) Delete(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	evidenceID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid evidence ID")
		return
	}
	userID, _ := getUserID(c)

	if err := h.evidenceService.Delete(c.Request.Context(), organizationID, evidenceID, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
