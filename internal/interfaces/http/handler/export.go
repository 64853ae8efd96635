package handler

import (
	"fmt"
	"io"
	"net/http"

	exportapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/export"
	"github.com/gin-gonic/gin"
)

// ExportHandler handles report export API endpoints
type ExportHandler struct {
	BaseHandler
	exportService *exportapp.ExportService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exportService *exportapp.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Create godoc
// @Summary      Request a report export
// @Description  Queues an export job producing a PDF or CSV document for a period.
// @Tags         exports
// @Accept       json
// @Produce      json
// @Param        request body exportapp.CreateExportRequest true "Export request"
// @Success      201 {object} APIResponse[exportapp.JobResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req exportapp.CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.RequestedBy = &userID
	}

	resp, err := h.exportService.Create(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get an export job
// @Tags         exports
// @Produce      json
// @Param        id path string true "Job ID"
// @Success      200 {object} APIResponse[exportapp.JobResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /exports/{id} [get]
func (h *ExportHandler) GetByID(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	jobID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	resp, err := h.exportService.GetByID(c.Request.Context(), organizationID, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List export jobs
// @Tags         exports
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        period_id query string false "Filter by period"
// @Param        doc_type query string false "Filter by document type"
// @Param        status query string false "Filter by status"
// @Success      200 {object} APIResponse[[]exportapp.JobResponse]
// @Security     BearerAuth
// @Router       /exports [get]
func (h *ExportHandler) List(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var filter exportapp.JobListFilter
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

	result, err := h.exportService.List(c.Request.Context(), organizationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, filter.Page, filter.PageSize)
}

// Download godoc
// @Summary      Download an export document
// @Description  Streams the finished document of a completed export job.
// @Tags         exports
// @Produce      application/octet-stream
// @Param        id path string true "Job ID"
// @Success      200 {file} file
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /exports/{id}/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	jobID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	reader, job, err := h.exportService.Download(c.Request.Context(), organizationID, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer reader.Close()

	contentType := "application/pdf"
	extension := "pdf"
	if job.Format == "CSV" {
		contentType = "text/csv; charset=utf-8"
		extension = "csv"
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s-%s.%s", job.DocType, job.ID, extension)))
	c.Status(http.StatusOK)
	io.Copy(c.Writer, reader)
}

// Delete godoc
// @Summary      Delete an export job
// @Description  Removes the job record and its stored document.
// @Tags         exports
// @Param        id path string true "Job ID"
// @Success      204
// @Security     BearerAuth
// @Router       /exports/{id} [delete]
func (h *ExportHandler) Delete(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	jobID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	if err := h.exportService.Delete(c.Request.Context(), organizationID, jobID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
