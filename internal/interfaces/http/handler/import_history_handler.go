package handler

import (
	"net/http"
	"strconv"
	"time"

	importapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/import"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ImportHistoryHandler handles import history related HTTP requests
type ImportHistoryHandler struct {
	BaseHandler
	historyService *importapp.ImportHistoryService
}

// NewImportHistoryHandler creates a new ImportHistoryHandler
func NewImportHistoryHandler(historyService *importapp.ImportHistoryService) *ImportHistoryHandler {
	return &ImportHistoryHandler{
		historyService: historyService,
	}
}

// ListHistory godoc
//
//	@Summary		List import histories
//	@Description	Returns a paginated list of bulk import records with optional filtering
//	@Tags			import
//	@ID				listImportHistory
//	@Produce		json
//	@Param			X-Organization-ID	header		string	false	"Organization ID (optional for dev)"
//	@Param			entity_type			query		string	false	"Filter by entity type (data_points, assumptions)"
//	@Param			status				query		string	false	"Filter by status (pending, processing, completed, failed, cancelled)"
//	@Param			started_from		query		string	false	"Filter by start date (from), format: YYYY-MM-DD"
//	@Param			started_to			query		string	false	"Filter by start date (to), format: YYYY-MM-DD"
//	@Param			page				query		int		false	"Page number (default: 1)"
//	@Param			page_size			query		int		false	"Page size (default: 20, max: 100)"
//	@Success		200					{object}	APIResponse[dto.ImportHistoryListResponse]
//	@Failure		400					{object}	dto.ErrorResponse
//	@Failure		401					{object}	dto.ErrorResponse
//	@Failure		500					{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/import/history [get]
func (h *ImportHistoryHandler) ListHistory(c *gin.Context) {
	ctx := c.Request.Context()

	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req dto.ImportHistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid request parameters: "+err.Error())
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	filter := importapp.ListHistoryFilter{
		EntityType: req.EntityType,
		Status:     req.Status,
	}

	if req.StartedFrom != "" {
		t, err := time.Parse("2006-01-02", req.StartedFrom)
		if err == nil {
			filter.StartedFrom = &t
		}
	}
	if req.StartedTo != "" {
		t, err := time.Parse("2006-01-02", req.StartedTo)
		if err == nil {
			// End of day, inclusive
			endOfDay := t.Add(24*time.Hour - time.Second)
			filter.StartedTo = &endOfDay
		}
	}

	result, err := h.historyService.ListHistory(ctx, organizationID, filter, req.Page, req.PageSize)
	if err != nil {
		h.InternalError(c, "Failed to list import histories: "+err.Error())
		return
	}

	h.Success(c, dto.NewImportHistoryListResponse(result))
}

// GetHistory godoc
//
//	@Summary		Get import history details
//	@Description	Returns detailed information about a specific import operation
//	@Tags			import
//	@ID				getImportHistory
//	@Produce		json
//	@Param			X-Organization-ID	header		string	false	"Organization ID (optional for dev)"
//	@Param			id					path		string	true	"Import history ID"
//	@Success		200					{object}	APIResponse[dto.ImportHistoryResponse]
//	@Failure		400					{object}	dto.ErrorResponse
//	@Failure		401					{object}	dto.ErrorResponse
//	@Failure		404					{object}	dto.ErrorResponse
//	@Failure		500					{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/import/history/{id} [get]
func (h *ImportHistoryHandler) GetHistory(c *gin.Context) {
	ctx := c.Request.Context()

	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	historyID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid history ID")
		return
	}

	history, err := h.historyService.GetHistory(ctx, organizationID, historyID)
	if err != nil {
		if err == shared.ErrNotFound {
			h.NotFound(c, "Import history not found")
			return
		}
		h.InternalError(c, "Failed to get import history: "+err.Error())
		return
	}

	h.Success(c, dto.NewImportHistoryResponse(history))
}

// GetErrors godoc
//
//	@Summary		Download import errors as CSV
//	@Description	Downloads error details from an import operation as a CSV file
//	@Tags			import
//	@ID				getImportErrors
//	@Produce		text/csv
//	@Param			X-Organization-ID	header		string	false	"Organization ID (optional for dev)"
//	@Param			id					path		string	true	"Import history ID"
//	@Success		200					{string}	string	"CSV content"
//	@Failure		400					{object}	dto.ErrorResponse
//	@Failure		401					{object}	dto.ErrorResponse
//	@Failure		404					{object}	dto.ErrorResponse
//	@Failure		500					{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/import/history/{id}/errors [get]
func (h *ImportHistoryHandler) GetErrors(c *gin.Context) {
	ctx := c.Request.Context()

	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	historyID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid history ID")
		return
	}

	csvContent, fileName, err := h.historyService.GetErrorsCSV(ctx, organizationID, historyID)
	if err != nil {
		if err == shared.ErrNotFound {
			h.NotFound(c, "Import history not found")
			return
		}
		if err.Error() == "no errors to export" {
			h.BadRequest(c, "No errors to export for this import")
			return
		}
		h.InternalError(c, "Failed to generate error report: "+err.Error())
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Header("Content-Length", strconv.Itoa(len(csvContent)))

	c.String(http.StatusOK, csvContent)
}

// DeleteHistory godoc
//
//	@Summary		Delete import history
//	@Description	Deletes an import history record
//	@Tags			import
//	@ID				deleteImportHistory
//	@Produce		json
//	@Param			X-Organization-ID	header	string	false	"Organization ID (optional for dev)"
//	@Param			id					path	string	true	"Import history ID"
//	@Success		204					"Successfully deleted"
//	@Failure		400					{object}	dto.ErrorResponse
//	@Failure		401					{object}	dto.ErrorResponse
//	@Failure		404					{object}	dto.ErrorResponse
//	@Failure		500					{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/import/history/{id} [delete]
func (h *ImportHistoryHandler) DeleteHistory(c *gin.Context) {
	ctx := c.Request.Context()

	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	historyID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid history ID")
		return
	}

	err = h.historyService.DeleteHistory(ctx, organizationID, historyID)
	if err != nil {
		if err == shared.ErrNotFound {
			h.NotFound(c, "Import history not found")
			return
		}
		h.InternalError(c, "Failed to delete import history: "+err.Error())
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers all import history routes
func (h *ImportHistoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	history := rg.Group("/import/history")
	{
		history.GET("", h.ListHistory)
		history.GET("/:id", h.GetHistory)
		history.GET("/:id/errors", h.GetErrors)
		history.DELETE("/:id", h.DeleteHistory)
	}
}
