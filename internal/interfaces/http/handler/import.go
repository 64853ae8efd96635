package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	importapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/import"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/bulk"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	csvimport "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/import"
)

const (
	// Maximum file size for imports (10MB)
	maxImportFileSize = 10 * 1024 * 1024
)

// ImportHandler handles bulk CSV import API endpoints
type ImportHandler struct {
	BaseHandler
	dataPointImport  *importapp.DataPointImportService
	assumptionImport *importapp.AssumptionImportService
	historyService   *importapp.ImportHistoryService
	sessionStore     csvimport.SessionStore
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(
	dataPointImport *importapp.DataPointImportService,
	assumptionImport *importapp.AssumptionImportService,
	historyService *importapp.ImportHistoryService,
) *ImportHandler {
	return &ImportHandler{
		dataPointImport:  dataPointImport,
		assumptionImport: assumptionImport,
		historyService:   historyService,
		sessionStore:     csvimport.NewInMemorySessionStore(15 * time.Minute),
	}
}

// ValidationResponse represents the response from import validation
// @Description Response from CSV import validation
type ValidationResponse struct {
	ValidationID string               `json:"validation_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TotalRows    int                  `json:"total_rows" example:"100"`
	ValidRows    int                  `json:"valid_rows" example:"98"`
	ErrorRows    int                  `json:"error_rows" example:"2"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	Preview      []map[string]any     `json:"preview,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
	TotalErrors  int                  `json:"total_errors,omitempty"`
}

// Validate godoc
//
//	@Summary		Validate a CSV file for import
//	@Description	Validates a CSV upload without applying it. Returns row errors and a preview.
//	@Tags			import
//	@ID				validateImport
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			X-Organization-ID	header		string	false	"Organization ID (optional for dev)"
//	@Param			file				formData	file	true	"CSV file to validate"
//	@Param			entity_type			formData	string	true	"Entity type"	Enums(data_points, assumptions)
//	@Success		200					{object}	APIResponse[ValidationResponse]
//	@Failure		400					{object}	dto.ErrorResponse
//	@Failure		413					{object}	dto.ErrorResponse
//	@Failure		415					{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/import/validate [post]
func (h *ImportHandler) Validate(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	entityType, session, data, ok := h.readUpload(c, organizationID, userID)
	if !ok {
		return
	}

	result, err := h.runValidation(c, entityType, session, bytes.NewReader(data))
	if err != nil {
		return
	}

	if err := h.sessionStore.Save(session); err != nil {
		h.InternalError(c, "failed to save import session")
		return
	}

	h.Success(c, toValidationResponse(result))
}

// Apply godoc
//
//	@Summary		Validate and apply a CSV import
//	@Description	Validates the upload and, when every row passes, writes it in one step. Data point imports require a period_id form field.
//	@Tags			import
//	@ID				applyImport
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			X-Organization-ID	header		string	false	"Organization ID (optional for dev)"
//	@Param			file				formData	file	true	"CSV file to import"
//	@Param			entity_type			formData	string	true	"Entity type"	Enums(data_points, assumptions)
//	@Param			period_id			formData	string	false	"Target period (data point imports)"
//	@Success		200					{object}	APIResponse[importapp.DataPointImportResult]
//	@Failure		400					{object}	dto.ErrorResponse
//	@Failure		422					{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/import/apply [post]
func (h *ImportHandler) Apply(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	entityType, session, data, ok := h.readUpload(c, organizationID, userID)
	if !ok {
		return
	}

	result, err := h.runValidation(c, entityType, session, bytes.NewReader(data))
	if err != nil {
		return
	}
	if err := h.sessionStore.Save(session); err != nil {
		h.InternalError(c, "failed to save import session")
		return
	}
	if !result.IsValid() {
		h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeValidation, "upload has validation errors, fix them and retry")
		return
	}

	rows, err := h.reparseRows(bytes.NewReader(data))
	if err != nil {
		h.InternalError(c, "failed to read validated rows")
		return
	}

	ctx := c.Request.Context()
	switch entityType {
	case csvimport.EntityDataPoints:
		periodID, err := uuid.Parse(c.PostForm("period_id"))
		if err != nil {
			h.BadRequest(c, "period_id is required for data point imports")
			return
		}
		history := h.startHistory(ctx, organizationID, userID, entityType, session, &periodID, len(rows))
		applied, err := h.dataPointImport.Apply(ctx, organizationID, userID, periodID, session, rows)
		if err != nil {
			h.failHistory(ctx, organizationID, history, err)
			h.HandleError(c, err)
			return
		}
		h.finishHistory(ctx, organizationID, history, applied.AppliedRows, applied.ErrorRows, applied.SkippedRows, applied.Errors)
		h.Success(c, applied)
	case csvimport.EntityAssumptions:
		history := h.startHistory(ctx, organizationID, userID, entityType, session, nil, len(rows))
		applied, err := h.assumptionImport.Apply(ctx, organizationID, userID, session, rows)
		if err != nil {
			h.failHistory(ctx, organizationID, history, err)
			h.HandleError(c, err)
			return
		}
		h.finishHistory(ctx, organizationID, history, applied.CreatedRows, applied.ErrorRows, 0, applied.Errors)
		h.Success(c, applied)
	}
}

// startHistory opens a history record once an upload passes validation.
// Bookkeeping must never block an import, so failures are swallowed and the
// returned record may be nil.
func (h *ImportHandler) startHistory(
	ctx context.Context,
	organizationID, userID uuid.UUID,
	entityType csvimport.EntityType,
	session *csvimport.ImportSession,
	periodID *uuid.UUID,
	totalRows int,
) *bulk.ImportHistory {
	history, err := h.historyService.CreateHistory(ctx, organizationID, bulk.ImportEntityType(entityType),
		session.FileName, session.FileSize, userID, periodID)
	if err != nil {
		return nil
	}
	if err := h.historyService.StartProcessing(ctx, organizationID, history.ID, totalRows); err != nil {
		return nil
	}
	return history
}

func (h *ImportHandler) finishHistory(
	ctx context.Context,
	organizationID uuid.UUID,
	history *bulk.ImportHistory,
	appliedRows, errorRows, skippedRows int,
	rowErrors []csvimport.RowError,
) {
	if history == nil {
		return
	}
	_ = h.historyService.CompleteImport(ctx, organizationID, history.ID, appliedRows, errorRows, skippedRows, rowErrors)
}

func (h *ImportHandler) failHistory(ctx context.Context, organizationID uuid.UUID, history *bulk.ImportHistory, applyErr error) {
	if history == nil {
		return
	}
	_ = h.historyService.FailImport(ctx, organizationID, history.ID, []csvimport.RowError{
		{Code: "ERR_APPLY", Message: applyErr.Error()},
	})
}

// GetSession godoc
//
//	@Summary		Get import session
//	@Description	Retrieves the status and details of an import session
//	@Tags			import
//	@ID				getImportSession
//	@Produce		json
//	@Param			X-Organization-ID	header		string	false	"Organization ID (optional for dev)"
//	@Param			id					path		string	true	"Session ID (UUID)"
//	@Success		200					{object}	APIResponse[csvimport.ImportSession]
//	@Failure		404					{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/import/sessions/{id} [get]
func (h *ImportHandler) GetSession(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	sessionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	session, err := h.sessionStore.Get(sessionID)
	if err != nil {
		h.InternalError(c, "failed to retrieve session")
		return
	}

	// Ownership check doubles as an existence check to avoid leaking session IDs
	if session == nil || session.OrganizationID != organizationID {
		h.NotFound(c, "Import session not found or expired")
		return
	}

	h.Success(c, session)
}

// readUpload parses the multipart form, enforces size and content-type limits
// and opens a fresh import session. The file is buffered in memory so it can
// be read twice (validation, then row extraction).
func (h *ImportHandler) readUpload(c *gin.Context, organizationID, userID uuid.UUID) (csvimport.EntityType, *csvimport.ImportSession, []byte, bool) {
	entityType := c.PostForm("entity_type")
	if entityType == "" {
		h.BadRequest(c, "entity_type is required")
		return "", nil, nil, false
	}
	if !csvimport.IsValidEntityType(entityType) {
		h.BadRequest(c, "invalid entity_type, must be one of: data_points, assumptions")
		return "", nil, nil, false
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return "", nil, nil, false
	}
	defer file.Close()

	if header.Size > maxImportFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation, "file exceeds maximum size of 10MB")
		return "", nil, nil, false
	}

	contentType := header.Header.Get("Content-Type")
	if contentType != "" && contentType != "text/csv" && contentType != "application/octet-stream" &&
		contentType != "text/plain" && contentType != "application/vnd.ms-excel" {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeValidation, "file must be a CSV file")
		return "", nil, nil, false
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImportFileSize+1))
	if err != nil {
		h.InternalError(c, "failed to read uploaded file")
		return "", nil, nil, false
	}
	if len(data) > maxImportFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation, "file exceeds maximum size of 10MB")
		return "", nil, nil, false
	}

	session := csvimport.NewImportSession(organizationID, userID, csvimport.EntityType(entityType), header.Filename, header.Size)
	return csvimport.EntityType(entityType), session, data, true
}

// runValidation dispatches to the import service matching the entity type.
// Parse failures are reported to the client here; the returned error only
// signals that a response has already been written.
func (h *ImportHandler) runValidation(c *gin.Context, entityType csvimport.EntityType, session *csvimport.ImportSession, reader io.Reader) (*csvimport.ValidationResult, error) {
	var result *csvimport.ValidationResult
	var err error
	switch entityType {
	case csvimport.EntityDataPoints:
		result, err = h.dataPointImport.Validate(c.Request.Context(), session, reader)
	case csvimport.EntityAssumptions:
		result, err = h.assumptionImport.Validate(c.Request.Context(), session, reader)
	}
	if err != nil {
		switch err {
		case csvimport.ErrEmptyFile:
			h.BadRequest(c, "CSV file is empty")
		case csvimport.ErrInvalidEncoding:
			h.BadRequest(c, "CSV file has invalid encoding, must be UTF-8")
		case csvimport.ErrMissingHeader:
			h.BadRequest(c, "CSV file is missing header row")
		default:
			h.InternalError(c, "failed to validate file: "+err.Error())
		}
		return nil, err
	}
	return result, nil
}

func (h *ImportHandler) reparseRows(reader io.Reader) ([]*csvimport.Row, error) {
	parser, err := csvimport.NewCSVParser(reader)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	return parser.ReadAllRows()
}

func toValidationResponse(result *csvimport.ValidationResult) ValidationResponse {
	return ValidationResponse{
		ValidationID: result.ValidationID,
		TotalRows:    result.TotalRows,
		ValidRows:    result.ValidRows,
		ErrorRows:    result.ErrorRows,
		Errors:       result.Errors,
		Preview:      result.Preview,
		IsTruncated:  result.IsTruncated,
		TotalErrors:  result.TotalErrors,
	}
}

// RegisterRoutes registers all import routes
func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	imports := rg.Group("/import")
	{
		imports.POST("/validate", h.Validate)
		imports.POST("/apply", h.Apply)
		imports.GET("/sessions/:id", h.GetSession)
	}
}
