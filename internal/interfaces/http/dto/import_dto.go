package dto

import (
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/bulk"
	"github.com/google/uuid"
)

// ImportHistoryListRequest represents the query parameters for listing import histories
type ImportHistoryListRequest struct {
	EntityType  string `form:"entity_type" binding:"omitempty,oneof=data_points assumptions"`
	Status      string `form:"status" binding:"omitempty,oneof=pending processing completed failed cancelled"`
	StartedFrom string `form:"started_from"`
	StartedTo   string `form:"started_to"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size" binding:"omitempty,max=100"`
}

// ImportHistoryResponse represents a single import history record
// @Description One bulk CSV upload and its outcome
type ImportHistoryResponse struct {
	ID          uuid.UUID                `json:"id"`
	EntityType  string                   `json:"entity_type" example:"data_points"`
	PeriodID    *uuid.UUID               `json:"period_id,omitempty"`
	FileName    string                   `json:"file_name" example:"data_points.csv"`
	FileSize    int64                    `json:"file_size" example:"1024"`
	TotalRows   int                      `json:"total_rows" example:"100"`
	AppliedRows int                      `json:"applied_rows" example:"95"`
	ErrorRows   int                      `json:"error_rows" example:"0"`
	SkippedRows int                      `json:"skipped_rows" example:"5"`
	Status      string                   `json:"status" example:"completed"`
	Errors      []bulk.ImportErrorDetail `json:"errors,omitempty"`
	SuccessRate float64                  `json:"success_rate" example:"95"`
	ImportedBy  *uuid.UUID               `json:"imported_by,omitempty"`
	StartedAt   *time.Time               `json:"started_at,omitempty"`
	CompletedAt *time.Time               `json:"completed_at,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
}

// NewImportHistoryResponse converts an import history to its response representation
func NewImportHistoryResponse(history *bulk.ImportHistory) ImportHistoryResponse {
	return ImportHistoryResponse{
		ID:          history.ID,
		EntityType:  string(history.EntityType),
		PeriodID:    history.PeriodID,
		FileName:    history.FileName,
		FileSize:    history.FileSize,
		TotalRows:   history.TotalRows,
		AppliedRows: history.AppliedRows,
		ErrorRows:   history.ErrorRows,
		SkippedRows: history.SkippedRows,
		Status:      string(history.Status),
		Errors:      history.ErrorDetails,
		SuccessRate: history.SuccessRate(),
		ImportedBy:  history.ImportedBy,
		StartedAt:   history.StartedAt,
		CompletedAt: history.CompletedAt,
		CreatedAt:   history.CreatedAt,
	}
}

// ImportHistoryListResponse represents a paginated list of import histories
// @Description Paginated list of bulk import records
type ImportHistoryListResponse struct {
	Items      []ImportHistoryResponse `json:"items"`
	TotalCount int64                   `json:"total_count" example:"42"`
	Page       int                     `json:"page" example:"1"`
	PageSize   int                     `json:"page_size" example:"20"`
}

// NewImportHistoryListResponse converts a list result to its response representation
func NewImportHistoryListResponse(result *bulk.ImportHistoryListResult) ImportHistoryListResponse {
	items := make([]ImportHistoryResponse, len(result.Items))
	for i, history := range result.Items {
		items[i] = NewImportHistoryResponse(history)
	}
	return ImportHistoryListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Page:       result.Page,
		PageSize:   result.PageSize,
	}
}
