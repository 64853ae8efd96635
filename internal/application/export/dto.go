package export

import (
	"time"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/export"
)

// ==================== Export job DTOs ====================

// CreateExportRequest represents a request to start an export
type CreateExportRequest struct {
	DocType     export.DocType `json:"doc_type" binding:"required,oneof=PERIOD_REPORT DATA_POINTS AUDIT_TRAIL RECONCILIATION"`
	Format      export.Format  `json:"format" binding:"required,oneof=PDF CSV"`
	PeriodID    uuid.UUID      `json:"period_id" binding:"required"`
	SectionID   *uuid.UUID     `json:"section_id,omitempty"`
	TemplateID  *uuid.UUID     `json:"template_id,omitempty"`
	RequestedBy *uuid.UUID     `json:"-"`
}

// JobListFilter represents filtering options for listing export jobs
type JobListFilter struct {
	Page     int               `form:"page"`
	PageSize int               `form:"page_size"`
	PeriodID *uuid.UUID        `form:"period_id"`
	DocType  *export.DocType   `form:"doc_type"`
	Status   *export.JobStatus `form:"status"`
}

// JobResponse represents an export job in API responses
type JobResponse struct {
	ID           uuid.UUID  `json:"id"`
	DocType      string     `json:"doc_type"`
	Format       string     `json:"format"`
	PeriodID     uuid.UUID  `json:"period_id"`
	SectionID    *uuid.UUID `json:"section_id,omitempty"`
	TemplateID   *uuid.UUID `json:"template_id,omitempty"`
	Status       string     `json:"status"`
	FileURL      string     `json:"file_url,omitempty"`
	FileSize     int64      `json:"file_size,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	RequestedBy  *uuid.UUID `json:"requested_by,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ==================== Template DTOs ====================

// CreateTemplateRequest represents a request to create a report template
type CreateTemplateRequest struct {
	Name        string             `json:"name" binding:"required,max=100"`
	Description string             `json:"description" binding:"max=500"`
	Content     string             `json:"content" binding:"required"`
	PaperSize   export.PaperSize   `json:"paper_size" binding:"required,oneof=A4 A3 LETTER"`
	Orientation export.Orientation `json:"orientation" binding:"omitempty,oneof=PORTRAIT LANDSCAPE"`
	CreatedBy   *uuid.UUID         `json:"-"`
}

// UpdateTemplateRequest represents a request to update template metadata
type UpdateTemplateRequest struct {
	Name        *string             `json:"name,omitempty" binding:"omitempty,max=100"`
	Description *string             `json:"description,omitempty" binding:"omitempty,max=500"`
	Content     *string             `json:"content,omitempty"`
	PaperSize   *export.PaperSize   `json:"paper_size,omitempty" binding:"omitempty,oneof=A4 A3 LETTER"`
	Orientation *export.Orientation `json:"orientation,omitempty" binding:"omitempty,oneof=PORTRAIT LANDSCAPE"`
}

// SetMarginsRequest represents a request to change template page margins
type SetMarginsRequest struct {
	Top    int `json:"top" binding:"min=0,max=100"`
	Right  int `json:"right" binding:"min=0,max=100"`
	Bottom int `json:"bottom" binding:"min=0,max=100"`
	Left   int `json:"left" binding:"min=0,max=100"`
}

// TemplateListFilter represents filtering options for listing templates
type TemplateListFilter struct {
	Page     int                    `form:"page"`
	PageSize int                    `form:"page_size"`
	Status   *export.TemplateStatus `form:"status"`
}

// MarginsResponse represents page margins in API responses
type MarginsResponse struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// TemplateResponse represents a report template in API responses
type TemplateResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Content     string          `json:"content,omitempty"`
	PaperSize   string          `json:"paper_size"`
	Orientation string          `json:"orientation"`
	Margins     MarginsResponse `json:"margins"`
	IsDefault   bool            `json:"is_default"`
	Status      string          `json:"status"`
	Version     int             `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ==================== Converters ====================

// ToJobResponse converts a domain export job to a response DTO
func ToJobResponse(job *export.ExportJob) JobResponse {
	return JobResponse{
		ID:           job.ID,
		DocType:      job.DocType.String(),
		Format:       job.Format.String(),
		PeriodID:     job.PeriodID,
		SectionID:    job.SectionID,
		TemplateID:   job.TemplateID,
		Status:       job.Status.String(),
		FileURL:      job.FileURL,
		FileSize:     job.FileSize,
		ErrorMessage: job.ErrorMessage,
		RequestedBy:  job.RequestedBy,
		CompletedAt:  job.CompletedAt,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
}

// ToJobResponses converts a slice of domain jobs to response DTOs
func ToJobResponses(jobs []export.ExportJob) []JobResponse {
	responses := make([]JobResponse, len(jobs))
	for i := range jobs {
		responses[i] = ToJobResponse(&jobs[i])
	}
	return responses
}

// ToTemplateResponse converts a domain template to a response DTO
func ToTemplateResponse(t *export.ReportTemplate) TemplateResponse {
	return TemplateResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Content:     t.Content,
		PaperSize:   t.PaperSize.String(),
		Orientation: t.Orientation.String(),
		Margins: MarginsResponse{
			Top:    t.Margins.Top,
			Right:  t.Margins.Right,
			Bottom: t.Margins.Bottom,
			Left:   t.Margins.Left,
		},
		IsDefault: t.IsDefault,
		Status:    t.Status.String(),
		Version:   t.Version,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// ToTemplateResponses converts a slice of domain templates to response DTOs.
// Content is omitted from list responses to keep them small.
func ToTemplateResponses(templates []export.ReportTemplate) []TemplateResponse {
	responses := make([]TemplateResponse, len(templates))
	for i := range templates {
		responses[i] = ToTemplateResponse(&templates[i])
		responses[i].Content = ""
	}
	return responses
}
