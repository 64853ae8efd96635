package export

import (
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeExportJob      = "ExportJob"
	AggregateTypeReportTemplate = "ReportTemplate"
)

// Export domain event types
const (
	EventTypeExportJobCreated       = "ExportJobCreated"
	EventTypeExportJobStatusChanged = "ExportJobStatusChanged"
	EventTypeExportJobCompleted     = "ExportJobCompleted"
	EventTypeExportJobFailed        = "ExportJobFailed"
	EventTypeReportTemplateCreated  = "ReportTemplateCreated"
	EventTypeReportTemplateUpdated  = "ReportTemplateUpdated"
)

// ExportJobCreatedEvent is published when an export is requested
type ExportJobCreatedEvent struct {
	shared.BaseDomainEvent
	DocType     DocType    `json:"doc_type"`
	Format      Format     `json:"format"`
	PeriodID    uuid.UUID  `json:"period_id"`
	SectionID   *uuid.UUID `json:"section_id,omitempty"`
	RequestedBy *uuid.UUID `json:"requested_by,omitempty"`
}

// NewExportJobCreatedEvent creates a new ExportJobCreatedEvent
func NewExportJobCreatedEvent(j *ExportJob) *ExportJobCreatedEvent {
	return &ExportJobCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExportJobCreated, AggregateTypeExportJob, j.ID, j.OrganizationID),
		DocType:         j.DocType,
		Format:          j.Format,
		PeriodID:        j.PeriodID,
		SectionID:       j.SectionID,
		RequestedBy:     j.RequestedBy,
	}
}

// ExportJobStatusChangedEvent is published on every job status transition
type ExportJobStatusChangedEvent struct {
	shared.BaseDomainEvent
	DocType   DocType   `json:"doc_type"`
	OldStatus JobStatus `json:"old_status"`
	NewStatus JobStatus `json:"new_status"`
}

// NewExportJobStatusChangedEvent creates a new ExportJobStatusChangedEvent
func NewExportJobStatusChangedEvent(j *ExportJob, oldStatus, newStatus JobStatus) *ExportJobStatusChangedEvent {
	return &ExportJobStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExportJobStatusChanged, AggregateTypeExportJob, j.ID, j.OrganizationID),
		DocType:         j.DocType,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// ExportJobCompletedEvent is published when an export file is ready
type ExportJobCompletedEvent struct {
	shared.BaseDomainEvent
	DocType     DocType    `json:"doc_type"`
	Format      Format     `json:"format"`
	PeriodID    uuid.UUID  `json:"period_id"`
	FileURL     string     `json:"file_url"`
	FileSize    int64      `json:"file_size"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewExportJobCompletedEvent creates a new ExportJobCompletedEvent
func NewExportJobCompletedEvent(j *ExportJob) *ExportJobCompletedEvent {
	return &ExportJobCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExportJobCompleted, AggregateTypeExportJob, j.ID, j.OrganizationID),
		DocType:         j.DocType,
		Format:          j.Format,
		PeriodID:        j.PeriodID,
		FileURL:         j.FileURL,
		FileSize:        j.FileSize,
		CompletedAt:     j.CompletedAt,
	}
}

// ExportJobFailedEvent is published when an export fails
type ExportJobFailedEvent struct {
	shared.BaseDomainEvent
	DocType      DocType   `json:"doc_type"`
	PeriodID     uuid.UUID `json:"period_id"`
	ErrorMessage string    `json:"error_message"`
}

// NewExportJobFailedEvent creates a new ExportJobFailedEvent
func NewExportJobFailedEvent(j *ExportJob) *ExportJobFailedEvent {
	return &ExportJobFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExportJobFailed, AggregateTypeExportJob, j.ID, j.OrganizationID),
		DocType:         j.DocType,
		PeriodID:        j.PeriodID,
		ErrorMessage:    j.ErrorMessage,
	}
}

// ReportTemplateCreatedEvent is published when a report template is created
type ReportTemplateCreatedEvent struct {
	shared.BaseDomainEvent
	Name      string    `json:"name"`
	PaperSize PaperSize `json:"paper_size"`
}

// NewReportTemplateCreatedEvent creates a new ReportTemplateCreatedEvent
func NewReportTemplateCreatedEvent(t *ReportTemplate) *ReportTemplateCreatedEvent {
	return &ReportTemplateCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReportTemplateCreated, AggregateTypeReportTemplate, t.ID, t.OrganizationID),
		Name:            t.Name,
		PaperSize:       t.PaperSize,
	}
}

// ReportTemplateUpdatedEvent is published when a report template changes
type ReportTemplateUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewReportTemplateUpdatedEvent creates a new ReportTemplateUpdatedEvent
func NewReportTemplateUpdatedEvent(t *ReportTemplate) *ReportTemplateUpdatedEvent {
	return &ReportTemplateUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReportTemplateUpdated, AggregateTypeReportTemplate, t.ID, t.OrganizationID),
		Name:            t.Name,
	}
}
