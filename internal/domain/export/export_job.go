package export

import (
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// ExportJob represents one export of report data to a downloadable file.
// The subject of the export is a reporting period; CSV extracts may
// additionally narrow to a section.
type ExportJob struct {
	shared.OrgAggregateRoot
	DocType      DocType    `gorm:"type:varchar(30);not null"`
	Format       Format     `gorm:"type:varchar(10);not null"`
	PeriodID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	SectionID    *uuid.UUID `gorm:"type:uuid"` // Optional narrowing for data point extracts
	TemplateID   *uuid.UUID `gorm:"type:uuid"` // Report template used for PDF renders
	Status       JobStatus  `gorm:"type:varchar(20);not null;default:'PENDING'"`
	FileURL      string     `gorm:"type:varchar(500)"`
	FileSize     int64
	ErrorMessage string     `gorm:"type:text"`
	RequestedBy  *uuid.UUID `gorm:"type:uuid"`
	CompletedAt  *time.Time
}

// TableName returns the table name for GORM
func (ExportJob) TableName() string {
	return "export_jobs"
}

// NewExportJob creates a new pending export job
func NewExportJob(
	organizationID uuid.UUID,
	docType DocType,
	format Format,
	periodID uuid.UUID,
	requestedBy uuid.UUID,
) (*ExportJob, error) {
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOC_TYPE", "Invalid export document type")
	}
	if !format.IsValid() {
		return nil, shared.NewDomainError("INVALID_FORMAT", "Invalid export format")
	}
	if !docType.SupportsFormat(format) {
		return nil, shared.NewDomainError("UNSUPPORTED_FORMAT",
			"Document type "+docType.String()+" cannot be exported as "+format.String())
	}
	if periodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PERIOD_ID", "Period ID cannot be empty")
	}

	job := &ExportJob{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(organizationID),
		DocType:          docType,
		Format:           format,
		PeriodID:         periodID,
		Status:           JobStatusPending,
	}
	if requestedBy != uuid.Nil {
		job.RequestedBy = &requestedBy
	}

	job.AddDomainEvent(NewExportJobCreatedEvent(job))

	return job, nil
}

// SetSection narrows a data point extract to a single section
func (j *ExportJob) SetSection(sectionID uuid.UUID) error {
	if j.DocType != DocTypeDataPoints {
		return shared.NewDomainError("INVALID_SECTION",
			"Only data point extracts can be narrowed to a section")
	}
	if sectionID == uuid.Nil {
		return shared.NewDomainError("INVALID_SECTION", "Section ID cannot be empty")
	}
	j.SectionID = &sectionID
	j.UpdatedAt = time.Now()
	return nil
}

// SetTemplate records the report template a PDF render used
func (j *ExportJob) SetTemplate(templateID uuid.UUID) error {
	if j.Format != FormatPDF {
		return shared.NewDomainError("INVALID_TEMPLATE",
			"Templates apply to PDF exports only")
	}
	if templateID == uuid.Nil {
		return shared.NewDomainError("INVALID_TEMPLATE", "Template ID cannot be empty")
	}
	j.TemplateID = &templateID
	j.UpdatedAt = time.Now()
	return nil
}

// StartRendering marks the job as rendering
func (j *ExportJob) StartRendering() error {
	if !j.Status.CanTransitionTo(JobStatusRendering) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot start rendering from status: "+j.Status.String())
	}

	j.Status = JobStatusRendering
	j.UpdatedAt = time.Now()
	j.IncrementVersion()

	j.AddDomainEvent(NewExportJobStatusChangedEvent(j, JobStatusPending, JobStatusRendering))

	return nil
}

// Complete marks the job as completed with the output file location
func (j *ExportJob) Complete(fileURL string, fileSize int64) error {
	if !j.Status.CanTransitionTo(JobStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot complete from status: "+j.Status.String())
	}
	if fileURL == "" {
		return shared.NewDomainError("INVALID_FILE_URL", "File URL cannot be empty")
	}

	oldStatus := j.Status
	j.Status = JobStatusCompleted
	j.FileURL = fileURL
	j.FileSize = fileSize
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
	j.IncrementVersion()

	j.AddDomainEvent(NewExportJobStatusChangedEvent(j, oldStatus, JobStatusCompleted))
	j.AddDomainEvent(NewExportJobCompletedEvent(j))

	return nil
}

// Fail marks the job as failed with an error message
func (j *ExportJob) Fail(errorMessage string) error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot fail a job that is already in terminal status: "+j.Status.String())
	}

	oldStatus := j.Status
	j.Status = JobStatusFailed
	j.ErrorMessage = errorMessage
	j.UpdatedAt = time.Now()
	j.IncrementVersion()

	j.AddDomainEvent(NewExportJobStatusChangedEvent(j, oldStatus, JobStatusFailed))
	j.AddDomainEvent(NewExportJobFailedEvent(j))

	return nil
}

// IsPending returns true if the job is pending
func (j *ExportJob) IsPending() bool {
	return j.Status == JobStatusPending
}

// IsCompleted returns true if the job is completed
func (j *ExportJob) IsCompleted() bool {
	return j.Status == JobStatusCompleted
}

// IsTerminal returns true if the job is in a terminal state
func (j *ExportJob) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// HasFile returns true if an output file has been produced
func (j *ExportJob) HasFile() bool {
	return j.FileURL != ""
}
