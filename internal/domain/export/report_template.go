package export

import (
	"strings"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// ReportTemplate is the HTML template a period report is rendered with.
// Organizations may keep several templates; one is marked as default.
type ReportTemplate struct {
	shared.OrgAggregateRoot
	Name        string         `gorm:"type:varchar(100);not null"`
	Description string         `gorm:"type:varchar(500)"`
	Content     string         `gorm:"type:text;not null"` // HTML template content
	PaperSize   PaperSize      `gorm:"type:varchar(10);not null;default:'A4'"`
	Orientation Orientation    `gorm:"type:varchar(10);not null;default:'PORTRAIT'"`
	Margins     Margins        `gorm:"embedded;embeddedPrefix:margin_"`
	IsDefault   bool           `gorm:"not null;default:false"`
	Status      TemplateStatus `gorm:"type:varchar(10);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (ReportTemplate) TableName() string {
	return "report_templates"
}

// NewReportTemplate creates a new report template
func NewReportTemplate(
	organizationID uuid.UUID,
	name string,
	content string,
	paperSize PaperSize,
) (*ReportTemplate, error) {
	if err := validateTemplateName(name); err != nil {
		return nil, err
	}
	if err := validateTemplateContent(content); err != nil {
		return nil, err
	}
	if err := validatePaperSize(paperSize); err != nil {
		return nil, err
	}

	template := &ReportTemplate{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(organizationID),
		Name:             strings.TrimSpace(name),
		Content:          content,
		PaperSize:        paperSize,
		Orientation:      OrientationPortrait,
		Margins:          DefaultMargins(),
		IsDefault:        false,
		Status:           TemplateStatusActive,
	}

	template.AddDomainEvent(NewReportTemplateCreatedEvent(template))

	return template, nil
}

// Update updates the template's basic information
func (t *ReportTemplate) Update(name, description string) error {
	if err := validateTemplateName(name); err != nil {
		return err
	}

	t.Name = strings.TrimSpace(name)
	t.Description = strings.TrimSpace(description)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewReportTemplateUpdatedEvent(t))

	return nil
}

// UpdateContent replaces the template content
func (t *ReportTemplate) UpdateContent(content string) error {
	if err := validateTemplateContent(content); err != nil {
		return err
	}

	t.Content = content
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewReportTemplateUpdatedEvent(t))

	return nil
}

// SetPaperSize sets the paper size
func (t *ReportTemplate) SetPaperSize(paperSize PaperSize) error {
	if err := validatePaperSize(paperSize); err != nil {
		return err
	}

	t.PaperSize = paperSize
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetOrientation sets the page orientation
func (t *ReportTemplate) SetOrientation(orientation Orientation) error {
	if !orientation.IsValid() {
		return shared.NewDomainError("INVALID_ORIENTATION", "Invalid orientation value")
	}

	t.Orientation = orientation
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetMargins sets the page margins
func (t *ReportTemplate) SetMargins(margins Margins) error {
	t.Margins = margins
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetAsDefault marks this template as the organization's default.
// The caller ensures only one template is marked as default.
func (t *ReportTemplate) SetAsDefault() error {
	if t.Status != TemplateStatusActive {
		return shared.NewDomainError("INVALID_STATE",
			"Only active templates can be set as default")
	}

	t.IsDefault = true
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// UnsetDefault removes the default flag
func (t *ReportTemplate) UnsetDefault() {
	t.IsDefault = false
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// Activate enables the template
func (t *ReportTemplate) Activate() error {
	if t.Status == TemplateStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Template is already active")
	}

	t.Status = TemplateStatusActive
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// Deactivate disables the template
func (t *ReportTemplate) Deactivate() error {
	if t.Status == TemplateStatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Template is already inactive")
	}
	if t.IsDefault {
		return shared.NewDomainError("INVALID_STATE",
			"The default template cannot be deactivated")
	}

	t.Status = TemplateStatusInactive
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// IsActive returns true if the template is active
func (t *ReportTemplate) IsActive() bool {
	return t.Status == TemplateStatusActive
}

// CanBeUsed returns true if the template may be used for rendering
func (t *ReportTemplate) CanBeUsed() bool {
	return t.Status == TemplateStatusActive
}

// Validation functions

func validateTemplateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Template name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Template name cannot exceed 100 characters")
	}
	return nil
}

func validateTemplateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return shared.NewDomainError("INVALID_CONTENT", "Template content cannot be empty")
	}
	return nil
}

func validatePaperSize(paperSize PaperSize) error {
	if !paperSize.IsValid() {
		return shared.NewDomainError("INVALID_PAPER_SIZE", "Invalid paper size value")
	}
	return nil
}
