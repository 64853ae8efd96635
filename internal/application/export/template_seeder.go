package export

import (
	"context"

	"go.uber.org/zap"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/export"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/organization"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	exportinfra "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/export"
)

// TemplateSeeder installs the built-in report templates when a new
// organization is created. Subscribed to the event bus at startup.
type TemplateSeeder struct {
	templateService *TemplateService
	logger          *zap.Logger
}

// NewTemplateSeeder creates a new TemplateSeeder
func NewTemplateSeeder(templateService *TemplateService, logger *zap.Logger) *TemplateSeeder {
	return &TemplateSeeder{
		templateService: templateService,
		logger:          logger,
	}
}

// EventTypes returns the event types this handler subscribes to
func (h *TemplateSeeder) EventTypes() []string {
	return []string{organization.EventTypeOrganizationCreated}
}

// Handle seeds the built-in templates for the freshly created organization
func (h *TemplateSeeder) Handle(ctx context.Context, event shared.DomainEvent) error {
	seeds, err := BuiltInTemplateSeeds()
	if err != nil {
		return err
	}

	if err := h.templateService.SeedDefaults(ctx, event.OrganizationID(), seeds); err != nil {
		h.logger.Error("Failed to seed default report templates",
			zap.String("organization_id", event.OrganizationID().String()),
			zap.Error(err))
		return err
	}
	return nil
}

// BuiltInTemplateSeeds converts the embedded template set into domain
// template seeds ready for SeedDefaults.
func BuiltInTemplateSeeds() ([]export.ReportTemplate, error) {
	defaults := exportinfra.GetDefaultTemplates()
	seeds := make([]export.ReportTemplate, 0, len(defaults))
	for _, d := range defaults {
		content, err := exportinfra.LoadTemplateContent(d.FilePath)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, export.ReportTemplate{
			Name:        d.Name,
			Content:     content,
			PaperSize:   d.PaperSize,
			Orientation: d.Orientation,
			Margins:     d.Margins,
			IsDefault:   d.IsDefault,
		})
	}
	return seeds, nil
}
