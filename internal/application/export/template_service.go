package export

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/export"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// TemplateService manages the report templates a period report can be
// rendered with. At most one active template per organization is default.
type TemplateService struct {
	templateRepo   export.ReportTemplateRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewTemplateService creates a new template service
func NewTemplateService(templateRepo export.ReportTemplateRepository, logger *zap.Logger) *TemplateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateService{
		templateRepo: templateRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *TemplateService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new report template
func (s *TemplateService) Create(ctx context.Context, organizationID uuid.UUID, req CreateTemplateRequest) (*TemplateResponse, error) {
	template, err := export.NewReportTemplate(organizationID, req.Name, req.Content, req.PaperSize)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		if err := template.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}
	if req.Orientation != "" {
		if err := template.SetOrientation(req.Orientation); err != nil {
			return nil, err
		}
	}
	if req.CreatedBy != nil {
		template.SetCreatedBy(*req.CreatedBy)
	}

	events := template.GetDomainEvents()
	template.ClearDomainEvents()
	if err := s.templateRepo.SaveWithEvents(ctx, template, events); err != nil {
		return nil, err
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

// GetByID retrieves a template by ID
func (s *TemplateService) GetByID(ctx context.Context, organizationID, templateID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForOrg(ctx, organizationID, templateID)
	if err != nil {
		return nil, err
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

// GetDefault retrieves the organization's default template
func (s *TemplateService) GetDefault(ctx context.Context, organizationID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindDefaultForOrg(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

// List retrieves templates matching the filter
func (s *TemplateService) List(ctx context.Context, organizationID uuid.UUID, filter TemplateListFilter) (*shared.Paginated[TemplateResponse], error) {
	repoFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Filters:  map[string]interface{}{},
	}
	if filter.Status != nil {
		repoFilter.Filters["status"] = string(*filter.Status)
	}

	templates, err := s.templateRepo.FindAllForOrg(ctx, organizationID, repoFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.templateRepo.CountForOrg(ctx, organizationID, repoFilter)
	if err != nil {
		return nil, err
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = len(templates)
		if pageSize == 0 {
			pageSize = 1
		}
	}
	result := shared.NewPaginated(ToTemplateResponses(templates), total, filter.Page, pageSize)
	return &result, nil
}

// Update updates a template's metadata, content, and page setup
func (s *TemplateService) Update(ctx context.Context, organizationID, templateID uuid.UUID, req UpdateTemplateRequest) (*TemplateResponse, error) {
	return s.mutate(ctx, organizationID, templateID, func(template *export.ReportTemplate) error {
		name := template.Name
		description := template.Description
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if req.Name != nil || req.Description != nil {
			if err := template.Update(name, description); err != nil {
				return err
			}
		}
		if req.Content != nil {
			if err := template.UpdateContent(*req.Content); err != nil {
				return err
			}
		}
		if req.PaperSize != nil {
			if err := template.SetPaperSize(*req.PaperSize); err != nil {
				return err
			}
		}
		if req.Orientation != nil {
			if err := template.SetOrientation(*req.Orientation); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetMargins changes a template's page margins
func (s *TemplateService) SetMargins(ctx context.Context, organizationID, templateID uuid.UUID, req SetMarginsRequest) (*TemplateResponse, error) {
	margins, err := export.NewMargins(req.Top, req.Right, req.Bottom, req.Left)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, organizationID, templateID, func(template *export.ReportTemplate) error {
		return template.SetMargins(margins)
	})
}

// SetDefault marks a template as the organization's default, clearing the
// flag on whichever template held it before
func (s *TemplateService) SetDefault(ctx context.Context, organizationID, templateID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForOrg(ctx, organizationID, templateID)
	if err != nil {
		return nil, err
	}
	if err := template.SetAsDefault(); err != nil {
		return nil, err
	}

	if err := s.templateRepo.ClearDefaultForOrg(ctx, organizationID); err != nil {
		return nil, err
	}
	if err := s.saveTemplate(ctx, template); err != nil {
		return nil, err
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

// Activate enables a template
func (s *TemplateService) Activate(ctx context.Context, organizationID, templateID uuid.UUID) (*TemplateResponse, error) {
	return s.mutate(ctx, organizationID, templateID, (*export.ReportTemplate).Activate)
}

// Deactivate disables a template. The default template cannot be deactivated.
func (s *TemplateService) Deactivate(ctx context.Context, organizationID, templateID uuid.UUID) (*TemplateResponse, error) {
	return s.mutate(ctx, organizationID, templateID, (*export.ReportTemplate).Deactivate)
}

// Delete removes a template
func (s *TemplateService) Delete(ctx context.Context, organizationID, templateID uuid.UUID) error {
	template, err := s.templateRepo.FindByIDForOrg(ctx, organizationID, templateID)
	if err != nil {
		return err
	}
	if template.IsDefault {
		return shared.NewDomainError("INVALID_STATE", "The default template cannot be deleted")
	}
	return s.templateRepo.DeleteForOrg(ctx, organizationID, templateID)
}

// SeedDefaults installs the built-in templates for a new organization.
// Existing templates are left untouched.
func (s *TemplateService) SeedDefaults(ctx context.Context, organizationID uuid.UUID, defaults []export.ReportTemplate) error {
	count, err := s.templateRepo.CountForOrg(ctx, organizationID, shared.Filter{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for i := range defaults {
		seed := defaults[i]
		template, err := export.NewReportTemplate(organizationID, seed.Name, seed.Content, seed.PaperSize)
		if err != nil {
			return err
		}
		if seed.Orientation != "" {
			if err := template.SetOrientation(seed.Orientation); err != nil {
				return err
			}
		}
		if !seed.Margins.IsZero() {
			if err := template.SetMargins(seed.Margins); err != nil {
				return err
			}
		}
		if seed.IsDefault {
			if err := template.SetAsDefault(); err != nil {
				return err
			}
		}

		events := template.GetDomainEvents()
		template.ClearDomainEvents()
		if err := s.templateRepo.SaveWithEvents(ctx, template, events); err != nil {
			return err
		}
	}

	s.logger.Info("Seeded default report templates",
		zap.String("organization_id", organizationID.String()),
		zap.Int("count", len(defaults)))
	return nil
}

func (s *TemplateService) mutate(ctx context.Context, organizationID, templateID uuid.UUID, fn func(*export.ReportTemplate) error) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForOrg(ctx, organizationID, templateID)
	if err != nil {
		return nil, err
	}
	if err := fn(template); err != nil {
		return nil, err
	}
	if err := s.saveTemplate(ctx, template); err != nil {
		return nil, err
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

func (s *TemplateService) saveTemplate(ctx context.Context, template *export.ReportTemplate) error {
	events := template.GetDomainEvents()
	template.ClearDomainEvents()
	return s.templateRepo.SaveWithLockAndEvents(ctx, template, events)
}
