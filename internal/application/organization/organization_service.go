package organization

import (
	"context"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/organization"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// OrganizationService handles organization profile operations
type OrganizationService struct {
	orgRepo        organization.OrganizationRepository
	eventPublisher shared.EventPublisher
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(orgRepo organization.OrganizationRepository) *OrganizationService {
	return &OrganizationService{
		orgRepo: orgRepo,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *OrganizationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new organization
func (s *OrganizationService) Create(ctx context.Context, req CreateOrganizationRequest) (*OrganizationResponse, error) {
	exists, err := s.orgRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("CODE_EXISTS", "An organization with this code already exists")
	}

	org, err := organization.NewOrganization(req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	if req.LegalName != "" {
		if err := org.Update(req.Name, req.LegalName); err != nil {
			return nil, err
		}
	}
	if req.Country != "" {
		if err := org.SetRegistration("", req.Country); err != nil {
			return nil, err
		}
	}
	if req.Sector != "" {
		if err := org.SetSector(req.Sector); err != nil {
			return nil, err
		}
	}
	if req.Framework != "" {
		if err := org.SetFramework(organization.ReportingFramework(req.Framework)); err != nil {
			return nil, err
		}
	}

	if err := s.save(ctx, org); err != nil {
		return nil, err
	}

	response := ToOrganizationResponse(org)
	return &response, nil
}

// GetByID retrieves an organization by ID
func (s *OrganizationService) GetByID(ctx context.Context, id uuid.UUID) (*OrganizationResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToOrganizationResponse(org)
	return &response, nil
}

// GetByCode retrieves an organization by its unique code
func (s *OrganizationService) GetByCode(ctx context.Context, code string) (*OrganizationResponse, error) {
	org, err := s.orgRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	response := ToOrganizationResponse(org)
	return &response, nil
}

// List retrieves organizations matching the filter
func (s *OrganizationService) List(ctx context.Context, filter OrganizationListFilter) (*shared.Paginated[OrganizationResponse], error) {
	repoFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  map[string]interface{}{},
	}
	if filter.Country != "" {
		repoFilter.Filters["country"] = filter.Country
	}
	if filter.Sector != "" {
		repoFilter.Filters["sector"] = filter.Sector
	}

	var (
		orgs []organization.Organization
		err  error
	)
	if filter.Status != nil {
		orgs, err = s.orgRepo.FindByStatus(ctx, *filter.Status, repoFilter)
	} else {
		orgs, err = s.orgRepo.FindAll(ctx, repoFilter)
	}
	if err != nil {
		return nil, err
	}

	countFilter := repoFilter
	if filter.Status != nil {
		countFilter.Filters["status"] = string(*filter.Status)
	}
	total, err := s.orgRepo.Count(ctx, countFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToOrganizationResponses(orgs), total, repoFilter.Page, repoFilter.PageSize)
	return &result, nil
}

// Update updates an organization's profile fields
func (s *OrganizationService) Update(ctx context.Context, id uuid.UUID, req UpdateOrganizationRequest) (*OrganizationResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.LegalName != nil {
		name := org.Name
		legalName := org.LegalName
		if req.Name != nil {
			name = *req.Name
		}
		if req.LegalName != nil {
			legalName = *req.LegalName
		}
		if err := org.Update(name, legalName); err != nil {
			return nil, err
		}
	}
	if req.RegistrationNumber != nil || req.Country != nil {
		registration := org.RegistrationNumber
		country := org.Country
		if req.RegistrationNumber != nil {
			registration = *req.RegistrationNumber
		}
		if req.Country != nil {
			country = *req.Country
		}
		if err := org.SetRegistration(registration, country); err != nil {
			return nil, err
		}
	}
	if req.Sector != nil {
		if err := org.SetSector(*req.Sector); err != nil {
			return nil, err
		}
	}
	if req.Headcount != nil {
		if err := org.SetHeadcount(organization.HeadcountBand(*req.Headcount)); err != nil {
			return nil, err
		}
	}
	if req.FiscalYearStart != nil {
		if err := org.SetFiscalYearStart(*req.FiscalYearStart); err != nil {
			return nil, err
		}
	}
	if req.ContactName != nil || req.ContactPhone != nil || req.ContactEmail != nil {
		contactName := org.ContactName
		phone := org.ContactPhone
		email := org.ContactEmail
		if req.ContactName != nil {
			contactName = *req.ContactName
		}
		if req.ContactPhone != nil {
			phone = *req.ContactPhone
		}
		if req.ContactEmail != nil {
			email = *req.ContactEmail
		}
		if err := org.SetContact(contactName, phone, email); err != nil {
			return nil, err
		}
	}
	if req.Address != nil {
		if err := org.SetAddress(*req.Address); err != nil {
			return nil, err
		}
	}
	if req.Website != nil {
		if err := org.SetWebsite(*req.Website); err != nil {
			return nil, err
		}
	}
	if req.LogoURL != nil {
		if err := org.SetLogoURL(*req.LogoURL); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		org.SetNotes(*req.Notes)
	}

	if err := s.save(ctx, org); err != nil {
		return nil, err
	}

	response := ToOrganizationResponse(org)
	return &response, nil
}

// SetFramework changes the organization's reporting framework
func (s *OrganizationService) SetFramework(ctx context.Context, id uuid.UUID, req SetFrameworkRequest) (*OrganizationResponse, error) {
	return s.transition(ctx, id, func(org *organization.Organization) error {
		return org.SetFramework(organization.ReportingFramework(req.Framework))
	})
}

// UpdateConfig updates the organization's configuration
func (s *OrganizationService) UpdateConfig(ctx context.Context, id uuid.UUID, req UpdateConfigRequest) (*OrganizationResponse, error) {
	return s.transition(ctx, id, func(org *organization.Organization) error {
		config := org.Config
		if req.MaxUsers != nil {
			config.MaxUsers = *req.MaxUsers
		}
		if req.MaxUploadSizeMB != nil {
			config.MaxUploadSizeMB = *req.MaxUploadSizeMB
		}
		if req.ScoringStrategy != nil {
			config.ScoringStrategy = *req.ScoringStrategy
		}
		if req.Features != nil {
			config.Features = *req.Features
		}
		if req.Settings != nil {
			config.Settings = *req.Settings
		}
		if req.Timezone != nil {
			config.Timezone = *req.Timezone
		}
		if req.Locale != nil {
			config.Locale = *req.Locale
		}
		return org.UpdateConfig(config)
	})
}

// Activate activates an organization
func (s *OrganizationService) Activate(ctx context.Context, id uuid.UUID) (*OrganizationResponse, error) {
	return s.transition(ctx, id, (*organization.Organization).Activate)
}

// Deactivate deactivates an organization
func (s *OrganizationService) Deactivate(ctx context.Context, id uuid.UUID) (*OrganizationResponse, error) {
	return s.transition(ctx, id, (*organization.Organization).Deactivate)
}

// Suspend suspends an organization
func (s *OrganizationService) Suspend(ctx context.Context, id uuid.UUID) (*OrganizationResponse, error) {
	return s.transition(ctx, id, (*organization.Organization).Suspend)
}

// ListSectors returns the static sector catalog
func (s *OrganizationService) ListSectors() []SectorResponse {
	sectors := organization.Sectors()
	responses := make([]SectorResponse, len(sectors))
	for i, sector := range sectors {
		responses[i] = SectorResponse{Code: sector.Code, Name: sector.Name}
	}
	return responses
}

func (s *OrganizationService) transition(ctx context.Context, id uuid.UUID, fn func(*organization.Organization) error) (*OrganizationResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(org); err != nil {
		return nil, err
	}

	if err := s.save(ctx, org); err != nil {
		return nil, err
	}

	response := ToOrganizationResponse(org)
	return &response, nil
}

// save persists the organization and publishes its domain events.
// Organizations are platform level, not scoped to an organization outbox,
// so events go straight to the publisher after a successful save.
func (s *OrganizationService) save(ctx context.Context, org *organization.Organization) error {
	events := org.GetDomainEvents()
	org.ClearDomainEvents()

	if err := s.orgRepo.Save(ctx, org); err != nil {
		return err
	}

	if s.eventPublisher != nil && len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}

	return nil
}
