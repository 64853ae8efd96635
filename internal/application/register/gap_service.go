package register

import (
	"context"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/register"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/remediation"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// GapService handles disclosure gap business operations
type GapService struct {
	gapRepo        register.GapRepository
	periodRepo     reporting.ReportingPeriodRepository
	sectionRepo    reporting.ReportSectionRepository
	dataPointRepo  reporting.DataPointRepository
	planRepo       remediation.RemediationPlanRepository
	eventPublisher shared.EventPublisher
}

// NewGapService creates a new GapService
func NewGapService(
	gapRepo register.GapRepository,
	periodRepo reporting.ReportingPeriodRepository,
	sectionRepo reporting.ReportSectionRepository,
	dataPointRepo reporting.DataPointRepository,
	planRepo remediation.RemediationPlanRepository,
) *GapService {
	return &GapService{
		gapRepo:       gapRepo,
		periodRepo:    periodRepo,
		sectionRepo:   sectionRepo,
		dataPointRepo: dataPointRepo,
		planRepo:      planRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *GapService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create raises a new disclosure gap within a period
func (s *GapService) Create(ctx context.Context, organizationID uuid.UUID, req CreateGapRequest) (*GapResponse, error) {
	period, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, req.PeriodID)
	if err != nil {
		return nil, err
	}
	if !period.IsEditable() {
		return nil, shared.ErrPeriodClosed
	}

	if req.SectionID != nil {
		section, err := s.sectionRepo.FindByIDForOrg(ctx, organizationID, *req.SectionID)
		if err != nil {
			return nil, err
		}
		if section.PeriodID != req.PeriodID {
			return nil, shared.NewDomainError("SECTION_PERIOD_MISMATCH", "Section belongs to a different period")
		}
	}
	if req.DataPointID != nil {
		dataPoint, err := s.dataPointRepo.FindByIDForOrg(ctx, organizationID, *req.DataPointID)
		if err != nil {
			return nil, err
		}
		if dataPoint.PeriodID != req.PeriodID {
			return nil, shared.NewDomainError("DATA_POINT_PERIOD_MISMATCH", "Data point belongs to a different period")
		}
	}

	gap, err := register.NewGap(organizationID, req.PeriodID, req.SectionID, req.DataPointID, req.Title, req.Description, register.GapSeverity(req.Severity))
	if err != nil {
		return nil, err
	}

	if req.RaisedBy != nil {
		gap.SetRaisedBy(*req.RaisedBy)
		gap.SetCreatedBy(*req.RaisedBy)
	}

	// Collect domain events before save
	events := gap.GetDomainEvents()
	gap.ClearDomainEvents()

	// Save with events atomically (transactional outbox pattern)
	if err := s.gapRepo.SaveWithEvents(ctx, gap, events); err != nil {
		return nil, err
	}

	response := ToGapResponse(gap)
	return &response, nil
}

// GetByID retrieves a gap by ID
func (s *GapService) GetByID(ctx context.Context, organizationID, gapID uuid.UUID) (*GapResponse, error) {
	gap, err := s.gapRepo.FindByIDForOrg(ctx, organizationID, gapID)
	if err != nil {
		return nil, err
	}
	response := ToGapResponse(gap)
	return &response, nil
}

// List retrieves gaps for an organization with filtering
func (s *GapService) List(ctx context.Context, organizationID uuid.UUID, filter GapListFilter) ([]GapResponse, int64, error) {
	if filter.OpenOnly && filter.PeriodID != nil {
		gaps, err := s.gapRepo.FindOpenByPeriod(ctx, organizationID, *filter.PeriodID)
		if err != nil {
			return nil, 0, err
		}
		return ToGapResponses(gaps), int64(len(gaps)), nil
	}

	repoFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  map[string]interface{}{},
	}
	if filter.PeriodID != nil {
		repoFilter.Filters["period_id"] = *filter.PeriodID
	}
	if filter.SectionID != nil {
		repoFilter.Filters["section_id"] = *filter.SectionID
	}
	if filter.DataPointID != nil {
		repoFilter.Filters["data_point_id"] = *filter.DataPointID
	}
	if filter.Status != nil {
		repoFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.Severity != nil {
		repoFilter.Filters["severity"] = string(*filter.Severity)
	}

	gaps, err := s.gapRepo.FindAllForOrg(ctx, organizationID, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.gapRepo.CountForOrg(ctx, organizationID, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToGapResponses(gaps), total, nil
}

// ListByDataPoint retrieves gaps bound to a data point
func (s *GapService) ListByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) ([]GapResponse, error) {
	gaps, err := s.gapRepo.FindByDataPoint(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}
	return ToGapResponses(gaps), nil
}

// Update updates a gap's content and severity
func (s *GapService) Update(ctx context.Context, organizationID, gapID uuid.UUID, req UpdateGapRequest) (*GapResponse, error) {
	gap, err := s.gapRepo.FindByIDForOrg(ctx, organizationID, gapID)
	if err != nil {
		return nil, err
	}

	title := gap.Title
	if req.Title != nil {
		title = *req.Title
	}
	description := gap.Description
	if req.Description != nil {
		description = *req.Description
	}
	severity := gap.Severity
	if req.Severity != nil {
		severity = register.GapSeverity(*req.Severity)
	}

	if err := gap.Update(title, description, severity); err != nil {
		return nil, err
	}

	return s.saveGap(ctx, gap)
}

// Acknowledge moves an open gap to acknowledged
func (s *GapService) Acknowledge(ctx context.Context, organizationID, gapID uuid.UUID) (*GapResponse, error) {
	return s.transition(ctx, organizationID, gapID, (*register.Gap).Acknowledge)
}

// StartRemediation moves a gap into remediation
func (s *GapService) StartRemediation(ctx context.Context, organizationID, gapID uuid.UUID) (*GapResponse, error) {
	return s.transition(ctx, organizationID, gapID, (*register.Gap).StartRemediation)
}

// Resolve closes a gap as resolved with a resolution note
func (s *GapService) Resolve(ctx context.Context, organizationID, gapID uuid.UUID, req CloseGapRequest) (*GapResponse, error) {
	gap, err := s.gapRepo.FindByIDForOrg(ctx, organizationID, gapID)
	if err != nil {
		return nil, err
	}

	if err := gap.Resolve(req.Note, req.ClosedBy); err != nil {
		return nil, err
	}

	return s.saveGap(ctx, gap)
}

// Accept closes a gap as consciously accepted with a justification note
func (s *GapService) Accept(ctx context.Context, organizationID, gapID uuid.UUID, req CloseGapRequest) (*GapResponse, error) {
	gap, err := s.gapRepo.FindByIDForOrg(ctx, organizationID, gapID)
	if err != nil {
		return nil, err
	}

	if err := gap.Accept(req.Note, req.ClosedBy); err != nil {
		return nil, err
	}

	return s.saveGap(ctx, gap)
}

// Delete deletes a gap no remediation plan still targets
func (s *GapService) Delete(ctx context.Context, organizationID, gapID uuid.UUID) error {
	if _, err := s.gapRepo.FindByIDForOrg(ctx, organizationID, gapID); err != nil {
		return err
	}

	activePlans, err := s.planRepo.CountActiveByGap(ctx, organizationID, gapID)
	if err != nil {
		return err
	}
	if activePlans > 0 {
		return shared.NewDomainError("HAS_ACTIVE_PLANS", "Gap is targeted by active remediation plans")
	}

	return s.gapRepo.DeleteForOrg(ctx, organizationID, gapID)
}

// transition applies a domain status transition and saves the gap
func (s *GapService) transition(ctx context.Context, organizationID, gapID uuid.UUID, fn func(*register.Gap) error) (*GapResponse, error) {
	gap, err := s.gapRepo.FindByIDForOrg(ctx, organizationID, gapID)
	if err != nil {
		return nil, err
	}

	if err := fn(gap); err != nil {
		return nil, err
	}

	return s.saveGap(ctx, gap)
}

// saveGap persists gap changes with events through the outbox
func (s *GapService) saveGap(ctx context.Context, gap *register.Gap) (*GapResponse, error) {
	// Collect domain events before save
	events := gap.GetDomainEvents()
	gap.ClearDomainEvents()

	// Save with optimistic locking and events atomically (transactional outbox pattern)
	if err := s.gapRepo.SaveWithLockAndEvents(ctx, gap, events); err != nil {
		return nil, err
	}

	response := ToGapResponse(gap)
	return &response, nil
}
