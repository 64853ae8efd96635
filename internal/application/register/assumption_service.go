package register

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/register"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/telemetry"
)

// AssumptionService handles assumption register business operations
type AssumptionService struct {
	assumptionRepo  register.AssumptionRepository
	dataPointRepo   reporting.DataPointRepository
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewAssumptionService creates a new AssumptionService
func NewAssumptionService(
	assumptionRepo register.AssumptionRepository,
	dataPointRepo reporting.DataPointRepository,
) *AssumptionService {
	return &AssumptionService{
		assumptionRepo: assumptionRepo,
		dataPointRepo:  dataPointRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AssumptionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *AssumptionService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create creates a new assumption, optionally linked to data points
func (s *AssumptionService) Create(ctx context.Context, organizationID uuid.UUID, req CreateAssumptionRequest) (*AssumptionResponse, error) {
	assumption, err := register.NewAssumption(organizationID, req.Title, req.Body, req.Category)
	if err != nil {
		return nil, err
	}

	if req.OwnerUserID != nil {
		if err := assumption.SetOwner(*req.OwnerUserID); err != nil {
			return nil, err
		}
	}
	if req.ReviewBy != nil {
		if err := assumption.SetReviewBy(*req.ReviewBy); err != nil {
			return nil, err
		}
	}

	for _, dpID := range req.DataPointIDs {
		if _, err := s.dataPointRepo.FindByIDForOrg(ctx, organizationID, dpID); err != nil {
			return nil, err
		}
		if err := assumption.LinkDataPoint(dpID); err != nil {
			return nil, err
		}
	}

	if req.CreatedBy != nil {
		assumption.SetCreatedBy(*req.CreatedBy)
	}

	// Collect domain events before save
	events := assumption.GetDomainEvents()
	assumption.ClearDomainEvents()

	// Save with events atomically (transactional outbox pattern)
	if err := s.assumptionRepo.SaveWithEvents(ctx, assumption, events); err != nil {
		return nil, err
	}

	if len(assumption.LinkedDataPointIDs) > 0 {
		if err := s.assumptionRepo.SaveLinks(ctx, assumption.ID, s.buildLinks(assumption)); err != nil {
			return nil, err
		}
	}

	response := ToAssumptionResponse(assumption)
	return &response, nil
}

// GetByID retrieves an assumption with its linked data points
func (s *AssumptionService) GetByID(ctx context.Context, organizationID, assumptionID uuid.UUID) (*AssumptionResponse, error) {
	assumption, err := s.findWithLinks(ctx, organizationID, assumptionID)
	if err != nil {
		return nil, err
	}
	response := ToAssumptionResponse(assumption)
	return &response, nil
}

// List retrieves assumptions for an organization with filtering
func (s *AssumptionService) List(ctx context.Context, organizationID uuid.UUID, filter AssumptionListFilter) ([]AssumptionResponse, int64, error) {
	if filter.DueForReview {
		assumptions, err := s.assumptionRepo.FindDueForReview(ctx, organizationID, time.Now())
		if err != nil {
			return nil, 0, err
		}
		return ToAssumptionResponses(assumptions), int64(len(assumptions)), nil
	}

	repoFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  map[string]interface{}{},
	}
	if filter.Status != nil {
		repoFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.Category != "" {
		repoFilter.Filters["category"] = filter.Category
	}
	if filter.OwnerID != nil {
		repoFilter.Filters["owner_user_id"] = *filter.OwnerID
	}

	assumptions, err := s.assumptionRepo.FindAllForOrg(ctx, organizationID, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.assumptionRepo.CountForOrg(ctx, organizationID, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToAssumptionResponses(assumptions), total, nil
}

// ListByDataPoint retrieves assumptions linked to a data point
func (s *AssumptionService) ListByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) ([]AssumptionResponse, error) {
	assumptions, err := s.assumptionRepo.FindByDataPoint(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}
	return ToAssumptionResponses(assumptions), nil
}

// Update updates an assumption's content
func (s *AssumptionService) Update(ctx context.Context, organizationID, assumptionID uuid.UUID, req UpdateAssumptionRequest) (*AssumptionResponse, error) {
	assumption, err := s.findWithLinks(ctx, organizationID, assumptionID)
	if err != nil {
		return nil, err
	}

	title := assumption.Title
	if req.Title != nil {
		title = *req.Title
	}
	body := assumption.Body
	if req.Body != nil {
		body = *req.Body
	}
	category := assumption.Category
	if req.Category != nil {
		category = *req.Category
	}

	if err := assumption.Update(title, body, category); err != nil {
		return nil, err
	}

	return s.saveAssumption(ctx, assumption)
}

// SetOwner assigns an owner to the assumption
func (s *AssumptionService) SetOwner(ctx context.Context, organizationID, assumptionID, ownerUserID uuid.UUID) (*AssumptionResponse, error) {
	assumption, err := s.findWithLinks(ctx, organizationID, assumptionID)
	if err != nil {
		return nil, err
	}

	if err := assumption.SetOwner(ownerUserID); err != nil {
		return nil, err
	}

	return s.saveAssumption(ctx, assumption)
}

// SetReviewBy sets the date by which the assumption should be revisited
func (s *AssumptionService) SetReviewBy(ctx context.Context, organizationID, assumptionID uuid.UUID, req SetAssumptionReviewRequest) (*AssumptionResponse, error) {
	assumption, err := s.findWithLinks(ctx, organizationID, assumptionID)
	if err != nil {
		return nil, err
	}

	if err := assumption.SetReviewBy(req.ReviewBy); err != nil {
		return nil, err
	}

	return s.saveAssumption(ctx, assumption)
}

// ClearReviewBy removes the review date
func (s *AssumptionService) ClearReviewBy(ctx context.Context, organizationID, assumptionID uuid.UUID) (*AssumptionResponse, error) {
	assumption, err := s.findWithLinks(ctx, organizationID, assumptionID)
	if err != nil {
		return nil, err
	}

	assumption.ClearReviewBy()

	return s.saveAssumption(ctx, assumption)
}

// LinkDataPoint links the assumption to a data point
func (s *AssumptionService) LinkDataPoint(ctx context.Context, organizationID, assumptionID, dataPointID uuid.UUID) (*AssumptionResponse, error) {
	assumption, err := s.findWithLinks(ctx, organizationID, assumptionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.dataPointRepo.FindByIDForOrg(ctx, organizationID, dataPointID); err != nil {
		return nil, err
	}

	if err := assumption.LinkDataPoint(dataPointID); err != nil {
		return nil, err
	}

	return s.saveAssumptionWithLinks(ctx, assumption)
}

// UnlinkDataPoint removes the link between the assumption and a data point
func (s *AssumptionService) UnlinkDataPoint(ctx context.Context, organizationID, assumptionID, dataPointID uuid.UUID) (*AssumptionResponse, error) {
	assumption, err := s.findWithLinks(ctx, organizationID, assumptionID)
	if err != nil {
		return nil, err
	}

	if err := assumption.UnlinkDataPoint(dataPointID); err != nil {
		return nil, err
	}

	return s.saveAssumptionWithLinks(ctx, assumption)
}

// Retire retires an assumption that no longer holds
func (s *AssumptionService) Retire(ctx context.Context, organizationID, assumptionID uuid.UUID) (*AssumptionResponse, error) {
	assumption, err := s.findWithLinks(ctx, organizationID, assumptionID)
	if err != nil {
		return nil, err
	}

	if err := assumption.Retire(); err != nil {
		return nil, err
	}

	return s.saveAssumption(ctx, assumption)
}

// Reactivate brings a retired assumption back into force
func (s *AssumptionService) Reactivate(ctx context.Context, organizationID, assumptionID uuid.UUID) (*AssumptionResponse, error) {
	assumption, err := s.findWithLinks(ctx, organizationID, assumptionID)
	if err != nil {
		return nil, err
	}

	if err := assumption.Reactivate(); err != nil {
		return nil, err
	}

	return s.saveAssumption(ctx, assumption)
}

// Delete deletes an assumption that is not linked to any data point
// Linked assumptions must be retired instead to preserve traceability
func (s *AssumptionService) Delete(ctx context.Context, organizationID, assumptionID uuid.UUID) error {
	assumption, err := s.findWithLinks(ctx, organizationID, assumptionID)
	if err != nil {
		return err
	}

	if len(assumption.LinkedDataPointIDs) > 0 {
		return shared.NewDomainError("HAS_LINKS", "Assumption is linked to data points; retire it instead")
	}

	return s.assumptionRepo.DeleteForOrg(ctx, organizationID, assumptionID)
}

// findWithLinks loads an assumption and its data point links
func (s *AssumptionService) findWithLinks(ctx context.Context, organizationID, assumptionID uuid.UUID) (*register.Assumption, error) {
	assumption, err := s.assumptionRepo.FindByIDForOrg(ctx, organizationID, assumptionID)
	if err != nil {
		return nil, err
	}
	linked, err := s.assumptionRepo.LoadLinks(ctx, assumptionID)
	if err != nil {
		return nil, err
	}
	assumption.LinkedDataPointIDs = linked
	return assumption, nil
}

// saveAssumption persists assumption changes with events through the outbox
func (s *AssumptionService) saveAssumption(ctx context.Context, assumption *register.Assumption) (*AssumptionResponse, error) {
	// Collect domain events before save
	events := assumption.GetDomainEvents()
	assumption.ClearDomainEvents()

	// Save with optimistic locking and events atomically (transactional outbox pattern)
	if err := s.assumptionRepo.SaveWithLockAndEvents(ctx, assumption, events); err != nil {
		return nil, err
	}

	response := ToAssumptionResponse(assumption)
	return &response, nil
}

// saveAssumptionWithLinks persists the assumption and replaces its link rows
func (s *AssumptionService) saveAssumptionWithLinks(ctx context.Context, assumption *register.Assumption) (*AssumptionResponse, error) {
	response, err := s.saveAssumption(ctx, assumption)
	if err != nil {
		return nil, err
	}
	if err := s.assumptionRepo.SaveLinks(ctx, assumption.ID, s.buildLinks(assumption)); err != nil {
		return nil, err
	}
	return response, nil
}

// buildLinks converts the aggregate's linked IDs into link rows
func (s *AssumptionService) buildLinks(assumption *register.Assumption) []register.AssumptionLink {
	links := make([]register.AssumptionLink, len(assumption.LinkedDataPointIDs))
	for i, dpID := range assumption.LinkedDataPointIDs {
		links[i] = register.AssumptionLink{
			AssumptionID:   assumption.ID,
			DataPointID:    dpID,
			OrganizationID: assumption.OrganizationID,
			CreatedAt:      time.Now(),
		}
	}
	return links
}
