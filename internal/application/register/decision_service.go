package register

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/register"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// DecisionService handles estimation decision business operations
type DecisionService struct {
	decisionRepo   register.DecisionRepository
	dataPointRepo  reporting.DataPointRepository
	eventPublisher shared.EventPublisher
}

// NewDecisionService creates a new DecisionService
func NewDecisionService(
	decisionRepo register.DecisionRepository,
	dataPointRepo reporting.DataPointRepository,
) *DecisionService {
	return &DecisionService{
		decisionRepo:  decisionRepo,
		dataPointRepo: dataPointRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *DecisionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create records a new estimation decision
func (s *DecisionService) Create(ctx context.Context, organizationID uuid.UUID, req CreateDecisionRequest) (*DecisionResponse, error) {
	decidedAt := time.Now()
	if req.DecidedAt != nil {
		decidedAt = *req.DecidedAt
	}

	decision, err := register.NewDecision(organizationID, req.Title, req.Method, req.Rationale, register.ConfidenceLevel(req.Confidence), decidedAt)
	if err != nil {
		return nil, err
	}

	if req.ApproverUserID != nil {
		if err := decision.SetApprover(*req.ApproverUserID); err != nil {
			return nil, err
		}
	}

	for _, dpID := range req.DataPointIDs {
		if _, err := s.dataPointRepo.FindByIDForOrg(ctx, organizationID, dpID); err != nil {
			return nil, err
		}
		if err := decision.LinkDataPoint(dpID); err != nil {
			return nil, err
		}
	}

	if req.CreatedBy != nil {
		decision.SetCreatedBy(*req.CreatedBy)
	}

	// Collect domain events before save
	events := decision.GetDomainEvents()
	decision.ClearDomainEvents()

	// Save with events atomically (transactional outbox pattern)
	if err := s.decisionRepo.SaveWithEvents(ctx, decision, events); err != nil {
		return nil, err
	}

	if len(decision.AffectedDataPointIDs) > 0 {
		if err := s.decisionRepo.SaveLinks(ctx, decision.ID, s.buildLinks(decision)); err != nil {
			return nil, err
		}
	}

	response := ToDecisionResponse(decision)
	return &response, nil
}

// GetByID retrieves a decision with its affected data points
func (s *DecisionService) GetByID(ctx context.Context, organizationID, decisionID uuid.UUID) (*DecisionResponse, error) {
	decision, err := s.findWithLinks(ctx, organizationID, decisionID)
	if err != nil {
		return nil, err
	}
	response := ToDecisionResponse(decision)
	return &response, nil
}

// List retrieves decisions for an organization with filtering
func (s *DecisionService) List(ctx context.Context, organizationID uuid.UUID, filter DecisionListFilter) ([]DecisionResponse, int64, error) {
	repoFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  map[string]interface{}{},
	}
	if filter.Confidence != nil {
		repoFilter.Filters["confidence"] = string(*filter.Confidence)
	}
	if filter.ApproverID != nil {
		repoFilter.Filters["approver_user_id"] = *filter.ApproverID
	}
	if filter.Method != "" {
		repoFilter.Filters["method"] = filter.Method
	}

	decisions, err := s.decisionRepo.FindAllForOrg(ctx, organizationID, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.decisionRepo.CountForOrg(ctx, organizationID, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToDecisionResponses(decisions), total, nil
}

// ListByDataPoint retrieves decisions covering a data point, newest first
func (s *DecisionService) ListByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) ([]DecisionResponse, error) {
	decisions, err := s.decisionRepo.FindByDataPoint(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}
	return ToDecisionResponses(decisions), nil
}

// Update updates a decision's content
func (s *DecisionService) Update(ctx context.Context, organizationID, decisionID uuid.UUID, req UpdateDecisionRequest) (*DecisionResponse, error) {
	decision, err := s.findWithLinks(ctx, organizationID, decisionID)
	if err != nil {
		return nil, err
	}

	title := decision.Title
	if req.Title != nil {
		title = *req.Title
	}
	method := decision.Method
	if req.Method != nil {
		method = *req.Method
	}
	rationale := decision.Rationale
	if req.Rationale != nil {
		rationale = *req.Rationale
	}
	confidence := decision.Confidence
	if req.Confidence != nil {
		confidence = register.ConfidenceLevel(*req.Confidence)
	}

	if err := decision.Update(title, method, rationale, confidence); err != nil {
		return nil, err
	}

	return s.saveDecision(ctx, decision)
}

// SetApprover records who approved the estimation approach
func (s *DecisionService) SetApprover(ctx context.Context, organizationID, decisionID uuid.UUID, req SetDecisionApproverRequest) (*DecisionResponse, error) {
	decision, err := s.findWithLinks(ctx, organizationID, decisionID)
	if err != nil {
		return nil, err
	}

	if err := decision.SetApprover(req.ApproverUserID); err != nil {
		return nil, err
	}

	return s.saveDecision(ctx, decision)
}

// LinkDataPoint marks a data point as affected by the decision
func (s *DecisionService) LinkDataPoint(ctx context.Context, organizationID, decisionID, dataPointID uuid.UUID) (*DecisionResponse, error) {
	decision, err := s.findWithLinks(ctx, organizationID, decisionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.dataPointRepo.FindByIDForOrg(ctx, organizationID, dataPointID); err != nil {
		return nil, err
	}

	if err := decision.LinkDataPoint(dataPointID); err != nil {
		return nil, err
	}

	return s.saveDecisionWithLinks(ctx, decision)
}

// UnlinkDataPoint removes a data point from the decision's coverage
func (s *DecisionService) UnlinkDataPoint(ctx context.Context, organizationID, decisionID, dataPointID uuid.UUID) (*DecisionResponse, error) {
	decision, err := s.findWithLinks(ctx, organizationID, decisionID)
	if err != nil {
		return nil, err
	}

	if err := decision.UnlinkDataPoint(dataPointID); err != nil {
		return nil, err
	}

	return s.saveDecisionWithLinks(ctx, decision)
}

// Delete deletes a decision that no longer covers any data point
// Decisions still linked to data points must be unlinked first
func (s *DecisionService) Delete(ctx context.Context, organizationID, decisionID uuid.UUID) error {
	decision, err := s.findWithLinks(ctx, organizationID, decisionID)
	if err != nil {
		return err
	}

	if len(decision.AffectedDataPointIDs) > 0 {
		return shared.NewDomainError("IN_USE", "Decision still covers data points; unlink them first")
	}

	return s.decisionRepo.DeleteForOrg(ctx, organizationID, decisionID)
}

// findWithLinks loads a decision and its affected data point links
func (s *DecisionService) findWithLinks(ctx context.Context, organizationID, decisionID uuid.UUID) (*register.Decision, error) {
	decision, err := s.decisionRepo.FindByIDForOrg(ctx, organizationID, decisionID)
	if err != nil {
		return nil, err
	}
	affected, err := s.decisionRepo.LoadLinks(ctx, decisionID)
	if err != nil {
		return nil, err
	}
	decision.AffectedDataPointIDs = affected
	return decision, nil
}

// saveDecision persists decision changes with events through the outbox
func (s *DecisionService) saveDecision(ctx context.Context, decision *register.Decision) (*DecisionResponse, error) {
	// Collect domain events before save
	events := decision.GetDomainEvents()
	decision.ClearDomainEvents()

	// Save with optimistic locking and events atomically (transactional outbox pattern)
	if err := s.decisionRepo.SaveWithLockAndEvents(ctx, decision, events); err != nil {
		return nil, err
	}

	response := ToDecisionResponse(decision)
	return &response, nil
}

// saveDecisionWithLinks persists the decision and replaces its link rows
func (s *DecisionService) saveDecisionWithLinks(ctx context.Context, decision *register.Decision) (*DecisionResponse, error) {
	response, err := s.saveDecision(ctx, decision)
	if err != nil {
		return nil, err
	}
	if err := s.decisionRepo.SaveLinks(ctx, decision.ID, s.buildLinks(decision)); err != nil {
		return nil, err
	}
	return response, nil
}

// buildLinks converts the aggregate's affected IDs into link rows
func (s *DecisionService) buildLinks(decision *register.Decision) []register.DecisionLink {
	links := make([]register.DecisionLink, len(decision.AffectedDataPointIDs))
	for i, dpID := range decision.AffectedDataPointIDs {
		links[i] = register.DecisionLink{
			DecisionID:     decision.ID,
			DataPointID:    dpID,
			OrganizationID: decision.OrganizationID,
			CreatedAt:      time.Now(),
		}
	}
	return links
}
