package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/register"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/telemetry"
)

// SectionScopeChecker reports whether a user may modify content within a
// section. Users whose roles carry no section scope are unrestricted.
type SectionScopeChecker interface {
	CanAccessSection(ctx context.Context, organizationID, userID, sectionID uuid.UUID) (bool, error)
}

// DataPointService handles data point business operations
type DataPointService struct {
	dataPointRepo   reporting.DataPointRepository
	sectionRepo     reporting.ReportSectionRepository
	periodRepo      reporting.ReportingPeriodRepository
	gapRepo         register.GapRepository
	decisionRepo    register.DecisionRepository
	sectionScope    SectionScopeChecker
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewDataPointService creates a new DataPointService
func NewDataPointService(
	dataPointRepo reporting.DataPointRepository,
	sectionRepo reporting.ReportSectionRepository,
	periodRepo reporting.ReportingPeriodRepository,
	gapRepo register.GapRepository,
	decisionRepo register.DecisionRepository,
) *DataPointService {
	return &DataPointService{
		dataPointRepo: dataPointRepo,
		sectionRepo:   sectionRepo,
		periodRepo:    periodRepo,
		gapRepo:       gapRepo,
		decisionRepo:  decisionRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *DataPointService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *DataPointService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetSectionScope sets the checker enforcing per-section responsibility
func (s *DataPointService) SetSectionScope(checker SectionScopeChecker) {
	s.sectionScope = checker
}

// Create creates a new data point under a section
func (s *DataPointService) Create(ctx context.Context, organizationID uuid.UUID, req CreateDataPointRequest) (*DataPointResponse, error) {
	section, err := s.sectionRepo.FindByIDForOrg(ctx, organizationID, req.SectionID)
	if err != nil {
		return nil, err
	}
	if !section.IsActive {
		return nil, shared.NewDomainError("SECTION_INACTIVE", "Cannot add data points to a deactivated section")
	}
	if section.IsApproved() {
		return nil, shared.ErrSectionLocked
	}

	if err := s.ensurePeriodEditable(ctx, organizationID, section.PeriodID); err != nil {
		return nil, err
	}

	// Codes are unique per period
	exists, err := s.dataPointRepo.ExistsByCode(ctx, organizationID, section.PeriodID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A data point with this code already exists in the period")
	}

	var dp *reporting.DataPoint
	switch reporting.DataPointKind(req.Kind) {
	case reporting.DataPointKindMetric:
		dp, err = reporting.NewMetricDataPoint(organizationID, section.PeriodID, section.ID, req.Code, req.Name, req.UnitCode)
	case reporting.DataPointKindNarrative:
		dp, err = reporting.NewNarrativeDataPoint(organizationID, section.PeriodID, section.ID, req.Code, req.Name)
	case reporting.DataPointKindBoolean:
		dp, err = reporting.NewBooleanDataPoint(organizationID, section.PeriodID, section.ID, req.Code, req.Name)
	default:
		return nil, shared.NewDomainError("INVALID_KIND", "Kind must be metric, narrative or boolean")
	}
	if err != nil {
		return nil, err
	}

	if req.Guidance != "" || req.StandardRef != "" {
		if err := dp.Update(req.Name, req.Guidance, req.StandardRef); err != nil {
			return nil, err
		}
	}
	if req.Mandatory {
		dp.SetMandatory(true)
	}
	if req.OwnerUserID != nil {
		if err := dp.AssignOwner(*req.OwnerUserID); err != nil {
			return nil, err
		}
	}

	// Set created_by if provided (from JWT context via handler)
	if req.CreatedBy != nil {
		dp.SetCreatedBy(*req.CreatedBy)
	}

	// Collect domain events before save
	events := dp.GetDomainEvents()
	dp.ClearDomainEvents()

	// Save with events atomically (transactional outbox pattern)
	if err := s.dataPointRepo.SaveWithEvents(ctx, dp, events); err != nil {
		return nil, err
	}

	response := ToDataPointResponse(dp)
	return &response, nil
}

// GetByID retrieves a data point by ID
func (s *DataPointService) GetByID(ctx context.Context, organizationID, dataPointID uuid.UUID) (*DataPointResponse, error) {
	dp, err := s.dataPointRepo.FindByIDForOrg(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}
	response := ToDataPointResponse(dp)
	return &response, nil
}

// GetByCode retrieves a data point by code within a period
func (s *DataPointService) GetByCode(ctx context.Context, organizationID, periodID uuid.UUID, code string) (*DataPointResponse, error) {
	dp, err := s.dataPointRepo.FindByCode(ctx, organizationID, periodID, code)
	if err != nil {
		return nil, err
	}
	response := ToDataPointResponse(dp)
	return &response, nil
}

// List retrieves data points of a period with filtering and pagination
func (s *DataPointService) List(ctx context.Context, organizationID uuid.UUID, filter DataPointListFilter) ([]DataPointResponse, int64, error) {
	if filter.PeriodID == nil {
		return nil, 0, shared.NewDomainError("INVALID_FILTER", "Period ID is required")
	}

	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	// Build domain filter
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.SectionID != nil {
		domainFilter.Filters["section_id"] = *filter.SectionID
	}
	if filter.Kind != nil {
		domainFilter.Filters["kind"] = string(*filter.Kind)
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.Mandatory != nil {
		domainFilter.Filters["mandatory"] = *filter.Mandatory
	}
	if filter.OwnerID != nil {
		domainFilter.Filters["owner_user_id"] = *filter.OwnerID
	}

	dps, err := s.dataPointRepo.FindByPeriod(ctx, organizationID, *filter.PeriodID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.dataPointRepo.CountByPeriod(ctx, organizationID, *filter.PeriodID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToDataPointResponses(dps), total, nil
}

// ListBySection retrieves all data points of a section
func (s *DataPointService) ListBySection(ctx context.Context, organizationID, sectionID uuid.UUID) ([]DataPointResponse, error) {
	dps, err := s.dataPointRepo.FindBySection(ctx, organizationID, sectionID)
	if err != nil {
		return nil, err
	}
	return ToDataPointResponses(dps), nil
}

// ListMandatoryIncomplete retrieves mandatory data points not yet complete
func (s *DataPointService) ListMandatoryIncomplete(ctx context.Context, organizationID, periodID uuid.UUID) ([]DataPointResponse, error) {
	dps, err := s.dataPointRepo.FindMandatoryIncomplete(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}
	return ToDataPointResponses(dps), nil
}

// ListEstimated retrieves data points carrying estimated values
func (s *DataPointService) ListEstimated(ctx context.Context, organizationID, periodID uuid.UUID) ([]DataPointResponse, error) {
	dps, err := s.dataPointRepo.FindEstimatedByPeriod(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}
	return ToDataPointResponses(dps), nil
}

// Update updates a data point's descriptive fields
func (s *DataPointService) Update(ctx context.Context, organizationID, dataPointID uuid.UUID, req UpdateDataPointRequest) (*DataPointResponse, error) {
	dp, err := s.loadForChange(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}

	name := dp.Name
	if req.Name != nil {
		name = *req.Name
	}
	guidance := dp.Guidance
	if req.Guidance != nil {
		guidance = *req.Guidance
	}
	standardRef := dp.StandardRef
	if req.StandardRef != nil {
		standardRef = *req.StandardRef
	}

	if err := dp.Update(name, guidance, standardRef); err != nil {
		return nil, err
	}

	if req.Mandatory != nil {
		dp.SetMandatory(*req.Mandatory)
	}

	return s.saveDataPoint(ctx, dp)
}

// RecordValue records a value on a data point
// The value field must match the data point's kind
func (s *DataPointService) RecordValue(ctx context.Context, organizationID, dataPointID uuid.UUID, req RecordValueRequest) (*DataPointResponse, error) {
	dp, err := s.loadForChange(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureSectionScope(ctx, organizationID, req.UpdatedBy, dp.SectionID); err != nil {
		return nil, err
	}

	switch dp.Kind {
	case reporting.DataPointKindMetric:
		if req.NumericValue == nil {
			return nil, shared.NewDomainError("VALUE_KIND_MISMATCH", "A metric data point requires a numeric value")
		}
		err = dp.RecordNumericValue(*req.NumericValue, req.UpdatedBy)
	case reporting.DataPointKindNarrative:
		if req.TextValue == nil {
			return nil, shared.NewDomainError("VALUE_KIND_MISMATCH", "A narrative data point requires a text value")
		}
		err = dp.RecordTextValue(*req.TextValue, req.UpdatedBy)
	case reporting.DataPointKindBoolean:
		if req.BoolValue == nil {
			return nil, shared.NewDomainError("VALUE_KIND_MISMATCH", "A boolean data point requires a yes/no value")
		}
		err = dp.RecordBooleanValue(*req.BoolValue, req.UpdatedBy)
	}
	if err != nil {
		return nil, err
	}

	response, err := s.saveDataPoint(ctx, dp)
	if err != nil {
		return nil, err
	}

	// Record business metrics
	if s.businessMetrics != nil {
		s.businessMetrics.RecordDataPointValue(ctx, organizationID, string(dp.Kind))
	}

	return response, nil
}

// ClearValue clears a recorded value
func (s *DataPointService) ClearValue(ctx context.Context, organizationID, dataPointID, updatedBy uuid.UUID) (*DataPointResponse, error) {
	dp, err := s.loadForChange(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureSectionScope(ctx, organizationID, updatedBy, dp.SectionID); err != nil {
		return nil, err
	}

	if err := dp.ClearValue(updatedBy); err != nil {
		return nil, err
	}

	return s.saveDataPoint(ctx, dp)
}

// SetTargets sets baseline and target values on a metric data point
func (s *DataPointService) SetTargets(ctx context.Context, organizationID, dataPointID uuid.UUID, req SetTargetRequest) (*DataPointResponse, error) {
	dp, err := s.loadForChange(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}

	if req.BaselineValue != nil {
		if err := dp.SetBaseline(*req.BaselineValue); err != nil {
			return nil, err
		}
	}
	if req.TargetValue != nil {
		if err := dp.SetTarget(*req.TargetValue); err != nil {
			return nil, err
		}
	}

	return s.saveDataPoint(ctx, dp)
}

// MarkComplete marks a data point complete
// Completion is blocked while the register holds open gaps for the point
func (s *DataPointService) MarkComplete(ctx context.Context, organizationID, dataPointID uuid.UUID) (*DataPointResponse, error) {
	dp, err := s.loadForChange(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}

	openGaps, err := s.gapRepo.CountOpenByDataPoint(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}
	if openGaps > 0 {
		return nil, shared.NewDomainError("INVALID_STATE", "Data point has open gaps; resolve or waive them first")
	}

	if err := dp.MarkComplete(); err != nil {
		return nil, err
	}

	return s.saveDataPoint(ctx, dp)
}

// BackToDraft returns a complete data point to draft
func (s *DataPointService) BackToDraft(ctx context.Context, organizationID, dataPointID uuid.UUID) (*DataPointResponse, error) {
	dp, err := s.loadForChange(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}

	if err := dp.BackToDraft(); err != nil {
		return nil, err
	}

	return s.saveDataPoint(ctx, dp)
}

// MarkEstimated flags a value as estimated, backed by a methodology decision
// The decision is linked to the data point if it does not cover it yet
func (s *DataPointService) MarkEstimated(ctx context.Context, organizationID, dataPointID uuid.UUID, req MarkEstimatedRequest) (*DataPointResponse, error) {
	dp, err := s.loadForChange(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}

	decision, err := s.decisionRepo.FindByIDForOrg(ctx, organizationID, req.DecisionID)
	if err != nil {
		return nil, err
	}

	linkedIDs, err := s.decisionRepo.LoadLinks(ctx, decision.ID)
	if err != nil {
		return nil, err
	}
	decision.AffectedDataPointIDs = linkedIDs

	if !decision.Covers(dataPointID) {
		if err := decision.LinkDataPoint(dataPointID); err != nil {
			return nil, err
		}
		links := make([]register.DecisionLink, len(decision.AffectedDataPointIDs))
		for i, id := range decision.AffectedDataPointIDs {
			links[i] = register.DecisionLink{
				DecisionID:     decision.ID,
				DataPointID:    id,
				OrganizationID: organizationID,
				CreatedAt:      time.Now(),
			}
		}
		if err := s.decisionRepo.SaveLinks(ctx, decision.ID, links); err != nil {
			return nil, err
		}
	}

	if err := dp.MarkEstimated(decision.ID); err != nil {
		return nil, err
	}

	return s.saveDataPoint(ctx, dp)
}

// ClearEstimated removes the estimated flag
func (s *DataPointService) ClearEstimated(ctx context.Context, organizationID, dataPointID uuid.UUID) (*DataPointResponse, error) {
	dp, err := s.loadForChange(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}

	dp.ClearEstimated()

	return s.saveDataPoint(ctx, dp)
}

// AssignOwner assigns a user as the data owner
func (s *DataPointService) AssignOwner(ctx context.Context, organizationID, dataPointID uuid.UUID, req AssignDataPointOwnerRequest) (*DataPointResponse, error) {
	dp, err := s.dataPointRepo.FindByIDForOrg(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}

	if err := dp.AssignOwner(req.OwnerUserID); err != nil {
		return nil, err
	}

	return s.saveDataPoint(ctx, dp)
}

// ClearOwner removes the data owner
func (s *DataPointService) ClearOwner(ctx context.Context, organizationID, dataPointID uuid.UUID) (*DataPointResponse, error) {
	dp, err := s.dataPointRepo.FindByIDForOrg(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}

	dp.ClearOwner()

	return s.saveDataPoint(ctx, dp)
}

// Deactivate excludes a data point from scoring and value recording
// This is the retirement path for mandatory data points, which cannot be deleted
func (s *DataPointService) Deactivate(ctx context.Context, organizationID, dataPointID uuid.UUID) (*DataPointResponse, error) {
	dp, err := s.dataPointRepo.FindByIDForOrg(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}

	if err := s.ensurePeriodEditable(ctx, organizationID, dp.PeriodID); err != nil {
		return nil, err
	}

	if err := dp.Deactivate(); err != nil {
		return nil, err
	}

	return s.saveDataPoint(ctx, dp)
}

// Reactivate brings a deactivated data point back into scope
func (s *DataPointService) Reactivate(ctx context.Context, organizationID, dataPointID uuid.UUID) (*DataPointResponse, error) {
	dp, err := s.dataPointRepo.FindByIDForOrg(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}

	if err := s.ensurePeriodEditable(ctx, organizationID, dp.PeriodID); err != nil {
		return nil, err
	}

	if err := dp.Reactivate(); err != nil {
		return nil, err
	}

	return s.saveDataPoint(ctx, dp)
}

// Delete deletes an optional data point that carries no recorded value
// Mandatory data points can only be deactivated
func (s *DataPointService) Delete(ctx context.Context, organizationID, dataPointID uuid.UUID) error {
	dp, err := s.dataPointRepo.FindByIDForOrg(ctx, organizationID, dataPointID)
	if err != nil {
		return err
	}

	if err := s.ensurePeriodEditable(ctx, organizationID, dp.PeriodID); err != nil {
		return err
	}

	if dp.Mandatory {
		return shared.NewDomainError("MANDATORY_DATA_POINT", "Mandatory data points cannot be deleted; deactivate them instead")
	}

	if dp.HasValue() {
		return shared.NewDomainError("HAS_RECORDED_VALUE", "Data point carries a recorded value; clear it first")
	}

	return s.dataPointRepo.DeleteForOrg(ctx, organizationID, dataPointID)
}

// loadForChange loads a data point and checks it still accepts changes
// Values are frozen once the period leaves collection or the section is approved
func (s *DataPointService) loadForChange(ctx context.Context, organizationID, dataPointID uuid.UUID) (*reporting.DataPoint, error) {
	dp, err := s.dataPointRepo.FindByIDForOrg(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}

	if !dp.IsActive {
		return nil, shared.NewDomainError("DATA_POINT_INACTIVE", "Data point is deactivated")
	}

	if err := s.ensurePeriodEditable(ctx, organizationID, dp.PeriodID); err != nil {
		return nil, err
	}

	section, err := s.sectionRepo.FindByIDForOrg(ctx, organizationID, dp.SectionID)
	if err != nil {
		return nil, err
	}
	if section.IsApproved() {
		return nil, shared.ErrSectionLocked
	}

	return dp, nil
}

// ensureSectionScope rejects the change when the acting user's roles restrict
// them to sections the target does not belong to
func (s *DataPointService) ensureSectionScope(ctx context.Context, organizationID, userID, sectionID uuid.UUID) error {
	if s.sectionScope == nil || userID == uuid.Nil {
		return nil
	}

	allowed, err := s.sectionScope.CanAccessSection(ctx, organizationID, userID, sectionID)
	if err != nil {
		return err
	}
	if !allowed {
		return shared.NewDomainError("SECTION_SCOPE_DENIED", "User is not assigned to this section")
	}
	return nil
}

// ensurePeriodEditable checks that the period still accepts content changes
func (s *DataPointService) ensurePeriodEditable(ctx context.Context, organizationID, periodID uuid.UUID) error {
	period, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, periodID)
	if err != nil {
		return err
	}
	if !period.IsEditable() {
		return shared.ErrPeriodClosed
	}
	return nil
}

// saveDataPoint persists data point changes with events through the outbox
func (s *DataPointService) saveDataPoint(ctx context.Context, dp *reporting.DataPoint) (*DataPointResponse, error) {
	// Collect domain events before save
	events := dp.GetDomainEvents()
	dp.ClearDomainEvents()

	// Save with optimistic locking and events atomically (transactional outbox pattern)
	if err := s.dataPointRepo.SaveWithLockAndEvents(ctx, dp, events); err != nil {
		return nil, err
	}

	response := ToDataPointResponse(dp)
	return &response, nil
}
