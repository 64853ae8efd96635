package reporting

import (
	"context"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/telemetry"
)

// ApprovalSweeper cancels pending sign-off requests whose targets regressed
type ApprovalSweeper interface {
	CancelPendingForTargets(ctx context.Context, organizationID uuid.UUID, targetKind string, targetIDs []uuid.UUID, note string) int
}

// SectionService handles report section business operations
type SectionService struct {
	sectionRepo     reporting.ReportSectionRepository
	periodRepo      reporting.ReportingPeriodRepository
	dataPointRepo   reporting.DataPointRepository
	approvalSweeper ApprovalSweeper
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewSectionService creates a new SectionService
func NewSectionService(
	sectionRepo reporting.ReportSectionRepository,
	periodRepo reporting.ReportingPeriodRepository,
	dataPointRepo reporting.DataPointRepository,
) *SectionService {
	return &SectionService{
		sectionRepo:   sectionRepo,
		periodRepo:    periodRepo,
		dataPointRepo: dataPointRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SectionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *SectionService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetApprovalSweeper sets the sweeper that cancels pending approval requests
// when a section regresses out of its reviewable state
func (s *SectionService) SetApprovalSweeper(sweeper ApprovalSweeper) {
	s.approvalSweeper = sweeper
}

// Create creates a new report section within a period
func (s *SectionService) Create(ctx context.Context, organizationID uuid.UUID, req CreateSectionRequest) (*SectionResponse, error) {
	period, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, req.PeriodID)
	if err != nil {
		return nil, err
	}
	if !period.IsEditable() {
		return nil, shared.ErrPeriodClosed
	}

	// Codes are unique per period
	exists, err := s.sectionRepo.ExistsByCode(ctx, organizationID, req.PeriodID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A section with this code already exists in the period")
	}

	var section *reporting.ReportSection
	if req.ParentID != nil {
		parent, err := s.sectionRepo.FindByIDForOrg(ctx, organizationID, *req.ParentID)
		if err != nil {
			return nil, err
		}
		section, err = reporting.NewChildSection(organizationID, req.PeriodID, parent, req.Code, req.Title)
		if err != nil {
			return nil, err
		}
	} else {
		section, err = reporting.NewReportSection(organizationID, req.PeriodID, req.Code, req.Title)
		if err != nil {
			return nil, err
		}
	}

	if req.Description != "" || req.FrameworkRef != "" {
		if err := section.Update(req.Title, req.Description, req.FrameworkRef); err != nil {
			return nil, err
		}
	}
	if req.SortOrder != nil {
		section.SetSortOrder(*req.SortOrder)
	}
	if req.Weight != nil {
		if err := section.SetWeight(*req.Weight); err != nil {
			return nil, err
		}
	}
	if req.OwnerUserID != nil {
		if err := section.AssignOwner(*req.OwnerUserID); err != nil {
			return nil, err
		}
	}

	// Set created_by if provided (from JWT context via handler)
	if req.CreatedBy != nil {
		section.SetCreatedBy(*req.CreatedBy)
	}

	// Collect domain events before save
	events := section.GetDomainEvents()
	section.ClearDomainEvents()

	// Save with events atomically (transactional outbox pattern)
	if err := s.sectionRepo.SaveWithEvents(ctx, section, events); err != nil {
		return nil, err
	}

	response := ToSectionResponse(section)
	return &response, nil
}

// GetByID retrieves a report section by ID
func (s *SectionService) GetByID(ctx context.Context, organizationID, sectionID uuid.UUID) (*SectionResponse, error) {
	section, err := s.sectionRepo.FindByIDForOrg(ctx, organizationID, sectionID)
	if err != nil {
		return nil, err
	}
	response := ToSectionResponse(section)
	return &response, nil
}

// GetTree retrieves the full section tree of a period
func (s *SectionService) GetTree(ctx context.Context, organizationID, periodID uuid.UUID) ([]SectionTreeNode, error) {
	sections, err := s.sectionRepo.FindByPeriod(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}
	return BuildSectionTree(sections), nil
}

// List retrieves sections of a period with filtering
func (s *SectionService) List(ctx context.Context, organizationID uuid.UUID, filter SectionListFilter) ([]SectionResponse, error) {
	if filter.PeriodID == nil {
		return nil, shared.NewDomainError("INVALID_FILTER", "Period ID is required")
	}

	var sections []reporting.ReportSection
	var err error

	switch {
	case filter.Status != nil:
		sections, err = s.sectionRepo.FindByStatus(ctx, organizationID, *filter.PeriodID, *filter.Status)
	case filter.OwnerID != nil:
		sections, err = s.sectionRepo.FindByOwner(ctx, organizationID, *filter.PeriodID, *filter.OwnerID)
	case filter.ParentID != nil:
		sections, err = s.sectionRepo.FindChildren(ctx, organizationID, *filter.ParentID)
	case filter.ActiveOnly:
		sections, err = s.sectionRepo.FindActiveByPeriod(ctx, organizationID, *filter.PeriodID)
	default:
		sections, err = s.sectionRepo.FindByPeriod(ctx, organizationID, *filter.PeriodID)
	}
	if err != nil {
		return nil, err
	}

	return ToSectionResponses(sections), nil
}

// Update updates a section's metadata
func (s *SectionService) Update(ctx context.Context, organizationID, sectionID uuid.UUID, req UpdateSectionRequest) (*SectionResponse, error) {
	section, err := s.sectionRepo.FindByIDForOrg(ctx, organizationID, sectionID)
	if err != nil {
		return nil, err
	}

	if err := s.ensurePeriodEditable(ctx, organizationID, section.PeriodID); err != nil {
		return nil, err
	}

	title := section.Title
	if req.Title != nil {
		title = *req.Title
	}
	description := section.Description
	if req.Description != nil {
		description = *req.Description
	}
	frameworkRef := section.FrameworkRef
	if req.FrameworkRef != nil {
		frameworkRef = *req.FrameworkRef
	}

	if err := section.Update(title, description, frameworkRef); err != nil {
		return nil, err
	}

	if req.SortOrder != nil {
		section.SetSortOrder(*req.SortOrder)
	}
	if req.Weight != nil {
		if err := section.SetWeight(*req.Weight); err != nil {
			return nil, err
		}
	}

	return s.saveSection(ctx, section)
}

// Move reparents a section within its period
// The whole subtree moves with it; depths are recomputed
func (s *SectionService) Move(ctx context.Context, organizationID, sectionID uuid.UUID, req MoveSectionRequest) (*SectionResponse, error) {
	section, err := s.sectionRepo.FindByIDForOrg(ctx, organizationID, sectionID)
	if err != nil {
		return nil, err
	}

	if err := s.ensurePeriodEditable(ctx, organizationID, section.PeriodID); err != nil {
		return nil, err
	}

	// Load the whole tree once for cycle and depth validation
	all, err := s.sectionRepo.FindByPeriod(ctx, organizationID, section.PeriodID)
	if err != nil {
		return nil, err
	}

	childrenOf := make(map[uuid.UUID][]*reporting.ReportSection)
	for i := range all {
		if all[i].ParentID != nil {
			childrenOf[*all[i].ParentID] = append(childrenOf[*all[i].ParentID], &all[i])
		}
	}

	inSubtree := make(map[uuid.UUID]bool)
	for _, id := range collectSubtree(section.ID, childrenOf) {
		inSubtree[id] = true
	}

	var parent *reporting.ReportSection
	if req.NewParentID != nil {
		parent, err = s.sectionRepo.FindByIDForOrg(ctx, organizationID, *req.NewParentID)
		if err != nil {
			return nil, err
		}
		if inSubtree[parent.ID] {
			return nil, shared.NewDomainError("INVALID_PARENT", "Section cannot move under its own descendant")
		}
	}

	// The deepest descendant must still fit within the depth limit
	newDepth := 1
	if parent != nil {
		newDepth = parent.Depth + 1
	}
	if newDepth+subtreeHeight(section.ID, childrenOf) > reporting.MaxSectionDepth {
		return nil, shared.NewDomainError("MAX_DEPTH_EXCEEDED", "Section tree cannot exceed three levels")
	}

	oldDepth := section.Depth
	if err := section.MoveTo(parent); err != nil {
		return nil, err
	}

	// Collect domain events before save
	events := section.GetDomainEvents()
	section.ClearDomainEvents()

	// Save with optimistic locking and events atomically (transactional outbox pattern)
	if err := s.sectionRepo.SaveWithLockAndEvents(ctx, section, events); err != nil {
		return nil, err
	}

	// Shift descendant depths by the same delta
	if delta := section.Depth - oldDepth; delta != 0 && len(inSubtree) > 1 {
		descendants := make([]*reporting.ReportSection, 0, len(inSubtree)-1)
		for i := range all {
			if all[i].ID != section.ID && inSubtree[all[i].ID] {
				all[i].Depth += delta
				descendants = append(descendants, &all[i])
			}
		}
		if err := s.sectionRepo.SaveAll(ctx, descendants); err != nil {
			return nil, err
		}
	}

	response := ToSectionResponse(section)
	return &response, nil
}

// AssignOwner assigns a user as the section owner
func (s *SectionService) AssignOwner(ctx context.Context, organizationID, sectionID uuid.UUID, req AssignSectionOwnerRequest) (*SectionResponse, error) {
	section, err := s.sectionRepo.FindByIDForOrg(ctx, organizationID, sectionID)
	if err != nil {
		return nil, err
	}

	if err := section.AssignOwner(req.OwnerUserID); err != nil {
		return nil, err
	}

	return s.saveSection(ctx, section)
}

// ClearOwner removes the section owner
func (s *SectionService) ClearOwner(ctx context.Context, organizationID, sectionID uuid.UUID) (*SectionResponse, error) {
	section, err := s.sectionRepo.FindByIDForOrg(ctx, organizationID, sectionID)
	if err != nil {
		return nil, err
	}

	section.ClearOwner()

	return s.saveSection(ctx, section)
}

// Start moves a section from not started to in progress
func (s *SectionService) Start(ctx context.Context, organizationID, sectionID uuid.UUID) (*SectionResponse, error) {
	return s.transition(ctx, organizationID, sectionID, (*reporting.ReportSection).Start)
}

// SubmitForReview marks a section ready for review
func (s *SectionService) SubmitForReview(ctx context.Context, organizationID, sectionID uuid.UUID) (*SectionResponse, error) {
	return s.transition(ctx, organizationID, sectionID, (*reporting.ReportSection).SubmitForReview)
}

// SendBack returns a section from review to in progress
// Pending approval requests targeting the section are cancelled
func (s *SectionService) SendBack(ctx context.Context, organizationID, sectionID uuid.UUID) (*SectionResponse, error) {
	response, err := s.transition(ctx, organizationID, sectionID, (*reporting.ReportSection).SendBack)
	if err != nil {
		return nil, err
	}

	s.cancelPendingApprovals(ctx, organizationID, sectionID, "Section was sent back for edits")

	return response, nil
}

// Reopen regresses an approved section back to in progress
// Pending approval requests targeting the section are cancelled
func (s *SectionService) Reopen(ctx context.Context, organizationID, sectionID uuid.UUID, req ReopenSectionRequest) (*SectionResponse, error) {
	section, err := s.sectionRepo.FindByIDForOrg(ctx, organizationID, sectionID)
	if err != nil {
		return nil, err
	}

	if err := section.Reopen(req.Reason); err != nil {
		return nil, err
	}

	response, err := s.saveSection(ctx, section)
	if err != nil {
		return nil, err
	}

	s.cancelPendingApprovals(ctx, organizationID, sectionID, "Section was reopened for edits")

	return response, nil
}

// cancelPendingApprovals sweeps pending approval requests after a regression
func (s *SectionService) cancelPendingApprovals(ctx context.Context, organizationID, sectionID uuid.UUID, note string) {
	if s.approvalSweeper == nil {
		return
	}
	s.approvalSweeper.CancelPendingForTargets(ctx, organizationID, "section", []uuid.UUID{sectionID}, note)
}

// Deactivate excludes a section from scoring and collection
// This is the waive path for sections that cannot be deleted
func (s *SectionService) Deactivate(ctx context.Context, organizationID, sectionID uuid.UUID) (*SectionResponse, error) {
	section, err := s.sectionRepo.FindByIDForOrg(ctx, organizationID, sectionID)
	if err != nil {
		return nil, err
	}

	if err := section.Deactivate(); err != nil {
		return nil, err
	}

	return s.saveSection(ctx, section)
}

// Reactivate brings a deactivated section back into scope
func (s *SectionService) Reactivate(ctx context.Context, organizationID, sectionID uuid.UUID) (*SectionResponse, error) {
	section, err := s.sectionRepo.FindByIDForOrg(ctx, organizationID, sectionID)
	if err != nil {
		return nil, err
	}

	if err := section.Reactivate(); err != nil {
		return nil, err
	}

	return s.saveSection(ctx, section)
}

// Delete deletes a section that has no children and no recorded values
// Sections with recorded data must be deactivated instead
func (s *SectionService) Delete(ctx context.Context, organizationID, sectionID uuid.UUID) error {
	section, err := s.sectionRepo.FindByIDForOrg(ctx, organizationID, sectionID)
	if err != nil {
		return err
	}

	if err := s.ensurePeriodEditable(ctx, organizationID, section.PeriodID); err != nil {
		return err
	}

	children, err := s.sectionRepo.CountChildren(ctx, organizationID, sectionID)
	if err != nil {
		return err
	}
	if children > 0 {
		return shared.NewDomainError("HAS_CHILDREN", "Section still has child sections")
	}

	withValues, err := s.dataPointRepo.CountWithValueBySection(ctx, organizationID, sectionID)
	if err != nil {
		return err
	}
	if withValues > 0 {
		return shared.NewDomainError("HAS_RECORDED_VALUES", "Section has data points with recorded values; deactivate it instead")
	}

	return s.sectionRepo.DeleteForOrg(ctx, organizationID, sectionID)
}

// transition applies a domain status transition and saves the section
func (s *SectionService) transition(ctx context.Context, organizationID, sectionID uuid.UUID, fn func(*reporting.ReportSection) error) (*SectionResponse, error) {
	section, err := s.sectionRepo.FindByIDForOrg(ctx, organizationID, sectionID)
	if err != nil {
		return nil, err
	}

	if err := fn(section); err != nil {
		return nil, err
	}

	return s.saveSection(ctx, section)
}

// saveSection persists section changes with events through the outbox
func (s *SectionService) saveSection(ctx context.Context, section *reporting.ReportSection) (*SectionResponse, error) {
	// Collect domain events before save
	events := section.GetDomainEvents()
	section.ClearDomainEvents()

	// Save with optimistic locking and events atomically (transactional outbox pattern)
	if err := s.sectionRepo.SaveWithLockAndEvents(ctx, section, events); err != nil {
		return nil, err
	}

	response := ToSectionResponse(section)
	return &response, nil
}

// ensurePeriodEditable checks that the period still accepts structure changes
func (s *SectionService) ensurePeriodEditable(ctx context.Context, organizationID, periodID uuid.UUID) error {
	period, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, periodID)
	if err != nil {
		return err
	}
	if !period.IsEditable() {
		return shared.ErrPeriodClosed
	}
	return nil
}

// collectSubtree returns the IDs of a section and all its descendants
func collectSubtree(rootID uuid.UUID, childrenOf map[uuid.UUID][]*reporting.ReportSection) []uuid.UUID {
	ids := []uuid.UUID{rootID}
	for _, child := range childrenOf[rootID] {
		ids = append(ids, collectSubtree(child.ID, childrenOf)...)
	}
	return ids
}

// subtreeHeight returns the number of levels below the given section
func subtreeHeight(rootID uuid.UUID, childrenOf map[uuid.UUID][]*reporting.ReportSection) int {
	height := 0
	for _, child := range childrenOf[rootID] {
		if h := subtreeHeight(child.ID, childrenOf) + 1; h > height {
			height = h
		}
	}
	return height
}
