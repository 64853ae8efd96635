package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/telemetry"
)

// PeriodService handles reporting period business operations
type PeriodService struct {
	periodRepo      reporting.ReportingPeriodRepository
	sectionRepo     reporting.ReportSectionRepository
	approvalSweeper ApprovalSweeper
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewPeriodService creates a new PeriodService
func NewPeriodService(periodRepo reporting.ReportingPeriodRepository, sectionRepo reporting.ReportSectionRepository) *PeriodService {
	return &PeriodService{
		periodRepo:  periodRepo,
		sectionRepo: sectionRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PeriodService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *PeriodService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetApprovalSweeper sets the sweeper that cancels pending approval requests
// when a period regresses out of review
func (s *PeriodService) SetApprovalSweeper(sweeper ApprovalSweeper) {
	s.approvalSweeper = sweeper
}

// Create creates a new reporting period in draft status
func (s *PeriodService) Create(ctx context.Context, organizationID uuid.UUID, req CreatePeriodRequest) (*PeriodResponse, error) {
	// Labels are unique per organization
	exists, err := s.periodRepo.ExistsByLabel(ctx, organizationID, req.Label)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A period with this label already exists")
	}

	// Periods must not overlap
	overlaps, err := s.periodRepo.ExistsOverlapping(ctx, organizationID, req.StartDate, req.EndDate, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if overlaps {
		return nil, shared.NewDomainError("PERIOD_OVERLAP", "Period dates overlap an existing period")
	}

	period, err := reporting.NewReportingPeriod(organizationID, req.Label, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if req.Description != "" {
		period.SetDescription(req.Description)
	}

	// Set created_by if provided (from JWT context via handler)
	if req.CreatedBy != nil {
		period.SetCreatedBy(*req.CreatedBy)
	}

	// Collect domain events before save
	events := period.GetDomainEvents()
	period.ClearDomainEvents()

	// Save with events atomically (transactional outbox pattern)
	if err := s.periodRepo.SaveWithEvents(ctx, period, events); err != nil {
		return nil, err
	}

	// Record business metrics
	if s.businessMetrics != nil {
		s.businessMetrics.RecordPeriodTransition(ctx, organizationID, string(period.Status))
	}

	response := ToPeriodResponse(period)
	return &response, nil
}

// GetByID retrieves a reporting period by ID
func (s *PeriodService) GetByID(ctx context.Context, organizationID, periodID uuid.UUID) (*PeriodResponse, error) {
	period, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}
	response := ToPeriodResponse(period)
	return &response, nil
}

// GetByLabel retrieves a reporting period by label
func (s *PeriodService) GetByLabel(ctx context.Context, organizationID uuid.UUID, label string) (*PeriodResponse, error) {
	period, err := s.periodRepo.FindByLabel(ctx, organizationID, label)
	if err != nil {
		return nil, err
	}
	response := ToPeriodResponse(period)
	return &response, nil
}

// GetOpen retrieves the currently open period for an organization
func (s *PeriodService) GetOpen(ctx context.Context, organizationID uuid.UUID) (*PeriodResponse, error) {
	period, err := s.periodRepo.FindOpenForOrg(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	response := ToPeriodResponse(period)
	return &response, nil
}

// List retrieves a list of reporting periods with filtering and pagination
func (s *PeriodService) List(ctx context.Context, organizationID uuid.UUID, filter PeriodListFilter) ([]PeriodResponse, int64, error) {
	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "start_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
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

	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}

	periods, err := s.periodRepo.FindAllForOrg(ctx, organizationID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.periodRepo.CountForOrg(ctx, organizationID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToPeriodResponses(periods), total, nil
}

// Update updates a reporting period's label, description and dates
// Dates can only change while the period is still in draft
func (s *PeriodService) Update(ctx context.Context, organizationID, periodID uuid.UUID, req UpdatePeriodRequest) (*PeriodResponse, error) {
	period, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}

	label := period.Label
	if req.Label != nil {
		label = *req.Label
	}
	startDate := period.StartDate
	if req.StartDate != nil {
		startDate = *req.StartDate
	}
	endDate := period.EndDate
	if req.EndDate != nil {
		endDate = *req.EndDate
	}

	// Re-check uniqueness when the label changes
	if label != period.Label {
		exists, err := s.periodRepo.ExistsByLabel(ctx, organizationID, label)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A period with this label already exists")
		}
	}

	// Re-check overlap when the dates change
	if !startDate.Equal(period.StartDate) || !endDate.Equal(period.EndDate) {
		overlaps, err := s.periodRepo.ExistsOverlapping(ctx, organizationID, startDate, endDate, period.ID)
		if err != nil {
			return nil, err
		}
		if overlaps {
			return nil, shared.NewDomainError("PERIOD_OVERLAP", "Period dates overlap an existing period")
		}
	}

	if err := period.Update(label, startDate, endDate); err != nil {
		return nil, err
	}

	if req.Description != nil {
		period.SetDescription(*req.Description)
	}

	// Collect domain events before save
	events := period.GetDomainEvents()
	period.ClearDomainEvents()

	// Save with optimistic locking and events atomically (transactional outbox pattern)
	if err := s.periodRepo.SaveWithLockAndEvents(ctx, period, events); err != nil {
		return nil, err
	}

	response := ToPeriodResponse(period)
	return &response, nil
}

// Open opens a draft period for data collection
// At most one period per organization may be open at a time
func (s *PeriodService) Open(ctx context.Context, organizationID, periodID uuid.UUID) (*PeriodResponse, error) {
	if err := s.ensureNoOtherOpen(ctx, organizationID, periodID); err != nil {
		return nil, err
	}

	period, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}

	if err := period.Open(); err != nil {
		return nil, err
	}

	return s.saveTransition(ctx, organizationID, period)
}

// StartReview freezes data collection and moves the period into review
func (s *PeriodService) StartReview(ctx context.Context, organizationID, periodID uuid.UUID) (*PeriodResponse, error) {
	period, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}

	if err := period.StartReview(); err != nil {
		return nil, err
	}

	return s.saveTransition(ctx, organizationID, period)
}

// BackToOpen returns a period from review to open, resuming data collection
func (s *PeriodService) BackToOpen(ctx context.Context, organizationID, periodID uuid.UUID) (*PeriodResponse, error) {
	if err := s.ensureNoOtherOpen(ctx, organizationID, periodID); err != nil {
		return nil, err
	}

	period, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}

	if err := period.BackToOpen(); err != nil {
		return nil, err
	}

	response, err := s.saveTransition(ctx, organizationID, period)
	if err != nil {
		return nil, err
	}

	// Pending approval requests against the regressed period are stale
	if s.approvalSweeper != nil {
		s.approvalSweeper.CancelPendingForTargets(ctx, organizationID, "period", []uuid.UUID{periodID}, "Period returned to open")
	}

	return response, nil
}

// Close closes a period under review
// All active sections must be approved before the period can close
func (s *PeriodService) Close(ctx context.Context, organizationID, periodID uuid.UUID) (*PeriodResponse, error) {
	period, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}

	unapproved, err := s.sectionRepo.CountUnapprovedByPeriod(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}
	if unapproved > 0 {
		return nil, shared.NewDomainError("SECTIONS_UNAPPROVED",
			fmt.Sprintf("%d sections are not yet approved", unapproved))
	}

	if err := period.Close(); err != nil {
		return nil, err
	}

	return s.saveTransition(ctx, organizationID, period)
}

// Reopen reopens a closed period for corrections
// The reason is recorded and the period returns to open status
func (s *PeriodService) Reopen(ctx context.Context, organizationID, periodID uuid.UUID, req ReopenPeriodRequest) (*PeriodResponse, error) {
	if err := s.ensureNoOtherOpen(ctx, organizationID, periodID); err != nil {
		return nil, err
	}

	period, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}

	if err := period.Reopen(req.Reason); err != nil {
		return nil, err
	}

	return s.saveTransition(ctx, organizationID, period)
}

// Archive archives a closed period
func (s *PeriodService) Archive(ctx context.Context, organizationID, periodID uuid.UUID) (*PeriodResponse, error) {
	period, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}

	if err := period.Archive(); err != nil {
		return nil, err
	}

	return s.saveTransition(ctx, organizationID, period)
}

// Delete deletes a draft period that has no sections yet
func (s *PeriodService) Delete(ctx context.Context, organizationID, periodID uuid.UUID) error {
	period, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, periodID)
	if err != nil {
		return err
	}

	if period.Status != reporting.PeriodStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft periods can be deleted")
	}

	sectionCount, err := s.sectionRepo.CountByPeriod(ctx, organizationID, periodID)
	if err != nil {
		return err
	}
	if sectionCount > 0 {
		return shared.NewDomainError("HAS_SECTIONS", "Period still has sections")
	}

	return s.periodRepo.DeleteForOrg(ctx, organizationID, periodID)
}

// deadlineReminderWindow is how far ahead of a period's end date reminders start
const deadlineReminderWindow = 14 * 24 * time.Hour

// RemindUpcomingDeadlines publishes a deadline reminder for the open period
// when its end date falls inside the reminder window. Called by the
// maintenance scheduler once per day per organization.
func (s *PeriodService) RemindUpcomingDeadlines(ctx context.Context, organizationID uuid.UUID, asOf time.Time) error {
	period, err := s.periodRepo.FindOpenForOrg(ctx, organizationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if period == nil {
		return nil
	}

	remaining := period.EndDate.Sub(asOf)
	if remaining < 0 || remaining > deadlineReminderWindow {
		return nil
	}

	if s.eventPublisher == nil {
		return nil
	}
	daysRemaining := int(remaining.Hours() / 24)
	return s.eventPublisher.Publish(ctx, reporting.NewPeriodDeadlineApproachingEvent(period, daysRemaining))
}

// ensureNoOtherOpen checks that no other period is currently open
func (s *PeriodService) ensureNoOtherOpen(ctx context.Context, organizationID, periodID uuid.UUID) error {
	open, err := s.periodRepo.FindOpenForOrg(ctx, organizationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if open != nil && open.ID != periodID {
		return shared.NewDomainError("OPEN_PERIOD_EXISTS", "Another period is already open for data collection")
	}
	return nil
}

// saveTransition persists a status change with its events and records metrics
func (s *PeriodService) saveTransition(ctx context.Context, organizationID uuid.UUID, period *reporting.ReportingPeriod) (*PeriodResponse, error) {
	// Collect domain events before save
	events := period.GetDomainEvents()
	period.ClearDomainEvents()

	// Save with optimistic locking and events atomically (transactional outbox pattern)
	if err := s.periodRepo.SaveWithLockAndEvents(ctx, period, events); err != nil {
		return nil, err
	}

	// Record business metrics
	if s.businessMetrics != nil {
		s.businessMetrics.RecordPeriodTransition(ctx, organizationID, string(period.Status))
	}

	response := ToPeriodResponse(period)
	return &response, nil
}
