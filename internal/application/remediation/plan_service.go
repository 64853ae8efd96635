package remediation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/register"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/remediation"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// overdueSweepBatchSize caps how many plans a single sweep run loads
const overdueSweepBatchSize = 100

// PlanService handles remediation plan operations.
// Plan lifecycle transitions cascade to the disclosure gaps the plan
// addresses: activation moves them into remediation, completion resolves them.
type PlanService struct {
	planRepo       remediation.RemediationPlanRepository
	gapRepo        register.GapRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPlanService creates a new remediation plan service
func NewPlanService(
	planRepo remediation.RemediationPlanRepository,
	gapRepo register.GapRepository,
	logger *zap.Logger,
) *PlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanService{
		planRepo: planRepo,
		gapRepo:  gapRepo,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *PlanService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new remediation plan in draft status
func (s *PlanService) Create(ctx context.Context, organizationID uuid.UUID, req CreatePlanRequest) (*PlanResponse, error) {
	plan, err := remediation.NewRemediationPlan(organizationID, req.Title, req.Description)
	if err != nil {
		return nil, err
	}

	if req.OwnerUserID != nil {
		if err := plan.SetOwner(*req.OwnerUserID); err != nil {
			return nil, err
		}
	}
	if req.DueDate != nil {
		if err := plan.SetDueDate(*req.DueDate); err != nil {
			return nil, err
		}
	}
	for _, gapID := range req.GapIDs {
		if err := s.checkGapAttachable(ctx, organizationID, gapID); err != nil {
			return nil, err
		}
		if err := plan.AttachGap(gapID); err != nil {
			return nil, err
		}
	}
	if req.CreatedBy != nil {
		plan.SetCreatedBy(*req.CreatedBy)
	}

	events := plan.GetDomainEvents()
	plan.ClearDomainEvents()
	if err := s.planRepo.SaveWithEvents(ctx, plan, events); err != nil {
		return nil, err
	}
	if len(plan.GapIDs) > 0 {
		if err := s.planRepo.SaveGapLinks(ctx, plan.ID, s.buildGapLinks(plan)); err != nil {
			return nil, err
		}
	}

	response := ToPlanResponse(plan)
	return &response, nil
}

// GetByID retrieves a plan by ID
func (s *PlanService) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*PlanResponse, error) {
	plan, err := s.findPlan(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	response := ToPlanResponse(plan)
	return &response, nil
}

// List retrieves plans matching the filter
func (s *PlanService) List(ctx context.Context, organizationID uuid.UUID, filter PlanListFilter) (*shared.Paginated[PlanResponse], error) {
	if filter.GapID != nil {
		plans, err := s.planRepo.FindByGap(ctx, organizationID, *filter.GapID)
		if err != nil {
			return nil, err
		}
		pageSize := len(plans)
		if pageSize == 0 {
			pageSize = 1
		}
		result := shared.NewPaginated(ToPlanResponses(plans), int64(len(plans)), 1, pageSize)
		return &result, nil
	}

	repoFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  map[string]interface{}{},
	}
	if filter.OwnerUserID != nil {
		repoFilter.Filters["owner_user_id"] = *filter.OwnerUserID
	}
	if filter.Overdue {
		repoFilter.Filters["overdue"] = true
	}

	var (
		paginated *shared.Paginated[remediation.RemediationPlan]
		err       error
	)
	if filter.Status != nil {
		paginated, err = s.planRepo.FindByStatus(ctx, organizationID, *filter.Status, repoFilter)
	} else {
		paginated, err = s.planRepo.FindAllForOrg(ctx, organizationID, repoFilter)
	}
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToPlanResponses(paginated.Items), paginated.Total, paginated.Page, paginated.PageSize)
	return &result, nil
}

// ListByGap retrieves plans addressing a gap
func (s *PlanService) ListByGap(ctx context.Context, organizationID, gapID uuid.UUID) ([]PlanResponse, error) {
	plans, err := s.planRepo.FindByGap(ctx, organizationID, gapID)
	if err != nil {
		return nil, err
	}
	return ToPlanResponses(plans), nil
}

// Update updates a plan's title and description
func (s *PlanService) Update(ctx context.Context, organizationID, id uuid.UUID, req UpdatePlanRequest) (*PlanResponse, error) {
	return s.mutate(ctx, organizationID, id, func(plan *remediation.RemediationPlan) error {
		return plan.Update(req.Title, req.Description)
	})
}

// SetOwner assigns the plan owner
func (s *PlanService) SetOwner(ctx context.Context, organizationID, id uuid.UUID, req SetOwnerRequest) (*PlanResponse, error) {
	return s.mutate(ctx, organizationID, id, func(plan *remediation.RemediationPlan) error {
		return plan.SetOwner(req.OwnerUserID)
	})
}

// ClearOwner removes the plan owner
func (s *PlanService) ClearOwner(ctx context.Context, organizationID, id uuid.UUID) (*PlanResponse, error) {
	return s.mutate(ctx, organizationID, id, func(plan *remediation.RemediationPlan) error {
		plan.ClearOwner()
		return nil
	})
}

// SetDueDate sets the plan due date
func (s *PlanService) SetDueDate(ctx context.Context, organizationID, id uuid.UUID, req SetDueDateRequest) (*PlanResponse, error) {
	return s.mutate(ctx, organizationID, id, func(plan *remediation.RemediationPlan) error {
		return plan.SetDueDate(req.DueDate)
	})
}

// ClearDueDate removes the plan due date
func (s *PlanService) ClearDueDate(ctx context.Context, organizationID, id uuid.UUID) (*PlanResponse, error) {
	return s.mutate(ctx, organizationID, id, func(plan *remediation.RemediationPlan) error {
		plan.ClearDueDate()
		return nil
	})
}

// AttachGap attaches a disclosure gap to a plan
func (s *PlanService) AttachGap(ctx context.Context, organizationID, id, gapID uuid.UUID) (*PlanResponse, error) {
	if err := s.checkGapAttachable(ctx, organizationID, gapID); err != nil {
		return nil, err
	}

	plan, err := s.findPlan(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if err := plan.AttachGap(gapID); err != nil {
		return nil, err
	}

	if err := s.savePlanWithGapLinks(ctx, plan); err != nil {
		return nil, err
	}

	// An active plan pulls newly attached gaps into remediation
	if plan.IsActive() {
		s.moveGapsIntoRemediation(ctx, organizationID, []uuid.UUID{gapID})
	}

	response := ToPlanResponse(plan)
	return &response, nil
}

// DetachGap detaches a disclosure gap from a plan
func (s *PlanService) DetachGap(ctx context.Context, organizationID, id, gapID uuid.UUID) (*PlanResponse, error) {
	plan, err := s.findPlan(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if err := plan.DetachGap(gapID); err != nil {
		return nil, err
	}

	if err := s.savePlanWithGapLinks(ctx, plan); err != nil {
		return nil, err
	}

	response := ToPlanResponse(plan)
	return &response, nil
}

// AddItem adds an action item to a plan
func (s *PlanService) AddItem(ctx context.Context, organizationID, id uuid.UUID, req AddItemRequest) (*PlanResponse, error) {
	return s.mutate(ctx, organizationID, id, func(plan *remediation.RemediationPlan) error {
		_, err := plan.AddItem(req.Description, req.AssigneeUserID)
		return err
	})
}

// UpdateItem updates an action item description
func (s *PlanService) UpdateItem(ctx context.Context, organizationID, id, itemID uuid.UUID, req UpdateItemRequest) (*PlanResponse, error) {
	return s.mutate(ctx, organizationID, id, func(plan *remediation.RemediationPlan) error {
		return plan.UpdateItemDescription(itemID, req.Description)
	})
}

// AssignItem assigns an action item to a user
func (s *PlanService) AssignItem(ctx context.Context, organizationID, id, itemID uuid.UUID, req AssignItemRequest) (*PlanResponse, error) {
	return s.mutate(ctx, organizationID, id, func(plan *remediation.RemediationPlan) error {
		return plan.AssignItem(itemID, req.AssigneeUserID)
	})
}

// UnassignItem removes the assignee from an action item
func (s *PlanService) UnassignItem(ctx context.Context, organizationID, id, itemID uuid.UUID) (*PlanResponse, error) {
	return s.mutate(ctx, organizationID, id, func(plan *remediation.RemediationPlan) error {
		return plan.UnassignItem(itemID)
	})
}

// StartItem moves an action item to doing
func (s *PlanService) StartItem(ctx context.Context, organizationID, id, itemID uuid.UUID) (*PlanResponse, error) {
	return s.mutate(ctx, organizationID, id, func(plan *remediation.RemediationPlan) error {
		return plan.StartItem(itemID)
	})
}

// CompleteItem marks an action item as done
func (s *PlanService) CompleteItem(ctx context.Context, organizationID, id, itemID uuid.UUID, req CompleteItemRequest) (*PlanResponse, error) {
	return s.mutate(ctx, organizationID, id, func(plan *remediation.RemediationPlan) error {
		return plan.CompleteItem(itemID, req.Note)
	})
}

// ReopenItem moves a done action item back to doing
func (s *PlanService) ReopenItem(ctx context.Context, organizationID, id, itemID uuid.UUID) (*PlanResponse, error) {
	return s.mutate(ctx, organizationID, id, func(plan *remediation.RemediationPlan) error {
		return plan.ReopenItem(itemID)
	})
}

// RemoveItem removes an action item from a plan
func (s *PlanService) RemoveItem(ctx context.Context, organizationID, id, itemID uuid.UUID) (*PlanResponse, error) {
	return s.mutate(ctx, organizationID, id, func(plan *remediation.RemediationPlan) error {
		return plan.RemoveItem(itemID)
	})
}

// Activate activates a draft plan and moves its attached gaps into remediation
func (s *PlanService) Activate(ctx context.Context, organizationID, id uuid.UUID) (*PlanResponse, error) {
	plan, err := s.findPlan(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if err := plan.Activate(); err != nil {
		return nil, err
	}

	if err := s.savePlan(ctx, plan); err != nil {
		return nil, err
	}

	s.moveGapsIntoRemediation(ctx, organizationID, plan.GapIDs)

	response := ToPlanResponse(plan)
	return &response, nil
}

// Complete completes an active plan and resolves every gap it addresses
func (s *PlanService) Complete(ctx context.Context, organizationID, id uuid.UUID, req CompletePlanRequest) (*PlanResponse, error) {
	plan, err := s.findPlan(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if err := plan.Complete(); err != nil {
		return nil, err
	}

	if err := s.savePlan(ctx, plan); err != nil {
		return nil, err
	}

	resolvedBy := uuid.Nil
	if req.CompletedBy != nil {
		resolvedBy = *req.CompletedBy
	}
	s.resolveGaps(ctx, organizationID, plan.GapIDs, req.ResolutionNote, resolvedBy)

	response := ToPlanResponse(plan)
	return &response, nil
}

// Cancel cancels a draft or active plan with a reason.
// The attached gaps keep their current status and stay open for other plans.
func (s *PlanService) Cancel(ctx context.Context, organizationID, id uuid.UUID, req CancelPlanRequest) (*PlanResponse, error) {
	return s.mutate(ctx, organizationID, id, func(plan *remediation.RemediationPlan) error {
		return plan.Cancel(req.Reason)
	})
}

// Delete deletes a plan. Only draft and cancelled plans can be deleted.
func (s *PlanService) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	plan, err := s.findPlan(ctx, organizationID, id)
	if err != nil {
		return err
	}
	if plan.Status == remediation.PlanStatusActive || plan.Status == remediation.PlanStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Only draft or cancelled plans can be deleted")
	}

	return s.planRepo.DeleteForOrg(ctx, id, organizationID)
}

// SweepOverduePlans flags active plans past their due date for an organization.
// Intended to be called by the maintenance scheduler.
func (s *PlanService) SweepOverduePlans(ctx context.Context, organizationID uuid.UUID, asOf time.Time) error {
	plans, err := s.planRepo.FindOverdue(ctx, organizationID, asOf, overdueSweepBatchSize)
	if err != nil {
		return err
	}

	result := OverdueSweepResult{Scanned: len(plans)}
	for i := range plans {
		plan := &plans[i]
		if !plan.FlagOverdue(asOf) {
			continue
		}

		events := plan.GetDomainEvents()
		plan.ClearDomainEvents()
		if err := s.planRepo.SaveWithLockAndEvents(ctx, plan, events); err != nil {
			result.Failed++
			s.logger.Warn("Failed to flag overdue remediation plan",
				zap.String("plan_id", plan.ID.String()),
				zap.String("organization_id", plan.OrganizationID.String()),
				zap.Error(err))
			continue
		}
		result.Flagged++
	}

	if result.Flagged > 0 || result.Failed > 0 {
		s.logger.Info("Overdue remediation plan sweep finished",
			zap.String("organization_id", organizationID.String()),
			zap.Int("scanned", result.Scanned),
			zap.Int("flagged", result.Flagged),
			zap.Int("failed", result.Failed))
	}

	return nil
}

func (s *PlanService) findPlan(ctx context.Context, organizationID, id uuid.UUID) (*remediation.RemediationPlan, error) {
	plan, err := s.planRepo.FindByIDForOrg(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}
	gapIDs, err := s.planRepo.LoadGapLinks(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	plan.GapIDs = gapIDs
	return plan, nil
}

func (s *PlanService) mutate(ctx context.Context, organizationID, id uuid.UUID, fn func(*remediation.RemediationPlan) error) (*PlanResponse, error) {
	plan, err := s.findPlan(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	if err := fn(plan); err != nil {
		return nil, err
	}

	if err := s.savePlan(ctx, plan); err != nil {
		return nil, err
	}

	response := ToPlanResponse(plan)
	return &response, nil
}

func (s *PlanService) savePlan(ctx context.Context, plan *remediation.RemediationPlan) error {
	events := plan.GetDomainEvents()
	plan.ClearDomainEvents()
	return s.planRepo.SaveWithLockAndEvents(ctx, plan, events)
}

func (s *PlanService) savePlanWithGapLinks(ctx context.Context, plan *remediation.RemediationPlan) error {
	if err := s.savePlan(ctx, plan); err != nil {
		return err
	}
	return s.planRepo.SaveGapLinks(ctx, plan.ID, s.buildGapLinks(plan))
}

func (s *PlanService) buildGapLinks(plan *remediation.RemediationPlan) []remediation.PlanGap {
	links := make([]remediation.PlanGap, len(plan.GapIDs))
	for i, gapID := range plan.GapIDs {
		links[i] = remediation.PlanGap{
			PlanID:         plan.ID,
			GapID:          gapID,
			OrganizationID: plan.OrganizationID,
			CreatedAt:      time.Now(),
		}
	}
	return links
}

// checkGapAttachable verifies the gap exists in the organization and is not closed
func (s *PlanService) checkGapAttachable(ctx context.Context, organizationID, gapID uuid.UUID) error {
	gap, err := s.gapRepo.FindByIDForOrg(ctx, organizationID, gapID)
	if err != nil {
		return err
	}
	if !gap.IsOpen() {
		return shared.NewDomainError("GAP_CLOSED", "A resolved or accepted gap cannot be attached to a plan")
	}
	return nil
}

// moveGapsIntoRemediation transitions the given gaps into in_remediation.
// Failures are logged, not propagated, the plan transition already happened.
func (s *PlanService) moveGapsIntoRemediation(ctx context.Context, organizationID uuid.UUID, gapIDs []uuid.UUID) {
	for _, gapID := range gapIDs {
		gap, err := s.gapRepo.FindByIDForOrg(ctx, organizationID, gapID)
		if err != nil {
			s.logGapCascadeFailure("load", gapID, err)
			continue
		}
		if gap.Status == register.GapStatusInRemediation || gap.Status.IsTerminal() {
			continue
		}
		if gap.Status == register.GapStatusOpen {
			if err := gap.Acknowledge(); err != nil {
				s.logGapCascadeFailure("acknowledge", gapID, err)
				continue
			}
		}
		if err := gap.StartRemediation(); err != nil {
			s.logGapCascadeFailure("start remediation", gapID, err)
			continue
		}
		if err := s.saveGap(ctx, gap); err != nil {
			s.logGapCascadeFailure("save", gapID, err)
		}
	}
}

// resolveGaps closes the given gaps as resolved with the plan's resolution note
func (s *PlanService) resolveGaps(ctx context.Context, organizationID uuid.UUID, gapIDs []uuid.UUID, note string, resolvedBy uuid.UUID) {
	for _, gapID := range gapIDs {
		gap, err := s.gapRepo.FindByIDForOrg(ctx, organizationID, gapID)
		if err != nil {
			s.logGapCascadeFailure("load", gapID, err)
			continue
		}
		if gap.Status.IsTerminal() {
			continue
		}
		if gap.Status == register.GapStatusOpen {
			if err := gap.Acknowledge(); err != nil {
				s.logGapCascadeFailure("acknowledge", gapID, err)
				continue
			}
		}
		if err := gap.Resolve(note, resolvedBy); err != nil {
			s.logGapCascadeFailure("resolve", gapID, err)
			continue
		}
		if err := s.saveGap(ctx, gap); err != nil {
			s.logGapCascadeFailure("save", gapID, err)
		}
	}
}

func (s *PlanService) saveGap(ctx context.Context, gap *register.Gap) error {
	events := gap.GetDomainEvents()
	gap.ClearDomainEvents()
	return s.gapRepo.SaveWithLockAndEvents(ctx, gap, events)
}

func (s *PlanService) logGapCascadeFailure(step string, gapID uuid.UUID, err error) {
	s.logger.Warn("Gap cascade step failed",
		zap.String("step", step),
		zap.String("gap_id", gapID.String()),
		zap.Error(err))
}
