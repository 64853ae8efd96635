package approval

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/approval"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/telemetry"
)

// ApprovalService handles the sign-off workflow for sections and periods.
// Granting a section request approves the section, rejecting sends it back
// to in progress. Granting a period request closes the period, rejecting
// returns it to open.
type ApprovalService struct {
	requestRepo     approval.ApprovalRequestRepository
	sectionRepo     reporting.ReportSectionRepository
	periodRepo      reporting.ReportingPeriodRepository
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewApprovalService creates a new approval service
func NewApprovalService(
	requestRepo approval.ApprovalRequestRepository,
	sectionRepo reporting.ReportSectionRepository,
	periodRepo reporting.ReportingPeriodRepository,
	logger *zap.Logger,
) *ApprovalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApprovalService{
		requestRepo: requestRepo,
		sectionRepo: sectionRepo,
		periodRepo:  periodRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *ApprovalService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (s *ApprovalService) SetBusinessMetrics(metrics *telemetry.BusinessMetrics) {
	s.businessMetrics = metrics
}

// Request creates a new pending approval request for a section or period.
// The target must be in its review state and have no other pending request.
func (s *ApprovalService) Request(ctx context.Context, organizationID uuid.UUID, req RequestApprovalRequest) (*ApprovalResponse, error) {
	if req.RequestedBy == nil || *req.RequestedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REQUESTER", "Requester cannot be empty")
	}

	targetKind := approval.TargetKind(req.TargetKind)
	periodID, err := s.checkTargetReviewable(ctx, organizationID, targetKind, req.TargetID)
	if err != nil {
		return nil, err
	}

	exists, err := s.requestRepo.ExistsPendingForTarget(ctx, organizationID, targetKind, req.TargetID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("PENDING_REQUEST_EXISTS", "The target already has a pending approval request")
	}

	request, err := approval.NewApprovalRequest(organizationID, targetKind, req.TargetID, periodID, *req.RequestedBy, req.ApproverUserID, req.Comment)
	if err != nil {
		return nil, err
	}

	events := request.GetDomainEvents()
	request.ClearDomainEvents()
	if err := s.requestRepo.SaveWithEvents(ctx, request, events); err != nil {
		return nil, err
	}

	response := ToApprovalResponse(request)
	return &response, nil
}

// GetByID retrieves an approval request by ID
func (s *ApprovalService) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*ApprovalResponse, error) {
	request, err := s.requestRepo.FindByIDForOrg(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}

	response := ToApprovalResponse(request)
	return &response, nil
}

// List retrieves approval requests matching the filter
func (s *ApprovalService) List(ctx context.Context, organizationID uuid.UUID, filter ApprovalListFilter) (*shared.Paginated[ApprovalResponse], error) {
	repoFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  map[string]interface{}{},
	}
	if filter.ApproverUserID != nil {
		repoFilter.Filters["approver_user_id"] = *filter.ApproverUserID
	}
	if filter.TargetKind != "" {
		repoFilter.Filters["target_kind"] = filter.TargetKind
	}

	var (
		paginated *shared.Paginated[approval.ApprovalRequest]
		err       error
	)
	switch {
	case filter.RequestedBy != nil:
		paginated, err = s.requestRepo.FindByRequester(ctx, organizationID, *filter.RequestedBy, repoFilter)
	case filter.PeriodID != nil:
		if filter.Status != nil {
			repoFilter.Filters["status"] = string(*filter.Status)
		}
		paginated, err = s.requestRepo.FindByPeriod(ctx, organizationID, *filter.PeriodID, repoFilter)
	case filter.Status != nil:
		paginated, err = s.requestRepo.FindByStatus(ctx, organizationID, *filter.Status, repoFilter)
	default:
		paginated, err = s.requestRepo.FindAllForOrg(ctx, organizationID, repoFilter)
	}
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToApprovalResponses(paginated.Items), paginated.Total, paginated.Page, paginated.PageSize)
	return &result, nil
}

// ListByTarget retrieves the approval history for a target, newest first
func (s *ApprovalService) ListByTarget(ctx context.Context, organizationID uuid.UUID, targetKind string, targetID uuid.UUID) ([]ApprovalResponse, error) {
	kind := approval.TargetKind(targetKind)
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_TARGET_KIND", "Target kind must be section or period")
	}

	requests, err := s.requestRepo.FindByTarget(ctx, organizationID, kind, targetID)
	if err != nil {
		return nil, err
	}
	return ToApprovalResponses(requests), nil
}

// GetPendingByTarget retrieves the pending request for a target, if any
func (s *ApprovalService) GetPendingByTarget(ctx context.Context, organizationID uuid.UUID, targetKind string, targetID uuid.UUID) (*ApprovalResponse, error) {
	kind := approval.TargetKind(targetKind)
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_TARGET_KIND", "Target kind must be section or period")
	}

	request, err := s.requestRepo.FindPendingByTarget(ctx, organizationID, kind, targetID)
	if err != nil {
		return nil, err
	}

	response := ToApprovalResponse(request)
	return &response, nil
}

// GetPendingForApprover retrieves the pending workload for an approver
func (s *ApprovalService) GetPendingForApprover(ctx context.Context, organizationID, approverUserID uuid.UUID) (*PendingSummaryResponse, error) {
	requests, err := s.requestRepo.FindPendingByApprover(ctx, organizationID, approverUserID)
	if err != nil {
		return nil, err
	}

	return &PendingSummaryResponse{
		ApproverUserID: approverUserID,
		PendingCount:   int64(len(requests)),
		Requests:       ToApprovalResponses(requests),
	}, nil
}

// Reassign moves a pending request to a different approver
func (s *ApprovalService) Reassign(ctx context.Context, organizationID, id uuid.UUID, req ReassignApprovalRequest) (*ApprovalResponse, error) {
	request, err := s.requestRepo.FindByIDForOrg(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}
	if err := request.Reassign(req.ApproverUserID); err != nil {
		return nil, err
	}

	if err := s.saveRequest(ctx, request); err != nil {
		return nil, err
	}

	response := ToApprovalResponse(request)
	return &response, nil
}

// Approve grants a pending request and applies the sign-off to its target:
// the section becomes approved, or the period is closed.
func (s *ApprovalService) Approve(ctx context.Context, organizationID, id uuid.UUID, req ApproveRequest) (*ApprovalResponse, error) {
	request, err := s.requestRepo.FindByIDForOrg(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}

	decidedBy := uuid.Nil
	if req.DecidedBy != nil {
		decidedBy = *req.DecidedBy
	}
	if err := request.Approve(decidedBy, req.Note); err != nil {
		return nil, err
	}

	if err := s.applyToTarget(ctx, request, true); err != nil {
		return nil, err
	}
	if err := s.saveRequest(ctx, request); err != nil {
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordApprovalDecision(ctx, organizationID, string(request.TargetKind), "approved")
	}

	response := ToApprovalResponse(request)
	return &response, nil
}

// Reject declines a pending request and sends its target back:
// the section returns to in progress, or the period reopens for collection.
func (s *ApprovalService) Reject(ctx context.Context, organizationID, id uuid.UUID, req RejectRequest) (*ApprovalResponse, error) {
	request, err := s.requestRepo.FindByIDForOrg(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}

	decidedBy := uuid.Nil
	if req.DecidedBy != nil {
		decidedBy = *req.DecidedBy
	}
	if err := request.Reject(decidedBy, req.Reason); err != nil {
		return nil, err
	}

	if err := s.applyToTarget(ctx, request, false); err != nil {
		return nil, err
	}
	if err := s.saveRequest(ctx, request); err != nil {
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordApprovalDecision(ctx, organizationID, string(request.TargetKind), "rejected")
	}

	response := ToApprovalResponse(request)
	return &response, nil
}

// Cancel withdraws a pending request without touching its target
func (s *ApprovalService) Cancel(ctx context.Context, organizationID, id uuid.UUID, req CancelApprovalRequest) (*ApprovalResponse, error) {
	request, err := s.requestRepo.FindByIDForOrg(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}
	if err := request.Cancel(req.CancelledBy, req.Note); err != nil {
		return nil, err
	}

	if err := s.saveRequest(ctx, request); err != nil {
		return nil, err
	}

	response := ToApprovalResponse(request)
	return &response, nil
}

// CancelPendingForTargets cancels pending requests whose targets regressed,
// for example a submitted section that was reopened for edits. Failures are
// logged and the sweep continues.
func (s *ApprovalService) CancelPendingForTargets(ctx context.Context, organizationID uuid.UUID, targetKind string, targetIDs []uuid.UUID, note string) int {
	kind := approval.TargetKind(targetKind)
	if !kind.IsValid() || len(targetIDs) == 0 {
		return 0
	}

	requests, err := s.requestRepo.FindPendingByTargets(ctx, organizationID, kind, targetIDs)
	if err != nil {
		s.logger.Warn("Failed to load pending approval requests for cancellation",
			zap.String("organization_id", organizationID.String()),
			zap.Error(err))
		return 0
	}

	cancelled := 0
	for i := range requests {
		request := &requests[i]
		if err := request.Cancel(nil, note); err != nil {
			continue
		}
		if err := s.saveRequest(ctx, request); err != nil {
			s.logger.Warn("Failed to cancel approval request",
				zap.String("request_id", request.ID.String()),
				zap.Error(err))
			continue
		}
		cancelled++
	}
	return cancelled
}

// CountPending counts pending requests for an organization
func (s *ApprovalService) CountPending(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	return s.requestRepo.CountPendingForOrg(ctx, organizationID)
}

// checkTargetReviewable verifies the target exists in the organization and is
// in the state that accepts a sign-off request. Returns the target's period ID.
func (s *ApprovalService) checkTargetReviewable(ctx context.Context, organizationID uuid.UUID, targetKind approval.TargetKind, targetID uuid.UUID) (uuid.UUID, error) {
	switch targetKind {
	case approval.TargetKindSection:
		section, err := s.sectionRepo.FindByIDForOrg(ctx, organizationID, targetID)
		if err != nil {
			return uuid.Nil, err
		}
		if section.Status != reporting.SectionStatusReadyForReview {
			return uuid.Nil, shared.NewDomainError("NOT_IN_REVIEW", "Section must be submitted for review before requesting approval")
		}
		return section.PeriodID, nil
	case approval.TargetKindPeriod:
		period, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, targetID)
		if err != nil {
			return uuid.Nil, err
		}
		if period.Status != reporting.PeriodStatusInReview {
			return uuid.Nil, shared.NewDomainError("NOT_IN_REVIEW", "Period must be in review before requesting approval")
		}
		return period.ID, nil
	default:
		return uuid.Nil, shared.NewDomainError("INVALID_TARGET_KIND", "Target kind must be section or period")
	}
}

// applyToTarget cascades a decision to the request's target
func (s *ApprovalService) applyToTarget(ctx context.Context, request *approval.ApprovalRequest, approved bool) error {
	switch request.TargetKind {
	case approval.TargetKindSection:
		section, err := s.sectionRepo.FindByIDForOrg(ctx, request.OrganizationID, request.TargetID)
		if err != nil {
			return err
		}
		if approved {
			err = section.Approve()
		} else {
			err = section.SendBack()
		}
		if err != nil {
			return err
		}
		events := section.GetDomainEvents()
		section.ClearDomainEvents()
		return s.sectionRepo.SaveWithLockAndEvents(ctx, section, events)
	case approval.TargetKindPeriod:
		period, err := s.periodRepo.FindByIDForOrg(ctx, request.OrganizationID, request.TargetID)
		if err != nil {
			return err
		}
		if approved {
			// A period closes only once every active section is approved or waived
			unapproved, countErr := s.sectionRepo.CountUnapprovedByPeriod(ctx, request.OrganizationID, request.TargetID)
			if countErr != nil {
				return countErr
			}
			if unapproved > 0 {
				return shared.NewDomainError("SECTIONS_UNAPPROVED",
					fmt.Sprintf("%d sections are not yet approved", unapproved))
			}
			err = period.Close()
		} else {
			err = period.BackToOpen()
		}
		if err != nil {
			return err
		}
		events := period.GetDomainEvents()
		period.ClearDomainEvents()
		if err := s.periodRepo.SaveWithLockAndEvents(ctx, period, events); err != nil {
			return err
		}
		if s.businessMetrics != nil {
			s.businessMetrics.RecordPeriodTransition(ctx, request.OrganizationID, string(period.Status))
		}
		return nil
	}
	return nil
}

func (s *ApprovalService) saveRequest(ctx context.Context, request *approval.ApprovalRequest) error {
	events := request.GetDomainEvents()
	request.ClearDomainEvents()
	return s.requestRepo.SaveWithLockAndEvents(ctx, request, events)
}
