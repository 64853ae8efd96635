package approval

import (
	"context"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// ApprovalRequestRepository defines the persistence interface for approval requests
type ApprovalRequestRepository interface {
	// FindByID finds a request by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ApprovalRequest, error)

	// FindByIDForOrg finds a request by ID scoped to an organization
	FindByIDForOrg(ctx context.Context, id, organizationID uuid.UUID) (*ApprovalRequest, error)

	// FindAllForOrg finds all requests for an organization with filtering
	FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (*shared.Paginated[ApprovalRequest], error)

	// FindByTarget finds all requests for a target, newest first
	FindByTarget(ctx context.Context, organizationID uuid.UUID, targetKind TargetKind, targetID uuid.UUID) ([]ApprovalRequest, error)

	// FindPendingByTarget finds the pending request for a target, if any
	FindPendingByTarget(ctx context.Context, organizationID uuid.UUID, targetKind TargetKind, targetID uuid.UUID) (*ApprovalRequest, error)

	// FindPendingByTargets finds pending requests for any of the given target IDs.
	// Used to auto-cancel requests when their targets regress.
	FindPendingByTargets(ctx context.Context, organizationID uuid.UUID, targetKind TargetKind, targetIDs []uuid.UUID) ([]ApprovalRequest, error)

	// FindByPeriod finds requests in the given period with filtering
	FindByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, filter shared.Filter) (*shared.Paginated[ApprovalRequest], error)

	// FindByStatus finds requests with the given status for an organization
	FindByStatus(ctx context.Context, organizationID uuid.UUID, status ApprovalStatus, filter shared.Filter) (*shared.Paginated[ApprovalRequest], error)

	// FindPendingByApprover finds pending requests assigned to the given user
	FindPendingByApprover(ctx context.Context, organizationID, approverUserID uuid.UUID) ([]ApprovalRequest, error)

	// FindByRequester finds requests created by the given user with filtering
	FindByRequester(ctx context.Context, organizationID, requestedBy uuid.UUID, filter shared.Filter) (*shared.Paginated[ApprovalRequest], error)

	// Save saves a request
	Save(ctx context.Context, request *ApprovalRequest) error

	// SaveWithEvents inserts a new request and appends its events to the
	// outbox in the same transaction
	SaveWithEvents(ctx context.Context, request *ApprovalRequest, events []shared.DomainEvent) error

	// SaveWithLock saves a request using optimistic locking on the version field
	SaveWithLock(ctx context.Context, request *ApprovalRequest) error

	// SaveWithLockAndEvents saves a request and appends its events to the
	// outbox in the same transaction
	SaveWithLockAndEvents(ctx context.Context, request *ApprovalRequest, events []shared.DomainEvent) error

	// CountPendingForOrg counts pending requests for an organization
	CountPendingForOrg(ctx context.Context, organizationID uuid.UUID) (int64, error)

	// CountPendingByApprover counts pending requests assigned to the given user
	CountPendingByApprover(ctx context.Context, organizationID, approverUserID uuid.UUID) (int64, error)

	// ExistsPendingForTarget checks if the target already has a pending request
	ExistsPendingForTarget(ctx context.Context, organizationID uuid.UUID, targetKind TargetKind, targetID uuid.UUID) (bool, error)
}
