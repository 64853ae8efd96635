package remediation

import (
	"context"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// RemediationPlanRepository defines the persistence interface for remediation plans.
// Implementations load and save the plan together with its action items and
// must keep the gap links in sync through SaveGapLinks.
type RemediationPlanRepository interface {
	// FindByID finds a plan by ID, including its items
	FindByID(ctx context.Context, id uuid.UUID) (*RemediationPlan, error)

	// FindByIDForOrg finds a plan by ID scoped to an organization
	FindByIDForOrg(ctx context.Context, id, organizationID uuid.UUID) (*RemediationPlan, error)

	// FindAllForOrg finds all plans for an organization with filtering
	FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (*shared.Paginated[RemediationPlan], error)

	// FindByStatus finds plans with the given status for an organization
	FindByStatus(ctx context.Context, organizationID uuid.UUID, status PlanStatus, filter shared.Filter) (*shared.Paginated[RemediationPlan], error)

	// FindByOwner finds plans owned by the given user
	FindByOwner(ctx context.Context, organizationID, ownerUserID uuid.UUID) ([]RemediationPlan, error)

	// FindByGap finds plans that address the given gap
	FindByGap(ctx context.Context, organizationID, gapID uuid.UUID) ([]RemediationPlan, error)

	// FindActiveForOrg finds all active plans for an organization
	FindActiveForOrg(ctx context.Context, organizationID uuid.UUID) ([]RemediationPlan, error)

	// FindOverdue finds active plans past their due date that have not been
	// flagged yet for an organization. Used by the overdue detection job.
	FindOverdue(ctx context.Context, organizationID uuid.UUID, asOf time.Time, limit int) ([]RemediationPlan, error)

	// Save saves a plan and its items
	Save(ctx context.Context, plan *RemediationPlan) error

	// SaveWithEvents inserts a new plan and appends its events to the
	// outbox in the same transaction
	SaveWithEvents(ctx context.Context, plan *RemediationPlan, events []shared.DomainEvent) error

	// SaveWithLock saves a plan using optimistic locking on the version field
	SaveWithLock(ctx context.Context, plan *RemediationPlan) error

	// SaveWithLockAndEvents saves a plan and appends its events to the outbox
	// in the same transaction
	SaveWithLockAndEvents(ctx context.Context, plan *RemediationPlan, events []shared.DomainEvent) error

	// SaveGapLinks replaces the gap links for a plan
	SaveGapLinks(ctx context.Context, planID uuid.UUID, links []PlanGap) error

	// LoadGapLinks loads the attached gap IDs for a plan
	LoadGapLinks(ctx context.Context, planID uuid.UUID) ([]uuid.UUID, error)

	// Delete deletes a plan and its items
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteForOrg deletes a plan scoped to an organization
	DeleteForOrg(ctx context.Context, id, organizationID uuid.UUID) error

	// CountForOrg counts all plans for an organization
	CountForOrg(ctx context.Context, organizationID uuid.UUID) (int64, error)

	// CountByStatus counts plans with the given status for an organization
	CountByStatus(ctx context.Context, organizationID uuid.UUID, status PlanStatus) (int64, error)

	// CountActiveByGap counts non-terminal plans that address the given gap
	CountActiveByGap(ctx context.Context, organizationID, gapID uuid.UUID) (int64, error)
}
