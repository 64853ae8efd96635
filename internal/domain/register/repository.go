package register

import (
	"context"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// AssumptionRepository defines the interface for assumption persistence
type AssumptionRepository interface {
	// FindByID finds an assumption by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Assumption, error)

	// FindByIDForOrg finds an assumption by ID for a specific organization
	FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*Assumption, error)

	// FindAllForOrg finds all assumptions for an organization with filtering
	FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]Assumption, error)

	// FindByStatus finds assumptions by status for an organization
	FindByStatus(ctx context.Context, organizationID uuid.UUID, status AssumptionStatus, filter shared.Filter) ([]Assumption, error)

	// FindByDataPoint finds assumptions linked to a data point
	FindByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) ([]Assumption, error)

	// FindActiveForOrg finds all active assumptions (used by rollover)
	FindActiveForOrg(ctx context.Context, organizationID uuid.UUID) ([]Assumption, error)

	// FindDueForReview finds active assumptions whose review date has passed
	FindDueForReview(ctx context.Context, organizationID uuid.UUID, asOf time.Time) ([]Assumption, error)

	// Save creates or updates an assumption
	Save(ctx context.Context, a *Assumption) error

	// SaveWithEvents inserts a new a and appends its events to the
	// outbox in the same transaction
	SaveWithEvents(ctx context.Context, a *Assumption, events []shared.DomainEvent) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, a *Assumption) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	SaveWithLockAndEvents(ctx context.Context, a *Assumption, events []shared.DomainEvent) error

	// SaveLinks replaces the data point links for an assumption
	SaveLinks(ctx context.Context, assumptionID uuid.UUID, links []AssumptionLink) error

	// LoadLinks loads the linked data point IDs for an assumption
	LoadLinks(ctx context.Context, assumptionID uuid.UUID) ([]uuid.UUID, error)

	// Delete deletes an assumption (soft delete)
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteForOrg deletes an assumption for an organization
	DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error

	// CountForOrg counts assumptions for an organization with optional filters
	CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error)
}

// DecisionRepository defines the interface for estimation decision persistence
type DecisionRepository interface {
	// FindByID finds a decision by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Decision, error)

	// FindByIDForOrg finds a decision by ID for a specific organization
	FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*Decision, error)

	// FindAllForOrg finds all decisions for an organization with filtering
	FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]Decision, error)

	// FindByDataPoint finds decisions covering a data point
	FindByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) ([]Decision, error)

	// FindByConfidence finds decisions by confidence level
	FindByConfidence(ctx context.Context, organizationID uuid.UUID, confidence ConfidenceLevel, filter shared.Filter) ([]Decision, error)

	// Save creates or updates a decision
	Save(ctx context.Context, d *Decision) error

	// SaveWithEvents inserts a new d and appends its events to the
	// outbox in the same transaction
	SaveWithEvents(ctx context.Context, d *Decision, events []shared.DomainEvent) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, d *Decision) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	SaveWithLockAndEvents(ctx context.Context, d *Decision, events []shared.DomainEvent) error

	// SaveLinks replaces the affected data point links for a decision
	SaveLinks(ctx context.Context, decisionID uuid.UUID, links []DecisionLink) error

	// LoadLinks loads the affected data point IDs for a decision
	LoadLinks(ctx context.Context, decisionID uuid.UUID) ([]uuid.UUID, error)

	// Delete deletes a decision (soft delete)
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteForOrg deletes a decision for an organization
	DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error

	// CountForOrg counts decisions for an organization with optional filters
	CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error)
}

// GapRepository defines the interface for disclosure gap persistence
type GapRepository interface {
	// FindByID finds a gap by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Gap, error)

	// FindByIDForOrg finds a gap by ID for a specific organization
	FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*Gap, error)

	// FindAllForOrg finds all gaps for an organization with filtering
	FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]Gap, error)

	// FindByPeriod finds gaps within a period with filtering
	FindByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, filter shared.Filter) ([]Gap, error)

	// FindBySection finds gaps bound to a section
	FindBySection(ctx context.Context, organizationID, sectionID uuid.UUID) ([]Gap, error)

	// FindByDataPoint finds gaps bound to a data point
	FindByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) ([]Gap, error)

	// FindOpenByDataPoint finds non-terminal gaps bound to a data point
	// Used to block marking a data point complete while findings are open
	FindOpenByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) ([]Gap, error)

	// FindOpenByPeriod finds non-terminal gaps within a period (used by rollover)
	FindOpenByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) ([]Gap, error)

	// FindByStatus finds gaps by status within a period
	FindByStatus(ctx context.Context, organizationID, periodID uuid.UUID, status GapStatus, filter shared.Filter) ([]Gap, error)

	// FindBySeverity finds gaps by severity within a period
	FindBySeverity(ctx context.Context, organizationID, periodID uuid.UUID, severity GapSeverity, filter shared.Filter) ([]Gap, error)

	// FindByIDs finds gaps by a set of IDs for an organization
	FindByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]Gap, error)

	// Save creates or updates a gap
	Save(ctx context.Context, g *Gap) error

	// SaveWithEvents inserts a new g and appends its events to the
	// outbox in the same transaction
	SaveWithEvents(ctx context.Context, g *Gap, events []shared.DomainEvent) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, g *Gap) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	SaveWithLockAndEvents(ctx context.Context, g *Gap, events []shared.DomainEvent) error

	// Delete deletes a gap (soft delete)
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteForOrg deletes a gap for an organization
	DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error

	// CountForOrg counts gaps for an organization with optional filters
	CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error)

	// CountOpenByDataPoint counts non-terminal gaps bound to a data point
	CountOpenByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) (int64, error)

	// CountOpenByPeriod counts non-terminal gaps within a period
	CountOpenByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (int64, error)
}
