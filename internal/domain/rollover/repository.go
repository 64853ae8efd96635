package rollover

import (
	"context"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// RolloverRunRepository defines the persistence interface for rollover runs
// and their outcome rows
type RolloverRunRepository interface {
	// FindByID finds a run by ID
	FindByID(ctx context.Context, id uuid.UUID) (*RolloverRun, error)

	// FindByIDForOrg finds a run by ID scoped to an organization
	FindByIDForOrg(ctx context.Context, id, organizationID uuid.UUID) (*RolloverRun, error)

	// FindByIdempotencyKey finds the run created with the given key, if any.
	// Repeated trigger requests with the same key return this run.
	FindByIdempotencyKey(ctx context.Context, organizationID uuid.UUID, key string) (*RolloverRun, error)

	// FindAllForOrg finds all runs for an organization with filtering
	FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (*shared.Paginated[RolloverRun], error)

	// FindByTargetPeriod finds runs that copied into the given period
	FindByTargetPeriod(ctx context.Context, organizationID, targetPeriodID uuid.UUID) ([]RolloverRun, error)

	// FindBySourcePeriod finds runs that copied out of the given period
	FindBySourcePeriod(ctx context.Context, organizationID, sourcePeriodID uuid.UUID) ([]RolloverRun, error)

	// ExistsActiveForTarget checks if a pending or running run already
	// targets the given period
	ExistsActiveForTarget(ctx context.Context, organizationID, targetPeriodID uuid.UUID) (bool, error)

	// Save saves a run
	Save(ctx context.Context, run *RolloverRun) error

	// SaveWithEvents inserts a new run and appends its events to the
	// outbox in the same transaction
	SaveWithEvents(ctx context.Context, run *RolloverRun, events []shared.DomainEvent) error

	// SaveWithLock saves a run using optimistic locking on the version field
	SaveWithLock(ctx context.Context, run *RolloverRun) error

	// SaveWithLockAndEvents saves a run and appends its events to the outbox
	// in the same transaction
	SaveWithLockAndEvents(ctx context.Context, run *RolloverRun, events []shared.DomainEvent) error

	// SaveItems appends outcome rows in batch
	SaveItems(ctx context.Context, items []RolloverItem) error

	// FindItems finds outcome rows for a run with filtering.
	// Filter keys "category" and "outcome" narrow the result.
	FindItems(ctx context.Context, runID uuid.UUID, filter shared.Filter) (*shared.Paginated[RolloverItem], error)

	// CountItemsByOutcome counts a run's outcome rows grouped by outcome
	CountItemsByOutcome(ctx context.Context, runID uuid.UUID) (map[RolloverOutcome]int64, error)

	// CountItemsByCategory counts a run's outcome rows grouped by category
	CountItemsByCategory(ctx context.Context, runID uuid.UUID) (map[RolloverCategory]int64, error)
}
