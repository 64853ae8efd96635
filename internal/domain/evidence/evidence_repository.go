package evidence

import (
	"context"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// EvidenceRepository defines the interface for evidence persistence
type EvidenceRepository interface {
	// FindByID finds evidence by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Evidence, error)

	// FindByIDForOrg finds evidence by ID for a specific organization
	FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*Evidence, error)

	// FindByDataPoint finds evidence attached to a data point
	// Soft-deleted rows are excluded unless includeDeleted is true
	FindByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID, includeDeleted bool) ([]Evidence, error)

	// FindByPeriod finds evidence within a period with filtering
	FindByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, filter shared.Filter) ([]Evidence, error)

	// FindPendingOlderThan finds pending_upload rows registered before the cutoff
	// Used by the cleanup job to expire abandoned uploads
	FindPendingOlderThan(ctx context.Context, cutoffSeconds int64, limit int) ([]Evidence, error)

	// FindBySHA256 finds evidence rows carrying the given content hash
	// Used to detect duplicate uploads within an organization
	FindBySHA256(ctx context.Context, organizationID uuid.UUID, sha256 string) ([]Evidence, error)

	// Save creates or updates evidence
	Save(ctx context.Context, ev *Evidence) error

	// SaveWithEvents inserts a new evidence row and appends its events to the
	// outbox in the same transaction
	SaveWithEvents(ctx context.Context, ev *Evidence, events []shared.DomainEvent) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, ev *Evidence) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	SaveWithLockAndEvents(ctx context.Context, ev *Evidence, events []shared.DomainEvent) error

	// CountByDataPoint counts non-deleted evidence rows for a data point
	CountByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) (int64, error)

	// CountByPeriod counts non-deleted evidence rows within a period
	CountByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (int64, error)
}
