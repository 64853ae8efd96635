package audit

import (
	"context"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// AuditEntryRepository defines the persistence interface for the audit trail.
// The trail is append-only: implementations expose inserts and reads, never
// updates or deletes.
type AuditEntryRepository interface {
	// Save appends a single entry
	Save(ctx context.Context, entry *AuditEntry) error

	// SaveBatch appends entries in batch
	SaveBatch(ctx context.Context, entries []AuditEntry) error

	// ExistsByEventID checks if an event was already projected.
	// Used to keep the projector idempotent under redelivery.
	ExistsByEventID(ctx context.Context, eventID uuid.UUID) (bool, error)

	// FindByID finds an entry by ID
	FindByID(ctx context.Context, id uuid.UUID) (*AuditEntry, error)

	// FindByIDForOrg finds an entry by ID scoped to an organization
	FindByIDForOrg(ctx context.Context, id, organizationID uuid.UUID) (*AuditEntry, error)

	// FindForOrg finds entries for an organization matching the query,
	// newest first, with pagination
	FindForOrg(ctx context.Context, organizationID uuid.UUID, query Query, filter shared.Filter) (*shared.Paginated[AuditEntry], error)

	// FindByAggregate finds all entries for one aggregate, oldest first
	FindByAggregate(ctx context.Context, organizationID uuid.UUID, aggregateType string, aggregateID uuid.UUID) ([]AuditEntry, error)

	// FindValueHistory finds the value-change entries for a data point,
	// oldest first. Feeds the version history endpoint.
	FindValueHistory(ctx context.Context, organizationID, dataPointID uuid.UUID) ([]AuditEntry, error)

	// CountForOrg counts entries for an organization matching the query
	CountForOrg(ctx context.Context, organizationID uuid.UUID, query Query) (int64, error)
}
