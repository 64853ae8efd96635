package bulk

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ImportHistoryFilter defines the filters for querying import histories
type ImportHistoryFilter struct {
	EntityType  *ImportEntityType // Filter by entity type
	Status      *ImportStatus     // Filter by status
	ImportedBy  *uuid.UUID        // Filter by user who imported
	StartedFrom *time.Time        // Filter by start time (from)
	StartedTo   *time.Time        // Filter by start time (to)
}

// ImportHistoryListResult represents a paginated list of import histories
type ImportHistoryListResult struct {
	Items      []*ImportHistory
	TotalCount int64
	Page       int
	PageSize   int
}

// ImportHistoryRepository defines the interface for import history persistence
type ImportHistoryRepository interface {
	// FindByIDForOrg finds an import history by ID within an organization
	FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*ImportHistory, error)

	// FindAllForOrg returns import histories for an organization with pagination and filtering
	FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter ImportHistoryFilter, page, pageSize int) (*ImportHistoryListResult, error)

	// FindByStatusForOrg finds all import histories with a specific status
	FindByStatusForOrg(ctx context.Context, organizationID uuid.UUID, status ImportStatus) ([]*ImportHistory, error)

	// FindUnfinishedForOrg finds histories left in a non-terminal state, for recovery after restart
	FindUnfinishedForOrg(ctx context.Context, organizationID uuid.UUID) ([]*ImportHistory, error)

	// Save saves an import history (create or update)
	Save(ctx context.Context, history *ImportHistory) error

	// DeleteForOrg deletes an import history by ID within an organization
	DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error
}
