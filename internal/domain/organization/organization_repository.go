package organization

import (
	"context"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// OrganizationRepository defines the interface for organization persistence
type OrganizationRepository interface {
	// FindByID finds an organization by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)

	// FindByCode finds an organization by its unique code
	FindByCode(ctx context.Context, code string) (*Organization, error)

	// FindAll finds all organizations matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Organization, error)

	// FindByStatus finds organizations by status
	FindByStatus(ctx context.Context, status OrganizationStatus, filter shared.Filter) ([]Organization, error)

	// FindActive finds all active organizations
	FindActive(ctx context.Context, filter shared.Filter) ([]Organization, error)

	// FindByIDs finds multiple organizations by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Organization, error)

	// Save creates or updates an organization
	Save(ctx context.Context, org *Organization) error

	// Delete deletes an organization
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts organizations matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts organizations by status
	CountByStatus(ctx context.Context, status OrganizationStatus) (int64, error)

	// ExistsByCode checks if an organization with the given code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)
}
