package export

import (
	"context"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// ExportJobRepository defines the interface for export job persistence
type ExportJobRepository interface {
	// FindByID finds an export job by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ExportJob, error)

	// FindByIDForOrg finds an export job by ID for a specific organization
	FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*ExportJob, error)

	// FindAllForOrg finds all export jobs for an organization with filtering
	FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]ExportJob, error)

	// FindByPeriod finds export jobs for a reporting period
	FindByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, filter shared.Filter) ([]ExportJob, error)

	// Save creates or updates an export job
	Save(ctx context.Context, j *ExportJob) error

	// SaveWithEvents inserts a new j and appends its events to the
	// outbox in the same transaction
	SaveWithEvents(ctx context.Context, j *ExportJob, events []shared.DomainEvent) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	SaveWithLockAndEvents(ctx context.Context, j *ExportJob, events []shared.DomainEvent) error

	// DeleteForOrg deletes an export job for an organization
	DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error

	// CountForOrg counts export jobs for an organization
	CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error)
}

// ReportTemplateRepository defines the interface for report template persistence
type ReportTemplateRepository interface {
	// FindByID finds a template by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ReportTemplate, error)

	// FindByIDForOrg finds a template by ID for a specific organization
	FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*ReportTemplate, error)

	// FindAllForOrg finds all templates for an organization with filtering
	FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]ReportTemplate, error)

	// FindDefaultForOrg finds the organization's default active template
	FindDefaultForOrg(ctx context.Context, organizationID uuid.UUID) (*ReportTemplate, error)

	// Save creates or updates a template
	Save(ctx context.Context, t *ReportTemplate) error

	// SaveWithEvents inserts a new t and appends its events to the
	// outbox in the same transaction
	SaveWithEvents(ctx context.Context, t *ReportTemplate, events []shared.DomainEvent) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	SaveWithLockAndEvents(ctx context.Context, t *ReportTemplate, events []shared.DomainEvent) error

	// ClearDefaultForOrg unsets the default flag on all of the organization's templates
	ClearDefaultForOrg(ctx context.Context, organizationID uuid.UUID) error

	// DeleteForOrg deletes a template for an organization
	DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error

	// CountForOrg counts templates for an organization
	CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error)
}
