package reporting

import (
	"context"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// ReportingPeriodRepository defines the interface for reporting period persistence
type ReportingPeriodRepository interface {
	// FindByID finds a reporting period by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ReportingPeriod, error)

	// FindByIDForOrg finds a reporting period by ID for a specific organization
	FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*ReportingPeriod, error)

	// FindByLabel finds a reporting period by label for an organization
	FindByLabel(ctx context.Context, organizationID uuid.UUID, label string) (*ReportingPeriod, error)

	// FindAllForOrg finds all reporting periods for an organization with filtering
	FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]ReportingPeriod, error)

	// FindByStatus finds reporting periods by status for an organization
	FindByStatus(ctx context.Context, organizationID uuid.UUID, status PeriodStatus, filter shared.Filter) ([]ReportingPeriod, error)

	// FindOpenForOrg finds the open reporting period for an organization
	// At most one period per organization is open at a time
	FindOpenForOrg(ctx context.Context, organizationID uuid.UUID) (*ReportingPeriod, error)

	// FindLatestForOrg finds the most recently created period for an organization
	FindLatestForOrg(ctx context.Context, organizationID uuid.UUID) (*ReportingPeriod, error)

	// Save creates or updates a reporting period
	Save(ctx context.Context, period *ReportingPeriod) error

	// SaveWithEvents inserts a new period and appends its events to the
	// outbox in the same transaction
	SaveWithEvents(ctx context.Context, period *ReportingPeriod, events []shared.DomainEvent) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, period *ReportingPeriod) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	// This implements the transactional outbox pattern - events are saved to the outbox table
	// in the same transaction as the aggregate, ensuring guaranteed event delivery
	SaveWithLockAndEvents(ctx context.Context, period *ReportingPeriod, events []shared.DomainEvent) error

	// Delete deletes a reporting period (soft delete)
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteForOrg deletes a reporting period for an organization
	DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error

	// CountForOrg counts reporting periods for an organization with optional filters
	CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts reporting periods by status for an organization
	CountByStatus(ctx context.Context, organizationID uuid.UUID, status PeriodStatus) (int64, error)

	// ExistsByLabel checks if a period label exists for an organization
	ExistsByLabel(ctx context.Context, organizationID uuid.UUID, label string) (bool, error)

	// ExistsOverlapping checks if any non-archived period overlaps the given date range,
	// excluding the period with excludeID (pass uuid.Nil to exclude none)
	ExistsOverlapping(ctx context.Context, organizationID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error)
}

// ReportSectionRepository defines the interface for report section persistence
type ReportSectionRepository interface {
	// FindByID finds a report section by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ReportSection, error)

	// FindByIDForOrg finds a report section by ID for a specific organization
	FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*ReportSection, error)

	// FindByCode finds a section by code within a period
	FindByCode(ctx context.Context, organizationID, periodID uuid.UUID, code string) (*ReportSection, error)

	// FindByPeriod finds all sections of a period ordered by depth and sort order
	// Loads the full tree; callers assemble parent/child structure in memory
	FindByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) ([]ReportSection, error)

	// FindActiveByPeriod finds active sections of a period
	FindActiveByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) ([]ReportSection, error)

	// FindRoots finds top-level sections of a period
	FindRoots(ctx context.Context, organizationID, periodID uuid.UUID) ([]ReportSection, error)

	// FindChildren finds the direct children of a section
	FindChildren(ctx context.Context, organizationID, parentID uuid.UUID) ([]ReportSection, error)

	// FindByOwner finds sections owned by a user within a period
	FindByOwner(ctx context.Context, organizationID, periodID, ownerUserID uuid.UUID) ([]ReportSection, error)

	// FindByStatus finds sections by status within a period
	FindByStatus(ctx context.Context, organizationID, periodID uuid.UUID, status SectionStatus) ([]ReportSection, error)

	// Save creates or updates a report section
	Save(ctx context.Context, section *ReportSection) error

	// SaveWithEvents inserts a new section and appends its events to the
	// outbox in the same transaction
	SaveWithEvents(ctx context.Context, section *ReportSection, events []shared.DomainEvent) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, section *ReportSection) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	SaveWithLockAndEvents(ctx context.Context, section *ReportSection, events []shared.DomainEvent) error

	// SaveAll saves multiple sections in a single transaction
	// Used by template application and period rollover
	SaveAll(ctx context.Context, sections []*ReportSection) error

	// Delete deletes a report section (soft delete)
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteForOrg deletes a report section for an organization
	DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error

	// CountByPeriod counts sections within a period
	CountByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (int64, error)

	// CountChildren counts the direct children of a section
	CountChildren(ctx context.Context, organizationID, parentID uuid.UUID) (int64, error)

	// CountUnapprovedByPeriod counts active sections not yet approved within a period
	// Used to validate period close
	CountUnapprovedByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (int64, error)

	// ExistsByCode checks if a section code exists within a period
	ExistsByCode(ctx context.Context, organizationID, periodID uuid.UUID, code string) (bool, error)
}

// DataPointRepository defines the interface for data point persistence
type DataPointRepository interface {
	// FindByID finds a data point by ID
	FindByID(ctx context.Context, id uuid.UUID) (*DataPoint, error)

	// FindByIDForOrg finds a data point by ID for a specific organization
	FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*DataPoint, error)

	// FindByCode finds a data point by code within a period
	FindByCode(ctx context.Context, organizationID, periodID uuid.UUID, code string) (*DataPoint, error)

	// FindBySection finds all data points of a section
	FindBySection(ctx context.Context, organizationID, sectionID uuid.UUID) ([]DataPoint, error)

	// FindByPeriod finds all data points of a period with filtering
	FindByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, filter shared.Filter) ([]DataPoint, error)

	// FindByOwner finds data points owned by a user within a period
	FindByOwner(ctx context.Context, organizationID, periodID, ownerUserID uuid.UUID) ([]DataPoint, error)

	// FindByStatus finds data points by status within a period
	FindByStatus(ctx context.Context, organizationID, periodID uuid.UUID, status DataPointStatus, filter shared.Filter) ([]DataPoint, error)

	// FindMandatoryIncomplete finds mandatory data points not yet complete within a period
	FindMandatoryIncomplete(ctx context.Context, organizationID, periodID uuid.UUID) ([]DataPoint, error)

	// FindEstimatedByPeriod finds data points carrying estimated values within a period
	FindEstimatedByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) ([]DataPoint, error)

	// Save creates or updates a data point
	Save(ctx context.Context, dp *DataPoint) error

	// SaveWithEvents inserts a new data point and appends its events to the
	// outbox in the same transaction
	SaveWithEvents(ctx context.Context, dp *DataPoint, events []shared.DomainEvent) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, dp *DataPoint) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	SaveWithLockAndEvents(ctx context.Context, dp *DataPoint, events []shared.DomainEvent) error

	// SaveAll saves multiple data points in a single transaction
	// Used by bulk import and period rollover
	SaveAll(ctx context.Context, dps []*DataPoint) error

	// Delete deletes a data point (soft delete)
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteForOrg deletes a data point for an organization
	DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error

	// CountBySection counts data points of a section
	CountBySection(ctx context.Context, organizationID, sectionID uuid.UUID) (int64, error)

	// CountByPeriod counts data points of a period with optional filters
	CountByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatusForSection counts data points by status within a section
	CountByStatusForSection(ctx context.Context, organizationID, sectionID uuid.UUID, status DataPointStatus) (int64, error)

	// CountWithValueBySection counts data points of a section that carry a recorded value
	// Used to block section deletion once data has been recorded
	CountWithValueBySection(ctx context.Context, organizationID, sectionID uuid.UUID) (int64, error)

	// CountMandatoryByPeriod counts mandatory data points within a period
	CountMandatoryByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (int64, error)

	// CountMandatoryCompleteByPeriod counts mandatory data points complete within a period
	CountMandatoryCompleteByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (int64, error)

	// ExistsByCode checks if a data point code exists within a period
	ExistsByCode(ctx context.Context, organizationID, periodID uuid.UUID, code string) (bool, error)
}

// CompletenessSnapshotRepository defines the persistence interface for daily
// completeness snapshots
type CompletenessSnapshotRepository interface {
	// Save inserts a snapshot
	Save(ctx context.Context, snapshot *CompletenessSnapshot) error

	// ExistsForDate checks if a snapshot already exists for the period and day
	ExistsForDate(ctx context.Context, periodID uuid.UUID, day time.Time) (bool, error)

	// FindByPeriod finds snapshots for a period within the date range, oldest first
	FindByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, from, to time.Time) ([]CompletenessSnapshot, error)

	// FindLatestByPeriod finds the most recent snapshot for a period
	FindLatestByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (*CompletenessSnapshot, error)
}
