package persistence

import (
	"context"
	"errors"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/audit"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditEntrySortFields defines allowed sort fields for audit entries
var AuditEntrySortFields = map[string]bool{
	"occurred_at": true,
	"created_at":  true,
	"action":      true,
}

// auditValueActions are the actions that record a data point value change
var auditValueActions = []string{
	"DataPointValueRecorded",
	"DataPointValueCleared",
}

// GormAuditEntryRepository implements AuditEntryRepository using GORM.
// The trail is append-only, so only inserts and reads are exposed.
type GormAuditEntryRepository struct {
	db *gorm.DB
}

// NewGormAuditEntryRepository creates a new GormAuditEntryRepository
func NewGormAuditEntryRepository(db *gorm.DB) *GormAuditEntryRepository {
	return &GormAuditEntryRepository{db: db}
}

// Save appends a single entry
func (r *GormAuditEntryRepository) Save(ctx context.Context, entry *audit.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// SaveBatch appends entries in batch
func (r *GormAuditEntryRepository) SaveBatch(ctx context.Context, entries []audit.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&entries, 200).Error
}

// ExistsByEventID checks if an event was already projected
func (r *GormAuditEntryRepository) ExistsByEventID(ctx context.Context, eventID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&audit.AuditEntry{}).
		Where("event_id = ?", eventID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByID finds an entry by ID
func (r *GormAuditEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.AuditEntry, error) {
	var entry audit.AuditEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByIDForOrg finds an entry by ID within an organization
func (r *GormAuditEntryRepository) FindByIDForOrg(ctx context.Context, id, organizationID uuid.UUID) (*audit.AuditEntry, error) {
	var entry audit.AuditEntry
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindForOrg finds entries for an organization matching the query, newest first
func (r *GormAuditEntryRepository) FindForOrg(ctx context.Context, organizationID uuid.UUID, query audit.Query, filter shared.Filter) (*shared.Paginated[audit.AuditEntry], error) {
	base := r.applyQuery(
		r.db.WithContext(ctx).Model(&audit.AuditEntry{}).
			Where("organization_id = ?", organizationID),
		query)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	listQuery := base.Session(&gorm.Session{})
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, AuditEntrySortFields, "")
		if sortField != "" {
			listQuery = listQuery.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
		} else {
			listQuery = listQuery.Order("occurred_at DESC")
		}
	} else {
		listQuery = listQuery.Order("occurred_at DESC")
	}
	listQuery = listQuery.Offset((page - 1) * pageSize).Limit(pageSize)

	var entries []audit.AuditEntry
	if err := listQuery.Find(&entries).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(entries, total, page, pageSize)
	return &result, nil
}

// FindByAggregate finds all entries for one aggregate, oldest first
func (r *GormAuditEntryRepository) FindByAggregate(ctx context.Context, organizationID uuid.UUID, aggregateType string, aggregateID uuid.UUID) ([]audit.AuditEntry, error) {
	var entries []audit.AuditEntry
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND aggregate_type = ? AND aggregate_id = ?", organizationID, aggregateType, aggregateID).
		Order("occurred_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindValueHistory finds the value-change entries for a data point, oldest first
func (r *GormAuditEntryRepository) FindValueHistory(ctx context.Context, organizationID, dataPointID uuid.UUID) ([]audit.AuditEntry, error) {
	var entries []audit.AuditEntry
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND aggregate_type = ? AND aggregate_id = ? AND action IN ?",
			organizationID, "DataPoint", dataPointID, auditValueActions).
		Order("occurred_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountForOrg counts entries for an organization matching the query
func (r *GormAuditEntryRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, query audit.Query) (int64, error) {
	var count int64
	base := r.applyQuery(
		r.db.WithContext(ctx).Model(&audit.AuditEntry{}).
			Where("organization_id = ?", organizationID),
		query)

	if err := base.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyQuery applies the audit query conditions
func (r *GormAuditEntryRepository) applyQuery(db *gorm.DB, query audit.Query) *gorm.DB {
	if query.AggregateType != "" {
		db = db.Where("aggregate_type = ?", query.AggregateType)
	}
	if query.AggregateID != nil {
		db = db.Where("aggregate_id = ?", *query.AggregateID)
	}
	if query.ActorUserID != nil {
		db = db.Where("actor_user_id = ?", *query.ActorUserID)
	}
	if query.Action != "" {
		db = db.Where("action = ?", query.Action)
	}
	if query.From != nil {
		db = db.Where("occurred_at >= ?", *query.From)
	}
	if query.To != nil {
		db = db.Where("occurred_at <= ?", *query.To)
	}
	return db
}

// Ensure GormAuditEntryRepository implements AuditEntryRepository
var _ audit.AuditEntryRepository = (*GormAuditEntryRepository)(nil)
