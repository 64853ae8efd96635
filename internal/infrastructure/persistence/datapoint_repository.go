package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DataPointSortFields defines allowed sort fields for data points
var DataPointSortFields = map[string]bool{
	"created_at":       true,
	"updated_at":       true,
	"code":             true,
	"name":             true,
	"kind":             true,
	"status":           true,
	"value_updated_at": true,
}

// GormDataPointRepository implements DataPointRepository using GORM
type GormDataPointRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormDataPointRepository creates a new GormDataPointRepository
func NewGormDataPointRepository(db *gorm.DB) *GormDataPointRepository {
	return &GormDataPointRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormDataPointRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a data point by ID
func (r *GormDataPointRepository) FindByID(ctx context.Context, id uuid.UUID) (*reporting.DataPoint, error) {
	var dp reporting.DataPoint
	if err := r.db.WithContext(ctx).First(&dp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &dp, nil
}

// FindByIDForOrg finds a data point by ID within an organization
func (r *GormDataPointRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*reporting.DataPoint, error) {
	var dp reporting.DataPoint
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&dp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &dp, nil
}

// FindByCode finds a data point by code within a period
func (r *GormDataPointRepository) FindByCode(ctx context.Context, organizationID, periodID uuid.UUID, code string) (*reporting.DataPoint, error) {
	var dp reporting.DataPoint
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND period_id = ? AND code = ?", organizationID, periodID, code).
		First(&dp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &dp, nil
}

// FindBySection finds all data points of a section
func (r *GormDataPointRepository) FindBySection(ctx context.Context, organizationID, sectionID uuid.UUID) ([]reporting.DataPoint, error) {
	var dps []reporting.DataPoint
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND section_id = ?", organizationID, sectionID).
		Order("code ASC").
		Find(&dps).Error; err != nil {
		return nil, err
	}
	return dps, nil
}

// FindByPeriod finds all data points of a period with filtering
func (r *GormDataPointRepository) FindByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, filter shared.Filter) ([]reporting.DataPoint, error) {
	var dps []reporting.DataPoint
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&reporting.DataPoint{}).
			Where("organization_id = ? AND period_id = ?", organizationID, periodID),
		filter)

	if err := query.Find(&dps).Error; err != nil {
		return nil, err
	}
	return dps, nil
}

// FindByOwner finds data points owned by a user within a period
func (r *GormDataPointRepository) FindByOwner(ctx context.Context, organizationID, periodID, ownerUserID uuid.UUID) ([]reporting.DataPoint, error) {
	var dps []reporting.DataPoint
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND period_id = ? AND owner_user_id = ?", organizationID, periodID, ownerUserID).
		Order("code ASC").
		Find(&dps).Error; err != nil {
		return nil, err
	}
	return dps, nil
}

// FindByStatus finds data points by status within a period
func (r *GormDataPointRepository) FindByStatus(ctx context.Context, organizationID, periodID uuid.UUID, status reporting.DataPointStatus, filter shared.Filter) ([]reporting.DataPoint, error) {
	var dps []reporting.DataPoint
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&reporting.DataPoint{}).
			Where("organization_id = ? AND period_id = ? AND status = ?", organizationID, periodID, string(status)),
		filter)

	if err := query.Find(&dps).Error; err != nil {
		return nil, err
	}
	return dps, nil
}

// FindMandatoryIncomplete finds mandatory data points not yet complete within a period
func (r *GormDataPointRepository) FindMandatoryIncomplete(ctx context.Context, organizationID, periodID uuid.UUID) ([]reporting.DataPoint, error) {
	var dps []reporting.DataPoint
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND period_id = ? AND mandatory = ? AND status <> ?",
			organizationID, periodID, true, string(reporting.DataPointStatusComplete)).
		Order("code ASC").
		Find(&dps).Error; err != nil {
		return nil, err
	}
	return dps, nil
}

// FindEstimatedByPeriod finds data points carrying estimated values within a period
func (r *GormDataPointRepository) FindEstimatedByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) ([]reporting.DataPoint, error) {
	var dps []reporting.DataPoint
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND period_id = ? AND estimated = ?", organizationID, periodID, true).
		Order("code ASC").
		Find(&dps).Error; err != nil {
		return nil, err
	}
	return dps, nil
}

// Save saves a data point (insert or update)
func (r *GormDataPointRepository) Save(ctx context.Context, dp *reporting.DataPoint) error {
	return r.db.WithContext(ctx).Save(dp).Error
}

// SaveWithEvents inserts a new data point and appends its events to the outbox
// in the same transaction
func (r *GormDataPointRepository) SaveWithEvents(ctx context.Context, dp *reporting.DataPoint, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(dp).Error; err != nil {
			return err
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}

		return nil
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormDataPointRepository) SaveWithLock(ctx context.Context, dp *reporting.DataPoint) error {
	result := r.db.WithContext(ctx).
		Model(dp).
		Where("id = ? AND version = ?", dp.ID, dp.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(dp)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The data point has been modified by another transaction")
	}
	return nil
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
// This implements the transactional outbox pattern - events are saved to the outbox table
// in the same transaction as the aggregate, ensuring guaranteed event delivery
func (r *GormDataPointRepository) SaveWithLockAndEvents(ctx context.Context, dp *reporting.DataPoint, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(dp).
			Where("id = ? AND version = ?", dp.ID, dp.Version-1).
			Select("*").Omit("id", "created_at").
			Updates(dp)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The data point has been modified by another transaction")
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}

		return nil
	})
}

// SaveAll saves multiple data points in a single transaction
func (r *GormDataPointRepository) SaveAll(ctx context.Context, dps []*reporting.DataPoint) error {
	if len(dps) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dp := range dps {
			if err := tx.Save(dp).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a data point by ID
func (r *GormDataPointRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&reporting.DataPoint{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteForOrg deletes a data point within an organization
func (r *GormDataPointRepository) DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		Delete(&reporting.DataPoint{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountBySection counts data points of a section
func (r *GormDataPointRepository) CountBySection(ctx context.Context, organizationID, sectionID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&reporting.DataPoint{}).
		Where("organization_id = ? AND section_id = ?", organizationID, sectionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByPeriod counts data points of a period with optional filters
func (r *GormDataPointRepository) CountByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&reporting.DataPoint{}).
		Where("organization_id = ? AND period_id = ?", organizationID, periodID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatusForSection counts data points by status within a section
func (r *GormDataPointRepository) CountByStatusForSection(ctx context.Context, organizationID, sectionID uuid.UUID, status reporting.DataPointStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&reporting.DataPoint{}).
		Where("organization_id = ? AND section_id = ? AND status = ?", organizationID, sectionID, string(status)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountWithValueBySection counts data points of a section that carry a recorded value
func (r *GormDataPointRepository) CountWithValueBySection(ctx context.Context, organizationID, sectionID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&reporting.DataPoint{}).
		Where("organization_id = ? AND section_id = ?", organizationID, sectionID).
		Where("numeric_value IS NOT NULL OR text_value <> '' OR bool_value IS NOT NULL").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountMandatoryByPeriod counts mandatory data points within a period
func (r *GormDataPointRepository) CountMandatoryByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&reporting.DataPoint{}).
		Where("organization_id = ? AND period_id = ? AND mandatory = ?", organizationID, periodID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountMandatoryCompleteByPeriod counts mandatory data points complete within a period
func (r *GormDataPointRepository) CountMandatoryCompleteByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&reporting.DataPoint{}).
		Where("organization_id = ? AND period_id = ? AND mandatory = ? AND status = ?",
			organizationID, periodID, true, string(reporting.DataPointStatusComplete)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a data point code exists within a period
func (r *GormDataPointRepository) ExistsByCode(ctx context.Context, organizationID, periodID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&reporting.DataPoint{}).
		Where("organization_id = ? AND period_id = ? AND code = ?", organizationID, periodID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormDataPointRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, DataPointSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("code ASC")
		}
	} else {
		query = query.Order("code ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormDataPointRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("code ILIKE ? OR name ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "section_id":
			query = query.Where("section_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "kind":
			query = query.Where("kind = ?", value)
		case "mandatory":
			query = query.Where("mandatory = ?", value)
		case "estimated":
			query = query.Where("estimated = ?", value)
		case "owner_user_id":
			query = query.Where("owner_user_id = ?", value)
		case "unit_code":
			query = query.Where("unit_code = ?", value)
		}
	}

	return query
}

// Ensure GormDataPointRepository implements DataPointRepository
var _ reporting.DataPointRepository = (*GormDataPointRepository)(nil)
