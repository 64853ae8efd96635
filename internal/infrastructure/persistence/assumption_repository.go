package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/register"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssumptionSortFields defines allowed sort fields for assumptions
var AssumptionSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"title":      true,
	"category":   true,
	"status":     true,
	"review_by":  true,
}

// GormAssumptionRepository implements AssumptionRepository using GORM
type GormAssumptionRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormAssumptionRepository creates a new GormAssumptionRepository
func NewGormAssumptionRepository(db *gorm.DB) *GormAssumptionRepository {
	return &GormAssumptionRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormAssumptionRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds an assumption by ID
func (r *GormAssumptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*register.Assumption, error) {
	var a register.Assumption
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindByIDForOrg finds an assumption by ID within an organization
func (r *GormAssumptionRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*register.Assumption, error) {
	var a register.Assumption
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindAllForOrg finds all assumptions for an organization
func (r *GormAssumptionRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]register.Assumption, error) {
	var assumptions []register.Assumption
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&register.Assumption{}).
			Where("organization_id = ?", organizationID),
		filter)

	if err := query.Find(&assumptions).Error; err != nil {
		return nil, err
	}
	return assumptions, nil
}

// FindByStatus finds assumptions by status for an organization
func (r *GormAssumptionRepository) FindByStatus(ctx context.Context, organizationID uuid.UUID, status register.AssumptionStatus, filter shared.Filter) ([]register.Assumption, error) {
	var assumptions []register.Assumption
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&register.Assumption{}).
			Where("organization_id = ? AND status = ?", organizationID, string(status)),
		filter)

	if err := query.Find(&assumptions).Error; err != nil {
		return nil, err
	}
	return assumptions, nil
}

// FindByDataPoint finds assumptions linked to a data point
func (r *GormAssumptionRepository) FindByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) ([]register.Assumption, error) {
	var assumptions []register.Assumption
	if err := r.db.WithContext(ctx).
		Joins("JOIN assumption_links ON assumption_links.assumption_id = assumptions.id").
		Where("assumptions.organization_id = ? AND assumption_links.data_point_id = ?", organizationID, dataPointID).
		Order("assumptions.created_at DESC").
		Find(&assumptions).Error; err != nil {
		return nil, err
	}
	return assumptions, nil
}

// FindActiveForOrg finds all active assumptions
func (r *GormAssumptionRepository) FindActiveForOrg(ctx context.Context, organizationID uuid.UUID) ([]register.Assumption, error) {
	var assumptions []register.Assumption
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND status = ?", organizationID, string(register.AssumptionStatusActive)).
		Order("created_at DESC").
		Find(&assumptions).Error; err != nil {
		return nil, err
	}
	return assumptions, nil
}

// FindDueForReview finds active assumptions whose review date has passed
func (r *GormAssumptionRepository) FindDueForReview(ctx context.Context, organizationID uuid.UUID, asOf time.Time) ([]register.Assumption, error) {
	var assumptions []register.Assumption
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND status = ? AND review_by IS NOT NULL AND review_by < ?",
			organizationID, string(register.AssumptionStatusActive), asOf).
		Order("review_by ASC").
		Find(&assumptions).Error; err != nil {
		return nil, err
	}
	return assumptions, nil
}

// Save saves an assumption (insert or update)
func (r *GormAssumptionRepository) Save(ctx context.Context, a *register.Assumption) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// SaveWithEvents inserts a new assumption and appends its events to the
// outbox in the same transaction
func (r *GormAssumptionRepository) SaveWithEvents(ctx context.Context, a *register.Assumption, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(a).Error; err != nil {
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
func (r *GormAssumptionRepository) SaveWithLock(ctx context.Context, a *register.Assumption) error {
	result := r.db.WithContext(ctx).
		Model(a).
		Where("id = ? AND version = ?", a.ID, a.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(a)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The assumption has been modified by another transaction")
	}
	return nil
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
func (r *GormAssumptionRepository) SaveWithLockAndEvents(ctx context.Context, a *register.Assumption, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(a).
			Where("id = ? AND version = ?", a.ID, a.Version-1).
			Select("*").Omit("id", "created_at").
			Updates(a)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The assumption has been modified by another transaction")
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}

		return nil
	})
}

// SaveLinks replaces the data point links for an assumption
func (r *GormAssumptionRepository) SaveLinks(ctx context.Context, assumptionID uuid.UUID, links []register.AssumptionLink) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assumption_id = ?", assumptionID).
			Delete(&register.AssumptionLink{}).Error; err != nil {
			return err
		}
		if len(links) > 0 {
			if err := tx.Create(&links).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadLinks loads the linked data point IDs for an assumption
func (r *GormAssumptionRepository) LoadLinks(ctx context.Context, assumptionID uuid.UUID) ([]uuid.UUID, error) {
	var links []register.AssumptionLink
	if err := r.db.WithContext(ctx).
		Where("assumption_id = ?", assumptionID).
		Order("created_at ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(links))
	for i, link := range links {
		ids[i] = link.DataPointID
	}
	return ids, nil
}

// Delete deletes an assumption and its links
func (r *GormAssumptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assumption_id = ?", id).
			Delete(&register.AssumptionLink{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&register.Assumption{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// DeleteForOrg deletes an assumption within an organization
func (r *GormAssumptionRepository) DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("organization_id = ? AND id = ?", organizationID, id).
			Delete(&register.Assumption{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		return tx.Where("assumption_id = ?", id).
			Delete(&register.AssumptionLink{}).Error
	})
}

// CountForOrg counts assumptions for an organization
func (r *GormAssumptionRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&register.Assumption{}).
		Where("organization_id = ?", organizationID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormAssumptionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, AssumptionSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("created_at DESC")
		}
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormAssumptionRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("title ILIKE ? OR body ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "category":
			query = query.Where("category = ?", value)
		case "owner_user_id":
			query = query.Where("owner_user_id = ?", value)
		}
	}

	return query
}

// Ensure GormAssumptionRepository implements AssumptionRepository
var _ register.AssumptionRepository = (*GormAssumptionRepository)(nil)
