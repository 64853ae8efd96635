package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/register"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DecisionSortFields defines allowed sort fields for estimation decisions
var DecisionSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"title":      true,
	"method":     true,
	"confidence": true,
	"decided_at": true,
}

// GormDecisionRepository implements DecisionRepository using GORM
type GormDecisionRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormDecisionRepository creates a new GormDecisionRepository
func NewGormDecisionRepository(db *gorm.DB) *GormDecisionRepository {
	return &GormDecisionRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormDecisionRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a decision by ID
func (r *GormDecisionRepository) FindByID(ctx context.Context, id uuid.UUID) (*register.Decision, error) {
	var d register.Decision
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// FindByIDForOrg finds a decision by ID within an organization
func (r *GormDecisionRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*register.Decision, error) {
	var d register.Decision
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// FindAllForOrg finds all decisions for an organization
func (r *GormDecisionRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]register.Decision, error) {
	var decisions []register.Decision
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&register.Decision{}).
			Where("organization_id = ?", organizationID),
		filter)

	if err := query.Find(&decisions).Error; err != nil {
		return nil, err
	}
	return decisions, nil
}

// FindByDataPoint finds decisions covering a data point
func (r *GormDecisionRepository) FindByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) ([]register.Decision, error) {
	var decisions []register.Decision
	if err := r.db.WithContext(ctx).
		Joins("JOIN decision_links ON decision_links.decision_id = estimation_decisions.id").
		Where("estimation_decisions.organization_id = ? AND decision_links.data_point_id = ?", organizationID, dataPointID).
		Order("estimation_decisions.decided_at DESC").
		Find(&decisions).Error; err != nil {
		return nil, err
	}
	return decisions, nil
}

// FindByConfidence finds decisions by confidence level
func (r *GormDecisionRepository) FindByConfidence(ctx context.Context, organizationID uuid.UUID, confidence register.ConfidenceLevel, filter shared.Filter) ([]register.Decision, error) {
	var decisions []register.Decision
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&register.Decision{}).
			Where("organization_id = ? AND confidence = ?", organizationID, string(confidence)),
		filter)

	if err := query.Find(&decisions).Error; err != nil {
		return nil, err
	}
	return decisions, nil
}

// Save saves a decision (insert or update)
func (r *GormDecisionRepository) Save(ctx context.Context, d *register.Decision) error {
	return r.db.WithContext(ctx).Save(d).Error
}

// SaveWithEvents inserts a new decision and appends its events to the
// outbox in the same transaction
func (r *GormDecisionRepository) SaveWithEvents(ctx context.Context, d *register.Decision, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(d).Error; err != nil {
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
func (r *GormDecisionRepository) SaveWithLock(ctx context.Context, d *register.Decision) error {
	result := r.db.WithContext(ctx).
		Model(d).
		Where("id = ? AND version = ?", d.ID, d.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(d)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The decision has been modified by another transaction")
	}
	return nil
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
func (r *GormDecisionRepository) SaveWithLockAndEvents(ctx context.Context, d *register.Decision, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(d).
			Where("id = ? AND version = ?", d.ID, d.Version-1).
			Select("*").Omit("id", "created_at").
			Updates(d)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The decision has been modified by another transaction")
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}

		return nil
	})
}

// SaveLinks replaces the affected data point links for a decision
func (r *GormDecisionRepository) SaveLinks(ctx context.Context, decisionID uuid.UUID, links []register.DecisionLink) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("decision_id = ?", decisionID).
			Delete(&register.DecisionLink{}).Error; err != nil {
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

// LoadLinks loads the affected data point IDs for a decision
func (r *GormDecisionRepository) LoadLinks(ctx context.Context, decisionID uuid.UUID) ([]uuid.UUID, error) {
	var links []register.DecisionLink
	if err := r.db.WithContext(ctx).
		Where("decision_id = ?", decisionID).
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

// Delete deletes a decision and its links
func (r *GormDecisionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("decision_id = ?", id).
			Delete(&register.DecisionLink{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&register.Decision{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// DeleteForOrg deletes a decision within an organization
func (r *GormDecisionRepository) DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("organization_id = ? AND id = ?", organizationID, id).
			Delete(&register.Decision{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		return tx.Where("decision_id = ?", id).
			Delete(&register.DecisionLink{}).Error
	})
}

// CountForOrg counts decisions for an organization
func (r *GormDecisionRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&register.Decision{}).
		Where("organization_id = ?", organizationID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormDecisionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, DecisionSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("decided_at DESC")
		}
	} else {
		query = query.Order("decided_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormDecisionRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("title ILIKE ? OR method ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "confidence":
			query = query.Where("confidence = ?", value)
		case "approver_user_id":
			query = query.Where("approver_user_id = ?", value)
		case "method":
			query = query.Where("method = ?", value)
		}
	}

	return query
}

// Ensure GormDecisionRepository implements DecisionRepository
var _ register.DecisionRepository = (*GormDecisionRepository)(nil)
