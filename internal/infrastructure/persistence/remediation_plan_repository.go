package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/remediation"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RemediationPlanSortFields defines allowed sort fields for remediation plans
var RemediationPlanSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"title":        true,
	"status":       true,
	"due_date":     true,
	"completed_at": true,
}

// planActiveStatuses are the non-terminal plan statuses
var planActiveStatuses = []string{
	string(remediation.PlanStatusDraft),
	string(remediation.PlanStatusActive),
}

// GormRemediationPlanRepository implements RemediationPlanRepository using GORM.
// Plans are loaded and saved together with their action items; gap links live
// in a separate join table kept in sync through SaveGapLinks.
type GormRemediationPlanRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormRemediationPlanRepository creates a new GormRemediationPlanRepository
func NewGormRemediationPlanRepository(db *gorm.DB) *GormRemediationPlanRepository {
	return &GormRemediationPlanRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormRemediationPlanRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a plan by ID, including its items
func (r *GormRemediationPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*remediation.RemediationPlan, error) {
	var plan remediation.RemediationPlan
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&plan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// FindByIDForOrg finds a plan by ID within an organization
func (r *GormRemediationPlanRepository) FindByIDForOrg(ctx context.Context, id, organizationID uuid.UUID) (*remediation.RemediationPlan, error) {
	var plan remediation.RemediationPlan
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// FindAllForOrg finds all plans for an organization with filtering
func (r *GormRemediationPlanRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (*shared.Paginated[remediation.RemediationPlan], error) {
	base := r.db.WithContext(ctx).Model(&remediation.RemediationPlan{}).
		Where("organization_id = ?", organizationID)
	return r.findPaginated(base, filter)
}

// FindByStatus finds plans with the given status for an organization
func (r *GormRemediationPlanRepository) FindByStatus(ctx context.Context, organizationID uuid.UUID, status remediation.PlanStatus, filter shared.Filter) (*shared.Paginated[remediation.RemediationPlan], error) {
	base := r.db.WithContext(ctx).Model(&remediation.RemediationPlan{}).
		Where("organization_id = ? AND status = ?", organizationID, string(status))
	return r.findPaginated(base, filter)
}

// FindByOwner finds plans owned by the given user
func (r *GormRemediationPlanRepository) FindByOwner(ctx context.Context, organizationID, ownerUserID uuid.UUID) ([]remediation.RemediationPlan, error) {
	var plans []remediation.RemediationPlan
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("organization_id = ? AND owner_user_id = ?", organizationID, ownerUserID).
		Order("created_at DESC").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// FindByGap finds plans that address the given gap
func (r *GormRemediationPlanRepository) FindByGap(ctx context.Context, organizationID, gapID uuid.UUID) ([]remediation.RemediationPlan, error) {
	var plans []remediation.RemediationPlan
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Joins("JOIN remediation_plan_gaps ON remediation_plan_gaps.plan_id = remediation_plans.id").
		Where("remediation_plans.organization_id = ? AND remediation_plan_gaps.gap_id = ?", organizationID, gapID).
		Order("remediation_plans.created_at DESC").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// FindActiveForOrg finds all active plans for an organization
func (r *GormRemediationPlanRepository) FindActiveForOrg(ctx context.Context, organizationID uuid.UUID) ([]remediation.RemediationPlan, error) {
	var plans []remediation.RemediationPlan
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("organization_id = ? AND status = ?", organizationID, string(remediation.PlanStatusActive)).
		Order("due_date ASC NULLS LAST").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// FindOverdue finds active plans past their due date that have not been
// flagged yet for an organization
func (r *GormRemediationPlanRepository) FindOverdue(ctx context.Context, organizationID uuid.UUID, asOf time.Time, limit int) ([]remediation.RemediationPlan, error) {
	var plans []remediation.RemediationPlan
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("organization_id = ? AND status = ? AND due_date IS NOT NULL AND due_date < ? AND overdue_flagged_at IS NULL",
			organizationID, string(remediation.PlanStatusActive), asOf).
		Order("due_date ASC").
		Limit(limit).
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// Save saves a plan and its items
func (r *GormRemediationPlanRepository) Save(ctx context.Context, plan *remediation.RemediationPlan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.savePlan(tx, plan)
	})
}

// SaveWithEvents inserts a new plan and appends its events to the outbox
// in the same transaction
func (r *GormRemediationPlanRepository) SaveWithEvents(ctx context.Context, plan *remediation.RemediationPlan, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.savePlan(tx, plan); err != nil {
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

// SaveWithLock saves a plan using optimistic locking on the version field
func (r *GormRemediationPlanRepository) SaveWithLock(ctx context.Context, plan *remediation.RemediationPlan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.savePlanWithLock(tx, plan)
	})
}

// SaveWithLockAndEvents saves a plan and appends its events to the outbox
// in the same transaction
func (r *GormRemediationPlanRepository) SaveWithLockAndEvents(ctx context.Context, plan *remediation.RemediationPlan, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.savePlanWithLock(tx, plan); err != nil {
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

// SaveGapLinks replaces the gap links for a plan
func (r *GormRemediationPlanRepository) SaveGapLinks(ctx context.Context, planID uuid.UUID, links []remediation.PlanGap) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", planID).
			Delete(&remediation.PlanGap{}).Error; err != nil {
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

// LoadGapLinks loads the attached gap IDs for a plan
func (r *GormRemediationPlanRepository) LoadGapLinks(ctx context.Context, planID uuid.UUID) ([]uuid.UUID, error) {
	var links []remediation.PlanGap
	if err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("created_at ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(links))
	for i, link := range links {
		ids[i] = link.GapID
	}
	return ids, nil
}

// Delete deletes a plan, its items, and its gap links
func (r *GormRemediationPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", id).
			Delete(&remediation.ActionItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("plan_id = ?", id).
			Delete(&remediation.PlanGap{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&remediation.RemediationPlan{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// DeleteForOrg deletes a plan within an organization
func (r *GormRemediationPlanRepository) DeleteForOrg(ctx context.Context, id, organizationID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("organization_id = ? AND id = ?", organizationID, id).
			Delete(&remediation.RemediationPlan{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		if err := tx.Where("plan_id = ?", id).
			Delete(&remediation.ActionItem{}).Error; err != nil {
			return err
		}
		return tx.Where("plan_id = ?", id).
			Delete(&remediation.PlanGap{}).Error
	})
}

// CountForOrg counts all plans for an organization
func (r *GormRemediationPlanRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&remediation.RemediationPlan{}).
		Where("organization_id = ?", organizationID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts plans with the given status for an organization
func (r *GormRemediationPlanRepository) CountByStatus(ctx context.Context, organizationID uuid.UUID, status remediation.PlanStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&remediation.RemediationPlan{}).
		Where("organization_id = ? AND status = ?", organizationID, string(status)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountActiveByGap counts non-terminal plans that address the given gap
func (r *GormRemediationPlanRepository) CountActiveByGap(ctx context.Context, organizationID, gapID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&remediation.RemediationPlan{}).
		Joins("JOIN remediation_plan_gaps ON remediation_plan_gaps.plan_id = remediation_plans.id").
		Where("remediation_plans.organization_id = ? AND remediation_plan_gaps.gap_id = ? AND remediation_plans.status IN ?",
			organizationID, gapID, planActiveStatuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// savePlan upserts the plan row and replaces its items
func (r *GormRemediationPlanRepository) savePlan(tx *gorm.DB, plan *remediation.RemediationPlan) error {
	if err := tx.Omit("Items").Save(plan).Error; err != nil {
		return err
	}
	return r.replaceItems(tx, plan)
}

// savePlanWithLock updates the plan row with a version check and replaces its items
func (r *GormRemediationPlanRepository) savePlanWithLock(tx *gorm.DB, plan *remediation.RemediationPlan) error {
	result := tx.Model(plan).
		Where("id = ? AND version = ?", plan.ID, plan.Version-1).
		Select("*").Omit("id", "created_at", "Items").
		Updates(plan)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The remediation plan has been modified by another transaction")
	}
	return r.replaceItems(tx, plan)
}

// replaceItems replaces the plan's action items with the in-memory set
func (r *GormRemediationPlanRepository) replaceItems(tx *gorm.DB, plan *remediation.RemediationPlan) error {
	if err := tx.Where("plan_id = ?", plan.ID).
		Delete(&remediation.ActionItem{}).Error; err != nil {
		return err
	}
	if len(plan.Items) > 0 {
		if err := tx.Create(&plan.Items).Error; err != nil {
			return err
		}
	}
	return nil
}

// findPaginated runs a filtered count plus page query and loads items for the page
func (r *GormRemediationPlanRepository) findPaginated(base *gorm.DB, filter shared.Filter) (*shared.Paginated[remediation.RemediationPlan], error) {
	counted := r.applyFilterWithoutPagination(base.Session(&gorm.Session{}), filter)

	var total int64
	if err := counted.Count(&total).Error; err != nil {
		return nil, err
	}

	var plans []remediation.RemediationPlan
	query := r.applyFilter(base.Session(&gorm.Session{}), filter).Preload("Items")
	if err := query.Find(&plans).Error; err != nil {
		return nil, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = len(plans)
		if pageSize == 0 {
			pageSize = 1
		}
	}

	result := shared.NewPaginated(plans, total, page, pageSize)
	return &result, nil
}

// applyFilter applies filter options to the query
func (r *GormRemediationPlanRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, RemediationPlanSortFields, "")
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
func (r *GormRemediationPlanRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "owner_user_id":
			query = query.Where("owner_user_id = ?", value)
		case "due_before":
			query = query.Where("due_date <= ?", value)
		case "overdue":
			query = query.Where("status = ? AND due_date < NOW()", string(remediation.PlanStatusActive))
		}
	}

	return query
}

// Ensure GormRemediationPlanRepository implements RemediationPlanRepository
var _ remediation.RemediationPlanRepository = (*GormRemediationPlanRepository)(nil)
