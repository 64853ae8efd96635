package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/rollover"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RolloverRunSortFields defines allowed sort fields for rollover runs
var RolloverRunSortFields = map[string]bool{
	"created_at":  true,
	"updated_at":  true,
	"status":      true,
	"started_at":  true,
	"finished_at": true,
}

// rolloverActiveStatuses are the statuses of a run still in flight
var rolloverActiveStatuses = []string{
	string(rollover.RolloverStatusPending),
	string(rollover.RolloverStatusRunning),
}

// GormRolloverRunRepository implements RolloverRunRepository using GORM
type GormRolloverRunRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormRolloverRunRepository creates a new GormRolloverRunRepository
func NewGormRolloverRunRepository(db *gorm.DB) *GormRolloverRunRepository {
	return &GormRolloverRunRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormRolloverRunRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a run by ID
func (r *GormRolloverRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*rollover.RolloverRun, error) {
	var run rollover.RolloverRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindByIDForOrg finds a run by ID within an organization
func (r *GormRolloverRunRepository) FindByIDForOrg(ctx context.Context, id, organizationID uuid.UUID) (*rollover.RolloverRun, error) {
	var run rollover.RolloverRun
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindByIdempotencyKey finds the run created with the given key, if any
func (r *GormRolloverRunRepository) FindByIdempotencyKey(ctx context.Context, organizationID uuid.UUID, key string) (*rollover.RolloverRun, error) {
	var run rollover.RolloverRun
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND idempotency_key = ?", organizationID, key).
		First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindAllForOrg finds all runs for an organization with filtering
func (r *GormRolloverRunRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (*shared.Paginated[rollover.RolloverRun], error) {
	base := r.db.WithContext(ctx).Model(&rollover.RolloverRun{}).
		Where("organization_id = ?", organizationID)

	counted := r.applyFilterWithoutPagination(base.Session(&gorm.Session{}), filter)
	var total int64
	if err := counted.Count(&total).Error; err != nil {
		return nil, err
	}

	var runs []rollover.RolloverRun
	query := r.applyFilter(base.Session(&gorm.Session{}), filter)
	if err := query.Find(&runs).Error; err != nil {
		return nil, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = len(runs)
		if pageSize == 0 {
			pageSize = 1
		}
	}

	result := shared.NewPaginated(runs, total, page, pageSize)
	return &result, nil
}

// FindByTargetPeriod finds runs that copied into the given period
func (r *GormRolloverRunRepository) FindByTargetPeriod(ctx context.Context, organizationID, targetPeriodID uuid.UUID) ([]rollover.RolloverRun, error) {
	var runs []rollover.RolloverRun
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND target_period_id = ?", organizationID, targetPeriodID).
		Order("created_at DESC").
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// FindBySourcePeriod finds runs that copied out of the given period
func (r *GormRolloverRunRepository) FindBySourcePeriod(ctx context.Context, organizationID, sourcePeriodID uuid.UUID) ([]rollover.RolloverRun, error) {
	var runs []rollover.RolloverRun
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND source_period_id = ?", organizationID, sourcePeriodID).
		Order("created_at DESC").
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// ExistsActiveForTarget checks if a pending or running run already targets the given period
func (r *GormRolloverRunRepository) ExistsActiveForTarget(ctx context.Context, organizationID, targetPeriodID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&rollover.RolloverRun{}).
		Where("organization_id = ? AND target_period_id = ? AND status IN ?",
			organizationID, targetPeriodID, rolloverActiveStatuses).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save saves a run (insert or update)
func (r *GormRolloverRunRepository) Save(ctx context.Context, run *rollover.RolloverRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// SaveWithEvents inserts a new run and appends its events to the outbox
// in the same transaction
func (r *GormRolloverRunRepository) SaveWithEvents(ctx context.Context, run *rollover.RolloverRun, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(run).Error; err != nil {
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

// SaveWithLock saves a run using optimistic locking on the version field
func (r *GormRolloverRunRepository) SaveWithLock(ctx context.Context, run *rollover.RolloverRun) error {
	result := r.db.WithContext(ctx).
		Model(run).
		Where("id = ? AND version = ?", run.ID, run.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(run)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The rollover run has been modified by another transaction")
	}
	return nil
}

// SaveWithLockAndEvents saves a run and appends its events to the outbox
// in the same transaction
func (r *GormRolloverRunRepository) SaveWithLockAndEvents(ctx context.Context, run *rollover.RolloverRun, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(run).
			Where("id = ? AND version = ?", run.ID, run.Version-1).
			Select("*").Omit("id", "created_at").
			Updates(run)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The rollover run has been modified by another transaction")
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}

		return nil
	})
}

// SaveItems appends outcome rows in batch
func (r *GormRolloverRunRepository) SaveItems(ctx context.Context, items []rollover.RolloverItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&items, 200).Error
}

// FindItems finds outcome rows for a run with filtering
func (r *GormRolloverRunRepository) FindItems(ctx context.Context, runID uuid.UUID, filter shared.Filter) (*shared.Paginated[rollover.RolloverItem], error) {
	base := r.db.WithContext(ctx).Model(&rollover.RolloverItem{}).
		Where("run_id = ?", runID)
	for key, value := range filter.Filters {
		switch key {
		case "category":
			base = base.Where("category = ?", value)
		case "outcome":
			base = base.Where("outcome = ?", value)
		}
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	query := base.Session(&gorm.Session{}).Order("created_at ASC, code ASC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var items []rollover.RolloverItem
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = len(items)
		if pageSize == 0 {
			pageSize = 1
		}
	}

	result := shared.NewPaginated(items, total, page, pageSize)
	return &result, nil
}

// CountItemsByOutcome counts a run's outcome rows grouped by outcome
func (r *GormRolloverRunRepository) CountItemsByOutcome(ctx context.Context, runID uuid.UUID) (map[rollover.RolloverOutcome]int64, error) {
	var rows []struct {
		Outcome string
		Count   int64
	}
	if err := r.db.WithContext(ctx).
		Model(&rollover.RolloverItem{}).
		Select("outcome, COUNT(*) AS count").
		Where("run_id = ?", runID).
		Group("outcome").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[rollover.RolloverOutcome]int64, len(rows))
	for _, row := range rows {
		counts[rollover.RolloverOutcome(row.Outcome)] = row.Count
	}
	return counts, nil
}

// CountItemsByCategory counts a run's outcome rows grouped by category
func (r *GormRolloverRunRepository) CountItemsByCategory(ctx context.Context, runID uuid.UUID) (map[rollover.RolloverCategory]int64, error) {
	var rows []struct {
		Category string
		Count    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&rollover.RolloverItem{}).
		Select("category, COUNT(*) AS count").
		Where("run_id = ?", runID).
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[rollover.RolloverCategory]int64, len(rows))
	for _, row := range rows {
		counts[rollover.RolloverCategory(row.Category)] = row.Count
	}
	return counts, nil
}

// applyFilter applies filter options to the query
func (r *GormRolloverRunRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, RolloverRunSortFields, "")
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
func (r *GormRolloverRunRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "source_period_id":
			query = query.Where("source_period_id = ?", value)
		case "target_period_id":
			query = query.Where("target_period_id = ?", value)
		case "triggered_by":
			query = query.Where("triggered_by = ?", value)
		}
	}

	return query
}

// Ensure GormRolloverRunRepository implements RolloverRunRepository
var _ rollover.RolloverRunRepository = (*GormRolloverRunRepository)(nil)
