package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportingPeriodSortFields defines allowed sort fields for reporting periods
var ReportingPeriodSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"label":      true,
	"start_date": true,
	"end_date":   true,
	"status":     true,
	"closed_at":  true,
}

// GormReportingPeriodRepository implements ReportingPeriodRepository using GORM
type GormReportingPeriodRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormReportingPeriodRepository creates a new GormReportingPeriodRepository
func NewGormReportingPeriodRepository(db *gorm.DB) *GormReportingPeriodRepository {
	return &GormReportingPeriodRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormReportingPeriodRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a reporting period by ID
func (r *GormReportingPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*reporting.ReportingPeriod, error) {
	var period reporting.ReportingPeriod
	if err := r.db.WithContext(ctx).First(&period, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &period, nil
}

// FindByIDForOrg finds a reporting period by ID within an organization
func (r *GormReportingPeriodRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*reporting.ReportingPeriod, error) {
	var period reporting.ReportingPeriod
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &period, nil
}

// FindByLabel finds a reporting period by label within an organization
func (r *GormReportingPeriodRepository) FindByLabel(ctx context.Context, organizationID uuid.UUID, label string) (*reporting.ReportingPeriod, error) {
	var period reporting.ReportingPeriod
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND label = ?", organizationID, label).
		First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &period, nil
}

// FindAllForOrg finds all reporting periods for an organization
func (r *GormReportingPeriodRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]reporting.ReportingPeriod, error) {
	var periods []reporting.ReportingPeriod
	query := r.applyFilter(r.db.WithContext(ctx).Model(&reporting.ReportingPeriod{}).Where("organization_id = ?", organizationID), filter)

	if err := query.Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// FindByStatus finds reporting periods by status for an organization
func (r *GormReportingPeriodRepository) FindByStatus(ctx context.Context, organizationID uuid.UUID, status reporting.PeriodStatus, filter shared.Filter) ([]reporting.ReportingPeriod, error) {
	var periods []reporting.ReportingPeriod
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&reporting.ReportingPeriod{}).
			Where("organization_id = ? AND status = ?", organizationID, string(status)),
		filter)

	if err := query.Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// FindOpenForOrg finds the open reporting period for an organization
func (r *GormReportingPeriodRepository) FindOpenForOrg(ctx context.Context, organizationID uuid.UUID) (*reporting.ReportingPeriod, error) {
	var period reporting.ReportingPeriod
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND status = ?", organizationID, string(reporting.PeriodStatusOpen)).
		First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &period, nil
}

// FindLatestForOrg finds the most recently created period for an organization
func (r *GormReportingPeriodRepository) FindLatestForOrg(ctx context.Context, organizationID uuid.UUID) (*reporting.ReportingPeriod, error) {
	var period reporting.ReportingPeriod
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &period, nil
}

// Save saves a reporting period (insert or update)
func (r *GormReportingPeriodRepository) Save(ctx context.Context, period *reporting.ReportingPeriod) error {
	return r.db.WithContext(ctx).Save(period).Error
}

// SaveWithEvents inserts a new period and appends its events to the outbox
// in the same transaction
func (r *GormReportingPeriodRepository) SaveWithEvents(ctx context.Context, period *reporting.ReportingPeriod, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(period).Error; err != nil {
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
func (r *GormReportingPeriodRepository) SaveWithLock(ctx context.Context, period *reporting.ReportingPeriod) error {
	result := r.db.WithContext(ctx).
		Model(period).
		Where("id = ? AND version = ?", period.ID, period.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(period)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The reporting period has been modified by another transaction")
	}
	return nil
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
// This implements the transactional outbox pattern - events are saved to the outbox table
// in the same transaction as the aggregate, ensuring guaranteed event delivery
func (r *GormReportingPeriodRepository) SaveWithLockAndEvents(ctx context.Context, period *reporting.ReportingPeriod, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(period).
			Where("id = ? AND version = ?", period.ID, period.Version-1).
			Select("*").Omit("id", "created_at").
			Updates(period)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The reporting period has been modified by another transaction")
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}

		return nil
	})
}

// Delete deletes a reporting period by ID
func (r *GormReportingPeriodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&reporting.ReportingPeriod{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteForOrg deletes a reporting period within an organization
func (r *GormReportingPeriodRepository) DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		Delete(&reporting.ReportingPeriod{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForOrg counts reporting periods for an organization
func (r *GormReportingPeriodRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&reporting.ReportingPeriod{}).Where("organization_id = ?", organizationID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts reporting periods by status for an organization
func (r *GormReportingPeriodRepository) CountByStatus(ctx context.Context, organizationID uuid.UUID, status reporting.PeriodStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&reporting.ReportingPeriod{}).
		Where("organization_id = ? AND status = ?", organizationID, string(status)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByLabel checks if a period label exists within an organization
func (r *GormReportingPeriodRepository) ExistsByLabel(ctx context.Context, organizationID uuid.UUID, label string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&reporting.ReportingPeriod{}).
		Where("organization_id = ? AND label = ?", organizationID, label).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsOverlapping checks if any non-archived period overlaps the date range,
// excluding the period with excludeID
func (r *GormReportingPeriodRepository) ExistsOverlapping(ctx context.Context, organizationID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&reporting.ReportingPeriod{}).
		Where("organization_id = ? AND status <> ?", organizationID, string(reporting.PeriodStatusArchived)).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}

	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormReportingPeriodRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, ReportingPeriodSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("start_date DESC")
		}
	} else {
		query = query.Order("start_date DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormReportingPeriodRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("label ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "rolled_from":
			query = query.Where("rolled_from = ?", value)
		case "start_after":
			query = query.Where("start_date >= ?", value)
		case "end_before":
			query = query.Where("end_date <= ?", value)
		}
	}

	return query
}

// Ensure GormReportingPeriodRepository implements ReportingPeriodRepository
var _ reporting.ReportingPeriodRepository = (*GormReportingPeriodRepository)(nil)
