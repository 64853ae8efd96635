package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/export"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExportJobSortFields defines allowed sort fields for export jobs
var ExportJobSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"doc_type":     true,
	"format":       true,
	"status":       true,
	"completed_at": true,
}

// GormExportJobRepository implements ExportJobRepository using GORM
type GormExportJobRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormExportJobRepository creates a new GormExportJobRepository
func NewGormExportJobRepository(db *gorm.DB) *GormExportJobRepository {
	return &GormExportJobRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event persistence
func (r *GormExportJobRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds an export job by ID
func (r *GormExportJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*export.ExportJob, error) {
	var job export.ExportJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// FindByIDForOrg finds an export job by ID for a specific organization
func (r *GormExportJobRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*export.ExportJob, error) {
	var job export.ExportJob
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// FindAllForOrg finds all export jobs for an organization with filtering
func (r *GormExportJobRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]export.ExportJob, error) {
	var jobs []export.ExportJob
	query := r.db.WithContext(ctx).Where("organization_id = ?", organizationID)
	query = r.applyFilter(query, filter)
	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// FindByPeriod finds export jobs for a reporting period
func (r *GormExportJobRepository) FindByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, filter shared.Filter) ([]export.ExportJob, error) {
	var jobs []export.ExportJob
	query := r.db.WithContext(ctx).
		Where("organization_id = ? AND period_id = ?", organizationID, periodID)
	query = r.applyFilter(query, filter)
	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// Save creates or updates an export job
func (r *GormExportJobRepository) Save(ctx context.Context, j *export.ExportJob) error {
	return r.db.WithContext(ctx).Save(j).Error
}

// SaveWithEvents inserts a new job and appends its events to the outbox in the same transaction
func (r *GormExportJobRepository) SaveWithEvents(ctx context.Context, j *export.ExportJob, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(j).Error; err != nil {
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

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
func (r *GormExportJobRepository) SaveWithLockAndEvents(ctx context.Context, j *export.ExportJob, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(j).
			Where("id = ? AND version = ?", j.ID, j.Version-1).
			Select("*").
			Omit("id", "created_at").
			Updates(j)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The export job has been modified by another transaction")
		}
		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}
		return nil
	})
}

// DeleteForOrg deletes an export job for an organization
func (r *GormExportJobRepository) DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		Delete(&export.ExportJob{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForOrg counts export jobs for an organization
func (r *GormExportJobRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&export.ExportJob{}).
		Where("organization_id = ?", organizationID)
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies pagination and ordering on top of the condition filters
func (r *GormExportJobRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, ExportJobSortFields, "")
		if sortField != "" {
			query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
		} else {
			query = query.Order("created_at DESC")
		}
	} else {
		query = query.Order("created_at DESC")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	return query
}

// applyFilterWithoutPagination applies the condition filters only
func (r *GormExportJobRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "doc_type":
			query = query.Where("doc_type = ?", value)
		case "format":
			query = query.Where("format = ?", value)
		case "period_id":
			query = query.Where("period_id = ?", value)
		case "requested_by":
			query = query.Where("requested_by = ?", value)
		}
	}
	return query
}

// Ensure GormExportJobRepository implements ExportJobRepository
var _ export.ExportJobRepository = (*GormExportJobRepository)(nil)
