package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/evidence"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EvidenceSortFields defines allowed sort fields for evidence files
var EvidenceSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"file_name":    true,
	"size_bytes":   true,
	"status":       true,
	"finalized_at": true,
}

// GormEvidenceRepository implements EvidenceRepository using GORM
type GormEvidenceRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormEvidenceRepository creates a new GormEvidenceRepository
func NewGormEvidenceRepository(db *gorm.DB) *GormEvidenceRepository {
	return &GormEvidenceRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormEvidenceRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds evidence by ID
func (r *GormEvidenceRepository) FindByID(ctx context.Context, id uuid.UUID) (*evidence.Evidence, error) {
	var ev evidence.Evidence
	if err := r.db.WithContext(ctx).First(&ev, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ev, nil
}

// FindByIDForOrg finds evidence by ID within an organization
func (r *GormEvidenceRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*evidence.Evidence, error) {
	var ev evidence.Evidence
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&ev).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ev, nil
}

// FindByDataPoint finds evidence attached to a data point
func (r *GormEvidenceRepository) FindByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID, includeDeleted bool) ([]evidence.Evidence, error) {
	var rows []evidence.Evidence
	query := r.db.WithContext(ctx).
		Where("organization_id = ? AND data_point_id = ?", organizationID, dataPointID)
	if !includeDeleted {
		query = query.Where("status <> ?", string(evidence.EvidenceStatusDeleted))
	}

	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByPeriod finds evidence within a period with filtering
func (r *GormEvidenceRepository) FindByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, filter shared.Filter) ([]evidence.Evidence, error) {
	var rows []evidence.Evidence
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&evidence.Evidence{}).
			Where("organization_id = ? AND period_id = ?", organizationID, periodID),
		filter)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindPendingOlderThan finds pending_upload rows registered before the cutoff
func (r *GormEvidenceRepository) FindPendingOlderThan(ctx context.Context, cutoffSeconds int64, limit int) ([]evidence.Evidence, error) {
	var rows []evidence.Evidence
	cutoff := time.Now().Add(-time.Duration(cutoffSeconds) * time.Second)
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", string(evidence.EvidenceStatusPendingUpload), cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindBySHA256 finds evidence rows carrying the given content hash
func (r *GormEvidenceRepository) FindBySHA256(ctx context.Context, organizationID uuid.UUID, sha256 string) ([]evidence.Evidence, error) {
	var rows []evidence.Evidence
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND sha256 = ? AND status <> ?",
			organizationID, sha256, string(evidence.EvidenceStatusDeleted)).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Save saves evidence (insert or update)
func (r *GormEvidenceRepository) Save(ctx context.Context, ev *evidence.Evidence) error {
	return r.db.WithContext(ctx).Save(ev).Error
}

// SaveWithEvents inserts a new evidence row and appends its events to the
// outbox in the same transaction
func (r *GormEvidenceRepository) SaveWithEvents(ctx context.Context, ev *evidence.Evidence, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(ev).Error; err != nil {
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
func (r *GormEvidenceRepository) SaveWithLock(ctx context.Context, ev *evidence.Evidence) error {
	result := r.db.WithContext(ctx).
		Model(ev).
		Where("id = ? AND version = ?", ev.ID, ev.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(ev)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The evidence record has been modified by another transaction")
	}
	return nil
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
func (r *GormEvidenceRepository) SaveWithLockAndEvents(ctx context.Context, ev *evidence.Evidence, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(ev).
			Where("id = ? AND version = ?", ev.ID, ev.Version-1).
			Select("*").Omit("id", "created_at").
			Updates(ev)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The evidence record has been modified by another transaction")
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}

		return nil
	})
}

// CountByDataPoint counts non-deleted evidence rows for a data point
func (r *GormEvidenceRepository) CountByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&evidence.Evidence{}).
		Where("organization_id = ? AND data_point_id = ? AND status <> ?",
			organizationID, dataPointID, string(evidence.EvidenceStatusDeleted)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByPeriod counts non-deleted evidence rows within a period
func (r *GormEvidenceRepository) CountByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&evidence.Evidence{}).
		Where("organization_id = ? AND period_id = ? AND status <> ?",
			organizationID, periodID, string(evidence.EvidenceStatusDeleted)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormEvidenceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, EvidenceSortFields, "")
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
func (r *GormEvidenceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("file_name ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "data_point_id":
			query = query.Where("data_point_id = ?", value)
		case "content_type":
			query = query.Where("content_type = ?", value)
		case "uploaded_by":
			query = query.Where("uploaded_by = ?", value)
		}
	}

	return query
}

// Ensure GormEvidenceRepository implements EvidenceRepository
var _ evidence.EvidenceRepository = (*GormEvidenceRepository)(nil)
