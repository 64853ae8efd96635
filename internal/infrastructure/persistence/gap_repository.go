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

// GapSortFields defines allowed sort fields for disclosure gaps
var GapSortFields = map[string]bool{
	"created_at":  true,
	"updated_at":  true,
	"title":       true,
	"severity":    true,
	"status":      true,
	"resolved_at": true,
}

// gapOpenStatuses are the non-terminal gap statuses
var gapOpenStatuses = []string{
	string(register.GapStatusOpen),
	string(register.GapStatusAcknowledged),
	string(register.GapStatusInRemediation),
}

// GormGapRepository implements GapRepository using GORM
type GormGapRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormGapRepository creates a new GormGapRepository
func NewGormGapRepository(db *gorm.DB) *GormGapRepository {
	return &GormGapRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormGapRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a gap by ID
func (r *GormGapRepository) FindByID(ctx context.Context, id uuid.UUID) (*register.Gap, error) {
	var g register.Gap
	if err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// FindByIDForOrg finds a gap by ID within an organization
func (r *GormGapRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*register.Gap, error) {
	var g register.Gap
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// FindAllForOrg finds all gaps for an organization
func (r *GormGapRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]register.Gap, error) {
	var gaps []register.Gap
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&register.Gap{}).
			Where("organization_id = ?", organizationID),
		filter)

	if err := query.Find(&gaps).Error; err != nil {
		return nil, err
	}
	return gaps, nil
}

// FindByPeriod finds gaps within a period with filtering
func (r *GormGapRepository) FindByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, filter shared.Filter) ([]register.Gap, error) {
	var gaps []register.Gap
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&register.Gap{}).
			Where("organization_id = ? AND period_id = ?", organizationID, periodID),
		filter)

	if err := query.Find(&gaps).Error; err != nil {
		return nil, err
	}
	return gaps, nil
}

// FindBySection finds gaps bound to a section
func (r *GormGapRepository) FindBySection(ctx context.Context, organizationID, sectionID uuid.UUID) ([]register.Gap, error) {
	var gaps []register.Gap
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND section_id = ?", organizationID, sectionID).
		Order("created_at DESC").
		Find(&gaps).Error; err != nil {
		return nil, err
	}
	return gaps, nil
}

// FindByDataPoint finds gaps bound to a data point
func (r *GormGapRepository) FindByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) ([]register.Gap, error) {
	var gaps []register.Gap
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND data_point_id = ?", organizationID, dataPointID).
		Order("created_at DESC").
		Find(&gaps).Error; err != nil {
		return nil, err
	}
	return gaps, nil
}

// FindOpenByDataPoint finds non-terminal gaps bound to a data point
func (r *GormGapRepository) FindOpenByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) ([]register.Gap, error) {
	var gaps []register.Gap
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND data_point_id = ? AND status IN ?", organizationID, dataPointID, gapOpenStatuses).
		Order("created_at DESC").
		Find(&gaps).Error; err != nil {
		return nil, err
	}
	return gaps, nil
}

// FindOpenByPeriod finds non-terminal gaps within a period
func (r *GormGapRepository) FindOpenByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) ([]register.Gap, error) {
	var gaps []register.Gap
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND period_id = ? AND status IN ?", organizationID, periodID, gapOpenStatuses).
		Order("severity DESC, created_at ASC").
		Find(&gaps).Error; err != nil {
		return nil, err
	}
	return gaps, nil
}

// FindByStatus finds gaps by status within a period
func (r *GormGapRepository) FindByStatus(ctx context.Context, organizationID, periodID uuid.UUID, status register.GapStatus, filter shared.Filter) ([]register.Gap, error) {
	var gaps []register.Gap
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&register.Gap{}).
			Where("organization_id = ? AND period_id = ? AND status = ?", organizationID, periodID, string(status)),
		filter)

	if err := query.Find(&gaps).Error; err != nil {
		return nil, err
	}
	return gaps, nil
}

// FindBySeverity finds gaps by severity within a period
func (r *GormGapRepository) FindBySeverity(ctx context.Context, organizationID, periodID uuid.UUID, severity register.GapSeverity, filter shared.Filter) ([]register.Gap, error) {
	var gaps []register.Gap
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&register.Gap{}).
			Where("organization_id = ? AND period_id = ? AND severity = ?", organizationID, periodID, string(severity)),
		filter)

	if err := query.Find(&gaps).Error; err != nil {
		return nil, err
	}
	return gaps, nil
}

// FindByIDs finds gaps by a set of IDs for an organization
func (r *GormGapRepository) FindByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]register.Gap, error) {
	if len(ids) == 0 {
		return []register.Gap{}, nil
	}
	var gaps []register.Gap
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id IN ?", organizationID, ids).
		Find(&gaps).Error; err != nil {
		return nil, err
	}
	return gaps, nil
}

// Save saves a gap (insert or update)
func (r *GormGapRepository) Save(ctx context.Context, g *register.Gap) error {
	return r.db.WithContext(ctx).Save(g).Error
}

// SaveWithEvents inserts a new gap and appends its events to the outbox
// in the same transaction
func (r *GormGapRepository) SaveWithEvents(ctx context.Context, g *register.Gap, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(g).Error; err != nil {
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
func (r *GormGapRepository) SaveWithLock(ctx context.Context, g *register.Gap) error {
	result := r.db.WithContext(ctx).
		Model(g).
		Where("id = ? AND version = ?", g.ID, g.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(g)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The gap has been modified by another transaction")
	}
	return nil
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
func (r *GormGapRepository) SaveWithLockAndEvents(ctx context.Context, g *register.Gap, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(g).
			Where("id = ? AND version = ?", g.ID, g.Version-1).
			Select("*").Omit("id", "created_at").
			Updates(g)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The gap has been modified by another transaction")
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}

		return nil
	})
}

// Delete deletes a gap by ID
func (r *GormGapRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&register.Gap{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteForOrg deletes a gap within an organization
func (r *GormGapRepository) DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		Delete(&register.Gap{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForOrg counts gaps for an organization
func (r *GormGapRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&register.Gap{}).
		Where("organization_id = ?", organizationID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountOpenByDataPoint counts non-terminal gaps bound to a data point
func (r *GormGapRepository) CountOpenByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&register.Gap{}).
		Where("organization_id = ? AND data_point_id = ? AND status IN ?", organizationID, dataPointID, gapOpenStatuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountOpenByPeriod counts non-terminal gaps within a period
func (r *GormGapRepository) CountOpenByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&register.Gap{}).
		Where("organization_id = ? AND period_id = ? AND status IN ?", organizationID, periodID, gapOpenStatuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormGapRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, GapSortFields, "")
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
func (r *GormGapRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("title ILIKE ? OR description ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "severity":
			query = query.Where("severity = ?", value)
		case "period_id":
			query = query.Where("period_id = ?", value)
		case "section_id":
			query = query.Where("section_id = ?", value)
		case "data_point_id":
			query = query.Where("data_point_id = ?", value)
		case "raised_by":
			query = query.Where("raised_by = ?", value)
		}
	}

	return query
}

// Ensure GormGapRepository implements GapRepository
var _ register.GapRepository = (*GormGapRepository)(nil)
