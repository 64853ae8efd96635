package persistence

import (
	"context"
	"errors"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/bulk"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormImportHistoryRepository implements bulk.ImportHistoryRepository using GORM
type GormImportHistoryRepository struct {
	db *gorm.DB
}

// NewGormImportHistoryRepository creates a new GormImportHistoryRepository
func NewGormImportHistoryRepository(db *gorm.DB) *GormImportHistoryRepository {
	return &GormImportHistoryRepository{db: db}
}

// FindByIDForOrg finds an import history by ID within an organization
func (r *GormImportHistoryRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*bulk.ImportHistory, error) {
	var history bulk.ImportHistory
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&history).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &history, nil
}

// FindAllForOrg returns import histories for an organization with pagination and filtering
func (r *GormImportHistoryRepository) FindAllForOrg(
	ctx context.Context,
	organizationID uuid.UUID,
	filter bulk.ImportHistoryFilter,
	page, pageSize int,
) (*bulk.ImportHistoryListResult, error) {
	query := r.db.WithContext(ctx).Model(&bulk.ImportHistory{}).
		Where("organization_id = ?", organizationID)

	query = applyImportHistoryFilters(query, filter)

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, err
	}

	if page > 0 && pageSize > 0 {
		offset := (page - 1) * pageSize
		query = query.Offset(offset).Limit(pageSize)
	}

	// Most recent first
	query = query.Order("started_at DESC NULLS LAST, created_at DESC")

	var histories []*bulk.ImportHistory
	if err := query.Find(&histories).Error; err != nil {
		return nil, err
	}

	return &bulk.ImportHistoryListResult{
		Items:      histories,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// FindByStatusForOrg finds all import histories with a specific status
func (r *GormImportHistoryRepository) FindByStatusForOrg(
	ctx context.Context,
	organizationID uuid.UUID,
	status bulk.ImportStatus,
) ([]*bulk.ImportHistory, error) {
	var histories []*bulk.ImportHistory
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND status = ?", organizationID, status).
		Order("created_at DESC").
		Find(&histories).Error; err != nil {
		return nil, err
	}
	return histories, nil
}

// FindUnfinishedForOrg finds histories left in a non-terminal state, for recovery after restart
func (r *GormImportHistoryRepository) FindUnfinishedForOrg(ctx context.Context, organizationID uuid.UUID) ([]*bulk.ImportHistory, error) {
	var histories []*bulk.ImportHistory
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND status IN ?", organizationID,
			[]bulk.ImportStatus{bulk.ImportStatusPending, bulk.ImportStatusProcessing}).
		Order("created_at ASC").
		Find(&histories).Error; err != nil {
		return nil, err
	}
	return histories, nil
}

// Save saves an import history (create or update)
func (r *GormImportHistoryRepository) Save(ctx context.Context, history *bulk.ImportHistory) error {
	return r.db.WithContext(ctx).Save(history).Error
}

// DeleteForOrg deletes an import history by ID within an organization
func (r *GormImportHistoryRepository) DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&bulk.ImportHistory{}, "organization_id = ? AND id = ?", organizationID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func applyImportHistoryFilters(query *gorm.DB, filter bulk.ImportHistoryFilter) *gorm.DB {
	if filter.EntityType != nil {
		query = query.Where("entity_type = ?", *filter.EntityType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ImportedBy != nil {
		query = query.Where("imported_by = ?", *filter.ImportedBy)
	}
	if filter.StartedFrom != nil {
		query = query.Where("started_at >= ?", *filter.StartedFrom)
	}
	if filter.StartedTo != nil {
		query = query.Where("started_at <= ?", *filter.StartedTo)
	}
	return query
}

var _ bulk.ImportHistoryRepository = (*GormImportHistoryRepository)(nil)
