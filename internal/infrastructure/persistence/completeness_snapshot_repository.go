package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCompletenessSnapshotRepository implements CompletenessSnapshotRepository using GORM
type GormCompletenessSnapshotRepository struct {
	db *gorm.DB
}

// NewGormCompletenessSnapshotRepository creates a new GormCompletenessSnapshotRepository
func NewGormCompletenessSnapshotRepository(db *gorm.DB) *GormCompletenessSnapshotRepository {
	return &GormCompletenessSnapshotRepository{db: db}
}

// Save inserts a snapshot
func (r *GormCompletenessSnapshotRepository) Save(ctx context.Context, snapshot *reporting.CompletenessSnapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

// ExistsForDate checks if a snapshot already exists for the period and day
func (r *GormCompletenessSnapshotRepository) ExistsForDate(ctx context.Context, periodID uuid.UUID, day time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&reporting.CompletenessSnapshot{}).
		Where("period_id = ? AND snapshot_date = ?", periodID, day.UTC().Truncate(24*time.Hour)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByPeriod finds snapshots for a period within the date range, oldest first
func (r *GormCompletenessSnapshotRepository) FindByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, from, to time.Time) ([]reporting.CompletenessSnapshot, error) {
	var snapshots []reporting.CompletenessSnapshot
	query := r.db.WithContext(ctx).
		Where("organization_id = ? AND period_id = ?", organizationID, periodID)
	if !from.IsZero() {
		query = query.Where("snapshot_date >= ?", from.UTC().Truncate(24*time.Hour))
	}
	if !to.IsZero() {
		query = query.Where("snapshot_date <= ?", to.UTC().Truncate(24*time.Hour))
	}

	if err := query.Order("snapshot_date ASC").Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

// FindLatestByPeriod finds the most recent snapshot for a period
func (r *GormCompletenessSnapshotRepository) FindLatestByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (*reporting.CompletenessSnapshot, error) {
	var snapshot reporting.CompletenessSnapshot
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND period_id = ?", organizationID, periodID).
		Order("snapshot_date DESC").
		First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &snapshot, nil
}

// Ensure GormCompletenessSnapshotRepository implements CompletenessSnapshotRepository
var _ reporting.CompletenessSnapshotRepository = (*GormCompletenessSnapshotRepository)(nil)
