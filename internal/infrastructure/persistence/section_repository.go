package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReportSectionRepository implements ReportSectionRepository using GORM
type GormReportSectionRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormReportSectionRepository creates a new GormReportSectionRepository
func NewGormReportSectionRepository(db *gorm.DB) *GormReportSectionRepository {
	return &GormReportSectionRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormReportSectionRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a report section by ID
func (r *GormReportSectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*reporting.ReportSection, error) {
	var section reporting.ReportSection
	if err := r.db.WithContext(ctx).First(&section, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &section, nil
}

// FindByIDForOrg finds a report section by ID within an organization
func (r *GormReportSectionRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*reporting.ReportSection, error) {
	var section reporting.ReportSection
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&section).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &section, nil
}

// FindByCode finds a section by code within a period
func (r *GormReportSectionRepository) FindByCode(ctx context.Context, organizationID, periodID uuid.UUID, code string) (*reporting.ReportSection, error) {
	var section reporting.ReportSection
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND period_id = ? AND code = ?", organizationID, periodID, code).
		First(&section).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &section, nil
}

// FindByPeriod finds all sections of a period ordered by depth and sort order
func (r *GormReportSectionRepository) FindByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) ([]reporting.ReportSection, error) {
	var sections []reporting.ReportSection
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND period_id = ?", organizationID, periodID).
		Order("depth ASC, sort_order ASC, code ASC").
		Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// FindActiveByPeriod finds active sections of a period
func (r *GormReportSectionRepository) FindActiveByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) ([]reporting.ReportSection, error) {
	var sections []reporting.ReportSection
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND period_id = ? AND is_active = ?", organizationID, periodID, true).
		Order("depth ASC, sort_order ASC, code ASC").
		Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// FindRoots finds top-level sections of a period
func (r *GormReportSectionRepository) FindRoots(ctx context.Context, organizationID, periodID uuid.UUID) ([]reporting.ReportSection, error) {
	var sections []reporting.ReportSection
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND period_id = ? AND parent_id IS NULL", organizationID, periodID).
		Order("sort_order ASC, code ASC").
		Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// FindChildren finds the direct children of a section
func (r *GormReportSectionRepository) FindChildren(ctx context.Context, organizationID, parentID uuid.UUID) ([]reporting.ReportSection, error) {
	var sections []reporting.ReportSection
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND parent_id = ?", organizationID, parentID).
		Order("sort_order ASC, code ASC").
		Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// FindByOwner finds sections owned by a user within a period
func (r *GormReportSectionRepository) FindByOwner(ctx context.Context, organizationID, periodID, ownerUserID uuid.UUID) ([]reporting.ReportSection, error) {
	var sections []reporting.ReportSection
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND period_id = ? AND owner_user_id = ?", organizationID, periodID, ownerUserID).
		Order("depth ASC, sort_order ASC").
		Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// FindByStatus finds sections by status within a period
func (r *GormReportSectionRepository) FindByStatus(ctx context.Context, organizationID, periodID uuid.UUID, status reporting.SectionStatus) ([]reporting.ReportSection, error) {
	var sections []reporting.ReportSection
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND period_id = ? AND status = ?", organizationID, periodID, string(status)).
		Order("depth ASC, sort_order ASC").
		Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// Save saves a report section (insert or update)
func (r *GormReportSectionRepository) Save(ctx context.Context, section *reporting.ReportSection) error {
	return r.db.WithContext(ctx).Save(section).Error
}

// SaveWithEvents inserts a new section and appends its events to the outbox
// in the same transaction
func (r *GormReportSectionRepository) SaveWithEvents(ctx context.Context, section *reporting.ReportSection, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(section).Error; err != nil {
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
func (r *GormReportSectionRepository) SaveWithLock(ctx context.Context, section *reporting.ReportSection) error {
	result := r.db.WithContext(ctx).
		Model(section).
		Where("id = ? AND version = ?", section.ID, section.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(section)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The report section has been modified by another transaction")
	}
	return nil
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
func (r *GormReportSectionRepository) SaveWithLockAndEvents(ctx context.Context, section *reporting.ReportSection, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(section).
			Where("id = ? AND version = ?", section.ID, section.Version-1).
			Select("*").Omit("id", "created_at").
			Updates(section)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The report section has been modified by another transaction")
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}

		return nil
	})
}

// SaveAll saves multiple sections in a single transaction
func (r *GormReportSectionRepository) SaveAll(ctx context.Context, sections []*reporting.ReportSection) error {
	if len(sections) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, section := range sections {
			if err := tx.Save(section).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a report section by ID
func (r *GormReportSectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&reporting.ReportSection{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteForOrg deletes a report section within an organization
func (r *GormReportSectionRepository) DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		Delete(&reporting.ReportSection{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByPeriod counts sections within a period
func (r *GormReportSectionRepository) CountByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&reporting.ReportSection{}).
		Where("organization_id = ? AND period_id = ?", organizationID, periodID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountChildren counts the direct children of a section
func (r *GormReportSectionRepository) CountChildren(ctx context.Context, organizationID, parentID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&reporting.ReportSection{}).
		Where("organization_id = ? AND parent_id = ?", organizationID, parentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountUnapprovedByPeriod counts active sections not yet approved within a period
func (r *GormReportSectionRepository) CountUnapprovedByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&reporting.ReportSection{}).
		Where("organization_id = ? AND period_id = ? AND is_active = ? AND status <> ?",
			organizationID, periodID, true, string(reporting.SectionStatusApproved)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a section code exists within a period
func (r *GormReportSectionRepository) ExistsByCode(ctx context.Context, organizationID, periodID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&reporting.ReportSection{}).
		Where("organization_id = ? AND period_id = ? AND code = ?", organizationID, periodID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormReportSectionRepository implements ReportSectionRepository
var _ reporting.ReportSectionRepository = (*GormReportSectionRepository)(nil)
