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

// ReportTemplateSortFields defines allowed sort fields for report templates
var ReportTemplateSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"status":     true,
	"is_default": true,
}

// GormReportTemplateRepository implements ReportTemplateRepository using GORM
type GormReportTemplateRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormReportTemplateRepository creates a new GormReportTemplateRepository
func NewGormReportTemplateRepository(db *gorm.DB) *GormReportTemplateRepository {
	return &GormReportTemplateRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event persistence
func (r *GormReportTemplateRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a template by ID
func (r *GormReportTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*export.ReportTemplate, error) {
	var tmpl export.ReportTemplate
	if err := r.db.WithContext(ctx).First(&tmpl, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tmpl, nil
}

// FindByIDForOrg finds a template by ID for a specific organization
func (r *GormReportTemplateRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*export.ReportTemplate, error) {
	var tmpl export.ReportTemplate
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&tmpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tmpl, nil
}

// FindAllForOrg finds all templates for an organization with filtering
func (r *GormReportTemplateRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]export.ReportTemplate, error) {
	var templates []export.ReportTemplate
	query := r.db.WithContext(ctx).Where("organization_id = ?", organizationID)
	query = r.applyFilter(query, filter)
	if err := query.Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// FindDefaultForOrg finds the organization's default active template
func (r *GormReportTemplateRepository) FindDefaultForOrg(ctx context.Context, organizationID uuid.UUID) (*export.ReportTemplate, error) {
	var tmpl export.ReportTemplate
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND is_default = ? AND status = ?", organizationID, true, export.TemplateStatusActive).
		First(&tmpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tmpl, nil
}

// Save creates or updates a template
func (r *GormReportTemplateRepository) Save(ctx context.Context, t *export.ReportTemplate) error {
	return r.db.WithContext(ctx).Save(t).Error
}

// SaveWithEvents inserts a new template and appends its events to the outbox in the same transaction
func (r *GormReportTemplateRepository) SaveWithEvents(ctx context.Context, t *export.ReportTemplate, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(t).Error; err != nil {
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
func (r *GormReportTemplateRepository) SaveWithLockAndEvents(ctx context.Context, t *export.ReportTemplate, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(t).
			Where("id = ? AND version = ?", t.ID, t.Version-1).
			Select("*").
			Omit("id", "created_at").
			Updates(t)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The report template has been modified by another transaction")
		}
		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}
		return nil
	})
}

// ClearDefaultForOrg unsets the default flag on all of the organization's templates
func (r *GormReportTemplateRepository) ClearDefaultForOrg(ctx context.Context, organizationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&export.ReportTemplate{}).
		Where("organization_id = ? AND is_default = ?", organizationID, true).
		Update("is_default", false).Error
}

// DeleteForOrg deletes a template for an organization
func (r *GormReportTemplateRepository) DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		Delete(&export.ReportTemplate{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForOrg counts templates for an organization
func (r *GormReportTemplateRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&export.ReportTemplate{}).
		Where("organization_id = ?", organizationID)
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies pagination and ordering on top of the condition filters
func (r *GormReportTemplateRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, ReportTemplateSortFields, "")
		if sortField != "" {
			query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
		} else {
			query = query.Order("name ASC")
		}
	} else {
		query = query.Order("name ASC")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	return query
}

// applyFilterWithoutPagination applies the condition filters only
func (r *GormReportTemplateRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "is_default":
			query = query.Where("is_default = ?", value)
		case "paper_size":
			query = query.Where("paper_size = ?", value)
		}
	}
	return query
}

// Ensure GormReportTemplateRepository implements ReportTemplateRepository
var _ export.ReportTemplateRepository = (*GormReportTemplateRepository)(nil)
