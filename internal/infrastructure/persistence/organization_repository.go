package persistence

import (
	"context"
	"errors"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/organization"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrganizationSortFields defines allowed sort fields for organizations
var OrganizationSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"country":    true,
	"status":     true,
}

// GormOrganizationRepository implements OrganizationRepository using GORM
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GormOrganizationRepository
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*organization.Organization, error) {
	var org organization.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

// FindByCode finds an organization by its unique code
func (r *GormOrganizationRepository) FindByCode(ctx context.Context, code string) (*organization.Organization, error) {
	var org organization.Organization
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

// FindAll finds all organizations matching the filter
func (r *GormOrganizationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]organization.Organization, error) {
	var orgs []organization.Organization
	query := r.applyFilter(r.db.WithContext(ctx).Model(&organization.Organization{}), filter)

	if err := query.Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// FindByStatus finds organizations by status
func (r *GormOrganizationRepository) FindByStatus(ctx context.Context, status organization.OrganizationStatus, filter shared.Filter) ([]organization.Organization, error) {
	var orgs []organization.Organization
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&organization.Organization{}).
			Where("status = ?", string(status)),
		filter)

	if err := query.Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// FindActive finds all active organizations
func (r *GormOrganizationRepository) FindActive(ctx context.Context, filter shared.Filter) ([]organization.Organization, error) {
	return r.FindByStatus(ctx, organization.OrganizationStatusActive, filter)
}

// FindByIDs finds multiple organizations by their IDs
func (r *GormOrganizationRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]organization.Organization, error) {
	if len(ids) == 0 {
		return []organization.Organization{}, nil
	}
	var orgs []organization.Organization
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// Save saves an organization (insert or update)
func (r *GormOrganizationRepository) Save(ctx context.Context, org *organization.Organization) error {
	return r.db.WithContext(ctx).Save(org).Error
}

// Delete deletes an organization by ID
func (r *GormOrganizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&organization.Organization{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts organizations matching the filter
func (r *GormOrganizationRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&organization.Organization{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts organizations by status
func (r *GormOrganizationRepository) CountByStatus(ctx context.Context, status organization.OrganizationStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&organization.Organization{}).
		Where("status = ?", string(status)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if an organization with the given code exists
func (r *GormOrganizationRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&organization.Organization{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormOrganizationRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, OrganizationSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("name ASC")
		}
	} else {
		query = query.Order("name ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormOrganizationRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("code ILIKE ? OR name ILIKE ? OR legal_name ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "country":
			query = query.Where("country = ?", value)
		case "sector":
			query = query.Where("sector = ?", value)
		case "framework":
			query = query.Where("framework = ?", value)
		}
	}

	return query
}

// Ensure GormOrganizationRepository implements OrganizationRepository
var _ organization.OrganizationRepository = (*GormOrganizationRepository)(nil)
