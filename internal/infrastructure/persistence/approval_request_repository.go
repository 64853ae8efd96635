package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/approval"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalRequestSortFields defines allowed sort fields for approval requests
var ApprovalRequestSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"status":     true,
	"decided_at": true,
}

// GormApprovalRequestRepository implements ApprovalRequestRepository using GORM
type GormApprovalRequestRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormApprovalRequestRepository creates a new GormApprovalRequestRepository
func NewGormApprovalRequestRepository(db *gorm.DB) *GormApprovalRequestRepository {
	return &GormApprovalRequestRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormApprovalRequestRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a request by ID
func (r *GormApprovalRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*approval.ApprovalRequest, error) {
	var request approval.ApprovalRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// FindByIDForOrg finds a request by ID within an organization
func (r *GormApprovalRequestRepository) FindByIDForOrg(ctx context.Context, id, organizationID uuid.UUID) (*approval.ApprovalRequest, error) {
	var request approval.ApprovalRequest
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// FindAllForOrg finds all requests for an organization with filtering
func (r *GormApprovalRequestRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (*shared.Paginated[approval.ApprovalRequest], error) {
	base := r.db.WithContext(ctx).Model(&approval.ApprovalRequest{}).
		Where("organization_id = ?", organizationID)
	return r.findPaginated(base, filter)
}

// FindByTarget finds all requests for a target, newest first
func (r *GormApprovalRequestRepository) FindByTarget(ctx context.Context, organizationID uuid.UUID, targetKind approval.TargetKind, targetID uuid.UUID) ([]approval.ApprovalRequest, error) {
	var requests []approval.ApprovalRequest
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND target_kind = ? AND target_id = ?", organizationID, string(targetKind), targetID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// FindPendingByTarget finds the pending request for a target, if any
func (r *GormApprovalRequestRepository) FindPendingByTarget(ctx context.Context, organizationID uuid.UUID, targetKind approval.TargetKind, targetID uuid.UUID) (*approval.ApprovalRequest, error) {
	var request approval.ApprovalRequest
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND target_kind = ? AND target_id = ? AND status = ?",
			organizationID, string(targetKind), targetID, string(approval.ApprovalStatusPending)).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// FindPendingByTargets finds pending requests for any of the given target IDs
func (r *GormApprovalRequestRepository) FindPendingByTargets(ctx context.Context, organizationID uuid.UUID, targetKind approval.TargetKind, targetIDs []uuid.UUID) ([]approval.ApprovalRequest, error) {
	if len(targetIDs) == 0 {
		return []approval.ApprovalRequest{}, nil
	}
	var requests []approval.ApprovalRequest
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND target_kind = ? AND target_id IN ? AND status = ?",
			organizationID, string(targetKind), targetIDs, string(approval.ApprovalStatusPending)).
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// FindByPeriod finds requests in the given period with filtering
func (r *GormApprovalRequestRepository) FindByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, filter shared.Filter) (*shared.Paginated[approval.ApprovalRequest], error) {
	base := r.db.WithContext(ctx).Model(&approval.ApprovalRequest{}).
		Where("organization_id = ? AND period_id = ?", organizationID, periodID)
	return r.findPaginated(base, filter)
}

// FindByStatus finds requests with the given status for an organization
func (r *GormApprovalRequestRepository) FindByStatus(ctx context.Context, organizationID uuid.UUID, status approval.ApprovalStatus, filter shared.Filter) (*shared.Paginated[approval.ApprovalRequest], error) {
	base := r.db.WithContext(ctx).Model(&approval.ApprovalRequest{}).
		Where("organization_id = ? AND status = ?", organizationID, string(status))
	return r.findPaginated(base, filter)
}

// FindPendingByApprover finds pending requests assigned to the given user
func (r *GormApprovalRequestRepository) FindPendingByApprover(ctx context.Context, organizationID, approverUserID uuid.UUID) ([]approval.ApprovalRequest, error) {
	var requests []approval.ApprovalRequest
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND approver_user_id = ? AND status = ?",
			organizationID, approverUserID, string(approval.ApprovalStatusPending)).
		Order("created_at ASC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// FindByRequester finds requests created by the given user with filtering
func (r *GormApprovalRequestRepository) FindByRequester(ctx context.Context, organizationID, requestedBy uuid.UUID, filter shared.Filter) (*shared.Paginated[approval.ApprovalRequest], error) {
	base := r.db.WithContext(ctx).Model(&approval.ApprovalRequest{}).
		Where("organization_id = ? AND requested_by = ?", organizationID, requestedBy)
	return r.findPaginated(base, filter)
}

// Save saves a request (insert or update)
func (r *GormApprovalRequestRepository) Save(ctx context.Context, request *approval.ApprovalRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// SaveWithEvents inserts a new request and appends its events to the outbox
// in the same transaction
func (r *GormApprovalRequestRepository) SaveWithEvents(ctx context.Context, request *approval.ApprovalRequest, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(request).Error; err != nil {
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

// SaveWithLock saves a request using optimistic locking on the version field
func (r *GormApprovalRequestRepository) SaveWithLock(ctx context.Context, request *approval.ApprovalRequest) error {
	result := r.db.WithContext(ctx).
		Model(request).
		Where("id = ? AND version = ?", request.ID, request.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(request)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The approval request has been modified by another transaction")
	}
	return nil
}

// SaveWithLockAndEvents saves a request and appends its events to the outbox
// in the same transaction
func (r *GormApprovalRequestRepository) SaveWithLockAndEvents(ctx context.Context, request *approval.ApprovalRequest, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(request).
			Where("id = ? AND version = ?", request.ID, request.Version-1).
			Select("*").Omit("id", "created_at").
			Updates(request)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The approval request has been modified by another transaction")
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}

		return nil
	})
}

// CountPendingForOrg counts pending requests for an organization
func (r *GormApprovalRequestRepository) CountPendingForOrg(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&approval.ApprovalRequest{}).
		Where("organization_id = ? AND status = ?", organizationID, string(approval.ApprovalStatusPending)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountPendingByApprover counts pending requests assigned to the given user
func (r *GormApprovalRequestRepository) CountPendingByApprover(ctx context.Context, organizationID, approverUserID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&approval.ApprovalRequest{}).
		Where("organization_id = ? AND approver_user_id = ? AND status = ?",
			organizationID, approverUserID, string(approval.ApprovalStatusPending)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsPendingForTarget checks if the target already has a pending request
func (r *GormApprovalRequestRepository) ExistsPendingForTarget(ctx context.Context, organizationID uuid.UUID, targetKind approval.TargetKind, targetID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&approval.ApprovalRequest{}).
		Where("organization_id = ? AND target_kind = ? AND target_id = ? AND status = ?",
			organizationID, string(targetKind), targetID, string(approval.ApprovalStatusPending)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// findPaginated runs a filtered count plus page query
func (r *GormApprovalRequestRepository) findPaginated(base *gorm.DB, filter shared.Filter) (*shared.Paginated[approval.ApprovalRequest], error) {
	counted := r.applyFilterWithoutPagination(base.Session(&gorm.Session{}), filter)

	var total int64
	if err := counted.Count(&total).Error; err != nil {
		return nil, err
	}

	var requests []approval.ApprovalRequest
	query := r.applyFilter(base.Session(&gorm.Session{}), filter)
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = len(requests)
		if pageSize == 0 {
			pageSize = 1
		}
	}

	result := shared.NewPaginated(requests, total, page, pageSize)
	return &result, nil
}

// applyFilter applies filter options to the query
func (r *GormApprovalRequestRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, ApprovalRequestSortFields, "")
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
func (r *GormApprovalRequestRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "target_kind":
			query = query.Where("target_kind = ?", value)
		case "target_id":
			query = query.Where("target_id = ?", value)
		case "period_id":
			query = query.Where("period_id = ?", value)
		case "approver_user_id":
			query = query.Where("approver_user_id = ?", value)
		case "requested_by":
			query = query.Where("requested_by = ?", value)
		}
	}

	return query
}

// Ensure GormApprovalRequestRepository implements ApprovalRequestRepository
var _ approval.ApprovalRequestRepository = (*GormApprovalRequestRepository)(nil)
