// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReportMetricsProvider implements ReportMetricsProvider using GORM.
// It queries the register and approval tables directly for aggregated metrics.
type GormReportMetricsProvider struct {
	db *gorm.DB
}

// NewGormReportMetricsProvider creates a new GormReportMetricsProvider.
func NewGormReportMetricsProvider(db *gorm.DB) *GormReportMetricsProvider {
	return &GormReportMetricsProvider{db: db}
}

// GetOpenGapCount returns the number of unresolved disclosure gaps for an organization.
func (p *GormReportMetricsProvider) GetOpenGapCount(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("disclosure_gaps").
		Where("organization_id = ? AND deleted_at IS NULL", organizationID).
		Where("status NOT IN ?", []string{"resolved", "accepted"}).
		Count(&count).Error

	return count, err
}

// GetPendingApprovalCount returns the number of pending approval requests for an organization.
func (p *GormReportMetricsProvider) GetPendingApprovalCount(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("approval_requests").
		Where("organization_id = ? AND deleted_at IS NULL", organizationID).
		Where("status = ?", "pending").
		Count(&count).Error

	return count, err
}

// GetOverduePlanCount returns the number of active remediation plans past their due date.
func (p *GormReportMetricsProvider) GetOverduePlanCount(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("remediation_plans").
		Where("organization_id = ? AND deleted_at IS NULL", organizationID).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", "active", time.Now()).
		Count(&count).Error

	return count, err
}

// GormOrganizationProvider implements OrganizationProvider using GORM.
type GormOrganizationProvider struct {
	db *gorm.DB
}

// NewGormOrganizationProvider creates a new GormOrganizationProvider.
func NewGormOrganizationProvider(db *gorm.DB) *GormOrganizationProvider {
	return &GormOrganizationProvider{db: db}
}

// GetActiveOrganizationIDs returns all active organization IDs.
func (p *GormOrganizationProvider) GetActiveOrganizationIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("organizations").
		Select("id").
		Where("deleted_at IS NULL AND status = ?", "active").
		Find(&ids).Error

	return ids, err
}
