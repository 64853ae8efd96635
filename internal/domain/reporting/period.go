package reporting

import (
	"strings"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// PeriodStatus represents the lifecycle status of a reporting period
type PeriodStatus string

const (
	PeriodStatusDraft    PeriodStatus = "draft"     // Being set up, not yet collecting data
	PeriodStatusOpen     PeriodStatus = "open"      // Data collection in progress
	PeriodStatusInReview PeriodStatus = "in_review" // Collection frozen, approvals running
	PeriodStatusClosed   PeriodStatus = "closed"    // Disclosed, changes require reopen
	PeriodStatusArchived PeriodStatus = "archived"  // Kept for reference only
)

// IsValid checks if the status is a valid PeriodStatus
func (s PeriodStatus) IsValid() bool {
	switch s {
	case PeriodStatusDraft, PeriodStatusOpen, PeriodStatusInReview, PeriodStatusClosed, PeriodStatusArchived:
		return true
	}
	return false
}

// String returns the string representation of PeriodStatus
func (s PeriodStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PeriodStatus) CanTransitionTo(target PeriodStatus) bool {
	switch s {
	case PeriodStatusDraft:
		return target == PeriodStatusOpen
	case PeriodStatusOpen:
		return target == PeriodStatusInReview
	case PeriodStatusInReview:
		return target == PeriodStatusOpen || target == PeriodStatusClosed
	case PeriodStatusClosed:
		return target == PeriodStatusOpen || target == PeriodStatusArchived
	case PeriodStatusArchived:
		return false // Terminal state
	}
	return false
}

// IsEditable returns true if report content can still change in this status
func (s PeriodStatus) IsEditable() bool {
	return s == PeriodStatusDraft || s == PeriodStatusOpen
}

// ReportingPeriod represents one disclosure cycle (typically a fiscal year)
// It is the aggregate root for period lifecycle operations
type ReportingPeriod struct {
	shared.OrgAggregateRoot
	Label        string       `gorm:"type:varchar(50);not null;uniqueIndex:idx_period_org_label,priority:2"` // e.g. "FY2025"
	Description  string       `gorm:"type:text"`
	StartDate    time.Time    `gorm:"not null;index"`
	EndDate      time.Time    `gorm:"not null"`
	Status       PeriodStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	OpenedAt     *time.Time
	ReviewAt     *time.Time
	ClosedAt     *time.Time `gorm:"index"`
	ArchivedAt   *time.Time
	ReopenedAt   *time.Time
	ReopenReason string     `gorm:"type:varchar(500)"`
	RolledFrom   *uuid.UUID `gorm:"type:uuid;index"` // Source period when created by rollover
}

// TableName returns the table name for GORM
func (ReportingPeriod) TableName() string {
	return "reporting_periods"
}

// NewReportingPeriod creates a new reporting period in draft status
func NewReportingPeriod(organizationID uuid.UUID, label string, startDate, endDate time.Time) (*ReportingPeriod, error) {
	if err := validatePeriodLabel(label); err != nil {
		return nil, err
	}
	if err := validatePeriodDates(startDate, endDate); err != nil {
		return nil, err
	}

	period := &ReportingPeriod{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(organizationID),
		Label:            strings.TrimSpace(label),
		StartDate:        startDate,
		EndDate:          endDate,
		Status:           PeriodStatusDraft,
	}

	period.AddDomainEvent(NewPeriodCreatedEvent(period))

	return period, nil
}

// SetDescription sets the period description
func (p *ReportingPeriod) SetDescription(description string) {
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetRolledFrom records which period this one was rolled over from
func (p *ReportingPeriod) SetRolledFrom(sourcePeriodID uuid.UUID) {
	p.RolledFrom = &sourcePeriodID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Update updates the period's label and dates
// Dates can only change while the period is still in draft
func (p *ReportingPeriod) Update(label string, startDate, endDate time.Time) error {
	if err := validatePeriodLabel(label); err != nil {
		return err
	}

	datesChanged := !startDate.Equal(p.StartDate) || !endDate.Equal(p.EndDate)
	if datesChanged {
		if p.Status != PeriodStatusDraft {
			return shared.NewDomainError("INVALID_STATE", "Period dates can only change while the period is in draft")
		}
		if err := validatePeriodDates(startDate, endDate); err != nil {
			return err
		}
		p.StartDate = startDate
		p.EndDate = endDate
	}

	p.Label = strings.TrimSpace(label)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPeriodUpdatedEvent(p))

	return nil
}

// Open opens the period for data collection
// The caller must ensure no other period is open for the organization
func (p *ReportingPeriod) Open() error {
	if !p.Status.CanTransitionTo(PeriodStatusOpen) || p.Status != PeriodStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only a draft period can be opened")
	}

	now := time.Now()
	p.Status = PeriodStatusOpen
	p.OpenedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPeriodOpenedEvent(p))

	return nil
}

// StartReview freezes the period for the approval workflow
func (p *ReportingPeriod) StartReview() error {
	if !p.Status.CanTransitionTo(PeriodStatusInReview) {
		return shared.NewDomainError("INVALID_STATE", "Only an open period can enter review")
	}

	now := time.Now()
	oldStatus := p.Status
	p.Status = PeriodStatusInReview
	p.ReviewAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPeriodStatusChangedEvent(p, oldStatus, PeriodStatusInReview))

	return nil
}

// BackToOpen returns an in-review period to open (e.g. after a rejected approval)
func (p *ReportingPeriod) BackToOpen() error {
	if p.Status != PeriodStatusInReview {
		return shared.NewDomainError("INVALID_STATE", "Only a period in review can return to open")
	}

	oldStatus := p.Status
	p.Status = PeriodStatusOpen
	p.ReviewAt = nil
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPeriodStatusChangedEvent(p, oldStatus, PeriodStatusOpen))

	return nil
}

// Close closes the period
// The caller must ensure all sections are approved or explicitly waived
func (p *ReportingPeriod) Close() error {
	if !p.Status.CanTransitionTo(PeriodStatusClosed) {
		return shared.NewDomainError("INVALID_STATE", "Only a period in review can be closed")
	}

	now := time.Now()
	p.Status = PeriodStatusClosed
	p.ClosedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPeriodClosedEvent(p))

	return nil
}

// Reopen reopens a closed period with a mandatory reason
func (p *ReportingPeriod) Reopen(reason string) error {
	if p.Status != PeriodStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Only a closed period can be reopened")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("REASON_REQUIRED", "Reopening a closed period requires a reason")
	}
	if len(reason) > 500 {
		return shared.NewDomainError("INVALID_REASON", "Reason cannot exceed 500 characters")
	}

	now := time.Now()
	p.Status = PeriodStatusOpen
	p.ClosedAt = nil
	p.ReopenedAt = &now
	p.ReopenReason = reason
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPeriodReopenedEvent(p, reason))

	return nil
}

// Archive archives a closed period
func (p *ReportingPeriod) Archive() error {
	if !p.Status.CanTransitionTo(PeriodStatusArchived) {
		return shared.NewDomainError("INVALID_STATE", "Only a closed period can be archived")
	}

	now := time.Now()
	oldStatus := p.Status
	p.Status = PeriodStatusArchived
	p.ArchivedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPeriodStatusChangedEvent(p, oldStatus, PeriodStatusArchived))

	return nil
}

// IsOpen returns true if the period is collecting data
func (p *ReportingPeriod) IsOpen() bool {
	return p.Status == PeriodStatusOpen
}

// IsClosed returns true if the period is closed or archived
func (p *ReportingPeriod) IsClosed() bool {
	return p.Status == PeriodStatusClosed || p.Status == PeriodStatusArchived
}

// IsEditable returns true if report content can still change
func (p *ReportingPeriod) IsEditable() bool {
	return p.Status.IsEditable()
}

// Contains returns true if the given date falls within the period
func (p *ReportingPeriod) Contains(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

// Overlaps returns true if the given date range overlaps this period
func (p *ReportingPeriod) Overlaps(startDate, endDate time.Time) bool {
	return !startDate.After(p.EndDate) && !endDate.Before(p.StartDate)
}

// Validation functions

func validatePeriodLabel(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return shared.NewDomainError("INVALID_LABEL", "Period label cannot be empty")
	}
	if len(label) > 50 {
		return shared.NewDomainError("INVALID_LABEL", "Period label cannot exceed 50 characters")
	}
	return nil
}

func validatePeriodDates(startDate, endDate time.Time) error {
	if startDate.IsZero() || endDate.IsZero() {
		return shared.NewDomainError("INVALID_DATES", "Start and end dates are required")
	}
	if !startDate.Before(endDate) {
		return shared.NewDomainError("INVALID_DATES", "Start date must be before end date")
	}
	return nil
}
