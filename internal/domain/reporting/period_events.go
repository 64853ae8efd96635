package reporting

import (
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// Aggregate type constant for ReportingPeriod
const AggregateTypePeriod = "ReportingPeriod"

// Reporting period domain event types
const (
	EventTypePeriodCreated       = "PeriodCreated"
	EventTypePeriodUpdated       = "PeriodUpdated"
	EventTypePeriodOpened        = "PeriodOpened"
	EventTypePeriodClosed        = "PeriodClosed"
	EventTypePeriodReopened      = "PeriodReopened"
	EventTypePeriodStatusChanged = "PeriodStatusChanged"

	EventTypePeriodDeadlineApproaching = "PeriodDeadlineApproaching"
)

// PeriodCreatedEvent is published when a reporting period is created
type PeriodCreatedEvent struct {
	shared.BaseDomainEvent
	Label     string    `json:"label"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// NewPeriodCreatedEvent creates a new PeriodCreatedEvent
func NewPeriodCreatedEvent(period *ReportingPeriod) *PeriodCreatedEvent {
	return &PeriodCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePeriodCreated, AggregateTypePeriod, period.ID, period.OrganizationID),
		Label:           period.Label,
		StartDate:       period.StartDate,
		EndDate:         period.EndDate,
	}
}

// PeriodUpdatedEvent is published when a period's label or dates change
type PeriodUpdatedEvent struct {
	shared.BaseDomainEvent
	Label     string    `json:"label"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// NewPeriodUpdatedEvent creates a new PeriodUpdatedEvent
func NewPeriodUpdatedEvent(period *ReportingPeriod) *PeriodUpdatedEvent {
	return &PeriodUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePeriodUpdated, AggregateTypePeriod, period.ID, period.OrganizationID),
		Label:           period.Label,
		StartDate:       period.StartDate,
		EndDate:         period.EndDate,
	}
}

// PeriodOpenedEvent is published when a period opens for data collection
type PeriodOpenedEvent struct {
	shared.BaseDomainEvent
	Label string `json:"label"`
}

// NewPeriodOpenedEvent creates a new PeriodOpenedEvent
func NewPeriodOpenedEvent(period *ReportingPeriod) *PeriodOpenedEvent {
	return &PeriodOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePeriodOpened, AggregateTypePeriod, period.ID, period.OrganizationID),
		Label:           period.Label,
	}
}

// PeriodClosedEvent is published when a period closes
type PeriodClosedEvent struct {
	shared.BaseDomainEvent
	Label    string    `json:"label"`
	ClosedAt time.Time `json:"closed_at"`
}

// NewPeriodClosedEvent creates a new PeriodClosedEvent
func NewPeriodClosedEvent(period *ReportingPeriod) *PeriodClosedEvent {
	closedAt := time.Now()
	if period.ClosedAt != nil {
		closedAt = *period.ClosedAt
	}
	return &PeriodClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePeriodClosed, AggregateTypePeriod, period.ID, period.OrganizationID),
		Label:           period.Label,
		ClosedAt:        closedAt,
	}
}

// PeriodReopenedEvent is published when a closed period is reopened
type PeriodReopenedEvent struct {
	shared.BaseDomainEvent
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// NewPeriodReopenedEvent creates a new PeriodReopenedEvent
func NewPeriodReopenedEvent(period *ReportingPeriod, reason string) *PeriodReopenedEvent {
	return &PeriodReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePeriodReopened, AggregateTypePeriod, period.ID, period.OrganizationID),
		Label:           period.Label,
		Reason:          reason,
	}
}

// PeriodStatusChangedEvent is published for the remaining status transitions
type PeriodStatusChangedEvent struct {
	shared.BaseDomainEvent
	Label     string       `json:"label"`
	OldStatus PeriodStatus `json:"old_status"`
	NewStatus PeriodStatus `json:"new_status"`
}

// NewPeriodStatusChangedEvent creates a new PeriodStatusChangedEvent
func NewPeriodStatusChangedEvent(period *ReportingPeriod, oldStatus, newStatus PeriodStatus) *PeriodStatusChangedEvent {
	return &PeriodStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePeriodStatusChanged, AggregateTypePeriod, period.ID, period.OrganizationID),
		Label:           period.Label,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// PeriodDeadlineApproachingEvent is published by the maintenance scheduler
// when an open period's end date falls inside the reminder window
type PeriodDeadlineApproachingEvent struct {
	shared.BaseDomainEvent
	Label         string    `json:"label"`
	EndDate       time.Time `json:"end_date"`
	DaysRemaining int       `json:"days_remaining"`
}

// NewPeriodDeadlineApproachingEvent creates a new PeriodDeadlineApproachingEvent
func NewPeriodDeadlineApproachingEvent(period *ReportingPeriod, daysRemaining int) *PeriodDeadlineApproachingEvent {
	return &PeriodDeadlineApproachingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePeriodDeadlineApproaching, AggregateTypePeriod, period.ID, period.OrganizationID),
		Label:           period.Label,
		EndDate:         period.EndDate,
		DaysRemaining:   daysRemaining,
	}
}
