package remediation

import (
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for RemediationPlan
const AggregateTypeRemediationPlan = "RemediationPlan"

// RemediationPlan domain event types
const (
	EventTypePlanCreated     = "RemediationPlanCreated"
	EventTypePlanUpdated     = "RemediationPlanUpdated"
	EventTypePlanGapAttached = "RemediationPlanGapAttached"
	EventTypePlanGapDetached = "RemediationPlanGapDetached"
	EventTypePlanActivated   = "RemediationPlanActivated"
	EventTypePlanCompleted   = "RemediationPlanCompleted"
	EventTypePlanCancelled   = "RemediationPlanCancelled"
	EventTypePlanOverdue     = "RemediationPlanOverdue"
)

// PlanCreatedEvent is published when a remediation plan is created
type PlanCreatedEvent struct {
	shared.BaseDomainEvent
	Title       string     `json:"title"`
	OwnerUserID *uuid.UUID `json:"owner_user_id,omitempty"`
}

// NewPlanCreatedEvent creates a new PlanCreatedEvent
func NewPlanCreatedEvent(p *RemediationPlan) *PlanCreatedEvent {
	return &PlanCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanCreated, AggregateTypeRemediationPlan, p.ID, p.OrganizationID),
		Title:           p.Title,
		OwnerUserID:     p.OwnerUserID,
	}
}

// PlanUpdatedEvent is published when a plan's content changes
type PlanUpdatedEvent struct {
	shared.BaseDomainEvent
	Title string `json:"title"`
}

// NewPlanUpdatedEvent creates a new PlanUpdatedEvent
func NewPlanUpdatedEvent(p *RemediationPlan) *PlanUpdatedEvent {
	return &PlanUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanUpdated, AggregateTypeRemediationPlan, p.ID, p.OrganizationID),
		Title:           p.Title,
	}
}

// PlanGapAttachedEvent is published when a gap is attached to a plan
type PlanGapAttachedEvent struct {
	shared.BaseDomainEvent
	GapID uuid.UUID `json:"gap_id"`
}

// NewPlanGapAttachedEvent creates a new PlanGapAttachedEvent
func NewPlanGapAttachedEvent(p *RemediationPlan, gapID uuid.UUID) *PlanGapAttachedEvent {
	return &PlanGapAttachedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanGapAttached, AggregateTypeRemediationPlan, p.ID, p.OrganizationID),
		GapID:           gapID,
	}
}

// PlanGapDetachedEvent is published when a gap is detached from a plan
type PlanGapDetachedEvent struct {
	shared.BaseDomainEvent
	GapID uuid.UUID `json:"gap_id"`
}

// NewPlanGapDetachedEvent creates a new PlanGapDetachedEvent
func NewPlanGapDetachedEvent(p *RemediationPlan, gapID uuid.UUID) *PlanGapDetachedEvent {
	return &PlanGapDetachedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanGapDetached, AggregateTypeRemediationPlan, p.ID, p.OrganizationID),
		GapID:           gapID,
	}
}

// PlanActivatedEvent is published when a plan becomes active
type PlanActivatedEvent struct {
	shared.BaseDomainEvent
	Title     string      `json:"title"`
	GapIDs    []uuid.UUID `json:"gap_ids"`
	ItemCount int         `json:"item_count"`
}

// NewPlanActivatedEvent creates a new PlanActivatedEvent
func NewPlanActivatedEvent(p *RemediationPlan) *PlanActivatedEvent {
	return &PlanActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanActivated, AggregateTypeRemediationPlan, p.ID, p.OrganizationID),
		Title:           p.Title,
		GapIDs:          p.GapIDs,
		ItemCount:       len(p.Items),
	}
}

// PlanCompletedEvent is published when a plan is completed.
// It carries the attached gap IDs so consumers can resolve those gaps.
type PlanCompletedEvent struct {
	shared.BaseDomainEvent
	Title  string      `json:"title"`
	GapIDs []uuid.UUID `json:"gap_ids"`
}

// NewPlanCompletedEvent creates a new PlanCompletedEvent
func NewPlanCompletedEvent(p *RemediationPlan) *PlanCompletedEvent {
	return &PlanCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanCompleted, AggregateTypeRemediationPlan, p.ID, p.OrganizationID),
		Title:           p.Title,
		GapIDs:          p.GapIDs,
	}
}

// PlanCancelledEvent is published when a plan is cancelled
type PlanCancelledEvent struct {
	shared.BaseDomainEvent
	Title     string     `json:"title"`
	OldStatus PlanStatus `json:"old_status"`
	Reason    string     `json:"reason"`
}

// NewPlanCancelledEvent creates a new PlanCancelledEvent
func NewPlanCancelledEvent(p *RemediationPlan, oldStatus PlanStatus, reason string) *PlanCancelledEvent {
	return &PlanCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanCancelled, AggregateTypeRemediationPlan, p.ID, p.OrganizationID),
		Title:           p.Title,
		OldStatus:       oldStatus,
		Reason:          reason,
	}
}

// PlanOverdueEvent is published when an active plan is detected past its due date
type PlanOverdueEvent struct {
	shared.BaseDomainEvent
	Title       string     `json:"title"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	OwnerUserID *uuid.UUID `json:"owner_user_id,omitempty"`
}

// NewPlanOverdueFlaggedEvent creates a new PlanOverdueEvent
func NewPlanOverdueFlaggedEvent(p *RemediationPlan) *PlanOverdueEvent {
	return &PlanOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanOverdue, AggregateTypeRemediationPlan, p.ID, p.OrganizationID),
		Title:           p.Title,
		DueDate:         p.DueDate,
		OwnerUserID:     p.OwnerUserID,
	}
}
