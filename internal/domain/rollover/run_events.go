package rollover

import (
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for RolloverRun
const AggregateTypeRolloverRun = "RolloverRun"

// RolloverRun domain event types
const (
	EventTypeRolloverRequested = "RolloverRequested"
	EventTypeRolloverStarted   = "RolloverStarted"
	EventTypeRolloverResumed   = "RolloverResumed"
	EventTypeRolloverCompleted = "RolloverCompleted"
	EventTypeRolloverFailed    = "RolloverFailed"
)

// RolloverStartRequestedEvent is published when a run is created
type RolloverStartRequestedEvent struct {
	shared.BaseDomainEvent
	SourcePeriodID uuid.UUID  `json:"source_period_id"`
	TargetPeriodID uuid.UUID  `json:"target_period_id"`
	TriggeredBy    *uuid.UUID `json:"triggered_by,omitempty"`
}

// NewRolloverStartRequestedEvent creates a new RolloverStartRequestedEvent
func NewRolloverStartRequestedEvent(r *RolloverRun) *RolloverStartRequestedEvent {
	return &RolloverStartRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRolloverRequested, AggregateTypeRolloverRun, r.ID, r.OrganizationID),
		SourcePeriodID:  r.SourcePeriodID,
		TargetPeriodID:  r.TargetPeriodID,
		TriggeredBy:     r.TriggeredBy,
	}
}

// RolloverStartedEvent is published when a run begins executing
type RolloverStartedEvent struct {
	shared.BaseDomainEvent
	SourcePeriodID uuid.UUID `json:"source_period_id"`
	TargetPeriodID uuid.UUID `json:"target_period_id"`
}

// NewRolloverStartedEvent creates a new RolloverStartedEvent
func NewRolloverStartedEvent(r *RolloverRun) *RolloverStartedEvent {
	return &RolloverStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRolloverStarted, AggregateTypeRolloverRun, r.ID, r.OrganizationID),
		SourcePeriodID:  r.SourcePeriodID,
		TargetPeriodID:  r.TargetPeriodID,
	}
}

// RolloverResumedEvent is published when a failed run restarts
type RolloverResumedEvent struct {
	shared.BaseDomainEvent
	Phase RolloverPhase `json:"phase"`
}

// NewRolloverResumedEvent creates a new RolloverResumedEvent
func NewRolloverResumedEvent(r *RolloverRun) *RolloverResumedEvent {
	return &RolloverResumedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRolloverResumed, AggregateTypeRolloverRun, r.ID, r.OrganizationID),
		Phase:           r.Phase,
	}
}

// RolloverCompletedEvent is published when a run finishes successfully
type RolloverCompletedEvent struct {
	shared.BaseDomainEvent
	SourcePeriodID uuid.UUID `json:"source_period_id"`
	TargetPeriodID uuid.UUID `json:"target_period_id"`
	CarriedCount   int       `json:"carried_count"`
	ResetCount     int       `json:"reset_count"`
	SkippedCount   int       `json:"skipped_count"`
	FailedCount    int       `json:"failed_count"`
}

// NewRolloverCompletedEvent creates a new RolloverCompletedEvent
func NewRolloverCompletedEvent(r *RolloverRun) *RolloverCompletedEvent {
	return &RolloverCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRolloverCompleted, AggregateTypeRolloverRun, r.ID, r.OrganizationID),
		SourcePeriodID:  r.SourcePeriodID,
		TargetPeriodID:  r.TargetPeriodID,
		CarriedCount:    r.CarriedCount,
		ResetCount:      r.ResetCount,
		SkippedCount:    r.SkippedCount,
		FailedCount:     r.FailedCount,
	}
}

// RolloverFailedEvent is published when a run stops with an error
type RolloverFailedEvent struct {
	shared.BaseDomainEvent
	Phase  RolloverPhase `json:"phase"`
	Reason string        `json:"reason"`
}

// NewRolloverFailedEvent creates a new RolloverFailedEvent
func NewRolloverFailedEvent(r *RolloverRun) *RolloverFailedEvent {
	return &RolloverFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRolloverFailed, AggregateTypeRolloverRun, r.ID, r.OrganizationID),
		Phase:           r.Phase,
		Reason:          r.FailureReason,
	}
}
