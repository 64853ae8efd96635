package register

import (
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// Aggregate type constant for Decision
const AggregateTypeDecision = "Decision"

// Decision domain event types
const (
	EventTypeDecisionCreated = "DecisionCreated"
	EventTypeDecisionUpdated = "DecisionUpdated"
)

// DecisionCreatedEvent is published when an estimation decision is recorded
type DecisionCreatedEvent struct {
	shared.BaseDomainEvent
	Title      string          `json:"title"`
	Method     string          `json:"method"`
	Confidence ConfidenceLevel `json:"confidence"`
}

// NewDecisionCreatedEvent creates a new DecisionCreatedEvent
func NewDecisionCreatedEvent(d *Decision) *DecisionCreatedEvent {
	return &DecisionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDecisionCreated, AggregateTypeDecision, d.ID, d.OrganizationID),
		Title:           d.Title,
		Method:          d.Method,
		Confidence:      d.Confidence,
	}
}

// DecisionUpdatedEvent is published when a decision's content changes
type DecisionUpdatedEvent struct {
	shared.BaseDomainEvent
	Title      string          `json:"title"`
	Confidence ConfidenceLevel `json:"confidence"`
}

// NewDecisionUpdatedEvent creates a new DecisionUpdatedEvent
func NewDecisionUpdatedEvent(d *Decision) *DecisionUpdatedEvent {
	return &DecisionUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDecisionUpdated, AggregateTypeDecision, d.ID, d.OrganizationID),
		Title:           d.Title,
		Confidence:      d.Confidence,
	}
}
