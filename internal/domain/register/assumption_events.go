package register

import (
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for Assumption
const AggregateTypeAssumption = "Assumption"

// Assumption domain event types
const (
	EventTypeAssumptionCreated  = "AssumptionCreated"
	EventTypeAssumptionUpdated  = "AssumptionUpdated"
	EventTypeAssumptionRetired  = "AssumptionRetired"
	EventTypeAssumptionLinked   = "AssumptionLinked"
	EventTypeAssumptionUnlinked = "AssumptionUnlinked"
)

// AssumptionCreatedEvent is published when an assumption is created
type AssumptionCreatedEvent struct {
	shared.BaseDomainEvent
	Title    string `json:"title"`
	Category string `json:"category"`
}

// NewAssumptionCreatedEvent creates a new AssumptionCreatedEvent
func NewAssumptionCreatedEvent(a *Assumption) *AssumptionCreatedEvent {
	return &AssumptionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssumptionCreated, AggregateTypeAssumption, a.ID, a.OrganizationID),
		Title:           a.Title,
		Category:        a.Category,
	}
}

// AssumptionUpdatedEvent is published when an assumption's content changes
type AssumptionUpdatedEvent struct {
	shared.BaseDomainEvent
	Title string `json:"title"`
}

// NewAssumptionUpdatedEvent creates a new AssumptionUpdatedEvent
func NewAssumptionUpdatedEvent(a *Assumption) *AssumptionUpdatedEvent {
	return &AssumptionUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssumptionUpdated, AggregateTypeAssumption, a.ID, a.OrganizationID),
		Title:           a.Title,
	}
}

// AssumptionRetiredEvent is published when an assumption is retired
type AssumptionRetiredEvent struct {
	shared.BaseDomainEvent
	Title string `json:"title"`
}

// NewAssumptionRetiredEvent creates a new AssumptionRetiredEvent
func NewAssumptionRetiredEvent(a *Assumption) *AssumptionRetiredEvent {
	return &AssumptionRetiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssumptionRetired, AggregateTypeAssumption, a.ID, a.OrganizationID),
		Title:           a.Title,
	}
}

// AssumptionLinkedEvent is published when an assumption is linked to a data point
type AssumptionLinkedEvent struct {
	shared.BaseDomainEvent
	DataPointID uuid.UUID `json:"data_point_id"`
}

// NewAssumptionLinkedEvent creates a new AssumptionLinkedEvent
func NewAssumptionLinkedEvent(a *Assumption, dataPointID uuid.UUID) *AssumptionLinkedEvent {
	return &AssumptionLinkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssumptionLinked, AggregateTypeAssumption, a.ID, a.OrganizationID),
		DataPointID:     dataPointID,
	}
}

// AssumptionUnlinkedEvent is published when an assumption link is removed
type AssumptionUnlinkedEvent struct {
	shared.BaseDomainEvent
	DataPointID uuid.UUID `json:"data_point_id"`
}

// NewAssumptionUnlinkedEvent creates a new AssumptionUnlinkedEvent
func NewAssumptionUnlinkedEvent(a *Assumption, dataPointID uuid.UUID) *AssumptionUnlinkedEvent {
	return &AssumptionUnlinkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssumptionUnlinked, AggregateTypeAssumption, a.ID, a.OrganizationID),
		DataPointID:     dataPointID,
	}
}
