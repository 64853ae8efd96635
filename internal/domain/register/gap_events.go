package register

import (
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for Gap
const AggregateTypeGap = "Gap"

// Gap domain event types
const (
	EventTypeGapCreated       = "GapCreated"
	EventTypeGapUpdated       = "GapUpdated"
	EventTypeGapStatusChanged = "GapStatusChanged"
	EventTypeGapClosed        = "GapClosed"
)

// GapCreatedEvent is published when a disclosure gap is raised
type GapCreatedEvent struct {
	shared.BaseDomainEvent
	PeriodID    uuid.UUID   `json:"period_id"`
	SectionID   *uuid.UUID  `json:"section_id,omitempty"`
	DataPointID *uuid.UUID  `json:"data_point_id,omitempty"`
	Title       string      `json:"title"`
	Severity    GapSeverity `json:"severity"`
}

// NewGapCreatedEvent creates a new GapCreatedEvent
func NewGapCreatedEvent(g *Gap) *GapCreatedEvent {
	return &GapCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGapCreated, AggregateTypeGap, g.ID, g.OrganizationID),
		PeriodID:        g.PeriodID,
		SectionID:       g.SectionID,
		DataPointID:     g.DataPointID,
		Title:           g.Title,
		Severity:        g.Severity,
	}
}

// GapUpdatedEvent is published when a gap's content changes
type GapUpdatedEvent struct {
	shared.BaseDomainEvent
	Title    string      `json:"title"`
	Severity GapSeverity `json:"severity"`
}

// NewGapUpdatedEvent creates a new GapUpdatedEvent
func NewGapUpdatedEvent(g *Gap) *GapUpdatedEvent {
	return &GapUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGapUpdated, AggregateTypeGap, g.ID, g.OrganizationID),
		Title:           g.Title,
		Severity:        g.Severity,
	}
}

// GapStatusChangedEvent is published on non-terminal status transitions
type GapStatusChangedEvent struct {
	shared.BaseDomainEvent
	Title     string    `json:"title"`
	OldStatus GapStatus `json:"old_status"`
	NewStatus GapStatus `json:"new_status"`
}

// NewGapStatusChangedEvent creates a new GapStatusChangedEvent
func NewGapStatusChangedEvent(g *Gap, oldStatus, newStatus GapStatus) *GapStatusChangedEvent {
	return &GapStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGapStatusChanged, AggregateTypeGap, g.ID, g.OrganizationID),
		Title:           g.Title,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// GapClosedEvent is published when a gap is resolved or accepted
type GapClosedEvent struct {
	shared.BaseDomainEvent
	Title          string    `json:"title"`
	OldStatus      GapStatus `json:"old_status"`
	FinalStatus    GapStatus `json:"final_status"`
	ResolutionNote string    `json:"resolution_note"`
}

// NewGapClosedEvent creates a new GapClosedEvent
func NewGapClosedEvent(g *Gap, oldStatus GapStatus, note string) *GapClosedEvent {
	return &GapClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGapClosed, AggregateTypeGap, g.ID, g.OrganizationID),
		Title:           g.Title,
		OldStatus:       oldStatus,
		FinalStatus:     g.Status,
		ResolutionNote:  note,
	}
}
