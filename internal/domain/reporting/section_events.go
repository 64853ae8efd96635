package reporting

import (
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for ReportSection
const AggregateTypeSection = "ReportSection"

// Report section domain event types
const (
	EventTypeSectionCreated       = "SectionCreated"
	EventTypeSectionUpdated       = "SectionUpdated"
	EventTypeSectionMoved         = "SectionMoved"
	EventTypeSectionOwnerAssigned = "SectionOwnerAssigned"
	EventTypeSectionStatusChanged = "SectionStatusChanged"
	EventTypeSectionReopened      = "SectionReopened"
	EventTypeSectionDeactivated   = "SectionDeactivated"
)

// SectionCreatedEvent is published when a report section is created
type SectionCreatedEvent struct {
	shared.BaseDomainEvent
	PeriodID uuid.UUID  `json:"period_id"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	Code     string     `json:"code"`
	Title    string     `json:"title"`
	Depth    int        `json:"depth"`
}

// NewSectionCreatedEvent creates a new SectionCreatedEvent
func NewSectionCreatedEvent(section *ReportSection) *SectionCreatedEvent {
	return &SectionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSectionCreated, AggregateTypeSection, section.ID, section.OrganizationID),
		PeriodID:        section.PeriodID,
		ParentID:        section.ParentID,
		Code:            section.Code,
		Title:           section.Title,
		Depth:           section.Depth,
	}
}

// SectionUpdatedEvent is published when a section's descriptive fields change
type SectionUpdatedEvent struct {
	shared.BaseDomainEvent
	Code  string `json:"code"`
	Title string `json:"title"`
}

// NewSectionUpdatedEvent creates a new SectionUpdatedEvent
func NewSectionUpdatedEvent(section *ReportSection) *SectionUpdatedEvent {
	return &SectionUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSectionUpdated, AggregateTypeSection, section.ID, section.OrganizationID),
		Code:            section.Code,
		Title:           section.Title,
	}
}

// SectionMovedEvent is published when a section is reparented
type SectionMovedEvent struct {
	shared.BaseDomainEvent
	Code     string     `json:"code"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	Depth    int        `json:"depth"`
}

// NewSectionMovedEvent creates a new SectionMovedEvent
func NewSectionMovedEvent(section *ReportSection) *SectionMovedEvent {
	return &SectionMovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSectionMoved, AggregateTypeSection, section.ID, section.OrganizationID),
		Code:            section.Code,
		ParentID:        section.ParentID,
		Depth:           section.Depth,
	}
}

// SectionOwnerAssignedEvent is published when a section owner is assigned
type SectionOwnerAssignedEvent struct {
	shared.BaseDomainEvent
	Code        string    `json:"code"`
	OwnerUserID uuid.UUID `json:"owner_user_id"`
}

// NewSectionOwnerAssignedEvent creates a new SectionOwnerAssignedEvent
func NewSectionOwnerAssignedEvent(section *ReportSection, ownerUserID uuid.UUID) *SectionOwnerAssignedEvent {
	return &SectionOwnerAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSectionOwnerAssigned, AggregateTypeSection, section.ID, section.OrganizationID),
		Code:            section.Code,
		OwnerUserID:     ownerUserID,
	}
}

// SectionStatusChangedEvent is published on section status transitions
type SectionStatusChangedEvent struct {
	shared.BaseDomainEvent
	Code      string        `json:"code"`
	OldStatus SectionStatus `json:"old_status"`
	NewStatus SectionStatus `json:"new_status"`
}

// NewSectionStatusChangedEvent creates a new SectionStatusChangedEvent
func NewSectionStatusChangedEvent(section *ReportSection, oldStatus, newStatus SectionStatus) *SectionStatusChangedEvent {
	return &SectionStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSectionStatusChanged, AggregateTypeSection, section.ID, section.OrganizationID),
		Code:            section.Code,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// SectionReopenedEvent is published when an approved section regresses
type SectionReopenedEvent struct {
	shared.BaseDomainEvent
	Code      string        `json:"code"`
	OldStatus SectionStatus `json:"old_status"`
	Reason    string        `json:"reason"`
}

// NewSectionReopenedEvent creates a new SectionReopenedEvent
func NewSectionReopenedEvent(section *ReportSection, oldStatus SectionStatus, reason string) *SectionReopenedEvent {
	return &SectionReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSectionReopened, AggregateTypeSection, section.ID, section.OrganizationID),
		Code:            section.Code,
		OldStatus:       oldStatus,
		Reason:          reason,
	}
}

// SectionDeactivatedEvent is published when a section is deactivated
type SectionDeactivatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
}

// NewSectionDeactivatedEvent creates a new SectionDeactivatedEvent
func NewSectionDeactivatedEvent(section *ReportSection) *SectionDeactivatedEvent {
	return &SectionDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSectionDeactivated, AggregateTypeSection, section.ID, section.OrganizationID),
		Code:            section.Code,
	}
}
