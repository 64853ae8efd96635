package evidence

import (
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for Evidence
const AggregateTypeEvidence = "Evidence"

// Evidence domain event types
const (
	EventTypeEvidenceRegistered = "EvidenceRegistered"
	EventTypeEvidenceFinalized  = "EvidenceFinalized"
	EventTypeEvidenceDeleted    = "EvidenceDeleted"
	EventTypeEvidenceRelinked   = "EvidenceRelinked"
)

// EvidenceRegisteredEvent is published when an upload is registered
type EvidenceRegisteredEvent struct {
	shared.BaseDomainEvent
	DataPointID uuid.UUID `json:"data_point_id"`
	PeriodID    uuid.UUID `json:"period_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	SHA256      string    `json:"sha256"`
}

// NewEvidenceRegisteredEvent creates a new EvidenceRegisteredEvent
func NewEvidenceRegisteredEvent(ev *Evidence) *EvidenceRegisteredEvent {
	return &EvidenceRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEvidenceRegistered, AggregateTypeEvidence, ev.ID, ev.OrganizationID),
		DataPointID:     ev.DataPointID,
		PeriodID:        ev.PeriodID,
		FileName:        ev.FileName,
		ContentType:     ev.ContentType,
		SizeBytes:       ev.SizeBytes,
		SHA256:          ev.SHA256,
	}
}

// EvidenceFinalizedEvent is published when an upload is confirmed
type EvidenceFinalizedEvent struct {
	shared.BaseDomainEvent
	DataPointID uuid.UUID `json:"data_point_id"`
	FileName    string    `json:"file_name"`
}

// NewEvidenceFinalizedEvent creates a new EvidenceFinalizedEvent
func NewEvidenceFinalizedEvent(ev *Evidence) *EvidenceFinalizedEvent {
	return &EvidenceFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEvidenceFinalized, AggregateTypeEvidence, ev.ID, ev.OrganizationID),
		DataPointID:     ev.DataPointID,
		FileName:        ev.FileName,
	}
}

// EvidenceDeletedEvent is published when evidence is soft deleted
type EvidenceDeletedEvent struct {
	shared.BaseDomainEvent
	DataPointID uuid.UUID      `json:"data_point_id"`
	FileName    string         `json:"file_name"`
	OldStatus   EvidenceStatus `json:"old_status"`
}

// NewEvidenceDeletedEvent creates a new EvidenceDeletedEvent
func NewEvidenceDeletedEvent(ev *Evidence, oldStatus EvidenceStatus) *EvidenceDeletedEvent {
	return &EvidenceDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEvidenceDeleted, AggregateTypeEvidence, ev.ID, ev.OrganizationID),
		DataPointID:     ev.DataPointID,
		FileName:        ev.FileName,
		OldStatus:       oldStatus,
	}
}

// EvidenceRelinkedEvent is published when evidence moves to another data point
type EvidenceRelinkedEvent struct {
	shared.BaseDomainEvent
	OldDataPointID uuid.UUID `json:"old_data_point_id"`
	NewDataPointID uuid.UUID `json:"new_data_point_id"`
	FileName       string    `json:"file_name"`
}

// NewEvidenceRelinkedEvent creates a new EvidenceRelinkedEvent
func NewEvidenceRelinkedEvent(ev *Evidence, oldDataPointID uuid.UUID) *EvidenceRelinkedEvent {
	return &EvidenceRelinkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEvidenceRelinked, AggregateTypeEvidence, ev.ID, ev.OrganizationID),
		OldDataPointID:  oldDataPointID,
		NewDataPointID:  ev.DataPointID,
		FileName:        ev.FileName,
	}
}
