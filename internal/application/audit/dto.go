package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/audit"
)

// EntryListFilter narrows audit trail listings
type EntryListFilter struct {
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size"`
	AggregateType string     `form:"aggregate_type"`
	AggregateID   *uuid.UUID `form:"aggregate_id"`
	ActorUserID   *uuid.UUID `form:"actor_user_id"`
	Action        string     `form:"action"`
	From          *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To            *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// EntryResponse represents an audit entry in API responses
type EntryResponse struct {
	ID             uuid.UUID       `json:"id"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	EventID        uuid.UUID       `json:"event_id"`
	ActorUserID    *uuid.UUID      `json:"actor_user_id,omitempty"`
	SystemAction   bool            `json:"system_action"`
	AggregateType  string          `json:"aggregate_type"`
	AggregateID    uuid.UUID       `json:"aggregate_id"`
	Action         string          `json:"action"`
	OccurredAt     time.Time       `json:"occurred_at"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

// ValueHistoryEntry is one step of a data point's value timeline
type ValueHistoryEntry struct {
	OccurredAt time.Time  `json:"occurred_at"`
	Action     string     `json:"action"`
	OldValue   string     `json:"old_value"`
	NewValue   string     `json:"new_value"`
	UpdatedBy  *uuid.UUID `json:"updated_by,omitempty"`
}

// ValueHistoryResponse is the reconstructed value timeline of a data point
type ValueHistoryResponse struct {
	DataPointID uuid.UUID           `json:"data_point_id"`
	Entries     []ValueHistoryEntry `json:"entries"`
}

// ToEntryResponse converts a domain entry to a response DTO
func ToEntryResponse(entry *audit.AuditEntry) EntryResponse {
	return EntryResponse{
		ID:             entry.ID,
		OrganizationID: entry.OrganizationID,
		EventID:        entry.EventID,
		ActorUserID:    entry.ActorUserID,
		SystemAction:   entry.IsSystemAction(),
		AggregateType:  entry.AggregateType,
		AggregateID:    entry.AggregateID,
		Action:         entry.Action,
		OccurredAt:     entry.OccurredAt,
		Payload:        json.RawMessage(entry.Payload),
	}
}

// ToEntryResponses converts a slice of domain entries to response DTOs
func ToEntryResponses(entries []audit.AuditEntry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToEntryResponse(&entries[i])
	}
	return responses
}
