package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// AuditEntry is one append-only audit trail row. Entries are projected from
// domain events consumed off the bus and are never updated or deleted, so
// they survive deletion of the aggregate they describe.
type AuditEntry struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index:idx_audit_org_time"`
	EventID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	ActorUserID    *uuid.UUID `gorm:"type:uuid;index"`
	AggregateType  string     `gorm:"type:varchar(100);not null;index:idx_audit_aggregate"`
	AggregateID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_audit_aggregate"`
	Action         string     `gorm:"type:varchar(100);not null;index"`
	OccurredAt     time.Time  `gorm:"not null;index:idx_audit_org_time"`
	Payload        []byte     `gorm:"type:jsonb"`
	CreatedAt      time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AuditEntry) TableName() string {
	return "audit_entries"
}

// NewAuditEntry creates an audit entry from a consumed domain event.
// The event ID deduplicates redelivered events; the payload holds the
// serialized event JSON including before/after values where the event
// carries them. A nil actor records a system action.
func NewAuditEntry(organizationID, eventID uuid.UUID, actorUserID *uuid.UUID, aggregateType string, aggregateID uuid.UUID, action string, occurredAt time.Time, payload []byte) (*AuditEntry, error) {
	if organizationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	if eventID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_EVENT_ID", "Event ID cannot be empty")
	}
	if aggregateType == "" {
		return nil, shared.NewDomainError("INVALID_AGGREGATE_TYPE", "Aggregate type cannot be empty")
	}
	if aggregateID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_AGGREGATE_ID", "Aggregate ID cannot be empty")
	}
	if action == "" {
		return nil, shared.NewDomainError("INVALID_ACTION", "Action cannot be empty")
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	return &AuditEntry{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		EventID:        eventID,
		ActorUserID:    actorUserID,
		AggregateType:  aggregateType,
		AggregateID:    aggregateID,
		Action:         action,
		OccurredAt:     occurredAt,
		Payload:        payload,
		CreatedAt:      time.Now(),
	}, nil
}

// IsSystemAction checks if the entry was produced without a user actor
func (e *AuditEntry) IsSystemAction() bool {
	return e.ActorUserID == nil
}

// Query narrows audit trail listings. Zero-valued fields are ignored.
type Query struct {
	AggregateType string
	AggregateID   *uuid.UUID
	ActorUserID   *uuid.UUID
	Action        string
	From          *time.Time
	To            *time.Time
}

// IsEmpty checks if the query applies no narrowing at all
func (q Query) IsEmpty() bool {
	return q.AggregateType == "" && q.AggregateID == nil && q.ActorUserID == nil &&
		q.Action == "" && q.From == nil && q.To == nil
}
