package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/audit"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// actorKeys are the payload fields an event may carry its acting user in,
// checked in order. Events differ in what they call the actor.
var actorKeys = []string{
	"updated_by",
	"decided_by",
	"requested_by",
	"triggered_by",
	"resolved_by",
	"completed_by",
	"cancelled_by",
	"raised_by",
	"created_by",
	"actor_user_id",
}

// Projector consumes every domain event off the bus and appends one audit
// entry per event. It subscribes as a wildcard handler; the unique event ID
// keeps it idempotent under redelivery.
type Projector struct {
	entryRepo audit.AuditEntryRepository
	logger    *zap.Logger
}

// NewProjector creates a new audit trail projector
func NewProjector(entryRepo audit.AuditEntryRepository, logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{
		entryRepo: entryRepo,
		logger:    logger,
	}
}

// EventTypes returns an empty slice so the projector receives all events
func (p *Projector) EventTypes() []string {
	return nil
}

// Handle appends one audit entry for the event
func (p *Projector) Handle(ctx context.Context, event shared.DomainEvent) error {
	if event.OrganizationID() == uuid.Nil {
		// Nothing to scope the entry to; the trail is per organization
		return nil
	}

	exists, err := p.entryRepo.ExistsByEventID(ctx, event.EventID())
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("Failed to serialize event for the audit trail",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err))
		payload = nil
	}

	entry, err := audit.NewAuditEntry(
		event.OrganizationID(),
		event.EventID(),
		extractActor(payload),
		event.AggregateType(),
		event.AggregateID(),
		event.EventType(),
		event.OccurredAt(),
		payload,
	)
	if err != nil {
		return err
	}

	return p.entryRepo.Save(ctx, entry)
}

// extractActor pulls the acting user out of the serialized event, if present
func extractActor(payload []byte) *uuid.UUID {
	if len(payload) == 0 {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil
	}

	for _, key := range actorKeys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var id uuid.UUID
		if err := json.Unmarshal(raw, &id); err != nil {
			continue
		}
		if id != uuid.Nil {
			return &id
		}
	}
	return nil
}
