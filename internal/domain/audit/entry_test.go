package audit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuditEntry_Success(t *testing.T) {
	organizationID := uuid.New()
	eventID := uuid.New()
	actorID := uuid.New()
	aggregateID := uuid.New()
	occurredAt := time.Now().Add(-time.Minute)
	payload := []byte(`{"old_value":"100","new_value":"250"}`)

	e, err := NewAuditEntry(organizationID, eventID, &actorID, "DataPoint", aggregateID, "DataPointValueRecorded", occurredAt, payload)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, organizationID, e.OrganizationID)
	assert.Equal(t, eventID, e.EventID)
	assert.Equal(t, &actorID, e.ActorUserID)
	assert.Equal(t, "DataPoint", e.AggregateType)
	assert.Equal(t, aggregateID, e.AggregateID)
	assert.Equal(t, "DataPointValueRecorded", e.Action)
	assert.Equal(t, occurredAt, e.OccurredAt)
	assert.Equal(t, payload, e.Payload)
	assert.False(t, e.IsSystemAction())
}

func TestNewAuditEntry_SystemAction(t *testing.T) {
	e, err := NewAuditEntry(uuid.New(), uuid.New(), nil, "RolloverRun", uuid.New(), "RolloverCompleted", time.Now(), nil)

	require.NoError(t, err)
	assert.True(t, e.IsSystemAction())
}

func TestNewAuditEntry_Validation(t *testing.T) {
	tests := []struct {
		name          string
		organization  uuid.UUID
		eventID       uuid.UUID
		aggregateType string
		aggregateID   uuid.UUID
		action        string
		wantErr       string
	}{
		{"missing organization", uuid.Nil, uuid.New(), "DataPoint", uuid.New(), "DataPointCreated", "Organization"},
		{"missing event ID", uuid.New(), uuid.Nil, "DataPoint", uuid.New(), "DataPointCreated", "Event ID"},
		{"missing aggregate type", uuid.New(), uuid.New(), "", uuid.New(), "DataPointCreated", "Aggregate type"},
		{"missing aggregate ID", uuid.New(), uuid.New(), "DataPoint", uuid.Nil, "DataPointCreated", "Aggregate ID"},
		{"missing action", uuid.New(), uuid.New(), "DataPoint", uuid.New(), "", "Action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAuditEntry(tt.organization, tt.eventID, nil, tt.aggregateType, tt.aggregateID, tt.action, time.Now(), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewAuditEntry_DefaultsOccurredAt(t *testing.T) {
	e, err := NewAuditEntry(uuid.New(), uuid.New(), nil, "DataPoint", uuid.New(), "DataPointCreated", time.Time{}, nil)

	require.NoError(t, err)
	assert.False(t, e.OccurredAt.IsZero())
}

func TestQuery_IsEmpty(t *testing.T) {
	assert.True(t, Query{}.IsEmpty())

	aggregateID := uuid.New()
	assert.False(t, Query{AggregateID: &aggregateID}.IsEmpty())
	assert.False(t, Query{Action: "DataPointValueRecorded"}.IsEmpty())

	from := time.Now()
	assert.False(t, Query{From: &from}.IsEmpty())
}

func TestAuditEntry_TableName(t *testing.T) {
	assert.Equal(t, "audit_entries", AuditEntry{}.TableName())
}
