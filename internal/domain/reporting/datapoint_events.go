package reporting

import (
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for DataPoint
const AggregateTypeDataPoint = "DataPoint"

// Data point domain event types
const (
	EventTypeDataPointCreated         = "DataPointCreated"
	EventTypeDataPointUpdated         = "DataPointUpdated"
	EventTypeDataPointValueRecorded   = "DataPointValueRecorded"
	EventTypeDataPointValueCleared    = "DataPointValueCleared"
	EventTypeDataPointStatusChanged   = "DataPointStatusChanged"
	EventTypeDataPointMarkedEstimated = "DataPointMarkedEstimated"
	EventTypeDataPointDeactivated     = "DataPointDeactivated"
)

// DataPointCreatedEvent is published when a data point is created
type DataPointCreatedEvent struct {
	shared.BaseDomainEvent
	SectionID uuid.UUID     `json:"section_id"`
	PeriodID  uuid.UUID     `json:"period_id"`
	Code      string        `json:"code"`
	Name      string        `json:"name"`
	Kind      DataPointKind `json:"kind"`
	Mandatory bool          `json:"mandatory"`
}

// NewDataPointCreatedEvent creates a new DataPointCreatedEvent
func NewDataPointCreatedEvent(dp *DataPoint) *DataPointCreatedEvent {
	return &DataPointCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDataPointCreated, AggregateTypeDataPoint, dp.ID, dp.OrganizationID),
		SectionID:       dp.SectionID,
		PeriodID:        dp.PeriodID,
		Code:            dp.Code,
		Name:            dp.Name,
		Kind:            dp.Kind,
		Mandatory:       dp.Mandatory,
	}
}

// DataPointUpdatedEvent is published when a data point's descriptive fields change
type DataPointUpdatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewDataPointUpdatedEvent creates a new DataPointUpdatedEvent
func NewDataPointUpdatedEvent(dp *DataPoint) *DataPointUpdatedEvent {
	return &DataPointUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDataPointUpdated, AggregateTypeDataPoint, dp.ID, dp.OrganizationID),
		Code:            dp.Code,
		Name:            dp.Name,
	}
}

// DataPointValueRecordedEvent is published when a value is recorded
// Old and new values feed the audit trail
type DataPointValueRecordedEvent struct {
	shared.BaseDomainEvent
	SectionID uuid.UUID     `json:"section_id"`
	PeriodID  uuid.UUID     `json:"period_id"`
	Code      string        `json:"code"`
	Kind      DataPointKind `json:"kind"`
	OldValue  string        `json:"old_value"`
	NewValue  string        `json:"new_value"`
	UpdatedBy uuid.UUID     `json:"updated_by"`
}

// NewDataPointValueRecordedEvent creates a new DataPointValueRecordedEvent
func NewDataPointValueRecordedEvent(dp *DataPoint, oldValue, newValue string, updatedBy uuid.UUID) *DataPointValueRecordedEvent {
	return &DataPointValueRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDataPointValueRecorded, AggregateTypeDataPoint, dp.ID, dp.OrganizationID),
		SectionID:       dp.SectionID,
		PeriodID:        dp.PeriodID,
		Code:            dp.Code,
		Kind:            dp.Kind,
		OldValue:        oldValue,
		NewValue:        newValue,
		UpdatedBy:       updatedBy,
	}
}

// DataPointValueClearedEvent is published when a recorded value is removed
type DataPointValueClearedEvent struct {
	shared.BaseDomainEvent
	Code      string    `json:"code"`
	OldValue  string    `json:"old_value"`
	UpdatedBy uuid.UUID `json:"updated_by"`
}

// NewDataPointValueClearedEvent creates a new DataPointValueClearedEvent
func NewDataPointValueClearedEvent(dp *DataPoint, oldValue string, updatedBy uuid.UUID) *DataPointValueClearedEvent {
	return &DataPointValueClearedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDataPointValueCleared, AggregateTypeDataPoint, dp.ID, dp.OrganizationID),
		Code:            dp.Code,
		OldValue:        oldValue,
		UpdatedBy:       updatedBy,
	}
}

// DataPointStatusChangedEvent is published when a data point's status changes
type DataPointStatusChangedEvent struct {
	shared.BaseDomainEvent
	Code      string          `json:"code"`
	OldStatus DataPointStatus `json:"old_status"`
	NewStatus DataPointStatus `json:"new_status"`
}

// NewDataPointStatusChangedEvent creates a new DataPointStatusChangedEvent
func NewDataPointStatusChangedEvent(dp *DataPoint, oldStatus, newStatus DataPointStatus) *DataPointStatusChangedEvent {
	return &DataPointStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDataPointStatusChanged, AggregateTypeDataPoint, dp.ID, dp.OrganizationID),
		Code:            dp.Code,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// DataPointMarkedEstimatedEvent is published when a value is tied to an estimation decision
type DataPointMarkedEstimatedEvent struct {
	shared.BaseDomainEvent
	Code       string    `json:"code"`
	DecisionID uuid.UUID `json:"decision_id"`
}

// NewDataPointMarkedEstimatedEvent creates a new DataPointMarkedEstimatedEvent
func NewDataPointMarkedEstimatedEvent(dp *DataPoint, decisionID uuid.UUID) *DataPointMarkedEstimatedEvent {
	return &DataPointMarkedEstimatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDataPointMarkedEstimated, AggregateTypeDataPoint, dp.ID, dp.OrganizationID),
		Code:            dp.Code,
		DecisionID:      decisionID,
	}
}

// DataPointDeactivatedEvent is published when a data point is deactivated
type DataPointDeactivatedEvent struct {
	shared.BaseDomainEvent
	Code      string `json:"code"`
	Mandatory bool   `json:"mandatory"`
}

// NewDataPointDeactivatedEvent creates a new DataPointDeactivatedEvent
func NewDataPointDeactivatedEvent(dp *DataPoint) *DataPointDeactivatedEvent {
	return &DataPointDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDataPointDeactivated, AggregateTypeDataPoint, dp.ID, dp.OrganizationID),
		Code:            dp.Code,
		Mandatory:       dp.Mandatory,
	}
}
