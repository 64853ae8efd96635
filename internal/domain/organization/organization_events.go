package organization

import (
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrganization = "Organization"

// Event type constants
const (
	EventTypeOrganizationCreated          = "OrganizationCreated"
	EventTypeOrganizationUpdated          = "OrganizationUpdated"
	EventTypeOrganizationStatusChanged    = "OrganizationStatusChanged"
	EventTypeOrganizationFrameworkChanged = "OrganizationFrameworkChanged"
)

// OrganizationCreatedEvent is published when a new organization is created
type OrganizationCreatedEvent struct {
	shared.BaseDomainEvent
	Code      string             `json:"code"`
	Name      string             `json:"name"`
	Status    OrganizationStatus `json:"status"`
	Framework ReportingFramework `json:"framework"`
}

// NewOrganizationCreatedEvent creates a new OrganizationCreatedEvent
func NewOrganizationCreatedEvent(org *Organization) *OrganizationCreatedEvent {
	return &OrganizationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrganizationCreated, AggregateTypeOrganization, org.ID, org.ID),
		Code:            org.Code,
		Name:            org.Name,
		Status:          org.Status,
		Framework:       org.Framework,
	}
}

// OrganizationUpdatedEvent is published when an organization profile is updated
type OrganizationUpdatedEvent struct {
	shared.BaseDomainEvent
	Code         string `json:"code"`
	Name         string `json:"name"`
	LegalName    string `json:"legal_name,omitempty"`
	ContactName  string `json:"contact_name,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
}

// NewOrganizationUpdatedEvent creates a new OrganizationUpdatedEvent
func NewOrganizationUpdatedEvent(org *Organization) *OrganizationUpdatedEvent {
	return &OrganizationUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrganizationUpdated, AggregateTypeOrganization, org.ID, org.ID),
		Code:            org.Code,
		Name:            org.Name,
		LegalName:       org.LegalName,
		ContactName:     org.ContactName,
		ContactPhone:    org.ContactPhone,
		ContactEmail:    org.ContactEmail,
	}
}

// OrganizationStatusChangedEvent is published when an organization's status changes
type OrganizationStatusChangedEvent struct {
	shared.BaseDomainEvent
	Code      string             `json:"code"`
	OldStatus OrganizationStatus `json:"old_status"`
	NewStatus OrganizationStatus `json:"new_status"`
}

// NewOrganizationStatusChangedEvent creates a new OrganizationStatusChangedEvent
func NewOrganizationStatusChangedEvent(org *Organization, oldStatus, newStatus OrganizationStatus) *OrganizationStatusChangedEvent {
	return &OrganizationStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrganizationStatusChanged, AggregateTypeOrganization, org.ID, org.ID),
		Code:            org.Code,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// OrganizationFrameworkChangedEvent is published when the default reporting framework changes
type OrganizationFrameworkChangedEvent struct {
	shared.BaseDomainEvent
	Code         string             `json:"code"`
	OldFramework ReportingFramework `json:"old_framework"`
	NewFramework ReportingFramework `json:"new_framework"`
}

// NewOrganizationFrameworkChangedEvent creates a new OrganizationFrameworkChangedEvent
func NewOrganizationFrameworkChangedEvent(org *Organization, oldFramework, newFramework ReportingFramework) *OrganizationFrameworkChangedEvent {
	return &OrganizationFrameworkChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrganizationFrameworkChanged, AggregateTypeOrganization, org.ID, org.ID),
		Code:            org.Code,
		OldFramework:    oldFramework,
		NewFramework:    newFramework,
	}
}
