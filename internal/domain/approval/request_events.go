package approval

import (
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for ApprovalRequest
const AggregateTypeApprovalRequest = "ApprovalRequest"

// ApprovalRequest domain event types
const (
	EventTypeApprovalRequested  = "ApprovalRequested"
	EventTypeApprovalReassigned = "ApprovalReassigned"
	EventTypeApprovalGranted    = "ApprovalGranted"
	EventTypeApprovalRejected   = "ApprovalRejected"
	EventTypeApprovalCancelled  = "ApprovalCancelled"
)

// ApprovalRequestedEvent is published when a sign-off request is created
type ApprovalRequestedEvent struct {
	shared.BaseDomainEvent
	TargetKind     TargetKind `json:"target_kind"`
	TargetID       uuid.UUID  `json:"target_id"`
	PeriodID       uuid.UUID  `json:"period_id"`
	RequestedBy    uuid.UUID  `json:"requested_by"`
	ApproverUserID uuid.UUID  `json:"approver_user_id"`
}

// NewApprovalRequestedEvent creates a new ApprovalRequestedEvent
func NewApprovalRequestedEvent(r *ApprovalRequest) *ApprovalRequestedEvent {
	return &ApprovalRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApprovalRequested, AggregateTypeApprovalRequest, r.ID, r.OrganizationID),
		TargetKind:      r.TargetKind,
		TargetID:        r.TargetID,
		PeriodID:        r.PeriodID,
		RequestedBy:     r.RequestedBy,
		ApproverUserID:  r.ApproverUserID,
	}
}

// ApprovalReassignedEvent is published when a pending request changes approver
type ApprovalReassignedEvent struct {
	shared.BaseDomainEvent
	TargetKind  TargetKind `json:"target_kind"`
	TargetID    uuid.UUID  `json:"target_id"`
	OldApprover uuid.UUID  `json:"old_approver"`
	NewApprover uuid.UUID  `json:"new_approver"`
}

// NewApprovalReassignedEvent creates a new ApprovalReassignedEvent
func NewApprovalReassignedEvent(r *ApprovalRequest, oldApprover uuid.UUID) *ApprovalReassignedEvent {
	return &ApprovalReassignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApprovalReassigned, AggregateTypeApprovalRequest, r.ID, r.OrganizationID),
		TargetKind:      r.TargetKind,
		TargetID:        r.TargetID,
		OldApprover:     oldApprover,
		NewApprover:     r.ApproverUserID,
	}
}

// ApprovalGrantedEvent is published when a request is approved.
// Consumers move the target forward: sections to approved, periods to closed.
type ApprovalGrantedEvent struct {
	shared.BaseDomainEvent
	TargetKind TargetKind `json:"target_kind"`
	TargetID   uuid.UUID  `json:"target_id"`
	PeriodID   uuid.UUID  `json:"period_id"`
	DecidedBy  uuid.UUID  `json:"decided_by"`
	Note       string     `json:"note,omitempty"`
}

// NewApprovalGrantedEvent creates a new ApprovalGrantedEvent
func NewApprovalGrantedEvent(r *ApprovalRequest) *ApprovalGrantedEvent {
	return &ApprovalGrantedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApprovalGranted, AggregateTypeApprovalRequest, r.ID, r.OrganizationID),
		TargetKind:      r.TargetKind,
		TargetID:        r.TargetID,
		PeriodID:        r.PeriodID,
		DecidedBy:       *r.DecidedBy,
		Note:            r.DecisionNote,
	}
}

// ApprovalRejectedEvent is published when a request is rejected
type ApprovalRejectedEvent struct {
	shared.BaseDomainEvent
	TargetKind TargetKind `json:"target_kind"`
	TargetID   uuid.UUID  `json:"target_id"`
	DecidedBy  uuid.UUID  `json:"decided_by"`
	Reason     string     `json:"reason"`
}

// NewApprovalRejectedEvent creates a new ApprovalRejectedEvent
func NewApprovalRejectedEvent(r *ApprovalRequest) *ApprovalRejectedEvent {
	return &ApprovalRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApprovalRejected, AggregateTypeApprovalRequest, r.ID, r.OrganizationID),
		TargetKind:      r.TargetKind,
		TargetID:        r.TargetID,
		DecidedBy:       *r.DecidedBy,
		Reason:          r.DecisionNote,
	}
}

// ApprovalCancelledEvent is published when a pending request is withdrawn
type ApprovalCancelledEvent struct {
	shared.BaseDomainEvent
	TargetKind  TargetKind `json:"target_kind"`
	TargetID    uuid.UUID  `json:"target_id"`
	CancelledBy *uuid.UUID `json:"cancelled_by,omitempty"`
	Note        string     `json:"note,omitempty"`
}

// NewApprovalCancelledEvent creates a new ApprovalCancelledEvent
func NewApprovalCancelledEvent(r *ApprovalRequest) *ApprovalCancelledEvent {
	return &ApprovalCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApprovalCancelled, AggregateTypeApprovalRequest, r.ID, r.OrganizationID),
		TargetKind:      r.TargetKind,
		TargetID:        r.TargetID,
		CancelledBy:     r.DecidedBy,
		Note:            r.DecisionNote,
	}
}
