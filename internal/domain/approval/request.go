package approval

import (
	"time"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// TargetKind identifies what an approval request signs off
type TargetKind string

const (
	TargetKindSection TargetKind = "section"
	TargetKindPeriod  TargetKind = "period"
)

// IsValid checks if the target kind is valid
func (k TargetKind) IsValid() bool {
	return k == TargetKindSection || k == TargetKindPeriod
}

// String returns the string representation of the target kind
func (k TargetKind) String() string {
	return string(k)
}

// ApprovalStatus represents the status of an approval request
type ApprovalStatus string

const (
	ApprovalStatusPending   ApprovalStatus = "pending"
	ApprovalStatusApproved  ApprovalStatus = "approved"
	ApprovalStatusRejected  ApprovalStatus = "rejected"
	ApprovalStatusCancelled ApprovalStatus = "cancelled"
)

// IsValid checks if the approval status is valid
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected, ApprovalStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s ApprovalStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// A request transitions exactly once out of pending and is immutable after.
func (s ApprovalStatus) CanTransitionTo(target ApprovalStatus) bool {
	if s != ApprovalStatusPending {
		return false
	}
	return target == ApprovalStatusApproved || target == ApprovalStatusRejected || target == ApprovalStatusCancelled
}

// IsDecided checks if the status is a terminal state
func (s ApprovalStatus) IsDecided() bool {
	return s != ApprovalStatusPending
}

// ApprovalRequest represents a sign-off request for a section or a period.
// It transitions exactly once out of pending; a new request supersedes a
// decided one rather than reopening it.
type ApprovalRequest struct {
	shared.OrgAggregateRoot
	TargetKind     TargetKind     `gorm:"type:varchar(20);not null;index:idx_approval_target"`
	TargetID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_approval_target"`
	PeriodID       uuid.UUID      `gorm:"type:uuid;not null;index"`
	RequestedBy    uuid.UUID      `gorm:"type:uuid;not null;index"`
	ApproverUserID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Comment        string         `gorm:"type:varchar(500)"`
	Status         ApprovalStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	DecidedBy      *uuid.UUID     `gorm:"type:uuid"`
	DecidedAt      *time.Time
	DecisionNote   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ApprovalRequest) TableName() string {
	return "approval_requests"
}

// NewApprovalRequest creates a new pending approval request.
// The requester cannot be their own approver. The caller must ensure the
// target belongs to the same organization and has no other pending request.
func NewApprovalRequest(organizationID uuid.UUID, targetKind TargetKind, targetID, periodID, requestedBy, approverUserID uuid.UUID, comment string) (*ApprovalRequest, error) {
	if !targetKind.IsValid() {
		return nil, shared.NewDomainError("INVALID_TARGET_KIND", "Target kind must be section or period")
	}
	if targetID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TARGET_ID", "Target ID cannot be empty")
	}
	if periodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PERIOD_ID", "Period ID cannot be empty")
	}
	if requestedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REQUESTER", "Requester cannot be empty")
	}
	if approverUserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_APPROVER", "Approver cannot be empty")
	}
	if requestedBy == approverUserID {
		return nil, shared.NewDomainError("SELF_APPROVAL", "Requester cannot be their own approver")
	}
	if len(comment) > 500 {
		return nil, shared.NewDomainError("INVALID_COMMENT", "Comment cannot exceed 500 characters")
	}

	request := &ApprovalRequest{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(organizationID),
		TargetKind:       targetKind,
		TargetID:         targetID,
		PeriodID:         periodID,
		RequestedBy:      requestedBy,
		ApproverUserID:   approverUserID,
		Comment:          comment,
		Status:           ApprovalStatusPending,
	}

	request.AddDomainEvent(NewApprovalRequestedEvent(request))

	return request, nil
}

// Reassign moves a pending request to a different approver
func (r *ApprovalRequest) Reassign(newApproverUserID uuid.UUID) error {
	if r.Status.IsDecided() {
		return shared.NewDomainError("ALREADY_DECIDED", "Request has already been decided")
	}
	if newApproverUserID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver cannot be empty")
	}
	if newApproverUserID == r.RequestedBy {
		return shared.NewDomainError("SELF_APPROVAL", "Requester cannot be their own approver")
	}
	if newApproverUserID == r.ApproverUserID {
		return shared.NewDomainError("SAME_APPROVER", "Request is already assigned to this approver")
	}

	oldApprover := r.ApproverUserID
	r.ApproverUserID = newApproverUserID
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewApprovalReassignedEvent(r, oldApprover))

	return nil
}

// Approve grants the request. Only the assigned approver can decide.
func (r *ApprovalRequest) Approve(decidedBy uuid.UUID, note string) error {
	if err := r.checkDecision(decidedBy, note); err != nil {
		return err
	}

	r.decide(ApprovalStatusApproved, decidedBy, note)
	r.AddDomainEvent(NewApprovalGrantedEvent(r))

	return nil
}

// Reject declines the request with a mandatory reason
func (r *ApprovalRequest) Reject(decidedBy uuid.UUID, reason string) error {
	if err := r.checkDecision(decidedBy, reason); err != nil {
		return err
	}
	if reason == "" {
		return shared.NewDomainError("REASON_REQUIRED", "Rejection reason is required")
	}

	r.decide(ApprovalStatusRejected, decidedBy, reason)
	r.AddDomainEvent(NewApprovalRejectedEvent(r))

	return nil
}

// Cancel withdraws a pending request. A nil cancelledBy records a system
// cancellation, used when the target regresses while the request is open.
func (r *ApprovalRequest) Cancel(cancelledBy *uuid.UUID, note string) error {
	if r.Status.IsDecided() {
		return shared.NewDomainError("ALREADY_DECIDED", "Request has already been decided")
	}
	if len(note) > 500 {
		return shared.NewDomainError("INVALID_NOTE", "Note cannot exceed 500 characters")
	}

	now := time.Now()
	r.Status = ApprovalStatusCancelled
	r.DecidedBy = cancelledBy
	r.DecidedAt = &now
	r.DecisionNote = note
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewApprovalCancelledEvent(r))

	return nil
}

// IsPending checks if the request is still awaiting a decision
func (r *ApprovalRequest) IsPending() bool {
	return r.Status == ApprovalStatusPending
}

// IsApproved checks if the request was granted
func (r *ApprovalRequest) IsApproved() bool {
	return r.Status == ApprovalStatusApproved
}

// TargetsSection checks if the request signs off a section
func (r *ApprovalRequest) TargetsSection() bool {
	return r.TargetKind == TargetKindSection
}

// TargetsPeriod checks if the request signs off a period
func (r *ApprovalRequest) TargetsPeriod() bool {
	return r.TargetKind == TargetKindPeriod
}

func (r *ApprovalRequest) checkDecision(decidedBy uuid.UUID, note string) error {
	if r.Status.IsDecided() {
		return shared.NewDomainError("ALREADY_DECIDED", "Request has already been decided")
	}
	if decidedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Deciding user cannot be empty")
	}
	if decidedBy != r.ApproverUserID {
		return shared.NewDomainError("NOT_ASSIGNED_APPROVER", "Only the assigned approver can decide this request")
	}
	if len(note) > 500 {
		return shared.NewDomainError("INVALID_NOTE", "Note cannot exceed 500 characters")
	}
	return nil
}

func (r *ApprovalRequest) decide(status ApprovalStatus, decidedBy uuid.UUID, note string) {
	now := time.Now()
	r.Status = status
	r.DecidedBy = &decidedBy
	r.DecidedAt = &now
	r.DecisionNote = note
	r.UpdatedAt = now
	r.IncrementVersion()
}
