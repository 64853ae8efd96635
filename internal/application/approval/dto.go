package approval

import (
	"time"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/approval"
)

// RequestApprovalRequest represents a request for a sign-off on a section or period
type RequestApprovalRequest struct {
	TargetKind     string     `json:"target_kind" binding:"required,oneof=section period"`
	TargetID       uuid.UUID  `json:"target_id" binding:"required"`
	ApproverUserID uuid.UUID  `json:"approver_user_id" binding:"required"`
	Comment        string     `json:"comment" binding:"max=500"`
	RequestedBy    *uuid.UUID `json:"-"`
}

// ReassignApprovalRequest represents a request to move a pending request to another approver
type ReassignApprovalRequest struct {
	ApproverUserID uuid.UUID `json:"approver_user_id" binding:"required"`
}

// ApproveRequest represents an approval decision with an optional note
type ApproveRequest struct {
	Note      string     `json:"note" binding:"max=500"`
	DecidedBy *uuid.UUID `json:"-"`
}

// RejectRequest represents a rejection decision with a mandatory reason
type RejectRequest struct {
	Reason    string     `json:"reason" binding:"required,max=500"`
	DecidedBy *uuid.UUID `json:"-"`
}

// CancelApprovalRequest represents a withdrawal of a pending request
type CancelApprovalRequest struct {
	Note        string     `json:"note" binding:"max=500"`
	CancelledBy *uuid.UUID `json:"-"`
}

// ApprovalListFilter represents filtering options for approval request listings
type ApprovalListFilter struct {
	Page           int
	PageSize       int
	OrderBy        string
	OrderDir       string
	Status         *approval.ApprovalStatus
	PeriodID       *uuid.UUID
	RequestedBy    *uuid.UUID
	ApproverUserID *uuid.UUID
	TargetKind     string
}

// ApprovalResponse represents an approval request in API responses
type ApprovalResponse struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	TargetKind     string     `json:"target_kind"`
	TargetID       uuid.UUID  `json:"target_id"`
	PeriodID       uuid.UUID  `json:"period_id"`
	RequestedBy    uuid.UUID  `json:"requested_by"`
	ApproverUserID uuid.UUID  `json:"approver_user_id"`
	Comment        string     `json:"comment,omitempty"`
	Status         string     `json:"status"`
	DecidedBy      *uuid.UUID `json:"decided_by,omitempty"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
	DecisionNote   string     `json:"decision_note,omitempty"`
	Version        int        `json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// PendingSummaryResponse summarizes an approver's pending workload
type PendingSummaryResponse struct {
	ApproverUserID uuid.UUID          `json:"approver_user_id"`
	PendingCount   int64              `json:"pending_count"`
	Requests       []ApprovalResponse `json:"requests"`
}

// ToApprovalResponse converts a domain approval request to a response DTO
func ToApprovalResponse(r *approval.ApprovalRequest) ApprovalResponse {
	return ApprovalResponse{
		ID:             r.ID,
		OrganizationID: r.OrganizationID,
		TargetKind:     string(r.TargetKind),
		TargetID:       r.TargetID,
		PeriodID:       r.PeriodID,
		RequestedBy:    r.RequestedBy,
		ApproverUserID: r.ApproverUserID,
		Comment:        r.Comment,
		Status:         string(r.Status),
		DecidedBy:      r.DecidedBy,
		DecidedAt:      r.DecidedAt,
		DecisionNote:   r.DecisionNote,
		Version:        r.Version,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// ToApprovalResponses converts a slice of domain approval requests to response DTOs
func ToApprovalResponses(requests []approval.ApprovalRequest) []ApprovalResponse {
	responses := make([]ApprovalResponse, len(requests))
	for i := range requests {
		responses[i] = ToApprovalResponse(&requests[i])
	}
	return responses
}
