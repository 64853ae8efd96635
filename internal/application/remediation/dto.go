package remediation

import (
	"time"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/remediation"
)

// ==================== Plan DTOs ====================

// CreatePlanRequest represents a request to create a remediation plan
type CreatePlanRequest struct {
	Title       string      `json:"title" binding:"required,min=1,max=200"`
	Description string      `json:"description"`
	OwnerUserID *uuid.UUID  `json:"owner_user_id"`
	DueDate     *time.Time  `json:"due_date"`
	GapIDs      []uuid.UUID `json:"gap_ids"`
	CreatedBy   *uuid.UUID  `json:"-"`
}

// UpdatePlanRequest represents a request to update a plan's title and description
type UpdatePlanRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description"`
}

// SetOwnerRequest represents a request to assign the plan owner
type SetOwnerRequest struct {
	OwnerUserID uuid.UUID `json:"owner_user_id" binding:"required"`
}

// SetDueDateRequest represents a request to set the plan due date
type SetDueDateRequest struct {
	DueDate time.Time `json:"due_date" binding:"required"`
}

// CancelPlanRequest represents a request to cancel a plan
type CancelPlanRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// CompletePlanRequest represents a request to complete a plan.
// The resolution note is applied to every gap the plan addresses.
type CompletePlanRequest struct {
	ResolutionNote string     `json:"resolution_note" binding:"required,max=1000"`
	CompletedBy    *uuid.UUID `json:"-"`
}

// PlanListFilter represents filtering options for plan listings
type PlanListFilter struct {
	Page        int
	PageSize    int
	OrderBy     string
	OrderDir    string
	Search      string
	Status      *remediation.PlanStatus
	OwnerUserID *uuid.UUID
	GapID       *uuid.UUID
	Overdue     bool
}

// ==================== Action Item DTOs ====================

// AddItemRequest represents a request to add an action item to a plan
type AddItemRequest struct {
	Description    string     `json:"description" binding:"required,min=1,max=500"`
	AssigneeUserID *uuid.UUID `json:"assignee_user_id"`
}

// UpdateItemRequest represents a request to update an action item description
type UpdateItemRequest struct {
	Description string `json:"description" binding:"required,min=1,max=500"`
}

// AssignItemRequest represents a request to assign an action item
type AssignItemRequest struct {
	AssigneeUserID uuid.UUID `json:"assignee_user_id" binding:"required"`
}

// CompleteItemRequest represents a request to mark an action item done
type CompleteItemRequest struct {
	Note string `json:"note" binding:"max=500"`
}

// ==================== Responses ====================

// ActionItemResponse represents an action item in API responses
type ActionItemResponse struct {
	ID             uuid.UUID  `json:"id"`
	PlanID         uuid.UUID  `json:"plan_id"`
	Description    string     `json:"description"`
	AssigneeUserID *uuid.UUID `json:"assignee_user_id,omitempty"`
	Status         string     `json:"status"`
	DoneNote       string     `json:"done_note,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// PlanResponse represents a remediation plan in API responses
type PlanResponse struct {
	ID               uuid.UUID            `json:"id"`
	OrganizationID   uuid.UUID            `json:"organization_id"`
	Title            string               `json:"title"`
	Description      string               `json:"description,omitempty"`
	OwnerUserID      *uuid.UUID           `json:"owner_user_id,omitempty"`
	DueDate          *time.Time           `json:"due_date,omitempty"`
	Status           string               `json:"status"`
	GapIDs           []uuid.UUID          `json:"gap_ids"`
	Items            []ActionItemResponse `json:"items"`
	OpenItemCount    int                  `json:"open_item_count"`
	DoneItemCount    int                  `json:"done_item_count"`
	ActivatedAt      *time.Time           `json:"activated_at,omitempty"`
	CompletedAt      *time.Time           `json:"completed_at,omitempty"`
	CancelledAt      *time.Time           `json:"cancelled_at,omitempty"`
	CancelReason     string               `json:"cancel_reason,omitempty"`
	OverdueFlaggedAt *time.Time           `json:"overdue_flagged_at,omitempty"`
	CreatedBy        *uuid.UUID           `json:"created_by,omitempty"`
	Version          int                  `json:"version"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// OverdueSweepResult summarizes one run of the overdue detection job
type OverdueSweepResult struct {
	Scanned int `json:"scanned"`
	Flagged int `json:"flagged"`
	Failed  int `json:"failed"`
}

// ToActionItemResponse converts a domain action item to a response DTO
func ToActionItemResponse(item *remediation.ActionItem) ActionItemResponse {
	return ActionItemResponse{
		ID:             item.ID,
		PlanID:         item.PlanID,
		Description:    item.Description,
		AssigneeUserID: item.AssigneeUserID,
		Status:         string(item.Status),
		DoneNote:       item.DoneNote,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

// ToPlanResponse converts a domain plan to a response DTO
func ToPlanResponse(plan *remediation.RemediationPlan) PlanResponse {
	items := make([]ActionItemResponse, len(plan.Items))
	for i := range plan.Items {
		items[i] = ToActionItemResponse(&plan.Items[i])
	}
	gapIDs := plan.GapIDs
	if gapIDs == nil {
		gapIDs = make([]uuid.UUID, 0)
	}

	return PlanResponse{
		ID:               plan.ID,
		OrganizationID:   plan.OrganizationID,
		Title:            plan.Title,
		Description:      plan.Description,
		OwnerUserID:      plan.OwnerUserID,
		DueDate:          plan.DueDate,
		Status:           string(plan.Status),
		GapIDs:           gapIDs,
		Items:            items,
		OpenItemCount:    plan.OpenItemCount(),
		DoneItemCount:    plan.DoneItemCount(),
		ActivatedAt:      plan.ActivatedAt,
		CompletedAt:      plan.CompletedAt,
		CancelledAt:      plan.CancelledAt,
		CancelReason:     plan.CancelReason,
		OverdueFlaggedAt: plan.OverdueFlaggedAt,
		CreatedBy:        plan.GetCreatedBy(),
		Version:          plan.Version,
		CreatedAt:        plan.CreatedAt,
		UpdatedAt:        plan.UpdatedAt,
	}
}

// ToPlanResponses converts a slice of domain plans to response DTOs
func ToPlanResponses(plans []remediation.RemediationPlan) []PlanResponse {
	responses := make([]PlanResponse, len(plans))
	for i := range plans {
		responses[i] = ToPlanResponse(&plans[i])
	}
	return responses
}
