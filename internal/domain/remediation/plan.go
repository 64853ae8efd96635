package remediation

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// PlanStatus represents the lifecycle status of a remediation plan
type PlanStatus string

const (
	PlanStatusDraft     PlanStatus = "draft"
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusCancelled PlanStatus = "cancelled"
)

// IsValid checks if the plan status is valid
func (s PlanStatus) IsValid() bool {
	switch s {
	case PlanStatusDraft, PlanStatusActive, PlanStatusCompleted, PlanStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s PlanStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PlanStatus) CanTransitionTo(target PlanStatus) bool {
	switch s {
	case PlanStatusDraft:
		return target == PlanStatusActive || target == PlanStatusCancelled
	case PlanStatusActive:
		return target == PlanStatusCompleted || target == PlanStatusCancelled
	case PlanStatusCompleted, PlanStatusCancelled:
		return false
	}
	return false
}

// IsTerminal checks if the status is a terminal state
func (s PlanStatus) IsTerminal() bool {
	return s == PlanStatusCompleted || s == PlanStatusCancelled
}

// ActionItemStatus represents the progress of a single action item
type ActionItemStatus string

const (
	ActionItemStatusTodo  ActionItemStatus = "todo"
	ActionItemStatusDoing ActionItemStatus = "doing"
	ActionItemStatusDone  ActionItemStatus = "done"
)

// IsValid checks if the action item status is valid
func (s ActionItemStatus) IsValid() bool {
	switch s {
	case ActionItemStatusTodo, ActionItemStatusDoing, ActionItemStatusDone:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s ActionItemStatus) String() string {
	return string(s)
}

// ActionItem represents a single unit of work inside a remediation plan
type ActionItem struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key"`
	PlanID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	Description    string           `gorm:"type:varchar(500);not null"`
	AssigneeUserID *uuid.UUID       `gorm:"type:uuid;index"`
	Status         ActionItemStatus `gorm:"type:varchar(20);not null;default:'todo'"`
	DoneNote       string           `gorm:"type:varchar(500)"`
	CreatedAt      time.Time        `gorm:"not null"`
	UpdatedAt      time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ActionItem) TableName() string {
	return "remediation_action_items"
}

// NewActionItem creates a new action item for a plan
func NewActionItem(planID uuid.UUID, description string, assigneeUserID *uuid.UUID) (*ActionItem, error) {
	if err := validateActionDescription(description); err != nil {
		return nil, err
	}

	now := time.Now()
	return &ActionItem{
		ID:             uuid.New(),
		PlanID:         planID,
		Description:    description,
		AssigneeUserID: assigneeUserID,
		Status:         ActionItemStatusTodo,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// UpdateDescription updates the item description
func (i *ActionItem) UpdateDescription(description string) error {
	if err := validateActionDescription(description); err != nil {
		return err
	}
	i.Description = description
	i.UpdatedAt = time.Now()
	return nil
}

// Assign assigns the item to a user
func (i *ActionItem) Assign(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_ASSIGNEE", "Assignee user ID cannot be empty")
	}
	i.AssigneeUserID = &userID
	i.UpdatedAt = time.Now()
	return nil
}

// Unassign removes the current assignee
func (i *ActionItem) Unassign() {
	i.AssigneeUserID = nil
	i.UpdatedAt = time.Now()
}

// Start moves the item from todo to doing
func (i *ActionItem) Start() error {
	if i.Status != ActionItemStatusTodo {
		return shared.NewDomainError("INVALID_STATE", "Only todo items can be started")
	}
	i.Status = ActionItemStatusDoing
	i.UpdatedAt = time.Now()
	return nil
}

// Complete marks the item as done with an optional note
// Allowed from todo as well, so quick wins do not need an intermediate step
func (i *ActionItem) Complete(note string) error {
	if i.Status == ActionItemStatusDone {
		return shared.NewDomainError("ALREADY_DONE", "Action item is already done")
	}
	if len(note) > 500 {
		return shared.NewDomainError("INVALID_NOTE", "Done note cannot exceed 500 characters")
	}
	i.Status = ActionItemStatusDone
	i.DoneNote = note
	i.UpdatedAt = time.Now()
	return nil
}

// Reopen moves a done item back to doing and clears the done note
func (i *ActionItem) Reopen() error {
	if i.Status != ActionItemStatusDone {
		return shared.NewDomainError("NOT_DONE", "Only done items can be reopened")
	}
	i.Status = ActionItemStatusDoing
	i.DoneNote = ""
	i.UpdatedAt = time.Now()
	return nil
}

// IsDone checks if the item is done
func (i *ActionItem) IsDone() bool {
	return i.Status == ActionItemStatusDone
}

// RemediationPlan coordinates the work needed to close one or more disclosure gaps.
// Items progress only while the plan is active, and completing the plan requires
// every item to be done. Completion resolves the attached gaps.
type RemediationPlan struct {
	shared.OrgAggregateRoot
	Title            string       `gorm:"type:varchar(200);not null"`
	Description      string       `gorm:"type:text"`
	OwnerUserID      *uuid.UUID   `gorm:"type:uuid;index"`
	DueDate          *time.Time   `gorm:"index"`
	Status           PlanStatus   `gorm:"type:varchar(20);not null;default:'draft';index"`
	GapIDs           []uuid.UUID  `gorm:"-"`
	Items            []ActionItem `gorm:"foreignKey:PlanID;references:ID"`
	ActivatedAt      *time.Time
	CompletedAt      *time.Time
	CancelledAt      *time.Time
	CancelReason     string `gorm:"type:varchar(500)"`
	OverdueFlaggedAt *time.Time
}

// TableName returns the table name for GORM
func (RemediationPlan) TableName() string {
	return "remediation_plans"
}

// PlanGap links a remediation plan to a disclosure gap it addresses
type PlanGap struct {
	PlanID         uuid.UUID `gorm:"type:uuid;primary_key"`
	GapID          uuid.UUID `gorm:"type:uuid;primary_key;index"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PlanGap) TableName() string {
	return "remediation_plan_gaps"
}

// NewRemediationPlan creates a new remediation plan in draft status
func NewRemediationPlan(organizationID uuid.UUID, title, description string) (*RemediationPlan, error) {
	if err := validatePlanTitle(title); err != nil {
		return nil, err
	}

	plan := &RemediationPlan{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(organizationID),
		Title:            title,
		Description:      description,
		Status:           PlanStatusDraft,
		GapIDs:           make([]uuid.UUID, 0),
		Items:            make([]ActionItem, 0),
	}

	plan.AddDomainEvent(NewPlanCreatedEvent(plan))

	return plan, nil
}

// Update updates the plan title and description
func (p *RemediationPlan) Update(title, description string) error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update a completed or cancelled plan")
	}
	if err := validatePlanTitle(title); err != nil {
		return err
	}

	p.Title = title
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPlanUpdatedEvent(p))

	return nil
}

// SetOwner assigns the plan owner
func (p *RemediationPlan) SetOwner(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_OWNER", "Owner user ID cannot be empty")
	}
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update a completed or cancelled plan")
	}
	p.OwnerUserID = &userID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// ClearOwner removes the plan owner
func (p *RemediationPlan) ClearOwner() {
	p.OwnerUserID = nil
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetDueDate sets the plan due date and resets any overdue flag
func (p *RemediationPlan) SetDueDate(due time.Time) error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update a completed or cancelled plan")
	}
	p.DueDate = &due
	p.OverdueFlaggedAt = nil
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// ClearDueDate removes the plan due date
func (p *RemediationPlan) ClearDueDate() {
	p.DueDate = nil
	p.OverdueFlaggedAt = nil
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// AttachGap attaches a disclosure gap to the plan.
// The caller must ensure the gap belongs to the same organization.
func (p *RemediationPlan) AttachGap(gapID uuid.UUID) error {
	if gapID == uuid.Nil {
		return shared.NewDomainError("INVALID_GAP_ID", "Gap ID cannot be empty")
	}
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot attach gaps to a completed or cancelled plan")
	}
	if p.AddressesGap(gapID) {
		return shared.NewDomainError("ALREADY_ATTACHED", "Gap is already attached to this plan")
	}

	p.GapIDs = append(p.GapIDs, gapID)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPlanGapAttachedEvent(p, gapID))

	return nil
}

// DetachGap detaches a disclosure gap from the plan.
// An active plan must keep at least one gap attached.
func (p *RemediationPlan) DetachGap(gapID uuid.UUID) error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot detach gaps from a completed or cancelled plan")
	}
	if p.Status == PlanStatusActive && len(p.GapIDs) == 1 && p.GapIDs[0] == gapID {
		return shared.NewDomainError("LAST_GAP", "An active plan must address at least one gap")
	}

	for idx, id := range p.GapIDs {
		if id == gapID {
			p.GapIDs = append(p.GapIDs[:idx], p.GapIDs[idx+1:]...)
			p.UpdatedAt = time.Now()
			p.IncrementVersion()
			p.AddDomainEvent(NewPlanGapDetachedEvent(p, gapID))
			return nil
		}
	}

	return shared.NewDomainError("NOT_ATTACHED", "Gap is not attached to this plan")
}

// AddressesGap checks if the plan addresses the given gap
func (p *RemediationPlan) AddressesGap(gapID uuid.UUID) bool {
	for _, id := range p.GapIDs {
		if id == gapID {
			return true
		}
	}
	return false
}

// AddItem adds a new action item to the plan.
// Allowed while the plan is draft or active.
func (p *RemediationPlan) AddItem(description string, assigneeUserID *uuid.UUID) (*ActionItem, error) {
	if p.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a completed or cancelled plan")
	}

	item, err := NewActionItem(p.ID, description, assigneeUserID)
	if err != nil {
		return nil, err
	}

	p.Items = append(p.Items, *item)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return item, nil
}

// UpdateItemDescription updates the description of an existing item
func (p *RemediationPlan) UpdateItemDescription(itemID uuid.UUID, description string) error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update items on a completed or cancelled plan")
	}

	idx, err := p.findItem(itemID)
	if err != nil {
		return err
	}
	if err := p.Items[idx].UpdateDescription(description); err != nil {
		return err
	}

	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// AssignItem assigns an existing item to a user
func (p *RemediationPlan) AssignItem(itemID, userID uuid.UUID) error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update items on a completed or cancelled plan")
	}

	idx, err := p.findItem(itemID)
	if err != nil {
		return err
	}
	if err := p.Items[idx].Assign(userID); err != nil {
		return err
	}

	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// UnassignItem removes the assignee from an existing item
func (p *RemediationPlan) UnassignItem(itemID uuid.UUID) error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update items on a completed or cancelled plan")
	}

	idx, err := p.findItem(itemID)
	if err != nil {
		return err
	}
	p.Items[idx].Unassign()

	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// StartItem moves an item to doing.
// Items only progress while the plan is active.
func (p *RemediationPlan) StartItem(itemID uuid.UUID) error {
	if p.Status != PlanStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Items can only progress on an active plan")
	}

	idx, err := p.findItem(itemID)
	if err != nil {
		return err
	}
	if err := p.Items[idx].Start(); err != nil {
		return err
	}

	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// CompleteItem marks an item as done with an optional note
func (p *RemediationPlan) CompleteItem(itemID uuid.UUID, note string) error {
	if p.Status != PlanStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Items can only progress on an active plan")
	}

	idx, err := p.findItem(itemID)
	if err != nil {
		return err
	}
	if err := p.Items[idx].Complete(note); err != nil {
		return err
	}

	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// ReopenItem moves a done item back to doing
func (p *RemediationPlan) ReopenItem(itemID uuid.UUID) error {
	if p.Status != PlanStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Items can only progress on an active plan")
	}

	idx, err := p.findItem(itemID)
	if err != nil {
		return err
	}
	if err := p.Items[idx].Reopen(); err != nil {
		return err
	}

	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// RemoveItem removes an item from the plan.
// Done items record finished work and cannot be removed.
func (p *RemediationPlan) RemoveItem(itemID uuid.UUID) error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a completed or cancelled plan")
	}

	idx, err := p.findItem(itemID)
	if err != nil {
		return err
	}
	if p.Items[idx].IsDone() {
		return shared.NewDomainError("CANNOT_REMOVE_DONE", "Done items cannot be removed from a plan")
	}

	p.Items = append(p.Items[:idx], p.Items[idx+1:]...)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Activate transitions the plan from draft to active.
// Requires at least one attached gap and at least one action item.
func (p *RemediationPlan) Activate() error {
	if !p.Status.CanTransitionTo(PlanStatusActive) {
		return shared.NewDomainError("INVALID_TRANSITION", "Only draft plans can be activated")
	}
	if len(p.GapIDs) == 0 {
		return shared.NewDomainError("NO_GAPS", "Plan must address at least one gap before activation")
	}
	if len(p.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Plan must have at least one action item before activation")
	}

	now := time.Now()
	p.Status = PlanStatusActive
	p.ActivatedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPlanActivatedEvent(p))

	return nil
}

// Complete transitions the plan from active to completed.
// Every action item must be done. The emitted event carries the attached
// gap IDs so the gaps can be resolved.
func (p *RemediationPlan) Complete() error {
	if !p.Status.CanTransitionTo(PlanStatusCompleted) {
		return shared.NewDomainError("INVALID_TRANSITION", "Only active plans can be completed")
	}
	if open := p.OpenItemCount(); open > 0 {
		return shared.NewDomainError("ITEMS_INCOMPLETE", "All action items must be done before completing the plan")
	}

	now := time.Now()
	p.Status = PlanStatusCompleted
	p.CompletedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPlanCompletedEvent(p))

	return nil
}

// Cancel transitions the plan to cancelled with a reason
func (p *RemediationPlan) Cancel(reason string) error {
	if !p.Status.CanTransitionTo(PlanStatusCancelled) {
		return shared.NewDomainError("INVALID_TRANSITION", "Only draft or active plans can be cancelled")
	}
	if reason == "" {
		return shared.NewDomainError("REASON_REQUIRED", "Cancellation reason is required")
	}
	if len(reason) > 500 {
		return shared.NewDomainError("INVALID_REASON", "Cancellation reason cannot exceed 500 characters")
	}

	now := time.Now()
	oldStatus := p.Status
	p.Status = PlanStatusCancelled
	p.CancelledAt = &now
	p.CancelReason = reason
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPlanCancelledEvent(p, oldStatus, reason))

	return nil
}

// FlagOverdue records that the plan was detected past its due date.
// Returns false when the plan is not overdue or was already flagged.
func (p *RemediationPlan) FlagOverdue(at time.Time) bool {
	if !p.IsOverdue(at) || p.OverdueFlaggedAt != nil {
		return false
	}

	p.OverdueFlaggedAt = &at
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPlanOverdueFlaggedEvent(p))

	return true
}

// IsOverdue checks if the plan is active and past its due date
func (p *RemediationPlan) IsOverdue(at time.Time) bool {
	return p.Status == PlanStatusActive && p.DueDate != nil && p.DueDate.Before(at)
}

// IsActive checks if the plan is active
func (p *RemediationPlan) IsActive() bool {
	return p.Status == PlanStatusActive
}

// OpenItemCount returns the number of items not yet done
func (p *RemediationPlan) OpenItemCount() int {
	count := 0
	for _, item := range p.Items {
		if !item.IsDone() {
			count++
		}
	}
	return count
}

// DoneItemCount returns the number of done items
func (p *RemediationPlan) DoneItemCount() int {
	return len(p.Items) - p.OpenItemCount()
}

// FindItem returns the action item with the given ID
func (p *RemediationPlan) FindItem(itemID uuid.UUID) (*ActionItem, error) {
	idx, err := p.findItem(itemID)
	if err != nil {
		return nil, err
	}
	return &p.Items[idx], nil
}

func (p *RemediationPlan) findItem(itemID uuid.UUID) (int, error) {
	for idx := range p.Items {
		if p.Items[idx].ID == itemID {
			return idx, nil
		}
	}
	return -1, shared.NewDomainError("ITEM_NOT_FOUND", "Action item not found")
}

func validatePlanTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	return nil
}

func validateActionDescription(description string) error {
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot be empty")
	}
	if len(description) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot exceed 500 characters")
	}
	return nil
}
