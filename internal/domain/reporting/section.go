package reporting

import (
	"regexp"
	"strings"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxSectionDepth is the maximum nesting depth of the section tree
const MaxSectionDepth = 3

// SectionStatus represents the working status of a report section
type SectionStatus string

const (
	SectionStatusNotStarted     SectionStatus = "not_started"
	SectionStatusInProgress     SectionStatus = "in_progress"
	SectionStatusReadyForReview SectionStatus = "ready_for_review"
	SectionStatusApproved       SectionStatus = "approved"
)

// IsValid checks if the status is a valid SectionStatus
func (s SectionStatus) IsValid() bool {
	switch s {
	case SectionStatusNotStarted, SectionStatusInProgress, SectionStatusReadyForReview, SectionStatusApproved:
		return true
	}
	return false
}

// String returns the string representation of SectionStatus
func (s SectionStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
// Regressions go through Reopen, which carries a reason
func (s SectionStatus) CanTransitionTo(target SectionStatus) bool {
	switch s {
	case SectionStatusNotStarted:
		return target == SectionStatusInProgress
	case SectionStatusInProgress:
		return target == SectionStatusReadyForReview
	case SectionStatusReadyForReview:
		return target == SectionStatusApproved || target == SectionStatusInProgress
	case SectionStatusApproved:
		return false // Regression only via Reopen
	}
	return false
}

// ReportSection represents one section of a disclosure report
// Sections form a tree per period, up to MaxSectionDepth levels deep
type ReportSection struct {
	shared.OrgAggregateRoot
	PeriodID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ParentID     *uuid.UUID      `gorm:"type:uuid;index"`
	Depth        int             `gorm:"not null;default:1"`                                                       // 1 = top level
	Code         string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_section_period_code,priority:2"` // e.g. "E1", "E1.1"
	Title        string          `gorm:"type:varchar(200);not null"`
	Description  string          `gorm:"type:text"`
	FrameworkRef string          `gorm:"type:varchar(100)"` // e.g. "ESRS E1 §44"
	SortOrder    int             `gorm:"not null;default:0"`
	Weight       decimal.Decimal `gorm:"type:decimal(8,4);not null;default:1"` // Completeness rollup weight
	OwnerUserID  *uuid.UUID      `gorm:"type:uuid;index"`
	Status       SectionStatus   `gorm:"type:varchar(20);not null;default:'not_started'"`
	IsActive     bool            `gorm:"not null;default:true"` // Deactivated sections are excluded from scoring
	ApprovedAt   *time.Time
	ReopenReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ReportSection) TableName() string {
	return "report_sections"
}

// NewReportSection creates a new top-level report section
func NewReportSection(organizationID, periodID uuid.UUID, code, title string) (*ReportSection, error) {
	if periodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period ID cannot be empty")
	}
	if err := validateSectionCode(code); err != nil {
		return nil, err
	}
	if err := validateSectionTitle(title); err != nil {
		return nil, err
	}

	section := &ReportSection{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(organizationID),
		PeriodID:         periodID,
		Depth:            1,
		Code:             strings.ToUpper(strings.TrimSpace(code)),
		Title:            strings.TrimSpace(title),
		Weight:           decimal.NewFromInt(1),
		Status:           SectionStatusNotStarted,
		IsActive:         true,
	}

	section.AddDomainEvent(NewSectionCreatedEvent(section))

	return section, nil
}

// NewChildSection creates a section nested under a parent
func NewChildSection(organizationID, periodID uuid.UUID, parent *ReportSection, code, title string) (*ReportSection, error) {
	if parent == nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent section is required")
	}
	if parent.PeriodID != periodID {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent section belongs to a different period")
	}
	if parent.Depth >= MaxSectionDepth {
		return nil, shared.NewDomainError("MAX_DEPTH_EXCEEDED", "Section tree cannot exceed three levels")
	}

	section, err := NewReportSection(organizationID, periodID, code, title)
	if err != nil {
		return nil, err
	}

	parentID := parent.ID
	section.ParentID = &parentID
	section.Depth = parent.Depth + 1

	return section, nil
}

// Update updates the section's descriptive fields
func (s *ReportSection) Update(title, description, frameworkRef string) error {
	if err := validateSectionTitle(title); err != nil {
		return err
	}
	if frameworkRef != "" && len(frameworkRef) > 100 {
		return shared.NewDomainError("INVALID_FRAMEWORK_REF", "Framework reference cannot exceed 100 characters")
	}

	s.Title = strings.TrimSpace(title)
	s.Description = description
	s.FrameworkRef = frameworkRef
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSectionUpdatedEvent(s))

	return nil
}

// SetSortOrder sets the display sort order
func (s *ReportSection) SetSortOrder(order int) {
	s.SortOrder = order
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// SetWeight sets the completeness rollup weight
func (s *ReportSection) SetWeight(weight decimal.Decimal) error {
	if weight.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_WEIGHT", "Section weight must be positive")
	}

	s.Weight = weight
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// AssignOwner assigns the user responsible for this section
func (s *ReportSection) AssignOwner(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Owner user ID cannot be empty")
	}

	s.OwnerUserID = &userID
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSectionOwnerAssignedEvent(s, userID))

	return nil
}

// ClearOwner removes the section owner
func (s *ReportSection) ClearOwner() {
	s.OwnerUserID = nil
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// MoveTo reparents the section
// A nil parent moves it to the top level; cycle checks run in the
// application service, which sees the whole tree
func (s *ReportSection) MoveTo(parent *ReportSection) error {
	if parent == nil {
		s.ParentID = nil
		s.Depth = 1
	} else {
		if parent.ID == s.ID {
			return shared.NewDomainError("INVALID_PARENT", "Section cannot be its own parent")
		}
		if parent.PeriodID != s.PeriodID {
			return shared.NewDomainError("INVALID_PARENT", "Parent section belongs to a different period")
		}
		if parent.Depth >= MaxSectionDepth {
			return shared.NewDomainError("MAX_DEPTH_EXCEEDED", "Section tree cannot exceed three levels")
		}
		parentID := parent.ID
		s.ParentID = &parentID
		s.Depth = parent.Depth + 1
	}

	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSectionMovedEvent(s))

	return nil
}

// Start moves the section from not started to in progress
func (s *ReportSection) Start() error {
	return s.transition(SectionStatusInProgress)
}

// SubmitForReview marks the section ready for review
func (s *ReportSection) SubmitForReview() error {
	return s.transition(SectionStatusReadyForReview)
}

// Approve marks the section approved
func (s *ReportSection) Approve() error {
	if err := s.transition(SectionStatusApproved); err != nil {
		return err
	}

	now := time.Now()
	s.ApprovedAt = &now

	return nil
}

// SendBack returns a section from review to in progress (reviewer rejected)
func (s *ReportSection) SendBack() error {
	if s.Status != SectionStatusReadyForReview {
		return shared.NewDomainError("INVALID_STATE", "Only a section in review can be sent back")
	}
	return s.transition(SectionStatusInProgress)
}

// Reopen regresses an approved section back to in progress with a reason
func (s *ReportSection) Reopen(reason string) error {
	if s.Status != SectionStatusApproved {
		return shared.NewDomainError("INVALID_STATE", "Only an approved section can be reopened")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("REASON_REQUIRED", "Reopening an approved section requires a reason")
	}
	if len(reason) > 500 {
		return shared.NewDomainError("INVALID_REASON", "Reason cannot exceed 500 characters")
	}

	oldStatus := s.Status
	s.Status = SectionStatusInProgress
	s.ApprovedAt = nil
	s.ReopenReason = reason
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSectionReopenedEvent(s, oldStatus, reason))

	return nil
}

func (s *ReportSection) transition(target SectionStatus) error {
	if !s.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", "Section cannot move from "+s.Status.String()+" to "+target.String())
	}

	oldStatus := s.Status
	s.Status = target
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSectionStatusChangedEvent(s, oldStatus, target))

	return nil
}

// Deactivate excludes the section from scoring and editing
// Used instead of delete once data points carry recorded values
func (s *ReportSection) Deactivate() error {
	if !s.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Section is already deactivated")
	}

	s.IsActive = false
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSectionDeactivatedEvent(s))

	return nil
}

// Reactivate brings a deactivated section back
func (s *ReportSection) Reactivate() error {
	if s.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Section is already active")
	}

	s.IsActive = true
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// IsApproved returns true if the section is approved
func (s *ReportSection) IsApproved() bool {
	return s.Status == SectionStatusApproved
}

// IsTopLevel returns true if the section has no parent
func (s *ReportSection) IsTopLevel() bool {
	return s.ParentID == nil
}

// Validation functions

var sectionCodeRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]*$`)

func validateSectionCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Section code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Section code cannot exceed 50 characters")
	}
	if !sectionCodeRegex.MatchString(code) {
		return shared.NewDomainError("INVALID_CODE", "Section code can only contain letters, numbers, dots, underscores, and hyphens")
	}
	return nil
}

func validateSectionTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Section title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Section title cannot exceed 200 characters")
	}
	return nil
}
