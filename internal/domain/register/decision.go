package register

import (
	"strings"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// ConfidenceLevel expresses how reliable an estimated figure is
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// IsValid checks if the level is a valid ConfidenceLevel
func (c ConfidenceLevel) IsValid() bool {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}
	return false
}

// String returns the string representation of ConfidenceLevel
func (c ConfidenceLevel) String() string {
	return string(c)
}

// Decision records that a reported figure is an estimate: the method
// used, why, and who approved it. Marking a data point estimated
// requires attaching one of these.
type Decision struct {
	shared.OrgAggregateRoot
	Title                string          `gorm:"type:varchar(200);not null"`
	Method               string          `gorm:"type:varchar(200);not null"` // e.g. "spend-based extrapolation"
	Rationale            string          `gorm:"type:text;not null"`
	Confidence           ConfidenceLevel `gorm:"type:varchar(20);not null"`
	ApproverUserID       *uuid.UUID      `gorm:"type:uuid;index"`
	DecidedAt            time.Time       `gorm:"not null"`
	AffectedDataPointIDs []uuid.UUID     `gorm:"-"` // Loaded separately via DecisionLink rows
}

// TableName returns the table name for GORM
func (Decision) TableName() string {
	return "estimation_decisions"
}

// DecisionLink represents the association between a decision and a data point
type DecisionLink struct {
	DecisionID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	DataPointID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time
}

// TableName returns the table name for GORM
func (DecisionLink) TableName() string {
	return "decision_links"
}

// NewDecision creates a new estimation decision
func NewDecision(organizationID uuid.UUID, title, method, rationale string, confidence ConfidenceLevel, decidedAt time.Time) (*Decision, error) {
	if err := validateDecisionTitle(title); err != nil {
		return nil, err
	}
	if err := validateDecisionMethod(method); err != nil {
		return nil, err
	}
	if strings.TrimSpace(rationale) == "" {
		return nil, shared.NewDomainError("INVALID_RATIONALE", "Rationale cannot be empty")
	}
	if !confidence.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONFIDENCE", "Confidence must be low, medium, or high")
	}
	if decidedAt.IsZero() {
		decidedAt = time.Now()
	}

	decision := &Decision{
		OrgAggregateRoot:     shared.NewOrgAggregateRoot(organizationID),
		Title:                strings.TrimSpace(title),
		Method:               strings.TrimSpace(method),
		Rationale:            rationale,
		Confidence:           confidence,
		DecidedAt:            decidedAt,
		AffectedDataPointIDs: make([]uuid.UUID, 0),
	}

	decision.AddDomainEvent(NewDecisionCreatedEvent(decision))

	return decision, nil
}

// Update updates the decision's content
func (d *Decision) Update(title, method, rationale string, confidence ConfidenceLevel) error {
	if err := validateDecisionTitle(title); err != nil {
		return err
	}
	if err := validateDecisionMethod(method); err != nil {
		return err
	}
	if strings.TrimSpace(rationale) == "" {
		return shared.NewDomainError("INVALID_RATIONALE", "Rationale cannot be empty")
	}
	if !confidence.IsValid() {
		return shared.NewDomainError("INVALID_CONFIDENCE", "Confidence must be low, medium, or high")
	}

	d.Title = strings.TrimSpace(title)
	d.Method = strings.TrimSpace(method)
	d.Rationale = rationale
	d.Confidence = confidence
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewDecisionUpdatedEvent(d))

	return nil
}

// SetApprover records who approved the estimation approach
func (d *Decision) SetApprover(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Approver user ID cannot be empty")
	}

	d.ApproverUserID = &userID
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	return nil
}

// LinkDataPoint marks a data point as affected by this decision
func (d *Decision) LinkDataPoint(dataPointID uuid.UUID) error {
	if dataPointID == uuid.Nil {
		return shared.NewDomainError("INVALID_DATA_POINT_ID", "Data point ID cannot be empty")
	}
	for _, id := range d.AffectedDataPointIDs {
		if id == dataPointID {
			return shared.NewDomainError("ALREADY_LINKED", "Decision already covers this data point")
		}
	}

	d.AffectedDataPointIDs = append(d.AffectedDataPointIDs, dataPointID)
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	return nil
}

// UnlinkDataPoint removes a data point from the decision's scope
func (d *Decision) UnlinkDataPoint(dataPointID uuid.UUID) error {
	for i, id := range d.AffectedDataPointIDs {
		if id == dataPointID {
			d.AffectedDataPointIDs = append(d.AffectedDataPointIDs[:i], d.AffectedDataPointIDs[i+1:]...)
			d.UpdatedAt = time.Now()
			d.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("NOT_LINKED", "Decision does not cover this data point")
}

// Covers returns true if the decision covers the data point
func (d *Decision) Covers(dataPointID uuid.UUID) bool {
	for _, id := range d.AffectedDataPointIDs {
		if id == dataPointID {
			return true
		}
	}
	return false
}

// IsApproved returns true if an approver is recorded
func (d *Decision) IsApproved() bool {
	return d.ApproverUserID != nil
}

// validation functions

func validateDecisionTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	return nil
}

func validateDecisionMethod(method string) error {
	method = strings.TrimSpace(method)
	if method == "" {
		return shared.NewDomainError("INVALID_METHOD", "Method cannot be empty")
	}
	if len(method) > 200 {
		return shared.NewDomainError("INVALID_METHOD", "Method cannot exceed 200 characters")
	}
	return nil
}
