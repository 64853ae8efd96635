package register

import (
	"strings"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// AssumptionStatus represents the lifecycle status of an assumption
type AssumptionStatus string

const (
	AssumptionStatusActive  AssumptionStatus = "active"
	AssumptionStatusRetired AssumptionStatus = "retired"
)

// IsValid checks if the status is a valid AssumptionStatus
func (s AssumptionStatus) IsValid() bool {
	return s == AssumptionStatusActive || s == AssumptionStatusRetired
}

// String returns the string representation of AssumptionStatus
func (s AssumptionStatus) String() string {
	return string(s)
}

// Assumption records a statement underlying reported figures, either
// organization-wide or linked to specific data points
type Assumption struct {
	shared.OrgAggregateRoot
	Title              string           `gorm:"type:varchar(200);not null"`
	Body               string           `gorm:"type:text;not null"`
	Category           string           `gorm:"type:varchar(100);index"`
	OwnerUserID        *uuid.UUID       `gorm:"type:uuid;index"`
	Status             AssumptionStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ReviewBy           *time.Time       // Date by which the assumption should be revisited
	RetiredAt          *time.Time
	LinkedDataPointIDs []uuid.UUID `gorm:"-"` // Loaded separately via AssumptionLink rows
}

// TableName returns the table name for GORM
func (Assumption) TableName() string {
	return "assumptions"
}

// AssumptionLink represents the association between an assumption and a data point
type AssumptionLink struct {
	AssumptionID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	DataPointID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time
}

// TableName returns the table name for GORM
func (AssumptionLink) TableName() string {
	return "assumption_links"
}

// NewAssumption creates a new active assumption
func NewAssumption(organizationID uuid.UUID, title, body, category string) (*Assumption, error) {
	if err := validateAssumptionTitle(title); err != nil {
		return nil, err
	}
	if err := validateAssumptionBody(body); err != nil {
		return nil, err
	}
	if len(category) > 100 {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 100 characters")
	}

	assumption := &Assumption{
		OrgAggregateRoot:   shared.NewOrgAggregateRoot(organizationID),
		Title:              strings.TrimSpace(title),
		Body:               body,
		Category:           strings.TrimSpace(category),
		Status:             AssumptionStatusActive,
		LinkedDataPointIDs: make([]uuid.UUID, 0),
	}

	assumption.AddDomainEvent(NewAssumptionCreatedEvent(assumption))

	return assumption, nil
}

// Update updates the assumption's content
func (a *Assumption) Update(title, body, category string) error {
	if a.Status == AssumptionStatusRetired {
		return shared.NewDomainError("INVALID_STATE", "A retired assumption cannot be updated")
	}
	if err := validateAssumptionTitle(title); err != nil {
		return err
	}
	if err := validateAssumptionBody(body); err != nil {
		return err
	}
	if len(category) > 100 {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 100 characters")
	}

	a.Title = strings.TrimSpace(title)
	a.Body = body
	a.Category = strings.TrimSpace(category)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAssumptionUpdatedEvent(a))

	return nil
}

// SetOwner assigns the assumption owner
func (a *Assumption) SetOwner(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Owner user ID cannot be empty")
	}

	a.OwnerUserID = &userID
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// SetReviewBy sets the date by which the assumption should be revisited
func (a *Assumption) SetReviewBy(date time.Time) error {
	if date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Review date cannot be zero")
	}

	a.ReviewBy = &date
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// ClearReviewBy removes the review date
func (a *Assumption) ClearReviewBy() {
	a.ReviewBy = nil
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// LinkDataPoint links the assumption to a data point
func (a *Assumption) LinkDataPoint(dataPointID uuid.UUID) error {
	if dataPointID == uuid.Nil {
		return shared.NewDomainError("INVALID_DATA_POINT_ID", "Data point ID cannot be empty")
	}
	for _, id := range a.LinkedDataPointIDs {
		if id == dataPointID {
			return shared.NewDomainError("ALREADY_LINKED", "Assumption is already linked to this data point")
		}
	}

	a.LinkedDataPointIDs = append(a.LinkedDataPointIDs, dataPointID)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAssumptionLinkedEvent(a, dataPointID))

	return nil
}

// UnlinkDataPoint removes the link to a data point
func (a *Assumption) UnlinkDataPoint(dataPointID uuid.UUID) error {
	for i, id := range a.LinkedDataPointIDs {
		if id == dataPointID {
			a.LinkedDataPointIDs = append(a.LinkedDataPointIDs[:i], a.LinkedDataPointIDs[i+1:]...)
			a.UpdatedAt = time.Now()
			a.IncrementVersion()
			a.AddDomainEvent(NewAssumptionUnlinkedEvent(a, dataPointID))
			return nil
		}
	}
	return shared.NewDomainError("NOT_LINKED", "Assumption is not linked to this data point")
}

// IsLinkedTo returns true if the assumption is linked to the data point
func (a *Assumption) IsLinkedTo(dataPointID uuid.UUID) bool {
	for _, id := range a.LinkedDataPointIDs {
		if id == dataPointID {
			return true
		}
	}
	return false
}

// Retire retires the assumption; retired assumptions stay readable
// but are skipped by rollover
func (a *Assumption) Retire() error {
	if a.Status == AssumptionStatusRetired {
		return shared.NewDomainError("ALREADY_RETIRED", "Assumption is already retired")
	}

	now := time.Now()
	a.Status = AssumptionStatusRetired
	a.RetiredAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()

	a.AddDomainEvent(NewAssumptionRetiredEvent(a))

	return nil
}

// Reactivate brings a retired assumption back into use
func (a *Assumption) Reactivate() error {
	if a.Status == AssumptionStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Assumption is already active")
	}

	a.Status = AssumptionStatusActive
	a.RetiredAt = nil
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// IsActive returns true if the assumption is active
func (a *Assumption) IsActive() bool {
	return a.Status == AssumptionStatusActive
}

// NeedsReview returns true if the review date has passed
func (a *Assumption) NeedsReview(at time.Time) bool {
	return a.Status == AssumptionStatusActive && a.ReviewBy != nil && at.After(*a.ReviewBy)
}

// validation functions

func validateAssumptionTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	return nil
}

func validateAssumptionBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return shared.NewDomainError("INVALID_BODY", "Body cannot be empty")
	}
	return nil
}
