package register

import (
	"strings"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// GapSeverity grades how serious a disclosure gap is
type GapSeverity string

const (
	GapSeverityLow      GapSeverity = "low"
	GapSeverityMedium   GapSeverity = "medium"
	GapSeverityHigh     GapSeverity = "high"
	GapSeverityCritical GapSeverity = "critical"
)

// IsValid checks if the severity is a valid GapSeverity
func (s GapSeverity) IsValid() bool {
	switch s {
	case GapSeverityLow, GapSeverityMedium, GapSeverityHigh, GapSeverityCritical:
		return true
	}
	return false
}

// String returns the string representation of GapSeverity
func (s GapSeverity) String() string {
	return string(s)
}

// GapStatus represents the lifecycle status of a disclosure gap
type GapStatus string

const (
	GapStatusOpen          GapStatus = "open"
	GapStatusAcknowledged  GapStatus = "acknowledged"
	GapStatusInRemediation GapStatus = "in_remediation"
	GapStatusResolved      GapStatus = "resolved"
	GapStatusAccepted      GapStatus = "accepted" // Consciously left unremediated
)

// IsValid checks if the status is a valid GapStatus
func (s GapStatus) IsValid() bool {
	switch s {
	case GapStatusOpen, GapStatusAcknowledged, GapStatusInRemediation, GapStatusResolved, GapStatusAccepted:
		return true
	}
	return false
}

// String returns the string representation of GapStatus
func (s GapStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s GapStatus) CanTransitionTo(target GapStatus) bool {
	switch s {
	case GapStatusOpen:
		return target == GapStatusAcknowledged
	case GapStatusAcknowledged:
		return target == GapStatusInRemediation || target == GapStatusResolved || target == GapStatusAccepted
	case GapStatusInRemediation:
		return target == GapStatusResolved || target == GapStatusAccepted
	case GapStatusResolved, GapStatusAccepted:
		return false // Terminal
	}
	return false
}

// IsTerminal returns true if the status is resolved or accepted
func (s GapStatus) IsTerminal() bool {
	return s == GapStatusResolved || s == GapStatusAccepted
}

// Gap represents an identified disclosure gap bound to a section or a
// data point within a reporting period
type Gap struct {
	shared.OrgAggregateRoot
	PeriodID       uuid.UUID   `gorm:"type:uuid;not null;index"`
	SectionID      *uuid.UUID  `gorm:"type:uuid;index"`
	DataPointID    *uuid.UUID  `gorm:"type:uuid;index"`
	Title          string      `gorm:"type:varchar(200);not null"`
	Description    string      `gorm:"type:text;not null"`
	Severity       GapSeverity `gorm:"type:varchar(20);not null"`
	Status         GapStatus   `gorm:"type:varchar(20);not null;default:'open'"`
	RaisedBy       *uuid.UUID  `gorm:"type:uuid"`
	ResolutionNote string      `gorm:"type:text"`
	ResolvedAt     *time.Time
	ResolvedBy     *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Gap) TableName() string {
	return "disclosure_gaps"
}

// NewGap creates a new open gap
// Exactly one of sectionID and dataPointID must be set
func NewGap(organizationID, periodID uuid.UUID, sectionID, dataPointID *uuid.UUID, title, description string, severity GapSeverity) (*Gap, error) {
	if periodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PERIOD_ID", "Period ID cannot be empty")
	}
	if (sectionID == nil) == (dataPointID == nil) {
		return nil, shared.NewDomainError("INVALID_BINDING", "A gap binds to exactly one section or one data point")
	}
	if sectionID != nil && *sectionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BINDING", "Section ID cannot be empty")
	}
	if dataPointID != nil && *dataPointID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BINDING", "Data point ID cannot be empty")
	}
	if err := validateGapTitle(title); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if !severity.IsValid() {
		return nil, shared.NewDomainError("INVALID_SEVERITY", "Severity must be low, medium, high, or critical")
	}

	gap := &Gap{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(organizationID),
		PeriodID:         periodID,
		SectionID:        sectionID,
		DataPointID:      dataPointID,
		Title:            strings.TrimSpace(title),
		Description:      description,
		Severity:         severity,
		Status:           GapStatusOpen,
	}

	gap.AddDomainEvent(NewGapCreatedEvent(gap))

	return gap, nil
}

// SetRaisedBy records who raised the gap
func (g *Gap) SetRaisedBy(userID uuid.UUID) {
	if userID != uuid.Nil {
		g.RaisedBy = &userID
	}
}

// Update updates the gap's content while it is still open or acknowledged
func (g *Gap) Update(title, description string, severity GapSeverity) error {
	if g.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "A resolved or accepted gap cannot be updated")
	}
	if err := validateGapTitle(title); err != nil {
		return err
	}
	if strings.TrimSpace(description) == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if !severity.IsValid() {
		return shared.NewDomainError("INVALID_SEVERITY", "Severity must be low, medium, high, or critical")
	}

	g.Title = strings.TrimSpace(title)
	g.Description = description
	g.Severity = severity
	g.UpdatedAt = time.Now()
	g.IncrementVersion()

	g.AddDomainEvent(NewGapUpdatedEvent(g))

	return nil
}

// Acknowledge confirms the gap has been seen and triaged
func (g *Gap) Acknowledge() error {
	return g.transition(GapStatusAcknowledged)
}

// StartRemediation marks the gap as covered by an active remediation plan
func (g *Gap) StartRemediation() error {
	return g.transition(GapStatusInRemediation)
}

// Resolve closes the gap as fixed; a resolution note is mandatory
func (g *Gap) Resolve(note string, resolvedBy uuid.UUID) error {
	return g.close(GapStatusResolved, note, resolvedBy)
}

// Accept closes the gap as consciously accepted; a resolution note is mandatory
func (g *Gap) Accept(note string, resolvedBy uuid.UUID) error {
	return g.close(GapStatusAccepted, note, resolvedBy)
}

func (g *Gap) close(target GapStatus, note string, resolvedBy uuid.UUID) error {
	if !g.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", "Gap cannot move from "+g.Status.String()+" to "+target.String())
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return shared.NewDomainError("RESOLUTION_NOTE_REQUIRED", "Closing a gap requires a resolution note")
	}

	now := time.Now()
	oldStatus := g.Status
	g.Status = target
	g.ResolutionNote = note
	g.ResolvedAt = &now
	if resolvedBy != uuid.Nil {
		g.ResolvedBy = &resolvedBy
	}
	g.UpdatedAt = now
	g.IncrementVersion()

	g.AddDomainEvent(NewGapClosedEvent(g, oldStatus, note))

	return nil
}

func (g *Gap) transition(target GapStatus) error {
	if !g.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", "Gap cannot move from "+g.Status.String()+" to "+target.String())
	}

	oldStatus := g.Status
	g.Status = target
	g.UpdatedAt = time.Now()
	g.IncrementVersion()

	g.AddDomainEvent(NewGapStatusChangedEvent(g, oldStatus, target))

	return nil
}

// IsOpen returns true while the gap still needs attention
func (g *Gap) IsOpen() bool {
	return !g.Status.IsTerminal()
}

// BindsSection returns true if the gap is bound to a section
func (g *Gap) BindsSection() bool {
	return g.SectionID != nil
}

// BindsDataPoint returns true if the gap is bound to a data point
func (g *Gap) BindsDataPoint() bool {
	return g.DataPointID != nil
}

// validation functions

func validateGapTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	return nil
}
