package reporting

import (
	"regexp"
	"strings"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DataPointKind represents the kind of value a data point carries
type DataPointKind string

const (
	DataPointKindMetric    DataPointKind = "metric"    // Numeric value with unit
	DataPointKindNarrative DataPointKind = "narrative" // Free text disclosure
	DataPointKindBoolean   DataPointKind = "boolean"   // Yes/no disclosure
)

// IsValid checks if the kind is a valid DataPointKind
func (k DataPointKind) IsValid() bool {
	switch k {
	case DataPointKindMetric, DataPointKindNarrative, DataPointKindBoolean:
		return true
	}
	return false
}

// String returns the string representation of DataPointKind
func (k DataPointKind) String() string {
	return string(k)
}

// DataPointStatus represents the working status of a data point
type DataPointStatus string

const (
	DataPointStatusEmpty    DataPointStatus = "empty"
	DataPointStatusDraft    DataPointStatus = "draft"
	DataPointStatusComplete DataPointStatus = "complete"
)

// IsValid checks if the status is a valid DataPointStatus
func (s DataPointStatus) IsValid() bool {
	switch s {
	case DataPointStatusEmpty, DataPointStatusDraft, DataPointStatusComplete:
		return true
	}
	return false
}

// String returns the string representation of DataPointStatus
func (s DataPointStatus) String() string {
	return string(s)
}

// DataPoint represents a single disclosed fact within a report section
// It is the aggregate root for value recording operations
type DataPoint struct {
	shared.OrgAggregateRoot
	SectionID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	PeriodID             uuid.UUID        `gorm:"type:uuid;not null;index"` // Denormalized for filters and exports
	Code                 string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_datapoint_period_code,priority:2"`
	Name                 string           `gorm:"type:varchar(200);not null"`
	Guidance             string           `gorm:"type:text"` // Preparer guidance
	Kind                 DataPointKind    `gorm:"type:varchar(20);not null"`
	UnitCode             string           `gorm:"type:varchar(20)"` // Metric kind only
	NumericValue         *decimal.Decimal `gorm:"type:decimal(24,6)"`
	TextValue            string           `gorm:"type:text"`
	BoolValue            *bool
	BaselineValue        *decimal.Decimal `gorm:"type:decimal(24,6)"`
	TargetValue          *decimal.Decimal `gorm:"type:decimal(24,6)"`
	StandardRef          string           `gorm:"type:varchar(100)"` // e.g. "ESRS E1-6 §48"
	Status               DataPointStatus  `gorm:"type:varchar(20);not null;default:'empty'"`
	Mandatory            bool             `gorm:"not null;default:false"`
	IsActive             bool             `gorm:"not null;default:true"` // Deactivated data points are excluded from scoring
	Estimated            bool             `gorm:"not null;default:false"`
	EstimationDecisionID *uuid.UUID       `gorm:"type:uuid"` // Decision that justifies the estimate
	OwnerUserID          *uuid.UUID       `gorm:"type:uuid;index"`
	ValueUpdatedAt       *time.Time
	ValueUpdatedBy       *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (DataPoint) TableName() string {
	return "data_points"
}

// NewMetricDataPoint creates a numeric data point
func NewMetricDataPoint(organizationID, periodID, sectionID uuid.UUID, code, name, unitCode string) (*DataPoint, error) {
	dp, err := newDataPoint(organizationID, periodID, sectionID, code, name, DataPointKindMetric)
	if err != nil {
		return nil, err
	}
	unitCode = strings.ToUpper(strings.TrimSpace(unitCode))
	if unitCode == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Metric data points require a unit")
	}
	if len(unitCode) > 20 {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit code cannot exceed 20 characters")
	}

	dp.UnitCode = unitCode
	dp.AddDomainEvent(NewDataPointCreatedEvent(dp))
	return dp, nil
}

// NewNarrativeDataPoint creates a text data point
func NewNarrativeDataPoint(organizationID, periodID, sectionID uuid.UUID, code, name string) (*DataPoint, error) {
	dp, err := newDataPoint(organizationID, periodID, sectionID, code, name, DataPointKindNarrative)
	if err != nil {
		return nil, err
	}
	dp.AddDomainEvent(NewDataPointCreatedEvent(dp))
	return dp, nil
}

// NewBooleanDataPoint creates a yes/no data point
func NewBooleanDataPoint(organizationID, periodID, sectionID uuid.UUID, code, name string) (*DataPoint, error) {
	dp, err := newDataPoint(organizationID, periodID, sectionID, code, name, DataPointKindBoolean)
	if err != nil {
		return nil, err
	}
	dp.AddDomainEvent(NewDataPointCreatedEvent(dp))
	return dp, nil
}

func newDataPoint(organizationID, periodID, sectionID uuid.UUID, code, name string, kind DataPointKind) (*DataPoint, error) {
	if periodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period ID cannot be empty")
	}
	if sectionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SECTION", "Section ID cannot be empty")
	}
	if err := validateDataPointCode(code); err != nil {
		return nil, err
	}
	if err := validateDataPointName(name); err != nil {
		return nil, err
	}

	return &DataPoint{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(organizationID),
		SectionID:        sectionID,
		PeriodID:         periodID,
		Code:             strings.ToUpper(strings.TrimSpace(code)),
		Name:             strings.TrimSpace(name),
		Kind:             kind,
		Status:           DataPointStatusEmpty,
		IsActive:         true,
	}, nil
}

// Update updates the data point's descriptive fields
func (d *DataPoint) Update(name, guidance, standardRef string) error {
	if err := validateDataPointName(name); err != nil {
		return err
	}
	if standardRef != "" && len(standardRef) > 100 {
		return shared.NewDomainError("INVALID_STANDARD_REF", "Standard reference cannot exceed 100 characters")
	}

	d.Name = strings.TrimSpace(name)
	d.Guidance = guidance
	d.StandardRef = standardRef
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewDataPointUpdatedEvent(d))

	return nil
}

// SetMandatory marks the data point as mandatory or optional
func (d *DataPoint) SetMandatory(mandatory bool) {
	d.Mandatory = mandatory
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
}

// AssignOwner assigns the data owner
func (d *DataPoint) AssignOwner(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Owner user ID cannot be empty")
	}

	d.OwnerUserID = &userID
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	return nil
}

// ClearOwner removes the data owner
func (d *DataPoint) ClearOwner() {
	d.OwnerUserID = nil
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
}

// SetBaseline sets the baseline value for a metric data point
func (d *DataPoint) SetBaseline(value decimal.Decimal) error {
	if d.Kind != DataPointKindMetric {
		return shared.NewDomainError("INVALID_KIND", "Only metric data points carry a baseline")
	}

	d.BaselineValue = &value
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	return nil
}

// SetTarget sets the target value for a metric data point
func (d *DataPoint) SetTarget(value decimal.Decimal) error {
	if d.Kind != DataPointKindMetric {
		return shared.NewDomainError("INVALID_KIND", "Only metric data points carry a target")
	}

	d.TargetValue = &value
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	return nil
}

// RecordNumericValue records a numeric value on a metric data point
func (d *DataPoint) RecordNumericValue(value decimal.Decimal, updatedBy uuid.UUID) error {
	if d.Kind != DataPointKindMetric {
		return shared.NewDomainError("INVALID_KIND", "Data point does not accept a numeric value")
	}

	oldValue := d.ValueString()
	d.NumericValue = &value
	d.recordValueChange(updatedBy, oldValue)

	return nil
}

// RecordTextValue records a narrative value
func (d *DataPoint) RecordTextValue(text string, updatedBy uuid.UUID) error {
	if d.Kind != DataPointKindNarrative {
		return shared.NewDomainError("INVALID_KIND", "Data point does not accept a text value")
	}
	if strings.TrimSpace(text) == "" {
		return shared.NewDomainError("INVALID_VALUE", "Narrative value cannot be empty")
	}

	oldValue := d.ValueString()
	d.TextValue = text
	d.recordValueChange(updatedBy, oldValue)

	return nil
}

// RecordBooleanValue records a yes/no value
func (d *DataPoint) RecordBooleanValue(value bool, updatedBy uuid.UUID) error {
	if d.Kind != DataPointKindBoolean {
		return shared.NewDomainError("INVALID_KIND", "Data point does not accept a boolean value")
	}

	oldValue := d.ValueString()
	d.BoolValue = &value
	d.recordValueChange(updatedBy, oldValue)

	return nil
}

func (d *DataPoint) recordValueChange(updatedBy uuid.UUID, oldValue string) {
	now := time.Now()
	d.ValueUpdatedAt = &now
	if updatedBy != uuid.Nil {
		d.ValueUpdatedBy = &updatedBy
	}
	if d.Status == DataPointStatusEmpty {
		d.Status = DataPointStatusDraft
	}
	d.UpdatedAt = now
	d.IncrementVersion()

	d.AddDomainEvent(NewDataPointValueRecordedEvent(d, oldValue, d.ValueString(), updatedBy))
}

// ClearValue removes the recorded value and resets the data point to empty
func (d *DataPoint) ClearValue(updatedBy uuid.UUID) error {
	if !d.HasValue() {
		return shared.NewDomainError("NO_VALUE", "Data point has no recorded value")
	}

	oldValue := d.ValueString()
	d.NumericValue = nil
	d.TextValue = ""
	d.BoolValue = nil
	d.Estimated = false
	d.EstimationDecisionID = nil
	d.Status = DataPointStatusEmpty

	now := time.Now()
	d.ValueUpdatedAt = &now
	if updatedBy != uuid.Nil {
		d.ValueUpdatedBy = &updatedBy
	}
	d.UpdatedAt = now
	d.IncrementVersion()

	d.AddDomainEvent(NewDataPointValueClearedEvent(d, oldValue, updatedBy))

	return nil
}

// MarkComplete marks the data point complete
// The application service rejects completion while open validation
// findings exist for the data point
func (d *DataPoint) MarkComplete() error {
	if d.Status == DataPointStatusComplete {
		return shared.NewDomainError("ALREADY_COMPLETE", "Data point is already complete")
	}
	if !d.HasValue() {
		return shared.NewDomainError("INVALID_STATE", "Data point cannot be complete without a recorded value")
	}

	oldStatus := d.Status
	d.Status = DataPointStatusComplete
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewDataPointStatusChangedEvent(d, oldStatus, DataPointStatusComplete))

	return nil
}

// BackToDraft returns a complete data point to draft
func (d *DataPoint) BackToDraft() error {
	if d.Status != DataPointStatusComplete {
		return shared.NewDomainError("INVALID_STATE", "Only a complete data point can go back to draft")
	}

	oldStatus := d.Status
	d.Status = DataPointStatusDraft
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewDataPointStatusChangedEvent(d, oldStatus, DataPointStatusDraft))

	return nil
}

// MarkEstimated marks the value as derived from a recorded estimation decision
func (d *DataPoint) MarkEstimated(decisionID uuid.UUID) error {
	if decisionID == uuid.Nil {
		return shared.NewDomainError("INVALID_DECISION", "Estimation decision ID cannot be empty")
	}
	if !d.HasValue() {
		return shared.NewDomainError("INVALID_STATE", "Data point has no value to mark as estimated")
	}

	d.Estimated = true
	d.EstimationDecisionID = &decisionID
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewDataPointMarkedEstimatedEvent(d, decisionID))

	return nil
}

// ClearEstimated removes the estimated marker
func (d *DataPoint) ClearEstimated() {
	d.Estimated = false
	d.EstimationDecisionID = nil
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
}

// Deactivate excludes the data point from scoring and value recording
// Used instead of delete for mandatory data points
func (d *DataPoint) Deactivate() error {
	if !d.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Data point is already deactivated")
	}

	d.IsActive = false
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewDataPointDeactivatedEvent(d))

	return nil
}

// Reactivate brings a deactivated data point back
func (d *DataPoint) Reactivate() error {
	if d.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Data point is already active")
	}

	d.IsActive = true
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	return nil
}

// HasValue returns true if a value has been recorded
func (d *DataPoint) HasValue() bool {
	switch d.Kind {
	case DataPointKindMetric:
		return d.NumericValue != nil
	case DataPointKindNarrative:
		return strings.TrimSpace(d.TextValue) != ""
	case DataPointKindBoolean:
		return d.BoolValue != nil
	}
	return false
}

// IsComplete returns true if the data point is complete
func (d *DataPoint) IsComplete() bool {
	return d.Status == DataPointStatusComplete
}

// ValueString returns the recorded value rendered as a string, for
// audit entries and exports; empty string when no value is recorded
func (d *DataPoint) ValueString() string {
	switch d.Kind {
	case DataPointKindMetric:
		if d.NumericValue == nil {
			return ""
		}
		return d.NumericValue.String()
	case DataPointKindNarrative:
		return d.TextValue
	case DataPointKindBoolean:
		if d.BoolValue == nil {
			return ""
		}
		if *d.BoolValue {
			return "true"
		}
		return "false"
	}
	return ""
}

// Measurement returns the recorded numeric value as a Measurement
func (d *DataPoint) Measurement() (valueobject.Measurement, error) {
	if d.Kind != DataPointKindMetric {
		return valueobject.Measurement{}, shared.NewDomainError("INVALID_KIND", "Only metric data points have a measurement")
	}
	if d.NumericValue == nil {
		return valueobject.Measurement{}, shared.NewDomainError("NO_VALUE", "Data point has no recorded value")
	}
	return valueobject.NewMeasurement(*d.NumericValue, d.UnitCode), nil
}

// ProgressTowardTarget returns percent progress from baseline to target
// based on the current value; requires value, baseline, and target
func (d *DataPoint) ProgressTowardTarget() (decimal.Decimal, error) {
	if d.Kind != DataPointKindMetric {
		return decimal.Zero, shared.NewDomainError("INVALID_KIND", "Only metric data points track target progress")
	}
	if d.NumericValue == nil || d.BaselineValue == nil || d.TargetValue == nil {
		return decimal.Zero, shared.NewDomainError("NO_VALUE", "Progress requires value, baseline, and target")
	}

	current := valueobject.NewMeasurement(*d.NumericValue, d.UnitCode)
	baseline := valueobject.NewMeasurement(*d.BaselineValue, d.UnitCode)
	target := valueobject.NewMeasurement(*d.TargetValue, d.UnitCode)

	return current.ProgressToward(baseline, target)
}

// Validation functions

var dataPointCodeRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]*$`)

func validateDataPointCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Data point code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Data point code cannot exceed 50 characters")
	}
	if !dataPointCodeRegex.MatchString(code) {
		return shared.NewDomainError("INVALID_CODE", "Data point code can only contain letters, numbers, dots, underscores, and hyphens")
	}
	return nil
}

func validateDataPointName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Data point name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Data point name cannot exceed 200 characters")
	}
	return nil
}
