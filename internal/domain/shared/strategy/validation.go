package strategy

import (
	"context"

	"github.com/shopspring/decimal"
)

// ValidationSeverity represents the severity of a validation issue
type ValidationSeverity string

const (
	ValidationSeverityError   ValidationSeverity = "error"
	ValidationSeverityWarning ValidationSeverity = "warning"
	ValidationSeverityInfo    ValidationSeverity = "info"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field    string
	Code     string
	Message  string
	Severity ValidationSeverity
}

// ValidationWarning represents a validation warning
type ValidationWarning struct {
	Field   string
	Code    string
	Message string
}

// DataPointData represents data point values for validation
type DataPointData struct {
	ID             string
	OrganizationID string
	Code           string
	Kind           string
	UnitCode       string
	Value          decimal.Decimal
	TextValue      string
	BaselineValue  *decimal.Decimal
	TargetValue    *decimal.Decimal
	Mandatory      bool
	Attributes     map[string]any
}

// ValidationContext provides context for data point validation
type ValidationContext struct {
	OrganizationID string
	IsNew          bool // True if recording a first value, false if updating
	ExistingData   *DataPointData
}

// ValidationResult contains the result of validation
type ValidationResult struct {
	IsValid  bool
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// AddError adds an error to the validation result
func (r *ValidationResult) AddError(field, code, message string) {
	r.Errors = append(r.Errors, ValidationError{
		Field:    field,
		Code:     code,
		Message:  message,
		Severity: ValidationSeverityError,
	})
	r.IsValid = false
}

// AddWarning adds a warning to the validation result
func (r *ValidationResult) AddWarning(field, code, message string) {
	r.Warnings = append(r.Warnings, ValidationWarning{
		Field:   field,
		Code:    code,
		Message: message,
	})
}

// DataPointValidationStrategy defines the interface for data point validation
type DataPointValidationStrategy interface {
	Strategy
	// Validate validates the data point values
	Validate(ctx context.Context, valCtx ValidationContext, data DataPointData) (ValidationResult, error)
	// ValidateField validates a single field
	ValidateField(ctx context.Context, field string, value any) ([]ValidationError, error)
}
