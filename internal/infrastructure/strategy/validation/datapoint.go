// Package validation provides data point validation strategy implementations.
package validation

import (
	"context"
	"strings"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// StandardDataPointValidator implements basic data point validation
type StandardDataPointValidator struct {
	strategy.BaseStrategy
}

// NewStandardDataPointValidator creates a new standard data point validator
func NewStandardDataPointValidator() *StandardDataPointValidator {
	return &StandardDataPointValidator{
		BaseStrategy: strategy.NewBaseStrategy(
			"standard",
			strategy.StrategyTypeValidation,
			"Standard data point validation for required fields and units",
		),
	}
}

// Validate validates data point data
func (s *StandardDataPointValidator) Validate(
	ctx context.Context,
	valCtx strategy.ValidationContext,
	data strategy.DataPointData,
) (strategy.ValidationResult, error) {
	result := strategy.ValidationResult{
		IsValid:  true,
		Errors:   make([]strategy.ValidationError, 0),
		Warnings: make([]strategy.ValidationWarning, 0),
	}

	if strings.TrimSpace(data.Code) == "" {
		result.AddError("code", "REQUIRED", "Data point code is required")
	}

	switch data.Kind {
	case "metric":
		if strings.TrimSpace(data.UnitCode) == "" {
			result.AddError("unitCode", "REQUIRED", "Metric data points require a unit")
		}
	case "narrative":
		if !valCtx.IsNew && strings.TrimSpace(data.TextValue) == "" {
			result.AddWarning("textValue", "EMPTY_NARRATIVE", "Narrative value is empty")
		}
	case "boolean":
		// Nothing beyond the common checks
	default:
		result.AddError("kind", "INVALID", "Kind must be metric, narrative or boolean")
	}

	if data.Kind == "metric" {
		s.validateMetricValue(&result, data)
	}

	if valCtx.ExistingData != nil && valCtx.ExistingData.UnitCode != "" &&
		data.UnitCode != "" && data.UnitCode != valCtx.ExistingData.UnitCode {
		result.AddWarning("unitCode", "UNIT_CHANGED", "Unit differs from the previously recorded unit")
	}

	return result, nil
}

// validateMetricValue checks numeric metric constraints
func (s *StandardDataPointValidator) validateMetricValue(result *strategy.ValidationResult, data strategy.DataPointData) {
	if data.Value.IsNegative() {
		result.AddWarning("value", "NEGATIVE_VALUE", "Metric value is negative")
	}

	if data.BaselineValue != nil && data.TargetValue != nil {
		if data.BaselineValue.Equal(*data.TargetValue) {
			result.AddWarning("targetValue", "TARGET_EQUALS_BASELINE", "Target value equals the baseline")
		}
	}

	if data.TargetValue != nil && data.TargetValue.IsNegative() {
		result.AddError("targetValue", "INVALID", "Target value cannot be negative")
	}
}

// ValidateField validates a single field
func (s *StandardDataPointValidator) ValidateField(
	ctx context.Context,
	field string,
	value any,
) ([]strategy.ValidationError, error) {
	errs := make([]strategy.ValidationError, 0)

	switch field {
	case "code":
		str, ok := value.(string)
		if !ok || strings.TrimSpace(str) == "" {
			errs = append(errs, strategy.ValidationError{
				Field:    field,
				Code:     "REQUIRED",
				Message:  "Data point code is required",
				Severity: strategy.ValidationSeverityError,
			})
		}
	case "kind":
		str, _ := value.(string)
		switch str {
		case "metric", "narrative", "boolean":
		default:
			errs = append(errs, strategy.ValidationError{
				Field:    field,
				Code:     "INVALID",
				Message:  "Kind must be metric, narrative or boolean",
				Severity: strategy.ValidationSeverityError,
			})
		}
	case "targetValue":
		if d, ok := value.(decimal.Decimal); ok && d.IsNegative() {
			errs = append(errs, strategy.ValidationError{
				Field:    field,
				Code:     "INVALID",
				Message:  "Target value cannot be negative",
				Severity: strategy.ValidationSeverityError,
			})
		}
	}

	return errs, nil
}
