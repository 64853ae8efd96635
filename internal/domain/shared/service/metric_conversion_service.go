package service

import (
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MetricConversionResult represents the result of normalizing a reported
// metric value to its base unit
type MetricConversionResult struct {
	// The value as reported, in the reporting unit
	ReportedValue decimal.Decimal
	// The unit code the value was reported in
	ReportedUnitCode string
	// The conversion rate of the reporting unit (to base unit)
	ConversionRate decimal.Decimal
	// The value in base units (ReportedValue * ConversionRate)
	BaseValue decimal.Decimal
	// The base unit code
	BaseUnitCode string
}

// MetricConversionService normalizes reported metric values across units.
// This is a domain service: aggregations across sections need all values
// of one metric dimension expressed in the dimension's base unit.
type MetricConversionService struct{}

// NewMetricConversionService creates a new metric conversion service
func NewMetricConversionService() *MetricConversionService {
	return &MetricConversionService{}
}

// ConvertToBaseUnit converts a reported value to base units.
// Negative values are allowed (net figures after removals or offsets).
func (s *MetricConversionService) ConvertToBaseUnit(
	value decimal.Decimal,
	reportingUnit valueobject.Unit,
	baseUnitCode string,
) (*MetricConversionResult, error) {
	if reportingUnit.IsZero() {
		return nil, shared.NewDomainError("INVALID_UNIT", "Reporting unit is required")
	}

	baseValue := reportingUnit.ConvertToBase(value)

	return &MetricConversionResult{
		ReportedValue:    value,
		ReportedUnitCode: reportingUnit.Code(),
		ConversionRate:   reportingUnit.ConversionRate(),
		BaseValue:        baseValue,
		BaseUnitCode:     baseUnitCode,
	}, nil
}

// ConvertBetweenUnits converts a value from one unit to another within the
// same dimension. Both units must share the same base unit for the result
// to be meaningful; the caller is responsible for dimension consistency.
func (s *MetricConversionService) ConvertBetweenUnits(
	value decimal.Decimal,
	from, to valueobject.Unit,
) (decimal.Decimal, error) {
	if from.IsZero() || to.IsZero() {
		return decimal.Zero, shared.NewDomainError("INVALID_UNIT", "Both source and target units are required")
	}

	converted, err := from.ConvertTo(value, to)
	if err != nil {
		return decimal.Zero, shared.NewDomainError("CONVERSION_FAILED", err.Error())
	}
	return converted, nil
}

// SumInBaseUnit sums a set of measurements after normalizing each to the
// base unit. Measurements whose unit cannot be resolved in the provided
// catalog produce an error rather than a silent skip.
func (s *MetricConversionService) SumInBaseUnit(
	values []valueobject.Measurement,
	catalog map[string]valueobject.Unit,
	baseUnitCode string,
) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, v := range values {
		unit, ok := catalog[v.Unit()]
		if !ok {
			return decimal.Zero, shared.NewDomainError("UNKNOWN_UNIT", "Unknown unit: "+v.Unit())
		}
		total = total.Add(unit.ConvertToBase(v.Amount()))
	}
	return total.Round(6), nil
}
