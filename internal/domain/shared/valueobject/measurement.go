package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Measurement is a value object representing a measured ESG metric value
// (emissions, energy use, headcount ratios, etc.) together with its unit.
// Unlike physical stock quantities, measurements may be negative: net
// emissions after removals, or year-over-year deltas.
// It is immutable - all operations return new Measurement instances.
type Measurement struct {
	value decimal.Decimal
	unit  string
}

// NewMeasurement creates a new Measurement with the specified value and unit
func NewMeasurement(value decimal.Decimal, unit string) Measurement {
	return Measurement{
		value: value,
		unit:  unit,
	}
}

// NewMeasurementFromFloat creates a Measurement from a float64 value
func NewMeasurementFromFloat(value float64, unit string) Measurement {
	return NewMeasurement(decimal.NewFromFloat(value), unit)
}

// NewMeasurementFromString creates a Measurement from a string representation
func NewMeasurementFromString(value string, unit string) (Measurement, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Measurement{}, fmt.Errorf("invalid measurement string: %w", err)
	}
	return NewMeasurement(d, unit), nil
}

// ZeroMeasurement returns a zero measurement with the specified unit
func ZeroMeasurement(unit string) Measurement {
	return Measurement{value: decimal.Zero, unit: unit}
}

// Amount returns the decimal value
func (m Measurement) Amount() decimal.Decimal {
	return m.value
}

// Unit returns the unit of measurement
func (m Measurement) Unit() string {
	return m.unit
}

// IsZero returns true if the measurement is zero
func (m Measurement) IsZero() bool {
	return m.value.IsZero()
}

// IsNegative returns true if the measurement is negative
func (m Measurement) IsNegative() bool {
	return m.value.IsNegative()
}

// Float64 returns the measurement as a float64 (may lose precision)
func (m Measurement) Float64() float64 {
	f, _ := m.value.Float64()
	return f
}

// Add returns a new Measurement with the sum of both measurements
// Returns error if units don't match
func (m Measurement) Add(other Measurement) (Measurement, error) {
	if m.unit != other.unit {
		return Measurement{}, fmt.Errorf("cannot add measurements with different units: %s and %s", m.unit, other.unit)
	}
	return Measurement{
		value: m.value.Add(other.value),
		unit:  m.unit,
	}, nil
}

// Subtract returns a new Measurement with the difference.
// Negative results are allowed (e.g. reductions against a baseline).
func (m Measurement) Subtract(other Measurement) (Measurement, error) {
	if m.unit != other.unit {
		return Measurement{}, fmt.Errorf("cannot subtract measurements with different units: %s and %s", m.unit, other.unit)
	}
	return Measurement{
		value: m.value.Sub(other.value),
		unit:  m.unit,
	}, nil
}

// Multiply returns a new Measurement multiplied by the given factor
func (m Measurement) Multiply(factor decimal.Decimal) Measurement {
	return Measurement{
		value: m.value.Mul(factor),
		unit:  m.unit,
	}
}

// Convert converts the measurement to a different unit using the given conversion ratio
// newValue = oldValue * ratio
func (m Measurement) Convert(newUnit string, ratio decimal.Decimal) (Measurement, error) {
	if ratio.IsZero() || ratio.IsNegative() {
		return Measurement{}, errors.New("conversion ratio must be positive")
	}
	return Measurement{
		value: m.value.Mul(ratio),
		unit:  newUnit,
	}, nil
}

// Round returns a new Measurement rounded to the specified decimal places
func (m Measurement) Round(places int32) Measurement {
	return Measurement{
		value: m.value.Round(places),
		unit:  m.unit,
	}
}

// ProgressToward returns the percentage of progress from a baseline toward a
// target. 0% means still at baseline, 100% means the target is reached.
// For reduction targets (target below baseline), moving down counts as
// progress. Returns error if units differ or target equals baseline.
func (m Measurement) ProgressToward(baseline, target Measurement) (decimal.Decimal, error) {
	if m.unit != baseline.unit || m.unit != target.unit {
		return decimal.Zero, fmt.Errorf("cannot compute progress across units: %s, %s, %s", m.unit, baseline.unit, target.unit)
	}
	span := target.value.Sub(baseline.value)
	if span.IsZero() {
		return decimal.Zero, errors.New("target equals baseline; progress is undefined")
	}
	done := m.value.Sub(baseline.value)
	return done.Div(span).Mul(decimal.NewFromInt(100)).Round(2), nil
}

// VarianceFrom returns the signed difference from a reference measurement
// (e.g. prior-period value). Positive means this measurement is higher.
func (m Measurement) VarianceFrom(reference Measurement) (Measurement, error) {
	return m.Subtract(reference)
}

// IntensityPer divides this measurement by a denominator (e.g. revenue in
// millions, FTE count) to produce an intensity ratio. The resulting unit is
// "<unit>/<denominatorUnit>".
func (m Measurement) IntensityPer(denominator Measurement) (Measurement, error) {
	if denominator.value.IsZero() {
		return Measurement{}, errors.New("cannot divide by zero denominator")
	}
	return Measurement{
		value: m.value.Div(denominator.value).Round(6),
		unit:  m.unit + "/" + denominator.unit,
	}, nil
}

// Equals returns true if both measurements are equal (same value and unit)
func (m Measurement) Equals(other Measurement) bool {
	return m.unit == other.unit && m.value.Equal(other.value)
}

// LessThan returns true if this measurement is less than the other
func (m Measurement) LessThan(other Measurement) (bool, error) {
	if m.unit != other.unit {
		return false, fmt.Errorf("cannot compare measurements with different units: %s and %s", m.unit, other.unit)
	}
	return m.value.LessThan(other.value), nil
}

// GreaterThan returns true if this measurement is greater than the other
func (m Measurement) GreaterThan(other Measurement) (bool, error) {
	if m.unit != other.unit {
		return false, fmt.Errorf("cannot compare measurements with different units: %s and %s", m.unit, other.unit)
	}
	return m.value.GreaterThan(other.value), nil
}

// String returns a string representation of the Measurement
func (m Measurement) String() string {
	if m.unit == "" {
		return m.value.String()
	}
	return fmt.Sprintf("%s %s", m.value.String(), m.unit)
}

// StringFixed returns the value as a string with fixed decimal places
func (m Measurement) StringFixed(places int32) string {
	return m.value.StringFixed(places)
}

// MarshalJSON implements json.Marshaler
func (m Measurement) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value string `json:"value"`
		Unit  string `json:"unit"`
	}{
		Value: m.value.String(),
		Unit:  m.unit,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Measurement) UnmarshalJSON(data []byte) error {
	var v struct {
		Value string `json:"value"`
		Unit  string `json:"unit"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	value, err := decimal.NewFromString(v.Value)
	if err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	m.value = value
	m.unit = v.Unit
	return nil
}

// Value implements driver.Valuer for database storage
func (m Measurement) Value() (driver.Value, error) {
	return m.value.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
// Note: this scans only the numeric value; the unit is stored in a separate
// column and must be restored by the persistence layer.
func (m *Measurement) Scan(value any) error {
	if value == nil {
		m.value = decimal.Zero
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Measurement", value)
	}

	val, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	m.value = val
	return nil
}
