package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is a value object representing a unit of measurement for ESG metrics.
// It is immutable - all operations return new Unit instances.
// A Unit has a code (identifier), name (display), and conversion rate to the
// base unit of its dimension (e.g. kgCO2e converts to tCO2e at 0.001).
type Unit struct {
	code           string
	name           string
	conversionRate decimal.Decimal
}

// Common unit codes for convenience
const (
	UnitCodeTCO2E  = "TCO2E"  // Tonnes of CO2 equivalent (base unit for emissions)
	UnitCodeKGCO2E = "KGCO2E" // Kilograms of CO2 equivalent
	UnitCodeMWH    = "MWH"    // Megawatt hours (base unit for energy)
	UnitCodeKWH    = "KWH"    // Kilowatt hours
	UnitCodeGJ     = "GJ"     // Gigajoules
	UnitCodeM3     = "M3"     // Cubic meters (base unit for water/volume)
	UnitCodeL      = "L"      // Liters
	UnitCodeT      = "T"      // Metric tonnes (base unit for mass/waste)
	UnitCodeKG     = "KG"     // Kilograms
	UnitCodePCT    = "PCT"    // Percent
	UnitCodeFTE    = "FTE"    // Full-time equivalents
	UnitCodeHOURS  = "HOURS"  // Hours (e.g. training hours)
)

// NewUnit creates a new Unit with the specified code, name, and conversion rate.
// Parameters:
//   - code: unique identifier for the unit (e.g., "TCO2E", "KWH")
//   - name: human-readable name (e.g., "Tonnes CO2e", "Kilowatt hours")
//   - conversionRate: how many base units equal 1 of this unit (must be positive)
//
// Returns error if:
//   - code is empty or too long (max 20 chars)
//   - name is empty or too long (max 50 chars)
//   - conversionRate is zero or negative
func NewUnit(code, name string, conversionRate decimal.Decimal) (Unit, error) {
	// Normalize code: trim and uppercase
	code = strings.TrimSpace(strings.ToUpper(code))
	name = strings.TrimSpace(name)

	if err := validateUnitCode(code); err != nil {
		return Unit{}, err
	}
	if err := validateUnitName(name); err != nil {
		return Unit{}, err
	}
	if err := validateUnitConversionRate(conversionRate); err != nil {
		return Unit{}, err
	}

	return Unit{
		code:           code,
		name:           name,
		conversionRate: conversionRate,
	}, nil
}

// NewBaseUnit creates a new Unit with conversion rate of 1 (base unit).
// Use this for the base unit of a metric dimension.
func NewBaseUnit(code, name string) (Unit, error) {
	return NewUnit(code, name, decimal.NewFromInt(1))
}

// NewUnitFromFloat creates a Unit with conversion rate from float64.
func NewUnitFromFloat(code, name string, conversionRate float64) (Unit, error) {
	return NewUnit(code, name, decimal.NewFromFloat(conversionRate))
}

// MustNewUnit creates a Unit and panics on error.
// Use only when you're certain the inputs are valid.
func MustNewUnit(code, name string, conversionRate decimal.Decimal) Unit {
	u, err := NewUnit(code, name, conversionRate)
	if err != nil {
		panic(err)
	}
	return u
}

// MustNewBaseUnit creates a base Unit and panics on error.
func MustNewBaseUnit(code, name string) Unit {
	u, err := NewBaseUnit(code, name)
	if err != nil {
		panic(err)
	}
	return u
}

// Code returns the unit code (normalized to uppercase).
func (u Unit) Code() string {
	return u.code
}

// Name returns the unit name.
func (u Unit) Name() string {
	return u.name
}

// ConversionRate returns the conversion rate to base unit.
// 1 of this unit = ConversionRate base units.
func (u Unit) ConversionRate() decimal.Decimal {
	return u.conversionRate
}

// IsBaseUnit returns true if this is a base unit (conversion rate = 1).
func (u Unit) IsBaseUnit() bool {
	return u.conversionRate.Equal(decimal.NewFromInt(1))
}

// IsZero returns true if this is a zero-value Unit.
func (u Unit) IsZero() bool {
	return u.code == "" && u.name == "" && u.conversionRate.IsZero()
}

// ConvertToBase converts an amount from this unit to base units.
// Formula: baseAmount = amount * conversionRate
func (u Unit) ConvertToBase(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(u.conversionRate).Round(6)
}

// ConvertFromBase converts an amount from base units to this unit.
// Formula: unitAmount = baseAmount / conversionRate
func (u Unit) ConvertFromBase(baseAmount decimal.Decimal) decimal.Decimal {
	if u.conversionRate.IsZero() {
		return decimal.Zero
	}
	return baseAmount.Div(u.conversionRate).Round(6)
}

// ConvertTo converts an amount from this unit to another unit.
// Goes through the base unit as intermediary.
// Formula: targetAmount = (amount * thisRate) / targetRate
func (u Unit) ConvertTo(amount decimal.Decimal, targetUnit Unit) (decimal.Decimal, error) {
	if targetUnit.conversionRate.IsZero() {
		return decimal.Zero, errors.New("target unit conversion rate cannot be zero")
	}
	baseAmount := u.ConvertToBase(amount)
	return baseAmount.Div(targetUnit.conversionRate).Round(6), nil
}

// WithName returns a new Unit with an updated name.
func (u Unit) WithName(name string) (Unit, error) {
	name = strings.TrimSpace(name)
	if err := validateUnitName(name); err != nil {
		return Unit{}, err
	}
	return Unit{
		code:           u.code,
		name:           name,
		conversionRate: u.conversionRate,
	}, nil
}

// WithConversionRate returns a new Unit with an updated conversion rate.
func (u Unit) WithConversionRate(rate decimal.Decimal) (Unit, error) {
	if err := validateUnitConversionRate(rate); err != nil {
		return Unit{}, err
	}
	return Unit{
		code:           u.code,
		name:           u.name,
		conversionRate: rate,
	}, nil
}

// Equals returns true if both Units have the same code (case-insensitive).
// Name and conversion rate may differ for units with the same code.
func (u Unit) Equals(other Unit) bool {
	return u.code == other.code
}

// EqualsStrict returns true if both Units are exactly equal
// (same code, name, and conversion rate).
func (u Unit) EqualsStrict(other Unit) bool {
	return u.code == other.code &&
		u.name == other.name &&
		u.conversionRate.Equal(other.conversionRate)
}

// MatchesCode returns true if the unit code matches (case-insensitive).
func (u Unit) MatchesCode(code string) bool {
	return u.code == strings.TrimSpace(strings.ToUpper(code))
}

// String returns a string representation of the Unit.
func (u Unit) String() string {
	if u.IsBaseUnit() {
		return fmt.Sprintf("%s (%s)", u.code, u.name)
	}
	return fmt.Sprintf("%s (%s, rate: %s)", u.code, u.name, u.conversionRate.String())
}

// MarshalJSON implements json.Marshaler.
func (u Unit) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code           string `json:"code"`
		Name           string `json:"name"`
		ConversionRate string `json:"conversionRate"`
	}{
		Code:           u.code,
		Name:           u.name,
		ConversionRate: u.conversionRate.String(),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *Unit) UnmarshalJSON(data []byte) error {
	var v struct {
		Code           string `json:"code"`
		Name           string `json:"name"`
		ConversionRate string `json:"conversionRate"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	rate, err := decimal.NewFromString(v.ConversionRate)
	if err != nil {
		return fmt.Errorf("invalid conversion rate: %w", err)
	}

	parsed, err := NewUnit(v.Code, v.Name, rate)
	if err != nil {
		return err
	}

	*u = parsed
	return nil
}

// Value implements driver.Valuer for database storage.
// Stores the code only (name and rate should be stored separately if needed).
func (u Unit) Value() (driver.Value, error) {
	return u.code, nil
}

// Scan implements sql.Scanner for database retrieval.
// Only reads the code; sets default name and rate=1.
func (u *Unit) Scan(value any) error {
	if value == nil {
		u.code = ""
		u.name = ""
		u.conversionRate = decimal.Zero
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Unit", value)
	}

	u.code = strings.TrimSpace(strings.ToUpper(strVal))
	u.name = u.code // Default name to code
	u.conversionRate = decimal.NewFromInt(1)
	return nil
}

// UnitDTO is a data transfer object for Unit (for serialization/deserialization).
type UnitDTO struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	ConversionRate decimal.Decimal `json:"conversionRate"`
}

// ToUnit converts UnitDTO to Unit value object.
func (dto UnitDTO) ToUnit() (Unit, error) {
	return NewUnit(dto.Code, dto.Name, dto.ConversionRate)
}

// ToDTO converts Unit to UnitDTO.
func (u Unit) ToDTO() UnitDTO {
	return UnitDTO{
		Code:           u.code,
		Name:           u.name,
		ConversionRate: u.conversionRate,
	}
}

// Validation functions

func validateUnitCode(code string) error {
	if code == "" {
		return errors.New("unit code cannot be empty")
	}
	if len(code) > 20 {
		return errors.New("unit code cannot exceed 20 characters")
	}
	return nil
}

func validateUnitName(name string) error {
	if name == "" {
		return errors.New("unit name cannot be empty")
	}
	if len(name) > 50 {
		return errors.New("unit name cannot exceed 50 characters")
	}
	return nil
}

func validateUnitConversionRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return errors.New("unit conversion rate cannot be negative")
	}
	if rate.IsZero() {
		return errors.New("unit conversion rate cannot be zero")
	}
	return nil
}

// Common predefined units

// TCO2EUnit returns the tonnes-CO2e unit (base unit for emissions).
func TCO2EUnit() Unit {
	return MustNewBaseUnit(UnitCodeTCO2E, "Tonnes CO2e")
}

// KgCO2EUnit returns the kilograms-CO2e unit (1 t = 1000 kg).
func KgCO2EUnit() Unit {
	return MustNewUnit(UnitCodeKGCO2E, "Kilograms CO2e", decimal.NewFromFloat(0.001))
}

// MWhUnit returns the megawatt-hour unit (base unit for energy).
func MWhUnit() Unit {
	return MustNewBaseUnit(UnitCodeMWH, "Megawatt hours")
}

// KWhUnit returns the kilowatt-hour unit (1 MWh = 1000 kWh).
func KWhUnit() Unit {
	return MustNewUnit(UnitCodeKWH, "Kilowatt hours", decimal.NewFromFloat(0.001))
}

// GJUnit returns the gigajoule unit (1 GJ = 0.277778 MWh).
func GJUnit() Unit {
	return MustNewUnit(UnitCodeGJ, "Gigajoules", decimal.NewFromFloat(0.277778))
}

// CubicMeterUnit returns the cubic-meter unit (base unit for water/volume).
func CubicMeterUnit() Unit {
	return MustNewBaseUnit(UnitCodeM3, "Cubic meters")
}

// LiterUnit returns the liter unit (1 m3 = 1000 L).
func LiterUnit() Unit {
	return MustNewUnit(UnitCodeL, "Liters", decimal.NewFromFloat(0.001))
}

// TonneUnit returns the metric tonne unit (base unit for mass/waste).
func TonneUnit() Unit {
	return MustNewBaseUnit(UnitCodeT, "Tonnes")
}

// KilogramUnit returns the kilogram unit (1 t = 1000 kg).
func KilogramUnit() Unit {
	return MustNewUnit(UnitCodeKG, "Kilograms", decimal.NewFromFloat(0.001))
}

// PercentUnit returns the percent unit (base unit for ratios).
func PercentUnit() Unit {
	return MustNewBaseUnit(UnitCodePCT, "Percent")
}

// FTEUnit returns the full-time-equivalent unit (base unit for headcount).
func FTEUnit() Unit {
	return MustNewBaseUnit(UnitCodeFTE, "Full-time equivalents")
}

// HoursUnit returns the hours unit (base unit for durations).
func HoursUnit() Unit {
	return MustNewBaseUnit(UnitCodeHOURS, "Hours")
}
