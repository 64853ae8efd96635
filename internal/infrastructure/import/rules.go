package csvimport

import (
	"fmt"
	"strings"
)

// Column names expected in a data point value import file
const (
	ColDataPointCode = "code"
	ColValue         = "value"
	ColTextValue     = "text_value"
	ColBoolValue     = "bool_value"
	ColUnit          = "unit"
	ColEstimated     = "estimated"
)

// Column names expected in an assumption import file
const (
	ColAssumptionTitle = "title"
	ColAssumptionBody  = "body"
	ColCategory        = "category"
	ColReviewBy        = "review_by"
)

// DataPointImportRules returns the validation rules for a data point value import
func DataPointImportRules() []FieldRule {
	return []FieldRule{
		Field(ColDataPointCode).Required().MaxLength(50).Build(),
		Field(ColValue).Decimal().Build(),
		Field(ColTextValue).MaxLength(10000).Build(),
		Field(ColBoolValue).Bool().Build(),
		Field(ColUnit).MaxLength(20).Build(),
		Field(ColEstimated).Bool().Build(),
	}
}

// AssumptionImportRules returns the validation rules for an assumption import
func AssumptionImportRules() []FieldRule {
	return []FieldRule{
		Field(ColAssumptionTitle).Required().MaxLength(200).Unique().Build(),
		Field(ColAssumptionBody).Required().MaxLength(10000).Build(),
		Field(ColCategory).MaxLength(100).Build(),
		Field(ColReviewBy).Date().Build(),
	}
}

// RulesForEntity returns the rule set for a supported entity type
func RulesForEntity(entityType EntityType) ([]FieldRule, error) {
	switch entityType {
	case EntityDataPoints:
		return DataPointImportRules(), nil
	case EntityAssumptions:
		return AssumptionImportRules(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEntityType, entityType)
	}
}

// ParseBool interprets the boolean spellings accepted in import files
func ParseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "y":
		return true, true
	case "false", "0", "no", "n":
		return false, true
	}
	return false, false
}
