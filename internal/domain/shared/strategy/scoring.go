package strategy

import (
	"context"

	"github.com/shopspring/decimal"
)

// DataPointScore describes one data point as seen by a scoring strategy.
// The scorer only needs status flags and weighting, not the full aggregate.
type DataPointScore struct {
	ID          string
	Status      string
	Mandatory   bool
	Estimated   bool
	Deactivated bool
}

// SectionScoreInput is the input for scoring a single section: its own data
// points plus the already-computed scores of its child sections.
type SectionScoreInput struct {
	SectionID  string
	DataPoints []DataPointScore
	Children   []ChildSectionScore
}

// ChildSectionScore carries a child section's score and its weight in the
// parent rollup.
type ChildSectionScore struct {
	SectionID string
	Score     decimal.Decimal
	Weight    decimal.Decimal
}

// SectionScoreResult is the outcome of scoring one section.
type SectionScoreResult struct {
	SectionID string
	// Score is the completeness percentage in [0, 100].
	Score decimal.Decimal
	// TotalPoints / CompletedPoints count the section's own data points
	// (excluding deactivated ones).
	TotalPoints     int
	CompletedPoints int
	// MissingMandatory lists mandatory data points with no recorded value.
	MissingMandatory []string
}

// CompletenessScoringStrategy computes section completeness scores.
// Implementations decide how estimated values, mandatory points, and child
// sections contribute to the final percentage.
type CompletenessScoringStrategy interface {
	Strategy
	// ScoreSection computes the completeness score for a single section from
	// its data points and pre-scored children.
	ScoreSection(ctx context.Context, input SectionScoreInput) (SectionScoreResult, error)
}
