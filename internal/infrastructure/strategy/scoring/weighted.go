// Package scoring provides completeness scoring strategy implementations.
package scoring

import (
	"context"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// WeightedScoringStrategy scores sections by the weighted ratio of completed
// data points. Mandatory points count double; estimated values count as
// complete. Child sections roll up by their configured weight.
type WeightedScoringStrategy struct {
	strategy.BaseStrategy
}

// NewWeightedScoringStrategy creates a new weighted scoring strategy
func NewWeightedScoringStrategy() *WeightedScoringStrategy {
	return &WeightedScoringStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"weighted",
			strategy.StrategyTypeScoring,
			"Weighted completeness with double-counted mandatory points",
		),
	}
}

// ScoreSection computes the weighted completeness score for a section
func (s *WeightedScoringStrategy) ScoreSection(
	ctx context.Context,
	input strategy.SectionScoreInput,
) (strategy.SectionScoreResult, error) {
	result := strategy.SectionScoreResult{SectionID: input.SectionID}

	totalWeight := decimal.Zero
	completedWeight := decimal.Zero
	for _, dp := range input.DataPoints {
		if dp.Deactivated {
			continue
		}

		weight := decimal.NewFromInt(1)
		if dp.Mandatory {
			weight = decimal.NewFromInt(2)
		}
		totalWeight = totalWeight.Add(weight)
		result.TotalPoints++

		if isComplete(dp) {
			completedWeight = completedWeight.Add(weight)
			result.CompletedPoints++
		} else if dp.Mandatory {
			result.MissingMandatory = append(result.MissingMandatory, dp.ID)
		}
	}

	ownScore := decimal.Zero
	hasOwnPoints := totalWeight.IsPositive()
	if hasOwnPoints {
		ownScore = completedWeight.Div(totalWeight).Mul(hundred)
	}

	result.Score = combineWithChildren(ownScore, hasOwnPoints, input.Children)
	return result, nil
}

// isComplete reports whether a data point counts toward completeness
func isComplete(dp strategy.DataPointScore) bool {
	return dp.Status == "complete" || dp.Estimated
}

// combineWithChildren rolls the section's own score together with its child
// section scores. The section's own data points carry weight 1 in the rollup;
// children contribute by their configured weight. A zero child weight falls
// back to 1 so misconfigured sections still count.
func combineWithChildren(ownScore decimal.Decimal, hasOwnPoints bool, children []strategy.ChildSectionScore) decimal.Decimal {
	if len(children) == 0 {
		if !hasOwnPoints {
			// Empty leaf: nothing to disclose means nothing missing
			return hundred
		}
		return ownScore
	}

	totalWeight := decimal.Zero
	weightedSum := decimal.Zero
	if hasOwnPoints {
		totalWeight = decimal.NewFromInt(1)
		weightedSum = ownScore
	}

	for _, child := range children {
		weight := child.Weight
		if !weight.IsPositive() {
			weight = decimal.NewFromInt(1)
		}
		totalWeight = totalWeight.Add(weight)
		weightedSum = weightedSum.Add(child.Score.Mul(weight))
	}

	if !totalWeight.IsPositive() {
		return hundred
	}
	return weightedSum.Div(totalWeight)
}
