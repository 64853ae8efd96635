package scoring

import (
	"context"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// StrictScoringStrategy gates sections on their mandatory data points: any
// mandatory point without a recorded value zeroes the section. Estimated
// values count at half weight instead of full.
type StrictScoringStrategy struct {
	strategy.BaseStrategy
}

// NewStrictScoringStrategy creates a new strict scoring strategy
func NewStrictScoringStrategy() *StrictScoringStrategy {
	return &StrictScoringStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"strict",
			strategy.StrategyTypeScoring,
			"Mandatory-gated completeness with half-weighted estimates",
		),
	}
}

// ScoreSection computes the strict completeness score for a section
func (s *StrictScoringStrategy) ScoreSection(
	ctx context.Context,
	input strategy.SectionScoreInput,
) (strategy.SectionScoreResult, error) {
	result := strategy.SectionScoreResult{SectionID: input.SectionID}

	half := decimal.NewFromFloat(0.5)
	totalWeight := decimal.Zero
	completedWeight := decimal.Zero
	mandatoryMissing := false

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

		switch {
		case dp.Status == "complete" && !dp.Estimated:
			completedWeight = completedWeight.Add(weight)
			result.CompletedPoints++
		case dp.Status == "complete" || dp.Estimated:
			completedWeight = completedWeight.Add(weight.Mul(half))
			result.CompletedPoints++
		default:
			if dp.Mandatory {
				result.MissingMandatory = append(result.MissingMandatory, dp.ID)
				mandatoryMissing = true
			}
		}
	}

	if mandatoryMissing {
		result.Score = decimal.Zero
		return result, nil
	}

	ownScore := decimal.Zero
	hasOwnPoints := totalWeight.IsPositive()
	if hasOwnPoints {
		ownScore = completedWeight.Div(totalWeight).Mul(hundred)
	}

	result.Score = combineWithChildren(ownScore, hasOwnPoints, input.Children)
	return result, nil
}
