package scoring

import (
	"context"
	"testing"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedScoringStrategy_Metadata(t *testing.T) {
	s := NewWeightedScoringStrategy()
	assert.Equal(t, "weighted", s.Name())
	assert.Equal(t, strategy.StrategyTypeScoring, s.Type())
}

func TestWeightedScoringStrategy_ScoreSection(t *testing.T) {
	s := NewWeightedScoringStrategy()
	ctx := context.Background()

	t.Run("all complete scores 100", func(t *testing.T) {
		input := strategy.SectionScoreInput{
			SectionID: "sec-1",
			DataPoints: []strategy.DataPointScore{
				{ID: "a", Status: "complete"},
				{ID: "b", Status: "complete", Mandatory: true},
			},
		}

		result, err := s.ScoreSection(ctx, input)
		require.NoError(t, err)
		assert.True(t, result.Score.Equal(decimal.NewFromInt(100)), "score was %s", result.Score)
		assert.Equal(t, 2, result.TotalPoints)
		assert.Equal(t, 2, result.CompletedPoints)
		assert.Empty(t, result.MissingMandatory)
	})

	t.Run("mandatory points count double", func(t *testing.T) {
		// Complete optional (weight 1) + empty mandatory (weight 2) = 1/3
		input := strategy.SectionScoreInput{
			SectionID: "sec-1",
			DataPoints: []strategy.DataPointScore{
				{ID: "a", Status: "complete"},
				{ID: "b", Status: "empty", Mandatory: true},
			},
		}

		result, err := s.ScoreSection(ctx, input)
		require.NoError(t, err)
		expected := decimal.NewFromInt(100).Div(decimal.NewFromInt(3))
		assert.True(t, result.Score.Equal(expected), "score was %s", result.Score)
		assert.Equal(t, []string{"b"}, result.MissingMandatory)
	})

	t.Run("estimated counts as complete", func(t *testing.T) {
		input := strategy.SectionScoreInput{
			SectionID: "sec-1",
			DataPoints: []strategy.DataPointScore{
				{ID: "a", Status: "draft", Estimated: true},
			},
		}

		result, err := s.ScoreSection(ctx, input)
		require.NoError(t, err)
		assert.True(t, result.Score.Equal(decimal.NewFromInt(100)), "score was %s", result.Score)
		assert.Equal(t, 1, result.CompletedPoints)
	})

	t.Run("deactivated points are skipped", func(t *testing.T) {
		input := strategy.SectionScoreInput{
			SectionID: "sec-1",
			DataPoints: []strategy.DataPointScore{
				{ID: "a", Status: "complete"},
				{ID: "b", Status: "empty", Mandatory: true, Deactivated: true},
			},
		}

		result, err := s.ScoreSection(ctx, input)
		require.NoError(t, err)
		assert.True(t, result.Score.Equal(decimal.NewFromInt(100)), "score was %s", result.Score)
		assert.Equal(t, 1, result.TotalPoints)
		assert.Empty(t, result.MissingMandatory)
	})

	t.Run("children roll up by weight", func(t *testing.T) {
		// No own points: 80*3 + 40*1 = 280 / 4 = 70
		input := strategy.SectionScoreInput{
			SectionID: "parent",
			Children: []strategy.ChildSectionScore{
				{SectionID: "c1", Score: decimal.NewFromInt(80), Weight: decimal.NewFromInt(3)},
				{SectionID: "c2", Score: decimal.NewFromInt(40), Weight: decimal.NewFromInt(1)},
			},
		}

		result, err := s.ScoreSection(ctx, input)
		require.NoError(t, err)
		assert.True(t, result.Score.Equal(decimal.NewFromInt(70)), "score was %s", result.Score)
	})

	t.Run("own points carry weight one in the rollup", func(t *testing.T) {
		// Own score 100 (weight 1) + child score 40 (weight 1) = 70
		input := strategy.SectionScoreInput{
			SectionID: "parent",
			DataPoints: []strategy.DataPointScore{
				{ID: "a", Status: "complete"},
			},
			Children: []strategy.ChildSectionScore{
				{SectionID: "c1", Score: decimal.NewFromInt(40), Weight: decimal.NewFromInt(1)},
			},
		}

		result, err := s.ScoreSection(ctx, input)
		require.NoError(t, err)
		assert.True(t, result.Score.Equal(decimal.NewFromInt(70)), "score was %s", result.Score)
	})

	t.Run("zero child weight falls back to one", func(t *testing.T) {
		input := strategy.SectionScoreInput{
			SectionID: "parent",
			Children: []strategy.ChildSectionScore{
				{SectionID: "c1", Score: decimal.NewFromInt(60), Weight: decimal.Zero},
			},
		}

		result, err := s.ScoreSection(ctx, input)
		require.NoError(t, err)
		assert.True(t, result.Score.Equal(decimal.NewFromInt(60)), "score was %s", result.Score)
	})

	t.Run("empty section scores 100", func(t *testing.T) {
		result, err := s.ScoreSection(ctx, strategy.SectionScoreInput{SectionID: "empty"})
		require.NoError(t, err)
		assert.True(t, result.Score.Equal(decimal.NewFromInt(100)), "score was %s", result.Score)
		assert.Zero(t, result.TotalPoints)
	})
}
