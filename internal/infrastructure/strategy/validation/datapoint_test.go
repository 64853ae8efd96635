package validation

import (
	"context"
	"testing"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardDataPointValidator_Metadata(t *testing.T) {
	v := NewStandardDataPointValidator()
	assert.Equal(t, "standard", v.Name())
	assert.Equal(t, strategy.StrategyTypeValidation, v.Type())
}

func TestStandardDataPointValidator_Validate(t *testing.T) {
	v := NewStandardDataPointValidator()
	ctx := context.Background()

	t.Run("valid metric passes", func(t *testing.T) {
		data := strategy.DataPointData{
			Code:     "E1-6.GHG",
			Kind:     "metric",
			UnitCode: "TCO2E",
			Value:    decimal.NewFromInt(1200),
		}

		result, err := v.Validate(ctx, strategy.ValidationContext{IsNew: true}, data)
		require.NoError(t, err)
		assert.True(t, result.IsValid)
		assert.Empty(t, result.Errors)
	})

	t.Run("missing code fails", func(t *testing.T) {
		data := strategy.DataPointData{Kind: "narrative"}

		result, err := v.Validate(ctx, strategy.ValidationContext{IsNew: true}, data)
		require.NoError(t, err)
		assert.False(t, result.IsValid)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "code", result.Errors[0].Field)
	})

	t.Run("metric without unit fails", func(t *testing.T) {
		data := strategy.DataPointData{Code: "E1-6.GHG", Kind: "metric"}

		result, err := v.Validate(ctx, strategy.ValidationContext{IsNew: true}, data)
		require.NoError(t, err)
		assert.False(t, result.IsValid)
	})

	t.Run("unknown kind fails", func(t *testing.T) {
		data := strategy.DataPointData{Code: "X", Kind: "scalar"}

		result, err := v.Validate(ctx, strategy.ValidationContext{IsNew: true}, data)
		require.NoError(t, err)
		assert.False(t, result.IsValid)
	})

	t.Run("negative metric value warns", func(t *testing.T) {
		data := strategy.DataPointData{
			Code:     "E1-6.GHG",
			Kind:     "metric",
			UnitCode: "TCO2E",
			Value:    decimal.NewFromInt(-5),
		}

		result, err := v.Validate(ctx, strategy.ValidationContext{IsNew: true}, data)
		require.NoError(t, err)
		assert.True(t, result.IsValid)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, "NEGATIVE_VALUE", result.Warnings[0].Code)
	})

	t.Run("negative target fails", func(t *testing.T) {
		target := decimal.NewFromInt(-1)
		data := strategy.DataPointData{
			Code:        "E1-6.GHG",
			Kind:        "metric",
			UnitCode:    "TCO2E",
			TargetValue: &target,
		}

		result, err := v.Validate(ctx, strategy.ValidationContext{IsNew: true}, data)
		require.NoError(t, err)
		assert.False(t, result.IsValid)
	})

	t.Run("unit change against existing data warns", func(t *testing.T) {
		data := strategy.DataPointData{
			Code:     "E1-6.GHG",
			Kind:     "metric",
			UnitCode: "KGCO2E",
		}
		valCtx := strategy.ValidationContext{
			ExistingData: &strategy.DataPointData{UnitCode: "TCO2E"},
		}

		result, err := v.Validate(ctx, valCtx, data)
		require.NoError(t, err)
		assert.True(t, result.IsValid)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, "UNIT_CHANGED", result.Warnings[0].Code)
	})
}

func TestStandardDataPointValidator_ValidateField(t *testing.T) {
	v := NewStandardDataPointValidator()
	ctx := context.Background()

	t.Run("empty code", func(t *testing.T) {
		errs, err := v.ValidateField(ctx, "code", "  ")
		require.NoError(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, "REQUIRED", errs[0].Code)
	})

	t.Run("valid kind", func(t *testing.T) {
		errs, err := v.ValidateField(ctx, "kind", "boolean")
		require.NoError(t, err)
		assert.Empty(t, errs)
	})

	t.Run("invalid kind", func(t *testing.T) {
		errs, err := v.ValidateField(ctx, "kind", "tensor")
		require.NoError(t, err)
		require.Len(t, errs, 1)
	})

	t.Run("negative target value", func(t *testing.T) {
		errs, err := v.ValidateField(ctx, "targetValue", decimal.NewFromInt(-3))
		require.NoError(t, err)
		require.Len(t, errs, 1)
	})
}
