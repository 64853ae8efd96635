package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeasurement(t *testing.T) {
	t.Run("creates measurement with value and unit", func(t *testing.T) {
		m := NewMeasurement(decimal.NewFromFloat(1250.5), "TCO2E")
		assert.Equal(t, "TCO2E", m.Unit())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(1250.5)))
	})

	t.Run("allows negative values", func(t *testing.T) {
		m := NewMeasurement(decimal.NewFromInt(-120), "TCO2E")
		assert.True(t, m.IsNegative())
	})

	t.Run("parses from string", func(t *testing.T) {
		m, err := NewMeasurementFromString("42.75", "MWH")
		require.NoError(t, err)
		assert.Equal(t, "42.75 MWH", m.String())
	})

	t.Run("rejects malformed string", func(t *testing.T) {
		_, err := NewMeasurementFromString("not-a-number", "MWH")
		assert.Error(t, err)
	})
}

func TestMeasurement_Arithmetic(t *testing.T) {
	t.Run("adds matching units", func(t *testing.T) {
		a := NewMeasurement(decimal.NewFromInt(100), "TCO2E")
		b := NewMeasurement(decimal.NewFromInt(50), "TCO2E")

		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(150)))
	})

	t.Run("rejects mismatched units", func(t *testing.T) {
		a := NewMeasurement(decimal.NewFromInt(100), "TCO2E")
		b := NewMeasurement(decimal.NewFromInt(50), "MWH")

		_, err := a.Add(b)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "different units")
	})

	t.Run("subtract may go negative", func(t *testing.T) {
		a := NewMeasurement(decimal.NewFromInt(40), "TCO2E")
		b := NewMeasurement(decimal.NewFromInt(100), "TCO2E")

		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.True(t, diff.IsNegative())
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(-60)))
	})
}

func TestMeasurement_ProgressToward(t *testing.T) {
	t.Run("reduction target progress", func(t *testing.T) {
		// Baseline 1000, target 800, current 900: halfway there.
		current := NewMeasurement(decimal.NewFromInt(900), "TCO2E")
		baseline := NewMeasurement(decimal.NewFromInt(1000), "TCO2E")
		target := NewMeasurement(decimal.NewFromInt(800), "TCO2E")

		progress, err := current.ProgressToward(baseline, target)
		require.NoError(t, err)
		assert.True(t, progress.Equal(decimal.NewFromInt(50)), "got %s", progress)
	})

	t.Run("increase target progress", func(t *testing.T) {
		// Baseline 20%, target 40%, current 35%: 75% of the way.
		current := NewMeasurement(decimal.NewFromInt(35), "PCT")
		baseline := NewMeasurement(decimal.NewFromInt(20), "PCT")
		target := NewMeasurement(decimal.NewFromInt(40), "PCT")

		progress, err := current.ProgressToward(baseline, target)
		require.NoError(t, err)
		assert.True(t, progress.Equal(decimal.NewFromInt(75)), "got %s", progress)
	})

	t.Run("undefined when target equals baseline", func(t *testing.T) {
		current := NewMeasurement(decimal.NewFromInt(10), "PCT")
		same := NewMeasurement(decimal.NewFromInt(20), "PCT")

		_, err := current.ProgressToward(same, same)
		assert.Error(t, err)
	})

	t.Run("rejects mixed units", func(t *testing.T) {
		current := NewMeasurement(decimal.NewFromInt(10), "PCT")
		baseline := NewMeasurement(decimal.NewFromInt(5), "PCT")
		target := NewMeasurement(decimal.NewFromInt(20), "TCO2E")

		_, err := current.ProgressToward(baseline, target)
		assert.Error(t, err)
	})
}

func TestMeasurement_IntensityPer(t *testing.T) {
	t.Run("computes emissions intensity", func(t *testing.T) {
		emissions := NewMeasurement(decimal.NewFromInt(5000), "TCO2E")
		headcount := NewMeasurement(decimal.NewFromInt(250), "FTE")

		intensity, err := emissions.IntensityPer(headcount)
		require.NoError(t, err)
		assert.Equal(t, "TCO2E/FTE", intensity.Unit())
		assert.True(t, intensity.Amount().Equal(decimal.NewFromInt(20)))
	})

	t.Run("rejects zero denominator", func(t *testing.T) {
		emissions := NewMeasurement(decimal.NewFromInt(5000), "TCO2E")
		zero := ZeroMeasurement("FTE")

		_, err := emissions.IntensityPer(zero)
		assert.Error(t, err)
	})
}

func TestMeasurement_JSONRoundTrip(t *testing.T) {
	original := NewMeasurement(decimal.NewFromFloat(12.345), "MWH")

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"12.345","unit":"MWH"}`, string(data))

	var restored Measurement
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.True(t, original.Equals(restored))
}

func TestMeasurement_Scan(t *testing.T) {
	t.Run("scans decimal string", func(t *testing.T) {
		var m Measurement
		require.NoError(t, m.Scan("99.5"))
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(99.5)))
	})

	t.Run("scans nil to zero", func(t *testing.T) {
		var m Measurement
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		var m Measurement
		assert.Error(t, m.Scan(42))
	})
}
