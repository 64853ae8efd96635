package reporting

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompletenessSnapshot_Success(t *testing.T) {
	organizationID := uuid.New()
	periodID := uuid.New()
	taken := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	s, err := NewCompletenessSnapshot(organizationID, periodID, decimal.NewFromFloat(72.5), "weighted", 40, 29, taken)

	require.NoError(t, err)
	assert.Equal(t, organizationID, s.OrganizationID)
	assert.Equal(t, periodID, s.PeriodID)
	assert.True(t, decimal.NewFromFloat(72.5).Equal(s.Score))
	assert.Equal(t, "weighted", s.Strategy)
	assert.Equal(t, 40, s.MandatoryTotal)
	assert.Equal(t, 29, s.MandatoryComplete)
	// Truncated to the day
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), s.SnapshotDate)
}

func TestNewCompletenessSnapshot_ScoreOutOfRange(t *testing.T) {
	_, err := NewCompletenessSnapshot(uuid.New(), uuid.New(), decimal.NewFromInt(101), "weighted", 0, 0, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 0 and 100")

	_, err = NewCompletenessSnapshot(uuid.New(), uuid.New(), decimal.NewFromInt(-1), "weighted", 0, 0, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 0 and 100")
}

func TestNewCompletenessSnapshot_MissingStrategy(t *testing.T) {
	_, err := NewCompletenessSnapshot(uuid.New(), uuid.New(), decimal.NewFromInt(50), "", 0, 0, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Strategy")
}

func TestCompletenessSnapshot_TableName(t *testing.T) {
	assert.Equal(t, "completeness_snapshots", CompletenessSnapshot{}.TableName())
}
