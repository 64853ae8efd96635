package rollover

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRun(t *testing.T) *RolloverRun {
	r, err := NewRolloverRun(uuid.New(), uuid.New(), uuid.New(), "fy2025-to-fy2026", nil)
	require.NoError(t, err)
	return r
}

func createRunningTestRun(t *testing.T) *RolloverRun {
	r := createTestRun(t)
	require.NoError(t, r.Start())
	return r
}

// ============================================
// RolloverStatus Tests
// ============================================

func TestRolloverStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     RolloverStatus
		to       RolloverStatus
		canTrans bool
	}{
		// From pending
		{RolloverStatusPending, RolloverStatusRunning, true},
		{RolloverStatusPending, RolloverStatusCompleted, false},
		{RolloverStatusPending, RolloverStatusFailed, false},
		// From running
		{RolloverStatusRunning, RolloverStatusCompleted, true},
		{RolloverStatusRunning, RolloverStatusFailed, true},
		{RolloverStatusRunning, RolloverStatusPending, false},
		// Failed runs resume
		{RolloverStatusFailed, RolloverStatusRunning, true},
		{RolloverStatusFailed, RolloverStatusCompleted, false},
		// Completed is terminal
		{RolloverStatusCompleted, RolloverStatusRunning, false},
		{RolloverStatusCompleted, RolloverStatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// RolloverRun Creation Tests
// ============================================

func TestNewRolloverRun_Success(t *testing.T) {
	organizationID := uuid.New()
	sourceID := uuid.New()
	targetID := uuid.New()
	triggeredBy := uuid.New()

	r, err := NewRolloverRun(organizationID, sourceID, targetID, "  fy-roll-1  ", &triggeredBy)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, organizationID, r.OrganizationID)
	assert.Equal(t, sourceID, r.SourcePeriodID)
	assert.Equal(t, targetID, r.TargetPeriodID)
	assert.Equal(t, "fy-roll-1", r.IdempotencyKey)
	assert.Equal(t, RolloverStatusPending, r.Status)
	assert.Equal(t, PhaseNotStarted, r.Phase)
	assert.Equal(t, &triggeredBy, r.TriggeredBy)
	assert.Len(t, r.GetDomainEvents(), 1)
}

func TestNewRolloverRun_SamePeriod(t *testing.T) {
	periodID := uuid.New()

	_, err := NewRolloverRun(uuid.New(), periodID, periodID, "key", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestNewRolloverRun_MissingKey(t *testing.T) {
	_, err := NewRolloverRun(uuid.New(), uuid.New(), uuid.New(), "   ", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")

	_, err = NewRolloverRun(uuid.New(), uuid.New(), uuid.New(), strings.Repeat("k", 101), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "100")
}

// ============================================
// Lifecycle Tests
// ============================================

func TestRolloverRun_Start(t *testing.T) {
	r := createTestRun(t)
	r.ClearDomainEvents()

	err := r.Start()

	require.NoError(t, err)
	assert.Equal(t, RolloverStatusRunning, r.Status)
	assert.NotNil(t, r.StartedAt)
	assert.True(t, r.IsRunning())
	assert.Len(t, r.GetDomainEvents(), 1)
}

func TestRolloverRun_Start_Twice(t *testing.T) {
	r := createRunningTestRun(t)

	err := r.Start()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pending")
}

func TestRolloverRun_Complete(t *testing.T) {
	r := createRunningTestRun(t)
	require.NoError(t, r.AdvanceToPhase(PhaseRegister))
	r.ClearDomainEvents()

	err := r.Complete()

	require.NoError(t, err)
	assert.Equal(t, RolloverStatusCompleted, r.Status)
	assert.Equal(t, PhaseFinished, r.Phase)
	assert.NotNil(t, r.FinishedAt)
	assert.True(t, r.IsTerminal())
}

func TestRolloverRun_Complete_NotRunning(t *testing.T) {
	r := createTestRun(t)

	err := r.Complete()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "running")
}

func TestRolloverRun_FailAndResume(t *testing.T) {
	r := createRunningTestRun(t)
	require.NoError(t, r.AdvanceToPhase(PhaseDataPoints))
	r.ClearDomainEvents()

	err := r.Fail("target period was deleted mid-run")

	require.NoError(t, err)
	assert.Equal(t, RolloverStatusFailed, r.Status)
	assert.Equal(t, "target period was deleted mid-run", r.FailureReason)
	assert.NotNil(t, r.FinishedAt)
	assert.False(t, r.IsTerminal())

	err = r.Resume()

	require.NoError(t, err)
	assert.Equal(t, RolloverStatusRunning, r.Status)
	assert.Empty(t, r.FailureReason)
	assert.Nil(t, r.FinishedAt)
	// Phase survives the resume so completed phases are not repeated
	assert.Equal(t, PhaseDataPoints, r.Phase)
}

func TestRolloverRun_Fail_RequiresReason(t *testing.T) {
	r := createRunningTestRun(t)

	err := r.Fail("  ")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestRolloverRun_Resume_OnlyFailed(t *testing.T) {
	r := createRunningTestRun(t)

	err := r.Resume()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
}

func TestRolloverRun_FailedEventCarriesPhase(t *testing.T) {
	r := createRunningTestRun(t)
	require.NoError(t, r.AdvanceToPhase(PhaseSections))
	r.ClearDomainEvents()

	require.NoError(t, r.Fail("db connection lost"))

	events := r.GetDomainEvents()
	require.Len(t, events, 1)
	failed, ok := events[0].(*RolloverFailedEvent)
	require.True(t, ok)
	assert.Equal(t, EventTypeRolloverFailed, failed.EventType())
	assert.Equal(t, PhaseSections, failed.Phase)
	assert.Equal(t, "db connection lost", failed.Reason)
}

// ============================================
// Phase Tests
// ============================================

func TestRolloverRun_AdvanceToPhase(t *testing.T) {
	r := createRunningTestRun(t)

	require.NoError(t, r.AdvanceToPhase(PhaseSections))
	assert.Equal(t, PhaseSections, r.Phase)

	require.NoError(t, r.AdvanceToPhase(PhaseDataPoints))
	require.NoError(t, r.AdvanceToPhase(PhaseRegister))
	assert.Equal(t, PhaseRegister, r.Phase)
}

func TestRolloverRun_AdvanceToPhase_Backward(t *testing.T) {
	r := createRunningTestRun(t)
	require.NoError(t, r.AdvanceToPhase(PhaseDataPoints))

	err := r.AdvanceToPhase(PhaseSections)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "backward")
}

func TestRolloverRun_AdvanceToPhase_NotRunning(t *testing.T) {
	r := createTestRun(t)

	err := r.AdvanceToPhase(PhaseSections)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "running")
}

func TestRolloverRun_HasCompletedPhase(t *testing.T) {
	r := createRunningTestRun(t)
	require.NoError(t, r.AdvanceToPhase(PhaseDataPoints))

	assert.True(t, r.HasCompletedPhase(PhaseSections))
	assert.False(t, r.HasCompletedPhase(PhaseDataPoints))
	assert.False(t, r.HasCompletedPhase(PhaseRegister))
}

// ============================================
// Outcome Tests
// ============================================

func TestRolloverRun_RecordOutcome(t *testing.T) {
	r := createRunningTestRun(t)

	require.NoError(t, r.RecordOutcome(OutcomeCarried))
	require.NoError(t, r.RecordOutcome(OutcomeCarried))
	require.NoError(t, r.RecordOutcome(OutcomeReset))
	require.NoError(t, r.RecordOutcome(OutcomeSkipped))
	require.NoError(t, r.RecordOutcome(OutcomeFailed))

	assert.Equal(t, 2, r.CarriedCount)
	assert.Equal(t, 1, r.ResetCount)
	assert.Equal(t, 1, r.SkippedCount)
	assert.Equal(t, 1, r.FailedCount)
	assert.Equal(t, 5, r.TotalCount())
}

func TestRolloverRun_RecordOutcome_NotRunning(t *testing.T) {
	r := createTestRun(t)

	err := r.RecordOutcome(OutcomeCarried)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "running")
}

func TestRolloverRun_CompletedEventCarriesCounts(t *testing.T) {
	r := createRunningTestRun(t)
	require.NoError(t, r.RecordOutcome(OutcomeCarried))
	require.NoError(t, r.RecordOutcome(OutcomeReset))
	r.ClearDomainEvents()

	require.NoError(t, r.Complete())

	events := r.GetDomainEvents()
	require.Len(t, events, 1)
	completed, ok := events[0].(*RolloverCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, 1, completed.CarriedCount)
	assert.Equal(t, 1, completed.ResetCount)
	assert.Equal(t, r.SourcePeriodID, completed.SourcePeriodID)
	assert.Equal(t, r.TargetPeriodID, completed.TargetPeriodID)
}

// ============================================
// RolloverItem Tests
// ============================================

func TestNewRolloverItem(t *testing.T) {
	runID := uuid.New()
	sourceID := uuid.New()
	targetID := uuid.New()

	item, err := NewRolloverItem(runID, CategoryDataPoint, sourceID, &targetID, "E1-6.GHG.S1", OutcomeReset, "metric reset, prior value kept as baseline")

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, runID, item.RunID)
	assert.Equal(t, CategoryDataPoint, item.Category)
	assert.Equal(t, sourceID, item.SourceID)
	assert.Equal(t, &targetID, item.TargetID)
	assert.Equal(t, OutcomeReset, item.Outcome)
}

func TestNewRolloverItem_Invalid(t *testing.T) {
	_, err := NewRolloverItem(uuid.New(), RolloverCategory("report"), uuid.New(), nil, "", OutcomeCarried, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category")

	_, err = NewRolloverItem(uuid.New(), CategoryGap, uuid.New(), nil, "", RolloverOutcome("copied"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outcome")

	_, err = NewRolloverItem(uuid.New(), CategoryGap, uuid.Nil, nil, "", OutcomeCarried, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Source ID")
}

func TestRolloverRun_TableName(t *testing.T) {
	assert.Equal(t, "rollover_runs", RolloverRun{}.TableName())
	assert.Equal(t, "rollover_items", RolloverItem{}.TableName())
}
