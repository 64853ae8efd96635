package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func TestNewBusinessMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, bm)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_RecordDataPointValue(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	orgID := uuid.New()

	// Should not panic
	bm.RecordDataPointValue(ctx, orgID, "metric")
	bm.RecordDataPointValue(ctx, orgID, "narrative")
	bm.RecordDataPointValue(ctx, orgID, "boolean")
}

func TestBusinessMetrics_RecordPeriodTransition(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	orgID := uuid.New()

	// Should not panic
	bm.RecordPeriodTransition(ctx, orgID, "open")
	bm.RecordPeriodTransition(ctx, orgID, "closed")
}

func TestBusinessMetrics_RecordApprovalDecision(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	orgID := uuid.New()

	// Should not panic
	bm.RecordApprovalDecision(ctx, orgID, "section", "approved")
	bm.RecordApprovalDecision(ctx, orgID, "period", "rejected")
}

func TestBusinessMetrics_RecordCompletenessScore(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	orgID := uuid.New()

	// Should not panic
	bm.RecordCompletenessScore(ctx, orgID, decimal.NewFromFloat(0.75))
	bm.RecordCompletenessScore(ctx, orgID, decimal.NewFromInt(1))
}

func TestBusinessMetrics_RecordGaugeCounts(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	orgID := uuid.New()

	// Should not panic
	bm.RecordOpenGapCount(ctx, orgID, 7)
	bm.RecordPendingApprovalCount(ctx, orgID, 3)
	bm.RecordOverduePlanCount(ctx, orgID, 1)
}

// Mock implementations for testing periodic collection

type mockOrganizationProvider struct {
	orgIDs []uuid.UUID
	err    error
}

func (m *mockOrganizationProvider) GetActiveOrganizationIDs(ctx context.Context) ([]uuid.UUID, error) {
	return m.orgIDs, m.err
}

type mockReportProvider struct {
	openGaps         int64
	pendingApprovals int64
	overduePlans     int64
	err              error
}

func (m *mockReportProvider) GetOpenGapCount(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.openGaps, nil
}

func (m *mockReportProvider) GetPendingApprovalCount(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.pendingApprovals, nil
}

func (m *mockReportProvider) GetOverduePlanCount(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.overduePlans, nil
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	orgID := uuid.New()

	reportProvider := &mockReportProvider{
		openGaps:         4,
		pendingApprovals: 2,
		overduePlans:     1,
	}

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:          meter,
		Logger:         zap.NewNop(),
		ReportProvider: reportProvider,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orgProvider := &mockOrganizationProvider{
		orgIDs: []uuid.UUID{orgID},
	}

	// Start periodic collection with short interval for testing
	bm.StartPeriodicCollection(ctx, orgProvider, 100*time.Millisecond)

	// Wait for at least one collection cycle
	time.Sleep(150 * time.Millisecond)

	// Stop collection
	bm.Stop()

	// Should complete without error
}

func TestBusinessMetrics_PeriodicCollection_NoProvider(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
		// No report provider
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orgProvider := &mockOrganizationProvider{
		orgIDs: []uuid.UUID{uuid.New()},
	}

	// Should not panic with no report provider
	bm.StartPeriodicCollection(ctx, orgProvider, 50*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	bm.Stop()
}

func TestBusinessMetrics_Stop_Idempotent(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	// Calling Stop multiple times should not panic
	bm.Stop()
	bm.Stop()
	bm.Stop()
}

func TestBusinessMetrics_StartPeriodicCollection_OnlyOnce(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orgProvider := &mockOrganizationProvider{
		orgIDs: []uuid.UUID{},
	}

	// Calling StartPeriodicCollection multiple times should only start once
	bm.StartPeriodicCollection(ctx, orgProvider, time.Hour)
	bm.StartPeriodicCollection(ctx, orgProvider, time.Minute)
	bm.StartPeriodicCollection(ctx, orgProvider, time.Second)

	bm.Stop()
}

func TestMetricsError_Error(t *testing.T) {
	err := &telemetry.MetricsError{
		Op:  "TestOperation",
		Err: "test error message",
	}

	assert.Equal(t, "TestOperation: test error message", err.Error())
}
