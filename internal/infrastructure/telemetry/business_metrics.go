// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the ESG reporting system.
// It tracks data point activity, period lifecycle, approvals, and completeness.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	dataPointValueTotal   *Counter
	periodTransitionTotal *Counter
	approvalDecisionTotal *Counter
	rolloverRunTotal      *Counter

	// Gauge metrics (point-in-time values)
	completenessScore    *FloatGauge
	openGapCount         *Gauge
	pendingApprovalCount *Gauge
	overduePlanCount     *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	reportProvider ReportMetricsProvider
}

// ReportMetricsProvider provides report state for periodic metrics collection.
// This interface allows the telemetry layer to query register/approval state
// without depending on those domains directly.
type ReportMetricsProvider interface {
	// GetOpenGapCount returns the number of unresolved disclosure gaps for an organization
	GetOpenGapCount(ctx context.Context, organizationID uuid.UUID) (int64, error)

	// GetPendingApprovalCount returns the number of pending approval requests for an organization
	GetPendingApprovalCount(ctx context.Context, organizationID uuid.UUID) (int64, error)

	// GetOverduePlanCount returns the number of active remediation plans past their due date
	GetOverduePlanCount(ctx context.Context, organizationID uuid.UUID) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	ReportProvider  ReportMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:          cfg.Meter,
		logger:         logger,
		stopChan:       make(chan struct{}),
		reportProvider: cfg.ReportProvider,
	}

	var err error

	bm.dataPointValueTotal, err = NewCounter(
		cfg.Meter,
		"esg_datapoint_value_recorded_total",
		"Total number of data point value recordings",
		"{values}",
	)
	if err != nil {
		return nil, err
	}

	bm.periodTransitionTotal, err = NewCounter(
		cfg.Meter,
		"esg_period_transition_total",
		"Total number of reporting period status transitions",
		"{transitions}",
	)
	if err != nil {
		return nil, err
	}

	bm.approvalDecisionTotal, err = NewCounter(
		cfg.Meter,
		"esg_approval_decision_total",
		"Total number of approval request decisions",
		"{decisions}",
	)
	if err != nil {
		return nil, err
	}

	bm.rolloverRunTotal, err = NewCounter(
		cfg.Meter,
		"esg_rollover_run_total",
		"Total number of period rollover runs",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	bm.completenessScore, err = NewFloatGauge(
		cfg.Meter,
		"esg_period_completeness_score",
		"Current completeness score of the reporting period (0.0-1.0)",
		"1",
	)
	if err != nil {
		return nil, err
	}

	bm.openGapCount, err = NewGauge(
		cfg.Meter,
		"esg_open_gap_count",
		"Number of unresolved disclosure gaps",
		"{gaps}",
	)
	if err != nil {
		return nil, err
	}

	bm.pendingApprovalCount, err = NewGauge(
		cfg.Meter,
		"esg_pending_approval_count",
		"Number of pending approval requests",
		"{requests}",
	)
	if err != nil {
		return nil, err
	}

	bm.overduePlanCount, err = NewGauge(
		cfg.Meter,
		"esg_overdue_remediation_plan_count",
		"Number of active remediation plans past their due date",
		"{plans}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Report Content Metrics
// =============================================================================

// RecordDataPointValue records a data point value recording event.
// This should be called from the application layer when a value is recorded.
func (bm *BusinessMetrics) RecordDataPointValue(ctx context.Context, organizationID uuid.UUID, kind string) {
	bm.dataPointValueTotal.Inc(ctx,
		AttrOrganizationID.String(organizationID.String()),
		AttrDataPointKind.String(kind),
	)
}

// RecordPeriodTransition records a reporting period status transition.
func (bm *BusinessMetrics) RecordPeriodTransition(ctx context.Context, organizationID uuid.UUID, newStatus string) {
	bm.periodTransitionTotal.Inc(ctx,
		AttrOrganizationID.String(organizationID.String()),
		AttrPeriodStatus.String(newStatus),
	)
}

// RecordApprovalDecision records an approval/rejection of an approval request.
func (bm *BusinessMetrics) RecordApprovalDecision(ctx context.Context, organizationID uuid.UUID, targetKind, decision string) {
	bm.approvalDecisionTotal.Inc(ctx,
		AttrOrganizationID.String(organizationID.String()),
		AttrApprovalTarget.String(targetKind),
		AttrDecision.String(decision),
	)
}

// RecordRolloverRun records a completed or failed rollover run.
func (bm *BusinessMetrics) RecordRolloverRun(ctx context.Context, organizationID uuid.UUID, outcome string) {
	bm.rolloverRunTotal.Inc(ctx,
		AttrOrganizationID.String(organizationID.String()),
		AttrDecision.String(outcome),
	)
}

// RecordCompletenessScore records the current period completeness score.
// Score is a ratio in [0, 1].
func (bm *BusinessMetrics) RecordCompletenessScore(ctx context.Context, organizationID uuid.UUID, score decimal.Decimal) {
	f, _ := score.Float64()
	bm.completenessScore.Record(ctx, f,
		AttrOrganizationID.String(organizationID.String()),
	)
}

// RecordOpenGapCount records the number of unresolved gaps.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOpenGapCount(ctx context.Context, organizationID uuid.UUID, count int64) {
	bm.openGapCount.Record(ctx, count,
		AttrOrganizationID.String(organizationID.String()),
	)
}

// RecordPendingApprovalCount records the number of pending approval requests.
func (bm *BusinessMetrics) RecordPendingApprovalCount(ctx context.Context, organizationID uuid.UUID, count int64) {
	bm.pendingApprovalCount.Record(ctx, count,
		AttrOrganizationID.String(organizationID.String()),
	)
}

// RecordOverduePlanCount records the number of overdue remediation plans.
func (bm *BusinessMetrics) RecordOverduePlanCount(ctx context.Context, organizationID uuid.UUID, count int64) {
	bm.overduePlanCount.Record(ctx, count,
		AttrOrganizationID.String(organizationID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// OrganizationProvider provides organization IDs for periodic metrics collection.
type OrganizationProvider interface {
	GetActiveOrganizationIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects register/approval metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, orgProvider OrganizationProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, orgProvider, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, orgProvider OrganizationProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectReportMetrics(ctx, orgProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectReportMetrics(ctx, orgProvider)
		}
	}
}

// collectReportMetrics collects report gauge metrics for all organizations.
func (bm *BusinessMetrics) collectReportMetrics(ctx context.Context, orgProvider OrganizationProvider) {
	if bm.reportProvider == nil {
		bm.logger.Debug("No report provider configured, skipping report metrics collection")
		return
	}

	orgIDs, err := orgProvider.GetActiveOrganizationIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get organization IDs for metrics collection", zap.Error(err))
		return
	}

	for _, orgID := range orgIDs {
		bm.collectOrganizationMetrics(ctx, orgID)
	}
}

// collectOrganizationMetrics collects report metrics for a single organization.
func (bm *BusinessMetrics) collectOrganizationMetrics(ctx context.Context, organizationID uuid.UUID) {
	if count, err := bm.reportProvider.GetOpenGapCount(ctx, organizationID); err != nil {
		bm.logger.Warn("Failed to get open gap count for organization",
			zap.String("organization_id", organizationID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordOpenGapCount(ctx, organizationID, count)
	}

	if count, err := bm.reportProvider.GetPendingApprovalCount(ctx, organizationID); err != nil {
		bm.logger.Warn("Failed to get pending approval count for organization",
			zap.String("organization_id", organizationID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordPendingApprovalCount(ctx, organizationID, count)
	}

	if count, err := bm.reportProvider.GetOverduePlanCount(ctx, organizationID); err != nil {
		bm.logger.Warn("Failed to get overdue plan count for organization",
			zap.String("organization_id", organizationID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordOverduePlanCount(ctx, organizationID, count)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
