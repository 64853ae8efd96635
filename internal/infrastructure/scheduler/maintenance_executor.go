package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompletenessSnapshotter captures a daily completeness snapshot for an organization's open period
type CompletenessSnapshotter interface {
	SnapshotOpenPeriod(ctx context.Context, organizationID uuid.UUID, day time.Time) error
}

// DeadlineReminder emits reminder events for periods approaching their reporting deadline
type DeadlineReminder interface {
	RemindUpcomingDeadlines(ctx context.Context, organizationID uuid.UUID, asOf time.Time) error
}

// OverduePlanSweeper flags remediation plans that have passed their due date
type OverduePlanSweeper interface {
	SweepOverduePlans(ctx context.Context, organizationID uuid.UUID, asOf time.Time) error
}

// MaintenanceExecutor executes scheduled maintenance jobs by dispatching on job type
type MaintenanceExecutor struct {
	snapshotter CompletenessSnapshotter
	reminder    DeadlineReminder
	sweeper     OverduePlanSweeper
	logger      *zap.Logger
}

// NewMaintenanceExecutor creates a new MaintenanceExecutor
func NewMaintenanceExecutor(
	snapshotter CompletenessSnapshotter,
	reminder DeadlineReminder,
	sweeper OverduePlanSweeper,
	logger *zap.Logger,
) *MaintenanceExecutor {
	return &MaintenanceExecutor{
		snapshotter: snapshotter,
		reminder:    reminder,
		sweeper:     sweeper,
		logger:      logger,
	}
}

// Execute runs a single maintenance job
func (e *MaintenanceExecutor) Execute(ctx context.Context, job *Job) error {
	if job.OrganizationID == nil {
		return fmt.Errorf("maintenance job %s requires an organization: %w", job.JobType, ErrInvalidJobType)
	}
	orgID := *job.OrganizationID

	e.logger.Debug("Executing maintenance job",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.JobType)),
		zap.String("organization_id", orgID.String()),
		zap.Time("run_date", job.RunDate),
	)

	switch job.JobType {
	case JobTypeCompletenessSnapshot:
		if e.snapshotter == nil {
			return fmt.Errorf("no snapshotter configured: %w", ErrInvalidJobType)
		}
		return e.snapshotter.SnapshotOpenPeriod(ctx, orgID, job.RunDate)
	case JobTypeDeadlineReminder:
		if e.reminder == nil {
			return fmt.Errorf("no deadline reminder configured: %w", ErrInvalidJobType)
		}
		return e.reminder.RemindUpcomingDeadlines(ctx, orgID, job.RunDate)
	case JobTypeOverduePlanSweep:
		if e.sweeper == nil {
			return fmt.Errorf("no overdue plan sweeper configured: %w", ErrInvalidJobType)
		}
		return e.sweeper.SweepOverduePlans(ctx, orgID, job.RunDate)
	default:
		return fmt.Errorf("unknown job type %q: %w", job.JobType, ErrInvalidJobType)
	}
}
