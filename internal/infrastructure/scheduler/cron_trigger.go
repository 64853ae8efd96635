package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrganizationProvider provides a list of organizations for scheduling
type OrganizationProvider interface {
	GetAllActiveOrganizationIDs(ctx context.Context) ([]uuid.UUID, error)
}

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	// DailyRunHour/DailyRunMinute is the time to run the daily maintenance pass (24h format)
	DailyRunHour   int
	DailyRunMinute int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		DailyRunHour:   2, // 2am
		DailyRunMinute: 0,
		CheckInterval:  time.Minute,
	}
}

// CronTrigger triggers the scheduled daily maintenance jobs
type CronTrigger struct {
	config      CronTriggerConfig
	scheduler   *Scheduler
	orgProvider OrganizationProvider
	logger      *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string // Track which date we last ran for
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(
	config CronTriggerConfig,
	scheduler *Scheduler,
	orgProvider OrganizationProvider,
	logger *zap.Logger,
) *CronTrigger {
	return &CronTrigger{
		config:      config,
		scheduler:   scheduler,
		orgProvider: orgProvider,
		logger:      logger,
	}
}

// Start starts the cron trigger
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Cron trigger started",
		zap.Int("daily_hour", c.config.DailyRunHour),
		zap.Int("daily_minute", c.config.DailyRunMinute),
		zap.Duration("check_interval", c.config.CheckInterval),
	)

	return nil
}

// Stop stops the cron trigger
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop checks periodically if it's time to run the maintenance pass
func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger checks if it's time to run and triggers the maintenance jobs
func (c *CronTrigger) checkAndTrigger(ctx context.Context) {
	now := time.Now()
	currentDate := now.Format("2006-01-02")

	// Skip if we already ran today
	c.mu.Lock()
	if c.lastRunDate == currentDate {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	// Check if it's the right time
	if now.Hour() != c.config.DailyRunHour || now.Minute() != c.config.DailyRunMinute {
		return
	}

	// It's time to run!
	c.mu.Lock()
	c.lastRunDate = currentDate
	c.mu.Unlock()

	c.logger.Info("Triggering daily maintenance jobs")
	c.triggerDailyJobs(ctx)
}

// triggerDailyJobs submits the daily maintenance jobs for all organizations
func (c *CronTrigger) triggerDailyJobs(ctx context.Context) {
	// Get all active organizations
	orgIDs, err := c.orgProvider.GetAllActiveOrganizationIDs(ctx)
	if err != nil {
		c.logger.Error("Failed to get organization IDs for daily maintenance", zap.Error(err))
		return
	}

	c.logger.Info("Scheduling daily maintenance for organizations",
		zap.Int("organization_count", len(orgIDs)),
	)

	// Schedule jobs for each organization
	for _, orgID := range orgIDs {
		oid := orgID // Capture for closure
		if err := c.scheduler.ScheduleDailyJobs(&oid); err != nil {
			c.logger.Error("Failed to schedule daily maintenance for organization",
				zap.String("organization_id", orgID.String()),
				zap.Error(err),
			)
		}
	}
}

// TriggerManualRefresh allows manual triggering of maintenance jobs
func (c *CronTrigger) TriggerManualRefresh(ctx context.Context, organizationID *uuid.UUID, jobType *JobType, runDate time.Time) error {
	if jobType != nil {
		// Trigger specific job type
		return c.scheduler.ScheduleJob(organizationID, *jobType, runDate)
	}

	// Trigger all job types
	for _, jt := range AllJobTypes() {
		if err := c.scheduler.ScheduleJob(organizationID, jt, runDate); err != nil {
			return err
		}
	}
	return nil
}
