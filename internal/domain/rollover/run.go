package rollover

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// RolloverStatus represents the lifecycle status of a rollover run
type RolloverStatus string

const (
	RolloverStatusPending   RolloverStatus = "pending"
	RolloverStatusRunning   RolloverStatus = "running"
	RolloverStatusCompleted RolloverStatus = "completed"
	RolloverStatusFailed    RolloverStatus = "failed"
)

// IsValid checks if the rollover status is valid
func (s RolloverStatus) IsValid() bool {
	switch s {
	case RolloverStatusPending, RolloverStatusRunning, RolloverStatusCompleted, RolloverStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s RolloverStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Failed runs can be resumed; completed runs are terminal.
func (s RolloverStatus) CanTransitionTo(target RolloverStatus) bool {
	switch s {
	case RolloverStatusPending:
		return target == RolloverStatusRunning
	case RolloverStatusRunning:
		return target == RolloverStatusCompleted || target == RolloverStatusFailed
	case RolloverStatusFailed:
		return target == RolloverStatusRunning
	case RolloverStatusCompleted:
		return false
	}
	return false
}

// RolloverPhase identifies how far a run has progressed.
// Phases execute in order and each phase commits in its own transaction,
// so a failed run resumes from the phase it stopped in.
type RolloverPhase string

const (
	PhaseNotStarted RolloverPhase = ""
	PhaseSections   RolloverPhase = "sections"
	PhaseDataPoints RolloverPhase = "data_points"
	PhaseRegister   RolloverPhase = "register"
	PhaseFinished   RolloverPhase = "finished"
)

var phaseRank = map[RolloverPhase]int{
	PhaseNotStarted: 0,
	PhaseSections:   1,
	PhaseDataPoints: 2,
	PhaseRegister:   3,
	PhaseFinished:   4,
}

// IsValid checks if the phase is a known phase
func (p RolloverPhase) IsValid() bool {
	_, ok := phaseRank[p]
	return ok
}

// RolloverCategory classifies what a rollover item copied
type RolloverCategory string

const (
	CategorySection    RolloverCategory = "section"
	CategoryDataPoint  RolloverCategory = "data_point"
	CategoryAssumption RolloverCategory = "assumption"
	CategoryGap        RolloverCategory = "gap"
	CategoryPlan       RolloverCategory = "plan"
)

// IsValid checks if the category is valid
func (c RolloverCategory) IsValid() bool {
	switch c {
	case CategorySection, CategoryDataPoint, CategoryAssumption, CategoryGap, CategoryPlan:
		return true
	}
	return false
}

// RolloverOutcome records what happened to a single item during the run
type RolloverOutcome string

const (
	OutcomeCarried RolloverOutcome = "carried"
	OutcomeReset   RolloverOutcome = "reset"
	OutcomeSkipped RolloverOutcome = "skipped"
	OutcomeFailed  RolloverOutcome = "failed"
)

// IsValid checks if the outcome is valid
func (o RolloverOutcome) IsValid() bool {
	switch o {
	case OutcomeCarried, OutcomeReset, OutcomeSkipped, OutcomeFailed:
		return true
	}
	return false
}

// RolloverRun tracks a period-to-period carry-over. The run copies the
// section tree, applies the per-kind value policy to data points, and
// carries active register entries into the target period. Outcome rows
// are stored separately because a run can touch thousands of items.
type RolloverRun struct {
	shared.OrgAggregateRoot
	SourcePeriodID uuid.UUID      `gorm:"type:uuid;not null;index"`
	TargetPeriodID uuid.UUID      `gorm:"type:uuid;not null;index"`
	IdempotencyKey string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_rollover_idem_key"`
	Status         RolloverStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	Phase          RolloverPhase  `gorm:"type:varchar(20);not null;default:''"`
	TriggeredBy    *uuid.UUID     `gorm:"type:uuid"`
	StartedAt      *time.Time
	FinishedAt     *time.Time
	FailureReason  string `gorm:"type:varchar(1000)"`
	CarriedCount   int    `gorm:"not null;default:0"`
	ResetCount     int    `gorm:"not null;default:0"`
	SkippedCount   int    `gorm:"not null;default:0"`
	FailedCount    int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (RolloverRun) TableName() string {
	return "rollover_runs"
}

// RolloverItem is one per-item outcome row of a run
type RolloverItem struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key"`
	RunID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	Category  RolloverCategory `gorm:"type:varchar(30);not null;index"`
	SourceID  uuid.UUID        `gorm:"type:uuid;not null"`
	TargetID  *uuid.UUID       `gorm:"type:uuid"`
	Code      string           `gorm:"type:varchar(200)"`
	Outcome   RolloverOutcome  `gorm:"type:varchar(20);not null;index"`
	Detail    string           `gorm:"type:varchar(500)"`
	CreatedAt time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RolloverItem) TableName() string {
	return "rollover_items"
}

// NewRolloverItem creates an outcome row for a run
func NewRolloverItem(runID uuid.UUID, category RolloverCategory, sourceID uuid.UUID, targetID *uuid.UUID, code string, outcome RolloverOutcome, detail string) (*RolloverItem, error) {
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown rollover category")
	}
	if !outcome.IsValid() {
		return nil, shared.NewDomainError("INVALID_OUTCOME", "Unknown rollover outcome")
	}
	if sourceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SOURCE_ID", "Source ID cannot be empty")
	}

	return &RolloverItem{
		ID:        uuid.New(),
		RunID:     runID,
		Category:  category,
		SourceID:  sourceID,
		TargetID:  targetID,
		Code:      code,
		Outcome:   outcome,
		Detail:    detail,
		CreatedAt: time.Now(),
	}, nil
}

// NewRolloverRun creates a new pending run.
// The idempotency key deduplicates repeated trigger requests: posting the
// same key again returns the original run instead of starting a new one.
func NewRolloverRun(organizationID, sourcePeriodID, targetPeriodID uuid.UUID, idempotencyKey string, triggeredBy *uuid.UUID) (*RolloverRun, error) {
	if sourcePeriodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SOURCE_PERIOD", "Source period ID cannot be empty")
	}
	if targetPeriodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TARGET_PERIOD", "Target period ID cannot be empty")
	}
	if sourcePeriodID == targetPeriodID {
		return nil, shared.NewDomainError("SAME_PERIOD", "Source and target period must differ")
	}
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey == "" {
		return nil, shared.NewDomainError("INVALID_IDEMPOTENCY_KEY", "Idempotency key is required")
	}
	if len(idempotencyKey) > 100 {
		return nil, shared.NewDomainError("INVALID_IDEMPOTENCY_KEY", "Idempotency key cannot exceed 100 characters")
	}

	run := &RolloverRun{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(organizationID),
		SourcePeriodID:   sourcePeriodID,
		TargetPeriodID:   targetPeriodID,
		IdempotencyKey:   idempotencyKey,
		Status:           RolloverStatusPending,
		Phase:            PhaseNotStarted,
		TriggeredBy:      triggeredBy,
	}

	run.AddDomainEvent(NewRolloverStartRequestedEvent(run))

	return run, nil
}

// Start transitions the run from pending to running
func (r *RolloverRun) Start() error {
	if r.Status != RolloverStatusPending {
		return shared.NewDomainError("INVALID_TRANSITION", "Only pending runs can be started")
	}

	now := time.Now()
	r.Status = RolloverStatusRunning
	r.StartedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewRolloverStartedEvent(r))

	return nil
}

// Resume restarts a failed run from the phase it stopped in
func (r *RolloverRun) Resume() error {
	if r.Status != RolloverStatusFailed {
		return shared.NewDomainError("INVALID_TRANSITION", "Only failed runs can be resumed")
	}

	r.Status = RolloverStatusRunning
	r.FinishedAt = nil
	r.FailureReason = ""
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewRolloverResumedEvent(r))

	return nil
}

// AdvanceToPhase moves the run forward to the given phase.
// Phases never move backward, so a resumed run skips completed phases.
func (r *RolloverRun) AdvanceToPhase(phase RolloverPhase) error {
	if r.Status != RolloverStatusRunning {
		return shared.NewDomainError("INVALID_STATE", "Phases only advance on a running run")
	}
	if !phase.IsValid() || phase == PhaseNotStarted {
		return shared.NewDomainError("INVALID_PHASE", "Unknown rollover phase")
	}
	if phaseRank[phase] < phaseRank[r.Phase] {
		return shared.NewDomainError("INVALID_PHASE", "Phases cannot move backward")
	}

	r.Phase = phase
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// HasCompletedPhase checks if the given phase is already behind the run
func (r *RolloverRun) HasCompletedPhase(phase RolloverPhase) bool {
	return phaseRank[r.Phase] > phaseRank[phase]
}

// RecordOutcome tallies one item outcome into the run counters
func (r *RolloverRun) RecordOutcome(outcome RolloverOutcome) error {
	if r.Status != RolloverStatusRunning {
		return shared.NewDomainError("INVALID_STATE", "Outcomes are only recorded on a running run")
	}

	switch outcome {
	case OutcomeCarried:
		r.CarriedCount++
	case OutcomeReset:
		r.ResetCount++
	case OutcomeSkipped:
		r.SkippedCount++
	case OutcomeFailed:
		r.FailedCount++
	default:
		return shared.NewDomainError("INVALID_OUTCOME", "Unknown rollover outcome")
	}

	r.UpdatedAt = time.Now()
	return nil
}

// Complete transitions the run to completed
func (r *RolloverRun) Complete() error {
	if !r.Status.CanTransitionTo(RolloverStatusCompleted) {
		return shared.NewDomainError("INVALID_TRANSITION", "Only running runs can be completed")
	}

	now := time.Now()
	r.Status = RolloverStatusCompleted
	r.Phase = PhaseFinished
	r.FinishedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewRolloverCompletedEvent(r))

	return nil
}

// Fail records a failure with the phase preserved for a later resume
func (r *RolloverRun) Fail(reason string) error {
	if !r.Status.CanTransitionTo(RolloverStatusFailed) {
		return shared.NewDomainError("INVALID_TRANSITION", "Only running runs can fail")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("REASON_REQUIRED", "Failure reason is required")
	}
	if len(reason) > 1000 {
		reason = reason[:1000]
	}

	now := time.Now()
	r.Status = RolloverStatusFailed
	r.FinishedAt = &now
	r.FailureReason = reason
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewRolloverFailedEvent(r))

	return nil
}

// IsRunning checks if the run is in progress
func (r *RolloverRun) IsRunning() bool {
	return r.Status == RolloverStatusRunning
}

// IsTerminal checks if the run reached a final state.
// Failed runs can still be resumed and are not terminal.
func (r *RolloverRun) IsTerminal() bool {
	return r.Status == RolloverStatusCompleted
}

// TotalCount returns the total number of recorded item outcomes
func (r *RolloverRun) TotalCount() int {
	return r.CarriedCount + r.ResetCount + r.SkippedCount + r.FailedCount
}
