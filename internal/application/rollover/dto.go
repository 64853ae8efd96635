package rollover

import (
	"time"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/rollover"
)

// TriggerRolloverRequest represents a request to roll a period over into a new one
type TriggerRolloverRequest struct {
	SourcePeriodID uuid.UUID  `json:"source_period_id" binding:"required"`
	TargetPeriodID uuid.UUID  `json:"target_period_id" binding:"required"`
	IdempotencyKey string     `json:"idempotency_key" binding:"required,max=100"`
	TriggeredBy    *uuid.UUID `json:"-"`
}

// RunListFilter represents filtering options for rollover run listings
type RunListFilter struct {
	Page           int
	PageSize       int
	OrderBy        string
	OrderDir       string
	Status         *rollover.RolloverStatus
	SourcePeriodID *uuid.UUID
	TargetPeriodID *uuid.UUID
}

// ItemListFilter represents filtering options for per-item outcome listings
type ItemListFilter struct {
	Page     int
	PageSize int
	Category string
	Outcome  string
}

// RunResponse represents a rollover run in API responses
type RunResponse struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	SourcePeriodID uuid.UUID  `json:"source_period_id"`
	TargetPeriodID uuid.UUID  `json:"target_period_id"`
	IdempotencyKey string     `json:"idempotency_key"`
	Status         string     `json:"status"`
	Phase          string     `json:"phase,omitempty"`
	TriggeredBy    *uuid.UUID `json:"triggered_by,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	FailureReason  string     `json:"failure_reason,omitempty"`
	CarriedCount   int        `json:"carried_count"`
	ResetCount     int        `json:"reset_count"`
	SkippedCount   int        `json:"skipped_count"`
	FailedCount    int        `json:"failed_count"`
	TotalCount     int        `json:"total_count"`
	Version        int        `json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ItemResponse represents a per-item outcome row in API responses
type ItemResponse struct {
	ID        uuid.UUID  `json:"id"`
	RunID     uuid.UUID  `json:"run_id"`
	Category  string     `json:"category"`
	SourceID  uuid.UUID  `json:"source_id"`
	TargetID  *uuid.UUID `json:"target_id,omitempty"`
	Code      string     `json:"code,omitempty"`
	Outcome   string     `json:"outcome"`
	Detail    string     `json:"detail,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ReconciliationResponse summarizes what a run did, per category and outcome
type ReconciliationResponse struct {
	Run        RunResponse      `json:"run"`
	ByOutcome  map[string]int64 `json:"by_outcome"`
	ByCategory map[string]int64 `json:"by_category"`
}

// ToRunResponse converts a domain run to a response DTO
func ToRunResponse(run *rollover.RolloverRun) RunResponse {
	return RunResponse{
		ID:             run.ID,
		OrganizationID: run.OrganizationID,
		SourcePeriodID: run.SourcePeriodID,
		TargetPeriodID: run.TargetPeriodID,
		IdempotencyKey: run.IdempotencyKey,
		Status:         string(run.Status),
		Phase:          string(run.Phase),
		TriggeredBy:    run.TriggeredBy,
		StartedAt:      run.StartedAt,
		FinishedAt:     run.FinishedAt,
		FailureReason:  run.FailureReason,
		CarriedCount:   run.CarriedCount,
		ResetCount:     run.ResetCount,
		SkippedCount:   run.SkippedCount,
		FailedCount:    run.FailedCount,
		TotalCount:     run.TotalCount(),
		Version:        run.Version,
		CreatedAt:      run.CreatedAt,
		UpdatedAt:      run.UpdatedAt,
	}
}

// ToRunResponses converts a slice of domain runs to response DTOs
func ToRunResponses(runs []rollover.RolloverRun) []RunResponse {
	responses := make([]RunResponse, len(runs))
	for i := range runs {
		responses[i] = ToRunResponse(&runs[i])
	}
	return responses
}

// ToItemResponse converts a domain outcome row to a response DTO
func ToItemResponse(item *rollover.RolloverItem) ItemResponse {
	return ItemResponse{
		ID:        item.ID,
		RunID:     item.RunID,
		Category:  string(item.Category),
		SourceID:  item.SourceID,
		TargetID:  item.TargetID,
		Code:      item.Code,
		Outcome:   string(item.Outcome),
		Detail:    item.Detail,
		CreatedAt: item.CreatedAt,
	}
}

// ToItemResponses converts a slice of domain outcome rows to response DTOs
func ToItemResponses(items []rollover.RolloverItem) []ItemResponse {
	responses := make([]ItemResponse, len(items))
	for i := range items {
		responses[i] = ToItemResponse(&items[i])
	}
	return responses
}
