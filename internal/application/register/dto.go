package register

import (
	"time"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/register"
)

// ==================== Assumption DTOs ====================

// CreateAssumptionRequest represents a request to create an assumption
type CreateAssumptionRequest struct {
	Title        string      `json:"title" binding:"required,min=1,max=200"`
	Body         string      `json:"body" binding:"required,min=1"`
	Category     string      `json:"category" binding:"max=100"`
	OwnerUserID  *uuid.UUID  `json:"owner_user_id"`
	ReviewBy     *time.Time  `json:"review_by"`
	DataPointIDs []uuid.UUID `json:"data_point_ids"`
	CreatedBy    *uuid.UUID  `json:"-"`
}

// UpdateAssumptionRequest represents a request to update an assumption
type UpdateAssumptionRequest struct {
	Title    *string `json:"title"`
	Body     *string `json:"body"`
	Category *string `json:"category"`
}

// SetAssumptionReviewRequest represents a request to set the review date
type SetAssumptionReviewRequest struct {
	ReviewBy time.Time `json:"review_by" binding:"required"`
}

// AssumptionListFilter represents filtering options for assumption listings
type AssumptionListFilter struct {
	Page         int
	PageSize     int
	OrderBy      string
	OrderDir     string
	Search       string
	Status       *register.AssumptionStatus
	Category     string
	OwnerID      *uuid.UUID
	DueForReview bool
}

// AssumptionResponse represents an assumption in API responses
type AssumptionResponse struct {
	ID                 uuid.UUID   `json:"id"`
	Title              string      `json:"title"`
	Body               string      `json:"body"`
	Category           string      `json:"category,omitempty"`
	OwnerUserID        *uuid.UUID  `json:"owner_user_id,omitempty"`
	Status             string      `json:"status"`
	ReviewBy           *time.Time  `json:"review_by,omitempty"`
	RetiredAt          *time.Time  `json:"retired_at,omitempty"`
	LinkedDataPointIDs []uuid.UUID `json:"linked_data_point_ids"`
	Version            int         `json:"version"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// ToAssumptionResponse converts a domain assumption to a response DTO
func ToAssumptionResponse(a *register.Assumption) AssumptionResponse {
	linked := a.LinkedDataPointIDs
	if linked == nil {
		linked = []uuid.UUID{}
	}
	return AssumptionResponse{
		ID:                 a.ID,
		Title:              a.Title,
		Body:               a.Body,
		Category:           a.Category,
		OwnerUserID:        a.OwnerUserID,
		Status:             string(a.Status),
		ReviewBy:           a.ReviewBy,
		RetiredAt:          a.RetiredAt,
		LinkedDataPointIDs: linked,
		Version:            a.Version,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// ToAssumptionResponses converts a slice of domain assumptions to response DTOs
func ToAssumptionResponses(assumptions []register.Assumption) []AssumptionResponse {
	responses := make([]AssumptionResponse, len(assumptions))
	for i := range assumptions {
		responses[i] = ToAssumptionResponse(&assumptions[i])
	}
	return responses
}

// ==================== Decision DTOs ====================

// CreateDecisionRequest represents a request to record an estimation decision
type CreateDecisionRequest struct {
	Title          string      `json:"title" binding:"required,min=1,max=200"`
	Method         string      `json:"method" binding:"required,min=1,max=200"`
	Rationale      string      `json:"rationale" binding:"required,min=1"`
	Confidence     string      `json:"confidence" binding:"required,oneof=low medium high"`
	DecidedAt      *time.Time  `json:"decided_at"`
	ApproverUserID *uuid.UUID  `json:"approver_user_id"`
	DataPointIDs   []uuid.UUID `json:"data_point_ids"`
	CreatedBy      *uuid.UUID  `json:"-"`
}

// UpdateDecisionRequest represents a request to update an estimation decision
type UpdateDecisionRequest struct {
	Title      *string `json:"title"`
	Method     *string `json:"method"`
	Rationale  *string `json:"rationale"`
	Confidence *string `json:"confidence"`
}

// SetDecisionApproverRequest represents a request to record the approver
type SetDecisionApproverRequest struct {
	ApproverUserID uuid.UUID `json:"approver_user_id" binding:"required"`
}

// DecisionListFilter represents filtering options for decision listings
type DecisionListFilter struct {
	Page       int
	PageSize   int
	OrderBy    string
	OrderDir   string
	Search     string
	Confidence *register.ConfidenceLevel
	ApproverID *uuid.UUID
	Method     string
}

// DecisionResponse represents an estimation decision in API responses
type DecisionResponse struct {
	ID                   uuid.UUID   `json:"id"`
	Title                string      `json:"title"`
	Method               string      `json:"method"`
	Rationale            string      `json:"rationale"`
	Confidence           string      `json:"confidence"`
	ApproverUserID       *uuid.UUID  `json:"approver_user_id,omitempty"`
	DecidedAt            time.Time   `json:"decided_at"`
	AffectedDataPointIDs []uuid.UUID `json:"affected_data_point_ids"`
	Version              int         `json:"version"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// ToDecisionResponse converts a domain decision to a response DTO
func ToDecisionResponse(d *register.Decision) DecisionResponse {
	affected := d.AffectedDataPointIDs
	if affected == nil {
		affected = []uuid.UUID{}
	}
	return DecisionResponse{
		ID:                   d.ID,
		Title:                d.Title,
		Method:               d.Method,
		Rationale:            d.Rationale,
		Confidence:           string(d.Confidence),
		ApproverUserID:       d.ApproverUserID,
		DecidedAt:            d.DecidedAt,
		AffectedDataPointIDs: affected,
		Version:              d.Version,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

// ToDecisionResponses converts a slice of domain decisions to response DTOs
func ToDecisionResponses(decisions []register.Decision) []DecisionResponse {
	responses := make([]DecisionResponse, len(decisions))
	for i := range decisions {
		responses[i] = ToDecisionResponse(&decisions[i])
	}
	return responses
}

// ==================== Gap DTOs ====================

// CreateGapRequest represents a request to raise a disclosure gap
type CreateGapRequest struct {
	PeriodID    uuid.UUID  `json:"period_id" binding:"required"`
	SectionID   *uuid.UUID `json:"section_id"`
	DataPointID *uuid.UUID `json:"data_point_id"`
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Description string     `json:"description" binding:"required,min=1"`
	Severity    string     `json:"severity" binding:"required,oneof=low medium high critical"`
	RaisedBy    *uuid.UUID `json:"-"`
}

// UpdateGapRequest represents a request to update a gap
type UpdateGapRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Severity    *string `json:"severity"`
}

// CloseGapRequest represents a request to resolve or accept a gap
type CloseGapRequest struct {
	Note     string    `json:"note" binding:"required,min=1,max=1000"`
	ClosedBy uuid.UUID `json:"-"`
}

// GapListFilter represents filtering options for gap listings
type GapListFilter struct {
	Page        int
	PageSize    int
	OrderBy     string
	OrderDir    string
	Search      string
	PeriodID    *uuid.UUID
	SectionID   *uuid.UUID
	DataPointID *uuid.UUID
	Status      *register.GapStatus
	Severity    *register.GapSeverity
	OpenOnly    bool
}

// GapResponse represents a disclosure gap in API responses
type GapResponse struct {
	ID             uuid.UUID  `json:"id"`
	PeriodID       uuid.UUID  `json:"period_id"`
	SectionID      *uuid.UUID `json:"section_id,omitempty"`
	DataPointID    *uuid.UUID `json:"data_point_id,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Severity       string     `json:"severity"`
	Status         string     `json:"status"`
	RaisedBy       *uuid.UUID `json:"raised_by,omitempty"`
	ResolutionNote string     `json:"resolution_note,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy     *uuid.UUID `json:"resolved_by,omitempty"`
	Version        int        `json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ToGapResponse converts a domain gap to a response DTO
func ToGapResponse(g *register.Gap) GapResponse {
	return GapResponse{
		ID:             g.ID,
		PeriodID:       g.PeriodID,
		SectionID:      g.SectionID,
		DataPointID:    g.DataPointID,
		Title:          g.Title,
		Description:    g.Description,
		Severity:       string(g.Severity),
		Status:         string(g.Status),
		RaisedBy:       g.RaisedBy,
		ResolutionNote: g.ResolutionNote,
		ResolvedAt:     g.ResolvedAt,
		ResolvedBy:     g.ResolvedBy,
		Version:        g.Version,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
}

// ToGapResponses converts a slice of domain gaps to response DTOs
func ToGapResponses(gaps []register.Gap) []GapResponse {
	responses := make([]GapResponse, len(gaps))
	for i := range gaps {
		responses[i] = ToGapResponse(&gaps[i])
	}
	return responses
}
