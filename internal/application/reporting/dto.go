package reporting

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
)

// ==================== Period DTOs ====================

// CreatePeriodRequest represents a request to create a reporting period
type CreatePeriodRequest struct {
	Label       string     `json:"label" binding:"required,min=1,max=50"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"start_date" binding:"required"`
	EndDate     time.Time  `json:"end_date" binding:"required"`
	CreatedBy   *uuid.UUID `json:"-"`
}

// UpdatePeriodRequest represents a request to update a reporting period
type UpdatePeriodRequest struct {
	Label       *string    `json:"label"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// ReopenPeriodRequest represents a request to reopen a closed period
type ReopenPeriodRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// PeriodListFilter represents filtering options for period listings
type PeriodListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Status   *reporting.PeriodStatus
}

// PeriodResponse represents a reporting period in API responses
type PeriodResponse struct {
	ID           uuid.UUID  `json:"id"`
	Label        string     `json:"label"`
	Description  string     `json:"description,omitempty"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      time.Time  `json:"end_date"`
	Status       string     `json:"status"`
	OpenedAt     *time.Time `json:"opened_at,omitempty"`
	ReviewAt     *time.Time `json:"review_at,omitempty"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`
	ReopenedAt   *time.Time `json:"reopened_at,omitempty"`
	ReopenReason string     `json:"reopen_reason,omitempty"`
	RolledFrom   *uuid.UUID `json:"rolled_from,omitempty"`
	Version      int        `json:"version"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ToPeriodResponse converts a domain period to a response DTO
func ToPeriodResponse(p *reporting.ReportingPeriod) PeriodResponse {
	return PeriodResponse{
		ID:           p.ID,
		Label:        p.Label,
		Description:  p.Description,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		Status:       string(p.Status),
		OpenedAt:     p.OpenedAt,
		ReviewAt:     p.ReviewAt,
		ClosedAt:     p.ClosedAt,
		ArchivedAt:   p.ArchivedAt,
		ReopenedAt:   p.ReopenedAt,
		ReopenReason: p.ReopenReason,
		RolledFrom:   p.RolledFrom,
		Version:      p.Version,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ToPeriodResponses converts a slice of domain periods to response DTOs
func ToPeriodResponses(periods []reporting.ReportingPeriod) []PeriodResponse {
	responses := make([]PeriodResponse, len(periods))
	for i := range periods {
		responses[i] = ToPeriodResponse(&periods[i])
	}
	return responses
}

// ==================== Section DTOs ====================

// CreateSectionRequest represents a request to create a report section
type CreateSectionRequest struct {
	PeriodID     uuid.UUID        `json:"period_id" binding:"required"`
	ParentID     *uuid.UUID       `json:"parent_id"`
	Code         string           `json:"code" binding:"required,min=1,max=50"`
	Title        string           `json:"title" binding:"required,min=1,max=200"`
	Description  string           `json:"description"`
	FrameworkRef string           `json:"framework_ref"`
	SortOrder    *int             `json:"sort_order"`
	Weight       *decimal.Decimal `json:"weight"`
	OwnerUserID  *uuid.UUID       `json:"owner_user_id"`
	CreatedBy    *uuid.UUID       `json:"-"`
}

// UpdateSectionRequest represents a request to update a report section
type UpdateSectionRequest struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	FrameworkRef *string          `json:"framework_ref"`
	SortOrder    *int             `json:"sort_order"`
	Weight       *decimal.Decimal `json:"weight"`
}

// MoveSectionRequest represents a request to reparent a section
type MoveSectionRequest struct {
	NewParentID *uuid.UUID `json:"new_parent_id"`
}

// AssignSectionOwnerRequest represents a request to assign a section owner
type AssignSectionOwnerRequest struct {
	OwnerUserID uuid.UUID `json:"owner_user_id" binding:"required"`
}

// ReopenSectionRequest represents a request to reopen an approved section
type ReopenSectionRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// SectionListFilter represents filtering options for section listings
type SectionListFilter struct {
	Page       int
	PageSize   int
	OrderBy    string
	OrderDir   string
	Search     string
	PeriodID   *uuid.UUID
	ParentID   *uuid.UUID
	Status     *reporting.SectionStatus
	OwnerID    *uuid.UUID
	ActiveOnly bool
}

// SectionResponse represents a report section in API responses
type SectionResponse struct {
	ID           uuid.UUID       `json:"id"`
	PeriodID     uuid.UUID       `json:"period_id"`
	ParentID     *uuid.UUID      `json:"parent_id,omitempty"`
	Depth        int             `json:"depth"`
	Code         string          `json:"code"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	FrameworkRef string          `json:"framework_ref,omitempty"`
	SortOrder    int             `json:"sort_order"`
	Weight       decimal.Decimal `json:"weight"`
	OwnerUserID  *uuid.UUID      `json:"owner_user_id,omitempty"`
	Status       string          `json:"status"`
	IsActive     bool            `json:"is_active"`
	ApprovedAt   *time.Time      `json:"approved_at,omitempty"`
	ReopenReason string          `json:"reopen_reason,omitempty"`
	Version      int             `json:"version"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToSectionResponse converts a domain section to a response DTO
func ToSectionResponse(s *reporting.ReportSection) SectionResponse {
	return SectionResponse{
		ID:           s.ID,
		PeriodID:     s.PeriodID,
		ParentID:     s.ParentID,
		Depth:        s.Depth,
		Code:         s.Code,
		Title:        s.Title,
		Description:  s.Description,
		FrameworkRef: s.FrameworkRef,
		SortOrder:    s.SortOrder,
		Weight:       s.Weight,
		OwnerUserID:  s.OwnerUserID,
		Status:       string(s.Status),
		IsActive:     s.IsActive,
		ApprovedAt:   s.ApprovedAt,
		ReopenReason: s.ReopenReason,
		Version:      s.Version,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// ToSectionResponses converts a slice of domain sections to response DTOs
func ToSectionResponses(sections []reporting.ReportSection) []SectionResponse {
	responses := make([]SectionResponse, len(sections))
	for i := range sections {
		responses[i] = ToSectionResponse(&sections[i])
	}
	return responses
}

// SectionTreeNode represents a section with its children for tree responses
type SectionTreeNode struct {
	SectionResponse
	Children []SectionTreeNode `json:"children"`
}

// BuildSectionTree assembles a tree from a flat section list ordered by
// depth and sort order
func BuildSectionTree(sections []reporting.ReportSection) []SectionTreeNode {
	byParent := make(map[uuid.UUID][]reporting.ReportSection)
	var roots []reporting.ReportSection
	for _, s := range sections {
		if s.ParentID == nil {
			roots = append(roots, s)
		} else {
			byParent[*s.ParentID] = append(byParent[*s.ParentID], s)
		}
	}

	var build func(s reporting.ReportSection) SectionTreeNode
	build = func(s reporting.ReportSection) SectionTreeNode {
		node := SectionTreeNode{
			SectionResponse: ToSectionResponse(&s),
			Children:        []SectionTreeNode{},
		}
		for _, child := range byParent[s.ID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	tree := make([]SectionTreeNode, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, build(root))
	}
	return tree
}

// ==================== Data Point DTOs ====================

// CreateDataPointRequest represents a request to create a data point
type CreateDataPointRequest struct {
	SectionID   uuid.UUID  `json:"section_id" binding:"required"`
	Code        string     `json:"code" binding:"required,min=1,max=50"`
	Name        string     `json:"name" binding:"required,min=1,max=200"`
	Kind        string     `json:"kind" binding:"required,oneof=metric narrative boolean"`
	Guidance    string     `json:"guidance"`
	UnitCode    string     `json:"unit_code"`
	StandardRef string     `json:"standard_ref"`
	Mandatory   bool       `json:"mandatory"`
	OwnerUserID *uuid.UUID `json:"owner_user_id"`
	CreatedBy   *uuid.UUID `json:"-"`
}

// UpdateDataPointRequest represents a request to update data point metadata
type UpdateDataPointRequest struct {
	Name        *string `json:"name"`
	Guidance    *string `json:"guidance"`
	StandardRef *string `json:"standard_ref"`
	Mandatory   *bool   `json:"mandatory"`
}

// RecordValueRequest represents a request to record a data point value.
// Exactly one of the value fields must match the data point kind.
type RecordValueRequest struct {
	NumericValue *decimal.Decimal `json:"numeric_value"`
	TextValue    *string          `json:"text_value"`
	BoolValue    *bool            `json:"bool_value"`
	UpdatedBy    uuid.UUID        `json:"-"`
}

// SetTargetRequest represents a request to set baseline and target values
type SetTargetRequest struct {
	BaselineValue *decimal.Decimal `json:"baseline_value"`
	TargetValue   *decimal.Decimal `json:"target_value"`
}

// MarkEstimatedRequest represents a request to mark a value as estimated
type MarkEstimatedRequest struct {
	DecisionID uuid.UUID `json:"decision_id" binding:"required"`
}

// AssignDataPointOwnerRequest represents a request to assign a data owner
type AssignDataPointOwnerRequest struct {
	OwnerUserID uuid.UUID `json:"owner_user_id" binding:"required"`
}

// DataPointListFilter represents filtering options for data point listings
type DataPointListFilter struct {
	Page      int
	PageSize  int
	OrderBy   string
	OrderDir  string
	Search    string
	SectionID *uuid.UUID
	PeriodID  *uuid.UUID
	Kind      *reporting.DataPointKind
	Status    *reporting.DataPointStatus
	Mandatory *bool
	OwnerID   *uuid.UUID
}

// DataPointResponse represents a data point in API responses
type DataPointResponse struct {
	ID                   uuid.UUID        `json:"id"`
	SectionID            uuid.UUID        `json:"section_id"`
	PeriodID             uuid.UUID        `json:"period_id"`
	Code                 string           `json:"code"`
	Name                 string           `json:"name"`
	Guidance             string           `json:"guidance,omitempty"`
	Kind                 string           `json:"kind"`
	UnitCode             string           `json:"unit_code,omitempty"`
	NumericValue         *decimal.Decimal `json:"numeric_value,omitempty"`
	TextValue            string           `json:"text_value,omitempty"`
	BoolValue            *bool            `json:"bool_value,omitempty"`
	BaselineValue        *decimal.Decimal `json:"baseline_value,omitempty"`
	TargetValue          *decimal.Decimal `json:"target_value,omitempty"`
	ProgressToTarget     *decimal.Decimal `json:"progress_to_target,omitempty"`
	StandardRef          string           `json:"standard_ref,omitempty"`
	Status               string           `json:"status"`
	Mandatory            bool             `json:"mandatory"`
	IsActive             bool             `json:"is_active"`
	Estimated            bool             `json:"estimated"`
	EstimationDecisionID *uuid.UUID       `json:"estimation_decision_id,omitempty"`
	OwnerUserID          *uuid.UUID       `json:"owner_user_id,omitempty"`
	ValueUpdatedAt       *time.Time       `json:"value_updated_at,omitempty"`
	ValueUpdatedBy       *uuid.UUID       `json:"value_updated_by,omitempty"`
	Version              int              `json:"version"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// ToDataPointResponse converts a domain data point to a response DTO
func ToDataPointResponse(d *reporting.DataPoint) DataPointResponse {
	resp := DataPointResponse{
		ID:                   d.ID,
		SectionID:            d.SectionID,
		PeriodID:             d.PeriodID,
		Code:                 d.Code,
		Name:                 d.Name,
		Guidance:             d.Guidance,
		Kind:                 string(d.Kind),
		UnitCode:             d.UnitCode,
		NumericValue:         d.NumericValue,
		TextValue:            d.TextValue,
		BoolValue:            d.BoolValue,
		BaselineValue:        d.BaselineValue,
		TargetValue:          d.TargetValue,
		StandardRef:          d.StandardRef,
		Status:               string(d.Status),
		Mandatory:            d.Mandatory,
		IsActive:             d.IsActive,
		Estimated:            d.Estimated,
		EstimationDecisionID: d.EstimationDecisionID,
		OwnerUserID:          d.OwnerUserID,
		ValueUpdatedAt:       d.ValueUpdatedAt,
		ValueUpdatedBy:       d.ValueUpdatedBy,
		Version:              d.Version,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}

	if progress, err := d.ProgressTowardTarget(); err == nil {
		resp.ProgressToTarget = &progress
	}

	return resp
}

// ToDataPointResponses converts a slice of domain data points to response DTOs
func ToDataPointResponses(dps []reporting.DataPoint) []DataPointResponse {
	responses := make([]DataPointResponse, len(dps))
	for i := range dps {
		responses[i] = ToDataPointResponse(&dps[i])
	}
	return responses
}

// ==================== Completeness DTOs ====================

// SectionCompletenessResponse represents one section's completeness score
type SectionCompletenessResponse struct {
	SectionID        uuid.UUID                     `json:"section_id"`
	Code             string                        `json:"code"`
	Title            string                        `json:"title"`
	Score            decimal.Decimal               `json:"score"`
	TotalPoints      int                           `json:"total_points"`
	CompletedPoints  int                           `json:"completed_points"`
	MissingMandatory []string                      `json:"missing_mandatory,omitempty"`
	Children         []SectionCompletenessResponse `json:"children,omitempty"`
}

// PeriodCompletenessResponse represents the period-level completeness report
type PeriodCompletenessResponse struct {
	PeriodID          uuid.UUID                     `json:"period_id"`
	Label             string                        `json:"label"`
	Strategy          string                        `json:"strategy"`
	Score             decimal.Decimal               `json:"score"`
	MandatoryTotal    int                           `json:"mandatory_total"`
	MandatoryComplete int                           `json:"mandatory_complete"`
	Sections          []SectionCompletenessResponse `json:"sections"`
	ComputedAt        time.Time                     `json:"computed_at"`
}

// CompletenessHistoryEntry represents one daily snapshot in score history
type CompletenessHistoryEntry struct {
	Date              time.Time       `json:"date"`
	Score             decimal.Decimal `json:"score"`
	Strategy          string          `json:"strategy"`
	MandatoryTotal    int             `json:"mandatory_total"`
	MandatoryComplete int             `json:"mandatory_complete"`
}

// ToCompletenessHistory converts snapshots to history entries
func ToCompletenessHistory(snapshots []reporting.CompletenessSnapshot) []CompletenessHistoryEntry {
	entries := make([]CompletenessHistoryEntry, len(snapshots))
	for i, s := range snapshots {
		entries[i] = CompletenessHistoryEntry{
			Date:              s.SnapshotDate,
			Score:             s.Score,
			Strategy:          s.Strategy,
			MandatoryTotal:    s.MandatoryTotal,
			MandatoryComplete: s.MandatoryComplete,
		}
	}
	return entries
}
