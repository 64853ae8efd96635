package export

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportDataProvider supplies the assembled data for rendering a period report.
// The application layer implements this on top of the reporting repositories.
type ReportDataProvider interface {
	// GetPeriodReportData retrieves the full report data for a period
	GetPeriodReportData(ctx context.Context, organizationID, periodID uuid.UUID) (*ReportData, error)
}

// ReportData is the root structure bound to the period report template
type ReportData struct {
	// Organization information
	Organization OrganizationInfo `json:"organization"`

	// Period information
	Period PeriodInfo `json:"period"`

	// Sections in display order, each with its data points
	Sections []SectionData `json:"sections"`

	// Completeness summary across all sections
	Completeness CompletenessInfo `json:"completeness"`

	// Open and accepted gaps disclosed alongside the report
	Gaps []GapInfo `json:"gaps"`

	// Assumptions referenced by reported values
	Assumptions []AssumptionInfo `json:"assumptions"`

	// Formatted generation timestamps for convenience
	GeneratedAt     time.Time `json:"generatedAt"`
	GeneratedDate   string    `json:"generatedDate"`
	GeneratedByName string    `json:"generatedByName"`
}

// OrganizationInfo contains organization details for the report header
type OrganizationInfo struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	LegalID string    `json:"legalId"`
	Country string    `json:"country"`
	Logo    string    `json:"logo"` // URL or base64
}

// PeriodInfo contains reporting period details
type PeriodInfo struct {
	ID        uuid.UUID  `json:"id"`
	Label     string     `json:"label"`
	StartDate time.Time  `json:"startDate"`
	EndDate   time.Time  `json:"endDate"`
	Status    string     `json:"status"`
	ClosedAt  *time.Time `json:"closedAt"`
}

// SectionData represents one report section with its data points
type SectionData struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	StandardRef string          `json:"standardRef"`
	DataPoints  []DataPointInfo `json:"dataPoints"`

	// Completeness within this section
	TotalCount    int `json:"totalCount"`
	CompleteCount int `json:"completeCount"`
}

// DataPointInfo represents one data point row in the report
type DataPointInfo struct {
	ID           uuid.UUID        `json:"id"`
	Code         string           `json:"code"`
	Name         string           `json:"name"`
	Kind         string           `json:"kind"`
	UnitCode     string           `json:"unitCode"`
	NumericValue *decimal.Decimal `json:"numericValue"`
	TextValue    string           `json:"textValue"`
	BoolValue    *bool            `json:"boolValue"`
	Status       string           `json:"status"`
	Mandatory    bool             `json:"mandatory"`
	Estimated    bool             `json:"estimated"`
	StandardRef  string           `json:"standardRef"`

	// DisplayValue is the value formatted for rendering regardless of kind
	DisplayValue string `json:"displayValue"`
}

// CompletenessInfo summarizes reporting progress
type CompletenessInfo struct {
	TotalCount     int             `json:"totalCount"`
	CompleteCount  int             `json:"completeCount"`
	MandatoryCount int             `json:"mandatoryCount"`
	MandatoryDone  int             `json:"mandatoryDone"`
	Ratio          decimal.Decimal `json:"ratio"` // 0..1
}

// GapInfo represents a disclosure gap included in the report appendix
type GapInfo struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	SectionCode string    `json:"sectionCode"`
}

// AssumptionInfo represents an assumption disclosed with the report
type AssumptionInfo struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Category string    `json:"category"`
	Status   string    `json:"status"`
}
