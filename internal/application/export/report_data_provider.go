package export

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/organization"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/register"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	exportinfra "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/export"
)

// ReportDataAssembler builds the data a period report template binds to.
// It implements the renderer's ReportDataProvider on top of the domain
// repositories.
type ReportDataAssembler struct {
	orgRepo        organization.OrganizationRepository
	periodRepo     reporting.ReportingPeriodRepository
	sectionRepo    reporting.ReportSectionRepository
	dataPointRepo  reporting.DataPointRepository
	gapRepo        register.GapRepository
	assumptionRepo register.AssumptionRepository
}

// NewReportDataAssembler creates a new report data assembler
func NewReportDataAssembler(
	orgRepo organization.OrganizationRepository,
	periodRepo reporting.ReportingPeriodRepository,
	sectionRepo reporting.ReportSectionRepository,
	dataPointRepo reporting.DataPointRepository,
	gapRepo register.GapRepository,
	assumptionRepo register.AssumptionRepository,
) *ReportDataAssembler {
	return &ReportDataAssembler{
		orgRepo:        orgRepo,
		periodRepo:     periodRepo,
		sectionRepo:    sectionRepo,
		dataPointRepo:  dataPointRepo,
		gapRepo:        gapRepo,
		assumptionRepo: assumptionRepo,
	}
}

// GetPeriodReportData retrieves the full report data for a period
func (a *ReportDataAssembler) GetPeriodReportData(ctx context.Context, organizationID, periodID uuid.UUID) (*exportinfra.ReportData, error) {
	org, err := a.orgRepo.FindByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	period, err := a.periodRepo.FindByIDForOrg(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}

	sections, err := a.sectionRepo.FindByPeriod(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}
	dataPoints, err := a.dataPointRepo.FindByPeriod(ctx, organizationID, periodID, shared.Filter{})
	if err != nil {
		return nil, err
	}

	pointsBySection := make(map[uuid.UUID][]exportinfra.DataPointInfo)
	var completeness exportinfra.CompletenessInfo
	for i := range dataPoints {
		dp := &dataPoints[i]

		completeness.TotalCount++
		done := dp.IsComplete() || dp.Estimated
		if done {
			completeness.CompleteCount++
		}
		if dp.Mandatory {
			completeness.MandatoryCount++
			if done {
				completeness.MandatoryDone++
			}
		}

		pointsBySection[dp.SectionID] = append(pointsBySection[dp.SectionID], exportinfra.DataPointInfo{
			ID:           dp.ID,
			Code:         dp.Code,
			Name:         dp.Name,
			Kind:         string(dp.Kind),
			UnitCode:     dp.UnitCode,
			NumericValue: dp.NumericValue,
			TextValue:    dp.TextValue,
			BoolValue:    dp.BoolValue,
			Status:       string(dp.Status),
			Mandatory:    dp.Mandatory,
			Estimated:    dp.Estimated,
			StandardRef:  dp.StandardRef,
			DisplayValue: dp.ValueString(),
		})
	}
	if completeness.TotalCount > 0 {
		completeness.Ratio = decimal.NewFromInt(int64(completeness.CompleteCount)).
			Div(decimal.NewFromInt(int64(completeness.TotalCount)))
	}

	sectionCodes := make(map[uuid.UUID]string, len(sections))
	sectionData := make([]exportinfra.SectionData, 0, len(sections))
	for i := range sections {
		section := &sections[i]
		sectionCodes[section.ID] = section.Code
		if !section.IsActive {
			continue
		}

		points := pointsBySection[section.ID]
		complete := 0
		for _, p := range points {
			if p.Status == string(reporting.DataPointStatusComplete) || p.Estimated {
				complete++
			}
		}

		sectionData = append(sectionData, exportinfra.SectionData{
			ID:            section.ID,
			Code:          section.Code,
			Title:         section.Title,
			Description:   section.Description,
			StandardRef:   section.FrameworkRef,
			DataPoints:    points,
			TotalCount:    len(points),
			CompleteCount: complete,
		})
	}

	gaps, err := a.collectGaps(ctx, organizationID, periodID, sectionCodes)
	if err != nil {
		return nil, err
	}
	assumptions, err := a.collectAssumptions(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &exportinfra.ReportData{
		Organization: exportinfra.OrganizationInfo{
			ID:      org.ID,
			Name:    org.Name,
			LegalID: org.RegistrationNumber,
			Country: org.Country,
			Logo:    org.LogoURL,
		},
		Period: exportinfra.PeriodInfo{
			ID:        period.ID,
			Label:     period.Label,
			StartDate: period.StartDate,
			EndDate:   period.EndDate,
			Status:    string(period.Status),
			ClosedAt:  period.ClosedAt,
		},
		Sections:      sectionData,
		Completeness:  completeness,
		Gaps:          gaps,
		Assumptions:   assumptions,
		GeneratedAt:   now,
		GeneratedDate: now.Format("2 January 2006"),
	}, nil
}

// collectGaps gathers the unresolved gaps disclosed in the report appendix
func (a *ReportDataAssembler) collectGaps(ctx context.Context, organizationID, periodID uuid.UUID, sectionCodes map[uuid.UUID]string) ([]exportinfra.GapInfo, error) {
	gaps, err := a.gapRepo.FindByPeriod(ctx, organizationID, periodID, shared.Filter{})
	if err != nil {
		return nil, err
	}

	infos := make([]exportinfra.GapInfo, 0, len(gaps))
	for i := range gaps {
		gap := &gaps[i]
		if gap.Status == register.GapStatusResolved {
			continue
		}

		sectionCode := ""
		if gap.SectionID != nil {
			sectionCode = sectionCodes[*gap.SectionID]
		}

		infos = append(infos, exportinfra.GapInfo{
			ID:          gap.ID,
			Title:       gap.Title,
			Description: gap.Description,
			Severity:    string(gap.Severity),
			Status:      string(gap.Status),
			SectionCode: sectionCode,
		})
	}
	return infos, nil
}

func (a *ReportDataAssembler) collectAssumptions(ctx context.Context, organizationID uuid.UUID) ([]exportinfra.AssumptionInfo, error) {
	assumptions, err := a.assumptionRepo.FindActiveForOrg(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	infos := make([]exportinfra.AssumptionInfo, 0, len(assumptions))
	for i := range assumptions {
		assumption := &assumptions[i]
		infos = append(infos, exportinfra.AssumptionInfo{
			ID:       assumption.ID,
			Title:    assumption.Title,
			Body:     assumption.Body,
			Category: assumption.Category,
			Status:   string(assumption.Status),
		})
	}
	return infos, nil
}
