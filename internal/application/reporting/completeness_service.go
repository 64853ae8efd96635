package reporting

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/organization"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared/strategy"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/telemetry"
)

// ScoringStrategyProvider provides scoring strategies based on organization configuration
// This decouples CompletenessService from the concrete StrategyRegistry implementation
type ScoringStrategyProvider interface {
	// GetScoringStrategy returns the scoring strategy for the given name
	GetScoringStrategy(name string) (strategy.CompletenessScoringStrategy, error)
	// GetScoringStrategyOrDefault returns the scoring strategy for the given name, or default if not found
	GetScoringStrategyOrDefault(name string) strategy.CompletenessScoringStrategy
}

// CompletenessService computes completeness scores for sections and periods
type CompletenessService struct {
	periodRepo       reporting.ReportingPeriodRepository
	sectionRepo      reporting.ReportSectionRepository
	dataPointRepo    reporting.DataPointRepository
	snapshotRepo     reporting.CompletenessSnapshotRepository
	orgRepo          organization.OrganizationRepository
	strategyProvider ScoringStrategyProvider
	businessMetrics  *telemetry.BusinessMetrics
}

// NewCompletenessService creates a new CompletenessService
func NewCompletenessService(
	periodRepo reporting.ReportingPeriodRepository,
	sectionRepo reporting.ReportSectionRepository,
	dataPointRepo reporting.DataPointRepository,
	snapshotRepo reporting.CompletenessSnapshotRepository,
	strategyProvider ScoringStrategyProvider,
) *CompletenessService {
	return &CompletenessService{
		periodRepo:       periodRepo,
		sectionRepo:      sectionRepo,
		dataPointRepo:    dataPointRepo,
		snapshotRepo:     snapshotRepo,
		strategyProvider: strategyProvider,
	}
}

// SetOrganizationRepository sets the organization repository (optional, for strategy lookup)
func (s *CompletenessService) SetOrganizationRepository(repo organization.OrganizationRepository) {
	s.orgRepo = repo
}

// SetBusinessMetrics sets the business metrics collector
func (s *CompletenessService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// ScorePeriod computes the completeness report for a whole period
func (s *CompletenessService) ScorePeriod(ctx context.Context, organizationID, periodID uuid.UUID) (*PeriodCompletenessResponse, error) {
	period, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}

	scorer := s.getScoringStrategyForOrg(ctx, organizationID)
	if scorer == nil {
		return nil, shared.NewDomainError("NO_STRATEGY", "No scoring strategy is configured")
	}

	sections, err := s.sectionRepo.FindActiveByPeriod(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}

	results, dpCodeByID, err := s.scoreTree(ctx, scorer, organizationID, sections)
	if err != nil {
		return nil, err
	}

	// Roll roots up into the period score using the same strategy
	rootInput := strategy.SectionScoreInput{SectionID: period.ID.String()}
	for i := range sections {
		if sections[i].ParentID == nil {
			rootInput.Children = append(rootInput.Children, strategy.ChildSectionScore{
				SectionID: sections[i].ID.String(),
				Score:     results[sections[i].ID].Score,
				Weight:    sections[i].Weight,
			})
		}
	}
	periodResult, err := scorer.ScoreSection(ctx, rootInput)
	if err != nil {
		return nil, err
	}

	mandatoryTotal, err := s.dataPointRepo.CountMandatoryByPeriod(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}
	mandatoryComplete, err := s.dataPointRepo.CountMandatoryCompleteByPeriod(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}

	response := &PeriodCompletenessResponse{
		PeriodID:          period.ID,
		Label:             period.Label,
		Strategy:          scorer.Name(),
		Score:             periodResult.Score,
		MandatoryTotal:    int(mandatoryTotal),
		MandatoryComplete: int(mandatoryComplete),
		Sections:          buildCompletenessTree(sections, results, dpCodeByID),
		ComputedAt:        time.Now(),
	}

	// Record business metrics
	if s.businessMetrics != nil {
		s.businessMetrics.RecordCompletenessScore(ctx, organizationID, periodResult.Score)
	}

	return response, nil
}

// ScoreSection computes the completeness score of one section subtree
func (s *CompletenessService) ScoreSection(ctx context.Context, organizationID, sectionID uuid.UUID) (*SectionCompletenessResponse, error) {
	section, err := s.sectionRepo.FindByIDForOrg(ctx, organizationID, sectionID)
	if err != nil {
		return nil, err
	}

	scorer := s.getScoringStrategyForOrg(ctx, organizationID)
	if scorer == nil {
		return nil, shared.NewDomainError("NO_STRATEGY", "No scoring strategy is configured")
	}

	all, err := s.sectionRepo.FindActiveByPeriod(ctx, organizationID, section.PeriodID)
	if err != nil {
		return nil, err
	}

	// Restrict scoring to the requested subtree
	childrenOf := make(map[uuid.UUID][]uuid.UUID)
	byID := make(map[uuid.UUID]reporting.ReportSection, len(all))
	for _, sec := range all {
		byID[sec.ID] = sec
		if sec.ParentID != nil {
			childrenOf[*sec.ParentID] = append(childrenOf[*sec.ParentID], sec.ID)
		}
	}

	var subtree []reporting.ReportSection
	var collect func(id uuid.UUID)
	collect = func(id uuid.UUID) {
		if sec, ok := byID[id]; ok {
			subtree = append(subtree, sec)
			for _, childID := range childrenOf[id] {
				collect(childID)
			}
		}
	}
	collect(section.ID)

	if len(subtree) == 0 {
		return nil, shared.ErrNotFound
	}

	results, dpCodeByID, err := s.scoreTree(ctx, scorer, organizationID, subtree)
	if err != nil {
		return nil, err
	}

	tree := buildCompletenessSubtree(section.ID, subtree, results, dpCodeByID)
	return &tree, nil
}

// SnapshotPeriod stores one daily completeness snapshot for a period
// Repeated calls for the same day are no-ops
func (s *CompletenessService) SnapshotPeriod(ctx context.Context, organizationID, periodID uuid.UUID, day time.Time) error {
	exists, err := s.snapshotRepo.ExistsForDate(ctx, periodID, day)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	report, err := s.ScorePeriod(ctx, organizationID, periodID)
	if err != nil {
		return err
	}

	snapshot, err := reporting.NewCompletenessSnapshot(
		organizationID,
		periodID,
		report.Score,
		report.Strategy,
		report.MandatoryTotal,
		report.MandatoryComplete,
		day,
	)
	if err != nil {
		return err
	}

	return s.snapshotRepo.Save(ctx, snapshot)
}

// SnapshotOpenPeriod snapshots the organization's open period, if any
// Called by the daily scheduler job
func (s *CompletenessService) SnapshotOpenPeriod(ctx context.Context, organizationID uuid.UUID, day time.Time) error {
	period, err := s.periodRepo.FindOpenForOrg(ctx, organizationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.SnapshotPeriod(ctx, organizationID, period.ID, day)
}

// GetHistory retrieves the daily completeness history of a period
func (s *CompletenessService) GetHistory(ctx context.Context, organizationID, periodID uuid.UUID, from, to time.Time) ([]CompletenessHistoryEntry, error) {
	snapshots, err := s.snapshotRepo.FindByPeriod(ctx, organizationID, periodID, from, to)
	if err != nil {
		return nil, err
	}
	return ToCompletenessHistory(snapshots), nil
}

// scoreTree scores sections bottom-up so child scores feed parent rollups
// Returns per-section results plus a data point code lookup for reporting
func (s *CompletenessService) scoreTree(
	ctx context.Context,
	scorer strategy.CompletenessScoringStrategy,
	organizationID uuid.UUID,
	sections []reporting.ReportSection,
) (map[uuid.UUID]strategy.SectionScoreResult, map[string]string, error) {
	childrenOf := make(map[uuid.UUID][]*reporting.ReportSection)
	for i := range sections {
		if sections[i].ParentID != nil {
			childrenOf[*sections[i].ParentID] = append(childrenOf[*sections[i].ParentID], &sections[i])
		}
	}

	ordered := make([]*reporting.ReportSection, len(sections))
	for i := range sections {
		ordered[i] = &sections[i]
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Depth > ordered[j].Depth
	})

	results := make(map[uuid.UUID]strategy.SectionScoreResult, len(sections))
	dpCodeByID := make(map[string]string)

	for _, sec := range ordered {
		dps, err := s.dataPointRepo.FindBySection(ctx, organizationID, sec.ID)
		if err != nil {
			return nil, nil, err
		}

		input := strategy.SectionScoreInput{SectionID: sec.ID.String()}
		for _, dp := range dps {
			dpCodeByID[dp.ID.String()] = dp.Code
			input.DataPoints = append(input.DataPoints, strategy.DataPointScore{
				ID:          dp.ID.String(),
				Status:      string(dp.Status),
				Mandatory:   dp.Mandatory,
				Estimated:   dp.Estimated,
				Deactivated: !dp.IsActive,
			})
		}
		for _, child := range childrenOf[sec.ID] {
			input.Children = append(input.Children, strategy.ChildSectionScore{
				SectionID: child.ID.String(),
				Score:     results[child.ID].Score,
				Weight:    child.Weight,
			})
		}

		result, err := scorer.ScoreSection(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		results[sec.ID] = result
	}

	return results, dpCodeByID, nil
}

// getScoringStrategyForOrg returns the scoring strategy from organization
// configuration, falling back to the registry default
func (s *CompletenessService) getScoringStrategyForOrg(ctx context.Context, organizationID uuid.UUID) strategy.CompletenessScoringStrategy {
	if s.strategyProvider == nil {
		return nil
	}

	strategyName := ""
	if s.orgRepo != nil {
		org, err := s.orgRepo.FindByID(ctx, organizationID)
		if err == nil && org != nil {
			strategyName = org.Config.ScoringStrategy
		}
	}

	return s.strategyProvider.GetScoringStrategyOrDefault(strategyName)
}

// buildCompletenessTree assembles the nested section score report
func buildCompletenessTree(
	sections []reporting.ReportSection,
	results map[uuid.UUID]strategy.SectionScoreResult,
	dpCodeByID map[string]string,
) []SectionCompletenessResponse {
	var roots []SectionCompletenessResponse
	for i := range sections {
		if sections[i].ParentID == nil {
			roots = append(roots, buildCompletenessSubtree(sections[i].ID, sections, results, dpCodeByID))
		}
	}
	return roots
}

// buildCompletenessSubtree assembles the score report for one subtree
func buildCompletenessSubtree(
	rootID uuid.UUID,
	sections []reporting.ReportSection,
	results map[uuid.UUID]strategy.SectionScoreResult,
	dpCodeByID map[string]string,
) SectionCompletenessResponse {
	var root *reporting.ReportSection
	for i := range sections {
		if sections[i].ID == rootID {
			root = &sections[i]
			break
		}
	}

	result := results[rootID]
	node := SectionCompletenessResponse{
		SectionID:       rootID,
		Score:           result.Score,
		TotalPoints:     result.TotalPoints,
		CompletedPoints: result.CompletedPoints,
	}
	if root != nil {
		node.Code = root.Code
		node.Title = root.Title
	}
	for _, id := range result.MissingMandatory {
		if code, ok := dpCodeByID[id]; ok {
			node.MissingMandatory = append(node.MissingMandatory, code)
		} else {
			node.MissingMandatory = append(node.MissingMandatory, id)
		}
	}

	for i := range sections {
		if sections[i].ParentID != nil && *sections[i].ParentID == rootID {
			node.Children = append(node.Children, buildCompletenessSubtree(sections[i].ID, sections, results, dpCodeByID))
		}
	}

	return node
}
