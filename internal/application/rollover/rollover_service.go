package rollover

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/register"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/remediation"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/rollover"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/telemetry"
)

// triggerGuardTTL bounds how long a trigger key blocks concurrent re-posts.
// The database idempotency key remains the durable guard.
const triggerGuardTTL = 24 * time.Hour

// RolloverService orchestrates period-to-period carry-over. A run copies the
// section tree, applies the per-kind value policy to data points, re-links
// active assumptions, carries open gaps, and keeps active remediation plans
// pointed at the carried gaps. Each phase commits separately so a failed run
// resumes from the phase it stopped in.
type RolloverService struct {
	runRepo          rollover.RolloverRunRepository
	periodRepo       reporting.ReportingPeriodRepository
	sectionRepo      reporting.ReportSectionRepository
	dataPointRepo    reporting.DataPointRepository
	assumptionRepo   register.AssumptionRepository
	gapRepo          register.GapRepository
	planRepo         remediation.RemediationPlanRepository
	idempotencyStore shared.IdempotencyStore
	eventPublisher   shared.EventPublisher
	businessMetrics  *telemetry.BusinessMetrics
	logger           *zap.Logger
}

// NewRolloverService creates a new rollover service
func NewRolloverService(
	runRepo rollover.RolloverRunRepository,
	periodRepo reporting.ReportingPeriodRepository,
	sectionRepo reporting.ReportSectionRepository,
	dataPointRepo reporting.DataPointRepository,
	assumptionRepo register.AssumptionRepository,
	gapRepo register.GapRepository,
	planRepo remediation.RemediationPlanRepository,
	logger *zap.Logger,
) *RolloverService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RolloverService{
		runRepo:        runRepo,
		periodRepo:     periodRepo,
		sectionRepo:    sectionRepo,
		dataPointRepo:  dataPointRepo,
		assumptionRepo: assumptionRepo,
		gapRepo:        gapRepo,
		planRepo:       planRepo,
		logger:         logger,
	}
}

// SetIdempotencyStore sets the distributed trigger guard
func (s *RolloverService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotencyStore = store
}

// SetEventPublisher sets the event publisher for domain events
func (s *RolloverService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (s *RolloverService) SetBusinessMetrics(metrics *telemetry.BusinessMetrics) {
	s.businessMetrics = metrics
}

// Trigger starts a rollover run. Re-posting the same idempotency key returns
// the original run instead of starting a new one.
func (s *RolloverService) Trigger(ctx context.Context, organizationID uuid.UUID, req TriggerRolloverRequest) (*RunResponse, error) {
	existing, err := s.runRepo.FindByIdempotencyKey(ctx, organizationID, req.IdempotencyKey)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		response := ToRunResponse(existing)
		return &response, nil
	}

	// Distributed guard against two instances racing on the same key before
	// the run row exists.
	if s.idempotencyStore != nil {
		guardKey := fmt.Sprintf("rollover:%s:%s", organizationID, req.IdempotencyKey)
		fresh, err := s.idempotencyStore.MarkProcessed(ctx, guardKey, triggerGuardTTL)
		if err != nil {
			s.logger.Warn("Rollover trigger guard unavailable, relying on the database key",
				zap.Error(err))
		} else if !fresh {
			existing, err := s.runRepo.FindByIdempotencyKey(ctx, organizationID, req.IdempotencyKey)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return nil, shared.NewDomainError("TRIGGER_IN_FLIGHT", "A rollover with this idempotency key is already being started")
				}
				return nil, err
			}
			response := ToRunResponse(existing)
			return &response, nil
		}
	}

	if err := s.validatePeriods(ctx, organizationID, req.SourcePeriodID, req.TargetPeriodID); err != nil {
		return nil, err
	}

	active, err := s.runRepo.ExistsActiveForTarget(ctx, organizationID, req.TargetPeriodID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, shared.NewDomainError("RUN_IN_PROGRESS", "A rollover into this period is already in progress")
	}

	run, err := rollover.NewRolloverRun(organizationID, req.SourcePeriodID, req.TargetPeriodID, req.IdempotencyKey, req.TriggeredBy)
	if err != nil {
		return nil, err
	}

	events := run.GetDomainEvents()
	run.ClearDomainEvents()
	if err := s.runRepo.SaveWithEvents(ctx, run, events); err != nil {
		return nil, err
	}

	s.markTargetRolledFrom(ctx, organizationID, req.SourcePeriodID, req.TargetPeriodID)
	s.execute(ctx, run)

	response := ToRunResponse(run)
	return &response, nil
}

// Resume restarts a failed run from the phase it stopped in
func (s *RolloverService) Resume(ctx context.Context, organizationID, runID uuid.UUID) (*RunResponse, error) {
	run, err := s.runRepo.FindByIDForOrg(ctx, runID, organizationID)
	if err != nil {
		return nil, err
	}
	if err := run.Resume(); err != nil {
		return nil, err
	}
	if err := s.saveRun(ctx, run); err != nil {
		return nil, err
	}

	s.runPhases(ctx, run)

	response := ToRunResponse(run)
	return &response, nil
}

// GetRun retrieves a run by ID
func (s *RolloverService) GetRun(ctx context.Context, organizationID, runID uuid.UUID) (*RunResponse, error) {
	run, err := s.runRepo.FindByIDForOrg(ctx, runID, organizationID)
	if err != nil {
		return nil, err
	}

	response := ToRunResponse(run)
	return &response, nil
}

// ListRuns retrieves runs matching the filter
func (s *RolloverService) ListRuns(ctx context.Context, organizationID uuid.UUID, filter RunListFilter) (*shared.Paginated[RunResponse], error) {
	repoFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  map[string]interface{}{},
	}
	if filter.Status != nil {
		repoFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.SourcePeriodID != nil {
		repoFilter.Filters["source_period_id"] = *filter.SourcePeriodID
	}
	if filter.TargetPeriodID != nil {
		repoFilter.Filters["target_period_id"] = *filter.TargetPeriodID
	}

	paginated, err := s.runRepo.FindAllForOrg(ctx, organizationID, repoFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToRunResponses(paginated.Items), paginated.Total, paginated.Page, paginated.PageSize)
	return &result, nil
}

// GetReconciliation returns the per-category and per-outcome counts of a run
func (s *RolloverService) GetReconciliation(ctx context.Context, organizationID, runID uuid.UUID) (*ReconciliationResponse, error) {
	run, err := s.runRepo.FindByIDForOrg(ctx, runID, organizationID)
	if err != nil {
		return nil, err
	}

	byOutcome, err := s.runRepo.CountItemsByOutcome(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.runRepo.CountItemsByCategory(ctx, run.ID)
	if err != nil {
		return nil, err
	}

	outcomes := make(map[string]int64, len(byOutcome))
	for outcome, count := range byOutcome {
		outcomes[string(outcome)] = count
	}
	categories := make(map[string]int64, len(byCategory))
	for category, count := range byCategory {
		categories[string(category)] = count
	}

	return &ReconciliationResponse{
		Run:        ToRunResponse(run),
		ByOutcome:  outcomes,
		ByCategory: categories,
	}, nil
}

// ListItems retrieves the per-item outcome rows of a run
func (s *RolloverService) ListItems(ctx context.Context, organizationID, runID uuid.UUID, filter ItemListFilter) (*shared.Paginated[ItemResponse], error) {
	// Scope check before querying the item rows
	run, err := s.runRepo.FindByIDForOrg(ctx, runID, organizationID)
	if err != nil {
		return nil, err
	}

	repoFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Filters:  map[string]interface{}{},
	}
	if filter.Category != "" {
		repoFilter.Filters["category"] = filter.Category
	}
	if filter.Outcome != "" {
		repoFilter.Filters["outcome"] = filter.Outcome
	}

	paginated, err := s.runRepo.FindItems(ctx, run.ID, repoFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToItemResponses(paginated.Items), paginated.Total, paginated.Page, paginated.PageSize)
	return &result, nil
}

// validatePeriods checks the source and target are usable for a rollover:
// the source must have finished collecting and the target must be an empty draft.
func (s *RolloverService) validatePeriods(ctx context.Context, organizationID, sourceID, targetID uuid.UUID) error {
	source, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, sourceID)
	if err != nil {
		return err
	}
	if !source.IsClosed() {
		return shared.NewDomainError("INVALID_STATE", "Source period must be closed or archived before rolling over")
	}

	target, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, targetID)
	if err != nil {
		return err
	}
	if target.Status != reporting.PeriodStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Target period must still be a draft")
	}

	sectionCount, err := s.sectionRepo.CountByPeriod(ctx, organizationID, targetID)
	if err != nil {
		return err
	}
	if sectionCount > 0 {
		return shared.NewDomainError("TARGET_NOT_EMPTY", "Target period already has sections")
	}

	return nil
}

func (s *RolloverService) markTargetRolledFrom(ctx context.Context, organizationID, sourceID, targetID uuid.UUID) {
	target, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, targetID)
	if err != nil {
		s.logger.Warn("Failed to load target period for rolled-from marker", zap.Error(err))
		return
	}
	target.SetRolledFrom(sourceID)
	if err := s.periodRepo.SaveWithLock(ctx, target); err != nil {
		s.logger.Warn("Failed to record rolled-from marker on target period", zap.Error(err))
	}
}

// execute starts a pending run and walks it through the phases
func (s *RolloverService) execute(ctx context.Context, run *rollover.RolloverRun) {
	if err := run.Start(); err != nil {
		s.logger.Error("Failed to start rollover run", zap.String("run_id", run.ID.String()), zap.Error(err))
		return
	}
	if err := s.saveRun(ctx, run); err != nil {
		s.logger.Error("Failed to save started rollover run", zap.String("run_id", run.ID.String()), zap.Error(err))
		return
	}

	s.runPhases(ctx, run)
}

// runPhases executes the remaining phases of a running run. Each phase is
// marked before its work starts, so a failure leaves the run resumable at
// the unfinished phase.
func (s *RolloverService) runPhases(ctx context.Context, run *rollover.RolloverRun) {
	type phase struct {
		name rollover.RolloverPhase
		work func(context.Context, *rollover.RolloverRun) error
	}
	phases := []phase{
		{rollover.PhaseSections, s.copySections},
		{rollover.PhaseDataPoints, s.copyDataPoints},
		{rollover.PhaseRegister, s.carryRegister},
	}

	for _, p := range phases {
		if run.HasCompletedPhase(p.name) {
			continue
		}
		if err := run.AdvanceToPhase(p.name); err != nil {
			s.failRun(ctx, run, err)
			return
		}
		if err := s.saveRun(ctx, run); err != nil {
			s.logger.Error("Failed to save rollover phase marker", zap.String("run_id", run.ID.String()), zap.Error(err))
			return
		}
		if err := p.work(ctx, run); err != nil {
			s.failRun(ctx, run, err)
			return
		}
		if err := s.saveRun(ctx, run); err != nil {
			s.logger.Error("Failed to save rollover run after phase", zap.String("run_id", run.ID.String()), zap.Error(err))
			return
		}
	}

	if err := run.Complete(); err != nil {
		s.failRun(ctx, run, err)
		return
	}
	if err := s.saveRun(ctx, run); err != nil {
		s.logger.Error("Failed to save completed rollover run", zap.String("run_id", run.ID.String()), zap.Error(err))
		return
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordRolloverRun(ctx, run.OrganizationID, "completed")
	}
	s.logger.Info("Rollover run completed",
		zap.String("run_id", run.ID.String()),
		zap.Int("carried", run.CarriedCount),
		zap.Int("reset", run.ResetCount),
		zap.Int("skipped", run.SkippedCount),
		zap.Int("failed", run.FailedCount))
}

func (s *RolloverService) failRun(ctx context.Context, run *rollover.RolloverRun, cause error) {
	s.logger.Error("Rollover run failed",
		zap.String("run_id", run.ID.String()),
		zap.String("phase", string(run.Phase)),
		zap.Error(cause))

	if err := run.Fail(cause.Error()); err != nil {
		return
	}
	if err := s.saveRun(ctx, run); err != nil {
		s.logger.Error("Failed to persist rollover failure", zap.String("run_id", run.ID.String()), zap.Error(err))
	}
	if s.businessMetrics != nil {
		s.businessMetrics.RecordRolloverRun(ctx, run.OrganizationID, "failed")
	}
}

func (s *RolloverService) saveRun(ctx context.Context, run *rollover.RolloverRun) error {
	events := run.GetDomainEvents()
	run.ClearDomainEvents()
	return s.runRepo.SaveWithLockAndEvents(ctx, run, events)
}

// copySections copies the active section tree into the target period.
// Codes, titles, weights, and owners are preserved; statuses reset.
func (s *RolloverService) copySections(ctx context.Context, run *rollover.RolloverRun) error {
	orgID := run.OrganizationID

	sources, err := s.sectionRepo.FindByPeriod(ctx, orgID, run.SourcePeriodID)
	if err != nil {
		return err
	}
	targets, err := s.sectionRepo.FindByPeriod(ctx, orgID, run.TargetPeriodID)
	if err != nil {
		return err
	}

	sourceByID := make(map[uuid.UUID]*reporting.ReportSection, len(sources))
	for i := range sources {
		sourceByID[sources[i].ID] = &sources[i]
	}
	targetByCode := make(map[string]*reporting.ReportSection, len(targets))
	for i := range targets {
		targetByCode[targets[i].Code] = &targets[i]
	}

	var created []*reporting.ReportSection
	var items []rollover.RolloverItem

	// Sources come ordered by depth, so parents are mapped before children
	for i := range sources {
		src := &sources[i]

		if existing, ok := targetByCode[src.Code]; ok {
			// Present from an earlier attempt of this phase
			targetID := existing.ID
			s.appendItem(run, &items, rollover.CategorySection, src.ID, &targetID, src.Code, rollover.OutcomeSkipped, "already present in target period")
			continue
		}
		if !src.IsActive {
			s.appendItem(run, &items, rollover.CategorySection, src.ID, nil, src.Code, rollover.OutcomeSkipped, "section is deactivated")
			continue
		}

		var section *reporting.ReportSection
		if src.ParentID == nil {
			section, err = reporting.NewReportSection(orgID, run.TargetPeriodID, src.Code, src.Title)
		} else {
			parent := s.resolveParent(sourceByID, targetByCode, *src.ParentID)
			if parent == nil {
				s.appendItem(run, &items, rollover.CategorySection, src.ID, nil, src.Code, rollover.OutcomeSkipped, "parent section was not carried")
				continue
			}
			section, err = reporting.NewChildSection(orgID, run.TargetPeriodID, parent, src.Code, src.Title)
		}
		if err != nil {
			s.appendItem(run, &items, rollover.CategorySection, src.ID, nil, src.Code, rollover.OutcomeFailed, err.Error())
			continue
		}

		if err := section.Update(src.Title, src.Description, src.FrameworkRef); err != nil {
			s.appendItem(run, &items, rollover.CategorySection, src.ID, nil, src.Code, rollover.OutcomeFailed, err.Error())
			continue
		}
		section.SetSortOrder(src.SortOrder)
		if err := section.SetWeight(src.Weight); err != nil {
			s.appendItem(run, &items, rollover.CategorySection, src.ID, nil, src.Code, rollover.OutcomeFailed, err.Error())
			continue
		}
		if src.OwnerUserID != nil {
			if err := section.AssignOwner(*src.OwnerUserID); err != nil {
				s.appendItem(run, &items, rollover.CategorySection, src.ID, nil, src.Code, rollover.OutcomeFailed, err.Error())
				continue
			}
		}
		section.ClearDomainEvents()

		targetByCode[src.Code] = section
		created = append(created, section)
		targetID := section.ID
		s.appendItem(run, &items, rollover.CategorySection, src.ID, &targetID, src.Code, rollover.OutcomeCarried, "")
	}

	if len(created) > 0 {
		if err := s.sectionRepo.SaveAll(ctx, created); err != nil {
			return err
		}
	}
	return s.runRepo.SaveItems(ctx, items)
}

func (s *RolloverService) resolveParent(sourceByID map[uuid.UUID]*reporting.ReportSection, targetByCode map[string]*reporting.ReportSection, sourceParentID uuid.UUID) *reporting.ReportSection {
	sourceParent, ok := sourceByID[sourceParentID]
	if !ok {
		return nil
	}
	return targetByCode[sourceParent.Code]
}

// copyDataPoints copies data points into the mapped target sections applying
// the per-kind value policy: narrative values carry over as drafts, metric
// values reset with the prior value stored as baseline, booleans reset.
func (s *RolloverService) copyDataPoints(ctx context.Context, run *rollover.RolloverRun) error {
	orgID := run.OrganizationID

	sectionMap, err := s.buildSectionMap(ctx, run)
	if err != nil {
		return err
	}

	sources, err := s.dataPointRepo.FindByPeriod(ctx, orgID, run.SourcePeriodID, shared.Filter{})
	if err != nil {
		return err
	}
	existing, err := s.dataPointRepo.FindByPeriod(ctx, orgID, run.TargetPeriodID, shared.Filter{})
	if err != nil {
		return err
	}
	existingCodes := make(map[string]uuid.UUID, len(existing))
	for i := range existing {
		existingCodes[existing[i].Code] = existing[i].ID
	}

	var created []*reporting.DataPoint
	var items []rollover.RolloverItem

	for i := range sources {
		src := &sources[i]

		if targetID, ok := existingCodes[src.Code]; ok {
			s.appendItem(run, &items, rollover.CategoryDataPoint, src.ID, &targetID, src.Code, rollover.OutcomeSkipped, "already present in target period")
			continue
		}

		targetSectionID, ok := sectionMap[src.SectionID]
		if !ok {
			s.appendItem(run, &items, rollover.CategoryDataPoint, src.ID, nil, src.Code, rollover.OutcomeSkipped, "section was not carried")
			continue
		}

		dp, outcome, err := s.cloneDataPoint(orgID, run.TargetPeriodID, targetSectionID, src)
		if err != nil {
			s.appendItem(run, &items, rollover.CategoryDataPoint, src.ID, nil, src.Code, rollover.OutcomeFailed, err.Error())
			continue
		}
		dp.ClearDomainEvents()

		created = append(created, dp)
		targetID := dp.ID
		s.appendItem(run, &items, rollover.CategoryDataPoint, src.ID, &targetID, src.Code, outcome, "")
	}

	if len(created) > 0 {
		if err := s.dataPointRepo.SaveAll(ctx, created); err != nil {
			return err
		}
	}
	return s.runRepo.SaveItems(ctx, items)
}

// cloneDataPoint builds the target-period copy of one data point and reports
// whether its value was carried or reset
func (s *RolloverService) cloneDataPoint(orgID, targetPeriodID, targetSectionID uuid.UUID, src *reporting.DataPoint) (*reporting.DataPoint, rollover.RolloverOutcome, error) {
	var (
		dp  *reporting.DataPoint
		err error
	)
	switch src.Kind {
	case reporting.DataPointKindMetric:
		dp, err = reporting.NewMetricDataPoint(orgID, targetPeriodID, targetSectionID, src.Code, src.Name, src.UnitCode)
	case reporting.DataPointKindNarrative:
		dp, err = reporting.NewNarrativeDataPoint(orgID, targetPeriodID, targetSectionID, src.Code, src.Name)
	case reporting.DataPointKindBoolean:
		dp, err = reporting.NewBooleanDataPoint(orgID, targetPeriodID, targetSectionID, src.Code, src.Name)
	default:
		return nil, "", shared.NewDomainError("INVALID_KIND", "Unknown data point kind "+string(src.Kind))
	}
	if err != nil {
		return nil, "", err
	}

	if err := dp.Update(src.Name, src.Guidance, src.StandardRef); err != nil {
		return nil, "", err
	}
	dp.SetMandatory(src.Mandatory)
	if src.OwnerUserID != nil {
		if err := dp.AssignOwner(*src.OwnerUserID); err != nil {
			return nil, "", err
		}
	}

	outcome := rollover.OutcomeCarried
	switch src.Kind {
	case reporting.DataPointKindMetric:
		if src.TargetValue != nil {
			if err := dp.SetTarget(*src.TargetValue); err != nil {
				return nil, "", err
			}
		}
		if src.NumericValue != nil {
			// Prior value becomes the baseline; the new period starts empty
			if err := dp.SetBaseline(*src.NumericValue); err != nil {
				return nil, "", err
			}
			outcome = rollover.OutcomeReset
		}
	case reporting.DataPointKindNarrative:
		if src.TextValue != "" {
			// Narrative carries over as a draft to be reviewed
			if err := dp.RecordTextValue(src.TextValue, uuid.Nil); err != nil {
				return nil, "", err
			}
		}
	case reporting.DataPointKindBoolean:
		if src.BoolValue != nil {
			outcome = rollover.OutcomeReset
		}
	}

	return dp, outcome, nil
}

// carryRegister re-links active assumptions to the carried data points,
// copies open gaps into the target period, and keeps active remediation
// plans attached to the carried gaps.
func (s *RolloverService) carryRegister(ctx context.Context, run *rollover.RolloverRun) error {
	sectionMap, err := s.buildSectionMap(ctx, run)
	if err != nil {
		return err
	}
	dataPointMap, err := s.buildDataPointMap(ctx, run)
	if err != nil {
		return err
	}

	var items []rollover.RolloverItem

	if err := s.relinkAssumptions(ctx, run, dataPointMap, &items); err != nil {
		return err
	}

	gapMap, err := s.carryGaps(ctx, run, sectionMap, dataPointMap, &items)
	if err != nil {
		return err
	}

	if err := s.reattachPlans(ctx, run, gapMap, &items); err != nil {
		return err
	}

	return s.runRepo.SaveItems(ctx, items)
}

func (s *RolloverService) relinkAssumptions(ctx context.Context, run *rollover.RolloverRun, dataPointMap map[uuid.UUID]uuid.UUID, items *[]rollover.RolloverItem) error {
	assumptions, err := s.assumptionRepo.FindActiveForOrg(ctx, run.OrganizationID)
	if err != nil {
		return err
	}

	for i := range assumptions {
		assumption := &assumptions[i]
		linked, err := s.assumptionRepo.LoadLinks(ctx, assumption.ID)
		if err != nil {
			s.appendItem(run, items, rollover.CategoryAssumption, assumption.ID, nil, assumption.Title, rollover.OutcomeFailed, err.Error())
			continue
		}

		linkSet := make(map[uuid.UUID]bool, len(linked))
		for _, id := range linked {
			linkSet[id] = true
		}

		added := false
		for _, oldID := range linked {
			newID, ok := dataPointMap[oldID]
			if !ok || linkSet[newID] {
				continue
			}
			linked = append(linked, newID)
			linkSet[newID] = true
			added = true
		}
		if !added {
			s.appendItem(run, items, rollover.CategoryAssumption, assumption.ID, nil, assumption.Title, rollover.OutcomeSkipped, "no links into the source period")
			continue
		}

		links := make([]register.AssumptionLink, len(linked))
		for j, dpID := range linked {
			links[j] = register.AssumptionLink{
				AssumptionID:   assumption.ID,
				DataPointID:    dpID,
				OrganizationID: run.OrganizationID,
				CreatedAt:      time.Now(),
			}
		}
		if err := s.assumptionRepo.SaveLinks(ctx, assumption.ID, links); err != nil {
			s.appendItem(run, items, rollover.CategoryAssumption, assumption.ID, nil, assumption.Title, rollover.OutcomeFailed, err.Error())
			continue
		}

		s.appendItem(run, items, rollover.CategoryAssumption, assumption.ID, nil, assumption.Title, rollover.OutcomeCarried, "")
	}
	return nil
}

// carryGaps copies open gaps into the target period and returns the mapping
// from source gap ID to the new gap ID
func (s *RolloverService) carryGaps(
	ctx context.Context,
	run *rollover.RolloverRun,
	sectionMap map[uuid.UUID]uuid.UUID,
	dataPointMap map[uuid.UUID]uuid.UUID,
	items *[]rollover.RolloverItem,
) (map[uuid.UUID]uuid.UUID, error) {
	gaps, err := s.gapRepo.FindOpenByPeriod(ctx, run.OrganizationID, run.SourcePeriodID)
	if err != nil {
		return nil, err
	}

	gapMap := make(map[uuid.UUID]uuid.UUID, len(gaps))
	for i := range gaps {
		src := &gaps[i]

		var sectionID, dataPointID *uuid.UUID
		if src.SectionID != nil {
			mapped, ok := sectionMap[*src.SectionID]
			if !ok {
				s.appendItem(run, items, rollover.CategoryGap, src.ID, nil, src.Title, rollover.OutcomeSkipped, "bound section was not carried")
				continue
			}
			sectionID = &mapped
		}
		if src.DataPointID != nil {
			mapped, ok := dataPointMap[*src.DataPointID]
			if !ok {
				s.appendItem(run, items, rollover.CategoryGap, src.ID, nil, src.Title, rollover.OutcomeSkipped, "bound data point was not carried")
				continue
			}
			dataPointID = &mapped
		}

		gap, err := register.NewGap(run.OrganizationID, run.TargetPeriodID, sectionID, dataPointID, src.Title, src.Description, src.Severity)
		if err != nil {
			s.appendItem(run, items, rollover.CategoryGap, src.ID, nil, src.Title, rollover.OutcomeFailed, err.Error())
			continue
		}
		if src.RaisedBy != nil {
			gap.SetRaisedBy(*src.RaisedBy)
		}

		events := gap.GetDomainEvents()
		gap.ClearDomainEvents()
		if err := s.gapRepo.SaveWithEvents(ctx, gap, events); err != nil {
			s.appendItem(run, items, rollover.CategoryGap, src.ID, nil, src.Title, rollover.OutcomeFailed, err.Error())
			continue
		}

		gapMap[src.ID] = gap.ID
		targetID := gap.ID
		s.appendItem(run, items, rollover.CategoryGap, src.ID, &targetID, src.Title, rollover.OutcomeCarried, "")
	}
	return gapMap, nil
}

// reattachPlans attaches the carried gaps to the active plans that addressed
// their source-period counterparts
func (s *RolloverService) reattachPlans(ctx context.Context, run *rollover.RolloverRun, gapMap map[uuid.UUID]uuid.UUID, items *[]rollover.RolloverItem) error {
	plans, err := s.planRepo.FindActiveForOrg(ctx, run.OrganizationID)
	if err != nil {
		return err
	}

	for i := range plans {
		plan := &plans[i]
		gapIDs, err := s.planRepo.LoadGapLinks(ctx, plan.ID)
		if err != nil {
			s.appendItem(run, items, rollover.CategoryPlan, plan.ID, nil, plan.Title, rollover.OutcomeFailed, err.Error())
			continue
		}
		plan.GapIDs = gapIDs

		attached := false
		for _, oldGapID := range gapIDs {
			newGapID, ok := gapMap[oldGapID]
			if !ok || plan.AddressesGap(newGapID) {
				continue
			}
			if err := plan.AttachGap(newGapID); err != nil {
				continue
			}
			attached = true
		}
		if !attached {
			s.appendItem(run, items, rollover.CategoryPlan, plan.ID, nil, plan.Title, rollover.OutcomeSkipped, "no carried gaps to attach")
			continue
		}

		events := plan.GetDomainEvents()
		plan.ClearDomainEvents()
		if err := s.planRepo.SaveWithLockAndEvents(ctx, plan, events); err != nil {
			s.appendItem(run, items, rollover.CategoryPlan, plan.ID, nil, plan.Title, rollover.OutcomeFailed, err.Error())
			continue
		}
		links := make([]remediation.PlanGap, len(plan.GapIDs))
		for j, gapID := range plan.GapIDs {
			links[j] = remediation.PlanGap{
				PlanID:         plan.ID,
				GapID:          gapID,
				OrganizationID: plan.OrganizationID,
				CreatedAt:      time.Now(),
			}
		}
		if err := s.planRepo.SaveGapLinks(ctx, plan.ID, links); err != nil {
			s.appendItem(run, items, rollover.CategoryPlan, plan.ID, nil, plan.Title, rollover.OutcomeFailed, err.Error())
			continue
		}

		s.appendItem(run, items, rollover.CategoryPlan, plan.ID, nil, plan.Title, rollover.OutcomeCarried, "")
	}
	return nil
}

// buildSectionMap maps source section IDs to their carried counterparts by code
func (s *RolloverService) buildSectionMap(ctx context.Context, run *rollover.RolloverRun) (map[uuid.UUID]uuid.UUID, error) {
	sources, err := s.sectionRepo.FindByPeriod(ctx, run.OrganizationID, run.SourcePeriodID)
	if err != nil {
		return nil, err
	}
	targets, err := s.sectionRepo.FindByPeriod(ctx, run.OrganizationID, run.TargetPeriodID)
	if err != nil {
		return nil, err
	}

	targetByCode := make(map[string]uuid.UUID, len(targets))
	for i := range targets {
		targetByCode[targets[i].Code] = targets[i].ID
	}

	mapping := make(map[uuid.UUID]uuid.UUID, len(sources))
	for i := range sources {
		if targetID, ok := targetByCode[sources[i].Code]; ok {
			mapping[sources[i].ID] = targetID
		}
	}
	return mapping, nil
}

// buildDataPointMap maps source data point IDs to their carried counterparts by code
func (s *RolloverService) buildDataPointMap(ctx context.Context, run *rollover.RolloverRun) (map[uuid.UUID]uuid.UUID, error) {
	sources, err := s.dataPointRepo.FindByPeriod(ctx, run.OrganizationID, run.SourcePeriodID, shared.Filter{})
	if err != nil {
		return nil, err
	}
	targets, err := s.dataPointRepo.FindByPeriod(ctx, run.OrganizationID, run.TargetPeriodID, shared.Filter{})
	if err != nil {
		return nil, err
	}

	targetByCode := make(map[string]uuid.UUID, len(targets))
	for i := range targets {
		targetByCode[targets[i].Code] = targets[i].ID
	}

	mapping := make(map[uuid.UUID]uuid.UUID, len(sources))
	for i := range sources {
		if targetID, ok := targetByCode[sources[i].Code]; ok {
			mapping[sources[i].ID] = targetID
		}
	}
	return mapping, nil
}

// appendItem builds an outcome row and tallies it into the run counters
func (s *RolloverService) appendItem(run *rollover.RolloverRun, items *[]rollover.RolloverItem, category rollover.RolloverCategory, sourceID uuid.UUID, targetID *uuid.UUID, code string, outcome rollover.RolloverOutcome, detail string) {
	if len(code) > 200 {
		code = code[:200]
	}
	item, err := rollover.NewRolloverItem(run.ID, category, sourceID, targetID, code, outcome, detail)
	if err != nil {
		s.logger.Warn("Failed to build rollover outcome row", zap.Error(err))
		return
	}
	*items = append(*items, *item)
	_ = run.RecordOutcome(outcome)
}
