package register

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/register"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/remediation"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// MockGapRepository is a mock implementation of register.GapRepository
type MockGapRepository struct {
	mock.Mock
}

func (m *MockGapRepository) FindByID(ctx context.Context, id uuid.UUID) (*register.Gap, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*register.Gap), args.Error(1)
}

func (m *MockGapRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*register.Gap, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*register.Gap), args.Error(1)
}

func (m *MockGapRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]register.Gap, error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]register.Gap), args.Error(1)
}

func (m *MockGapRepository) FindByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, filter shared.Filter) ([]register.Gap, error) {
	args := m.Called(ctx, organizationID, periodID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]register.Gap), args.Error(1)
}

func (m *MockGapRepository) FindBySection(ctx context.Context, organizationID, sectionID uuid.UUID) ([]register.Gap, error) {
	args := m.Called(ctx, organizationID, sectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]register.Gap), args.Error(1)
}

func (m *MockGapRepository) FindByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) ([]register.Gap, error) {
	args := m.Called(ctx, organizationID, dataPointID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]register.Gap), args.Error(1)
}

func (m *MockGapRepository) FindOpenByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) ([]register.Gap, error) {
	args := m.Called(ctx, organizationID, dataPointID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]register.Gap), args.Error(1)
}

func (m *MockGapRepository) FindOpenByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) ([]register.Gap, error) {
	args := m.Called(ctx, organizationID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]register.Gap), args.Error(1)
}

func (m *MockGapRepository) FindByStatus(ctx context.Context, organizationID, periodID uuid.UUID, status register.GapStatus, filter shared.Filter) ([]register.Gap, error) {
	args := m.Called(ctx, organizationID, periodID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]register.Gap), args.Error(1)
}

func (m *MockGapRepository) FindBySeverity(ctx context.Context, organizationID, periodID uuid.UUID, severity register.GapSeverity, filter shared.Filter) ([]register.Gap, error) {
	args := m.Called(ctx, organizationID, periodID, severity, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]register.Gap), args.Error(1)
}

func (m *MockGapRepository) FindByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]register.Gap, error) {
	args := m.Called(ctx, organizationID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]register.Gap), args.Error(1)
}

func (m *MockGapRepository) Save(ctx context.Context, g *register.Gap) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockGapRepository) SaveWithEvents(ctx context.Context, g *register.Gap, events []shared.DomainEvent) error {
	args := m.Called(ctx, g, events)
	return args.Error(0)
}

func (m *MockGapRepository) SaveWithLock(ctx context.Context, g *register.Gap) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockGapRepository) SaveWithLockAndEvents(ctx context.Context, g *register.Gap, events []shared.DomainEvent) error {
	args := m.Called(ctx, g, events)
	return args.Error(0)
}

func (m *MockGapRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGapRepository) DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

func (m *MockGapRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, organizationID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGapRepository) CountOpenByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID, dataPointID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGapRepository) CountOpenByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID, periodID)
	return args.Get(0).(int64), args.Error(1)
}

// MockReportingPeriodRepository is a mock implementation of reporting.ReportingPeriodRepository
type MockReportingPeriodRepository struct {
	mock.Mock
}

func (m *MockReportingPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*reporting.ReportingPeriod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.ReportingPeriod), args.Error(1)
}

func (m *MockReportingPeriodRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*reporting.ReportingPeriod, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.ReportingPeriod), args.Error(1)
}

func (m *MockReportingPeriodRepository) FindByLabel(ctx context.Context, organizationID uuid.UUID, label string) (*reporting.ReportingPeriod, error) {
	args := m.Called(ctx, organizationID, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.ReportingPeriod), args.Error(1)
}

func (m *MockReportingPeriodRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]reporting.ReportingPeriod, error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reporting.ReportingPeriod), args.Error(1)
}

func (m *MockReportingPeriodRepository) FindByStatus(ctx context.Context, organizationID uuid.UUID, status reporting.PeriodStatus, filter shared.Filter) ([]reporting.ReportingPeriod, error) {
	args := m.Called(ctx, organizationID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reporting.ReportingPeriod), args.Error(1)
}

func (m *MockReportingPeriodRepository) FindOpenForOrg(ctx context.Context, organizationID uuid.UUID) (*reporting.ReportingPeriod, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.ReportingPeriod), args.Error(1)
}

func (m *MockReportingPeriodRepository) FindLatestForOrg(ctx context.Context, organizationID uuid.UUID) (*reporting.ReportingPeriod, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.ReportingPeriod), args.Error(1)
}

func (m *MockReportingPeriodRepository) Save(ctx context.Context, period *reporting.ReportingPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockReportingPeriodRepository) SaveWithEvents(ctx context.Context, period *reporting.ReportingPeriod, events []shared.DomainEvent) error {
	args := m.Called(ctx, period, events)
	return args.Error(0)
}

func (m *MockReportingPeriodRepository) SaveWithLock(ctx context.Context, period *reporting.ReportingPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockReportingPeriodRepository) SaveWithLockAndEvents(ctx context.Context, period *reporting.ReportingPeriod, events []shared.DomainEvent) error {
	args := m.Called(ctx, period, events)
	return args.Error(0)
}

func (m *MockReportingPeriodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReportingPeriodRepository) DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

func (m *MockReportingPeriodRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, organizationID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportingPeriodRepository) CountByStatus(ctx context.Context, organizationID uuid.UUID, status reporting.PeriodStatus) (int64, error) {
	args := m.Called(ctx, organizationID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportingPeriodRepository) ExistsByLabel(ctx context.Context, organizationID uuid.UUID, label string) (bool, error) {
	args := m.Called(ctx, organizationID, label)
	return args.Bool(0), args.Error(1)
}

func (m *MockReportingPeriodRepository) ExistsOverlapping(ctx context.Context, organizationID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, organizationID, start, end, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockReportSectionRepository is a mock implementation of reporting.ReportSectionRepository
type MockReportSectionRepository struct {
	mock.Mock
}

func (m *MockReportSectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*reporting.ReportSection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.ReportSection), args.Error(1)
}

func (m *MockReportSectionRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*reporting.ReportSection, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.ReportSection), args.Error(1)
}

func (m *MockReportSectionRepository) FindByCode(ctx context.Context, organizationID, periodID uuid.UUID, code string) (*reporting.ReportSection, error) {
	args := m.Called(ctx, organizationID, periodID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.ReportSection), args.Error(1)
}

func (m *MockReportSectionRepository) FindByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) ([]reporting.ReportSection, error) {
	args := m.Called(ctx, organizationID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reporting.ReportSection), args.Error(1)
}

func (m *MockReportSectionRepository) FindActiveByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) ([]reporting.ReportSection, error) {
	args := m.Called(ctx, organizationID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reporting.ReportSection), args.Error(1)
}

func (m *MockReportSectionRepository) FindRoots(ctx context.Context, organizationID, periodID uuid.UUID) ([]reporting.ReportSection, error) {
	args := m.Called(ctx, organizationID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reporting.ReportSection), args.Error(1)
}

func (m *MockReportSectionRepository) FindChildren(ctx context.Context, organizationID, parentID uuid.UUID) ([]reporting.ReportSection, error) {
	args := m.Called(ctx, organizationID, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reporting.ReportSection), args.Error(1)
}

func (m *MockReportSectionRepository) FindByOwner(ctx context.Context, organizationID, periodID, ownerUserID uuid.UUID) ([]reporting.ReportSection, error) {
	args := m.Called(ctx, organizationID, periodID, ownerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reporting.ReportSection), args.Error(1)
}

func (m *MockReportSectionRepository) FindByStatus(ctx context.Context, organizationID, periodID uuid.UUID, status reporting.SectionStatus) ([]reporting.ReportSection, error) {
	args := m.Called(ctx, organizationID, periodID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reporting.ReportSection), args.Error(1)
}

func (m *MockReportSectionRepository) Save(ctx context.Context, section *reporting.ReportSection) error {
	args := m.Called(ctx, section)
	return args.Error(0)
}

func (m *MockReportSectionRepository) SaveWithEvents(ctx context.Context, section *reporting.ReportSection, events []shared.DomainEvent) error {
	args := m.Called(ctx, section, events)
	return args.Error(0)
}

func (m *MockReportSectionRepository) SaveWithLock(ctx context.Context, section *reporting.ReportSection) error {
	args := m.Called(ctx, section)
	return args.Error(0)
}

func (m *MockReportSectionRepository) SaveWithLockAndEvents(ctx context.Context, section *reporting.ReportSection, events []shared.DomainEvent) error {
	args := m.Called(ctx, section, events)
	return args.Error(0)
}

func (m *MockReportSectionRepository) SaveAll(ctx context.Context, sections []*reporting.ReportSection) error {
	args := m.Called(ctx, sections)
	return args.Error(0)
}

func (m *MockReportSectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReportSectionRepository) DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

func (m *MockReportSectionRepository) CountByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID, periodID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportSectionRepository) CountChildren(ctx context.Context, organizationID, parentID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID, parentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportSectionRepository) CountUnapprovedByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID, periodID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportSectionRepository) ExistsByCode(ctx context.Context, organizationID, periodID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, organizationID, periodID, code)
	return args.Bool(0), args.Error(1)
}

// MockRemediationPlanRepository is a mock implementation of remediation.RemediationPlanRepository
type MockRemediationPlanRepository struct {
	mock.Mock
}

func (m *MockRemediationPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*remediation.RemediationPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remediation.RemediationPlan), args.Error(1)
}

func (m *MockRemediationPlanRepository) FindByIDForOrg(ctx context.Context, id, organizationID uuid.UUID) (*remediation.RemediationPlan, error) {
	args := m.Called(ctx, id, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remediation.RemediationPlan), args.Error(1)
}

func (m *MockRemediationPlanRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (*shared.Paginated[remediation.RemediationPlan], error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[remediation.RemediationPlan]), args.Error(1)
}

func (m *MockRemediationPlanRepository) FindByStatus(ctx context.Context, organizationID uuid.UUID, status remediation.PlanStatus, filter shared.Filter) (*shared.Paginated[remediation.RemediationPlan], error) {
	args := m.Called(ctx, organizationID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[remediation.RemediationPlan]), args.Error(1)
}

func (m *MockRemediationPlanRepository) FindByOwner(ctx context.Context, organizationID, ownerUserID uuid.UUID) ([]remediation.RemediationPlan, error) {
	args := m.Called(ctx, organizationID, ownerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]remediation.RemediationPlan), args.Error(1)
}

func (m *MockRemediationPlanRepository) FindByGap(ctx context.Context, organizationID, gapID uuid.UUID) ([]remediation.RemediationPlan, error) {
	args := m.Called(ctx, organizationID, gapID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]remediation.RemediationPlan), args.Error(1)
}

func (m *MockRemediationPlanRepository) FindActiveForOrg(ctx context.Context, organizationID uuid.UUID) ([]remediation.RemediationPlan, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]remediation.RemediationPlan), args.Error(1)
}

func (m *MockRemediationPlanRepository) FindOverdue(ctx context.Context, organizationID uuid.UUID, asOf time.Time, limit int) ([]remediation.RemediationPlan, error) {
	args := m.Called(ctx, organizationID, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]remediation.RemediationPlan), args.Error(1)
}

func (m *MockRemediationPlanRepository) Save(ctx context.Context, plan *remediation.RemediationPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockRemediationPlanRepository) SaveWithEvents(ctx context.Context, plan *remediation.RemediationPlan, events []shared.DomainEvent) error {
	args := m.Called(ctx, plan, events)
	return args.Error(0)
}

func (m *MockRemediationPlanRepository) SaveWithLock(ctx context.Context, plan *remediation.RemediationPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockRemediationPlanRepository) SaveWithLockAndEvents(ctx context.Context, plan *remediation.RemediationPlan, events []shared.DomainEvent) error {
	args := m.Called(ctx, plan, events)
	return args.Error(0)
}

func (m *MockRemediationPlanRepository) SaveGapLinks(ctx context.Context, planID uuid.UUID, links []remediation.PlanGap) error {
	args := m.Called(ctx, planID, links)
	return args.Error(0)
}

func (m *MockRemediationPlanRepository) LoadGapLinks(ctx context.Context, planID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockRemediationPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRemediationPlanRepository) DeleteForOrg(ctx context.Context, id, organizationID uuid.UUID) error {
	args := m.Called(ctx, id, organizationID)
	return args.Error(0)
}

func (m *MockRemediationPlanRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRemediationPlanRepository) CountByStatus(ctx context.Context, organizationID uuid.UUID, status remediation.PlanStatus) (int64, error) {
	args := m.Called(ctx, organizationID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRemediationPlanRepository) CountActiveByGap(ctx context.Context, organizationID, gapID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID, gapID)
	return args.Get(0).(int64), args.Error(1)
}

// Gap test helpers

func newGapService() (*GapService, *MockGapRepository, *MockReportingPeriodRepository, *MockReportSectionRepository, *MockDataPointRepository, *MockRemediationPlanRepository) {
	gapRepo := new(MockGapRepository)
	periodRepo := new(MockReportingPeriodRepository)
	sectionRepo := new(MockReportSectionRepository)
	dataPointRepo := new(MockDataPointRepository)
	planRepo := new(MockRemediationPlanRepository)
	service := NewGapService(gapRepo, periodRepo, sectionRepo, dataPointRepo, planRepo)
	return service, gapRepo, periodRepo, sectionRepo, dataPointRepo, planRepo
}

func createOpenPeriod() *reporting.ReportingPeriod {
	period, _ := reporting.NewReportingPeriod(testOrgID, "FY2025",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	_ = period.Open()
	period.ClearDomainEvents()
	return period
}

func createClosedPeriod() *reporting.ReportingPeriod {
	period := createOpenPeriod()
	_ = period.StartReview()
	_ = period.Close()
	period.ClearDomainEvents()
	return period
}

func createTestGap(periodID uuid.UUID) *register.Gap {
	gap, _ := register.NewGap(testOrgID, periodID, nil, nil, "Missing Scope 3 category 4", "No upstream transport data collected", register.GapSeverityHigh)
	gap.ClearDomainEvents()
	return gap
}

func TestGapService_Create(t *testing.T) {
	t.Run("raise gap in open period", func(t *testing.T) {
		service, gapRepo, periodRepo, _, _, _ := newGapService()
		ctx := context.Background()

		period := createOpenPeriod()

		periodRepo.On("FindByIDForOrg", mock.Anything, testOrgID, period.ID).Return(period, nil)
		gapRepo.On("SaveWithEvents", mock.Anything, mock.AnythingOfType("*register.Gap"), mock.Anything).Return(nil)

		result, err := service.Create(ctx, testOrgID, CreateGapRequest{
			PeriodID:    period.ID,
			Title:       "Missing Scope 3 category 4",
			Description: "No upstream transport data collected",
			Severity:    "high",
		})

		assert.NoError(t, err)
		assert.Equal(t, "open", result.Status)
		assert.Equal(t, "high", result.Severity)
		gapRepo.AssertExpectations(t)
	})

	t.Run("closed period rejects new gaps", func(t *testing.T) {
		service, _, periodRepo, _, _, _ := newGapService()
		ctx := context.Background()

		period := createClosedPeriod()

		periodRepo.On("FindByIDForOrg", mock.Anything, testOrgID, period.ID).Return(period, nil)

		result, err := service.Create(ctx, testOrgID, CreateGapRequest{
			PeriodID:    period.ID,
			Title:       "Missing Scope 3 category 4",
			Description: "No upstream transport data collected",
			Severity:    "high",
		})

		assert.Error(t, err)
		assert.Nil(t, result)
	})

	t.Run("section from another period rejected", func(t *testing.T) {
		service, _, periodRepo, sectionRepo, _, _ := newGapService()
		ctx := context.Background()

		period := createOpenPeriod()
		otherSection, _ := reporting.NewReportSection(testOrgID, uuid.New(), "E1", "Climate change")

		periodRepo.On("FindByIDForOrg", mock.Anything, testOrgID, period.ID).Return(period, nil)
		sectionRepo.On("FindByIDForOrg", mock.Anything, testOrgID, otherSection.ID).Return(otherSection, nil)

		result, err := service.Create(ctx, testOrgID, CreateGapRequest{
			PeriodID:    period.ID,
			SectionID:   &otherSection.ID,
			Title:       "Energy mix not disclosed",
			Description: "Section incomplete",
			Severity:    "medium",
		})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "different period")
	})
}

func TestGapService_Lifecycle(t *testing.T) {
	t.Run("acknowledge then resolve", func(t *testing.T) {
		service, gapRepo, _, _, _, _ := newGapService()
		ctx := context.Background()

		gap := createTestGap(uuid.New())
		resolver := uuid.New()

		gapRepo.On("FindByIDForOrg", mock.Anything, testOrgID, gap.ID).Return(gap, nil)
		gapRepo.On("SaveWithLockAndEvents", mock.Anything, gap, mock.Anything).Return(nil)

		acked, err := service.Acknowledge(ctx, testOrgID, gap.ID)
		assert.NoError(t, err)
		assert.Equal(t, "acknowledged", acked.Status)

		resolved, err := service.Resolve(ctx, testOrgID, gap.ID, CloseGapRequest{Note: "Carrier data received", ClosedBy: resolver})
		assert.NoError(t, err)
		assert.Equal(t, "resolved", resolved.Status)
		assert.Equal(t, "Carrier data received", resolved.ResolutionNote)
	})

	t.Run("resolve open gap without acknowledgement fails", func(t *testing.T) {
		service, gapRepo, _, _, _, _ := newGapService()
		ctx := context.Background()

		gap := createTestGap(uuid.New())

		gapRepo.On("FindByIDForOrg", mock.Anything, testOrgID, gap.ID).Return(gap, nil)

		result, err := service.Resolve(ctx, testOrgID, gap.ID, CloseGapRequest{Note: "done", ClosedBy: uuid.New()})

		assert.Error(t, err)
		assert.Nil(t, result)
	})

	t.Run("accept records justification", func(t *testing.T) {
		service, gapRepo, _, _, _, _ := newGapService()
		ctx := context.Background()

		gap := createTestGap(uuid.New())
		_ = gap.Acknowledge()
		gap.ClearDomainEvents()

		gapRepo.On("FindByIDForOrg", mock.Anything, testOrgID, gap.ID).Return(gap, nil)
		gapRepo.On("SaveWithLockAndEvents", mock.Anything, gap, mock.Anything).Return(nil)

		result, err := service.Accept(ctx, testOrgID, gap.ID, CloseGapRequest{Note: "Immaterial for FY2025", ClosedBy: uuid.New()})

		assert.NoError(t, err)
		assert.Equal(t, "accepted", result.Status)
	})
}

func TestGapService_Delete(t *testing.T) {
	t.Run("gap with active plans cannot be deleted", func(t *testing.T) {
		service, gapRepo, _, _, _, planRepo := newGapService()
		ctx := context.Background()

		gap := createTestGap(uuid.New())

		gapRepo.On("FindByIDForOrg", mock.Anything, testOrgID, gap.ID).Return(gap, nil)
		planRepo.On("CountActiveByGap", mock.Anything, testOrgID, gap.ID).Return(int64(1), nil)

		err := service.Delete(ctx, testOrgID, gap.ID)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "remediation plans")
	})

	t.Run("unreferenced gap deleted", func(t *testing.T) {
		service, gapRepo, _, _, _, planRepo := newGapService()
		ctx := context.Background()

		gap := createTestGap(uuid.New())

		gapRepo.On("FindByIDForOrg", mock.Anything, testOrgID, gap.ID).Return(gap, nil)
		planRepo.On("CountActiveByGap", mock.Anything, testOrgID, gap.ID).Return(int64(0), nil)
		gapRepo.On("DeleteForOrg", mock.Anything, testOrgID, gap.ID).Return(nil)

		err := service.Delete(ctx, testOrgID, gap.ID)

		assert.NoError(t, err)
		gapRepo.AssertExpectations(t)
	})
}

func TestGapService_List(t *testing.T) {
	t.Run("open only listing uses dedicated query", func(t *testing.T) {
		service, gapRepo, _, _, _, _ := newGapService()
		ctx := context.Background()

		periodID := uuid.New()
		gaps := []register.Gap{*createTestGap(periodID)}

		gapRepo.On("FindOpenByPeriod", mock.Anything, testOrgID, periodID).Return(gaps, nil)

		result, total, err := service.List(ctx, testOrgID, GapListFilter{PeriodID: &periodID, OpenOnly: true})

		assert.NoError(t, err)
		assert.Len(t, result, 1)
		assert.Equal(t, int64(1), total)
		gapRepo.AssertExpectations(t)
	})
}
