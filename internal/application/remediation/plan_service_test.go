package remediation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/register"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/remediation"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

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

// test helpers

var testOrgID = uuid.New()

func newPlanService() (*PlanService, *MockRemediationPlanRepository, *MockGapRepository) {
	planRepo := new(MockRemediationPlanRepository)
	gapRepo := new(MockGapRepository)
	service := NewPlanService(planRepo, gapRepo, zap.NewNop())
	return service, planRepo, gapRepo
}

func createOpenGap() *register.Gap {
	gap, _ := register.NewGap(testOrgID, uuid.New(), nil, nil, "Missing supplier audits", "No audit evidence for tier 1 suppliers", register.GapSeverityHigh)
	gap.ClearDomainEvents()
	return gap
}

func createDraftPlan(gapID uuid.UUID) *remediation.RemediationPlan {
	plan, _ := remediation.NewRemediationPlan(testOrgID, "Collect supplier audits", "Request audit reports from procurement")
	_ = plan.AttachGap(gapID)
	_, _ = plan.AddItem("Contact procurement for audit reports", nil)
	plan.ClearDomainEvents()
	return plan
}

func createActivePlan(gapID uuid.UUID) *remediation.RemediationPlan {
	plan := createDraftPlan(gapID)
	_ = plan.Activate()
	plan.ClearDomainEvents()
	return plan
}

func expectFindPlan(planRepo *MockRemediationPlanRepository, plan *remediation.RemediationPlan) {
	planRepo.On("FindByIDForOrg", mock.Anything, plan.ID, testOrgID).Return(plan, nil)
	planRepo.On("LoadGapLinks", mock.Anything, plan.ID).Return(append([]uuid.UUID{}, plan.GapIDs...), nil)
}

func TestPlanService_Create(t *testing.T) {
	t.Run("create with attached gap", func(t *testing.T) {
		service, planRepo, gapRepo := newPlanService()
		ctx := context.Background()

		gap := createOpenGap()

		gapRepo.On("FindByIDForOrg", mock.Anything, testOrgID, gap.ID).Return(gap, nil)
		planRepo.On("SaveWithEvents", mock.Anything, mock.AnythingOfType("*remediation.RemediationPlan"), mock.Anything).Return(nil)
		planRepo.On("SaveGapLinks", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.MatchedBy(func(links []remediation.PlanGap) bool {
			return len(links) == 1 && links[0].GapID == gap.ID
		})).Return(nil)

		result, err := service.Create(ctx, testOrgID, CreatePlanRequest{
			Title:       "Collect supplier audits",
			Description: "Request audit reports from procurement",
			GapIDs:      []uuid.UUID{gap.ID},
		})

		assert.NoError(t, err)
		assert.Equal(t, "draft", result.Status)
		assert.Equal(t, []uuid.UUID{gap.ID}, result.GapIDs)
		planRepo.AssertExpectations(t)
	})

	t.Run("closed gap cannot be attached", func(t *testing.T) {
		service, _, gapRepo := newPlanService()
		ctx := context.Background()

		gap := createOpenGap()
		_ = gap.Acknowledge()
		_ = gap.Resolve("fixed elsewhere", uuid.New())
		gap.ClearDomainEvents()

		gapRepo.On("FindByIDForOrg", mock.Anything, testOrgID, gap.ID).Return(gap, nil)

		result, err := service.Create(ctx, testOrgID, CreatePlanRequest{
			Title:  "Collect supplier audits",
			GapIDs: []uuid.UUID{gap.ID},
		})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "cannot be attached")
	})
}

func TestPlanService_Activate(t *testing.T) {
	t.Run("activation cascades gaps into remediation", func(t *testing.T) {
		service, planRepo, gapRepo := newPlanService()
		ctx := context.Background()

		gap := createOpenGap()
		plan := createDraftPlan(gap.ID)

		expectFindPlan(planRepo, plan)
		planRepo.On("SaveWithLockAndEvents", mock.Anything, plan, mock.Anything).Return(nil)
		gapRepo.On("FindByIDForOrg", mock.Anything, testOrgID, gap.ID).Return(gap, nil)
		gapRepo.On("SaveWithLockAndEvents", mock.Anything, gap, mock.Anything).Return(nil)

		result, err := service.Activate(ctx, testOrgID, plan.ID)

		assert.NoError(t, err)
		assert.Equal(t, "active", result.Status)
		assert.Equal(t, register.GapStatusInRemediation, gap.Status)
		gapRepo.AssertExpectations(t)
	})

	t.Run("plan without items cannot be activated", func(t *testing.T) {
		service, planRepo, _ := newPlanService()
		ctx := context.Background()

		plan, _ := remediation.NewRemediationPlan(testOrgID, "Empty plan", "")
		_ = plan.AttachGap(uuid.New())
		plan.ClearDomainEvents()

		expectFindPlan(planRepo, plan)

		result, err := service.Activate(ctx, testOrgID, plan.ID)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "action item")
	})
}

func TestPlanService_Complete(t *testing.T) {
	t.Run("completion resolves addressed gaps", func(t *testing.T) {
		service, planRepo, gapRepo := newPlanService()
		ctx := context.Background()

		gap := createOpenGap()
		_ = gap.Acknowledge()
		_ = gap.StartRemediation()
		gap.ClearDomainEvents()

		plan := createActivePlan(gap.ID)
		itemID := plan.Items[0].ID
		_ = plan.StartItem(itemID)
		_ = plan.CompleteItem(itemID, "Reports received")
		plan.ClearDomainEvents()

		completedBy := uuid.New()

		expectFindPlan(planRepo, plan)
		planRepo.On("SaveWithLockAndEvents", mock.Anything, plan, mock.Anything).Return(nil)
		gapRepo.On("FindByIDForOrg", mock.Anything, testOrgID, gap.ID).Return(gap, nil)
		gapRepo.On("SaveWithLockAndEvents", mock.Anything, gap, mock.Anything).Return(nil)

		result, err := service.Complete(ctx, testOrgID, plan.ID, CompletePlanRequest{
			ResolutionNote: "All supplier audits collected",
			CompletedBy:    &completedBy,
		})

		assert.NoError(t, err)
		assert.Equal(t, "completed", result.Status)
		assert.Equal(t, register.GapStatusResolved, gap.Status)
		assert.Equal(t, "All supplier audits collected", gap.ResolutionNote)
	})

	t.Run("open items block completion", func(t *testing.T) {
		service, planRepo, _ := newPlanService()
		ctx := context.Background()

		plan := createActivePlan(uuid.New())

		expectFindPlan(planRepo, plan)

		result, err := service.Complete(ctx, testOrgID, plan.ID, CompletePlanRequest{ResolutionNote: "done"})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "must be done")
	})
}

func TestPlanService_DetachGap(t *testing.T) {
	t.Run("active plan keeps its last gap", func(t *testing.T) {
		service, planRepo, _ := newPlanService()
		ctx := context.Background()

		gapID := uuid.New()
		plan := createActivePlan(gapID)

		expectFindPlan(planRepo, plan)

		result, err := service.DetachGap(ctx, testOrgID, plan.ID, gapID)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "at least one gap")
	})
}

func TestPlanService_Items(t *testing.T) {
	t.Run("items only progress on an active plan", func(t *testing.T) {
		service, planRepo, _ := newPlanService()
		ctx := context.Background()

		plan := createDraftPlan(uuid.New())
		itemID := plan.Items[0].ID

		expectFindPlan(planRepo, plan)

		result, err := service.StartItem(ctx, testOrgID, plan.ID, itemID)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "active plan")
	})

	t.Run("complete item records done note", func(t *testing.T) {
		service, planRepo, _ := newPlanService()
		ctx := context.Background()

		plan := createActivePlan(uuid.New())
		itemID := plan.Items[0].ID
		_ = plan.StartItem(itemID)
		plan.ClearDomainEvents()

		expectFindPlan(planRepo, plan)
		planRepo.On("SaveWithLockAndEvents", mock.Anything, plan, mock.Anything).Return(nil)

		result, err := service.CompleteItem(ctx, testOrgID, plan.ID, itemID, CompleteItemRequest{Note: "Reports received"})

		assert.NoError(t, err)
		assert.Equal(t, "done", result.Items[0].Status)
		assert.Equal(t, "Reports received", result.Items[0].DoneNote)
		assert.Equal(t, 1, result.DoneItemCount)
	})
}

func TestPlanService_Delete(t *testing.T) {
	t.Run("active plan cannot be deleted", func(t *testing.T) {
		service, planRepo, _ := newPlanService()
		ctx := context.Background()

		plan := createActivePlan(uuid.New())

		expectFindPlan(planRepo, plan)

		err := service.Delete(ctx, testOrgID, plan.ID)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "draft or cancelled")
	})

	t.Run("draft plan deleted", func(t *testing.T) {
		service, planRepo, _ := newPlanService()
		ctx := context.Background()

		plan := createDraftPlan(uuid.New())

		expectFindPlan(planRepo, plan)
		planRepo.On("DeleteForOrg", mock.Anything, plan.ID, testOrgID).Return(nil)

		err := service.Delete(ctx, testOrgID, plan.ID)

		assert.NoError(t, err)
		planRepo.AssertExpectations(t)
	})
}

func TestPlanService_SweepOverduePlans(t *testing.T) {
	t.Run("flags active plans past their due date", func(t *testing.T) {
		service, planRepo, _ := newPlanService()
		ctx := context.Background()

		plan, _ := remediation.NewRemediationPlan(testOrgID, "Late plan", "")
		_ = plan.AttachGap(uuid.New())
		_, _ = plan.AddItem("Chase the owner", nil)
		_ = plan.SetDueDate(time.Now().Add(-48 * time.Hour))
		_ = plan.Activate()
		plan.ClearDomainEvents()

		asOf := time.Now()

		planRepo.On("FindOverdue", mock.Anything, testOrgID, asOf, 100).Return([]remediation.RemediationPlan{*plan}, nil)
		planRepo.On("SaveWithLockAndEvents", mock.Anything, mock.MatchedBy(func(p *remediation.RemediationPlan) bool {
			return p.OverdueFlaggedAt != nil
		}), mock.Anything).Return(nil)

		err := service.SweepOverduePlans(ctx, testOrgID, asOf)

		assert.NoError(t, err)
		planRepo.AssertExpectations(t)
	})

	t.Run("already flagged plans are skipped", func(t *testing.T) {
		service, planRepo, _ := newPlanService()
		ctx := context.Background()

		plan, _ := remediation.NewRemediationPlan(testOrgID, "Late plan", "")
		_ = plan.AttachGap(uuid.New())
		_, _ = plan.AddItem("Chase the owner", nil)
		_ = plan.SetDueDate(time.Now().Add(-48 * time.Hour))
		_ = plan.Activate()
		plan.FlagOverdue(time.Now().Add(-time.Hour))
		plan.ClearDomainEvents()

		asOf := time.Now()

		planRepo.On("FindOverdue", mock.Anything, testOrgID, asOf, 100).Return([]remediation.RemediationPlan{*plan}, nil)

		err := service.SweepOverduePlans(ctx, testOrgID, asOf)

		assert.NoError(t, err)
		planRepo.AssertNotCalled(t, "SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything)
	})
}
