package register

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/register"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// MockAssumptionRepository is a mock implementation of register.AssumptionRepository
type MockAssumptionRepository struct {
	mock.Mock
}

func (m *MockAssumptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*register.Assumption, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*register.Assumption), args.Error(1)
}

func (m *MockAssumptionRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*register.Assumption, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*register.Assumption), args.Error(1)
}

func (m *MockAssumptionRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]register.Assumption, error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]register.Assumption), args.Error(1)
}

func (m *MockAssumptionRepository) FindByStatus(ctx context.Context, organizationID uuid.UUID, status register.AssumptionStatus, filter shared.Filter) ([]register.Assumption, error) {
	args := m.Called(ctx, organizationID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]register.Assumption), args.Error(1)
}

func (m *MockAssumptionRepository) FindByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID) ([]register.Assumption, error) {
	args := m.Called(ctx, organizationID, dataPointID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]register.Assumption), args.Error(1)
}

func (m *MockAssumptionRepository) FindActiveForOrg(ctx context.Context, organizationID uuid.UUID) ([]register.Assumption, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]register.Assumption), args.Error(1)
}

func (m *MockAssumptionRepository) FindDueForReview(ctx context.Context, organizationID uuid.UUID, asOf time.Time) ([]register.Assumption, error) {
	args := m.Called(ctx, organizationID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]register.Assumption), args.Error(1)
}

func (m *MockAssumptionRepository) Save(ctx context.Context, a *register.Assumption) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssumptionRepository) SaveWithEvents(ctx context.Context, a *register.Assumption, events []shared.DomainEvent) error {
	args := m.Called(ctx, a, events)
	return args.Error(0)
}

func (m *MockAssumptionRepository) SaveWithLock(ctx context.Context, a *register.Assumption) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssumptionRepository) SaveWithLockAndEvents(ctx context.Context, a *register.Assumption, events []shared.DomainEvent) error {
	args := m.Called(ctx, a, events)
	return args.Error(0)
}

func (m *MockAssumptionRepository) SaveLinks(ctx context.Context, assumptionID uuid.UUID, links []register.AssumptionLink) error {
	args := m.Called(ctx, assumptionID, links)
	return args.Error(0)
}

func (m *MockAssumptionRepository) LoadLinks(ctx context.Context, assumptionID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, assumptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockAssumptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAssumptionRepository) DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

func (m *MockAssumptionRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, organizationID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// Shared test helpers for the register package

var testOrgID = uuid.New()

func newAssumptionService() (*AssumptionService, *MockAssumptionRepository, *MockDataPointRepository) {
	assumptionRepo := new(MockAssumptionRepository)
	dataPointRepo := new(MockDataPointRepository)
	service := NewAssumptionService(assumptionRepo, dataPointRepo)
	return service, assumptionRepo, dataPointRepo
}

func createTestAssumption() *register.Assumption {
	a, _ := register.NewAssumption(testOrgID, "Grid emission factor", "Factor per national registry 2025", "emissions")
	a.ClearDomainEvents()
	return a
}

func createTestDataPoint() *reporting.DataPoint {
	dp, _ := reporting.NewMetricDataPoint(testOrgID, uuid.New(), uuid.New(), "E1-6", "Gross Scope 1 emissions", "tCO2e")
	dp.ClearDomainEvents()
	return dp
}

func TestAssumptionService_Create(t *testing.T) {
	t.Run("create assumption with linked data point", func(t *testing.T) {
		service, assumptionRepo, dataPointRepo := newAssumptionService()
		ctx := context.Background()

		dp := createTestDataPoint()

		dataPointRepo.On("FindByIDForOrg", mock.Anything, testOrgID, dp.ID).Return(dp, nil)
		assumptionRepo.On("SaveWithEvents", mock.Anything, mock.AnythingOfType("*register.Assumption"), mock.Anything).Return(nil)
		assumptionRepo.On("SaveLinks", mock.Anything, mock.Anything, mock.AnythingOfType("[]register.AssumptionLink")).Return(nil)

		result, err := service.Create(ctx, testOrgID, CreateAssumptionRequest{
			Title:        "Grid emission factor",
			Body:         "Factor per national registry 2025",
			Category:     "emissions",
			DataPointIDs: []uuid.UUID{dp.ID},
		})

		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, "active", result.Status)
		assert.Equal(t, []uuid.UUID{dp.ID}, result.LinkedDataPointIDs)
		assumptionRepo.AssertExpectations(t)
		dataPointRepo.AssertExpectations(t)
	})

	t.Run("unknown data point rejects create", func(t *testing.T) {
		service, _, dataPointRepo := newAssumptionService()
		ctx := context.Background()

		dpID := uuid.New()
		dataPointRepo.On("FindByIDForOrg", mock.Anything, testOrgID, dpID).Return(nil, shared.ErrNotFound)

		result, err := service.Create(ctx, testOrgID, CreateAssumptionRequest{
			Title:        "Grid emission factor",
			Body:         "Factor per national registry 2025",
			DataPointIDs: []uuid.UUID{dpID},
		})

		assert.Error(t, err)
		assert.Nil(t, result)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		service, _, _ := newAssumptionService()
		ctx := context.Background()

		result, err := service.Create(ctx, testOrgID, CreateAssumptionRequest{
			Title: "",
			Body:  "Factor per national registry 2025",
		})

		assert.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestAssumptionService_LinkDataPoint(t *testing.T) {
	t.Run("link verifies the data point and replaces link rows", func(t *testing.T) {
		service, assumptionRepo, dataPointRepo := newAssumptionService()
		ctx := context.Background()

		assumption := createTestAssumption()
		dp := createTestDataPoint()

		assumptionRepo.On("FindByIDForOrg", mock.Anything, testOrgID, assumption.ID).Return(assumption, nil)
		assumptionRepo.On("LoadLinks", mock.Anything, assumption.ID).Return([]uuid.UUID{}, nil)
		dataPointRepo.On("FindByIDForOrg", mock.Anything, testOrgID, dp.ID).Return(dp, nil)
		assumptionRepo.On("SaveWithLockAndEvents", mock.Anything, assumption, mock.Anything).Return(nil)
		assumptionRepo.On("SaveLinks", mock.Anything, assumption.ID, mock.MatchedBy(func(links []register.AssumptionLink) bool {
			return len(links) == 1 && links[0].DataPointID == dp.ID
		})).Return(nil)

		result, err := service.LinkDataPoint(ctx, testOrgID, assumption.ID, dp.ID)

		assert.NoError(t, err)
		assert.Contains(t, result.LinkedDataPointIDs, dp.ID)
		assumptionRepo.AssertExpectations(t)
	})

	t.Run("duplicate link rejected", func(t *testing.T) {
		service, assumptionRepo, dataPointRepo := newAssumptionService()
		ctx := context.Background()

		assumption := createTestAssumption()
		dp := createTestDataPoint()

		assumptionRepo.On("FindByIDForOrg", mock.Anything, testOrgID, assumption.ID).Return(assumption, nil)
		assumptionRepo.On("LoadLinks", mock.Anything, assumption.ID).Return([]uuid.UUID{dp.ID}, nil)
		dataPointRepo.On("FindByIDForOrg", mock.Anything, testOrgID, dp.ID).Return(dp, nil)

		result, err := service.LinkDataPoint(ctx, testOrgID, assumption.ID, dp.ID)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "already linked")
	})
}

func TestAssumptionService_Retire(t *testing.T) {
	t.Run("retire active assumption", func(t *testing.T) {
		service, assumptionRepo, _ := newAssumptionService()
		ctx := context.Background()

		assumption := createTestAssumption()

		assumptionRepo.On("FindByIDForOrg", mock.Anything, testOrgID, assumption.ID).Return(assumption, nil)
		assumptionRepo.On("LoadLinks", mock.Anything, assumption.ID).Return([]uuid.UUID{}, nil)
		assumptionRepo.On("SaveWithLockAndEvents", mock.Anything, assumption, mock.Anything).Return(nil)

		result, err := service.Retire(ctx, testOrgID, assumption.ID)

		assert.NoError(t, err)
		assert.Equal(t, "retired", result.Status)
		assert.NotNil(t, result.RetiredAt)
		assumptionRepo.AssertExpectations(t)
	})

	t.Run("retire twice fails", func(t *testing.T) {
		service, assumptionRepo, _ := newAssumptionService()
		ctx := context.Background()

		assumption := createTestAssumption()
		_ = assumption.Retire()
		assumption.ClearDomainEvents()

		assumptionRepo.On("FindByIDForOrg", mock.Anything, testOrgID, assumption.ID).Return(assumption, nil)
		assumptionRepo.On("LoadLinks", mock.Anything, assumption.ID).Return([]uuid.UUID{}, nil)

		result, err := service.Retire(ctx, testOrgID, assumption.ID)

		assert.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestAssumptionService_Update(t *testing.T) {
	t.Run("partial update keeps unset fields", func(t *testing.T) {
		service, assumptionRepo, _ := newAssumptionService()
		ctx := context.Background()

		assumption := createTestAssumption()
		newBody := "Factor updated to registry 2026"

		assumptionRepo.On("FindByIDForOrg", mock.Anything, testOrgID, assumption.ID).Return(assumption, nil)
		assumptionRepo.On("LoadLinks", mock.Anything, assumption.ID).Return([]uuid.UUID{}, nil)
		assumptionRepo.On("SaveWithLockAndEvents", mock.Anything, assumption, mock.Anything).Return(nil)

		result, err := service.Update(ctx, testOrgID, assumption.ID, UpdateAssumptionRequest{Body: &newBody})

		assert.NoError(t, err)
		assert.Equal(t, "Grid emission factor", result.Title)
		assert.Equal(t, newBody, result.Body)
		assumptionRepo.AssertExpectations(t)
	})

	t.Run("update retired assumption fails", func(t *testing.T) {
		service, assumptionRepo, _ := newAssumptionService()
		ctx := context.Background()

		assumption := createTestAssumption()
		_ = assumption.Retire()
		assumption.ClearDomainEvents()
		newTitle := "Updated title"

		assumptionRepo.On("FindByIDForOrg", mock.Anything, testOrgID, assumption.ID).Return(assumption, nil)
		assumptionRepo.On("LoadLinks", mock.Anything, assumption.ID).Return([]uuid.UUID{}, nil)

		result, err := service.Update(ctx, testOrgID, assumption.ID, UpdateAssumptionRequest{Title: &newTitle})

		assert.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestAssumptionService_Delete(t *testing.T) {
	t.Run("delete unlinked assumption", func(t *testing.T) {
		service, assumptionRepo, _ := newAssumptionService()
		ctx := context.Background()

		assumption := createTestAssumption()

		assumptionRepo.On("FindByIDForOrg", mock.Anything, testOrgID, assumption.ID).Return(assumption, nil)
		assumptionRepo.On("LoadLinks", mock.Anything, assumption.ID).Return([]uuid.UUID{}, nil)
		assumptionRepo.On("DeleteForOrg", mock.Anything, testOrgID, assumption.ID).Return(nil)

		err := service.Delete(ctx, testOrgID, assumption.ID)

		assert.NoError(t, err)
		assumptionRepo.AssertExpectations(t)
	})

	t.Run("linked assumption cannot be deleted", func(t *testing.T) {
		service, assumptionRepo, _ := newAssumptionService()
		ctx := context.Background()

		assumption := createTestAssumption()

		assumptionRepo.On("FindByIDForOrg", mock.Anything, testOrgID, assumption.ID).Return(assumption, nil)
		assumptionRepo.On("LoadLinks", mock.Anything, assumption.ID).Return([]uuid.UUID{uuid.New()}, nil)

		err := service.Delete(ctx, testOrgID, assumption.ID)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "retire it instead")
	})
}

func TestAssumptionService_List(t *testing.T) {
	t.Run("due for review bypasses pagination", func(t *testing.T) {
		service, assumptionRepo, _ := newAssumptionService()
		ctx := context.Background()

		due := createTestAssumption()
		reviewBy := time.Now().AddDate(0, -1, 0)
		_ = due.SetReviewBy(reviewBy)
		due.ClearDomainEvents()

		assumptionRepo.On("FindDueForReview", mock.Anything, testOrgID, mock.AnythingOfType("time.Time")).
			Return([]register.Assumption{*due}, nil)

		result, total, err := service.List(ctx, testOrgID, AssumptionListFilter{DueForReview: true})

		assert.NoError(t, err)
		assert.Len(t, result, 1)
		assert.Equal(t, int64(1), total)
		assumptionRepo.AssertExpectations(t)
	})

	t.Run("status filter forwarded to repository", func(t *testing.T) {
		service, assumptionRepo, _ := newAssumptionService()
		ctx := context.Background()

		status := register.AssumptionStatusActive

		assumptionRepo.On("FindAllForOrg", mock.Anything, testOrgID, mock.MatchedBy(func(f shared.Filter) bool {
			return f.Filters["status"] == "active"
		})).Return([]register.Assumption{*createTestAssumption()}, nil)
		assumptionRepo.On("CountForOrg", mock.Anything, testOrgID, mock.Anything).Return(int64(1), nil)

		result, total, err := service.List(ctx, testOrgID, AssumptionListFilter{Status: &status})

		assert.NoError(t, err)
		assert.Len(t, result, 1)
		assert.Equal(t, int64(1), total)
	})
}
