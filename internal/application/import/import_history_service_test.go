package importapp

import (
	"context"
	"testing"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/bulk"
	csvimport "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/import"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockImportHistoryRepository is a mock implementation of ImportHistoryRepository
type MockImportHistoryRepository struct {
	mock.Mock
}

func (m *MockImportHistoryRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*bulk.ImportHistory, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bulk.ImportHistory), args.Error(1)
}

func (m *MockImportHistoryRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter bulk.ImportHistoryFilter, page, pageSize int) (*bulk.ImportHistoryListResult, error) {
	args := m.Called(ctx, organizationID, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bulk.ImportHistoryListResult), args.Error(1)
}

func (m *MockImportHistoryRepository) FindByStatusForOrg(ctx context.Context, organizationID uuid.UUID, status bulk.ImportStatus) ([]*bulk.ImportHistory, error) {
	args := m.Called(ctx, organizationID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bulk.ImportHistory), args.Error(1)
}

func (m *MockImportHistoryRepository) FindUnfinishedForOrg(ctx context.Context, organizationID uuid.UUID) ([]*bulk.ImportHistory, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bulk.ImportHistory), args.Error(1)
}

func (m *MockImportHistoryRepository) Save(ctx context.Context, history *bulk.ImportHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockImportHistoryRepository) DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

func TestImportHistoryService_CreateHistory(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		repo.On("Save", ctx, mock.AnythingOfType("*bulk.ImportHistory")).Return(nil)

		periodID := uuid.New()
		history, err := service.CreateHistory(
			ctx,
			orgID,
			bulk.ImportEntityDataPoints,
			"data_points.csv",
			1024,
			userID,
			&periodID,
		)

		require.NoError(t, err)
		assert.NotNil(t, history)
		assert.Equal(t, bulk.ImportEntityDataPoints, history.EntityType)
		assert.Equal(t, "data_points.csv", history.FileName)
		assert.Equal(t, bulk.ImportStatusPending, history.Status)
		require.NotNil(t, history.PeriodID)
		assert.Equal(t, periodID, *history.PeriodID)
		repo.AssertExpectations(t)
	})

	t.Run("invalid entity type", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		_, err := service.CreateHistory(
			ctx,
			orgID,
			bulk.ImportEntityType("invalid"),
			"data_points.csv",
			1024,
			userID,
			nil,
		)

		require.Error(t, err)
		repo.AssertNotCalled(t, "Save")
	})
}

func TestImportHistoryService_StartProcessing(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		history := createTestHistoryEntity(orgID, userID)

		repo.On("FindByIDForOrg", ctx, orgID, history.ID).Return(history, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*bulk.ImportHistory")).Return(nil)

		err := service.StartProcessing(ctx, orgID, history.ID, 100)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestImportHistoryService_CompleteImport(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		history := createTestHistoryEntity(orgID, userID)
		_ = history.StartProcessing(100)

		repo.On("FindByIDForOrg", ctx, orgID, history.ID).Return(history, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*bulk.ImportHistory")).Return(nil)

		errors := []csvimport.RowError{
			{Row: 1, Column: "value", Code: "ERR_REQUIRED", Message: "Field is required"},
		}

		err := service.CompleteImport(ctx, orgID, history.ID, 95, 5, 0, errors)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestImportHistoryService_FailImport(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		history := createTestHistoryEntity(orgID, userID)

		repo.On("FindByIDForOrg", ctx, orgID, history.ID).Return(history, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*bulk.ImportHistory")).Return(nil)

		errors := []csvimport.RowError{
			{Row: 0, Code: "ERR_FILE", Message: "Invalid file format"},
		}

		err := service.FailImport(ctx, orgID, history.ID, errors)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestImportHistoryService_CancelImport(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		history := createTestHistoryEntity(orgID, userID)

		repo.On("FindByIDForOrg", ctx, orgID, history.ID).Return(history, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*bulk.ImportHistory")).Return(nil)

		err := service.CancelImport(ctx, orgID, history.ID)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestImportHistoryService_ListHistory(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	userID := uuid.New()

	t.Run("success with filters", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		history := createTestHistoryEntity(orgID, userID)
		result := &bulk.ImportHistoryListResult{
			Items:      []*bulk.ImportHistory{history},
			TotalCount: 1,
			Page:       1,
			PageSize:   20,
		}

		repo.On("FindAllForOrg", ctx, orgID, mock.MatchedBy(func(f bulk.ImportHistoryFilter) bool {
			return f.EntityType != nil && *f.EntityType == bulk.ImportEntityDataPoints &&
				f.Status != nil && *f.Status == bulk.ImportStatusCompleted
		}), 1, 20).Return(result, nil)

		filter := ListHistoryFilter{
			EntityType: "data_points",
			Status:     "completed",
		}

		res, err := service.ListHistory(ctx, orgID, filter, 1, 20)

		require.NoError(t, err)
		assert.Equal(t, int64(1), res.TotalCount)
		assert.Len(t, res.Items, 1)
		repo.AssertExpectations(t)
	})

	t.Run("with date filters", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		result := &bulk.ImportHistoryListResult{
			Items:      []*bulk.ImportHistory{},
			TotalCount: 0,
			Page:       1,
			PageSize:   20,
		}

		repo.On("FindAllForOrg", ctx, orgID, mock.AnythingOfType("bulk.ImportHistoryFilter"), 1, 20).Return(result, nil)

		startFrom := time.Now().Add(-24 * time.Hour)
		startTo := time.Now()
		filter := ListHistoryFilter{
			StartedFrom: &startFrom,
			StartedTo:   &startTo,
		}

		res, err := service.ListHistory(ctx, orgID, filter, 1, 20)

		require.NoError(t, err)
		assert.NotNil(t, res)
		repo.AssertExpectations(t)
	})
}

func TestImportHistoryService_GetErrorsCSV(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		history := createTestHistoryEntity(orgID, userID)
		_ = history.StartProcessing(100)
		errors := []bulk.ImportErrorDetail{
			{Row: 1, Column: "code", Code: "ERR_REQUIRED", Message: "Field is required"},
			{Row: 2, Column: "value", Code: "ERR_TYPE", Message: "Invalid number", Value: "abc"},
		}
		_ = history.Complete(98, 2, 0, errors)

		repo.On("FindByIDForOrg", ctx, orgID, history.ID).Return(history, nil)

		csv, fileName, err := service.GetErrorsCSV(ctx, orgID, history.ID)

		require.NoError(t, err)
		assert.Contains(t, csv, "Row,Column,Error Code,Error Message,Value")
		assert.Contains(t, csv, "1,code,ERR_REQUIRED,Field is required")
		assert.Contains(t, csv, "2,value,ERR_TYPE,Invalid number,abc")
		assert.Contains(t, fileName, "import_errors_data_points_")
		repo.AssertExpectations(t)
	})

	t.Run("no errors to export", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		history := createTestHistoryEntity(orgID, userID)
		_ = history.StartProcessing(100)
		_ = history.Complete(100, 0, 0, nil)

		repo.On("FindByIDForOrg", ctx, orgID, history.ID).Return(history, nil)

		_, _, err := service.GetErrorsCSV(ctx, orgID, history.ID)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no errors to export")
		repo.AssertExpectations(t)
	})

	t.Run("csv escaping", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		history := createTestHistoryEntity(orgID, userID)
		_ = history.StartProcessing(100)
		errors := []bulk.ImportErrorDetail{
			{Row: 1, Column: "value", Code: "ERR", Message: "Message with \"quotes\" and,comma", Value: "value\nnewline"},
		}
		_ = history.Complete(99, 1, 0, errors)

		repo.On("FindByIDForOrg", ctx, orgID, history.ID).Return(history, nil)

		csv, _, err := service.GetErrorsCSV(ctx, orgID, history.ID)

		require.NoError(t, err)
		assert.Contains(t, csv, "\"Message with \"\"quotes\"\" and,comma\"")
		repo.AssertExpectations(t)
	})
}

func TestEscapeCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"simple", "hello", "hello"},
		{"with comma", "hello,world", "\"hello,world\""},
		{"with newline", "hello\nworld", "\"hello\nworld\""},
		{"with quotes", "say \"hello\"", "\"say \"\"hello\"\"\""},
		{"with all", "say \"hello\",\nworld", "\"say \"\"hello\"\",\nworld\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := escapeCSV(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func createTestHistoryEntity(orgID, userID uuid.UUID) *bulk.ImportHistory {
	history, _ := bulk.NewImportHistory(
		orgID,
		bulk.ImportEntityDataPoints,
		"test.csv",
		1024,
		userID,
	)
	return history
}
