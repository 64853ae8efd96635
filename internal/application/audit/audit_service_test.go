package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/audit"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// MockAuditEntryRepository is a mock implementation of audit.AuditEntryRepository
type MockAuditEntryRepository struct {
	mock.Mock
}

func (m *MockAuditEntryRepository) Save(ctx context.Context, entry *audit.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditEntryRepository) SaveBatch(ctx context.Context, entries []audit.AuditEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockAuditEntryRepository) ExistsByEventID(ctx context.Context, eventID uuid.UUID) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuditEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.AuditEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.AuditEntry), args.Error(1)
}

func (m *MockAuditEntryRepository) FindByIDForOrg(ctx context.Context, id, organizationID uuid.UUID) (*audit.AuditEntry, error) {
	args := m.Called(ctx, id, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.AuditEntry), args.Error(1)
}

func (m *MockAuditEntryRepository) FindForOrg(ctx context.Context, organizationID uuid.UUID, query audit.Query, filter shared.Filter) (*shared.Paginated[audit.AuditEntry], error) {
	args := m.Called(ctx, organizationID, query, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[audit.AuditEntry]), args.Error(1)
}

func (m *MockAuditEntryRepository) FindByAggregate(ctx context.Context, organizationID uuid.UUID, aggregateType string, aggregateID uuid.UUID) ([]audit.AuditEntry, error) {
	args := m.Called(ctx, organizationID, aggregateType, aggregateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.AuditEntry), args.Error(1)
}

func (m *MockAuditEntryRepository) FindValueHistory(ctx context.Context, organizationID, dataPointID uuid.UUID) ([]audit.AuditEntry, error) {
	args := m.Called(ctx, organizationID, dataPointID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.AuditEntry), args.Error(1)
}

func (m *MockAuditEntryRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, query audit.Query) (int64, error) {
	args := m.Called(ctx, organizationID, query)
	return args.Get(0).(int64), args.Error(1)
}

var testOrgID = uuid.New()

func newAuditService() (*AuditService, *MockAuditEntryRepository) {
	entryRepo := new(MockAuditEntryRepository)
	service := NewAuditService(entryRepo, zap.NewNop())
	return service, entryRepo
}

func createValueEntry(dataPointID uuid.UUID, actor *uuid.UUID, oldValue, newValue string, occurredAt time.Time) audit.AuditEntry {
	payload, _ := json.Marshal(map[string]string{
		"code":      "E1-6",
		"old_value": oldValue,
		"new_value": newValue,
	})
	entry, _ := audit.NewAuditEntry(testOrgID, uuid.New(), actor,
		"DataPoint", dataPointID, "datapoint.value_recorded", occurredAt, payload)
	return *entry
}

func TestAuditService_List(t *testing.T) {
	t.Run("filter narrows the query", func(t *testing.T) {
		service, entryRepo := newAuditService()
		ctx := context.Background()

		actor := uuid.New()
		entry := createValueEntry(uuid.New(), &actor, "1100", "1250.5", time.Now())
		paginated := shared.NewPaginated([]audit.AuditEntry{entry}, 1, 1, 20)

		entryRepo.On("FindForOrg", mock.Anything, testOrgID, mock.MatchedBy(func(q audit.Query) bool {
			return q.AggregateType == "DataPoint" && q.Action == "datapoint.value_recorded"
		}), mock.Anything).Return(&paginated, nil)

		result, err := service.List(ctx, testOrgID, EntryListFilter{
			Page:          1,
			PageSize:      20,
			AggregateType: "DataPoint",
			Action:        "datapoint.value_recorded",
		})

		assert.NoError(t, err)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, "datapoint.value_recorded", result.Items[0].Action)
		assert.False(t, result.Items[0].SystemAction)
		entryRepo.AssertExpectations(t)
	})
}

func TestAuditService_GetTimeline(t *testing.T) {
	t.Run("aggregate type is required", func(t *testing.T) {
		service, entryRepo := newAuditService()
		ctx := context.Background()

		result, err := service.GetTimeline(ctx, testOrgID, "", uuid.New())

		assert.Error(t, err)
		assert.Nil(t, result)
		entryRepo.AssertNotCalled(t, "FindByAggregate")
	})

	t.Run("entries returned oldest first", func(t *testing.T) {
		service, entryRepo := newAuditService()
		ctx := context.Background()

		sectionID := uuid.New()
		created, _ := audit.NewAuditEntry(testOrgID, uuid.New(), nil,
			"ReportSection", sectionID, "section.created", time.Now().Add(-time.Hour), nil)
		approved, _ := audit.NewAuditEntry(testOrgID, uuid.New(), nil,
			"ReportSection", sectionID, "section.approved", time.Now(), nil)

		entryRepo.On("FindByAggregate", mock.Anything, testOrgID, "ReportSection", sectionID).
			Return([]audit.AuditEntry{*created, *approved}, nil)

		result, err := service.GetTimeline(ctx, testOrgID, "ReportSection", sectionID)

		assert.NoError(t, err)
		assert.Len(t, result, 2)
		assert.Equal(t, "section.created", result[0].Action)
		assert.Equal(t, "section.approved", result[1].Action)
	})
}

func TestAuditService_GetValueHistory(t *testing.T) {
	t.Run("reconstructs the value timeline", func(t *testing.T) {
		service, entryRepo := newAuditService()
		ctx := context.Background()

		dataPointID := uuid.New()
		actor := uuid.New()
		first := createValueEntry(dataPointID, &actor, "", "1100", time.Now().Add(-2*time.Hour))
		second := createValueEntry(dataPointID, &actor, "1100", "1250.5", time.Now())

		entryRepo.On("FindValueHistory", mock.Anything, testOrgID, dataPointID).
			Return([]audit.AuditEntry{first, second}, nil)

		result, err := service.GetValueHistory(ctx, testOrgID, dataPointID)

		assert.NoError(t, err)
		assert.Equal(t, dataPointID, result.DataPointID)
		assert.Len(t, result.Entries, 2)
		assert.Equal(t, "1100", result.Entries[0].NewValue)
		assert.Equal(t, "1100", result.Entries[1].OldValue)
		assert.Equal(t, "1250.5", result.Entries[1].NewValue)
		assert.Equal(t, actor, *result.Entries[1].UpdatedBy)
	})

	t.Run("unreadable payloads are skipped", func(t *testing.T) {
		service, entryRepo := newAuditService()
		ctx := context.Background()

		dataPointID := uuid.New()
		broken, _ := audit.NewAuditEntry(testOrgID, uuid.New(), nil,
			"DataPoint", dataPointID, "datapoint.value_recorded", time.Now().Add(-time.Hour), []byte("not json"))
		good := createValueEntry(dataPointID, nil, "900", "950", time.Now())

		entryRepo.On("FindValueHistory", mock.Anything, testOrgID, dataPointID).
			Return([]audit.AuditEntry{*broken, good}, nil)

		result, err := service.GetValueHistory(ctx, testOrgID, dataPointID)

		assert.NoError(t, err)
		assert.Len(t, result.Entries, 1)
		assert.Equal(t, "950", result.Entries[0].NewValue)
	})
}

func TestAuditService_WriteTrailCSV(t *testing.T) {
	t.Run("streams matching entries as CSV", func(t *testing.T) {
		service, entryRepo := newAuditService()
		ctx := context.Background()

		actor := uuid.New()
		entry := createValueEntry(uuid.New(), &actor, "1100", "1250.5", time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))
		systemEntry, _ := audit.NewAuditEntry(testOrgID, uuid.New(), nil,
			"ReportingPeriod", uuid.New(), "period.closed", time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC), nil)
		paginated := shared.NewPaginated([]audit.AuditEntry{entry, *systemEntry}, 2, 1, csvExportCap)

		entryRepo.On("FindForOrg", mock.Anything, testOrgID, mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
			return f.PageSize == csvExportCap
		})).Return(&paginated, nil)

		var buf bytes.Buffer
		err := service.WriteTrailCSV(ctx, testOrgID, EntryListFilter{}, &buf)
		require.NoError(t, err)

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)

		assert.Equal(t, "occurred_at", records[0][0])
		assert.Equal(t, actor.String(), records[1][1])
		assert.Equal(t, "E1-6", records[1][6])
		assert.Equal(t, "1250.5", records[1][8])
		assert.Equal(t, "system", records[2][1])
	})
}
