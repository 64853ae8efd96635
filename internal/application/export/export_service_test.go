package export

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	auditapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/audit"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/export"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	exportinfra "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/export"
)

// MockExportJobRepository is a mock implementation of export.ExportJobRepository
type MockExportJobRepository struct {
	mock.Mock
}

func (m *MockExportJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*export.ExportJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*export.ExportJob), args.Error(1)
}

func (m *MockExportJobRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*export.ExportJob, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*export.ExportJob), args.Error(1)
}

func (m *MockExportJobRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]export.ExportJob, error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]export.ExportJob), args.Error(1)
}

func (m *MockExportJobRepository) FindByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, filter shared.Filter) ([]export.ExportJob, error) {
	args := m.Called(ctx, organizationID, periodID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]export.ExportJob), args.Error(1)
}

func (m *MockExportJobRepository) Save(ctx context.Context, j *export.ExportJob) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockExportJobRepository) SaveWithEvents(ctx context.Context, j *export.ExportJob, events []shared.DomainEvent) error {
	args := m.Called(ctx, j, events)
	return args.Error(0)
}

func (m *MockExportJobRepository) SaveWithLockAndEvents(ctx context.Context, j *export.ExportJob, events []shared.DomainEvent) error {
	args := m.Called(ctx, j, events)
	return args.Error(0)
}

func (m *MockExportJobRepository) DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

func (m *MockExportJobRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, organizationID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockReportTemplateRepository is a mock implementation of export.ReportTemplateRepository
type MockReportTemplateRepository struct {
	mock.Mock
}

func (m *MockReportTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*export.ReportTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*export.ReportTemplate), args.Error(1)
}

func (m *MockReportTemplateRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*export.ReportTemplate, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*export.ReportTemplate), args.Error(1)
}

func (m *MockReportTemplateRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]export.ReportTemplate, error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]export.ReportTemplate), args.Error(1)
}

func (m *MockReportTemplateRepository) FindDefaultForOrg(ctx context.Context, organizationID uuid.UUID) (*export.ReportTemplate, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*export.ReportTemplate), args.Error(1)
}

func (m *MockReportTemplateRepository) Save(ctx context.Context, t *export.ReportTemplate) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockReportTemplateRepository) SaveWithEvents(ctx context.Context, t *export.ReportTemplate, events []shared.DomainEvent) error {
	args := m.Called(ctx, t, events)
	return args.Error(0)
}

func (m *MockReportTemplateRepository) SaveWithLockAndEvents(ctx context.Context, t *export.ReportTemplate, events []shared.DomainEvent) error {
	args := m.Called(ctx, t, events)
	return args.Error(0)
}

func (m *MockReportTemplateRepository) ClearDefaultForOrg(ctx context.Context, organizationID uuid.UUID) error {
	args := m.Called(ctx, organizationID)
	return args.Error(0)
}

func (m *MockReportTemplateRepository) DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

func (m *MockReportTemplateRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, organizationID, filter)
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

// MockDataPointRepository is a mock implementation of reporting.DataPointRepository
type MockDataPointRepository struct {
	mock.Mock
}

func (m *MockDataPointRepository) FindByID(ctx context.Context, id uuid.UUID) (*reporting.DataPoint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.DataPoint), args.Error(1)
}

func (m *MockDataPointRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*reporting.DataPoint, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.DataPoint), args.Error(1)
}

func (m *MockDataPointRepository) FindByCode(ctx context.Context, organizationID, periodID uuid.UUID, code string) (*reporting.DataPoint, error) {
	args := m.Called(ctx, organizationID, periodID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.DataPoint), args.Error(1)
}

func (m *MockDataPointRepository) FindBySection(ctx context.Context, organizationID, sectionID uuid.UUID) ([]reporting.DataPoint, error) {
	args := m.Called(ctx, organizationID, sectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reporting.DataPoint), args.Error(1)
}

func (m *MockDataPointRepository) FindByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, filter shared.Filter) ([]reporting.DataPoint, error) {
	args := m.Called(ctx, organizationID, periodID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reporting.DataPoint), args.Error(1)
}

func (m *MockDataPointRepository) FindByOwner(ctx context.Context, organizationID, periodID, ownerUserID uuid.UUID) ([]reporting.DataPoint, error) {
	args := m.Called(ctx, organizationID, periodID, ownerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reporting.DataPoint), args.Error(1)
}

func (m *MockDataPointRepository) FindByStatus(ctx context.Context, organizationID, periodID uuid.UUID, status reporting.DataPointStatus, filter shared.Filter) ([]reporting.DataPoint, error) {
	args := m.Called(ctx, organizationID, periodID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reporting.DataPoint), args.Error(1)
}

func (m *MockDataPointRepository) FindMandatoryIncomplete(ctx context.Context, organizationID, periodID uuid.UUID) ([]reporting.DataPoint, error) {
	args := m.Called(ctx, organizationID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reporting.DataPoint), args.Error(1)
}

func (m *MockDataPointRepository) FindEstimatedByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) ([]reporting.DataPoint, error) {
	args := m.Called(ctx, organizationID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reporting.DataPoint), args.Error(1)
}

func (m *MockDataPointRepository) Save(ctx context.Context, dp *reporting.DataPoint) error {
	args := m.Called(ctx, dp)
	return args.Error(0)
}

func (m *MockDataPointRepository) SaveWithEvents(ctx context.Context, dp *reporting.DataPoint, events []shared.DomainEvent) error {
	args := m.Called(ctx, dp, events)
	return args.Error(0)
}

func (m *MockDataPointRepository) SaveWithLock(ctx context.Context, dp *reporting.DataPoint) error {
	args := m.Called(ctx, dp)
	return args.Error(0)
}

func (m *MockDataPointRepository) SaveWithLockAndEvents(ctx context.Context, dp *reporting.DataPoint, events []shared.DomainEvent) error {
	args := m.Called(ctx, dp, events)
	return args.Error(0)
}

func (m *MockDataPointRepository) SaveAll(ctx context.Context, dps []*reporting.DataPoint) error {
	args := m.Called(ctx, dps)
	return args.Error(0)
}

func (m *MockDataPointRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDataPointRepository) DeleteForOrg(ctx context.Context, organizationID, id uuid.UUID) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

func (m *MockDataPointRepository) CountBySection(ctx context.Context, organizationID, sectionID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID, sectionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDataPointRepository) CountByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, organizationID, periodID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDataPointRepository) CountByStatusForSection(ctx context.Context, organizationID, sectionID uuid.UUID, status reporting.DataPointStatus) (int64, error) {
	args := m.Called(ctx, organizationID, sectionID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDataPointRepository) CountWithValueBySection(ctx context.Context, organizationID, sectionID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID, sectionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDataPointRepository) CountMandatoryByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID, periodID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDataPointRepository) CountMandatoryCompleteByPeriod(ctx context.Context, organizationID, periodID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID, periodID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDataPointRepository) ExistsByCode(ctx context.Context, organizationID, periodID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, organizationID, periodID, code)
	return args.Bool(0), args.Error(1)
}

// MockReportDataProvider is a mock implementation of exportinfra.ReportDataProvider
type MockReportDataProvider struct {
	mock.Mock
}

func (m *MockReportDataProvider) GetPeriodReportData(ctx context.Context, organizationID, periodID uuid.UUID) (*exportinfra.ReportData, error) {
	args := m.Called(ctx, organizationID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exportinfra.ReportData), args.Error(1)
}

// MockPDFRenderer is a mock implementation of exportinfra.PDFRenderer
type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) Render(ctx context.Context, req *exportinfra.RenderRequest) (*exportinfra.RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exportinfra.RenderResult), args.Error(1)
}

func (m *MockPDFRenderer) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockFileStorage is a mock implementation of exportinfra.FileStorage
type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) Store(ctx context.Context, req *exportinfra.StoreRequest) (*exportinfra.StoreResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exportinfra.StoreResult), args.Error(1)
}

func (m *MockFileStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockFileStorage) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockFileStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	args := m.Called(ctx, age)
	return args.Int(0), args.Error(1)
}

func (m *MockFileStorage) GetURL(path string) string {
	args := m.Called(path)
	return args.String(0)
}

// MockTrailStreamer is a mock implementation of TrailCSVStreamer
type MockTrailStreamer struct {
	mock.Mock
}

func (m *MockTrailStreamer) WriteTrailCSV(ctx context.Context, organizationID uuid.UUID, filter auditapp.EntryListFilter, w io.Writer) error {
	args := m.Called(ctx, organizationID, filter, w)
	return args.Error(0)
}

// Test helpers

var testOrgID = uuid.New()

type exportMocks struct {
	jobRepo      *MockExportJobRepository
	templateRepo *MockReportTemplateRepository
	periodRepo   *MockReportingPeriodRepository
	sectionRepo  *MockReportSectionRepository
	dpRepo       *MockDataPointRepository
	dataProvider *MockReportDataProvider
	renderer     *MockPDFRenderer
	storage      *MockFileStorage
	trail        *MockTrailStreamer
}

func newExportService() (*ExportService, *exportMocks) {
	m := &exportMocks{
		jobRepo:      new(MockExportJobRepository),
		templateRepo: new(MockReportTemplateRepository),
		periodRepo:   new(MockReportingPeriodRepository),
		sectionRepo:  new(MockReportSectionRepository),
		dpRepo:       new(MockDataPointRepository),
		dataProvider: new(MockReportDataProvider),
		renderer:     new(MockPDFRenderer),
		storage:      new(MockFileStorage),
		trail:        new(MockTrailStreamer),
	}
	service := NewExportService(
		m.jobRepo, m.templateRepo, m.periodRepo, m.sectionRepo, m.dpRepo,
		m.dataProvider, exportinfra.NewTemplateEngine(), m.renderer, m.storage,
		m.trail, zap.NewNop())
	return service, m
}

func createReportingPeriod() *reporting.ReportingPeriod {
	period, _ := reporting.NewReportingPeriod(testOrgID, "FY2025",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	period.ClearDomainEvents()
	return period
}

func createDefaultTemplate() *export.ReportTemplate {
	template, _ := export.NewReportTemplate(testOrgID, "Standard ESRS report",
		"<h1>{{.Organization.Name}} {{.Period.Label}}</h1>", export.PaperSizeA4)
	_ = template.SetAsDefault()
	template.ClearDomainEvents()
	return template
}

func createCompletedJob(periodID uuid.UUID) *export.ExportJob {
	job, _ := export.NewExportJob(testOrgID, export.DocTypeDataPoints, export.FormatCSV, periodID, uuid.Nil)
	_ = job.StartRendering()
	_ = job.Complete("exports/"+testOrgID.String()+"/"+job.ID.String()+".csv", 2048)
	job.ClearDomainEvents()
	return job
}

func TestExportService_Create(t *testing.T) {
	t.Run("data point extract completes", func(t *testing.T) {
		service, m := newExportService()
		ctx := context.Background()

		period := createReportingPeriod()
		section, _ := reporting.NewReportSection(testOrgID, period.ID, "E1", "Climate change")
		dp, _ := reporting.NewMetricDataPoint(testOrgID, period.ID, section.ID, "E1-6", "Gross Scope 1 emissions", "tCO2e")
		_ = dp.RecordNumericValue(decimal.NewFromFloat(1250.5), uuid.New())
		dp.ClearDomainEvents()

		m.periodRepo.On("FindByIDForOrg", mock.Anything, testOrgID, period.ID).Return(period, nil)
		m.jobRepo.On("SaveWithEvents", mock.Anything, mock.AnythingOfType("*export.ExportJob"), mock.Anything).Return(nil)
		m.jobRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*export.ExportJob"), mock.Anything).Return(nil)
		m.sectionRepo.On("FindByPeriod", mock.Anything, testOrgID, period.ID).Return([]reporting.ReportSection{*section}, nil)
		m.dpRepo.On("FindByPeriod", mock.Anything, testOrgID, period.ID, mock.Anything).Return([]reporting.DataPoint{*dp}, nil)
		m.storage.On("Store", mock.Anything, mock.MatchedBy(func(req *exportinfra.StoreRequest) bool {
			return req.Extension == "csv" && strings.Contains(string(req.Data), "E1-6")
		})).Return(&exportinfra.StoreResult{Path: "exports/file.csv", Size: 512}, nil)

		result, err := service.Create(ctx, testOrgID, CreateExportRequest{
			DocType:  export.DocTypeDataPoints,
			Format:   export.FormatCSV,
			PeriodID: period.ID,
		})

		assert.NoError(t, err)
		assert.Equal(t, "COMPLETED", result.Status)
		assert.Equal(t, "exports/file.csv", result.FileURL)
		assert.Equal(t, int64(512), result.FileSize)
		m.storage.AssertExpectations(t)
	})

	t.Run("period report renders through the default template", func(t *testing.T) {
		service, m := newExportService()
		ctx := context.Background()

		period := createReportingPeriod()
		template := createDefaultTemplate()

		m.periodRepo.On("FindByIDForOrg", mock.Anything, testOrgID, period.ID).Return(period, nil)
		m.jobRepo.On("SaveWithEvents", mock.Anything, mock.AnythingOfType("*export.ExportJob"), mock.Anything).Return(nil)
		m.jobRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*export.ExportJob"), mock.Anything).Return(nil)
		m.templateRepo.On("FindDefaultForOrg", mock.Anything, testOrgID).Return(template, nil)
		m.dataProvider.On("GetPeriodReportData", mock.Anything, testOrgID, period.ID).Return(&exportinfra.ReportData{
			Organization: exportinfra.OrganizationInfo{Name: "Acme Industries"},
			Period:       exportinfra.PeriodInfo{Label: "FY2025"},
		}, nil)
		m.renderer.On("Render", mock.Anything, mock.MatchedBy(func(req *exportinfra.RenderRequest) bool {
			return strings.Contains(req.HTML, "Acme Industries FY2025") && req.Title == "Acme Industries FY2025"
		})).Return(&exportinfra.RenderResult{PDFData: []byte("%PDF-1.7"), PageCount: 4}, nil)
		m.storage.On("Store", mock.Anything, mock.MatchedBy(func(req *exportinfra.StoreRequest) bool {
			return req.Extension == "pdf"
		})).Return(&exportinfra.StoreResult{Path: "exports/report.pdf", Size: 8}, nil)

		result, err := service.Create(ctx, testOrgID, CreateExportRequest{
			DocType:  export.DocTypePeriodReport,
			Format:   export.FormatPDF,
			PeriodID: period.ID,
		})

		assert.NoError(t, err)
		assert.Equal(t, "COMPLETED", result.Status)
		assert.Equal(t, template.ID, *result.TemplateID)
		m.renderer.AssertExpectations(t)
	})

	t.Run("period report requires PDF format", func(t *testing.T) {
		service, m := newExportService()
		ctx := context.Background()

		period := createReportingPeriod()

		m.periodRepo.On("FindByIDForOrg", mock.Anything, testOrgID, period.ID).Return(period, nil)

		result, err := service.Create(ctx, testOrgID, CreateExportRequest{
			DocType:  export.DocTypePeriodReport,
			Format:   export.FormatCSV,
			PeriodID: period.ID,
		})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "cannot be exported")
		m.jobRepo.AssertNotCalled(t, "SaveWithEvents")
	})

	t.Run("renderer failure lands on the job", func(t *testing.T) {
		service, m := newExportService()
		ctx := context.Background()

		period := createReportingPeriod()
		template := createDefaultTemplate()

		m.periodRepo.On("FindByIDForOrg", mock.Anything, testOrgID, period.ID).Return(period, nil)
		m.jobRepo.On("SaveWithEvents", mock.Anything, mock.AnythingOfType("*export.ExportJob"), mock.Anything).Return(nil)
		m.jobRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*export.ExportJob"), mock.Anything).Return(nil)
		m.templateRepo.On("FindDefaultForOrg", mock.Anything, testOrgID).Return(template, nil)
		m.dataProvider.On("GetPeriodReportData", mock.Anything, testOrgID, period.ID).Return(&exportinfra.ReportData{
			Organization: exportinfra.OrganizationInfo{Name: "Acme Industries"},
			Period:       exportinfra.PeriodInfo{Label: "FY2025"},
		}, nil)
		m.renderer.On("Render", mock.Anything, mock.Anything).Return(nil, errors.New("browser target crashed"))

		result, err := service.Create(ctx, testOrgID, CreateExportRequest{
			DocType:  export.DocTypePeriodReport,
			Format:   export.FormatPDF,
			PeriodID: period.ID,
		})

		assert.NoError(t, err)
		assert.Equal(t, "FAILED", result.Status)
		assert.Contains(t, result.ErrorMessage, "browser target crashed")
		m.storage.AssertNotCalled(t, "Store")
	})

	t.Run("audit trail extract covers the period activity", func(t *testing.T) {
		service, m := newExportService()
		ctx := context.Background()

		period := createReportingPeriod()

		m.periodRepo.On("FindByIDForOrg", mock.Anything, testOrgID, period.ID).Return(period, nil)
		m.jobRepo.On("SaveWithEvents", mock.Anything, mock.AnythingOfType("*export.ExportJob"), mock.Anything).Return(nil)
		m.jobRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*export.ExportJob"), mock.Anything).Return(nil)
		m.trail.On("WriteTrailCSV", mock.Anything, testOrgID, mock.MatchedBy(func(filter auditapp.EntryListFilter) bool {
			return filter.From != nil && filter.From.Equal(period.CreatedAt)
		}), mock.Anything).Run(func(args mock.Arguments) {
			w := args.Get(3).(io.Writer)
			_, _ = w.Write([]byte("occurred_at,actor\n"))
		}).Return(nil)
		m.storage.On("Store", mock.Anything, mock.MatchedBy(func(req *exportinfra.StoreRequest) bool {
			return req.Extension == "csv" && strings.HasPrefix(string(req.Data), "occurred_at")
		})).Return(&exportinfra.StoreResult{Path: "exports/trail.csv", Size: 18}, nil)

		result, err := service.Create(ctx, testOrgID, CreateExportRequest{
			DocType:  export.DocTypeAuditTrail,
			Format:   export.FormatCSV,
			PeriodID: period.ID,
		})

		assert.NoError(t, err)
		assert.Equal(t, "COMPLETED", result.Status)
		m.trail.AssertExpectations(t)
	})
}

func TestExportService_Download(t *testing.T) {
	t.Run("completed job streams the stored file", func(t *testing.T) {
		service, m := newExportService()
		ctx := context.Background()

		job := createCompletedJob(uuid.New())

		m.jobRepo.On("FindByIDForOrg", mock.Anything, testOrgID, job.ID).Return(job, nil)
		m.storage.On("Get", mock.Anything, job.FileURL).Return(io.NopCloser(strings.NewReader("section_code,code")), nil)

		reader, response, err := service.Download(ctx, testOrgID, job.ID)

		assert.NoError(t, err)
		assert.Equal(t, job.ID, response.ID)
		content, _ := io.ReadAll(reader)
		_ = reader.Close()
		assert.Equal(t, "section_code,code", string(content))
	})

	t.Run("pending job has no file", func(t *testing.T) {
		service, m := newExportService()
		ctx := context.Background()

		job, _ := export.NewExportJob(testOrgID, export.DocTypeDataPoints, export.FormatCSV, uuid.New(), uuid.Nil)
		job.ClearDomainEvents()

		m.jobRepo.On("FindByIDForOrg", mock.Anything, testOrgID, job.ID).Return(job, nil)

		reader, response, err := service.Download(ctx, testOrgID, job.ID)

		assert.Error(t, err)
		assert.Nil(t, reader)
		assert.Nil(t, response)
		assert.Contains(t, err.Error(), "not produced a file")
	})
}

func TestExportService_Delete(t *testing.T) {
	t.Run("running job cannot be deleted", func(t *testing.T) {
		service, m := newExportService()
		ctx := context.Background()

		job, _ := export.NewExportJob(testOrgID, export.DocTypeDataPoints, export.FormatCSV, uuid.New(), uuid.Nil)
		_ = job.StartRendering()
		job.ClearDomainEvents()

		m.jobRepo.On("FindByIDForOrg", mock.Anything, testOrgID, job.ID).Return(job, nil)

		err := service.Delete(ctx, testOrgID, job.ID)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "finished export jobs")
		m.jobRepo.AssertNotCalled(t, "DeleteForOrg")
	})

	t.Run("completed job removes the stored file", func(t *testing.T) {
		service, m := newExportService()
		ctx := context.Background()

		job := createCompletedJob(uuid.New())

		m.jobRepo.On("FindByIDForOrg", mock.Anything, testOrgID, job.ID).Return(job, nil)
		m.storage.On("Delete", mock.Anything, job.FileURL).Return(nil)
		m.jobRepo.On("DeleteForOrg", mock.Anything, testOrgID, job.ID).Return(nil)

		err := service.Delete(ctx, testOrgID, job.ID)

		assert.NoError(t, err)
		m.storage.AssertExpectations(t)
		m.jobRepo.AssertExpectations(t)
	})
}
