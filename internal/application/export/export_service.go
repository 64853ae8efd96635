package export

import (
	"bytes"
	"context"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	auditapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/audit"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/export"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	exportinfra "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/export"
)

// TrailCSVStreamer streams the audit trail extract. The audit query service
// implements it.
type TrailCSVStreamer interface {
	WriteTrailCSV(ctx context.Context, organizationID uuid.UUID, filter auditapp.EntryListFilter, w io.Writer) error
}

// ExportService orchestrates export jobs. A job is created pending and runs
// to completion in the request: the output is rendered, stored, and the job
// marked completed with the file location. Failures land on the job row with
// the error message.
type ExportService struct {
	jobRepo        export.ExportJobRepository
	templateRepo   export.ReportTemplateRepository
	periodRepo     reporting.ReportingPeriodRepository
	sectionRepo    reporting.ReportSectionRepository
	dataPointRepo  reporting.DataPointRepository
	dataProvider   exportinfra.ReportDataProvider
	templateEngine *exportinfra.TemplateEngine
	renderer       exportinfra.PDFRenderer
	storage        exportinfra.FileStorage
	trailStreamer  TrailCSVStreamer
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewExportService creates a new export service
func NewExportService(
	jobRepo export.ExportJobRepository,
	templateRepo export.ReportTemplateRepository,
	periodRepo reporting.ReportingPeriodRepository,
	sectionRepo reporting.ReportSectionRepository,
	dataPointRepo reporting.DataPointRepository,
	dataProvider exportinfra.ReportDataProvider,
	templateEngine *exportinfra.TemplateEngine,
	renderer exportinfra.PDFRenderer,
	storage exportinfra.FileStorage,
	trailStreamer TrailCSVStreamer,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		jobRepo:        jobRepo,
		templateRepo:   templateRepo,
		periodRepo:     periodRepo,
		sectionRepo:    sectionRepo,
		dataPointRepo:  dataPointRepo,
		dataProvider:   dataProvider,
		templateEngine: templateEngine,
		renderer:       renderer,
		storage:        storage,
		trailStreamer:  trailStreamer,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *ExportService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create starts an export job and runs it to completion
func (s *ExportService) Create(ctx context.Context, organizationID uuid.UUID, req CreateExportRequest) (*JobResponse, error) {
	if _, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, req.PeriodID); err != nil {
		return nil, err
	}

	requestedBy := uuid.Nil
	if req.RequestedBy != nil {
		requestedBy = *req.RequestedBy
	}
	job, err := export.NewExportJob(organizationID, req.DocType, req.Format, req.PeriodID, requestedBy)
	if err != nil {
		return nil, err
	}
	if req.SectionID != nil {
		if err := job.SetSection(*req.SectionID); err != nil {
			return nil, err
		}
	}

	events := job.GetDomainEvents()
	job.ClearDomainEvents()
	if err := s.jobRepo.SaveWithEvents(ctx, job, events); err != nil {
		return nil, err
	}

	s.run(ctx, job, req.TemplateID)

	response := ToJobResponse(job)
	return &response, nil
}

// GetByID retrieves an export job
func (s *ExportService) GetByID(ctx context.Context, organizationID, jobID uuid.UUID) (*JobResponse, error) {
	job, err := s.jobRepo.FindByIDForOrg(ctx, organizationID, jobID)
	if err != nil {
		return nil, err
	}

	response := ToJobResponse(job)
	return &response, nil
}

// List retrieves export jobs matching the filter
func (s *ExportService) List(ctx context.Context, organizationID uuid.UUID, filter JobListFilter) (*shared.Paginated[JobResponse], error) {
	repoFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Filters:  map[string]interface{}{},
	}
	if filter.DocType != nil {
		repoFilter.Filters["doc_type"] = string(*filter.DocType)
	}
	if filter.Status != nil {
		repoFilter.Filters["status"] = string(*filter.Status)
	}

	var (
		jobs []export.ExportJob
		err  error
	)
	if filter.PeriodID != nil {
		jobs, err = s.jobRepo.FindByPeriod(ctx, organizationID, *filter.PeriodID, repoFilter)
	} else {
		jobs, err = s.jobRepo.FindAllForOrg(ctx, organizationID, repoFilter)
	}
	if err != nil {
		return nil, err
	}

	countFilter := repoFilter
	if filter.PeriodID != nil {
		countFilter.Filters["period_id"] = *filter.PeriodID
	}
	total, err := s.jobRepo.CountForOrg(ctx, organizationID, countFilter)
	if err != nil {
		return nil, err
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = len(jobs)
		if pageSize == 0 {
			pageSize = 1
		}
	}
	result := shared.NewPaginated(ToJobResponses(jobs), total, filter.Page, pageSize)
	return &result, nil
}

// Download opens the stored output file of a completed job
func (s *ExportService) Download(ctx context.Context, organizationID, jobID uuid.UUID) (io.ReadCloser, *JobResponse, error) {
	job, err := s.jobRepo.FindByIDForOrg(ctx, organizationID, jobID)
	if err != nil {
		return nil, nil, err
	}
	if !job.IsCompleted() || !job.HasFile() {
		return nil, nil, shared.NewDomainError("NOT_READY", "Export has not produced a file")
	}

	reader, err := s.storage.Get(ctx, job.FileURL)
	if err != nil {
		return nil, nil, err
	}

	response := ToJobResponse(job)
	return reader, &response, nil
}

// Delete removes a terminal export job and its stored file
func (s *ExportService) Delete(ctx context.Context, organizationID, jobID uuid.UUID) error {
	job, err := s.jobRepo.FindByIDForOrg(ctx, organizationID, jobID)
	if err != nil {
		return err
	}
	if !job.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Only finished export jobs can be deleted")
	}

	if job.HasFile() {
		if err := s.storage.Delete(ctx, job.FileURL); err != nil {
			s.logger.Warn("Failed to remove export file",
				zap.String("job_id", job.ID.String()),
				zap.Error(err))
		}
	}
	return s.jobRepo.DeleteForOrg(ctx, organizationID, jobID)
}

// run renders the job output and stores it
func (s *ExportService) run(ctx context.Context, job *export.ExportJob, templateID *uuid.UUID) {
	if err := job.StartRendering(); err != nil {
		s.failJob(ctx, job, err)
		return
	}
	if err := s.saveJob(ctx, job); err != nil {
		s.logger.Error("Failed to save rendering export job",
			zap.String("job_id", job.ID.String()), zap.Error(err))
		return
	}

	var (
		data      []byte
		extension string
		err       error
	)
	switch job.DocType {
	case export.DocTypePeriodReport:
		data, err = s.renderPeriodReport(ctx, job, templateID)
		extension = "pdf"
	case export.DocTypeDataPoints:
		data, err = s.buildDataPointCSV(ctx, job)
		extension = "csv"
	case export.DocTypeAuditTrail:
		data, err = s.buildAuditTrailCSV(ctx, job)
		extension = "csv"
	case export.DocTypeReconciliation:
		data, err = s.buildReconciliationCSV(ctx, job)
		extension = "csv"
	default:
		err = shared.NewDomainError("INVALID_DOC_TYPE", "Unknown export document type")
	}
	if err != nil {
		s.failJob(ctx, job, err)
		return
	}

	stored, err := s.storage.Store(ctx, &exportinfra.StoreRequest{
		OrganizationID: job.OrganizationID,
		JobID:          job.ID,
		Data:           data,
		Extension:      extension,
	})
	if err != nil {
		s.failJob(ctx, job, err)
		return
	}

	if err := job.Complete(stored.Path, stored.Size); err != nil {
		s.failJob(ctx, job, err)
		return
	}
	if err := s.saveJob(ctx, job); err != nil {
		s.logger.Error("Failed to save completed export job",
			zap.String("job_id", job.ID.String()), zap.Error(err))
		return
	}

	s.logger.Info("Export job completed",
		zap.String("job_id", job.ID.String()),
		zap.String("doc_type", job.DocType.String()),
		zap.Int64("file_size", stored.Size))
}

// renderPeriodReport renders the period report document through the HTML
// template and the PDF renderer
func (s *ExportService) renderPeriodReport(ctx context.Context, job *export.ExportJob, templateID *uuid.UUID) ([]byte, error) {
	template, err := s.resolveTemplate(ctx, job.OrganizationID, templateID)
	if err != nil {
		return nil, err
	}
	if err := job.SetTemplate(template.ID); err != nil {
		return nil, err
	}

	data, err := s.dataProvider.GetPeriodReportData(ctx, job.OrganizationID, job.PeriodID)
	if err != nil {
		return nil, err
	}

	html, err := s.templateEngine.Render(ctx, &exportinfra.RenderTemplateRequest{
		Template: template,
		Data:     data,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.renderer.Render(ctx, &exportinfra.RenderRequest{
		HTML:        html.HTML,
		PaperSize:   template.PaperSize,
		Orientation: template.Orientation,
		Margins:     template.Margins,
		Title:       data.Organization.Name + " " + data.Period.Label,
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}

// resolveTemplate picks the requested template or falls back to the default
func (s *ExportService) resolveTemplate(ctx context.Context, organizationID uuid.UUID, templateID *uuid.UUID) (*export.ReportTemplate, error) {
	if templateID != nil {
		template, err := s.templateRepo.FindByIDForOrg(ctx, organizationID, *templateID)
		if err != nil {
			return nil, err
		}
		if !template.CanBeUsed() {
			return nil, shared.NewDomainError("INVALID_STATE", "Template is not active")
		}
		return template, nil
	}

	template, err := s.templateRepo.FindDefaultForOrg(ctx, organizationID)
	if err != nil {
		return nil, shared.NewDomainError("NO_TEMPLATE", "No default report template is configured")
	}
	return template, nil
}

func (s *ExportService) buildDataPointCSV(ctx context.Context, job *export.ExportJob) ([]byte, error) {
	sections, err := s.sectionRepo.FindByPeriod(ctx, job.OrganizationID, job.PeriodID)
	if err != nil {
		return nil, err
	}
	sectionCodes := make(map[uuid.UUID]string, len(sections))
	for i := range sections {
		sectionCodes[sections[i].ID] = sections[i].Code
	}

	dataPoints, err := s.dataPointRepo.FindByPeriod(ctx, job.OrganizationID, job.PeriodID, shared.Filter{})
	if err != nil {
		return nil, err
	}

	rows := make([]exportinfra.DataPointCSVRow, 0, len(dataPoints))
	for i := range dataPoints {
		dp := &dataPoints[i]
		if job.SectionID != nil && dp.SectionID != *job.SectionID {
			continue
		}

		updatedBy := ""
		if dp.ValueUpdatedBy != nil {
			updatedBy = dp.ValueUpdatedBy.String()
		}
		rows = append(rows, exportinfra.DataPointCSVRow{
			SectionCode:  sectionCodes[dp.SectionID],
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
			UpdatedAt:    dp.ValueUpdatedAt,
			UpdatedBy:    updatedBy,
		})
	}

	var buf bytes.Buffer
	if err := exportinfra.WriteDataPointCSV(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ExportService) buildAuditTrailCSV(ctx context.Context, job *export.ExportJob) ([]byte, error) {
	if s.trailStreamer == nil {
		return nil, shared.NewDomainError("NOT_AVAILABLE", "Audit trail export is not configured")
	}

	period, err := s.periodRepo.FindByIDForOrg(ctx, job.OrganizationID, job.PeriodID)
	if err != nil {
		return nil, err
	}

	// The extract covers all activity since the period started collecting,
	// including sign-off actions after its end date
	var buf bytes.Buffer
	filter := auditapp.EntryListFilter{From: &period.CreatedAt}
	if err := s.trailStreamer.WriteTrailCSV(ctx, job.OrganizationID, filter, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ExportService) buildReconciliationCSV(ctx context.Context, job *export.ExportJob) ([]byte, error) {
	sections, err := s.sectionRepo.FindByPeriod(ctx, job.OrganizationID, job.PeriodID)
	if err != nil {
		return nil, err
	}
	sectionCodes := make(map[uuid.UUID]string, len(sections))
	for i := range sections {
		sectionCodes[sections[i].ID] = sections[i].Code
	}

	dataPoints, err := s.dataPointRepo.FindByPeriod(ctx, job.OrganizationID, job.PeriodID, shared.Filter{})
	if err != nil {
		return nil, err
	}

	rows := make([]exportinfra.ReconciliationCSVRow, 0, len(dataPoints))
	for i := range dataPoints {
		dp := &dataPoints[i]
		if dp.Kind != reporting.DataPointKindMetric {
			continue
		}
		rows = append(rows, exportinfra.ReconciliationCSVRow{
			SectionCode:   sectionCodes[dp.SectionID],
			Code:          dp.Code,
			Name:          dp.Name,
			UnitCode:      dp.UnitCode,
			BaselineValue: dp.BaselineValue,
			CurrentValue:  dp.NumericValue,
			TargetValue:   dp.TargetValue,
			Estimated:     dp.Estimated,
		})
	}

	var buf bytes.Buffer
	if err := exportinfra.WriteReconciliationCSV(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ExportService) failJob(ctx context.Context, job *export.ExportJob, cause error) {
	s.logger.Error("Export job failed",
		zap.String("job_id", job.ID.String()),
		zap.String("doc_type", job.DocType.String()),
		zap.Error(cause))

	if err := job.Fail(cause.Error()); err != nil {
		return
	}
	if err := s.saveJob(ctx, job); err != nil {
		s.logger.Error("Failed to persist export failure",
			zap.String("job_id", job.ID.String()), zap.Error(err))
	}
}

func (s *ExportService) saveJob(ctx context.Context, job *export.ExportJob) error {
	events := job.GetDomainEvents()
	job.ClearDomainEvents()
	return s.jobRepo.SaveWithLockAndEvents(ctx, job, events)
}
