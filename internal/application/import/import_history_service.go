package importapp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/bulk"
	csvimport "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/import"
	"github.com/google/uuid"
)

// ImportHistoryService manages import history tracking and retrieval
type ImportHistoryService struct {
	historyRepo bulk.ImportHistoryRepository
}

// NewImportHistoryService creates a new ImportHistoryService
func NewImportHistoryService(historyRepo bulk.ImportHistoryRepository) *ImportHistoryService {
	return &ImportHistoryService{
		historyRepo: historyRepo,
	}
}

// CreateHistory creates a new import history record
func (s *ImportHistoryService) CreateHistory(
	ctx context.Context,
	organizationID uuid.UUID,
	entityType bulk.ImportEntityType,
	fileName string,
	fileSize int64,
	importedBy uuid.UUID,
	periodID *uuid.UUID,
) (*bulk.ImportHistory, error) {
	history, err := bulk.NewImportHistory(
		organizationID,
		entityType,
		fileName,
		fileSize,
		importedBy,
	)
	if err != nil {
		return nil, err
	}
	if periodID != nil {
		history.SetPeriod(*periodID)
	}

	if err := s.historyRepo.Save(ctx, history); err != nil {
		return nil, fmt.Errorf("failed to save import history: %w", err)
	}

	return history, nil
}

// StartProcessing marks an import as started
func (s *ImportHistoryService) StartProcessing(
	ctx context.Context,
	organizationID uuid.UUID,
	historyID uuid.UUID,
	totalRows int,
) error {
	history, err := s.historyRepo.FindByIDForOrg(ctx, organizationID, historyID)
	if err != nil {
		return err
	}

	if err := history.StartProcessing(totalRows); err != nil {
		return err
	}

	return s.historyRepo.Save(ctx, history)
}

// CompleteImport marks an import as finished with its row counts
func (s *ImportHistoryService) CompleteImport(
	ctx context.Context,
	organizationID uuid.UUID,
	historyID uuid.UUID,
	appliedRows, errorRows, skippedRows int,
	errors []csvimport.RowError,
) error {
	history, err := s.historyRepo.FindByIDForOrg(ctx, organizationID, historyID)
	if err != nil {
		return err
	}

	if err := history.Complete(appliedRows, errorRows, skippedRows, toErrorDetails(errors)); err != nil {
		return err
	}

	return s.historyRepo.Save(ctx, history)
}

// FailImport marks an import as failed
func (s *ImportHistoryService) FailImport(
	ctx context.Context,
	organizationID uuid.UUID,
	historyID uuid.UUID,
	errors []csvimport.RowError,
) error {
	history, err := s.historyRepo.FindByIDForOrg(ctx, organizationID, historyID)
	if err != nil {
		return err
	}

	if err := history.Fail(toErrorDetails(errors)); err != nil {
		return err
	}

	return s.historyRepo.Save(ctx, history)
}

// CancelImport marks an import as cancelled
func (s *ImportHistoryService) CancelImport(
	ctx context.Context,
	organizationID uuid.UUID,
	historyID uuid.UUID,
) error {
	history, err := s.historyRepo.FindByIDForOrg(ctx, organizationID, historyID)
	if err != nil {
		return err
	}

	if err := history.Cancel(); err != nil {
		return err
	}

	return s.historyRepo.Save(ctx, history)
}

// GetHistory retrieves a specific import history by ID
func (s *ImportHistoryService) GetHistory(
	ctx context.Context,
	organizationID, historyID uuid.UUID,
) (*bulk.ImportHistory, error) {
	return s.historyRepo.FindByIDForOrg(ctx, organizationID, historyID)
}

// ListHistoryFilter defines the filter options for listing import histories
type ListHistoryFilter struct {
	EntityType  string     // Filter by entity type
	Status      string     // Filter by status
	ImportedBy  *uuid.UUID // Filter by user who imported
	StartedFrom *time.Time // Filter by start time (from)
	StartedTo   *time.Time // Filter by start time (to)
}

// ListHistory retrieves import history with pagination and filtering
func (s *ImportHistoryService) ListHistory(
	ctx context.Context,
	organizationID uuid.UUID,
	filter ListHistoryFilter,
	page, pageSize int,
) (*bulk.ImportHistoryListResult, error) {
	repoFilter := bulk.ImportHistoryFilter{
		ImportedBy:  filter.ImportedBy,
		StartedFrom: filter.StartedFrom,
		StartedTo:   filter.StartedTo,
	}

	if filter.EntityType != "" {
		entityType := bulk.ImportEntityType(filter.EntityType)
		if entityType.IsValid() {
			repoFilter.EntityType = &entityType
		}
	}

	if filter.Status != "" {
		status := bulk.ImportStatus(filter.Status)
		if status.IsValid() {
			repoFilter.Status = &status
		}
	}

	return s.historyRepo.FindAllForOrg(ctx, organizationID, repoFilter, page, pageSize)
}

// GetErrorsCSV generates a CSV string of error details for download
func (s *ImportHistoryService) GetErrorsCSV(
	ctx context.Context,
	organizationID, historyID uuid.UUID,
) (string, string, error) {
	history, err := s.historyRepo.FindByIDForOrg(ctx, organizationID, historyID)
	if err != nil {
		return "", "", err
	}

	if len(history.ErrorDetails) == 0 {
		return "", "", fmt.Errorf("no errors to export")
	}

	var sb strings.Builder
	sb.WriteString("Row,Column,Error Code,Error Message,Value\n")

	for _, e := range history.ErrorDetails {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%s\n",
			e.Row,
			escapeCSV(e.Column),
			escapeCSV(e.Code),
			escapeCSV(e.Message),
			escapeCSV(e.Value),
		))
	}

	fileName := fmt.Sprintf("import_errors_%s_%s.csv",
		history.EntityType,
		history.ID.String()[:8],
	)

	return sb.String(), fileName, nil
}

// escapeCSV escapes a string for CSV output
func escapeCSV(s string) string {
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, ",\"\n\r") {
		escaped := strings.ReplaceAll(s, "\"", "\"\"")
		return "\"" + escaped + "\""
	}
	return s
}

// DeleteHistory deletes an import history record
func (s *ImportHistoryService) DeleteHistory(
	ctx context.Context,
	organizationID, historyID uuid.UUID,
) error {
	return s.historyRepo.DeleteForOrg(ctx, organizationID, historyID)
}

// GetUnfinishedImports retrieves pending and processing imports for recovery
func (s *ImportHistoryService) GetUnfinishedImports(
	ctx context.Context,
	organizationID uuid.UUID,
) ([]*bulk.ImportHistory, error) {
	return s.historyRepo.FindUnfinishedForOrg(ctx, organizationID)
}

func toErrorDetails(errors []csvimport.RowError) []bulk.ImportErrorDetail {
	details := make([]bulk.ImportErrorDetail, len(errors))
	for i, e := range errors {
		details[i] = bulk.ImportErrorDetail{
			Row:     e.Row,
			Column:  e.Column,
			Code:    e.Code,
			Message: e.Message,
			Value:   e.Value,
		}
	}
	return details
}
