package importapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	csvimport "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/import"
)

// DataPointImportResult represents the result of a data point value import
type DataPointImportResult struct {
	TotalRows   int                  `json:"total_rows"`
	AppliedRows int                  `json:"applied_rows"`
	SkippedRows int                  `json:"skipped_rows"`
	ErrorRows   int                  `json:"error_rows"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated bool                 `json:"is_truncated,omitempty"`
	TotalErrors int                  `json:"total_errors,omitempty"`
}

// stagedValue is a row resolved against the period, ready to apply
type stagedValue struct {
	dataPoint *reporting.DataPoint
	numeric   *decimal.Decimal
	text      string
	boolean   *bool
}

// DataPointImportService applies bulk value uploads to a reporting period.
// The batch is all-or-nothing: every row must resolve to a data point and
// carry a value matching its kind before any value is written.
type DataPointImportService struct {
	periodRepo    reporting.ReportingPeriodRepository
	dataPointRepo reporting.DataPointRepository
	processor     *csvimport.ImportProcessor
	logger        *zap.Logger
}

// NewDataPointImportService creates a new data point import service
func NewDataPointImportService(
	periodRepo reporting.ReportingPeriodRepository,
	dataPointRepo reporting.DataPointRepository,
	logger *zap.Logger,
) *DataPointImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataPointImportService{
		periodRepo:    periodRepo,
		dataPointRepo: dataPointRepo,
		processor:     csvimport.NewImportProcessor(),
		logger:        logger,
	}
}

// GetValidationRules returns the validation rules for a data point value import
func (s *DataPointImportService) GetValidationRules() []csvimport.FieldRule {
	return csvimport.DataPointImportRules()
}

// Validate parses and validates an upload without applying it
func (s *DataPointImportService) Validate(ctx context.Context, session *csvimport.ImportSession, reader io.Reader) (*csvimport.ValidationResult, error) {
	result, err := s.processor.Validate(ctx, session, reader, s.GetValidationRules())
	if err != nil {
		return nil, err
	}
	session.SetValidationResult(result)
	if result.IsValid() {
		session.UpdateState(csvimport.StateValidated)
	}
	return result, nil
}

// Apply writes the validated rows into the period. Rows address data points
// by code; the column matching the data point's kind supplies the value.
// If any row fails to resolve, nothing is written.
func (s *DataPointImportService) Apply(
	ctx context.Context,
	organizationID, userID, periodID uuid.UUID,
	session *csvimport.ImportSession,
	validRows []*csvimport.Row,
) (*DataPointImportResult, error) {
	if session.State != csvimport.StateValidated {
		return nil, shared.NewDomainError("INVALID_STATE", "Import session must be in validated state")
	}
	if !session.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERRORS", "Cannot apply an upload with validation errors")
	}

	period, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}
	if !period.IsEditable() {
		return nil, shared.ErrPeriodClosed
	}

	session.UpdateState(csvimport.StateImporting)

	result := &DataPointImportResult{
		TotalRows: len(validRows),
	}
	rowErrors := csvimport.NewErrorCollection(100)

	// First pass: resolve every row before writing anything
	staged := make([]stagedValue, 0, len(validRows))
	seen := make(map[string]int, len(validRows))
	for _, row := range validRows {
		select {
		case <-ctx.Done():
			session.UpdateState(csvimport.StateCancelled)
			return nil, ctx.Err()
		default:
		}

		code := strings.ToUpper(strings.TrimSpace(row.Get(csvimport.ColDataPointCode)))
		if firstLine, dup := seen[code]; dup {
			rowErrors.Add(csvimport.NewRowError(row.LineNumber, csvimport.ColDataPointCode,
				csvimport.ErrCodeImportDuplicateInFile,
				fmt.Sprintf("code already appears on line %d", firstLine)))
			result.ErrorRows++
			continue
		}
		seen[code] = row.LineNumber

		value, ok := s.stageRow(ctx, organizationID, periodID, code, row, result, rowErrors)
		if !ok {
			continue
		}
		staged = append(staged, value)
	}

	result.Errors = rowErrors.Errors()
	result.IsTruncated = rowErrors.IsTruncated()
	result.TotalErrors = rowErrors.TotalCount()

	if result.ErrorRows > 0 {
		session.UpdateState(csvimport.StateFailed)
		return result, nil
	}

	// Second pass: apply. Each save carries the value-change events so the
	// batch lands on the audit trail.
	for _, sv := range staged {
		if err := s.applyStaged(ctx, userID, sv); err != nil {
			session.UpdateState(csvimport.StateFailed)
			return nil, err
		}
		result.AppliedRows++
	}

	session.UpdateState(csvimport.StateCompleted)
	s.logger.Info("Data point value import applied",
		zap.String("organization_id", organizationID.String()),
		zap.String("period_id", periodID.String()),
		zap.Int("applied_rows", result.AppliedRows))

	return result, nil
}

// stageRow resolves one row against the period and checks the value matches
// the data point's kind
func (s *DataPointImportService) stageRow(
	ctx context.Context,
	organizationID, periodID uuid.UUID,
	code string,
	row *csvimport.Row,
	result *DataPointImportResult,
	rowErrors *csvimport.ErrorCollection,
) (stagedValue, bool) {
	dp, err := s.dataPointRepo.FindByCode(ctx, organizationID, periodID, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			rowErrors.AddReferenceError(row.LineNumber, csvimport.ColDataPointCode, code, "data_point")
			result.ErrorRows++
			return stagedValue{}, false
		}
		rowErrors.Add(csvimport.NewRowError(row.LineNumber, csvimport.ColDataPointCode,
			csvimport.ErrCodeImportUnknown, err.Error()))
		result.ErrorRows++
		return stagedValue{}, false
	}

	sv := stagedValue{dataPoint: dp}
	switch dp.Kind {
	case reporting.DataPointKindMetric:
		raw := strings.TrimSpace(row.Get(csvimport.ColValue))
		if raw == "" {
			rowErrors.AddRequiredError(row.LineNumber, csvimport.ColValue)
			result.ErrorRows++
			return stagedValue{}, false
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			rowErrors.AddTypeError(row.LineNumber, csvimport.ColValue, "decimal", raw)
			result.ErrorRows++
			return stagedValue{}, false
		}
		unit := strings.ToUpper(strings.TrimSpace(row.Get(csvimport.ColUnit)))
		if unit != "" && unit != dp.UnitCode {
			rowErrors.Add(csvimport.NewRowErrorWithValue(row.LineNumber, csvimport.ColUnit,
				csvimport.ErrCodeImportValidation,
				"unit does not match the data point's unit "+dp.UnitCode, unit))
			result.ErrorRows++
			return stagedValue{}, false
		}
		sv.numeric = &value
	case reporting.DataPointKindNarrative:
		text := strings.TrimSpace(row.Get(csvimport.ColTextValue))
		if text == "" {
			rowErrors.AddRequiredError(row.LineNumber, csvimport.ColTextValue)
			result.ErrorRows++
			return stagedValue{}, false
		}
		sv.text = text
	case reporting.DataPointKindBoolean:
		raw := strings.TrimSpace(row.Get(csvimport.ColBoolValue))
		if raw == "" {
			rowErrors.AddRequiredError(row.LineNumber, csvimport.ColBoolValue)
			result.ErrorRows++
			return stagedValue{}, false
		}
		value, ok := csvimport.ParseBool(raw)
		if !ok {
			rowErrors.AddTypeError(row.LineNumber, csvimport.ColBoolValue, "boolean", raw)
			result.ErrorRows++
			return stagedValue{}, false
		}
		sv.boolean = &value
	default:
		rowErrors.Add(csvimport.NewRowError(row.LineNumber, csvimport.ColDataPointCode,
			csvimport.ErrCodeImportValidation, "data point has an unknown kind"))
		result.ErrorRows++
		return stagedValue{}, false
	}

	return sv, true
}

func (s *DataPointImportService) applyStaged(ctx context.Context, userID uuid.UUID, sv stagedValue) error {
	dp := sv.dataPoint

	var err error
	switch {
	case sv.numeric != nil:
		err = dp.RecordNumericValue(*sv.numeric, userID)
	case sv.boolean != nil:
		err = dp.RecordBooleanValue(*sv.boolean, userID)
	default:
		err = dp.RecordTextValue(sv.text, userID)
	}
	if err != nil {
		return err
	}

	events := dp.GetDomainEvents()
	dp.ClearDomainEvents()
	return s.dataPointRepo.SaveWithLockAndEvents(ctx, dp, events)
}
