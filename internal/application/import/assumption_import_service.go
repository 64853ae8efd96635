package importapp

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/register"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	csvimport "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/import"
)

// reviewByFormat is the date layout accepted in the review_by column
const reviewByFormat = "2006-01-02"

// AssumptionImportResult represents the result of an assumption import
type AssumptionImportResult struct {
	TotalRows   int                  `json:"total_rows"`
	CreatedRows int                  `json:"created_rows"`
	ErrorRows   int                  `json:"error_rows"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated bool                 `json:"is_truncated,omitempty"`
	TotalErrors int                  `json:"total_errors,omitempty"`
}

// AssumptionImportService creates assumptions in bulk from an upload
type AssumptionImportService struct {
	assumptionRepo register.AssumptionRepository
	processor      *csvimport.ImportProcessor
	logger         *zap.Logger
}

// NewAssumptionImportService creates a new assumption import service
func NewAssumptionImportService(assumptionRepo register.AssumptionRepository, logger *zap.Logger) *AssumptionImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssumptionImportService{
		assumptionRepo: assumptionRepo,
		processor:      csvimport.NewImportProcessor(),
		logger:         logger,
	}
}

// GetValidationRules returns the validation rules for an assumption import
func (s *AssumptionImportService) GetValidationRules() []csvimport.FieldRule {
	return csvimport.AssumptionImportRules()
}

// Validate parses and validates an upload without applying it
func (s *AssumptionImportService) Validate(ctx context.Context, session *csvimport.ImportSession, reader io.Reader) (*csvimport.ValidationResult, error) {
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

// Apply creates one assumption per validated row
func (s *AssumptionImportService) Apply(
	ctx context.Context,
	organizationID, userID uuid.UUID,
	session *csvimport.ImportSession,
	validRows []*csvimport.Row,
) (*AssumptionImportResult, error) {
	if session.State != csvimport.StateValidated {
		return nil, shared.NewDomainError("INVALID_STATE", "Import session must be in validated state")
	}
	if !session.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERRORS", "Cannot apply an upload with validation errors")
	}

	session.UpdateState(csvimport.StateImporting)

	result := &AssumptionImportResult{
		TotalRows: len(validRows),
	}
	rowErrors := csvimport.NewErrorCollection(100)

	for _, row := range validRows {
		select {
		case <-ctx.Done():
			session.UpdateState(csvimport.StateCancelled)
			return nil, ctx.Err()
		default:
		}

		title := strings.TrimSpace(row.Get(csvimport.ColAssumptionTitle))
		body := strings.TrimSpace(row.Get(csvimport.ColAssumptionBody))
		category := strings.TrimSpace(row.Get(csvimport.ColCategory))

		assumption, err := register.NewAssumption(organizationID, title, body, category)
		if err != nil {
			rowErrors.Add(csvimport.NewRowError(row.LineNumber, csvimport.ColAssumptionTitle,
				csvimport.ErrCodeImportValidation, err.Error()))
			result.ErrorRows++
			continue
		}

		if raw := strings.TrimSpace(row.Get(csvimport.ColReviewBy)); raw != "" {
			reviewBy, err := time.Parse(reviewByFormat, raw)
			if err != nil {
				rowErrors.AddFormatError(row.LineNumber, csvimport.ColReviewBy, reviewByFormat, raw)
				result.ErrorRows++
				continue
			}
			if err := assumption.SetReviewBy(reviewBy); err != nil {
				rowErrors.Add(csvimport.NewRowError(row.LineNumber, csvimport.ColReviewBy,
					csvimport.ErrCodeImportValidation, err.Error()))
				result.ErrorRows++
				continue
			}
		}
		if userID != uuid.Nil {
			assumption.SetCreatedBy(userID)
		}

		events := assumption.GetDomainEvents()
		assumption.ClearDomainEvents()
		if err := s.assumptionRepo.SaveWithEvents(ctx, assumption, events); err != nil {
			session.UpdateState(csvimport.StateFailed)
			return nil, err
		}
		result.CreatedRows++
	}

	result.Errors = rowErrors.Errors()
	result.IsTruncated = rowErrors.IsTruncated()
	result.TotalErrors = rowErrors.TotalCount()

	if result.ErrorRows > 0 {
		session.UpdateState(csvimport.StateFailed)
	} else {
		session.UpdateState(csvimport.StateCompleted)
	}

	s.logger.Info("Assumption import finished",
		zap.String("organization_id", organizationID.String()),
		zap.Int("created_rows", result.CreatedRows),
		zap.Int("error_rows", result.ErrorRows))

	return result, nil
}
