package bulk

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// ImportEntityType represents the type of entity being imported
type ImportEntityType string

const (
	ImportEntityDataPoints  ImportEntityType = "data_points"
	ImportEntityAssumptions ImportEntityType = "assumptions"
)

// IsValid checks if the entity type is valid
func (e ImportEntityType) IsValid() bool {
	switch e {
	case ImportEntityDataPoints, ImportEntityAssumptions:
		return true
	}
	return false
}

// ImportStatus represents the status of an import operation
type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "pending"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
	ImportStatusCancelled  ImportStatus = "cancelled"
)

// IsValid checks if the status is valid
func (s ImportStatus) IsValid() bool {
	switch s {
	case ImportStatusPending, ImportStatusProcessing, ImportStatusCompleted,
		ImportStatusFailed, ImportStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s ImportStatus) IsTerminal() bool {
	return s == ImportStatusCompleted || s == ImportStatusFailed || s == ImportStatusCancelled
}

// ImportErrorDetail represents a detailed error for a specific row
type ImportErrorDetail struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ImportHistory records one bulk CSV upload and its outcome. Uploads are
// all-or-nothing: a batch with any unresolved row applies no values, so a
// completed record means every counted row landed.
type ImportHistory struct {
	shared.OrgAggregateRoot
	EntityType   ImportEntityType    `json:"entity_type" gorm:"type:varchar(30);not null;index"`
	PeriodID     *uuid.UUID          `json:"period_id,omitempty" gorm:"type:uuid;index"` // Target period (data point imports)
	FileName     string              `json:"file_name" gorm:"type:varchar(255);not null"`
	FileSize     int64               `json:"file_size" gorm:"not null;default:0"`
	TotalRows    int                 `json:"total_rows" gorm:"not null;default:0"`
	AppliedRows  int                 `json:"applied_rows" gorm:"not null;default:0"`
	ErrorRows    int                 `json:"error_rows" gorm:"not null;default:0"`
	SkippedRows  int                 `json:"skipped_rows" gorm:"not null;default:0"`
	Status       ImportStatus        `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	ErrorDetails []ImportErrorDetail `json:"error_details,omitempty" gorm:"type:jsonb;serializer:json"`
	ImportedBy   *uuid.UUID          `json:"imported_by,omitempty" gorm:"type:uuid;index"`
	StartedAt    *time.Time          `json:"started_at,omitempty"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty"`
}

// TableName returns the table name for GORM
func (ImportHistory) TableName() string {
	return "import_histories"
}

// NewImportHistory creates a new import history record
func NewImportHistory(
	organizationID uuid.UUID,
	entityType ImportEntityType,
	fileName string,
	fileSize int64,
	importedBy uuid.UUID,
) (*ImportHistory, error) {
	if !entityType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", fmt.Sprintf("Invalid entity type: %s", entityType))
	}
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if fileSize < 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size cannot be negative")
	}

	history := &ImportHistory{
		OrgAggregateRoot: shared.NewOrgAggregateRootWithCreator(organizationID, importedBy),
		EntityType:       entityType,
		FileName:         fileName,
		FileSize:         fileSize,
		Status:           ImportStatusPending,
		ErrorDetails:     make([]ImportErrorDetail, 0),
		ImportedBy:       &importedBy,
	}

	return history, nil
}

// SetPeriod binds the upload to the reporting period it targets
func (h *ImportHistory) SetPeriod(periodID uuid.UUID) {
	h.PeriodID = &periodID
}

// StartProcessing marks the import as started
func (h *ImportHistory) StartProcessing(totalRows int) error {
	if h.Status != ImportStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start processing from state: %s", h.Status))
	}
	if totalRows < 0 {
		return shared.NewDomainError("INVALID_TOTAL_ROWS", "Total rows cannot be negative")
	}

	h.Status = ImportStatusProcessing
	h.TotalRows = totalRows
	now := time.Now()
	h.StartedAt = &now
	h.UpdatedAt = now
	h.IncrementVersion()

	return nil
}

// Complete marks the import as finished with its row counts. A batch where
// nothing was applied and at least one row errored lands as failed.
func (h *ImportHistory) Complete(appliedRows, errorRows, skippedRows int, errors []ImportErrorDetail) error {
	if h.Status != ImportStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete from state: %s", h.Status))
	}

	status := ImportStatusCompleted
	if errorRows > 0 && appliedRows == 0 {
		status = ImportStatusFailed
	}

	h.Status = status
	h.AppliedRows = appliedRows
	h.ErrorRows = errorRows
	h.SkippedRows = skippedRows
	h.ErrorDetails = errors
	now := time.Now()
	h.CompletedAt = &now
	h.UpdatedAt = now
	h.IncrementVersion()

	return nil
}

// Fail marks the import as failed
func (h *ImportHistory) Fail(errors []ImportErrorDetail) error {
	if h.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail from terminal state: %s", h.Status))
	}

	h.Status = ImportStatusFailed
	h.ErrorDetails = errors
	now := time.Now()
	h.CompletedAt = &now
	h.UpdatedAt = now
	h.IncrementVersion()

	return nil
}

// Cancel marks the import as cancelled
func (h *ImportHistory) Cancel() error {
	if h.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel from terminal state: %s", h.Status))
	}

	h.Status = ImportStatusCancelled
	now := time.Now()
	h.CompletedAt = &now
	h.UpdatedAt = now
	h.IncrementVersion()

	return nil
}

// IsCompleted returns true if the import completed successfully
func (h *ImportHistory) IsCompleted() bool {
	return h.Status == ImportStatusCompleted
}

// IsFailed returns true if the import failed
func (h *ImportHistory) IsFailed() bool {
	return h.Status == ImportStatusFailed
}

// HasErrors returns true if there are any errors
func (h *ImportHistory) HasErrors() bool {
	return len(h.ErrorDetails) > 0
}

// ErrorDetailsJSON returns the error details as a JSON string
func (h *ImportHistory) ErrorDetailsJSON() (string, error) {
	if len(h.ErrorDetails) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(h.ErrorDetails)
	if err != nil {
		return "", fmt.Errorf("failed to marshal error details: %w", err)
	}
	return string(data), nil
}

// SuccessRate returns the applied share as a percentage (0-100)
func (h *ImportHistory) SuccessRate() float64 {
	if h.TotalRows == 0 {
		return 0
	}
	return float64(h.AppliedRows) / float64(h.TotalRows) * 100
}

// Duration returns the duration of the import operation
func (h *ImportHistory) Duration() time.Duration {
	if h.StartedAt == nil {
		return 0
	}
	endTime := h.CompletedAt
	if endTime == nil {
		now := time.Now()
		endTime = &now
	}
	return endTime.Sub(*h.StartedAt)
}
