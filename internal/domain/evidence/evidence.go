package evidence

import (
	"regexp"
	"strings"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxEvidenceFileSize is the maximum allowed file size (50MB)
const MaxEvidenceFileSize = 50 * 1024 * 1024

// EvidenceStatus represents the status of an evidence file
type EvidenceStatus string

const (
	EvidenceStatusPendingUpload EvidenceStatus = "pending_upload"
	EvidenceStatusAvailable     EvidenceStatus = "available"
	EvidenceStatusDeleted       EvidenceStatus = "deleted"
)

// IsValid checks if the evidence status is valid
func (s EvidenceStatus) IsValid() bool {
	switch s {
	case EvidenceStatusPendingUpload, EvidenceStatusAvailable, EvidenceStatusDeleted:
		return true
	default:
		return false
	}
}

// String returns the string representation of EvidenceStatus
func (s EvidenceStatus) String() string {
	return string(s)
}

// Evidence represents a supporting file attached to a data point.
// Files live in object storage; this aggregate holds the metadata and
// upload state. Storage keys never leave the backend; clients only
// see presigned URLs.
type Evidence struct {
	shared.OrgAggregateRoot
	DataPointID uuid.UUID      `gorm:"type:uuid;not null;index"`
	PeriodID    uuid.UUID      `gorm:"type:uuid;not null;index"` // Denormalized for period-level listings
	Status      EvidenceStatus `gorm:"type:varchar(20);not null;default:'pending_upload'"`
	FileName    string         `gorm:"type:varchar(255);not null"`
	ContentType string         `gorm:"type:varchar(100);not null"`
	SizeBytes   int64          `gorm:"not null"`
	SHA256      string         `gorm:"type:char(64);not null"` // Declared by the client, verified on finalize
	StorageKey  string         `gorm:"type:varchar(500);not null"`
	Description string         `gorm:"type:varchar(500)"`
	UploadedBy  *uuid.UUID     `gorm:"type:uuid"`
	FinalizedAt *time.Time
	DeletedBy   *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Evidence) TableName() string {
	return "evidence_files"
}

// NewEvidence registers a new evidence file in pending_upload status
func NewEvidence(
	organizationID uuid.UUID,
	dataPointID uuid.UUID,
	periodID uuid.UUID,
	fileName string,
	contentType string,
	sizeBytes int64,
	sha256 string,
	storageKey string,
	uploadedBy *uuid.UUID,
) (*Evidence, error) {
	if dataPointID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DATA_POINT_ID", "Data point ID cannot be empty")
	}
	if periodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PERIOD_ID", "Period ID cannot be empty")
	}
	if err := validateFileName(fileName); err != nil {
		return nil, err
	}
	if err := validateFileSize(sizeBytes); err != nil {
		return nil, err
	}
	if err := validateContentType(contentType); err != nil {
		return nil, err
	}
	if err := validateSHA256(sha256); err != nil {
		return nil, err
	}
	if err := validateStorageKey(storageKey); err != nil {
		return nil, err
	}

	ev := &Evidence{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(organizationID),
		DataPointID:      dataPointID,
		PeriodID:         periodID,
		Status:           EvidenceStatusPendingUpload,
		FileName:         fileName,
		ContentType:      contentType,
		SizeBytes:        sizeBytes,
		SHA256:           strings.ToLower(sha256),
		StorageKey:       storageKey,
		UploadedBy:       uploadedBy,
	}

	ev.AddDomainEvent(NewEvidenceRegisteredEvent(ev))

	return ev, nil
}

// Finalize confirms the upload and makes the evidence available
// Called after the client reports a successful PUT to storage
func (e *Evidence) Finalize() error {
	if e.Status == EvidenceStatusAvailable {
		return shared.NewDomainError("ALREADY_FINALIZED", "Evidence is already finalized")
	}
	if e.Status == EvidenceStatusDeleted {
		return shared.NewDomainError("CANNOT_FINALIZE_DELETED", "Cannot finalize deleted evidence")
	}

	now := time.Now()
	e.Status = EvidenceStatusAvailable
	e.FinalizedAt = &now
	e.UpdatedAt = now
	e.IncrementVersion()

	e.AddDomainEvent(NewEvidenceFinalizedEvent(e))

	return nil
}

// Delete marks the evidence as deleted (soft delete)
// The storage object is retained for the audit trail
func (e *Evidence) Delete(deletedBy uuid.UUID) error {
	if e.Status == EvidenceStatusDeleted {
		return shared.NewDomainError("ALREADY_DELETED", "Evidence is already deleted")
	}

	oldStatus := e.Status
	e.Status = EvidenceStatusDeleted
	if deletedBy != uuid.Nil {
		e.DeletedBy = &deletedBy
	}
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	e.AddDomainEvent(NewEvidenceDeletedEvent(e, oldStatus))

	return nil
}

// Relink moves the evidence to another data point
// The event carries both IDs so the audit trail keeps the history
func (e *Evidence) Relink(dataPointID uuid.UUID) error {
	if e.Status == EvidenceStatusDeleted {
		return shared.NewDomainError("CANNOT_UPDATE_DELETED", "Cannot relink deleted evidence")
	}
	if dataPointID == uuid.Nil {
		return shared.NewDomainError("INVALID_DATA_POINT_ID", "Data point ID cannot be empty")
	}
	if dataPointID == e.DataPointID {
		return shared.NewDomainError("SAME_DATA_POINT", "Evidence is already linked to this data point")
	}

	oldDataPointID := e.DataPointID
	e.DataPointID = dataPointID
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	e.AddDomainEvent(NewEvidenceRelinkedEvent(e, oldDataPointID))

	return nil
}

// SetDescription sets the optional description
func (e *Evidence) SetDescription(description string) error {
	if e.Status == EvidenceStatusDeleted {
		return shared.NewDomainError("CANNOT_UPDATE_DELETED", "Cannot update deleted evidence")
	}
	if len(description) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}

	e.Description = description
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// IsPending returns true if the upload has not been finalized
func (e *Evidence) IsPending() bool {
	return e.Status == EvidenceStatusPendingUpload
}

// IsAvailable returns true if the evidence can be downloaded
func (e *Evidence) IsAvailable() bool {
	return e.Status == EvidenceStatusAvailable
}

// IsDeleted returns true if the evidence is soft deleted
func (e *Evidence) IsDeleted() bool {
	return e.Status == EvidenceStatusDeleted
}

// validation functions

var sha256Regex = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)

func validateFileName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if len(name) > 255 {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot exceed 255 characters")
	}
	for _, r := range name {
		if r < 32 || r == 127 {
			return shared.NewDomainError("INVALID_FILE_NAME", "File name contains invalid characters")
		}
	}
	// Prevent path separators in filename
	if strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot contain path separators")
	}
	return nil
}

func validateFileSize(size int64) error {
	if size <= 0 {
		return shared.NewDomainError("INVALID_FILE_SIZE", "File size must be greater than 0")
	}
	if size > MaxEvidenceFileSize {
		return shared.NewDomainError("FILE_TOO_LARGE", "File size cannot exceed 50MB")
	}
	return nil
}

func validateContentType(contentType string) error {
	if contentType == "" {
		return shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type cannot be empty")
	}
	if len(contentType) > 100 {
		return shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type cannot exceed 100 characters")
	}
	// Basic MIME type format validation: must contain type/subtype
	if !strings.Contains(contentType, "/") {
		return shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type must be in type/subtype format")
	}
	if strings.HasPrefix(contentType, "/") || strings.HasSuffix(contentType, "/") {
		return shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type must be in type/subtype format")
	}
	return nil
}

func validateSHA256(hash string) error {
	if hash == "" {
		return shared.NewDomainError("INVALID_CHECKSUM", "SHA-256 checksum is required")
	}
	if !sha256Regex.MatchString(hash) {
		return shared.NewDomainError("INVALID_CHECKSUM", "SHA-256 checksum must be 64 hex characters")
	}
	return nil
}

func validateStorageKey(key string) error {
	if key == "" {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}
	if len(key) > 500 {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot exceed 500 characters")
	}
	// Prevent path traversal attacks
	if strings.Contains(key, "..") {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot contain path traversal sequences")
	}
	if strings.HasPrefix(key, "/") {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key must be a relative path")
	}
	return nil
}
