package evidence

import (
	"time"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/evidence"
)

// RegisterEvidenceRequest represents a request to register an evidence file.
// The actual bytes are uploaded by the client through the returned presigned URL.
type RegisterEvidenceRequest struct {
	DataPointID uuid.UUID  `json:"data_point_id" binding:"required"`
	FileName    string     `json:"file_name" binding:"required,min=1,max=255"`
	ContentType string     `json:"content_type" binding:"required"`
	SizeBytes   int64      `json:"size_bytes" binding:"required,gt=0"`
	SHA256      string     `json:"sha256" binding:"required,len=64,hexadecimal"`
	Description string     `json:"description" binding:"max=500"`
	UploadedBy  *uuid.UUID `json:"-"`
}

// UpdateEvidenceRequest represents a request to update evidence metadata
type UpdateEvidenceRequest struct {
	Description string `json:"description" binding:"max=500"`
}

// RelinkEvidenceRequest represents a request to move evidence to another data point
type RelinkEvidenceRequest struct {
	DataPointID uuid.UUID `json:"data_point_id" binding:"required"`
}

// EvidenceListFilter represents filtering options for period-level listings
type EvidenceListFilter struct {
	Page        int
	PageSize    int
	OrderBy     string
	OrderDir    string
	Status      *evidence.EvidenceStatus
	ContentType string
	UploadedBy  *uuid.UUID
}

// EvidenceResponse represents an evidence file in API responses
type EvidenceResponse struct {
	ID          uuid.UUID  `json:"id"`
	DataPointID uuid.UUID  `json:"data_point_id"`
	PeriodID    uuid.UUID  `json:"period_id"`
	Status      string     `json:"status"`
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	SHA256      string     `json:"sha256"`
	Description string     `json:"description,omitempty"`
	UploadedBy  *uuid.UUID `json:"uploaded_by,omitempty"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RegisterEvidenceResponse couples the new evidence row with its upload URL
type RegisterEvidenceResponse struct {
	Evidence     EvidenceResponse `json:"evidence"`
	UploadURL    string           `json:"upload_url"`
	ExpiresAt    time.Time        `json:"expires_at"`
	DuplicateIDs []uuid.UUID      `json:"duplicate_ids,omitempty"`
}

// DownloadURLResponse carries a presigned download URL
type DownloadURLResponse struct {
	DownloadURL string    `json:"download_url"`
	FileName    string    `json:"file_name"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ToEvidenceResponse converts a domain evidence to a response DTO
func ToEvidenceResponse(e *evidence.Evidence) EvidenceResponse {
	return EvidenceResponse{
		ID:          e.ID,
		DataPointID: e.DataPointID,
		PeriodID:    e.PeriodID,
		Status:      string(e.Status),
		FileName:    e.FileName,
		ContentType: e.ContentType,
		SizeBytes:   e.SizeBytes,
		SHA256:      e.SHA256,
		Description: e.Description,
		UploadedBy:  e.UploadedBy,
		FinalizedAt: e.FinalizedAt,
		Version:     e.Version,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ToEvidenceResponses converts a slice of domain evidence to response DTOs
func ToEvidenceResponses(items []evidence.Evidence) []EvidenceResponse {
	responses := make([]EvidenceResponse, len(items))
	for i := range items {
		responses[i] = ToEvidenceResponse(&items[i])
	}
	return responses
}
