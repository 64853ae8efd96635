package evidence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/evidence"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// ObjectStorageService defines the interface for presigned object storage operations.
// Implemented by the S3 adapter in the infrastructure layer.
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// DefaultPresignExpiration is how long upload and download URLs stay valid
const DefaultPresignExpiration = 15 * time.Minute

// PendingUploadTTLSeconds is how long a pending_upload row may wait for
// finalization before the cleanup job expires it
const PendingUploadTTLSeconds = int64(24 * 60 * 60)

// EvidenceService handles evidence file business operations
type EvidenceService struct {
	evidenceRepo   evidence.EvidenceRepository
	dataPointRepo  reporting.DataPointRepository
	periodRepo     reporting.ReportingPeriodRepository
	storage        ObjectStorageService
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewEvidenceService creates a new EvidenceService
func NewEvidenceService(
	evidenceRepo evidence.EvidenceRepository,
	dataPointRepo reporting.DataPointRepository,
	periodRepo reporting.ReportingPeriodRepository,
	storage ObjectStorageService,
	logger *zap.Logger,
) *EvidenceService {
	return &EvidenceService{
		evidenceRepo:  evidenceRepo,
		dataPointRepo: dataPointRepo,
		periodRepo:    periodRepo,
		storage:       storage,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *EvidenceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Register registers an evidence file and returns a presigned upload URL.
// The row stays in pending_upload until the client confirms the upload.
func (s *EvidenceService) Register(ctx context.Context, organizationID uuid.UUID, req RegisterEvidenceRequest) (*RegisterEvidenceResponse, error) {
	dataPoint, err := s.dataPointRepo.FindByIDForOrg(ctx, organizationID, req.DataPointID)
	if err != nil {
		return nil, err
	}

	period, err := s.periodRepo.FindByIDForOrg(ctx, organizationID, dataPoint.PeriodID)
	if err != nil {
		return nil, err
	}
	if !period.IsEditable() {
		return nil, shared.ErrPeriodClosed
	}

	storageKey := buildStorageKey(organizationID, dataPoint.PeriodID, req.DataPointID, req.FileName)

	ev, err := evidence.NewEvidence(
		organizationID,
		req.DataPointID,
		dataPoint.PeriodID,
		req.FileName,
		req.ContentType,
		req.SizeBytes,
		req.SHA256,
		storageKey,
		req.UploadedBy,
	)
	if err != nil {
		return nil, err
	}

	if req.Description != "" {
		if err := ev.SetDescription(req.Description); err != nil {
			return nil, err
		}
	}
	if req.UploadedBy != nil {
		ev.SetCreatedBy(*req.UploadedBy)
	}

	// Flag duplicates by content hash; registration still proceeds
	duplicates, err := s.evidenceRepo.FindBySHA256(ctx, organizationID, ev.SHA256)
	if err != nil {
		return nil, err
	}
	duplicateIDs := make([]uuid.UUID, 0, len(duplicates))
	for i := range duplicates {
		duplicateIDs = append(duplicateIDs, duplicates[i].ID)
	}

	// Collect domain events before save
	events := ev.GetDomainEvents()
	ev.ClearDomainEvents()

	// Save with events atomically (transactional outbox pattern)
	if err := s.evidenceRepo.SaveWithEvents(ctx, ev, events); err != nil {
		return nil, err
	}

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, storageKey, req.ContentType, DefaultPresignExpiration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	return &RegisterEvidenceResponse{
		Evidence:     ToEvidenceResponse(ev),
		UploadURL:    uploadURL,
		ExpiresAt:    expiresAt,
		DuplicateIDs: duplicateIDs,
	}, nil
}

// Finalize confirms a completed upload and makes the evidence available.
// The object must actually exist in storage before the row is finalized.
func (s *EvidenceService) Finalize(ctx context.Context, organizationID, evidenceID uuid.UUID) (*EvidenceResponse, error) {
	ev, err := s.evidenceRepo.FindByIDForOrg(ctx, organizationID, evidenceID)
	if err != nil {
		return nil, err
	}

	exists, err := s.storage.ObjectExists(ctx, ev.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to verify uploaded object: %w", err)
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "Uploaded file was not found in storage")
	}

	if err := ev.Finalize(); err != nil {
		return nil, err
	}

	return s.saveEvidence(ctx, ev)
}

// GetByID retrieves evidence metadata by ID
func (s *EvidenceService) GetByID(ctx context.Context, organizationID, evidenceID uuid.UUID) (*EvidenceResponse, error) {
	ev, err := s.evidenceRepo.FindByIDForOrg(ctx, organizationID, evidenceID)
	if err != nil {
		return nil, err
	}
	response := ToEvidenceResponse(ev)
	return &response, nil
}

// GetDownloadURL returns a presigned download URL for available evidence
func (s *EvidenceService) GetDownloadURL(ctx context.Context, organizationID, evidenceID uuid.UUID) (*DownloadURLResponse, error) {
	ev, err := s.evidenceRepo.FindByIDForOrg(ctx, organizationID, evidenceID)
	if err != nil {
		return nil, err
	}

	if !ev.IsAvailable() {
		return nil, shared.NewDomainError("NOT_AVAILABLE", "Evidence file is not available for download")
	}

	downloadURL, expiresAt, err := s.storage.GenerateDownloadURL(ctx, ev.StorageKey, DefaultPresignExpiration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate download URL: %w", err)
	}

	return &DownloadURLResponse{
		DownloadURL: downloadURL,
		FileName:    ev.FileName,
		ExpiresAt:   expiresAt,
	}, nil
}

// ListByDataPoint retrieves evidence attached to a data point
func (s *EvidenceService) ListByDataPoint(ctx context.Context, organizationID, dataPointID uuid.UUID, includeDeleted bool) ([]EvidenceResponse, error) {
	items, err := s.evidenceRepo.FindByDataPoint(ctx, organizationID, dataPointID, includeDeleted)
	if err != nil {
		return nil, err
	}
	return ToEvidenceResponses(items), nil
}

// ListByPeriod retrieves evidence within a period with filtering
func (s *EvidenceService) ListByPeriod(ctx context.Context, organizationID, periodID uuid.UUID, filter EvidenceListFilter) ([]EvidenceResponse, error) {
	repoFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  map[string]interface{}{},
	}
	if filter.Status != nil {
		repoFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.ContentType != "" {
		repoFilter.Filters["content_type"] = filter.ContentType
	}
	if filter.UploadedBy != nil {
		repoFilter.Filters["uploaded_by"] = *filter.UploadedBy
	}

	items, err := s.evidenceRepo.FindByPeriod(ctx, organizationID, periodID, repoFilter)
	if err != nil {
		return nil, err
	}
	return ToEvidenceResponses(items), nil
}

// UpdateDescription updates the evidence description
func (s *EvidenceService) UpdateDescription(ctx context.Context, organizationID, evidenceID uuid.UUID, req UpdateEvidenceRequest) (*EvidenceResponse, error) {
	ev, err := s.evidenceRepo.FindByIDForOrg(ctx, organizationID, evidenceID)
	if err != nil {
		return nil, err
	}

	if err := ev.SetDescription(req.Description); err != nil {
		return nil, err
	}

	return s.saveEvidence(ctx, ev)
}

// Relink moves available evidence to another data point in the same period
func (s *EvidenceService) Relink(ctx context.Context, organizationID, evidenceID uuid.UUID, req RelinkEvidenceRequest) (*EvidenceResponse, error) {
	ev, err := s.evidenceRepo.FindByIDForOrg(ctx, organizationID, evidenceID)
	if err != nil {
		return nil, err
	}

	target, err := s.dataPointRepo.FindByIDForOrg(ctx, organizationID, req.DataPointID)
	if err != nil {
		return nil, err
	}
	if target.PeriodID != ev.PeriodID {
		return nil, shared.NewDomainError("PERIOD_MISMATCH", "Evidence can only be relinked within its period")
	}

	if err := ev.Relink(req.DataPointID); err != nil {
		return nil, err
	}

	return s.saveEvidence(ctx, ev)
}

// Delete soft-deletes evidence. The metadata row and the stored object
// are both retained for the audit trail.
func (s *EvidenceService) Delete(ctx context.Context, organizationID, evidenceID, deletedBy uuid.UUID) error {
	ev, err := s.evidenceRepo.FindByIDForOrg(ctx, organizationID, evidenceID)
	if err != nil {
		return err
	}

	if err := ev.Delete(deletedBy); err != nil {
		return err
	}

	_, err = s.saveEvidence(ctx, ev)
	return err
}

// CleanupExpiredPending expires pending_upload rows older than the TTL.
// Invoked by the maintenance scheduler; returns how many rows were expired.
func (s *EvidenceService) CleanupExpiredPending(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	stale, err := s.evidenceRepo.FindPendingOlderThan(ctx, PendingUploadTTLSeconds, batchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		ev := &stale[i]

		// The upload may have completed without a finalize call; keep those
		exists, err := s.storage.ObjectExists(ctx, ev.StorageKey)
		if err == nil && exists {
			continue
		}

		if err := ev.Delete(uuid.Nil); err != nil {
			s.logger.Warn("failed to expire pending evidence",
				zap.String("evidence_id", ev.ID.String()),
				zap.Error(err))
			continue
		}
		if _, err := s.saveEvidence(ctx, ev); err != nil {
			s.logger.Warn("failed to persist expired evidence",
				zap.String("evidence_id", ev.ID.String()),
				zap.Error(err))
			continue
		}
		expired++
	}

	return expired, nil
}

// saveEvidence persists evidence changes with events through the outbox
func (s *EvidenceService) saveEvidence(ctx context.Context, ev *evidence.Evidence) (*EvidenceResponse, error) {
	// Collect domain events before save
	events := ev.GetDomainEvents()
	ev.ClearDomainEvents()

	// Save with optimistic locking and events atomically (transactional outbox pattern)
	if err := s.evidenceRepo.SaveWithLockAndEvents(ctx, ev, events); err != nil {
		return nil, err
	}

	response := ToEvidenceResponse(ev)
	return &response, nil
}

// buildStorageKey builds the object key for an evidence file.
// Keys are namespaced by organization, period and data point so that
// bucket listings stay navigable.
func buildStorageKey(organizationID, periodID, dataPointID uuid.UUID, fileName string) string {
	safeName := strings.ReplaceAll(fileName, "/", "_")
	return fmt.Sprintf("evidence/%s/%s/%s/%s_%s", organizationID, periodID, dataPointID, uuid.New().String()[:8], safeName)
}
