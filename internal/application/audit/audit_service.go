package audit

import (
	"context"
	"encoding/json"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/audit"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/export"
)

// AuditService reads the append-only audit trail. The trail is populated by
// the projector; this service only queries it.
type AuditService struct {
	entryRepo audit.AuditEntryRepository
	logger    *zap.Logger
}

// NewAuditService creates a new audit query service
func NewAuditService(entryRepo audit.AuditEntryRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		entryRepo: entryRepo,
		logger:    logger,
	}
}

// List retrieves audit entries matching the filter, newest first
func (s *AuditService) List(ctx context.Context, organizationID uuid.UUID, filter EntryListFilter) (*shared.Paginated[EntryResponse], error) {
	query := toQuery(filter)
	repoFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}

	paginated, err := s.entryRepo.FindForOrg(ctx, organizationID, query, repoFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToEntryResponses(paginated.Items), paginated.Total, paginated.Page, paginated.PageSize)
	return &result, nil
}

// GetByID retrieves a single audit entry
func (s *AuditService) GetByID(ctx context.Context, organizationID, entryID uuid.UUID) (*EntryResponse, error) {
	entry, err := s.entryRepo.FindByIDForOrg(ctx, entryID, organizationID)
	if err != nil {
		return nil, err
	}

	response := ToEntryResponse(entry)
	return &response, nil
}

// GetTimeline retrieves the full entry sequence of one aggregate, oldest first
func (s *AuditService) GetTimeline(ctx context.Context, organizationID uuid.UUID, aggregateType string, aggregateID uuid.UUID) ([]EntryResponse, error) {
	if aggregateType == "" {
		return nil, shared.NewDomainError("INVALID_AGGREGATE_TYPE", "Aggregate type cannot be empty")
	}

	entries, err := s.entryRepo.FindByAggregate(ctx, organizationID, aggregateType, aggregateID)
	if err != nil {
		return nil, err
	}
	return ToEntryResponses(entries), nil
}

// GetValueHistory reconstructs the value timeline of a data point from its
// value-change entries
func (s *AuditService) GetValueHistory(ctx context.Context, organizationID, dataPointID uuid.UUID) (*ValueHistoryResponse, error) {
	entries, err := s.entryRepo.FindValueHistory(ctx, organizationID, dataPointID)
	if err != nil {
		return nil, err
	}

	history := make([]ValueHistoryEntry, 0, len(entries))
	for i := range entries {
		entry := &entries[i]

		var payload struct {
			OldValue string `json:"old_value"`
			NewValue string `json:"new_value"`
		}
		if len(entry.Payload) > 0 {
			if err := json.Unmarshal(entry.Payload, &payload); err != nil {
				s.logger.Warn("Skipping unreadable audit payload",
					zap.String("entry_id", entry.ID.String()),
					zap.Error(err))
				continue
			}
		}

		history = append(history, ValueHistoryEntry{
			OccurredAt: entry.OccurredAt,
			Action:     entry.Action,
			OldValue:   payload.OldValue,
			NewValue:   payload.NewValue,
			UpdatedBy:  entry.ActorUserID,
		})
	}

	return &ValueHistoryResponse{
		DataPointID: dataPointID,
		Entries:     history,
	}, nil
}

// csvExportCap bounds how many entries a single CSV export streams
const csvExportCap = 50000

// WriteTrailCSV streams the matching audit entries to w as CSV
func (s *AuditService) WriteTrailCSV(ctx context.Context, organizationID uuid.UUID, filter EntryListFilter, w io.Writer) error {
	query := toQuery(filter)
	repoFilter := shared.Filter{Page: 1, PageSize: csvExportCap}

	paginated, err := s.entryRepo.FindForOrg(ctx, organizationID, query, repoFilter)
	if err != nil {
		return err
	}

	rows := make([]export.AuditTrailCSVRow, 0, len(paginated.Items))
	for i := range paginated.Items {
		entry := &paginated.Items[i]

		var payload struct {
			Code     string `json:"code"`
			Name     string `json:"name"`
			OldValue string `json:"old_value"`
			NewValue string `json:"new_value"`
		}
		if len(entry.Payload) > 0 {
			_ = json.Unmarshal(entry.Payload, &payload)
		}

		summary := payload.Code
		if summary == "" {
			summary = payload.Name
		}

		actorName := "system"
		if entry.ActorUserID != nil {
			actorName = entry.ActorUserID.String()
		}

		rows = append(rows, export.AuditTrailCSVRow{
			OccurredAt: entry.OccurredAt,
			ActorName:  actorName,
			ActorID:    entry.ActorUserID,
			Action:     entry.Action,
			EntityType: entry.AggregateType,
			EntityID:   entry.AggregateID,
			Summary:    summary,
			OldValue:   payload.OldValue,
			NewValue:   payload.NewValue,
			RequestID:  entry.EventID.String(),
		})
	}

	return export.WriteAuditTrailCSV(w, rows)
}

func toQuery(filter EntryListFilter) audit.Query {
	return audit.Query{
		AggregateType: filter.AggregateType,
		AggregateID:   filter.AggregateID,
		ActorUserID:   filter.ActorUserID,
		Action:        filter.Action,
		From:          filter.From,
		To:            filter.To,
	}
}
