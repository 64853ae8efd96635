package reporting

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// CompletenessSnapshot is one daily completeness reading for a period,
// written by the scheduler so score history is queryable over time.
type CompletenessSnapshot struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrganizationID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	PeriodID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_snapshot_period_date"`
	Score             decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Strategy          string          `gorm:"type:varchar(50);not null"`
	MandatoryTotal    int             `gorm:"not null;default:0"`
	MandatoryComplete int             `gorm:"not null;default:0"`
	SnapshotDate      time.Time       `gorm:"type:date;not null;uniqueIndex:idx_snapshot_period_date"`
	CreatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CompletenessSnapshot) TableName() string {
	return "completeness_snapshots"
}

// NewCompletenessSnapshot creates a snapshot for the given date.
// The date is truncated to midnight UTC so one row exists per period per day.
func NewCompletenessSnapshot(organizationID, periodID uuid.UUID, score decimal.Decimal, strategy string, mandatoryTotal, mandatoryComplete int, snapshotDate time.Time) (*CompletenessSnapshot, error) {
	if organizationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	if periodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PERIOD_ID", "Period ID cannot be empty")
	}
	if strategy == "" {
		return nil, shared.NewDomainError("INVALID_STRATEGY", "Strategy name cannot be empty")
	}
	if score.IsNegative() || score.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_SCORE", "Score must be between 0 and 100")
	}
	if snapshotDate.IsZero() {
		snapshotDate = time.Now()
	}

	day := snapshotDate.UTC().Truncate(24 * time.Hour)

	return &CompletenessSnapshot{
		ID:                uuid.New(),
		OrganizationID:    organizationID,
		PeriodID:          periodID,
		Score:             score,
		Strategy:          strategy,
		MandatoryTotal:    mandatoryTotal,
		MandatoryComplete: mandatoryComplete,
		SnapshotDate:      day,
		CreatedAt:         time.Now(),
	}, nil
}
