package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CSV extracts share a common shape: a header row followed by one row per
// record, written through encoding/csv so quoting and escaping are handled
// uniformly. Callers collect the rows from repositories and stream them here.

// DataPointCSVRow is one row of the data point extract
type DataPointCSVRow struct {
	SectionCode  string
	Code         string
	Name         string
	Kind         string
	UnitCode     string
	NumericValue *decimal.Decimal
	TextValue    string
	BoolValue    *bool
	Status       string
	Mandatory    bool
	Estimated    bool
	StandardRef  string
	UpdatedAt    *time.Time
	UpdatedBy    string
}

// WriteDataPointCSV writes the data point extract to w
func WriteDataPointCSV(w io.Writer, rows []DataPointCSVRow) error {
	cw := csv.NewWriter(w)

	header := []string{
		"section_code", "code", "name", "kind", "unit",
		"numeric_value", "text_value", "bool_value",
		"status", "mandatory", "estimated", "standard_ref",
		"value_updated_at", "value_updated_by",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			r.SectionCode,
			r.Code,
			r.Name,
			r.Kind,
			r.UnitCode,
			decimalString(r.NumericValue),
			r.TextValue,
			boolString(r.BoolValue),
			r.Status,
			strconv.FormatBool(r.Mandatory),
			strconv.FormatBool(r.Estimated),
			r.StandardRef,
			timeString(r.UpdatedAt),
			r.UpdatedBy,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// AuditTrailCSVRow is one row of the audit trail extract
type AuditTrailCSVRow struct {
	OccurredAt time.Time
	ActorName  string
	ActorID    *uuid.UUID
	Action     string
	EntityType string
	EntityID   uuid.UUID
	Summary    string
	OldValue   string
	NewValue   string
	RequestID  string
}

// WriteAuditTrailCSV writes the audit trail extract to w
func WriteAuditTrailCSV(w io.Writer, rows []AuditTrailCSVRow) error {
	cw := csv.NewWriter(w)

	header := []string{
		"occurred_at", "actor", "actor_id", "action",
		"entity_type", "entity_id", "summary",
		"old_value", "new_value", "request_id",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		actorID := ""
		if r.ActorID != nil {
			actorID = r.ActorID.String()
		}
		record := []string{
			r.OccurredAt.UTC().Format(time.RFC3339),
			r.ActorName,
			actorID,
			r.Action,
			r.EntityType,
			r.EntityID.String(),
			r.Summary,
			r.OldValue,
			r.NewValue,
			r.RequestID,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReconciliationCSVRow is one row of the reconciliation extract. It compares
// the current period value of a data point against its baseline and target.
type ReconciliationCSVRow struct {
	SectionCode   string
	Code          string
	Name          string
	UnitCode      string
	BaselineValue *decimal.Decimal
	CurrentValue  *decimal.Decimal
	TargetValue   *decimal.Decimal
	Estimated     bool
}

// Delta returns the change from baseline to current value.
// Returns nil when either side is missing.
func (r ReconciliationCSVRow) Delta() *decimal.Decimal {
	if r.BaselineValue == nil || r.CurrentValue == nil {
		return nil
	}
	d := r.CurrentValue.Sub(*r.BaselineValue)
	return &d
}

// DeltaPercent returns the relative change from baseline as a ratio.
// Returns nil when the baseline is missing or zero.
func (r ReconciliationCSVRow) DeltaPercent() *decimal.Decimal {
	delta := r.Delta()
	if delta == nil || r.BaselineValue.IsZero() {
		return nil
	}
	p := delta.Div(*r.BaselineValue)
	return &p
}

// WriteReconciliationCSV writes the reconciliation extract to w
func WriteReconciliationCSV(w io.Writer, rows []ReconciliationCSVRow) error {
	cw := csv.NewWriter(w)

	header := []string{
		"section_code", "code", "name", "unit",
		"baseline_value", "current_value", "target_value",
		"delta", "delta_percent", "estimated",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			r.SectionCode,
			r.Code,
			r.Name,
			r.UnitCode,
			decimalString(r.BaselineValue),
			decimalString(r.CurrentValue),
			decimalString(r.TargetValue),
			decimalString(r.Delta()),
			percentString(r.DeltaPercent()),
			strconv.FormatBool(r.Estimated),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func decimalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func percentString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.Mul(decimal.NewFromInt(100)).StringFixed(2)
}

func boolString(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func timeString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
