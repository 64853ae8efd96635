package export

// DocType identifies what an export produces
type DocType string

const (
	DocTypePeriodReport   DocType = "PERIOD_REPORT"  // Full period report document
	DocTypeDataPoints     DocType = "DATA_POINTS"    // Data point extract
	DocTypeAuditTrail     DocType = "AUDIT_TRAIL"    // Audit trail extract
	DocTypeReconciliation DocType = "RECONCILIATION" // Period-over-period reconciliation
)

// IsValid checks if the DocType is a valid value
func (d DocType) IsValid() bool {
	switch d {
	case DocTypePeriodReport, DocTypeDataPoints, DocTypeAuditTrail, DocTypeReconciliation:
		return true
	}
	return false
}

// String returns the string representation of DocType
func (d DocType) String() string {
	return string(d)
}

// DisplayName returns the human-readable name for DocType
func (d DocType) DisplayName() string {
	switch d {
	case DocTypePeriodReport:
		return "Period report"
	case DocTypeDataPoints:
		return "Data point extract"
	case DocTypeAuditTrail:
		return "Audit trail"
	case DocTypeReconciliation:
		return "Reconciliation report"
	default:
		return string(d)
	}
}

// AllDocTypes returns all valid DocType values
func AllDocTypes() []DocType {
	return []DocType{
		DocTypePeriodReport, DocTypeDataPoints, DocTypeAuditTrail, DocTypeReconciliation,
	}
}

// Format identifies the output file format of an export
type Format string

const (
	FormatPDF Format = "PDF"
	FormatCSV Format = "CSV"
)

// IsValid checks if the Format is a valid value
func (f Format) IsValid() bool {
	switch f {
	case FormatPDF, FormatCSV:
		return true
	}
	return false
}

// String returns the string representation of Format
func (f Format) String() string {
	return string(f)
}

// SupportsFormat reports whether a doc type can be exported in a format.
// The period report renders to PDF; the tabular extracts render to CSV.
func (d DocType) SupportsFormat(f Format) bool {
	switch d {
	case DocTypePeriodReport:
		return f == FormatPDF
	case DocTypeDataPoints, DocTypeAuditTrail, DocTypeReconciliation:
		return f == FormatCSV
	}
	return false
}

// PaperSize represents the paper size for PDF rendering
type PaperSize string

const (
	PaperSizeA4     PaperSize = "A4"     // 210mm x 297mm
	PaperSizeA3     PaperSize = "A3"     // 297mm x 420mm
	PaperSizeLetter PaperSize = "LETTER" // 216mm x 279mm
)

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeA3, PaperSizeLetter:
		return true
	}
	return false
}

// String returns the string representation of PaperSize
func (p PaperSize) String() string {
	return string(p)
}

// Dimensions returns the paper dimensions in millimeters (width, height)
func (p PaperSize) Dimensions() (width, height int) {
	switch p {
	case PaperSizeA4:
		return 210, 297
	case PaperSizeA3:
		return 297, 420
	case PaperSizeLetter:
		return 216, 279
	default:
		return 210, 297 // Default to A4
	}
}

// AllPaperSizes returns all valid PaperSize values
func AllPaperSizes() []PaperSize {
	return []PaperSize{PaperSizeA4, PaperSizeA3, PaperSizeLetter}
}

// Orientation represents the page orientation for PDF rendering
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// IsValid checks if the Orientation is a valid value
func (o Orientation) IsValid() bool {
	switch o {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// String returns the string representation of Orientation
func (o Orientation) String() string {
	return string(o)
}

// TemplateStatus represents the status of a report template
type TemplateStatus string

const (
	TemplateStatusActive   TemplateStatus = "ACTIVE"
	TemplateStatusInactive TemplateStatus = "INACTIVE"
)

// IsValid checks if the TemplateStatus is a valid value
func (s TemplateStatus) IsValid() bool {
	switch s {
	case TemplateStatusActive, TemplateStatusInactive:
		return true
	}
	return false
}

// String returns the string representation of TemplateStatus
func (s TemplateStatus) String() string {
	return string(s)
}

// JobStatus represents the status of an export job
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRendering JobStatus = "RENDERING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

// IsValid checks if the JobStatus is a valid value
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusRendering, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal returns true if this is a terminal status (no further transitions)
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransitionTo checks if the status can transition to the target status
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	switch s {
	case JobStatusPending:
		return target == JobStatusRendering || target == JobStatusFailed
	case JobStatusRendering:
		return target == JobStatusCompleted || target == JobStatusFailed
	case JobStatusCompleted, JobStatusFailed:
		return false // Terminal states
	}
	return false
}
