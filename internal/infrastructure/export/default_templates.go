package export

import (
	"embed"
	"fmt"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/export"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultTemplate represents a built-in report template configuration
type DefaultTemplate struct {
	DocType     export.DocType
	Name        string
	Description string
	PaperSize   export.PaperSize
	Orientation export.Orientation
	Margins     export.Margins
	FilePath    string // Path within embed.FS
	IsDefault   bool   // Whether this is the default for its doc type
}

// GetDefaultTemplates returns all built-in template configurations
func GetDefaultTemplates() []DefaultTemplate {
	return []DefaultTemplate{
		{
			DocType:     export.DocTypePeriodReport,
			Name:        "Period report (A4)",
			Description: "Standard A4 disclosure report with section tables, completeness summary, gap appendix and assumption register",
			PaperSize:   export.PaperSizeA4,
			Orientation: export.OrientationPortrait,
			Margins:     export.DefaultMargins(),
			FilePath:    "templates/period_report_a4.html",
			IsDefault:   true,
		},
		{
			DocType:     export.DocTypePeriodReport,
			Name:        "Period report (A3 landscape)",
			Description: "Wide-format report for periods with many quantitative data points per section",
			PaperSize:   export.PaperSizeA3,
			Orientation: export.OrientationLandscape,
			Margins:     export.DefaultMargins(),
			FilePath:    "templates/period_report_a3.html",
			IsDefault:   false,
		},
	}
}

// LoadTemplateContent loads a template's HTML content from the embedded filesystem
func LoadTemplateContent(path string) (string, error) {
	content, err := templateFS.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read embedded template %s: %w", path, err)
	}
	return string(content), nil
}
