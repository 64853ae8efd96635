package export

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReportTemplate(t *testing.T) {
	orgID := uuid.New()

	t.Run("creates active template with defaults", func(t *testing.T) {
		tpl, err := NewReportTemplate(orgID, "Annual report", "<html>{{.Period.Name}}</html>", PaperSizeA4)

		require.NoError(t, err)
		assert.Equal(t, orgID, tpl.OrganizationID)
		assert.Equal(t, "Annual report", tpl.Name)
		assert.Equal(t, PaperSizeA4, tpl.PaperSize)
		assert.Equal(t, OrientationPortrait, tpl.Orientation)
		assert.Equal(t, DefaultMargins(), tpl.Margins)
		assert.Equal(t, TemplateStatusActive, tpl.Status)
		assert.False(t, tpl.IsDefault)

		events := tpl.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeReportTemplateCreated, events[0].EventType())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewReportTemplate(orgID, "", "<html></html>", PaperSizeA4)
		assert.Error(t, err)
	})

	t.Run("rejects oversized name", func(t *testing.T) {
		_, err := NewReportTemplate(orgID, strings.Repeat("a", 101), "<html></html>", PaperSizeA4)
		assert.Error(t, err)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		_, err := NewReportTemplate(orgID, "Annual report", "", PaperSizeA4)
		assert.Error(t, err)
	})

	t.Run("rejects unknown paper size", func(t *testing.T) {
		_, err := NewReportTemplate(orgID, "Annual report", "<html></html>", PaperSize("B5"))
		assert.Error(t, err)
	})
}

func TestReportTemplate_DefaultRules(t *testing.T) {
	orgID := uuid.New()

	newTemplate := func() *ReportTemplate {
		tpl, err := NewReportTemplate(orgID, "Annual report", "<html></html>", PaperSizeA4)
		require.NoError(t, err)
		tpl.ClearDomainEvents()
		return tpl
	}

	t.Run("active template can become default", func(t *testing.T) {
		tpl := newTemplate()
		require.NoError(t, tpl.SetAsDefault())
		assert.True(t, tpl.IsDefault)
	})

	t.Run("inactive template cannot become default", func(t *testing.T) {
		tpl := newTemplate()
		require.NoError(t, tpl.Deactivate())
		assert.Error(t, tpl.SetAsDefault())
	})

	t.Run("default template cannot be deactivated", func(t *testing.T) {
		tpl := newTemplate()
		require.NoError(t, tpl.SetAsDefault())
		assert.Error(t, tpl.Deactivate())

		tpl.UnsetDefault()
		require.NoError(t, tpl.Deactivate())
		assert.False(t, tpl.CanBeUsed())
	})
}

func TestReportTemplate_Update(t *testing.T) {
	orgID := uuid.New()
	tpl, err := NewReportTemplate(orgID, "Annual report", "<html></html>", PaperSizeA4)
	require.NoError(t, err)
	tpl.ClearDomainEvents()

	require.NoError(t, tpl.Update("CSRD report", "Full-year disclosure layout"))
	assert.Equal(t, "CSRD report", tpl.Name)
	assert.Equal(t, "Full-year disclosure layout", tpl.Description)

	require.NoError(t, tpl.UpdateContent("<html>v2</html>"))
	assert.Equal(t, "<html>v2</html>", tpl.Content)

	require.NoError(t, tpl.SetOrientation(OrientationLandscape))
	assert.Equal(t, OrientationLandscape, tpl.Orientation)

	margins, err := NewMargins(20, 10, 20, 10)
	require.NoError(t, err)
	require.NoError(t, tpl.SetMargins(margins))
	assert.Equal(t, margins, tpl.Margins)

	assert.Error(t, tpl.SetOrientation(Orientation("DIAGONAL")))
	assert.Error(t, tpl.UpdateContent(""))

	events := tpl.GetDomainEvents()
	assert.NotEmpty(t, events)
	assert.Equal(t, EventTypeReportTemplateUpdated, events[0].EventType())
}

func TestMargins(t *testing.T) {
	t.Run("valid range", func(t *testing.T) {
		m, err := NewMargins(0, 0, 0, 0)
		require.NoError(t, err)
		assert.True(t, m.IsZero())
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := NewMargins(-1, 0, 0, 0)
		assert.Error(t, err)
		_, err = NewMargins(0, 101, 0, 0)
		assert.Error(t, err)
	})

	t.Run("equality", func(t *testing.T) {
		a, _ := NewMargins(15, 12, 15, 12)
		assert.True(t, a.Equals(DefaultMargins()))
	})
}

func TestPaperSizeDimensions(t *testing.T) {
	w, h := PaperSizeA4.Dimensions()
	assert.Equal(t, 210, w)
	assert.Equal(t, 297, h)

	w, h = PaperSizeA3.Dimensions()
	assert.Equal(t, 297, w)
	assert.Equal(t, 420, h)

	w, h = PaperSizeLetter.Dimensions()
	assert.Equal(t, 216, w)
	assert.Equal(t, 279, h)
}
