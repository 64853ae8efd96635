package export

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExportJob(t *testing.T) {
	orgID := uuid.New()
	periodID := uuid.New()
	userID := uuid.New()

	t.Run("creates pending PDF job", func(t *testing.T) {
		job, err := NewExportJob(orgID, DocTypePeriodReport, FormatPDF, periodID, userID)

		require.NoError(t, err)
		assert.Equal(t, orgID, job.OrganizationID)
		assert.Equal(t, DocTypePeriodReport, job.DocType)
		assert.Equal(t, FormatPDF, job.Format)
		assert.Equal(t, periodID, job.PeriodID)
		assert.Equal(t, JobStatusPending, job.Status)
		require.NotNil(t, job.RequestedBy)
		assert.Equal(t, userID, *job.RequestedBy)

		events := job.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeExportJobCreated, events[0].EventType())
	})

	t.Run("creates CSV extract job", func(t *testing.T) {
		job, err := NewExportJob(orgID, DocTypeDataPoints, FormatCSV, periodID, userID)

		require.NoError(t, err)
		assert.Equal(t, FormatCSV, job.Format)
	})

	t.Run("rejects invalid doc type", func(t *testing.T) {
		_, err := NewExportJob(orgID, DocType("INVOICE"), FormatPDF, periodID, userID)
		assert.Error(t, err)
	})

	t.Run("rejects unsupported format combination", func(t *testing.T) {
		_, err := NewExportJob(orgID, DocTypePeriodReport, FormatCSV, periodID, userID)
		assert.Error(t, err)

		_, err = NewExportJob(orgID, DocTypeAuditTrail, FormatPDF, periodID, userID)
		assert.Error(t, err)
	})

	t.Run("rejects empty period", func(t *testing.T) {
		_, err := NewExportJob(orgID, DocTypePeriodReport, FormatPDF, uuid.Nil, userID)
		assert.Error(t, err)
	})

	t.Run("anonymous requester allowed", func(t *testing.T) {
		job, err := NewExportJob(orgID, DocTypePeriodReport, FormatPDF, periodID, uuid.Nil)
		require.NoError(t, err)
		assert.Nil(t, job.RequestedBy)
	})
}

func TestExportJob_SetSection(t *testing.T) {
	orgID := uuid.New()
	periodID := uuid.New()
	sectionID := uuid.New()

	t.Run("narrows data point extract", func(t *testing.T) {
		job, _ := NewExportJob(orgID, DocTypeDataPoints, FormatCSV, periodID, uuid.New())

		require.NoError(t, job.SetSection(sectionID))
		require.NotNil(t, job.SectionID)
		assert.Equal(t, sectionID, *job.SectionID)
	})

	t.Run("rejected for other doc types", func(t *testing.T) {
		job, _ := NewExportJob(orgID, DocTypePeriodReport, FormatPDF, periodID, uuid.New())
		assert.Error(t, job.SetSection(sectionID))
	})

	t.Run("rejects empty section", func(t *testing.T) {
		job, _ := NewExportJob(orgID, DocTypeDataPoints, FormatCSV, periodID, uuid.New())
		assert.Error(t, job.SetSection(uuid.Nil))
	})
}

func TestExportJob_Lifecycle(t *testing.T) {
	orgID := uuid.New()
	periodID := uuid.New()

	newJob := func() *ExportJob {
		job, err := NewExportJob(orgID, DocTypePeriodReport, FormatPDF, periodID, uuid.New())
		require.NoError(t, err)
		job.ClearDomainEvents()
		return job
	}

	t.Run("pending to rendering to completed", func(t *testing.T) {
		job := newJob()

		require.NoError(t, job.StartRendering())
		assert.Equal(t, JobStatusRendering, job.Status)

		require.NoError(t, job.Complete("exports/report.pdf", 2048))
		assert.Equal(t, JobStatusCompleted, job.Status)
		assert.Equal(t, "exports/report.pdf", job.FileURL)
		assert.Equal(t, int64(2048), job.FileSize)
		assert.NotNil(t, job.CompletedAt)
		assert.True(t, job.HasFile())

		events := job.GetDomainEvents()
		require.Len(t, events, 3)
		assert.Equal(t, EventTypeExportJobCompleted, events[2].EventType())
	})

	t.Run("cannot complete from pending", func(t *testing.T) {
		job := newJob()
		assert.Error(t, job.Complete("exports/report.pdf", 100))
	})

	t.Run("complete requires file URL", func(t *testing.T) {
		job := newJob()
		require.NoError(t, job.StartRendering())
		assert.Error(t, job.Complete("", 100))
	})

	t.Run("fail from any non-terminal state", func(t *testing.T) {
		job := newJob()
		require.NoError(t, job.Fail("renderer unavailable"))
		assert.Equal(t, JobStatusFailed, job.Status)
		assert.Equal(t, "renderer unavailable", job.ErrorMessage)
		assert.True(t, job.IsTerminal())
	})

	t.Run("terminal states are final", func(t *testing.T) {
		job := newJob()
		require.NoError(t, job.StartRendering())
		require.NoError(t, job.Complete("exports/report.pdf", 100))

		assert.Error(t, job.StartRendering())
		assert.Error(t, job.Fail("too late"))
	})
}

func TestJobStatusTransitions(t *testing.T) {
	assert.True(t, JobStatusPending.CanTransitionTo(JobStatusRendering))
	assert.True(t, JobStatusPending.CanTransitionTo(JobStatusFailed))
	assert.False(t, JobStatusPending.CanTransitionTo(JobStatusCompleted))
	assert.True(t, JobStatusRendering.CanTransitionTo(JobStatusCompleted))
	assert.False(t, JobStatusCompleted.CanTransitionTo(JobStatusRendering))
	assert.False(t, JobStatusFailed.CanTransitionTo(JobStatusPending))
}

func TestDocTypeFormats(t *testing.T) {
	assert.True(t, DocTypePeriodReport.SupportsFormat(FormatPDF))
	assert.False(t, DocTypePeriodReport.SupportsFormat(FormatCSV))
	assert.True(t, DocTypeDataPoints.SupportsFormat(FormatCSV))
	assert.True(t, DocTypeAuditTrail.SupportsFormat(FormatCSV))
	assert.True(t, DocTypeReconciliation.SupportsFormat(FormatCSV))
	assert.False(t, DocTypeReconciliation.SupportsFormat(FormatPDF))
}
