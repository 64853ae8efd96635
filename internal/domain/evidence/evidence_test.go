package evidence

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSHA256 = "a3f5bc9e2d714f8a0b6c1d2e3f4a5b6c7d8e9f0a1b2c3d4e5f6a7b8c9d0e1f2a"

func createTestEvidence(t *testing.T) *Evidence {
	uploadedBy := uuid.New()
	ev, err := NewEvidence(
		uuid.New(),
		uuid.New(),
		uuid.New(),
		"energy-invoice-2025-03.pdf",
		"application/pdf",
		1024*512,
		testSHA256,
		"org/period/dp/energy-invoice-2025-03.pdf",
		&uploadedBy,
	)
	require.NoError(t, err)
	return ev
}

// ============================================
// Evidence Creation Tests
// ============================================

func TestNewEvidence(t *testing.T) {
	organizationID := uuid.New()
	dataPointID := uuid.New()
	periodID := uuid.New()
	uploadedBy := uuid.New()

	ev, err := NewEvidence(organizationID, dataPointID, periodID,
		"report.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		2048, strings.ToUpper(testSHA256), "org/key/report.xlsx", &uploadedBy)

	require.NoError(t, err)
	assert.Equal(t, organizationID, ev.OrganizationID)
	assert.Equal(t, dataPointID, ev.DataPointID)
	assert.Equal(t, periodID, ev.PeriodID)
	assert.Equal(t, EvidenceStatusPendingUpload, ev.Status)
	assert.Equal(t, testSHA256, ev.SHA256) // Normalized to lowercase
	assert.True(t, ev.IsPending())
	require.NotNil(t, ev.UploadedBy)
	assert.Equal(t, uploadedBy, *ev.UploadedBy)
	assert.NotEmpty(t, ev.GetDomainEvents())
}

func TestNewEvidence_NilDataPoint(t *testing.T) {
	_, err := NewEvidence(uuid.New(), uuid.Nil, uuid.New(),
		"f.pdf", "application/pdf", 100, testSHA256, "key/f.pdf", nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Data point ID")
}

func TestNewEvidence_EmptyFileName(t *testing.T) {
	_, err := NewEvidence(uuid.New(), uuid.New(), uuid.New(),
		"", "application/pdf", 100, testSHA256, "key/f.pdf", nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "File name")
}

func TestNewEvidence_FileNameWithPathSeparator(t *testing.T) {
	_, err := NewEvidence(uuid.New(), uuid.New(), uuid.New(),
		"../etc/passwd", "application/pdf", 100, testSHA256, "key/f.pdf", nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "path separators")
}

func TestNewEvidence_TooLarge(t *testing.T) {
	_, err := NewEvidence(uuid.New(), uuid.New(), uuid.New(),
		"big.zip", "application/zip", MaxEvidenceFileSize+1, testSHA256, "key/big.zip", nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "50MB")
}

func TestNewEvidence_ZeroSize(t *testing.T) {
	_, err := NewEvidence(uuid.New(), uuid.New(), uuid.New(),
		"empty.pdf", "application/pdf", 0, testSHA256, "key/empty.pdf", nil)

	assert.Error(t, err)
}

func TestNewEvidence_InvalidContentType(t *testing.T) {
	_, err := NewEvidence(uuid.New(), uuid.New(), uuid.New(),
		"f.pdf", "pdf", 100, testSHA256, "key/f.pdf", nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "type/subtype")
}

func TestNewEvidence_InvalidChecksum(t *testing.T) {
	_, err := NewEvidence(uuid.New(), uuid.New(), uuid.New(),
		"f.pdf", "application/pdf", 100, "not-a-hash", "key/f.pdf", nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "64 hex")
}

func TestNewEvidence_StorageKeyTraversal(t *testing.T) {
	_, err := NewEvidence(uuid.New(), uuid.New(), uuid.New(),
		"f.pdf", "application/pdf", 100, testSHA256, "key/../../secrets", nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "traversal")
}

func TestNewEvidence_AbsoluteStorageKey(t *testing.T) {
	_, err := NewEvidence(uuid.New(), uuid.New(), uuid.New(),
		"f.pdf", "application/pdf", 100, testSHA256, "/key/f.pdf", nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "relative")
}

// ============================================
// Evidence Lifecycle Tests
// ============================================

func TestEvidence_Finalize(t *testing.T) {
	ev := createTestEvidence(t)

	err := ev.Finalize()

	require.NoError(t, err)
	assert.Equal(t, EvidenceStatusAvailable, ev.Status)
	assert.NotNil(t, ev.FinalizedAt)
	assert.True(t, ev.IsAvailable())
	assert.False(t, ev.IsPending())
}

func TestEvidence_Finalize_AlreadyFinalized(t *testing.T) {
	ev := createTestEvidence(t)
	require.NoError(t, ev.Finalize())

	err := ev.Finalize()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already finalized")
}

func TestEvidence_Finalize_Deleted(t *testing.T) {
	ev := createTestEvidence(t)
	require.NoError(t, ev.Delete(uuid.New()))

	err := ev.Finalize()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "deleted")
}

func TestEvidence_Delete(t *testing.T) {
	ev := createTestEvidence(t)
	require.NoError(t, ev.Finalize())
	deletedBy := uuid.New()

	err := ev.Delete(deletedBy)

	require.NoError(t, err)
	assert.Equal(t, EvidenceStatusDeleted, ev.Status)
	assert.True(t, ev.IsDeleted())
	require.NotNil(t, ev.DeletedBy)
	assert.Equal(t, deletedBy, *ev.DeletedBy)
}

func TestEvidence_Delete_AlreadyDeleted(t *testing.T) {
	ev := createTestEvidence(t)
	require.NoError(t, ev.Delete(uuid.New()))

	err := ev.Delete(uuid.New())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already deleted")
}

// ============================================
// Evidence Relink Tests
// ============================================

func TestEvidence_Relink(t *testing.T) {
	ev := createTestEvidence(t)
	require.NoError(t, ev.Finalize())
	oldDataPointID := ev.DataPointID
	newDataPointID := uuid.New()
	ev.ClearDomainEvents()

	err := ev.Relink(newDataPointID)

	require.NoError(t, err)
	assert.Equal(t, newDataPointID, ev.DataPointID)

	events := ev.GetDomainEvents()
	require.Len(t, events, 1)
	relinked, ok := events[0].(*EvidenceRelinkedEvent)
	require.True(t, ok)
	assert.Equal(t, oldDataPointID, relinked.OldDataPointID)
	assert.Equal(t, newDataPointID, relinked.NewDataPointID)
}

func TestEvidence_Relink_SameDataPoint(t *testing.T) {
	ev := createTestEvidence(t)

	err := ev.Relink(ev.DataPointID)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already linked")
}

func TestEvidence_Relink_Deleted(t *testing.T) {
	ev := createTestEvidence(t)
	require.NoError(t, ev.Delete(uuid.New()))

	err := ev.Relink(uuid.New())

	assert.Error(t, err)
}

// ============================================
// Evidence Description Tests
// ============================================

func TestEvidence_SetDescription(t *testing.T) {
	ev := createTestEvidence(t)

	err := ev.SetDescription("Q1 electricity invoice, meter 4471")

	require.NoError(t, err)
	assert.Equal(t, "Q1 electricity invoice, meter 4471", ev.Description)
}

func TestEvidence_SetDescription_TooLong(t *testing.T) {
	ev := createTestEvidence(t)

	err := ev.SetDescription(strings.Repeat("x", 501))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestEvidence_TableName(t *testing.T) {
	assert.Equal(t, "evidence_files", Evidence{}.TableName())
}

func TestEvidenceStatus_IsValid(t *testing.T) {
	assert.True(t, EvidenceStatusPendingUpload.IsValid())
	assert.True(t, EvidenceStatusAvailable.IsValid())
	assert.True(t, EvidenceStatusDeleted.IsValid())
	assert.False(t, EvidenceStatus("uploaded").IsValid())
}
