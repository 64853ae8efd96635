package reporting

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers for ReportSection

func createTestSection(t *testing.T) *ReportSection {
	organizationID := uuid.New()
	periodID := uuid.New()
	section, err := NewReportSection(organizationID, periodID, "E1", "Climate Change")
	require.NoError(t, err)
	return section
}

func createTestChildSection(t *testing.T, parent *ReportSection, code string) *ReportSection {
	child, err := NewChildSection(parent.OrganizationID, parent.PeriodID, parent, code, "Child of "+parent.Code)
	require.NoError(t, err)
	return child
}

// ============================================
// SectionStatus Tests
// ============================================

func TestSectionStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  SectionStatus
		isValid bool
	}{
		{SectionStatusNotStarted, true},
		{SectionStatusInProgress, true},
		{SectionStatusReadyForReview, true},
		{SectionStatusApproved, true},
		{SectionStatus("invalid"), false},
		{SectionStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestSectionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     SectionStatus
		to       SectionStatus
		canTrans bool
	}{
		// From not_started
		{SectionStatusNotStarted, SectionStatusInProgress, true},
		{SectionStatusNotStarted, SectionStatusReadyForReview, false},
		{SectionStatusNotStarted, SectionStatusApproved, false},
		// From in_progress
		{SectionStatusInProgress, SectionStatusReadyForReview, true},
		{SectionStatusInProgress, SectionStatusApproved, false},
		{SectionStatusInProgress, SectionStatusNotStarted, false},
		// From ready_for_review
		{SectionStatusReadyForReview, SectionStatusApproved, true},
		{SectionStatusReadyForReview, SectionStatusInProgress, true}, // Sent back
		{SectionStatusReadyForReview, SectionStatusNotStarted, false},
		// From approved (regression only via Reopen)
		{SectionStatusApproved, SectionStatusInProgress, false},
		{SectionStatusApproved, SectionStatusReadyForReview, false},
		{SectionStatusApproved, SectionStatusNotStarted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// ReportSection Creation Tests
// ============================================

func TestNewReportSection(t *testing.T) {
	organizationID := uuid.New()
	periodID := uuid.New()

	section, err := NewReportSection(organizationID, periodID, "e1", "Climate Change")

	require.NoError(t, err)
	assert.Equal(t, organizationID, section.OrganizationID)
	assert.Equal(t, periodID, section.PeriodID)
	assert.Equal(t, "E1", section.Code) // Normalized to uppercase
	assert.Equal(t, "Climate Change", section.Title)
	assert.Equal(t, 1, section.Depth)
	assert.Nil(t, section.ParentID)
	assert.True(t, section.IsTopLevel())
	assert.True(t, section.IsActive)
	assert.Equal(t, SectionStatusNotStarted, section.Status)
	assert.True(t, section.Weight.Equal(decimal.NewFromInt(1)))
}

func TestNewReportSection_EmptyCode(t *testing.T) {
	_, err := NewReportSection(uuid.New(), uuid.New(), "", "Title")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestNewReportSection_InvalidCode(t *testing.T) {
	_, err := NewReportSection(uuid.New(), uuid.New(), "E1 §48", "Title")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "letters, numbers")
}

func TestNewReportSection_EmptyTitle(t *testing.T) {
	_, err := NewReportSection(uuid.New(), uuid.New(), "E1", "")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestNewReportSection_NilPeriod(t *testing.T) {
	_, err := NewReportSection(uuid.New(), uuid.Nil, "E1", "Title")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Period ID")
}

func TestNewChildSection(t *testing.T) {
	parent := createTestSection(t)

	child, err := NewChildSection(parent.OrganizationID, parent.PeriodID, parent, "E1.1", "Transition Plan")

	require.NoError(t, err)
	assert.Equal(t, 2, child.Depth)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID)
	assert.False(t, child.IsTopLevel())
}

func TestNewChildSection_ThreeLevels(t *testing.T) {
	root := createTestSection(t)
	mid := createTestChildSection(t, root, "E1.1")
	leaf := createTestChildSection(t, mid, "E1.1.1")

	assert.Equal(t, 3, leaf.Depth)

	// A fourth level exceeds the maximum depth
	_, err := NewChildSection(leaf.OrganizationID, leaf.PeriodID, leaf, "E1.1.1.1", "Too Deep")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "three levels")
}

func TestNewChildSection_ParentFromDifferentPeriod(t *testing.T) {
	parent := createTestSection(t)

	_, err := NewChildSection(parent.OrganizationID, uuid.New(), parent, "E1.1", "Title")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "different period")
}

func TestNewChildSection_NilParent(t *testing.T) {
	_, err := NewChildSection(uuid.New(), uuid.New(), nil, "E1.1", "Title")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

// ============================================
// ReportSection Update Tests
// ============================================

func TestReportSection_Update(t *testing.T) {
	section := createTestSection(t)

	err := section.Update("Climate Change Mitigation", "Scope 1-3 emissions and targets", "ESRS E1")

	require.NoError(t, err)
	assert.Equal(t, "Climate Change Mitigation", section.Title)
	assert.Equal(t, "Scope 1-3 emissions and targets", section.Description)
	assert.Equal(t, "ESRS E1", section.FrameworkRef)
}

func TestReportSection_SetWeight(t *testing.T) {
	section := createTestSection(t)

	err := section.SetWeight(decimal.NewFromFloat(2.5))

	require.NoError(t, err)
	assert.True(t, section.Weight.Equal(decimal.NewFromFloat(2.5)))
}

func TestReportSection_SetWeight_Zero(t *testing.T) {
	section := createTestSection(t)

	err := section.SetWeight(decimal.Zero)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "positive")
}

func TestReportSection_SetWeight_Negative(t *testing.T) {
	section := createTestSection(t)

	err := section.SetWeight(decimal.NewFromInt(-1))

	assert.Error(t, err)
}

func TestReportSection_AssignOwner(t *testing.T) {
	section := createTestSection(t)
	ownerID := uuid.New()

	err := section.AssignOwner(ownerID)

	require.NoError(t, err)
	require.NotNil(t, section.OwnerUserID)
	assert.Equal(t, ownerID, *section.OwnerUserID)
}

func TestReportSection_AssignOwner_NilUser(t *testing.T) {
	section := createTestSection(t)

	err := section.AssignOwner(uuid.Nil)

	assert.Error(t, err)
}

func TestReportSection_ClearOwner(t *testing.T) {
	section := createTestSection(t)
	require.NoError(t, section.AssignOwner(uuid.New()))

	section.ClearOwner()

	assert.Nil(t, section.OwnerUserID)
}

// ============================================
// ReportSection Move Tests
// ============================================

func TestReportSection_MoveTo(t *testing.T) {
	root := createTestSection(t)
	other, err := NewReportSection(root.OrganizationID, root.PeriodID, "S1", "Own Workforce")
	require.NoError(t, err)

	err = other.MoveTo(root)

	require.NoError(t, err)
	require.NotNil(t, other.ParentID)
	assert.Equal(t, root.ID, *other.ParentID)
	assert.Equal(t, 2, other.Depth)
}

func TestReportSection_MoveTo_TopLevel(t *testing.T) {
	root := createTestSection(t)
	child := createTestChildSection(t, root, "E1.1")

	err := child.MoveTo(nil)

	require.NoError(t, err)
	assert.Nil(t, child.ParentID)
	assert.Equal(t, 1, child.Depth)
	assert.True(t, child.IsTopLevel())
}

func TestReportSection_MoveTo_Self(t *testing.T) {
	section := createTestSection(t)

	err := section.MoveTo(section)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "own parent")
}

func TestReportSection_MoveTo_DifferentPeriod(t *testing.T) {
	section := createTestSection(t)
	foreign := createTestSection(t) // Different org and period

	err := section.MoveTo(foreign)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "different period")
}

func TestReportSection_MoveTo_ExceedsDepth(t *testing.T) {
	root := createTestSection(t)
	mid := createTestChildSection(t, root, "E1.1")
	leaf := createTestChildSection(t, mid, "E1.1.1")
	other, err := NewReportSection(root.OrganizationID, root.PeriodID, "E2", "Pollution")
	require.NoError(t, err)

	err = other.MoveTo(leaf)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "three levels")
}

// ============================================
// ReportSection Workflow Tests
// ============================================

func TestReportSection_Workflow(t *testing.T) {
	section := createTestSection(t)

	require.NoError(t, section.Start())
	assert.Equal(t, SectionStatusInProgress, section.Status)

	require.NoError(t, section.SubmitForReview())
	assert.Equal(t, SectionStatusReadyForReview, section.Status)

	require.NoError(t, section.Approve())
	assert.Equal(t, SectionStatusApproved, section.Status)
	assert.NotNil(t, section.ApprovedAt)
	assert.True(t, section.IsApproved())
}

func TestReportSection_Start_AlreadyStarted(t *testing.T) {
	section := createTestSection(t)
	require.NoError(t, section.Start())

	err := section.Start()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot move")
}

func TestReportSection_SubmitForReview_NotStarted(t *testing.T) {
	section := createTestSection(t)

	err := section.SubmitForReview()

	assert.Error(t, err)
}

func TestReportSection_Approve_NotInReview(t *testing.T) {
	section := createTestSection(t)
	require.NoError(t, section.Start())

	err := section.Approve()

	assert.Error(t, err)
}

func TestReportSection_SendBack(t *testing.T) {
	section := createTestSection(t)
	require.NoError(t, section.Start())
	require.NoError(t, section.SubmitForReview())

	err := section.SendBack()

	require.NoError(t, err)
	assert.Equal(t, SectionStatusInProgress, section.Status)
}

func TestReportSection_SendBack_NotInReview(t *testing.T) {
	section := createTestSection(t)

	err := section.SendBack()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "review")
}

func TestReportSection_Reopen(t *testing.T) {
	section := createTestSection(t)
	require.NoError(t, section.Start())
	require.NoError(t, section.SubmitForReview())
	require.NoError(t, section.Approve())

	err := section.Reopen("Emission factor correction for Scope 2")

	require.NoError(t, err)
	assert.Equal(t, SectionStatusInProgress, section.Status)
	assert.Nil(t, section.ApprovedAt)
	assert.Equal(t, "Emission factor correction for Scope 2", section.ReopenReason)
}

func TestReportSection_Reopen_ReasonRequired(t *testing.T) {
	section := createTestSection(t)
	require.NoError(t, section.Start())
	require.NoError(t, section.SubmitForReview())
	require.NoError(t, section.Approve())

	err := section.Reopen("")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires a reason")
	assert.Equal(t, SectionStatusApproved, section.Status)
}

func TestReportSection_Reopen_NotApproved(t *testing.T) {
	section := createTestSection(t)

	err := section.Reopen("reason")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "approved")
}

func TestReportSection_ReopenEventCarriesReason(t *testing.T) {
	section := createTestSection(t)
	require.NoError(t, section.Start())
	require.NoError(t, section.SubmitForReview())
	require.NoError(t, section.Approve())
	section.ClearDomainEvents()

	require.NoError(t, section.Reopen("Reviewer flagged a stale baseline"))

	events := section.GetDomainEvents()
	require.Len(t, events, 1)
	reopened, ok := events[0].(*SectionReopenedEvent)
	require.True(t, ok)
	assert.Equal(t, section.ID, reopened.AggregateID())
	assert.Equal(t, section.OrganizationID, reopened.OrganizationID())
	assert.Equal(t, SectionStatusApproved, reopened.OldStatus)
	assert.Equal(t, "Reviewer flagged a stale baseline", reopened.Reason)
}

// ============================================
// ReportSection Activation Tests
// ============================================

func TestReportSection_Deactivate(t *testing.T) {
	section := createTestSection(t)

	err := section.Deactivate()

	require.NoError(t, err)
	assert.False(t, section.IsActive)
}

func TestReportSection_Deactivate_AlreadyInactive(t *testing.T) {
	section := createTestSection(t)
	require.NoError(t, section.Deactivate())

	err := section.Deactivate()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already")
}

func TestReportSection_Reactivate(t *testing.T) {
	section := createTestSection(t)
	require.NoError(t, section.Deactivate())

	err := section.Reactivate()

	require.NoError(t, err)
	assert.True(t, section.IsActive)
}

func TestReportSection_TableName(t *testing.T) {
	assert.Equal(t, "report_sections", ReportSection{}.TableName())
}
