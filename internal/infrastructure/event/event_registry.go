package event

import (
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/approval"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/evidence"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/export"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/identity"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/organization"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/register"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/remediation"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/reporting"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/rollover"
)

// RegisterAllEvents registers all domain event types with the serializer
// This is required for the OutboxProcessor to deserialize events from the outbox table
func RegisterAllEvents(serializer *EventSerializer) {
	// Reporting domain - period events
	serializer.Register("PeriodCreated", &reporting.PeriodCreatedEvent{})
	serializer.Register("PeriodUpdated", &reporting.PeriodUpdatedEvent{})
	serializer.Register("PeriodOpened", &reporting.PeriodOpenedEvent{})
	serializer.Register("PeriodClosed", &reporting.PeriodClosedEvent{})
	serializer.Register("PeriodReopened", &reporting.PeriodReopenedEvent{})
	serializer.Register("PeriodStatusChanged", &reporting.PeriodStatusChangedEvent{})
	serializer.Register("PeriodDeadlineApproaching", &reporting.PeriodDeadlineApproachingEvent{})

	// Reporting domain - section events
	serializer.Register("SectionCreated", &reporting.SectionCreatedEvent{})
	serializer.Register("SectionUpdated", &reporting.SectionUpdatedEvent{})
	serializer.Register("SectionMoved", &reporting.SectionMovedEvent{})
	serializer.Register("SectionOwnerAssigned", &reporting.SectionOwnerAssignedEvent{})
	serializer.Register("SectionStatusChanged", &reporting.SectionStatusChangedEvent{})
	serializer.Register("SectionReopened", &reporting.SectionReopenedEvent{})
	serializer.Register("SectionDeactivated", &reporting.SectionDeactivatedEvent{})

	// Reporting domain - data point events
	serializer.Register("DataPointCreated", &reporting.DataPointCreatedEvent{})
	serializer.Register("DataPointUpdated", &reporting.DataPointUpdatedEvent{})
	serializer.Register("DataPointValueRecorded", &reporting.DataPointValueRecordedEvent{})
	serializer.Register("DataPointValueCleared", &reporting.DataPointValueClearedEvent{})
	serializer.Register("DataPointStatusChanged", &reporting.DataPointStatusChangedEvent{})
	serializer.Register("DataPointMarkedEstimated", &reporting.DataPointMarkedEstimatedEvent{})
	serializer.Register("DataPointDeactivated", &reporting.DataPointDeactivatedEvent{})

	// Organization domain events
	serializer.Register("OrganizationCreated", &organization.OrganizationCreatedEvent{})
	serializer.Register("OrganizationUpdated", &organization.OrganizationUpdatedEvent{})
	serializer.Register("OrganizationStatusChanged", &organization.OrganizationStatusChangedEvent{})
	serializer.Register("OrganizationFrameworkChanged", &organization.OrganizationFrameworkChangedEvent{})

	// Identity domain - user events
	serializer.Register("UserCreated", &identity.UserCreatedEvent{})
	serializer.Register("UserDeactivated", &identity.UserDeactivatedEvent{})
	serializer.Register("UserPasswordChanged", &identity.UserPasswordChangedEvent{})
	serializer.Register("UserRoleAssigned", &identity.UserRoleAssignedEvent{})
	serializer.Register("UserRoleRemoved", &identity.UserRoleRemovedEvent{})
	serializer.Register("UserStatusChanged", &identity.UserStatusChangedEvent{})

	// Identity domain - role events
	serializer.Register("RoleCreated", &identity.RoleCreatedEvent{})
	serializer.Register("RoleUpdated", &identity.RoleUpdatedEvent{})
	serializer.Register("RoleDeleted", &identity.RoleDeletedEvent{})
	serializer.Register("RoleEnabled", &identity.RoleEnabledEvent{})
	serializer.Register("RoleDisabled", &identity.RoleDisabledEvent{})
	serializer.Register("RolePermissionGranted", &identity.RolePermissionGrantedEvent{})
	serializer.Register("RolePermissionRevoked", &identity.RolePermissionRevokedEvent{})
	serializer.Register("RoleDataScopeChanged", &identity.RoleDataScopeChangedEvent{})
	serializer.Register("RoleUsersChanged", &identity.RoleUsersChangedEvent{})

	// Evidence domain events
	serializer.Register("EvidenceRegistered", &evidence.EvidenceRegisteredEvent{})
	serializer.Register("EvidenceFinalized", &evidence.EvidenceFinalizedEvent{})
	serializer.Register("EvidenceDeleted", &evidence.EvidenceDeletedEvent{})
	serializer.Register("EvidenceRelinked", &evidence.EvidenceRelinkedEvent{})

	// Register domain - assumption events
	serializer.Register("AssumptionCreated", &register.AssumptionCreatedEvent{})
	serializer.Register("AssumptionUpdated", &register.AssumptionUpdatedEvent{})
	serializer.Register("AssumptionRetired", &register.AssumptionRetiredEvent{})
	serializer.Register("AssumptionLinked", &register.AssumptionLinkedEvent{})
	serializer.Register("AssumptionUnlinked", &register.AssumptionUnlinkedEvent{})

	// Register domain - estimation decision events
	serializer.Register("DecisionCreated", &register.DecisionCreatedEvent{})
	serializer.Register("DecisionUpdated", &register.DecisionUpdatedEvent{})

	// Register domain - gap events
	serializer.Register("GapCreated", &register.GapCreatedEvent{})
	serializer.Register("GapUpdated", &register.GapUpdatedEvent{})
	serializer.Register("GapStatusChanged", &register.GapStatusChangedEvent{})
	serializer.Register("GapClosed", &register.GapClosedEvent{})

	// Remediation domain events
	serializer.Register("RemediationPlanCreated", &remediation.PlanCreatedEvent{})
	serializer.Register("RemediationPlanUpdated", &remediation.PlanUpdatedEvent{})
	serializer.Register("RemediationPlanGapAttached", &remediation.PlanGapAttachedEvent{})
	serializer.Register("RemediationPlanGapDetached", &remediation.PlanGapDetachedEvent{})
	serializer.Register("RemediationPlanActivated", &remediation.PlanActivatedEvent{})
	serializer.Register("RemediationPlanCompleted", &remediation.PlanCompletedEvent{})
	serializer.Register("RemediationPlanCancelled", &remediation.PlanCancelledEvent{})
	serializer.Register("RemediationPlanOverdue", &remediation.PlanOverdueEvent{})

	// Approval domain events
	serializer.Register("ApprovalRequested", &approval.ApprovalRequestedEvent{})
	serializer.Register("ApprovalReassigned", &approval.ApprovalReassignedEvent{})
	serializer.Register("ApprovalGranted", &approval.ApprovalGrantedEvent{})
	serializer.Register("ApprovalRejected", &approval.ApprovalRejectedEvent{})
	serializer.Register("ApprovalCancelled", &approval.ApprovalCancelledEvent{})

	// Export domain events
	serializer.Register("ExportJobCreated", &export.ExportJobCreatedEvent{})
	serializer.Register("ExportJobStatusChanged", &export.ExportJobStatusChangedEvent{})
	serializer.Register("ExportJobCompleted", &export.ExportJobCompletedEvent{})
	serializer.Register("ExportJobFailed", &export.ExportJobFailedEvent{})
	serializer.Register("ReportTemplateCreated", &export.ReportTemplateCreatedEvent{})
	serializer.Register("ReportTemplateUpdated", &export.ReportTemplateUpdatedEvent{})

	// Rollover domain events
	serializer.Register("RolloverRequested", &rollover.RolloverStartRequestedEvent{})
	serializer.Register("RolloverStarted", &rollover.RolloverStartedEvent{})
	serializer.Register("RolloverResumed", &rollover.RolloverResumedEvent{})
	serializer.Register("RolloverCompleted", &rollover.RolloverCompletedEvent{})
	serializer.Register("RolloverFailed", &rollover.RolloverFailedEvent{})
}
