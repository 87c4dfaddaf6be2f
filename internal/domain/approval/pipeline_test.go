package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/hr-portal/internal/domain/entity"
)

func TestResolve_PurchaseRequisitionInProgress(t *testing.T) {
	resolver := NewResolver(DefaultRegistry())

	view := resolver.Resolve(entity.Submission{
		"request_id":            "PR-1",
		"line_manager_approval": "Approved",
		"finance_approval":      "Pending",
	}, entity.FormPurchaseRequisition)

	require.Len(t, view.Stages, 2)
	assert.Equal(t, StageStatus{Label: LabelLineManager, Value: StatusApproved}, view.Stages[0])
	assert.Equal(t, StageStatus{Label: LabelFinance, Value: StatusPending}, view.Stages[1])
	assert.Equal(t, LabelFinance, view.NextStageLabel)
	assert.Equal(t, OutcomeInProgress, view.OverallOutcome)
	assert.Empty(t, view.RejectionReason)
	assert.Equal(t, "PR-1", view.SubmissionID)
}

func TestResolve_MeetingRoomRejectedByDesk(t *testing.T) {
	resolver := NewResolver(DefaultRegistry())

	view := resolver.Resolve(entity.Submission{
		"id":                              3,
		"facilities_desk_approval":        "Rejected",
		"facilities_desk_rejected_reason": "Room unavailable",
		"facilities_manager_approval":     nil,
	}, entity.FormMeetingRoom)

	require.Len(t, view.Stages, 2)
	assert.Equal(t, OutcomeRejected, view.OverallOutcome)
	assert.Equal(t, "Room unavailable", view.RejectionReason)
	assert.Equal(t, NextStageRejected, view.NextStageLabel)
	assert.Equal(t, StatusRejected, view.Stages[0].Value)
	assert.Equal(t, "Room unavailable", view.Stages[0].Reason)
	assert.True(t, view.Stages[1].Skipped)
}

func TestResolve_RejectionIsTerminal(t *testing.T) {
	resolver := NewResolver(DefaultRegistry())

	view := resolver.Resolve(entity.Submission{
		"id":                    1,
		"line_manager_approval": "Rejected",
		"finance_approval":      "Approved",
	}, entity.FormPurchaseRequisition)

	assert.Equal(t, OutcomeRejected, view.OverallOutcome)
	assert.Equal(t, NextStageRejected, view.NextStageLabel)
	assert.Equal(t, StatusPending, view.Stages[1].Value, "later approval must not be evaluated")
	assert.True(t, view.Stages[1].Skipped)
}

func TestResolve_AllApprovedIsCompleted(t *testing.T) {
	resolver := NewResolver(DefaultRegistry())

	view := resolver.Resolve(entity.Submission{
		"id":                    1,
		"line_manager_approval": "approved",
		"hr_approval":           "Approved",
	}, entity.FormTrainingRequest)

	assert.Equal(t, NextStageCompleted, view.NextStageLabel)
	assert.Equal(t, OutcomeApproved, view.OverallOutcome)
	assert.True(t, view.IsComplete())
}

func TestResolve_SingleStageChains(t *testing.T) {
	resolver := NewResolver(DefaultRegistry())

	view := resolver.Resolve(entity.Submission{"id": 1, "it_helpdesk_approval": nil}, entity.FormPasswordReset)
	require.Len(t, view.Stages, 1)
	assert.Equal(t, LabelITHelpdesk, view.NextStageLabel)

	view = resolver.Resolve(entity.Submission{"id": 1, "hr_approval": "Approved"}, entity.FormInfoUpdate)
	require.Len(t, view.Stages, 1)
	assert.Equal(t, NextStageCompleted, view.NextStageLabel)
}

func TestResolve_ITIncidentStatusMap(t *testing.T) {
	resolver := NewResolver(DefaultRegistry())

	tests := []struct {
		status     interface{}
		wantValue  StageValue
		wantDetail string
	}{
		{"Open", StatusPending, "Open"},
		{nil, StatusPending, ""},
		{"In Progress", StatusPending, "In Progress"},
		{"Resolved", StatusApproved, "Resolved"},
		{"in progress", StatusPending, "In Progress"},
		{"IN PROGRESS", StatusPending, "In Progress"},
		{"closed", StatusApproved, "Closed"},
		{"Completed", StatusApproved, "Completed"},
		{"Escalated", StatusPending, "Escalated"},
	}

	for _, tt := range tests {
		t.Run(entity.Submission{"s": tt.status}.String("s"), func(t *testing.T) {
			view := resolver.Resolve(entity.Submission{"id": "INC-1", "status": tt.status}, entity.FormITIncident)
			require.Len(t, view.Stages, 1)
			assert.Equal(t, tt.wantValue, view.Stages[0].Value)
			assert.Equal(t, tt.wantDetail, view.Stages[0].Detail)
			assert.Equal(t, LabelITSupport, view.Stages[0].Label)
		})
	}
}

func TestResolve_ExitClearanceFourStages(t *testing.T) {
	resolver := NewResolver(DefaultRegistry())

	view := resolver.Resolve(entity.Submission{
		"id":                     "EX-1",
		"line_manager_clearance": true,
		"it_clearance":           true,
		"finance_clearance":      false,
		"admin_clearance":        false,
	}, entity.FormExitClearance)

	require.Len(t, view.Stages, 4)
	assert.Equal(t, OutcomeInProgress, view.OverallOutcome)
	assert.Equal(t, LabelFinance, view.NextStageLabel)

	view = resolver.Resolve(entity.Submission{
		"id":                     "EX-2",
		"line_manager_clearance": true,
		"it_clearance":           false,
		"it_rejected_reason":     "Laptop not returned",
		"finance_clearance":      true,
		"admin_clearance":        true,
	}, entity.FormExitClearance)

	assert.Equal(t, OutcomeRejected, view.OverallOutcome)
	assert.Equal(t, "Laptop not returned", view.RejectionReason)
	assert.True(t, view.Stages[2].Skipped)
	assert.True(t, view.Stages[3].Skipped)
}

func TestResolve_UnknownFormTypeUsesOverallStatus(t *testing.T) {
	resolver := NewResolver(DefaultRegistry())

	tests := []struct {
		status      string
		wantOutcome Outcome
		wantNext    string
	}{
		{"Approved", OutcomeApproved, NextStageCompleted},
		{"RESOLVED", OutcomeApproved, NextStageCompleted},
		{"Cancelled", OutcomeRejected, NextStageRejected},
		{"Submitted", OutcomeInProgress, LabelOverallStatus},
		{"", OutcomeInProgress, LabelOverallStatus},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			view := resolver.Resolve(entity.Submission{"id": 1, "status": tt.status, "hr_rejected_reason": "No budget"}, "future-form")
			require.Len(t, view.Stages, 1)
			assert.Equal(t, LabelOverallStatus, view.Stages[0].Label)
			assert.Equal(t, tt.wantOutcome, view.OverallOutcome)
			assert.Equal(t, tt.wantNext, view.NextStageLabel)
			if tt.wantOutcome == OutcomeRejected {
				assert.Equal(t, "No budget", view.RejectionReason)
			}
		})
	}
}

func TestResolve_MalformedSubmission(t *testing.T) {
	resolver := NewResolver(DefaultRegistry())

	for _, sub := range []entity.Submission{nil, {}, {"status": "Approved"}, {"id": nil, "request_id": ""}} {
		view := resolver.Resolve(sub, entity.FormPurchaseRequisition)
		require.Len(t, view.Stages, 1)
		assert.Equal(t, StageStatus{Label: LabelUnknown, Value: StatusPending}, view.Stages[0])
		assert.Empty(t, view.RejectionReason)
		assert.Equal(t, OutcomeInProgress, view.OverallOutcome)
	}
}

func TestResolve_StageCountMatchesSchema(t *testing.T) {
	registry := DefaultRegistry()
	resolver := NewResolver(registry)

	odd := []entity.Submission{
		{"id": 1},
		{"id": 2, "line_manager_approval": 12, "finance_approval": true, "hr_approval": []string{"x"}},
		{"id": 3, "status": map[string]interface{}{"nested": true}, "it_clearance": "yes"},
	}

	for _, formType := range registry.FormTypes() {
		for _, sub := range odd {
			view := resolver.Resolve(sub, formType)
			assert.Len(t, view.Stages, len(registry.StagesFor(formType)), formType)
			assert.Equal(t, view.NextStageLabel == NextStageCompleted, allApproved(view.Stages), formType)
		}
	}
}

func TestResolve_NilRegistryFallsBack(t *testing.T) {
	view := NewResolver(nil).Resolve(entity.Submission{"id": 1, "status": "Closed"}, entity.FormPurchaseRequisition)
	require.Len(t, view.Stages, 1)
	assert.Equal(t, OutcomeApproved, view.OverallOutcome)
}

func TestResolveAll_PreservesOrder(t *testing.T) {
	resolver := NewResolver(DefaultRegistry())
	views := resolver.ResolveAll([]entity.Submission{
		{"id": "a", "hr_approval": "Approved"},
		{"status": "broken"},
		{"id": "c"},
	}, entity.FormInfoUpdate)

	require.Len(t, views, 3)
	assert.Equal(t, "a", views[0].SubmissionID)
	assert.Equal(t, LabelUnknown, views[1].NextStageLabel)
	assert.Equal(t, "c", views[2].SubmissionID)
}

func allApproved(stages []StageStatus) bool {
	for _, st := range stages {
		if st.Value != StatusApproved {
			return false
		}
	}
	return true
}
