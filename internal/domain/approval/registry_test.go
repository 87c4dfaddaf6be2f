package approval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/hr-portal/internal/domain/entity"
)

func TestDefaultRegistry_Shapes(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		formType string
		labels   []string
	}{
		{entity.FormPurchaseRequisition, []string{LabelLineManager, LabelFinance}},
		{entity.FormTrainingRequest, []string{LabelLineManager, LabelHR}},
		{entity.FormLeaveRequest, []string{LabelLineManager, LabelHR}},
		{entity.FormMeetingRoom, []string{LabelFacilitiesDesk, LabelFacilitiesManager}},
		{entity.FormFacilityAccess, []string{LabelFacilitiesDesk, LabelFacilitiesManager}},
		{entity.FormPasswordReset, []string{LabelITHelpdesk}},
		{entity.FormInfoUpdate, []string{LabelHR}},
		{entity.FormITIncident, []string{LabelITSupport}},
		{entity.FormExitClearance, []string{LabelLineManager, LabelIT, LabelFinance, LabelAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.formType, func(t *testing.T) {
			stages := r.StagesFor(tt.formType)
			labels := make([]string, 0, len(stages))
			for _, st := range stages {
				labels = append(labels, st.Label)
			}
			assert.Equal(t, tt.labels, labels)
		})
	}

	assert.Len(t, r.FormTypes(), 16)
	assert.Equal(t, EncodingStatusMap, r.StagesFor(entity.FormITIncident)[0].Encoding)
	assert.Equal(t, EncodingBoolean, r.StagesFor(entity.FormExitClearance)[0].Encoding)
}

func TestRegistry_UnknownFormTypeIsEmpty(t *testing.T) {
	r := DefaultRegistry()

	stages := r.StagesFor("nonexistent")
	assert.NotNil(t, stages)
	assert.Empty(t, stages)
	assert.False(t, r.Knows("nonexistent"))
	assert.True(t, r.Knows(" Purchase-Requisition "))
}

func TestRegistry_StagesForReturnsCopy(t *testing.T) {
	r := DefaultRegistry()

	stages := r.StagesFor(entity.FormPurchaseRequisition)
	stages[0].Label = "Mutated"

	assert.Equal(t, LabelLineManager, r.StagesFor(entity.FormPurchaseRequisition)[0].Label)
}

func TestNewRegistry_Validation(t *testing.T) {
	tests := []struct {
		name  string
		table map[string][]StageSpec
	}{
		{"missing field", map[string][]StageSpec{"x": {{Label: "A", Encoding: EncodingBoolean}}}},
		{"missing label", map[string][]StageSpec{"x": {{FieldName: "a", Encoding: EncodingBoolean}}}},
		{"bad encoding", map[string][]StageSpec{"x": {{FieldName: "a", Label: "A", Encoding: "xml"}}}},
		{"status map without map", map[string][]StageSpec{"x": {{FieldName: "a", Label: "A", Encoding: EncodingStatusMap}}}},
		{"blank form type", map[string][]StageSpec{" ": {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.table)
			assert.Error(t, err)
		})
	}
}

const registryYAML = `
form_types:
  asset-disposal:
    - field: asset_manager_approval
      label: Asset Manager
      encoding: string_enum
      reason_field: asset_manager_rejected_reason
    - field: finance_approval
      label: Finance
      encoding: string_enum
  info-update:
    - field: payroll_approval
      label: Payroll
      encoding: status_map
      status_map:
        done: Approved
        refused: Rejected
`

func TestParseRegistry_MergesOverDefaults(t *testing.T) {
	r, err := ParseRegistry([]byte(registryYAML))
	require.NoError(t, err)

	stages := r.StagesFor("asset-disposal")
	require.Len(t, stages, 2)
	assert.Equal(t, "Asset Manager", stages[0].Label)
	assert.Equal(t, "asset_manager_rejected_reason", stages[0].ReasonField)

	override := r.StagesFor(entity.FormInfoUpdate)
	require.Len(t, override, 1)
	assert.Equal(t, "Payroll", override[0].Label)
	assert.Equal(t, StatusRejected, override[0].StatusMap.Lookup("REFUSED"))

	// untouched defaults survive
	assert.Len(t, r.StagesFor(entity.FormExitClearance), 4)

	view := NewResolver(r).Resolve(entity.Submission{
		"id":                            "AD-1",
		"asset_manager_approval":        "Rejected",
		"asset_manager_rejected_reason": "Still in use",
	}, "asset-disposal")
	assert.Equal(t, OutcomeRejected, view.OverallOutcome)
	assert.Equal(t, "Still in use", view.RejectionReason)
}

func TestLoadRegistryFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(registryYAML), 0o644))

	r, err := LoadRegistryFile(path)
	require.NoError(t, err)
	assert.True(t, r.Knows("asset-disposal"))

	_, err = LoadRegistryFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("form_types:\n  x:\n    - field: a\n      label: A\n      encoding: csv\n"), 0o644))
	_, err = LoadRegistryFile(bad)
	assert.Error(t, err)
}

func TestLoadRegistryFile_ShippedExample(t *testing.T) {
	r, err := LoadRegistryFile(filepath.Join("..", "..", "..", "configs", "registry.example.yaml"))
	require.NoError(t, err)
	assert.True(t, r.Knows("asset-disposal"))
	assert.True(t, r.Knows(entity.FormITIncident))

	view := NewResolver(r).Resolve(entity.Submission{
		"id":            "RD-1",
		"it_received":   true,
		"ticket_status": "waiting",
	}, "remote-device-return")
	require.Len(t, view.Stages, 2)
	assert.Equal(t, StatusApproved, view.Stages[0].Value)
	assert.Equal(t, StatusPending, view.Stages[1].Value)
	assert.Equal(t, "Service Desk", view.NextStageLabel)
}
