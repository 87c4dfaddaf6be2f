package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/domain/approval"
	"github.com/garyjia/hr-portal/internal/domain/entity"
)

func TestXLSXExporter_Write(t *testing.T) {
	resolver := approval.NewResolver(approval.DefaultRegistry())
	subs := []entity.Submission{
		{
			"id":                    "PR-1",
			"line_manager_approval": "Approved",
			"finance_approval":      "Approved",
		},
		{
			"id":                           "PR-2",
			"line_manager_approval":        "Rejected",
			"line_manager_rejected_reason": "Over budget",
		},
	}

	created := time.Date(2025, time.May, 1, 8, 30, 0, 0, time.UTC)
	rows := make([]Row, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, Row{
			Pipeline:  resolver.Resolve(sub, entity.FormPurchaseRequisition),
			Category:  approval.Classify(sub),
			CreatedAt: created,
		})
	}

	var buf bytes.Buffer
	require.NoError(t, NewXLSXExporter(zap.NewNop()).Write(&buf, entity.FormPurchaseRequisition, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(SheetPipelines)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []string{
		"Submission ID", "Created At", "Category", "Outcome", "Next Stage", "Rejection Reason",
		approval.LabelLineManager, approval.LabelFinance,
	}, got[0])

	assert.Equal(t, "PR-1", got[1][0])
	assert.Equal(t, "2025-05-01T08:30:00Z", got[1][1])
	assert.Equal(t, "Approved", got[1][3])
	assert.Equal(t, approval.NextStageCompleted, got[1][4])

	assert.Equal(t, "PR-2", got[2][0])
	assert.Equal(t, "Rejected", got[2][3])
	assert.Equal(t, "Over budget", got[2][5])
	assert.Equal(t, "Rejected (Over budget)", got[2][6])
	assert.Equal(t, "Pending", got[2][7])

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Form Type", entity.FormPurchaseRequisition}, summary[0])
	assert.Equal(t, []string{"Total", "2"}, summary[1])
	assert.Contains(t, summary, []string{"Approved", "1"})
	assert.Contains(t, summary, []string{"Rejected", "1"})
}

func TestXLSXExporter_EmptyList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewXLSXExporter(zap.NewNop()).Write(&buf, entity.FormLeaveRequest, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(SheetPipelines)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0], len(fixedHeaders))
}
