// Package export renders resolved pipeline lists as spreadsheets.
package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/domain/approval"
)

// Sheet names
const (
	SheetPipelines = "Pipelines"
	SheetSummary   = "Summary"
)

// ContentType is the MIME type of the generated workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var fixedHeaders = []string{"Submission ID", "Created At", "Category", "Outcome", "Next Stage", "Rejection Reason"}

// Row is one resolved submission to export
type Row struct {
	Pipeline  approval.PipelineView
	Category  approval.Category
	CreatedAt time.Time
}

// XLSXExporter writes pipeline rows to an Excel workbook
type XLSXExporter struct {
	logger *zap.Logger
}

// NewXLSXExporter creates a new exporter
func NewXLSXExporter(logger *zap.Logger) *XLSXExporter {
	return &XLSXExporter{logger: logger}
}

// Write renders rows of one form type into w. Stage columns follow the order in
// which labels first appear, so a form type's chain reads left to right.
func (e *XLSXExporter) Write(w io.Writer, formType string, rows []Row) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", SheetPipelines); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	stageLabels := collectStageLabels(rows)
	headers := append(append([]string{}, fixedHeaders...), stageLabels...)
	if err := writeRow(file, SheetPipelines, 1, toCells(headers)); err != nil {
		return err
	}

	outcomes := make(map[string]int)
	for i, row := range rows {
		view := row.Pipeline
		cells := []interface{}{
			view.SubmissionID,
			formatTime(row.CreatedAt),
			row.Category.String(),
			view.OverallOutcome.String(),
			view.NextStageLabel,
			view.RejectionReason,
		}
		for _, label := range stageLabels {
			cells = append(cells, stageCell(view, label))
		}
		if err := writeRow(file, SheetPipelines, i+2, cells); err != nil {
			return err
		}
		outcomes[view.OverallOutcome.String()]++
	}

	if err := file.SetPanes(SheetPipelines, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		e.logger.Warn("Failed to freeze header row", zap.Error(err))
	}

	if err := e.writeSummary(file, formType, len(rows), outcomes); err != nil {
		return err
	}

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Pipeline export written",
		zap.String("form_type", formType),
		zap.Int("rows", len(rows)),
		zap.Int("stage_columns", len(stageLabels)))
	return nil
}

func (e *XLSXExporter) writeSummary(file *excelize.File, formType string, total int, outcomes map[string]int) error {
	if _, err := file.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := writeRow(file, SheetSummary, 1, []interface{}{"Form Type", formType}); err != nil {
		return err
	}
	if err := writeRow(file, SheetSummary, 2, []interface{}{"Total", total}); err != nil {
		return err
	}

	keys := make([]string, 0, len(outcomes))
	for k := range outcomes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if err := writeRow(file, SheetSummary, i+3, []interface{}{k, outcomes[k]}); err != nil {
			return err
		}
	}
	return nil
}

func collectStageLabels(rows []Row) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, row := range rows {
		for _, st := range row.Pipeline.Stages {
			if !seen[st.Label] {
				seen[st.Label] = true
				labels = append(labels, st.Label)
			}
		}
	}
	return labels
}

// stageCell renders "Rejected (reason)" or the detail text when present
func stageCell(view approval.PipelineView, label string) string {
	st, ok := view.StageByLabel(label)
	if !ok {
		return ""
	}
	text := st.Value.String()
	if st.Detail != "" && st.Detail != text {
		text = fmt.Sprintf("%s - %s", text, st.Detail)
	}
	if st.Reason != "" {
		text = fmt.Sprintf("%s (%s)", text, st.Reason)
	}
	return text
}

func writeRow(file *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", row, err)
	}
	if err := file.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func formatTime(t time.Time) string {
	if t.IsZero() || t.Unix() == 0 {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
