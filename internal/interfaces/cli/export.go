package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/garyjia/hr-portal/internal/infrastructure/export"
)

// exportOptions holds options for the export command.
type exportOptions struct {
	configPath string
	formType   string
	output     string
	category   string
	dateRange  string
}

// newExportCmd creates the export command.
func (a *App) newExportCmd() *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export cached submissions of a form type to XLSX",
		Long: `Resolve every cached submission of a form type and write the pipelines
to a spreadsheet with a summary sheet.

Examples:
  portalctl export -c configs/config.yaml -t exit-clearance -o clearance.xlsx
  portalctl export -t leave-request -o leave.xlsx --category pending --range this-month`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.exportSubmissions(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "configs/config.yaml", "Path to configuration file")
	cmd.Flags().StringVarP(&opts.formType, "type", "t", "", "Form type to export (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output .xlsx path (required)")
	cmd.Flags().StringVar(&opts.category, "category", "", "Only export submissions in this category")
	cmd.Flags().StringVar(&opts.dateRange, "range", "", "Only export submissions created in this range")

	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func (a *App) exportSubmissions(ctx context.Context, opts *exportOptions) error {
	filter, err := parseFilter(opts.category, opts.dateRange)
	if err != nil {
		return err
	}

	c, err := a.startContainer(ctx, opts.configPath)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	results, err := c.Services().Pipeline.List(ctx, opts.formType, filter)
	if err != nil {
		return err
	}

	rows := make([]export.Row, 0, len(results))
	for _, rs := range results {
		rows = append(rows, export.Row{Pipeline: rs.Pipeline, Category: rs.Category, CreatedAt: rs.CreatedAt})
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := c.Exporter().Write(f, opts.formType, rows); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	fmt.Fprintf(a.stdout, "Exported %d %s submissions to %s\n", len(rows), opts.formType, opts.output)
	return nil
}
