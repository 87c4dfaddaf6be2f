package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/garyjia/hr-portal/internal/domain/approval"
	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// resolveOptions holds options for the resolve command.
type resolveOptions struct {
	formType     string
	file         string
	category     string
	dateRange    string
	registryPath string
	jsonOutput   bool
}

// resolvedRow is one line of resolve output
type resolvedRow struct {
	Category approval.Category     `json:"category"`
	Pipeline approval.PipelineView `json:"pipeline"`
}

// newResolveCmd creates the resolve command.
func (a *App) newResolveCmd() *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a JSON file of submissions into approval pipelines",
		Long: `Resolve submissions offline, without a database or the forms API.

The input is a JSON array of raw submission records as returned by the
forms API. Use "-" to read from stdin.

Examples:
  # Table of every purchase requisition
  portalctl resolve -t purchase-requisition -f requisitions.json

  # Only this week's open leave requests, as JSON
  portalctl resolve -t leave-request -f leave.json --category pending --range this-week --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.resolve(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.formType, "type", "t", "", "Form type of the submissions (required)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "JSON file of submissions, or - for stdin (required)")
	cmd.Flags().StringVar(&opts.category, "category", "", "Only show submissions in this category")
	cmd.Flags().StringVar(&opts.dateRange, "range", "", "Only show submissions created in this range")
	cmd.Flags().StringVar(&opts.registryPath, "registry", "", "YAML schema table merged over the built-in one")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print JSON instead of a table")

	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (a *App) resolve(opts *resolveOptions) error {
	filter, err := parseFilter(opts.category, opts.dateRange)
	if err != nil {
		return err
	}

	registry, err := loadRegistry(opts.registryPath)
	if err != nil {
		return err
	}

	data, err := a.readInput(opts.file)
	if err != nil {
		return fmt.Errorf("failed to read submissions: %w", err)
	}
	subs, err := entity.ParseSubmissions(data)
	if err != nil {
		return fmt.Errorf("submissions must be a JSON array: %w", err)
	}

	resolver := approval.NewResolver(registry)
	dates := approval.NewDateMatcher(nil)

	rows := make([]resolvedRow, 0, len(subs))
	for _, sub := range subs {
		category := approval.Classify(sub)
		if filter.Category != "" && category != filter.Category {
			continue
		}
		if !dates.MatchesSubmission(sub, filter.Range) {
			continue
		}
		rows = append(rows, resolvedRow{Category: category, Pipeline: resolver.Resolve(sub, opts.formType)})
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(a.stdout, "No matching submissions.")
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tOUTCOME\tNEXT STAGE\tSTAGES")
	for _, row := range rows {
		p := row.Pipeline
		id := p.SubmissionID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", id, row.Category, p.OverallOutcome, p.NextStageLabel, formatStages(p))
	}
	return tw.Flush()
}

// formatStages renders "Label: Value" pairs, with the reason of a rejection
func formatStages(p approval.PipelineView) string {
	parts := make([]string, 0, len(p.Stages))
	for _, s := range p.Stages {
		part := fmt.Sprintf("%s: %s", s.Label, s.Value)
		if s.Reason != "" {
			part += fmt.Sprintf(" (%s)", s.Reason)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}
