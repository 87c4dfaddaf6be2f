package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// importOptions holds options for the import command.
type importOptions struct {
	configPath string
	formType   string
	file       string
	fromAPI    bool
}

// newImportCmd creates the import command.
func (a *App) newImportCmd() *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import submissions into the local cache",
		Long: `Store raw submissions of one form type in the portal database.

Submissions come either from a JSON file or straight from the forms API.
Records are upserted by submission ID; records without an ID are skipped.

Examples:
  # From a file
  portalctl import -c configs/config.yaml -t it-incident -f incidents.json

  # From the forms API
  portalctl import -c configs/config.yaml -t it-incident --from-api`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.importSubmissions(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "configs/config.yaml", "Path to configuration file")
	cmd.Flags().StringVarP(&opts.formType, "type", "t", "", "Form type of the submissions (required)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "JSON file of submissions, or - for stdin")
	cmd.Flags().BoolVar(&opts.fromAPI, "from-api", false, "Fetch submissions from the forms API")

	_ = cmd.MarkFlagRequired("type")
	cmd.MarkFlagsMutuallyExclusive("file", "from-api")
	cmd.MarkFlagsOneRequired("file", "from-api")

	return cmd
}

func (a *App) importSubmissions(ctx context.Context, opts *importOptions) error {
	c, err := a.startContainer(ctx, opts.configPath)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	var subs []entity.Submission
	if opts.fromAPI {
		subs, err = c.FormsClient().FetchSubmissions(ctx, opts.formType)
		if err != nil {
			return fmt.Errorf("failed to fetch submissions: %w", err)
		}
	} else {
		data, err := a.readInput(opts.file)
		if err != nil {
			return fmt.Errorf("failed to read submissions: %w", err)
		}
		subs, err = entity.ParseSubmissions(data)
		if err != nil {
			return fmt.Errorf("submissions must be a JSON array: %w", err)
		}
	}

	stored, err := c.Services().Pipeline.Import(ctx, opts.formType, subs)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Imported %d of %d %s submissions\n", stored, len(subs), opts.formType)
	return nil
}
