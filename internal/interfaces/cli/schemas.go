package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// schemasOptions holds options for the schemas command.
type schemasOptions struct {
	formType     string
	registryPath string
	jsonOutput   bool
}

// newSchemasCmd creates the schemas command.
func (a *App) newSchemasCmd() *cobra.Command {
	opts := &schemasOptions{}

	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "List approval stage chains per form type",
		Long: `List the ordered approval stages of every known form type.

Examples:
  # All form types
  portalctl schemas

  # One form type, including a custom registry file
  portalctl schemas -t exit-clearance --registry configs/registry.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listSchemas(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.formType, "type", "t", "", "Only show this form type")
	cmd.Flags().StringVar(&opts.registryPath, "registry", "", "YAML schema table merged over the built-in one")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print JSON instead of text")

	return cmd
}

func (a *App) listSchemas(opts *schemasOptions) error {
	registry, err := loadRegistry(opts.registryPath)
	if err != nil {
		return err
	}

	formTypes := registry.FormTypes()
	if opts.formType != "" {
		if !registry.Knows(opts.formType) {
			return fmt.Errorf("unknown form type: %s", opts.formType)
		}
		formTypes = []string{opts.formType}
	}

	if opts.jsonOutput {
		out := make(map[string]interface{}, len(formTypes))
		for _, ft := range formTypes {
			out[ft] = registry.StagesFor(ft)
		}
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, ft := range formTypes {
		fmt.Fprintf(a.stdout, "%s\n", ft)
		for i, stage := range registry.StagesFor(ft) {
			fmt.Fprintf(a.stdout, "  %d. %s (%s, %s)", i+1, stage.Label, stage.FieldName, stage.Encoding)
			if stage.ReasonField != "" {
				fmt.Fprintf(a.stdout, " reason: %s", stage.ReasonField)
			}
			fmt.Fprintln(a.stdout)
		}
	}
	return nil
}
