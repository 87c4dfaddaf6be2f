package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// confirmOptions holds options for the confirm command.
type confirmOptions struct {
	configPath string
	employeeID string
	reject     bool
}

// newConfirmCmd creates the confirm command.
func (a *App) newConfirmCmd() *cobra.Command {
	opts := &confirmOptions{}

	cmd := &cobra.Command{
		Use:   "confirm <incident-id>",
		Short: "Confirm or reject the resolution of a cached IT incident",
		Long: `Send the employee's answer on a resolved IT incident to the forms API.

The incident must be cached locally and in the Resolved status without an
earlier answer.

Examples:
  portalctl confirm INC-1042 -c configs/config.yaml
  portalctl confirm INC-1042 --reject --employee E1234`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.confirm(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "configs/config.yaml", "Path to configuration file")
	cmd.Flags().StringVar(&opts.employeeID, "employee", "", "Acting employee ID (defaults to the incident's reporter)")
	cmd.Flags().BoolVar(&opts.reject, "reject", false, "Reject the resolution instead of confirming it")

	return cmd
}

func (a *App) confirm(ctx context.Context, id string, opts *confirmOptions) error {
	c, err := a.startContainer(ctx, opts.configPath)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	action := entity.ActionConfirmed
	if opts.reject {
		action = entity.ActionRejected
	}

	cmd, err := c.Services().Confirmation.Submit(ctx, id, opts.employeeID, action)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "%s %s (request %s)\n", id, cmd.Action, cmd.RequestID)
	return nil
}
