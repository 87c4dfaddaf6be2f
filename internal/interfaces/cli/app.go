// Package cli provides the portalctl command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/application/service"
	"github.com/garyjia/hr-portal/internal/config"
	"github.com/garyjia/hr-portal/internal/container"
	"github.com/garyjia/hr-portal/internal/domain/approval"
	"github.com/garyjia/hr-portal/pkg/utils"
)

// Version information set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App represents the CLI application.
type App struct {
	root    *cobra.Command
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	verbose bool
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = &cobra.Command{
		Use:   "portalctl",
		Short: "HR/IT self-service portal approval tooling",
		Long: `portalctl resolves HR and IT form submissions into approval pipelines.

It can work offline on a JSON export of submissions, or against the portal's
local cache and the forms API configured in config.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	app.root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newSchemasCmd(),
		app.newResolveCmd(),
		app.newImportCmd(),
		app.newExportCmd(),
		app.newConfirmCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// WithInput sets the reader used when a file argument is "-".
func (a *App) WithInput(stdin io.Reader) *App {
	a.stdin = stdin
	a.root.SetIn(stdin)
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

// newVersionCmd creates the version command.
func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "portalctl version %s\n", Version)
			fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  Build date: %s\n", BuildDate)
		},
	}
}

// readInput reads a file, or stdin for "-".
func (a *App) readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(a.stdin)
	}
	return os.ReadFile(path)
}

// loadRegistry returns the built-in registry, extended by path when set.
func loadRegistry(path string) (*approval.Registry, error) {
	if path == "" {
		return approval.DefaultRegistry(), nil
	}
	return approval.LoadRegistryFile(path)
}

// parseFilter mirrors the HTTP query rules: an unknown category is an
// error, an unknown range matches everything.
func parseFilter(category, dateRange string) (service.Filter, error) {
	var filter service.Filter
	if strings.TrimSpace(category) != "" {
		c, ok := approval.ParseCategory(category)
		if !ok {
			return filter, fmt.Errorf("unknown category %q (want one of %s)", category, categoryNames())
		}
		filter.Category = c
	}
	if strings.TrimSpace(dateRange) != "" {
		if r, ok := approval.ParseDateRange(dateRange); ok {
			filter.Range = r
		} else {
			filter.Range = approval.DateRange(dateRange)
		}
	}
	return filter, nil
}

func categoryNames() string {
	names := make([]string, 0, len(approval.Categories))
	for _, c := range approval.Categories {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}

// startContainer loads configuration and starts a container without
// background workers. The caller closes it.
func (a *App) startContainer(ctx context.Context, configPath string) (*container.Container, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := utils.NewCLILogger(a.verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	c, err := container.NewContainer(cfg, logger, container.WithoutWorkers(), container.WithVersion(Version))
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func closeContainer(c *container.Container) {
	if err := c.Close(); err != nil {
		c.Logger().Warn("Container close failed", zap.Error(err))
	}
	_ = c.Logger().Sync()
}
