package container

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/application/dispatcher"
	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/application/service"
	"github.com/garyjia/hr-portal/internal/config"
	"github.com/garyjia/hr-portal/internal/domain/approval"
	"github.com/garyjia/hr-portal/internal/infrastructure/metrics"
	"github.com/garyjia/hr-portal/internal/infrastructure/persistence/repository"
	"github.com/garyjia/hr-portal/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/hr-portal/pkg/database"
	"github.com/garyjia/hr-portal/pkg/utils"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	Conn           *database.DB
	TransactionMgr *sqlite.DB
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Submission   port.SubmissionRepository
	ActionRecord port.ActionRecordRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Pipeline     service.PipelineService
	Confirmation service.ConfirmationService
}

// MetricsBundle holds the container-owned Prometheus registry and collectors.
type MetricsBundle struct {
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Registry   *approval.Registry
	Repos      *RepositoryBundle
	Client     port.ResolutionActionClient
	Dispatcher dispatcher.Dispatcher
	Logger     *zap.Logger
}

// ProvideDatabase opens the database, applies pending migrations and wraps
// the connection in a transaction manager.
func ProvideDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	conn, err := database.OpenMigrated(ctx, databaseConfig(cfg), migrationSource(cfg), logger)
	if err != nil {
		return nil, err
	}

	return &DatabaseBundle{
		Conn:           conn,
		TransactionMgr: sqlite.NewDB(conn.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories on top of the transaction manager.
func ProvideRepositories(db *sqlite.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Submission:   repository.NewSubmissionRepository(db, logger),
		ActionRecord: repository.NewActionRecordRepository(db, logger),
	}, nil
}

// ProvideRegistry returns the built-in schema table, merged with the
// configured YAML file when one is set.
func ProvideRegistry(cfg *config.Config, logger *zap.Logger) (*approval.Registry, error) {
	if cfg.Registry.Path == "" {
		return approval.DefaultRegistry(), nil
	}

	registry, err := approval.LoadRegistryFile(cfg.Registry.Path)
	if err != nil {
		return nil, err
	}
	logger.Info("Schema registry loaded",
		zap.String("path", cfg.Registry.Path),
		zap.Int("form_types", len(registry.FormTypes())))
	return registry, nil
}

// ProvideMetrics builds a private registry with the runtime collectors and
// the portal's own metrics.
func ProvideMetrics() *MetricsBundle {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &MetricsBundle{
		Registry: reg,
		Metrics:  metrics.New(reg),
	}
}

// ProvideDispatcher creates the event dispatcher.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return dispatcher.NewDispatcher(dispatcher.WithLogger(utils.NewServiceLogger(logger))), nil
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.Client == nil {
		return nil, fmt.Errorf("resolution action client is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	svcLogger := utils.NewServiceLogger(deps.Logger)

	confirmation := service.NewConfirmationService(
		deps.Repos.Submission,
		deps.Repos.ActionRecord,
		deps.Client,
		deps.Dispatcher,
		svcLogger,
	)

	pipeline := service.NewPipelineService(
		deps.Registry,
		deps.Repos.Submission,
		svcLogger,
		service.WithConfirmationStater(confirmation),
		service.WithPipelineEvents(deps.Dispatcher),
	)

	return &ServiceBundle{
		Pipeline:     pipeline,
		Confirmation: confirmation,
	}, nil
}
