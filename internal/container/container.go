package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/application/dispatcher"
	"github.com/garyjia/hr-portal/internal/config"
	"github.com/garyjia/hr-portal/internal/domain/approval"
	"github.com/garyjia/hr-portal/internal/infrastructure/export"
	"github.com/garyjia/hr-portal/internal/infrastructure/external/formsapi"
	"github.com/garyjia/hr-portal/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/hr-portal/internal/infrastructure/worker"
	httpadapter "github.com/garyjia/hr-portal/internal/interfaces/http"
	"github.com/garyjia/hr-portal/pkg/database"
	"github.com/garyjia/hr-portal/pkg/utils"
)

// Container manages all application dependencies and lifecycle.
// It follows Clean Architecture principles with ordered initialization
// and reverse-order teardown.
type Container struct {
	config  *config.Config
	logger  *zap.Logger
	version string

	runWorkers bool

	// Infrastructure - Data
	conn         *database.DB
	db           *sqlite.DB
	repositories *RepositoryBundle

	// Infrastructure - External
	formsClient *formsapi.Client

	// Domain
	registry *approval.Registry

	// Application
	dispatcher dispatcher.Dispatcher
	metrics    *MetricsBundle
	services   *ServiceBundle
	exporter   *export.XLSXExporter

	// Workers
	workers    *worker.WorkerManager
	syncWorker *worker.SyncWorker

	// Lifecycle
	mu     sync.RWMutex
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// Option configures a container before Start
type Option func(*Container)

// WithVersion sets the build version reported by /health
func WithVersion(version string) Option {
	return func(c *Container) { c.version = version }
}

// WithoutWorkers keeps background workers stopped even when sync is enabled.
// Command line tools use this.
func WithoutWorkers() Option {
	return func(c *Container) { c.runWorkers = false }
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Container{
		config:     cfg,
		logger:     logger,
		version:    "dev",
		runWorkers: cfg.Sync.Enabled,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start initializes all components and begins processing.
// Components are initialized in dependency order:
// 1. Database and repositories
// 2. Schema registry
// 3. Forms API client
// 4. Event dispatcher and metrics
// 5. Application services and exporter
// 6. Workers
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}

	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	var runCtx context.Context
	runCtx, c.cancel = context.WithCancel(ctx)
	c.logger.Info("Starting container initialization")

	// Step 1: Initialize database and repositories
	if err := c.initDatabase(runCtx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized")

	// Step 2: Load the schema registry
	registry, err := ProvideRegistry(c.config, c.logger)
	if err != nil {
		return c.abort(fmt.Errorf("failed to load schema registry: %w", err))
	}
	c.registry = registry

	// Step 3: Initialize external clients
	c.formsClient = formsapi.NewClient(formsAPIConfig(c.config), c.logger)
	c.logger.Info("Forms API client initialized", zap.String("base_url", c.config.FormsAPI.BaseURL))

	// Step 4: Initialize dispatcher and metrics
	if err := c.initDispatcherAndMetrics(); err != nil {
		return c.abort(fmt.Errorf("failed to initialize dispatcher: %w", err))
	}
	c.logger.Info("Dispatcher initialized")

	// Step 5: Initialize application services
	if err := c.initServices(); err != nil {
		return c.abort(fmt.Errorf("failed to initialize services: %w", err))
	}
	c.logger.Info("Application services initialized")

	// Step 6: Initialize and start workers
	if err := c.initWorkers(runCtx); err != nil {
		return c.abort(fmt.Errorf("failed to initialize workers: %w", err))
	}

	c.ready.Store(true)
	c.logger.Info("Container started successfully")

	return nil
}

// abort releases what a failed Start already opened
func (c *Container) abort(err error) error {
	if c.dispatcher != nil {
		_ = c.dispatcher.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	if c.cancel != nil {
		c.cancel()
	}
	return err
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	// Cancel context to signal all goroutines
	if c.cancel != nil {
		c.cancel()
	}

	// Step 1: Stop workers (reverse of step 6)
	if c.workers != nil {
		if err := c.workers.StopAll(); err != nil {
			c.logger.Error("Failed to stop workers", zap.Error(err))
			errs = append(errs, fmt.Errorf("stop workers: %w", err))
		} else {
			c.logger.Info("Workers stopped")
		}
	}

	// Step 2: Close dispatcher so pending async handlers finish before the
	// database goes away (reverse of step 4)
	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		} else {
			c.logger.Info("Dispatcher closed")
		}
	}

	// Step 3: Close database (reverse of step 1)
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		} else {
			c.logger.Info("Database closed")
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}
	set := func(name string, healthy bool, msg string) {
		status.Components[name] = ComponentHealth{Healthy: healthy, Message: msg}
		if !healthy {
			status.Overall = false
		}
	}

	// Check database
	if c.conn != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := c.conn.HealthCheck(pingCtx); err != nil {
			set("database", false, err.Error())
		} else {
			set("database", true, "")
		}
	} else {
		set("database", false, "not initialized")
	}

	set("dispatcher", c.dispatcher != nil, notInitialized(c.dispatcher != nil))
	set("repositories", c.repositories != nil, notInitialized(c.repositories != nil))

	// Workers only count when they were asked for
	if c.runWorkers {
		if c.workers != nil && c.workers.IsRunning() {
			set("workers", true, fmt.Sprintf("running: %v", c.workers.Names()))
		} else {
			set("workers", false, "not running")
		}
	}

	return status
}

func notInitialized(ok bool) string {
	if ok {
		return ""
	}
	return "not initialized"
}

// initDatabase initializes the database and all repositories using providers.
func (c *Container) initDatabase(ctx context.Context) error {
	dbBundle, err := ProvideDatabase(ctx, c.config, c.logger)
	if err != nil {
		return err
	}

	c.conn = dbBundle.Conn
	c.db = dbBundle.TransactionMgr

	repos, err := ProvideRepositories(c.db, c.logger)
	if err != nil {
		_ = c.conn.Close()
		return err
	}

	c.repositories = repos
	return nil
}

// initDispatcherAndMetrics creates the dispatcher and subscribes the metrics
// collectors to its events.
func (c *Container) initDispatcherAndMetrics() error {
	disp, err := ProvideDispatcher(c.logger)
	if err != nil {
		return err
	}
	c.dispatcher = disp

	c.metrics = ProvideMetrics()
	c.metrics.Metrics.Subscribe(c.dispatcher)
	return nil
}

// initServices initializes all application services using providers.
func (c *Container) initServices() error {
	services, err := ProvideServices(&ServiceDeps{
		Registry:   c.registry,
		Repos:      c.repositories,
		Client:     c.formsClient,
		Dispatcher: c.dispatcher,
		Logger:     c.logger,
	})
	if err != nil {
		return err
	}

	c.services = services
	c.exporter = export.NewXLSXExporter(c.logger)
	return nil
}

// initWorkers registers the sync worker and starts it when workers run.
func (c *Container) initWorkers(ctx context.Context) error {
	c.workers = worker.NewWorkerManager(c.logger)
	if !c.runWorkers {
		return nil
	}

	c.syncWorker = worker.NewSyncWorker(syncWorkerConfig(c.config), c.formsClient, c.services.Pipeline, c.logger)
	if err := c.workers.Register(c.syncWorker); err != nil {
		return err
	}

	if err := c.workers.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	c.logger.Info("Workers initialized and started")
	return nil
}

// NewHTTPServer builds the HTTP adapter over the started container.
func (c *Container) NewHTTPServer() (*httpadapter.Server, error) {
	if !c.ready.Load() {
		return nil, fmt.Errorf("container not started")
	}

	svcLogger := utils.NewServiceLogger(c.logger)
	var opts []httpadapter.Option
	if c.config.Metrics.Enabled {
		handler := promhttp.HandlerFor(c.metrics.Registry, promhttp.HandlerOpts{})
		opts = append(opts, httpadapter.WithMetrics(c.metrics.Metrics, c.config.Metrics.Path, handler))
	}

	return httpadapter.NewServer(
		serverConfig(c.config, c.version),
		c.services.Pipeline,
		c.services.Confirmation,
		c.exporter,
		svcLogger,
		opts...,
	), nil
}

// Getters for accessing container components

// DB returns the transaction manager.
func (c *Container) DB() *sqlite.DB {
	return c.db
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// FormsClient returns the forms API client.
func (c *Container) FormsClient() *formsapi.Client {
	return c.formsClient
}

// Registry returns the loaded schema registry.
func (c *Container) Registry() *approval.Registry {
	return c.registry
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Exporter returns the spreadsheet exporter.
func (c *Container) Exporter() *export.XLSXExporter {
	return c.exporter
}

// Metrics returns the container's Prometheus registry and collectors.
func (c *Container) Metrics() *MetricsBundle {
	return c.metrics
}

// Workers returns the worker manager.
func (c *Container) Workers() *worker.WorkerManager {
	return c.workers
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *config.Config {
	return c.config
}
