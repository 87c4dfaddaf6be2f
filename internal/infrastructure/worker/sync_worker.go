package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// Importer stores fetched submissions in the local cache
type Importer interface {
	Import(ctx context.Context, formType string, subs []entity.Submission) (int, error)
}

// SyncWorkerConfig holds configuration for the sync worker
type SyncWorkerConfig struct {
	Interval     time.Duration
	FormTypes    []string
	FetchTimeout time.Duration
}

// DefaultSyncWorkerConfig returns default configuration
func DefaultSyncWorkerConfig() SyncWorkerConfig {
	return SyncWorkerConfig{
		Interval:     5 * time.Minute,
		FetchTimeout: 30 * time.Second,
	}
}

// SyncStats reports what the worker has done so far
type SyncStats struct {
	Runs      int       `json:"runs"`
	Stored    int       `json:"stored"`
	Failures  int       `json:"failures"`
	LastRun   time.Time `json:"last_run"`
	LastError string    `json:"last_error,omitempty"`
}

// SyncWorker periodically pulls submissions from the forms API into the
// local cache. One form type failing never stops the others.
type SyncWorker struct {
	config   SyncWorkerConfig
	source   port.SubmissionSource
	importer Importer
	logger   *zap.Logger

	mu        sync.RWMutex
	cancel    context.CancelFunc
	done      chan struct{}
	isRunning bool
	stats     SyncStats
}

// NewSyncWorker creates a new sync worker
func NewSyncWorker(config SyncWorkerConfig, source port.SubmissionSource, importer Importer, logger *zap.Logger) *SyncWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultSyncWorkerConfig().Interval
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = DefaultSyncWorkerConfig().FetchTimeout
	}
	return &SyncWorker{
		config:   config,
		source:   source,
		importer: importer,
		logger:   logger,
	}
}

// Start runs one sync immediately and then every interval
func (w *SyncWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return fmt.Errorf("sync worker already running")
	}
	if len(w.config.FormTypes) == 0 {
		w.mu.Unlock()
		return fmt.Errorf("sync worker has no form types")
	}

	var loopCtx context.Context
	loopCtx, w.cancel = context.WithCancel(ctx)
	done := make(chan struct{})
	w.done = done
	w.isRunning = true
	w.mu.Unlock()

	w.logger.Info("SyncWorker started",
		zap.Duration("interval", w.config.Interval),
		zap.Strings("form_types", w.config.FormTypes))

	go w.pollLoop(loopCtx, done)

	return nil
}

// Stop cancels the loop and waits for an in-progress sync to finish
func (w *SyncWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	stats := w.Stats()
	w.logger.Info("SyncWorker stopped",
		zap.Int("runs", stats.Runs),
		zap.Int("stored", stats.Stored),
		zap.Int("failures", stats.Failures))
	return nil
}

// Name returns the worker name for identification
func (w *SyncWorker) Name() string {
	return "SyncWorker"
}

// Stats returns a snapshot of the worker counters
func (w *SyncWorker) Stats() SyncStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *SyncWorker) pollLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.SyncOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.SyncOnce(ctx)
		}
	}
}

// SyncOnce fetches and imports every configured form type and returns the
// number of submissions stored
func (w *SyncWorker) SyncOnce(ctx context.Context) int {
	stored := 0
	var lastErr error
	failures := 0

	for _, formType := range w.config.FormTypes {
		if ctx.Err() != nil {
			break
		}
		n, err := w.syncFormType(ctx, formType)
		if err != nil {
			w.logger.Warn("Failed to sync form type", zap.String("form_type", formType), zap.Error(err))
			lastErr = err
			failures++
			continue
		}
		stored += n
	}

	w.mu.Lock()
	w.stats.Runs++
	w.stats.Stored += stored
	w.stats.Failures += failures
	w.stats.LastRun = time.Now()
	if lastErr != nil {
		w.stats.LastError = lastErr.Error()
	}
	w.mu.Unlock()

	w.logger.Debug("Sync run completed", zap.Int("stored", stored), zap.Int("failures", failures))
	return stored
}

func (w *SyncWorker) syncFormType(ctx context.Context, formType string) (int, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, w.config.FetchTimeout)
	defer cancel()

	subs, err := w.source.FetchSubmissions(fetchCtx, formType)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	if len(subs) == 0 {
		return 0, nil
	}

	n, err := w.importer.Import(ctx, formType, subs)
	if err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}
	return n, nil
}
