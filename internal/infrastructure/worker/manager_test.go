package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/domain/entity"
)

type fakeWorker struct {
	name     string
	startErr error
	log      *[]string
	mu       *sync.Mutex
}

func (w *fakeWorker) record(event string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	*w.log = append(*w.log, event+" "+w.name)
}

func (w *fakeWorker) Start(ctx context.Context) error {
	if w.startErr != nil {
		return w.startErr
	}
	w.record("start")
	return nil
}

func (w *fakeWorker) Stop() error {
	w.record("stop")
	return nil
}

func (w *fakeWorker) Name() string { return w.name }

func TestWorkerManager_Lifecycle(t *testing.T) {
	source := &stubSource{data: map[string][]entity.Submission{}}
	m := NewWorkerManager(zap.NewNop())
	require.NoError(t, m.Register(NewSyncWorker(SyncWorkerConfig{
		Interval:  time.Hour,
		FormTypes: []string{entity.FormITIncident},
	}, source, &stubImporter{}, zap.NewNop())))

	assert.Equal(t, []string{"SyncWorker"}, m.Names())
	assert.False(t, m.IsRunning())

	require.NoError(t, m.StartAll(context.Background()))
	assert.True(t, m.IsRunning())
	assert.Error(t, m.StartAll(context.Background()))

	assert.Eventually(t, func() bool { return source.callCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, m.StopAll())
	assert.False(t, m.IsRunning())
	require.NoError(t, m.StopAll())
}

func TestWorkerManager_RejectsDuplicateNames(t *testing.T) {
	var log []string
	mu := &sync.Mutex{}
	m := NewWorkerManager(zap.NewNop())

	require.NoError(t, m.Register(&fakeWorker{name: "a", log: &log, mu: mu}))
	assert.Error(t, m.Register(&fakeWorker{name: "a", log: &log, mu: mu}))

	require.NoError(t, m.StartAll(context.Background()))
	assert.Error(t, m.Register(&fakeWorker{name: "b", log: &log, mu: mu}))
	require.NoError(t, m.StopAll())
}

func TestWorkerManager_StartFailureStopsStartedWorkers(t *testing.T) {
	var log []string
	mu := &sync.Mutex{}
	m := NewWorkerManager(zap.NewNop())

	require.NoError(t, m.Register(&fakeWorker{name: "a", log: &log, mu: mu}))
	require.NoError(t, m.Register(&fakeWorker{name: "b", log: &log, mu: mu}))
	require.NoError(t, m.Register(&fakeWorker{name: "c", log: &log, mu: mu, startErr: errors.New("boom")}))

	err := m.StartAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start c")
	assert.False(t, m.IsRunning())
	assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, log)
}
