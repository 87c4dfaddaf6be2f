package dispatcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/hr-portal/internal/domain/event"
)

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l *recordingLogger) Error(msg string, keysAndValues ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func newEvent(t event.Type) *event.Event {
	return event.NewEvent(t, "it-incident", "INC-1", nil)
}

func TestDispatch_RunsHandlersInOrder(t *testing.T) {
	d := NewDispatcher()
	var order []string

	d.SubscribeNamed(event.TypeConfirmationSucceeded, "first", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "first")
		return nil
	})
	d.SubscribeNamed(event.TypeConfirmationSucceeded, "second", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "second")
		return nil
	})
	d.Subscribe(event.TypeConfirmationFailed, func(ctx context.Context, evt *event.Event) error {
		order = append(order, "other")
		return nil
	})

	require.NoError(t, d.Dispatch(context.Background(), newEvent(event.TypeConfirmationSucceeded)))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestDispatch_StopsAtFirstError(t *testing.T) {
	d := NewDispatcher()
	boom := errors.New("boom")
	called := false

	d.SubscribeNamed(event.TypeConfirmationFailed, "failing", func(ctx context.Context, evt *event.Event) error {
		return boom
	})
	d.SubscribeNamed(event.TypeConfirmationFailed, "after", func(ctx context.Context, evt *event.Event) error {
		called = true
		return nil
	})

	err := d.Dispatch(context.Background(), newEvent(event.TypeConfirmationFailed))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
	assert.False(t, called)
}

func TestDispatch_RecoversPanics(t *testing.T) {
	logger := &recordingLogger{}
	d := NewDispatcher(WithLogger(logger))

	d.Subscribe(event.TypePipelineResolved, func(ctx context.Context, evt *event.Event) error {
		panic("kaboom")
	})

	err := d.Dispatch(context.Background(), newEvent(event.TypePipelineResolved))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
	assert.NotEmpty(t, logger.errors)
}

func TestDispatchAsync_CloseWaitsForHandlers(t *testing.T) {
	d := NewDispatcher()
	var count atomic.Int32

	for i := 0; i < 3; i++ {
		d.Subscribe(event.TypeConfirmationSubmitted, func(ctx context.Context, evt *event.Event) error {
			count.Add(1)
			return nil
		})
	}

	d.DispatchAsync(context.Background(), newEvent(event.TypeConfirmationSubmitted))
	require.NoError(t, d.Close())
	assert.Equal(t, int32(3), count.Load())
}

func TestClosedDispatcher(t *testing.T) {
	logger := &recordingLogger{}
	d := NewDispatcher(WithLogger(logger))
	require.NoError(t, d.Close())

	assert.ErrorIs(t, d.Dispatch(context.Background(), newEvent(event.TypePipelineResolved)), ErrClosed)
	d.DispatchAsync(context.Background(), newEvent(event.TypePipelineResolved))
	assert.Len(t, logger.errors, 1)
	assert.Error(t, d.Close())
}

func TestListHandlers_HidesFunctions(t *testing.T) {
	d := NewDispatcher()
	d.SubscribeNamed(event.TypeSubmissionsImported, "metrics", func(ctx context.Context, evt *event.Event) error { return nil })

	handlers := d.ListHandlers(event.TypeSubmissionsImported)
	require.Len(t, handlers, 1)
	assert.Equal(t, "metrics", handlers[0].Name)
	assert.Nil(t, handlers[0].Handler)
	assert.Empty(t, d.ListHandlers(event.TypeConfirmationFailed))
}
