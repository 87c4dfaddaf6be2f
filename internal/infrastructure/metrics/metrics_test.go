package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/hr-portal/internal/application/dispatcher"
	"github.com/garyjia/hr-portal/internal/domain/event"
)

// counterValue sums the samples of a metric family matching labels
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			if m.GetCounter() != nil {
				total += m.GetCounter().GetValue()
			}
			if m.GetHistogram() != nil {
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return total
}

func TestMetrics_FedByDispatcher(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	d := dispatcher.NewDispatcher()
	defer d.Close()
	m.Subscribe(d)

	ctx := context.Background()
	require.NoError(t, d.Dispatch(ctx, event.NewEvent(event.TypePipelineResolved, "leave-request", "", map[string]interface{}{
		"count":    3,
		"outcomes": map[string]int{"Approved": 2, "Rejected": 1},
	})))
	require.NoError(t, d.Dispatch(ctx, event.NewEvent(event.TypeSubmissionsImported, "leave-request", "", map[string]interface{}{
		"received": 5,
		"stored":   4,
	})))
	require.NoError(t, d.Dispatch(ctx, event.NewEvent(event.TypeConfirmationSucceeded, "it-incident", "INC-1", map[string]interface{}{
		"action":      "Confirmed",
		"duration_ms": int64(120),
	})))
	require.NoError(t, d.Dispatch(ctx, event.NewEvent(event.TypeConfirmationFailed, "it-incident", "INC-2", map[string]interface{}{
		"action":      "Rejected",
		"duration_ms": int64(40),
	})))

	assert.Equal(t, 2.0, counterValue(t, reg, "portal_pipelines_resolved_total", map[string]string{"outcome": "Approved"}))
	assert.Equal(t, 3.0, counterValue(t, reg, "portal_pipelines_resolved_total", nil))
	assert.Equal(t, 4.0, counterValue(t, reg, "portal_submissions_imported_total", map[string]string{"form_type": "leave-request"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "portal_confirmation_dispatch_total", map[string]string{"result": "success"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "portal_confirmation_dispatch_total", map[string]string{"result": "error", "action": "Rejected"}))
	assert.Equal(t, 2.0, counterValue(t, reg, "portal_confirmation_dispatch_duration_seconds", nil))
}

func TestMetrics_ObserveHTTP(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveHTTP("GET", "/health", "200", 5*time.Millisecond)
	m.ObserveHTTP("GET", "/health", "200", 7*time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, reg, "portal_http_requests_total", map[string]string{"route": "/health"}))
}

func TestMetrics_IgnoresMalformedPayload(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	require.NoError(t, m.onPipelineResolved(context.Background(), event.NewEvent(event.TypePipelineResolved, "x", "", map[string]interface{}{
		"outcomes": "not a map",
	})))
	assert.Zero(t, counterValue(t, reg, "portal_pipelines_resolved_total", nil))
}
