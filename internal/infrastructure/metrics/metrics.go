// Package metrics provides Prometheus instrumentation fed by domain events.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/garyjia/hr-portal/internal/application/dispatcher"
	"github.com/garyjia/hr-portal/internal/domain/event"
)

// Metrics holds the portal's collectors
type Metrics struct {
	pipelinesResolved   *prometheus.CounterVec
	submissionsImported *prometheus.CounterVec
	dispatchTotal       *prometheus.CounterVec
	dispatchDuration    *prometheus.HistogramVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

// New registers the collectors with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		pipelinesResolved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_pipelines_resolved_total",
				Help: "Total number of submissions resolved into pipeline views",
			},
			[]string{"form_type", "outcome"}, // outcome: Approved, Rejected, In Progress
		),
		submissionsImported: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_submissions_imported_total",
				Help: "Total number of submissions written to the local cache",
			},
			[]string{"form_type"},
		),
		dispatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_confirmation_dispatch_total",
				Help: "Total number of IT incident confirmation dispatches",
			},
			[]string{"action", "result"}, // result: success, error
		),
		dispatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_confirmation_dispatch_duration_seconds",
				Help:    "Confirmation dispatch duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"action"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Subscribe attaches the event handlers that feed the collectors
func (m *Metrics) Subscribe(d dispatcher.Dispatcher) {
	d.SubscribeNamed(event.TypePipelineResolved, "metrics.pipeline_resolved", m.onPipelineResolved)
	d.SubscribeNamed(event.TypeSubmissionsImported, "metrics.submissions_imported", m.onSubmissionsImported)
	d.SubscribeNamed(event.TypeConfirmationSucceeded, "metrics.confirmation_succeeded", m.onConfirmationResult("success"))
	d.SubscribeNamed(event.TypeConfirmationFailed, "metrics.confirmation_failed", m.onConfirmationResult("error"))
}

func (m *Metrics) onPipelineResolved(_ context.Context, evt *event.Event) error {
	outcomes, ok := evt.Payload["outcomes"].(map[string]int)
	if !ok {
		return nil
	}
	for outcome, n := range outcomes {
		m.pipelinesResolved.WithLabelValues(evt.FormType, outcome).Add(float64(n))
	}
	return nil
}

func (m *Metrics) onSubmissionsImported(_ context.Context, evt *event.Event) error {
	m.submissionsImported.WithLabelValues(evt.FormType).Add(float64(evt.GetPayloadInt("stored")))
	return nil
}

func (m *Metrics) onConfirmationResult(result string) dispatcher.Handler {
	return func(_ context.Context, evt *event.Event) error {
		action := evt.GetPayloadString("action")
		m.dispatchTotal.WithLabelValues(action, result).Inc()
		elapsed := time.Duration(evt.GetPayloadInt("duration_ms")) * time.Millisecond
		m.dispatchDuration.WithLabelValues(action).Observe(elapsed.Seconds())
		return nil
	}
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
