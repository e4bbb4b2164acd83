// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// Each instance owns its registry, so tests can create as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
	TasksCreated    prometheus.Counter
	SettingsWritten *prometheus.CounterVec
	Errors          *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "feedhub_http_requests_total",
			Help: "HTTP requests by method, route template and status code",
		}, []string{"method", "route", "code"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feedhub_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route template",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		TasksCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "feedhub_tasks_created_total",
			Help: "Total number of task list entries created",
		}),
		SettingsWritten: f.NewCounterVec(prometheus.CounterOpts{
			Name: "feedhub_settings_written_total",
			Help: "Config writes by mode (merge, replace)",
		}, []string{"mode"}),
		Errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "feedhub_errors_total",
			Help: "Errors returned to clients by kind",
		}, []string{"kind"}),
	}
}

// Handler отдаёт /metrics для собственного реестра.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Методы ниже безопасны для nil: хендлеры в тестах собираются без метрик.

func (m *Metrics) IncrementTasksCreated() {
	if m != nil {
		m.TasksCreated.Inc()
	}
}

func (m *Metrics) IncrementSettingsWritten(mode string) {
	if m != nil {
		m.SettingsWritten.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) IncrementErrors(kind string) {
	if m != nil {
		m.Errors.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) ObserveRequest(method, route, code string, seconds float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, route, code).Inc()
	m.Duration.WithLabelValues(method, route).Observe(seconds)
}
