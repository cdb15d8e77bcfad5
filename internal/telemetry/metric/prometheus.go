// Package metric provides Prometheus metrics for keyforge.
package metric

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "keyforge"

// Verification outcomes.
const (
	OutcomeValid     = "valid"
	OutcomeExpired   = "expired"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"
	OutcomeOK        = "ok"
)

// Registry holds all application metrics on a dedicated Prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	KeysIssued        prometheus.Counter
	KeyVerifications  *prometheus.CounterVec
	InviteOperations  *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with Go and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &Registry{
		registry: reg,
		KeysIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_issued_total",
			Help:      "Total number of API keys issued",
		}),
		KeyVerifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "key_verifications_total",
			Help:      "Total number of API key verifications by outcome",
		}, []string{"outcome"}),
		InviteOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invite_operations_total",
			Help:      "Total number of invite code operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of codec operations in seconds",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"operation"}),
	}
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Gatherer exposes the underlying registry for custom exposition.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Register adds a custom collector.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.registry.Register(c)
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is written atomically.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// IncKeysIssued counts an issued key.
func (r *Registry) IncKeysIssued() {
	r.KeysIssued.Inc()
}

// RecordKeyVerification counts a verification outcome.
func (r *Registry) RecordKeyVerification(outcome string) {
	r.KeyVerifications.WithLabelValues(outcome).Inc()
}

// RecordInviteOperation counts an invite operation.
func (r *Registry) RecordInviteOperation(operation, outcome string) {
	r.InviteOperations.WithLabelValues(operation, outcome).Inc()
}

// ObserveOperationDuration records the duration of an operation in seconds.
func (r *Registry) ObserveOperationDuration(operation string, seconds float64) {
	r.OperationDuration.WithLabelValues(operation).Observe(seconds)
}
