// Package metrics exposes render counters in the Prometheus format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/df07/go-wavefront-tracer/pkg/kernel"
)

// Metrics holds the collectors of one renderer. Each instance owns its own
// registry so several renderers can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	// stageDecisions counts background stage outcomes by next kernel
	stageDecisions *prometheus.CounterVec

	// pathsShaded counts paths run through the background stage
	pathsShaded prometheus.Counter

	// batchDuration tracks wall time per wavefront batch
	batchDuration prometheus.Histogram

	// rendersTotal counts finished renders by result
	rendersTotal *prometheus.CounterVec
}

// New creates a metrics set on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		stageDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wavefront_shade_background_decisions_total",
			Help: "Background stage decisions by next device kernel",
		}, []string{"kernel"}),
		pathsShaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "wavefront_shade_background_paths_total",
			Help: "Total paths shaded by the background stage",
		}),
		batchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "wavefront_batch_duration_seconds",
			Help:    "Wavefront batch duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
		}),
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wavefront_renders_total",
			Help: "Total renders by result",
		}, []string{"result"}), // "ok", "canceled" or "aborted"
	}
}

// Registry returns the registry holding every collector
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveDecision records the next kernel chosen for a path
func (m *Metrics) ObserveDecision(k kernel.DeviceKernel) {
	m.pathsShaded.Inc()
	m.stageDecisions.WithLabelValues(k.String()).Inc()
}

// ObserveBatch records the duration of one batch
func (m *Metrics) ObserveBatch(d time.Duration) {
	m.batchDuration.Observe(d.Seconds())
}

// ObserveRender records the outcome of a render
func (m *Metrics) ObserveRender(result string) {
	m.rendersTotal.WithLabelValues(result).Inc()
}
