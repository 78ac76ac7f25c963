// Package metrics wires the facade's counters through uber/jaeger-lib's
// metrics.Factory abstraction, the same indirection jaeger-client-go
// itself uses for its own sampler and reporter metrics.
package metrics

import (
	jlibmetrics "github.com/uber/jaeger-lib/metrics"
	jlibprom "github.com/uber/jaeger-lib/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters/gauges reported by the sampler and the
// sampling configuration store. Field tags are consumed by
// jlibmetrics.Init via reflection, following the same pattern
// jaeger-client-go uses for its internal Metrics struct.
type Metrics struct {
	SamplesTaken     jlibmetrics.Counter `metric:"sample_taken" help:"Number of root spans sampled"`
	SamplesDropped   jlibmetrics.Counter `metric:"sample_dropped" help:"Number of root spans dropped"`
	ConfigReloadOK   jlibmetrics.Counter `metric:"config_reload_success" help:"Number of successful sampling config reloads"`
	ConfigReloadErr  jlibmetrics.Counter `metric:"config_reload_error" help:"Number of failed sampling config reloads"`
	FloorTriggered   jlibmetrics.Counter `metric:"sample_floor_triggered" help:"Number of samples granted by the per-command floor guarantee"`
	ActiveRatio      jlibmetrics.Gauge   `metric:"sample_ratio" help:"Currently configured sampling ratio, in basis points out of 10000"`
}

// New builds a Metrics backed by a Prometheus registry, namespaced
// under "tracer".
func New(registerer prometheus.Registerer) *Metrics {
	factory := jlibprom.New(jlibprom.WithRegisterer(registerer))
	m := &Metrics{}
	jlibmetrics.Init(m, factory.Namespace(jlibmetrics.NSOptions{Name: "tracer"}), nil)
	return m
}

// IncSamplesTaken satisfies the Sampler's metrics dependency.
func (m *Metrics) IncSamplesTaken() { m.SamplesTaken.Inc(1) }

// IncSamplesDropped satisfies the Sampler's metrics dependency.
func (m *Metrics) IncSamplesDropped() { m.SamplesDropped.Inc(1) }

// IncConfigReloadOK satisfies the Store's metrics dependency.
func (m *Metrics) IncConfigReloadOK() { m.ConfigReloadOK.Inc(1) }

// IncConfigReloadErr satisfies the Store's metrics dependency.
func (m *Metrics) IncConfigReloadErr() { m.ConfigReloadErr.Inc(1) }

// IncFloorTriggered satisfies the Store's metrics dependency.
func (m *Metrics) IncFloorTriggered() { m.FloorTriggered.Inc(1) }

// SetActiveRatio satisfies the Store's metrics dependency.
func (m *Metrics) SetActiveRatio(ratio uint32) { m.ActiveRatio.Update(int64(ratio)) }
