package tracer

import (
	"fmt"

	"go.opentelemetry.io/otel/trace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// confStore is the subset of internal/sampleconf.Store the Sampler
// depends on; it exists so sampler_test.go can swap in a fake without
// importing the internal package.
type confStore interface {
	CheckPass(uid, cmd uint32, rot bool) bool
}

// Sampler implements sdktrace.Sampler by delegating the pass/drop
// decision to a Sampling Configuration Store. It only ever looks at
// root spans: children inherit their parent's decision via
// sdktrace.ParentBased, which is expected to wrap this Sampler.
type Sampler struct {
	conf    confStore
	metrics samplerMetrics
}

// samplerMetrics is the minimal counter surface the Sampler reports
// through; internal/metrics.Metrics satisfies it.
type samplerMetrics interface {
	IncSamplesTaken()
	IncSamplesDropped()
}

// NewSampler builds a Sampler over the given configuration store and
// optional metrics sink (nil is accepted and simply skips reporting).
func NewSampler(conf confStore, metrics samplerMetrics) *Sampler {
	return &Sampler{conf: conf, metrics: metrics}
}

// ShouldSample implements sdktrace.Sampler.
func (s *Sampler) ShouldSample(p sdktrace.SamplingParameters) sdktrace.SamplingResult {
	var uid, cmd uint32
	var rot bool
	for _, kv := range p.Attributes {
		switch kv.Key {
		case attrUID:
			uid = uint32(kv.Value.AsInt64())
		case attrCmd:
			cmd = uint32(kv.Value.AsInt64())
		case attrRot:
			rot = kv.Value.AsBool()
		}
	}

	decision := sdktrace.Drop
	if s.conf.CheckPass(uid, cmd, rot) {
		decision = sdktrace.RecordAndSample
	}

	if s.metrics != nil {
		if decision == sdktrace.RecordAndSample {
			s.metrics.IncSamplesTaken()
		} else {
			s.metrics.IncSamplesDropped()
		}
	}

	return sdktrace.SamplingResult{
		Decision:   decision,
		Tracestate: trace.SpanContextFromContext(p.ParentContext).TraceState(),
	}
}

// Description implements sdktrace.Sampler.
func (s *Sampler) Description() string {
	return fmt.Sprintf("CustomSampler{%T}", s.conf)
}
