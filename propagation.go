package tracer

import (
	"context"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// fieldName is the single carrier key the Propagator reads and writes.
const fieldName = "trace-ctx"

type baggageContextKey struct{}

// contextWithBaggage attaches a baggage snapshot to ctx so it survives
// alongside the real SDK span context that trace.ContextWithSpan /
// trace.ContextWithRemoteSpanContext install.
func contextWithBaggage(ctx context.Context, state TraceState) context.Context {
	return context.WithValue(ctx, baggageContextKey{}, state)
}

// baggageFromContext returns the baggage snapshot stashed by
// contextWithBaggage, or an empty TraceState if none was set.
func baggageFromContext(ctx context.Context) TraceState {
	if state, ok := ctx.Value(baggageContextKey{}).(TraceState); ok {
		return state
	}
	return TraceState{}
}

// Propagator implements propagation.TextMapPropagator using the binary
// codec in codec.go under the single field name "trace-ctx".
type Propagator struct{}

var _ propagation.TextMapPropagator = Propagator{}

// Inject encodes the SpanContext currently active on ctx (if any) into
// carrier. It is a no-op when ctx carries no valid span context.
func (Propagator) Inject(ctx context.Context, carrier propagation.TextMapCarrier) {
	otelSC := trace.SpanContextFromContext(ctx)
	if !otelSC.IsValid() {
		return
	}
	sc := spanContextFromOtel(otelSC, baggageFromContext(ctx))
	carrier.Set(fieldName, string(Encode(sc)))
}

// Extract decodes the "trace-ctx" field of carrier, if present and
// well-formed, and returns a context carrying it as a remote parent.
// An empty or malformed field leaves ctx unchanged.
func (Propagator) Extract(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	blob := carrier.Get(fieldName)
	if blob == "" {
		return ctx
	}
	sc := Decode([]byte(blob))
	if !sc.IsValid() {
		return ctx
	}
	ctx = trace.ContextWithRemoteSpanContext(ctx, sc.otelSpanContext())
	ctx = contextWithBaggage(ctx, sc.state)
	return ctx
}

// Fields implements propagation.TextMapPropagator.
func (Propagator) Fields() []string {
	return []string{fieldName}
}
