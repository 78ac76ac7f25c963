package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestPropagatorInjectExtractRoundTrip(t *testing.T) {
	traceID, err := hexToTraceID("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	spanID, err := hexToSpanID("fedcba9876543210")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithRemoteSpanContext(context.Background(), sc)
	ctx = contextWithBaggage(ctx, NewTraceState([2]string{"k", "v"}))

	carrier := NewCarrier()
	Propagator{}.Inject(ctx, carrier)
	require.NotEmpty(t, carrier.Get(fieldName))

	extracted := Propagator{}.Extract(context.Background(), carrier)
	gotSC := trace.SpanContextFromContext(extracted)
	assert.Equal(t, traceID, gotSC.TraceID())
	assert.Equal(t, spanID, gotSC.SpanID())
	assert.True(t, gotSC.IsSampled())
	assert.True(t, gotSC.IsRemote())

	v, ok := baggageFromContext(extracted).Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestPropagatorInjectNoActiveSpanIsNoop(t *testing.T) {
	carrier := NewCarrier()
	Propagator{}.Inject(context.Background(), carrier)
	assert.Empty(t, carrier.Get(fieldName))
}

func TestPropagatorExtractMalformedLeavesContextUnchanged(t *testing.T) {
	carrier := NewCarrier()
	carrier.Set(fieldName, "not-a-valid-blob")
	ctx := Propagator{}.Extract(context.Background(), carrier)
	assert.False(t, trace.SpanContextFromContext(ctx).IsValid())
}

func TestPropagatorFields(t *testing.T) {
	assert.Equal(t, []string{fieldName}, Propagator{}.Fields())
}
