package zipkinb3

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

type mapCarrier map[string]string

func (c mapCarrier) Get(key string) string     { return c[key] }
func (c mapCarrier) Set(key, value string)     { c[key] = value }
func (c mapCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

func TestInjectExtractRoundTrip(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("0123456789abcdef0123456789abcdef")
	assert.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("fedcba9876543210")
	assert.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithRemoteSpanContext(context.Background(), sc)

	carrier := mapCarrier{}
	Propagator{}.Inject(ctx, carrier)
	assert.Equal(t, traceID.String(), carrier.Get(traceIDHeader))
	assert.Equal(t, spanID.String(), carrier.Get(spanIDHeader))
	assert.Equal(t, "1", carrier.Get(sampledHeader))

	extracted := Propagator{}.Extract(context.Background(), carrier)
	gotSC := trace.SpanContextFromContext(extracted)
	assert.Equal(t, traceID, gotSC.TraceID())
	assert.Equal(t, spanID, gotSC.SpanID())
	assert.True(t, gotSC.IsSampled())
}

func TestExtractAcceptsShortTraceID(t *testing.T) {
	carrier := mapCarrier{
		traceIDHeader: "cafebabe",
		spanIDHeader:  "deadbeef",
		sampledHeader: "0",
	}
	ctx := Propagator{}.Extract(context.Background(), carrier)
	sc := trace.SpanContextFromContext(ctx)
	assert.True(t, sc.IsValid())
	assert.False(t, sc.IsSampled())
}

func TestExtractMissingHeadersLeavesContextUnchanged(t *testing.T) {
	ctx := Propagator{}.Extract(context.Background(), mapCarrier{})
	assert.False(t, trace.SpanContextFromContext(ctx).IsValid())
}

func TestFields(t *testing.T) {
	assert.ElementsMatch(t, []string{traceIDHeader, spanIDHeader, parentSpanIDHeader, sampledHeader}, Propagator{}.Fields())
}
