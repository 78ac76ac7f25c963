package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func testTracerProvider() *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
}

func TestScopeEndSpanIsIdempotent(t *testing.T) {
	tp := testTracerProvider()
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	token := attachAmbient(context.Background())
	scope := newScope(span, token)

	EndSpan(scope, 0, "")
	assert.NotPanics(t, func() { EndSpan(scope, 1, "boom") })
}

func TestScopeSetAttrOnNilIsNoop(t *testing.T) {
	var scope *Scope
	assert.NotPanics(t, func() { scope.SetAttr("k", "v") })
	assert.Equal(t, "", scope.TraceID())
}

func TestIsolatedScopeGetContextReturnsSnapshot(t *testing.T) {
	tp := testTracerProvider()
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	iso := newIsolatedScope(span, []byte("blob"))
	assert.Equal(t, []byte("blob"), iso.GetContext())
	EndIsolatedSpan(iso, 0, "")
}

func TestAmbientAttachDetachRestoresPrevious(t *testing.T) {
	base := currentAmbientContext()

	type key struct{}
	pushed := context.WithValue(context.Background(), key{}, "pushed")
	token := attachAmbient(pushed)
	assert.Equal(t, pushed, currentAmbientContext())

	token.release()
	assert.Equal(t, base, currentAmbientContext())

	// releasing twice is a no-op
	token.release()
	assert.Equal(t, base, currentAmbientContext())
}
