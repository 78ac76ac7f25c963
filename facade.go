package tracer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/outpostdev/tracer/internal/latency"
	"github.com/outpostdev/tracer/internal/metrics"
	"github.com/outpostdev/tracer/internal/sampleconf"
	"github.com/outpostdev/tracer/zipkinb3"
)

const histogramLogInterval = 30 * time.Second

// facade is the process-wide singleton wiring the configuration store,
// sampler, propagators and the real SDK TracerProvider together. It is
// built lazily on first use by Init, mirroring the teacher's pattern of
// a package-level tracer that springs into existence on first call
// rather than requiring explicit setup in every program.
type facade struct {
	store    *sampleconf.Store
	metrics  *metrics.Metrics
	reporter sampleconf.ReporterConfig
	tp       *sdktrace.TracerProvider
	hist     *latency.Recorder
	logger   *zap.Logger
	tracer   trace.Tracer
	proc     string
}

var (
	once     sync.Once
	instance *facade
)

// Init builds the process singleton (once); it returns nothing. Callers rarely
// need to invoke it directly: StartSpan/CurrentContextBlob/etc. call it
// for you.
func Init() {
	once.Do(func() {
		instance = newFacade()
	})
}

func facadeInstance() *facade {
	Init()
	return instance
}

func newFacade() *facade {
	logger := zap.NewNop()
	if l, err := zap.NewProduction(); err == nil {
		logger = l
	}
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		logger.Warn("otel sdk reported an error", zap.Error(err))
	}))

	confPath := sampleconf.ResolveConfPath()
	metricsSink := metrics.New(prometheus.DefaultRegisterer)
	store := sampleconf.New(confPath, logger, metricsSink)
	reporterCfg := sampleconf.LoadReporterConfig(confPath, logger)

	var opts []sdktrace.TracerProviderOption

	if exporter, err := zipkin.New(reporterCfg.Endpoint()); err != nil {
		logger.Warn("failed to build span exporter, spans will be dropped", zap.Error(err))
	} else {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	histRecorder := latency.NewRecorder(logger, histogramLogInterval, reporterCfg.LogSpans)
	opts = append(opts, sdktrace.WithSpanProcessor(histRecorder))

	proc := processName()
	sampler := NewSampler(store, metricsSink)
	res, err := sdkresource.New(context.Background(),
		sdkresource.WithAttributes(semconv.ServiceName(proc)))
	if err != nil {
		res = sdkresource.Default()
	}

	opts = append(opts,
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
		sdktrace.WithResource(res),
	)

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(Propagator{}, zipkinb3.Propagator{}))

	return &facade{
		store:    store,
		metrics:  metricsSink,
		reporter: reporterCfg,
		tp:       tp,
		hist:     histRecorder,
		logger:   logger,
		tracer:   tp.Tracer(proc),
		proc:     proc,
	}
}

// Shutdown flushes the exporter and stops the latency recorder's
// background logging goroutine. Programs that `defer tracer.Shutdown(ctx)`
// get a clean exit; it is optional otherwise.
func Shutdown(ctx context.Context) error {
	f := facadeInstance()
	err := f.tp.Shutdown(ctx)
	if histErr := f.hist.Shutdown(ctx); histErr != nil && err == nil {
		err = histErr
	}
	return err
}

// StartSpan starts a new span named "<proc>.<fn>" (fn defaults to
// "func" when empty), optionally as a child of the context encoded in
// parentBlob, and activates it on the ambient context stack. uid/cmd
// feed the Sampler's decision when this is a root span (root=true);
// they are otherwise recorded only as attributes.
func StartSpan(parentBlob []byte, proc, fn string, kind trace.SpanKind, uid, cmd uint32, root bool) *Scope {
	f := facadeInstance()

	ctx := context.Background()
	if len(parentBlob) > 0 {
		carrier := NewCarrier()
		carrier.Set(fieldName, string(parentBlob))
		ctx = Propagator{}.Extract(ctx, carrier)
	}

	tracerName := normalizeProc(proc, f.proc)
	spanName := tracerName + "." + normalizeFunc(fn)

	tr := otel.Tracer(tracerName)
	spanCtx, span := tr.Start(ctx, spanName, trace.WithSpanKind(kind), trace.WithAttributes(spanAttrs(uid, cmd, root)...))

	token := attachAmbient(spanCtx)

	if f.reporter.LogSpans {
		sc := span.SpanContext()
		f.logger.Debug("span started",
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
			zap.Bool("sampled", sc.IsSampled()))
	}

	return newScope(span, token)
}

// EndSpan finishes s. errCode of 0 marks the span ok; any other value
// marks it as an error with errMsg as the status description.
func EndSpan(s *Scope, errCode int, errMsg string) {
	if s == nil {
		return
	}
	s.endLocked(errCode, errMsg)
}

// StartIsolatedSpan is identical to StartSpan except the resulting span
// is never activated on the ambient context stack: instead its context
// is immediately encoded and returned via IsolatedScope.GetContext, for
// explicit propagation to another goroutine or async continuation. Any
// push/pop of the ambient stack such activation would otherwise need is
// elided here since it would not be observable by the caller.
func StartIsolatedSpan(parentBlob []byte, proc, fn string, kind trace.SpanKind, uid, cmd uint32, root bool) *IsolatedScope {
	f := facadeInstance()

	ctx := context.Background()
	if len(parentBlob) > 0 {
		carrier := NewCarrier()
		carrier.Set(fieldName, string(parentBlob))
		ctx = Propagator{}.Extract(ctx, carrier)
	}

	tracerName := normalizeProc(proc, f.proc)
	spanName := tracerName + "." + normalizeFunc(fn)

	tr := otel.Tracer(tracerName)
	spanCtx, span := tr.Start(ctx, spanName, trace.WithSpanKind(kind), trace.WithAttributes(spanAttrs(uid, cmd, root)...))

	carrier := NewCarrier()
	Propagator{}.Inject(spanCtx, carrier)
	blob := []byte(carrier.Get(fieldName))

	return newIsolatedScope(span, blob)
}

// EndIsolatedSpan finishes s, mirroring EndSpan.
func EndIsolatedSpan(s *IsolatedScope, errCode int, errMsg string) {
	if s == nil {
		return
	}
	s.endLocked(errCode, errMsg)
}

// CurrentContextBlob encodes the SpanContext currently active on the
// ambient context stack, or nil if nothing is active.
func CurrentContextBlob() []byte {
	facadeInstance()
	ctx := currentAmbientContext()
	carrier := NewCarrier()
	Propagator{}.Inject(ctx, carrier)
	blob := carrier.Get(fieldName)
	if blob == "" {
		return nil
	}
	return []byte(blob)
}

func normalizeProc(proc, fallback string) string {
	proc = strings.ToLower(strings.TrimSpace(proc))
	if proc == "" {
		return fallback
	}
	return proc
}

func normalizeFunc(fn string) string {
	fn = strings.TrimSpace(fn)
	if fn == "" {
		return "func"
	}
	return fn
}

func processName() string {
	if exe, err := os.Executable(); err == nil {
		base := filepath.Base(exe)
		if base != "" && base != "." {
			return strings.ToLower(base)
		}
	}
	if len(os.Args) > 0 {
		base := filepath.Base(os.Args[0])
		if base != "" && base != "." {
			return strings.ToLower(base)
		}
	}
	return "proc"
}

func spanAttrs(uid, cmd uint32, root bool) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if uid > 0 {
		attrs = append(attrs, attrUID.Int64(int64(uid)))
	}
	if cmd > 0 {
		attrs = append(attrs, attrCmd.Int64(int64(cmd)))
	}
	if root {
		attrs = append(attrs, attrRot.Bool(true))
	}
	return attrs
}
