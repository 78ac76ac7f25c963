// Package latency records span durations into an HDR histogram and
// periodically logs percentile snapshots. The ticker/close-channel/
// waitgroup lifecycle is adapted from the teacher's remote throttler
// poll loop, repurposed here for latency reporting instead of credit
// polling.
package latency

import (
	"context"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"go.uber.org/zap"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	minRecordableMillis = 1
	maxRecordableMillis = 60_000
	significantFigures   = 3
)

// Recorder is an sdktrace.SpanProcessor that feeds every finished
// span's duration into an HDR histogram and logs p50/p95/p99 on a
// fixed interval while enabled.
type Recorder struct {
	mu     sync.Mutex
	hist   *hdrhistogram.Histogram
	logger *zap.Logger
	enabled bool

	interval time.Duration
	close    chan struct{}
	stopped  sync.WaitGroup
}

var _ sdktrace.SpanProcessor = (*Recorder)(nil)

// NewRecorder builds a Recorder that logs a percentile snapshot every
// interval. When enabled is false, durations are still recorded but no
// background logging goroutine is started, matching
// ReporterConfig.LogSpans=false.
func NewRecorder(logger *zap.Logger, interval time.Duration, enabled bool) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recorder{
		hist:     hdrhistogram.New(minRecordableMillis, maxRecordableMillis, significantFigures),
		logger:   logger,
		enabled:  enabled,
		interval: interval,
		close:    make(chan struct{}),
	}
	if enabled {
		r.stopped.Add(1)
		go r.pollAndLog()
	}
	return r
}

// OnStart implements sdktrace.SpanProcessor.
func (r *Recorder) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd implements sdktrace.SpanProcessor.
func (r *Recorder) OnEnd(s sdktrace.ReadOnlySpan) {
	d := s.EndTime().Sub(s.StartTime()).Milliseconds()
	if d < minRecordableMillis {
		d = minRecordableMillis
	}
	if d > maxRecordableMillis {
		d = maxRecordableMillis
	}
	r.mu.Lock()
	r.hist.RecordValue(d)
	r.mu.Unlock()
}

// Shutdown implements sdktrace.SpanProcessor.
func (r *Recorder) Shutdown(context.Context) error {
	if r.enabled {
		close(r.close)
		r.stopped.Wait()
	}
	return nil
}

// ForceFlush implements sdktrace.SpanProcessor. The histogram has
// nothing to flush downstream; it is read in place.
func (r *Recorder) ForceFlush(context.Context) error { return nil }

// Snapshot returns the current p50/p95/p99, in milliseconds.
func (r *Recorder) Snapshot() (p50, p95, p99 int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hist.ValueAtQuantile(50), r.hist.ValueAtQuantile(95), r.hist.ValueAtQuantile(99)
}

func (r *Recorder) pollAndLog() {
	defer r.stopped.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p50, p95, p99 := r.Snapshot()
			r.logger.Debug("span duration percentiles",
				zap.Int64("p50_ms", p50), zap.Int64("p95_ms", p95), zap.Int64("p99_ms", p99))
		case <-r.close:
			return
		}
	}
}
