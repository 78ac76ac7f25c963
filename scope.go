package tracer

import (
	"fmt"
	"runtime"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Scope couples a live span to the activation token that pushed it
// onto the ambient context stack. It has no exported fields and no
// public constructor: callers obtain one from StartSpan and must
// eventually call EndSpan on it. Go has no destructors, so unlike the
// move-only RAII handle this is modeled on, nothing stops a Scope
// value from being copied; callers should treat it as an opaque
// pointer and pass *Scope, never Scope by value.
type Scope struct {
	span  trace.Span
	token *ambientToken

	mu    sync.Mutex
	ended bool
}

func newScope(span trace.Span, token *ambientToken) *Scope {
	s := &Scope{span: span, token: token}
	// Best-effort safety net: if a caller drops a Scope without ever
	// calling EndSpan, still end the span and release the ambient
	// token so the stack doesn't leak a stale entry forever. This
	// mirrors (imperfectly, since GC timing isn't deterministic) the
	// automatic teardown a non-GC'd handle would get from its
	// destructor. endLocked(0, "") reports status Ok on this path; a
	// span that is merely abandoned (rather than explicitly ended
	// with EndSpan) arguably shouldn't report any status at all, but
	// a span with no status is as much a judgment call as one marked
	// Ok, and this keeps endLocked single-pathed for both callers.
	runtime.SetFinalizer(s, func(s *Scope) { s.endLocked(0, "") })
	return s
}

// SetAttr attaches a single attribute to the span. Supported value
// types are bool, int, int64, float64 and string; any other type is
// stringified with fmt.Sprintf("%v", ...).
func (s *Scope) SetAttr(key string, value interface{}) {
	if s == nil || s.span == nil {
		return
	}
	s.span.SetAttributes(toAttribute(key, value))
}

// TraceID returns the lower-case 32-hex-digit trace id of the active
// span.
func (s *Scope) TraceID() string {
	if s == nil || s.span == nil {
		return ""
	}
	return s.span.SpanContext().TraceID().String()
}

func (s *Scope) endLocked(errCode int, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	if s.span != nil {
		if errCode != 0 {
			s.span.SetAttributes(attrErr.Int(errCode))
			s.span.SetStatus(codes.Error, errMsg)
		} else {
			s.span.SetStatus(codes.Ok, "")
		}
		s.span.End()
	}
	if s.token != nil {
		s.token.release()
	}
	runtime.SetFinalizer(s, nil)
}

// IsolatedScope is a span handle that was never activated on the
// ambient context stack: it carries its own context snapshot for the
// caller to propagate explicitly (typically to a different goroutine
// or an asynchronous continuation) instead of relying on ambient
// lookups.
type IsolatedScope struct {
	span trace.Span
	blob []byte

	mu    sync.Mutex
	ended bool
}

func newIsolatedScope(span trace.Span, blob []byte) *IsolatedScope {
	s := &IsolatedScope{span: span, blob: blob}
	runtime.SetFinalizer(s, func(s *IsolatedScope) { s.endLocked(0, "") })
	return s
}

// GetContext returns the encoded SpanContext blob snapshotted when
// this IsolatedScope was created; it is suitable for handing to
// StartSpan/StartIsolatedSpan elsewhere as a parent context.
func (s *IsolatedScope) GetContext() []byte {
	if s == nil {
		return nil
	}
	return s.blob
}

// TraceID returns the lower-case 32-hex-digit trace id of the span.
func (s *IsolatedScope) TraceID() string {
	if s == nil || s.span == nil {
		return ""
	}
	return s.span.SpanContext().TraceID().String()
}

// SetAttr attaches a single attribute to the span.
func (s *IsolatedScope) SetAttr(key string, value interface{}) {
	if s == nil || s.span == nil {
		return
	}
	s.span.SetAttributes(toAttribute(key, value))
}

func (s *IsolatedScope) endLocked(errCode int, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	if s.span != nil {
		if errCode != 0 {
			s.span.SetAttributes(attrErr.Int(errCode))
			s.span.SetStatus(codes.Error, errMsg)
		} else {
			s.span.SetStatus(codes.Ok, "")
		}
		s.span.End()
	}
	runtime.SetFinalizer(s, nil)
}

func toAttribute(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case string:
		return attribute.String(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
