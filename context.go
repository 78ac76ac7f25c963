// Copyright (c) 2017 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tracer

import (
	"go.opentelemetry.io/otel/trace"
)

// TraceID and SpanID reuse the real SDK's byte layout so a decoded
// SpanContext can be handed straight to trace.ContextWithRemoteSpanContext
// without any further conversion.
type TraceID = trace.TraceID
type SpanID = trace.SpanID
type TraceFlags = trace.TraceFlags

const flagSampled = trace.FlagsSampled

// baggagePair is one key/value entry of a TraceState, kept in insertion
// order so that decode-then-encode reproduces the original wire bytes.
type baggagePair struct {
	Key, Value string
}

// TraceState is an ordered collection of opaque baggage key/value pairs.
// Unlike the real SDK's trace.TraceState it does not validate keys or
// values against the W3C tracestate grammar: baggage here is an opaque
// byte string round-tripped verbatim by the wire codec.
type TraceState struct {
	pairs []baggagePair
}

// NewTraceState builds a TraceState from an ordered list of key/value
// pairs. Duplicate keys are kept as given; callers are responsible for
// de-duplicating if that matters to them.
func NewTraceState(pairs ...[2]string) TraceState {
	ts := TraceState{pairs: make([]baggagePair, 0, len(pairs))}
	for _, p := range pairs {
		ts.pairs = append(ts.pairs, baggagePair{Key: p[0], Value: p[1]})
	}
	return ts
}

// Len returns the number of baggage entries.
func (ts TraceState) Len() int { return len(ts.pairs) }

// Get returns the value for key and whether it was present. When the key
// appears more than once the first occurrence wins.
func (ts TraceState) Get(key string) (string, bool) {
	for _, p := range ts.pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// ForEach walks the baggage entries in wire order, stopping early if fn
// returns false.
func (ts TraceState) ForEach(fn func(key, value string) bool) {
	for _, p := range ts.pairs {
		if !fn(p.Key, p.Value) {
			return
		}
	}
}

// WithBaggageItem returns a copy of ts with key=value appended.
func (ts TraceState) WithBaggageItem(key, value string) TraceState {
	next := make([]baggagePair, len(ts.pairs), len(ts.pairs)+1)
	copy(next, ts.pairs)
	next = append(next, baggagePair{Key: key, Value: value})
	return TraceState{pairs: next}
}

// SpanContext is the facade's own propagated identity: a trace id, span
// id, sampled flag and baggage. It intentionally carries no parent span
// id field on the wire side; see the reserved-bytes comment in codec.go
// for why.
type SpanContext struct {
	traceID TraceID
	spanID  SpanID
	flags   TraceFlags
	remote  bool
	state   TraceState
}

// NewSpanContext builds a SpanContext from its constituent parts.
func NewSpanContext(traceID TraceID, spanID SpanID, sampled bool, state TraceState) SpanContext {
	var flags TraceFlags
	if sampled {
		flags = flagSampled
	}
	return SpanContext{traceID: traceID, spanID: spanID, flags: flags, state: state}
}

// TraceID returns the trace id.
func (c SpanContext) TraceID() TraceID { return c.traceID }

// SpanID returns the span id.
func (c SpanContext) SpanID() SpanID { return c.spanID }

// IsSampled reports whether the sampled bit is set.
func (c SpanContext) IsSampled() bool { return c.flags.IsSampled() }

// IsRemote reports whether this context was extracted from an inbound
// carrier rather than generated locally.
func (c SpanContext) IsRemote() bool { return c.remote }

// State returns the baggage carried alongside this context.
func (c SpanContext) State() TraceState { return c.state }

// IsValid reports whether both the trace id and span id are non-zero.
func (c SpanContext) IsValid() bool { return c.traceID.IsValid() && c.spanID.IsValid() }

// otelSpanContext projects this SpanContext onto the real SDK's
// trace.SpanContext so it can be installed as a remote parent via
// trace.ContextWithRemoteSpanContext.
func (c SpanContext) otelSpanContext() trace.SpanContext {
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    c.traceID,
		SpanID:     c.spanID,
		TraceFlags: c.flags,
		Remote:     true,
	})
}

// spanContextFromOtel builds a facade SpanContext from the SDK's
// trace.SpanContext plus a baggage snapshot carried alongside it in a
// context.Context (see contextWithBaggage in propagation.go).
func spanContextFromOtel(sc trace.SpanContext, state TraceState) SpanContext {
	return SpanContext{
		traceID: sc.TraceID(),
		spanID:  sc.SpanID(),
		flags:   sc.TraceFlags(),
		remote:  sc.IsRemote(),
		state:   state,
	}
}
