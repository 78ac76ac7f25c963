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

// Package zipkinb3 extracts and injects Zipkin HTTP B3 headers,
// letting the facade interoperate with peers that don't speak the
// binary trace-ctx wire format. It is adapted from the teacher's
// opentracing-go carrier based B3 propagator to the SDK's
// propagation.TextMapCarrier contract.
package zipkinb3

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	traceIDHeader      = "x-b3-traceid"
	spanIDHeader       = "x-b3-spanid"
	parentSpanIDHeader = "x-b3-parentspanid"
	sampledHeader      = "x-b3-sampled"
)

// Propagator implements propagation.TextMapPropagator for the Zipkin
// B3 single-header-per-field HTTP convention.
type Propagator struct{}

var _ propagation.TextMapPropagator = Propagator{}

// Inject conforms to propagation.TextMapPropagator. It is a no-op when
// ctx carries no valid span context.
func (Propagator) Inject(ctx context.Context, carrier propagation.TextMapCarrier) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return
	}
	carrier.Set(traceIDHeader, sc.TraceID().String())
	carrier.Set(spanIDHeader, sc.SpanID().String())
	if sc.IsSampled() {
		carrier.Set(sampledHeader, "1")
	} else {
		carrier.Set(sampledHeader, "0")
	}
}

// Extract conforms to propagation.TextMapPropagator. A missing or
// malformed pair of trace/span id headers leaves ctx unchanged; the
// parent span id header, if present, is accepted but unused, matching
// the binary codec's own "write zero, ignore on read" treatment of
// that field.
func (Propagator) Extract(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	traceIDHex := carrier.Get(traceIDHeader)
	spanIDHex := carrier.Get(spanIDHeader)
	if traceIDHex == "" || spanIDHex == "" {
		return ctx
	}

	traceID, err := trace.TraceIDFromHex(zeroPad(traceIDHex, 32))
	if err != nil || !traceID.IsValid() {
		return ctx
	}
	spanID, err := trace.SpanIDFromHex(zeroPad(spanIDHex, 16))
	if err != nil || !spanID.IsValid() {
		return ctx
	}

	var flags trace.TraceFlags
	if sampled := strings.ToLower(carrier.Get(sampledHeader)); sampled == "1" || sampled == "true" {
		flags = trace.FlagsSampled
	}

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: flags,
		Remote:     true,
	})
	return trace.ContextWithRemoteSpanContext(ctx, sc)
}

// Fields implements propagation.TextMapPropagator.
func (Propagator) Fields() []string {
	return []string{traceIDHeader, spanIDHeader, parentSpanIDHeader, sampledHeader}
}

func zeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
