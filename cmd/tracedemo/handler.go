// Command tracedemo is a small runnable example, adapted from the
// teacher's crossdock/endtoend handler, exercising StartSpan, EndSpan
// and StartIsolatedSpan end to end over HTTP. It is not part of the
// library's public contract.
package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/trace"

	tracerlib "github.com/outpostdev/tracer"
)

// traceRequest is the JSON body accepted by Handler.Trace.
type traceRequest struct {
	UID uint32 `json:"uid"`
	Cmd uint32 `json:"cmd"`
}

// traceResponse reports the identifiers of the spans the handler
// created, for the caller to assert on in tests or demos.
type traceResponse struct {
	TraceID         string `json:"traceId"`
	DownstreamBlob  string `json:"downstreamBlob"`
}

// Handler starts a root span per request and a downstream isolated
// span to simulate handing work off to an async worker.
type Handler struct{}

// Trace handles POST /trace, reading uid/cmd either from the JSON body
// or from query parameters.
func (h *Handler) Trace(w http.ResponseWriter, r *http.Request) {
	req, err := parseTraceRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	scope := tracerlib.StartSpan(nil, "tracedemo", "Trace", trace.SpanKindServer, req.UID, req.Cmd, true)
	defer tracerlib.EndSpan(scope, 0, "")

	downstream := h.callDownstream(req)

	resp := traceResponse{
		TraceID:        scope.TraceID(),
		DownstreamBlob: downstream,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// callDownstream simulates dispatching work to another goroutine: it
// starts an isolated span, immediately ends it, and returns the
// snapshotted context blob a real async worker would receive.
func (h *Handler) callDownstream(req traceRequest) string {
	isolated := tracerlib.StartIsolatedSpan(nil, "tracedemo", "callDownstream", trace.SpanKindClient, req.UID, req.Cmd, false)
	blob := isolated.GetContext()
	tracerlib.EndIsolatedSpan(isolated, 0, "")
	return string(blob)
}

func parseTraceRequest(r *http.Request) (traceRequest, error) {
	var req traceRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
		return req, nil
	}

	q := r.URL.Query()
	if uid := q.Get("uid"); uid != "" {
		v, err := strconv.ParseUint(uid, 10, 32)
		if err != nil {
			return req, err
		}
		req.UID = uint32(v)
	}
	if cmd := q.Get("cmd"); cmd != "" {
		v, err := strconv.ParseUint(cmd, 10, 32)
		if err != nil {
			return req, err
		}
		req.Cmd = uint32(v)
	}
	return req, nil
}
