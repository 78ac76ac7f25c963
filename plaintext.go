package tracer

import "sort"

// PlainTextContext is the application-facing, human-readable projection
// of a SpanContext: hex ids instead of raw bytes, plus the baggage map.
// It exists for callers that want to log or inspect a context without
// pulling in the binary wire format, mirroring the original library's
// own plaintext projection (which also carried a parent-span-id field
// that the codec never actually populates; see ParseBlob below).
type PlainTextContext struct {
	TraceIDHex      string
	SpanIDHex       string
	ParentSpanIDHex string
	Sampled         bool
	Baggage         map[string]string
}

// ParseBlob decodes a wire blob (as produced by Encode/CurrentContextBlob)
// into a PlainTextContext. A malformed blob decodes to the same
// all-zero, unsampled context Decode itself would return: ParseBlob
// never errors.
//
// ParentSpanIDHex is always "0000000000000000": the wire format's
// reserved parent-span-id slot is write-only padding (see the comment
// on Decode in codec.go), never reconstructed from the wire bytes
// regardless of what a peer happened to write there.
func ParseBlob(blob []byte) PlainTextContext {
	sc := Decode(blob)

	baggage := make(map[string]string, sc.state.Len())
	sc.state.ForEach(func(k, v string) bool {
		baggage[k] = v
		return true
	})

	traceID := sc.traceID
	spanID := sc.spanID
	return PlainTextContext{
		TraceIDHex:      hexEncode(traceID[:], traceIDLen*2),
		SpanIDHex:       hexEncode(spanID[:], spanIDLen*2),
		ParentSpanIDHex: zeroPad("", reservedLen*2),
		Sampled:         sc.IsSampled(),
		Baggage:         baggage,
	}
}

// FormatBlob encodes a PlainTextContext back into the wire format. The
// ParentSpanIDHex field is accepted but ignored: the reserved slot is
// always written as zero, matching Encode. Baggage is emitted in
// ascending key order, mirroring the original implementation's use of
// an ordered map for the equivalent field.
func FormatBlob(ptc PlainTextContext) []byte {
	traceID, err := decodeTraceIDHex(ptc.TraceIDHex)
	if err != nil {
		traceID = TraceID{}
	}
	spanID, err := decodeSpanIDHex(ptc.SpanIDHex)
	if err != nil {
		spanID = SpanID{}
	}

	keys := make([]string, 0, len(ptc.Baggage))
	for k := range ptc.Baggage {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pairs []baggagePair
	for _, k := range keys {
		pairs = append(pairs, baggagePair{Key: k, Value: ptc.Baggage[k]})
	}

	sc := SpanContext{traceID: traceID, spanID: spanID, state: TraceState{pairs: pairs}}
	if ptc.Sampled {
		sc.flags = flagSampled
	}
	return Encode(sc)
}

func decodeTraceIDHex(s string) (TraceID, error) {
	b, err := hexDecode(s)
	if err != nil {
		return TraceID{}, err
	}
	var id TraceID
	if len(b) > traceIDLen {
		b = b[len(b)-traceIDLen:]
	}
	copy(id[traceIDLen-len(b):], b)
	return id, nil
}

func decodeSpanIDHex(s string) (SpanID, error) {
	b, err := hexDecode(s)
	if err != nil {
		return SpanID{}, err
	}
	var id SpanID
	if len(b) > spanIDLen {
		b = b[len(b)-spanIDLen:]
	}
	copy(id[spanIDLen-len(b):], b)
	return id, nil
}
