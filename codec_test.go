package tracer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTraceID(t *testing.T, hex string) TraceID {
	t.Helper()
	id, err := hexToTraceID(hex)
	require.NoError(t, err)
	return id
}

func hexToTraceID(s string) (TraceID, error) {
	b, err := hexDecode(s)
	if err != nil {
		return TraceID{}, err
	}
	var id TraceID
	copy(id[16-len(b):], b)
	return id, nil
}

func hexToSpanID(s string) (SpanID, error) {
	b, err := hexDecode(s)
	if err != nil {
		return SpanID{}, err
	}
	var id SpanID
	copy(id[8-len(b):], b)
	return id, nil
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	traceID := mustTraceID(t, "0123456789abcdef0123456789abcdef")
	spanID, err := hexToSpanID("fedcba9876543210")
	require.NoError(t, err)

	state := NewTraceState([2]string{"a", "1"}, [2]string{"b", "22"})
	sc := NewSpanContext(traceID, spanID, true, state)

	blob := Encode(sc)
	decoded := Decode(blob)

	assert.True(t, decoded.IsValid())
	assert.Equal(t, sc.TraceID(), decoded.TraceID())
	assert.Equal(t, sc.SpanID(), decoded.SpanID())
	assert.Equal(t, sc.IsSampled(), decoded.IsSampled())

	var gotPairs [][2]string
	decoded.State().ForEach(func(k, v string) bool {
		gotPairs = append(gotPairs, [2]string{k, v})
		return true
	})
	assert.Equal(t, [][2]string{{"a", "1"}, {"b", "22"}}, gotPairs)

	// Re-encoding the decoded context reproduces the original bytes:
	// the reserved parent-span-id slot is always zero on write, and
	// decode never populates anything from it, so this round trip is
	// exact.
	assert.Equal(t, blob, Encode(decoded))
}

func TestEncodeHeaderLayout(t *testing.T) {
	traceID := mustTraceID(t, strings.Repeat("0", 30)+"ff")
	spanID, err := hexToSpanID(strings.Repeat("0", 14)+"ff")
	require.NoError(t, err)
	sc := NewSpanContext(traceID, spanID, false, TraceState{})

	blob := Encode(sc)
	require.Len(t, blob, headerLen)

	// reserved parent-span-id bytes are zeroed.
	for i := reservedOff; i < reservedOff+reservedLen; i++ {
		assert.Equal(t, byte(0), blob[i])
	}
	assert.Equal(t, byte('0'), blob[sampledOff])
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	decoded := Decode([]byte{1, 2, 3})
	assert.Equal(t, Invalid, decoded)
}

func TestDecodeRejectsTruncatedBaggage(t *testing.T) {
	traceID := mustTraceID(t, "01")
	spanID, err := hexToSpanID("01")
	require.NoError(t, err)
	sc := NewSpanContext(traceID, spanID, false, NewTraceState([2]string{"k", "v"}))
	blob := Encode(sc)

	truncated := blob[:len(blob)-2]
	assert.Equal(t, Invalid, Decode(truncated))
}

func TestHexDecodeOddLengthPadsImplicitZero(t *testing.T) {
	even, err := hexDecode("0f")
	require.NoError(t, err)
	odd, err := hexDecode("f")
	require.NoError(t, err)
	assert.Equal(t, even, odd)
}
