package tracer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseBlobFormatBlobRoundTrip exercises the known-context scenario:
// a context built from the stated trace id / span id / sampled flag /
// baggage values round-trips byte-for-byte through FormatBlob -> ParseBlob
// -> FormatBlob, and ParseBlob reports exactly those values back out,
// with the reserved parent-span-id slot always surfacing as zero.
func TestParseBlobFormatBlobRoundTrip(t *testing.T) {
	ptc := PlainTextContext{
		TraceIDHex: "0000000000000000a03bb80ba85889b2",
		SpanIDHex:  "ebb15cfc5df6613f",
		Sampled:    true,
		Baggage: map[string]string{
			"congo": "t61rcWkgMzE",
			"key":   "value",
			"what":  "who",
		},
	}

	blob := FormatBlob(ptc)
	require.NotEmpty(t, blob)

	parsed := ParseBlob(blob)
	assert.Equal(t, ptc.TraceIDHex, parsed.TraceIDHex)
	assert.Equal(t, ptc.SpanIDHex, parsed.SpanIDHex)
	assert.Equal(t, "0000000000000000", parsed.ParentSpanIDHex)
	assert.True(t, parsed.Sampled)
	assert.Equal(t, ptc.Baggage, parsed.Baggage)

	// format_blob of that same parsed value reproduces the input bytes.
	assert.Equal(t, blob, FormatBlob(parsed))
}

func TestFormatBlobIgnoresSuppliedParentSpanID(t *testing.T) {
	ptc := PlainTextContext{
		TraceIDHex:      "0123456789abcdef0123456789abcdef",
		SpanIDHex:       "fedcba9876543210",
		ParentSpanIDHex: "ffffffffffffffff",
		Sampled:         false,
	}
	blob := FormatBlob(ptc)
	for i := reservedOff; i < reservedOff+reservedLen; i++ {
		assert.Equal(t, byte(0), blob[i])
	}
	assert.Equal(t, "0000000000000000", ParseBlob(blob).ParentSpanIDHex)
}

func TestParseBlobOnMalformedInputReturnsZeroValue(t *testing.T) {
	ptc := ParseBlob([]byte{1, 2, 3})
	assert.Equal(t, strings.Repeat("0", 32), ptc.TraceIDHex)
	assert.Equal(t, strings.Repeat("0", 16), ptc.SpanIDHex)
	assert.False(t, ptc.Sampled)
	assert.Empty(t, ptc.Baggage)
}
