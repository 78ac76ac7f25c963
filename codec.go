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
	"encoding/binary"
	"encoding/hex"
)

// Wire layout (all integers big-endian):
//
//	 0  16  trace id
//	16   8  span id
//	24   8  reserved, always zero on write, ignored on read
//	32   1  sampled flag, ASCII '1' or '0'
//	33   4  baggage entry count
//	37  ... repeated: 4B key length, key bytes, 4B value length, value bytes
const (
	headerLen        = 37
	traceIDOff       = 0
	traceIDLen       = 16
	spanIDOff        = 16
	spanIDLen        = 8
	reservedOff      = 24
	reservedLen      = 8
	sampledOff       = 32
	baggageCountOff  = 33
	sampledByteTrue  = '1'
	sampledByteFalse = '0'
)

// Invalid is the zero-value SpanContext returned by Decode when the
// wire bytes cannot be interpreted.
var Invalid = SpanContext{}

// Encode serializes sc into the fixed-header, length-prefixed wire
// format described above. Baggage is written in its own iteration
// order (TraceState already preserves insertion order).
func Encode(sc SpanContext) []byte {
	size := headerLen
	sc.state.ForEach(func(k, v string) bool {
		size += 4 + len(k) + 4 + len(v)
		return true
	})

	buf := make([]byte, size)

	traceID := sc.traceID
	copy(buf[traceIDOff:traceIDOff+traceIDLen], traceID[:])

	spanID := sc.spanID
	copy(buf[spanIDOff:spanIDOff+spanIDLen], spanID[:])

	// reserved parent-span-id slot is always zeroed on write.
	for i := reservedOff; i < reservedOff+reservedLen; i++ {
		buf[i] = 0
	}

	if sc.IsSampled() {
		buf[sampledOff] = sampledByteTrue
	} else {
		buf[sampledOff] = sampledByteFalse
	}

	binary.BigEndian.PutUint32(buf[baggageCountOff:baggageCountOff+4], uint32(sc.state.Len()))

	off := headerLen
	sc.state.ForEach(func(k, v string) bool {
		binary.BigEndian.PutUint32(buf[off:off+4], uint32(len(k)))
		off += 4
		copy(buf[off:off+len(k)], k)
		off += len(k)

		binary.BigEndian.PutUint32(buf[off:off+4], uint32(len(v)))
		off += 4
		copy(buf[off:off+len(v)], v)
		off += len(v)
		return true
	})

	return buf
}

// Decode parses the wire format produced by Encode. It returns Invalid
// if the buffer is too short or a length prefix would run past the end
// of the buffer; it never panics on malformed input. The reserved
// parent-span-id bytes are read but discarded: an earlier revision of
// this codec populated a parent-span-id field from them, but the
// current design treats that slot as write-only padding.
func Decode(buf []byte) SpanContext {
	if len(buf) < headerLen {
		return Invalid
	}

	var traceID TraceID
	copy(traceID[:], buf[traceIDOff:traceIDOff+traceIDLen])

	var spanID SpanID
	copy(spanID[:], buf[spanIDOff:spanIDOff+spanIDLen])

	sampled := buf[sampledOff] == sampledByteTrue

	count := binary.BigEndian.Uint32(buf[baggageCountOff : baggageCountOff+4])

	var pairs []baggagePair
	off := headerLen
	for i := uint32(0); i < count; i++ {
		k, next, ok := readLengthPrefixed(buf, off)
		if !ok {
			return Invalid
		}
		off = next

		v, next, ok := readLengthPrefixed(buf, off)
		if !ok {
			return Invalid
		}
		off = next

		pairs = append(pairs, baggagePair{Key: k, Value: v})
	}

	sc := SpanContext{traceID: traceID, spanID: spanID, state: TraceState{pairs: pairs}, remote: true}
	if sampled {
		sc.flags = flagSampled
	}
	if !sc.IsValid() {
		return Invalid
	}
	return sc
}

func readLengthPrefixed(buf []byte, off int) (string, int, bool) {
	if off+4 > len(buf) {
		return "", off, false
	}
	n := int(binary.BigEndian.Uint32(buf[off : off+4]))
	off += 4
	if n < 0 || off+n > len(buf) {
		return "", off, false
	}
	return string(buf[off : off+n]), off + n, true
}

// hexEncode lower-cases and zero-pads its input to width hex characters.
func hexEncode(b []byte, width int) string {
	s := hex.EncodeToString(b)
	if len(s) < width {
		s = zeroPad(s, width)
	}
	return s
}

// hexDecode parses a base16 string, treating an odd number of digits as
// if an implicit leading zero nibble were present (matching the
// original wire tooling's lenient parser).
func hexDecode(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}

func zeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := make([]byte, width-len(s))
	for i := range pad {
		pad[i] = '0'
	}
	return string(pad) + s
}
