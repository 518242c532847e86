package cli

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/yomorun/saslframe/core/yerr"
	"github.com/yomorun/saslframe/pkg/config"
	"github.com/yomorun/saslframe/pkg/log"
)

func init() {
	log.DisableColor()
}

func TestEncodeFrame(t *testing.T) {
	t.Run("negotiation", func(t *testing.T) {
		var buf bytes.Buffer
		size, writes, err := encodeFrame(&buf, encodeOptions{status: "start", payload: []byte("PLAIN")})
		assert.NoError(t, err)
		assert.Equal(t, 10, size)
		assert.Equal(t, 1, writes)
		assert.Equal(t, []byte{0x01, 0, 0, 0, 5, 'P', 'L', 'A', 'I', 'N'}, buf.Bytes())
	})

	t.Run("data", func(t *testing.T) {
		var buf bytes.Buffer
		size, _, err := encodeFrame(&buf, encodeOptions{data: true, payload: []byte("hi")})
		assert.NoError(t, err)
		assert.Equal(t, 6, size)
		assert.Equal(t, []byte{0, 0, 0, 2, 'h', 'i'}, buf.Bytes())
	})

	t.Run("chunked", func(t *testing.T) {
		var buf bytes.Buffer
		size, writes, err := encodeFrame(&buf, encodeOptions{status: "OK", payload: []byte("12345"), chunk: 3})
		assert.NoError(t, err)
		assert.Equal(t, 10, size)
		assert.Equal(t, 4, writes)
		assert.Equal(t, []byte{0x02, 0, 0, 0, 5, '1', '2', '3', '4', '5'}, buf.Bytes())
	})

	t.Run("bad options", func(t *testing.T) {
		_, _, err := encodeFrame(io.Discard, encodeOptions{data: true, status: "OK"})
		assert.Error(t, err)

		_, _, err = encodeFrame(io.Discard, encodeOptions{})
		assert.Error(t, err)

		_, _, err = encodeFrame(io.Discard, encodeOptions{status: "DONE"})
		assert.EqualError(t, err, `saslframe: unknown negotiation status "DONE"`)
	})

	t.Run("write error", func(t *testing.T) {
		_, _, err := encodeFrame(failingWriter{}, encodeOptions{status: "OK"})
		var te *yerr.TransportError
		assert.True(t, errors.As(err, &te))
		assert.ErrorIs(t, err, io.ErrClosedPipe)
	})
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, io.ErrClosedPipe }

func TestChunkWriter(t *testing.T) {
	var buf bytes.Buffer
	cw := &chunkWriter{w: &buf, chunk: 2}

	n, err := cw.Write([]byte("abcde"))
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = cw.Write([]byte("c"))
	assert.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, "abc", buf.String())
	assert.Equal(t, 2, cw.calls)
	assert.Equal(t, 3, cw.written)
}

// capture encodes a negotiation that completes and then two data frames.
func capture(t *testing.T) []byte {
	var buf bytes.Buffer
	frames := []encodeOptions{
		{status: "START", payload: []byte("PLAIN")},
		{status: "OK", payload: []byte{0x00, 'u', 0x00, 'p'}},
		{status: "COMPLETE"},
		{data: true, payload: []byte("hello")},
		{data: true, payload: []byte("world"), chunk: 1},
	}
	for _, f := range frames {
		_, _, err := encodeFrame(&buf, f)
		require.NoError(t, err)
	}
	return buf.Bytes()
}

func TestDecodeStream(t *testing.T) {
	var out bytes.Buffer
	count, err := decodeStream(bytes.NewReader(capture(t)), &out, decodeOptions{negotiation: -1, output: "text"})
	assert.NoError(t, err)
	assert.Equal(t, 5, count)

	expected := strings.Join([]string{
		`#0 negotiation START size=5 payload="PLAIN"`,
		`#1 negotiation OK size=4 payload=00750070`,
		`#2 negotiation COMPLETE size=0 payload=""`,
		`#3 data size=5 payload="hello"`,
		`#4 data size=5 payload="world"`,
	}, "\n") + "\n"
	assert.Equal(t, expected, out.String())
}

func TestDecodeStreamNegotiationCount(t *testing.T) {
	var out bytes.Buffer
	count, err := decodeStream(bytes.NewReader(capture(t)[:10]), &out, decodeOptions{negotiation: 1})
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "#0 negotiation START size=5 payload=\"PLAIN\"\n", out.String())
}

func TestDecodeStreamStopsOnBad(t *testing.T) {
	var buf bytes.Buffer
	_, _, err := encodeFrame(&buf, encodeOptions{status: "BAD", payload: []byte("no")})
	require.NoError(t, err)
	_, _, err = encodeFrame(&buf, encodeOptions{data: true, payload: []byte("x")})
	require.NoError(t, err)

	var out bytes.Buffer
	count, err := decodeStream(&buf, &out, decodeOptions{negotiation: -1})
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Contains(t, out.String(), "#1 data size=1")
}

func TestDecodeStreamTruncated(t *testing.T) {
	stream := capture(t)

	var out bytes.Buffer
	count, err := decodeStream(bytes.NewReader(stream[:len(stream)-1]), &out, decodeOptions{negotiation: -1})
	assert.Equal(t, 4, count)

	var te *yerr.TransportError
	assert.True(t, errors.As(err, &te))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecodeStreamLimits(t *testing.T) {
	opts := decodeOptions{
		negotiation: -1,
		limits:      config.Limits{MaxNegotiationPayload: 16, MaxDataPayload: 3},
	}

	count, err := decodeStream(bytes.NewReader(capture(t)), io.Discard, opts)
	assert.Equal(t, 3, count)

	var ne *yerr.NegotiationError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, yerr.ErrorCodeProtocol, ne.ErrorCode())
}

func TestDecodeStreamYAML(t *testing.T) {
	var out bytes.Buffer
	_, err := decodeStream(bytes.NewReader(capture(t)), &out, decodeOptions{negotiation: -1, output: "yaml"})
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(out.String(), "---\n"), "one document per frame")

	dec := yaml.NewDecoder(&out)
	var records []frameRecord
	for {
		var rec frameRecord
		if err := dec.Decode(&rec); err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
		records = append(records, rec)
	}

	require.Len(t, records, 5)
	assert.Equal(t, frameRecord{Index: 2, Kind: "negotiation", Status: "COMPLETE", Payload: `""`}, records[2])
	assert.Equal(t, frameRecord{Index: 3, Kind: "data", PayloadSize: 5, Payload: `"hello"`}, records[3])
}

func TestDecodeStreamUnknownOutput(t *testing.T) {
	_, err := decodeStream(bytes.NewReader(capture(t)), io.Discard, decodeOptions{negotiation: -1, output: "xml"})
	assert.EqualError(t, err, `unknown output "xml", it should be text or yaml`)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, `"abc"`, preview([]byte("abc"), 0))
	assert.Equal(t, `"ab"...`, preview([]byte("abc"), 2))
	assert.Equal(t, "0001...", preview([]byte{0, 1, 2}, 2))
	assert.Equal(t, "0a", preview([]byte("\n"), 0))
}
