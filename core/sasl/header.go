// Package sasl implements the frame layer of a sasl negotiation and data channel.
//
// Every message on the wire is a fixed-width header followed by a payload whose
// size the header announces:
//
//	negotiation frame: | status (1) | payload length (4, big-endian) | payload |
//	data frame:        | payload length (4, big-endian) | payload |
//
// Headers are accumulated across non-blocking reads and frames are flushed across
// non-blocking writes, so both sides work on transports that deliver or accept
// partial data per call.
package sasl

import (
	"github.com/yomorun/saslframe/core/transport"
	"github.com/yomorun/saslframe/core/yerr"
)

// PayloadLengthSize is the size of the payload length field.
const PayloadLengthSize = 4

// Header reads the header of a sasl frame.
type Header interface {
	// PayloadSize returns the size of the payload following the header.
	// It panics with *yerr.IllegalStateError if IsComplete returns false.
	PayloadSize() int

	// Bytes returns a copy of the received header bytes.
	// It returns *yerr.IllegalStateError if IsComplete returns false.
	Bytes() ([]byte, error)

	// IsComplete returns true if all the header bytes are received and valid.
	IsComplete() bool

	// Clear resets the header so it can read the header of the next frame.
	Clear()

	// Read reads the outstanding header bytes that the transport has available, without blocking.
	// It returns the number of bytes consumed, zero is valid.
	// A *yerr.NegotiationError is returned if the received header is invalid,
	// a *yerr.TransportError if the transport fails.
	Read(r transport.Reader) (int, error)

	// ReadAll reads the whole header, it blocks until the transport delivers all the bytes.
	// It returns the number of bytes consumed by this call, errors are the same as Read.
	ReadAll(r transport.FullReader) (int, error)
}

// HeaderOption configures a Header.
type HeaderOption func(o *headerOptions)

type headerOptions struct {
	maxPayloadSize int
}

// WithMaxPayloadSize rejects headers that announce a payload larger than n bytes.
// Zero means no limit other than the 31-bit size field.
func WithMaxPayloadSize(n int) HeaderOption {
	return func(o *headerOptions) {
		if n > 0 {
			o.maxPayloadSize = n
		}
	}
}

func newHeaderOptions(opts ...HeaderOption) headerOptions {
	var options headerOptions
	for _, o := range opts {
		o(&options)
	}
	return options
}

var errNoConstructor = yerr.NewIllegalStateError("header is not initialized, create it with NewNegotiationHeader or NewDataHeader")

// fixedHeader accumulates a fixed-width header. The bytes are decoded once,
// when the cursor reaches the width.
type fixedHeader struct {
	buf         []byte
	cursor      int
	complete    bool
	payloadSize int
	decode      func(b []byte) (int, error)
}

func newFixedHeader(width int, decode func(b []byte) (int, error)) fixedHeader {
	return fixedHeader{
		buf:    make([]byte, width),
		decode: decode,
	}
}

func (h *fixedHeader) PayloadSize() int {
	if !h.complete {
		panic(yerr.NewIllegalStateError("header is not complete, %d of %d bytes read", h.cursor, len(h.buf)))
	}
	return h.payloadSize
}

func (h *fixedHeader) Bytes() ([]byte, error) {
	if !h.complete {
		return nil, yerr.NewIllegalStateError("header is not complete, %d of %d bytes read", h.cursor, len(h.buf))
	}
	b := make([]byte, len(h.buf))
	copy(b, h.buf)
	return b, nil
}

func (h *fixedHeader) IsComplete() bool {
	return h.complete
}

func (h *fixedHeader) Clear() {
	clear(h.buf)
	h.cursor = 0
	h.complete = false
	h.payloadSize = 0
}

func (h *fixedHeader) Read(r transport.Reader) (int, error) {
	if h.complete {
		return 0, nil
	}
	if h.decode == nil {
		return 0, errNoConstructor
	}

	var n int
	if h.cursor < len(h.buf) {
		var err error
		n, err = r.Read(h.buf[h.cursor:])
		if n > 0 {
			h.cursor += n
		}
		if err != nil && !transport.IsWouldBlock(err) {
			return n, yerr.NewTransportError(err)
		}
	}

	return n, h.finish()
}

func (h *fixedHeader) ReadAll(r transport.FullReader) (int, error) {
	if h.complete {
		return 0, nil
	}
	if h.decode == nil {
		return 0, errNoConstructor
	}

	var n int
	if h.cursor < len(h.buf) {
		var err error
		n, err = r.ReadFull(h.buf[h.cursor:])
		if n > 0 {
			h.cursor += n
		}
		if err != nil {
			return n, yerr.NewTransportError(err)
		}
	}

	return n, h.finish()
}

// finish decodes the header once all its bytes are in.
func (h *fixedHeader) finish() error {
	if h.cursor < len(h.buf) {
		return nil
	}
	size, err := h.decode(h.buf)
	if err != nil {
		return err
	}
	h.payloadSize = size
	h.complete = true
	return nil
}

// checkPayloadSize validates a decoded length field.
func checkPayloadSize(kind string, size int32, options headerOptions) (int, error) {
	if size < 0 {
		return 0, yerr.NewNegotiationError(yerr.ErrorCodeProtocol, "%s payload size is negative: %d", kind, size)
	}
	if options.maxPayloadSize > 0 && int(size) > options.maxPayloadSize {
		return 0, yerr.NewNegotiationError(yerr.ErrorCodeProtocol,
			"%s payload size %d exceeds the limit of %d bytes", kind, size, options.maxPayloadSize)
	}
	return int(size), nil
}
