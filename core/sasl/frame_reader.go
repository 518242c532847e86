package sasl

import (
	"github.com/yomorun/saslframe/core/transport"
	"github.com/yomorun/saslframe/core/yerr"
	"github.com/yomorun/saslframe/core/ylog"
)

// FrameReader reads a whole frame, its header and then the payload the header announces.
// The payload buffer is reused across frames after Clear.
type FrameReader[H Header] struct {
	header  H
	payload []byte
	cursor  int
	sized   bool
}

// NewFrameReader creates a FrameReader that reads headers with header.
func NewFrameReader[H Header](header H) *FrameReader[H] {
	return &FrameReader[H]{header: header}
}

// NewNegotiationFrameReader creates a FrameReader for negotiation frames.
func NewNegotiationFrameReader(opts ...HeaderOption) *FrameReader[*NegotiationHeader] {
	return NewFrameReader(NewNegotiationHeader(opts...))
}

// NewDataFrameReader creates a FrameReader for data frames.
func NewDataFrameReader(opts ...HeaderOption) *FrameReader[*DataHeader] {
	return NewFrameReader(NewDataHeader(opts...))
}

// Header returns the header of the frame being read.
func (f *FrameReader[H]) Header() H {
	return f.header
}

// Payload returns the payload, the slice is valid until Clear.
// It returns *yerr.IllegalStateError if IsComplete returns false.
func (f *FrameReader[H]) Payload() ([]byte, error) {
	if !f.IsComplete() {
		return nil, yerr.NewIllegalStateError("frame is not complete")
	}
	return f.payload, nil
}

// IsComplete returns true once the header and the whole payload are read.
func (f *FrameReader[H]) IsComplete() bool {
	return f.sized && f.cursor == len(f.payload)
}

// Clear resets the reader for the next frame.
func (f *FrameReader[H]) Clear() {
	f.header.Clear()
	f.payload = f.payload[:0]
	f.cursor = 0
	f.sized = false
}

// Read reads whatever part of the frame the transport has available, without blocking.
// It returns the number of bytes consumed by this call.
func (f *FrameReader[H]) Read(r transport.Reader) (int, error) {
	n, err := f.header.Read(r)
	if err != nil || !f.header.IsComplete() {
		return n, err
	}
	f.sizePayload()

	if f.cursor == len(f.payload) {
		return n, nil
	}

	m, err := r.Read(f.payload[f.cursor:])
	if m > 0 {
		f.cursor += m
	}
	if err != nil && !transport.IsWouldBlock(err) {
		return n + m, yerr.NewTransportError(err)
	}
	f.logComplete()

	return n + m, nil
}

// ReadAll reads the rest of the frame, it blocks until the transport delivers it.
func (f *FrameReader[H]) ReadAll(r transport.FullReader) (int, error) {
	n, err := f.header.ReadAll(r)
	if err != nil {
		return n, err
	}
	f.sizePayload()

	if f.cursor == len(f.payload) {
		return n, nil
	}

	m, err := r.ReadFull(f.payload[f.cursor:])
	if m > 0 {
		f.cursor += m
	}
	if err != nil {
		return n + m, yerr.NewTransportError(err)
	}
	f.logComplete()

	return n + m, nil
}

func (f *FrameReader[H]) sizePayload() {
	if f.sized {
		return
	}
	size := f.header.PayloadSize()
	if cap(f.payload) < size {
		f.payload = make([]byte, size)
	} else {
		f.payload = f.payload[:size]
	}
	f.sized = true
}

func (f *FrameReader[H]) logComplete() {
	if f.IsComplete() {
		ylog.Debug("[sasl] frame read", "payload_size", len(f.payload), "payload", ylog.Preview(f.payload))
	}
}
