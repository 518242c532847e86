package sasl

import (
	"encoding/binary"
	"math"

	"github.com/yomorun/saslframe/core/transport"
	"github.com/yomorun/saslframe/core/yerr"
	"github.com/yomorun/saslframe/core/ylog"
)

// Layout builds a frame from its extra header bytes and payload by appending to dst.
type Layout func(dst, header, payload []byte) ([]byte, error)

// Writer writes one frame at a time to a non-blocking transport.
// A new frame can be installed only after the previous one is fully written.
// Create it with one of the constructors, the zero value has no transport and no layout.
type Writer struct {
	transport transport.Writer
	layout    Layout
	buf       []byte
	cursor    int
}

// NewWriter creates a Writer that builds frames with layout.
func NewWriter(t transport.Writer, layout Layout) *Writer {
	return &Writer{
		transport: t,
		layout:    layout,
	}
}

// NewNegotiationWriter creates a Writer for negotiation frames.
func NewNegotiationWriter(t transport.Writer) *Writer {
	return NewWriter(t, LayoutNegotiation)
}

// NewDataWriter creates a Writer for data frames.
func NewDataWriter(t transport.Writer) *Writer {
	return NewWriter(t, LayoutData)
}

// WithHeaderAndPayload installs a frame built from the extra header bytes and payload.
// A nil payload is written as an empty one.
// It returns *yerr.IllegalStateError if the previous frame is not yet written.
func (w *Writer) WithHeaderAndPayload(header, payload []byte) (*Writer, error) {
	if err := w.checkComplete(); err != nil {
		return w, err
	}
	if w.layout == nil {
		return w, yerr.NewIllegalStateError("writer has no layout, create it with NewWriter")
	}

	buf, err := w.layout(w.buf[:0], header, payload)
	if err != nil {
		return w, err
	}
	w.install(buf)

	return w, nil
}

// WithFrameBytes installs a frame that is already laid out. A nil frame is an empty one.
// It returns *yerr.IllegalStateError if the previous frame is not yet written.
func (w *Writer) WithFrameBytes(frame []byte) (*Writer, error) {
	if err := w.checkComplete(); err != nil {
		return w, err
	}

	w.install(append(w.buf[:0], frame...))

	return w, nil
}

// WithStatusAndPayload installs a negotiation frame, the Writer must use LayoutNegotiation.
func (w *Writer) WithStatusAndPayload(status NegotiationStatus, payload []byte) (*Writer, error) {
	return w.WithHeaderAndPayload([]byte{byte(status)}, payload)
}

// WithPayload installs a frame without extra header bytes.
func (w *Writer) WithPayload(payload []byte) (*Writer, error) {
	return w.WithHeaderAndPayload(nil, payload)
}

// Write writes the rest of the installed frame once, without blocking.
// The transport may accept part of it, call Write again until IsComplete returns true.
// It does nothing if there is nothing to write.
func (w *Writer) Write() error {
	if w.IsComplete() {
		return nil
	}
	if w.transport == nil {
		return yerr.NewIllegalStateError("writer has no transport, create it with NewWriter")
	}

	n, err := w.transport.Write(w.buf[w.cursor:])
	if n > 0 {
		w.cursor += n
	}
	if err != nil && !transport.IsWouldBlock(err) {
		ylog.Debug("[sasl] frame write failed", "written", n, "remaining", w.Remaining(), "err", err)
		return yerr.NewTransportError(err)
	}

	if w.IsComplete() {
		ylog.Debug("[sasl] frame written", "len", len(w.buf))
	} else {
		ylog.Debug("[sasl] frame partially written", "written", n, "remaining", w.Remaining())
	}

	return nil
}

// IsComplete returns true when nothing is left to write.
func (w *Writer) IsComplete() bool {
	return w.cursor >= len(w.buf)
}

// Remaining returns the number of bytes of the installed frame not yet written.
func (w *Writer) Remaining() int {
	return len(w.buf) - w.cursor
}

func (w *Writer) checkComplete() error {
	if !w.IsComplete() {
		return yerr.NewIllegalStateError("previous write is not yet complete, with %d bytes left", w.Remaining())
	}
	return nil
}

func (w *Writer) install(buf []byte) {
	w.buf = buf
	w.cursor = 0
	ylog.Debug("[sasl] frame installed", "len", len(buf), "frame", ylog.Preview(buf))
}

// LayoutNegotiation lays out a negotiation frame. header must be the single status byte.
func LayoutNegotiation(dst, header, payload []byte) ([]byte, error) {
	if len(header) != 1 {
		return dst, yerr.NewIllegalArgumentError("header %x does not have expected length 1", header)
	}
	if err := checkPayloadLength(len(payload)); err != nil {
		return dst, err
	}

	dst = append(dst, header[0])
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(payload)))
	return append(dst, payload...), nil
}

// LayoutData lays out a data frame, the length field counts header and payload.
func LayoutData(dst, header, payload []byte) ([]byte, error) {
	size := len(header) + len(payload)
	if err := checkPayloadLength(size); err != nil {
		return dst, err
	}

	dst = binary.BigEndian.AppendUint32(dst, uint32(size))
	dst = append(dst, header...)
	return append(dst, payload...), nil
}

func checkPayloadLength(n int) error {
	if n > math.MaxInt32 {
		return yerr.NewIllegalArgumentError("payload of %d bytes does not fit the length field", n)
	}
	return nil
}
