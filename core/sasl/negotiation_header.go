package sasl

import (
	"encoding/binary"

	"github.com/yomorun/saslframe/core/yerr"
	"github.com/yomorun/saslframe/core/ylog"
)

// NegotiationHeaderSize is the width of a negotiation frame header.
const NegotiationHeaderSize = 1 + PayloadLengthSize

// NegotiationHeader is the header of a negotiation frame:
//
//	+--------+--------+--------+--------+--------+
//	| Status |       Payload Length (int32)      |
//	+--------+--------+--------+--------+--------+
//
// Create it with NewNegotiationHeader, the zero value fails every read.
type NegotiationHeader struct {
	fixedHeader
	options headerOptions
	status  NegotiationStatus
}

var _ Header = &NegotiationHeader{}

// NewNegotiationHeader creates an empty NegotiationHeader.
func NewNegotiationHeader(opts ...HeaderOption) *NegotiationHeader {
	h := &NegotiationHeader{options: newHeaderOptions(opts...)}
	h.fixedHeader = newFixedHeader(NegotiationHeaderSize, h.decode)
	return h
}

// Status returns the negotiation status.
// It panics with *yerr.IllegalStateError if IsComplete returns false.
func (h *NegotiationHeader) Status() NegotiationStatus {
	if !h.complete {
		panic(yerr.NewIllegalStateError("header is not complete, %d of %d bytes read", h.cursor, len(h.buf)))
	}
	return h.status
}

// Clear resets the header so it can read the header of the next frame.
func (h *NegotiationHeader) Clear() {
	h.fixedHeader.Clear()
	h.status = 0
}

func (h *NegotiationHeader) decode(b []byte) (int, error) {
	status := NegotiationStatus(b[0])
	if !status.Valid() {
		err := yerr.NewNegotiationError(yerr.ErrorCodeProtocol, "invalid negotiation status 0x%02x", b[0])
		ylog.Warn("[sasl] invalid negotiation header", "header", b, "err", err)
		return 0, err
	}

	size, err := checkPayloadSize("negotiation", int32(binary.BigEndian.Uint32(b[1:])), h.options)
	if err != nil {
		ylog.Warn("[sasl] invalid negotiation header", "header", b, "err", err)
		return 0, err
	}

	h.status = status
	ylog.Debug("[sasl] negotiation header complete", "status", status, "payload_size", size)

	return size, nil
}
