package sasl

import (
	"encoding/binary"

	"github.com/yomorun/saslframe/core/ylog"
)

// DataHeaderSize is the width of a data frame header.
const DataHeaderSize = PayloadLengthSize

// DataHeader is the header of a frame sent after negotiation completes:
//
//	+--------+--------+--------+--------+
//	|       Payload Length (int32)      |
//	+--------+--------+--------+--------+
//
// Create it with NewDataHeader, the zero value fails every read.
type DataHeader struct {
	fixedHeader
	options headerOptions
}

var _ Header = &DataHeader{}

// NewDataHeader creates an empty DataHeader.
func NewDataHeader(opts ...HeaderOption) *DataHeader {
	h := &DataHeader{options: newHeaderOptions(opts...)}
	h.fixedHeader = newFixedHeader(DataHeaderSize, h.decode)
	return h
}

func (h *DataHeader) decode(b []byte) (int, error) {
	size, err := checkPayloadSize("data", int32(binary.BigEndian.Uint32(b)), h.options)
	if err != nil {
		ylog.Warn("[sasl] invalid data header", "header", b, "err", err)
		return 0, err
	}

	ylog.Debug("[sasl] data header complete", "payload_size", size)

	return size, nil
}
