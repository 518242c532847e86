// Package transport defines the byte-stream capability the sasl framing layer consumes.
package transport

import (
	"errors"
	"io"
)

// ErrWouldBlock may be returned by a non-blocking Read or Write that could not
// transfer anything right now. It is control flow, not a failure.
var ErrWouldBlock = errors.New("saslframe: operation would block")

// Reader is a non-blocking byte source.
type Reader interface {
	// Read reads up to len(p) bytes that are immediately available.
	// It returns 0, nil (or ErrWouldBlock) when there is nothing to read.
	Read(p []byte) (int, error)
}

// FullReader is a blocking byte source.
type FullReader interface {
	// ReadFull blocks until len(p) bytes are read or the transport fails.
	ReadFull(p []byte) (int, error)
}

// Writer is a non-blocking byte sink.
type Writer interface {
	// Write writes as many bytes of p as the transport accepts right now,
	// possibly none.
	Write(p []byte) (int, error)
}

// Transport is a connection that supports all the operations above.
type Transport interface {
	Reader
	FullReader
	Writer
	Close() error
}

// IsWouldBlock reports whether err only signals that no progress was possible.
func IsWouldBlock(err error) bool {
	return errors.Is(err, ErrWouldBlock)
}

// Blocking adapts a blocking io.Reader, e.g. a file, to FullReader.
func Blocking(r io.Reader) FullReader {
	return blockingReader{r}
}

type blockingReader struct {
	r io.Reader
}

func (b blockingReader) ReadFull(p []byte) (int, error) {
	return io.ReadFull(b.r, p)
}
