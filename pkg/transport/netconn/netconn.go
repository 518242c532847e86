// Package netconn adapts a blocking stream, a net.Conn or a quic.Stream,
// to the non-blocking transport.Transport the sasl frame layer drives.
//
// A non-blocking call is emulated by arming a short deadline before each
// Read or Write: whatever is transferred before it expires is returned,
// and the expiry itself is reported as no progress rather than an error.
package netconn

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/yomorun/saslframe/core/transport"
)

// DefaultPollTimeout is the default time a non-blocking call may wait for the stream.
const DefaultPollTimeout = time.Millisecond

// Stream is the blocking stream Conn wraps.
type Stream interface {
	io.ReadWriteCloser
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

var _ Stream = quic.Stream(nil)

// Option is a function that applies a Conn option.
type Option func(c *Conn)

// WithPollTimeout sets how long a non-blocking call waits for the stream.
func WithPollTimeout(d time.Duration) Option {
	return func(c *Conn) {
		if d > 0 {
			c.pollTimeout = d
		}
	}
}

// Conn is a non-blocking view of a Stream.
type Conn struct {
	stream      Stream
	pollTimeout time.Duration
}

var _ transport.Transport = &Conn{}

// New wraps stream.
func New(stream Stream, opts ...Option) *Conn {
	c := &Conn{
		stream:      stream,
		pollTimeout: DefaultPollTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Read reads what arrives within the poll timeout.
// A stream that refuses the deadline is closed, the read then reports
// io.EOF or the close error of the stream itself.
func (c *Conn) Read(p []byte) (int, error) {
	_ = c.stream.SetReadDeadline(time.Now().Add(c.pollTimeout))
	n, err := c.stream.Read(p)
	if isTimeout(err) {
		return n, nil
	}
	return n, err
}

// ReadFull clears the read deadline and blocks until p is full.
func (c *Conn) ReadFull(p []byte) (int, error) {
	_ = c.stream.SetReadDeadline(time.Time{})
	return io.ReadFull(c.stream, p)
}

// Write writes what the stream accepts within the poll timeout.
func (c *Conn) Write(p []byte) (int, error) {
	if err := c.stream.SetWriteDeadline(time.Now().Add(c.pollTimeout)); err != nil {
		return 0, err
	}
	n, err := c.stream.Write(p)
	if isTimeout(err) {
		return n, nil
	}
	return n, err
}

// Close closes the stream.
func (c *Conn) Close() error {
	return c.stream.Close()
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
