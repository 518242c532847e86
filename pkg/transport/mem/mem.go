// Package mem provides a memory implementation of transport.Transport.
// It transmits bytes between the two ends of a pipe and can be told to deliver
// and accept only a few bytes per call, which is how partial non-blocking I/O
// is simulated.
package mem

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/yomorun/saslframe/core/transport"
)

// Option is a function that applies a pipe option.
type Option func(o *options)

type options struct {
	maxRead  int
	maxWrite int
}

// WithMaxRead limits the bytes a single Read delivers.
func WithMaxRead(n int) Option {
	return func(o *options) {
		o.maxRead = n
	}
}

// WithMaxWrite limits the bytes a single Write accepts.
func WithMaxWrite(n int) Option {
	return func(o *options) {
		o.maxWrite = n
	}
}

// buffer is one direction of the pipe.
type buffer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	data   []byte
	closed bool
}

func newBuffer() *buffer {
	b := &buffer{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *buffer) close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.cond.Broadcast()
}

// Conn is one end of a pipe.
type Conn struct {
	ctx     context.Context
	cancel  context.CancelFunc
	rb      *buffer
	wb      *buffer
	remote  bool
	options options
}

var _ transport.Transport = &Conn{}

// NewPipe creates the two connected ends of a pipe. Both ends are closed when ctx is done.
func NewPipe(ctx context.Context, opts ...Option) (*Conn, *Conn) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ab, ba := newBuffer(), newBuffer()

	local := newConn(ctx, ba, ab, false, o)
	remote := newConn(ctx, ab, ba, true, o)

	return local, remote
}

func newConn(ctx context.Context, rb, wb *buffer, remote bool, o options) *Conn {
	ctx, cancel := context.WithCancel(ctx)

	conn := &Conn{
		ctx:     ctx,
		cancel:  cancel,
		rb:      rb,
		wb:      wb,
		remote:  remote,
		options: o,
	}
	context.AfterFunc(ctx, conn.shutdown)

	return conn
}

// Read reads the buffered bytes, it returns 0, nil if nothing is buffered.
// It returns io.EOF once the peer is closed and everything is read.
func (c *Conn) Read(p []byte) (int, error) {
	if c.ctx.Err() != nil {
		return 0, net.ErrClosed
	}

	c.rb.mu.Lock()
	defer c.rb.mu.Unlock()

	if len(c.rb.data) == 0 {
		if c.rb.closed {
			return 0, io.EOF
		}
		return 0, nil
	}

	return c.take(p), nil
}

// ReadFull blocks until p is full.
func (c *Conn) ReadFull(p []byte) (int, error) {
	c.rb.mu.Lock()
	defer c.rb.mu.Unlock()

	var n int
	for n < len(p) {
		if c.ctx.Err() != nil {
			return n, net.ErrClosed
		}
		if len(c.rb.data) == 0 {
			if c.rb.closed {
				if n == 0 {
					return 0, io.EOF
				}
				return n, io.ErrUnexpectedEOF
			}
			c.rb.cond.Wait()
			continue
		}
		n += c.take(p[n:])
	}

	return n, nil
}

// take moves buffered bytes to p, the caller holds the lock.
func (c *Conn) take(p []byte) int {
	if c.options.maxRead > 0 && len(p) > c.options.maxRead {
		p = p[:c.options.maxRead]
	}
	n := copy(p, c.rb.data)
	c.rb.data = c.rb.data[n:]
	return n
}

// Write buffers p, or as much of p as the pipe accepts per call.
func (c *Conn) Write(p []byte) (int, error) {
	if c.ctx.Err() != nil {
		return 0, net.ErrClosed
	}

	if c.options.maxWrite > 0 && len(p) > c.options.maxWrite {
		p = p[:c.options.maxWrite]
	}

	c.wb.mu.Lock()
	if c.wb.closed {
		c.wb.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	c.wb.data = append(c.wb.data, p...)
	c.wb.mu.Unlock()
	c.wb.cond.Broadcast()

	return len(p), nil
}

// Buffered returns the number of bytes waiting to be read.
func (c *Conn) Buffered() int {
	c.rb.mu.Lock()
	defer c.rb.mu.Unlock()

	return len(c.rb.data)
}

// Close closes the connection, the peer reads io.EOF after the buffered bytes.
func (c *Conn) Close() error {
	c.cancel()
	c.shutdown()
	return nil
}

func (c *Conn) shutdown() {
	c.wb.close()
	c.rb.close()
}

type memAddr struct {
	remote bool
}

func (m *memAddr) Network() string {
	return "mem"
}

func (m *memAddr) String() string {
	rs := "local"
	if m.remote {
		rs = "remote"
	}
	return fmt.Sprintf("mem://%s", rs)
}

// LocalAddr returns the local address of connection.
func (c *Conn) LocalAddr() net.Addr {
	return &memAddr{remote: c.remote}
}

// RemoteAddr returns the remote address of connection.
func (c *Conn) RemoteAddr() net.Addr {
	return &memAddr{remote: !c.remote}
}
