package stream

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/TheusHen/natives/natives/boundary"
	"github.com/TheusHen/natives/natives/handle"
)

var (
	ErrClosed = errors.New("stream: closed")
)

// Option configures a Reader, Writer or Conn.
type Option func(*options)

type options struct {
	adapter *boundary.Adapter
	pool    *BufferPool
}

// WithAdapter selects the adapter that owns the handles. Defaults to
// boundary.Default().
func WithAdapter(a *boundary.Adapter) Option {
	return func(o *options) { o.adapter = a }
}

// WithBufferPool selects the pool Writers encrypt into.
func WithBufferPool(p *BufferPool) Option {
	return func(o *options) { o.pool = p }
}

func buildOptions(opts []Option) options {
	o := options{adapter: boundary.Default(), pool: defaultPool}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// cipherHandle is a boundary handle that is destroyed exactly once.
type cipherHandle struct {
	adapter *boundary.Adapter
	h       handle.Handle
	once    sync.Once
	closed  atomic.Bool
}

func newCipherHandle(a *boundary.Adapter, key []byte, encrypt bool) (*cipherHandle, error) {
	h, err := a.Create(key, encrypt)
	if err != nil {
		return nil, err
	}
	return &cipherHandle{adapter: a, h: h}, nil
}

func (c *cipherHandle) process(dst, src []byte) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.adapter.ProcessChecked(c.h, dst, src)
}

func (c *cipherHandle) destroy() {
	c.once.Do(func() {
		c.closed.Store(true)
		c.adapter.Destroy(c.h)
	})
}

// Writer encrypts everything written to it before passing it to w.
type Writer struct {
	w    io.Writer
	c    *cipherHandle
	pool *BufferPool
}

// NewWriter creates an encrypting writer keyed with a 16-byte key.
func NewWriter(w io.Writer, key []byte, opts ...Option) (*Writer, error) {
	o := buildOptions(opts)
	c, err := newCipherHandle(o.adapter, key, true)
	if err != nil {
		return nil, err
	}
	return &Writer{w: w, c: c, pool: o.pool}, nil
}

// Write encrypts p into a scratch buffer and writes the result. If the
// underlying writer fails, the stream position is already past the unwritten
// bytes and the Writer must be discarded.
func (w *Writer) Write(p []byte) (int, error) {
	buf := w.pool.Get()
	defer w.pool.Put(buf)

	written := 0
	for len(p) > 0 {
		n := min(len(p), len(*buf))
		out := (*buf)[:n]
		if err := w.c.process(out, p[:n]); err != nil {
			return written, err
		}
		m, err := w.w.Write(out)
		written += m
		if err != nil {
			return written, err
		}
		if m < n {
			return written, io.ErrShortWrite
		}
		p = p[n:]
	}
	return written, nil
}

// Close destroys the cipher handle. It does not close the underlying writer.
func (w *Writer) Close() error {
	w.c.destroy()
	return nil
}

// Reader decrypts everything read from r.
type Reader struct {
	r io.Reader
	c *cipherHandle
}

// NewReader creates a decrypting reader keyed with a 16-byte key.
func NewReader(r io.Reader, key []byte, opts ...Option) (*Reader, error) {
	o := buildOptions(opts)
	c, err := newCipherHandle(o.adapter, key, false)
	if err != nil {
		return nil, err
	}
	return &Reader{r: r, c: c}, nil
}

// Read reads ciphertext into p and decrypts it in place.
func (r *Reader) Read(p []byte) (int, error) {
	if r.c.closed.Load() {
		return 0, ErrClosed
	}
	n, err := r.r.Read(p)
	if n > 0 {
		if perr := r.c.process(p[:n], p[:n]); perr != nil {
			return 0, perr
		}
	}
	return n, err
}

// Close destroys the cipher handle. It does not close the underlying reader.
func (r *Reader) Close() error {
	r.c.destroy()
	return nil
}

// Conn is an encrypted duplex stream. Reads and writes may run on separate
// goroutines; each direction has its own handle.
type Conn struct {
	rwc io.ReadWriteCloser
	r   *Reader
	w   *Writer
}

// NewConn wraps rwc so both directions use key. The protocol uses the same
// shared secret for both directions.
func NewConn(rwc io.ReadWriteCloser, key []byte, opts ...Option) (*Conn, error) {
	r, err := NewReader(rwc, key, opts...)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(rwc, key, opts...)
	if err != nil {
		_ = r.Close()
		return nil, err
	}
	return &Conn{rwc: rwc, r: r, w: w}, nil
}

func (c *Conn) Read(p []byte) (int, error) { return c.r.Read(p) }

func (c *Conn) Write(p []byte) (int, error) { return c.w.Write(p) }

// Close destroys both handles and closes the underlying stream. The caller
// must make sure no Read or Write is still running on c.
func (c *Conn) Close() error {
	_ = c.r.Close()
	_ = c.w.Close()
	return c.rwc.Close()
}

// Underlying returns the wrapped stream.
func (c *Conn) Underlying() io.ReadWriteCloser { return c.rwc }
