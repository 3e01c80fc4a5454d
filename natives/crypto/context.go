package crypto

import (
	"crypto/aes"
	"errors"
	"fmt"
)

const (
	// KeySize is the only key length accepted: AES-128.
	KeySize = 16
)

var (
	ErrInvalidKeySize = errors.New("crypto: cipher key not 16 bytes")
	ErrCipherInit     = errors.New("crypto: cipher initialization failed")
	ErrContextClosed  = errors.New("crypto: cipher context closed")
	ErrShortBuffer    = errors.New("crypto: output smaller than input")
	ErrInvalidOverlap = errors.New("crypto: invalid buffer overlap")
)

// Mode selects the cipher direction.
type Mode uint8

const (
	Decrypt Mode = iota
	Encrypt
)

func (m Mode) String() string {
	switch m {
	case Encrypt:
		return "encrypt"
	case Decrypt:
		return "decrypt"
	default:
		return "unknown"
	}
}

// Context is the running cipher state for one direction of one stream.
// It is not safe for concurrent use; distinct Contexts are independent.
type Context struct {
	mode      Mode
	key       [KeySize]byte
	stream    *cfb8
	processed uint64
}

// NewContext creates an AES-128-CFB8 context from a 16-byte key.
//
// The key is also used as the IV. The protocol derives both from the same
// shared secret during its handshake; this is intentional and must not be
// "fixed" here, or the peer will not be able to read the stream.
func NewContext(key []byte, mode Mode) (*Context, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	if mode != Encrypt && mode != Decrypt {
		return nil, fmt.Errorf("%w: unknown mode %d", ErrCipherInit, mode)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCipherInit, err)
	}

	c := &Context{mode: mode}
	copy(c.key[:], key)
	c.stream = newCFB8(block, c.key[:], mode == Decrypt)
	return c, nil
}

// Mode returns the direction the context was created with.
func (c *Context) Mode() Mode { return c.mode }

// Processed returns the stream position: total bytes transformed so far.
func (c *Context) Processed() uint64 { return c.processed }

// Closed reports whether Close has been called.
func (c *Context) Closed() bool { return c.stream == nil }

// Update transforms src into dst[:len(src)] and returns the number of bytes
// written. dst and src may be the same memory.
func (c *Context) Update(dst, src []byte) (int, error) {
	if c.stream == nil {
		return 0, ErrContextClosed
	}
	if len(dst) < len(src) {
		return 0, ErrShortBuffer
	}
	if InexactOverlap(dst[:len(src)], src) {
		return 0, ErrInvalidOverlap
	}
	c.stream.XORKeyStream(dst, src)
	c.processed += uint64(len(src))
	return len(src), nil
}

// Finalize flushes any buffered output into dst. CFB8 never buffers a
// partial block, so this always writes 0 bytes on a live context.
func (c *Context) Finalize(dst []byte) (int, error) {
	if c.stream == nil {
		return 0, ErrContextClosed
	}
	return 0, nil
}

// Process writes exactly len(src) transformed bytes to dst, first through
// Update and then, if Update came up short, through Finalize into the rest
// of dst. A failing step counts as producing zero bytes; the first error is
// returned together with the bytes actually written.
func (c *Context) Process(dst, src []byte) (int, error) {
	if len(dst) < len(src) {
		return 0, ErrShortBuffer
	}

	n, err := c.Update(dst, src)
	if err != nil {
		n = 0
	}
	if n < len(src) {
		m, ferr := c.Finalize(dst[n:len(src)])
		if ferr != nil {
			m = 0
			if err == nil {
				err = ferr
			}
		}
		n += m
	}
	return n, err
}

// Close wipes the key and running state. It is safe to call more than once.
func (c *Context) Close() {
	if c.stream != nil {
		c.stream.wipe()
		c.stream = nil
	}
	clear(c.key[:])
}
