package stream

import (
	"sync"
)

// DefaultBufferSize is the default scratch buffer size (32 KB).
const DefaultBufferSize = 32 * 1024

// BufferPool provides reusable scratch buffers for encryption.
type BufferPool struct {
	pool sync.Pool
	size int
}

// NewBufferPool creates a pool of buffers of the given size.
func NewBufferPool(size int) *BufferPool {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]byte, size)
				return &buf
			},
		},
		size: size,
	}
}

// Size returns the length of buffers handed out by the pool.
func (p *BufferPool) Size() int { return p.size }

// Get returns a buffer from the pool.
func (p *BufferPool) Get() *[]byte {
	return p.pool.Get().(*[]byte)
}

// Put returns a buffer to the pool.
func (p *BufferPool) Put(buf *[]byte) {
	if len(*buf) == p.size {
		p.pool.Put(buf)
	}
}

var defaultPool = NewBufferPool(DefaultBufferSize)
