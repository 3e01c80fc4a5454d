// Package boundary is the three-call surface a host runtime drives:
// Create a cipher context from a key, Process spans through it, Destroy it.
//
// Handles are issued by a generation-checked table, so the integer a host
// holds is never a raw pointer. Construction failures are reported; failures
// while processing are absorbed unless the adapter runs in strict mode.
package boundary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/TheusHen/natives/natives/crypto"
	"github.com/TheusHen/natives/natives/handle"
)

// Stats is a snapshot of adapter counters.
type Stats struct {
	Live      int
	Created   uint64
	Destroyed uint64
	// Rejected counts Process calls dropped for bad arguments and Destroy
	// calls on unknown handles.
	Rejected uint64
	// Degraded counts Process calls where the cipher itself failed.
	Degraded uint64
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithStrict makes Process return the failures it would otherwise absorb.
func WithStrict(on bool) Option {
	return func(a *Adapter) { a.strict.Store(on) }
}

// WithLogger sets the logger. Process logs only at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// Adapter owns the cipher contexts created through it.
//
// Each handle must be used by one goroutine at a time (typically one context
// per connection direction). Distinct handles may be used concurrently.
type Adapter struct {
	contexts *handle.Table[*crypto.Context]
	strict   atomic.Bool
	logger   *slog.Logger

	created   atomic.Uint64
	destroyed atomic.Uint64
	rejected  atomic.Uint64
	degraded  atomic.Uint64
}

// New creates an adapter with no live contexts.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		contexts: handle.New[*crypto.Context](),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var defaultAdapter = New()

// Default returns the process-wide adapter used by the foreign exports.
func Default() *Adapter { return defaultAdapter }

// SetStrict switches strict mode at runtime.
func (a *Adapter) SetStrict(on bool) { a.strict.Store(on) }

// Strict reports whether strict mode is on.
func (a *Adapter) Strict() bool { return a.strict.Load() }

// Create builds an AES-128-CFB8 context and returns its handle. The key is
// used as both key and IV. On failure the handle is handle.Invalid and the
// error wraps ErrInvalidArgument or ErrSecurityInitialization.
func (a *Adapter) Create(key []byte, encrypt bool) (handle.Handle, error) {
	mode := crypto.Decrypt
	if encrypt {
		mode = crypto.Encrypt
	}

	ctx, err := crypto.NewContext(key, mode)
	if err != nil {
		base := ErrSecurityInitialization
		if errors.Is(err, crypto.ErrInvalidKeySize) {
			base = ErrInvalidArgument
		}
		a.logger.Warn("cipher context rejected", "kind", KindOf(base), "key_len", len(key), "err", err)
		return handle.Invalid, fmt.Errorf("%w: %w", base, err)
	}

	h := a.contexts.Insert(ctx)
	a.created.Add(1)
	a.logger.Debug("cipher context created", "handle", uint64(h), "mode", mode)
	return h, nil
}

// Process writes exactly len(src) transformed bytes into dst.
//
// Failures here are deliberately quiet. Process sits on a per-packet path
// where the host cannot afford an exception per call and has already
// validated its arguments, so:
//   - a zero handle, empty src or dst shorter than src is a no-op that writes
//     nothing and leaves the cipher state alone;
//   - a cipher failure counts its segment as zero bytes written.
//
// Both are counted in Stats and logged at debug level. The price is that a
// failure shows up only as corrupt bytes further down the stream; turn on
// strict mode to get them back as errors wrapping ErrDegraded.
func (a *Adapter) Process(h handle.Handle, dst, src []byte) error {
	return a.process(h, dst, src, a.strict.Load())
}

// ProcessChecked is Process with strict mode forced on for this call.
func (a *Adapter) ProcessChecked(h handle.Handle, dst, src []byte) error {
	return a.process(h, dst, src, true)
}

// ProcessAddr is Process over raw host addresses. src and dst must each be
// valid for n bytes for the duration of the call; they may be equal.
func (a *Adapter) ProcessAddr(h handle.Handle, src uintptr, n int, dst uintptr) error {
	return a.processAddr(h, src, n, dst, a.strict.Load())
}

// ProcessAddrChecked is ProcessAddr with strict mode forced on for this call.
func (a *Adapter) ProcessAddrChecked(h handle.Handle, src uintptr, n int, dst uintptr) error {
	return a.processAddr(h, src, n, dst, true)
}

func (a *Adapter) processAddr(h handle.Handle, src uintptr, n int, dst uintptr, strict bool) error {
	if h == handle.Invalid || src == 0 || dst == 0 || n <= 0 {
		return a.reject(h, errPrecondition, strict)
	}
	return a.process(h, span(dst, n), span(src, n), strict)
}

func (a *Adapter) process(h handle.Handle, dst, src []byte, strict bool) error {
	if h == handle.Invalid || len(src) == 0 || len(dst) < len(src) {
		return a.reject(h, errPrecondition, strict)
	}
	ctx, err := a.contexts.Get(h)
	if err != nil {
		return a.reject(h, err, strict)
	}
	if _, err := ctx.Process(dst, src); err != nil {
		a.degraded.Add(1)
		return a.absorb(h, err, strict)
	}
	return nil
}

// Destroy retires h and wipes its context. Invalid is a no-op; so is an
// already destroyed or unknown handle, which is counted and logged.
func (a *Adapter) Destroy(h handle.Handle) {
	if h == handle.Invalid {
		return
	}
	ctx, err := a.contexts.Remove(h)
	if err != nil {
		a.rejected.Add(1)
		a.logger.Warn("destroy of unknown cipher context", "handle", uint64(h), "err", err)
		return
	}
	ctx.Close()
	a.destroyed.Add(1)
	a.logger.Debug("cipher context destroyed", "handle", uint64(h))
}

// DestroyAll retires every live context and returns how many there were.
func (a *Adapter) DestroyAll() int {
	var hs []handle.Handle
	a.contexts.Range(func(h handle.Handle, _ *crypto.Context) bool {
		hs = append(hs, h)
		return true
	})
	for _, h := range hs {
		a.Destroy(h)
	}
	return len(hs)
}

// Stats returns a snapshot of the counters.
func (a *Adapter) Stats() Stats {
	return Stats{
		Live:      a.contexts.Len(),
		Created:   a.created.Load(),
		Destroyed: a.destroyed.Load(),
		Rejected:  a.rejected.Load(),
		Degraded:  a.degraded.Load(),
	}
}

func (a *Adapter) reject(h handle.Handle, err error, strict bool) error {
	a.rejected.Add(1)
	return a.absorb(h, err, strict)
}

func (a *Adapter) absorb(h handle.Handle, err error, strict bool) error {
	if a.logger.Enabled(context.Background(), slog.LevelDebug) {
		a.logger.Debug("cipher process degraded", "handle", uint64(h), "err", err)
	}
	if strict {
		return fmt.Errorf("%w: %w", ErrDegraded, err)
	}
	return nil
}
