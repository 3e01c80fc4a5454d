// Package quic carries natives sessions over QUIC streams.
package quic

import (
	"context"
	"net"
	"time"

	q "github.com/quic-go/quic-go"
)

type options struct {
	quic         *q.Config
	commonName   string
	certLifetime time.Duration
}

// Option tunes the QUIC configuration and the listener certificate.
type Option func(*options)

// WithIdleTimeout closes connections idle for longer than d.
func WithIdleTimeout(d time.Duration) Option {
	return func(o *options) { o.quic.MaxIdleTimeout = d }
}

// WithKeepAlive sends keep-alive frames every d.
func WithKeepAlive(d time.Duration) Option {
	return func(o *options) { o.quic.KeepAlivePeriod = d }
}

// WithCertificate sets the subject and lifetime of the listener certificate.
// Ignored by Dial.
func WithCertificate(commonName string, lifetime time.Duration) Option {
	return func(o *options) {
		if commonName != "" {
			o.commonName = commonName
		}
		if lifetime > 0 {
			o.certLifetime = lifetime
		}
	}
}

func buildOptions(opts []Option) *options {
	o := &options{
		quic:         &q.Config{},
		commonName:   DefaultCommonName,
		certLifetime: DefaultCertLifetime,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type Listener struct {
	inner *q.Listener
}

func Listen(addr string, opts ...Option) (*Listener, error) {
	o := buildOptions(opts)
	tlsConf, err := newServerTLSConfig(o)
	if err != nil {
		return nil, err
	}
	ln, err := q.ListenAddr(addr, tlsConf, o.quic)
	if err != nil {
		return nil, err
	}
	return &Listener{inner: ln}, nil
}

func (l *Listener) Accept(ctx context.Context) (q.Connection, error) {
	return l.inner.Accept(ctx)
}

func (l *Listener) Addr() net.Addr { return l.inner.Addr() }

func (l *Listener) AddrString() string {
	if l.inner == nil {
		return ""
	}
	return l.inner.Addr().String()
}

func (l *Listener) Close() error { return l.inner.Close() }

func Dial(ctx context.Context, addr string, opts ...Option) (q.Connection, error) {
	return q.DialAddr(ctx, addr, newClientTLSConfig(), buildOptions(opts).quic)
}

// OpenStream opens a bidirectional stream for a session. The peer's
// AcceptStream returns once the first bytes are written.
func OpenStream(ctx context.Context, conn q.Connection) (q.Stream, error) {
	return conn.OpenStreamSync(ctx)
}

// AcceptStream waits for the next stream opened by the peer.
func AcceptStream(ctx context.Context, conn q.Connection) (q.Stream, error) {
	return conn.AcceptStream(ctx)
}
