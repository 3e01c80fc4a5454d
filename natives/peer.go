package natives

import (
	"context"
	"errors"
	"sync"

	q "github.com/quic-go/quic-go"

	"github.com/TheusHen/natives/natives/session"
	"github.com/TheusHen/natives/natives/transport/quic"
)

var ErrNotListening = errors.New("natives: peer is not listening")

// errCodeHandshake is the QUIC application error code sent when a session
// handshake fails.
const errCodeHandshake q.ApplicationErrorCode = 1

// Peer is a high-level helper that combines transport + session.
// Each accepted or dialed QUIC connection carries one session stream.
type Peer struct {
	Options session.HandshakeOptions

	listener *quic.Listener

	mu    sync.Mutex
	conns []q.Connection
}

func NewPeer(opts session.HandshakeOptions) *Peer {
	return &Peer{Options: opts}
}

func (p *Peer) Listen(addr string) error {
	ln, err := quic.Listen(addr)
	if err != nil {
		return err
	}
	p.listener = ln
	return nil
}

// Close tears down every connection the peer made or accepted, then the
// listener.
func (p *Peer) Close() error {
	p.mu.Lock()
	conns := p.conns
	p.conns = nil
	p.mu.Unlock()
	for _, c := range conns {
		_ = c.CloseWithError(0, "peer closed")
	}

	if p.listener == nil {
		return nil
	}
	return p.listener.Close()
}

func (p *Peer) ListenAddr() string {
	if p.listener == nil {
		return ""
	}
	return p.listener.AddrString()
}

func (p *Peer) track(c q.Connection) {
	p.mu.Lock()
	p.conns = append(p.conns, c)
	p.mu.Unlock()
}

// drop closes a connection whose session never came up and forgets it.
func (p *Peer) drop(c q.Connection, err error) {
	_ = c.CloseWithError(errCodeHandshake, err.Error())
	p.mu.Lock()
	for i, tracked := range p.conns {
		if tracked == c {
			p.conns = append(p.conns[:i], p.conns[i+1:]...)
			break
		}
	}
	p.mu.Unlock()
}

func (p *Peer) Accept(ctx context.Context) (*session.Session, error) {
	if p.listener == nil {
		return nil, ErrNotListening
	}
	conn, err := p.listener.Accept(ctx)
	if err != nil {
		return nil, err
	}
	p.track(conn)
	st, err := quic.AcceptStream(ctx, conn)
	if err != nil {
		p.drop(conn, err)
		return nil, err
	}
	sess, err := session.HandshakeServer(ctx, st, p.Options)
	if err != nil {
		p.drop(conn, err)
		return nil, err
	}
	return sess, nil
}

func (p *Peer) Dial(ctx context.Context, addr string) (*session.Session, error) {
	conn, err := quic.Dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	p.track(conn)
	st, err := quic.OpenStream(ctx, conn)
	if err != nil {
		p.drop(conn, err)
		return nil, err
	}
	sess, err := session.HandshakeClient(ctx, st, p.Options)
	if err != nil {
		p.drop(conn, err)
		return nil, err
	}
	return sess, nil
}

