// Package session establishes encrypted packet sessions. Peers exchange
// ephemeral X25519 keys in the clear, derive a 16-byte stream key with HKDF
// and from then on every byte goes through a pair of boundary cipher handles.
package session

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/TheusHen/natives/natives/protocol"
	"github.com/TheusHen/natives/natives/stream"
)

var ErrSessionClosed = errors.New("session: closed")

// Session is an encrypted packet connection.
type Session struct {
	conn   *stream.Conn
	codec  *protocol.Codec
	logger *slog.Logger

	writeMu sync.Mutex
	readMu  sync.Mutex

	closeOnce sync.Once
	closed    bool
}

func newSession(conn *stream.Conn, codec *protocol.Codec, logger *slog.Logger) *Session {
	return &Session{conn: conn, codec: codec, logger: logger}
}

// Conn exposes the encrypted byte stream underneath the packets.
func (s *Session) Conn() *stream.Conn { return s.conn }

// WritePacket sends p. Safe for concurrent use.
func (s *Session) WritePacket(p protocol.Packet) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return s.codec.WritePacket(s.conn, p)
}

// Send writes payload as a DATA packet.
func (s *Session) Send(payload []byte) error {
	return s.WritePacket(protocol.Packet{ID: protocol.PacketData, Payload: payload})
}

// ReadPacket returns the next packet. A CLOSE from the peer is reported as
// io.EOF.
func (s *Session) ReadPacket() (protocol.Packet, error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()
	p, err := s.codec.ReadPacket(s.conn)
	if err != nil {
		return protocol.Packet{}, err
	}
	if p.ID == protocol.PacketClose {
		s.logger.Debug("peer closed session")
		return protocol.Packet{}, io.EOF
	}
	return p, nil
}

// Close sends CLOSE to the peer and releases the cipher handles. No read may
// be in progress.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		_ = s.codec.WritePacket(s.conn, protocol.Packet{ID: protocol.PacketClose})
		s.closed = true
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}
