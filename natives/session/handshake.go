package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/TheusHen/natives/natives/boundary"
	"github.com/TheusHen/natives/natives/crypto"
	"github.com/TheusHen/natives/natives/protocol"
	"github.com/TheusHen/natives/natives/stream"
)

var (
	ErrHandshakeExpectedKeyExchange = errors.New("session: handshake expected KEY_EXCHANGE")
	ErrBadKeyExchange               = errors.New("session: malformed KEY_EXCHANGE payload")
)

type HandshakeOptions struct {
	// Adapter owns the cipher handles of the resulting session.
	// Defaults to boundary.Default().
	Adapter *boundary.Adapter
	// Codec frames packets. Defaults to protocol.NewCodec(protocol.DefaultThreshold).
	Codec  *protocol.Codec
	Logger *slog.Logger
}

func (o HandshakeOptions) withDefaults() HandshakeOptions {
	if o.Adapter == nil {
		o.Adapter = boundary.Default()
	}
	if o.Codec == nil {
		o.Codec = protocol.NewCodec(protocol.DefaultThreshold)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

type deadliner interface {
	SetDeadline(t time.Time) error
}

// HandshakeClient agrees on a stream key with the server over rwc and
// returns the encrypted session. The client speaks first.
func HandshakeClient(ctx context.Context, rwc io.ReadWriteCloser, opts HandshakeOptions) (*Session, error) {
	return handshake(ctx, rwc, opts, true)
}

// HandshakeServer is the accepting side of HandshakeClient.
func HandshakeServer(ctx context.Context, rwc io.ReadWriteCloser, opts HandshakeOptions) (*Session, error) {
	return handshake(ctx, rwc, opts, false)
}

func handshake(ctx context.Context, rwc io.ReadWriteCloser, opts HandshakeOptions, client bool) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	// Cancellation interrupts blocked I/O only when rwc supports deadlines.
	if d, ok := rwc.(deadliner); ok {
		stop := context.AfterFunc(ctx, func() { _ = d.SetDeadline(time.Now()) })
		defer func() {
			stop()
			_ = d.SetDeadline(time.Time{})
		}()
	}

	local, err := crypto.GenerateX25519()
	if err != nil {
		return nil, err
	}
	defer clear(local.Private[:])

	var peer [32]byte
	if client {
		if err := sendKeyExchange(rwc, opts.Codec, local.Public); err != nil {
			return nil, handshakeErr(ctx, err)
		}
		if peer, err = recvKeyExchange(rwc, opts.Codec); err != nil {
			return nil, handshakeErr(ctx, err)
		}
	} else {
		if peer, err = recvKeyExchange(rwc, opts.Codec); err != nil {
			return nil, handshakeErr(ctx, err)
		}
		if err := sendKeyExchange(rwc, opts.Codec, local.Public); err != nil {
			return nil, handshakeErr(ctx, err)
		}
	}

	secret, err := crypto.ECDH(local.Private, peer)
	if err != nil {
		return nil, err
	}
	defer clear(secret)

	clientPub, serverPub := local.Public, peer
	if !client {
		clientPub, serverPub = peer, local.Public
	}
	key, err := crypto.DeriveStreamKey(secret, clientPub, serverPub)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	conn, err := stream.NewConn(rwc, key, stream.WithAdapter(opts.Adapter))
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("session established", "client", client)
	return newSession(conn, opts.Codec, opts.Logger), nil
}

// handshakeErr reports the context error when a deadline or cancellation
// interrupted the exchange.
func handshakeErr(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return fmt.Errorf("session: handshake interrupted: %w", cerr)
	}
	return err
}

func sendKeyExchange(w io.Writer, c *protocol.Codec, pub [32]byte) error {
	return c.WritePacket(w, protocol.Packet{ID: protocol.PacketKeyExchange, Payload: pub[:]})
}

func recvKeyExchange(r io.Reader, c *protocol.Codec) ([32]byte, error) {
	var pub [32]byte
	p, err := c.ReadPacket(r)
	if err != nil {
		return pub, err
	}
	if p.ID != protocol.PacketKeyExchange {
		return pub, fmt.Errorf("%w: got %s", ErrHandshakeExpectedKeyExchange, p.ID)
	}
	if len(p.Payload) != len(pub) {
		return pub, ErrBadKeyExchange
	}
	copy(pub[:], p.Payload)
	return pub, nil
}
