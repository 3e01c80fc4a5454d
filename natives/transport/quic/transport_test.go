package quic

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/TheusHen/natives/natives/boundary"
	"github.com/TheusHen/natives/natives/session"
)

func TestSessionOverQUIC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ln, err := Listen("127.0.0.1:0", WithIdleTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	addr := ln.AddrString()
	if addr == "" {
		t.Fatalf("expected listener addr")
	}

	a := boundary.New()
	msg := []byte("hello over quic")
	errCh := make(chan error, 1)
	got := make(chan []byte, 1)

	go func() {
		conn, err := ln.Accept(ctx)
		if err != nil {
			errCh <- err
			return
		}
		st, err := AcceptStream(ctx, conn)
		if err != nil {
			errCh <- err
			return
		}
		sess, err := session.HandshakeServer(ctx, st, session.HandshakeOptions{Adapter: a})
		if err != nil {
			errCh <- err
			return
		}
		p, err := sess.ReadPacket()
		if err != nil {
			errCh <- err
			return
		}
		got <- p.Payload
		errCh <- sess.Conn().Close()
	}()

	conn, err := Dial(ctx, addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.CloseWithError(0, "")

	if alpn := conn.ConnectionState().TLS.NegotiatedProtocol; alpn != ALPN {
		t.Fatalf("unexpected ALPN %q", alpn)
	}

	st, err := OpenStream(ctx, conn)
	if err != nil {
		t.Fatalf("OpenStream: %v", err)
	}
	sess, err := session.HandshakeClient(ctx, st, session.HandshakeOptions{Adapter: a})
	if err != nil {
		t.Fatalf("HandshakeClient: %v", err)
	}
	if err := sess.Send(msg); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case p := <-got:
		if !bytes.Equal(p, msg) {
			t.Fatalf("payload mismatch: %q", p)
		}
	case err := <-errCh:
		t.Fatalf("server: %v", err)
	case <-ctx.Done():
		t.Fatalf("timeout")
	}
	if err := <-errCh; err != nil {
		t.Fatalf("server close: %v", err)
	}
	_ = sess.Conn().Close()
}
