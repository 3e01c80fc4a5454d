package quic

import (
	"testing"
	"time"
)

func TestServerTLSConfigCertificate(t *testing.T) {
	before := time.Now()
	conf, err := NewServerTLSConfig(WithCertificate("relay.internal", 2*time.Hour))
	if err != nil {
		t.Fatalf("NewServerTLSConfig: %v", err)
	}
	if len(conf.Certificates) != 1 {
		t.Fatalf("expected one certificate, got %d", len(conf.Certificates))
	}
	leaf := conf.Certificates[0].Leaf
	if leaf == nil {
		t.Fatalf("certificate leaf not parsed")
	}
	if leaf.Subject.CommonName != "relay.internal" {
		t.Fatalf("unexpected subject %q", leaf.Subject.CommonName)
	}
	if leaf.NotAfter.Before(before.Add(2*time.Hour-time.Minute)) || leaf.NotAfter.After(before.Add(2*time.Hour+time.Minute)) {
		t.Fatalf("unexpected NotAfter %v", leaf.NotAfter)
	}
	if len(conf.NextProtos) != 1 || conf.NextProtos[0] != ALPN {
		t.Fatalf("unexpected ALPN %v", conf.NextProtos)
	}
}

func TestServerTLSConfigDefaults(t *testing.T) {
	conf, err := NewServerTLSConfig()
	if err != nil {
		t.Fatalf("NewServerTLSConfig: %v", err)
	}
	leaf := conf.Certificates[0].Leaf
	if leaf.Subject.CommonName != DefaultCommonName {
		t.Fatalf("unexpected subject %q", leaf.Subject.CommonName)
	}
	if got := leaf.NotAfter.Sub(leaf.NotBefore); got != DefaultCertLifetime+certBackdate {
		t.Fatalf("unexpected validity %v", got)
	}
}

func TestClientTLSConfigHasNoCertificate(t *testing.T) {
	conf := NewClientTLSConfig()
	if len(conf.Certificates) != 0 {
		t.Fatalf("client config carries %d certificates", len(conf.Certificates))
	}
	if !conf.InsecureSkipVerify {
		t.Fatalf("client must accept the ephemeral server certificate")
	}
	if len(conf.NextProtos) != 1 || conf.NextProtos[0] != ALPN {
		t.Fatalf("unexpected ALPN %v", conf.NextProtos)
	}
}
