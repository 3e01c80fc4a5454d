package quic

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"time"
)

const (
	ALPN = "natives/1"

	DefaultCommonName   = "natives"
	DefaultCertLifetime = 24 * time.Hour
)

// certBackdate absorbs clock skew between peers.
const certBackdate = time.Hour

// serverCertificate mints an ephemeral Ed25519 certificate. Nothing verifies
// it: the stream key from the session handshake carries confidentiality, the
// certificate only satisfies QUIC.
func serverCertificate(commonName string, lifetime time.Duration) (tls.Certificate, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}
	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		return tls.Certificate{}, err
	}

	now := time.Now()
	tpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: commonName},
		DNSNames:              []string{commonName},
		NotBefore:             now.Add(-certBackdate),
		NotAfter:              now.Add(lifetime),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tpl, tpl, pub, priv)
	if err != nil {
		return tls.Certificate{}, err
	}
	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv, Leaf: leaf}, nil
}

func newServerTLSConfig(o *options) (*tls.Config, error) {
	cert, err := serverCertificate(o.commonName, o.certLifetime)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS13,
		NextProtos:   []string{ALPN},
	}, nil
}

func newClientTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS13,
		NextProtos: []string{ALPN},
		// The server certificate is ephemeral and self-signed.
		InsecureSkipVerify: true,
	}
}

// NewServerTLSConfig returns the listener's TLS config with a fresh
// certificate shaped by opts.
func NewServerTLSConfig(opts ...Option) (*tls.Config, error) {
	return newServerTLSConfig(buildOptions(opts))
}

// NewClientTLSConfig returns the dialer's TLS config. Clients present no
// certificate.
func NewClientTLSConfig() *tls.Config { return newClientTLSConfig() }
