package crypto

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/curve25519"
)

var (
	ErrInvalidPublicKey = errors.New("crypto: invalid X25519 public key")
)

// EphemeralKey is a one-shot X25519 key pair used to agree on a stream key.
type EphemeralKey struct {
	Public  [32]byte
	Private [32]byte
}

// GenerateX25519 generates a new ephemeral X25519 key pair.
func GenerateX25519() (EphemeralKey, error) {
	return generateX25519(rand.Reader)
}

func generateX25519(r io.Reader) (EphemeralKey, error) {
	var k EphemeralKey
	if _, err := io.ReadFull(r, k.Private[:]); err != nil {
		return EphemeralKey{}, err
	}
	pub, err := curve25519.X25519(k.Private[:], curve25519.Basepoint)
	if err != nil {
		return EphemeralKey{}, err
	}
	copy(k.Public[:], pub)
	return k, nil
}

// ECDH computes the raw X25519 shared secret. Feed it to DeriveStreamKey,
// never use it as a key directly.
func ECDH(private, peerPublic [32]byte) ([]byte, error) {
	var zero [32]byte
	if peerPublic == zero {
		return nil, ErrInvalidPublicKey
	}
	return curve25519.X25519(private[:], peerPublic[:])
}
