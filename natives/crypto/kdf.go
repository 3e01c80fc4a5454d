package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

const streamKeyInfo = "natives-stream-key"

// DeriveKey derives a key of the specified length using HKDF-SHA256.
// salt can be nil (uses zero salt), info provides context binding.
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	hk := hkdf.New(sha256.New, secret, salt, info)
	key := make([]byte, length)
	if _, err := io.ReadFull(hk, key); err != nil {
		return nil, err
	}
	return key, nil
}

// DeriveStreamKey derives the 16-byte stream key from a handshake secret.
// Both peers use the same value for both directions, and as the IV.
func DeriveStreamKey(sharedSecret []byte, clientPub, serverPub [32]byte) ([]byte, error) {
	info := make([]byte, 0, len(streamKeyInfo)+64)
	info = append(info, streamKeyInfo...)
	info = append(info, clientPub[:]...)
	info = append(info, serverPub[:]...)
	return DeriveKey(sharedSecret, nil, info, KeySize)
}
