// Package crypto provides the cipher engine behind the natives boundary.
//
// Design goals:
//   - AES-128 in 8-bit cipher feedback mode (CFB8), a self-synchronizing stream cipher
//   - Output length always equals input length (no padding, nothing buffered)
//   - No allocation once a Context exists; every byte goes through fixed buffers
//   - Key doubles as IV, matching the protocol the host speaks
//   - X25519 + HKDF-SHA256 helpers for hosts that derive the shared secret themselves
package crypto
