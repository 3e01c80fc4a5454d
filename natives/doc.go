// Package natives provides the AES-128-CFB8 cipher core that hosts reach over
// a native boundary, plus the host-side plumbing built on it.
//
// The core lives in natives/crypto (the cipher context), natives/handle (the
// generation-checked handle arena) and natives/boundary (create, process and
// destroy with host error kinds). cmd/natives exports the boundary as a C
// shared library. Everything else is a consumer: natives/stream wraps byte
// streams, natives/protocol frames packets, natives/session agrees on a stream
// key and natives/transport/quic carries sessions over QUIC. Peer ties the last
// three together.
package natives
