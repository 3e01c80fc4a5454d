// Package stream runs byte streams through boundary cipher handles.
//
// Key features:
//   - Writer encrypts into pooled buffers, never touching the caller's bytes
//   - Reader decrypts in place in the caller's buffer
//   - Conn pairs both over one io.ReadWriteCloser, one handle per direction
//   - Handles are destroyed exactly once on Close
//
// This is what a host does with the boundary on every connection; it uses the
// checked processing calls so cipher failures surface as errors here.
package stream
