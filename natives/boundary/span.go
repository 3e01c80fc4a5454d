package boundary

import (
	"unsafe"
)

// span views n bytes of host-owned memory at addr as a slice. The host
// guarantees the memory stays valid and unmoved for the whole call; the slice
// must not escape the call that created it.
func span(addr uintptr, n int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)
}
