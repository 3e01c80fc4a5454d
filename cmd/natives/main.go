// Command natives builds the cipher core as a C shared library:
//
//	go build -buildmode=c-shared -o libnatives.so ./cmd/natives
//
// Hosts call natives_cipher_init once per stream direction, then
// natives_cipher_process for every span, and natives_cipher_free exactly once.
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"unsafe"

	"github.com/TheusHen/natives/natives/boundary"
	"github.com/TheusHen/natives/natives/handle"
)

var errorNames = map[boundary.Kind]*C.char{}

func init() {
	for _, k := range []boundary.Kind{
		boundary.KindNone,
		boundary.KindInvalidArgument,
		boundary.KindSecurityInitialization,
		boundary.KindDegraded,
	} {
		// Allocated once and never freed; hosts may keep the pointers.
		errorNames[k] = C.CString(k.HostException())
	}
}

//export natives_cipher_init
func natives_cipher_init(key *C.uint8_t, keyLen C.int32_t, encrypt C.int32_t, errKind *C.int32_t) C.int64_t {
	var k []byte
	if key != nil && keyLen > 0 {
		k = C.GoBytes(unsafe.Pointer(key), C.int(keyLen))
	}
	h, err := boundary.Default().Create(k, encrypt != 0)
	if errKind != nil {
		*errKind = C.int32_t(boundary.KindOf(err))
	}
	clear(k)
	return C.int64_t(h)
}

//export natives_cipher_process
func natives_cipher_process(ctx C.int64_t, src C.int64_t, n C.int32_t, dst C.int64_t) {
	_ = boundary.Default().ProcessAddr(handle.Handle(ctx), uintptr(src), int(n), uintptr(dst))
}

//export natives_cipher_process_checked
func natives_cipher_process_checked(ctx C.int64_t, src C.int64_t, n C.int32_t, dst C.int64_t) C.int32_t {
	err := boundary.Default().ProcessAddrChecked(handle.Handle(ctx), uintptr(src), int(n), uintptr(dst))
	return C.int32_t(boundary.KindOf(err))
}

//export natives_cipher_free
func natives_cipher_free(ctx C.int64_t) {
	boundary.Default().Destroy(handle.Handle(ctx))
}

//export natives_cipher_set_strict
func natives_cipher_set_strict(on C.int32_t) {
	boundary.Default().SetStrict(on != 0)
}

//export natives_cipher_error_name
func natives_cipher_error_name(kind C.int32_t) *C.char {
	if s, ok := errorNames[boundary.Kind(kind)]; ok {
		return s
	}
	return errorNames[boundary.KindNone]
}

func main() {}
