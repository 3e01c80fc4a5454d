package main

/*
#include <stdint.h>
#include <stdlib.h>
#include <string.h>
*/
import "C"

import (
	"unsafe"
)

// The helpers below call the exports through C-allocated memory, the way a
// host does, so the glue can be driven from Go tests (test files cannot use
// cgo directly).

// callInit passes key to natives_cipher_init with keyLen as the declared
// length. When withKind is false the error out-pointer is NULL and kind is -1.
func callInit(key []byte, keyLen int32, encrypt, withKind bool) (h int64, kind int32) {
	var ckey *C.uint8_t
	if len(key) > 0 {
		ckey = (*C.uint8_t)(C.CBytes(key))
		defer C.free(unsafe.Pointer(ckey))
	}
	var ckind *C.int32_t
	if withKind {
		ckind = (*C.int32_t)(C.malloc(C.size_t(unsafe.Sizeof(C.int32_t(0)))))
		defer C.free(unsafe.Pointer(ckind))
		*ckind = -1
	}
	var enc C.int32_t
	if encrypt {
		enc = 1
	}
	h = int64(natives_cipher_init(ckey, C.int32_t(keyLen), enc, ckind))
	if ckind == nil {
		return h, -1
	}
	return h, int32(*ckind)
}

// callProcess copies src into C memory, runs it through handle h in place and
// returns the result. checked selects natives_cipher_process_checked.
func callProcess(h int64, src []byte, checked bool) ([]byte, int32) {
	n := len(src)
	buf := C.malloc(C.size_t(max(n, 1)))
	defer C.free(buf)
	if n > 0 {
		C.memcpy(buf, unsafe.Pointer(&src[0]), C.size_t(n))
	}
	p := C.int64_t(uintptr(buf))

	var kind int32
	if checked {
		kind = int32(natives_cipher_process_checked(C.int64_t(h), p, C.int32_t(n), p))
	} else {
		natives_cipher_process(C.int64_t(h), p, C.int32_t(n), p)
	}
	return C.GoBytes(buf, C.int(n)), kind
}

func callFree(h int64) { natives_cipher_free(C.int64_t(h)) }

func callSetStrict(on bool) {
	var v C.int32_t
	if on {
		v = 1
	}
	natives_cipher_set_strict(v)
}

func callErrorName(kind int32) string {
	return C.GoString(natives_cipher_error_name(C.int32_t(kind)))
}
