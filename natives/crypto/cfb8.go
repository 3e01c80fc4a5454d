package crypto

import (
	"crypto/cipher"
)

// cfb8 is cipher feedback mode with an 8-bit segment size (NIST SP 800-38A).
// Each byte encrypts the shift register, XORs the first keystream byte into
// the input and shifts the ciphertext byte back into the register.
type cfb8 struct {
	b       cipher.Block
	sr      []byte // shift register, len == block size
	ks      []byte // keystream block
	decrypt bool
}

// NewCFB8Encrypter returns a cipher.Stream which encrypts with CFB8 using the
// given Block. The iv must be the same length as the Block's block size.
func NewCFB8Encrypter(block cipher.Block, iv []byte) cipher.Stream {
	return newCFB8(block, iv, false)
}

// NewCFB8Decrypter returns a cipher.Stream which decrypts with CFB8 using the
// given Block. The iv must be the same length as the Block's block size.
func NewCFB8Decrypter(block cipher.Block, iv []byte) cipher.Stream {
	return newCFB8(block, iv, true)
}

func newCFB8(block cipher.Block, iv []byte, decrypt bool) *cfb8 {
	bs := block.BlockSize()
	if len(iv) != bs {
		panic("crypto: CFB8 IV length must equal block size")
	}
	x := &cfb8{
		b:       block,
		sr:      make([]byte, bs),
		ks:      make([]byte, bs),
		decrypt: decrypt,
	}
	copy(x.sr, iv)
	return x
}

// XORKeyStream transforms src into dst. Dst and src must overlap entirely or
// not at all. Consecutive calls continue the same stream.
func (x *cfb8) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("crypto: output smaller than input")
	}
	if InexactOverlap(dst[:len(src)], src) {
		panic("crypto: invalid buffer overlap")
	}

	last := len(x.sr) - 1
	for i, in := range src {
		x.b.Encrypt(x.ks, x.sr)
		out := in ^ x.ks[0]
		copy(x.sr, x.sr[1:])
		if x.decrypt {
			x.sr[last] = in
		} else {
			x.sr[last] = out
		}
		dst[i] = out
	}
}

// wipe clears the running state.
func (x *cfb8) wipe() {
	clear(x.sr)
	clear(x.ks)
}
