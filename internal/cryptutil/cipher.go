package cryptutil

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// IVSize is the width of the envelope's IV / scrypt salt / AES-CTR initial
// counter block, in bytes.
const IVSize = aes.BlockSize // 16

// CTRCrypt runs AES-256-CTR over data using key and iv as the initial
// counter block. CTR is its own inverse, so this function serves both
// encryption and decryption (spec.md §4.2: "big-endian 128-bit counter
// starting at the IV value, incrementing by one per 16-byte block" — which
// is exactly the semantics of crypto/cipher's CTR stream).
func CTRCrypt(key, iv, data []byte) ([]byte, error) {
	if len(iv) != IVSize {
		return nil, fmt.Errorf("cryptutil: iv must be %d bytes, got %d", IVSize, len(iv))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptutil: aes.NewCipher: %w", err)
	}
	out := make([]byte, len(data))
	stream := cipher.NewCTR(block, iv)
	stream.XORKeyStream(out, data)
	return out, nil
}
