// Package cryptutil implements the cryptographic primitives the store
// envelope is built on: scrypt key derivation, AES-256-CTR, truncated
// HMAC-SHA-512, and secure random byte generation. The package does not
// know about the envelope's on-disk layout (internal/envelope) or the
// plaintext model (internal/store) — it only turns keys into ciphertext
// and ciphertext back into keys' worth of trust.
package cryptutil

import (
	"fmt"

	"golang.org/x/crypto/scrypt"

	"github.com/barnettlynn/rooster/internal/secret"
)

// KeySize is the length in bytes of the combined scrypt output: the first
// half is the AES-256 key, the second half is the HMAC-SHA-512 key.
const KeySize = 64

// AESKeySize and MACKeySize are the two halves of the derived key.
const (
	AESKeySize = 32
	MACKeySize = 32
)

// ScryptParams are the cost parameters fed to scrypt. N is derived from
// Log2N (N = 1<<Log2N) because the on-disk envelope stores the exponent,
// not N itself, to keep the header fixed-width regardless of cost.
type ScryptParams struct {
	Log2N uint32
	R     uint32
	P     uint32
}

// Bounds from spec.md §3: log2_n in [1,20], r in [1,255], p in [1,255].
const (
	MinLog2N = 1
	MaxLog2N = 20
	MinR     = 1
	MaxR     = 255
	MinP     = 1
	MaxP     = 255
)

// DefaultScryptParams targets roughly 100ms of KDF time on commodity
// hardware, per spec.md §3.
var DefaultScryptParams = ScryptParams{Log2N: 12, R: 8, P: 1}

// Valid reports whether p's fields satisfy the bounds above.
func (p ScryptParams) Valid() bool {
	return p.Log2N >= MinLog2N && p.Log2N <= MaxLog2N &&
		p.R >= MinR && p.R <= MaxR &&
		p.P >= MinP && p.P <= MaxP
}

// N returns the scrypt cost parameter N = 2^Log2N.
func (p ScryptParams) N() int {
	return 1 << p.Log2N
}

// IsWeak flags parameters whose Log2N is below the default's; R and P are
// not checked. set_scrypt_params requires a force flag to bypass this
// check (spec.md §4.5).
func (p ScryptParams) IsWeak() bool {
	return p.Log2N < DefaultScryptParams.Log2N
}

// DeriveKey runs scrypt(password, salt, params) and returns the 64-byte
// output split into an AES key and an HMAC key. salt is always the
// envelope's IV (spec.md §4.2: "the envelope's iv doubles as the scrypt
// salt").
func DeriveKey(password *secret.String, salt []byte, params ScryptParams) (aesKey, macKey *secret.Bytes, err error) {
	if !params.Valid() {
		return nil, nil, fmt.Errorf("cryptutil: invalid scrypt parameters: %+v", params)
	}
	raw, err := scrypt.Key([]byte(password.Expose()), salt, params.N(), int(params.R), int(params.P), KeySize)
	if err != nil {
		return nil, nil, fmt.Errorf("cryptutil: scrypt derivation failed: %w", err)
	}
	aes := make([]byte, AESKeySize)
	mac := make([]byte, MACKeySize)
	copy(aes, raw[:AESKeySize])
	copy(mac, raw[AESKeySize:])
	for i := range raw {
		raw[i] = 0
	}
	return secret.NewBytes(aes), secret.NewBytes(mac), nil
}
