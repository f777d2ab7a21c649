package cryptutil

import (
	"crypto/rand"
	"fmt"
	"io"
)

// RandomBytes returns n cryptographically random bytes. It fails loudly
// (returns an error) rather than falling back to a weaker source, per
// spec.md §4.2: "A cryptographically secure source; fails loudly rather
// than silently falling back."
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("cryptutil: failed to read %d random bytes: %w", n, err)
	}
	return b, nil
}

// RandomIV draws a fresh 16-byte IV, which the envelope also uses as the
// scrypt salt (spec.md §4.2).
func RandomIV() ([]byte, error) {
	return RandomBytes(IVSize)
}
