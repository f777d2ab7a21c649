// Package secret holds wrapper types for data that must not outlive the
// operation that needs it: master passwords, derived keys, and plaintext
// credential secrets. Both wrappers zero their backing storage on release
// and redact themselves in any printable representation.
package secret

import (
	"crypto/subtle"
	"runtime"
)

// Bytes is a byte buffer that overwrites its storage with zeros before the
// buffer is released. Construction takes ownership of the given slice; the
// caller must not retain or mutate it afterward.
type Bytes struct {
	buf []byte
}

// NewBytes takes ownership of b and wraps it.
func NewBytes(b []byte) *Bytes {
	return &Bytes{buf: b}
}

// Len returns the number of bytes held.
func (b *Bytes) Len() int {
	if b == nil {
		return 0
	}
	return len(b.buf)
}

// Bytes returns the underlying slice. The caller must not retain it past the
// lifetime of the Bytes wrapper.
func (b *Bytes) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.buf
}

// Equal reports whether b and other hold identical contents, in constant
// time with respect to the contents (the length check is not constant time,
// matching crypto/subtle's own contract).
func (b *Bytes) Equal(other *Bytes) bool {
	if b == nil || other == nil {
		return b == other
	}
	if len(b.buf) != len(other.buf) {
		return false
	}
	return subtle.ConstantTimeCompare(b.buf, other.buf) == 1
}

// Zero overwrites the backing storage with zeros. It is safe to call more
// than once, and safe to call on a nil receiver.
func (b *Bytes) Zero() {
	if b == nil {
		return
	}
	zero(b.buf)
}

// String redacts the contents; only the length is ever revealed.
func (b *Bytes) String() string {
	if b == nil {
		return "secret.Bytes(nil)"
	}
	return "secret.Bytes(len=" + itoa(len(b.buf)) + ")"
}

// zero overwrites every byte of buf with 0. runtime.KeepAlive pins buf past
// the loop so the compiler can't treat the writes as dead stores to a value
// that's about to go out of scope.
func zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
