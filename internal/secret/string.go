package secret

import "encoding/json"

// String is a UTF-8 text buffer with the same release-time zeroing contract
// as Bytes. It exists separately because master passwords and credential
// passwords are handled as text everywhere except inside the cipher layer.
type String struct {
	buf []byte
}

// NewString takes ownership of s's bytes.
func NewString(s string) *String {
	return &String{buf: []byte(s)}
}

// Expose returns the plaintext contents. Callers must not retain the
// returned string past the point where Zero is called; Go strings are
// immutable, so the copy made here is not itself zeroed by Zero — keep the
// exposed window as short as possible.
func (s *String) Expose() string {
	if s == nil {
		return ""
	}
	return string(s.buf)
}

// Len returns the length in bytes.
func (s *String) Len() int {
	if s == nil {
		return 0
	}
	return len(s.buf)
}

// Equal does a constant-time comparison of the underlying bytes.
func (s *String) Equal(other *String) bool {
	if s == nil || other == nil {
		return s == other
	}
	return (&Bytes{buf: s.buf}).Equal(&Bytes{buf: other.buf})
}

// Zero overwrites the backing storage with zeros.
func (s *String) Zero() {
	if s == nil {
		return
	}
	zero(s.buf)
}

// String redacts the contents.
func (s *String) String() string {
	if s == nil {
		return "secret.String(nil)"
	}
	return "secret.String(len=" + itoa(len(s.buf)) + ")"
}

// MarshalJSON writes the UTF-8 contents as a normal JSON string. This is
// only ever invoked by the store codec while producing the plaintext that
// is about to be encrypted (see internal/store), never on a path that could
// write the secret to an unencrypted destination.
func (s *String) MarshalJSON() ([]byte, error) {
	if s == nil {
		return json.Marshal("")
	}
	return json.Marshal(string(s.buf))
}

// UnmarshalJSON reads a plain JSON string. Used only when parsing the
// plaintext recovered from a successful decrypt-and-verify.
func (s *String) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.buf = []byte(raw)
	return nil
}
