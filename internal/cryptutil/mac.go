package cryptutil

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
)

// MACSize is the width of the envelope's stored HMAC tag. HMAC-SHA-512
// itself produces 64 bytes; the envelope keeps only the first 32
// (spec.md §3: "32 bytes = HMAC-SHA-512 truncated to 32 bytes").
const MACSize = 32

// ComputeMAC returns the truncated HMAC-SHA-512 tag over iv‖ciphertext
// under macKey.
func ComputeMAC(macKey, iv, ciphertext []byte) []byte {
	h := hmac.New(sha512.New, macKey)
	h.Write(iv)
	h.Write(ciphertext)
	full := h.Sum(nil)
	return full[:MACSize]
}

// VerifyMAC checks tag against the truncated HMAC-SHA-512 of iv‖ciphertext
// under macKey, in constant time.
func VerifyMAC(macKey, iv, ciphertext, tag []byte) bool {
	expected := ComputeMAC(macKey, iv, ciphertext)
	return subtle.ConstantTimeCompare(expected, tag) == 1
}

// ComputeMACV1 reproduces the legacy (v1) MAC construction: HMAC-SHA256
// over the ciphertext alone, without the IV. It exists only so
// internal/upgrade can verify and generate v1 fixtures; v2 files never use
// it (spec.md §4.7: v1 used "a different MAC construction").
func ComputeMACV1(macKey, ciphertext []byte) []byte {
	h := hmac.New(sha256.New, macKey)
	h.Write(ciphertext)
	return h.Sum(nil)
}

// VerifyMACV1 checks tag against ComputeMACV1 in constant time.
func VerifyMACV1(macKey, ciphertext, tag []byte) bool {
	expected := ComputeMACV1(macKey, ciphertext)
	return subtle.ConstantTimeCompare(expected, tag) == 1
}
