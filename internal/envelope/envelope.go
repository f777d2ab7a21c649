// Package envelope serializes and parses the on-disk binary container
// described in spec.md §6: a fixed header (magic, version, scrypt cost
// parameters, truncated HMAC, IV) followed by the ciphertext. This package
// never touches cryptography — it only turns bytes into an Envelope struct
// and back, the way pkg/ntag424/io.go only frames APDUs without knowing
// what a card command means.
package envelope

import (
	"encoding/binary"
	"fmt"

	"github.com/barnettlynn/rooster/internal/apperr"
	"github.com/barnettlynn/rooster/internal/cryptutil"
)

// Magic identifies a rooster password file, v1 or v2.
var Magic = [4]byte{'R', 'O', 'S', 'T'}

// Recognized format versions.
const (
	VersionV1 byte = 0x01
	VersionV2 byte = 0x02
)

// Field offsets and sizes for the v2 header (spec.md §6).
const (
	offMagic      = 0
	offVersion    = 4
	offLog2N      = 5
	offR          = 9
	offP          = 13
	offHMAC       = 17
	offIV         = 49
	offCiphertext = 65

	// HeaderSize is the number of bytes preceding the ciphertext in a v2
	// envelope.
	HeaderSize = offCiphertext
)

// Envelope is the parsed form of a v2 file: everything needed to verify
// and decrypt except the master password itself.
type Envelope struct {
	Params     cryptutil.ScryptParams
	HMAC       []byte // MACSize bytes
	IV         []byte // IVSize bytes
	Ciphertext []byte
}

// SniffVersion reads just enough of raw to identify the format version
// without parsing the rest of the header. Callers use this to decide
// whether to call Decode (v2) or DecodeV1 (legacy).
func SniffVersion(raw []byte) (byte, error) {
	if len(raw) < offVersion+1 {
		return 0, apperr.New(apperr.KindCorruptionError, "rooster file is too short to contain a header")
	}
	if !magicMatches(raw) {
		return 0, apperr.New(apperr.KindCorruptionError, "rooster file has an unrecognized magic number")
	}
	return raw[offVersion], nil
}

func magicMatches(raw []byte) bool {
	return raw[0] == Magic[0] && raw[1] == Magic[1] && raw[2] == Magic[2] && raw[3] == Magic[3]
}

// Decode parses a v2 envelope from raw. It returns apperr-tagged errors for
// every failure mode in spec.md §4.3: unrecognized magic or a too-short
// buffer (CorruptionError), a version newer than VersionV2
// (OutdatedBinary), or a recognized v1 file (NeedUpgradeFromV1).
func Decode(raw []byte) (*Envelope, error) {
	version, err := SniffVersion(raw)
	if err != nil {
		return nil, err
	}
	switch {
	case version == VersionV1:
		return nil, apperr.ErrNeedUpgradeFromV1
	case version > VersionV2:
		return nil, apperr.New(apperr.KindOutdatedBinary, fmt.Sprintf("rooster file format version %d is newer than the highest version this build understands (%d)", version, VersionV2))
	case version != VersionV2:
		return nil, apperr.New(apperr.KindCorruptionError, fmt.Sprintf("rooster file has unrecognized version %d", version))
	}

	if len(raw) < HeaderSize {
		return nil, apperr.New(apperr.KindCorruptionError, "rooster file header is truncated")
	}

	params := cryptutil.ScryptParams{
		Log2N: binary.LittleEndian.Uint32(raw[offLog2N:offR]),
		R:     binary.LittleEndian.Uint32(raw[offR:offP]),
		P:     binary.LittleEndian.Uint32(raw[offP:offHMAC]),
	}
	if !params.Valid() {
		return nil, apperr.New(apperr.KindCorruptionError, "rooster file header carries out-of-range scrypt parameters")
	}

	hmacTag := append([]byte(nil), raw[offHMAC:offIV]...)
	iv := append([]byte(nil), raw[offIV:offCiphertext]...)
	ciphertext := append([]byte(nil), raw[offCiphertext:]...)

	return &Envelope{
		Params:     params,
		HMAC:       hmacTag,
		IV:         iv,
		Ciphertext: ciphertext,
	}, nil
}

// Encode serializes e into the v2 on-disk byte layout.
func Encode(e *Envelope) ([]byte, error) {
	if len(e.HMAC) != cryptutil.MACSize {
		return nil, fmt.Errorf("envelope: hmac must be %d bytes, got %d", cryptutil.MACSize, len(e.HMAC))
	}
	if len(e.IV) != cryptutil.IVSize {
		return nil, fmt.Errorf("envelope: iv must be %d bytes, got %d", cryptutil.IVSize, len(e.IV))
	}
	if !e.Params.Valid() {
		return nil, fmt.Errorf("envelope: invalid scrypt parameters: %+v", e.Params)
	}

	out := make([]byte, HeaderSize+len(e.Ciphertext))
	copy(out[offMagic:], Magic[:])
	out[offVersion] = VersionV2
	binary.LittleEndian.PutUint32(out[offLog2N:], e.Params.Log2N)
	binary.LittleEndian.PutUint32(out[offR:], e.Params.R)
	binary.LittleEndian.PutUint32(out[offP:], e.Params.P)
	copy(out[offHMAC:], e.HMAC)
	copy(out[offIV:], e.IV)
	copy(out[offCiphertext:], e.Ciphertext)
	return out, nil
}
