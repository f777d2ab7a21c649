package envelope

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/barnettlynn/rooster/internal/apperr"
	"github.com/barnettlynn/rooster/internal/cryptutil"
)

// LegacyParams are the scrypt cost parameters every v1 file was encrypted
// with. v1 predates the on-disk parameter header (spec.md §4.7), so these
// values are baked into the binary rather than read from the file.
var LegacyParams = cryptutil.ScryptParams{Log2N: 14, R: 8, P: 1}

// v1Body is the JSON payload that follows the 5-byte magic+version prefix
// in a v1 file (spec.md §4.7: "a JSON envelope containing base64-ed
// ciphertext and IV, using a different MAC construction").
type v1Body struct {
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
	HMAC       string `json:"hmac"`
}

// V1Envelope is the parsed form of a legacy file.
type V1Envelope struct {
	IV         []byte
	Ciphertext []byte
	HMAC       []byte
}

// DecodeV1 parses the JSON body of a v1 file. Callers are expected to have
// already confirmed the version byte is VersionV1 via SniffVersion.
func DecodeV1(raw []byte) (*V1Envelope, error) {
	if len(raw) < offVersion+1 {
		return nil, apperr.New(apperr.KindCorruptionError, "v1 rooster file is too short to contain a header")
	}
	var body v1Body
	if err := json.Unmarshal(raw[offVersion+1:], &body); err != nil {
		return nil, fmt.Errorf("envelope: malformed v1 body: %w", err)
	}

	iv, err := base64.StdEncoding.DecodeString(body.IV)
	if err != nil {
		return nil, fmt.Errorf("envelope: malformed v1 iv: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(body.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("envelope: malformed v1 ciphertext: %w", err)
	}
	tag, err := base64.StdEncoding.DecodeString(body.HMAC)
	if err != nil {
		return nil, fmt.Errorf("envelope: malformed v1 hmac: %w", err)
	}
	if len(iv) != cryptutil.IVSize {
		return nil, apperr.New(apperr.KindCorruptionError, "v1 rooster file has a malformed iv")
	}

	return &V1Envelope{IV: iv, Ciphertext: ciphertext, HMAC: tag}, nil
}

// EncodeV1 serializes e as a v1 file. Production code only ever reads v1
// files (for upgrade); this exists so tests, through upgrade.ToV1, can
// produce one without depending on an external legacy binary.
func EncodeV1(e *V1Envelope) ([]byte, error) {
	body := v1Body{
		IV:         base64.StdEncoding.EncodeToString(e.IV),
		Ciphertext: base64.StdEncoding.EncodeToString(e.Ciphertext),
		HMAC:       base64.StdEncoding.EncodeToString(e.HMAC),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("envelope: marshal v1 body: %w", err)
	}
	out := make([]byte, 0, offVersion+1+len(payload))
	out = append(out, Magic[:]...)
	out = append(out, VersionV1)
	out = append(out, payload...)
	return out, nil
}
