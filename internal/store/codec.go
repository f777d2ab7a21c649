package store

import (
	"encoding/json"
	"fmt"

	"github.com/barnettlynn/rooster/internal/apperr"
	"github.com/barnettlynn/rooster/internal/cryptutil"
	"github.com/barnettlynn/rooster/internal/envelope"
	"github.com/barnettlynn/rooster/internal/secret"
)

// Canonical JSON shape (spec.md §9, "Canonical JSON"): struct field order
// below is alphabetical by JSON key, and entries are encoded in the
// store's insertion order, so two encodes of an unchanged store produce
// byte-identical plaintext.
type jsonScryptParams struct {
	Log2N uint32 `json:"log2n"`
	P     uint32 `json:"p"`
	R     uint32 `json:"r"`
}

type jsonCredential struct {
	CreatedAt int64          `json:"created_at"`
	Name      string         `json:"name"`
	Password  *secret.String `json:"password"`
	UpdatedAt int64          `json:"updated_at"`
	Username  string         `json:"username"`
}

type jsonStore struct {
	Passwords []jsonCredential `json:"passwords"`
	Scrypt    jsonScryptParams `json:"scrypt"`
}

func (s *Store) toJSON() jsonStore {
	out := jsonStore{
		Passwords: make([]jsonCredential, len(s.entries)),
		Scrypt: jsonScryptParams{
			Log2N: s.params.Log2N,
			P:     s.params.P,
			R:     s.params.R,
		},
	}
	for i, c := range s.entries {
		out.Passwords[i] = jsonCredential{
			CreatedAt: c.CreatedAt.Unix(),
			Name:      c.Name,
			Password:  c.Password,
			UpdatedAt: c.UpdatedAt.Unix(),
			Username:  c.Username,
		}
	}
	return out
}

func fromJSON(js jsonStore) (*Store, error) {
	params := cryptutil.ScryptParams{Log2N: js.Scrypt.Log2N, R: js.Scrypt.R, P: js.Scrypt.P}
	if !params.Valid() {
		return nil, apperr.New(apperr.KindCorruptionError, "decoded store carries out-of-range scrypt parameters")
	}
	s := New(params)
	seen := make(map[string]bool, len(js.Passwords))
	for _, p := range js.Passwords {
		if p.Name == "" {
			return nil, apperr.New(apperr.KindCorruptionError, "decoded store contains an entry with an empty name")
		}
		key := normalizedName(p.Name)
		if seen[key] {
			return nil, apperr.New(apperr.KindCorruptionError, "decoded store contains duplicate entry name \""+p.Name+"\"")
		}
		seen[key] = true
		if p.CreatedAt > p.UpdatedAt {
			return nil, apperr.New(apperr.KindCorruptionError, "decoded store has an entry with created_at after updated_at")
		}
		s.entries = append(s.entries, &Credential{
			Name:      p.Name,
			Username:  p.Username,
			Password:  p.Password,
			CreatedAt: unixUTC(p.CreatedAt),
			UpdatedAt: unixUTC(p.UpdatedAt),
		})
	}
	return s, nil
}

// Encode implements the store encoder protocol of spec.md §4.4: canonical
// JSON, a fresh IV/salt, scrypt key derivation, AES-CTR encryption, and a
// truncated HMAC-SHA-512 over iv‖ciphertext — in that order.
func Encode(s *Store, masterPassword *secret.String) ([]byte, error) {
	plaintext, err := json.Marshal(s.toJSON())
	if err != nil {
		return nil, fmt.Errorf("store: marshal plaintext: %w", err)
	}
	defer zeroBytes(plaintext)

	iv, err := cryptutil.RandomIV()
	if err != nil {
		return nil, err
	}

	aesKey, macKey, err := cryptutil.DeriveKey(masterPassword, iv, s.params)
	if err != nil {
		return nil, err
	}
	defer aesKey.Zero()
	defer macKey.Zero()

	ciphertext, err := cryptutil.CTRCrypt(aesKey.Bytes(), iv, plaintext)
	if err != nil {
		return nil, err
	}
	tag := cryptutil.ComputeMAC(macKey.Bytes(), iv, ciphertext)

	return envelope.Encode(&envelope.Envelope{
		Params:     s.params,
		HMAC:       tag,
		IV:         iv,
		Ciphertext: ciphertext,
	})
}

// Decode implements the store decoder protocol of spec.md §4.4: parse the
// envelope, derive the key, verify the MAC before ever attempting to
// decrypt, decrypt, then parse JSON. A MAC mismatch is reported identically
// whether it came from a wrong password or a tampered file (spec.md §7:
// "denying an oracle").
func Decode(raw []byte, masterPassword *secret.String) (*Store, error) {
	env, err := envelope.Decode(raw)
	if err != nil {
		return nil, err
	}

	aesKey, macKey, err := cryptutil.DeriveKey(masterPassword, env.IV, env.Params)
	if err != nil {
		return nil, err
	}
	defer aesKey.Zero()
	defer macKey.Zero()

	if !cryptutil.VerifyMAC(macKey.Bytes(), env.IV, env.Ciphertext, env.HMAC) {
		return nil, apperr.ErrWrongMasterPassword
	}

	plaintext, err := cryptutil.CTRCrypt(aesKey.Bytes(), env.IV, env.Ciphertext)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(plaintext)

	var js jsonStore
	if err := json.Unmarshal(plaintext, &js); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrCorruptionError, err)
	}
	return fromJSON(js)
}

// legacyJSON is the plaintext shape a v1 file decrypts to: just the entry
// list, with no embedded scrypt section (v1 predates per-file parameter
// storage; every v1 file used envelope.LegacyParams).
type legacyJSON struct {
	Passwords []jsonCredential `json:"passwords"`
}

// FromLegacyJSON builds a v2 Store from a v1 file's decrypted plaintext.
// It's the bridge internal/upgrade uses between "decoded a v1 blob" and
// "here's a store ready to be re-encoded as v2" (spec.md §4.7). The
// resulting store adopts params — the upgrader passes the current v2
// defaults, since v1 never exposed per-file parameter tuning.
func FromLegacyJSON(plaintext []byte, params cryptutil.ScryptParams) (*Store, error) {
	var legacy legacyJSON
	if err := json.Unmarshal(plaintext, &legacy); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrCorruptionError, err)
	}
	return fromJSON(jsonStore{Passwords: legacy.Passwords, Scrypt: jsonScryptParams{
		Log2N: params.Log2N, R: params.R, P: params.P,
	}})
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
