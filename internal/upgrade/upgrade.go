// Package upgrade implements the v1→v2 format upgrade protocol (spec.md
// §4.7): decode a legacy envelope under the master password, hand back a
// plaintext v2-model store for the caller to re-encode. The upgrade itself
// never writes a file; that stays the dispatcher's job, gated by the
// interactive consent contract in spec.md §6.
package upgrade

import (
	"fmt"

	"github.com/barnettlynn/rooster/internal/apperr"
	"github.com/barnettlynn/rooster/internal/cryptutil"
	"github.com/barnettlynn/rooster/internal/envelope"
	"github.com/barnettlynn/rooster/internal/secret"
	"github.com/barnettlynn/rooster/internal/store"
)

// FromV1 decodes raw as a v1 file under masterPassword and returns an
// equivalent v2-model store. The caller is responsible for re-encoding the
// result with store.Encode before writing anything back — FromV1 only
// performs the read half of the upgrade.
func FromV1(raw []byte, masterPassword *secret.String) (*store.Store, error) {
	v1, err := envelope.DecodeV1(raw)
	if err != nil {
		return nil, err
	}

	aesKey, macKey, err := cryptutil.DeriveKey(masterPassword, v1.IV, envelope.LegacyParams)
	if err != nil {
		return nil, err
	}
	defer aesKey.Zero()
	defer macKey.Zero()

	if !cryptutil.VerifyMACV1(macKey.Bytes(), v1.Ciphertext, v1.HMAC) {
		return nil, apperr.ErrWrongMasterPassword
	}

	plaintext, err := cryptutil.CTRCrypt(aesKey.Bytes(), v1.IV, v1.Ciphertext)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(plaintext)

	s, err := store.FromLegacyJSON(plaintext, cryptutil.DefaultScryptParams)
	if err != nil {
		return nil, fmt.Errorf("upgrade: %w", err)
	}
	return s, nil
}

// ToV1 encrypts a store using the legacy v1 envelope and MAC construction.
// Production code never calls this — v1 files are only ever read, never
// written — but it's how tests and the interactive-upgrade integration
// suite build v1 fixtures without hand-crafting ciphertext.
func ToV1(plaintext []byte, masterPassword *secret.String) ([]byte, error) {
	iv, err := cryptutil.RandomIV()
	if err != nil {
		return nil, err
	}
	aesKey, macKey, err := cryptutil.DeriveKey(masterPassword, iv, envelope.LegacyParams)
	if err != nil {
		return nil, err
	}
	defer aesKey.Zero()
	defer macKey.Zero()

	ciphertext, err := cryptutil.CTRCrypt(aesKey.Bytes(), iv, plaintext)
	if err != nil {
		return nil, err
	}
	tag := cryptutil.ComputeMACV1(macKey.Bytes(), ciphertext)

	return envelope.EncodeV1(&envelope.V1Envelope{IV: iv, Ciphertext: ciphertext, HMAC: tag})
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
