// Package config loads rooster's optional user preferences file. Unlike
// the nfctools configs it's modeled on (minter/internal/config,
// sdmconfig/internal/config), this file's absence is not an error: rooster
// must work with zero setup, falling back to the defaults below.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/barnettlynn/rooster/internal/cryptutil"
	"github.com/barnettlynn/rooster/internal/generator"
)

// Preferences holds the knobs a user can override via the preferences
// file. Every field has a zero-value-safe default applied in Load.
type Preferences struct {
	Generator GeneratorPreferences `yaml:"generator"`
	Clipboard ClipboardPreferences `yaml:"clipboard"`
	Scrypt    ScryptPreferences    `yaml:"scrypt"`
}

// GeneratorPreferences overrides the defaults `generate`/`regenerate` use
// when the corresponding CLI flag isn't given.
type GeneratorPreferences struct {
	Length   int    `yaml:"length"`
	Alphabet string `yaml:"alphabet"` // "alnum" or "full"
}

// ClipboardPreferences controls the clipboard adapter.
type ClipboardPreferences struct {
	// ClearAfterSeconds, if nonzero, tells the dispatcher to overwrite the
	// clipboard some seconds after a copy. 0 means "leave it".
	ClearAfterSeconds int `yaml:"clear_after_seconds"`
}

// ScryptPreferences overrides the KDF cost parameters `init` uses when
// creating a new password file. Leaving all three fields zero means "leave
// the CLI default (cryptutil.DefaultScryptParams) alone"; setting any of
// them makes the section an override that must be valid as a whole.
type ScryptPreferences struct {
	Log2N uint32 `yaml:"log2n"`
	R     uint32 `yaml:"r"`
	P     uint32 `yaml:"p"`
}

// Default returns the built-in preferences used when no file is present.
func Default() *Preferences {
	return &Preferences{
		Generator: GeneratorPreferences{Length: 32, Alphabet: "alnum"},
		Clipboard: ClipboardPreferences{ClearAfterSeconds: 0},
	}
}

// Load reads and validates the preferences file at path. A missing file is
// not an error: it returns the defaults instead, since rooster must run
// without any setup.
func Load(path string) (*Preferences, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: read preferences file: %w", err)
	}

	prefs := Default()
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(prefs); err != nil {
		return nil, fmt.Errorf("config: parse preferences yaml: %w", err)
	}
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	return prefs, nil
}

// Validate checks the preferences carry sane values.
func (p *Preferences) Validate() error {
	if p.Generator.Length != 0 && (p.Generator.Length < generator.MinLength || p.Generator.Length > generator.MaxLength) {
		return fmt.Errorf("config: generator.length must be between %d and %d, got %d", generator.MinLength, generator.MaxLength, p.Generator.Length)
	}
	switch p.Generator.Alphabet {
	case "", "alnum", "full":
	default:
		return fmt.Errorf("config: generator.alphabet must be %q or %q, got %q", "alnum", "full", p.Generator.Alphabet)
	}
	if p.Clipboard.ClearAfterSeconds < 0 {
		return fmt.Errorf("config: clipboard.clear_after_seconds must be >= 0, got %d", p.Clipboard.ClearAfterSeconds)
	}
	if p.Scrypt != (ScryptPreferences{}) {
		params := p.Scrypt.ScryptParams()
		if !params.Valid() {
			return fmt.Errorf("config: scrypt.{log2n,r,p} = {%d,%d,%d} are out of range", params.Log2N, params.R, params.P)
		}
		if params.IsWeak() {
			return fmt.Errorf("config: scrypt parameters {%d,%d,%d} are weaker than the minimum rooster will create a file with", params.Log2N, params.R, params.P)
		}
	}
	return nil
}

// ScryptParams resolves the configured scrypt override, if any is set, to
// a cryptutil.ScryptParams. Callers should check ScryptOverridden first.
func (p *ScryptPreferences) ScryptParams() cryptutil.ScryptParams {
	return cryptutil.ScryptParams{Log2N: p.Log2N, R: p.R, P: p.P}
}

// ScryptOverridden reports whether the preferences file set any scrypt
// parameter, i.e. whether init should use ScryptParams() instead of
// cryptutil.DefaultScryptParams.
func (p *Preferences) ScryptOverridden() bool {
	return p.Scrypt != (ScryptPreferences{})
}

// GeneratorAlphabet resolves the configured alphabet name to a
// generator.Alphabet, defaulting to Alnum.
func (p *Preferences) GeneratorAlphabet() generator.Alphabet {
	if p.Generator.Alphabet == "full" {
		return generator.Full
	}
	return generator.Alnum
}
