// Package generator implements the password generator described in
// spec.md §4.6: uniform random sampling over a configurable alphabet with
// length bounds, using rejection sampling to avoid modulo bias.
package generator

import (
	"fmt"

	"github.com/barnettlynn/rooster/internal/apperr"
	"github.com/barnettlynn/rooster/internal/cryptutil"
	"github.com/barnettlynn/rooster/internal/secret"
)

// Alphabet selects which character set a generated password draws from.
type Alphabet int

const (
	// Alnum is the 62 alphanumeric characters.
	Alnum Alphabet = iota
	// Full is the 94 printable, non-space ASCII characters.
	Full
)

const (
	MinLength = 4
	MaxLength = 128
)

const (
	lower  = "abcdefghijklmnopqrstuvwxyz"
	upper  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits = "0123456789"
	// symbols is every other printable, non-space ASCII character, so
	// lower+upper+digits+symbols covers all 94 printable non-space
	// characters exactly once.
	symbols = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

func (a Alphabet) chars() string {
	switch a {
	case Full:
		return lower + upper + digits + symbols
	default:
		return lower + upper + digits
	}
}

// Generate returns a freshly allocated secret string of length drawn
// uniformly from the chosen alphabet via rejection sampling, regenerating
// until it contains at least one lowercase letter, one uppercase letter,
// and one digit (spec.md §4.6, §8 property 7).
func Generate(length int, alphabet Alphabet) (*secret.String, error) {
	if length < MinLength || length > MaxLength {
		return nil, fmt.Errorf("%w: length must be between %d and %d, got %d", apperr.ErrInvalidLength, MinLength, MaxLength, length)
	}

	chars := alphabet.chars()
	for {
		buf := make([]byte, length)
		if err := fillUniform(buf, chars); err != nil {
			return nil, err
		}
		if meetsClassRequirement(buf) {
			return secret.NewString(string(buf)), nil
		}
	}
}

func meetsClassRequirement(buf []byte) bool {
	var hasLower, hasUpper, hasDigit bool
	for _, b := range buf {
		switch {
		case b >= 'a' && b <= 'z':
			hasLower = true
		case b >= 'A' && b <= 'Z':
			hasUpper = true
		case b >= '0' && b <= '9':
			hasDigit = true
		}
	}
	return hasLower && hasUpper && hasDigit
}

// fillUniform draws len(buf) characters from chars uniformly at random,
// using rejection sampling over random bytes to avoid modulo bias: any
// byte value that would wrap around the alphabet length unevenly is
// discarded and re-drawn.
func fillUniform(buf []byte, chars string) error {
	n := len(chars)
	limit := 256 - (256 % n)

	for i := range buf {
		for {
			b, err := cryptutil.RandomBytes(1)
			if err != nil {
				return err
			}
			if int(b[0]) < limit {
				buf[i] = chars[int(b[0])%n]
				break
			}
		}
	}
	return nil
}
