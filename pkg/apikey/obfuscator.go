// Package apikey provides structured, tamper-evident API keys.
package apikey

import (
	"fmt"

	"github.com/yndnr/keyforge-go/pkg/charset"
	"github.com/yndnr/keyforge-go/pkg/token"
)

// Obfuscator applies a keyed, position-wise additive substitution over an
// alphabet. Symbol i is shifted by the value of hex digit i of the
// Hasher's keystream.
type Obfuscator struct {
	hasher   *token.Hasher
	alphabet *charset.Alphabet
}

// NewObfuscator creates an Obfuscator driven by h.
func NewObfuscator(h *token.Hasher) *Obfuscator {
	return &Obfuscator{hasher: h, alphabet: h.Alphabet()}
}

// Obfuscate shifts every symbol of s forward by its keystream digit.
func (o *Obfuscator) Obfuscate(s string) (string, error) {
	return o.shift(s, 1)
}

// Deobfuscate reverses Obfuscate.
func (o *Obfuscator) Deobfuscate(s string) (string, error) {
	return o.shift(s, -1)
}

func (o *Obfuscator) shift(s string, dir int) (string, error) {
	stream := o.hasher.Keystream(len(s))
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		idx := o.alphabet.Index(s[i])
		if idx < 0 {
			return "", fmt.Errorf("%w: %q at position %d", charset.ErrInvalidCharacter, s[i], i)
		}
		k := hexValue(stream[i])
		out[i] = o.alphabet.Symbol(((idx+dir*k)%charset.Size + charset.Size) % charset.Size)
	}
	return string(out), nil
}

// hexValue returns the value of a lowercase hex digit.
func hexValue(c byte) int {
	if c >= 'a' {
		return int(c-'a') + 10
	}
	return int(c - '0')
}
