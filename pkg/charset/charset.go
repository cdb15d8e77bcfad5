// Package charset provides base-62 alphabets for compact identifiers.
package charset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Size is the number of symbols in every alphabet.
const Size = 62

var (
	// ErrInvalidCharacter is returned when a symbol is not part of the alphabet.
	ErrInvalidCharacter = errors.New("charset: invalid character")

	// ErrOverflow is returned when a decoded value does not fit in uint64.
	ErrOverflow = errors.New("charset: value overflows uint64")

	// ErrInvalidDigest is returned when a digest is not valid hexadecimal.
	ErrInvalidDigest = errors.New("charset: invalid hex digest")
)

// Predefined alphabets.
var (
	// Token is the alphabet used by structured API keys.
	Token = MustNew("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

	// Base62 is the conventional digits-first alphabet used by invite codes.
	Base62 = MustNew("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz")
)

// Alphabet is an ordered set of 62 distinct ASCII symbols.
// It is immutable and safe for concurrent use.
type Alphabet struct {
	symbols string
	index   [256]int8
}

// New creates an alphabet from exactly Size distinct ASCII symbols.
func New(symbols string) (*Alphabet, error) {
	if len(symbols) != Size {
		return nil, fmt.Errorf("charset: alphabet must have %d symbols, got %d", Size, len(symbols))
	}

	a := &Alphabet{symbols: symbols}
	for i := range a.index {
		a.index[i] = -1
	}
	for i := 0; i < len(symbols); i++ {
		c := symbols[i]
		if c >= 0x80 {
			return nil, fmt.Errorf("charset: non-ASCII symbol at position %d", i)
		}
		if a.index[c] != -1 {
			return nil, fmt.Errorf("charset: duplicate symbol %q", c)
		}
		a.index[c] = int8(i)
	}
	return a, nil
}

// MustNew is like New but panics on error.
func MustNew(symbols string) *Alphabet {
	a, err := New(symbols)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the symbols in order.
func (a *Alphabet) String() string {
	return a.symbols
}

// Symbol returns the symbol for digit i (0 <= i < Size).
func (a *Alphabet) Symbol(i int) byte {
	return a.symbols[i]
}

// Index returns the digit value of c, or -1 if c is not in the alphabet.
func (a *Alphabet) Index(c byte) int {
	return int(a.index[c])
}

// Contains reports whether every byte of s belongs to the alphabet.
func (a *Alphabet) Contains(s string) bool {
	for i := 0; i < len(s); i++ {
		if a.index[s[i]] < 0 {
			return false
		}
	}
	return true
}

// EncodeNumber renders n in base 62, most significant symbol first,
// left-padded with the symbol for 0 to exactly length symbols.
//
// If n needs more than length symbols, only the length low-order symbols
// are kept; callers are responsible for range checks.
func (a *Alphabet) EncodeNumber(n uint64, length int) string {
	if length <= 0 {
		return ""
	}
	buf := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		buf[i] = a.symbols[n%Size]
		n /= Size
	}
	return string(buf)
}

// DecodeNumber parses s as a base-62 number.
func (a *Alphabet) DecodeNumber(s string) (uint64, error) {
	var n uint64
	for i := 0; i < len(s); i++ {
		d := a.index[s[i]]
		if d < 0 {
			return 0, fmt.Errorf("%w: %q at position %d", ErrInvalidCharacter, s[i], i)
		}
		if n > (math.MaxUint64-uint64(d))/Size {
			return 0, ErrOverflow
		}
		n = n*Size + uint64(d)
	}
	return n, nil
}

// MapHexDigest derives length symbols from a hexadecimal digest.
//
// Symbol i is taken from the byte encoded by the two hex digits starting
// at offset (2*i) mod (len(hexDigest)-1), reduced modulo Size. Offsets
// wrap around, so a digest can feed any number of symbols.
func (a *Alphabet) MapHexDigest(hexDigest string, length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	if len(hexDigest) < 2 {
		return "", fmt.Errorf("%w: need at least 2 hex digits", ErrInvalidDigest)
	}

	span := len(hexDigest) - 1
	buf := make([]byte, length)
	for i := 0; i < length; i++ {
		pos := (i * 2) % span
		v, err := strconv.ParseUint(hexDigest[pos:pos+2], 16, 8)
		if err != nil {
			return "", fmt.Errorf("%w: %q at offset %d", ErrInvalidDigest, hexDigest[pos:pos+2], pos)
		}
		buf[i] = a.symbols[v%Size]
	}
	return string(buf), nil
}
