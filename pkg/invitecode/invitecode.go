// Package invitecode maps user ids to short, reversible invite codes.
package invitecode

import (
	"errors"
	"fmt"

	"github.com/yndnr/keyforge-go/pkg/charset"
)

// Transform parameters.
const (
	// N is the size of the id domain.
	N uint64 = 100_000_000

	// Prime is the multiplicative mask. It is coprime to N.
	Prime uint64 = 7_364_737

	// Offset is added to the id before masking.
	Offset uint64 = N

	// Length is the number of symbols in a code.
	Length = 6
)

var (
	// ErrOutOfRange is returned for ids outside [0, N).
	ErrOutOfRange = errors.New("invitecode: id out of range")

	// ErrInvalidFormat is returned for codes that are not Length symbols of
	// the alphabet.
	ErrInvalidFormat = errors.New("invitecode: invalid format")

	// ErrNotInvertible is returned by ModInverse when no inverse exists.
	ErrNotInvertible = errors.New("invitecode: not invertible")
)

var primeInverse = mustInverse(Prime, N)

// Generate returns the invite code of userID.
func Generate(userID uint64) (string, error) {
	if userID >= N {
		return "", fmt.Errorf("%w: %d not below %d", ErrOutOfRange, userID, N)
	}
	mixed := ((userID + Offset) % N) * Prime % N
	return charset.Base62.EncodeNumber(mixed, Length), nil
}

// Parse returns the user id encoded in code.
func Parse(code string) (uint64, error) {
	if !IsValid(code) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, code)
	}
	mixed, err := charset.Base62.DecodeNumber(code)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	unmasked := (mixed % N) * primeInverse % N
	return (unmasked + N - Offset%N) % N, nil
}

// IsValid reports whether code has Length symbols, all from charset.Base62.
func IsValid(code string) bool {
	return len(code) == Length && charset.Base62.Contains(code)
}

// ModInverse returns x in [0, m) with a*x = 1 (mod m), computed with the
// extended Euclidean algorithm.
func ModInverse(a, m int64) (int64, error) {
	if m <= 0 {
		return 0, fmt.Errorf("%w: modulus %d", ErrNotInvertible, m)
	}
	a %= m
	if a < 0 {
		a += m
	}

	oldR, r := a, m
	oldS, s := int64(1), int64(0)
	for r != 0 {
		q := oldR / r
		oldR, r = r, oldR-q*r
		oldS, s = s, oldS-q*s
	}
	if oldR != 1 {
		return 0, fmt.Errorf("%w: gcd(%d, %d) = %d", ErrNotInvertible, a, m, oldR)
	}

	oldS %= m
	if oldS < 0 {
		oldS += m
	}
	return oldS, nil
}

func mustInverse(a, m uint64) uint64 {
	inv, err := ModInverse(int64(a), int64(m))
	if err != nil {
		panic(err)
	}
	return uint64(inv)
}
