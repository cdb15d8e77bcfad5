// Package token provides keyed hashing primitives and random material generation.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/yndnr/keyforge-go/pkg/charset"
)

// Hasher derives fragments, checksums and keystreams from a pair of secrets.
// It is immutable and safe for concurrent use.
type Hasher struct {
	primary   string
	secondary string
	alphabet  *charset.Alphabet
	keyDigest string
}

// NewHasher creates a Hasher over the given alphabet.
// A nil alphabet selects charset.Token.
func NewHasher(primary, secondary string, alphabet *charset.Alphabet) *Hasher {
	if alphabet == nil {
		alphabet = charset.Token
	}
	sum := sha256.Sum256([]byte(primary + secondary))
	return &Hasher{
		primary:   primary,
		secondary: secondary,
		alphabet:  alphabet,
		keyDigest: hex.EncodeToString(sum[:]),
	}
}

// Alphabet returns the alphabet outputs are mapped onto.
func (h *Hasher) Alphabet() *charset.Alphabet {
	return h.alphabet
}

// Fragment derives length symbols from input using rounds of HMAC-SHA256.
//
// Round i hashes the previous round's hex digest (the input itself for
// round 0) with the key primary + i + secondary. Fewer than one round is
// treated as one.
func (h *Hasher) Fragment(input string, rounds, length int) string {
	if rounds < 1 {
		rounds = 1
	}
	digest := input
	for i := 0; i < rounds; i++ {
		salt := h.primary + strconv.Itoa(i) + h.secondary
		digest = hmacHex(salt, digest)
	}
	return h.mapDigest(digest, length)
}

// Checksum computes a length-symbol integrity tag over payload.
func (h *Hasher) Checksum(payload string, length int) string {
	return h.mapDigest(hmacHex(h.primary+h.secondary, payload), length)
}

// VerifyChecksum recomputes the checksum of payload and compares it with
// sum in constant time.
func (h *Hasher) VerifyChecksum(payload, sum string) bool {
	expected := h.Checksum(payload, len(sum))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(sum)) == 1
}

// Keystream returns length hex digits of the repeated SHA-256 digest of
// primary + secondary.
func (h *Hasher) Keystream(length int) string {
	if length <= 0 {
		return ""
	}
	repeats := length/len(h.keyDigest) + 1
	return strings.Repeat(h.keyDigest, repeats)[:length]
}

// mapDigest maps a hex digest produced by this package onto the alphabet.
// The digest is always 64 valid hex digits, so mapping cannot fail.
func (h *Hasher) mapDigest(digest string, length int) string {
	out, err := h.alphabet.MapHexDigest(digest, length)
	if err != nil {
		panic("token: internal digest is not hex: " + err.Error())
	}
	return out
}

func hmacHex(key, message string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// Hash computes the SHA-256 fingerprint of an issued key.
//
// The returned hash is hex encoded, for callers that keep digests
// instead of keys.
func Hash(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

