// Package domain defines the core domain models for keyforge.
package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/keyforge-go/pkg/apikey"
)

// Issued key constants.
const (
	// IssuedKeyIDPrefix is the prefix of issued key record IDs.
	IssuedKeyIDPrefix = "kfik-"

	// MaxUserIDLength is the maximum user id length accepted for issuance.
	MaxUserIDLength = 128
)

// IssuedKey is the record of a freshly issued API key.
//
// Token is the only copy of the key; it is returned once and never stored.
type IssuedKey struct {
	// ID identifies this issuance. Format: kfik-{ulid_lowercase}, 31 characters.
	ID string `json:"id" yaml:"id"`

	// UserID is the identifier the key was issued for.
	UserID string `json:"user_id" yaml:"user_id"`

	// Token is the API key.
	Token string `json:"token" yaml:"token"`

	// Fingerprint is the hex SHA-256 of Token, for callers that keep digests.
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`

	// Version is the key format version.
	Version int `json:"version" yaml:"version"`

	// UserIDPart is the pseudonymous user fragment embedded in the key.
	UserIDPart string `json:"user_id_part" yaml:"user_id_part"`

	// Permissions are the granted permissions in bit order.
	Permissions []apikey.Permission `json:"permissions" yaml:"permissions"`

	// CreatedAt is the creation instant, truncated to seconds.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// ExpiresAt is nil for keys that never expire.
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// NewIssuedKeyID generates a new issued key ID.
func NewIssuedKeyID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(timeNow()), entropy)
	if err != nil {
		return "", ErrInternal.WithCause(err)
	}
	return IssuedKeyIDPrefix + strings.ToLower(id.String()), nil
}

// ValidateUserID checks a user id before issuance.
func ValidateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUserIDInvalid.WithDetails("user id is empty")
	}
	if len(userID) > MaxUserIDLength {
		return ErrUserIDInvalid.WithDetails("user id exceeds 128 bytes")
	}
	return nil
}

// timeNow is a hook for testing.
var timeNow = time.Now
