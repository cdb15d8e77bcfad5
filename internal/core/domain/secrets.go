// Package domain defines the core domain models for keyforge.
package domain

import (
	"crypto/sha256"
	"encoding/base64"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// Argon2id parameters for passphrase stretching.
const (
	// Argon2Memory is the memory parameter in KB (16 MB).
	Argon2Memory uint32 = 16384

	// Argon2Time is the iteration count.
	Argon2Time uint32 = 2

	// Argon2Parallelism is the parallelism factor.
	Argon2Parallelism uint8 = 2

	// Argon2KeyLen is the output length in bytes.
	Argon2KeyLen uint32 = 32

	// MinSaltLength is the minimum salt length in bytes.
	MinSaltLength = 8
)

// Secret derivation constants.
const (
	// MinMasterLength is the minimum master secret length in bytes.
	MinMasterLength = 16

	// DerivedSecretLength is the length of each derived secret in bytes.
	DerivedSecretLength = 32

	hkdfInfoPrimary   = "keyforge/v1/primary"
	hkdfInfoSecondary = "keyforge/v1/secondary"
)

// Secrets is the pair of secrets an API key codec is bound to.
type Secrets struct {
	Primary   string `json:"-"`
	Secondary string `json:"-"`
}

// Validate checks that both secrets are present.
func (s Secrets) Validate() error {
	if s.Primary == "" {
		return ErrSecretMissing.WithDetails("primary secret is empty")
	}
	if s.Secondary == "" {
		return ErrSecretMissing.WithDetails("secondary secret is empty")
	}
	return nil
}

// String never prints secret material.
func (s Secrets) String() string {
	return "Secrets{***REDACTED***}"
}

// LogValue implements slog.LogValuer.
func (s Secrets) LogValue() slog.Value {
	return slog.StringValue("***REDACTED***")
}

// EncodeMaster encodes master secret bytes as Base64 RawURL.
func EncodeMaster(master []byte) string {
	return base64.RawURLEncoding.EncodeToString(master)
}

// DecodeMaster decodes a Base64 URL encoded master secret (padding optional).
func DecodeMaster(encoded string) ([]byte, error) {
	encoded = strings.TrimRight(strings.TrimSpace(encoded), "=")
	master, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrSecretInvalid.WithDetails("master secret is not base64url").WithCause(err)
	}
	if len(master) < MinMasterLength {
		return nil, ErrSecretInvalid.WithDetails("master secret shorter than 16 bytes")
	}
	return master, nil
}

// DeriveSecrets expands a master secret into a primary and a secondary
// secret with HKDF-SHA256.
func DeriveSecrets(master []byte) (Secrets, error) {
	if len(master) < MinMasterLength {
		return Secrets{}, ErrSecretInvalid.WithDetails("master secret shorter than 16 bytes")
	}

	primary, err := expand(master, hkdfInfoPrimary)
	if err != nil {
		return Secrets{}, err
	}
	secondary, err := expand(master, hkdfInfoSecondary)
	if err != nil {
		return Secrets{}, err
	}
	return Secrets{Primary: primary, Secondary: secondary}, nil
}

func expand(master []byte, info string) (string, error) {
	out := make([]byte, DerivedSecretLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(info)), out); err != nil {
		return "", ErrInternal.WithDetails("hkdf expand").WithCause(err)
	}
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// StretchPassphrase derives a master secret from a passphrase and salt with
// Argon2id.
func StretchPassphrase(passphrase, salt string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrSecretMissing.WithDetails("passphrase is empty")
	}
	if len(salt) < MinSaltLength {
		return nil, ErrSecretInvalid.WithDetails("salt shorter than 8 bytes")
	}
	return argon2.IDKey([]byte(passphrase), []byte(salt), Argon2Time, Argon2Memory, Argon2Parallelism, Argon2KeyLen), nil
}
