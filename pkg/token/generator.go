// Package token provides keyed hashing primitives and random material.
package token

import (
	"fmt"
	"io"
)

// ReadBytes reads exactly length random bytes from r.
//
// Callers pass crypto/rand.Reader in production and a fixed reader in
// tests, so the source stays injectable.
func ReadBytes(r io.Reader, length int) ([]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("token: negative length %d", length)
	}
	bytes := make([]byte, length)
	if _, err := io.ReadFull(r, bytes); err != nil {
		return nil, fmt.Errorf("token: read random bytes: %w", err)
	}
	return bytes, nil
}
