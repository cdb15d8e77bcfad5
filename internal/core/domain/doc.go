// Package domain defines the core domain models for keyforge.
//
// Domain models are pure value objects without IO dependencies or
// framework coupling. This package contains:
//
//   - IssuedKey: the record returned when an API key is issued
//   - Secrets: the primary/secondary secret pair and its derivation from
//     a master secret (HKDF) or a passphrase (Argon2id)
//   - Errors: domain error codes shared by the service and CLI layers
package domain
