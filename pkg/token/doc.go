// Package token provides the keyed hashing primitives behind structured
// API keys, plus random material generation.
//
// Hasher binds a primary and a secondary secret and derives:
//
//   - Fragment: a fixed-length pseudonym of an identifier, computed with
//     several rounds of HMAC-SHA256, each round keyed with
//     primary + round index + secondary
//   - Checksum: an HMAC-SHA256 integrity tag keyed with
//     primary + secondary
//   - Keystream: hex SHA-256 of primary + secondary, repeated to any
//     length, consumed by the key obfuscation layer
//
// Digests are mapped onto a charset.Alphabet, so every output is printable
// and fits into fixed-width token fields. All outputs are deterministic for
// identical inputs and secrets.
//
// ReadBytes draws random material from an injectable reader; it feeds
// the random part of keys and freshly generated master secrets. Hash is
// the hex SHA-256 fingerprint recorded for every issued key.
package token
