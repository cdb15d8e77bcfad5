// Package charset provides base-62 alphabets for compact identifiers.
//
// An Alphabet maps integers and hash digests onto 62 printable symbols
// ([0-9A-Za-z]) in a fixed order:
//
//   - Token:  A-Z, a-z, 0-9 (used by API keys, zero symbol 'A')
//   - Base62: 0-9, A-Z, a-z (used by invite codes, zero symbol '0')
//
// Operations:
//
//   - EncodeNumber: integer to fixed-width, left-padded symbols
//   - DecodeNumber: symbols back to an integer
//   - MapHexDigest: hexadecimal digest to a fixed number of symbols
//
// MapHexDigest reduces each digest byte modulo 62, so the first 8
// symbols of an alphabet are slightly more likely than the rest
// (256 = 4*62 + 8). Tokens depend on this exact mapping and it must not
// change without breaking previously issued keys.
package charset
