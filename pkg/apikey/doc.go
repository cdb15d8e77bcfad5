// Package apikey provides structured, tamper-evident API keys.
//
// A key is a fixed-length string over charset.Token built from these fields,
// in order:
//
//	version | user id fragment | random part | permission bitmap |
//	timestamp | expiry flag | expiry days | checksum
//
// The checksum is a keyed HMAC tag over every preceding field. The whole
// string, checksum included, is then passed through a keyed symbol-wise
// substitution (Obfuscator), so issued keys reveal none of their fields
// without the secrets.
//
// Verification has three outcomes:
//
//   - nil: the key is malformed or has been tampered with. No reason is
//     given to the caller.
//   - Result with Valid == false and Reason == ReasonExpired: the key is
//     authentic but past its expiry.
//   - Result with Valid == true: the key is authentic and current.
//
// Codec is safe for concurrent use. Apart from the optional fragment cache
// (WithFragmentCache) it does not change after New.
//
// Usage:
//
//	codec, err := apikey.New(primary, secondary, apikey.DefaultConfig())
//	key, err := codec.Generate("user123",
//	    []apikey.Permission{apikey.PermRead, apikey.PermWrite},
//	    apikey.WithExpiryDays(30))
//	res := codec.Verify(key)
package apikey
